package system

import (
	"time"

	"github.com/marblerace/course/internal/component"
	"github.com/marblerace/course/internal/core/ecs"
	coresys "github.com/marblerace/course/internal/core/system"
	"github.com/marblerace/course/internal/physics"
)

// CleanupSystem releases the rigid bodies of entities queued for
// destruction, then flushes the queue. Phase 7 (Cleanup), after LevelSystem.
type CleanupSystem struct {
	world  *ecs.World
	bodies *ecs.Store[component.Body]
	phys   physics.World
}

func NewCleanupSystem(world *ecs.World, bodies *ecs.Store[component.Body], phys physics.World) *CleanupSystem {
	return &CleanupSystem{world: world, bodies: bodies, phys: phys}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(_ time.Duration) {
	s.world.EachQueued(func(id ecs.EntityID) {
		if b, ok := s.bodies.Get(id); ok {
			s.phys.RemoveBody(b.Handle)
		}
	})
	s.world.FlushDestroyQueue()
}
