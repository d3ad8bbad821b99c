package system

import (
	"time"

	coresys "github.com/marblerace/course/internal/core/system"
	"github.com/marblerace/course/internal/physics"
)

// PhysicsSystem steps the physics world with the forces and kinematic
// targets queued during the previous tick. Phase 2 (Physics).
type PhysicsSystem struct {
	world physics.World
}

func NewPhysicsSystem(world physics.World) *PhysicsSystem {
	return &PhysicsSystem{world: world}
}

func (s *PhysicsSystem) Phase() coresys.Phase { return coresys.PhasePhysics }

func (s *PhysicsSystem) Update(dt time.Duration) {
	s.world.Step(float32(dt.Seconds()))
}
