package system

import (
	"time"

	"github.com/marblerace/course/internal/component"
	"github.com/marblerace/course/internal/core/ecs"
	coresys "github.com/marblerace/course/internal/core/system"
	"github.com/marblerace/course/internal/obstacle"
	"github.com/marblerace/course/internal/physics"
)

// ObstacleSystem evaluates every mover's pattern at the current simulation
// time and queues the result as its next kinematic transform.
// Phase 3 (Obstacles).
type ObstacleSystem struct {
	reg    *obstacle.Registry
	phys   physics.World
	movers *ecs.Store[component.Mover]
	bodies *ecs.Store[component.Body]
	frame  *Frame
}

func NewObstacleSystem(reg *obstacle.Registry, phys physics.World, movers *ecs.Store[component.Mover], bodies *ecs.Store[component.Body], frame *Frame) *ObstacleSystem {
	return &ObstacleSystem{reg: reg, phys: phys, movers: movers, bodies: bodies, frame: frame}
}

func (s *ObstacleSystem) Phase() coresys.Phase { return coresys.PhaseObstacles }

func (s *ObstacleSystem) Update(_ time.Duration) {
	t := s.frame.Time
	ecs.Each2(s.movers, s.bodies, func(_ ecs.EntityID, m *component.Mover, b *component.Body) {
		target := s.reg.Evaluate(t, m.Instance)
		s.phys.SetNextKinematicTranslation(b.Handle, target.Position)
		s.phys.SetNextKinematicRotation(b.Handle, target.Rotation)
	})
}
