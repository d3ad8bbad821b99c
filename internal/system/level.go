package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/marblerace/course/internal/component"
	"github.com/marblerace/course/internal/core/ecs"
	"github.com/marblerace/course/internal/core/event"
	coresys "github.com/marblerace/course/internal/core/system"
	"github.com/marblerace/course/internal/game"
	"github.com/marblerace/course/internal/level"
	"github.com/marblerace/course/internal/obstacle"
	"github.com/marblerace/course/internal/physics"
)

// Course groups the entity stores that describe the built course.
type Course struct {
	World     *ecs.World
	Bodies    *ecs.Store[component.Body]
	Movers    *ecs.Store[component.Mover]
	Colliders *ecs.Store[component.Collider]
}

func NewCourse() *Course {
	c := &Course{
		World:     ecs.NewWorld(),
		Bodies:    ecs.NewStore[component.Body](),
		Movers:    ecs.NewStore[component.Mover](),
		Colliders: ecs.NewStore[component.Collider](),
	}
	c.World.Register(c.Bodies)
	c.World.Register(c.Movers)
	c.World.Register(c.Colliders)
	return c
}

// LevelSystem rebuilds the course whenever the state's (count, seed) pair
// changes. The old entities are queued for CleanupSystem, which runs next
// in the same phase. Phase 7 (Cleanup).
type LevelSystem struct {
	state   *game.State
	cache   *level.Cache
	reg     *obstacle.Registry
	spawner *obstacle.Spawner
	phys    physics.World
	course  *Course
	bus     *event.Bus
	frame   *Frame
	segment float32
	log     *zap.Logger

	current  *level.Level
	layout   level.Layout
	entities []ecs.EntityID
	builds   int
}

func NewLevelSystem(
	state *game.State,
	cache *level.Cache,
	reg *obstacle.Registry,
	spawner *obstacle.Spawner,
	phys physics.World,
	course *Course,
	bus *event.Bus,
	frame *Frame,
	segment float32,
	log *zap.Logger,
) *LevelSystem {
	return &LevelSystem{
		state:   state,
		cache:   cache,
		reg:     reg,
		spawner: spawner,
		phys:    phys,
		course:  course,
		bus:     bus,
		frame:   frame,
		segment: segment,
		log:     log,
	}
}

func (s *LevelSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *LevelSystem) Update(_ time.Duration) {
	snap := s.state.Snapshot()
	lvl := s.cache.Get(snap.BlocksCount, snap.BlocksSeed)
	if lvl == s.current {
		return
	}
	s.teardown()
	s.build(lvl)
}

// Level returns the level currently built.
func (s *LevelSystem) Level() *level.Level { return s.current }

// Layout returns the geometry of the current course.
func (s *LevelSystem) Layout() level.Layout { return s.layout }

// Builds counts how many courses were built.
func (s *LevelSystem) Builds() int { return s.builds }

func (s *LevelSystem) teardown() {
	for _, id := range s.entities {
		s.course.World.MarkForDestruction(id)
	}
	s.entities = s.entities[:0]
}

func (s *LevelSystem) build(lvl *level.Level) {
	lay := level.BuildLayout(lvl, s.segment)

	s.addStatic(component.PartFloor, 0, lay.Floor)
	for _, w := range lay.Walls {
		s.addStatic(component.PartWall, 0, w)
	}
	s.addStatic(component.PartTrophy, len(lay.Segments)-1, lay.Trophy)

	instances, err := s.spawner.SpawnAll(lay)
	if err != nil {
		s.log.Error("spawn obstacles", zap.Int64("blocks_seed", lvl.Seed), zap.Error(err))
	}
	for _, in := range instances {
		target := s.reg.Evaluate(s.frame.Time, in)
		id := s.course.World.CreateEntity()
		s.course.Bodies.Set(id, &component.Body{Handle: s.phys.CreateBody(physics.BodyDesc{
			Type:        physics.BodyKinematic,
			Position:    target.Position,
			Rotation:    target.Rotation,
			HalfExtents: in.Params.HalfExtents,
			Restitution: 0.2,
		})})
		s.course.Movers.Set(id, &component.Mover{Instance: in})
		s.entities = append(s.entities, id)
	}

	s.current = lvl
	s.layout = lay
	s.builds++
	event.Emit(s.bus, event.LevelBuilt{Count: lvl.Count, Seed: lvl.Seed, Obstacles: len(instances)})
	s.log.Info("course built",
		zap.Int("blocks_count", lvl.Count),
		zap.Int64("blocks_seed", lvl.Seed),
		zap.Int("obstacles", len(instances)),
		zap.Int("generations", s.cache.Generations()),
	)
}

func (s *LevelSystem) addStatic(part component.Part, slot int, box level.Box) {
	id := s.course.World.CreateEntity()
	s.course.Bodies.Set(id, &component.Body{Handle: s.phys.CreateBody(physics.BodyDesc{
		Type:        physics.BodyFixed,
		Position:    box.Center,
		HalfExtents: box.HalfExtents,
		Friction:    box.Friction,
		Restitution: box.Restitution,
	})})
	s.course.Colliders.Set(id, &component.Collider{Part: part, Slot: slot, Shape: box})
	s.entities = append(s.entities, id)
}
