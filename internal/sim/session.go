// Package sim wires the run state, course builder, physics world, marble
// controller and chase camera into one frame-stepped session.
package sim

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/marblerace/course/internal/camera"
	"github.com/marblerace/course/internal/config"
	"github.com/marblerace/course/internal/core/event"
	coresys "github.com/marblerace/course/internal/core/system"
	"github.com/marblerace/course/internal/data"
	"github.com/marblerace/course/internal/game"
	"github.com/marblerace/course/internal/level"
	"github.com/marblerace/course/internal/obstacle"
	"github.com/marblerace/course/internal/physics"
	"github.com/marblerace/course/internal/player"
	"github.com/marblerace/course/internal/system"
)

// Settings are the tunables of a session.
type Settings struct {
	BlocksCount   int
	SegmentLength float32
	SeedPhrase    string // fixes the first course when set
	RetryTicks    int    // ticks before retrying a failed run write
	Player        player.Tuning
	Camera        camera.Settings
}

func DefaultSettings() Settings {
	return Settings{
		BlocksCount:   10,
		SegmentLength: level.DefaultSegmentLength,
		RetryTicks:    60,
		Player:        player.DefaultTuning(),
		Camera:        camera.DefaultSettings(),
	}
}

// SettingsFromConfig maps the [game], [player] and [camera] sections and
// the run write retry interval.
func SettingsFromConfig(cfg *config.Config) Settings {
	set := DefaultSettings()
	set.BlocksCount = cfg.Game.BlocksCount
	set.SegmentLength = cfg.Game.SegmentLength
	set.SeedPhrase = cfg.Game.SeedPhrase
	if cfg.Game.TickRate > 0 && cfg.Database.RetryInterval > 0 {
		set.RetryTicks = int(cfg.Database.RetryInterval / cfg.Game.TickRate)
	}

	p := &set.Player
	p.Impulse = cfg.Player.Impulse
	p.Torque = cfg.Player.Torque
	p.JumpImpulse = cfg.Player.JumpImpulse
	p.RayOffset = cfg.Player.RayOffset
	p.RayLength = cfg.Player.RayLength
	p.GroundedToi = cfg.Player.GroundedToi
	p.FallThreshold = cfg.Player.FallThreshold
	p.SegmentLength = cfg.Game.SegmentLength

	set.Camera = camera.Settings{
		Smoothing: cfg.Camera.Smoothing,
		OffsetY:   cfg.Camera.OffsetY,
		OffsetZ:   cfg.Camera.OffsetZ,
		TargetY:   cfg.Camera.TargetY,
	}
	return set
}

// Option configures a Session.
type Option func(*options)

type options struct {
	input      system.InputSource
	cam        camera.Camera
	store      system.RunStore
	phys       physics.World
	reg        *obstacle.Registry
	clock      game.Clock
	seedSource func() int64
	spawnSrc   rand.Source
	now        func() time.Time
	log        *zap.Logger
}

// WithInput sets the control source; without one the marble gets no input.
func WithInput(src system.InputSource) Option { return func(o *options) { o.input = src } }

// WithCamera pushes the smoothed camera transform to cam every tick.
func WithCamera(cam camera.Camera) Option { return func(o *options) { o.cam = cam } }

// WithRunStore records finished runs.
func WithRunStore(store system.RunStore) Option { return func(o *options) { o.store = store } }

// WithPhysics replaces the built-in Arcade world.
func WithPhysics(w physics.World) Option { return func(o *options) { o.phys = w } }

// WithRegistry replaces the built-in obstacle registry.
func WithRegistry(reg *obstacle.Registry) Option { return func(o *options) { o.reg = reg } }

// WithClock sets the clock used for run timestamps and input sampling.
func WithClock(c game.Clock) Option {
	return func(o *options) {
		o.clock = c
		o.now = c.Now
	}
}

// WithSeedSource sets where fresh level seeds come from.
func WithSeedSource(fn func() int64) Option { return func(o *options) { o.seedSource = fn } }

// WithSpawnSource sets the entropy for obstacle phases and speeds.
func WithSpawnSource(src rand.Source) Option { return func(o *options) { o.spawnSrc = src } }

func WithLogger(log *zap.Logger) Option { return func(o *options) { o.log = log } }

// Session owns every piece of one running course.
type Session struct {
	State      *game.State
	Bus        *event.Bus
	Physics    physics.World
	Registry   *obstacle.Registry
	Course     *system.Course
	Controller *player.Controller
	Follow     *camera.Follow
	Frame      *system.Frame

	runner  *coresys.Runner
	level   *system.LevelSystem
	record  *system.RecordSystem
	clock   game.Clock
	runSeed int64 // seed of the run in progress
	log     *zap.Logger
}

func New(set Settings, opts ...Option) (*Session, error) {
	o := options{log: zap.NewNop(), clock: game.SystemClock{}, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if o.phys == nil {
		o.phys = physics.NewArcade()
	}
	if o.reg == nil {
		reg, err := obstacle.NewBuiltinRegistry(data.DefaultObstacleTable())
		if err != nil {
			return nil, fmt.Errorf("builtin obstacles: %w", err)
		}
		o.reg = reg
	}
	if o.reg.Len() == 0 {
		return nil, fmt.Errorf("obstacle registry is empty")
	}
	if set.SegmentLength <= 0 {
		set.SegmentLength = level.DefaultSegmentLength
	}
	set.Player.SegmentLength = set.SegmentLength

	stateOpts := []game.Option{game.WithClock(o.clock), game.WithLogger(o.log)}
	if o.seedSource != nil {
		stateOpts = append(stateOpts, game.WithSeedSource(o.seedSource))
	}
	if set.SeedPhrase != "" {
		stateOpts = append(stateOpts, game.WithSeed(level.SeedFromPhrase(set.SeedPhrase)))
	}

	s := &Session{
		State:    game.NewState(set.BlocksCount, stateOpts...),
		Bus:      event.NewBus(),
		Physics:  o.phys,
		Registry: o.reg,
		Course:   system.NewCourse(),
		Follow:   camera.NewFollow(set.Camera),
		Frame:    &system.Frame{},
		runner:   coresys.NewRunner(),
		clock:    o.clock,
		log:      o.log,
	}
	s.State.OnTransition(s.emitTransition)
	s.Controller = player.New(s.Physics, s.State, set.Player, o.log.Named("player"))

	cache := level.NewCache(s.Registry.Kinds)
	spawner := obstacle.NewSpawner(s.Registry, o.spawnSrc)
	s.level = system.NewLevelSystem(s.State, cache, s.Registry, spawner, s.Physics, s.Course, s.Bus, s.Frame, set.SegmentLength, o.log.Named("level"))
	cleanup := system.NewCleanupSystem(s.Course.World, s.Course.Bodies, s.Physics)

	s.runner.Register(system.NewInputSystem(o.input, s.Frame, s.State, o.now))
	s.runner.Register(system.NewEventDispatchSystem(s.Bus))
	s.runner.Register(system.NewPhysicsSystem(s.Physics))
	s.runner.Register(system.NewObstacleSystem(s.Registry, s.Physics, s.Course.Movers, s.Course.Bodies, s.Frame))
	s.runner.Register(system.NewControllerSystem(s.Controller, s.Frame))
	s.runner.Register(system.NewCameraSystem(s.Follow, o.cam, s.Controller.Position))
	if o.store != nil {
		s.record = system.NewRecordSystem(s.Bus, o.store, set.RetryTicks, o.log.Named("record"))
		s.runner.Register(s.record)
	}
	s.runner.Register(s.level)
	s.runner.Register(cleanup)

	event.Subscribe(s.Bus, s.logRunFinished)
	event.Subscribe(s.Bus, s.logRunFailed)

	// Build the first course before the first physics step.
	s.runner.TickPhase(coresys.PhaseCleanup, 0)
	s.log.Debug("session ready", zap.Int("systems", s.runner.Len()), zap.Int("builds", s.level.Builds()))
	return s, nil
}

// Tick advances the session by one frame of length dt.
func (s *Session) Tick(dt time.Duration) {
	s.Frame.Advance(dt)
	s.runner.Tick(dt)
}

// Level returns the course currently built.
func (s *Session) Level() *level.Level { return s.level.Level() }

// Layout returns the geometry of the current course.
func (s *Session) Layout() level.Layout { return s.level.Layout() }

// Builds counts course builds since the session started.
func (s *Session) Builds() int { return s.level.Builds() }

// Position returns the marble's translation.
func (s *Session) Position() mgl32.Vec3 { return s.Controller.Position() }

// Shutdown writes pending run records.
func (s *Session) Shutdown(ctx context.Context) {
	if s.record != nil {
		s.record.Flush(ctx)
	}
}

func (s *Session) emitTransition(from, to game.Phase, snap game.Snapshot) {
	event.Emit(s.Bus, event.PhaseChanged{From: from, To: to, Count: snap.BlocksCount, Seed: snap.BlocksSeed})
	switch {
	case to == game.PhasePlaying:
		s.runSeed = snap.BlocksSeed
	case to == game.PhaseEnded:
		event.Emit(s.Bus, event.RunFinished{
			Count:      snap.BlocksCount,
			Seed:       snap.BlocksSeed,
			Duration:   snap.EndTime.Sub(snap.StartTime),
			FinishedAt: snap.EndTime,
		})
	case from == game.PhasePlaying && to == game.PhaseReady:
		event.Emit(s.Bus, event.RunFailed{
			Count:    snap.BlocksCount,
			Seed:     s.runSeed,
			Duration: s.clock.Now().Sub(snap.StartTime),
		})
	}
}

func (s *Session) logRunFinished(e event.RunFinished) {
	s.log.Info("run finished",
		zap.Int("blocks_count", e.Count),
		zap.Int64("blocks_seed", e.Seed),
		zap.Duration("duration", e.Duration),
	)
}

func (s *Session) logRunFailed(e event.RunFailed) {
	s.log.Info("run failed",
		zap.Int("blocks_count", e.Count),
		zap.Duration("after", e.Duration),
	)
}
