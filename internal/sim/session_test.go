package sim

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/chewxy/math32"
	"github.com/gdamore/tcell/v2"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap/zaptest"

	"github.com/marblerace/course/internal/config"
	"github.com/marblerace/course/internal/core/event"
	"github.com/marblerace/course/internal/game"
	"github.com/marblerace/course/internal/input"
	"github.com/marblerace/course/internal/persist"
	"github.com/marblerace/course/internal/player"
)

const tick = time.Second / 60

type stepClock struct{ t time.Time }

func (c *stepClock) Now() time.Time { return c.t }

type holdForward struct{ ticks int }

func (h *holdForward) Snapshot(time.Time) player.Input {
	h.ticks++
	return player.Input{Forward: true, Any: h.ticks == 1}
}

type memStore struct{ runs []persist.Run }

func (m *memStore) InsertBatch(_ context.Context, runs []persist.Run) error {
	m.runs = append(m.runs, runs...)
	return nil
}

func newSession(t *testing.T, count int, opts ...Option) (*Session, *stepClock) {
	t.Helper()
	clock := &stepClock{t: time.Unix(1700000000, 0)}
	set := DefaultSettings()
	set.BlocksCount = count
	base := []Option{
		WithClock(clock),
		WithLogger(zaptest.NewLogger(t)),
		WithSeedSource(rand.New(rand.NewSource(11)).Int63),
		WithSpawnSource(rand.NewSource(12)),
	}
	s, err := New(set, append(base, opts...)...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s, clock
}

func (c *stepClock) run(s *Session, n int, until func() bool) int {
	for i := 0; i < n; i++ {
		c.t = c.t.Add(tick)
		s.Tick(tick)
		if until != nil && until() {
			return i + 1
		}
	}
	return n
}

func TestFirstCourseBuiltOnNew(t *testing.T) {
	s, _ := newSession(t, 4)
	if s.Builds() != 1 || s.Level() == nil || len(s.Level().Kinds) != 4 {
		t.Fatalf("builds = %d level = %+v", s.Builds(), s.Level())
	}
	if s.Course.Movers.Len() != 4 {
		t.Fatalf("movers = %d", s.Course.Movers.Len())
	}
}

func TestMarbleSettlesAtSpawn(t *testing.T) {
	s, clock := newSession(t, 2)
	clock.run(s, 120, nil)

	pos := s.Position()
	if math32.Abs(pos.Y()-0.3) > 0.02 || math32.Abs(pos.Z()) > 0.05 {
		t.Fatalf("idle marble at %v", pos)
	}
	if s.State.Phase() != game.PhaseReady {
		t.Fatalf("phase = %v without input", s.State.Phase())
	}
}

func TestRollToFinish(t *testing.T) {
	store := &memStore{}
	s, clock := newSession(t, 0, WithInput(&holdForward{}), WithRunStore(store))

	var finished []event.RunFinished
	event.Subscribe(s.Bus, func(e event.RunFinished) { finished = append(finished, e) })

	n := clock.run(s, 600, func() bool { return s.State.Phase() == game.PhaseEnded })
	if s.State.Phase() != game.PhaseEnded {
		t.Fatalf("marble never finished; at %v", s.Position())
	}
	if z := s.Position().Z(); z >= -2 {
		t.Fatalf("ended at z=%v, before the finish line", z)
	}
	if n < 10 {
		t.Fatalf("finished after only %d ticks", n)
	}

	clock.run(s, 30, nil)
	if s.State.Phase() != game.PhaseEnded {
		t.Fatalf("phase = %v after finishing", s.State.Phase())
	}
	s.Shutdown(context.Background())
	if len(finished) != 1 || len(store.runs) != 1 {
		t.Fatalf("finished events = %d stored runs = %d, want 1 each", len(finished), len(store.runs))
	}
	want := time.Duration(n-1) * tick
	if d := store.runs[0].Duration; d != want {
		t.Fatalf("stored duration = %v, want %v", d, want)
	}
}

func TestFallRestarts(t *testing.T) {
	s, clock := newSession(t, 2)
	s.State.Start()
	seed := s.State.BlocksSeed()

	var failed []event.RunFailed
	event.Subscribe(s.Bus, func(e event.RunFailed) { failed = append(failed, e) })

	s.Physics.SetTranslation(s.Controller.Body(), mgl32.Vec3{0.5, -4.5, -3})
	clock.run(s, 1, nil)

	if s.State.Phase() != game.PhaseReady {
		t.Fatalf("phase = %v, want ready", s.State.Phase())
	}
	if s.State.BlocksSeed() == seed {
		t.Fatal("fall kept the seed")
	}
	if s.Position() != (mgl32.Vec3{0, 1, 0}) {
		t.Fatalf("marble not reset: %v", s.Position())
	}
	if s.Physics.Linvel(s.Controller.Body()) != (mgl32.Vec3{}) {
		t.Fatal("velocity not cleared")
	}
	if s.Builds() != 2 || s.Level().Seed != s.State.BlocksSeed() {
		t.Fatalf("course not rebuilt: builds = %d", s.Builds())
	}

	clock.run(s, 1, nil)
	if len(failed) != 1 || failed[0].Seed != seed {
		t.Fatalf("failed events = %+v, want one for seed %d", failed, seed)
	}
}

func TestTeleportPastFinishEndsOnce(t *testing.T) {
	s, clock := newSession(t, 5)
	var ends int
	s.State.OnTransition(func(_, to game.Phase, _ game.Snapshot) {
		if to == game.PhaseEnded {
			ends++
		}
	})
	s.State.Start()
	s.Physics.SetTranslation(s.Controller.Body(), mgl32.Vec3{0, 0.3, -22.5})
	clock.run(s, 5, nil)
	if s.State.Phase() != game.PhaseEnded || ends != 1 {
		t.Fatalf("phase = %v ends = %d", s.State.Phase(), ends)
	}
}

func TestSeedPhraseReproducesCourse(t *testing.T) {
	build := func() []string {
		set := DefaultSettings()
		set.SeedPhrase = "sunday cup"
		s, err := New(set, WithLogger(zaptest.NewLogger(t)))
		if err != nil {
			t.Fatal(err)
		}
		out := make([]string, 0, len(s.Level().Kinds))
		for _, k := range s.Level().Kinds {
			out = append(out, string(k))
		}
		return out
	}
	a, b := build(), build()
	if len(a) != 10 {
		t.Fatalf("kinds = %v", a)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("seed phrase gave different courses: %v vs %v", a, b)
		}
	}
}

func TestCameraFollowsMarble(t *testing.T) {
	s, clock := newSession(t, 1)
	clock.run(s, 240, nil)
	pos, target := s.Follow.Position()
	wantPos, wantTarget := s.Follow.Desired(s.Position())
	if pos.Sub(wantPos).Len() > 0.01 || target.Sub(wantTarget).Len() > 0.01 {
		t.Fatalf("camera %v -> %v, want %v -> %v", pos, target, wantPos, wantTarget)
	}
}

func TestSettingsFromConfig(t *testing.T) {
	cfg := &config.Config{}
	cfg.Game.BlocksCount = 7
	cfg.Game.SegmentLength = 5
	cfg.Game.SeedPhrase = "x"
	cfg.Player.Impulse = 1
	cfg.Player.FallThreshold = -6
	cfg.Camera.Smoothing = 3
	cfg.Game.TickRate = 10 * time.Millisecond
	cfg.Database.RetryInterval = 2 * time.Second

	set := SettingsFromConfig(cfg)
	if set.BlocksCount != 7 || set.SegmentLength != 5 || set.SeedPhrase != "x" {
		t.Fatalf("game settings = %+v", set)
	}
	if set.Player.Impulse != 1 || set.Player.FallThreshold != -6 || set.Player.SegmentLength != 5 {
		t.Fatalf("player = %+v", set.Player)
	}
	if set.Player.Radius != 0.3 {
		t.Fatal("body tuning lost")
	}
	if set.Camera.Smoothing != 3 {
		t.Fatalf("camera = %+v", set.Camera)
	}
	if set.RetryTicks != 200 {
		t.Fatalf("retry ticks = %d, want 200", set.RetryTicks)
	}
}

func TestRestartKeyLeavesCourseReady(t *testing.T) {
	term := input.NewTerminal(0)
	s, clock := newSession(t, 2, WithInput(term))

	term.HandleEvent(tcell.NewEventKey(tcell.KeyUp, 0, tcell.ModNone), clock.t)
	clock.run(s, 5, nil)
	if s.State.Phase() != game.PhasePlaying {
		t.Fatalf("phase = %v after the first key", s.State.Phase())
	}

	term.HandleEvent(tcell.NewEventKey(tcell.KeyRune, 'r', tcell.ModNone), clock.t)
	clock.run(s, 1, nil)
	if s.State.Phase() != game.PhaseReady {
		t.Fatalf("phase = %v after r", s.State.Phase())
	}

	clock.run(s, 30, nil)
	if s.State.Phase() != game.PhaseReady || s.State.Elapsed() != 0 {
		t.Fatalf("idle after restart: phase = %v elapsed = %v", s.State.Phase(), s.State.Elapsed())
	}

	term.HandleEvent(tcell.NewEventKey(tcell.KeyRune, 'w', tcell.ModNone), clock.t)
	clock.run(s, 1, nil)
	if s.State.Phase() != game.PhasePlaying {
		t.Fatalf("phase = %v after the next key", s.State.Phase())
	}
}
