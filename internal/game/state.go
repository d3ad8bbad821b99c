package game

import (
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Snapshot is a consistent copy of the run state, as read by the HUD.
type Snapshot struct {
	Phase       Phase
	StartTime   time.Time
	EndTime     time.Time
	BlocksCount int
	BlocksSeed  int64
}

// State is the process-wide run state. Start, End and Restart are its only
// phase mutators; each is idempotent and serialized by mu. Hooks run after
// the lock is released, in registration order.
type State struct {
	mu sync.Mutex

	phase       Phase
	startTime   time.Time
	endTime     time.Time
	blocksCount int
	blocksSeed  int64
	seedSet     bool

	clock   Clock
	newSeed func() int64
	log     *zap.Logger

	hooksMu      sync.Mutex
	onReady      []func(Snapshot)
	onTransition []func(from, to Phase, s Snapshot)
}

// Option configures a State.
type Option func(*State)

// WithClock overrides the wall clock used for start/end timestamps.
func WithClock(c Clock) Option { return func(s *State) { s.clock = c } }

// WithSeedSource overrides the random source drawing fresh level seeds.
func WithSeedSource(fn func() int64) Option { return func(s *State) { s.newSeed = fn } }

// WithSeed fixes the initial level seed.
func WithSeed(seed int64) Option {
	return func(s *State) { s.blocksSeed, s.seedSet = seed, true }
}

// WithLogger attaches a logger for transition records.
func WithLogger(log *zap.Logger) Option { return func(s *State) { s.log = log } }

// NewState creates a Ready state for a course of count obstacle segments.
// Negative counts are clamped to zero.
func NewState(count int, opts ...Option) *State {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	s := &State{
		phase:       PhaseReady,
		blocksCount: clampCount(count),
		clock:       SystemClock{},
		newSeed:     rng.Int63,
		log:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if !s.seedSet {
		s.blocksSeed = s.newSeed()
	}
	return s
}

func clampCount(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

// OnEnterReady registers fn to run synchronously, exactly once, every time
// the state re-enters Ready through Restart.
func (s *State) OnEnterReady(fn func(Snapshot)) {
	s.hooksMu.Lock()
	s.onReady = append(s.onReady, fn)
	s.hooksMu.Unlock()
}

// OnTransition registers an observer for every accepted transition.
func (s *State) OnTransition(fn func(from, to Phase, snap Snapshot)) {
	s.hooksMu.Lock()
	s.onTransition = append(s.onTransition, fn)
	s.hooksMu.Unlock()
}

// Start moves Ready→Playing and records the start time.
// It reports whether the transition happened.
func (s *State) Start() bool {
	return s.transition(PhaseReady, func() {
		s.startTime = s.clock.Now()
		s.endTime = time.Time{}
	})
}

// End moves Playing→Ended and records the end time.
func (s *State) End() bool {
	return s.transition(PhasePlaying, func() {
		s.endTime = s.clock.Now()
	})
}

// Restart moves Playing or Ended back to Ready and draws a new level seed.
// The obstacle count is kept.
func (s *State) Restart() bool {
	s.mu.Lock()
	from := s.phase
	if from == PhaseReady {
		s.mu.Unlock()
		return false
	}
	s.blocksSeed = s.drawSeedLocked()
	s.phase = PhaseReady
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(from, PhaseReady, snap)
	return true
}

// drawSeedLocked returns a seed different from the current one.
func (s *State) drawSeedLocked() int64 {
	prev := s.blocksSeed
	seed := s.newSeed()
	for i := 0; seed == prev && i < 8; i++ {
		seed = s.newSeed()
	}
	if seed == prev {
		seed = prev + 1
	}
	return seed
}

func (s *State) transition(from Phase, apply func()) bool {
	s.mu.Lock()
	if s.phase != from {
		s.mu.Unlock()
		return false
	}
	to := from.next()
	apply()
	s.phase = to
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(from, to, snap)
	return true
}

func (s *State) notify(from, to Phase, snap Snapshot) {
	s.log.Info("phase transition",
		zap.Stringer("from", from),
		zap.Stringer("to", to),
		zap.Int("blocks_count", snap.BlocksCount),
		zap.Int64("blocks_seed", snap.BlocksSeed),
	)

	s.hooksMu.Lock()
	ready := append(([]func(Snapshot))(nil), s.onReady...)
	observers := append(([]func(Phase, Phase, Snapshot))(nil), s.onTransition...)
	s.hooksMu.Unlock()

	if to == PhaseReady {
		for _, fn := range ready {
			fn(snap)
		}
	}
	for _, fn := range observers {
		fn(from, to, snap)
	}
}

// SetBlocksCount reconfigures the obstacle count. Only allowed while Ready so
// the course never changes under a running timer.
func (s *State) SetBlocksCount(n int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseReady {
		return false
	}
	s.blocksCount = clampCount(n)
	return true
}

// Elapsed returns the run time: zero while Ready, running while Playing,
// frozen at end−start once Ended.
func (s *State) Elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.phase {
	case PhasePlaying:
		return s.clock.Now().Sub(s.startTime)
	case PhaseEnded:
		return s.endTime.Sub(s.startTime)
	}
	return 0
}

func (s *State) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

func (s *State) BlocksCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.blocksCount
}

func (s *State) BlocksSeed() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.blocksSeed
}

func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *State) snapshotLocked() Snapshot {
	return Snapshot{
		Phase:       s.phase,
		StartTime:   s.startTime,
		EndTime:     s.endTime,
		BlocksCount: s.blocksCount,
		BlocksSeed:  s.blocksSeed,
	}
}
