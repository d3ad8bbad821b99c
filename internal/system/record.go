package system

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/marblerace/course/internal/core/event"
	coresys "github.com/marblerace/course/internal/core/system"
	"github.com/marblerace/course/internal/persist"
)

// RunStore persists finished runs.
type RunStore interface {
	InsertBatch(ctx context.Context, runs []persist.Run) error
}

const (
	maxPendingRuns  = 64
	maxRetryBackoff = 64 // multiples of the retry interval
)

// RecordSystem buffers RunFinished events and hands them to a background
// writer, one batch at a time. The frame never waits on the store: results
// are picked up on a later tick. After a failed write the batch goes back
// to the queue and the next attempt waits retryTicks, doubling on every
// further failure. Phase 6 (Persist).
type RecordSystem struct {
	store      RunStore
	log        *zap.Logger
	timeout    time.Duration
	retryTicks int
	backoff    int // ticks to wait after the next failure
	wait       int // ticks left before the next attempt
	pending    []persist.Run
	inflight   []persist.Run // owned by the writer goroutine until done fires
	done       chan error
	written    int
}

func NewRecordSystem(bus *event.Bus, store RunStore, retryTicks int, log *zap.Logger) *RecordSystem {
	if retryTicks < 1 {
		retryTicks = 1
	}
	s := &RecordSystem{
		store:      store,
		log:        log,
		timeout:    5 * time.Second,
		retryTicks: retryTicks,
		backoff:    retryTicks,
		done:       make(chan error, 1),
	}
	event.Subscribe(bus, s.onRunFinished)
	return s
}

func (s *RecordSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *RecordSystem) onRunFinished(e event.RunFinished) {
	s.pending = append(s.pending, persist.Run{
		BlocksCount: e.Count,
		BlocksSeed:  e.Seed,
		Duration:    e.Duration,
		FinishedAt:  e.FinishedAt,
	})
	s.trim()
}

// trim drops the oldest queued runs beyond maxPendingRuns.
func (s *RecordSystem) trim() {
	if over := len(s.pending) - maxPendingRuns; over > 0 {
		s.log.Warn("dropping oldest unsaved runs", zap.Int("dropped", over))
		s.pending = s.pending[over:]
	}
}

func (s *RecordSystem) Update(_ time.Duration) {
	select {
	case err := <-s.done:
		s.finish(err)
	default:
	}
	if s.inflight != nil || len(s.pending) == 0 {
		return
	}
	if s.wait > 0 {
		s.wait--
		return
	}
	s.start()
}

func (s *RecordSystem) start() {
	batch := s.pending
	s.pending = nil
	s.inflight = batch
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		s.done <- s.store.InsertBatch(ctx, batch)
	}()
}

func (s *RecordSystem) finish(err error) {
	batch := s.inflight
	s.inflight = nil
	if err != nil {
		s.pending = append(batch, s.pending...)
		s.trim()
		s.wait = s.backoff
		if s.backoff < s.retryTicks*maxRetryBackoff {
			s.backoff *= 2
		}
		s.log.Error("record runs",
			zap.Int("pending", len(s.pending)),
			zap.Int("retry_in_ticks", s.wait),
			zap.Error(err),
		)
		return
	}
	s.backoff = s.retryTicks
	s.written += len(batch)
	s.log.Info("runs recorded", zap.Int("count", len(batch)), zap.Int("total", s.written))
}

// Flush waits for the write in flight, then writes what is left. Called for
// graceful shutdown.
func (s *RecordSystem) Flush(ctx context.Context) {
	if s.inflight != nil {
		select {
		case err := <-s.done:
			s.finish(err)
		case <-ctx.Done():
			s.log.Warn("shutdown before runs were recorded", zap.Int("unsaved", s.Pending()))
			return
		}
	}
	if len(s.pending) == 0 {
		return
	}
	batch := s.pending
	if err := s.store.InsertBatch(ctx, batch); err != nil {
		s.log.Error("record runs", zap.Int("pending", len(batch)), zap.Error(err))
		return
	}
	s.pending = nil
	s.written += len(batch)
	s.log.Info("runs recorded", zap.Int("count", len(batch)), zap.Int("total", s.written))
}

// Pending returns how many runs are not yet stored, including the batch
// being written.
func (s *RecordSystem) Pending() int { return len(s.pending) + len(s.inflight) }
