package system

import (
	"time"

	coresys "github.com/marblerace/course/internal/core/system"
	"github.com/marblerace/course/internal/game"
	"github.com/marblerace/course/internal/player"
)

// InputSource produces the control snapshot for a tick.
type InputSource interface {
	Snapshot(now time.Time) player.Input
}

// RestartSource is implemented by sources that expose a restart request.
type RestartSource interface {
	TakeRestart() bool
}

// InputSystem samples the input source into the frame. Phase 0 (Input).
type InputSystem struct {
	src   InputSource
	frame *Frame
	state *game.State
	now   func() time.Time
}

func NewInputSystem(src InputSource, frame *Frame, state *game.State, now func() time.Time) *InputSystem {
	if now == nil {
		now = time.Now
	}
	return &InputSystem{src: src, frame: frame, state: state, now: now}
}

func (s *InputSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *InputSystem) Update(_ time.Duration) {
	if s.src == nil {
		s.frame.Input = player.Input{}
		return
	}
	s.frame.Input = s.src.Snapshot(s.now())
	if r, ok := s.src.(RestartSource); ok && r.TakeRestart() && s.state.Restart() {
		s.frame.Input.Any = false
	}
}
