package system

import (
	"time"

	coresys "github.com/marblerace/course/internal/core/system"
	"github.com/marblerace/course/internal/player"
)

// ControllerSystem feeds the frame's input to the marble controller.
// Phase 4 (Control).
type ControllerSystem struct {
	ctrl  *player.Controller
	frame *Frame
}

func NewControllerSystem(ctrl *player.Controller, frame *Frame) *ControllerSystem {
	return &ControllerSystem{ctrl: ctrl, frame: frame}
}

func (s *ControllerSystem) Phase() coresys.Phase { return coresys.PhaseControl }

func (s *ControllerSystem) Update(dt time.Duration) {
	s.ctrl.Update(float32(dt.Seconds()), s.frame.Input)
}
