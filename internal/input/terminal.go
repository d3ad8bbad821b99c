// Package input turns terminal key events into per-tick control snapshots.
package input

import (
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/marblerace/course/internal/player"
)

// DefaultHold is how long a key counts as held after its last event.
// Terminals report presses and auto-repeat, never releases.
const DefaultHold = 150 * time.Millisecond

type control int

const (
	ctrlForward control = iota
	ctrlBackward
	ctrlLeft
	ctrlRight
	ctrlJump
	numControls
)

// Terminal collects key events from a tcell screen. HandleEvent may run on
// the polling goroutine while the frame loop calls Snapshot.
type Terminal struct {
	mu      sync.Mutex
	hold    time.Duration
	last    [numControls]time.Time
	pressed bool
	restart bool
	quit    bool
}

func NewTerminal(hold time.Duration) *Terminal {
	if hold <= 0 {
		hold = DefaultHold
	}
	return &Terminal{hold: hold}
}

// HandleEvent records a key event received at now. Non-key events are
// ignored.
func (t *Terminal) HandleEvent(ev tcell.Event, now time.Time) {
	kev, ok := ev.(*tcell.EventKey)
	if !ok {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	switch kev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		t.quit = true
		return
	case tcell.KeyUp:
		t.press(ctrlForward, now)
	case tcell.KeyDown:
		t.press(ctrlBackward, now)
	case tcell.KeyLeft:
		t.press(ctrlLeft, now)
	case tcell.KeyRight:
		t.press(ctrlRight, now)
	case tcell.KeyRune:
		switch kev.Rune() {
		case 'w', 'W':
			t.press(ctrlForward, now)
		case 's', 'S':
			t.press(ctrlBackward, now)
		case 'a', 'A':
			t.press(ctrlLeft, now)
		case 'd', 'D':
			t.press(ctrlRight, now)
		case ' ':
			t.press(ctrlJump, now)
		case 'r', 'R':
			// Restart returns to Ready; it must not count as the key that starts the next run.
			t.restart = true
			return
		}
	}
	t.pressed = true
}

func (t *Terminal) press(c control, now time.Time) {
	t.last[c] = now
}

func (t *Terminal) held(c control, now time.Time) bool {
	at := t.last[c]
	return !at.IsZero() && now.Sub(at) <= t.hold
}

// Snapshot returns the controls held at now. Any is set once per batch of
// key events and cleared by the call.
func (t *Terminal) Snapshot(now time.Time) player.Input {
	t.mu.Lock()
	defer t.mu.Unlock()
	in := player.Input{
		Forward:  t.held(ctrlForward, now),
		Backward: t.held(ctrlBackward, now),
		Left:     t.held(ctrlLeft, now),
		Right:    t.held(ctrlRight, now),
		Jump:     t.held(ctrlJump, now),
		Any:      t.pressed,
	}
	t.pressed = false
	return in
}

// TakeRestart reports and clears a pending restart request.
func (t *Terminal) TakeRestart() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	r := t.restart
	t.restart = false
	return r
}

// Quit reports whether the user asked to leave.
func (t *Terminal) Quit() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.quit
}

// Pump feeds screen events into t until the screen is finalized.
func (t *Terminal) Pump(screen tcell.Screen, now func() time.Time) {
	for {
		ev := screen.PollEvent()
		if ev == nil {
			return
		}
		t.HandleEvent(ev, now())
	}
}
