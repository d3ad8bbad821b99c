package input

import (
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/marblerace/course/internal/game"
	"github.com/marblerace/course/internal/player"
)

func newScreen(t *testing.T) tcell.SimulationScreen {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("init screen: %v", err)
	}
	screen.SetSize(80, 4)
	t.Cleanup(screen.Fini)
	return screen
}

func inject(t *testing.T, screen tcell.SimulationScreen, term *Terminal, now time.Time, key tcell.Key, r rune) {
	t.Helper()
	screen.InjectKey(key, r, tcell.ModNone)
	for {
		ev := screen.PollEvent()
		if _, ok := ev.(*tcell.EventKey); ok {
			term.HandleEvent(ev, now)
			return
		}
	}
}

func TestKeyBindings(t *testing.T) {
	tests := []struct {
		name string
		key  tcell.Key
		r    rune
		want player.Input
	}{
		{"arrow up", tcell.KeyUp, 0, player.Input{Forward: true, Any: true}},
		{"arrow down", tcell.KeyDown, 0, player.Input{Backward: true, Any: true}},
		{"arrow left", tcell.KeyLeft, 0, player.Input{Left: true, Any: true}},
		{"arrow right", tcell.KeyRight, 0, player.Input{Right: true, Any: true}},
		{"w", tcell.KeyRune, 'w', player.Input{Forward: true, Any: true}},
		{"s", tcell.KeyRune, 's', player.Input{Backward: true, Any: true}},
		{"a", tcell.KeyRune, 'a', player.Input{Left: true, Any: true}},
		{"d", tcell.KeyRune, 'd', player.Input{Right: true, Any: true}},
		{"space", tcell.KeyRune, ' ', player.Input{Jump: true, Any: true}},
		{"unbound key still starts", tcell.KeyRune, 'x', player.Input{Any: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			screen := newScreen(t)
			term := NewTerminal(DefaultHold)
			now := time.Unix(100, 0)
			inject(t, screen, term, now, tt.key, tt.r)
			if got := term.Snapshot(now); got != tt.want {
				t.Fatalf("Snapshot = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestHoldWindow(t *testing.T) {
	screen := newScreen(t)
	term := NewTerminal(100 * time.Millisecond)
	now := time.Unix(100, 0)
	inject(t, screen, term, now, tcell.KeyUp, 0)

	if in := term.Snapshot(now); !in.Forward || !in.Any {
		t.Fatalf("first snapshot = %+v", in)
	}
	in := term.Snapshot(now.Add(50 * time.Millisecond))
	if !in.Forward {
		t.Fatal("key released inside the hold window")
	}
	if in.Any {
		t.Fatal("Any must fire once per press")
	}
	if in := term.Snapshot(now.Add(101 * time.Millisecond)); in.Forward {
		t.Fatal("key still held after the hold window")
	}
}

func TestQuitAndRestart(t *testing.T) {
	screen := newScreen(t)
	term := NewTerminal(0)
	now := time.Unix(100, 0)

	inject(t, screen, term, now, tcell.KeyRune, 'r')
	if !term.TakeRestart() {
		t.Fatal("restart not requested")
	}
	if term.TakeRestart() {
		t.Fatal("restart request not cleared")
	}
	if in := term.Snapshot(now); in.Any {
		t.Fatal("restart key reported as any-key input")
	}
	if term.Quit() {
		t.Fatal("quit before escape")
	}
	inject(t, screen, term, now, tcell.KeyEscape, 0)
	if !term.Quit() {
		t.Fatal("escape should quit")
	}
}

func TestPumpStopsOnFini(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatal(err)
	}
	term := NewTerminal(time.Second)
	done := make(chan struct{})
	go func() {
		term.Pump(screen, time.Now)
		close(done)
	}()
	screen.InjectKey(tcell.KeyEscape, 0, tcell.ModNone)
	deadline := time.After(2 * time.Second)
	for !term.Quit() {
		select {
		case <-deadline:
			t.Fatal("pumped event never arrived")
		case <-time.After(5 * time.Millisecond):
		}
	}
	screen.Fini()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Pump did not return after Fini")
	}
}

func TestDrawStatus(t *testing.T) {
	screen := newScreen(t)
	snap := game.Snapshot{Phase: game.PhasePlaying, BlocksCount: 5}
	DrawStatus(screen, 1, snap, 1500*time.Millisecond, mgl32.Vec3{0, 0.3, -4})

	var b strings.Builder
	for x := 0; x < 80; x++ {
		r, _, _, _ := screen.GetContent(x, 1)
		b.WriteRune(r)
	}
	line := strings.TrimRight(b.String(), " ")
	want := StatusLine(snap, 1500*time.Millisecond, mgl32.Vec3{0, 0.3, -4})
	if line != want {
		t.Fatalf("row = %q, want %q", line, want)
	}
	if !strings.HasPrefix(line, "playing") || !strings.Contains(line, "1.50s") {
		t.Fatalf("unexpected status %q", line)
	}
}
