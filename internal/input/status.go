package input

import (
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/marblerace/course/internal/game"
)

var (
	styleStatus = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	stylePhase  = map[game.Phase]tcell.Style{
		game.PhaseReady:   tcell.StyleDefault.Foreground(tcell.ColorYellow),
		game.PhasePlaying: tcell.StyleDefault.Foreground(tcell.ColorGreen),
		game.PhaseEnded:   tcell.StyleDefault.Foreground(tcell.ColorBlue),
	}
)

// StatusLine formats the one-line HUD.
func StatusLine(snap game.Snapshot, elapsed time.Duration, pos mgl32.Vec3) string {
	return fmt.Sprintf("%-7s %6.2fs  blocks=%d  pos=(%5.2f %5.2f %6.2f)",
		snap.Phase, elapsed.Seconds(), snap.BlocksCount, pos.X(), pos.Y(), pos.Z())
}

// DrawStatus clears row y of screen and writes the status line on it.
func DrawStatus(screen tcell.Screen, y int, snap game.Snapshot, elapsed time.Duration, pos mgl32.Vec3) {
	w, _ := screen.Size()
	for x := 0; x < w; x++ {
		screen.SetContent(x, y, ' ', nil, styleStatus)
	}
	style, ok := stylePhase[snap.Phase]
	if !ok {
		style = styleStatus
	}
	line := StatusLine(snap, elapsed, pos)
	for x, r := range []rune(line) {
		if x >= w {
			break
		}
		if x >= len(snap.Phase.String()) {
			style = styleStatus
		}
		screen.SetContent(x, y, r, nil, style)
	}
}
