package system

import (
	"time"

	"github.com/marblerace/course/internal/player"
)

// Frame carries per-tick values between systems of one runner.
type Frame struct {
	Input player.Input
	Time  float32 // simulation seconds since the session started
	Delta float32
	Ticks uint64
}

// Advance moves simulation time forward by dt.
func (f *Frame) Advance(dt time.Duration) {
	f.Delta = float32(dt.Seconds())
	f.Time += f.Delta
	f.Ticks++
}
