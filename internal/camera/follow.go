// Package camera computes a smoothed chase camera behind the marble.
package camera

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Camera is anything that can be placed and aimed, such as a renderer's
// perspective camera.
type Camera interface {
	SetPosition(pos mgl32.Vec3)
	LookAt(target mgl32.Vec3)
}

// Settings describe where the camera sits relative to the marble.
type Settings struct {
	Smoothing float32 // lerp rate per second
	OffsetY   float32
	OffsetZ   float32
	TargetY   float32
}

func DefaultSettings() Settings {
	return Settings{Smoothing: 5, OffsetY: 0.65, OffsetZ: 2.25, TargetY: 0.25}
}

// Follow carries the smoothed camera state between frames. It starts far
// above the course so the first frames sweep in toward the marble.
type Follow struct {
	cfg    Settings
	pos    mgl32.Vec3
	target mgl32.Vec3
}

func NewFollow(cfg Settings) *Follow {
	return &Follow{cfg: cfg, pos: mgl32.Vec3{10, 10, 10}}
}

// Desired returns the unsmoothed camera position and target for body.
func (f *Follow) Desired(body mgl32.Vec3) (pos, target mgl32.Vec3) {
	pos = body.Add(mgl32.Vec3{0, f.cfg.OffsetY, f.cfg.OffsetZ})
	target = body.Add(mgl32.Vec3{0, f.cfg.TargetY, 0})
	return pos, target
}

// Update moves the smoothed position and target toward the desired ones by
// a factor of Smoothing*dt, clamped to [0,1].
func (f *Follow) Update(body mgl32.Vec3, dt float32) (pos, target mgl32.Vec3) {
	wantPos, wantTarget := f.Desired(body)
	a := math32.Max(0, math32.Min(f.cfg.Smoothing*dt, 1))
	f.pos = lerp(f.pos, wantPos, a)
	f.target = lerp(f.target, wantTarget, a)
	return f.pos, f.target
}

// Apply runs Update and pushes the result to cam.
func (f *Follow) Apply(cam Camera, body mgl32.Vec3, dt float32) {
	pos, target := f.Update(body, dt)
	cam.SetPosition(pos)
	cam.LookAt(target)
}

// Position returns the current smoothed position and target.
func (f *Follow) Position() (pos, target mgl32.Vec3) { return f.pos, f.target }

func lerp(a, b mgl32.Vec3, t float32) mgl32.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}
