// Package obstacle computes the kinematic targets of moving obstacles.
//
// A pattern is a pure function of simulation time and the instance's fixed
// parameters. Patterns never read the player; the only coupling is the
// physics engine colliding the marble against the kinematic body.
package obstacle

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/marblerace/course/internal/data"
	"github.com/marblerace/course/internal/level"
)

var up = mgl32.Vec3{0, 1, 0}

// Params is the per-kind tuning shared by every instance of a kind.
type Params struct {
	Amplitude    float32
	VerticalBias float32
	Height       float32
	SpeedMin     float32
	SpeedSpan    float32
	HalfExtents  mgl32.Vec3
}

// ParamsFromEntry converts a data table entry.
func ParamsFromEntry(e *data.ObstacleEntry) Params {
	return Params{
		Amplitude:    e.Amplitude,
		VerticalBias: e.VerticalBias,
		Height:       e.Height,
		SpeedMin:     e.SpeedMin,
		SpeedSpan:    e.SpeedSpan,
		HalfExtents:  mgl32.Vec3{e.HalfExtents[0], e.HalfExtents[1], e.HalfExtents[2]},
	}
}

// Instance is one placed obstacle. PhaseOffset and Speed are drawn once at
// spawn time and never change.
type Instance struct {
	Slot        int
	Kind        level.Kind
	Base        mgl32.Vec3
	PhaseOffset float32
	Speed       float32
	Params      Params
}

// Target is the next kinematic transform of an obstacle body.
type Target struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
}

// Static returns the resting transform of in.
func Static(in *Instance) Target {
	return Target{Position: in.Base.Add(mgl32.Vec3{0, in.Params.Height, 0}), Rotation: mgl32.QuatIdent()}
}

// Pattern drives one obstacle kind.
type Pattern interface {
	Kind() level.Kind
	Target(t float32, in *Instance) Target
}

// PatternFunc adapts a plain function to Pattern.
type PatternFunc struct {
	K  level.Kind
	Fn func(t float32, in *Instance) Target
}

func (p PatternFunc) Kind() level.Kind { return p.K }

func (p PatternFunc) Target(t float32, in *Instance) Target { return p.Fn(t, in) }

// Spinner turns about the vertical axis at the instance's signed speed.
var Spinner = PatternFunc{K: level.KindSpinner, Fn: func(t float32, in *Instance) Target {
	return Target{
		Position: in.Base.Add(mgl32.Vec3{0, in.Params.Height, 0}),
		Rotation: mgl32.QuatRotate(t*in.Speed, up),
	}
}}

// Limbo bobs up and down around VerticalBias with period 2π.
var Limbo = PatternFunc{K: level.KindLimbo, Fn: func(t float32, in *Instance) Target {
	y := math32.Sin(t+in.PhaseOffset) + in.Params.VerticalBias
	return Target{
		Position: mgl32.Vec3{in.Base.X(), in.Base.Y() + y, in.Base.Z()},
		Rotation: mgl32.QuatIdent(),
	}
}}

// Axe swings sideways across the lane at a fixed height.
var Axe = PatternFunc{K: level.KindAxe, Fn: func(t float32, in *Instance) Target {
	x := math32.Sin(t+in.PhaseOffset) * in.Params.Amplitude
	return Target{
		Position: mgl32.Vec3{in.Base.X() + x, in.Base.Y() + in.Params.Height, in.Base.Z()},
		Rotation: mgl32.QuatIdent(),
	}
}}

// Builtins lists the compiled-in patterns.
func Builtins() []Pattern {
	return []Pattern{Spinner, Axe, Limbo}
}
