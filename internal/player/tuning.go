package player

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/marblerace/course/internal/level"
)

// Tuning holds the controller constants. Impulse and torque are per second
// and scaled by the frame delta.
type Tuning struct {
	Impulse       float32
	Torque        float32
	JumpImpulse   float32
	RayOffset     float32 // below the body center, just outside the ball
	RayLength     float32
	GroundedToi   float32
	FallThreshold float32
	Spawn         mgl32.Vec3
	SegmentLength float32

	Radius         float32
	Restitution    float32
	Friction       float32
	LinearDamping  float32
	AngularDamping float32
}

func DefaultTuning() Tuning {
	return Tuning{
		Impulse:       0.6,
		Torque:        0.2,
		JumpImpulse:   0.5,
		RayOffset:     0.31,
		RayLength:     10,
		GroundedToi:   0.15,
		FallThreshold: -4,
		Spawn:         mgl32.Vec3{0, 1, 0},
		SegmentLength: level.DefaultSegmentLength,

		Radius:         0.3,
		Restitution:    0.2,
		Friction:       1,
		LinearDamping:  0.5,
		AngularDamping: 0.5,
	}
}
