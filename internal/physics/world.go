// Package physics declares the rigid-body capability the simulation core
// consumes and provides Arcade, a small reference implementation.
package physics

import "github.com/go-gl/mathgl/mgl32"

// BodyType selects how a body moves.
type BodyType int

const (
	BodyFixed     BodyType = iota // never moves
	BodyKinematic                 // follows targets set each tick
	BodyDynamic                   // integrates impulses, gravity and contacts
)

// BodyHandle identifies a body inside a World. Zero is never a valid handle.
type BodyHandle uint32

// BodyDesc describes a body at creation. Radius > 0 makes a ball, otherwise
// the body is a cuboid with HalfExtents.
type BodyDesc struct {
	Type           BodyType
	Position       mgl32.Vec3
	Rotation       mgl32.Quat
	Radius         float32
	HalfExtents    mgl32.Vec3
	Restitution    float32
	Friction       float32
	LinearDamping  float32
	AngularDamping float32
}

// Ray is a half-line; Dir must be normalized.
type Ray struct {
	Origin mgl32.Vec3
	Dir    mgl32.Vec3
}

// RayHit is the first surface along a ray.
type RayHit struct {
	Body BodyHandle
	Toi  float32
}

// World is the physics capability used by the core: create bodies, push
// impulses and kinematic targets, cast rays and read transforms.
type World interface {
	CreateBody(desc BodyDesc) BodyHandle
	RemoveBody(h BodyHandle)
	Step(dt float32)

	ApplyImpulse(h BodyHandle, impulse mgl32.Vec3)
	ApplyTorqueImpulse(h BodyHandle, torque mgl32.Vec3)
	SetNextKinematicTranslation(h BodyHandle, pos mgl32.Vec3)
	SetNextKinematicRotation(h BodyHandle, rot mgl32.Quat)

	// CastRay returns the first hit within maxToi. With solid set, a ray
	// starting inside a shape hits it at toi 0.
	CastRay(ray Ray, maxToi float32, solid bool) (RayHit, bool)

	Translation(h BodyHandle) mgl32.Vec3
	Rotation(h BodyHandle) mgl32.Quat
	SetTranslation(h BodyHandle, pos mgl32.Vec3)
	Linvel(h BodyHandle) mgl32.Vec3
	SetLinvel(h BodyHandle, v mgl32.Vec3)
	Angvel(h BodyHandle) mgl32.Vec3
	SetAngvel(h BodyHandle, w mgl32.Vec3)
	WakeUp(h BodyHandle)
	Sleeping(h BodyHandle) bool
}
