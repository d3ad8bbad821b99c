// Package player turns directional input into forces on the marble and
// decides when a run starts, finishes or fails.
package player

import (
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/marblerace/course/internal/game"
	"github.com/marblerace/course/internal/level"
	"github.com/marblerace/course/internal/physics"
)

// Input is the per-tick control snapshot. Any is the edge-triggered
// any-key signal: true only on ticks where a new key press arrived.
type Input struct {
	Forward  bool
	Backward bool
	Left     bool
	Right    bool
	Jump     bool
	Any      bool
}

// Physics is the subset of physics.World the controller drives.
type Physics interface {
	CreateBody(desc physics.BodyDesc) physics.BodyHandle
	WakeUp(h physics.BodyHandle)
	ApplyImpulse(h physics.BodyHandle, impulse mgl32.Vec3)
	ApplyTorqueImpulse(h physics.BodyHandle, torque mgl32.Vec3)
	CastRay(ray physics.Ray, maxToi float32, solid bool) (physics.RayHit, bool)
	Translation(h physics.BodyHandle) mgl32.Vec3
	SetTranslation(h physics.BodyHandle, pos mgl32.Vec3)
	SetLinvel(h physics.BodyHandle, v mgl32.Vec3)
	SetAngvel(h physics.BodyHandle, w mgl32.Vec3)
}

var down = mgl32.Vec3{0, -1, 0}

// Controller owns the marble body.
type Controller struct {
	phys  Physics
	body  physics.BodyHandle
	state *game.State
	tune  Tuning
	log   *zap.Logger

	jumpHeld bool
}

// New creates the marble at the spawn point and binds Reset to every Ready
// entry of state.
func New(phys Physics, state *game.State, tune Tuning, log *zap.Logger) *Controller {
	c := &Controller{phys: phys, state: state, tune: tune, log: log}
	c.body = phys.CreateBody(physics.BodyDesc{
		Type:           physics.BodyDynamic,
		Position:       tune.Spawn,
		Radius:         tune.Radius,
		Restitution:    tune.Restitution,
		Friction:       tune.Friction,
		LinearDamping:  tune.LinearDamping,
		AngularDamping: tune.AngularDamping,
	})
	state.OnEnterReady(func(game.Snapshot) { c.Reset() })
	return c
}

// Body returns the marble's physics handle.
func (c *Controller) Body() physics.BodyHandle { return c.body }

// Position returns the marble's current translation.
func (c *Controller) Position() mgl32.Vec3 { return c.phys.Translation(c.body) }

// Update applies one tick of input. dt is the frame delta in seconds.
func (c *Controller) Update(dt float32, in Input) {
	c.phys.WakeUp(c.body)

	if in.Any && c.state.Phase() == game.PhaseReady {
		c.state.Start()
	}

	impulse, torque := c.forces(dt, in)
	c.phys.ApplyImpulse(c.body, impulse)
	c.phys.ApplyTorqueImpulse(c.body, torque)

	if in.Jump && !c.jumpHeld && c.Grounded() {
		c.phys.ApplyImpulse(c.body, mgl32.Vec3{0, c.tune.JumpImpulse, 0})
	}
	c.jumpHeld = in.Jump

	pos := c.phys.Translation(c.body)
	if pos.Y() < c.tune.FallThreshold {
		if c.state.Restart() {
			c.log.Debug("marble fell", zap.Float32("y", pos.Y()))
		}
		return
	}
	if pos.Z() < level.FinishLine(c.state.BlocksCount(), c.tune.SegmentLength) {
		c.state.End()
	}
}

func (c *Controller) forces(dt float32, in Input) (impulse, torque mgl32.Vec3) {
	is := c.tune.Impulse * dt
	ts := c.tune.Torque * dt
	if in.Forward {
		impulse[2] -= is
		torque[0] -= ts
	}
	if in.Backward {
		impulse[2] += is
		torque[0] += ts
	}
	if in.Right {
		impulse[0] += is
		torque[2] -= ts
	}
	if in.Left {
		impulse[0] -= is
		torque[2] += ts
	}
	return impulse, torque
}

// Grounded casts a ray straight down from just below the marble. A missing
// hit counts as airborne.
func (c *Controller) Grounded() bool {
	origin := c.phys.Translation(c.body).Sub(mgl32.Vec3{0, c.tune.RayOffset, 0})
	hit, ok := c.phys.CastRay(physics.Ray{Origin: origin, Dir: down}, c.tune.RayLength, true)
	return ok && hit.Toi < c.tune.GroundedToi
}

// Reset puts the marble back on the spawn point at rest.
func (c *Controller) Reset() {
	c.phys.SetTranslation(c.body, c.tune.Spawn)
	c.phys.SetLinvel(c.body, mgl32.Vec3{})
	c.phys.SetAngvel(c.body, mgl32.Vec3{})
	c.jumpHeld = false
}
