package physics

import (
	"github.com/chewxy/math32"
	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	DefaultGravity = float32(-9.81)

	maxSubstep      = float32(1.0 / 120)
	contactPasses   = 2
	sleepThreshold  = float32(1e-4) // squared speed
	sleepSubsteps   = 120
	groundNormalY   = float32(0.7)
	bounceThreshold = float32(1) // slower impacts do not bounce
	broadMargin     = float32(0.05)
)

type body struct {
	desc BodyDesc

	pos, prevPos     mgl32.Vec3
	rot, prevRot     mgl32.Quat
	startPos, endPos mgl32.Vec3
	startRot, endRot mgl32.Quat
	linvel, angvel   mgl32.Vec3

	targetPos                  mgl32.Vec3
	targetRot                  mgl32.Quat
	hasTargetPos, hasTargetRot bool

	invMass, invInertia float32
	sleeping            bool
	idle                int
	removed             bool
}

func (b *body) ball() bool { return b.desc.Radius > 0 }

// Arcade is a small rigid-body world: dynamic balls collide against fixed
// and kinematic cuboids. Contacts are resolved by projection with
// restitution and rolling friction; there is no ball-ball response.
type Arcade struct {
	bodies  []*body
	gravity mgl32.Vec3
}

func NewArcade() *Arcade {
	return &Arcade{gravity: mgl32.Vec3{0, DefaultGravity, 0}}
}

// SetGravity overrides the default downward gravity.
func (w *Arcade) SetGravity(g mgl32.Vec3) { w.gravity = g }

func (w *Arcade) get(h BodyHandle) *body {
	i := int(h) - 1
	if i < 0 || i >= len(w.bodies) || w.bodies[i].removed {
		return nil
	}
	return w.bodies[i]
}

func (w *Arcade) CreateBody(desc BodyDesc) BodyHandle {
	rot := desc.Rotation
	if rot == (mgl32.Quat{}) {
		rot = mgl32.QuatIdent()
	}
	b := &body{
		desc:    desc,
		pos:     desc.Position,
		prevPos: desc.Position,
		rot:     rot,
		prevRot: rot,
	}
	if desc.Type == BodyDynamic && b.ball() {
		r := desc.Radius
		mass := 4.0 / 3.0 * math32.Pi * r * r * r
		b.invMass = 1 / mass
		b.invInertia = 1 / (0.4 * mass * r * r)
	}
	w.bodies = append(w.bodies, b)
	return BodyHandle(len(w.bodies))
}

func (w *Arcade) RemoveBody(h BodyHandle) {
	if b := w.get(h); b != nil {
		b.removed = true
	}
}

// Bodies returns the number of live bodies.
func (w *Arcade) Bodies() int {
	n := 0
	for _, b := range w.bodies {
		if !b.removed {
			n++
		}
	}
	return n
}

// Step advances the world by dt, in substeps no longer than 1/120 s.
// Kinematic bodies reach their pending targets at the end of the step.
func (w *Arcade) Step(dt float32) {
	if dt <= 0 {
		return
	}
	n := int(math32.Ceil(dt / maxSubstep))
	h := dt / float32(n)

	for _, b := range w.bodies {
		if b.removed || b.desc.Type != BodyKinematic {
			continue
		}
		b.startPos, b.endPos = b.pos, b.pos
		b.startRot, b.endRot = b.rot, b.rot
		if b.hasTargetPos {
			b.endPos = b.targetPos
		}
		if b.hasTargetRot {
			b.endRot = b.targetRot
		}
		b.hasTargetPos, b.hasTargetRot = false, false
	}

	for i := 1; i <= n; i++ {
		frac := float32(i) / float32(n)
		for _, b := range w.bodies {
			if b.removed || b.desc.Type != BodyKinematic {
				continue
			}
			b.prevPos, b.prevRot = b.pos, b.rot
			b.pos = b.startPos.Add(b.endPos.Sub(b.startPos).Mul(frac))
			b.rot = mgl32.QuatNlerp(b.startRot, b.endRot, frac)
		}
		for _, b := range w.bodies {
			if b.removed || b.desc.Type != BodyDynamic || !b.ball() || b.sleeping {
				continue
			}
			w.integrate(b, h)
		}
	}
}

func (w *Arcade) integrate(b *body, h float32) {
	b.linvel = b.linvel.Add(w.gravity.Mul(h))
	b.linvel = b.linvel.Mul(1 / (1 + h*b.desc.LinearDamping))
	b.angvel = b.angvel.Mul(1 / (1 + h*b.desc.AngularDamping))
	b.pos = b.pos.Add(b.linvel.Mul(h))

	var ground *body
	var groundN mgl32.Vec3
	for pass := 0; pass < contactPasses; pass++ {
		ballBB := ballBox(b.pos, b.desc.Radius)
		for _, k := range w.bodies {
			if k.removed || k.ball() || k.desc.Type == BodyDynamic {
				continue
			}
			if !ballBB.IntersectsWith(worldBox(k).Grow(broadMargin)) {
				continue
			}
			if n, ok := w.resolve(b, k, h); ok && n.Y() > groundNormalY {
				ground, groundN = k, n
			}
		}
	}
	if ground != nil {
		rollingFriction(b, ground, groundN, h)
	}

	spin := mgl32.Quat{W: 0, V: b.angvel}.Mul(b.rot).Scale(0.5 * h)
	b.rot = b.rot.Add(spin).Normalize()

	if b.linvel.LenSqr() < sleepThreshold && b.angvel.LenSqr() < sleepThreshold {
		b.idle++
		if b.idle >= sleepSubsteps {
			b.sleeping = true
			b.linvel, b.angvel = mgl32.Vec3{}, mgl32.Vec3{}
		}
	} else {
		b.idle = 0
	}
}

// resolve pushes ball b out of cuboid k and removes the approaching part of
// the relative velocity. It returns the contact normal pointing at b.
func (w *Arcade) resolve(b, k *body, h float32) (mgl32.Vec3, bool) {
	r := b.desc.Radius
	half := k.desc.HalfExtents
	inv := k.rot.Conjugate()
	local := inv.Rotate(b.pos.Sub(k.pos))

	closest := mgl32.Vec3{
		mgl32.Clamp(local[0], -half[0], half[0]),
		mgl32.Clamp(local[1], -half[1], half[1]),
		mgl32.Clamp(local[2], -half[2], half[2]),
	}
	d := local.Sub(closest)
	dist := d.Len()
	if dist >= r {
		return mgl32.Vec3{}, false
	}

	var nLocal mgl32.Vec3
	var pen float32
	if dist > 1e-6 {
		nLocal = d.Mul(1 / dist)
		pen = r - dist
	} else {
		// Center inside the box: leave through the nearest face.
		axis, best := 0, float32(math32.MaxFloat32)
		for i := 0; i < 3; i++ {
			if depth := half[i] - math32.Abs(local[i]); depth < best {
				axis, best = i, depth
			}
		}
		nLocal[axis] = 1
		if local[axis] < 0 {
			nLocal[axis] = -1
		}
		pen = best + r
	}
	n := k.rot.Rotate(nLocal)
	b.pos = b.pos.Add(n.Mul(pen))

	rel := b.linvel.Sub(surfaceVelocity(k, closest, h))
	if vn := rel.Dot(n); vn < 0 {
		e := (b.desc.Restitution + k.desc.Restitution) / 2
		if -vn < bounceThreshold {
			e = 0
		}
		b.linvel = b.linvel.Sub(n.Mul(vn * (1 + e)))
	}
	return n, true
}

// surfaceVelocity is the velocity of the local point p of k over the last substep.
func surfaceVelocity(k *body, p mgl32.Vec3, h float32) mgl32.Vec3 {
	if k.desc.Type != BodyKinematic || h <= 0 {
		return mgl32.Vec3{}
	}
	before := k.prevPos.Add(k.prevRot.Rotate(p))
	after := k.pos.Add(k.rot.Rotate(p))
	return after.Sub(before).Mul(1 / h)
}

// rollingFriction removes contact-point slip so torque turns into rolling.
func rollingFriction(b, ground *body, n mgl32.Vec3, h float32) {
	friction := math32.Min(math32.Sqrt(b.desc.Friction*ground.desc.Friction), 1)
	if friction <= 0 {
		return
	}
	r := b.desc.Radius
	rc := n.Mul(-r)
	vc := b.linvel.Add(b.angvel.Cross(rc))
	vt := vc.Sub(n.Mul(vc.Dot(n)))
	effMass := 1 / (b.invMass + r*r*b.invInertia)
	j := vt.Mul(-effMass * friction)
	b.linvel = b.linvel.Add(j.Mul(b.invMass))
	b.angvel = b.angvel.Add(rc.Cross(j).Mul(b.invInertia))
}

func ballBox(p mgl32.Vec3, r float32) cube.BBox {
	return cube.Box(p[0]-r, p[1]-r, p[2]-r, p[0]+r, p[1]+r, p[2]+r)
}

// worldBox is the world-space AABB of a (possibly rotated) cuboid.
func worldBox(k *body) cube.BBox {
	h := k.desc.HalfExtents
	ax := k.rot.Rotate(mgl32.Vec3{h[0], 0, 0})
	ay := k.rot.Rotate(mgl32.Vec3{0, h[1], 0})
	az := k.rot.Rotate(mgl32.Vec3{0, 0, h[2]})
	var ext mgl32.Vec3
	for i := 0; i < 3; i++ {
		ext[i] = math32.Abs(ax[i]) + math32.Abs(ay[i]) + math32.Abs(az[i])
	}
	lo, hi := k.pos.Sub(ext), k.pos.Add(ext)
	return cube.Box(lo[0], lo[1], lo[2], hi[0], hi[1], hi[2])
}

func (w *Arcade) CastRay(ray Ray, maxToi float32, solid bool) (RayHit, bool) {
	best := RayHit{Toi: maxToi}
	found := false
	for i, b := range w.bodies {
		if b.removed {
			continue
		}
		var toi float32
		var ok bool
		if b.ball() {
			toi, ok = raySphere(ray, b.pos, b.desc.Radius, solid)
		} else {
			inv := b.rot.Conjugate()
			local := Ray{Origin: inv.Rotate(ray.Origin.Sub(b.pos)), Dir: inv.Rotate(ray.Dir)}
			h := b.desc.HalfExtents
			toi, ok = raySlab(local, cube.Box(-h[0], -h[1], -h[2], h[0], h[1], h[2]), solid)
		}
		if ok && toi <= best.Toi {
			best = RayHit{Body: BodyHandle(i + 1), Toi: toi}
			found = true
		}
	}
	return best, found
}

func raySlab(ray Ray, box cube.BBox, solid bool) (float32, bool) {
	lo, hi := box.Min(), box.Max()
	tmin, tmax := float32(-math32.MaxFloat32), float32(math32.MaxFloat32)
	for i := 0; i < 3; i++ {
		o, d := ray.Origin[i], ray.Dir[i]
		if math32.Abs(d) < 1e-8 {
			if o < lo[i] || o > hi[i] {
				return 0, false
			}
			continue
		}
		t1, t2 := (lo[i]-o)/d, (hi[i]-o)/d
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin, tmax = math32.Max(tmin, t1), math32.Min(tmax, t2)
		if tmin > tmax {
			return 0, false
		}
	}
	if tmax < 0 {
		return 0, false
	}
	if tmin < 0 {
		if solid {
			return 0, true
		}
		return tmax, true
	}
	return tmin, true
}

func raySphere(ray Ray, c mgl32.Vec3, r float32, solid bool) (float32, bool) {
	oc := ray.Origin.Sub(c)
	b := oc.Dot(ray.Dir)
	cc := oc.Dot(oc) - r*r
	if cc > 0 && b > 0 {
		return 0, false
	}
	disc := b*b - cc
	if disc < 0 {
		return 0, false
	}
	t := -b - math32.Sqrt(disc)
	if t < 0 {
		if solid {
			return 0, true
		}
		return -b + math32.Sqrt(disc), true
	}
	return t, true
}

func (w *Arcade) ApplyImpulse(h BodyHandle, impulse mgl32.Vec3) {
	if b := w.get(h); b != nil && b.desc.Type == BodyDynamic {
		b.linvel = b.linvel.Add(impulse.Mul(b.invMass))
	}
}

func (w *Arcade) ApplyTorqueImpulse(h BodyHandle, torque mgl32.Vec3) {
	if b := w.get(h); b != nil && b.desc.Type == BodyDynamic {
		b.angvel = b.angvel.Add(torque.Mul(b.invInertia))
	}
}

func (w *Arcade) SetNextKinematicTranslation(h BodyHandle, pos mgl32.Vec3) {
	if b := w.get(h); b != nil && b.desc.Type == BodyKinematic {
		b.targetPos, b.hasTargetPos = pos, true
	}
}

func (w *Arcade) SetNextKinematicRotation(h BodyHandle, rot mgl32.Quat) {
	if b := w.get(h); b != nil && b.desc.Type == BodyKinematic {
		b.targetRot, b.hasTargetRot = rot, true
	}
}

func (w *Arcade) Translation(h BodyHandle) mgl32.Vec3 {
	if b := w.get(h); b != nil {
		return b.pos
	}
	return mgl32.Vec3{}
}

func (w *Arcade) Rotation(h BodyHandle) mgl32.Quat {
	if b := w.get(h); b != nil {
		return b.rot
	}
	return mgl32.QuatIdent()
}

func (w *Arcade) SetTranslation(h BodyHandle, pos mgl32.Vec3) {
	if b := w.get(h); b != nil {
		b.pos, b.prevPos = pos, pos
	}
}

func (w *Arcade) Linvel(h BodyHandle) mgl32.Vec3 {
	if b := w.get(h); b != nil {
		return b.linvel
	}
	return mgl32.Vec3{}
}

func (w *Arcade) SetLinvel(h BodyHandle, v mgl32.Vec3) {
	if b := w.get(h); b != nil {
		b.linvel = v
	}
}

func (w *Arcade) Angvel(h BodyHandle) mgl32.Vec3 {
	if b := w.get(h); b != nil {
		return b.angvel
	}
	return mgl32.Vec3{}
}

func (w *Arcade) SetAngvel(h BodyHandle, v mgl32.Vec3) {
	if b := w.get(h); b != nil {
		b.angvel = v
	}
}

func (w *Arcade) WakeUp(h BodyHandle) {
	if b := w.get(h); b != nil {
		b.sleeping = false
		b.idle = 0
	}
}

func (w *Arcade) Sleeping(h BodyHandle) bool {
	if b := w.get(h); b != nil {
		return b.sleeping
	}
	return false
}

var _ World = (*Arcade)(nil)
