package camera

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

type recorder struct {
	pos, target mgl32.Vec3
	calls       int
}

func (r *recorder) SetPosition(p mgl32.Vec3) {
	r.pos = p
	r.calls++
}

func (r *recorder) LookAt(t mgl32.Vec3) { r.target = t }

func TestFollowStartsAboveCourse(t *testing.T) {
	f := NewFollow(DefaultSettings())
	pos, target := f.Position()
	if pos != (mgl32.Vec3{10, 10, 10}) || target != (mgl32.Vec3{}) {
		t.Fatalf("initial = %v %v", pos, target)
	}
}

func TestFollowConverges(t *testing.T) {
	f := NewFollow(DefaultSettings())
	body := mgl32.Vec3{0.5, 0.3, -6}
	wantPos, wantTarget := f.Desired(body)

	prev := float32(1e9)
	for i := 0; i < 300; i++ {
		pos, _ := f.Update(body, 1.0/60)
		d := pos.Sub(wantPos).Len()
		if d > prev {
			t.Fatalf("tick %d: distance grew from %f to %f", i, prev, d)
		}
		prev = d
	}
	pos, target := f.Position()
	if pos.Sub(wantPos).Len() > 1e-3 {
		t.Fatalf("pos = %v, want %v", pos, wantPos)
	}
	if target.Sub(wantTarget).Len() > 1e-3 {
		t.Fatalf("target = %v, want %v", target, wantTarget)
	}
}

func TestFollowDesiredOffsets(t *testing.T) {
	f := NewFollow(DefaultSettings())
	pos, target := f.Desired(mgl32.Vec3{1, 2, 3})
	if !vecNear(pos, mgl32.Vec3{1, 2.65, 5.25}) {
		t.Fatalf("pos = %v", pos)
	}
	if !vecNear(target, mgl32.Vec3{1, 2.25, 3}) {
		t.Fatalf("target = %v", target)
	}
}

func TestFollowLargeStepSnaps(t *testing.T) {
	f := NewFollow(DefaultSettings())
	body := mgl32.Vec3{0, 1, 0}
	pos, _ := f.Update(body, 1)
	want, _ := f.Desired(body)
	if !vecNear(pos, want) {
		t.Fatalf("dt*k >= 1 should land on the desired pos, got %v", pos)
	}
}

func TestApply(t *testing.T) {
	f := NewFollow(DefaultSettings())
	var cam recorder
	f.Apply(&cam, mgl32.Vec3{}, 0.1)
	pos, target := f.Position()
	if cam.calls != 1 || cam.pos != pos || cam.target != target {
		t.Fatalf("camera got %v %v, follow has %v %v", cam.pos, cam.target, pos, target)
	}
}

// vecNear compares with an absolute tolerance of 1e-4.
func vecNear(a, b mgl32.Vec3) bool {
	return a.Sub(b).Len() <= 1e-4
}
