package obstacle

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/marblerace/course/internal/data"
	"github.com/marblerace/course/internal/level"
)

func defaultParams(t *testing.T, kind string) Params {
	t.Helper()
	e := data.DefaultObstacleTable().Get(kind)
	if e == nil {
		t.Fatalf("no default entry for %s", kind)
	}
	return ParamsFromEntry(e)
}

func TestSpinnerIdentityAtZero(t *testing.T) {
	in := &Instance{Kind: level.KindSpinner, Speed: 0.7, Params: defaultParams(t, "spinner")}
	got := Spinner.Target(0, in)
	if !got.Rotation.ApproxEqual(mgl32.QuatIdent()) {
		t.Fatalf("rotation at t=0 = %v", got.Rotation)
	}
	if got.Position.Y() != 0.3 {
		t.Fatalf("spinner height = %v", got.Position.Y())
	}
}

func TestSpinnerRotationTracksTime(t *testing.T) {
	for _, speed := range []float32{0.5, -0.9} {
		in := &Instance{Kind: level.KindSpinner, Speed: speed, Params: defaultParams(t, "spinner")}
		for step := 0; step <= 600; step++ {
			tm := float32(step) / 60
			got := Spinner.Target(tm, in)
			if want := mgl32.QuatRotate(tm*speed, mgl32.Vec3{0, 1, 0}); got.Rotation.Sub(want).Len() > 1e-6 {
				t.Fatalf("speed %v t=%v: rotation %v, want %v", speed, tm, got.Rotation, want)
			}
		}
	}
}

func TestSpinnerRotatesAboutVertical(t *testing.T) {
	in := &Instance{Kind: level.KindSpinner, Speed: 1, Params: defaultParams(t, "spinner")}
	got := Spinner.Target(math32.Pi/2, in)
	v := got.Rotation.Rotate(mgl32.Vec3{1, 0, 0})
	if v.Sub(mgl32.Vec3{0, 0, -1}).Len() > 1e-5 {
		t.Fatalf("x axis rotated to %v", v)
	}
}

func TestLimboPeakAndPeriod(t *testing.T) {
	in := &Instance{
		Kind:        level.KindLimbo,
		Base:        mgl32.Vec3{0, 0, -8},
		PhaseOffset: 1.3,
		Params:      defaultParams(t, "limbo"),
	}
	peak := -in.PhaseOffset + math32.Pi/2
	got := Limbo.Target(peak, in)
	if !mgl32.FloatEqualThreshold(got.Position.Y(), 1+in.Params.VerticalBias, 1e-5) {
		t.Fatalf("peak y = %v, want %v", got.Position.Y(), 1+in.Params.VerticalBias)
	}
	for _, tm := range []float32{0, 0.4, 2.2, 5} {
		a := Limbo.Target(tm, in).Position.Y()
		b := Limbo.Target(tm+2*math32.Pi, in).Position.Y()
		if !mgl32.FloatEqualThreshold(a, b, 1e-4) {
			t.Fatalf("t=%v: %v vs %v one period later", tm, a, b)
		}
	}
	if p := Limbo.Target(3, in).Position; p.X() != 0 || p.Z() != -8 {
		t.Fatalf("limbo moved horizontally: %v", p)
	}
}

func TestAxeSwing(t *testing.T) {
	in := &Instance{
		Kind:   level.KindAxe,
		Base:   mgl32.Vec3{0, 0, -4},
		Params: defaultParams(t, "axe"),
	}
	got := Axe.Target(math32.Pi/2, in)
	if !mgl32.FloatEqualThreshold(got.Position.X(), 1.25, 1e-5) {
		t.Fatalf("axe x at peak = %v", got.Position.X())
	}
	if got.Position.Y() != 0.75 || got.Position.Z() != -4 {
		t.Fatalf("axe left its lane: %v", got.Position)
	}
	for step := 0; step < 200; step++ {
		x := Axe.Target(float32(step)*0.1, in).Position.X()
		if math32.Abs(x) > 1.25+1e-5 {
			t.Fatalf("axe swing %v exceeds amplitude", x)
		}
	}
}

func TestBuiltinRegistryOrder(t *testing.T) {
	reg, err := NewBuiltinRegistry(data.DefaultObstacleTable())
	if err != nil {
		t.Fatal(err)
	}
	kinds := reg.Kinds()
	want := []level.Kind{level.KindSpinner, level.KindAxe, level.KindLimbo}
	if len(kinds) != len(want) {
		t.Fatalf("kinds = %v", kinds)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("kinds = %v, want %v", kinds, want)
		}
	}
	if err := reg.Register(Axe, Params{}); err == nil {
		t.Fatal("duplicate registration accepted")
	}
}

func TestBuiltinRegistryRejectsUnknownKind(t *testing.T) {
	tbl, err := data.ParseObstacleTable([]byte("obstacles:\n  - kind: hammer\n"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewBuiltinRegistry(tbl); err == nil {
		t.Fatal("unknown unscripted kind accepted")
	}
}

func TestEvaluateUnknownKindIsStatic(t *testing.T) {
	reg := NewRegistry()
	in := &Instance{Kind: "ghost", Base: mgl32.Vec3{1, 2, 3}}
	got := reg.Evaluate(10, in)
	if got.Position != in.Base || !got.Rotation.ApproxEqual(mgl32.QuatIdent()) {
		t.Fatalf("unknown kind moved: %+v", got)
	}
}
