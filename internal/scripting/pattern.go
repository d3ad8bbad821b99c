package scripting

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/marblerace/course/internal/data"
	"github.com/marblerace/course/internal/level"
	"github.com/marblerace/course/internal/obstacle"
)

// Pattern drives one obstacle kind through a Lua function.
type Pattern struct {
	e    *Engine
	kind level.Kind
}

// Pattern returns the scripted pattern for kind.
func (e *Engine) Pattern(kind string) (*Pattern, bool) {
	if _, ok := e.function(kind); !ok {
		return nil, false
	}
	return &Pattern{e: e, kind: level.Kind(kind)}, true
}

func (p *Pattern) Kind() level.Kind { return p.kind }

// Target evaluates the script. Errors leave the obstacle at rest.
func (p *Pattern) Target(t float32, in *obstacle.Instance) obstacle.Target {
	r, err := p.e.Call(string(p.kind), float64(t), map[string]float64{
		"phase":         float64(in.PhaseOffset),
		"speed":         float64(in.Speed),
		"base_x":        float64(in.Base.X()),
		"base_y":        float64(in.Base.Y()),
		"base_z":        float64(in.Base.Z()),
		"amplitude":     float64(in.Params.Amplitude),
		"height":        float64(in.Params.Height),
		"vertical_bias": float64(in.Params.VerticalBias),
	})
	if err != nil {
		return obstacle.Static(in)
	}
	return obstacle.Target{
		Position: in.Base.Add(mgl32.Vec3{float32(r.X), float32(r.Y), float32(r.Z)}),
		Rotation: mgl32.QuatRotate(float32(r.Yaw), mgl32.Vec3{0, 1, 0}),
	}
}

// RegisterPatterns adds every table entry marked as scripted to reg, in
// table order. A scripted entry without a Lua function is an error; Lua
// patterns the table does not list are skipped.
func (e *Engine) RegisterPatterns(reg *obstacle.Registry, table *data.ObstacleTable) (int, error) {
	listed := make(map[string]bool)
	n := 0
	for _, kind := range table.Kinds() {
		entry := table.Get(kind)
		if !entry.Script {
			continue
		}
		listed[kind] = true
		p, ok := e.Pattern(kind)
		if !ok {
			return n, fmt.Errorf("scripted obstacle %q has no lua pattern", kind)
		}
		if err := reg.Register(p, obstacle.ParamsFromEntry(entry)); err != nil {
			return n, err
		}
		n++
	}
	for _, kind := range e.Kinds() {
		if !listed[kind] {
			e.log.Debug("lua pattern not listed in obstacle table", zap.String("kind", kind))
		}
	}
	return n, nil
}

var _ obstacle.Pattern = (*Pattern)(nil)
