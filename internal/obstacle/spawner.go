package obstacle

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/chewxy/math32"

	"github.com/marblerace/course/internal/level"
)

// Spawner creates obstacle instances. Its random source is independent of
// the level seed: the same seed reproduces the obstacle layout but not the
// phase offsets or spinner speeds.
type Spawner struct {
	reg *Registry
	rng *rand.Rand
}

// NewSpawner uses src for per-instance randomness; nil seeds from the clock.
func NewSpawner(reg *Registry, src rand.Source) *Spawner {
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}
	return &Spawner{reg: reg, rng: rand.New(src)}
}

// Spawn creates the instance for one obstacle segment.
func (s *Spawner) Spawn(seg level.Segment) (*Instance, error) {
	params, ok := s.reg.Params(seg.Kind)
	if !ok {
		return nil, fmt.Errorf("spawn slot %d: unknown obstacle kind %q", seg.Slot, seg.Kind)
	}
	speed := s.rng.Float32()*params.SpeedSpan + params.SpeedMin
	if s.rng.Intn(2) == 0 {
		speed = -speed
	}
	offset := s.rng.Float32() * 2 * math32.Pi
	if offset >= 2*math32.Pi {
		offset = 0
	}
	return &Instance{
		Slot:        seg.Slot,
		Kind:        seg.Kind,
		Base:        seg.Position,
		PhaseOffset: offset,
		Speed:       speed,
		Params:      params,
	}, nil
}

// SpawnAll creates instances for every obstacle segment of lay.
func (s *Spawner) SpawnAll(lay level.Layout) ([]*Instance, error) {
	segs := lay.ObstacleSegments()
	out := make([]*Instance, 0, len(segs))
	for _, seg := range segs {
		in, err := s.Spawn(seg)
		if err != nil {
			return nil, err
		}
		out = append(out, in)
	}
	return out, nil
}
