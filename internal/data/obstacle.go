package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ObstacleEntry holds the tuning of one obstacle kind.
type ObstacleEntry struct {
	Kind         string     `yaml:"kind"`
	Amplitude    float32    `yaml:"amplitude"`     // axe: horizontal swing
	VerticalBias float32    `yaml:"vertical_bias"` // limbo: center of the vertical swing
	Height       float32    `yaml:"height"`        // resting height above the segment floor
	SpeedMin     float32    `yaml:"speed_min"`     // spinner: smallest angular speed
	SpeedSpan    float32    `yaml:"speed_span"`    // spinner: speed drawn from [min, min+span)
	HalfExtents  [3]float32 `yaml:"half_extents"`  // kinematic collider
	Script       bool       `yaml:"script"`        // motion comes from a Lua pattern
}

// ObstacleTable indexes obstacle tuning by kind, keeping file order.
type ObstacleTable struct {
	entries []*ObstacleEntry
	byKind  map[string]*ObstacleEntry
}

type obstacleFile struct {
	Obstacles []ObstacleEntry `yaml:"obstacles"`
}

// LoadObstacleTable loads obstacle_list.yaml.
func LoadObstacleTable(path string) (*ObstacleTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read obstacle list: %w", err)
	}
	t, err := ParseObstacleTable(raw)
	if err != nil {
		return nil, fmt.Errorf("parse obstacle list %s: %w", path, err)
	}
	return t, nil
}

// ParseObstacleTable decodes an obstacle list document.
func ParseObstacleTable(raw []byte) (*ObstacleTable, error) {
	var f obstacleFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, err
	}
	return newObstacleTable(f.Obstacles)
}

func newObstacleTable(entries []ObstacleEntry) (*ObstacleTable, error) {
	t := &ObstacleTable{byKind: make(map[string]*ObstacleEntry, len(entries))}
	for i := range entries {
		e := &entries[i]
		if e.Kind == "" {
			return nil, fmt.Errorf("obstacle %d: empty kind", i)
		}
		if _, dup := t.byKind[e.Kind]; dup {
			return nil, fmt.Errorf("obstacle %q defined twice", e.Kind)
		}
		if e.SpeedSpan < 0 {
			return nil, fmt.Errorf("obstacle %q: negative speed_span", e.Kind)
		}
		t.byKind[e.Kind] = e
		t.entries = append(t.entries, e)
	}
	return t, nil
}

// DefaultObstacleTable returns the built-in spinner, axe and limbo tuning.
func DefaultObstacleTable() *ObstacleTable {
	t, _ := newObstacleTable([]ObstacleEntry{
		{Kind: "spinner", Height: 0.3, SpeedMin: 0.02, SpeedSpan: 1, HalfExtents: [3]float32{1.75, 0.15, 0.15}},
		{Kind: "axe", Height: 0.75, Amplitude: 1.25, HalfExtents: [3]float32{0.75, 0.75, 0.15}},
		{Kind: "limbo", Height: 0.3, VerticalBias: 1.15, HalfExtents: [3]float32{1.75, 0.15, 0.15}},
	})
	return t
}

// Get returns the entry for kind, or nil if none.
func (t *ObstacleTable) Get(kind string) *ObstacleEntry {
	return t.byKind[kind]
}

// Kinds returns all kinds in file order.
func (t *ObstacleTable) Kinds() []string {
	out := make([]string, len(t.entries))
	for i, e := range t.entries {
		out[i] = e.Kind
	}
	return out
}

// Count returns the number of obstacle kinds loaded.
func (t *ObstacleTable) Count() int {
	return len(t.entries)
}
