package obstacle

import (
	"fmt"

	"github.com/elliotchance/orderedmap/v2"

	"github.com/marblerace/course/internal/data"
	"github.com/marblerace/course/internal/level"
)

type registered struct {
	pattern Pattern
	params  Params
}

// Registry maps obstacle kinds to patterns. Registration order is the order
// the level generator samples kinds in, so it is part of the seed contract.
type Registry struct {
	kinds *orderedmap.OrderedMap[level.Kind, registered]
}

func NewRegistry() *Registry {
	return &Registry{kinds: orderedmap.NewOrderedMap[level.Kind, registered]()}
}

// NewBuiltinRegistry registers every built-in pattern listed in table, in
// table order, with the table's tuning. Entries marked as scripted are
// skipped; the scripting engine registers those.
func NewBuiltinRegistry(table *data.ObstacleTable) (*Registry, error) {
	builtins := make(map[level.Kind]Pattern)
	for _, p := range Builtins() {
		builtins[p.Kind()] = p
	}
	r := NewRegistry()
	for _, name := range table.Kinds() {
		e := table.Get(name)
		if e.Script {
			continue
		}
		p, ok := builtins[level.Kind(name)]
		if !ok {
			return nil, fmt.Errorf("obstacle %q: no built-in pattern and not scripted", name)
		}
		if err := r.Register(p, ParamsFromEntry(e)); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a pattern. Kinds are unique.
func (r *Registry) Register(p Pattern, params Params) error {
	if _, ok := r.kinds.Get(p.Kind()); ok {
		return fmt.Errorf("obstacle %q already registered", p.Kind())
	}
	r.kinds.Set(p.Kind(), registered{pattern: p, params: params})
	return nil
}

func (r *Registry) Get(kind level.Kind) (Pattern, bool) {
	e, ok := r.kinds.Get(kind)
	return e.pattern, ok
}

func (r *Registry) Params(kind level.Kind) (Params, bool) {
	e, ok := r.kinds.Get(kind)
	return e.params, ok
}

// Kinds returns registered kinds in registration order.
func (r *Registry) Kinds() []level.Kind {
	return r.kinds.Keys()
}

func (r *Registry) Len() int { return r.kinds.Len() }

// Evaluate returns the target of in at time t. Unknown kinds stay put.
func (r *Registry) Evaluate(t float32, in *Instance) Target {
	e, ok := r.kinds.Get(in.Kind)
	if !ok {
		return Static(in)
	}
	return e.pattern.Target(t, in)
}
