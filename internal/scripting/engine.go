package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM holding the scripted obstacle patterns.
// Single-goroutine access only (frame loop).
type Engine struct {
	vm       *lua.LState
	log      *zap.Logger
	patterns *lua.LTable
	failed   map[string]bool
}

// NewEngine creates a Lua engine and loads every *.lua file in scriptsDir.
// A missing directory yields an engine with no patterns.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState()

	// Set API version global
	vm.SetGlobal("API_VERSION", lua.LNumber(1))
	patterns := vm.NewTable()
	vm.SetGlobal("patterns", patterns)

	e := &Engine{vm: vm, log: log, patterns: patterns, failed: make(map[string]bool)}
	if scriptsDir != "" {
		if err := e.loadDir(scriptsDir); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load pattern scripts: %w", err)
		}
	}
	return e, nil
}

// LoadString runs a chunk of Lua source, for patterns embedded in code or tests.
func (e *Engine) LoadString(name, src string) error {
	if err := e.vm.DoString(src); err != nil {
		return fmt.Errorf("load %s: %w", name, err)
	}
	return nil
}

// loadDir loads all .lua files in a directory, in name order.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// Kinds lists the pattern names defined in the patterns table, sorted.
func (e *Engine) Kinds() []string {
	var kinds []string
	e.patterns.ForEach(func(k, v lua.LValue) {
		if _, ok := v.(*lua.LFunction); !ok {
			return
		}
		if s, ok := k.(lua.LString); ok {
			kinds = append(kinds, string(s))
		}
	})
	sort.Strings(kinds)
	return kinds
}

func (e *Engine) function(kind string) (*lua.LFunction, bool) {
	fn, ok := e.patterns.RawGetString(kind).(*lua.LFunction)
	return fn, ok
}

// Result is the raw output of a pattern call: an offset from the
// instance's base position and a yaw about +Y.
type Result struct {
	X, Y, Z float64
	Yaw     float64
}

// Call invokes patterns[kind](t, inst). inst fields are copied into a fresh
// table. The first failure of each kind is logged as an error, repeats at
// debug level.
func (e *Engine) Call(kind string, t float64, inst map[string]float64) (Result, error) {
	fn, ok := e.function(kind)
	if !ok {
		return Result{}, fmt.Errorf("lua pattern %q not defined", kind)
	}

	arg := e.vm.NewTable()
	for k, v := range inst {
		arg.RawSetString(k, lua.LNumber(v))
	}

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, lua.LNumber(t), arg); err != nil {
		e.report(kind, err)
		return Result{}, err
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)

	rt, ok := result.(*lua.LTable)
	if !ok {
		err := fmt.Errorf("lua pattern %q returned %s, want table", kind, result.Type())
		e.report(kind, err)
		return Result{}, err
	}
	return Result{
		X:   lNum(rt, "x"),
		Y:   lNum(rt, "y"),
		Z:   lNum(rt, "z"),
		Yaw: lNum(rt, "yaw"),
	}, nil
}

func (e *Engine) report(kind string, err error) {
	if e.failed[kind] {
		e.log.Debug("lua pattern error", zap.String("kind", kind), zap.Error(err))
		return
	}
	e.failed[kind] = true
	e.log.Error("lua pattern error", zap.String("kind", kind), zap.Error(err))
}

// --- Lua helpers ---

// lNum reads a number field from a Lua table; missing fields read as 0.
func lNum(t *lua.LTable, key string) float64 {
	return float64(lua.LVAsNumber(t.RawGetString(key)))
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
