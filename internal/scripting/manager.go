package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/tithe/internal/game/dice"
)

// GlobalScope is the reserved key for scripts loaded via LoadGlobal.
// CallHook falls back to this VM when the requested scope has none.
const GlobalScope = "__global__"

type vm struct {
	mu    sync.Mutex
	L     *lua.LState
	limit int
}

// Manager owns one sandboxed LState per scope and dispatches hooks.
//
// Manager is safe for concurrent use. Calls into the same scope are
// serialized; different scopes run concurrently.
type Manager struct {
	mu     sync.RWMutex
	vms    map[string]*vm
	src    dice.Source
	logger *zap.Logger
}

// NewManager creates a Manager whose engine.dice module draws from src.
//
// Precondition: src and logger must be non-nil.
// Postcondition: Returns a Manager with no scopes loaded.
func NewManager(src dice.Source, logger *zap.Logger) *Manager {
	if src == nil {
		panic("scripting.NewManager: src must not be nil")
	}
	if logger == nil {
		panic("scripting.NewManager: logger must not be nil")
	}
	return &Manager{
		vms:    make(map[string]*vm),
		src:    src,
		logger: logger,
	}
}

// LoadScope creates a sandboxed VM for scope, registers the engine modules,
// then executes every *.lua file in scriptDir in lexicographic order.
// Loading a scope again replaces its VM.
//
// Precondition: scope must be non-empty; scriptDir must be a readable directory.
// Postcondition: The scope VM is registered, or an error names the failing file.
func (m *Manager) LoadScope(scope, scriptDir string, instLimit int) error {
	if scope == "" {
		return fmt.Errorf("scripting: scope must not be empty")
	}
	L := NewSandboxedState()
	m.RegisterModules(L, scope)

	entries, err := os.ReadDir(scriptDir)
	if err != nil {
		L.Close()
		return fmt.Errorf("scripting: reading script dir %q for %q: %w", scriptDir, scope, err)
	}

	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			luaFiles = append(luaFiles, filepath.Join(scriptDir, e.Name()))
		}
	}
	sort.Strings(luaFiles)

	for _, path := range luaFiles {
		if err := Limited(L, instLimit, func() error { return L.DoFile(path) }); err != nil {
			L.Close()
			return fmt.Errorf("scripting: loading %q for %q: %w", path, scope, err)
		}
	}

	m.mu.Lock()
	if old, ok := m.vms[scope]; ok {
		old.mu.Lock()
		old.L.Close()
		old.mu.Unlock()
	}
	m.vms[scope] = &vm{L: L, limit: instLimit}
	m.mu.Unlock()
	m.logger.Debug("scripting: scope loaded", zap.String("scope", scope), zap.Int("files", len(luaFiles)))
	return nil
}

// LoadGlobal loads the fallback scope used when a hook's scope has no VM.
func (m *Manager) LoadGlobal(scriptDir string, instLimit int) error {
	return m.LoadScope(GlobalScope, scriptDir, instLimit)
}

// HasScope reports whether a VM is loaded for scope.
func (m *Manager) HasScope(scope string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.vms[scope]
	return ok
}

// CallHook calls the named Lua global function in scope's VM, falling back to
// the global VM. Go arguments are converted with ToLValue. Returns (LNil, nil)
// if the hook is not defined or no VM exists. Lua runtime errors are logged
// at Warn level and never propagated.
//
// Postcondition: Returns the first return value of the hook, or LNil.
func (m *Manager) CallHook(scope, hook string, args ...any) (lua.LValue, error) {
	m.mu.RLock()
	v, ok := m.vms[scope]
	if !ok {
		v = m.vms[GlobalScope]
	}
	m.mu.RUnlock()

	if v == nil {
		m.logger.Debug("scripting: no VM for scope",
			zap.String("scope", scope),
			zap.String("hook", hook),
		)
		return lua.LNil, nil
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	L := v.L

	fn := L.GetGlobal(hook)
	if fn == lua.LNil {
		return lua.LNil, nil
	}

	largs := make([]lua.LValue, len(args))
	for i, a := range args {
		largs[i] = ToLValue(L, a)
	}
	err := Limited(L, v.limit, func() error {
		return L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, largs...)
	})
	if err != nil {
		m.logger.Warn("scripting: Lua runtime error",
			zap.String("scope", scope),
			zap.String("hook", hook),
			zap.Error(err),
		)
		return lua.LNil, nil
	}

	ret := L.Get(-1)
	L.Pop(1)
	return ret, nil
}

// Close releases every VM. Subsequent CallHook calls return LNil.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for scope, v := range m.vms {
		v.mu.Lock()
		v.L.Close()
		v.mu.Unlock()
		delete(m.vms, scope)
	}
}

// ToLValue converts a Go value into a Lua value owned by L. Maps and slices
// become tables; unknown types are formatted with fmt.Sprint.
func ToLValue(L *lua.LState, v any) lua.LValue {
	switch x := v.(type) {
	case nil:
		return lua.LNil
	case lua.LValue:
		return x
	case string:
		return lua.LString(x)
	case bool:
		return lua.LBool(x)
	case int:
		return lua.LNumber(x)
	case int64:
		return lua.LNumber(x)
	case float64:
		return lua.LNumber(x)
	case []string:
		tbl := L.NewTable()
		for _, s := range x {
			tbl.Append(lua.LString(s))
		}
		return tbl
	case []any:
		tbl := L.NewTable()
		for _, e := range x {
			tbl.Append(ToLValue(L, e))
		}
		return tbl
	case []map[string]any:
		tbl := L.NewTable()
		for _, e := range x {
			tbl.Append(ToLValue(L, e))
		}
		return tbl
	case map[string]any:
		tbl := L.NewTable()
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			tbl.RawSetString(k, ToLValue(L, x[k]))
		}
		return tbl
	case fmt.Stringer:
		return lua.LString(x.String())
	default:
		return lua.LString(fmt.Sprint(x))
	}
}
