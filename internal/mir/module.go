package mir

import "rill/internal/types"

// GlobalKind enumerates module-level globals.
type GlobalKind uint8

const (
	// GlobalString holds string-literal data.
	GlobalString GlobalKind = iota
)

// Global is one module-level declaration.
type Global struct {
	Kind GlobalKind
	Str  StringData
}

// ExternFunc declares a function defined outside the module.
type ExternFunc struct {
	Name   string
	Params []types.TypeID
	Result types.TypeID
}

// Module is a validated MIR compilation unit. The backend treats it as
// read-only.
type Module struct {
	Name    string
	Funcs   []Func
	Externs []ExternFunc
	Globals []Global
}

// Func returns the function with the given id, or false.
func (m *Module) Func(id FuncID) (*Func, bool) {
	if id < 0 || int(id) >= len(m.Funcs) {
		return nil, false
	}
	return &m.Funcs[id], true
}

// Extern returns the extern declaration with the given id, or false.
func (m *Module) Extern(id ExternID) (*ExternFunc, bool) {
	if id < 0 || int(id) >= len(m.Externs) {
		return nil, false
	}
	return &m.Externs[id], true
}

// Global returns the global with the given id, or false.
func (m *Module) Global(id GlobalID) (*Global, bool) {
	if id < 0 || int(id) >= len(m.Globals) {
		return nil, false
	}
	return &m.Globals[id], true
}
