package llvm

import (
	"fmt"
	"strings"
)

// Param is one declared parameter of a function definition.
type Param struct {
	Type string
	Name string
}

// Arg pairs an argument's type text with its value text.
type Arg struct {
	Type  string
	Value string
}

// Incoming is one phi edge: a value and the label it flows in from.
type Incoming struct {
	Value string
	Label string
}

// Index is one getelementptr index operand.
type Index struct {
	Type  string
	Value string
}

// ModuleBuilder accumulates a textual LLVM module: named type definitions,
// globals and function definitions, serialized in that fixed order.
type ModuleBuilder struct {
	moduleID     string
	dataLayout   string
	targetTriple string

	typeDefs []TypeDef
	globals  []string
	funcs    []*FuncBuilder

	strings      map[stringKey]string
	nextStringID int
}

type stringKey struct {
	data   string
	cstyle bool
}

// NewModuleBuilder creates an empty module with the given identifier.
func NewModuleBuilder(moduleID string) *ModuleBuilder {
	if moduleID == "" {
		moduleID = "rill-module"
	}
	return &ModuleBuilder{
		moduleID: moduleID,
		strings:  make(map[stringKey]string),
	}
}

// SetDataLayout records the target datalayout string, emitted verbatim.
func (m *ModuleBuilder) SetDataLayout(layout string) {
	m.dataLayout = layout
}

// SetTargetTriple records the target triple string, emitted verbatim.
func (m *ModuleBuilder) SetTargetTriple(triple string) {
	m.targetTriple = triple
}

// AddTypeDef registers a named aggregate type definition.
func (m *ModuleBuilder) AddTypeDef(name, body string) error {
	if name == "" {
		return fmt.Errorf("llvm: type name cannot be empty")
	}
	name = strings.TrimPrefix(name, "%")
	m.typeDefs = append(m.typeDefs, TypeDef{Name: name, Body: body})
	return nil
}

// AddGlobal appends a complete global declaration line.
func (m *ModuleBuilder) AddGlobal(decl string) error {
	if decl == "" {
		return fmt.Errorf("llvm: global declaration cannot be empty")
	}
	m.globals = append(m.globals, decl)
	return nil
}

// AddFunc creates a function builder owned by this module. The entry block
// is created eagerly.
func (m *ModuleBuilder) AddFunc(name, returnType string, params []Param) (*FuncBuilder, error) {
	if name == "" {
		return nil, fmt.Errorf("llvm: function name cannot be empty")
	}
	fb := &FuncBuilder{
		name:       ensurePrefix(name, '@'),
		returnType: returnType,
		params:     make([]Param, len(params)),
		valueNames: make(map[string]int),
		blockNames: make(map[string]int),
	}
	copy(fb.params, params)
	for i := range fb.params {
		if fb.params[i].Name == "" {
			fb.params[i].Name = fmt.Sprintf("%%arg%d", i)
		}
		fb.params[i].Name = ensurePrefix(fb.params[i].Name, '%')
	}
	fb.addBlock("entry")
	m.funcs = append(m.funcs, fb)
	return fb, nil
}

// InternString returns the module-level global holding the given string
// data, creating it on first use. Identical byte content always maps to the
// same global.
func (m *ModuleBuilder) InternString(data string, cstyle bool) string {
	key := stringKey{data: data, cstyle: cstyle}
	if name, ok := m.strings[key]; ok {
		return name
	}
	name := fmt.Sprintf("@str.%d", m.nextStringID)
	m.nextStringID++
	decl := fmt.Sprintf("%s = private unnamed_addr constant [%d x i8] c\"%s\"",
		name, len(data), escapeStringLiteral(data))
	m.globals = append(m.globals, decl)
	m.strings[key] = name
	return name
}

// String assembles the whole module: header, type definitions, globals,
// then function definitions.
func (m *ModuleBuilder) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "; ModuleID = '%s'\n", m.moduleID)
	if m.dataLayout != "" {
		fmt.Fprintf(&sb, "target datalayout = \"%s\"\n", m.dataLayout)
	}
	if m.targetTriple != "" {
		fmt.Fprintf(&sb, "target triple = \"%s\"\n", m.targetTriple)
	}
	hasBody := len(m.typeDefs) > 0 || len(m.globals) > 0 || len(m.funcs) > 0
	// The separator belongs to the target block, not the identifier comment.
	if hasBody && (m.dataLayout != "" || m.targetTriple != "") {
		sb.WriteString("\n")
	}

	if len(m.typeDefs) > 0 {
		for _, def := range m.typeDefs {
			fmt.Fprintf(&sb, "%%%s = type %s\n", def.Name, def.Body)
		}
		if len(m.globals) > 0 || len(m.funcs) > 0 {
			sb.WriteString("\n")
		}
	}
	if len(m.globals) > 0 {
		for _, g := range m.globals {
			sb.WriteString(g)
			sb.WriteString("\n")
		}
		if len(m.funcs) > 0 {
			sb.WriteString("\n")
		}
	}
	for i, fb := range m.funcs {
		sb.WriteString(fb.String())
		if i+1 < len(m.funcs) {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// FuncBuilder owns one function definition: its signature, ordered blocks
// and the per-function counters that keep value names and labels unique.
type FuncBuilder struct {
	name       string
	returnType string
	params     []Param
	blocks     []*BlockBuilder

	valueNames map[string]int
	blockNames map[string]int
}

// Name returns the normalized function symbol, including the '@' prefix.
func (f *FuncBuilder) Name() string { return f.name }

// Params returns the normalized parameter list.
func (f *FuncBuilder) Params() []Param { return f.params }

// EntryBlock returns the function's entry block.
func (f *FuncBuilder) EntryBlock() *BlockBuilder {
	return f.blocks[0]
}

// NewBlock appends a block labeled after the hint, uniquing the label within
// the function.
func (f *FuncBuilder) NewBlock(hint string) *BlockBuilder {
	return f.addBlock(hint)
}

func (f *FuncBuilder) addBlock(hint string) *BlockBuilder {
	label := f.uniqueName(f.blockNames, sanitizeHint(hint, "block"))
	b := &BlockBuilder{parent: f, label: label}
	f.blocks = append(f.blocks, b)
	return b
}

// allocValueName mints a fresh '%'-prefixed value name from a hint. The
// first use of a hint gets the bare name, later uses get ".1", ".2", …
func (f *FuncBuilder) allocValueName(hint string) string {
	return "%" + f.uniqueName(f.valueNames, sanitizeHint(hint, "tmp"))
}

func (f *FuncBuilder) uniqueName(counters map[string]int, base string) string {
	n := counters[base]
	counters[base] = n + 1
	if n == 0 {
		return base
	}
	return fmt.Sprintf("%s.%d", base, n)
}

// String serializes the signature line and every block in creation order.
// A block that never received a terminator is patched with `unreachable` so
// the output stays parseable.
// TODO: once the frontend's exit-check pass guarantees terminators on every
// lowered block, turn the patch into an internal-consistency error.
func (f *FuncBuilder) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "define %s %s(", f.returnType, f.name)
	for i, p := range f.params {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%s %s", p.Type, p.Name)
	}
	sb.WriteString(") {\n")
	for _, b := range f.blocks {
		fmt.Fprintf(&sb, "%s:\n", b.label)
		for _, line := range b.lines {
			sb.WriteString(line)
			sb.WriteString("\n")
		}
		if !b.sealed {
			sb.WriteString("  unreachable\n")
		}
	}
	sb.WriteString("}\n")
	return sb.String()
}
