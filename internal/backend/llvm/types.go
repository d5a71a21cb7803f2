package llvm

import (
	"fmt"
	"strings"

	"rill/internal/types"
)

// TypeDef is one named aggregate declaration collected during formatting.
type TypeDef struct {
	Name string
	Body string
}

// TypeFormatter maps TypeIDs to LLVM type text. Results are memoized and
// named struct definitions are collected exactly once per struct identity,
// in first-use order.
type TypeFormatter struct {
	reg      *types.Interner
	names    map[types.TypeID]string
	defs     []TypeDef
	defIndex map[types.TypeID]int
	anons    int
}

// NewTypeFormatter creates a formatter backed by the given registry.
func NewTypeFormatter(reg *types.Interner) *TypeFormatter {
	return &TypeFormatter{
		reg:      reg,
		names:    make(map[types.TypeID]string),
		defIndex: make(map[types.TypeID]int),
	}
}

// StructDefs returns every named aggregate registered so far.
func (f *TypeFormatter) StructDefs() []TypeDef {
	return f.defs
}

// TypeName returns the LLVM spelling of a type. Unit and never have no
// representable value; asking for one is an internal-consistency defect in
// the caller.
func (f *TypeFormatter) TypeName(id types.TypeID) (string, error) {
	if name, ok := f.names[id]; ok {
		return name, nil
	}
	t, ok := f.reg.Lookup(id)
	if !ok {
		return "", fmt.Errorf("llvm: type name requested for unknown type %d", id)
	}
	switch t.Kind {
	case types.KindBool:
		return f.memo(id, "i1"), nil
	case types.KindChar:
		return f.memo(id, "i8"), nil
	case types.KindInt, types.KindUint:
		return f.memo(id, fmt.Sprintf("i%d", t.Width)), nil
	case types.KindUnit:
		return "", fmt.Errorf("llvm: unit type has no representable value")
	case types.KindNever:
		return "", fmt.Errorf("llvm: never type has no representable value")
	case types.KindReference:
		pointee, err := f.TypeName(t.Elem)
		if err != nil {
			return "", err
		}
		return f.memo(id, pointee+"*"), nil
	case types.KindArray:
		elem, err := f.TypeName(t.Elem)
		if err != nil {
			return "", err
		}
		return f.memo(id, fmt.Sprintf("[%d x %s]", t.Count, elem)), nil
	case types.KindStruct:
		return f.structName(id, t.Struct)
	default:
		return "", fmt.Errorf("llvm: type name requested for %s type", t.Kind)
	}
}

// PointerTypeName returns the spelling of a pointer to the given type.
func (f *TypeFormatter) PointerTypeName(id types.TypeID) (string, error) {
	name, err := f.TypeName(id)
	if err != nil {
		return "", err
	}
	return name + "*", nil
}

func (f *TypeFormatter) memo(id types.TypeID, name string) string {
	f.names[id] = name
	return name
}

func (f *TypeFormatter) structName(id types.TypeID, sid types.StructID) (string, error) {
	info, ok := f.reg.Struct(sid)
	if !ok {
		return "", fmt.Errorf("llvm: unknown struct id %d", sid)
	}
	symbol := info.Name
	if symbol == "" {
		symbol = fmt.Sprintf("anon.struct.%d", f.anons)
		f.anons++
	}
	// Memoize before formatting the body so self-referential fields (behind
	// references) resolve to the name instead of recursing.
	name := f.memo(id, "%"+symbol)
	idx, seen := f.defIndex[id]
	if !seen {
		idx = len(f.defs)
		f.defIndex[id] = idx
		f.defs = append(f.defs, TypeDef{Name: symbol})
	}
	body, err := f.structBody(info)
	if err != nil {
		return "", err
	}
	f.defs[idx].Body = body
	return name, nil
}

func (f *TypeFormatter) structBody(info types.StructInfo) (string, error) {
	if len(info.Fields) == 0 {
		return "{}", nil
	}
	var sb strings.Builder
	sb.WriteString("{ ")
	for i, field := range info.Fields {
		if field.Type == types.NoTypeID {
			return "", fmt.Errorf("llvm: struct %s field %d missing resolved type", info.Name, i)
		}
		name, err := f.TypeName(field.Type)
		if err != nil {
			return "", err
		}
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(name)
	}
	sb.WriteString(" }")
	return sb.String(), nil
}
