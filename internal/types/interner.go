package types

import (
	"fmt"

	"fortio.org/safecast"
)

// Builtins stores TypeIDs for common primitive types.
type Builtins struct {
	Invalid TypeID
	Unit    TypeID
	Never   TypeID
	Bool    TypeID
	Char    TypeID
	Int32   TypeID
	Uint32  TypeID
	Isize   TypeID
	Usize   TypeID
}

// Interner provides stable TypeIDs by hashing structural descriptors.
// It doubles as the type registry the backend queries during emission.
type Interner struct {
	types    []Type
	index    map[Type]TypeID
	builtins Builtins
	structs  []StructInfo
}

// NewInterner constructs an interner seeded with built-in primitives.
func NewInterner() *Interner {
	in := &Interner{
		index: make(map[Type]TypeID, 32),
	}
	in.structs = append(in.structs, StructInfo{}) // reserve 0 as invalid sentinel
	in.builtins.Invalid = in.internRaw(Type{Kind: KindInvalid})
	in.builtins.Unit = in.Intern(Type{Kind: KindUnit})
	in.builtins.Never = in.Intern(Type{Kind: KindNever})
	in.builtins.Bool = in.Intern(Type{Kind: KindBool})
	in.builtins.Char = in.Intern(Type{Kind: KindChar})
	in.builtins.Int32 = in.Intern(MakeInt(Width32))
	in.builtins.Uint32 = in.Intern(MakeUint(Width32))
	// isize/usize are 32-bit on every target the backend currently emits for.
	in.builtins.Isize = in.builtins.Int32
	in.builtins.Usize = in.builtins.Uint32
	return in
}

// Builtins returns TypeIDs for primitive types.
func (in *Interner) Builtins() Builtins {
	return in.builtins
}

// Intern ensures the provided descriptor has a stable TypeID.
func (in *Interner) Intern(t Type) TypeID {
	if t.Kind == KindInvalid {
		return NoTypeID
	}
	if id, ok := in.index[t]; ok {
		return id
	}
	return in.internRaw(t)
}

func (in *Interner) internRaw(t Type) TypeID {
	lenTypes, err := safecast.Conv[uint32](len(in.types))
	if err != nil {
		panic(fmt.Sprintf("types: interner overflow: %v", err))
	}
	id := TypeID(lenTypes + 1)
	in.types = append(in.types, t)
	in.index[t] = id
	return id
}

// Lookup returns the descriptor for the given id, or false for an unknown id.
func (in *Interner) Lookup(id TypeID) (Type, bool) {
	if id == NoTypeID {
		return Type{}, false
	}
	idx := int(id) - 1
	if idx < 0 || idx >= len(in.types) {
		return Type{}, false
	}
	return in.types[idx], true
}

// Len reports how many types have been interned.
func (in *Interner) Len() int {
	return len(in.types)
}

// RegisterStruct records a struct layout and returns its struct type id.
// Fields may be filled in later via SetStructFields for recursive layouts.
func (in *Interner) RegisterStruct(name string, fields []Field) TypeID {
	lenStructs, err := safecast.Conv[uint32](len(in.structs))
	if err != nil {
		panic(fmt.Sprintf("types: struct table overflow: %v", err))
	}
	sid := StructID(lenStructs)
	in.structs = append(in.structs, StructInfo{Name: name, Fields: fields})
	return in.Intern(MakeStruct(sid))
}

// SetStructFields replaces the recorded field list of a struct.
func (in *Interner) SetStructFields(id StructID, fields []Field) error {
	if id == NoStructID || int(id) >= len(in.structs) {
		return fmt.Errorf("types: unknown struct id %d", id)
	}
	in.structs[id].Fields = fields
	return nil
}

// Struct returns the layout info for a registered struct.
func (in *Interner) Struct(id StructID) (StructInfo, bool) {
	if id == NoStructID || int(id) >= len(in.structs) {
		return StructInfo{}, false
	}
	return in.structs[id], true
}
