package types

import "fmt"

// Deref returns the pointee type of a reference type.
func (in *Interner) Deref(id TypeID) (TypeID, error) {
	t, ok := in.Lookup(id)
	if !ok {
		return NoTypeID, fmt.Errorf("types: deref of unknown type %d", id)
	}
	if t.Kind != KindReference {
		return NoTypeID, fmt.Errorf("types: deref of non-reference type %s", t.Kind)
	}
	return t.Elem, nil
}

// FieldAt returns the type of the struct field at the given index.
func (in *Interner) FieldAt(id TypeID, index int) (TypeID, error) {
	t, ok := in.Lookup(id)
	if !ok {
		return NoTypeID, fmt.Errorf("types: field of unknown type %d", id)
	}
	if t.Kind != KindStruct {
		return NoTypeID, fmt.Errorf("types: field projection on non-struct type %s", t.Kind)
	}
	info, ok := in.Struct(t.Struct)
	if !ok {
		return NoTypeID, fmt.Errorf("types: unknown struct id %d", t.Struct)
	}
	if index < 0 || index >= len(info.Fields) {
		return NoTypeID, fmt.Errorf("types: field index %d out of range for struct %s", index, info.Name)
	}
	return info.Fields[index].Type, nil
}

// ArrayElem returns the element type of an array type.
func (in *Interner) ArrayElem(id TypeID) (TypeID, error) {
	t, ok := in.Lookup(id)
	if !ok {
		return NoTypeID, fmt.Errorf("types: element of unknown type %d", id)
	}
	if t.Kind != KindArray {
		return NoTypeID, fmt.Errorf("types: index projection on non-array type %s", t.Kind)
	}
	return t.Elem, nil
}

// IsZeroInitializable reports whether the all-zero bit pattern is a valid
// value of the type. Recurses through arrays and struct fields; the type
// graph is finite and acyclic by construction so this terminates.
func (in *Interner) IsZeroInitializable(id TypeID) bool {
	t, ok := in.Lookup(id)
	if !ok {
		return false
	}
	switch t.Kind {
	case KindBool, KindChar, KindInt, KindUint:
		return true
	case KindArray:
		return in.IsZeroInitializable(t.Elem)
	case KindStruct:
		info, ok := in.Struct(t.Struct)
		if !ok {
			return false
		}
		for _, f := range info.Fields {
			if !in.IsZeroInitializable(f.Type) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// IsSigned reports whether the type is a signed integer.
func (in *Interner) IsSigned(id TypeID) bool {
	t, ok := in.Lookup(id)
	return ok && t.Kind == KindInt
}

// IsInteger reports whether the type lowers to an LLVM integer value:
// signed/unsigned integers, bool and char.
func (in *Interner) IsInteger(id TypeID) bool {
	t, ok := in.Lookup(id)
	if !ok {
		return false
	}
	switch t.Kind {
	case KindInt, KindUint, KindBool, KindChar:
		return true
	default:
		return false
	}
}

// IsReference reports whether the type is a reference.
func (in *Interner) IsReference(id TypeID) bool {
	t, ok := in.Lookup(id)
	return ok && t.Kind == KindReference
}

// IsUnit reports whether the type is the unit type.
func (in *Interner) IsUnit(id TypeID) bool {
	t, ok := in.Lookup(id)
	return ok && t.Kind == KindUnit
}

// BitWidth returns the value width in bits for integer-like types.
func (in *Interner) BitWidth(id TypeID) (int, error) {
	t, ok := in.Lookup(id)
	if !ok {
		return 0, fmt.Errorf("types: width of unknown type %d", id)
	}
	switch t.Kind {
	case KindBool:
		return 1, nil
	case KindChar:
		return 8, nil
	case KindInt, KindUint:
		return int(t.Width), nil
	default:
		return 0, fmt.Errorf("types: width of non-integer type %s", t.Kind)
	}
}
