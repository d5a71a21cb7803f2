package mir

import "rill/internal/types"

// ConstKind enumerates constant kinds.
type ConstKind uint8

const (
	// ConstBool is a boolean constant.
	ConstBool ConstKind = iota
	// ConstInt is a signed or unsigned integer constant.
	ConstInt
	// ConstUnit is the unit constant; it is never materialized as a value.
	ConstUnit
	// ConstChar is a character constant.
	ConstChar
	// ConstString references string data held by a module-level global.
	ConstString
)

// IntValue is a decimal integer magnitude with an explicit sign.
type IntValue struct {
	Value    uint64
	Negative bool
}

// StringData is raw string-literal content.
type StringData struct {
	Data   string
	CStyle bool
}

// Constant is a fully evaluated compile-time value. Type may be NoTypeID for
// constants whose type is supplied by the consuming context.
type Constant struct {
	Kind ConstKind
	Type types.TypeID

	Bool bool
	Int  IntValue
	Char byte
	Str  StringData
}

// IsZero reports whether the constant is the zero/false value of its type.
// String constants are never zero.
func (c Constant) IsZero() bool {
	switch c.Kind {
	case ConstBool:
		return !c.Bool
	case ConstInt:
		return c.Int.Value == 0
	case ConstChar:
		return c.Char == 0
	default:
		return false
	}
}

// BoolConst builds a typed boolean constant.
func BoolConst(v bool, ty types.TypeID) Constant {
	return Constant{Kind: ConstBool, Type: ty, Bool: v}
}

// IntConst builds a typed integer constant from a signed value.
func IntConst(v int64, ty types.TypeID) Constant {
	c := Constant{Kind: ConstInt, Type: ty}
	if v < 0 {
		c.Int = IntValue{Value: uint64(-v), Negative: true}
	} else {
		c.Int = IntValue{Value: uint64(v)}
	}
	return c
}

// CharConst builds a typed character constant.
func CharConst(v byte, ty types.TypeID) Constant {
	return Constant{Kind: ConstChar, Type: ty, Char: v}
}

// StringConst builds a string constant of the given pointer type.
func StringConst(data string, ty types.TypeID) Constant {
	return Constant{Kind: ConstString, Type: ty, Str: StringData{Data: data}}
}
