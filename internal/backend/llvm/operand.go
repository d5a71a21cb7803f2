package llvm

import (
	"fmt"
	"strconv"

	"rill/internal/mir"
	"rill/internal/types"
)

// typedValue is a materialized operand: its type text, its value text, and
// the TypeID both were derived from.
type typedValue struct {
	typeName string
	value    string
	id       types.TypeID
}

// operand turns a MIR operand into a typed textual value. Temporaries must
// already be defined; constants resolve their own type or fall back to the
// caller-supplied expectation.
func (fe *funcEmitter) operand(op mir.Operand, expected types.TypeID) (typedValue, error) {
	switch op.Kind {
	case mir.OperandTemp:
		ty, err := fe.tempType(op.Temp)
		if err != nil {
			return typedValue{}, err
		}
		if int(op.Temp) >= len(fe.defined) || !fe.defined[op.Temp] {
			return typedValue{}, fmt.Errorf("temporary %d used before definition", op.Temp)
		}
		tyName, err := fe.e.tf.TypeName(ty)
		if err != nil {
			return typedValue{}, err
		}
		return typedValue{typeName: tyName, value: TempName(op.Temp), id: ty}, nil
	case mir.OperandConst:
		return fe.materializeConstant(op.Const, expected, "")
	default:
		return typedValue{}, fmt.Errorf("unknown operand kind %d", op.Kind)
	}
}

// materializeConstant synthesizes a value for an inline constant. Non-string
// constants are given a real definition via `add <ty> 0, <literal>` so the
// result is an ordinary named value; string constants resolve to a pointer
// into an interned module-level global. A non-empty dest forces the result
// name.
func (fe *funcEmitter) materializeConstant(c mir.Constant, fallback types.TypeID, dest string) (typedValue, error) {
	ctype := c.Type
	if ctype == types.NoTypeID {
		ctype = fallback
	}
	if ctype == types.NoTypeID {
		return typedValue{}, fmt.Errorf("constant operand carries no resolved type")
	}
	if c.Kind == mir.ConstString {
		return fe.emitStringConstant(ctype, c.Str, dest)
	}

	tyName, err := fe.e.tf.TypeName(ctype)
	if err != nil {
		return typedValue{}, err
	}
	literal, err := formatConstant(c)
	if err != nil {
		return typedValue{}, err
	}
	var value string
	if dest != "" {
		value, err = fe.cur.BinaryInto(dest, "add", tyName, "0", literal)
	} else {
		value, err = fe.cur.Binary("add", tyName, "0", literal, "")
	}
	if err != nil {
		return typedValue{}, err
	}
	return typedValue{typeName: tyName, value: value, id: ctype}, nil
}

// formatConstant renders a constant as an immediate literal. Strings never
// appear inline; they live in module-level globals.
func formatConstant(c mir.Constant) (string, error) {
	switch c.Kind {
	case mir.ConstBool:
		if c.Bool {
			return "1", nil
		}
		return "0", nil
	case mir.ConstInt:
		text := strconv.FormatUint(c.Int.Value, 10)
		if c.Int.Negative {
			return "-" + text, nil
		}
		return text, nil
	case mir.ConstChar:
		return strconv.FormatUint(uint64(c.Char), 10), nil
	case mir.ConstUnit:
		// Zero-valued placeholder; a unit value is never actually loaded.
		return "0", nil
	case mir.ConstString:
		return "", fmt.Errorf("string constants cannot be inlined as immediates")
	default:
		return "", fmt.Errorf("unknown constant kind %d", c.Kind)
	}
}

// emitStringConstant yields a pointer to the interned global holding the
// string's bytes, bitcast to the destination type when the spellings differ.
func (fe *funcEmitter) emitStringConstant(resultType types.TypeID, data mir.StringData, dest string) (typedValue, error) {
	global := fe.e.mb.InternString(data.Data, data.CStyle)
	arrayType := fmt.Sprintf("[%d x i8]", len(data.Data))
	destTypeName, err := fe.e.tf.TypeName(resultType)
	if err != nil {
		return typedValue{}, err
	}
	const charPtr = "i8*"
	needsCast := destTypeName != charPtr
	indices := []Index{{Type: "i32", Value: "0"}, {Type: "i32", Value: "0"}}

	var elemPtr string
	if dest != "" && !needsCast {
		elemPtr, err = fe.cur.GEPInto(dest, arrayType, arrayType+"*", global, indices)
	} else {
		elemPtr, err = fe.cur.GEP(arrayType, arrayType+"*", global, indices, "str")
	}
	if err != nil {
		return typedValue{}, err
	}
	if !needsCast {
		return typedValue{typeName: destTypeName, value: elemPtr, id: resultType}, nil
	}

	var value string
	if dest != "" {
		value, err = fe.cur.CastInto(dest, "bitcast", charPtr, elemPtr, destTypeName)
	} else {
		value, err = fe.cur.Cast("bitcast", charPtr, elemPtr, destTypeName, "str")
	}
	if err != nil {
		return typedValue{}, err
	}
	return typedValue{typeName: destTypeName, value: value, id: resultType}, nil
}
