package mir

import "rill/internal/types"

// BinOp enumerates binary operation kinds. Signedness is baked into the kind
// by upstream type checking, so classification here is a plain table.
type BinOp uint8

const (
	BinIAdd BinOp = iota
	BinUAdd
	BinISub
	BinUSub
	BinIMul
	BinUMul
	BinIDiv
	BinUDiv
	BinIRem
	BinURem
	BinBoolAnd
	BinBitAnd
	BinBoolOr
	BinBitOr
	BinBitXor
	BinShl
	BinShrLogical
	BinShrArith
	BinICmpEq
	BinICmpNe
	BinICmpLt
	BinICmpLe
	BinICmpGt
	BinICmpGe
	BinUCmpEq
	BinUCmpNe
	BinUCmpLt
	BinUCmpLe
	BinUCmpGt
	BinUCmpGe
	BinBoolEq
	BinBoolNe
)

// UnOp enumerates unary operation kinds.
type UnOp uint8

const (
	// UnNot flips booleans via xor true and integers via xor -1.
	UnNot UnOp = iota
	// UnNeg subtracts the operand from zero.
	UnNeg
	// UnDeref loads through the operand's pointer.
	UnDeref
)

// RValueKind enumerates right-hand-side expression kinds.
type RValueKind uint8

const (
	// RValConst wraps a constant.
	RValConst RValueKind = iota
	// RValBinary applies a binary operation to two operands.
	RValBinary
	// RValUnary applies a unary operation to one operand.
	RValUnary
	// RValRef takes the address of a place.
	RValRef
	// RValAggregate constructs a struct/array value from ordered elements.
	RValAggregate
	// RValRepeat constructs an array from one element repeated count times.
	RValRepeat
	// RValCast converts an operand to a target type.
	RValCast
	// RValFieldAccess extracts a field from an in-register aggregate value.
	// Deprecated: new MIR should load through a Place instead; kept so old
	// serialized modules stay emittable.
	RValFieldAccess
)

// ConstRValue wraps a constant.
type ConstRValue struct {
	Const Constant
}

// BinaryRValue applies Op to LHS and RHS.
type BinaryRValue struct {
	Op  BinOp
	LHS Operand
	RHS Operand
}

// UnaryRValue applies Op to one operand.
type UnaryRValue struct {
	Op      UnOp
	Operand Operand
}

// RefRValue takes the address of a place.
type RefRValue struct {
	Place Place
}

// AggregateRValue builds a struct/array value element by element.
type AggregateRValue struct {
	Elems []Operand
}

// RepeatRValue builds an array of Count copies of Value. Count is always a
// statically known size by the time this stage runs.
type RepeatRValue struct {
	Value Operand
	Count uint32
}

// CastRValue converts Value to Target.
type CastRValue struct {
	Value  Operand
	Target types.TypeID
}

// FieldAccessRValue extracts field Index from the aggregate held in Base.
type FieldAccessRValue struct {
	Base  TempID
	Index int
}

// RValue is a tagged union over all right-hand-side expression kinds.
type RValue struct {
	Kind RValueKind

	Const     ConstRValue
	Binary    BinaryRValue
	Unary     UnaryRValue
	Ref       RefRValue
	Aggregate AggregateRValue
	Repeat    RepeatRValue
	Cast      CastRValue
	Field     FieldAccessRValue
}
