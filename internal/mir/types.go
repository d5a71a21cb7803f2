package mir

import "rill/internal/types"

type FuncID int32
type BlockID int32
type LocalID int32
type TempID int32
type GlobalID int32
type ExternID int32

const (
	NoFuncID   FuncID   = -1
	NoBlockID  BlockID  = -1
	NoLocalID  LocalID  = -1
	NoTempID   TempID   = -1
	NoGlobalID GlobalID = -1
	NoExternID ExternID = -1
)

// Local is one stack-allocated slot of a function.
type Local struct {
	Type types.TypeID
	Name string // optional debug name
	// ParamAlias marks a local that shares storage with an ABI-lowered
	// parameter instead of owning a fresh stack slot.
	ParamAlias bool
}

// Param declares one function parameter and names the local it writes to.
type Param struct {
	Local LocalID
	Name  string
	Type  types.TypeID
}

// PlaceBaseKind distinguishes the base storage of a Place.
type PlaceBaseKind uint8

const (
	// PlaceLocal addresses a function local's stack slot.
	PlaceLocal PlaceBaseKind = iota
	// PlaceGlobal addresses a module-level global.
	PlaceGlobal
	// PlaceDeref addresses through a pointer-typed temporary.
	PlaceDeref
)

// ProjKind distinguishes place projections.
type ProjKind uint8

const (
	// ProjField selects a struct field by index.
	ProjField ProjKind = iota
	// ProjIndex selects an array element by a runtime operand.
	ProjIndex
)

// Projection is one step of a place's address computation.
type Projection struct {
	Kind  ProjKind
	Field int
	Index Operand
}

// Place describes a memory location: a base plus ordered projections.
type Place struct {
	Base   PlaceBaseKind
	Local  LocalID
	Global GlobalID
	Ptr    TempID // for PlaceDeref
	Proj   []Projection
}

// OperandKind distinguishes value references.
type OperandKind uint8

const (
	// OperandTemp references a previously computed temporary.
	OperandTemp OperandKind = iota
	// OperandConst carries an inline compile-time constant.
	OperandConst
)

// Operand is a MIR value reference.
type Operand struct {
	Kind  OperandKind
	Temp  TempID
	Const Constant
}

// TempOperand wraps a temporary id as an operand.
func TempOperand(id TempID) Operand {
	return Operand{Kind: OperandTemp, Temp: id}
}

// ConstOperand wraps a constant as an operand.
func ConstOperand(c Constant) Operand {
	return Operand{Kind: OperandConst, Const: c}
}
