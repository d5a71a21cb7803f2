package mir

// StmtKind enumerates statement kinds.
type StmtKind uint8

const (
	// StmtDefine computes an RValue into a fresh temporary.
	StmtDefine StmtKind = iota
	// StmtLoad reads a Place into a fresh temporary.
	StmtLoad
	// StmtAssign stores an operand into a Place.
	StmtAssign
	// StmtCall invokes a function, optionally binding the result.
	StmtCall
)

// DefineStmt computes an RValue into Dest.
type DefineStmt struct {
	Dest  TempID
	Value RValue
}

// LoadStmt reads Src into Dest.
type LoadStmt struct {
	Dest TempID
	Src  Place
}

// AssignStmt stores Src into Dest.
type AssignStmt struct {
	Dest Place
	Src  Operand
}

// CallTargetKind distinguishes internal definitions from extern declarations.
type CallTargetKind uint8

const (
	// CallInternal targets a function defined in this module.
	CallInternal CallTargetKind = iota
	// CallExtern targets a declared external function.
	CallExtern
)

// CallTarget names the callee of a CallStmt by id.
type CallTarget struct {
	Kind   CallTargetKind
	Func   FuncID
	Extern ExternID
}

// CallStmt invokes Target with Args. HasDest is false for unit-returning
// calls, which produce no value.
type CallStmt struct {
	HasDest bool
	Dest    TempID
	Target  CallTarget
	Args    []Operand
}

// Stmt is a tagged union over all statement kinds.
type Stmt struct {
	Kind StmtKind

	Define DefineStmt
	Load   LoadStmt
	Assign AssignStmt
	Call   CallStmt
}
