package mir

import "rill/internal/types"

// PhiIncoming names the value flowing in from one predecessor block.
type PhiIncoming struct {
	Block BlockID
	Value TempID
}

// Phi joins per-predecessor values into Dest.
type Phi struct {
	Dest     TempID
	Incoming []PhiIncoming
}

// Block is one basic block: phis first, then statements, then exactly one
// terminator.
type Block struct {
	Phis  []Phi
	Stmts []Stmt
	Term  Terminator
}

// Terminated reports whether the block's terminator has been set.
func (b *Block) Terminated() bool {
	if b == nil {
		return true
	}
	return b.Term.Kind != TermNone
}

// Func is one MIR function body.
type Func struct {
	ID     FuncID
	Name   string
	Result types.TypeID

	Params    []Param
	Locals    []Local
	TempTypes []types.TypeID
	Blocks    []Block
	Entry     BlockID
}

// TempType returns the recorded type of a temporary, or false for an
// out-of-range id.
func (f *Func) TempType(id TempID) (types.TypeID, bool) {
	if id < 0 || int(id) >= len(f.TempTypes) {
		return types.NoTypeID, false
	}
	return f.TempTypes[id], true
}

// LocalInfo returns the declared info of a local, or false for an
// out-of-range id.
func (f *Func) LocalInfo(id LocalID) (Local, bool) {
	if id < 0 || int(id) >= len(f.Locals) {
		return Local{}, false
	}
	return f.Locals[id], true
}
