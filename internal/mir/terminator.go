package mir

// TermKind enumerates terminator kinds.
type TermKind uint8

const (
	// TermNone marks a block whose terminator was never set.
	TermNone TermKind = iota
	// TermGoto branches unconditionally.
	TermGoto
	// TermSwitchInt branches on an integer discriminant.
	TermSwitchInt
	// TermReturn returns from the function, optionally with a value.
	TermReturn
	// TermUnreachable marks control flow that cannot be reached.
	TermUnreachable
)

// GotoTerm branches to Target.
type GotoTerm struct {
	Target BlockID
}

// SwitchCase pairs one match value with its target block.
type SwitchCase struct {
	Value  Constant
	Target BlockID
}

// SwitchIntTerm branches on Discr: one arm per case, Default otherwise.
type SwitchIntTerm struct {
	Discr   Operand
	Cases   []SwitchCase
	Default BlockID
}

// ReturnTerm returns Value when HasValue is set, otherwise returns void.
type ReturnTerm struct {
	HasValue bool
	Value    Operand
}

// Terminator is a tagged union over all terminator kinds.
type Terminator struct {
	Kind TermKind

	Goto   GotoTerm
	Switch SwitchIntTerm
	Return ReturnTerm
}
