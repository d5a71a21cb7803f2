package llvm

import (
	"fmt"
	"strings"
)

// BlockBuilder owns one basic block's ordered instruction text. Appending a
// terminator seals the block; a sealed block rejects every further append.
type BlockBuilder struct {
	parent *FuncBuilder
	label  string
	lines  []string
	sealed bool
}

// Label returns the block's unique label (without the '%' prefix).
func (b *BlockBuilder) Label() string { return b.label }

// Sealed reports whether a terminator has been appended.
func (b *BlockBuilder) Sealed() bool { return b.sealed }

func (b *BlockBuilder) appendValue(body, hint string) (string, error) {
	if b.sealed {
		return "", fmt.Errorf("llvm: append to terminated block %q", b.label)
	}
	name := b.parent.allocValueName(hint)
	b.lines = append(b.lines, "  "+name+" = "+body)
	return name, nil
}

func (b *BlockBuilder) appendNamed(dest, body string) (string, error) {
	if b.sealed {
		return "", fmt.Errorf("llvm: append to terminated block %q", b.label)
	}
	if dest == "" || dest[0] != '%' {
		return "", fmt.Errorf("llvm: value name %q must start with '%%'", dest)
	}
	b.lines = append(b.lines, "  "+dest+" = "+body)
	return dest, nil
}

func (b *BlockBuilder) appendVoid(body string) error {
	if b.sealed {
		return fmt.Errorf("llvm: append to terminated block %q", b.label)
	}
	b.lines = append(b.lines, "  "+body)
	return nil
}

func (b *BlockBuilder) appendTerminator(body string) error {
	if b.sealed {
		return fmt.Errorf("llvm: second terminator in block %q", b.label)
	}
	b.lines = append(b.lines, "  "+body)
	b.sealed = true
	return nil
}

// Instruction bodies ---------------------------------------------------------

func binaryBody(opcode, ty, lhs, rhs string) string {
	return fmt.Sprintf("%s %s %s, %s", opcode, ty, lhs, rhs)
}

func icmpBody(pred, ty, lhs, rhs string) string {
	return fmt.Sprintf("icmp %s %s %s, %s", pred, ty, lhs, rhs)
}

func phiBody(ty string, incomings []Incoming) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "phi %s ", ty)
	for i, in := range incomings {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "[ %s, %s ]", in.Value, formatLabelOperand(in.Label))
	}
	return sb.String()
}

func callBody(returnType, callee string, args []Arg) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "call %s %s(", returnType, callee)
	for i, a := range args {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%s %s", a.Type, a.Value)
	}
	sb.WriteString(")")
	return sb.String()
}

func gepBody(pointeeType, pointerType, pointer string, indices []Index) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "getelementptr inbounds %s, %s %s", pointeeType, pointerType, pointer)
	for _, idx := range indices {
		fmt.Fprintf(&sb, ", %s %s", idx.Type, idx.Value)
	}
	return sb.String()
}

func castBody(opcode, valueType, value, targetType string) string {
	return fmt.Sprintf("%s %s %s to %s", opcode, valueType, value, targetType)
}

func extractValueBody(aggType, aggValue string, index int) string {
	return fmt.Sprintf("extractvalue %s %s, %d", aggType, aggValue, index)
}

func insertValueBody(aggType, aggValue, elemType, elemValue string, index int) string {
	return fmt.Sprintf("insertvalue %s %s, %s %s, %d", aggType, aggValue, elemType, elemValue, index)
}

// Value instructions ---------------------------------------------------------

// Binary appends an arithmetic/bitwise instruction named from the hint.
func (b *BlockBuilder) Binary(opcode, ty, lhs, rhs, hint string) (string, error) {
	return b.appendValue(binaryBody(opcode, ty, lhs, rhs), hint)
}

// BinaryInto appends an arithmetic/bitwise instruction bound to dest.
func (b *BlockBuilder) BinaryInto(dest, opcode, ty, lhs, rhs string) (string, error) {
	return b.appendNamed(dest, binaryBody(opcode, ty, lhs, rhs))
}

// ICmpInto appends an integer comparison bound to dest.
func (b *BlockBuilder) ICmpInto(dest, pred, ty, lhs, rhs string) (string, error) {
	return b.appendNamed(dest, icmpBody(pred, ty, lhs, rhs))
}

// PhiInto appends a phi join bound to dest.
func (b *BlockBuilder) PhiInto(dest, ty string, incomings []Incoming) (string, error) {
	if len(incomings) == 0 {
		return "", fmt.Errorf("llvm: phi in block %q has no incoming edges", b.label)
	}
	return b.appendNamed(dest, phiBody(ty, incomings))
}

// Call appends a call. Void calls produce no value and return "".
func (b *BlockBuilder) Call(returnType, callee string, args []Arg, hint string) (string, error) {
	body := callBody(returnType, callee, args)
	if returnType == "void" {
		return "", b.appendVoid(body)
	}
	return b.appendValue(body, hint)
}

// CallInto appends a value-returning call bound to dest.
func (b *BlockBuilder) CallInto(dest, returnType, callee string, args []Arg) (string, error) {
	if returnType == "void" {
		return "", fmt.Errorf("llvm: cannot bind result of void call to %s", dest)
	}
	return b.appendNamed(dest, callBody(returnType, callee, args))
}

// LoadInto appends a load through pointer bound to dest.
func (b *BlockBuilder) LoadInto(dest, valueType, pointerType, pointer string) (string, error) {
	return b.appendNamed(dest, fmt.Sprintf("load %s, %s %s", valueType, pointerType, pointer))
}

// Store appends a store of value through pointer.
func (b *BlockBuilder) Store(valueType, value, pointerType, pointer string) error {
	return b.appendVoid(fmt.Sprintf("store %s %s, %s %s", valueType, value, pointerType, pointer))
}

// Alloca appends a stack allocation named from the hint.
func (b *BlockBuilder) Alloca(allocatedType, hint string) (string, error) {
	return b.appendValue("alloca "+allocatedType, hint)
}

// AllocaInto appends a stack allocation bound to dest.
func (b *BlockBuilder) AllocaInto(dest, allocatedType string) (string, error) {
	return b.appendNamed(dest, "alloca "+allocatedType)
}

// GEP appends a chained address computation named from the hint.
func (b *BlockBuilder) GEP(pointeeType, pointerType, pointer string, indices []Index, hint string) (string, error) {
	return b.appendValue(gepBody(pointeeType, pointerType, pointer, indices), hint)
}

// GEPInto appends a chained address computation bound to dest.
func (b *BlockBuilder) GEPInto(dest, pointeeType, pointerType, pointer string, indices []Index) (string, error) {
	return b.appendNamed(dest, gepBody(pointeeType, pointerType, pointer, indices))
}

// Cast appends a conversion instruction named from the hint.
func (b *BlockBuilder) Cast(opcode, valueType, value, targetType, hint string) (string, error) {
	return b.appendValue(castBody(opcode, valueType, value, targetType), hint)
}

// CastInto appends a conversion instruction bound to dest.
func (b *BlockBuilder) CastInto(dest, opcode, valueType, value, targetType string) (string, error) {
	return b.appendNamed(dest, castBody(opcode, valueType, value, targetType))
}

// ExtractValueInto appends a field extraction from an aggregate value.
func (b *BlockBuilder) ExtractValueInto(dest, aggType, aggValue string, index int) (string, error) {
	return b.appendNamed(dest, extractValueBody(aggType, aggValue, index))
}

// InsertValue appends an element insertion named from the hint.
func (b *BlockBuilder) InsertValue(aggType, aggValue, elemType, elemValue string, index int, hint string) (string, error) {
	return b.appendValue(insertValueBody(aggType, aggValue, elemType, elemValue, index), hint)
}

// InsertValueInto appends an element insertion bound to dest.
func (b *BlockBuilder) InsertValueInto(dest, aggType, aggValue, elemType, elemValue string, index int) (string, error) {
	return b.appendNamed(dest, insertValueBody(aggType, aggValue, elemType, elemValue, index))
}

// Terminators ----------------------------------------------------------------

// RetVoid seals the block with a bare return.
func (b *BlockBuilder) RetVoid() error {
	return b.appendTerminator("ret void")
}

// Ret seals the block with a value-returning return.
func (b *BlockBuilder) Ret(ty, value string) error {
	return b.appendTerminator(fmt.Sprintf("ret %s %s", ty, value))
}

// Br seals the block with an unconditional branch.
func (b *BlockBuilder) Br(targetLabel string) error {
	return b.appendTerminator("br label " + formatLabelOperand(targetLabel))
}

// SwitchCase pairs one literal with its target label.
type SwitchCase struct {
	Value string
	Label string
}

// Switch seals the block with a multi-way branch.
func (b *BlockBuilder) Switch(condType, cond, defaultLabel string, cases []SwitchCase) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "switch %s %s, label %s", condType, cond, formatLabelOperand(defaultLabel))
	if len(cases) == 0 {
		return b.appendTerminator(sb.String())
	}
	sb.WriteString(" [\n")
	for i, c := range cases {
		fmt.Fprintf(&sb, "    %s %s, label %s", condType, c.Value, formatLabelOperand(c.Label))
		if i+1 < len(cases) {
			sb.WriteString("\n")
		}
	}
	sb.WriteString("\n  ]")
	return b.appendTerminator(sb.String())
}

// Unreachable seals the block with an unreachable marker.
func (b *BlockBuilder) Unreachable() error {
	return b.appendTerminator("unreachable")
}
