package llvm

import (
	"fmt"

	"rill/internal/mir"
	"rill/internal/types"
)

type binOpSpec struct {
	opcode    string
	compare   bool
	predicate string
}

func cmpSpec(pred string) binOpSpec {
	return binOpSpec{opcode: "icmp", compare: true, predicate: pred}
}

func basicSpec(opcode string) binOpSpec {
	return binOpSpec{opcode: opcode}
}

// classifyBinOp maps a MIR binary operation onto either an arithmetic opcode
// or an icmp predicate. Signedness was resolved upstream, so the mapping is
// a pure table.
func classifyBinOp(op mir.BinOp) (binOpSpec, error) {
	switch op {
	case mir.BinIAdd, mir.BinUAdd:
		return basicSpec("add"), nil
	case mir.BinISub, mir.BinUSub:
		return basicSpec("sub"), nil
	case mir.BinIMul, mir.BinUMul:
		return basicSpec("mul"), nil
	case mir.BinIDiv:
		return basicSpec("sdiv"), nil
	case mir.BinUDiv:
		return basicSpec("udiv"), nil
	case mir.BinIRem:
		return basicSpec("srem"), nil
	case mir.BinURem:
		return basicSpec("urem"), nil
	case mir.BinBoolAnd, mir.BinBitAnd:
		return basicSpec("and"), nil
	case mir.BinBoolOr, mir.BinBitOr:
		return basicSpec("or"), nil
	case mir.BinBitXor:
		return basicSpec("xor"), nil
	case mir.BinShl:
		return basicSpec("shl"), nil
	case mir.BinShrLogical:
		return basicSpec("lshr"), nil
	case mir.BinShrArith:
		return basicSpec("ashr"), nil
	case mir.BinICmpEq, mir.BinUCmpEq, mir.BinBoolEq:
		return cmpSpec("eq"), nil
	case mir.BinICmpNe, mir.BinUCmpNe, mir.BinBoolNe:
		return cmpSpec("ne"), nil
	case mir.BinICmpLt:
		return cmpSpec("slt"), nil
	case mir.BinICmpLe:
		return cmpSpec("sle"), nil
	case mir.BinICmpGt:
		return cmpSpec("sgt"), nil
	case mir.BinICmpGe:
		return cmpSpec("sge"), nil
	case mir.BinUCmpLt:
		return cmpSpec("ult"), nil
	case mir.BinUCmpLe:
		return cmpSpec("ule"), nil
	case mir.BinUCmpGt:
		return cmpSpec("ugt"), nil
	case mir.BinUCmpGe:
		return cmpSpec("uge"), nil
	default:
		return binOpSpec{}, fmt.Errorf("llvm: unknown binary op %d", op)
	}
}

type valueCategory uint8

const (
	catOther valueCategory = iota
	catBool
	catSigned
	catUnsigned
	catPointer
)

func classifyValueType(reg *types.Interner, id types.TypeID) valueCategory {
	t, ok := reg.Lookup(id)
	if !ok {
		return catOther
	}
	switch t.Kind {
	case types.KindBool:
		return catBool
	case types.KindInt:
		return catSigned
	case types.KindUint, types.KindChar:
		return catUnsigned
	case types.KindReference:
		return catPointer
	default:
		return catOther
	}
}

func isIntegerCategory(c valueCategory) bool {
	return c == catBool || c == catSigned || c == catUnsigned
}
