package llvm

import (
	"fmt"

	"rill/internal/mir"
	"rill/internal/types"
)

// lowerRValue emits the instructions computing one right-hand side into the
// destination temporary.
func (fe *funcEmitter) lowerRValue(dest mir.TempID, destType types.TypeID, rv *mir.RValue) error {
	switch rv.Kind {
	case mir.RValConst:
		if _, err := fe.materializeConstant(rv.Const.Const, destType, TempName(dest)); err != nil {
			return err
		}
		fe.markDefined(dest)
		return nil
	case mir.RValBinary:
		return fe.lowerBinary(dest, &rv.Binary)
	case mir.RValUnary:
		return fe.lowerUnary(dest, destType, &rv.Unary)
	case mir.RValRef:
		return fe.lowerRef(dest, destType, &rv.Ref)
	case mir.RValAggregate:
		return fe.lowerAggregate(dest, destType, &rv.Aggregate)
	case mir.RValRepeat:
		return fe.lowerRepeat(dest, destType, &rv.Repeat)
	case mir.RValCast:
		return fe.lowerCast(dest, destType, &rv.Cast)
	case mir.RValFieldAccess:
		return fe.lowerFieldAccess(dest, &rv.Field)
	default:
		return fmt.Errorf("unknown rvalue kind %d", rv.Kind)
	}
}

func (fe *funcEmitter) lowerBinary(dest mir.TempID, rv *mir.BinaryRValue) error {
	lhs, err := fe.operand(rv.LHS, types.NoTypeID)
	if err != nil {
		return err
	}
	rhs, err := fe.operand(rv.RHS, lhs.id)
	if err != nil {
		return err
	}
	spec, err := classifyBinOp(rv.Op)
	if err != nil {
		return err
	}
	if spec.compare {
		if _, err := fe.cur.ICmpInto(TempName(dest), spec.predicate, lhs.typeName, lhs.value, rhs.value); err != nil {
			return err
		}
	} else {
		if _, err := fe.cur.BinaryInto(TempName(dest), spec.opcode, lhs.typeName, lhs.value, rhs.value); err != nil {
			return err
		}
	}
	fe.markDefined(dest)
	return nil
}

func (fe *funcEmitter) lowerUnary(dest mir.TempID, destType types.TypeID, rv *mir.UnaryRValue) error {
	op, err := fe.operand(rv.Operand, types.NoTypeID)
	if err != nil {
		return err
	}
	switch rv.Op {
	case mir.UnNot:
		// Booleans flip against 1, integers against all-ones.
		rhs := "-1"
		if classifyValueType(fe.e.reg, op.id) == catBool {
			rhs = "1"
		}
		if _, err := fe.cur.BinaryInto(TempName(dest), "xor", op.typeName, op.value, rhs); err != nil {
			return err
		}
	case mir.UnNeg:
		if _, err := fe.cur.BinaryInto(TempName(dest), "sub", op.typeName, "0", op.value); err != nil {
			return err
		}
	case mir.UnDeref:
		pointee, err := fe.e.tf.TypeName(destType)
		if err != nil {
			return err
		}
		if _, err := fe.cur.LoadInto(TempName(dest), pointee, pointee+"*", op.value); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown unary op %d", rv.Op)
	}
	fe.markDefined(dest)
	return nil
}

func (fe *funcEmitter) lowerRef(dest mir.TempID, destType types.TypeID, rv *mir.RefRValue) error {
	ptr, pointee, err := fe.resolvePlace(rv.Place)
	if err != nil {
		return err
	}
	ptrType, err := fe.e.tf.PointerTypeName(pointee)
	if err != nil {
		return err
	}
	destName, err := fe.e.tf.TypeName(destType)
	if err != nil {
		return err
	}
	if _, err := fe.cur.CastInto(TempName(dest), "bitcast", ptrType, ptr, destName); err != nil {
		return err
	}
	fe.markDefined(dest)
	return nil
}

func (fe *funcEmitter) lowerAggregate(dest mir.TempID, destType types.TypeID, rv *mir.AggregateRValue) error {
	aggType, err := fe.e.tf.TypeName(destType)
	if err != nil {
		return err
	}
	if len(rv.Elems) == 0 || fe.isStaticZeroAggregate(destType, rv.Elems) {
		return fe.zeroFillInto(dest, aggType)
	}

	current := "undef"
	for i, elem := range rv.Elems {
		op, err := fe.operand(elem, fe.elemTypeAt(destType, i))
		if err != nil {
			return err
		}
		last := i+1 == len(rv.Elems)
		if last {
			current, err = fe.cur.InsertValueInto(TempName(dest), aggType, current, op.typeName, op.value, i)
		} else {
			current, err = fe.cur.InsertValue(aggType, current, op.typeName, op.value, i, "")
		}
		if err != nil {
			return err
		}
	}
	fe.markDefined(dest)
	return nil
}

func (fe *funcEmitter) lowerRepeat(dest mir.TempID, destType types.TypeID, rv *mir.RepeatRValue) error {
	t, ok := fe.e.reg.Lookup(destType)
	if !ok || t.Kind != types.KindArray {
		return fmt.Errorf("array repeat requires an array destination type")
	}
	if t.Count != rv.Count {
		return fmt.Errorf("array repeat count %d does not match destination length %d", rv.Count, t.Count)
	}
	aggType, err := fe.e.tf.TypeName(destType)
	if err != nil {
		return err
	}
	// Zero-fill path: count 0, or a zero/false element of a type whose
	// all-zero bit pattern is valid. Keeps the output O(1) in the count.
	if rv.Count == 0 ||
		(rv.Value.Kind == mir.OperandConst && rv.Value.Const.IsZero() && fe.e.reg.IsZeroInitializable(t.Elem)) {
		return fe.zeroFillInto(dest, aggType)
	}

	op, err := fe.operand(rv.Value, t.Elem)
	if err != nil {
		return err
	}
	current := "undef"
	for i := uint32(0); i < rv.Count; i++ {
		last := i+1 == rv.Count
		if last {
			current, err = fe.cur.InsertValueInto(TempName(dest), aggType, current, op.typeName, op.value, int(i))
		} else {
			current, err = fe.cur.InsertValue(aggType, current, op.typeName, op.value, int(i), "")
		}
		if err != nil {
			return err
		}
	}
	fe.markDefined(dest)
	return nil
}

func (fe *funcEmitter) lowerCast(dest mir.TempID, destType types.TypeID, rv *mir.CastRValue) error {
	target := rv.Target
	if target == types.NoTypeID {
		target = destType
	}
	if target == types.NoTypeID {
		return fmt.Errorf("cast rvalue carries no target type")
	}
	op, err := fe.operand(rv.Value, types.NoTypeID)
	if err != nil {
		return err
	}
	targetName, err := fe.e.tf.TypeName(target)
	if err != nil {
		return err
	}
	if op.id == target {
		_, err := fe.cur.BinaryInto(TempName(dest), "add", targetName, op.value, "0")
		if err != nil {
			return err
		}
		fe.markDefined(dest)
		return nil
	}

	from := classifyValueType(fe.e.reg, op.id)
	to := classifyValueType(fe.e.reg, target)
	switch {
	case isIntegerCategory(from) && isIntegerCategory(to):
		fromBits, err := fe.e.reg.BitWidth(op.id)
		if err != nil {
			return err
		}
		toBits, err := fe.e.reg.BitWidth(target)
		if err != nil {
			return err
		}
		switch {
		case toBits > fromBits:
			opcode := "zext"
			if from == catSigned {
				opcode = "sext"
			}
			_, err = fe.cur.CastInto(TempName(dest), opcode, op.typeName, op.value, targetName)
		case toBits < fromBits:
			_, err = fe.cur.CastInto(TempName(dest), "trunc", op.typeName, op.value, targetName)
		default:
			_, err = fe.cur.BinaryInto(TempName(dest), "add", targetName, op.value, "0")
		}
		if err != nil {
			return err
		}
	case from == catPointer && to == catPointer:
		if _, err := fe.cur.CastInto(TempName(dest), "bitcast", op.typeName, op.value, targetName); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported cast combination %d -> %d", op.id, target)
	}
	fe.markDefined(dest)
	return nil
}

// lowerFieldAccess extracts a field from an in-register aggregate value.
// Kept for old serialized MIR; new lowering goes through Load on a Place.
func (fe *funcEmitter) lowerFieldAccess(dest mir.TempID, rv *mir.FieldAccessRValue) error {
	baseType, err := fe.tempType(rv.Base)
	if err != nil {
		return err
	}
	if int(rv.Base) >= len(fe.defined) || !fe.defined[rv.Base] {
		return fmt.Errorf("temporary %d used before definition", rv.Base)
	}
	baseName, err := fe.e.tf.TypeName(baseType)
	if err != nil {
		return err
	}
	if _, err := fe.cur.ExtractValueInto(TempName(dest), baseName, TempName(rv.Base), rv.Index); err != nil {
		return err
	}
	fe.markDefined(dest)
	return nil
}

// zeroFillInto binds a zero-filled aggregate to the destination temporary by
// spilling zeroinitializer through a scratch slot. Three instructions, no
// matter how many elements the aggregate has.
func (fe *funcEmitter) zeroFillInto(dest mir.TempID, aggType string) error {
	scratch, err := fe.cur.Alloca(aggType, "const.tmp")
	if err != nil {
		return err
	}
	if err := fe.cur.Store(aggType, "zeroinitializer", aggType+"*", scratch); err != nil {
		return err
	}
	if _, err := fe.cur.LoadInto(TempName(dest), aggType, aggType+"*", scratch); err != nil {
		return err
	}
	fe.markDefined(dest)
	return nil
}

// isStaticZeroAggregate reports whether every element is a zero constant and
// the aggregate's type tolerates an all-zero bit pattern.
func (fe *funcEmitter) isStaticZeroAggregate(destType types.TypeID, elems []mir.Operand) bool {
	if !fe.e.reg.IsZeroInitializable(destType) {
		return false
	}
	for _, e := range elems {
		if e.Kind != mir.OperandConst || !e.Const.IsZero() {
			return false
		}
	}
	return true
}

// elemTypeAt returns the expected type of element i of an aggregate, or
// NoTypeID when the registry cannot answer (the operand then resolves its
// own type).
func (fe *funcEmitter) elemTypeAt(aggType types.TypeID, i int) types.TypeID {
	t, ok := fe.e.reg.Lookup(aggType)
	if !ok {
		return types.NoTypeID
	}
	switch t.Kind {
	case types.KindArray:
		return t.Elem
	case types.KindStruct:
		ft, err := fe.e.reg.FieldAt(aggType, i)
		if err != nil {
			return types.NoTypeID
		}
		return ft
	default:
		return types.NoTypeID
	}
}
