package llvm

import (
	"fmt"
	"strconv"

	"rill/internal/mir"
	"rill/internal/types"
)

// resolvePlace turns a MIR place into a single pointer value plus its
// pointee type. All projections collapse into one chained getelementptr:
// N projections cost one instruction, not N.
func (fe *funcEmitter) resolvePlace(place mir.Place) (string, types.TypeID, error) {
	basePtr, baseType, err := fe.resolvePlaceBase(place)
	if err != nil {
		return "", types.NoTypeID, err
	}
	if len(place.Proj) == 0 {
		return basePtr, baseType, nil
	}

	// The leading index selects the whole object the base points at.
	indices := make([]Index, 0, len(place.Proj)+1)
	indices = append(indices, Index{Type: "i32", Value: "0"})
	current := baseType
	for _, proj := range place.Proj {
		switch proj.Kind {
		case mir.ProjField:
			indices = append(indices, Index{Type: "i32", Value: strconv.Itoa(proj.Field)})
			current, err = fe.e.reg.FieldAt(current, proj.Field)
			if err != nil {
				return "", types.NoTypeID, err
			}
		case mir.ProjIndex:
			op, err := fe.operand(proj.Index, fe.e.reg.Builtins().Usize)
			if err != nil {
				return "", types.NoTypeID, err
			}
			indices = append(indices, Index{Type: op.typeName, Value: op.value})
			current, err = fe.e.reg.ArrayElem(current)
			if err != nil {
				return "", types.NoTypeID, err
			}
		default:
			return "", types.NoTypeID, fmt.Errorf("unknown projection kind %d", proj.Kind)
		}
	}

	pointeeName, err := fe.e.tf.TypeName(baseType)
	if err != nil {
		return "", types.NoTypeID, err
	}
	ptr, err := fe.cur.GEP(pointeeName, pointeeName+"*", basePtr, indices, "proj")
	if err != nil {
		return "", types.NoTypeID, err
	}
	return ptr, current, nil
}

func (fe *funcEmitter) resolvePlaceBase(place mir.Place) (string, types.TypeID, error) {
	switch place.Base {
	case mir.PlaceLocal:
		local, ok := fe.fn.LocalInfo(place.Local)
		if !ok {
			return "", types.NoTypeID, fmt.Errorf("place references unknown local %d", place.Local)
		}
		return fe.localPtrs[place.Local], local.Type, nil
	case mir.PlaceGlobal:
		g, ok := fe.e.mod.Global(place.Global)
		if !ok {
			return "", types.NoTypeID, fmt.Errorf("place references unknown global %d", place.Global)
		}
		return globalName(place.Global), fe.e.stringDataType(g.Str.Data), nil
	case mir.PlaceDeref:
		ty, err := fe.tempType(place.Ptr)
		if err != nil {
			return "", types.NoTypeID, err
		}
		if int(place.Ptr) >= len(fe.defined) || !fe.defined[place.Ptr] {
			return "", types.NoTypeID, fmt.Errorf("temporary %d dereferenced before definition", place.Ptr)
		}
		pointee, err := fe.e.reg.Deref(ty)
		if err != nil {
			return "", types.NoTypeID, err
		}
		return TempName(place.Ptr), pointee, nil
	default:
		return "", types.NoTypeID, fmt.Errorf("unknown place base kind %d", place.Base)
	}
}
