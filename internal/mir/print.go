package mir

import (
	"fmt"
	"io"
	"strings"

	"rill/internal/types"
)

// DumpModule writes a human-readable representation of a MIR module. The
// format is for debugging only and carries no compatibility promise.
func DumpModule(w io.Writer, m *Module, reg *types.Interner) error {
	if w == nil || m == nil {
		return nil
	}
	if len(m.Globals) > 0 {
		fmt.Fprintf(w, "globals=%d\n", len(m.Globals))
		for i := range m.Globals {
			fmt.Fprintf(w, "  G%d: string %q\n", i, m.Globals[i].Str.Data)
		}
	}
	if len(m.Externs) > 0 {
		fmt.Fprintf(w, "externs=%d\n", len(m.Externs))
		for i := range m.Externs {
			fmt.Fprintf(w, "  E%d: %s\n", i, m.Externs[i].Name)
		}
	}
	fmt.Fprintf(w, "funcs=%d\n", len(m.Funcs))
	for i := range m.Funcs {
		dumpFunc(w, &m.Funcs[i], reg)
	}
	return nil
}

func dumpFunc(w io.Writer, f *Func, reg *types.Interner) {
	fmt.Fprintf(w, "\nfn %s:\n", f.Name)
	fmt.Fprintf(w, "  locals:\n")
	for i := range f.Locals {
		l := f.Locals[i]
		name := l.Name
		if name == "" {
			name = "_"
		}
		alias := ""
		if l.ParamAlias {
			alias = " param-alias"
		}
		fmt.Fprintf(w, "    L%d: %s %s%s\n", i, typeStr(reg, l.Type), name, alias)
	}
	fmt.Fprintf(w, "  entry: b%d\n", f.Entry)
	for i := range f.Blocks {
		dumpBlock(w, &f.Blocks[i], BlockID(i))
	}
}

func dumpBlock(w io.Writer, b *Block, id BlockID) {
	fmt.Fprintf(w, "  b%d:\n", id)
	for _, phi := range b.Phis {
		parts := make([]string, 0, len(phi.Incoming))
		for _, in := range phi.Incoming {
			parts = append(parts, fmt.Sprintf("b%d: t%d", in.Block, in.Value))
		}
		fmt.Fprintf(w, "    t%d = phi [%s]\n", phi.Dest, strings.Join(parts, ", "))
	}
	for i := range b.Stmts {
		fmt.Fprintf(w, "    %s\n", stmtStr(&b.Stmts[i]))
	}
	fmt.Fprintf(w, "    %s\n", termStr(&b.Term))
}

func stmtStr(s *Stmt) string {
	switch s.Kind {
	case StmtDefine:
		return fmt.Sprintf("t%d = %s", s.Define.Dest, rvalueStr(&s.Define.Value))
	case StmtLoad:
		return fmt.Sprintf("t%d = load %s", s.Load.Dest, placeStr(s.Load.Src))
	case StmtAssign:
		return fmt.Sprintf("%s <- %s", placeStr(s.Assign.Dest), operandStr(s.Assign.Src))
	case StmtCall:
		args := make([]string, 0, len(s.Call.Args))
		for _, a := range s.Call.Args {
			args = append(args, operandStr(a))
		}
		callee := fmt.Sprintf("f%d", s.Call.Target.Func)
		if s.Call.Target.Kind == CallExtern {
			callee = fmt.Sprintf("e%d", s.Call.Target.Extern)
		}
		if s.Call.HasDest {
			return fmt.Sprintf("t%d = call %s(%s)", s.Call.Dest, callee, strings.Join(args, ", "))
		}
		return fmt.Sprintf("call %s(%s)", callee, strings.Join(args, ", "))
	default:
		return fmt.Sprintf("stmt(%d)", s.Kind)
	}
}

func termStr(t *Terminator) string {
	switch t.Kind {
	case TermGoto:
		return fmt.Sprintf("goto b%d", t.Goto.Target)
	case TermSwitchInt:
		arms := make([]string, 0, len(t.Switch.Cases))
		for _, c := range t.Switch.Cases {
			arms = append(arms, fmt.Sprintf("%s -> b%d", constStr(c.Value), c.Target))
		}
		return fmt.Sprintf("switch %s [%s] else b%d",
			operandStr(t.Switch.Discr), strings.Join(arms, ", "), t.Switch.Default)
	case TermReturn:
		if t.Return.HasValue {
			return fmt.Sprintf("return %s", operandStr(t.Return.Value))
		}
		return "return"
	case TermUnreachable:
		return "unreachable"
	default:
		return "<no terminator>"
	}
}

func rvalueStr(rv *RValue) string {
	switch rv.Kind {
	case RValConst:
		return constStr(rv.Const.Const)
	case RValBinary:
		return fmt.Sprintf("bin(%d) %s, %s", rv.Binary.Op, operandStr(rv.Binary.LHS), operandStr(rv.Binary.RHS))
	case RValUnary:
		return fmt.Sprintf("un(%d) %s", rv.Unary.Op, operandStr(rv.Unary.Operand))
	case RValRef:
		return "ref " + placeStr(rv.Ref.Place)
	case RValAggregate:
		elems := make([]string, 0, len(rv.Aggregate.Elems))
		for _, e := range rv.Aggregate.Elems {
			elems = append(elems, operandStr(e))
		}
		return "aggregate {" + strings.Join(elems, ", ") + "}"
	case RValRepeat:
		return fmt.Sprintf("repeat %s x %d", operandStr(rv.Repeat.Value), rv.Repeat.Count)
	case RValCast:
		return fmt.Sprintf("cast %s to ty%d", operandStr(rv.Cast.Value), rv.Cast.Target)
	case RValFieldAccess:
		return fmt.Sprintf("field t%d.%d", rv.Field.Base, rv.Field.Index)
	default:
		return fmt.Sprintf("rvalue(%d)", rv.Kind)
	}
}

func placeStr(p Place) string {
	var sb strings.Builder
	switch p.Base {
	case PlaceLocal:
		fmt.Fprintf(&sb, "L%d", p.Local)
	case PlaceGlobal:
		fmt.Fprintf(&sb, "G%d", p.Global)
	case PlaceDeref:
		fmt.Fprintf(&sb, "*t%d", p.Ptr)
	}
	for _, proj := range p.Proj {
		switch proj.Kind {
		case ProjField:
			fmt.Fprintf(&sb, ".%d", proj.Field)
		case ProjIndex:
			fmt.Fprintf(&sb, "[%s]", operandStr(proj.Index))
		}
	}
	return sb.String()
}

func operandStr(op Operand) string {
	if op.Kind == OperandTemp {
		return fmt.Sprintf("t%d", op.Temp)
	}
	return constStr(op.Const)
}

func constStr(c Constant) string {
	switch c.Kind {
	case ConstBool:
		return fmt.Sprintf("%t", c.Bool)
	case ConstInt:
		sign := ""
		if c.Int.Negative {
			sign = "-"
		}
		return fmt.Sprintf("%s%d", sign, c.Int.Value)
	case ConstUnit:
		return "()"
	case ConstChar:
		return fmt.Sprintf("'%c'", c.Char)
	case ConstString:
		return fmt.Sprintf("%q", c.Str.Data)
	default:
		return fmt.Sprintf("const(%d)", c.Kind)
	}
}

func typeStr(reg *types.Interner, id types.TypeID) string {
	if reg == nil {
		return fmt.Sprintf("ty%d", id)
	}
	t, ok := reg.Lookup(id)
	if !ok {
		return fmt.Sprintf("ty%d", id)
	}
	switch t.Kind {
	case types.KindInt, types.KindUint:
		return fmt.Sprintf("%s%d", t.Kind, t.Width)
	case types.KindArray:
		return fmt.Sprintf("[%d]%s", t.Count, typeStr(reg, t.Elem))
	case types.KindReference:
		return "&" + typeStr(reg, t.Elem)
	case types.KindStruct:
		if info, ok := reg.Struct(t.Struct); ok {
			return info.Name
		}
		return "struct?"
	default:
		return t.Kind.String()
	}
}
