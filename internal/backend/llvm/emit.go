// Package llvm lowers validated MIR modules into textual LLVM IR.
//
// The input contract is load-bearing: every type is resolved, every
// temporary is defined before use and every block target is concrete. Any
// violation detected here is an internal-consistency defect that aborts the
// whole emission; there is no partial output.
package llvm

import (
	"fmt"

	"rill/internal/mir"
	"rill/internal/types"
)

// Options carries the opaque target strings passed through verbatim.
type Options struct {
	ModuleID     string
	TargetTriple string
	DataLayout   string
}

// EmitModule lowers a validated MIR module to a textual LLVM module.
func EmitModule(mod *mir.Module, reg *types.Interner, opts Options) (string, error) {
	if mod == nil {
		return "", fmt.Errorf("llvm: emit of nil module")
	}
	if reg == nil {
		return "", fmt.Errorf("llvm: emit without a type registry")
	}
	moduleID := opts.ModuleID
	if moduleID == "" {
		moduleID = mod.Name
	}
	e := &emitter{
		mod: mod,
		reg: reg,
		mb:  NewModuleBuilder(moduleID),
		tf:  NewTypeFormatter(reg),
	}
	if opts.DataLayout != "" {
		e.mb.SetDataLayout(opts.DataLayout)
	}
	if opts.TargetTriple != "" {
		e.mb.SetTargetTriple(opts.TargetTriple)
	}
	if err := e.emitGlobals(); err != nil {
		return "", err
	}
	if err := e.emitExterns(); err != nil {
		return "", err
	}
	for i := range mod.Funcs {
		if err := e.emitFunc(&mod.Funcs[i]); err != nil {
			return "", fmt.Errorf("llvm: function %s: %w", mod.Funcs[i].Name, err)
		}
	}
	for _, def := range e.tf.StructDefs() {
		if err := e.mb.AddTypeDef(def.Name, def.Body); err != nil {
			return "", err
		}
	}
	return e.mb.String(), nil
}

type emitter struct {
	mod *mir.Module
	reg *types.Interner
	mb  *ModuleBuilder
	tf  *TypeFormatter
}

// returnTypeName spells a function result type, mapping unit/never to void.
func (e *emitter) returnTypeName(id types.TypeID) (string, error) {
	if t, ok := e.reg.Lookup(id); ok && (t.Kind == types.KindUnit || t.Kind == types.KindNever) {
		return "void", nil
	}
	return e.tf.TypeName(id)
}

// stringDataType returns the array-of-char type covering a global's bytes.
func (e *emitter) stringDataType(data string) types.TypeID {
	b := e.reg.Builtins()
	return e.reg.Intern(types.MakeArray(b.Char, uint32(len(data))))
}

func (e *emitter) emitGlobals() error {
	for i := range e.mod.Globals {
		g := &e.mod.Globals[i]
		switch g.Kind {
		case mir.GlobalString:
			tyName, err := e.tf.TypeName(e.stringDataType(g.Str.Data))
			if err != nil {
				return err
			}
			decl := fmt.Sprintf("%s = private constant %s c\"%s\"",
				globalName(mir.GlobalID(i)), tyName, escapeStringLiteral(g.Str.Data))
			if err := e.mb.AddGlobal(decl); err != nil {
				return err
			}
		default:
			return fmt.Errorf("llvm: unknown global kind %d", g.Kind)
		}
	}
	return nil
}

func (e *emitter) emitExterns() error {
	for i := range e.mod.Externs {
		ext := &e.mod.Externs[i]
		ret, err := e.returnTypeName(ext.Result)
		if err != nil {
			return fmt.Errorf("llvm: extern %s: %w", ext.Name, err)
		}
		params := ""
		for j, p := range ext.Params {
			name, err := e.tf.TypeName(p)
			if err != nil {
				return fmt.Errorf("llvm: extern %s: %w", ext.Name, err)
			}
			if j > 0 {
				params += ", "
			}
			params += name
		}
		decl := fmt.Sprintf("declare dso_local %s @%s(%s)", ret, ext.Name, params)
		if err := e.mb.AddGlobal(decl); err != nil {
			return err
		}
	}
	return nil
}

// funcEmitter holds per-function emission state: the block builders keyed by
// MIR block id, the resolved stack-slot pointer of every local, and the set
// of temporaries defined so far.
type funcEmitter struct {
	e  *emitter
	fn *mir.Func
	fb *FuncBuilder

	blocks    []*BlockBuilder
	cur       *BlockBuilder
	localPtrs []string
	defined   []bool
}

func (e *emitter) emitFunc(fn *mir.Func) error {
	if len(fn.Blocks) == 0 {
		return fmt.Errorf("function has no blocks")
	}
	if fn.Entry < 0 || int(fn.Entry) >= len(fn.Blocks) {
		return fmt.Errorf("entry block %d out of range", fn.Entry)
	}

	params := make([]Param, len(fn.Params))
	for i, p := range fn.Params {
		tyName, err := e.tf.TypeName(p.Type)
		if err != nil {
			return fmt.Errorf("parameter %d: %w", i, err)
		}
		params[i] = Param{Type: tyName, Name: p.Name}
	}
	ret, err := e.returnTypeName(fn.Result)
	if err != nil {
		return err
	}
	fb, err := e.mb.AddFunc(fn.Name, ret, params)
	if err != nil {
		return err
	}

	fe := &funcEmitter{
		e:         e,
		fn:        fn,
		fb:        fb,
		blocks:    make([]*BlockBuilder, len(fn.Blocks)),
		localPtrs: make([]string, len(fn.Locals)),
		defined:   make([]bool, len(fn.TempTypes)),
	}
	// All labels are allocated before any block body so forward references
	// in terminators and phi edges always resolve.
	fe.blocks[fn.Entry] = fb.EntryBlock()
	for id := range fn.Blocks {
		if mir.BlockID(id) == fn.Entry {
			continue
		}
		fe.blocks[id] = fb.NewBlock(blockLabelHint(mir.BlockID(id)))
	}

	for id := range fn.Blocks {
		if err := fe.emitBlock(mir.BlockID(id)); err != nil {
			return fmt.Errorf("block %d: %w", id, err)
		}
	}
	return nil
}

func (fe *funcEmitter) emitBlock(id mir.BlockID) error {
	fe.cur = fe.blocks[id]
	block := &fe.fn.Blocks[id]

	for i := range block.Phis {
		if err := fe.emitPhi(&block.Phis[i]); err != nil {
			return err
		}
	}
	if id == fe.fn.Entry {
		if err := fe.emitPrologue(); err != nil {
			return err
		}
	}
	for i := range block.Stmts {
		if err := fe.emitStmt(&block.Stmts[i]); err != nil {
			return err
		}
	}
	if !block.Terminated() {
		return fmt.Errorf("block has no terminator")
	}
	return fe.emitTerminator(&block.Term)
}

// emitPrologue allocates one stack slot per local and spills the incoming
// parameter values into their slots. Locals flagged as parameter aliases
// already live in the ABI parameter's own storage and get no fresh slot.
func (fe *funcEmitter) emitPrologue() error {
	aliasParam := make(map[mir.LocalID]int, len(fe.fn.Params))
	for i, p := range fe.fn.Params {
		if p.Local == mir.NoLocalID {
			continue
		}
		aliasParam[p.Local] = i
	}

	for i := range fe.fn.Locals {
		local := &fe.fn.Locals[i]
		id := mir.LocalID(i)
		if local.ParamAlias {
			pi, ok := aliasParam[id]
			if !ok {
				return fmt.Errorf("local %d is a parameter alias but no parameter targets it", i)
			}
			fe.localPtrs[i] = fe.fb.Params()[pi].Name
			continue
		}
		tyName, err := fe.e.tf.TypeName(local.Type)
		if err != nil {
			return fmt.Errorf("local %d: %w", i, err)
		}
		ptr, err := fe.cur.AllocaInto(localPtrName(id), tyName)
		if err != nil {
			return err
		}
		fe.localPtrs[i] = ptr
	}

	for i, p := range fe.fn.Params {
		if p.Local == mir.NoLocalID {
			continue
		}
		local, ok := fe.fn.LocalInfo(p.Local)
		if !ok {
			return fmt.Errorf("parameter %d targets unknown local %d", i, p.Local)
		}
		if local.ParamAlias {
			continue
		}
		tyName, err := fe.e.tf.TypeName(p.Type)
		if err != nil {
			return err
		}
		if err := fe.cur.Store(tyName, fe.fb.Params()[i].Name, tyName+"*", fe.localPtrs[p.Local]); err != nil {
			return err
		}
	}
	return nil
}

func (fe *funcEmitter) emitPhi(phi *mir.Phi) error {
	destType, err := fe.tempType(phi.Dest)
	if err != nil {
		return err
	}
	tyName, err := fe.e.tf.TypeName(destType)
	if err != nil {
		return err
	}
	incomings := make([]Incoming, 0, len(phi.Incoming))
	for _, in := range phi.Incoming {
		if in.Block < 0 || int(in.Block) >= len(fe.blocks) {
			return fmt.Errorf("phi incoming from unknown block %d", in.Block)
		}
		incomings = append(incomings, Incoming{
			Value: TempName(in.Value),
			Label: fe.blocks[in.Block].Label(),
		})
	}
	if _, err := fe.cur.PhiInto(TempName(phi.Dest), tyName, incomings); err != nil {
		return err
	}
	fe.markDefined(phi.Dest)
	return nil
}

func (fe *funcEmitter) emitStmt(stmt *mir.Stmt) error {
	switch stmt.Kind {
	case mir.StmtDefine:
		destType, err := fe.tempType(stmt.Define.Dest)
		if err != nil {
			return err
		}
		return fe.lowerRValue(stmt.Define.Dest, destType, &stmt.Define.Value)
	case mir.StmtLoad:
		return fe.emitLoad(&stmt.Load)
	case mir.StmtAssign:
		return fe.emitAssign(&stmt.Assign)
	case mir.StmtCall:
		return fe.emitCall(&stmt.Call)
	default:
		return fmt.Errorf("unknown statement kind %d", stmt.Kind)
	}
}

func (fe *funcEmitter) emitLoad(stmt *mir.LoadStmt) error {
	ptr, pointee, err := fe.resolvePlace(stmt.Src)
	if err != nil {
		return err
	}
	valueType, err := fe.e.tf.TypeName(pointee)
	if err != nil {
		return fmt.Errorf("load source: %w", err)
	}
	if _, err := fe.cur.LoadInto(TempName(stmt.Dest), valueType, valueType+"*", ptr); err != nil {
		return err
	}
	fe.markDefined(stmt.Dest)
	return nil
}

func (fe *funcEmitter) emitAssign(stmt *mir.AssignStmt) error {
	ptr, pointee, err := fe.resolvePlace(stmt.Dest)
	if err != nil {
		return err
	}
	src, err := fe.operand(stmt.Src, pointee)
	if err != nil {
		return err
	}
	ptrType, err := fe.e.tf.PointerTypeName(pointee)
	if err != nil {
		return fmt.Errorf("assign destination: %w", err)
	}
	return fe.cur.Store(src.typeName, src.value, ptrType, ptr)
}

func (fe *funcEmitter) emitCall(stmt *mir.CallStmt) error {
	var (
		calleeName string
		result     types.TypeID
		paramTypes []types.TypeID
	)
	switch stmt.Target.Kind {
	case mir.CallInternal:
		callee, ok := fe.e.mod.Func(stmt.Target.Func)
		if !ok {
			return fmt.Errorf("call targets unknown function %d", stmt.Target.Func)
		}
		calleeName = ensurePrefix(callee.Name, '@')
		result = callee.Result
		paramTypes = make([]types.TypeID, len(callee.Params))
		for i, p := range callee.Params {
			paramTypes[i] = p.Type
		}
	case mir.CallExtern:
		callee, ok := fe.e.mod.Extern(stmt.Target.Extern)
		if !ok {
			return fmt.Errorf("call targets unknown extern %d", stmt.Target.Extern)
		}
		calleeName = ensurePrefix(callee.Name, '@')
		result = callee.Result
		paramTypes = callee.Params
	default:
		return fmt.Errorf("unknown call target kind %d", stmt.Target.Kind)
	}

	args := make([]Arg, 0, len(stmt.Args))
	for i, a := range stmt.Args {
		expected := types.NoTypeID
		if i < len(paramTypes) {
			expected = paramTypes[i]
		}
		op, err := fe.operand(a, expected)
		if err != nil {
			return fmt.Errorf("call argument %d: %w", i, err)
		}
		args = append(args, Arg{Type: op.typeName, Value: op.value})
	}

	retName, err := fe.e.returnTypeName(result)
	if err != nil {
		return err
	}
	if stmt.HasDest {
		if retName == "void" {
			return fmt.Errorf("call to %s returns no value but binds temporary %d", calleeName, stmt.Dest)
		}
		if _, err := fe.cur.CallInto(TempName(stmt.Dest), retName, calleeName, args); err != nil {
			return err
		}
		fe.markDefined(stmt.Dest)
		return nil
	}
	_, err = fe.cur.Call(retName, calleeName, args, "")
	return err
}

func (fe *funcEmitter) emitTerminator(term *mir.Terminator) error {
	switch term.Kind {
	case mir.TermGoto:
		label, err := fe.blockLabel(term.Goto.Target)
		if err != nil {
			return err
		}
		return fe.cur.Br(label)
	case mir.TermSwitchInt:
		return fe.emitSwitch(&term.Switch)
	case mir.TermReturn:
		return fe.emitReturn(&term.Return)
	case mir.TermUnreachable:
		return fe.cur.Unreachable()
	default:
		return fmt.Errorf("unknown terminator kind %d", term.Kind)
	}
}

func (fe *funcEmitter) emitSwitch(sw *mir.SwitchIntTerm) error {
	discr, err := fe.operand(sw.Discr, types.NoTypeID)
	if err != nil {
		return err
	}
	cases := make([]SwitchCase, 0, len(sw.Cases))
	for _, c := range sw.Cases {
		literal, err := formatConstant(c.Value)
		if err != nil {
			return err
		}
		label, err := fe.blockLabel(c.Target)
		if err != nil {
			return err
		}
		cases = append(cases, SwitchCase{Value: literal, Label: label})
	}
	defaultLabel, err := fe.blockLabel(sw.Default)
	if err != nil {
		return err
	}
	return fe.cur.Switch(discr.typeName, discr.value, defaultLabel, cases)
}

func (fe *funcEmitter) emitReturn(ret *mir.ReturnTerm) error {
	if !ret.HasValue {
		return fe.cur.RetVoid()
	}
	// Unit-typed results have no representable value: lower to a bare return.
	if ret.Value.Kind == mir.OperandConst && ret.Value.Const.Kind == mir.ConstUnit {
		return fe.cur.RetVoid()
	}
	if ret.Value.Kind == mir.OperandTemp {
		ty, err := fe.tempType(ret.Value.Temp)
		if err != nil {
			return err
		}
		if fe.e.reg.IsUnit(ty) {
			return fe.cur.RetVoid()
		}
	}
	op, err := fe.operand(ret.Value, fe.fn.Result)
	if err != nil {
		return err
	}
	return fe.cur.Ret(op.typeName, op.value)
}

func (fe *funcEmitter) blockLabel(id mir.BlockID) (string, error) {
	if id < 0 || int(id) >= len(fe.blocks) {
		return "", fmt.Errorf("branch to unknown block %d", id)
	}
	return fe.blocks[id].Label(), nil
}

func (fe *funcEmitter) tempType(id mir.TempID) (types.TypeID, error) {
	ty, ok := fe.fn.TempType(id)
	if !ok {
		return types.NoTypeID, fmt.Errorf("temporary %d has no recorded type", id)
	}
	return ty, nil
}

func (fe *funcEmitter) markDefined(id mir.TempID) {
	if id >= 0 && int(id) < len(fe.defined) {
		fe.defined[id] = true
	}
}
