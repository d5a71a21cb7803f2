package llvm

import (
	"strings"
	"testing"

	"rill/internal/mir"
	"rill/internal/types"
)

func addModule(t *testing.T) (*mir.Module, *types.Interner) {
	t.Helper()
	reg := types.NewInterner()
	b := reg.Builtins()

	fn := mir.Func{
		ID:     0,
		Name:   "add",
		Result: b.Int32,
		Params: []mir.Param{
			{Local: 0, Name: "a", Type: b.Int32},
			{Local: 1, Name: "b", Type: b.Int32},
		},
		Locals: []mir.Local{
			{Type: b.Int32, Name: "a"},
			{Type: b.Int32, Name: "b"},
		},
		TempTypes: []types.TypeID{b.Int32, b.Int32, b.Int32},
		Blocks: []mir.Block{{
			Stmts: []mir.Stmt{
				{Kind: mir.StmtLoad, Load: mir.LoadStmt{Dest: 0, Src: mir.Place{Base: mir.PlaceLocal, Local: 0}}},
				{Kind: mir.StmtLoad, Load: mir.LoadStmt{Dest: 1, Src: mir.Place{Base: mir.PlaceLocal, Local: 1}}},
				{Kind: mir.StmtDefine, Define: mir.DefineStmt{
					Dest: 2,
					Value: mir.RValue{Kind: mir.RValBinary, Binary: mir.BinaryRValue{
						Op:  mir.BinIAdd,
						LHS: mir.TempOperand(0),
						RHS: mir.TempOperand(1),
					}},
				}},
			},
			Term: mir.Terminator{Kind: mir.TermReturn, Return: mir.ReturnTerm{
				HasValue: true,
				Value:    mir.TempOperand(2),
			}},
		}},
		Entry: 0,
	}
	return &mir.Module{Name: "add_test", Funcs: []mir.Func{fn}}, reg
}

func TestEmitAddFunction(t *testing.T) {
	mod, reg := addModule(t)
	out, err := EmitModule(mod, reg, Options{})
	if err != nil {
		t.Fatalf("EmitModule: %v", err)
	}
	for _, want := range []string{
		"; ModuleID = 'add_test'",
		"define i32 @add(i32 %a, i32 %b) {",
		"%local_0 = alloca i32",
		"%local_1 = alloca i32",
		"store i32 %a, i32* %local_0",
		"store i32 %b, i32* %local_1",
		"%t0 = load i32, i32* %local_0",
		"%t1 = load i32, i32* %local_1",
		"%t2 = add i32 %t0, %t1",
		"ret i32 %t2",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestEmitDeterministic(t *testing.T) {
	mod, reg := addModule(t)
	first, err := EmitModule(mod, reg, Options{TargetTriple: "x86_64-unknown-linux-gnu"})
	if err != nil {
		t.Fatalf("EmitModule: %v", err)
	}
	second, err := EmitModule(mod, reg, Options{TargetTriple: "x86_64-unknown-linux-gnu"})
	if err != nil {
		t.Fatalf("EmitModule: %v", err)
	}
	if first != second {
		t.Fatalf("same input produced different output")
	}
	if !strings.Contains(first, `target triple = "x86_64-unknown-linux-gnu"`) {
		t.Fatalf("target triple missing:\n%s", first)
	}
}

func TestEmitSwitch(t *testing.T) {
	reg := types.NewInterner()
	b := reg.Builtins()

	fn := mir.Func{
		Name:      "pick",
		Result:    b.Unit,
		TempTypes: []types.TypeID{b.Int32},
		Blocks: []mir.Block{
			{
				Stmts: []mir.Stmt{{Kind: mir.StmtDefine, Define: mir.DefineStmt{
					Dest: 0,
					Value: mir.RValue{Kind: mir.RValConst, Const: mir.ConstRValue{
						Const: mir.IntConst(2, b.Int32),
					}},
				}}},
				Term: mir.Terminator{Kind: mir.TermSwitchInt, Switch: mir.SwitchIntTerm{
					Discr: mir.TempOperand(0),
					Cases: []mir.SwitchCase{
						{Value: mir.IntConst(1, b.Int32), Target: 1},
						{Value: mir.IntConst(2, b.Int32), Target: 2},
					},
					Default: 3,
				}},
			},
			{Term: mir.Terminator{Kind: mir.TermReturn}},
			{Term: mir.Terminator{Kind: mir.TermReturn}},
			{Term: mir.Terminator{Kind: mir.TermUnreachable}},
		},
		Entry: 0,
	}
	mod := &mir.Module{Name: "switch_test", Funcs: []mir.Func{fn}}

	out, err := EmitModule(mod, reg, Options{})
	if err != nil {
		t.Fatalf("EmitModule: %v", err)
	}
	for _, want := range []string{
		"define void @pick() {",
		"%t0 = add i32 0, 2",
		"switch i32 %t0, label %bb3 [",
		"i32 1, label %bb1",
		"i32 2, label %bb2",
		"bb3:\n  unreachable",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Count(out, "ret void") != 2 {
		t.Fatalf("expected two ret void arms:\n%s", out)
	}
}

func TestEmitRepeatZeroFill(t *testing.T) {
	reg := types.NewInterner()
	b := reg.Builtins()
	arr := reg.Intern(types.MakeArray(b.Int32, 1024))

	fn := mir.Func{
		Name:      "zeros",
		Result:    arr,
		TempTypes: []types.TypeID{arr},
		Blocks: []mir.Block{{
			Stmts: []mir.Stmt{{Kind: mir.StmtDefine, Define: mir.DefineStmt{
				Dest: 0,
				Value: mir.RValue{Kind: mir.RValRepeat, Repeat: mir.RepeatRValue{
					Value: mir.ConstOperand(mir.IntConst(0, b.Int32)),
					Count: 1024,
				}},
			}}},
			Term: mir.Terminator{Kind: mir.TermReturn, Return: mir.ReturnTerm{
				HasValue: true,
				Value:    mir.TempOperand(0),
			}},
		}},
		Entry: 0,
	}
	mod := &mir.Module{Name: "zeros_test", Funcs: []mir.Func{fn}}

	out, err := EmitModule(mod, reg, Options{})
	if err != nil {
		t.Fatalf("EmitModule: %v", err)
	}
	for _, want := range []string{
		"%const.tmp = alloca [1024 x i32]",
		"store [1024 x i32] zeroinitializer, [1024 x i32]* %const.tmp",
		"%t0 = load [1024 x i32], [1024 x i32]* %const.tmp",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "insertvalue") {
		t.Fatalf("zero fill should not expand element by element:\n%s", out)
	}
}

func TestEmitRepeatCountZero(t *testing.T) {
	reg := types.NewInterner()
	b := reg.Builtins()
	arr := reg.Intern(types.MakeArray(b.Int32, 0))

	fn := mir.Func{
		Name:      "empty",
		Result:    arr,
		TempTypes: []types.TypeID{arr},
		Blocks: []mir.Block{{
			Stmts: []mir.Stmt{{Kind: mir.StmtDefine, Define: mir.DefineStmt{
				Dest: 0,
				Value: mir.RValue{Kind: mir.RValRepeat, Repeat: mir.RepeatRValue{
					Value: mir.ConstOperand(mir.IntConst(7, b.Int32)),
					Count: 0,
				}},
			}}},
			Term: mir.Terminator{Kind: mir.TermReturn, Return: mir.ReturnTerm{
				HasValue: true,
				Value:    mir.TempOperand(0),
			}},
		}},
		Entry: 0,
	}
	mod := &mir.Module{Name: "empty_test", Funcs: []mir.Func{fn}}

	out, err := EmitModule(mod, reg, Options{})
	if err != nil {
		t.Fatalf("EmitModule: %v", err)
	}
	// A count of zero takes the fill path no matter what the element is.
	if n := strings.Count(out, "store [0 x i32] zeroinitializer"); n != 1 {
		t.Fatalf("expected exactly one zero fill, got %d:\n%s", n, out)
	}
	if strings.Contains(out, "insertvalue") {
		t.Fatalf("empty repeat should not expand elements:\n%s", out)
	}
	if !strings.Contains(out, "%t0 = load [0 x i32]") {
		t.Fatalf("fill result should bind the destination:\n%s", out)
	}
}

func TestEmitRepeatNonZeroExpands(t *testing.T) {
	reg := types.NewInterner()
	b := reg.Builtins()
	arr := reg.Intern(types.MakeArray(b.Int32, 3))

	fn := mir.Func{
		Name:      "threes",
		Result:    arr,
		TempTypes: []types.TypeID{arr},
		Blocks: []mir.Block{{
			Stmts: []mir.Stmt{{Kind: mir.StmtDefine, Define: mir.DefineStmt{
				Dest: 0,
				Value: mir.RValue{Kind: mir.RValRepeat, Repeat: mir.RepeatRValue{
					Value: mir.ConstOperand(mir.IntConst(3, b.Int32)),
					Count: 3,
				}},
			}}},
			Term: mir.Terminator{Kind: mir.TermReturn, Return: mir.ReturnTerm{
				HasValue: true,
				Value:    mir.TempOperand(0),
			}},
		}},
		Entry: 0,
	}
	mod := &mir.Module{Name: "threes_test", Funcs: []mir.Func{fn}}

	out, err := EmitModule(mod, reg, Options{})
	if err != nil {
		t.Fatalf("EmitModule: %v", err)
	}
	if strings.Count(out, "insertvalue") != 3 {
		t.Fatalf("expected three insertvalue steps:\n%s", out)
	}
	if !strings.Contains(out, "%t0 = insertvalue [3 x i32]") {
		t.Fatalf("final step should bind %%t0:\n%s", out)
	}
}

func TestEmitPlaceChainSingleGEP(t *testing.T) {
	reg := types.NewInterner()
	b := reg.Builtins()
	grid := reg.Intern(types.MakeArray(b.Int32, 4))
	cell := reg.RegisterStruct("Cell", []types.Field{
		{Name: "values", Type: grid},
		{Name: "flag", Type: b.Bool},
	})

	fn := mir.Func{
		Name:      "read_cell",
		Result:    b.Int32,
		Locals:    []mir.Local{{Type: cell, Name: "c"}},
		TempTypes: []types.TypeID{b.Int32},
		Blocks: []mir.Block{{
			Stmts: []mir.Stmt{{Kind: mir.StmtLoad, Load: mir.LoadStmt{
				Dest: 0,
				Src: mir.Place{
					Base:  mir.PlaceLocal,
					Local: 0,
					Proj: []mir.Projection{
						{Kind: mir.ProjField, Field: 0},
						{Kind: mir.ProjIndex, Index: mir.ConstOperand(mir.IntConst(2, b.Usize))},
					},
				},
			}}},
			Term: mir.Terminator{Kind: mir.TermReturn, Return: mir.ReturnTerm{
				HasValue: true,
				Value:    mir.TempOperand(0),
			}},
		}},
		Entry: 0,
	}
	mod := &mir.Module{Name: "place_test", Funcs: []mir.Func{fn}}

	out, err := EmitModule(mod, reg, Options{})
	if err != nil {
		t.Fatalf("EmitModule: %v", err)
	}
	if n := strings.Count(out, "getelementptr"); n != 1 {
		t.Fatalf("expected exactly one getelementptr, got %d:\n%s", n, out)
	}
	if !strings.Contains(out, "getelementptr inbounds %Cell, %Cell* %local_0, i32 0, i32 0, i32 %tmp") {
		t.Fatalf("projection chain malformed:\n%s", out)
	}
	if !strings.Contains(out, "%Cell = type { [4 x i32], i1 }") {
		t.Fatalf("struct definition missing:\n%s", out)
	}
	if !strings.Contains(out, "%t0 = load i32, i32* %proj") {
		t.Fatalf("load should go through the projected pointer:\n%s", out)
	}
}

func TestEmitStringInterning(t *testing.T) {
	reg := types.NewInterner()
	b := reg.Builtins()
	strTy := reg.Intern(types.MakeReference(b.Char, false))

	stmt := func(dest mir.TempID) mir.Stmt {
		return mir.Stmt{Kind: mir.StmtDefine, Define: mir.DefineStmt{
			Dest: dest,
			Value: mir.RValue{Kind: mir.RValConst, Const: mir.ConstRValue{
				Const: mir.StringConst("hi", strTy),
			}},
		}}
	}
	fn := mir.Func{
		Name:      "greet",
		Result:    b.Unit,
		TempTypes: []types.TypeID{strTy, strTy},
		Blocks: []mir.Block{{
			Stmts: []mir.Stmt{stmt(0), stmt(1)},
			Term:  mir.Terminator{Kind: mir.TermReturn},
		}},
		Entry: 0,
	}
	mod := &mir.Module{Name: "string_test", Funcs: []mir.Func{fn}}

	out, err := EmitModule(mod, reg, Options{})
	if err != nil {
		t.Fatalf("EmitModule: %v", err)
	}
	if n := strings.Count(out, "@str.0 = private unnamed_addr constant [2 x i8]"); n != 1 {
		t.Fatalf("expected one interned global, got %d:\n%s", n, out)
	}
	if strings.Contains(out, "@str.1") {
		t.Fatalf("identical strings should share a global:\n%s", out)
	}
	if n := strings.Count(out, "getelementptr inbounds [2 x i8], [2 x i8]* @str.0, i32 0, i32 0"); n != 2 {
		t.Fatalf("expected two pointer derivations, got %d:\n%s", n, out)
	}
}

func TestEmitExternsAndCalls(t *testing.T) {
	reg := types.NewInterner()
	b := reg.Builtins()
	strTy := reg.Intern(types.MakeReference(b.Char, false))

	mod := &mir.Module{
		Name: "extern_test",
		Externs: []mir.ExternFunc{{
			Name:   "puts",
			Params: []types.TypeID{strTy},
			Result: b.Int32,
		}},
		Funcs: []mir.Func{{
			Name:      "shout",
			Result:    b.Int32,
			TempTypes: []types.TypeID{strTy, b.Int32},
			Blocks: []mir.Block{{
				Stmts: []mir.Stmt{
					{Kind: mir.StmtDefine, Define: mir.DefineStmt{
						Dest: 0,
						Value: mir.RValue{Kind: mir.RValConst, Const: mir.ConstRValue{
							Const: mir.StringConst("yo", strTy),
						}},
					}},
					{Kind: mir.StmtCall, Call: mir.CallStmt{
						HasDest: true,
						Dest:    1,
						Target:  mir.CallTarget{Kind: mir.CallExtern, Extern: 0},
						Args:    []mir.Operand{mir.TempOperand(0)},
					}},
				},
				Term: mir.Terminator{Kind: mir.TermReturn, Return: mir.ReturnTerm{
					HasValue: true,
					Value:    mir.TempOperand(1),
				}},
			}},
			Entry: 0,
		}},
	}

	out, err := EmitModule(mod, reg, Options{})
	if err != nil {
		t.Fatalf("EmitModule: %v", err)
	}
	for _, want := range []string{
		"declare dso_local i32 @puts(i8*)",
		"%t1 = call i32 @puts(i8* %t0)",
		"ret i32 %t1",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestEmitVoidCall(t *testing.T) {
	reg := types.NewInterner()
	b := reg.Builtins()

	mod := &mir.Module{
		Name: "void_call_test",
		Externs: []mir.ExternFunc{{
			Name:   "flush",
			Result: b.Unit,
		}},
		Funcs: []mir.Func{{
			Name:   "finish",
			Result: b.Unit,
			Blocks: []mir.Block{{
				Stmts: []mir.Stmt{{Kind: mir.StmtCall, Call: mir.CallStmt{
					Target: mir.CallTarget{Kind: mir.CallExtern, Extern: 0},
				}}},
				Term: mir.Terminator{Kind: mir.TermReturn},
			}},
			Entry: 0,
		}},
	}

	out, err := EmitModule(mod, reg, Options{})
	if err != nil {
		t.Fatalf("EmitModule: %v", err)
	}
	if !strings.Contains(out, "declare dso_local void @flush()") {
		t.Fatalf("extern declaration missing:\n%s", out)
	}
	if !strings.Contains(out, "  call void @flush()\n") {
		t.Fatalf("void call malformed:\n%s", out)
	}
	if strings.Contains(out, "= call") {
		t.Fatalf("a unit-returning call must not bind a value:\n%s", out)
	}
}

func TestEmitVoidCallCannotBindDest(t *testing.T) {
	reg := types.NewInterner()
	b := reg.Builtins()

	mod := &mir.Module{
		Name: "void_bind_test",
		Externs: []mir.ExternFunc{{
			Name:   "flush",
			Result: b.Unit,
		}},
		Funcs: []mir.Func{{
			Name:      "finish",
			Result:    b.Unit,
			TempTypes: []types.TypeID{b.Int32},
			Blocks: []mir.Block{{
				Stmts: []mir.Stmt{{Kind: mir.StmtCall, Call: mir.CallStmt{
					HasDest: true,
					Dest:    0,
					Target:  mir.CallTarget{Kind: mir.CallExtern, Extern: 0},
				}}},
				Term: mir.Terminator{Kind: mir.TermReturn},
			}},
			Entry: 0,
		}},
	}

	if _, err := EmitModule(mod, reg, Options{}); err == nil {
		t.Fatalf("binding a unit-returning call should abort emission")
	} else if !strings.Contains(err.Error(), "returns no value") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestEmitRejectsUnterminatedBlock(t *testing.T) {
	reg := types.NewInterner()
	b := reg.Builtins()

	fn := mir.Func{
		Name:   "open_ended",
		Result: b.Unit,
		Blocks: []mir.Block{{}},
		Entry:  0,
	}
	mod := &mir.Module{Name: "open_test", Funcs: []mir.Func{fn}}

	if _, err := EmitModule(mod, reg, Options{}); err == nil {
		t.Fatalf("a block with no terminator should abort emission")
	} else if !strings.Contains(err.Error(), "no terminator") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestEmitCastLowering(t *testing.T) {
	reg := types.NewInterner()
	b := reg.Builtins()
	i64 := reg.Intern(types.MakeInt(types.Width64))
	u64 := reg.Intern(types.MakeUint(types.Width64))
	i16 := reg.Intern(types.MakeInt(types.Width16))

	castStmt := func(dest mir.TempID, src mir.TempID, target types.TypeID) mir.Stmt {
		return mir.Stmt{Kind: mir.StmtDefine, Define: mir.DefineStmt{
			Dest: dest,
			Value: mir.RValue{Kind: mir.RValCast, Cast: mir.CastRValue{
				Value:  mir.TempOperand(src),
				Target: target,
			}},
		}}
	}
	fn := mir.Func{
		Name:      "convert",
		Result:    b.Unit,
		TempTypes: []types.TypeID{b.Int32, b.Uint32, i64, u64, i16, b.Int32},
		Blocks: []mir.Block{{
			Stmts: []mir.Stmt{
				{Kind: mir.StmtDefine, Define: mir.DefineStmt{
					Dest: 0,
					Value: mir.RValue{Kind: mir.RValConst, Const: mir.ConstRValue{
						Const: mir.IntConst(-5, b.Int32),
					}},
				}},
				{Kind: mir.StmtDefine, Define: mir.DefineStmt{
					Dest: 1,
					Value: mir.RValue{Kind: mir.RValConst, Const: mir.ConstRValue{
						Const: mir.IntConst(5, b.Uint32),
					}},
				}},
				castStmt(2, 0, i64),
				castStmt(3, 1, u64),
				castStmt(4, 0, i16),
				castStmt(5, 0, b.Int32),
			},
			Term: mir.Terminator{Kind: mir.TermReturn},
		}},
		Entry: 0,
	}
	mod := &mir.Module{Name: "cast_test", Funcs: []mir.Func{fn}}

	out, err := EmitModule(mod, reg, Options{})
	if err != nil {
		t.Fatalf("EmitModule: %v", err)
	}
	for _, want := range []string{
		"%t2 = sext i32 %t0 to i64",
		"%t3 = zext i32 %t1 to i64",
		"%t4 = trunc i32 %t0 to i16",
		"%t5 = add i32 %t0, 0",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestEmitUseBeforeDefinitionFails(t *testing.T) {
	reg := types.NewInterner()
	b := reg.Builtins()

	fn := mir.Func{
		Name:      "broken",
		Result:    b.Int32,
		TempTypes: []types.TypeID{b.Int32, b.Int32},
		Blocks: []mir.Block{{
			Stmts: []mir.Stmt{{Kind: mir.StmtDefine, Define: mir.DefineStmt{
				Dest: 1,
				Value: mir.RValue{Kind: mir.RValBinary, Binary: mir.BinaryRValue{
					Op:  mir.BinIAdd,
					LHS: mir.TempOperand(0),
					RHS: mir.TempOperand(0),
				}},
			}}},
			Term: mir.Terminator{Kind: mir.TermReturn, Return: mir.ReturnTerm{
				HasValue: true,
				Value:    mir.TempOperand(1),
			}},
		}},
		Entry: 0,
	}
	mod := &mir.Module{Name: "broken_test", Funcs: []mir.Func{fn}}

	if _, err := EmitModule(mod, reg, Options{}); err == nil {
		t.Fatalf("use of an undefined temporary should abort emission")
	} else if !strings.Contains(err.Error(), "used before definition") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestEmitPhi(t *testing.T) {
	reg := types.NewInterner()
	b := reg.Builtins()

	fn := mir.Func{
		Name:      "select_value",
		Result:    b.Int32,
		TempTypes: []types.TypeID{b.Bool, b.Int32, b.Int32, b.Int32},
		Blocks: []mir.Block{
			{
				Stmts: []mir.Stmt{{Kind: mir.StmtDefine, Define: mir.DefineStmt{
					Dest: 0,
					Value: mir.RValue{Kind: mir.RValConst, Const: mir.ConstRValue{
						Const: mir.BoolConst(true, b.Bool),
					}},
				}}},
				Term: mir.Terminator{Kind: mir.TermSwitchInt, Switch: mir.SwitchIntTerm{
					Discr:   mir.TempOperand(0),
					Cases:   []mir.SwitchCase{{Value: mir.BoolConst(false, b.Bool), Target: 2}},
					Default: 1,
				}},
			},
			{
				Stmts: []mir.Stmt{{Kind: mir.StmtDefine, Define: mir.DefineStmt{
					Dest: 1,
					Value: mir.RValue{Kind: mir.RValConst, Const: mir.ConstRValue{
						Const: mir.IntConst(10, b.Int32),
					}},
				}}},
				Term: mir.Terminator{Kind: mir.TermGoto, Goto: mir.GotoTerm{Target: 3}},
			},
			{
				Stmts: []mir.Stmt{{Kind: mir.StmtDefine, Define: mir.DefineStmt{
					Dest: 2,
					Value: mir.RValue{Kind: mir.RValConst, Const: mir.ConstRValue{
						Const: mir.IntConst(20, b.Int32),
					}},
				}}},
				Term: mir.Terminator{Kind: mir.TermGoto, Goto: mir.GotoTerm{Target: 3}},
			},
			{
				Phis: []mir.Phi{{
					Dest: 3,
					Incoming: []mir.PhiIncoming{
						{Block: 1, Value: 1},
						{Block: 2, Value: 2},
					},
				}},
				Term: mir.Terminator{Kind: mir.TermReturn, Return: mir.ReturnTerm{
					HasValue: true,
					Value:    mir.TempOperand(3),
				}},
			},
		},
		Entry: 0,
	}
	mod := &mir.Module{Name: "phi_test", Funcs: []mir.Func{fn}}

	out, err := EmitModule(mod, reg, Options{})
	if err != nil {
		t.Fatalf("EmitModule: %v", err)
	}
	if !strings.Contains(out, "%t3 = phi i32 [ %t1, %bb1 ], [ %t2, %bb2 ]") {
		t.Fatalf("phi malformed:\n%s", out)
	}
	if !strings.Contains(out, "ret i32 %t3") {
		t.Fatalf("phi result should feed the return:\n%s", out)
	}
}
