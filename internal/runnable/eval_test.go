package runnable

import (
	"testing"

	"github.com/funvibe/mers/internal/value"
	"github.com/funvibe/mers/internal/vtype"
)

func intStmt(i int) *Statement {
	return &Statement{Kind: RValue, Value: value.NewCell(value.NewInt(i))}
}

func newCtx() *EvalContext {
	return &EvalContext{Info: vtype.NewInfo(), Threads: value.NewRegistry()}
}

func wantInt(t *testing.T, c *value.Cell, want int) {
	t.Helper()
	value.OperateImmut(c, func(d *value.Data) {
		if d.Kind != vtype.KInt || d.Int != want {
			t.Fatalf("expected int %d, got %+v", want, d)
		}
	})
}

// TestEvalBlockReturnsLastStatement exercises RBlock's "value of the
// last statement" rule directly.
func TestEvalBlockReturnsLastStatement(t *testing.T) {
	block := &Block{Statements: []*Statement{intStmt(1), intStmt(2), intStmt(3)}}
	out := block.Eval(newCtx())
	wantInt(t, out, 3)
}

func TestEvalEmptyBlockIsUnit(t *testing.T) {
	block := &Block{}
	out := block.Eval(newCtx())
	value.OperateImmut(out, func(d *value.Data) {
		if d.Kind != vtype.KTuple || len(d.Tuple) != 0 {
			t.Fatalf("empty block should evaluate to [], got %+v", d)
		}
	})
}

// TestEvalVariableAssignmentThroughReference exercises Eval's
// output_to handling directly: an assignment target built with IsRef
// must write through to the backing cell.
func TestEvalVariableAssignmentThroughReference(t *testing.T) {
	ctx := newCtx()
	cell := value.NewPlaceholder()
	target := &Statement{Kind: RVariable, VarCell: cell, VarType: vtype.Int().ToType(), IsRef: true}
	assign := &Statement{Kind: RValue, Value: value.NewCell(value.NewInt(42)), OutputTo: &OutputTo{Target: target, IsInit: true}}

	out := Eval(assign, ctx)
	value.OperateImmut(out, func(d *value.Data) {
		if d.Kind != vtype.KTuple || len(d.Tuple) != 0 {
			t.Fatalf("an assignment statement should evaluate to [], got %+v", d)
		}
	})
	wantInt(t, value.CloneData(cell), 42)
}

func TestEvalDerefsUnwrapReference(t *testing.T) {
	ctx := newCtx()
	backing := value.NewCell(value.NewInt(5))
	refCell := &Statement{Kind: RValue, Value: value.NewCell(value.NewReference(value.CloneMut(backing))), Derefs: 1}
	out := Eval(refCell, ctx)
	wantInt(t, out, 5)
}

func TestEvalIfTakesTrueBranch(t *testing.T) {
	ctx := newCtx()
	stmt := &Statement{
		Kind: RIf,
		Cond: &Statement{Kind: RValue, Value: value.NewCell(value.NewBool(true))},
		Then: intStmt(1),
		Else: intStmt(2),
	}
	wantInt(t, Eval(stmt, ctx), 1)
}

func TestEvalIfTakesFalseBranch(t *testing.T) {
	ctx := newCtx()
	stmt := &Statement{
		Kind: RIf,
		Cond: &Statement{Kind: RValue, Value: value.NewCell(value.NewBool(false))},
		Then: intStmt(1),
		Else: intStmt(2),
	}
	wantInt(t, Eval(stmt, ctx), 2)
}

func TestEvalIfWithNoElseBranchReturnsUnit(t *testing.T) {
	ctx := newCtx()
	stmt := &Statement{
		Kind: RIf,
		Cond: &Statement{Kind: RValue, Value: value.NewCell(value.NewBool(false))},
		Then: intStmt(1),
	}
	out := Eval(stmt, ctx)
	value.OperateImmut(out, func(d *value.Data) {
		if d.Kind != vtype.KTuple || len(d.Tuple) != 0 {
			t.Fatalf("if with no else and a false condition should evaluate to [], got %+v", d)
		}
	})
}

// TestEvalForIteratesIntRangeInOrder exercises RFor against a KInt
// container (spec §4.3.5 "For(container) where container is an int:
// iterate 0..container").
func TestEvalForIteratesIntRangeInOrder(t *testing.T) {
	ctx := newCtx()
	loopVar := value.NewPlaceholder()
	var seen []int
	body := &Statement{
		Kind: RBuiltinCall,
		Builtin: recordingBuiltin{fn: func(args []*value.Cell, ctx *EvalContext) *value.Cell {
			value.OperateImmut(args[0], func(d *value.Data) { seen = append(seen, d.Int) })
			return value.NewCell(value.Unit())
		}},
		Args: []*Statement{{Kind: RVariable, VarCell: loopVar, VarType: vtype.Int().ToType()}},
	}

	stmt := &Statement{
		Kind:         RFor,
		ForVar:       loopVar,
		ForContainer: intStmt(4),
		ForBody:      body,
	}
	Eval(stmt, ctx)
	want := []int{0, 1, 2, 3}
	if len(seen) != len(want) {
		t.Fatalf("for over int(4) should run the body 4 times, saw %v", seen)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("for over int(4) iteration order = %v, want %v", seen, want)
		}
	}
}

// TestEvalForOverListMutatesThroughReference exercises the
// Reference-to-list loop-var aliasing path (spec §4.4.1 "For"): the
// loop body writes `*it = add(*it 10)` each iteration — one explicit
// dereference on both the read and the assignment target — and that
// must land back on the original list's element, not on the loop
// variable's own binding.
func TestEvalForOverListMutatesThroughReference(t *testing.T) {
	ctx := newCtx()
	backing := value.NewCell(value.NewList(vtype.Int().ToType(),
		value.NewCell(value.NewInt(1)), value.NewCell(value.NewInt(2)), value.NewCell(value.NewInt(3))))
	loopVar := value.NewPlaceholder()

	assignTarget := &Statement{Kind: RVariable, VarCell: loopVar, VarType: vtype.Int().ToType(), IsRef: true, Derefs: 1}
	addTen := &Statement{
		Kind: RBuiltinCall,
		Builtin: recordingBuiltin{fn: func(args []*value.Cell, ctx *EvalContext) *value.Cell {
			return value.OperateImmutValue(args[0], func(d *value.Data) *value.Cell {
				return value.NewCell(value.NewInt(d.Int + 10))
			})
		}},
		Args:     []*Statement{{Kind: RVariable, VarCell: loopVar, VarType: vtype.Int().ToType(), Derefs: 1}},
		OutputTo: &OutputTo{Target: assignTarget},
	}

	stmt := &Statement{
		Kind: RFor,
		ForVar: loopVar,
		ForContainer: &Statement{
			Kind:  RValue,
			Value: value.NewCell(value.NewReference(value.CloneMut(backing))),
		},
		ForBody: addTen,
	}
	Eval(stmt, ctx)

	value.OperateImmut(backing, func(d *value.Data) {
		want := []int{11, 12, 13}
		for i, c := range d.List.Elems {
			value.OperateImmut(c, func(e *value.Data) {
				if e.Int != want[i] {
					t.Fatalf("element %d after for-loop mutation = %d, want %d", i, e.Int, want[i])
				}
			})
		}
	})
}

// TestEvalForOverReferenceBodyReadsContainer models `for x &l { y = l }`:
// the body reads the very list cell the loop is iterating by reference.
// The iteration snapshot must have released the referent's lock before
// the first body evaluation, or this reads a cell the loop still holds
// locked and deadlocks.
func TestEvalForOverReferenceBodyReadsContainer(t *testing.T) {
	ctx := newCtx()
	listType := vtype.List(vtype.Int().ToType()).ToType()
	listCell := value.NewCell(value.NewList(vtype.Int().ToType(),
		value.NewCell(value.NewInt(1)), value.NewCell(value.NewInt(2))))
	loopVar := value.NewPlaceholder()

	var lens []int
	body := &Statement{
		Kind: RBuiltinCall,
		Builtin: recordingBuiltin{fn: func(args []*value.Cell, ctx *EvalContext) *value.Cell {
			value.OperateImmut(args[0], func(d *value.Data) { lens = append(lens, len(d.List.Elems)) })
			return value.NewCell(value.Unit())
		}},
		Args: []*Statement{{Kind: RVariable, VarCell: listCell, VarType: listType}},
	}

	stmt := &Statement{
		Kind:         RFor,
		ForVar:       loopVar,
		ForContainer: &Statement{Kind: RVariable, VarCell: listCell, VarType: listType, IsRef: true},
		ForBody:      body,
	}
	Eval(stmt, ctx)

	if len(lens) != 2 {
		t.Fatalf("body should have read the container once per element, got %v", lens)
	}
	for _, n := range lens {
		if n != 2 {
			t.Fatalf("each body read should see the 2-element list, got %v", lens)
		}
	}
}

// recordingBuiltin adapts a plain func into runnable.BuiltinCallable
// for tests that need to observe or compute during a for-loop body
// without going through the lowering/builtins packages.
type recordingBuiltin struct {
	fn func(args []*value.Cell, ctx *EvalContext) *value.Cell
}

func (recordingBuiltin) Name() string { return "test_builtin" }
func (recordingBuiltin) Returns(args []vtype.Type, info *vtype.Info) vtype.Type {
	return vtype.Unit().ToType()
}
func (r recordingBuiltin) Run(args []*value.Cell, ctx *EvalContext) *value.Cell {
	return r.fn(args, ctx)
}

func TestEvalLoopBreaksOnMatches(t *testing.T) {
	ctx := newCtx()
	count := 0
	body := &Statement{
		Kind: RBuiltinCall,
		Builtin: recordingBuiltin{fn: func(args []*value.Cell, ctx *EvalContext) *value.Cell {
			count++
			if count == 3 {
				return value.NewCell(value.NewTuple(value.NewCell(value.NewInt(99))))
			}
			return value.NewCell(value.Unit())
		}},
	}
	stmt := &Statement{Kind: RLoop, LoopBody: body}
	out := Eval(stmt, ctx)
	if count != 3 {
		t.Fatalf("loop should stop as soon as the body matches, ran %d times", count)
	}
	wantInt(t, out, 99)
}

func TestEvalIndexFixed(t *testing.T) {
	ctx := newCtx()
	tuple := &Statement{Kind: RTuple, Elements: []*Statement{intStmt(10), intStmt(20), intStmt(30)}}
	stmt := &Statement{Kind: RIndexFixed, IndexOf: tuple, Index: 1}
	wantInt(t, Eval(stmt, ctx), 20)
}

func TestEvalEnumVariantRoundTrip(t *testing.T) {
	ctx := newCtx()
	id := ctx.Info.InternEnumVariant("Some")
	stmt := &Statement{Kind: REnumVariant, EnumID: id, EnumInner: intStmt(7)}
	out := Eval(stmt, ctx)
	value.OperateImmut(out, func(d *value.Data) {
		if d.Kind != vtype.KEnumVariant || d.EnumID != id {
			t.Fatalf("expected enum variant %d, got %+v", id, d)
		}
		wantInt(t, d.EnumPayload, 7)
	})
}
