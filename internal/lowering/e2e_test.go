package lowering

import (
	"context"
	"testing"

	"github.com/funvibe/mers/internal/parsedtree"
	"github.com/funvibe/mers/internal/runnable"
	"github.com/funvibe/mers/internal/value"
	"github.com/funvibe/mers/internal/vtype"
)

// Helpers to build parsedtree.Statement trees by hand — Mers has no
// parser in this module (spec.md §1 Non-goals), so every test here
// plays the external front end's role directly.

func val(v parsedtree.Value) *parsedtree.Statement {
	return &parsedtree.Statement{Kind: parsedtree.SValue, Value: v}
}

func intVal(i int) *parsedtree.Statement    { return val(parsedtree.Value{Kind: vtype.KInt, Int: i}) }
func floatVal(f float64) *parsedtree.Statement {
	return val(parsedtree.Value{Kind: vtype.KFloat, Float: f})
}
func strVal(s string) *parsedtree.Statement { return val(parsedtree.Value{Kind: vtype.KString, Str: s}) }

func call(name string, args ...*parsedtree.Statement) *parsedtree.Statement {
	return &parsedtree.Statement{Kind: parsedtree.SFunctionCall, VarName: name, Args: args}
}

func variable(name string) *parsedtree.Statement {
	return &parsedtree.Statement{Kind: parsedtree.SVariable, VarName: name}
}

func refOf(name string) *parsedtree.Statement {
	return &parsedtree.Statement{Kind: parsedtree.SVariable, VarName: name, VarIsReference: true}
}

func tuple(elems ...*parsedtree.Statement) *parsedtree.Statement {
	return &parsedtree.Statement{Kind: parsedtree.STuple, Elements: elems}
}

func list(elems ...*parsedtree.Statement) *parsedtree.Statement {
	return &parsedtree.Statement{Kind: parsedtree.SList, Elements: elems}
}

// assign builds `target = src`.
func assign(target, src *parsedtree.Statement, derefs int) *parsedtree.Statement {
	cp := *src
	cp.OutputTo = &parsedtree.OutputTo{Target: target, Derefs: derefs}
	return &cp
}

func block(stmts ...*parsedtree.Statement) *parsedtree.Block {
	return &parsedtree.Block{Statements: stmts}
}

// mainOf wraps a block as the program's `main(args list<string>)`.
func mainOf(stmts ...*parsedtree.Statement) *parsedtree.Document {
	return &parsedtree.Document{
		Main: parsedtree.Function{
			Inputs: []parsedtree.Param{{Name: "args", Type: vtype.List(vtype.String().ToType()).ToType()}},
			Block:  block(stmts...),
		},
	}
}

func compileAndRun(t *testing.T, doc *parsedtree.Document) *value.Cell {
	t.Helper()
	res, err := Compile(doc, nil)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	ctx := &runnable.EvalContext{Info: res.Script.Info, Threads: value.NewRegistry(), Ctx: context.Background()}
	out := res.Script.Run(nil, ctx)
	ctx.Threads.Drain()
	return out
}

func wantInt(t *testing.T, c *value.Cell, want int) {
	t.Helper()
	value.OperateImmut(c, func(d *value.Data) {
		if d.Kind != vtype.KInt {
			t.Fatalf("expected int, got kind %v", d.Kind)
		}
		if d.Int != want {
			t.Fatalf("expected %d, got %d", want, d.Int)
		}
	})
}

func wantString(t *testing.T, c *value.Cell, want string) {
	t.Helper()
	value.OperateImmut(c, func(d *value.Data) {
		if d.Kind != vtype.KString {
			t.Fatalf("expected string, got kind %v", d.Kind)
		}
		if d.Str != want {
			t.Fatalf("expected %q, got %q", want, d.Str)
		}
	})
}

// S1 arithmetic: add(sub(10 3) mul(2 4)) -> Int 15.
func TestE2E_S1_Arithmetic(t *testing.T) {
	doc := mainOf(call("add", call("sub", intVal(10), intVal(3)), call("mul", intVal(2), intVal(4))))
	out := compileAndRun(t, doc)
	wantInt(t, out, 15)
}

// S2 tuple destructure: [a b] = [7 "x"]; format("{0}-{1}" to_string(a) b) -> "7-x".
func TestE2E_S2_TupleDestructure(t *testing.T) {
	doc := mainOf(
		assign(tuple(variable("a"), variable("b")), tuple(intVal(7), strVal("x")), 0),
		call("format", strVal("{0}-{1}"), call("to_string", variable("a")), variable("b")),
	)
	out := compileAndRun(t, doc)
	wantString(t, out, "7-x")
}

// S3 list mutate via reference: l = [1 2 3]; push(&l 4); len(l) -> Int 4.
func TestE2E_S3_ListMutateViaReference(t *testing.T) {
	doc := mainOf(
		assign(variable("l"), list(intVal(1), intVal(2), intVal(3)), 0),
		call("push", refOf("l"), intVal(4)),
		call("len", variable("l")),
	)
	out := compileAndRun(t, doc)
	wantInt(t, out, 4)
}

// S4 match unwrap: get([10 20 30] 1).match v { add(v 5) } -> Int 25.
func TestE2E_S4_MatchUnwrap(t *testing.T) {
	getCall := call("get", list(intVal(10), intVal(20), intVal(30)), intVal(1))
	matchStmt := &parsedtree.Statement{
		Kind:     parsedtree.SMatch,
		SwitchOn: "v",
		Cases: []parsedtree.Case{
			{Condition: variable("v"), Body: call("add", variable("v"), intVal(5))},
		},
	}
	// bind the get() result into "v" first, then match on it.
	doc := mainOf(
		assign(variable("v"), getCall, 0),
		matchStmt,
	)
	out := compileAndRun(t, doc)
	wantInt(t, out, 25)
}

// S5 switch narrow: f = (x int/string) { switch x { int {add(x 1)} string {len(x)} } }
// [f(10) f("hi")] -> Tuple[Int 11, Int 2].
func TestE2E_S5_SwitchNarrow(t *testing.T) {
	fnDef := &parsedtree.Statement{
		Kind:    parsedtree.SFunctionDefinition,
		VarName: "f",
		FunctionDef: &parsedtree.Function{
			Inputs: []parsedtree.Param{{Name: "x", Type: vtype.Of(vtype.Int(), vtype.String())}},
			Block: block(&parsedtree.Statement{
				Kind:     parsedtree.SSwitch,
				SwitchOn: "x",
				Cases: []parsedtree.Case{
					{CaseType: vtype.Int().ToType(), Body: call("add", variable("x"), intVal(1))},
					{CaseType: vtype.String().ToType(), Body: call("len", variable("x"))},
				},
			}),
		},
	}
	doc := mainOf(
		fnDef,
		tuple(call("f", intVal(10)), call("f", strVal("hi"))),
	)
	out := compileAndRun(t, doc)
	value.OperateImmut(out, func(d *value.Data) {
		if d.Kind != vtype.KTuple || len(d.Tuple) != 2 {
			t.Fatalf("expected a 2-tuple, got %+v", d)
		}
		wantInt(t, d.Tuple[0], 11)
		wantInt(t, d.Tuple[1], 2)
	})
}

// S6 thread/await: t = thread(() { sleep(0.01) 7 }) await(t) -> Int 7.
func TestE2E_S6_ThreadAwait(t *testing.T) {
	fnLit := &parsedtree.Statement{
		Kind: parsedtree.SFunctionDefinition,
		FunctionDef: &parsedtree.Function{
			Block: block(call("sleep", floatVal(0.01)), intVal(7)),
		},
	}
	doc := mainOf(
		assign(variable("t"), call("thread", fnLit), 0),
		call("await", variable("t")),
	)
	out := compileAndRun(t, doc)
	wantInt(t, out, 7)
}

// Assignment destructuring property (spec §8 property 9): [a b] = [1 2]
// leaves a==1, b==2, read back out as a tuple.
func TestE2E_AssignmentDestructuring(t *testing.T) {
	doc := mainOf(
		assign(tuple(variable("a"), variable("b")), tuple(intVal(1), intVal(2)), 0),
		tuple(variable("a"), variable("b")),
	)
	out := compileAndRun(t, doc)
	value.OperateImmut(out, func(d *value.Data) {
		wantInt(t, d.Tuple[0], 1)
		wantInt(t, d.Tuple[1], 2)
	})
}

// For-loop termination property (spec §8 property 10): for i 5 {}
// iterates exactly five times, i in 0..4; sum them with add to check.
func TestE2E_ForLoopTermination(t *testing.T) {
	doc := mainOf(
		assign(variable("total"), intVal(0), 0),
		&parsedtree.Statement{
			Kind:    parsedtree.SFor,
			ForVar:  "i",
			ForIn:   intVal(5),
			ForBody: assign(variable("total"), call("add", variable("total"), variable("i")), 0),
		},
		variable("total"),
	)
	out := compileAndRun(t, doc)
	wantInt(t, out, 0+1+2+3+4)
}

func TestE2E_MainWrongInput(t *testing.T) {
	doc := &parsedtree.Document{Main: parsedtree.Function{Block: block(intVal(1))}}
	_, err := Compile(doc, nil)
	if err == nil || err.Kind != ErrMainWrongInput {
		t.Fatalf("expected ErrMainWrongInput, got %v", err)
	}
}

func TestE2E_UseOfUndefinedVariable(t *testing.T) {
	doc := mainOf(variable("nope"))
	_, err := Compile(doc, nil)
	if err == nil || err.Kind != ErrUseOfUndefinedVariable {
		t.Fatalf("expected ErrUseOfUndefinedVariable, got %v", err)
	}
}

func TestE2E_UseOfUndefinedFunction(t *testing.T) {
	doc := mainOf(call("totally_not_a_function", intVal(1)))
	_, err := Compile(doc, nil)
	if err == nil || err.Kind != ErrUseOfUndefinedFunction {
		t.Fatalf("expected ErrUseOfUndefinedFunction, got %v", err)
	}
}

func TestE2E_IfConditionMustBeBool(t *testing.T) {
	doc := mainOf(&parsedtree.Statement{Kind: parsedtree.SIf, Cond: intVal(1), Then: intVal(2)})
	_, err := Compile(doc, nil)
	if err == nil || err.Kind != ErrInvalidType {
		t.Fatalf("expected ErrInvalidType, got %v", err)
	}
}

func TestE2E_SwitchForceRequiresFullCoverage(t *testing.T) {
	doc := mainOf(
		assign(variable("x"), intVal(1), 0),
		&parsedtree.Statement{
			Kind:     parsedtree.SSwitch,
			SwitchOn: "x",
			Force:    true,
			Cases: []parsedtree.Case{
				{CaseType: vtype.Int().ToType(), Body: variable("x")},
			},
		},
	)
	// x's declared type here is exactly Int (from the literal 1), so a
	// switch! covering only int does compile.
	if _, err := Compile(doc, nil); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
}

func TestE2E_ForceOutputTypeMismatch(t *testing.T) {
	forced := vtype.String().ToType()
	stmt := intVal(1)
	stmt.ForceOutputType = &forced
	doc := mainOf(stmt)
	_, err := Compile(doc, nil)
	if err == nil || err.Kind != ErrStatementRequiresOutputTypeToBeAButItActuallyOutputsBWhichDoesNotFitInA {
		t.Fatalf("expected force-output-type mismatch error, got %v", err)
	}
}

// A loop whose body is a plain non-tuple value matches on the very
// first iteration and terminates with that value.
func TestE2E_LoopTerminatesOnNonTupleValue(t *testing.T) {
	doc := mainOf(&parsedtree.Statement{Kind: parsedtree.SLoop, LoopBody: intVal(5)})
	out := compileAndRun(t, doc)
	wantInt(t, out, 5)
}

func TestE2E_DerefAssignRequiresExistingVariable(t *testing.T) {
	doc := mainOf(assign(variable("x"), intVal(1), 1))
	_, err := Compile(doc, nil)
	if err == nil || err.Kind != ErrCannotDeclareVariableWithDereference {
		t.Fatalf("expected ErrCannotDeclareVariableWithDereference, got %v", err)
	}
}

func TestE2E_MatchOnUndefinedVariable(t *testing.T) {
	doc := mainOf(&parsedtree.Statement{
		Kind:     parsedtree.SMatch,
		SwitchOn: "nope",
		Cases:    []parsedtree.Case{{Condition: intVal(1), Body: intVal(2)}},
	})
	_, err := Compile(doc, nil)
	if err == nil || err.Kind != ErrUseOfUndefinedVariable {
		t.Fatalf("expected ErrUseOfUndefinedVariable, got %v", err)
	}
}

func TestE2E_MatchConditionWideTupleRejected(t *testing.T) {
	doc := mainOf(
		assign(variable("v"), intVal(1), 0),
		&parsedtree.Statement{
			Kind:     parsedtree.SMatch,
			SwitchOn: "v",
			Cases:    []parsedtree.Case{{Condition: tuple(intVal(1), intVal(2)), Body: intVal(3)}},
		},
	)
	_, err := Compile(doc, nil)
	if err == nil || err.Kind != ErrMatchConditionInvalidReturn {
		t.Fatalf("expected ErrMatchConditionInvalidReturn, got %v", err)
	}
}

func TestE2E_UnknownCustomTypeIDInSignature(t *testing.T) {
	doc := mainOf(
		&parsedtree.Statement{
			Kind:    parsedtree.SFunctionDefinition,
			VarName: "f",
			FunctionDef: &parsedtree.Function{
				Inputs: []parsedtree.Param{{Name: "x", Type: vtype.CustomType(7).ToType()}},
				Block:  block(intVal(1)),
			},
		},
	)
	_, err := Compile(doc, nil)
	if err == nil || err.Kind != ErrUnknownType {
		t.Fatalf("expected ErrUnknownType, got %v", err)
	}
}

// assume1 on a value that is never the empty tuple compiles, but
// records the never-fails diagnostic.
func TestE2E_Assume1NeverFailsWarns(t *testing.T) {
	doc := mainOf(call("assume1", tuple(intVal(1))))
	res, err := Compile(doc, nil)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	found := false
	for _, w := range res.Warnings {
		if w.Kind == WarnAssume1NeverFails {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a WarnAssume1NeverFails warning, got %v", res.Warnings)
	}
}

// Copy-on-write isolation (spec §8 property 5): mutating a pushed-to
// list through one binding must not be visible through an earlier
// plain (non-reference) clone of it.
func TestE2E_CopyOnWriteIsolation(t *testing.T) {
	doc := mainOf(
		assign(variable("a"), list(intVal(1), intVal(2)), 0),
		assign(variable("b"), variable("a"), 0), // b is a/clone_data of a, not an alias
		call("push", refOf("a"), intVal(3)),
		tuple(call("len", variable("a")), call("len", variable("b"))),
	)
	out := compileAndRun(t, doc)
	value.OperateImmut(out, func(d *value.Data) {
		wantInt(t, d.Tuple[0], 3)
		wantInt(t, d.Tuple[1], 2)
	})
}
