// Package runnable is the lowered, fully type-checked program tree
// lowering produces and the evaluator walks (spec §3.3/§5): no
// further type errors are possible once a tree reaches this package,
// only runtime ones (index out of range on a non-`_always` access,
// an unmatched For-loop iterator, and the like — spec §5 "Runtime
// panics").
package runnable

import (
	"github.com/funvibe/mers/internal/value"
	"github.com/funvibe/mers/internal/vtype"
)

// Kind discriminates the RStatementEnum alternatives.
type Kind int

const (
	RValue Kind = iota
	RTuple
	RList
	RVariable
	RFunctionCall
	RBuiltinCall
	RLibCall
	RBlockStmt
	RIf
	RLoop
	RFor
	RSwitch
	RMatch
	RIndexFixed
	REnumVariant
)

// BuiltinCallable is the subset of internal/builtins' contract the
// evaluator needs, kept as an interface so internal/runnable doesn't
// import internal/builtins (which itself imports internal/runnable for
// EvalContext, so the reverse import would be a cycle).
type BuiltinCallable interface {
	Name() string
	Returns(args []vtype.Type, info *vtype.Info) vtype.Type
	Run(args []*value.Cell, ctx *EvalContext) *value.Cell
}

// LibCallable mirrors a resolved library function call site.
type LibCallable struct {
	LibID, FnID int
	Out         vtype.Type
}

// SwitchCase is one arm of a Switch: CaseType is the guard, AssignTo
// receives the narrowed value, Body runs if the guard matched.
type SwitchCase struct {
	CaseType vtype.Type
	AssignTo *Statement
	Body     *Statement
}

// MatchCase is one arm of a Match: Condition is evaluated and run
// through the Matches protocol; on success AssignTo receives the
// bound value and Body runs.
type MatchCase struct {
	Condition *Statement
	AssignTo  *Statement
	Body      *Statement
}

// Statement is RStatement: one lowered statement plus its
// cross-cutting annotations (spec §4.3.2). Payload fields are
// populated according to Kind, mirroring parsedtree.Statement's
// one-struct-many-kinds layout and code_runnable.rs's RStatementEnum.
type Statement struct {
	Kind Kind

	Derefs          int
	OutputTo        *OutputTo
	ForceOutputType *vtype.Type

	Value *value.Cell // RValue

	Elements []*Statement // RTuple, RList

	VarCell *value.Cell // RVariable
	VarType vtype.Type  // RVariable
	IsRef   bool        // RVariable

	Function *Function    // RFunctionCall (direct call to a named/compiled function)
	Callee   *Statement   // RFunctionCall (call through a value of Kind Function instead; mutually exclusive with Function)
	Args     []*Statement // RFunctionCall, RBuiltinCall

	Builtin BuiltinCallable // RBuiltinCall

	Lib *LibCallable // RLibCall

	Block *Block // RBlockStmt

	Cond *Statement // RIf
	Then *Statement // RIf
	Else *Statement // RIf (nil = no else)

	LoopBody *Statement // RLoop

	ForVar       *value.Cell // RFor
	ForContainer *Statement  // RFor
	ForBody      *Statement  // RFor

	SwitchOn     *Statement   // RSwitch
	SwitchCases  []SwitchCase // RSwitch
	SwitchForced bool         // RSwitch

	MatchCases []MatchCase // RMatch

	IndexOf *Statement // RIndexFixed
	Index   int        // RIndexFixed

	EnumID    int        // REnumVariant
	EnumInner *Statement // REnumVariant
}

// OutputTo is the `(target, is_init)` pair from the reference
// implementation's RStatement.output_to: Derefs lives on the outer
// Statement, matching code_runnable.rs (`derefs` applies to the whole
// statement's result, not just to resolving the target).
type OutputTo struct {
	Target *Statement
	IsInit bool
}

// Block is RBlock: a straight-line sequence whose last statement's
// value is the block's value (or `[]` if empty).
type Block struct {
	Statements []*Statement
}

// IOMapEntry is one row of a compiled function's overload table: the
// exact input singles this row was compiled for, and the output union
// that input combination produces.
type IOMapEntry struct {
	Ins []vtype.Single
	Out vtype.Type
}

// Function is RFunction: a compiled overload table (one Block shared
// across all call shapes — Mers functions aren't specialized per
// overload row, only type-checked per row) plus the live input cells
// the block reads from on every call.
type Function struct {
	Inputs     []*value.Cell
	InputTypes []vtype.Type
	IOMap      []IOMapEntry
	Block      *Block
}

// Signature implements value.Function, letting an *Function be
// stored directly inside a value.Data of KFunction.
func (f *Function) Signature() vtype.Single {
	rows := make([]vtype.FuncRow, len(f.IOMap))
	for i, e := range f.IOMap {
		rows[i] = vtype.FuncRow{Ins: e.Ins, Out: e.Out}
	}
	return vtype.Function(rows...)
}

// OutAll is the union of outputs across every compiled input
// signature (spec "out_all"). Callers resolving a specific call's
// output should use vtype.ResolveCall against Signature() instead.
func (f *Function) OutAll(info *vtype.Info) vtype.Type {
	out := vtype.Empty()
	for _, e := range f.IOMap {
		out.AddTypes(e.Out, info)
	}
	return out
}

// Script is RScript: the compiled program's entry point plus the
// frozen type-interning tables every runtime type lookup needs.
type Script struct {
	Main *Function
	Info *vtype.Info
}
