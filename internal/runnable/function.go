package runnable

import (
	"github.com/funvibe/mers/internal/value"
	"github.com/funvibe/mers/internal/vtype"
)

// Eval is RBlock::run: the value of the last statement, or `[]` for
// an empty block.
func (b *Block) Eval(ctx *EvalContext) *value.Cell {
	var last *value.Cell
	for _, s := range b.Statements {
		last = Eval(s, ctx)
	}
	if last == nil {
		return value.NewCell(value.Unit())
	}
	return last
}

// Call is RFunction::run, generalized to assign every argument into
// its input cell first (spec §4.3.1 "FunctionCall"): Mers functions
// aren't specialized per overload row, so the same Block runs
// regardless of which IOMap row the call-site type-checked against.
func (f *Function) Call(args []*value.Cell, ctx *EvalContext) *value.Cell {
	for i, input := range f.Inputs {
		value.Assign(input, args[i])
	}
	return f.Block.Eval(ctx)
}

// Run executes the script's main function with the given CLI
// arguments (spec §6.1).
func (s *Script) Run(args []string, ctx *EvalContext) *value.Cell {
	elems := make([]*value.Cell, len(args))
	for i, a := range args {
		elems[i] = value.NewCell(value.NewString(a))
	}
	argv := value.NewCell(value.NewList(vtype.String().ToType(), elems...))
	return s.Main.Call([]*value.Cell{argv}, ctx)
}
