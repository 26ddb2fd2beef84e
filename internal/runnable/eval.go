package runnable

import (
	"context"
	"fmt"
	"io"

	"github.com/funvibe/mers/internal/library"
	"github.com/funvibe/mers/internal/value"
	"github.com/funvibe/mers/internal/vtype"
)

// EvalContext carries everything the tree-walk needs beyond the
// statement being evaluated: the frozen type tables, the thread
// registry threads spawned by this run join through, the host streams
// builtins like `print`/`stdin_read_line` touch, and a context.Context
// that `sleep`, `run_command*` and library calls watch, so those can be
// cancelled from the outside instead of leaking a goroutine. The other
// blocking builtins (`await`, `stdin_read_line`, `fs_*`, `print`) do
// not watch it.
type EvalContext struct {
	Info    *vtype.Info
	Threads *value.Registry
	Libs    []library.Library

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	Ctx context.Context
}

// callable is the subset of value.Function an RFunctionCall needs to
// actually invoke a value (value.Function only carries Signature, to
// keep internal/value from depending on internal/runnable).
type callable interface {
	Call(args []*value.Cell, ctx *EvalContext) *value.Cell
}

// Eval is RStatement::run: it evaluates the statement's own payload,
// then — in this exact order, which is load-bearing — applies
// output_to (short-circuiting the result to `[]` on success) and only
// after that applies derefs.
func Eval(s *Statement, ctx *EvalContext) *value.Cell {
	out := s.evalInner(ctx)
	if s.OutputTo != nil {
		target := Eval(s.OutputTo.Target, ctx)
		value.AssignTo(out, target)
		out = value.NewCell(value.Unit())
	}
	for i := 0; i < s.Derefs; i++ {
		deref, ok := value.Deref(out)
		if !ok {
			panic("couldn't dereference (Eval)")
		}
		out = deref
	}
	return out
}

func (s *Statement) evalInner(ctx *EvalContext) *value.Cell {
	switch s.Kind {
	case RValue:
		return value.CloneData(s.Value)
	case RTuple:
		elems := make([]*value.Cell, len(s.Elements))
		for i, e := range s.Elements {
			elems[i] = Eval(e, ctx)
		}
		return value.NewCell(value.NewTuple(elems...))
	case RList:
		elems := make([]*value.Cell, len(s.Elements))
		elemType := vtype.Empty()
		for i, e := range s.Elements {
			v := Eval(e, ctx)
			elems[i] = v
			elemType.AddTypes(v.Out().ToType(), ctx.Info)
		}
		return value.NewCell(value.NewList(elemType, elems...))
	case RVariable:
		if s.IsRef {
			return value.NewCell(value.NewReference(value.CloneMut(s.VarCell)))
		}
		return value.CloneData(s.VarCell)
	case RFunctionCall:
		args := make([]*value.Cell, len(s.Args))
		for i, a := range s.Args {
			args[i] = Eval(a, ctx)
		}
		if s.Callee != nil {
			calleeVal := Eval(s.Callee, ctx)
			var fn callable
			value.OperateImmut(calleeVal, func(d *value.Data) { fn = d.Fn.(callable) })
			return fn.Call(args, ctx)
		}
		return s.Function.Call(args, ctx)
	case RBuiltinCall:
		args := make([]*value.Cell, len(s.Args))
		for i, a := range s.Args {
			args[i] = Eval(a, ctx)
		}
		return s.Builtin.Run(args, ctx)
	case RLibCall:
		args := make([]*value.Cell, len(s.Args))
		for i, a := range s.Args {
			args[i] = Eval(a, ctx)
		}
		lib := ctx.Libs[s.Lib.LibID]
		result, err := lib.RunFn(ctx.Ctx, s.Lib.FnID, args)
		if err != nil {
			errID := ctx.Info.InternEnumVariant(vtype.ErrEnumName)
			return value.NewCell(value.NewEnumVariant(errID, value.NewCell(value.NewString(err.Error()))))
		}
		return result
	case RBlockStmt:
		return s.Block.Eval(ctx)
	case RIf:
		cond := Eval(s.Cond, ctx)
		var taken bool
		value.OperateImmut(cond, func(d *value.Data) { taken = d.Bool })
		if taken {
			return Eval(s.Then, ctx)
		}
		if s.Else != nil {
			return Eval(s.Else, ctx)
		}
		return value.NewCell(value.Unit())
	case RLoop:
		for {
			result := Eval(s.LoopBody, ctx)
			if bound, ok := value.Matches(result); ok {
				return bound
			}
		}
	case RFor:
		return s.evalFor(ctx)
	case RSwitch:
		return s.evalSwitch(ctx)
	case RMatch:
		return s.evalMatch(ctx)
	case RIndexFixed:
		inner := Eval(s.IndexOf, ctx)
		got, ok := value.Get(inner, s.Index)
		if !ok {
			panic(fmt.Sprintf("index %d out of range (IndexFixed)", s.Index))
		}
		return got
	case REnumVariant:
		inner := Eval(s.EnumInner, ctx)
		return value.NewCell(value.NewEnumVariant(s.EnumID, inner))
	default:
		panic(fmt.Sprintf("runnable: invalid Kind %d", s.Kind))
	}
}

func (s *Statement) evalSwitch(ctx *EvalContext) *value.Cell {
	on := Eval(s.SwitchOn, ctx)
	onType := on.Out().ToType()
	for _, c := range s.SwitchCases {
		if len(onType.FitsIn(c.CaseType, ctx.Info)) == 0 {
			target := Eval(c.AssignTo, ctx)
			value.AssignTo(on, target)
			return Eval(c.Body, ctx)
		}
	}
	return value.NewCell(value.Unit())
}

func (s *Statement) evalMatch(ctx *EvalContext) *value.Cell {
	for _, c := range s.MatchCases {
		cond := Eval(c.Condition, ctx)
		if bound, ok := value.Matches(cond); ok {
			target := Eval(c.AssignTo, ctx)
			value.AssignTo(bound, target)
			return Eval(c.Body, ctx)
		}
	}
	return value.NewCell(value.Unit())
}

func (s *Statement) evalFor(ctx *EvalContext) *value.Cell {
	container := Eval(s.ForContainer, ctx)
	runBody := func(item *value.Cell) *value.Cell {
		value.Assign(s.ForVar, item)
		return Eval(s.ForBody, ctx)
	}

	// Snapshot the iteration source under the container's lock, then
	// release before the first body evaluation: the body is arbitrary
	// user code and may read or reassign the very container being
	// iterated, so no cell lock may be held across it (spec §5 "locks
	// are never held across user-function calls"). For a Reference
	// container each snapshot entry is a mutable alias of the live
	// element cell — a Reference carrying its own alias, no parent lock
	// retained — so writes through the loop variable still land on the
	// original container.
	var (
		kind  vtype.Kind
		count int
		str   string
		items []*value.Cell
		fn    callable
	)
	value.OperateImmut(container, func(d *value.Data) {
		kind = d.Kind
		switch d.Kind {
		case vtype.KInt:
			count = d.Int
		case vtype.KString:
			str = d.Str
		case vtype.KTuple:
			items = make([]*value.Cell, len(d.Tuple))
			for i, c := range d.Tuple {
				items[i] = value.CloneData(c)
			}
		case vtype.KList:
			items = make([]*value.Cell, len(d.List.Elems))
			for i, c := range d.List.Elems {
				items[i] = value.CloneData(c)
			}
		case vtype.KReference:
			value.OperateImmut(d.Ref, func(inner *value.Data) {
				var elems []*value.Cell
				switch inner.Kind {
				case vtype.KTuple:
					elems = inner.Tuple
				case vtype.KList:
					elems = inner.List.Elems
				default:
					panic("for: reference does not point to a tuple or list")
				}
				items = make([]*value.Cell, len(elems))
				for i, c := range elems {
					items[i] = value.NewCell(value.NewReference(value.CloneMut(c)))
				}
			})
		case vtype.KFunction:
			fn = d.Fn.(callable)
		default:
			panic("for: container has no inner types at runtime")
		}
	})

	switch kind {
	case vtype.KInt:
		for i := 0; i < count; i++ {
			if v, ok := value.Matches(runBody(value.NewCell(value.NewInt(i)))); ok {
				return v
			}
		}
	case vtype.KString:
		for _, r := range str {
			if v, ok := value.Matches(runBody(value.NewCell(value.NewString(string(r))))); ok {
				return v
			}
		}
	case vtype.KTuple, vtype.KList, vtype.KReference:
		for _, item := range items {
			if v, ok := value.Matches(runBody(item)); ok {
				return v
			}
		}
	case vtype.KFunction:
		for {
			next := fn.Call(nil, ctx)
			item, ok := value.Matches(next)
			if !ok {
				break
			}
			if v, ok := value.Matches(runBody(item)); ok {
				return v
			}
		}
	}
	return value.NewCell(value.Unit())
}
