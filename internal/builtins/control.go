package builtins

import (
	"os"
	"time"

	"github.com/funvibe/mers/internal/runnable"
	"github.com/funvibe/mers/internal/value"
	"github.com/funvibe/mers/internal/vtype"
)

// functionRows reports the flattened overload table across every
// Function alternative of t, failing if any alternative isn't a
// function at all (spec §4.6 "run/thread: first arg all-Function").
func functionRows(t vtype.Type) ([]vtype.FuncRow, bool) {
	if len(t.Singles) == 0 {
		return nil, false
	}
	var rows []vtype.FuncRow
	for _, s := range t.Singles {
		if s.Kind != vtype.KFunction {
			return nil, false
		}
		rows = append(rows, s.Rows...)
	}
	return rows, true
}

func callArityMatches(args []vtype.Type) bool {
	rows, ok := functionRows(args[0])
	if !ok {
		return false
	}
	extra := args[1:]
	for _, row := range rows {
		if len(row.Ins) != len(extra) {
			return false
		}
	}
	return true
}

type callable interface {
	Call(args []*value.Cell, ctx *runnable.EvalContext) *value.Cell
}

// callFunctionValue extracts the callable under the cell's lock but
// invokes it after releasing, so the lock is never held across a
// user-function call.
func callFunctionValue(fnCell *value.Cell, args []*value.Cell, ctx *runnable.EvalContext) *value.Cell {
	var fn callable
	value.OperateImmut(fnCell, func(d *value.Data) { fn = d.Fn.(callable) })
	return fn.Call(args, ctx)
}

func init() {
	add("not",
		func(args []vtype.Type, info *vtype.Info) bool {
			return len(args) == 1 && allSingles(args[0], isKind(vtype.KBool))
		},
		func(args []vtype.Type, info *vtype.Info) vtype.Type { return vtype.Bool().ToType() },
		func(args []*value.Cell, ctx *runnable.EvalContext) *value.Cell {
			b := value.OperateImmutValue(args[0], func(d *value.Data) bool { return d.Bool })
			return value.NewCell(value.NewBool(!b))
		})

	add("and",
		func(args []vtype.Type, info *vtype.Info) bool {
			return len(args) == 2 && allSingles(args[0], isKind(vtype.KBool)) && allSingles(args[1], isKind(vtype.KBool))
		},
		func(args []vtype.Type, info *vtype.Info) vtype.Type { return vtype.Bool().ToType() },
		func(args []*value.Cell, ctx *runnable.EvalContext) *value.Cell {
			a := value.OperateImmutValue(args[0], func(d *value.Data) bool { return d.Bool })
			b := value.OperateImmutValue(args[1], func(d *value.Data) bool { return d.Bool })
			return value.NewCell(value.NewBool(a && b))
		})

	add("or",
		func(args []vtype.Type, info *vtype.Info) bool {
			return len(args) == 2 && allSingles(args[0], isKind(vtype.KBool)) && allSingles(args[1], isKind(vtype.KBool))
		},
		func(args []vtype.Type, info *vtype.Info) vtype.Type { return vtype.Bool().ToType() },
		func(args []*value.Cell, ctx *runnable.EvalContext) *value.Cell {
			a := value.OperateImmutValue(args[0], func(d *value.Data) bool { return d.Bool })
			b := value.OperateImmutValue(args[1], func(d *value.Data) bool { return d.Bool })
			return value.NewCell(value.NewBool(a || b))
		})

	add("run",
		func(args []vtype.Type, info *vtype.Info) bool { return len(args) >= 1 && callArityMatches(args) },
		func(args []vtype.Type, info *vtype.Info) vtype.Type {
			rows, _ := functionRows(args[0])
			out, _ := vtype.ResolveCall(rows, args[1:], info)
			return out
		},
		func(args []*value.Cell, ctx *runnable.EvalContext) *value.Cell {
			return callFunctionValue(args[0], args[1:], ctx)
		})

	add("thread",
		func(args []vtype.Type, info *vtype.Info) bool { return len(args) >= 1 && callArityMatches(args) },
		func(args []vtype.Type, info *vtype.Info) vtype.Type {
			rows, _ := functionRows(args[0])
			out, _ := vtype.ResolveCall(rows, args[1:], info)
			return vtype.Thread(out).ToType()
		},
		func(args []*value.Cell, ctx *runnable.EvalContext) *value.Cell {
			fnClone := value.CloneMut(args[0])
			callArgs := make([]*value.Cell, len(args)-1)
			for i, c := range args[1:] {
				callArgs[i] = value.CloneData(c)
			}

			sig := value.OperateImmutValue(args[0], func(d *value.Data) vtype.Single { return d.Fn.Signature() })
			argTypes := make([]vtype.Type, len(callArgs))
			for i, c := range callArgs {
				argTypes[i] = c.Out().ToType()
			}
			outType, _ := vtype.ResolveCall(sig.Rows, argTypes, ctx.Info)

			handle := ctx.Threads.Spawn(ctx.Info, outType, func() *value.Cell {
				return callFunctionValue(fnClone, callArgs, ctx)
			})
			return value.NewCell(value.NewThread(handle))
		})

	add("await",
		func(args []vtype.Type, info *vtype.Info) bool {
			return len(args) == 1 && allSingles(args[0], isKind(vtype.KThread))
		},
		func(args []vtype.Type, info *vtype.Info) vtype.Type {
			out := vtype.Empty()
			for _, s := range args[0].Singles {
				out.AddTypes(*s.Thread, info)
			}
			return out
		},
		func(args []*value.Cell, ctx *runnable.EvalContext) *value.Cell {
			handle := value.OperateImmutValue(args[0], func(d *value.Data) *value.ThreadHandle { return d.Thread })
			return value.CloneData(handle.Get())
		})

	add("sleep",
		func(args []vtype.Type, info *vtype.Info) bool { return len(args) == 1 && allSingles(args[0], isNumeric) },
		func(args []vtype.Type, info *vtype.Info) vtype.Type { return vtype.Unit().ToType() },
		func(args []*value.Cell, ctx *runnable.EvalContext) *value.Cell {
			secs := value.OperateImmutValue(args[0], toFloat)
			timer := time.NewTimer(time.Duration(secs * float64(time.Second)))
			defer timer.Stop()
			select {
			case <-timer.C:
			case <-ctx.Ctx.Done():
			}
			return value.NewCell(value.Unit())
		})

	add("exit",
		func(args []vtype.Type, info *vtype.Info) bool {
			return len(args) == 0 || (len(args) == 1 && allSingles(args[0], isKind(vtype.KInt)))
		},
		func(args []vtype.Type, info *vtype.Info) vtype.Type { return vtype.Empty() },
		func(args []*value.Cell, ctx *runnable.EvalContext) *value.Cell {
			code := 0
			if len(args) == 1 {
				code = intArg(args[0])
			}
			os.Exit(code)
			return nil
		})
}
