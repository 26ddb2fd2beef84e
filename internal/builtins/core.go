package builtins

import (
	"github.com/funvibe/mers/internal/runnable"
	"github.com/funvibe/mers/internal/value"
	"github.com/funvibe/mers/internal/vtype"
)

func init() {
	add("assume1",
		func(args []vtype.Type, info *vtype.Info) bool {
			return len(args) >= 1 && (len(args) == 1 || allSingles(args[1], isKind(vtype.KString)))
		},
		func(args []vtype.Type, info *vtype.Info) vtype.Type {
			out := vtype.Empty()
			for _, s := range args[0].Singles {
				if s.Kind == vtype.KTuple && len(s.Tuple) == 1 {
					out.AddTypes(s.Tuple[0], info)
					continue
				}
				if s.Kind == vtype.KTuple && len(s.Tuple) == 0 {
					continue // the Tuple[] alternative is the abort case, contributes nothing
				}
				out.Add(s, info)
			}
			return out
		},
		func(args []*value.Cell, ctx *runnable.EvalContext) *value.Cell {
			var result *value.Cell
			value.OperateImmut(args[0], func(d *value.Data) {
				if d.Kind == vtype.KTuple {
					if len(d.Tuple) == 0 {
						panic("assume1: " + assumeMessage(args))
					}
					if len(d.Tuple) == 1 {
						result = value.CloneData(d.Tuple[0])
						return
					}
				}
				result = value.NewCell(d.Clone())
			})
			return result
		})

	add("assume_no_enum",
		func(args []vtype.Type, info *vtype.Info) bool {
			return len(args) >= 1 && (len(args) == 1 || allSingles(args[1], isKind(vtype.KString)))
		},
		func(args []vtype.Type, info *vtype.Info) vtype.Type {
			return args[0].NoEnum(info)
		},
		func(args []*value.Cell, ctx *runnable.EvalContext) *value.Cell {
			var result *value.Cell
			value.OperateImmut(args[0], func(d *value.Data) {
				if d.Kind == vtype.KEnumVariant {
					panic("assume_no_enum: " + assumeMessage(args))
				}
				result = value.NewCell(d.Clone())
			})
			return result
		})

	add("noenum",
		func(args []vtype.Type, info *vtype.Info) bool { return len(args) == 1 },
		func(args []vtype.Type, info *vtype.Info) vtype.Type { return args[0].NoEnum(info) },
		func(args []*value.Cell, ctx *runnable.EvalContext) *value.Cell { return value.NoEnum(args[0]) })

	add("matches",
		func(args []vtype.Type, info *vtype.Info) bool { return len(args) == 1 },
		func(args []vtype.Type, info *vtype.Info) vtype.Type {
			canFail, matchedAs := args[0].Matches(info)
			some := vtype.Tuple(matchedAs).ToType()
			if canFail {
				return vtype.Union(vtype.Unit().ToType(), some, info)
			}
			return some
		},
		func(args []*value.Cell, ctx *runnable.EvalContext) *value.Cell {
			if bound, ok := value.Matches(args[0]); ok {
				return value.NewCell(value.NewTuple(bound))
			}
			return value.NewCell(value.Unit())
		})

	add("clone",
		func(args []vtype.Type, info *vtype.Info) bool { return len(args) == 1 },
		func(args []vtype.Type, info *vtype.Info) vtype.Type {
			if deref, ok := args[0].Dereference(info); ok {
				return deref
			}
			return args[0]
		},
		func(args []*value.Cell, ctx *runnable.EvalContext) *value.Cell {
			return value.OperateImmutValue(args[0], func(d *value.Data) *value.Cell {
				if d.Kind == vtype.KReference {
					return value.CloneData(d.Ref)
				}
				return value.NewCell(d.Clone())
			})
		})
}

func assumeMessage(args []*value.Cell) string {
	if len(args) < 2 {
		return "assumption failed"
	}
	return value.OperateImmutValue(args[1], func(d *value.Data) string { return d.Str })
}
