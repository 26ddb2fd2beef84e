package builtins

import (
	"strconv"

	"github.com/funvibe/mers/internal/runnable"
	"github.com/funvibe/mers/internal/value"
	"github.com/funvibe/mers/internal/vtype"
)

func stringArity1(args []vtype.Type, info *vtype.Info) bool {
	return len(args) == 1 && allSingles(args[0], isKind(vtype.KString))
}

func init() {
	add("parse_int",
		stringArity1,
		func(args []vtype.Type, info *vtype.Info) vtype.Type {
			return vtype.Union(vtype.Unit().ToType(), vtype.Tuple(vtype.Int().ToType()).ToType(), info)
		},
		func(args []*value.Cell, ctx *runnable.EvalContext) *value.Cell {
			s := value.OperateImmutValue(args[0], func(d *value.Data) string { return d.Str })
			n, err := strconv.Atoi(s)
			if err != nil {
				return value.NewCell(value.Unit())
			}
			return value.NewCell(value.NewTuple(value.NewCell(value.NewInt(n))))
		})

	add("parse_float",
		stringArity1,
		func(args []vtype.Type, info *vtype.Info) vtype.Type {
			return vtype.Union(vtype.Unit().ToType(), vtype.Tuple(vtype.Float().ToType()).ToType(), info)
		},
		func(args []*value.Cell, ctx *runnable.EvalContext) *value.Cell {
			s := value.OperateImmutValue(args[0], func(d *value.Data) string { return d.Str })
			f, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return value.NewCell(value.Unit())
			}
			return value.NewCell(value.NewTuple(value.NewCell(value.NewFloat(f))))
		})
}
