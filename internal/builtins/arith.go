package builtins

import (
	"math"

	"github.com/funvibe/mers/internal/runnable"
	"github.com/funvibe/mers/internal/value"
	"github.com/funvibe/mers/internal/vtype"
)

func bothNumeric(args []vtype.Type, info *vtype.Info) bool {
	return len(args) == 2 && allSingles(args[0], isNumeric) && allSingles(args[1], isNumeric)
}

func hasFloat(t vtype.Type) bool {
	for _, s := range t.Singles {
		if s.Kind == vtype.KFloat {
			return true
		}
	}
	return false
}

// widened is the "int x int -> int; any float -> float" rule shared by
// add/sub/mul/div/mod/pow/min/max (spec §4.6).
func widened(a, b vtype.Type) vtype.Type {
	if hasFloat(a) || hasFloat(b) {
		return vtype.Float().ToType()
	}
	return vtype.Int().ToType()
}

func toFloat(d *value.Data) float64 {
	if d.Kind == vtype.KFloat {
		return d.Float
	}
	return float64(d.Int)
}

// arith runs a numeric builtin against the live Kind of both cells
// (the static type may be a union; the runtime Kind picks the lane).
func arith(a, b *value.Cell, intOp func(x, y int) int, floatOp func(x, y float64) float64) *value.Cell {
	return value.OperateImmutValue(a, func(da *value.Data) *value.Cell {
		return value.OperateImmutValue(b, func(db *value.Data) *value.Cell {
			if da.Kind == vtype.KFloat || db.Kind == vtype.KFloat {
				return value.NewCell(value.NewFloat(floatOp(toFloat(da), toFloat(db))))
			}
			return value.NewCell(value.NewInt(intOp(da.Int, db.Int)))
		})
	})
}

func addArithBuiltin(name string, intOp func(x, y int) int, floatOp func(x, y float64) float64) {
	add(name, bothNumeric,
		func(args []vtype.Type, info *vtype.Info) vtype.Type { return widened(args[0], args[1]) },
		func(args []*value.Cell, ctx *runnable.EvalContext) *value.Cell {
			return arith(args[0], args[1], intOp, floatOp)
		})
}

func addCompareBuiltin(name string, cmp func(x, y float64) bool) {
	add(name, bothNumeric,
		func(args []vtype.Type, info *vtype.Info) vtype.Type { return vtype.Bool().ToType() },
		func(args []*value.Cell, ctx *runnable.EvalContext) *value.Cell {
			return value.OperateImmutValue(args[0], func(da *value.Data) *value.Cell {
				return value.OperateImmutValue(args[1], func(db *value.Data) *value.Cell {
					return value.NewCell(value.NewBool(cmp(toFloat(da), toFloat(db))))
				})
			})
		})
}

func init() {
	addArithBuiltin("sub", func(x, y int) int { return x - y }, func(x, y float64) float64 { return x - y })
	addArithBuiltin("mul", func(x, y int) int { return x * y }, func(x, y float64) float64 { return x * y })
	addArithBuiltin("div", func(x, y int) int {
		if y == 0 {
			panic("div: division by zero")
		}
		return x / y
	}, func(x, y float64) float64 { return x / y })
	addArithBuiltin("mod", func(x, y int) int {
		if y == 0 {
			panic("mod: division by zero")
		}
		return x % y
	}, math.Mod)
	addArithBuiltin("pow", intPow, math.Pow)
	addArithBuiltin("min", func(x, y int) int {
		if x < y {
			return x
		}
		return y
	}, func(x, y float64) float64 {
		if x < y {
			return x
		}
		return y
	})
	addArithBuiltin("max", func(x, y int) int {
		if x > y {
			return x
		}
		return y
	}, func(x, y float64) float64 {
		if x > y {
			return x
		}
		return y
	})

	addCompareBuiltin("lt", func(x, y float64) bool { return x < y })
	addCompareBuiltin("gt", func(x, y float64) bool { return x > y })
	addCompareBuiltin("ltoe", func(x, y float64) bool { return x <= y })
	addCompareBuiltin("gtoe", func(x, y float64) bool { return x >= y })

	add("add",
		func(args []vtype.Type, info *vtype.Info) bool {
			if bothNumeric(args, info) {
				return true
			}
			return len(args) == 2 && allSingles(args[0], isKind(vtype.KString)) && allSingles(args[1], isKind(vtype.KString))
		},
		func(args []vtype.Type, info *vtype.Info) vtype.Type {
			if allSingles(args[0], isKind(vtype.KString)) && allSingles(args[1], isKind(vtype.KString)) {
				return vtype.String().ToType()
			}
			return widened(args[0], args[1])
		},
		func(args []*value.Cell, ctx *runnable.EvalContext) *value.Cell {
			return value.OperateImmutValue(args[0], func(da *value.Data) *value.Cell {
				return value.OperateImmutValue(args[1], func(db *value.Data) *value.Cell {
					if da.Kind == vtype.KString && db.Kind == vtype.KString {
						return value.NewCell(value.NewString(da.Str + db.Str))
					}
					if da.Kind == vtype.KFloat || db.Kind == vtype.KFloat {
						return value.NewCell(value.NewFloat(toFloat(da) + toFloat(db)))
					}
					return value.NewCell(value.NewInt(da.Int + db.Int))
				})
			})
		})

	add("eq",
		func(args []vtype.Type, info *vtype.Info) bool { return len(args) == 2 },
		func(args []vtype.Type, info *vtype.Info) vtype.Type { return vtype.Bool().ToType() },
		func(args []*value.Cell, ctx *runnable.EvalContext) *value.Cell {
			return value.OperateImmutValue(args[0], func(da *value.Data) *value.Cell {
				return value.OperateImmutValue(args[1], func(db *value.Data) *value.Cell {
					return value.NewCell(value.NewBool(value.Equal(da, db)))
				})
			})
		})

	add("ne",
		func(args []vtype.Type, info *vtype.Info) bool { return len(args) == 2 },
		func(args []vtype.Type, info *vtype.Info) vtype.Type { return vtype.Bool().ToType() },
		func(args []*value.Cell, ctx *runnable.EvalContext) *value.Cell {
			return value.OperateImmutValue(args[0], func(da *value.Data) *value.Cell {
				return value.OperateImmutValue(args[1], func(db *value.Data) *value.Cell {
					return value.NewCell(value.NewBool(!value.Equal(da, db)))
				})
			})
		})
}

func intPow(x, y int) int {
	if y < 0 {
		return 0
	}
	result := 1
	for i := 0; i < y; i++ {
		result *= x
	}
	return result
}

