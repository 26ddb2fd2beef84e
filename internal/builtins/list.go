package builtins

import (
	"github.com/funvibe/mers/internal/runnable"
	"github.com/funvibe/mers/internal/value"
	"github.com/funvibe/mers/internal/vtype"
)

// refListElemType reports the element union of a `Reference(List(_))`
// argument, failing if any alternative isn't shaped that way (spec
// §4.6 "first arg a Reference to a list").
func refListElemType(t vtype.Type, info *vtype.Info) (vtype.Type, bool) {
	if len(t.Singles) == 0 {
		return vtype.Empty(), false
	}
	elem := vtype.Empty()
	for _, s := range t.Singles {
		if s.Kind != vtype.KReference || s.Ref == nil || s.Ref.Kind != vtype.KList || s.Ref.List == nil {
			return vtype.Empty(), false
		}
		elem.AddTypes(*s.Ref.List, info)
	}
	return elem, true
}

func optionOf(inner vtype.Type, info *vtype.Info) vtype.Type {
	return vtype.Union(vtype.Unit().ToType(), vtype.Tuple(inner).ToType(), info)
}

// withReferencedList resolves a `Reference(List(_))` argument cell
// down to the live *value.Data backing the list, panicking if the
// referent was swapped out for something else since lowering time
// (spec §9 "push/insert referent-replaced-concurrently check").
func withReferencedList(ref *value.Cell, name string, f func(list *value.ListData)) {
	value.OperateImmut(ref, func(d *value.Data) {
		if d.Kind != vtype.KReference {
			panic(name + ": argument is not a reference")
		}
		value.OperateMut(d.Ref, func(ld *value.Data) {
			if ld.Kind != vtype.KList {
				panic(name + ": referent is no longer a list")
			}
			f(ld.List)
		})
	})
}

func intArg(c *value.Cell) int {
	return value.OperateImmutValue(c, func(d *value.Data) int { return d.Int })
}

func init() {
	add("push",
		func(args []vtype.Type, info *vtype.Info) bool {
			if len(args) != 2 {
				return false
			}
			elem, ok := refListElemType(args[0], info)
			if !ok {
				return false
			}
			return len(args[1].FitsIn(elem, info)) == 0
		},
		func(args []vtype.Type, info *vtype.Info) vtype.Type { return vtype.Unit().ToType() },
		func(args []*value.Cell, ctx *runnable.EvalContext) *value.Cell {
			withReferencedList(args[0], "push", func(list *value.ListData) {
				list.Elems = append(list.Elems, value.CloneData(args[1]))
				list.ElemType.AddTypes(args[1].Out().ToType(), ctx.Info)
			})
			return value.NewCell(value.Unit())
		})

	add("insert",
		func(args []vtype.Type, info *vtype.Info) bool {
			if len(args) != 3 || !allSingles(args[1], isKind(vtype.KInt)) {
				return false
			}
			elem, ok := refListElemType(args[0], info)
			if !ok {
				return false
			}
			return len(args[2].FitsIn(elem, info)) == 0
		},
		func(args []vtype.Type, info *vtype.Info) vtype.Type { return vtype.Unit().ToType() },
		func(args []*value.Cell, ctx *runnable.EvalContext) *value.Cell {
			idx := intArg(args[1])
			withReferencedList(args[0], "insert", func(list *value.ListData) {
				if idx < 0 || idx > len(list.Elems) {
					panic("insert: index out of range")
				}
				list.Elems = append(list.Elems, nil)
				copy(list.Elems[idx+1:], list.Elems[idx:])
				list.Elems[idx] = value.CloneData(args[2])
				list.ElemType.AddTypes(args[2].Out().ToType(), ctx.Info)
			})
			return value.NewCell(value.Unit())
		})

	add("pop",
		func(args []vtype.Type, info *vtype.Info) bool {
			if len(args) != 1 {
				return false
			}
			_, ok := refListElemType(args[0], info)
			return ok
		},
		func(args []vtype.Type, info *vtype.Info) vtype.Type {
			elem, _ := refListElemType(args[0], info)
			return optionOf(elem, info)
		},
		func(args []*value.Cell, ctx *runnable.EvalContext) *value.Cell {
			var out *value.Cell
			withReferencedList(args[0], "pop", func(list *value.ListData) {
				n := len(list.Elems)
				if n == 0 {
					out = value.NewCell(value.Unit())
					return
				}
				last := list.Elems[n-1]
				list.Elems = list.Elems[:n-1]
				out = value.NewCell(value.NewTuple(last))
			})
			return out
		})

	add("remove",
		func(args []vtype.Type, info *vtype.Info) bool {
			if len(args) != 2 || !allSingles(args[1], isKind(vtype.KInt)) {
				return false
			}
			_, ok := refListElemType(args[0], info)
			return ok
		},
		func(args []vtype.Type, info *vtype.Info) vtype.Type {
			elem, _ := refListElemType(args[0], info)
			return optionOf(elem, info)
		},
		func(args []*value.Cell, ctx *runnable.EvalContext) *value.Cell {
			idx := intArg(args[1])
			var out *value.Cell
			withReferencedList(args[0], "remove", func(list *value.ListData) {
				if idx < 0 || idx >= len(list.Elems) {
					out = value.NewCell(value.Unit())
					return
				}
				removed := list.Elems[idx]
				list.Elems = append(list.Elems[:idx], list.Elems[idx+1:]...)
				out = value.NewCell(value.NewTuple(removed))
			})
			return out
		})

	add("get",
		func(args []vtype.Type, info *vtype.Info) bool {
			return len(args) == 2 && allSingles(args[1], isKind(vtype.KInt))
		},
		func(args []vtype.Type, info *vtype.Info) vtype.Type {
			elem := args[0].InnerTypes(info)
			return optionOf(elem, info)
		},
		func(args []*value.Cell, ctx *runnable.EvalContext) *value.Cell {
			idx := intArg(args[1])
			got, ok := value.Get(args[0], idx)
			if !ok {
				return value.NewCell(value.Unit())
			}
			return value.NewCell(value.NewTuple(got))
		})

	add("len",
		func(args []vtype.Type, info *vtype.Info) bool {
			return len(args) == 1 && allSingles(args[0], func(s vtype.Single) bool {
				return s.Kind == vtype.KString || s.Kind == vtype.KTuple || s.Kind == vtype.KList
			})
		},
		func(args []vtype.Type, info *vtype.Info) vtype.Type { return vtype.Int().ToType() },
		func(args []*value.Cell, ctx *runnable.EvalContext) *value.Cell {
			return value.OperateImmutValue(args[0], func(d *value.Data) *value.Cell {
				var n int
				switch d.Kind {
				case vtype.KString:
					n = len([]rune(d.Str))
				case vtype.KTuple:
					n = len(d.Tuple)
				case vtype.KList:
					n = len(d.List.Elems)
				default:
					panic("len: not a string/tuple/list")
				}
				return value.NewCell(value.NewInt(n))
			})
		})
}
