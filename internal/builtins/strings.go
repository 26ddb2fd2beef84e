package builtins

import (
	"regexp"
	"strings"

	"github.com/funvibe/mers/internal/runnable"
	"github.com/funvibe/mers/internal/value"
	"github.com/funvibe/mers/internal/vtype"
)

func allStrings(args []vtype.Type) bool {
	for _, a := range args {
		if !allSingles(a, isKind(vtype.KString)) {
			return false
		}
	}
	return true
}

func strArg(c *value.Cell) string {
	return value.OperateImmutValue(c, func(d *value.Data) string {
		if d.Kind == vtype.KReference {
			return strArg(d.Ref)
		}
		return d.Str
	})
}

func twoStringsArity(args []vtype.Type, info *vtype.Info) bool {
	return len(args) == 2 && allStrings(args)
}

// isStringOrStringRef admits both string and &string alternatives —
// index_of accepts either (spec §4.6 "two strings or string-references").
func isStringOrStringRef(s vtype.Single) bool {
	if s.Kind == vtype.KReference {
		return s.Ref != nil && s.Ref.Kind == vtype.KString
	}
	return s.Kind == vtype.KString
}

func init() {
	add("contains", twoStringsArity,
		func(args []vtype.Type, info *vtype.Info) vtype.Type { return vtype.Bool().ToType() },
		func(args []*value.Cell, ctx *runnable.EvalContext) *value.Cell {
			return value.NewCell(value.NewBool(strings.Contains(strArg(args[0]), strArg(args[1]))))
		})

	add("starts_with", twoStringsArity,
		func(args []vtype.Type, info *vtype.Info) vtype.Type { return vtype.Bool().ToType() },
		func(args []*value.Cell, ctx *runnable.EvalContext) *value.Cell {
			return value.NewCell(value.NewBool(strings.HasPrefix(strArg(args[0]), strArg(args[1]))))
		})

	add("ends_with", twoStringsArity,
		func(args []vtype.Type, info *vtype.Info) vtype.Type { return vtype.Bool().ToType() },
		func(args []*value.Cell, ctx *runnable.EvalContext) *value.Cell {
			return value.NewCell(value.NewBool(strings.HasSuffix(strArg(args[0]), strArg(args[1]))))
		})

	add("index_of",
		func(args []vtype.Type, info *vtype.Info) bool {
			return len(args) == 2 && allSingles(args[0], isStringOrStringRef) && allSingles(args[1], isStringOrStringRef)
		},
		func(args []vtype.Type, info *vtype.Info) vtype.Type {
			return vtype.Union(vtype.Unit().ToType(), vtype.Tuple(vtype.Int().ToType()).ToType(), info)
		},
		func(args []*value.Cell, ctx *runnable.EvalContext) *value.Cell {
			haystack := []rune(strArg(args[0]))
			needle := strArg(args[1])
			byteIdx := strings.Index(string(haystack), needle)
			if byteIdx < 0 {
				return value.NewCell(value.Unit())
			}
			runeIdx := len([]rune(string(haystack)[:byteIdx]))
			return value.NewCell(value.NewTuple(value.NewCell(value.NewInt(runeIdx))))
		})

	add("trim",
		func(args []vtype.Type, info *vtype.Info) bool { return len(args) == 1 && allStrings(args) },
		func(args []vtype.Type, info *vtype.Info) vtype.Type { return vtype.String().ToType() },
		func(args []*value.Cell, ctx *runnable.EvalContext) *value.Cell {
			return value.NewCell(value.NewString(strings.TrimSpace(strArg(args[0]))))
		})

	add("replace",
		func(args []vtype.Type, info *vtype.Info) bool { return len(args) == 3 && allStrings(args) },
		func(args []vtype.Type, info *vtype.Info) vtype.Type { return vtype.String().ToType() },
		func(args []*value.Cell, ctx *runnable.EvalContext) *value.Cell {
			s, a, b := strArg(args[0]), strArg(args[1]), strArg(args[2])
			return value.NewCell(value.NewString(strings.ReplaceAll(s, a, b)))
		})

	add("substring",
		func(args []vtype.Type, info *vtype.Info) bool {
			if len(args) < 2 || len(args) > 3 || !allSingles(args[0], isKind(vtype.KString)) {
				return false
			}
			for _, a := range args[1:] {
				if !allSingles(a, isKind(vtype.KInt)) {
					return false
				}
			}
			return true
		},
		func(args []vtype.Type, info *vtype.Info) vtype.Type { return vtype.String().ToType() },
		func(args []*value.Cell, ctx *runnable.EvalContext) *value.Cell {
			runes := []rune(strArg(args[0]))
			n := len(runes)
			start := normalizeIndex(intArg(args[1]), n)
			end := n
			if len(args) == 3 {
				end = normalizeIndex(intArg(args[1])+intArg(args[2]), n)
			}
			if start < 0 {
				start = 0
			}
			if end > n {
				end = n
			}
			if start > end {
				start = end
			}
			return value.NewCell(value.NewString(string(runes[start:end])))
		})

	add("regex", twoStringsArity,
		func(args []vtype.Type, info *vtype.Info) vtype.Type {
			return vtype.Union(
				vtype.List(vtype.String().ToType()).ToType(),
				vtype.EnumVariant(info.InternEnumVariant(vtype.ErrEnumName), vtype.String().ToType()).ToType(),
				info)
		},
		func(args []*value.Cell, ctx *runnable.EvalContext) *value.Cell {
			s, pat := strArg(args[0]), strArg(args[1])
			re, err := regexp.Compile(pat)
			if err != nil {
				return value.NewCell(value.NewEnumVariant(ctx.Info.InternEnumVariant(vtype.ErrEnumName),
					value.NewCell(value.NewString(err.Error()))))
			}
			matches := re.FindAllString(s, -1)
			elems := make([]*value.Cell, len(matches))
			for i, m := range matches {
				elems[i] = value.NewCell(value.NewString(m))
			}
			return value.NewCell(value.NewList(vtype.String().ToType(), elems...))
		})
}

// normalizeIndex turns a possibly-negative index ("counts from end",
// spec §4.6 substring row) into a non-negative rune offset.
func normalizeIndex(i, n int) int {
	if i < 0 {
		return n + i
	}
	return i
}
