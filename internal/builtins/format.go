package builtins

import (
	"strconv"
	"strings"

	"github.com/funvibe/mers/internal/runnable"
	"github.com/funvibe/mers/internal/value"
	"github.com/funvibe/mers/internal/vtype"
)

// display is the unquoted rendering `print`/`println`/`to_string` use
// for a top-level string, falling back to value.String's debug-style
// rendering for every other kind (original builtins.rs "ToString").
func display(c *value.Cell, info *vtype.Info) string {
	return value.OperateImmutValue(c, func(d *value.Data) string {
		if d.Kind == vtype.KString {
			return d.Str
		}
		return d.String(info)
	})
}

func init() {
	add("to_string",
		anyArity1,
		func(args []vtype.Type, info *vtype.Info) vtype.Type { return vtype.String().ToType() },
		func(args []*value.Cell, ctx *runnable.EvalContext) *value.Cell {
			return value.NewCell(value.NewString(display(args[0], ctx.Info)))
		})

	add("format",
		func(args []vtype.Type, info *vtype.Info) bool {
			return len(args) >= 1 && allStrings(args)
		},
		func(args []vtype.Type, info *vtype.Info) vtype.Type { return vtype.String().ToType() },
		func(args []*value.Cell, ctx *runnable.EvalContext) *value.Cell {
			pattern := value.OperateImmutValue(args[0], func(d *value.Data) string { return d.Str })
			rest := args[1:]
			return value.NewCell(value.NewString(substitute(pattern, rest, ctx.Info)))
		})
}

// substitute implements format's "{i}" positional grammar
// (SPEC_FULL.md §3.1): decimal indices only, "{{" / "}}" escape a
// literal brace.
func substitute(pattern string, args []*value.Cell, info *vtype.Info) string {
	var b strings.Builder
	i := 0
	for i < len(pattern) {
		c := pattern[i]
		switch c {
		case '{':
			if i+1 < len(pattern) && pattern[i+1] == '{' {
				b.WriteByte('{')
				i += 2
				continue
			}
			end := strings.IndexByte(pattern[i:], '}')
			if end < 0 {
				b.WriteString(pattern[i:])
				i = len(pattern)
				continue
			}
			idxStr := pattern[i+1 : i+end]
			idx, err := strconv.Atoi(idxStr)
			if err != nil || idx < 0 || idx >= len(args) {
				panic("format: bad placeholder {" + idxStr + "}")
			}
			b.WriteString(display(args[idx], info))
			i += end + 1
		case '}':
			if i+1 < len(pattern) && pattern[i+1] == '}' {
				b.WriteByte('}')
				i += 2
				continue
			}
			b.WriteByte('}')
			i++
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String()
}
