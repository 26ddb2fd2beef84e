package builtins

import (
	"bufio"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/funvibe/mers/internal/runnable"
	"github.com/funvibe/mers/internal/value"
	"github.com/funvibe/mers/internal/vtype"
)

// anyArity1 accepts any single argument of any type — the common shape
// for print/println/debug, which render whatever they're handed.
func anyArity1(args []vtype.Type, info *vtype.Info) bool { return len(args) == 1 }

func init() {
	add("print",
		anyArity1,
		func(args []vtype.Type, info *vtype.Info) vtype.Type { return vtype.Unit().ToType() },
		func(args []*value.Cell, ctx *runnable.EvalContext) *value.Cell {
			fmt.Fprint(ctx.Stdout, display(args[0], ctx.Info))
			return value.NewCell(value.Unit())
		})

	add("println",
		anyArity1,
		func(args []vtype.Type, info *vtype.Info) vtype.Type { return vtype.Unit().ToType() },
		func(args []*value.Cell, ctx *runnable.EvalContext) *value.Cell {
			fmt.Fprintln(ctx.Stdout, display(args[0], ctx.Info))
			return value.NewCell(value.Unit())
		})

	add("debug",
		anyArity1,
		func(args []vtype.Type, info *vtype.Info) vtype.Type { return vtype.Unit().ToType() },
		func(args []*value.Cell, ctx *runnable.EvalContext) *value.Cell {
			rendered := value.String(args[0], ctx.Info)
			if n, ok := bufferByteLen(args[0]); ok {
				rendered += " (" + humanize.Bytes(uint64(n)) + ")"
			}
			fmt.Fprintln(ctx.Stderr, rendered)
			return value.NewCell(value.Unit())
		})

	add("stdin_read_line",
		func(args []vtype.Type, info *vtype.Info) bool { return len(args) == 0 },
		func(args []vtype.Type, info *vtype.Info) vtype.Type { return vtype.String().ToType() },
		func(args []*value.Cell, ctx *runnable.EvalContext) *value.Cell {
			if f, ok := ctx.Stdin.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
				fmt.Fprint(ctx.Stdout, "")
			}
			line, err := bufio.NewReader(ctx.Stdin).ReadString('\n')
			if err != nil && line == "" {
				return value.NewCell(value.NewString(""))
			}
			for len(line) > 0 && (line[len(line)-1] == '\n' || line[len(line)-1] == '\r') {
				line = line[:len(line)-1]
			}
			return value.NewCell(value.NewString(line))
		})
}

// bufferByteLen reports the length of args when it's a List[Int] of
// byte values (the shape fs_read/run_command_get_bytes return), so
// debug can append a human-readable byte count (SPEC_FULL.md §2).
func bufferByteLen(c *value.Cell) (int, bool) {
	var n int
	var ok bool
	value.OperateImmut(c, func(d *value.Data) {
		if d.Kind != vtype.KList || !allSingles(d.List.ElemType, isKind(vtype.KInt)) {
			return
		}
		n, ok = len(d.List.Elems), true
	})
	return n, ok
}
