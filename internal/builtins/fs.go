package builtins

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"unicode/utf8"

	"github.com/funvibe/mers/internal/runnable"
	"github.com/funvibe/mers/internal/value"
	"github.com/funvibe/mers/internal/vtype"
)

// errOf wraps msg in the globally reserved Err(String) enum variant
// (spec §9 "the Err variant id is globally reserved as enum id 0"),
// the uniform failure shape every host-I/O builtin reports through.
func errOf(info *vtype.Info, msg string) *value.Cell {
	return value.NewCell(value.NewEnumVariant(info.InternEnumVariant(vtype.ErrEnumName), value.NewCell(value.NewString(msg))))
}

func errType(info *vtype.Info, payload vtype.Type) vtype.Type {
	return vtype.EnumVariant(info.InternEnumVariant(vtype.ErrEnumName), payload).ToType()
}

func isListOf(t vtype.Type, elemKind vtype.Kind) bool {
	return allSingles(t, func(s vtype.Single) bool {
		if s.Kind != vtype.KList || s.List == nil {
			return false
		}
		return allSingles(*s.List, isKind(elemKind))
	})
}

func bytesFromCell(c *value.Cell) []byte {
	return value.OperateImmutValue(c, func(d *value.Data) []byte {
		out := make([]byte, len(d.List.Elems))
		for i, e := range d.List.Elems {
			out[i] = byte(intArg(e))
		}
		return out
	})
}

func cellFromBytes(b []byte) *value.Cell {
	elems := make([]*value.Cell, len(b))
	for i, by := range b {
		elems[i] = value.NewCell(value.NewInt(int(by)))
	}
	return value.NewCell(value.NewList(vtype.Int().ToType(), elems...))
}

func stringsFromCell(c *value.Cell) []string {
	return value.OperateImmutValue(c, func(d *value.Data) []string {
		out := make([]string, len(d.List.Elems))
		for i, e := range d.List.Elems {
			out[i] = strArg(e)
		}
		return out
	})
}

func init() {
	add("fs_list",
		func(args []vtype.Type, info *vtype.Info) bool { return len(args) == 1 && allSingles(args[0], isKind(vtype.KString)) },
		func(args []vtype.Type, info *vtype.Info) vtype.Type {
			return vtype.Union(vtype.List(vtype.String().ToType()).ToType(), errType(info, vtype.String().ToType()), info)
		},
		func(args []*value.Cell, ctx *runnable.EvalContext) *value.Cell {
			entries, err := os.ReadDir(strArg(args[0]))
			if err != nil {
				return errOf(ctx.Info, err.Error())
			}
			elems := make([]*value.Cell, len(entries))
			for i, e := range entries {
				elems[i] = value.NewCell(value.NewString(e.Name()))
			}
			return value.NewCell(value.NewList(vtype.String().ToType(), elems...))
		})

	add("fs_read",
		func(args []vtype.Type, info *vtype.Info) bool { return len(args) == 1 && allSingles(args[0], isKind(vtype.KString)) },
		func(args []vtype.Type, info *vtype.Info) vtype.Type {
			return vtype.Union(vtype.List(vtype.Int().ToType()).ToType(), errType(info, vtype.String().ToType()), info)
		},
		func(args []*value.Cell, ctx *runnable.EvalContext) *value.Cell {
			data, err := os.ReadFile(strArg(args[0]))
			if err != nil {
				return errOf(ctx.Info, err.Error())
			}
			return cellFromBytes(data)
		})

	add("fs_write",
		func(args []vtype.Type, info *vtype.Info) bool {
			return len(args) == 2 && allSingles(args[0], isKind(vtype.KString)) && isListOf(args[1], vtype.KInt)
		},
		func(args []vtype.Type, info *vtype.Info) vtype.Type {
			return vtype.Union(vtype.Unit().ToType(), errType(info, vtype.String().ToType()), info)
		},
		func(args []*value.Cell, ctx *runnable.EvalContext) *value.Cell {
			if err := os.WriteFile(strArg(args[0]), bytesFromCell(args[1]), 0o644); err != nil {
				return errOf(ctx.Info, err.Error())
			}
			return value.NewCell(value.Unit())
		})

	add("bytes_to_string",
		func(args []vtype.Type, info *vtype.Info) bool { return len(args) == 1 && isListOf(args[0], vtype.KInt) },
		func(args []vtype.Type, info *vtype.Info) vtype.Type {
			lossyPair := vtype.Tuple(vtype.String().ToType(), vtype.String().ToType()).ToType()
			return vtype.Union(vtype.String().ToType(), errType(info, lossyPair), info)
		},
		func(args []*value.Cell, ctx *runnable.EvalContext) *value.Cell {
			b := bytesFromCell(args[0])
			if utf8.Valid(b) {
				return value.NewCell(value.NewString(string(b)))
			}
			lossy := string(bytes.ToValidUTF8(b, []byte("�")))
			errID := ctx.Info.InternEnumVariant(vtype.ErrEnumName)
			payload := value.NewCell(value.NewTuple(
				value.NewCell(value.NewString(lossy)),
				value.NewCell(value.NewString("invalid utf-8 byte sequence")),
			))
			return value.NewCell(value.NewEnumVariant(errID, payload))
		})

	add("string_to_bytes",
		func(args []vtype.Type, info *vtype.Info) bool { return len(args) == 1 && allSingles(args[0], isKind(vtype.KString)) },
		func(args []vtype.Type, info *vtype.Info) vtype.Type {
			return vtype.List(vtype.Int().ToType()).ToType()
		},
		func(args []*value.Cell, ctx *runnable.EvalContext) *value.Cell {
			return cellFromBytes([]byte(strArg(args[0])))
		})

	add("run_command",
		func(args []vtype.Type, info *vtype.Info) bool { return isRunCommandArgs(args) },
		func(args []vtype.Type, info *vtype.Info) vtype.Type {
			return vtype.Union(vtype.Tuple(vtype.Int().ToType()).ToType(), errType(info, vtype.String().ToType()), info)
		},
		func(args []*value.Cell, ctx *runnable.EvalContext) *value.Cell {
			cmd := buildCommand(ctx.Ctx, args)
			cmd.Stdout = ctx.Stdout
			cmd.Stderr = ctx.Stderr
			if err := cmd.Run(); err != nil {
				var exitErr *exec.ExitError
				if errors.As(err, &exitErr) {
					return value.NewCell(value.NewTuple(value.NewCell(value.NewInt(exitErr.ExitCode()))))
				}
				return errOf(ctx.Info, err.Error())
			}
			return value.NewCell(value.NewTuple(value.NewCell(value.NewInt(0))))
		})

	add("run_command_get_bytes",
		func(args []vtype.Type, info *vtype.Info) bool { return isRunCommandArgs(args) },
		func(args []vtype.Type, info *vtype.Info) vtype.Type {
			return vtype.Union(vtype.List(vtype.Int().ToType()).ToType(), errType(info, vtype.String().ToType()), info)
		},
		func(args []*value.Cell, ctx *runnable.EvalContext) *value.Cell {
			cmd := buildCommand(ctx.Ctx, args)
			out, err := cmd.Output()
			if err != nil {
				return errOf(ctx.Info, err.Error())
			}
			return cellFromBytes(out)
		})
}

func isRunCommandArgs(args []vtype.Type) bool {
	if len(args) != 1 && len(args) != 2 {
		return false
	}
	if !allSingles(args[0], isKind(vtype.KString)) {
		return false
	}
	if len(args) == 2 && !isListOf(args[1], vtype.KString) {
		return false
	}
	return true
}

func buildCommand(ctx context.Context, args []*value.Cell) *exec.Cmd {
	name := strArg(args[0])
	var cmdArgs []string
	if len(args) == 2 {
		cmdArgs = stringsFromCell(args[1])
	}
	return exec.CommandContext(ctx, name, cmdArgs...)
}


