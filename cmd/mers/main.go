package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/funvibe/mers/internal/config"
	"github.com/funvibe/mers/internal/library"
	"github.com/funvibe/mers/internal/lowering"
	"github.com/funvibe/mers/internal/parsedtree"
	"github.com/funvibe/mers/internal/runnable"
	"github.com/funvibe/mers/internal/value"
	"github.com/funvibe/mers/internal/vtype"
)

// usage mirrors the host-only flags this binary understands; anything
// past the script path belongs to the script's own argv.
func usage() {
	fmt.Fprintln(os.Stderr, "usage: mers [-lib path]... [-config path] <script.mers-tree> [args...]")
}

// parsedArgs is the result of splitting os.Args into host flags, the
// script path, and the args the script itself receives as its `args`
// parameter.
type parsedArgs struct {
	libPaths   []string
	configPath string
	script     string
	scriptArgs []string
}

func parseArgs(argv []string) (parsedArgs, error) {
	var p parsedArgs
	i := 0
	for ; i < len(argv); i++ {
		arg := argv[i]
		switch {
		case arg == "-lib":
			i++
			if i >= len(argv) {
				return p, fmt.Errorf("-lib requires a path")
			}
			p.libPaths = append(p.libPaths, argv[i])
		case strings.HasPrefix(arg, "-lib="):
			p.libPaths = append(p.libPaths, strings.TrimPrefix(arg, "-lib="))
		case arg == "-config":
			i++
			if i >= len(argv) {
				return p, fmt.Errorf("-config requires a path")
			}
			p.configPath = argv[i]
		case strings.HasPrefix(arg, "-config="):
			p.configPath = strings.TrimPrefix(arg, "-config=")
		case p.script == "" && !strings.HasPrefix(arg, "-"):
			p.script = arg
		default:
			p.scriptArgs = append(p.scriptArgs, arg)
		}
	}
	return p, nil
}

func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "internal error: %v\n", r)
			os.Exit(1)
		}
	}()

	args, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "mers:", err)
		usage()
		os.Exit(1)
	}
	if args.script == "" {
		usage()
		os.Exit(1)
	}

	settings, err := config.Load(args.configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "mers:", err)
		os.Exit(1)
	}
	vtype.Trace = settings.TraceFitsIn

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	libs, closeLibs, err := dialLibraries(ctx, settings.LibraryDialTimeout, args.libPaths)
	if err != nil {
		fmt.Fprintln(os.Stderr, "mers:", err)
		os.Exit(1)
	}
	defer closeLibs()

	doc, err := loadDocument(args.script)
	if err != nil {
		fmt.Fprintln(os.Stderr, "mers:", err)
		os.Exit(1)
	}

	result, err := lowering.Compile(doc, libs)
	if err != nil {
		fmt.Fprintln(os.Stderr, "mers: compile error:", err)
		os.Exit(1)
	}
	for _, w := range result.Warnings {
		fmt.Fprintln(os.Stderr, "mers: warning:", w.Message)
	}

	evalCtx := &runnable.EvalContext{
		Info:    result.Script.Info,
		Threads: value.NewRegistry(),
		Libs:    libs,
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Ctx:     ctx,
	}

	out := result.Script.Run(args.scriptArgs, evalCtx)
	evalCtx.Threads.Drain()
	fmt.Println(value.String(out, evalCtx.Info))
}

// loadDocument reads a compiled parsedtree.Document from path. Mers
// has no lexer/parser of its own (spec.md's Non-goals exclude syntax
// entirely); a script is always already the JSON document format that
// parsedtree.Decode/Encode round-trip.
func loadDocument(path string) (*parsedtree.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	doc, err := parsedtree.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return doc, nil
}

// dialLibraries starts one subprocess per -lib path and performs its
// registration handshake (spec §6.3). The returned closer stops every
// dialed library, in reverse order, regardless of how many dialed
// successfully.
func dialLibraries(ctx context.Context, dialTimeout time.Duration, paths []string) ([]library.Library, func(), error) {
	libs := make([]library.Library, 0, len(paths))
	clients := make([]*library.Client, 0, len(paths))
	closeAll := func() {
		for i := len(clients) - 1; i >= 0; i-- {
			_ = clients[i].Close()
		}
	}

	for _, path := range paths {
		c, err := library.DialTimeout(ctx, dialTimeout, path)
		if err != nil {
			closeAll()
			return nil, func() {}, fmt.Errorf("dial library %s: %w", path, err)
		}
		clients = append(clients, c)
		libs = append(libs, c)
	}
	return libs, closeAll, nil
}
