// Package builtins implements the ~50 builtin function contracts of
// spec §4.6: each one exposes CanTake/Returns (the pair lowering uses
// for call-site typing, spec §4.3.3 "For a builtin call, delegate to
// the builtin's can_take predicate...") and Run (the evaluator's
// dispatch target). Builtin satisfies runnable.BuiltinCallable by
// construction, so a Builtin value can sit directly inside an
// RBuiltinCall statement without an adapter.
package builtins

import (
	"github.com/funvibe/mers/internal/runnable"
	"github.com/funvibe/mers/internal/value"
	"github.com/funvibe/mers/internal/vtype"
)

// Builtin is the contract every entry in the registry implements
// (spec §4.6 "Each builtin exposes three pure functions of type
// information plus one runtime function").
type Builtin interface {
	Name() string
	CanTake(args []vtype.Type, info *vtype.Info) bool
	Returns(args []vtype.Type, info *vtype.Info) vtype.Type
	Run(args []*value.Cell, ctx *runnable.EvalContext) *value.Cell
}

var registry = make(map[string]Builtin)

func register(b Builtin) { registry[b.Name()] = b }

// Lookup resolves a bare name to its builtin, for lowering's
// FunctionCall dispatch (spec §4.3.1 "FunctionCall(name, args)").
func Lookup(name string) (Builtin, bool) {
	b, ok := registry[name]
	return b, ok
}

// simple wraps the common case: a builtin whose three operations are
// plain function values, avoiding a one-off named type per builtin
// (mirrors the teacher's preference for small functional adapters over
// per-case structs where a struct buys nothing).
type simple struct {
	name    string
	canTake func(args []vtype.Type, info *vtype.Info) bool
	returns func(args []vtype.Type, info *vtype.Info) vtype.Type
	run     func(args []*value.Cell, ctx *runnable.EvalContext) *value.Cell
}

func (s *simple) Name() string                                  { return s.name }
func (s *simple) CanTake(a []vtype.Type, i *vtype.Info) bool     { return s.canTake(a, i) }
func (s *simple) Returns(a []vtype.Type, i *vtype.Info) vtype.Type { return s.returns(a, i) }
func (s *simple) Run(a []*value.Cell, ctx *runnable.EvalContext) *value.Cell { return s.run(a, ctx) }

func add(name string, canTake func([]vtype.Type, *vtype.Info) bool, returns func([]vtype.Type, *vtype.Info) vtype.Type, run func([]*value.Cell, *runnable.EvalContext) *value.Cell) {
	register(&simple{name: name, canTake: canTake, returns: returns, run: run})
}

// allSingles reports whether every member of t satisfies pred — the
// common shape of a can_take rule ("arg must be all-int", "all
// strings", ...).
func allSingles(t vtype.Type, pred func(vtype.Single) bool) bool {
	if len(t.Singles) == 0 {
		return false
	}
	for _, s := range t.Singles {
		if !pred(s) {
			return false
		}
	}
	return true
}

func isKind(k vtype.Kind) func(vtype.Single) bool {
	return func(s vtype.Single) bool { return s.Kind == k }
}

func isNumeric(s vtype.Single) bool { return s.Kind == vtype.KInt || s.Kind == vtype.KFloat }
