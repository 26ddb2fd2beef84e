package lowering

import (
	"github.com/funvibe/mers/internal/runnable"
	"github.com/funvibe/mers/internal/value"
	"github.com/funvibe/mers/internal/vtype"
)

// varBinding is one entry of a localInfo's vars map: the cell a lowered
// Variable reference resolves to, paired with the declared/narrowed
// union currently in effect for it (spec §4.3.1 "vars: name ->
// (cell-handle, declared-union)").
type varBinding struct {
	Cell *value.Cell
	Type vtype.Type
}

// localInfo is LInfo (spec §4.3.1 "Local"): state cloned at every scope
// boundary so a rebind inside a block/branch/loop/switch/match arm
// never leaks outward (spec §3.4 "Lifecycles").
type localInfo struct {
	vars map[string]varBinding
	fns  map[string]*runnable.Function
}

func newLocalInfo() *localInfo {
	return &localInfo{
		vars: make(map[string]varBinding),
		fns:  make(map[string]*runnable.Function),
	}
}

// clone is the scope-boundary snapshot: copying the maps means a
// variable/function declared inside the returned copy is invisible to
// the original.
func (l *localInfo) clone() *localInfo {
	vars := make(map[string]varBinding, len(l.vars))
	for k, v := range l.vars {
		vars[k] = v
	}
	fns := make(map[string]*runnable.Function, len(l.fns))
	for k, v := range l.fns {
		fns[k] = v
	}
	return &localInfo{vars: vars, fns: fns}
}

// narrowed returns a clone with name's binding replaced by a fresh
// cell of the given union — used by Switch/Match/For to give a case
// body a narrowed view of the variable being tested without disturbing
// the enclosing scope's binding (spec §4.3.4).
func (l *localInfo) narrowed(name string, t vtype.Type) (*localInfo, *value.Cell) {
	next := l.clone()
	cell := value.NewNamedPlaceholder(name)
	next.vars[name] = varBinding{Cell: cell, Type: t}
	return next, cell
}
