package lowering

import (
	"github.com/funvibe/mers/internal/library"
	"github.com/funvibe/mers/internal/vtype"
)

// libFnRef is one entry of GlobalInfo's name -> (lib, fn) table (spec
// §4.3.1 "library-function name -> (lib-id, fn-id) table").
type libFnRef struct {
	LibID, FnID int
}

// GlobalInfo is GlobalScriptInfo (spec §3.4, §4.3.1 "Global"): the
// vtype.Info interning tables plus the registered library list a
// Compile run accumulates. It is created fresh per compilation and
// frozen once lowering hands its runnable.Script off to the evaluator.
type GlobalInfo struct {
	Types *vtype.Info

	Libs   []library.Library
	LibFns map[string]libFnRef

	Warnings []Warning
}

// NewGlobalInfo creates a fresh GlobalInfo with no libraries
// registered and the Err enum variant already seeded at id 0 (via
// vtype.NewInfo).
func NewGlobalInfo() *GlobalInfo {
	return &GlobalInfo{
		Types:  vtype.NewInfo(),
		LibFns: make(map[string]libFnRef),
	}
}

// RegisterLibrary adds lib's functions to the call-resolution table
// under their registered names (spec §6.3 "registration exchange").
// A name collision with an already-registered library function is
// last-registration-wins, matching how the original simply overwrites
// the HashMap entry.
func (g *GlobalInfo) RegisterLibrary(lib library.Library) {
	libID := len(g.Libs)
	g.Libs = append(g.Libs, lib)
	for fnID, fn := range lib.RegisteredFns() {
		g.LibFns[fn.Name] = libFnRef{LibID: libID, FnID: fnID}
	}
}

func (g *GlobalInfo) warn(kind WarningKind, msg string) {
	g.Warnings = append(g.Warnings, Warning{Kind: kind, Message: msg})
}

func (g *GlobalInfo) freeze() { g.Types.Freeze() }
