// Package library is the external Library Bridge contract (spec §6.3):
// a library is a child process speaking a length-prefixed binary
// protocol, registered once (name, version, description, function
// signatures) and invoked per-call with a typed RunFunction RPC. This
// package only carries the contract and wire codec — the protocol
// itself, and the libraries that might speak it, are out of scope
// (spec.md §1 "OUT OF SCOPE").
package library

import (
	"context"

	"github.com/funvibe/mers/internal/value"
	"github.com/funvibe/mers/internal/vtype"
)

// FnSig is one entry of a library's registered function list (spec
// §6.3 "a list of (fn_name, List<input-VType>, output-VType)").
type FnSig struct {
	Name string
	Ins  []vtype.Type
	Out  vtype.Type
}

// Library is the contract lowering and the evaluator need from an
// external library: its registered functions (for call-site typing,
// spec §4.3.3 "library-function call") and a way to invoke one by id
// (for the evaluator's RLibCall, spec §4.4.1). Name/Version/
// Description exist purely for diagnostics (SPEC_FULL.md §3 item 7),
// never for dispatch.
type Library interface {
	Name() string
	Version() (major, minor int)
	Description() string

	RegisteredFns() []FnSig

	// RunFn invokes the fnID'th registered function with args (spec
	// "Invocation message RunFunction{fn_id, args} -> {result}").
	RunFn(ctx context.Context, fnID int, args []*value.Cell) (*value.Cell, error)
}
