// Package lowering is the to-runnable compiler (spec §4.3): it walks a
// parsedtree.Function/Statement tree, resolves names against a
// per-scope binding map, interns enum/custom-type names into a shared
// vtype.Info, and emits a fully type-checked runnable.Script — or a
// structured Error from the closed taxonomy in spec §7.
package lowering

import (
	"fmt"
	"strings"

	"github.com/funvibe/mers/internal/vtype"
)

// Error is the closed compile-time taxonomy of spec §7: one struct
// whose Kind names the failure, with only the fields that Kind uses
// filled in. Every variant carries the structured data a diagnostic renderer needs instead of
// a pre-formatted string (mirroring ToRunnableError in the original).
type Error struct {
	Kind ErrorKind

	Name string // UseOfUndefinedVariable, UseOfUndefinedFunction, UnknownType, CannotDeclareVariableWithDereference

	Expected    vtype.Type
	Found       vtype.Type
	Problematic vtype.Type

	OriginalType    vtype.Type
	DerefsWanted    int
	LastValidType   vtype.Type

	WantArgCount int
	GotArgCount  int

	ArgTypes []vtype.Type

	Index int

	BuiltinName string

	Info *vtype.Info // for rendering Type values by name
}

type ErrorKind int

const (
	ErrMainWrongInput ErrorKind = iota
	ErrUseOfUndefinedVariable
	ErrUseOfUndefinedFunction
	ErrUnknownType
	ErrCannotDeclareVariableWithDereference
	ErrCannotDereferenceTypeNTimes
	ErrFunctionWrongArgCount
	ErrFunctionWrongArgs
	ErrInvalidType
	ErrCannotAssignTo
	ErrCaseForceButTypeNotCovered
	ErrMatchConditionInvalidReturn
	ErrNotIndexableFixed
	ErrWrongInputsForBuiltinFunction
	ErrWrongArgsForLibFunction
	ErrForLoopContainerHasNoInnerTypes
	ErrStatementRequiresOutputTypeToBeAButItActuallyOutputsBWhichDoesNotFitInA
)

func (e *Error) Error() string {
	var b strings.Builder
	switch e.Kind {
	case ErrMainWrongInput:
		b.WriteString("main function had the wrong input; it must take exactly one parameter named \"args\" of type list<string>")
	case ErrUseOfUndefinedVariable:
		fmt.Fprintf(&b, "cannot use variable %q as it isn't defined (yet?)", e.Name)
	case ErrUseOfUndefinedFunction:
		fmt.Fprintf(&b, "cannot use function %q as it isn't defined (yet?)", e.Name)
	case ErrUnknownType:
		fmt.Fprintf(&b, "unknown type %q", e.Name)
	case ErrCannotDeclareVariableWithDereference:
		fmt.Fprintf(&b, "cannot declare a variable and dereference it (variable %q)", e.Name)
	case ErrCannotDereferenceTypeNTimes:
		fmt.Fprintf(&b, "cannot dereference type %s %d times (stopped at %s)", e.OriginalType.String(e.Info), e.DerefsWanted, e.LastValidType.String(e.Info))
	case ErrFunctionWrongArgCount:
		fmt.Fprintf(&b, "function %q takes %d arguments, called with %d instead", e.Name, e.WantArgCount, e.GotArgCount)
	case ErrFunctionWrongArgs:
		fmt.Fprintf(&b, "wrong args for function %q:%s", e.Name, typesSuffix(e.ArgTypes, e.Info))
	case ErrInvalidType:
		fmt.Fprintf(&b, "invalid type: expected %s but found %s, which includes %s which is not covered", e.Expected.String(e.Info), e.Found.String(e.Info), e.Problematic.String(e.Info))
	case ErrCannotAssignTo:
		fmt.Fprintf(&b, "cannot assign type %s to %s", e.Found.String(e.Info), e.Expected.String(e.Info))
	case ErrCaseForceButTypeNotCovered:
		fmt.Fprintf(&b, "switch! statement, but not all types covered: %s", e.Found.String(e.Info))
	case ErrMatchConditionInvalidReturn:
		fmt.Fprintf(&b, "match condition returned %s, which is not necessarily a tuple of size 0 to 1", e.Found.String(e.Info))
	case ErrNotIndexableFixed:
		fmt.Fprintf(&b, "cannot use fixed-index %d on type %s", e.Index, e.Found.String(e.Info))
	case ErrWrongInputsForBuiltinFunction:
		fmt.Fprintf(&b, "wrong arguments for builtin function %q:%s", e.BuiltinName, typesSuffix(e.ArgTypes, e.Info))
	case ErrWrongArgsForLibFunction:
		fmt.Fprintf(&b, "wrong arguments for library function %q:%s", e.Name, typesSuffix(e.ArgTypes, e.Info))
	case ErrForLoopContainerHasNoInnerTypes:
		b.WriteString("for loop: container had no inner types, cannot iterate")
	case ErrStatementRequiresOutputTypeToBeAButItActuallyOutputsBWhichDoesNotFitInA:
		fmt.Fprintf(&b, "the statement requires its output type to be %s, but its real output type is %s, which doesn't fit because of %s", e.Expected.String(e.Info), e.Found.String(e.Info), e.Problematic.String(e.Info))
	default:
		b.WriteString("unknown lowering error")
	}
	return b.String()
}

func typesSuffix(ts []vtype.Type, info *vtype.Info) string {
	var b strings.Builder
	for _, t := range ts {
		b.WriteString(" ")
		b.WriteString(t.String(info))
	}
	return b.String()
}

// WarningKind distinguishes the non-fatal diagnostics lowering can
// emit (spec §4.3.4 Match, SPEC_FULL.md §3 item 3/4): these never
// block compilation, they only get surfaced to whatever host calls
// Compile.
type WarningKind int

const (
	WarnIrrefutableMatchArm WarningKind = iota
	WarnDeadMatchArm
	WarnAssume1NeverFails
	WarnAssume1AlwaysFails
	WarnAssumeNoEnumNeverFails
	WarnAssumeNoEnumAlwaysFails
)

// Warning is one non-fatal diagnostic recorded on a Result.
type Warning struct {
	Kind    WarningKind
	Message string
}
