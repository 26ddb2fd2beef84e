package lowering

import (
	"github.com/funvibe/mers/internal/library"
	"github.com/funvibe/mers/internal/parsedtree"
	"github.com/funvibe/mers/internal/runnable"
	"github.com/funvibe/mers/internal/value"
	"github.com/funvibe/mers/internal/vtype"
)

// Result is what a successful Compile hands back: the runnable
// program plus whatever non-fatal diagnostics accumulated along the
// way (spec §4.3.4 Match warnings, §9 assume1/assume_no_enum
// warnings).
type Result struct {
	Script   *runnable.Script
	Warnings []Warning
}

// Compile is to_runnable's entry point (spec §6.1): it seeds
// GlobalInfo's interning tables from the document's declared
// enum/custom-type names, registers libs, validates main's signature,
// lowers main, and freezes the type tables before handing off to the
// evaluator.
func Compile(doc *parsedtree.Document, libs []library.Library) (*Result, *Error) {
	global := NewGlobalInfo()
	for _, name := range doc.EnumNames {
		global.Types.InternEnumVariant(name)
	}
	for _, name := range doc.CustomTypeNames {
		global.Types.ReserveCustomType(name)
	}
	for _, lib := range libs {
		global.RegisterLibrary(lib)
	}

	wantArgs := vtype.List(vtype.String().ToType()).ToType()
	if len(doc.Main.Inputs) != 1 || doc.Main.Inputs[0].Name != "args" {
		return nil, &Error{Kind: ErrMainWrongInput}
	}
	if err := checkTypeKnown(global, doc.Main.Inputs[0].Type); err != nil {
		return nil, err
	}
	if !doc.Main.Inputs[0].Type.Equal(wantArgs, global.Types) {
		return nil, &Error{Kind: ErrMainWrongInput}
	}

	main, err := lowerFunction(global, newLocalInfo(), &doc.Main)
	if err != nil {
		return nil, err
	}

	global.freeze()
	return &Result{
		Script:   &runnable.Script{Main: main, Info: global.Types},
		Warnings: global.Warnings,
	}, nil
}

// lowerFunction is to_runnable's `function()` (spec §4.3.1 "Function
// compilation"): it allocates one placeholder cell per parameter at
// its full declared union, builds the overload table by lowering the
// body once per cartesian combination of single types (discarding
// each resulting tree, keeping only its Out()), then resets every
// parameter to its full union and lowers the body one final time —
// that last Block is the one actually stored and executed, matching
// to_runnable.rs's function(): "get_all_functions sets the types to
// one single type to get the return type of the block for that case"
// before the final full-union lowering.
func lowerFunction(global *GlobalInfo, parent *localInfo, fn *parsedtree.Function) (*runnable.Function, *Error) {
	local := parent.clone()

	inputCells := make([]*value.Cell, len(fn.Inputs))
	inputTypes := make([]vtype.Type, len(fn.Inputs))
	for i, p := range fn.Inputs {
		if err := checkTypeKnown(global, p.Type); err != nil {
			return nil, err
		}
		inputCells[i] = value.NewNamedPlaceholder(p.Name)
		inputTypes[i] = p.Type
		local.vars[p.Name] = varBinding{Cell: inputCells[i], Type: p.Type}
	}

	var ioMap []runnable.IOMapEntry
	if err := collectOverloadRows(global, local, fn, inputCells, 0, nil, &ioMap); err != nil {
		return nil, err
	}

	for i, p := range fn.Inputs {
		local.vars[p.Name] = varBinding{Cell: inputCells[i], Type: p.Type}
	}
	block, err := lowerBlock(global, local, fn.Block)
	if err != nil {
		return nil, err
	}

	return &runnable.Function{
		Inputs:     inputCells,
		InputTypes: inputTypes,
		IOMap:      ioMap,
		Block:      block,
	}, nil
}

// collectOverloadRows is to_runnable's get_all_functions: a
// depth-first cartesian recursion over each parameter's declared-union
// single types. At the base case it narrows every parameter to one
// single type from `current`, lowers the body fresh against that
// narrowing in a cloned scope (so the narrowing never leaks back into
// `local`, exactly like the original's `linfo.clone()` per call), and
// keeps only the resulting Out() as one IOMap row.
func collectOverloadRows(global *GlobalInfo, local *localInfo, fn *parsedtree.Function, inputCells []*value.Cell, idx int, current []vtype.Single, ioMap *[]runnable.IOMapEntry) *Error {
	if idx < len(fn.Inputs) {
		for _, single := range fn.Inputs[idx].Type.Singles {
			next := append(current[:idx:idx], single)
			if err := collectOverloadRows(global, local, fn, inputCells, idx+1, next, ioMap); err != nil {
				return err
			}
		}
		return nil
	}

	rowLocal := local.clone()
	for i, p := range fn.Inputs {
		rowLocal.vars[p.Name] = varBinding{Cell: inputCells[i], Type: current[i].ToType()}
	}
	block, err := lowerBlock(global, rowLocal, fn.Block)
	if err != nil {
		return err
	}

	row := make([]vtype.Single, len(current))
	copy(row, current)
	*ioMap = append(*ioMap, runnable.IOMapEntry{Ins: row, Out: block.Out(global.Types)})
	return nil
}
