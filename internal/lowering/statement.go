package lowering

import (
	"fmt"

	"github.com/funvibe/mers/internal/builtins"
	"github.com/funvibe/mers/internal/parsedtree"
	"github.com/funvibe/mers/internal/runnable"
	"github.com/funvibe/mers/internal/value"
	"github.com/funvibe/mers/internal/vtype"
)

// lowerBlock lowers a straight-line sequence of statements against a
// single scope: later statements see names declared by earlier ones
// in the same block (spec §3.4 "a rebind inside a block ... never
// leaks outward" describes the boundary, not the inside — sequential
// statements in one block share the one localInfo passed in).
func lowerBlock(global *GlobalInfo, local *localInfo, b *parsedtree.Block) (*runnable.Block, *Error) {
	stmts := make([]*runnable.Statement, len(b.Statements))
	for i, raw := range b.Statements {
		s, err := lowerStatement(global, local, raw)
		if err != nil {
			return nil, err
		}
		stmts[i] = s
	}
	return &runnable.Block{Statements: stmts}, nil
}

// lowerStatement lowers one parsedtree.Statement's kind-specific
// payload, then applies force_output_type and output_to in that order
// (spec §4.3.5/§4.3.6): force_output_type tightens the statement's
// reported type before output_to's assignability check runs against
// it, matching runnable.Statement.Out's own precedence (output_to
// check first, then force_output_type) read in reverse at
// construction time.
func lowerStatement(global *GlobalInfo, local *localInfo, raw *parsedtree.Statement) (*runnable.Statement, *Error) {
	rs, err := lowerKind(global, local, raw)
	if err != nil {
		return nil, err
	}

	r := rs.Out(global.Types)

	if raw.ForceOutputType != nil {
		if err := checkTypeKnown(global, *raw.ForceOutputType); err != nil {
			return nil, err
		}
		uncovered := r.FitsIn(*raw.ForceOutputType, global.Types)
		if len(uncovered) != 0 {
			return nil, &Error{
				Kind:        ErrStatementRequiresOutputTypeToBeAButItActuallyOutputsBWhichDoesNotFitInA,
				Expected:    *raw.ForceOutputType,
				Found:       r,
				Problematic: vtype.Of(uncovered...),
				Info:        global.Types,
			}
		}
		rs.ForceOutputType = raw.ForceOutputType
		r = *raw.ForceOutputType
	}

	if raw.OutputTo != nil {
		// `*x = ...` requires x to already exist: a dereferencing store
		// has nothing to declare (spec §4.3.1).
		if t := raw.OutputTo.Target; raw.OutputTo.Derefs > 0 && t.Kind == parsedtree.SVariable && !t.VarIsReference {
			if _, ok := local.vars[t.VarName]; !ok {
				return nil, &Error{Kind: ErrCannotDeclareVariableWithDereference, Name: t.VarName}
			}
		}
		target, introduced, err := lowerAssignTarget(global, local, raw.OutputTo.Target, r)
		if err != nil {
			return nil, err
		}

		rT0 := target.Out(global.Types)
		afterExplicit, ok := derefNTimes(rT0, raw.OutputTo.Derefs, global.Types)
		if !ok {
			return nil, &Error{
				Kind:          ErrCannotDereferenceTypeNTimes,
				OriginalType:  rT0,
				DerefsWanted:  raw.OutputTo.Derefs,
				LastValidType: afterExplicit,
				Info:          global.Types,
			}
		}
		assignable, ok := oneImplicitDeref(afterExplicit, global.Types)
		if !ok {
			return nil, &Error{
				Kind:          ErrCannotDereferenceTypeNTimes,
				OriginalType:  rT0,
				DerefsWanted:  raw.OutputTo.Derefs + 1,
				LastValidType: afterExplicit,
				Info:          global.Types,
			}
		}
		if uncovered := r.FitsIn(assignable, global.Types); len(uncovered) != 0 {
			return nil, &Error{
				Kind:     ErrCannotAssignTo,
				Expected: assignable,
				Found:    r,
				Info:     global.Types,
			}
		}

		target.Derefs = raw.OutputTo.Derefs
		rs.OutputTo = &runnable.OutputTo{Target: target, IsInit: introduced}
		rs.Derefs = 0
	}

	return rs, nil
}

// derefNTimes dereferences t n times, stopping (ok=false) at the
// first member that isn't a Reference and reporting the last type
// that still was one — the data ErrCannotDereferenceTypeNTimes needs.
func derefNTimes(t vtype.Type, n int, info *vtype.Info) (vtype.Type, bool) {
	cur := t
	for i := 0; i < n; i++ {
		next, ok := cur.Dereference(info)
		if !ok {
			return cur, false
		}
		cur = next
	}
	return cur, true
}

// oneImplicitDeref peels the one reference-store layer every
// assignment target carries beyond its explicit `*` count (spec
// §4.3.6 "this final dereference is the assignable type ... tolerates
// the extra layer introduced by a reference store"). A bare variable
// target is wrapped in exactly one Reference by lowerAssignTarget (it
// evaluates to a Reference onto its own storage cell at runtime, spec
// §4.4.1's "Variable(cell, is_ref)"), so peeling it back here recovers
// the variable's own declared type. A Tuple/List target has no single
// enclosing Reference of its own — it's a grouping of leaf targets,
// each already Reference-wrapped the same way — so the peel has to
// recurse structurally instead of failing outright the way a flat
// Type.Dereference would on a non-Reference top-level Kind.
func oneImplicitDeref(t vtype.Type, info *vtype.Info) (vtype.Type, bool) {
	out := vtype.Empty()
	for _, s := range t.Singles {
		switch s.Kind {
		case vtype.KReference:
			out.Add(*s.Ref, info)
		case vtype.KTuple:
			elems := make([]vtype.Type, len(s.Tuple))
			for i, e := range s.Tuple {
				d, ok := oneImplicitDeref(e, info)
				if !ok {
					return vtype.Type{}, false
				}
				elems[i] = d
			}
			out.Add(vtype.Tuple(elems...), info)
		case vtype.KList:
			d, ok := oneImplicitDeref(*s.List, info)
			if !ok {
				return vtype.Type{}, false
			}
			out.Add(vtype.List(d), info)
		default:
			return vtype.Type{}, false
		}
	}
	return out, true
}

// lowerAssignTarget lowers a statement appearing on the left of
// output_to (spec §4.3.6): a bare Variable may introduce a new binding
// (derefs == 0) or resolve an existing one; a Tuple/List destructures
// recursively, each element getting the corresponding slice of hint as
// its declare-type; anything else (IndexFixed, a Reference expression,
// ...) is lowered as an ordinary non-declaring expression.
func lowerAssignTarget(global *GlobalInfo, local *localInfo, raw *parsedtree.Statement, hint vtype.Type) (*runnable.Statement, bool, *Error) {
	switch raw.Kind {
	case parsedtree.SVariable:
		if raw.VarIsReference {
			s, err := lowerKind(global, local, raw)
			return s, false, err
		}
		if b, ok := local.vars[raw.VarName]; ok {
			return &runnable.Statement{Kind: runnable.RVariable, VarCell: b.Cell, VarType: b.Type, IsRef: true}, false, nil
		}
		cell := value.NewNamedPlaceholder(raw.VarName)
		local.vars[raw.VarName] = varBinding{Cell: cell, Type: hint}
		return &runnable.Statement{Kind: runnable.RVariable, VarCell: cell, VarType: hint, IsRef: true}, true, nil

	case parsedtree.STuple, parsedtree.SList:
		elems := make([]*runnable.Statement, len(raw.Elements))
		introduced := false
		for i, e := range raw.Elements {
			elemHint, ok := hint.Get(i, global.Types)
			if !ok {
				elemHint = vtype.Empty()
			}
			re, isNew, err := lowerAssignTarget(global, local, e, elemHint)
			if err != nil {
				return nil, false, err
			}
			elems[i] = re
			introduced = introduced || isNew
		}
		kind := runnable.RTuple
		if raw.Kind == parsedtree.SList {
			kind = runnable.RList
		}
		return &runnable.Statement{Kind: kind, Elements: elems}, introduced, nil

	default:
		s, err := lowerKind(global, local, raw)
		return s, false, err
	}
}

// flattenRows collects every overload row across all Function
// alternatives of t, for resolving a call made through a variable
// holding a function value rather than a directly named function.
func flattenRows(t vtype.Type) []vtype.FuncRow {
	var rows []vtype.FuncRow
	for _, s := range t.Singles {
		if s.Kind == vtype.KFunction {
			rows = append(rows, s.Rows...)
		}
	}
	return rows
}

// lowerKind lowers raw's Kind-specific payload only, leaving
// Derefs/OutputTo/ForceOutputType for lowerStatement to fill in.
func lowerKind(global *GlobalInfo, local *localInfo, raw *parsedtree.Statement) (*runnable.Statement, *Error) {
	switch raw.Kind {
	case parsedtree.SValue, parsedtree.SMacroStaticMers:
		return &runnable.Statement{Kind: runnable.RValue, Value: value.NewCell(valueToData(raw.Value))}, nil

	case parsedtree.STuple, parsedtree.SList:
		elems := make([]*runnable.Statement, len(raw.Elements))
		for i, e := range raw.Elements {
			le, err := lowerStatement(global, local, e)
			if err != nil {
				return nil, err
			}
			elems[i] = le
		}
		kind := runnable.RTuple
		if raw.Kind == parsedtree.SList {
			kind = runnable.RList
		}
		return &runnable.Statement{Kind: kind, Elements: elems}, nil

	case parsedtree.SVariable:
		b, ok := local.vars[raw.VarName]
		if !ok {
			return nil, &Error{Kind: ErrUseOfUndefinedVariable, Name: raw.VarName}
		}
		return &runnable.Statement{Kind: runnable.RVariable, VarCell: b.Cell, VarType: b.Type, IsRef: raw.VarIsReference}, nil

	case parsedtree.SFunctionCall:
		return lowerFunctionCall(global, local, raw)

	case parsedtree.SFunctionDefinition:
		fn, err := lowerFunction(global, local, raw.FunctionDef)
		if err != nil {
			return nil, err
		}
		if raw.VarName != "" {
			local.fns[raw.VarName] = fn
		}
		return &runnable.Statement{Kind: runnable.RValue, Value: value.NewCell(value.NewFunction(fn))}, nil

	case parsedtree.SBlock_:
		blockLocal := local.clone()
		b, err := lowerBlock(global, blockLocal, raw.Block)
		if err != nil {
			return nil, err
		}
		return &runnable.Statement{Kind: runnable.RBlockStmt, Block: b}, nil

	case parsedtree.SIf:
		cond, err := lowerStatement(global, local, raw.Cond)
		if err != nil {
			return nil, err
		}
		condType := cond.Out(global.Types)
		if uncovered := condType.FitsIn(vtype.Bool().ToType(), global.Types); len(uncovered) != 0 {
			return nil, &Error{Kind: ErrInvalidType, Expected: vtype.Bool().ToType(), Found: condType, Problematic: vtype.Of(uncovered...), Info: global.Types}
		}
		then, err := lowerStatement(global, local.clone(), raw.Then)
		if err != nil {
			return nil, err
		}
		var elseS *runnable.Statement
		if raw.Else != nil {
			elseS, err = lowerStatement(global, local.clone(), raw.Else)
			if err != nil {
				return nil, err
			}
		}
		return &runnable.Statement{Kind: runnable.RIf, Cond: cond, Then: then, Else: elseS}, nil

	case parsedtree.SLoop:
		body, err := lowerStatement(global, local.clone(), raw.LoopBody)
		if err != nil {
			return nil, err
		}
		return &runnable.Statement{Kind: runnable.RLoop, LoopBody: body}, nil

	case parsedtree.SFor:
		return lowerFor(global, local, raw)

	case parsedtree.SSwitch:
		return lowerSwitch(global, local, raw)

	case parsedtree.SMatch:
		return lowerMatch(global, local, raw)

	case parsedtree.SIndexFixed:
		of, err := lowerStatement(global, local, raw.IndexOf)
		if err != nil {
			return nil, err
		}
		ofType := of.Out(global.Types)
		if _, ok := ofType.GetAlways(raw.Index, global.Types); !ok {
			return nil, &Error{Kind: ErrNotIndexableFixed, Index: raw.Index, Found: ofType, Info: global.Types}
		}
		return &runnable.Statement{Kind: runnable.RIndexFixed, IndexOf: of, Index: raw.Index}, nil

	case parsedtree.SEnumVariant:
		id := global.Types.InternEnumVariant(raw.EnumVariant)
		var inner *runnable.Statement
		var err *Error
		if raw.EnumInner != nil {
			inner, err = lowerStatement(global, local, raw.EnumInner)
			if err != nil {
				return nil, err
			}
		} else {
			inner = &runnable.Statement{Kind: runnable.RValue, Value: value.NewCell(value.Unit())}
		}
		return &runnable.Statement{Kind: runnable.REnumVariant, EnumID: id, EnumInner: inner}, nil

	case parsedtree.STypeDefinition:
		if err := checkTypeKnown(global, raw.TypeDef); err != nil {
			return nil, err
		}
		global.Types.DeclareCustomType(raw.VarName, raw.TypeDef)
		return &runnable.Statement{Kind: runnable.RValue, Value: value.NewCell(value.Unit())}, nil

	default:
		panic("lowering: invalid parsedtree.StatementKind")
	}
}

func valueToData(v parsedtree.Value) *value.Data {
	switch v.Kind {
	case vtype.KBool:
		return value.NewBool(v.Bool)
	case vtype.KInt:
		return value.NewInt(v.Int)
	case vtype.KFloat:
		return value.NewFloat(v.Float)
	case vtype.KString:
		return value.NewString(v.Str)
	case vtype.KTuple:
		elems := make([]*value.Cell, len(v.Tuple))
		for i, e := range v.Tuple {
			elems[i] = value.NewCell(valueToData(e))
		}
		return value.NewTuple(elems...)
	default:
		panic("lowering: unsupported literal value kind")
	}
}

// lowerFunctionCall resolves a FunctionCall(name, args) against, in
// order: a user function already compiled in this scope, a builtin, a
// registered library function, and finally a plain variable holding a
// function value (spec §4.3.1/§4.3.3).
func lowerFunctionCall(global *GlobalInfo, local *localInfo, raw *parsedtree.Statement) (*runnable.Statement, *Error) {
	name := raw.VarName
	args := make([]*runnable.Statement, len(raw.Args))
	argTypes := make([]vtype.Type, len(raw.Args))
	for i, a := range raw.Args {
		la, err := lowerStatement(global, local, a)
		if err != nil {
			return nil, err
		}
		args[i] = la
		argTypes[i] = la.Out(global.Types)
	}

	if fn, ok := local.fns[name]; ok {
		if len(fn.InputTypes) != len(args) {
			return nil, &Error{Kind: ErrFunctionWrongArgCount, Name: name, WantArgCount: len(fn.InputTypes), GotArgCount: len(args)}
		}
		rows := make([]vtype.FuncRow, len(fn.IOMap))
		for i, e := range fn.IOMap {
			rows[i] = vtype.FuncRow{Ins: e.Ins, Out: e.Out}
		}
		if _, matched := vtype.ResolveCall(rows, argTypes, global.Types); !matched {
			return nil, &Error{Kind: ErrFunctionWrongArgs, Name: name, ArgTypes: argTypes, Info: global.Types}
		}
		return &runnable.Statement{Kind: runnable.RFunctionCall, Function: fn, Args: args}, nil
	}

	if b, ok := builtins.Lookup(name); ok {
		if !b.CanTake(argTypes, global.Types) {
			return nil, &Error{Kind: ErrWrongInputsForBuiltinFunction, BuiltinName: name, ArgTypes: argTypes, Info: global.Types}
		}
		warnAssumeCall(global, name, argTypes)
		return &runnable.Statement{Kind: runnable.RBuiltinCall, Builtin: b, Args: args}, nil
	}

	if ref, ok := global.LibFns[name]; ok {
		lib := global.Libs[ref.LibID]
		sig := lib.RegisteredFns()[ref.FnID]
		if len(sig.Ins) != len(args) {
			return nil, &Error{Kind: ErrWrongArgsForLibFunction, Name: name, ArgTypes: argTypes, Info: global.Types}
		}
		for i, in := range sig.Ins {
			if uncovered := argTypes[i].FitsIn(in, global.Types); len(uncovered) != 0 {
				return nil, &Error{Kind: ErrWrongArgsForLibFunction, Name: name, ArgTypes: argTypes, Info: global.Types}
			}
		}
		return &runnable.Statement{Kind: runnable.RLibCall, Args: args, Lib: &runnable.LibCallable{LibID: ref.LibID, FnID: ref.FnID, Out: sig.Out}}, nil
	}

	if b, ok := local.vars[name]; ok {
		rows := flattenRows(b.Type)
		if len(rows) == 0 {
			return nil, &Error{Kind: ErrUseOfUndefinedFunction, Name: name}
		}
		if _, matched := vtype.ResolveCall(rows, argTypes, global.Types); !matched {
			return nil, &Error{Kind: ErrFunctionWrongArgs, Name: name, ArgTypes: argTypes, Info: global.Types}
		}
		callee := &runnable.Statement{Kind: runnable.RVariable, VarCell: b.Cell, VarType: b.Type}
		return &runnable.Statement{Kind: runnable.RFunctionCall, Callee: callee, Args: args}, nil
	}

	return nil, &Error{Kind: ErrUseOfUndefinedFunction, Name: name}
}

// checkTypeKnown validates a declared type arriving from the document
// (a parameter union, a switch case guard, a type definition, a forced
// output type): every interned id it references must actually have
// been registered — a front end that resolved names against a
// different table would otherwise crash the alias lookup deep inside a
// subtype check instead of failing cleanly here (ErrUnknownType).
func checkTypeKnown(global *GlobalInfo, t vtype.Type) *Error {
	for _, s := range t.Singles {
		if err := checkSingleKnown(global, s); err != nil {
			return err
		}
	}
	return nil
}

func checkSingleKnown(global *GlobalInfo, s vtype.Single) *Error {
	switch s.Kind {
	case vtype.KCustomType:
		if s.CustomID < 0 || s.CustomID >= global.Types.CustomTypeCount() {
			return &Error{Kind: ErrUnknownType, Name: fmt.Sprintf("custom type #%d", s.CustomID)}
		}
	case vtype.KEnumVariant:
		if s.EnumID < 0 || s.EnumID >= global.Types.EnumVariantCount() {
			return &Error{Kind: ErrUnknownType, Name: fmt.Sprintf("enum variant #%d", s.EnumID)}
		}
		return checkTypeKnown(global, *s.EnumPayload)
	case vtype.KTuple:
		for _, e := range s.Tuple {
			if err := checkTypeKnown(global, e); err != nil {
				return err
			}
		}
	case vtype.KList:
		return checkTypeKnown(global, *s.List)
	case vtype.KThread:
		return checkTypeKnown(global, *s.Thread)
	case vtype.KReference:
		return checkSingleKnown(global, *s.Ref)
	case vtype.KFunction:
		for _, row := range s.Rows {
			for _, in := range row.Ins {
				if err := checkSingleKnown(global, in); err != nil {
					return err
				}
			}
			if err := checkTypeKnown(global, row.Out); err != nil {
				return err
			}
		}
	}
	return nil
}

// warnAssumeCall emits the non-fatal assume1/assume_no_enum
// diagnostics: an assumption that can never fail is dead weight, one
// that always fails is a disguised abort.
func warnAssumeCall(global *GlobalInfo, name string, argTypes []vtype.Type) {
	if len(argTypes) == 0 {
		return
	}
	arg := argTypes[0]
	switch name {
	case "assume1":
		failing := 0
		for _, s := range arg.Singles {
			if s.Kind == vtype.KTuple && len(s.Tuple) == 0 {
				failing++
			}
		}
		if failing == 0 {
			global.warn(WarnAssume1NeverFails, "assume1 argument can never be the empty tuple; the assumption always holds")
		} else if failing == len(arg.Singles) {
			global.warn(WarnAssume1AlwaysFails, "assume1 argument is always the empty tuple; this call always aborts")
		}
	case "assume_no_enum":
		enums := 0
		for _, s := range arg.Singles {
			if s.Kind == vtype.KEnumVariant {
				enums++
			}
		}
		if enums == 0 {
			global.warn(WarnAssumeNoEnumNeverFails, "assume_no_enum argument can never be an enum variant; the assumption always holds")
		} else if enums == len(arg.Singles) {
			global.warn(WarnAssumeNoEnumAlwaysFails, "assume_no_enum argument is always an enum variant; this call always aborts")
		}
	}
}

// lowerFor lowers a For loop (spec §4.3.4 "For"): the container is
// lowered in the enclosing scope, its inner_types union becomes the
// loop variable's narrowed binding in a cloned scope, and the body is
// lowered against that.
func lowerFor(global *GlobalInfo, local *localInfo, raw *parsedtree.Statement) (*runnable.Statement, *Error) {
	container, err := lowerStatement(global, local, raw.ForIn)
	if err != nil {
		return nil, err
	}
	inner := container.Out(global.Types).InnerTypes(global.Types)
	if inner.IsEmpty() {
		return nil, &Error{Kind: ErrForLoopContainerHasNoInnerTypes}
	}
	forLocal, cell := local.narrowed(raw.ForVar, inner)
	body, err := lowerStatement(global, forLocal, raw.ForBody)
	if err != nil {
		return nil, err
	}
	return &runnable.Statement{Kind: runnable.RFor, ForVar: cell, ForContainer: container, ForBody: body}, nil
}

// lowerSwitch lowers a Switch (spec §4.3.4 "Switch"): each case's
// guard narrows SwitchOn's type in a cloned scope for that arm's body.
// With force set, the union of every case's guard type must cover
// SwitchOn's full declared type (ErrCaseForceButTypeNotCovered
// otherwise).
func lowerSwitch(global *GlobalInfo, local *localInfo, raw *parsedtree.Statement) (*runnable.Statement, *Error) {
	on, ok := local.vars[raw.SwitchOn]
	if !ok {
		return nil, &Error{Kind: ErrUseOfUndefinedVariable, Name: raw.SwitchOn}
	}
	onStmt := &runnable.Statement{Kind: runnable.RVariable, VarCell: on.Cell, VarType: on.Type}

	covered := vtype.Empty()
	cases := make([]runnable.SwitchCase, len(raw.Cases))
	for i, c := range raw.Cases {
		if err := checkTypeKnown(global, c.CaseType); err != nil {
			return nil, err
		}
		covered = vtype.Union(covered, c.CaseType, global.Types)
		caseLocal, cell := local.narrowed(raw.SwitchOn, c.CaseType)
		body, err := lowerStatement(global, caseLocal, c.Body)
		if err != nil {
			return nil, err
		}
		assignTo := &runnable.Statement{Kind: runnable.RVariable, VarCell: cell, VarType: c.CaseType, IsRef: true}
		cases[i] = runnable.SwitchCase{CaseType: c.CaseType, AssignTo: assignTo, Body: body}
	}

	if raw.Force {
		if uncovered := on.Type.FitsIn(covered, global.Types); len(uncovered) != 0 {
			return nil, &Error{Kind: ErrCaseForceButTypeNotCovered, Found: vtype.Of(uncovered...), Info: global.Types}
		}
	}

	return &runnable.Statement{Kind: runnable.RSwitch, SwitchOn: onStmt, SwitchCases: cases, SwitchForced: raw.Force}, nil
}

// lowerMatch lowers a Match (spec §4.3.4 "Match"): each condition is
// lowered with SwitchOn still at its original (unnarrowed) type, run
// through the Matches protocol to find the success union, and that
// union becomes SwitchOn's binding for the arm's body. An arm whose
// success union is empty can never fire and is skipped entirely
// (WarnDeadMatchArm); an arm that always succeeds before the last one
// makes every later arm unreachable (WarnIrrefutableMatchArm).
func lowerMatch(global *GlobalInfo, local *localInfo, raw *parsedtree.Statement) (*runnable.Statement, *Error) {
	if _, ok := local.vars[raw.SwitchOn]; !ok {
		return nil, &Error{Kind: ErrUseOfUndefinedVariable, Name: raw.SwitchOn}
	}
	var cases []runnable.MatchCase
	for i, c := range raw.Cases {
		condLocal := local.clone()
		cond, err := lowerStatement(global, condLocal, c.Condition)
		if err != nil {
			return nil, err
		}
		condType := cond.Out(global.Types)
		for _, s := range condType.Singles {
			if s.Kind == vtype.KTuple && len(s.Tuple) > 1 {
				return nil, &Error{Kind: ErrMatchConditionInvalidReturn, Found: condType, Info: global.Types}
			}
		}
		canFail, matchedAs := condType.Matches(global.Types)

		if matchedAs.IsEmpty() {
			global.warn(WarnDeadMatchArm, "match arm can never succeed and will never run")
			continue
		}
		if !canFail && i != len(raw.Cases)-1 {
			global.warn(WarnIrrefutableMatchArm, "match arm always succeeds; later arms are unreachable")
		}

		caseLocal, cell := local.narrowed(raw.SwitchOn, matchedAs)
		body, err := lowerStatement(global, caseLocal, c.Body)
		if err != nil {
			return nil, err
		}
		assignTo := &runnable.Statement{Kind: runnable.RVariable, VarCell: cell, VarType: matchedAs, IsRef: true}
		cases = append(cases, runnable.MatchCase{Condition: cond, AssignTo: assignTo, Body: body})
	}
	return &runnable.Statement{Kind: runnable.RMatch, MatchCases: cases}, nil
}
