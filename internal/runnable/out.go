package runnable

import "github.com/funvibe/mers/internal/vtype"

// Out is RStatement::out (spec §4.3): the statically known output
// union. An output_to statement always reports `[]` regardless of its
// inner type — load-bearing, since `if a = b {}` must never type-check
// as a boolean condition just because `=` happens to read like `==`.
func (s *Statement) Out(info *vtype.Info) vtype.Type {
	if s.OutputTo != nil {
		return vtype.Unit().ToType()
	}
	if s.ForceOutputType != nil {
		return *s.ForceOutputType
	}
	out := s.outInner(info)
	for i := 0; i < s.Derefs; i++ {
		deref, ok := out.Dereference(info)
		if !ok {
			panic("can't dereference (Out)")
		}
		out = deref
	}
	return out
}

func (s *Statement) outInner(info *vtype.Info) vtype.Type {
	switch s.Kind {
	case RValue:
		return s.Value.Out().ToType()
	case RTuple:
		elems := make([]vtype.Type, len(s.Elements))
		for i, e := range s.Elements {
			elems[i] = e.Out(info)
		}
		return vtype.Tuple(elems...).ToType()
	case RList:
		inner := vtype.Empty()
		for _, e := range s.Elements {
			inner.AddTypes(e.Out(info), info)
		}
		return vtype.List(inner).ToType()
	case RVariable:
		if s.IsRef {
			out := vtype.Empty()
			for _, single := range s.VarType.Singles {
				out.Add(vtype.Reference(single), info)
			}
			return out
		}
		return s.VarType
	case RFunctionCall:
		args := make([]vtype.Type, len(s.Args))
		for i, a := range s.Args {
			args[i] = a.Out(info)
		}
		if s.Callee != nil {
			out, _ := vtype.ResolveCall(flattenFunctionRows(s.Callee.Out(info)), args, info)
			return out
		}
		out, _ := vtype.ResolveCall(toRows(s.Function.IOMap), args, info)
		return out
	case RBuiltinCall:
		args := make([]vtype.Type, len(s.Args))
		for i, a := range s.Args {
			args[i] = a.Out(info)
		}
		return s.Builtin.Returns(args, info)
	case RLibCall:
		return s.Lib.Out
	case RBlockStmt:
		return s.Block.Out(info)
	case RIf:
		thenOut := s.Then.Out(info)
		if s.Else != nil {
			return vtype.Union(thenOut, s.Else.Out(info), info)
		}
		return vtype.Union(thenOut, vtype.Unit().ToType(), info)
	case RLoop:
		_, matchedAs := s.LoopBody.Out(info).Matches(info)
		return matchedAs
	case RFor:
		_, matchedAs := s.ForBody.Out(info).Matches(info)
		return vtype.Union(vtype.Unit().ToType(), matchedAs, info)
	case RSwitch:
		out := vtype.Unit().ToType()
		if s.SwitchForced {
			out = vtype.Empty()
		}
		for _, c := range s.SwitchCases {
			out = vtype.Union(out, c.Body.Out(info), info)
		}
		return out
	case RMatch:
		out := vtype.Empty()
		canFail := true
		for _, c := range s.MatchCases {
			out = vtype.Union(out, c.Body.Out(info), info)
			failThis, _ := c.Condition.Out(info).Matches(info)
			if !failThis {
				canFail = false
				break
			}
		}
		if canFail {
			out = vtype.Union(out, vtype.Unit().ToType(), info)
		}
		return out
	case RIndexFixed:
		got, ok := s.IndexOf.Out(info).GetAlways(s.Index, info)
		if !ok {
			panic("index not always present (Out)")
		}
		return got
	case REnumVariant:
		return vtype.EnumVariant(s.EnumID, s.EnumInner.Out(info)).ToType()
	default:
		panic("runnable: invalid Kind in Out")
	}
}

// Out is RBlock::out.
func (b *Block) Out(info *vtype.Info) vtype.Type {
	if len(b.Statements) == 0 {
		return vtype.Unit().ToType()
	}
	return b.Statements[len(b.Statements)-1].Out(info)
}

// OutVT is RFunction::out_vt: the union of every IOMap row's output
// whose input signature is entailed by the given argument types (used
// by call-site typing — see vtype.ResolveCall, which this forwards
// IOMap's rows to so the two never drift apart).
func (f *Function) OutVT(args []vtype.Type, info *vtype.Info) vtype.Type {
	out, _ := vtype.ResolveCall(toRows(f.IOMap), args, info)
	return out
}

// flattenFunctionRows collects every overload row across all Function
// alternatives of t, for resolving a call made through a value (an
// RFunctionCall with Callee set) rather than a statically known
// *Function.
func flattenFunctionRows(t vtype.Type) []vtype.FuncRow {
	var rows []vtype.FuncRow
	for _, single := range t.Singles {
		if single.Kind == vtype.KFunction {
			rows = append(rows, single.Rows...)
		}
	}
	return rows
}

func toRows(ioMap []IOMapEntry) []vtype.FuncRow {
	rows := make([]vtype.FuncRow, len(ioMap))
	for i, e := range ioMap {
		rows[i] = vtype.FuncRow{Ins: e.Ins, Out: e.Out}
	}
	return rows
}
