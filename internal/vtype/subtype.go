package vtype

// FitsIn is the sole type-error oracle (spec §4.1 "fits_in"): it
// returns the members of t not covered by rhs. An empty result means
// "t is included in rhs".
func (t Type) FitsIn(rhs Type, info *Info) []Single {
	var uncovered []Single
	for _, s := range t.Singles {
		if !s.fitsInType(rhs, info) {
			uncovered = append(uncovered, s)
		}
	}
	traceFitsIn(t, rhs, uncovered, info)
	return uncovered
}

// Contains reports whether s is covered by t (the inverse direction of
// FitsIn, used by Add to dedup on insertion).
func (t Type) Contains(s Single, info *Info) bool {
	return s.fitsInType(t, info)
}

// Equal is true iff t and rhs describe the same set of runtime values
// (mutual FitsIn), not whether they were built identically.
func (t Type) Equal(rhs Type, info *Info) bool {
	return len(t.FitsIn(rhs, info)) == 0 && len(rhs.FitsIn(t, info)) == 0
}

// fitsInType is FitsIn for a single alternative against a union.
func (s Single) fitsInType(rhs Type, info *Info) bool {
	if s.Kind == KCustomType {
		for _, r := range rhs.Singles {
			if r.Kind == KCustomType && r.CustomID == s.CustomID {
				return true
			}
		}
		return len(info.CustomTypeAlias(s.CustomID).FitsIn(rhs, info)) == 0
	}
	for _, r := range rhs.Singles {
		if s.fitsIn(r, info) {
			return true
		}
	}
	return false
}

// fitsIn is the single<->single subtype test (spec §4.1 subtype matrix).
func (a Single) fitsIn(b Single, info *Info) bool {
	switch a.Kind {
	case KCustomType:
		if b.Kind == KCustomType {
			return a.CustomID == b.CustomID
		}
		return len(info.CustomTypeAlias(a.CustomID).FitsIn(b.ToType(), info)) == 0
	}
	if b.Kind == KCustomType {
		return len(a.ToType().FitsIn(info.CustomTypeAlias(b.CustomID), info)) == 0
	}

	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KBool, KInt, KFloat, KString:
		return true
	case KTuple:
		if len(a.Tuple) != len(b.Tuple) {
			return false
		}
		for i := range a.Tuple {
			if len(a.Tuple[i].FitsIn(b.Tuple[i], info)) != 0 {
				return false
			}
		}
		return true
	case KList:
		return len(a.List.FitsIn(*b.List, info)) == 0
	case KReference:
		return a.Ref.fitsIn(*b.Ref, info)
	case KEnumVariant:
		return a.EnumID == b.EnumID && len(a.EnumPayload.FitsIn(*b.EnumPayload, info)) == 0
	case KThread:
		return len(a.Thread.FitsIn(*b.Thread, info)) == 0
	case KFunction:
		return functionFitsIn(a.Rows, b.Rows, info)
	}
	return false
}

// functionFitsIn implements the overload-table subtype rule (spec §4.1,
// §4.3.3): a ⊑ b iff for every row in b, resolving a's overload table
// on that row's input signature yields an output union ⊑ that row's
// output.
func functionFitsIn(a, b []FuncRow, info *Info) bool {
	for _, row := range b {
		args := make([]Type, len(row.Ins))
		for i, s := range row.Ins {
			args[i] = s.ToType()
		}
		out, ok := ResolveCall(a, args, info)
		if !ok {
			return false
		}
		if len(out.FitsIn(row.Out, info)) != 0 {
			return false
		}
	}
	return true
}

// ResolveCall is the per-call-site overload resolution rule (spec
// §4.1 "Overload resolution for a function-call type", §4.3.3): the
// union of every row's output whose input signature is covered by
// args, row-wise. ok is false if no row matched at all.
func ResolveCall(rows []FuncRow, args []Type, info *Info) (Type, bool) {
	out := Empty()
	matched := false
	for _, row := range rows {
		if len(row.Ins) != len(args) {
			continue
		}
		fits := true
		for i, in := range row.Ins {
			if !in.fitsInType(args[i], info) {
				fits = false
				break
			}
		}
		if fits {
			matched = true
			out.AddTypes(row.Out, info)
		}
	}
	return out, matched
}
