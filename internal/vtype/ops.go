package vtype

// Add inserts a single alternative, collapsing it if an existing
// member already covers it (spec §3.1 "union collapses via subtype
// containment").
func (t *Type) Add(s Single, info *Info) {
	if !t.Contains(s, info) {
		t.Singles = append(t.Singles, s)
	}
}

// AddType unions another single into t by value (helper mirroring the
// original's add_typer, used where the caller holds a Single already
// sourced from elsewhere and doesn't want to clone it again).
func (t *Type) AddType(s Single, info *Info) { t.Add(s, info) }

// AddTypes unions every member of other into t (spec §3.1 "any 'add'
// of a VType recursively adds its members").
func (t *Type) AddTypes(other Type, info *Info) {
	for _, s := range other.Singles {
		t.Add(s, info)
	}
}

// Union builds a fresh Type containing every member of a and b, deduped.
func Union(a, b Type, info *Info) Type {
	out := a.Clone()
	out.AddTypes(b, info)
	return out
}

// Dereference unwraps every member, which must all be References (spec
// §3.1 "dereference(t)"); fails (ok=false) if any member isn't one.
func (t Type) Dereference(info *Info) (Type, bool) {
	out := Empty()
	for _, s := range t.Singles {
		inner, ok := s.Deref()
		if !ok {
			return Type{}, false
		}
		out.Add(inner, info)
	}
	return out, true
}

// Deref unwraps a single Reference; ok is false for any other Kind.
func (s Single) Deref() (Single, bool) {
	if s.Kind != KReference {
		return Single{}, false
	}
	return *s.Ref, true
}

// Reference wraps every member of t in a Reference single.
func (t Type) Reference() Type {
	out := make([]Single, len(t.Singles))
	for i, s := range t.Singles {
		out[i] = Reference(s)
	}
	return Type{Singles: out}
}

// IsReference reports whether every (true) or no (false) member is a
// Reference; ok is false for an empty or mixed union (spec
// "is_reference").
func (t Type) IsReference() (isRef bool, ok bool) {
	var hasRef, hasNonRef bool
	for _, s := range t.Singles {
		if s.Kind == KReference {
			hasRef = true
		} else {
			hasNonRef = true
		}
	}
	if hasRef == hasNonRef {
		return false, false
	}
	return hasRef, true
}

// Get is the element-at-index type for tuple/list/string/reference
// access (spec §3.1 "get(t,i)"); ok is false if any member isn't
// indexable at all.
func (t Type) Get(i int, info *Info) (Type, bool) {
	out := Empty()
	for _, s := range t.Singles {
		got, ok := s.Get(i, info)
		if !ok {
			return Type{}, false
		}
		out.AddTypes(got, info)
	}
	return out, true
}

func (s Single) Get(i int, info *Info) (Type, bool) {
	switch s.Kind {
	case KString:
		return String().ToType(), true
	case KTuple:
		if i < 0 || i >= len(s.Tuple) {
			return Type{}, false
		}
		return s.Tuple[i], true
	case KList:
		return *s.List, true
	case KReference:
		return s.Ref.GetRef(i, info)
	case KCustomType:
		return info.CustomTypeAlias(s.CustomID).Get(i, info)
	default:
		return Type{}, false
	}
}

// GetRef is Get, but always yields a Reference to the element (spec
// "get_ref"), used for `&x.0`-style mutable access.
func (t Type) GetRef(i int, info *Info) (Type, bool) {
	out := Empty()
	for _, s := range t.Singles {
		got, ok := s.GetRef(i, info)
		if !ok {
			return Type{}, false
		}
		out.AddTypes(got, info)
	}
	return out, true
}

func (s Single) GetRef(i int, info *Info) (Type, bool) {
	switch s.Kind {
	case KString:
		// strings aren't referenceable element-wise (matches the
		// original: get_ref on String returns String, not &String).
		return String().ToType(), true
	case KTuple:
		if i < 0 || i >= len(s.Tuple) {
			return Type{}, false
		}
		return s.Tuple[i].Reference(), true
	case KList:
		return s.List.Reference(), true
	case KReference:
		return s.Ref.GetRef(i, info)
	case KCustomType:
		inner, ok := info.CustomTypeAlias(s.CustomID).Get(i, info)
		if !ok {
			return Type{}, false
		}
		return inner.Reference(), true
	default:
		return Type{}, false
	}
}

// GetAlways reports the element type at index i only if *every*
// alternative is guaranteed to supply it (spec "get_always", used by
// IndexFixed lowering): only fixed-arity Tuple (and References/custom
// types expanding to one) qualify — List and String may be shorter
// than i at runtime.
func (t Type) GetAlways(i int, info *Info) (Type, bool) {
	out := Empty()
	for _, s := range t.Singles {
		got, ok := s.GetAlways(i, info)
		if !ok {
			return Type{}, false
		}
		out.AddTypes(got, info)
	}
	return out, true
}

func (s Single) GetAlways(i int, info *Info) (Type, bool) {
	switch s.Kind {
	case KTuple:
		if i < 0 || i >= len(s.Tuple) {
			return Type{}, false
		}
		return s.Tuple[i], true
	case KReference:
		return s.Ref.GetAlwaysRef(i, info)
	case KCustomType:
		return info.CustomTypeAlias(s.CustomID).GetAlways(i, info)
	default:
		return Type{}, false
	}
}

func (s Single) GetAlwaysRef(i int, info *Info) (Type, bool) {
	switch s.Kind {
	case KTuple:
		if i < 0 || i >= len(s.Tuple) {
			return Type{}, false
		}
		return s.Tuple[i].Reference(), true
	case KReference:
		return s.Ref.GetAlwaysRef(i, info)
	case KCustomType:
		got, ok := info.CustomTypeAlias(s.CustomID).GetAlways(i, info)
		if !ok {
			return Type{}, false
		}
		return got.Reference(), true
	default:
		return Type{}, false
	}
}

// InnerTypes is the element type seen by a `for` loop (spec "inner_types").
func (t Type) InnerTypes(info *Info) Type {
	out := Empty()
	for _, s := range t.Singles {
		out.AddTypes(s.InnerTypes(info), info)
	}
	return out
}

func (s Single) InnerTypes(info *Info) Type {
	switch s.Kind {
	case KTuple:
		out := Empty()
		for _, elem := range s.Tuple {
			out.AddTypes(elem, info)
		}
		return out
	case KList:
		return *s.List
	case KInt:
		// ints iterate 0..n as ints (spec §4.3.4 "For", §9 item 6).
		return Int().ToType()
	case KString:
		// strings iterate one character at a time, each a string.
		return String().ToType()
	case KFunction:
		for _, row := range s.Rows {
			if len(row.Ins) == 0 {
				return row.Out
			}
		}
		return Empty()
	case KReference:
		return s.Ref.innerTypesRef(info)
	default:
		return Empty()
	}
}

// innerTypesRef is InnerTypes for a Reference-wrapped container,
// yielding mutable-alias (Reference) elements so `for` can assign
// through them in place (spec §4.4.1 For, "Reference to tuple/list ->
// element mutable aliases").
func (s Single) innerTypesRef(info *Info) Type {
	switch s.Kind {
	case KTuple:
		out := Empty()
		for _, elem := range s.Tuple {
			out.AddTypes(elem.Reference(), info)
		}
		return out
	case KList:
		return s.List.Reference()
	case KReference:
		return s.Ref.innerTypesRef(info)
	default:
		return Empty()
	}
}

// Matches implements the matches protocol (spec GLOSSARY "Matches
// protocol"): canFail reports whether binding can fail at runtime,
// matchedAs is the union the bound value will have on success.
func (t Type) Matches(info *Info) (canFail bool, matchedAs Type) {
	matchedAs = Empty()
	for _, s := range t.Singles {
		f, m := s.Matches()
		canFail = canFail || f
		matchedAs.AddTypes(m, info)
	}
	return canFail, matchedAs
}

func (s Single) Matches() (canFail bool, matchedAs Type) {
	switch s.Kind {
	case KTuple:
		if len(s.Tuple) == 0 {
			return true, Empty()
		}
		return false, s.Tuple[0]
	case KBool:
		return true, Bool().ToType()
	case KEnumVariant:
		return true, Empty()
	default:
		return false, s.ToType()
	}
}

// NoEnum strips EnumVariant alternatives down to their payload (spec
// "noenum"), used by the `noenum`/`assume_no_enum` builtins.
func (t Type) NoEnum(info *Info) Type {
	out := Empty()
	for _, s := range t.Singles {
		out.AddTypes(s.NoEnum(), info)
	}
	return out
}

func (s Single) NoEnum() Type {
	if s.Kind == KEnumVariant {
		return *s.EnumPayload
	}
	return s.ToType()
}
