package value

import (
	"fmt"

	"github.com/funvibe/mers/internal/vtype"
)

// Get is the runtime counterpart of vtype.Type.Get: the value at index
// i as a fresh independent clone (spec §3.1 "get(self,i)"), except
// through a Reference, where the result is GetRef's Reference aliasing
// the referent's element.
func Get(c *Cell, i int) (*Cell, bool) {
	var out *Cell
	var ok bool
	OperateImmut(c, func(d *Data) { out, ok = d.get(i) })
	return out, ok
}

func (d *Data) get(i int) (*Cell, bool) {
	switch d.Kind {
	case vtype.KString:
		runes := []rune(d.Str)
		if i < 0 || i >= len(runes) {
			return nil, false
		}
		return NewCell(NewString(string(runes[i]))), true
	case vtype.KTuple:
		if i < 0 || i >= len(d.Tuple) {
			return nil, false
		}
		return CloneData(d.Tuple[i]), true
	case vtype.KList:
		if i < 0 || i >= len(d.List.Elems) {
			return nil, false
		}
		return CloneData(d.List.Elems[i]), true
	case vtype.KReference:
		return GetRef(CloneMut(d.Ref), i)
	case vtype.KEnumVariant:
		return Get(d.EnumPayload, i)
	default:
		return nil, false
	}
}

// GetRef is Get, but the result is always Reference-wrapped so writes
// through it land back on the original storage (spec §3.1 "get_ref").
// It requires mutable access to c because indexing a Reference follows
// it through a write-context lock.
func GetRef(c *Cell, i int) (*Cell, bool) {
	var out *Cell
	var ok bool
	OperateMut(c, func(d *Data) {
		inner, innerOK := d.getRefInner(i)
		if !innerOK {
			return
		}
		out, ok = NewCell(NewReference(inner)), true
	})
	return out, ok
}

func (d *Data) getRefInner(i int) (*Cell, bool) {
	switch d.Kind {
	case vtype.KTuple:
		if i < 0 || i >= len(d.Tuple) {
			return nil, false
		}
		return CloneMut(d.Tuple[i]), true
	case vtype.KList:
		if i < 0 || i >= len(d.List.Elems) {
			return nil, false
		}
		return CloneMut(d.List.Elems[i]), true
	case vtype.KReference:
		return GetRef(d.Ref, i)
	case vtype.KEnumVariant:
		return GetRef(d.EnumPayload, i)
	default:
		return nil, false
	}
}

// Deref follows a Reference one level (spec §3.1 "deref"); ok is false
// for any other Kind.
func Deref(c *Cell) (*Cell, bool) {
	var out *Cell
	var ok bool
	OperateImmut(c, func(d *Data) {
		if d.Kind != vtype.KReference {
			return
		}
		out, ok = CloneMut(d.Ref), true
	})
	return out, ok
}

// Matches implements the runtime half of the Matches protocol (spec
// GLOSSARY "Matches protocol"): ok is false when the value fails to
// match (e.g. `false`, or an EnumVariant — always treated as a
// non-match at the value level, matching the type-level rule that any
// bare enum variant can fail); the returned cell is the bound value on
// success.
func Matches(c *Cell) (*Cell, bool) {
	var out *Cell
	var ok bool
	OperateImmut(c, func(d *Data) {
		switch d.Kind {
		case vtype.KTuple:
			if len(d.Tuple) == 0 {
				return
			}
			out, ok = CloneData(d.Tuple[0]), true
		case vtype.KBool:
			if !d.Bool {
				return
			}
			out, ok = NewCell(NewBool(true)), true
		case vtype.KEnumVariant:
			return
		default:
			// c's own lock is held here; clone from d directly rather
			// than through CloneData(c), which would re-acquire it.
			out, ok = NewCell(d.Clone()), true
		}
	})
	return out, ok
}

// NoEnum unwraps an EnumVariant down to its payload, or clones self
// unchanged for any other Kind (spec "noenum").
func NoEnum(c *Cell) *Cell {
	return OperateImmutValue(c, func(d *Data) *Cell {
		if d.Kind == vtype.KEnumVariant {
			return CloneData(d.EnumPayload)
		}
		return NewCell(d.Clone())
	})
}

// AssignData overwrites c's value outright, going through the COW
// contract (spec "assign_data").
func AssignData(c *Cell, newData *Data) {
	OperateMut(c, func(d *Data) { *d = *newData })
}

// Assign copies src's current value into c, affecting every Mut alias
// of c but leaving any ClonedFrom snapshots of c untouched (spec
// "assign").
func Assign(c *Cell, src *Cell) {
	var cp *Data
	OperateImmut(src, func(d *Data) { cp = d.Clone() })
	AssignData(c, cp)
}

// AssignTo performs the destructuring assignment that backs `x = y`
// and `(a, b) = pair` alike (spec §4.3.2 "output_to"): src's value is
// written into target, recursing element-wise into tuples/lists and
// following one more Reference indirection when target holds one.
// It panics on a target Kind that can't be assigned to at all, mirroring
// the reference implementation's fatal `todo!("ERR: Cannot assign to
// {o}")`.
func AssignTo(src *Cell, target *Cell) {
	OperateMut(target, func(t *Data) {
		switch t.Kind {
		case vtype.KTuple:
			assignToCells(src, t.Tuple)
		case vtype.KList:
			assignToCells(src, t.List.Elems)
		case vtype.KReference:
			Assign(t.Ref, src)
		default:
			panic(fmt.Sprintf("cannot assign to a value of kind %s", t.Kind))
		}
	})
}

func assignToCells(src *Cell, targetElems []*Cell) {
	for i, elem := range targetElems {
		srcElem, ok := Get(src, i)
		if !ok {
			panic(fmt.Sprintf("tried to assign to a tuple/list, but the source had no element at index %d", i))
		}
		AssignTo(srcElem, elem)
	}
}
