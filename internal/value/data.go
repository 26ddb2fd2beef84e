// Package value implements Mers' runtime value model (spec §3.2): the
// tagged VDataEnum variants, the copy-on-write storage cell beneath
// every value, and the thread/reference semantics built on top of it.
package value

import "github.com/funvibe/mers/internal/vtype"

// Function is the subset of a runnable function's identity that the
// value model needs: enough to carry a callable value around and
// describe its type, without internal/value importing internal/runnable
// (which itself depends on value for call arguments/results).
type Function interface {
	// Signature is the function's compiled overload table.
	Signature() vtype.Single
}

// ListData is the payload of a KList Data: the declared element union
// (spec §3.1 "List(VType)") plus the live element cells.
type ListData struct {
	ElemType vtype.Type
	Elems    []*Cell
}

// Data is one concrete value (VDataEnum): exactly one of the fields
// below is meaningful, selected by Kind.
type Data struct {
	Kind vtype.Kind

	Bool   bool
	Int    int
	Float  float64
	Str    string

	Tuple []*Cell
	List  *ListData

	Fn Function

	Thread *ThreadHandle

	Ref *Cell

	EnumID      int
	EnumPayload *Cell
}

func NewBool(b bool) *Data     { return &Data{Kind: vtype.KBool, Bool: b} }
func NewInt(i int) *Data       { return &Data{Kind: vtype.KInt, Int: i} }
func NewFloat(f float64) *Data { return &Data{Kind: vtype.KFloat, Float: f} }
func NewString(s string) *Data { return &Data{Kind: vtype.KString, Str: s} }

func NewTuple(elems ...*Cell) *Data {
	return &Data{Kind: vtype.KTuple, Tuple: elems}
}

// Unit is the zero-arity tuple `[]`, Mers' "no value".
func Unit() *Data { return NewTuple() }

func NewList(elemType vtype.Type, elems ...*Cell) *Data {
	return &Data{Kind: vtype.KList, List: &ListData{ElemType: elemType, Elems: elems}}
}

func NewFunction(fn Function) *Data {
	return &Data{Kind: vtype.KFunction, Fn: fn}
}

func NewThread(th *ThreadHandle) *Data {
	return &Data{Kind: vtype.KThread, Thread: th}
}

func NewReference(target *Cell) *Data {
	return &Data{Kind: vtype.KReference, Ref: target}
}

func NewEnumVariant(id int, payload *Cell) *Data {
	return &Data{Kind: vtype.KEnumVariant, EnumID: id, EnumPayload: payload}
}

// OutSingle is the value's runtime type (spec §3.1 "out_single").
func (d *Data) OutSingle() vtype.Single {
	switch d.Kind {
	case vtype.KBool:
		return vtype.Bool()
	case vtype.KInt:
		return vtype.Int()
	case vtype.KFloat:
		return vtype.Float()
	case vtype.KString:
		return vtype.String()
	case vtype.KTuple:
		elems := make([]vtype.Type, len(d.Tuple))
		for i, c := range d.Tuple {
			elems[i] = c.Out().ToType()
		}
		return vtype.Tuple(elems...)
	case vtype.KList:
		return vtype.List(d.List.ElemType)
	case vtype.KFunction:
		return d.Fn.Signature()
	case vtype.KThread:
		return vtype.Thread(d.Thread.OutType())
	case vtype.KReference:
		return vtype.Reference(d.Ref.Out())
	case vtype.KEnumVariant:
		return vtype.EnumVariant(d.EnumID, d.EnumPayload.Out().ToType())
	default:
		panic("value.Data: invalid Kind in OutSingle")
	}
}

// SafeToShare reports whether a value can cross a thread boundary
// without violating per-cell exclusivity (spec §3.3 "thread(fn,args)"
// — arguments must be safe to share; Threads, References and
// EnumVariants aren't, since they alias mutable state or nest values
// that might).
func (d *Data) SafeToShare() bool {
	switch d.Kind {
	case vtype.KBool, vtype.KInt, vtype.KFloat, vtype.KString, vtype.KFunction:
		return true
	case vtype.KTuple:
		for _, c := range d.Tuple {
			if !c.SafeToShare() {
				return false
			}
		}
		return true
	case vtype.KList:
		for _, c := range d.List.Elems {
			if !c.SafeToShare() {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Clone is the value-level clone used by CloneData (spec §3.2 "Cell
// states"): every variant is copied independently except Reference,
// which clones as a shared mutable alias so that cloning a tuple
// containing a reference doesn't sever the aliasing it carries.
func (d *Data) Clone() *Data {
	switch d.Kind {
	case vtype.KReference:
		return NewReference(CloneMut(d.Ref))
	case vtype.KTuple:
		elems := make([]*Cell, len(d.Tuple))
		for i, c := range d.Tuple {
			elems[i] = CloneData(c)
		}
		return NewTuple(elems...)
	case vtype.KList:
		elems := make([]*Cell, len(d.List.Elems))
		for i, c := range d.List.Elems {
			elems[i] = CloneData(c)
		}
		return NewList(d.List.ElemType, elems...)
	case vtype.KEnumVariant:
		return NewEnumVariant(d.EnumID, CloneData(d.EnumPayload))
	case vtype.KFunction:
		return NewFunction(d.Fn)
	case vtype.KThread:
		return NewThread(d.Thread)
	default:
		cp := *d
		return &cp
	}
}

// Equal is Mers' `==` (spec builtins "eq"): structural, with
// References compared by their current dereferenced value, not by
// identity.
func Equal(a, b *Data) bool {
	if a.Kind == vtype.KReference {
		return OperateImmutValue(a.Ref, func(ad *Data) bool { return Equal(ad, b) })
	}
	if b.Kind == vtype.KReference {
		return OperateImmutValue(b.Ref, func(bd *Data) bool { return Equal(a, bd) })
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case vtype.KBool:
		return a.Bool == b.Bool
	case vtype.KInt:
		return a.Int == b.Int
	case vtype.KFloat:
		return a.Float == b.Float
	case vtype.KString:
		return a.Str == b.Str
	case vtype.KTuple:
		return cellsEqual(a.Tuple, b.Tuple)
	case vtype.KList:
		return cellsEqual(a.List.Elems, b.List.Elems)
	case vtype.KEnumVariant:
		return a.EnumID == b.EnumID && OperateImmutValue(a.EnumPayload, func(ad *Data) bool {
			return OperateImmutValue(b.EnumPayload, func(bd *Data) bool { return Equal(ad, bd) })
		})
	default:
		return false
	}
}

func cellsEqual(a, b []*Cell) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !OperateImmutValue(a[i], func(ad *Data) bool {
			return OperateImmutValue(b[i], func(bd *Data) bool { return Equal(ad, bd) })
		}) {
			return false
		}
	}
	return true
}
