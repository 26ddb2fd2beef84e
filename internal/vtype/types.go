// Package vtype implements Mers' type algebra (spec §3.1, §4.1): a
// structural sum-type system where every type is a set of single types
// and subtyping, narrowing, and overload resolution are all expressed
// as operations over that set.
package vtype

import "fmt"

// Kind distinguishes the alternatives a Single can hold. It plays the
// role VSingleType's enum discriminant plays in the original.
type Kind int

const (
	KBool Kind = iota
	KInt
	KFloat
	KString
	KTuple
	KList
	KFunction
	KThread
	KReference
	KEnumVariant
	KCustomType
)

func (k Kind) String() string {
	switch k {
	case KBool:
		return "bool"
	case KInt:
		return "int"
	case KFloat:
		return "float"
	case KString:
		return "string"
	case KTuple:
		return "tuple"
	case KList:
		return "list"
	case KFunction:
		return "function"
	case KThread:
		return "thread"
	case KReference:
		return "reference"
	case KEnumVariant:
		return "enum-variant"
	case KCustomType:
		return "custom-type"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Single is one alternative in a Type union (VSingleType).
//
// Only the fields relevant to Kind are populated; this mirrors a Rust
// enum more closely than a Go interface would, and keeps subtype/get
// logic as plain switches instead of type assertions.
type Single struct {
	Kind Kind

	Tuple []Type // KTuple: fixed-arity element types
	List  *Type  // KList: homogeneous inner union

	Rows []FuncRow // KFunction: overload table

	Thread *Type // KThread: wrapped result union

	Ref *Single // KReference: pointed-to single type

	EnumID      int   // KEnumVariant: interned variant id
	EnumPayload *Type // KEnumVariant: payload union

	CustomID int // KCustomType: interned alias id
}

// FuncRow is one row of a Function single type's overload table: an
// input signature (one single type per parameter) paired with that
// row's output union.
type FuncRow struct {
	Ins []Single
	Out Type
}

// Type is a set of Single alternatives, treated as their disjunction
// (VType). Construction should go through Add/AddType so that
// subtype-contained duplicates are collapsed; a Type built by appending
// to Singles directly may contain redundant alternatives.
type Type struct {
	Singles []Single
}

// Empty returns the empty union (no values satisfy it).
func Empty() Type { return Type{} }

// Of builds a Type containing exactly the given singles, without
// deduplication. Used for literals where the caller already knows the
// singles are disjoint (e.g. a freshly built Tuple/List/primitive).
func Of(s ...Single) Type { return Type{Singles: append([]Single(nil), s...)} }

func bare(k Kind) Single { return Single{Kind: k} }

func Bool() Single   { return bare(KBool) }
func Int() Single    { return bare(KInt) }
func Float() Single  { return bare(KFloat) }
func String() Single { return bare(KString) }

func Tuple(elems ...Type) Single { return Single{Kind: KTuple, Tuple: elems} }

// Unit is the zero-arity tuple `[]`, used throughout as the "no value"
// result of statements that don't produce one.
func Unit() Single { return Tuple() }

func List(inner Type) Single { return Single{Kind: KList, List: &inner} }

func Function(rows ...FuncRow) Single { return Single{Kind: KFunction, Rows: rows} }

func Thread(out Type) Single { return Single{Kind: KThread, Thread: &out} }

func Reference(inner Single) Single { return Single{Kind: KReference, Ref: &inner} }

func EnumVariant(id int, payload Type) Single {
	return Single{Kind: KEnumVariant, EnumID: id, EnumPayload: &payload}
}

func CustomType(id int) Single { return Single{Kind: KCustomType, CustomID: id} }

// ToType wraps a single alternative as a one-member union.
func (s Single) ToType() Type { return Type{Singles: []Single{s}} }

// Clone returns a deep-enough copy for safe independent mutation of
// the Singles slice (the leaf scalars are small value types already).
func (t Type) Clone() Type {
	out := make([]Single, len(t.Singles))
	copy(out, t.Singles)
	return Type{Singles: out}
}

func (t Type) IsEmpty() bool { return len(t.Singles) == 0 }
