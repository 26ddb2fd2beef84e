// Package parsedtree is the external parser's output contract (spec
// §3.3): the tree internal/lowering consumes. No lexer or parser lives
// in this module (spec.md §1 Non-goals, "surface syntax / parser") —
// a document in this shape is expected to arrive from an external
// front end, so the package also carries a JSON encoding for it.
package parsedtree

import "github.com/funvibe/mers/internal/vtype"

// StatementKind discriminates the SStatementEnum alternatives a
// Statement can hold.
type StatementKind int

const (
	SValue StatementKind = iota
	STuple
	SList
	SVariable
	SFunctionCall
	SFunctionDefinition
	SBlock_ // avoid clashing with the Block type name
	SIf
	SLoop
	SFor
	SSwitch
	SMatch
	SIndexFixed
	SEnumVariant
	STypeDefinition
	SMacroStaticMers
)

// Statement is SStatement: one parsed statement plus the two
// cross-cutting annotations every statement carries regardless of
// kind (spec §4.3.2 "force_output_type"/"output_to"; the output_to
// target's "derefs" count, spec §3.3, lives inside OutputTo).
type Statement struct {
	Kind StatementKind

	// payloads, one populated per Kind
	Value          Value        // SValue
	Elements       []*Statement // STuple, SList
	VarName        string       // SVariable, SFunctionCall (callee name), SFunctionDefinition (empty for an anonymous function literal), STypeDefinition, SEnumVariant
	VarIsReference bool         // SVariable
	Args           []*Statement // SFunctionCall
	FunctionDef    *Function    // SFunctionDefinition
	Block          *Block       // SBlock_
	Cond           *Statement   // SIf
	Then           *Statement   // SIf
	Else           *Statement   // SIf (nil = no else branch)
	LoopBody       *Statement   // SLoop
	ForVar         string       // SFor
	ForIn          *Statement   // SFor
	ForBody        *Statement   // SFor
	SwitchOn       string       // SSwitch, SMatch: name of the variable being narrowed (spec §3.3 "Switch(varname, ...)"/"Match(varname, ...)")
	Cases          []Case       // SSwitch, SMatch
	Force          bool         // SSwitch: force exhaustiveness
	IndexOf        *Statement   // SIndexFixed
	Index          int          // SIndexFixed
	EnumVariant    string       // SEnumVariant
	EnumInner      *Statement   // SEnumVariant
	TypeDef        vtype.Type   // STypeDefinition

	// cross-cutting annotations (spec §4.3.2)
	ForceOutputType *vtype.Type // nil = not forced
	OutputTo        *OutputTo   // nil = statement isn't an assignment target
}

// OutputTo is the `(target, derefs)` pair lowering resolves into a
// write-back target (spec §4.3.2 "output_to"); lowering works out
// is_init itself.
type OutputTo struct {
	Target *Statement
	Derefs int
}

// Case is one Switch/Match arm. A Switch arm is guarded by a declared
// type (CaseType); a Match arm is guarded by evaluating Condition and
// running it through the Matches protocol (spec §3.3 "Match(varname,
// (cond,body)...)") — exactly one of the two is populated, per the
// enclosing Statement's Kind.
type Case struct {
	CaseType  vtype.Type // SSwitch
	Condition *Statement // SMatch
	Body      *Statement
}

// Value is an already-evaluated literal the parser produced directly
// (spec §3.3 "Macro::StaticMers" and literal statements): lowering
// just wraps it, it never re-derives a type for it beyond OutSingle.
type Value struct {
	Kind   vtype.Kind
	Bool   bool
	Int    int
	Float  float64
	Str    string
	Tuple  []Value
}

// Function is SFunction: a name-annotated parameter list (each
// parameter's declared union may itself contain many singles, which
// is what drives lowering's cartesian overload-table construction)
// plus the body block.
type Function struct {
	Inputs []Param
	Block  *Block
}

type Param struct {
	Name string
	Type vtype.Type
}

// Block is SBlock: a straight-line sequence of statements: the value
// of the last one is the block's value.
type Block struct {
	Statements []*Statement
}
