package parsedtree

import (
	"encoding/json"
	"fmt"
	"io"
)

// Document is the on-disk unit cmd/mers loads: the program's `main`
// function (spec §6.1 "input: args: list<string>") plus whatever
// custom-type and enum-variant names the external front end already
// resolved names for, so diagnostics can print them back by name
// instead of by interned id.
type Document struct {
	Main Function `json:"main"`

	// EnumNames/CustomTypeNames seed vtype.Info's interning tables in
	// declaration order (spec §3.4 "the global info accumulates ...
	// during lowering" — a Document produced ahead of time has already
	// decided the order, typically by first-use in source).
	EnumNames      []string `json:"enum_names,omitempty"`
	CustomTypeNames []string `json:"custom_type_names,omitempty"`
}

// Decode reads a Document from its JSON encoding (spec §6.1 entry
// point contract).
func Decode(r io.Reader) (*Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("parsedtree: decode document: %w", err)
	}
	return &doc, nil
}

// Encode writes doc as JSON, for tooling that produces a parsed tree
// programmatically (tests, a future real front end) rather than by
// hand-writing the document.
func Encode(w io.Writer, doc *Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("parsedtree: encode document: %w", err)
	}
	return nil
}
