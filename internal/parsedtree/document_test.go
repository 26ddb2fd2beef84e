package parsedtree

import (
	"bytes"
	"testing"

	"github.com/funvibe/mers/internal/vtype"
)

func TestDocumentRoundTrips(t *testing.T) {
	doc := &Document{
		Main: Function{
			Inputs: []Param{{Name: "args", Type: vtype.List(vtype.String().ToType()).ToType()}},
			Block: &Block{
				Statements: []*Statement{
					{Kind: SValue, Value: Value{Kind: vtype.KInt, Int: 1}},
				},
			},
		},
		EnumNames: []string{"Err", "Some", "None"},
	}

	var buf bytes.Buffer
	if err := Encode(&buf, doc); err != nil {
		t.Fatalf("encode: %v", err)
	}

	got, err := Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got.Main.Inputs) != 1 || got.Main.Inputs[0].Name != "args" {
		t.Fatalf("main function inputs did not round-trip: %+v", got.Main.Inputs)
	}
	if len(got.Main.Block.Statements) != 1 || got.Main.Block.Statements[0].Value.Int != 1 {
		t.Fatal("block statements did not round-trip")
	}
	if len(got.EnumNames) != 3 || got.EnumNames[0] != "Err" {
		t.Fatalf("enum names did not round-trip: %v", got.EnumNames)
	}
}
