package library

import (
	"bytes"
	"testing"

	"github.com/funvibe/mers/internal/value"
	"github.com/funvibe/mers/internal/vtype"
)

func TestValueRoundTrips(t *testing.T) {
	cases := []*value.Cell{
		value.NewCell(value.NewBool(true)),
		value.NewCell(value.NewInt(-42)),
		value.NewCell(value.NewFloat(3.5)),
		value.NewCell(value.NewString("hi")),
		value.NewCell(value.NewTuple(value.NewCell(value.NewInt(1)), value.NewCell(value.NewString("a")))),
		value.NewCell(value.NewList(vtype.Int().ToType(), value.NewCell(value.NewInt(1)), value.NewCell(value.NewInt(2)))),
		value.NewCell(value.NewEnumVariant(0, value.NewCell(value.NewString("boom")))),
	}
	for _, c := range cases {
		var buf bytes.Buffer
		if err := EncodeValue(&buf, c); err != nil {
			t.Fatalf("encode: %v", err)
		}
		got, err := DecodeValue(&buf)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if !value.Equal(mustData(c), mustData(got)) {
			t.Errorf("round trip mismatch: got %v", got)
		}
	}
}

func mustData(c *value.Cell) *value.Data {
	var d *value.Data
	value.OperateImmut(c, func(inner *value.Data) { d = inner })
	return d
}

func TestTypeRoundTrips(t *testing.T) {
	in := vtype.Union(vtype.Int().ToType(), vtype.List(vtype.String().ToType()).ToType(), nil)
	var buf bytes.Buffer
	if err := EncodeType(&buf, in); err != nil {
		t.Fatalf("encode: %v", err)
	}
	out, err := DecodeType(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Singles) != len(in.Singles) {
		t.Fatalf("got %d singles, want %d", len(out.Singles), len(in.Singles))
	}
}
