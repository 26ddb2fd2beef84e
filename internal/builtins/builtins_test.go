package builtins

import (
	"testing"

	"github.com/funvibe/mers/internal/runnable"
	"github.com/funvibe/mers/internal/value"
	"github.com/funvibe/mers/internal/vtype"
)

func mustLookup(t *testing.T, name string) Builtin {
	t.Helper()
	b, ok := Lookup(name)
	if !ok {
		t.Fatalf("no builtin registered as %q", name)
	}
	return b
}

func runInt(t *testing.T, b Builtin, info *vtype.Info, args ...*value.Cell) int {
	t.Helper()
	out := b.Run(args, nil)
	var got int
	value.OperateImmut(out, func(d *value.Data) {
		if d.Kind != vtype.KInt {
			t.Fatalf("%s: expected int result, got kind %v", b.Name(), d.Kind)
		}
		got = d.Int
	})
	return got
}

func cellsOf(ds ...*value.Data) []*value.Cell {
	cells := make([]*value.Cell, len(ds))
	for i, d := range ds {
		cells[i] = value.NewCell(d)
	}
	return cells
}

func typesOf(cells ...*value.Cell) []vtype.Type {
	ts := make([]vtype.Type, len(cells))
	for i, c := range cells {
		ts[i] = c.Out().ToType()
	}
	return ts
}

func TestArithAddIntInt(t *testing.T) {
	info := vtype.NewInfo()
	add := mustLookup(t, "add")
	args := cellsOf(value.NewInt(3), value.NewInt(4))
	if !add.CanTake(typesOf(args...), info) {
		t.Fatal("add should accept (int int)")
	}
	if got := runInt(t, add, info, args...); got != 7 {
		t.Fatalf("add(3 4) = %d, want 7", got)
	}
	if out := add.Returns(typesOf(args...), info); len(out.Singles) != 1 || out.Singles[0].Kind != vtype.KInt {
		t.Fatalf("add(int int) should return int, got %+v", out)
	}
}

func TestArithAddStringConcat(t *testing.T) {
	info := vtype.NewInfo()
	add := mustLookup(t, "add")
	args := cellsOf(value.NewString("foo"), value.NewString("bar"))
	if !add.CanTake(typesOf(args...), info) {
		t.Fatal("add should accept (string string)")
	}
	out := add.Run(args, nil)
	value.OperateImmut(out, func(d *value.Data) {
		if d.Kind != vtype.KString || d.Str != "foobar" {
			t.Fatalf("add(\"foo\" \"bar\") = %+v, want \"foobar\"", d)
		}
	})
}

func TestArithAddFloatWidening(t *testing.T) {
	info := vtype.NewInfo()
	add := mustLookup(t, "add")
	args := cellsOf(value.NewInt(1), value.NewFloat(2.5))
	if out := add.Returns(typesOf(args...), info); len(out.Singles) != 1 || out.Singles[0].Kind != vtype.KFloat {
		t.Fatalf("add(int float) should widen to float, got %+v", out)
	}
	out := add.Run(args, nil)
	value.OperateImmut(out, func(d *value.Data) {
		if d.Kind != vtype.KFloat || d.Float != 3.5 {
			t.Fatalf("add(1 2.5) = %+v, want 3.5", d)
		}
	})
}

func TestArithAddRejectsMixedKinds(t *testing.T) {
	info := vtype.NewInfo()
	add := mustLookup(t, "add")
	args := cellsOf(value.NewInt(1), value.NewString("x"))
	if add.CanTake(typesOf(args...), info) {
		t.Fatal("add should reject (int string)")
	}
}

func TestArithDivByZeroPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("div by zero should panic")
		}
	}()
	div := mustLookup(t, "div")
	div.Run(cellsOf(value.NewInt(1), value.NewInt(0)), nil)
}

func TestArithComparisons(t *testing.T) {
	info := vtype.NewInfo()
	lt := mustLookup(t, "lt")
	args := cellsOf(value.NewInt(3), value.NewInt(5))
	out := lt.Run(args, nil)
	value.OperateImmut(out, func(d *value.Data) {
		if d.Kind != vtype.KBool || !d.Bool {
			t.Fatalf("lt(3 5) = %+v, want true", d)
		}
	})
	if rt := lt.Returns(typesOf(args...), info); len(rt.Singles) != 1 || rt.Singles[0].Kind != vtype.KBool {
		t.Fatalf("lt should return bool, got %+v", rt)
	}
}

func TestEqAndNe(t *testing.T) {
	eq := mustLookup(t, "eq")
	ne := mustLookup(t, "ne")
	same := cellsOf(value.NewInt(7), value.NewInt(7))
	diff := cellsOf(value.NewInt(7), value.NewInt(8))

	value.OperateImmut(eq.Run(same, nil), func(d *value.Data) {
		if !d.Bool {
			t.Fatal("eq(7 7) should be true")
		}
	})
	value.OperateImmut(ne.Run(diff, nil), func(d *value.Data) {
		if !d.Bool {
			t.Fatal("ne(7 8) should be true")
		}
	})
}

func TestListLen(t *testing.T) {
	info := vtype.NewInfo()
	lenFn := mustLookup(t, "len")
	list := value.NewCell(value.NewList(vtype.Int().ToType(), value.NewCell(value.NewInt(1)), value.NewCell(value.NewInt(2))))
	args := []*value.Cell{list}
	if !lenFn.CanTake(typesOf(args...), info) {
		t.Fatal("len should accept a list")
	}
	if got := runInt(t, lenFn, info, args...); got != 2 {
		t.Fatalf("len([1 2]) = %d, want 2", got)
	}
}

func TestListPushThroughReference(t *testing.T) {
	info := vtype.NewInfo()
	push := mustLookup(t, "push")
	lenFn := mustLookup(t, "len")

	backing := value.NewCell(value.NewList(vtype.Int().ToType(), value.NewCell(value.NewInt(1))))
	ref := value.NewCell(value.NewReference(value.CloneMut(backing)))

	argTypes := []vtype.Type{ref.Out().ToType(), vtype.Int().ToType()}
	if !push.CanTake(argTypes, info) {
		t.Fatal("push should accept (Reference(List(int)) int)")
	}
	push.Run([]*value.Cell{ref, value.NewCell(value.NewInt(2))}, &runnable.EvalContext{Info: info})

	if got := runInt(t, lenFn, info, backing); got != 2 {
		t.Fatalf("after push, len(backing) = %d, want 2", got)
	}
}

func TestListGetReturnsOption(t *testing.T) {
	list := value.NewCell(value.NewList(vtype.Int().ToType(), value.NewCell(value.NewInt(10)), value.NewCell(value.NewInt(20))))
	get := mustLookup(t, "get")

	found := get.Run([]*value.Cell{list, value.NewCell(value.NewInt(1))}, nil)
	value.OperateImmut(found, func(d *value.Data) {
		if d.Kind != vtype.KTuple || len(d.Tuple) != 1 {
			t.Fatalf("get(list 1) should be a 1-tuple, got %+v", d)
		}
		value.OperateImmut(d.Tuple[0], func(inner *value.Data) {
			if inner.Int != 20 {
				t.Fatalf("get(list 1) wrapped value = %d, want 20", inner.Int)
			}
		})
	})

	missing := get.Run([]*value.Cell{list, value.NewCell(value.NewInt(99))}, nil)
	value.OperateImmut(missing, func(d *value.Data) {
		if d.Kind != vtype.KTuple || len(d.Tuple) != 0 {
			t.Fatalf("get(list 99) should be the empty tuple (none), got %+v", d)
		}
	})
}

func TestListPopAndRemove(t *testing.T) {
	pop := mustLookup(t, "pop")
	remove := mustLookup(t, "remove")

	backing := value.NewCell(value.NewList(vtype.Int().ToType(),
		value.NewCell(value.NewInt(1)), value.NewCell(value.NewInt(2)), value.NewCell(value.NewInt(3))))
	ref := value.NewCell(value.NewReference(value.CloneMut(backing)))

	popped := pop.Run([]*value.Cell{ref}, nil)
	value.OperateImmut(popped, func(d *value.Data) {
		value.OperateImmut(d.Tuple[0], func(inner *value.Data) {
			if inner.Int != 3 {
				t.Fatalf("pop should remove the last element (3), got %d", inner.Int)
			}
		})
	})
	value.OperateImmut(backing, func(d *value.Data) {
		if len(d.List.Elems) != 2 {
			t.Fatalf("after pop, backing list should have 2 elements, got %d", len(d.List.Elems))
		}
	})

	removed := remove.Run([]*value.Cell{ref, value.NewCell(value.NewInt(0))}, nil)
	value.OperateImmut(removed, func(d *value.Data) {
		value.OperateImmut(d.Tuple[0], func(inner *value.Data) {
			if inner.Int != 1 {
				t.Fatalf("remove(0) should remove the first element (1), got %d", inner.Int)
			}
		})
	})
	value.OperateImmut(backing, func(d *value.Data) {
		if len(d.List.Elems) != 1 {
			t.Fatalf("after remove, backing list should have 1 element, got %d", len(d.List.Elems))
		}
	})
}

func TestListInsertAtIndex(t *testing.T) {
	backing := value.NewCell(value.NewList(vtype.Int().ToType(), value.NewCell(value.NewInt(1)), value.NewCell(value.NewInt(3))))
	ref := value.NewCell(value.NewReference(value.CloneMut(backing)))
	insert := mustLookup(t, "insert")

	insert.Run([]*value.Cell{ref, value.NewCell(value.NewInt(1)), value.NewCell(value.NewInt(2))}, &runnable.EvalContext{Info: vtype.NewInfo()})

	value.OperateImmut(backing, func(d *value.Data) {
		if len(d.List.Elems) != 3 {
			t.Fatalf("after insert, expected 3 elements, got %d", len(d.List.Elems))
		}
		want := []int{1, 2, 3}
		for i, c := range d.List.Elems {
			value.OperateImmut(c, func(e *value.Data) {
				if e.Int != want[i] {
					t.Fatalf("element %d = %d, want %d", i, e.Int, want[i])
				}
			})
		}
	})
}

func TestBooleanOps(t *testing.T) {
	not := mustLookup(t, "not")
	and := mustLookup(t, "and")
	or := mustLookup(t, "or")

	value.OperateImmut(not.Run(cellsOf(value.NewBool(true)), nil), func(d *value.Data) {
		if d.Bool {
			t.Fatal("not(true) should be false")
		}
	})
	value.OperateImmut(and.Run(cellsOf(value.NewBool(true), value.NewBool(false)), nil), func(d *value.Data) {
		if d.Bool {
			t.Fatal("and(true false) should be false")
		}
	})
	value.OperateImmut(or.Run(cellsOf(value.NewBool(true), value.NewBool(false)), nil), func(d *value.Data) {
		if !d.Bool {
			t.Fatal("or(true false) should be true")
		}
	})
}

func TestStringContainsAndIndexOf(t *testing.T) {
	contains := mustLookup(t, "contains")
	indexOf := mustLookup(t, "index_of")

	value.OperateImmut(contains.Run(cellsOf(value.NewString("hello world"), value.NewString("world")), nil), func(d *value.Data) {
		if !d.Bool {
			t.Fatal(`contains("hello world" "world") should be true`)
		}
	})

	found := indexOf.Run(cellsOf(value.NewString("hello world"), value.NewString("world")), nil)
	value.OperateImmut(found, func(d *value.Data) {
		if d.Kind != vtype.KTuple || len(d.Tuple) != 1 {
			t.Fatalf("index_of match should be a 1-tuple, got %+v", d)
		}
		value.OperateImmut(d.Tuple[0], func(inner *value.Data) {
			if inner.Int != 6 {
				t.Fatalf("index_of(\"hello world\" \"world\") = %d, want 6", inner.Int)
			}
		})
	})

	missing := indexOf.Run(cellsOf(value.NewString("hello"), value.NewString("zzz")), nil)
	value.OperateImmut(missing, func(d *value.Data) {
		if d.Kind != vtype.KTuple || len(d.Tuple) != 0 {
			t.Fatalf("index_of with no match should be the empty tuple, got %+v", d)
		}
	})
}

func TestStringSubstringNegativeIndex(t *testing.T) {
	substring := mustLookup(t, "substring")
	out := substring.Run(cellsOf(value.NewString("hello"), value.NewInt(-3)), nil)
	value.OperateImmut(out, func(d *value.Data) {
		if d.Str != "llo" {
			t.Fatalf(`substring("hello" -3) = %q, want "llo"`, d.Str)
		}
	})
}

func TestStringRegexInvalidPatternReturnsErrEnum(t *testing.T) {
	regex := mustLookup(t, "regex")
	info := vtype.NewInfo()
	ctx := &runnable.EvalContext{Info: info}
	out := regex.Run(cellsOf(value.NewString("abc"), value.NewString("[")), ctx)
	value.OperateImmut(out, func(d *value.Data) {
		if d.Kind != vtype.KEnumVariant {
			t.Fatalf("regex with an invalid pattern should return an Err enum variant, got kind %v", d.Kind)
		}
	})
}

func TestListInsertOutOfRangePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("insert out of range should panic")
		}
	}()
	backing := value.NewCell(value.NewList(vtype.Int().ToType()))
	ref := value.NewCell(value.NewReference(value.CloneMut(backing)))
	insert := mustLookup(t, "insert")
	insert.Run([]*value.Cell{ref, value.NewCell(value.NewInt(5)), value.NewCell(value.NewInt(1))}, nil)
}

func TestStringToBytesRoundTripsThroughBytesToString(t *testing.T) {
	info := vtype.NewInfo()
	toBytes := mustLookup(t, "string_to_bytes")
	toString := mustLookup(t, "bytes_to_string")

	in := cellsOf(value.NewString("héllo"))
	if !toBytes.CanTake(typesOf(in...), info) {
		t.Fatal("string_to_bytes should accept a string")
	}
	bytes := toBytes.Run(in, nil)
	out := toString.Run([]*value.Cell{bytes}, &runnable.EvalContext{Info: info})
	value.OperateImmut(out, func(d *value.Data) {
		if d.Kind != vtype.KString || d.Str != "héllo" {
			t.Fatalf("bytes_to_string(string_to_bytes(s)) = %+v, want the original string back", d)
		}
	})
}

func TestCloneUnwrapsReference(t *testing.T) {
	clone := mustLookup(t, "clone")
	backing := value.NewCell(value.NewInt(3))
	ref := value.NewCell(value.NewReference(value.CloneMut(backing)))

	got := clone.Run([]*value.Cell{ref}, nil)
	value.AssignData(backing, value.NewInt(9))
	value.OperateImmut(got, func(d *value.Data) {
		if d.Kind != vtype.KInt || d.Int != 3 {
			t.Fatalf("clone(&x) must be an independent copy of the referent, got %+v", d)
		}
	})
}

func TestMatchesBuiltinWrapsNonTupleValues(t *testing.T) {
	matches := mustLookup(t, "matches")
	out := matches.Run(cellsOf(value.NewInt(4)), nil)
	value.OperateImmut(out, func(d *value.Data) {
		if d.Kind != vtype.KTuple || len(d.Tuple) != 1 {
			t.Fatalf("matches(4) should be [4], got %+v", d)
		}
	})
	none := matches.Run(cellsOf(value.Unit()), nil)
	value.OperateImmut(none, func(d *value.Data) {
		if d.Kind != vtype.KTuple || len(d.Tuple) != 0 {
			t.Fatalf("matches([]) should be [], got %+v", d)
		}
	})
}

func TestFormatRequiresAllStringArguments(t *testing.T) {
	info := vtype.NewInfo()
	format := mustLookup(t, "format")
	ok := []vtype.Type{vtype.String().ToType(), vtype.String().ToType()}
	if !format.CanTake(ok, info) {
		t.Fatal("format should accept all-string arguments")
	}
	bad := []vtype.Type{vtype.String().ToType(), vtype.Int().ToType()}
	if format.CanTake(bad, info) {
		t.Fatal("format should reject a non-string substitution argument")
	}
}
