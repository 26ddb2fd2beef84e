package value

import (
	"fmt"
	"sync"

	"github.com/funvibe/mers/internal/vtype"
)

type cellState int

const (
	stateData cellState = iota
	stateMut
	stateClonedFrom
)

// Cell is VDataInner/VData collapsed into one type (spec §3.2 "Cell
// states"): a mutex-guarded slot that is in exactly one of three
// states at a time.
//
//   - Data: owns a value outright. cloneCount counts how many
//     ClonedFrom cells still depend on this one having stayed put —
//     OperateMut only mutates in place while it is zero.
//   - Mut: a shared-mutable alias; every read/write forwards to Target.
//   - ClonedFrom: a logically-independent snapshot that, until the
//     first write through it, still forwards reads to Target to avoid
//     an eager copy.
//
// Name is filled in only by NewNamedPlaceholder, which lowering uses
// for every variable cell, and serves diagnostics only; cells created
// any other way leave it empty.
type Cell struct {
	mu sync.Mutex

	state cellState

	data       *Data
	cloneCount int

	target *Cell // Mut or ClonedFrom

	name string
}

// NewCell wraps d as a freshly owned Data cell.
func NewCell(d *Data) *Cell {
	return &Cell{state: stateData, data: d}
}

// NewPlaceholder is a throwaway cell used where a value is needed
// before its real one is known (e.g. a variable slot being declared).
func NewPlaceholder() *Cell { return NewCell(NewBool(false)) }

// NewNamedPlaceholder is NewPlaceholder tagged with the source-level
// variable name it backs, surfaced only through Name for diagnostics.
func NewNamedPlaceholder(name string) *Cell {
	c := NewPlaceholder()
	c.name = name
	return c
}

// Name is the source variable name this cell was allocated for, or ""
// for an anonymous cell.
func (c *Cell) Name() string { return c.name }

// OperateImmut runs f against the value's underlying Data without
// triggering a copy-on-write check (spec §3.2 "operate_on_data_immut").
func OperateImmut(c *Cell, f func(*Data)) {
	OperateImmutValue(c, func(d *Data) struct{} { f(d); return struct{}{} })
}

// OperateImmutValue is OperateImmut for callers that need a result out
// of the closure.
func OperateImmutValue[T any](c *Cell, f func(*Data) T) T {
	c.mu.Lock()
	switch c.state {
	case stateData:
		result := f(c.data)
		c.mu.Unlock()
		return result
	case stateMut, stateClonedFrom:
		target := c.target
		c.mu.Unlock()
		return OperateImmutValue(target, f)
	default:
		c.mu.Unlock()
		panic(fmt.Sprintf("value.Cell: invalid state %d", c.state))
	}
}

// OperateMut runs f against the value's underlying Data, cloning it
// first if another ClonedFrom cell is still depending on it staying
// unchanged (spec §3.2 "operate_on_data_mut" — the sole place the COW
// clone actually happens).
func OperateMut(c *Cell, f func(*Data)) {
	OperateMutValue(c, func(d *Data) struct{} { f(d); return struct{}{} })
}

// OperateMutValue is OperateMut for callers that need a result.
func OperateMutValue[T any](c *Cell, f func(*Data) T) T {
	c.mu.Lock()
	switch c.state {
	case stateData:
		if c.cloneCount == 0 {
			result := f(c.data)
			c.mu.Unlock()
			return result
		}
		newData := c.data.Clone()
		result := f(newData)
		c.data = newData
		c.cloneCount = 0
		c.mu.Unlock()
		return result
	case stateMut, stateClonedFrom:
		target := c.target
		c.mu.Unlock()
		return OperateMutValue(target, f)
	default:
		c.mu.Unlock()
		panic(fmt.Sprintf("value.Cell: invalid state %d", c.state))
	}
}

// CloneData returns a logically-independent copy of c: mutating one
// never affects the other (spec §3.2 "clone_data"). As in the
// reference implementation, copy-on-write sharing between the two is
// not attempted — the clone is made eagerly via Data.Clone.
func CloneData(c *Cell) *Cell {
	var cp *Data
	OperateImmut(c, func(d *Data) { cp = d.Clone() })
	return NewCell(cp)
}

// CloneMut returns a new handle aliasing the same underlying storage
// as c: writes through either are visible via both (spec §3.2
// "clone_mut").
func CloneMut(c *Cell) *Cell {
	return &Cell{state: stateMut, target: c}
}

// Out is the cell's current runtime type (spec §3.1 "out_single").
func (c *Cell) Out() vtype.Single {
	var s vtype.Single
	OperateImmut(c, func(d *Data) { s = d.OutSingle() })
	return s
}

// SafeToShare reports whether the cell's current value can cross a
// thread boundary (see Data.SafeToShare).
func (c *Cell) SafeToShare() bool {
	return OperateImmutValue(c, func(d *Data) bool { return d.SafeToShare() })
}
