package value

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/funvibe/mers/internal/vtype"
)

// ThreadHandle is VDataThread (spec §3.3 "thread(fn,args)"): a
// preemptively-scheduled goroutine whose result is observed exactly
// once it finishes, through TryGet (non-blocking) or Get (blocking,
// the sole synchronization point — spec §3.3 "await").
//
// ID exists purely for diagnostics (debug thread naming, SPEC_FULL.md
// §3 item 5); nothing in the evaluation model keys off it.
type ThreadHandle struct {
	ID uuid.UUID

	mu      sync.Mutex
	done    bool
	result  *Cell
	outType vtype.Type

	finishedCh chan struct{}
}

// Spawn runs fn in a new goroutine and returns a handle to it
// immediately, with no panic recovery or registry bookkeeping — use
// Registry.Spawn for that. This is the bare primitive: the
// happens-before edge between the goroutine's completion and
// Get/TryGet observing it.
func Spawn(outType vtype.Type, fn func() *Cell) *ThreadHandle {
	h := &ThreadHandle{
		ID:         uuid.New(),
		outType:    outType,
		finishedCh: make(chan struct{}),
	}
	go func() {
		result := fn()
		h.mu.Lock()
		h.result = result
		h.done = true
		h.mu.Unlock()
		close(h.finishedCh)
	}()
	return h
}

// TryGet is the non-blocking poll (spec "try_get"): ok is false while
// the thread is still running.
func (h *ThreadHandle) TryGet() (*Cell, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.done {
		return nil, false
	}
	return h.result, true
}

// Get blocks until the thread finishes and returns its result (spec
// "await" — the sole synchronization point in the concurrency model).
func (h *ThreadHandle) Get() *Cell {
	<-h.finishedCh
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.result
}

// OutType is the type the thread's result is declared to produce.
func (h *ThreadHandle) OutType() vtype.Type { return h.outType }

// Registry tracks every thread spawned during one run so they can all
// be drained at shutdown, even ones the script never awaits (spec §7
// "every spawned thread is joined before the process exits, regardless
// of whether the script awaited it"). A panicking thread body is
// recovered here and turned into the value-level Err enum variant
// (vtype.ErrEnumName, interned at id 0) rather than crashing the whole
// interpreter.
type Registry struct {
	mu      sync.Mutex
	group   errgroup.Group
	handles []*ThreadHandle
}

func NewRegistry() *Registry { return &Registry{} }

// Spawn registers and runs fn, recovering any panic into an Err value.
func (r *Registry) Spawn(info *vtype.Info, outType vtype.Type, fn func() *Cell) *ThreadHandle {
	h := &ThreadHandle{
		ID:         uuid.New(),
		outType:    outType,
		finishedCh: make(chan struct{}),
	}
	r.mu.Lock()
	r.handles = append(r.handles, h)
	r.mu.Unlock()

	r.group.Go(func() error {
		result := runRecovered(info, fn)
		h.mu.Lock()
		h.result = result
		h.done = true
		h.mu.Unlock()
		close(h.finishedCh)
		return nil
	})
	return h
}

// Drain blocks until every thread spawned through this registry has
// finished.
func (r *Registry) Drain() { _ = r.group.Wait() }

func runRecovered(info *vtype.Info, fn func() *Cell) (result *Cell) {
	defer func() {
		if rec := recover(); rec != nil {
			errID := info.InternEnumVariant(vtype.ErrEnumName)
			result = NewCell(NewEnumVariant(errID, NewCell(NewString(fmt.Sprint(rec)))))
		}
	}()
	return fn()
}
