package vtype

import "sync"

// ErrEnumName is the globally reserved name for enum id 0 (spec §9,
// §4.6 table footnote: "The Err variant id is globally reserved as
// enum id 0"). Every Info is seeded with it before lowering runs so
// that library bytecode serializing Err is stable across compilations.
const ErrEnumName = "Err"

// Info is the GlobalScriptInfo of the original: the interning tables
// lowering accumulates (enum-variant names, custom-type aliases) and
// that every subtype/get/dereference operation needs to resolve
// CustomType and EnumVariant singles. It is built fresh per
// compilation and frozen (read-only) once lowering hands off to the
// evaluator (spec §3.4 "Lifecycles").
type Info struct {
	mu sync.RWMutex

	enumNames    []string
	enumVariants map[string]int

	customTypes     []Type
	customTypeNames map[string]int

	frozen bool
}

// NewInfo creates a fresh Info with the Err variant pre-seeded at id 0.
func NewInfo() *Info {
	i := &Info{
		enumVariants:    make(map[string]int),
		customTypeNames: make(map[string]int),
	}
	i.enumNames = append(i.enumNames, ErrEnumName)
	i.enumVariants[ErrEnumName] = 0
	return i
}

// Freeze marks the Info read-only. Evaluator access after Freeze still
// goes through the same mutex as before (Go's race detector wants one
// mutex used throughout), so Freeze only makes further mutation
// attempts panic rather than switching to unsynchronized reads.
func (i *Info) Freeze() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.frozen = true
}

func (i *Info) mustNotBeFrozen() {
	if i.frozen {
		panic("vtype.Info: mutation after Freeze")
	}
}

// InternEnumVariant returns the id for name, registering a fresh one
// if this is the first use (parse-time EnumVariantS -> EnumVariant
// resolution, spec §3.1).
func (i *Info) InternEnumVariant(name string) int {
	i.mu.Lock()
	defer i.mu.Unlock()
	if id, ok := i.enumVariants[name]; ok {
		return id
	}
	i.mustNotBeFrozen()
	id := len(i.enumNames)
	i.enumNames = append(i.enumNames, name)
	i.enumVariants[name] = id
	return id
}

// EnumVariantName resolves an id back to its source name, for
// diagnostics.
func (i *Info) EnumVariantName(id int) (string, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	if id < 0 || id >= len(i.enumNames) {
		return "", false
	}
	return i.enumNames[id], true
}

// EnumVariantCount is the number of interned enum variants, for
// validating ids arriving from a pre-resolved document.
func (i *Info) EnumVariantCount() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.enumNames)
}

// CustomTypeCount is the number of reserved custom-type ids.
func (i *Info) CustomTypeCount() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.customTypes)
}

// DeclareCustomType registers a name -> alias binding. Case-insensitive,
// matching the original's `name.to_lowercase()` table key.
func (i *Info) DeclareCustomType(name string, alias Type) int {
	id := i.ReserveCustomType(name)
	i.SetCustomTypeAlias(id, alias)
	return id
}

// ReserveCustomType allocates an id for name before its alias is known
// (spec §9 — a recursive custom type's alias may itself reference this
// id). Idempotent: a name already reserved/declared returns its
// existing id rather than allocating a second one. Call
// SetCustomTypeAlias once the declared VType is available.
func (i *Info) ReserveCustomType(name string) int {
	i.mu.Lock()
	defer i.mu.Unlock()
	key := lower(name)
	if id, ok := i.customTypeNames[key]; ok {
		return id
	}
	i.mustNotBeFrozen()
	id := len(i.customTypes)
	i.customTypeNames[key] = id
	i.customTypes = append(i.customTypes, Type{})
	return id
}

// SetCustomTypeAlias fills in (or replaces) the alias for an id
// obtained from ReserveCustomType or DeclareCustomType.
func (i *Info) SetCustomTypeAlias(id int, alias Type) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.mustNotBeFrozen()
	i.customTypes[id] = alias
}

// CustomTypeID resolves a declared type name to its interned id.
func (i *Info) CustomTypeID(name string) (int, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	id, ok := i.customTypeNames[lower(name)]
	return id, ok
}

// CustomTypeAlias returns the Type a custom type id expands to.
func (i *Info) CustomTypeAlias(id int) Type {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.customTypes[id]
}

// CustomTypeName resolves an id back to its declared name (the first
// one registered for it), for diagnostics.
func (i *Info) CustomTypeName(id int) (string, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	for name, v := range i.customTypeNames {
		if v == id {
			return name, true
		}
	}
	return "", false
}

func lower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
