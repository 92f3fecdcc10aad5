// Package intern implements the constant interner: process-wide registries
// mapping literal int/string/byte-sequence values encountered during
// translation to stable singleton identifiers, so the emitter writes one
// C++ definition per distinct literal regardless of how many times it
// appears in the source.
//
// String interning caches an FNV-1a 64-bit hash alongside each entry, the
// same cached-hash-key idiom the teacher's object.String.HashKey uses. The
// hash does not decide emission order: every table emits its values in
// first-seen order.
package intern

import (
	"fmt"
	"sort"
)

// fnv1a64 computes the 64-bit FNV-1a hash of data: init 0xCBF29CE484222325,
// then per byte XOR followed by multiplication by 0x100000001B3, mod 2^64
// (the multiplication already wraps at 64 bits in Go's uint64 arithmetic).
func fnv1a64(data []byte) uint64 {
	const offset = 0xCBF29CE484222325
	const prime = 0x100000001B3
	h := uint64(offset)
	for _, b := range data {
		h ^= uint64(b)
		h *= prime
	}
	return h
}

// IntTable interns distinct int64 literals, in first-seen order.
type IntTable struct {
	order []int64
	index map[int64]int
}

// NewIntTable creates an empty IntTable.
func NewIntTable() *IntTable {
	return &IntTable{index: map[int64]int{}}
}

// Intern registers v if not already present and returns its dense id.
func (t *IntTable) Intern(v int64) int {
	if id, ok := t.index[v]; ok {
		return id
	}
	id := len(t.order)
	t.order = append(t.order, v)
	t.index[v] = id
	return id
}

// Symbol returns the C++ identifier the emitter writes for v's singleton:
// int_singleton_<N> for non-negative values, int_singleton_neg<|N|> for
// negative ones.
func Symbol(v int64) string {
	if v < 0 {
		return fmt.Sprintf("int_singleton_neg%d", -v)
	}
	return fmt.Sprintf("int_singleton_%d", v)
}

// Values returns every interned integer in first-seen order.
func (t *IntTable) Values() []int64 { return append([]int64(nil), t.order...) }

// StringEntry is one interned string: its dense id and cached FNV-1a hash.
type StringEntry struct {
	ID   int
	Hash uint64
}

// StringTable interns distinct string literals, caching each one's FNV-1a
// hash the way the teacher's object.String.HashKey caches its HashKey.
type StringTable struct {
	order   []string
	entries map[string]StringEntry
}

// NewStringTable creates an empty StringTable.
func NewStringTable() *StringTable {
	return &StringTable{entries: map[string]StringEntry{}}
}

// Intern registers s if not already present and returns its entry.
func (t *StringTable) Intern(s string) StringEntry {
	if e, ok := t.entries[s]; ok {
		return e
	}
	e := StringEntry{ID: len(t.order), Hash: fnv1a64([]byte(s))}
	t.order = append(t.order, s)
	t.entries[s] = e
	return e
}

// Symbol returns the C++ identifier the emitter writes for a string
// singleton.
func (e StringEntry) Symbol() string { return fmt.Sprintf("string_singleton_%d", e.ID) }

// Values returns every interned string in first-seen order.
func (t *StringTable) Values() []string { return append([]string(nil), t.order...) }

// Entry returns the StringEntry for s, if interned.
func (t *StringTable) Entry(s string) (StringEntry, bool) {
	e, ok := t.entries[s]
	return e, ok
}

// BytesTable interns distinct byte-sequence literals by their string
// content, in first-seen order.
type BytesTable struct {
	order []string
	index map[string]int
}

// NewBytesTable creates an empty BytesTable.
func NewBytesTable() *BytesTable {
	return &BytesTable{index: map[string]int{}}
}

// Intern registers b if not already present and returns its dense id.
func (t *BytesTable) Intern(b []byte) int {
	key := string(b)
	if id, ok := t.index[key]; ok {
		return id
	}
	id := len(t.order)
	t.order = append(t.order, key)
	t.index[key] = id
	return id
}

// BytesSymbol returns the C++ identifier the emitter writes for the id-th
// interned byte string.
func BytesSymbol(id int) string { return fmt.Sprintf("bytes_singleton_%d", id) }

// Values returns every interned byte string, as []byte, in first-seen
// order.
func (t *BytesTable) Values() [][]byte {
	out := make([][]byte, len(t.order))
	for i, s := range t.order {
		out[i] = []byte(s)
	}
	return out
}

// SortedKeys returns the keys of any string-keyed map in sorted order. The
// emitter uses it to walk the builtin registry's maps deterministically;
// the intern tables themselves emit in Values()'s first-seen order.
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
