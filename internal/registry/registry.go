// Package registry stores Go values that must travel through C as opaque
// private data. C only ever sees an integer ID; the Go value stays in a map
// owned by this package, which keeps cgo pointer rules intact.
package registry

import (
	"sync"
	"unsafe"
)

// IDs are never dereferenced. 0 is reserved for "no private data", and IDs
// stay within uintptr so they survive the trip through C on 32-bit targets.
const (
	firstID = uint64(1)
	maxID   = uint64(^uintptr(0))
)

// Table maps opaque IDs to values of type T. The zero value is ready to use.
type Table[T any] struct {
	mu      sync.RWMutex
	entries map[uint64]T
	next    uint64
}

// Put stores v and returns its ID.
func (t *Table[T]) Put(v T) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.entries == nil {
		t.entries = make(map[uint64]T)
		t.next = firstID
	}
	for {
		id := t.next
		if t.next == maxID {
			t.next = firstID
		} else {
			t.next++
		}
		if _, used := t.entries[id]; !used {
			t.entries[id] = v
			return id
		}
	}
}

// Get returns the value stored under id.
func (t *Table[T]) Get(id uint64) (T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	v, ok := t.entries[id]
	return v, ok
}

// Delete removes id. Deleting an unknown ID is a no-op.
func (t *Table[T]) Delete(id uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.entries, id)
}

// Len reports the number of live entries.
func (t *Table[T]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// Pointer converts an ID into the opaque pointer handed to C.
func Pointer(id uint64) unsafe.Pointer {
	//nolint:govet // Converting uintptr to unsafe.Pointer is intentional for CGO handle passing
	return unsafe.Pointer(uintptr(id))
}

// ID recovers the ID from an opaque pointer received from C.
func ID(p unsafe.Pointer) uint64 {
	return uint64(uintptr(p))
}
