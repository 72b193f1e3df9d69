package alloc

import (
	"fmt"
	"reflect"
	"sync"
	"unsafe"
)

// Heap allocates on the Go heap and keeps each allocation reachable through
// a live set until it is released. Go heap objects do not move, so the
// address stays valid for as long as the entry exists.
type Heap struct {
	mu   sync.Mutex
	live map[uintptr]unsafe.Pointer
}

// NewHeap creates an empty Heap.
func NewHeap() *Heap {
	return &Heap{live: make(map[uintptr]unsafe.Pointer)}
}

// Allocate implements Allocator. The memory is typed, so the collector
// scans it for pointers like any other object.
func (h *Heap) Allocate(t reflect.Type) (unsafe.Pointer, error) {
	if t.Size() == 0 {
		return nil, fmt.Errorf("%w: %v", ErrZeroSize, t)
	}
	p := reflect.New(t).UnsafePointer()
	h.Pin(p)
	return p, nil
}

// Release implements Allocator. The memory is zeroed so anything it still
// references can be collected even if a stale copy of the address survives.
func (h *Heap) Release(addr uintptr, t reflect.Type) error {
	p, err := h.Unpin(addr)
	if err != nil {
		return err
	}
	reflect.NewAt(t, p).Elem().SetZero()
	return nil
}

// Owns implements Allocator.
func (h *Heap) Owns(addr uintptr) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.live[addr]
	return ok
}

// Live implements Allocator.
func (h *Heap) Live() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.live)
}

// Pin adds p to the live set.
func (h *Heap) Pin(p unsafe.Pointer) {
	h.mu.Lock()
	h.live[uintptr(p)] = p
	h.mu.Unlock()
}

// Unpin removes addr from the live set without touching the memory and
// returns the pointer that kept it alive.
func (h *Heap) Unpin(addr uintptr) (unsafe.Pointer, error) {
	h.mu.Lock()
	p, ok := h.live[addr]
	if ok {
		delete(h.live, addr)
	}
	h.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("%w: %#x", ErrNotAllocated, addr)
	}
	return p, nil
}
