// Package alloc owns the memory behind tagged boxes.
//
// A tagged box keeps its payload address in an integer, where the Go
// garbage collector cannot see it. Every allocation handed out here is
// therefore owned by something the collector does see (Heap keeps a live
// set) or lives outside the Go heap entirely (Arena, for payloads that hold
// no Go pointers).
//
// Release is the single deallocation path. It is told the payload type, the
// same way a C allocator is told the layout, and refuses addresses it never
// handed out, so a second release of the same box fails loudly.
package alloc

import (
	"errors"
	"os"
	"reflect"
	"strconv"
	"sync"
	"unsafe"

	"github.com/tliron/commonlog"
)

var (
	// ErrNotAllocated is returned when releasing an address the allocator
	// does not own (never allocated, or already released).
	ErrNotAllocated = errors.New("alloc: address not allocated")

	// ErrZeroSize is returned when asked to allocate a zero-size type.
	// Zero-size payloads use a dangling address instead.
	ErrZeroSize = errors.New("alloc: zero-size type")

	// ErrHasPointers is returned by the arena for types holding Go pointers.
	ErrHasPointers = errors.New("alloc: type contains Go pointers")

	// ErrTooLarge is returned by the arena for types above its largest class.
	ErrTooLarge = errors.New("alloc: type larger than largest size class")

	// ErrUnsupported is returned by the arena on platforms without mmap.
	ErrUnsupported = errors.New("alloc: arena not supported on this platform")

	// ErrLive is returned when closing an arena that still has allocations.
	ErrLive = errors.New("alloc: allocations still live")
)

// logger is looked up on use so a backend registered after package
// initialization still receives the messages.
func logger() commonlog.Logger {
	return commonlog.GetLogger("tagbox.alloc")
}

// Allocator hands out memory for one value of a given type.
type Allocator interface {
	// Allocate returns zeroed memory sized and aligned for t.
	Allocate(t reflect.Type) (unsafe.Pointer, error)

	// Release frees memory returned by Allocate. t must be the type it was
	// allocated with. The memory is zeroed before it is reused.
	Release(addr uintptr, t reflect.Type) error

	// Owns reports whether addr is a live allocation of this allocator.
	Owns(addr uintptr) bool

	// Live returns the number of outstanding allocations.
	Live() int
}

// Stats counts outstanding allocations per backing allocator.
type Stats struct {
	Heap  int
	Arena int
}

// Total returns the number of outstanding allocations.
func (s Stats) Total() int {
	return s.Heap + s.Arena
}

// Router sends each allocation to the heap or, when one is enabled and the
// type qualifies, to an arena. Releases are routed by address, so turning
// the arena on or off between an allocation and its release is safe.
type Router struct {
	heap *Heap

	mu          sync.RWMutex
	arena       *Arena
	arenaActive bool
}

// NewRouter creates a Router backed by a fresh Heap and no arena.
func NewRouter() *Router {
	return &Router{heap: NewHeap()}
}

// Default is the Router used by tagged boxes.
var Default = NewRouter()

func init() {
	if err := Default.configureFromEnv(); err != nil {
		logger().Warningf("ignoring arena settings from environment: %v", err)
	}
}

// configureFromEnv enables the arena when TAGBOX_ARENA is set to a true
// value. TAGBOX_ARENA_SLAB overrides the slab size in bytes.
func (r *Router) configureFromEnv() error {
	v, ok := os.LookupEnv("TAGBOX_ARENA")
	if !ok {
		return nil
	}
	on, err := strconv.ParseBool(v)
	if err != nil {
		return err
	}
	if !on {
		return nil
	}

	cfg := DefaultArenaConfig
	if s, ok := os.LookupEnv("TAGBOX_ARENA_SLAB"); ok {
		n, err := strconv.Atoi(s)
		if err != nil {
			return err
		}
		cfg.SlabSize = n
	}
	return r.EnableArena(cfg)
}

// Heap returns the router's heap allocator.
func (r *Router) Heap() *Heap {
	return r.heap
}

// EnableArena starts routing pointer-free payloads to an arena. The arena is
// created on first use; later calls reactivate it and ignore cfg.
func (r *Router) EnableArena(cfg ArenaConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.arena == nil {
		a, err := NewArena(cfg)
		if err != nil {
			return err
		}
		r.arena = a
	}
	r.arenaActive = true
	return nil
}

// DisableArena sends every new allocation to the heap. Arena allocations
// made earlier can still be released.
func (r *Router) DisableArena() {
	r.mu.Lock()
	r.arenaActive = false
	r.mu.Unlock()
}

// ArenaEnabled reports whether new allocations may go to the arena.
func (r *Router) ArenaEnabled() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.arenaActive
}

func (r *Router) arenaFor(t reflect.Type) *Arena {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.arenaActive || r.arena.Accepts(t) != nil {
		return nil
	}
	return r.arena
}

func (r *Router) ownerOf(addr uintptr) Allocator {
	r.mu.RLock()
	a := r.arena
	r.mu.RUnlock()
	if a != nil && a.contains(addr) {
		return a
	}
	return r.heap
}

// Allocate implements Allocator.
func (r *Router) Allocate(t reflect.Type) (unsafe.Pointer, error) {
	if a := r.arenaFor(t); a != nil {
		return a.Allocate(t)
	}
	return r.heap.Allocate(t)
}

// Release implements Allocator.
func (r *Router) Release(addr uintptr, t reflect.Type) error {
	return r.ownerOf(addr).Release(addr, t)
}

// Owns implements Allocator.
func (r *Router) Owns(addr uintptr) bool {
	return r.ownerOf(addr).Owns(addr)
}

// Live implements Allocator.
func (r *Router) Live() int {
	return r.Stats().Total()
}

// Stats returns outstanding allocations per allocator.
func (r *Router) Stats() Stats {
	s := Stats{Heap: r.heap.Live()}
	r.mu.RLock()
	if r.arena != nil {
		s.Arena = r.arena.Live()
	}
	r.mu.RUnlock()
	return s
}

// Disown hands the allocation at addr to the caller. Heap memory is dropped
// from the live set, so from now on the caller's pointer keeps it alive.
// Arena memory stays mapped until it comes back through Adopt and Release.
func (r *Router) Disown(addr uintptr) (unsafe.Pointer, error) {
	if a, ok := r.ownerOf(addr).(*Arena); ok {
		if !a.Owns(addr) {
			return nil, ErrNotAllocated
		}
		return unsafe.Pointer(addr), nil
	}
	return r.heap.Unpin(addr)
}

// Adopt takes ownership of p, the inverse of Disown. Pointers into the
// arena are already tracked; anything else joins the heap's live set.
func (r *Router) Adopt(p unsafe.Pointer) {
	if _, ok := r.ownerOf(uintptr(p)).(*Arena); ok {
		return
	}
	r.heap.Pin(p)
}
