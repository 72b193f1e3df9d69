package alloc

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
	"unsafe"
)

// ErrTypeMismatch is returned when an arena allocation is released with a
// type that maps to a different size class than the one it was allocated
// with.
var ErrTypeMismatch = errors.New("alloc: release type does not match allocation")

const minClass = 8

// ArenaConfig sizes an Arena.
type ArenaConfig struct {
	// SlabSize is the number of bytes mapped at a time. Each slab serves a
	// single size class.
	SlabSize int

	// MaxClass is the largest size class in bytes. Classes are powers of two
	// starting at 8.
	MaxClass int
}

// DefaultArenaConfig maps 1 MiB slabs with classes up to 512 bytes.
var DefaultArenaConfig = ArenaConfig{
	SlabSize: 1 << 20,
	MaxClass: 512,
}

type slab struct {
	mem   []byte
	base  uintptr
	class int
	next  int
}

// Arena hands out memory from mmap'd slabs outside the Go heap. It only
// accepts types without Go pointers, since the collector never scans it.
type Arena struct {
	mu      sync.Mutex
	cfg     ArenaConfig
	classes []int
	slabs   []*slab
	current []*slab     // slab being bump-allocated, per class
	free    [][]uintptr // released addresses, per class
	live    map[uintptr]*slab
}

// NewArena creates an Arena. No memory is mapped until the first allocation.
func NewArena(cfg ArenaConfig) (*Arena, error) {
	if !mmapSupported {
		return nil, ErrUnsupported
	}
	if cfg.SlabSize <= 0 {
		cfg.SlabSize = DefaultArenaConfig.SlabSize
	}
	if cfg.MaxClass < minClass {
		cfg.MaxClass = DefaultArenaConfig.MaxClass
	}
	if cfg.SlabSize < cfg.MaxClass {
		return nil, fmt.Errorf("alloc: slab size %d smaller than largest class %d", cfg.SlabSize, cfg.MaxClass)
	}

	classes := sizeClasses(cfg.MaxClass)
	return &Arena{
		cfg:     cfg,
		classes: classes,
		current: make([]*slab, len(classes)),
		free:    make([][]uintptr, len(classes)),
		live:    make(map[uintptr]*slab),
	}, nil
}

// Accepts returns nil if values of t can be allocated here.
func (a *Arena) Accepts(t reflect.Type) error {
	switch {
	case t.Size() == 0:
		return ErrZeroSize
	case HasPointers(t):
		return ErrHasPointers
	case classFor(a.classes, t.Size(), uintptr(t.Align())) < 0:
		return ErrTooLarge
	}
	return nil
}

// Allocate implements Allocator.
func (a *Arena) Allocate(t reflect.Type) (unsafe.Pointer, error) {
	if err := a.Accepts(t); err != nil {
		return nil, fmt.Errorf("%w: %v", err, t)
	}
	ci := classFor(a.classes, t.Size(), uintptr(t.Align()))
	size := a.classes[ci]

	a.mu.Lock()
	defer a.mu.Unlock()

	if n := len(a.free[ci]); n > 0 {
		addr := a.free[ci][n-1]
		a.free[ci] = a.free[ci][:n-1]
		s := a.slabAt(addr)
		a.live[addr] = s
		return unsafe.Pointer(&s.mem[addr-s.base]), nil
	}

	s := a.current[ci]
	if s == nil || s.next+size > len(s.mem) {
		var err error
		if s, err = a.grow(ci); err != nil {
			return nil, err
		}
	}
	p := unsafe.Pointer(&s.mem[s.next])
	s.next += size
	a.live[uintptr(p)] = s
	return p, nil
}

func (a *Arena) grow(ci int) (*slab, error) {
	mem, err := mapSlab(a.cfg.SlabSize)
	if err != nil {
		return nil, fmt.Errorf("alloc: mapping %d-byte slab: %w", a.cfg.SlabSize, err)
	}
	s := &slab{
		mem:   mem,
		base:  uintptr(unsafe.Pointer(&mem[0])),
		class: ci,
	}
	a.slabs = append(a.slabs, s)
	a.current[ci] = s
	logger().Debugf("mapped %d-byte slab at %#x for %d-byte class", len(mem), s.base, a.classes[ci])
	return s, nil
}

// slabAt finds the slab containing addr. Callers hold a.mu.
func (a *Arena) slabAt(addr uintptr) *slab {
	for _, s := range a.slabs {
		if addr >= s.base && addr < s.base+uintptr(len(s.mem)) {
			return s
		}
	}
	return nil
}

// Release implements Allocator.
func (a *Arena) Release(addr uintptr, t reflect.Type) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	s, ok := a.live[addr]
	if !ok {
		return fmt.Errorf("%w: %#x", ErrNotAllocated, addr)
	}
	if ci := classFor(a.classes, t.Size(), uintptr(t.Align())); ci != s.class {
		return fmt.Errorf("%w: %#x released as %v", ErrTypeMismatch, addr, t)
	}

	delete(a.live, addr)
	off := addr - s.base
	clear(s.mem[off : off+uintptr(a.classes[s.class])])
	a.free[s.class] = append(a.free[s.class], addr)
	return nil
}

// Owns implements Allocator.
func (a *Arena) Owns(addr uintptr) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.live[addr]
	return ok
}

// contains reports whether addr falls inside one of the arena's slabs,
// live or not.
func (a *Arena) contains(addr uintptr) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.slabAt(addr) != nil
}

// Live implements Allocator.
func (a *Arena) Live() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.live)
}

// Slabs returns the number of mapped slabs.
func (a *Arena) Slabs() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.slabs)
}

// Close unmaps every slab. It fails with ErrLive while allocations are
// outstanding, since their boxes would point at unmapped memory.
func (a *Arena) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if n := len(a.live); n > 0 {
		return fmt.Errorf("%w: %d", ErrLive, n)
	}
	var errs []error
	for _, s := range a.slabs {
		if err := unmapSlab(s.mem); err != nil {
			errs = append(errs, err)
		}
	}
	a.slabs = nil
	clear(a.current)
	clear(a.free)
	return errors.Join(errs...)
}
