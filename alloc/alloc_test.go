package alloc

import (
	"errors"
	"reflect"
	"runtime"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

type plain struct {
	A uint32
	B bool
	C [3]int16
}

type withString struct {
	N int
	S string
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeFor[T]()
}

func TestHasPointers(t *testing.T) {
	tests := []struct {
		typ  reflect.Type
		want bool
	}{
		{typeOf[uint8](), false},
		{typeOf[uintptr](), false},
		{typeOf[complex128](), false},
		{typeOf[[8]uint64](), false},
		{typeOf[plain](), false},
		{typeOf[[0]*int](), false},
		{typeOf[string](), true},
		{typeOf[[]byte](), true},
		{typeOf[*int](), true},
		{typeOf[map[int]int](), true},
		{typeOf[any](), true},
		{typeOf[withString](), true},
		{typeOf[[2]withString](), true},
		{typeOf[unsafe.Pointer](), true},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, HasPointers(tt.typ), "HasPointers(%v)", tt.typ)
		// Cached answer must agree.
		require.Equal(t, tt.want, HasPointers(tt.typ), "cached HasPointers(%v)", tt.typ)
	}
}

func TestClassFor(t *testing.T) {
	classes := sizeClasses(512)
	require.Equal(t, []int{8, 16, 32, 64, 128, 256, 512}, classes)

	require.Equal(t, 0, classFor(classes, 1, 1))
	require.Equal(t, 0, classFor(classes, 8, 8))
	require.Equal(t, 1, classFor(classes, 9, 4))
	require.Equal(t, 6, classFor(classes, 512, 8))
	require.Equal(t, -1, classFor(classes, 513, 1))
}

// ---------------------------------------------------------------------------
// Heap
// ---------------------------------------------------------------------------

func TestHeapAllocateRelease(t *testing.T) {
	h := NewHeap()
	typ := typeOf[withString]()

	p, err := h.Allocate(typ)
	require.NoError(t, err)
	require.True(t, h.Owns(uintptr(p)))
	require.Equal(t, 1, h.Live())

	v := (*withString)(p)
	require.Equal(t, withString{}, *v, "allocation must start zeroed")
	v.N = 7
	v.S = "payload"

	runtime.GC()
	require.Equal(t, "payload", (*withString)(p).S, "live set must keep the allocation reachable")

	require.NoError(t, h.Release(uintptr(p), typ))
	require.False(t, h.Owns(uintptr(p)))
	require.Equal(t, 0, h.Live())
	require.Equal(t, withString{}, *v, "release must zero the memory")
}

func TestHeapDoubleRelease(t *testing.T) {
	h := NewHeap()
	typ := typeOf[uint64]()

	p, err := h.Allocate(typ)
	require.NoError(t, err)
	require.NoError(t, h.Release(uintptr(p), typ))

	err = h.Release(uintptr(p), typ)
	require.ErrorIs(t, err, ErrNotAllocated)
}

func TestHeapZeroSize(t *testing.T) {
	_, err := NewHeap().Allocate(typeOf[struct{}]())
	require.ErrorIs(t, err, ErrZeroSize)
}

func TestHeapUnpinPin(t *testing.T) {
	h := NewHeap()
	typ := typeOf[int64]()

	p, err := h.Allocate(typ)
	require.NoError(t, err)

	q, err := h.Unpin(uintptr(p))
	require.NoError(t, err)
	require.Equal(t, p, q)
	require.Equal(t, 0, h.Live())

	h.Pin(q)
	require.True(t, h.Owns(uintptr(p)))
	require.NoError(t, h.Release(uintptr(p), typ))
}

// ---------------------------------------------------------------------------
// Arena
// ---------------------------------------------------------------------------

func newTestArena(t *testing.T, cfg ArenaConfig) *Arena {
	t.Helper()
	a, err := NewArena(cfg)
	if errors.Is(err, ErrUnsupported) {
		t.Skip("arena not supported on this platform")
	}
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestArenaRejects(t *testing.T) {
	a := newTestArena(t, DefaultArenaConfig)

	require.ErrorIs(t, a.Accepts(typeOf[string]()), ErrHasPointers)
	require.ErrorIs(t, a.Accepts(typeOf[struct{}]()), ErrZeroSize)
	require.ErrorIs(t, a.Accepts(typeOf[[1024]byte]()), ErrTooLarge)
	require.NoError(t, a.Accepts(typeOf[plain]()))

	_, err := a.Allocate(typeOf[withString]())
	require.ErrorIs(t, err, ErrHasPointers)
}

func TestArenaAllocateReuse(t *testing.T) {
	a := newTestArena(t, ArenaConfig{SlabSize: 4096, MaxClass: 64})
	typ := typeOf[plain]()

	p, err := a.Allocate(typ)
	require.NoError(t, err)
	require.True(t, a.Owns(uintptr(p)))
	require.True(t, a.contains(uintptr(p)))
	require.Zero(t, uintptr(p)%uintptr(typ.Align()))

	v := (*plain)(p)
	*v = plain{A: 42, B: true, C: [3]int16{-1, 0, 1}}
	require.Equal(t, uint32(42), (*plain)(p).A)

	require.NoError(t, a.Release(uintptr(p), typ))
	require.False(t, a.Owns(uintptr(p)))
	require.True(t, a.contains(uintptr(p)))

	q, err := a.Allocate(typ)
	require.NoError(t, err)
	require.Equal(t, p, q, "released slot should be reused first")
	require.Equal(t, plain{}, *(*plain)(q), "reused slot must be zeroed")
	require.NoError(t, a.Release(uintptr(q), typ))
}

func TestArenaGrowsSlabs(t *testing.T) {
	a := newTestArena(t, ArenaConfig{SlabSize: 64, MaxClass: 8})
	typ := typeOf[uint64]()

	var addrs []unsafe.Pointer
	for i := 0; i < 20; i++ {
		p, err := a.Allocate(typ)
		require.NoError(t, err)
		*(*uint64)(p) = uint64(i)
		addrs = append(addrs, p)
	}
	require.Equal(t, 3, a.Slabs(), "64-byte slabs hold 8 words each")
	require.Equal(t, 20, a.Live())

	for i, p := range addrs {
		require.Equal(t, uint64(i), *(*uint64)(p))
		require.NoError(t, a.Release(uintptr(p), typ))
	}
	require.Equal(t, 0, a.Live())
}

func TestArenaReleaseErrors(t *testing.T) {
	a := newTestArena(t, DefaultArenaConfig)

	p, err := a.Allocate(typeOf[uint64]())
	require.NoError(t, err)

	err = a.Release(uintptr(p), typeOf[[64]byte]())
	require.ErrorIs(t, err, ErrTypeMismatch)

	require.ErrorIs(t, a.Close(), ErrLive)

	require.NoError(t, a.Release(uintptr(p), typeOf[uint64]()))
	require.ErrorIs(t, a.Release(uintptr(p), typeOf[uint64]()), ErrNotAllocated)
}

func TestArenaConfigValidation(t *testing.T) {
	_, err := NewArena(ArenaConfig{SlabSize: 16, MaxClass: 64})
	if errors.Is(err, ErrUnsupported) {
		t.Skip("arena not supported on this platform")
	}
	require.Error(t, err)
}

// ---------------------------------------------------------------------------
// Router
// ---------------------------------------------------------------------------

func TestRouterRoutesByType(t *testing.T) {
	r := NewRouter()
	if err := r.EnableArena(ArenaConfig{SlabSize: 4096, MaxClass: 64}); errors.Is(err, ErrUnsupported) {
		t.Skip("arena not supported on this platform")
	} else {
		require.NoError(t, err)
	}

	flat, err := r.Allocate(typeOf[plain]())
	require.NoError(t, err)
	boxed, err := r.Allocate(typeOf[withString]())
	require.NoError(t, err)

	require.Equal(t, Stats{Heap: 1, Arena: 1}, r.Stats())
	require.True(t, r.Owns(uintptr(flat)))
	require.True(t, r.Owns(uintptr(boxed)))

	// Disabling the arena must not strand its allocations.
	r.DisableArena()
	require.False(t, r.ArenaEnabled())
	require.NoError(t, r.Release(uintptr(flat), typeOf[plain]()))
	require.NoError(t, r.Release(uintptr(boxed), typeOf[withString]()))
	require.Equal(t, 0, r.Live())
}

func TestRouterDisownAdopt(t *testing.T) {
	r := NewRouter()
	typ := typeOf[withString]()

	p, err := r.Allocate(typ)
	require.NoError(t, err)

	q, err := r.Disown(uintptr(p))
	require.NoError(t, err)
	require.Equal(t, 0, r.Live())

	_, err = r.Disown(uintptr(p))
	require.ErrorIs(t, err, ErrNotAllocated)

	r.Adopt(q)
	require.Equal(t, 1, r.Live())
	require.NoError(t, r.Release(uintptr(q), typ))
}

func TestRouterFromEnv(t *testing.T) {
	t.Setenv("TAGBOX_ARENA", "true")
	t.Setenv("TAGBOX_ARENA_SLAB", "8192")

	r := NewRouter()
	err := r.configureFromEnv()
	if errors.Is(err, ErrUnsupported) {
		t.Skip("arena not supported on this platform")
	}
	require.NoError(t, err)
	require.True(t, r.ArenaEnabled())
	require.Equal(t, 8192, r.arena.cfg.SlabSize)

	t.Setenv("TAGBOX_ARENA", "sometimes")
	require.Error(t, NewRouter().configureFromEnv())
}
