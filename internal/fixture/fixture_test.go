package fixture

import (
	"errors"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/require"

	"github.com/chazu/tagbox"
	"github.com/chazu/tagbox/alloc"
)

func requirePanicsWith(t *testing.T, target error, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		require.NotNil(t, r, "expected panic")
		err, ok := r.(error)
		require.True(t, ok, "panic value %v is not an error", r)
		require.True(t, errors.Is(err, target), "panic %v is not %v", err, target)
	}()
	fn()
}

func allItems() []Container {
	return []Container{
		ContainerFrom(Empty{}),
		ContainerFromNumber(10),
		ContainerFromTriple(100, true, -3),
		ContainerFromLabeled(10_000, false),
	}
}

func TestDiscriminants(t *testing.T) {
	items := allItems()
	for i := range items {
		require.Equal(t, tagbox.Discriminant(i), items[i].Discriminant())
		items[i].Drop()
		require.True(t, items[i].IsZero())
	}
}

func TestRoundTrip(t *testing.T) {
	before := alloc.Default.Live()

	tests := []struct {
		c    Container
		want Item
	}{
		{ContainerFrom(Empty{}), Empty{}},
		{ContainerFromNumber(^uint32(0)), Number{Value: ^uint32(0)}},
		{ContainerFromTriple(12_200, true, -128), Triple{F0: 12_200, F1: true, F2: -128}},
		{ContainerFromLabeled(10, false), Labeled{A: 10, B: false}},
	}
	// Empty is zero-size and never allocates.
	require.Equal(t, before+3, alloc.Default.Live())

	for _, tt := range tests {
		require.Equal(t, tt.want, tt.c.IntoInner())
	}
	require.Equal(t, before, alloc.Default.Live())
}

func TestDecodeFromBox(t *testing.T) {
	var vs ItemVariants
	for _, v := range []Item{Empty{}, Number{Value: 7}, Triple{F0: 1, F1: false, F2: 2}, Labeled{A: 3, B: true}} {
		b := vs.Encode(v)
		require.Equal(t, v.Ordinal(), b.Discriminant())
		require.Equal(t, v, vs.Decode(b))
	}
}

func TestView(t *testing.T) {
	c := ContainerFromLabeled(0, false)

	var seen []Item
	c.View(func(it Item) { seen = append(seen, it) })
	c.View(func(it Item) { seen = append(seen, it) })
	require.Equal(t, []Item{Labeled{}, Labeled{}}, seen)

	require.Equal(t, Labeled{}, c.IntoInner())
}

func TestDoubleConsume(t *testing.T) {
	c := ContainerFromNumber(1)
	c.IntoInner()

	requirePanicsWith(t, tagbox.ErrConsumed, func() { c.IntoInner() })
	requirePanicsWith(t, tagbox.ErrConsumed, func() { c.Drop() })
	requirePanicsWith(t, tagbox.ErrConsumed, func() { c.View(func(Item) {}) })
	require.Equal(t, "Container(empty)", c.String())
}

func TestOrdering(t *testing.T) {
	small, large := ContainerFromNumber(100), ContainerFromNumber(10_000)
	defer small.Drop()
	defer large.Drop()

	require.Negative(t, small.Compare(&large))
	require.Positive(t, large.Compare(&small))
	require.Zero(t, small.Compare(&small))

	empty := ContainerFrom(Empty{})
	defer empty.Drop()
	require.Negative(t, empty.Compare(&small), "lower ordinal sorts first")

	off, on := ContainerFromLabeled(1, false), ContainerFromLabeled(1, true)
	defer off.Drop()
	defer on.Drop()
	require.Negative(t, off.Compare(&on))

	a, b := ContainerFromTriple(1, true, 5), ContainerFromTriple(1, true, -5)
	defer a.Drop()
	defer b.Drop()
	require.Positive(t, a.Compare(&b))
}

func TestEqualAndClone(t *testing.T) {
	items := allItems()
	for i := range items {
		clone := items[i].Clone()
		if i != 0 {
			require.NotEqual(t, items[i].value.Addr(), clone.value.Addr(), "clone must not share the allocation")
		}
		require.True(t, items[i].Equal(&clone))

		for j := range items {
			if i != j {
				require.False(t, items[i].Equal(&items[j]), "%s equals %s", items[i].String(), items[j].String())
			}
		}
		clone.Drop()
	}
	for i := range items {
		items[i].Drop()
	}

	x, y := ContainerFromNumber(5), ContainerFromNumber(6)
	defer x.Drop()
	defer y.Drop()
	require.False(t, x.Equal(&y))
}

func TestString(t *testing.T) {
	want := []string{
		"Empty{}",
		"Number{Value:10}",
		"Triple{F0:100 F1:true F2:-3}",
		"Labeled{A:10000 B:false}",
	}
	items := allItems()
	for i := range items {
		require.Equal(t, want[i], items[i].String())
		items[i].Drop()
	}
}

func TestCBOR(t *testing.T) {
	items := allItems()
	for i := range items {
		data, err := cbor.Marshal(&items[i])
		require.NoError(t, err)

		var got Container
		require.NoError(t, cbor.Unmarshal(data, &got))
		require.True(t, items[i].Equal(&got), "decoded %s, want %s", got.String(), items[i].String())

		// Decoding into a live container drops its old value first.
		require.NoError(t, cbor.Unmarshal(data, &got))
		got.Drop()
		items[i].Drop()
	}
}

func TestDropCounts(t *testing.T) {
	counter := &Counter{}

	h := HolderFromCounted(counter)
	h.View(func(Held) {})
	h.View(func(Held) {})
	require.Equal(t, 0, counter.Drops, "view must not drop")

	clone := h.Clone()
	require.Equal(t, 0, counter.Drops, "clone must not drop")

	v := h.IntoInner()
	require.Equal(t, 0, counter.Drops, "decode alone must not drop")
	HeldVariants{}.Drop(v)
	require.Equal(t, 1, counter.Drops)

	clone.Drop()
	require.Equal(t, 2, counter.Drops)

	idle := HolderFrom(Idle{})
	idle.Drop()
	require.Equal(t, 2, counter.Drops)
}

func TestExhausted(t *testing.T) {
	if tagbox.MaxDiscriminant < itemVariantCount {
		t.Skip("build split too narrow")
	}
	b := tagbox.NewUnchecked[Item](Number{}, itemVariantCount)
	defer tagbox.Release[Number](b)

	defer func() {
		ex, ok := recover().(*tagbox.ExhaustedError)
		require.True(t, ok)
		require.Equal(t, "Item", ex.Union)
		require.Equal(t, itemVariantCount, ex.Variants)
		require.EqualValues(t, itemVariantCount, ex.Discriminant)
	}()
	ItemVariants{}.View(b, func(Item) {})
}

func TestEncodeUnknown(t *testing.T) {
	requirePanicsWith(t, tagbox.ErrUnknownVariant, func() { ItemVariants{}.Encode(nil) })
	requirePanicsWith(t, tagbox.ErrUnknownVariant, func() { ItemVariants{}.Encode(&Number{}) })
}

func TestArenaBacked(t *testing.T) {
	err := alloc.Default.EnableArena(alloc.ArenaConfig{SlabSize: 4096, MaxClass: 64})
	if errors.Is(err, alloc.ErrUnsupported) {
		t.Skip("arena not supported on this platform")
	}
	require.NoError(t, err)
	t.Cleanup(alloc.Default.DisableArena)

	before := alloc.Default.Stats()
	items := allItems()
	after := alloc.Default.Stats()
	require.Equal(t, before.Arena+3, after.Arena, "pointer-free payloads go to the arena")
	require.Equal(t, before.Heap, after.Heap)

	h := HolderFromCounted(&Counter{})
	require.Equal(t, before.Heap+1, alloc.Default.Stats().Heap, "pointer payloads stay on the heap")
	h.Drop()

	for i := range items {
		clone := items[i].Clone()
		require.True(t, items[i].Equal(&clone))
		clone.Drop()
		items[i].Drop()
	}
	require.Equal(t, before, alloc.Default.Stats())
}
