// Package tagbox stores a discriminated union in one machine word.
//
// A Box holds the address of a heap-allocated payload with a small
// discriminant packed into the address bits the platform does not use (see
// package discriminant for the split). A union type describes its variants
// through Variants: variant i is boxed under discriminant i, and every
// operation dispatches on that number.
//
// Unions are not usually written by hand. tagboxgen reads a shape struct or a
// tagbox.toml file and generates the variant types, the Variants table and a
// one-word container:
//
//	//go:generate go run github.com/chazu/tagbox/cmd/tagboxgen shape --type itemShape
//
//	c := ContainerFromNumber(10)
//	defer c.Drop()
//	c.View(func(it Item) { fmt.Println(it) })
//
// The Go collector cannot see an address held in an integer, so payloads are
// owned by package alloc until the box is consumed. Every box must be
// consumed exactly once, by Decode, a container's IntoInner or Drop, or
// IntoRaw. A box that is never consumed leaks its payload.
package tagbox
