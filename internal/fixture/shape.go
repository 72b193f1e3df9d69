// Package fixture holds generated unions used by tests.
package fixture

//go:generate go run github.com/chazu/tagbox/cmd/tagboxgen shape --type itemShape --container Container --derive equal,compare
//go:generate go run github.com/chazu/tagbox/cmd/tagboxgen gen

// itemShape lists the variants of Item.
type itemShape struct {
	Empty   struct{}
	Number  uint32
	Triple  struct{ A uint16; B bool; C int8 } `tagbox:"tuple"`
	Labeled struct{ A uint32; B bool }        `tagbox:"fields"`
}

// Counter counts how many times the payload holding it was dropped.
type Counter struct {
	Drops int
}

// Drop implements tagbox.Dropper.
func (c *Counter) Drop() { c.Drops++ }
