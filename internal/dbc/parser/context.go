// Package parser turns DBC text lines into mutations on a dbc.Registry.
package parser

import "github.com/serebryakov7/dbcbus/internal/dbc"

// Context carries the state a single line is parsed against: which
// registry and which bus (derived from the source file's name) it
// belongs to.
type Context struct {
	Registry *dbc.Registry
	BusName  string
}

func (c *Context) bus() (*dbc.Bus, bool) {
	return c.Registry.GetBus(c.BusName)
}

// LineParser is one strategy in the dispatch chain. TryParse reports
// whether it recognized and handled the line; a false return lets the
// next parser in the chain try.
type LineParser interface {
	TryParse(line string, ctx *Context) (bool, error)
}
