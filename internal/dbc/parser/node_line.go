package parser

import (
	"strings"

	"github.com/serebryakov7/dbcbus/internal/dbc"
)

const nodeLineStarter = "BU_:"

// NodeLineParser recognizes `BU_: NAME1 NAME2 ...` and attaches one
// Node per name to the bus. A bare `BU_:` with no names is valid.
type NodeLineParser struct{}

func (NodeLineParser) TryParse(line string, ctx *Context) (bool, error) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, nodeLineStarter) {
		return false, nil
	}

	rest := strings.TrimSpace(trimmed[len(nodeLineStarter):])
	if rest == "" {
		return true, nil
	}

	bus, ok := ctx.bus()
	if !ok {
		return true, nil
	}

	for _, name := range strings.Fields(rest) {
		bus.AddNode(dbc.NewNode(name))
	}
	return true, nil
}
