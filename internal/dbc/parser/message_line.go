package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/serebryakov7/dbcbus/internal/dbc"
)

const messageLineStarter = "BO_ "

var messageRegex = regexp.MustCompile(`BO_ (\d+)\s+([A-Za-z_]\w*)\s*:\s*(\d+)\s+([A-Za-z_]\w*)`)

// MessageLineParser recognizes `BO_ <id> <name> : <length> <transmitter>`.
// A message whose transmitter node is not found on the bus is
// constructed but dropped without error (tolerated malformed input,
// matching the original tooling).
type MessageLineParser struct{}

func (MessageLineParser) TryParse(line string, ctx *Context) (bool, error) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, messageLineStarter) {
		return false, nil
	}

	m := messageRegex.FindStringSubmatch(trimmed)
	if m == nil {
		return false, nil
	}

	id, err := strconv.ParseUint(m[1], 10, 32)
	if err != nil {
		return false, nil
	}
	length, err := strconv.Atoi(m[3])
	if err != nil {
		return false, nil
	}

	msg := dbc.NewMessage(uint32(id), m[2], m[4])
	if err := msg.SetLength(length); err != nil {
		return true, err
	}

	bus, ok := ctx.bus()
	if !ok {
		return true, nil
	}

	node, ok := bus.GetNodeByName(msg.Transmitter)
	if !ok {
		return true, nil
	}
	node.AddTx(msg)
	return true, nil
}
