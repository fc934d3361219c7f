package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/serebryakov7/dbcbus/internal/dbc"
)

const extraMessageLineStarter = "BO_TX_BU_ "

var extraTransmitterRegex = regexp.MustCompile(`BO_TX_BU_ (\d+)\s*:\s*((?:\s*(?:[A-Za-z_]\w*)\s*,?)+);`)

// ExtraMessageLineParser recognizes `BO_TX_BU_ <id> : <name>,<name>,...;`
// and records the additional transmitters on the already-known
// message.
type ExtraMessageLineParser struct{}

func (ExtraMessageLineParser) TryParse(line string, ctx *Context) (bool, error) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, extraMessageLineStarter) {
		return false, nil
	}

	m := extraTransmitterRegex.FindStringSubmatch(trimmed)
	if m == nil {
		return false, nil
	}

	id, err := strconv.ParseUint(m[1], 10, 32)
	if err != nil {
		return false, nil
	}

	bus, ok := ctx.bus()
	if !ok {
		return true, nil
	}
	msg, ok := bus.GetMessageByID(uint32(id))
	if !ok {
		return true, fmt.Errorf("BO_TX_BU_ %d: %w", id, dbc.ErrUnresolvedReference)
	}

	msg.AdditionalTransmitters = splitTransmitters(m[2])
	return true, nil
}

func splitTransmitters(list string) []string {
	raw := strings.Split(list, ",")
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}
