package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/serebryakov7/dbcbus/internal/dbc"
)

const signalValTypeLineStarter = "SIG_VALTYPE_"

var signalValTypeRegex = regexp.MustCompile(`SIG_VALTYPE_\s+(\d+)\s+([A-Za-z_]\w*)\s*:\s*([0123])\s*;`)

// SignalValueTypeLineParser recognizes `SIG_VALTYPE_ <id> <signal>: <0|1|2|3>;`
// and overrides the referenced signal's interpretation to IEEEFloat (1)
// or IEEEDouble (2). Values 0 and 3 parse successfully but leave the
// signal's integer interpretation untouched.
type SignalValueTypeLineParser struct{}

func (SignalValueTypeLineParser) TryParse(line string, ctx *Context) (bool, error) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, signalValTypeLineStarter) {
		return false, nil
	}

	m := signalValTypeRegex.FindStringSubmatch(trimmed)
	if m == nil {
		return false, nil
	}

	id, err := strconv.ParseUint(m[1], 10, 32)
	if err != nil {
		return false, nil
	}
	name := m[2]
	code := m[3]

	bus, ok := ctx.bus()
	if !ok {
		return true, nil
	}

	switch code {
	case "1":
		return true, bus.AddSignalValueType(uint32(id), name, dbc.IEEEFloat)
	case "2":
		return true, bus.AddSignalValueType(uint32(id), name, dbc.IEEEDouble)
	default:
		return true, nil
	}
}
