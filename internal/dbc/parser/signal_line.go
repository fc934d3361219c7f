package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/serebryakov7/dbcbus/internal/dbc"
)

var signalRegex = regexp.MustCompile(
	`^\s*SG_\s+([\w]+)\s*([Mm\d]*)\s*:\s*(\d+)\|(\d+)@([01])([+-])\s+\(([\d+\-eE.]+),([\d+\-eE.]+)\)\s+\[([\d+\-eE.]+)\|([\d+\-eE.]+)\]\s+"([^"]*)"\s+([\w\s,]+)\s*$`,
)

// SignalLineParser recognizes a ` SG_ ...` line belonging to the most
// recently declared message and adds it to the bus's pending signal
// set (resolved into its owning message by Bus.Build).
type SignalLineParser struct{}

func (SignalLineParser) TryParse(line string, ctx *Context) (bool, error) {
	m := signalRegex.FindStringSubmatch(line)
	if m == nil {
		return false, nil
	}

	name := m[1]
	multiplexer := m[2]
	startBit, _ := strconv.Atoi(m[3])
	length, _ := strconv.Atoi(m[4])

	order := dbc.ByteOrderLSB
	if m[5] == "0" {
		order = dbc.ByteOrderMSB
	}

	valueType := dbc.Unsigned
	if m[6] == "-" {
		valueType = dbc.Signed
	}

	factor := parseFloat32(m[7])
	offset := parseFloat32(m[8])
	min := parseFloat32(m[9])
	max := parseFloat32(m[10])
	unit := m[11]
	receiver := strings.TrimSpace(m[12])

	signal := dbc.NewSignal(name, startBit, length, order, valueType, factor, offset, min, max, unit, receiver, multiplexer)

	bus, ok := ctx.bus()
	if !ok {
		return true, nil
	}
	bus.AddSignal(signal)
	return true, nil
}

func parseFloat32(s string) float32 {
	v, _ := strconv.ParseFloat(s, 32)
	return float32(v)
}
