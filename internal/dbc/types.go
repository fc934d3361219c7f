package dbc

// ByteOrder is the bit layout a signal is packed with inside its
// message payload.
type ByteOrder int

const (
	// ByteOrderMSB is the "Motorola" big-endian layout (DBC `@0`).
	ByteOrderMSB ByteOrder = 0
	// ByteOrderLSB is the "Intel" little-endian layout (DBC `@1`).
	ByteOrderLSB ByteOrder = 1
)

// ValueType selects how a signal's raw bits are interpreted.
type ValueType int

const (
	Unsigned ValueType = iota
	Signed
	IEEEFloat
	IEEEDouble
)

// dlcToLength is the fixed DLC (0..15) to payload-byte-length bijection.
var dlcToLength = [16]int{0, 1, 2, 3, 4, 5, 6, 7, 8, 12, 16, 20, 24, 32, 48, 64}

// lengthToDLC is the reverse lookup, built once from dlcToLength.
var lengthToDLC = func() map[int]int {
	m := make(map[int]int, len(dlcToLength))
	for dlc, length := range dlcToLength {
		m[length] = dlc
	}
	return m
}()

// DLCToLength returns the payload byte length for a DLC value.
func DLCToLength(dlc int) (int, bool) {
	if dlc < 0 || dlc >= len(dlcToLength) {
		return 0, false
	}
	return dlcToLength[dlc], true
}

// LengthToDLC returns the DLC value for a payload byte length.
func LengthToDLC(length int) (int, bool) {
	dlc, ok := lengthToDLC[length]
	return dlc, ok
}
