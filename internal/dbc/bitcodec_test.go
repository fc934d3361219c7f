package dbc_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/serebryakov7/dbcbus/internal/dbc"
)

func TestBitCodecExtractLSBWholeByte(t *testing.T) {
	t.Parallel()

	data := []byte{0x12, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}
	raw, err := (dbc.BitCodec{}).Extract(data, 0, 8, dbc.ByteOrderLSB, 8)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x12), raw)
}

func TestBitCodecExtractMSBWholeByte(t *testing.T) {
	t.Parallel()

	data := []byte{0x34, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}
	raw, err := (dbc.BitCodec{}).Extract(data, 7, 8, dbc.ByteOrderMSB, 8)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x34), raw)
}

func TestBitCodecExtractLSBSubByteField(t *testing.T) {
	t.Parallel()

	// bits 4..7 of byte 0, should read the high nibble
	data := []byte{0xA5}
	raw, err := (dbc.BitCodec{}).Extract(data, 4, 4, dbc.ByteOrderLSB, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(0xA), raw)
}

func TestBitCodecRoundTripLSB(t *testing.T) {
	t.Parallel()

	buf := make([]byte, 8)
	err := (dbc.BitCodec{}).PackInto(buf, 0x1FF, 12, 9, dbc.ByteOrderLSB, 8)
	require.NoError(t, err)

	raw, err := (dbc.BitCodec{}).Extract(buf, 12, 9, dbc.ByteOrderLSB, 8)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x1FF), raw)
}

func TestBitCodecRoundTripMSBAcrossMessageLengths(t *testing.T) {
	t.Parallel()

	for _, n := range []int{8, 16, 64} {
		n := n
		buf := make([]byte, n)
		err := (dbc.BitCodec{}).PackInto(buf, 0x2A, 7, 8, dbc.ByteOrderMSB, n)
		require.NoError(t, err)

		raw, err := (dbc.BitCodec{}).Extract(buf, 7, 8, dbc.ByteOrderMSB, n)
		require.NoError(t, err)
		assert.Equal(t, uint64(0x2A), raw, "message length %d", n)
	}
}

func TestBitCodecExtractOutOfRange(t *testing.T) {
	t.Parallel()

	data := []byte{0x00}
	_, err := (dbc.BitCodec{}).Extract(data, 0, 16, dbc.ByteOrderLSB, 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, dbc.ErrSignalOutOfRange)
}

func TestBitCodecExtractInvalidLength(t *testing.T) {
	t.Parallel()

	data := make([]byte, 8)
	_, err := (dbc.BitCodec{}).Extract(data, 0, 0, dbc.ByteOrderLSB, 8)
	require.Error(t, err)
	assert.ErrorIs(t, err, dbc.ErrInvalidSignal)
}

func TestBitCodecHexEncodeDecodeRoundTrip(t *testing.T) {
	t.Parallel()

	data := []byte{0xAA, 0x00, 0xFF, 0x01}
	encoded := (dbc.BitCodec{}).HexEncode(data)
	assert.Equal(t, "aa 00 ff 01", encoded)

	decoded, err := (dbc.BitCodec{}).HexDecode(encoded, " ")
	require.NoError(t, err)
	assert.Equal(t, data, decoded)
}

func TestBitCodecHexDecodeSkipsEmptyTokens(t *testing.T) {
	t.Parallel()

	decoded, err := (dbc.BitCodec{}).HexDecode("aa  bb", " ")
	require.NoError(t, err)
	assert.Equal(t, []byte{0xAA, 0xBB}, decoded)
}

func TestBitCodecHexDecodeInvalidByte(t *testing.T) {
	t.Parallel()

	_, err := (dbc.BitCodec{}).HexDecode("zz", " ")
	require.Error(t, err)
	assert.ErrorIs(t, err, dbc.ErrParseSyntax)
}
