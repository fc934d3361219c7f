package dbc_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/serebryakov7/dbcbus/internal/dbc"
)

func TestDLCToLength(t *testing.T) {
	t.Parallel()

	cases := []struct {
		dlc    int
		length int
	}{
		{0, 0}, {1, 1}, {8, 8}, {9, 12}, {12, 24}, {15, 64},
	}
	for _, c := range cases {
		length, ok := dbc.DLCToLength(c.dlc)
		assert.True(t, ok)
		assert.Equal(t, c.length, length)
	}
}

func TestDLCToLengthOutOfRange(t *testing.T) {
	t.Parallel()

	_, ok := dbc.DLCToLength(16)
	assert.False(t, ok)
	_, ok = dbc.DLCToLength(-1)
	assert.False(t, ok)
}

func TestLengthToDLCRoundTrips(t *testing.T) {
	t.Parallel()

	for dlc := 0; dlc < 16; dlc++ {
		length, ok := dbc.DLCToLength(dlc)
		assert.True(t, ok)
		gotDLC, ok := dbc.LengthToDLC(length)
		assert.True(t, ok)
		assert.Equal(t, dlc, gotDLC)
	}
}

func TestLengthToDLCUnknownLength(t *testing.T) {
	t.Parallel()

	_, ok := dbc.LengthToDLC(13)
	assert.False(t, ok)
}
