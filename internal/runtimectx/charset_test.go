package runtimectx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCharsetTableUTF8IsIdentity(t *testing.T) {
	tbl, err := NewCharsetTable("")
	require.NoError(t, err)
	out, err := tbl.Decode("hello")
	require.NoError(t, err)
	assert.Equal(t, "hello", out)
}

func TestCharsetTableDecodesISO8859_1(t *testing.T) {
	tbl, err := NewCharsetTable("ISO-8859-1")
	require.NoError(t, err)
	// 0xE9 is 'é' in ISO-8859-1.
	out, err := tbl.Decode(string([]byte{0xE9}))
	require.NoError(t, err)
	assert.Equal(t, "é", out)
}

func TestCharsetTableRejectsUnknownName(t *testing.T) {
	_, err := NewCharsetTable("NOPE-9000")
	assert.Error(t, err)
}
