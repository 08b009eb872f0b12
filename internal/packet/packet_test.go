package packet

import (
	"testing"

	"github.com/acdvorak/mkvtoolnix/internal/frame"
	"github.com/stretchr/testify/assert"
)

func TestReferenceConstructors(t *testing.T) {
	assert.True(t, None().IsKey())

	p := Previous(100)
	assert.False(t, p.IsKey())
	assert.Equal(t, int64(100), p.Prev())
	assert.Equal(t, frame.NoTimecode, p.Next())

	b := Bidirectional(40, 120)
	assert.Equal(t, int64(40), b.Prev())
	assert.Equal(t, int64(120), b.Next())
}

func TestPacketValid(t *testing.T) {
	ok := New(1, frame.NewBuffer([]byte{1}), 0, 100, None())
	assert.True(t, ok.Valid())

	empty := New(1, frame.NewBuffer(nil), 0, 100, None())
	assert.False(t, empty.Valid())

	negative := New(1, frame.NewBuffer([]byte{1}), -1, 100, None())
	assert.False(t, negative.Valid())
}
