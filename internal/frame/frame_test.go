package frame

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewFrameDefaults(t *testing.T) {
	f := New([]byte{1, 2, 3})
	assert.Equal(t, NoTimecode, f.Timecode)
	assert.Equal(t, NoTimecode, f.Duration)
	assert.False(t, f.HasTimecode())
	assert.False(t, f.HasDuration())
	assert.Equal(t, 3, f.Payload.Len())
}

func TestBufferCopyRangeIsIndependent(t *testing.T) {
	origin := NewBuffer([]byte{0xAA, 0xBB, 0xCC, 0xDD})
	sub := origin.CopyRange(1, 2)
	assert.Equal(t, []byte{0xBB, 0xCC}, sub.Bytes())

	// Mutating the origin must not affect the copy.
	origin.Bytes()[1] = 0x00
	assert.Equal(t, []byte{0xBB, 0xCC}, sub.Bytes())
}
