package aac

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acdvorak/mkvtoolnix/internal/frame"
	"github.com/acdvorak/mkvtoolnix/internal/packet"
	"github.com/acdvorak/mkvtoolnix/internal/track"
	"github.com/acdvorak/mkvtoolnix/internal/trackinfo"
)

type recordingSink struct {
	packets []packet.Packet
}

func (s *recordingSink) Emit(p packet.Packet) { s.packets = append(s.packets, p) }

// E4: codec-private [0x11, 0x90] -> profile LC, sr index 3 (48 kHz),
// channels 2, no SBR. Duration = 1024*1e9/48000 ~= 21333333 ns.
func TestE4AACHeaderAndDuration(t *testing.T) {
	sink := &recordingSink{}
	p, err := New(0, trackinfo.TrackInfo{}, []byte{0x11, 0x90}, track.NewUIDService(), sink, nil)
	require.NoError(t, err)

	assert.Equal(t, 48000, p.sampleRate)
	assert.Equal(t, 2, p.channels)
	assert.False(t, p.sbr)

	_, err = p.Process(frame.New(make([]byte, 100)))
	require.NoError(t, err)
	require.Len(t, sink.packets, 1)

	assert.Equal(t, int64(0), sink.packets[0].Timecode)
	assert.InDelta(t, 21_333_333, sink.packets[0].Duration, 1)
}

func TestInvalidCodecPrivateLength(t *testing.T) {
	_, err := New(0, trackinfo.TrackInfo{}, []byte{0x11, 0x90, 0x00}, track.NewUIDService(), &recordingSink{}, nil)
	require.Error(t, err)
}

func TestSBRDoublesOutputSamplingFreqAndFrameSize(t *testing.T) {
	// 2-byte base config identical to the E4 fixture, plus a 3-byte SBR
	// extension: sync-extension 0x2B7, extension AudioObjectType 5 (SBR).
	sbrTail := []byte{0x56, 0xE5, 0x80} // bits: 101 0110 1110 0101 1000 0000
	codecPrivate := append([]byte{0x11, 0x90}, sbrTail...)

	sink := &recordingSink{}
	p, err := New(0, trackinfo.TrackInfo{}, codecPrivate, track.NewUIDService(), sink, nil)
	require.NoError(t, err)
	require.True(t, p.sbr)

	_, err = p.Process(frame.New(make([]byte, 100)))
	require.NoError(t, err)
	require.Len(t, sink.packets, 1)

	wantDuration := int64(2048) * 1_000_000_000 / int64(p.sampleRate)
	assert.Equal(t, wantDuration, sink.packets[0].Duration)

	tr := p.SetHeaders()
	assert.Equal(t, float64(2*p.sampleRate), tr.Audio.OutputSamplingFreq)
}
