package video

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

func annexB(nals ...[]byte) []byte {
	var out []byte
	for _, n := range nals {
		out = append(out, 0x00, 0x00, 0x00, 0x01)
		out = append(out, n...)
	}
	return out
}

func h264SPS() []byte { return []byte{0x67, 0x42, 0xC0, 0x1E, 0xAB, 0xCD} }
func h264PPS() []byte { return []byte{0x68, 0xCE, 0x3C, 0x80} }
func h264IDR() []byte { return []byte{0x65, 0x88, 0x84, 0x00} }
func h264NonIDR() []byte { return []byte{0x61, 0x9A, 0x02, 0x00} }

func TestH264KeyframeBuildsCodecPrivateAndEmitsKeyPacket(t *testing.T) {
	sink := &recordingSink{}
	p := New(0, trackinfo.TrackInfo{}, H264, 1920, 1080, track.NewUIDService(), sink, nil)

	f := frame.New(annexB(h264SPS(), h264PPS(), h264IDR()))
	f.Timecode, f.Duration = 0, 40_000_000
	_, err := p.Process(f)
	require.NoError(t, err)

	require.Len(t, sink.packets, 1)
	assert.True(t, sink.packets[0].References.IsKey())

	tr := p.SetHeaders()
	assert.Equal(t, track.CodecH264, tr.CodecID)
	require.NotEmpty(t, tr.CodecData)
	assert.Equal(t, byte(0x01), tr.CodecData[0]) // configurationVersion
}

func TestPFrameReferencesPriorKeyframe(t *testing.T) {
	sink := &recordingSink{}
	p := New(0, trackinfo.TrackInfo{}, H264, 1920, 1080, track.NewUIDService(), sink, nil)

	key := frame.New(annexB(h264SPS(), h264PPS(), h264IDR()))
	key.Timecode, key.Duration = 0, 40_000_000
	_, err := p.Process(key)
	require.NoError(t, err)

	next := frame.New(annexB(h264NonIDR()))
	next.Timecode, next.Duration = 40_000_000, 40_000_000
	_, err = p.Process(next)
	require.NoError(t, err)

	require.Len(t, sink.packets, 2)
	assert.Equal(t, int64(0), sink.packets[1].References.Prev())
}

func TestAutomaticTypeDerivesFromIDRPresence(t *testing.T) {
	sink := &recordingSink{}
	p := New(0, trackinfo.TrackInfo{}, H264, 320, 240, track.NewUIDService(), sink, nil)

	f := frame.New(annexB(h264NonIDR()))
	f.Timecode, f.Duration = 0, 40_000_000
	// f.Type left as frame.Automatic
	_, err := p.Process(f)
	require.NoError(t, err)

	require.Len(t, sink.packets, 1)
	// no prior reference exists yet, so even a non-key frame gets no refs
	assert.True(t, sink.packets[0].References.IsKey())
}

func TestPreSuppliedCodecPrivateSkipsExtraction(t *testing.T) {
	sink := &recordingSink{}
	ti := trackinfo.TrackInfo{PrivateData: []byte{0xAA, 0xBB}}
	p := New(0, ti, H264, 320, 240, track.NewUIDService(), sink, nil)

	tr := p.SetHeaders()
	assert.Equal(t, []byte{0xAA, 0xBB}, tr.CodecData)
}
