package mpeg4p2

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

// bitWriter packs MSB-first bits into a byte slice, mirroring
// bitReader's layout, for constructing synthetic VOL headers in tests.
type bitWriter struct {
	bits []byte // one bool per bit, true=1
}

func (w *bitWriter) writeBits(value uint32, n int) {
	for i := n - 1; i >= 0; i-- {
		w.bits = append(w.bits, byte((value>>uint(i))&1))
	}
}

func (w *bitWriter) bytes() []byte {
	out := make([]byte, (len(w.bits)+7)/8)
	for i, b := range w.bits {
		if b == 1 {
			out[i/8] |= 1 << uint(7-i%8)
		}
	}
	return out
}

// buildVOLConfig constructs a minimal VOL header (rectangular shape, no
// extended PAR, no VOL control parameters, variable VOP rate) carrying
// width/height, the mirror image of parseVOL's field order.
func buildVOLConfig(width, height uint32) []byte {
	w := &bitWriter{}
	w.writeBits(0, 1)  // random_accessible_vol
	w.writeBits(1, 8)  // video_object_type_indication
	w.writeBits(0, 1)  // is_object_layer_identifier
	w.writeBits(1, 4)  // aspect_ratio_info = 1 (square)
	w.writeBits(0, 1)  // vol_control_parameters
	w.writeBits(0, 2)  // video_object_layer_shape = rectangular
	w.writeBits(1, 1)  // marker_bit
	w.writeBits(25, 16) // vop_time_increment_resolution
	w.writeBits(1, 1)  // marker_bit
	w.writeBits(0, 1)  // fixed_vop_rate
	w.writeBits(1, 1)  // marker_bit
	w.writeBits(width, 13)
	w.writeBits(1, 1) // marker_bit
	w.writeBits(height, 13)

	header := []byte{0x00, 0x00, 0x01, 0x20}
	return append(header, w.bytes()...)
}

func vopFrame(codingType uint32, payload ...byte) []byte {
	w := &bitWriter{}
	w.writeBits(codingType, 2)
	w.writeBits(0, 6) // pad to one byte
	return append([]byte{0x00, 0x00, 0x01, 0xB6}, append(w.bytes(), payload...)...)
}

func newTestPacketizer(sink *recordingSink) *Packetizer {
	return New(0, trackinfo.TrackInfo{}, 25, 320, 240, false, true, false, false, track.NewUIDService(), sink, nil)
}

// E5: non-native -> native, fps=25, sequence I P B B P.
func TestE5ReorderSequence(t *testing.T) {
	sink := &recordingSink{}
	p := newTestPacketizer(sink)

	config := buildVOLConfig(320, 240)
	iFrame := vopFrame(0)
	pFrame1 := vopFrame(1)
	bFrame1 := vopFrame(2)
	bFrame2 := vopFrame(2)
	pFrame2 := vopFrame(1)

	_, err := p.Process(frame.New(append(config, iFrame...)))
	require.NoError(t, err)
	_, err = p.Process(frame.New(pFrame1))
	require.NoError(t, err)
	_, err = p.Process(frame.New(bFrame1))
	require.NoError(t, err)
	_, err = p.Process(frame.New(bFrame2))
	require.NoError(t, err)
	_, err = p.Process(frame.New(pFrame2))
	require.NoError(t, err)
	require.NoError(t, p.Flush())

	require.Len(t, sink.packets, 5)

	type want struct {
		timecode int64
		refs     packet.References
	}
	wants := []want{
		{0, packet.None()},
		{120_000_000, packet.Previous(0)},
		{40_000_000, packet.Bidirectional(0, 120_000_000)},
		{80_000_000, packet.Bidirectional(0, 120_000_000)},
		{200_000_000, packet.Previous(120_000_000)},
	}
	for i, w := range wants {
		assert.Equal(t, w.timecode, sink.packets[i].Timecode, "packet %d timecode", i)
		assert.Equal(t, w.refs, sink.packets[i].References, "packet %d refs", i)
		assert.Equal(t, int64(40_000_000), sink.packets[i].Duration, "packet %d duration", i)
	}
}

// Boundary 7: a stream of exactly one I frame produces one packet on
// flush().
func TestBoundaryLoneIFrame(t *testing.T) {
	sink := &recordingSink{}
	p := newTestPacketizer(sink)

	config := buildVOLConfig(320, 240)
	_, err := p.Process(frame.New(append(config, vopFrame(0)...)))
	require.NoError(t, err)
	require.NoError(t, p.Flush())

	require.Len(t, sink.packets, 1)
	assert.True(t, sink.packets[0].References.IsKey())
}

// Boundary 8: I B B P produces packets in order I, P, B, B with refs
// {}, {I}, {I,P}, {I,P}.
func TestBoundaryIBBPOrderAndRefs(t *testing.T) {
	sink := &recordingSink{}
	p := newTestPacketizer(sink)

	config := buildVOLConfig(320, 240)
	_, err := p.Process(frame.New(append(config, vopFrame(0)...)))
	require.NoError(t, err)
	_, err = p.Process(frame.New(vopFrame(2)))
	require.NoError(t, err)
	_, err = p.Process(frame.New(vopFrame(2)))
	require.NoError(t, err)
	_, err = p.Process(frame.New(vopFrame(1)))
	require.NoError(t, err)
	require.NoError(t, p.Flush())

	require.Len(t, sink.packets, 4)
	assert.True(t, sink.packets[0].References.IsKey())                  // I
	assert.Equal(t, int64(0), sink.packets[1].References.Prev())        // P refs {I}
	assert.Equal(t, int64(0), sink.packets[2].References.Prev())        // B refs {I,P}
	assert.Equal(t, sink.packets[1].Timecode, sink.packets[2].References.Next())
	assert.Equal(t, int64(0), sink.packets[3].References.Prev())        // B refs {I,P}
}

func TestNVOPDroppedWhenConfigured(t *testing.T) {
	sink := &recordingSink{}
	p := New(0, trackinfo.TrackInfo{}, 25, 320, 240, false, true, false, true, track.NewUIDService(), sink, nil)

	config := buildVOLConfig(320, 240)
	_, err := p.Process(frame.New(append(config, vopFrame(0)...)))
	require.NoError(t, err)
	_, err = p.Process(frame.New(vopFrame(3))) // NVOP
	require.NoError(t, err)
	_, err = p.Process(frame.New(vopFrame(1)))
	require.NoError(t, err)
	require.NoError(t, p.Flush())

	// I and the final P are emitted; the NVOP slot is consumed for
	// timing purposes but never emitted.
	require.Len(t, sink.packets, 2)
}

func TestDivX3ClassifiesWholeChunkViaBit30(t *testing.T) {
	sink := &recordingSink{}
	p := New(0, trackinfo.TrackInfo{}, 25, 320, 240, false, true, true, false, track.NewUIDService(), sink, nil)

	keyframe := []byte{0x00, 0x00, 0x00, 0x40} // bit 30 set (little-endian u32)
	_, err := p.Process(frame.New(keyframe))
	require.NoError(t, err)
	require.NoError(t, p.Flush())

	require.Len(t, sink.packets, 1)
	assert.True(t, sink.packets[0].References.IsKey())
}

func TestFixCodecStringDivXTrailingP(t *testing.T) {
	data := append([]byte{0x00, 0x00, 0x01, 0xB2}, []byte("DivX503p")...)
	data = append(data, 0x00)

	fixed := fixCodecString(data)
	assert.Equal(t, byte('n'), fixed[len(fixed)-2])
}

func TestExtractSizeFromVOLHeader(t *testing.T) {
	config := buildVOLConfig(640, 480)
	w, h, ok := extractSize(config)
	require.True(t, ok)
	assert.Equal(t, uint32(640), w)
	assert.Equal(t, uint32(480), h)
}
