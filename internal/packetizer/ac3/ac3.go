// Package ac3 implements the AC-3 packetizer (spec.md §4.4): it scans
// for the 0x0B77 sync pattern, decodes the frame-size code from the
// AC-3 "syncinfo" header, and splits on frame boundaries.
//
// Unlike MP3 and AAC, no example repo or ecosystem library in the
// retrieved pack carries an AC-3 "syncinfo"/frame-size parser —
// mediacommon's mpegts.CodecAC3/CodecEAC3 only describe the container
// mapping, never the elementary-stream frame-size table — so this
// parser is hand-written against the public ATSC A/52 frame-size
// table, the one piece of this module with no pack grounding beyond
// spec.md's own description of the sync word and duration formula.
package ac3

import (
	"log/slog"

	"github.com/acdvorak/mkvtoolnix/internal/frame"
	"github.com/acdvorak/mkvtoolnix/internal/packet"
	"github.com/acdvorak/mkvtoolnix/internal/packetizer"
	"github.com/acdvorak/mkvtoolnix/internal/track"
	"github.com/acdvorak/mkvtoolnix/internal/trackinfo"
)

// samplesPerFrame is fixed by the AC-3 bitstream syntax: every frame
// carries exactly 6 audio blocks of 256 samples (spec §4.4).
const samplesPerFrame = 1536

// syncWord is the two-byte AC-3 frame sync pattern.
var syncWord = [2]byte{0x0B, 0x77}

// ac3FrameSizeTab maps a frmsizecod/2 index to the frame length in
// 16-bit words, one column per sample-rate code (0 = 48 kHz, 1 = 44.1
// kHz, 2 = 32 kHz), from the ATSC A/52 frame-size table. The 44.1 kHz
// column holds the "frmsizecod even" value; odd codes add one extra
// word to make the average bitrate come out exact over two frames.
var ac3FrameSizeTab = [19][3]int{
	{96, 69, 64},
	{120, 87, 80},
	{144, 104, 96},
	{168, 121, 112},
	{192, 139, 128},
	{240, 174, 160},
	{288, 208, 192},
	{336, 243, 224},
	{384, 278, 256},
	{480, 348, 320},
	{576, 417, 384},
	{672, 487, 448},
	{768, 557, 512},
	{960, 696, 640},
	{1152, 835, 768},
	{1344, 975, 896},
	{1536, 1114, 1024},
	{1728, 1253, 1152},
	{1920, 1393, 1280},
}

// sampleRateForCode maps the 2-bit fscod to a sample rate in Hz.
var sampleRateForCode = [3]int{48000, 44100, 32000}

// Packetizer re-segments a raw AC-3 elementary stream into frame-aligned
// packets.
type Packetizer struct {
	*packetizer.Base

	sampleAccum int64
	pending     []byte
	sampleRate  int // detected from the first frame; used for header metadata
	track       track.Track
}

// New constructs an AC-3 packetizer.
func New(reader packetizer.ReaderRef, ti trackinfo.TrackInfo, uidSvc *track.UIDService, sink packetizer.Sink, logger *slog.Logger) *Packetizer {
	return &Packetizer{
		Base: packetizer.NewBase(reader, ti, track.CodecAC3, track.Audio, uidSvc, sink, logger),
	}
}

// Process implements packetizer.Packetizer.
func (p *Packetizer) Process(f frame.Frame) (packetizer.Status, error) {
	p.pending = append(p.pending, f.Payload.Bytes()...)

	for {
		off := syncScan(p.pending)
		if off < 0 {
			if len(p.pending) > 5 {
				p.pending = p.pending[len(p.pending)-5:]
			}
			break
		}
		if off > 0 {
			p.pending = p.pending[off:]
		}
		if len(p.pending) < 5 {
			break
		}

		fscod := int(p.pending[4]>>6) & 0x03
		frmsizecod := int(p.pending[4]) & 0x3F
		if fscod == 3 || frmsizecod/2 >= len(ac3FrameSizeTab) {
			// Unrecoverable header; drop the sync byte and keep scanning.
			p.pending = p.pending[1:]
			continue
		}

		words := ac3FrameSizeTab[frmsizecod/2][fscod]
		if fscod == 1 && frmsizecod%2 == 1 {
			words++
		}
		frameLen := words * 2
		if frameLen > len(p.pending) {
			break
		}

		p.sampleRate = sampleRateForCode[fscod]

		payload := make([]byte, frameLen)
		copy(payload, p.pending[:frameLen])
		p.pending = p.pending[frameLen:]

		timecode := p.sampleAccum * 1_000_000_000 / int64(p.sampleRate)
		duration := int64(samplesPerFrame) * 1_000_000_000 / int64(p.sampleRate)
		p.sampleAccum += samplesPerFrame

		p.Emit(packet.New(p.UID(), frame.NewBuffer(payload), timecode, duration, packet.None()))
	}

	return packetizer.MoreData, nil
}

// Flush implements packetizer.Packetizer.
func (p *Packetizer) Flush() error {
	return nil
}

// SetHeaders implements packetizer.Packetizer.
func (p *Packetizer) SetHeaders() track.Track {
	if !p.HeadersStale() {
		return p.track
	}
	p.SetAudioMeta(track.AudioMeta{SamplingFreq: float64(p.sampleRate)})
	p.track = p.BuildTrack()
	p.MarkHeadersRendered()
	return p.track
}

// syncScan returns the byte offset of the first 0x0B77 sync pattern in
// buf, or -1 if none is found.
func syncScan(buf []byte) int {
	for i := 0; i+1 < len(buf); i++ {
		if buf[i] == syncWord[0] && buf[i+1] == syncWord[1] {
			return i
		}
	}
	return -1
}
