// Package mp3 implements the MP3 packetizer (spec.md §4.4): it scans
// container chunks for the MPEG audio sync word, confirms the embedded
// sample rate and channel count against Track Info, and re-segments the
// byte stream along frame boundaries.
//
// Header parsing is delegated to
// github.com/bluenviron/mediacommon/v2/pkg/codecs/mpeg1audio's
// FrameHeader rather than a hand-rolled bit reader; only the
// frame-length arithmetic (not exposed by the header type itself) and
// the sample-accounting timestamp model below are specific to this
// packetizer.
package mp3

import (
	"log/slog"

	"github.com/bluenviron/mediacommon/v2/pkg/codecs/mpeg1audio"

	"github.com/acdvorak/mkvtoolnix/internal/frame"
	"github.com/acdvorak/mkvtoolnix/internal/packet"
	"github.com/acdvorak/mkvtoolnix/internal/packetizer"
	"github.com/acdvorak/mkvtoolnix/internal/track"
	"github.com/acdvorak/mkvtoolnix/internal/trackinfo"
)

// samplesPerFrame is fixed for MPEG-1 Layer III, the only layer this
// packetizer targets (spec §4.4 example uses exactly this layer).
const samplesPerFrame = 1152

// Packetizer re-segments raw MPEG audio chunks into frame-aligned
// packets.
type Packetizer struct {
	*packetizer.Base

	expectedSampleRate int
	expectedChannels   int

	sampleAccum int64
	pending     []byte
	track       track.Track
	warned      bool
}

// New constructs an MP3 packetizer. expectedSampleRate/expectedChannels
// come from Track Info; they are cross-checked against the bitstream and
// fill the track header. On a mismatch the detected value replaces the
// declared one and a warning is logged, not a construction failure (spec
// §4.4 "all audio packetizers validate ... a mismatch is reported as a
// warning").
func New(reader packetizer.ReaderRef, ti trackinfo.TrackInfo, expectedSampleRate, expectedChannels int, uidSvc *track.UIDService, sink packetizer.Sink, logger *slog.Logger) *Packetizer {
	return &Packetizer{
		Base:               packetizer.NewBase(reader, ti, track.CodecMP3, track.Audio, uidSvc, sink, logger),
		expectedSampleRate: expectedSampleRate,
		expectedChannels:   expectedChannels,
	}
}

// Process implements packetizer.Packetizer.
func (p *Packetizer) Process(f frame.Frame) (packetizer.Status, error) {
	p.pending = append(p.pending, f.Payload.Bytes()...)

	for {
		off := syncScan(p.pending)
		if off < 0 {
			// No sync candidate at all; keep whatever tail might be
			// the start of a header once more bytes arrive.
			if len(p.pending) > 4 {
				p.pending = p.pending[len(p.pending)-4:]
			}
			break
		}
		if off > 0 {
			p.pending = p.pending[off:]
		}

		var hdr mpeg1audio.FrameHeader
		if err := hdr.Unmarshal(p.pending); err != nil {
			// Not enough bytes yet to confirm the header; wait for more.
			break
		}

		frameLen := mp3FrameLength(hdr)
		if frameLen <= 0 || frameLen > len(p.pending) {
			break
		}

		p.checkStreamParams(hdr)

		payload := make([]byte, frameLen)
		copy(payload, p.pending[:frameLen])
		p.pending = p.pending[frameLen:]

		sampleRate := hdr.SampleRate
		if sampleRate == 0 {
			sampleRate = p.expectedSampleRate
		}
		timecode := p.sampleAccum * 1_000_000_000 / int64(sampleRate)
		duration := int64(samplesPerFrame) * 1_000_000_000 / int64(sampleRate)
		p.sampleAccum += samplesPerFrame

		p.Emit(packet.New(p.UID(), frame.NewBuffer(payload), timecode, duration, packet.None()))
	}

	return packetizer.MoreData, nil
}

// checkStreamParams cross-validates the decoded header against the
// caller-declared expectations; mismatches are logged, not fatal (spec
// §4.4).
func (p *Packetizer) checkStreamParams(hdr mpeg1audio.FrameHeader) {
	if p.warned {
		return
	}
	channels := channelCount(hdr)
	if p.expectedSampleRate != 0 && hdr.SampleRate != 0 && hdr.SampleRate != p.expectedSampleRate {
		p.Logger().Warn("MP3 stream sample rate differs from track info, using detected value",
			slog.Int("declared", p.expectedSampleRate), slog.Int("detected", hdr.SampleRate))
		p.expectedSampleRate = hdr.SampleRate
		p.RerenderTrackHeaders()
		p.warned = true
	}
	if p.expectedChannels != 0 && channels != 0 && channels != p.expectedChannels {
		p.Logger().Warn("MP3 stream channel count differs from track info, using detected value",
			slog.Int("declared", p.expectedChannels), slog.Int("detected", channels))
		p.expectedChannels = channels
		p.RerenderTrackHeaders()
		p.warned = true
	}
}

// Flush implements packetizer.Packetizer. MP3 carries no cross-frame
// reordering state; nothing to drain.
func (p *Packetizer) Flush() error {
	return nil
}

// SetHeaders implements packetizer.Packetizer.
func (p *Packetizer) SetHeaders() track.Track {
	if !p.HeadersStale() {
		return p.track
	}
	p.SetAudioMeta(track.AudioMeta{
		SamplingFreq: float64(p.expectedSampleRate),
		Channels:     p.expectedChannels,
	})
	p.track = p.BuildTrack()
	p.MarkHeadersRendered()
	return p.track
}

// syncScan returns the byte offset of the first candidate MPEG audio
// sync word (11 set bits) in buf, or -1 if none is found.
func syncScan(buf []byte) int {
	for i := 0; i+1 < len(buf); i++ {
		if buf[i] == 0xFF && (buf[i+1]&0xE0) == 0xE0 {
			return i
		}
	}
	return -1
}

// mp3FrameLength computes the frame length in bytes from a decoded
// header, using the standard MPEG Layer III formula. mediacommon's
// FrameHeader decodes the header fields but does not expose frame
// length directly.
func mp3FrameLength(hdr mpeg1audio.FrameHeader) int {
	if hdr.SampleRate == 0 {
		return 0
	}
	padding := 0
	if hdr.Padding {
		padding = 1
	}
	return 144*hdr.Bitrate/hdr.SampleRate + padding
}

// channelCount maps mediacommon's channel-mode enum to a count.
func channelCount(hdr mpeg1audio.FrameHeader) int {
	if hdr.ChannelMode == mpeg1audio.ChannelModeMono {
		return 1
	}
	return 2
}
