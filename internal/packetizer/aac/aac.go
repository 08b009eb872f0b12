// Package aac implements the AAC packetizer (spec.md §4.4): it parses
// the 2-byte or 5-byte AudioSpecificConfig supplied as codec-private
// data, derives profile/channels/sampling-rate/SBR, and emits one
// packet per access unit.
//
// The base (non-SBR) AudioSpecificConfig is parsed with mediacommon's
// mpeg4audio.AudioSpecificConfig.Unmarshal. mediacommon only exports
// ObjectTypeAACLC, so the 5-byte SBR extension is decoded by hand below
// rather than through the library: mediacommon has no SBR-extension
// surface to call into.
package aac

import (
	"log/slog"

	"github.com/bluenviron/mediacommon/v2/pkg/codecs/mpeg4audio"

	"github.com/acdvorak/mkvtoolnix/internal/frame"
	"github.com/acdvorak/mkvtoolnix/internal/merrors"
	"github.com/acdvorak/mkvtoolnix/internal/packet"
	"github.com/acdvorak/mkvtoolnix/internal/packetizer"
	"github.com/acdvorak/mkvtoolnix/internal/track"
	"github.com/acdvorak/mkvtoolnix/internal/trackinfo"
)

// objectTypeSBR is AAC AudioObjectType 5 (SBR / HE-AAC), the explicit
// extension signaling mediacommon's AudioSpecificConfig does not
// decode.
const objectTypeSBR = 5

// samplesPerFrame is 1024 for plain AAC-LC, 2048 once SBR is in effect
// (spec §4.4).
const (
	samplesPerFrameBase = 1024
	samplesPerFrameSBR  = 2048
)

// Packetizer re-segments AAC access units (one per input Frame; the
// caller is expected to have already separated the elementary stream
// into access-unit boundaries, e.g. via ADTS or a container's sample
// table) into packets.
type Packetizer struct {
	*packetizer.Base

	sampleRate int
	channels   int
	sbr        bool

	sampleAccum int64
	track       track.Track
}

// New constructs an AAC packetizer from codec-private AudioSpecificConfig
// bytes (2 or 5 bytes, spec §4.4). A malformed config is a FormatError.
func New(reader packetizer.ReaderRef, ti trackinfo.TrackInfo, codecPrivate []byte, uidSvc *track.UIDService, sink packetizer.Sink, logger *slog.Logger) (*Packetizer, error) {
	sampleRate, channels, sbr, err := parseAudioSpecificConfig(codecPrivate)
	if err != nil {
		return nil, err
	}

	p := &Packetizer{
		Base:       packetizer.NewBase(reader, ti, track.CodecAAC, track.Audio, uidSvc, sink, logger),
		sampleRate: sampleRate,
		channels:   channels,
		sbr:        sbr,
	}
	p.SetCodecPrivate(codecPrivate)
	return p, nil
}

// parseAudioSpecificConfig decodes the base config via mediacommon and,
// only when present, the 5-byte SBR extension by hand.
func parseAudioSpecificConfig(data []byte) (sampleRate, channels int, sbr bool, err error) {
	if len(data) != 2 && len(data) != 5 {
		return 0, 0, false, merrors.New(merrors.FormatError, "AAC codec-private data must be 2 or 5 bytes, got %d", len(data))
	}

	var cfg mpeg4audio.AudioSpecificConfig
	if err := cfg.Unmarshal(data[:2]); err != nil {
		return 0, 0, false, merrors.Wrap(merrors.FormatError, err, "AAC AudioSpecificConfig")
	}
	sampleRate = cfg.SampleRate
	channels = cfg.ChannelCount

	if len(data) == 5 {
		sbr = decodeSBRExtension(data[2:5])
	}
	return sampleRate, channels, sbr, nil
}

// decodeSBRExtension reads the trailing 3 bytes of a 5-byte
// AudioSpecificConfig: a sync-extension marker (0x2B7), the explicit
// extension AudioObjectType, and — when that type is SBR — an
// extensionSamplingFrequencyIndex. Presence of the SBR extension type
// is all this packetizer needs; the actual extension sample-rate index
// is redundant with "2 × sampling_rate" (spec §4.4) and isn't decoded.
func decodeSBRExtension(tail []byte) bool {
	bits := uint32(tail[0])<<16 | uint32(tail[1])<<8 | uint32(tail[2])
	// 11-bit sync extension type, then 5-bit extension AudioObjectType.
	syncExt := (bits >> 13) & 0x7FF
	if syncExt != 0x2B7 {
		return false
	}
	extObjectType := (bits >> 8) & 0x1F
	return extObjectType == objectTypeSBR
}

// Process implements packetizer.Packetizer. Each input Frame is treated
// as exactly one access unit.
func (p *Packetizer) Process(f frame.Frame) (packetizer.Status, error) {
	samplesPerFrame := int64(samplesPerFrameBase)
	if p.sbr {
		samplesPerFrame = samplesPerFrameSBR
	}

	timecode := p.sampleAccum * 1_000_000_000 / int64(p.sampleRate)
	duration := samplesPerFrame * 1_000_000_000 / int64(p.sampleRate)
	p.sampleAccum += samplesPerFrame

	p.Emit(packet.New(p.UID(), f.Payload, timecode, duration, packet.None()))
	return packetizer.MoreData, nil
}

// Flush implements packetizer.Packetizer. AAC access units carry no
// cross-frame state; nothing to drain.
func (p *Packetizer) Flush() error {
	return nil
}

// SetHeaders implements packetizer.Packetizer.
func (p *Packetizer) SetHeaders() track.Track {
	if !p.HeadersStale() {
		return p.track
	}
	p.SetAudioMeta(track.AudioMeta{
		SamplingFreq:       float64(p.sampleRate),
		OutputSamplingFreq: p.audioOutputSamplingFreq(),
		Channels:           p.channels,
	})
	p.track = p.BuildTrack()
	p.MarkHeadersRendered()
	return p.track
}

// audioOutputSamplingFreq returns the doubled rate when SBR is active,
// or the plain sampling rate otherwise (spec §4.4).
func (p *Packetizer) audioOutputSamplingFreq() float64 {
	if p.sbr {
		return 2 * float64(p.sampleRate)
	}
	return float64(p.sampleRate)
}
