package video

import (
	"log/slog"

	"github.com/acdvorak/mkvtoolnix/internal/frame"
	"github.com/acdvorak/mkvtoolnix/internal/packet"
	"github.com/acdvorak/mkvtoolnix/internal/packetizer"
	"github.com/acdvorak/mkvtoolnix/internal/track"
	"github.com/acdvorak/mkvtoolnix/internal/trackinfo"
)

// Packetizer is the generic video passthrough variant (spec §4.1): no
// reordering, just NAL-framing normalization, parameter-set extraction
// for codec-private data, and a single-reference (I/P) timeline. B
// frames, if the source tags any, are treated like P frames here —
// genuine bidirectional reordering is the MPEG-4 P2 engine's job alone.
type Packetizer struct {
	*packetizer.Base

	codec Codec
	ps    paramSets
	ready bool

	lastRefTimecode int64
	haveLastRef     bool

	track track.Track
}

// New constructs the passthrough packetizer for one H.264/H.265 video
// track. codec_id (spec §4.1's constructor parameter) is chosen by the
// caller from the source container's codec detection, not derived here.
func New(reader packetizer.ReaderRef, ti trackinfo.TrackInfo, codec Codec, width, height int, uidSvc *track.UIDService, sink packetizer.Sink, logger *slog.Logger) *Packetizer {
	codecID := track.CodecH264
	if codec == H265 {
		codecID = track.CodecH265
	}
	p := &Packetizer{
		Base:  packetizer.NewBase(reader, ti, codecID, track.Video, uidSvc, sink, logger),
		codec: codec,
	}
	p.SetVideoPixelWidth(width)
	p.SetVideoPixelHeight(height)
	if len(ti.PrivateData) > 0 {
		p.ready = true // caller already supplied codec-private (e.g. from an MP4 moov box)
	}
	return p
}

// Process implements packetizer.Packetizer.
func (p *Packetizer) Process(f frame.Frame) (packetizer.Status, error) {
	units := splitNALUnits(f.Payload.Bytes())
	isKey := scanParamSets(p.codec, units, &p.ps)

	if !p.ready && p.ps.complete(p.codec) {
		var private []byte
		if p.codec == H265 {
			private = buildHEVCDecoderConfig(p.ps.vps, p.ps.sps, p.ps.pps)
		} else {
			private = buildAVCDecoderConfig(p.ps.sps, p.ps.pps)
		}
		p.SetCodecPrivate(private)
		p.ready = true
	}

	frameType := f.Type
	if frameType == frame.Automatic {
		if isKey {
			frameType = frame.IFrame
		} else {
			frameType = frame.PFrame
		}
	}

	refs := packet.None()
	if frameType != frame.IFrame && p.haveLastRef {
		refs = packet.Previous(p.lastRefTimecode)
	}

	normalized := frame.NewBuffer(assembleLengthPrefixed(units))
	p.Emit(packet.New(p.UID(), normalized, f.Timecode, f.Duration, refs))

	if frameType != frame.BFrame {
		p.lastRefTimecode = f.Timecode
		p.haveLastRef = true
	}

	return packetizer.MoreData, nil
}

// Flush implements packetizer.Packetizer. There is nothing to drain:
// this variant never buffers a frame past its own Process call.
func (p *Packetizer) Flush() error { return nil }

// SetHeaders implements packetizer.Packetizer.
func (p *Packetizer) SetHeaders() track.Track {
	if !p.HeadersStale() {
		return p.track
	}
	p.track = p.BuildTrack()
	p.MarkHeadersRendered()
	return p.track
}
