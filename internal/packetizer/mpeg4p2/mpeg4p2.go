package mpeg4p2

import (
	"log/slog"

	"github.com/acdvorak/mkvtoolnix/internal/frame"
	"github.com/acdvorak/mkvtoolnix/internal/merrors"
	"github.com/acdvorak/mkvtoolnix/internal/packet"
	"github.com/acdvorak/mkvtoolnix/internal/packetizer"
	"github.com/acdvorak/mkvtoolnix/internal/timecode"
	"github.com/acdvorak/mkvtoolnix/internal/track"
	"github.com/acdvorak/mkvtoolnix/internal/trackinfo"
)

// extractionLatchFrames is the frame count after which this
// packetizer stops retrying a failed extraction (spec §9: the original
// only latched m_aspect_ratio_extracted after 50 frames and never
// m_size_extracted, which the corrected version here treats as a bug —
// both latch together).
const extractionLatchFrames = 50

// queuedFrame is one buffered frame awaiting a final timecode/duration
// assignment from flushFrames.
type queuedFrame struct {
	frameType frame.Type
	payload   *frame.Buffer
	timecode  int64
	duration  int64
	assigned  bool
}

// Packetizer reorders non-native MPEG-4 Part 2 video into Matroska's
// native block-reference model (spec §4.3).
type Packetizer struct {
	*packetizer.Base

	fps            float64
	inputIsNative  bool
	outputIsNative bool
	isDivX3        bool
	dropNVOPs      bool

	configData           []byte
	configPending        []byte
	sizeExtracted        bool
	aspectRatioExtracted bool

	factory *timecode.Factory

	refFrames []queuedFrame
	bFrames   []queuedFrame

	track track.Track
}

// New constructs the reorder-engine packetizer. dropNVOPs corresponds
// to the supplemented drop_nvops hack in the original; isDivX3 selects
// the no-start-code classification path for legacy DivX3 content.
func New(reader packetizer.ReaderRef, ti trackinfo.TrackInfo, fps float64, width, height int, inputIsNative, outputIsNative, isDivX3, dropNVOPs bool, uidSvc *track.UIDService, sink packetizer.Sink, logger *slog.Logger) *Packetizer {
	codecID := track.CodecMPEG4ASP
	if !outputIsNative {
		codecID = track.CodecMSComp
	}

	p := &Packetizer{
		Base:           packetizer.NewBase(reader, ti, codecID, track.Video, uidSvc, sink, logger),
		fps:            fps,
		inputIsNative:  inputIsNative,
		outputIsNative: outputIsNative,
		isDivX3:        isDivX3,
		dropNVOPs:      dropNVOPs,
		factory:        timecode.New(timecode.ShortQueueing, fps),
	}
	p.SetVideoPixelWidth(width)
	p.SetVideoPixelHeight(height)
	return p
}

// Process implements packetizer.Packetizer.
func (p *Packetizer) Process(f frame.Frame) (packetizer.Status, error) {
	if !p.sizeExtracted || !p.aspectRatioExtracted {
		p.tryExtractMetadata(f.Payload.Bytes())
	}

	if p.inputIsNative == p.outputIsNative {
		return p.processPassthrough(f)
	}
	if p.inputIsNative {
		// Native -> non-native is not implemented (spec §4.3 "acceptable
		// to return MoreData and drop").
		return packetizer.MoreData, nil
	}
	return p.processNonNative(f)
}

// processPassthrough forwards a frame unchanged; used when the
// source's nativeness already matches the output's.
func (p *Packetizer) processPassthrough(f frame.Frame) (packetizer.Status, error) {
	timecode := f.Timecode
	duration := f.Duration
	if !f.HasTimecode() {
		if p.fps <= 0 {
			return packetizer.Error, merrors.New(merrors.NoTimingInfo, "MPEG-4 P2 passthrough: no source timecode and no fps to synthesize from")
		}
		timecode = p.factory.Next()
	}
	if !f.HasDuration() {
		if p.fps <= 0 {
			return packetizer.Error, merrors.New(merrors.NoTimingInfo, "MPEG-4 P2 passthrough: no source duration and no fps to synthesize from")
		}
		duration = p.factory.NextDuration()
	}
	p.Emit(packet.New(p.UID(), f.Payload, timecode, duration, packet.None()))
	return packetizer.MoreData, nil
}

// tryExtractMetadata attempts the VOL/VOS-derived width/height and
// pixel-aspect-ratio extraction once per call until the per-packetizer
// 50-frame latch trips (spec §9, §4.3 step 1).
func (p *Packetizer) tryExtractMetadata(buf []byte) {
	config := p.configData
	if config == nil {
		config = buf
	}

	if !p.sizeExtracted {
		if w, h, ok := extractSize(config); ok {
			p.sizeExtracted = true
			p.SetVideoPixelWidth(int(w))
			p.SetVideoPixelHeight(int(h))
			p.RerenderTrackHeaders()
		}
	}
	if !p.aspectRatioExtracted {
		if _, _, ok := extractPAR(config); ok {
			p.aspectRatioExtracted = true
			p.RerenderTrackHeaders()
		}
	}

	if p.FramesOutput() >= extractionLatchFrames {
		p.sizeExtracted = true
		p.aspectRatioExtracted = true
	}
}

// processNonNative is the hard path: extract config data on first
// sight, classify and enqueue frames, flush whenever a non-B frame
// closes out a reference pair (spec §4.3).
func (p *Packetizer) processNonNative(f frame.Frame) (packetizer.Status, error) {
	if f.HasTimecode() {
		p.factory.PushSourceTimecode(f.Timecode)
	}

	if p.configData == nil && !p.isDivX3 {
		p.configPending = append(p.configPending, f.Payload.Bytes()...)
		if config, ok := extractConfigData(p.configPending); ok {
			config = fixCodecString(config)
			p.configData = config
			p.SetCodecPrivate(config)
			p.configPending = nil
		} else {
			return packetizer.MoreData, nil
		}
	}

	var frames []subFrame
	if p.isDivX3 {
		t := frame.PFrame
		if isDivX3Keyframe(f.Payload.Bytes()) {
			t = frame.IFrame
		}
		frames = []subFrame{{frameType: t, offset: 0, size: f.Payload.Len()}}
	} else {
		frames = scanStartCodeFrames(f.Payload.Bytes())
	}

	for _, sf := range frames {
		if sf.frameType != frame.BFrame {
			if err := p.flushFrames(false); err != nil {
				return packetizer.Error, err
			}
		}

		qf := queuedFrame{
			frameType: sf.frameType,
			payload:   f.Payload.CopyRange(sf.offset, sf.size),
			timecode:  frame.NoTimecode,
			duration:  frame.NoTimecode,
		}
		if sf.frameType == frame.BFrame {
			p.bFrames = append(p.bFrames, qf)
		} else {
			p.refFrames = append(p.refFrames, qf)
		}
	}

	return packetizer.MoreData, nil
}

// nextTimecode synthesizes (or consumes a queued source) timecode, or
// returns a NoTimingInfo error if neither is available.
func (p *Packetizer) nextTimecode() (int64, int64, error) {
	if p.factory.Available() == 0 && p.fps <= 0 {
		return 0, 0, merrors.New(merrors.NoTimingInfo, "MPEG-4 P2: no source timecodes remain and no fps to synthesize from")
	}
	return p.factory.Next(), p.factory.NextDuration(), nil
}

// flushFrames assigns timecodes/references to the oldest reference
// pair (and any B frames between them) and emits them, following
// mkvmerge's p_mpeg4_p2.cpp flush_frames: a lone first frame is
// special-cased (it just gets a timecode and is emitted immediately,
// spec boundary case 7); an end-of-file flush with no pending B frames
// consumes one extra synthesized tick first, accounting for the
// successor frame that will now never arrive and would otherwise have
// paced this final reference frame (mkvmerge's "a dummy frame is
// missing" case).
func (p *Packetizer) flushFrames(endOfFile bool) error {
	if len(p.refFrames) == 0 {
		return nil
	}

	if len(p.refFrames) == 1 {
		front := &p.refFrames[0]
		if !front.assigned {
			tc, dur, err := p.nextTimecode()
			if err != nil {
				return err
			}
			front.timecode, front.duration, front.assigned = tc, dur, true
			p.emitQueued(*front, packet.None())
		}
		if endOfFile {
			p.refFrames = nil
		}
		return nil
	}

	bref := p.refFrames[0]
	frefIdx := len(p.refFrames) - 1
	fref := &p.refFrames[frefIdx]

	if endOfFile && len(p.bFrames) == 0 {
		if _, _, err := p.nextTimecode(); err != nil {
			return err
		}
	}

	for i := range p.bFrames {
		tc, dur, err := p.nextTimecode()
		if err != nil {
			return err
		}
		p.bFrames[i].timecode, p.bFrames[i].duration, p.bFrames[i].assigned = tc, dur, true
	}

	tc, dur, err := p.nextTimecode()
	if err != nil {
		return err
	}
	fref.timecode, fref.duration, fref.assigned = tc, dur, true

	frefRefs := packet.None()
	if fref.frameType == frame.PFrame {
		frefRefs = packet.Previous(bref.timecode)
	}
	p.emitQueued(*fref, frefRefs)

	for _, b := range p.bFrames {
		p.emitQueued(b, packet.Bidirectional(bref.timecode, fref.timecode))
	}

	p.refFrames = p.refFrames[1:]
	p.bFrames = nil

	if endOfFile {
		p.refFrames = nil
	}
	return nil
}

// emitQueued hands a classified frame to the sink unless it is a
// dropped NVOP (spec §4.3 "NVOP ... may be dropped").
func (p *Packetizer) emitQueued(qf queuedFrame, refs packet.References) {
	if qf.frameType == frame.NVOP && p.dropNVOPs {
		return
	}
	p.Emit(packet.New(p.UID(), qf.payload, qf.timecode, qf.duration, refs))
}

// Flush implements packetizer.Packetizer.
func (p *Packetizer) Flush() error {
	return p.flushFrames(true)
}

// SetHeaders implements packetizer.Packetizer.
func (p *Packetizer) SetHeaders() track.Track {
	if !p.HeadersStale() {
		return p.track
	}
	p.track = p.BuildTrack()
	p.MarkHeadersRendered()
	return p.track
}
