// Package packetizer provides the generic per-track ingestion/output
// contract every codec variant implements (spec.md §4.1). Concrete
// variants live in sibling packages (pcm, mp3, ac3, aac, mpeg4p2,
// video); this package holds the shared interface, status codes, and
// the Base struct that gives every variant uniform UID allocation,
// header rendering, and metadata-mutator bookkeeping — the "uniform
// capability trait" spec §9 asks for, modeled as struct embedding
// rather than inheritance (idiomatic Go, the same
// ESProcessorBase/BaseProcessor composition pattern).
package packetizer

import (
	"context"
	"log/slog"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/acdvorak/mkvtoolnix/internal/frame"
	"github.com/acdvorak/mkvtoolnix/internal/merrors"
	"github.com/acdvorak/mkvtoolnix/internal/packet"
	"github.com/acdvorak/mkvtoolnix/internal/track"
	"github.com/acdvorak/mkvtoolnix/internal/trackinfo"
)

// Status is the result of one Process call (spec §4.1).
type Status int

const (
	MoreData Status = iota
	Done
	Error
)

func (s Status) String() string {
	switch s {
	case Done:
		return "done"
	case Error:
		return "error"
	default:
		return "more-data"
	}
}

// Sink receives packets a packetizer has finished assembling. The
// output controller implements Sink; packetizers never talk to each
// other or to the writer directly (spec §4.5).
type Sink interface {
	Emit(packet.Packet)
}

// ReaderRef is a non-owning handle to the packetizer's owning reader:
// an index into a controller-owned slice, not a pointer, so that
// Packetizer <-> Reader never forms an ownership cycle (spec §9
// "Cyclic references").
type ReaderRef int

// Packetizer is the uniform contract every codec variant satisfies.
type Packetizer interface {
	// Process accepts one frame; zero or more packets become available
	// via the Sink passed at construction.
	Process(f frame.Frame) (Status, error)
	// Flush drains any internally-queued output. Called at end of
	// stream or when the owning reader reports EOF.
	Flush() error
	// SetHeaders idempotently (re-)materializes the Matroska
	// track-header representation from current metadata and returns
	// it for the controller to register.
	SetHeaders() track.Track
	// UID returns this packetizer's allocated track UID.
	UID() uint32
	// Reader returns the non-owning handle to the owning reader.
	Reader() ReaderRef
}

// Base is embedded by every concrete packetizer. It owns the fields
// spec §9 calls "the only shared state": the Track Info, the emit-packet
// sink, and the allocated UID — plus the logging/tracing plumbing the
// ambient stack expects every component to carry.
type Base struct {
	mu sync.Mutex

	reader    ReaderRef
	ti        trackinfo.TrackInfo
	trackType track.Type
	codecID   string
	sink      Sink
	logger    *slog.Logger

	uid    uint32
	uidSet bool
	uidSvc *track.UIDService

	video track.VideoMeta
	audio track.AudioMeta

	headersRendered bool

	framesOutput int
}

// NewBase records the Track Info a variant was constructed with. It
// does not draw a UID: that happens on the first UID call, made by
// whichever comes first of SetHeaders (spec §4.5 "on first header
// render"), Controller.Register, or the first emitted packet. logger may be nil, in which case slog.Default()
// is used.
func NewBase(reader ReaderRef, ti trackinfo.TrackInfo, codecID string, trackType track.Type, uidSvc *track.UIDService, sink Sink, logger *slog.Logger) *Base {
	if logger == nil {
		logger = slog.Default()
	}
	return &Base{
		reader:    reader,
		ti:        ti,
		trackType: trackType,
		codecID:   codecID,
		sink:      sink,
		logger:    logger,
		uidSvc:    uidSvc,
	}
}

// Reader implements Packetizer.
func (b *Base) Reader() ReaderRef { return b.reader }

// TrackInfo returns the current (possibly packetizer-updated) Track
// Info.
func (b *Base) TrackInfo() trackinfo.TrackInfo { return b.ti }

// UID implements Packetizer. Allocates on first call.
func (b *Base) UID() uint32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.uidSet {
		b.uid = b.uidSvc.Create()
		b.uidSet = true
	}
	return b.uid
}

// SetCodecPrivate replaces the codec-private bytes and marks headers
// stale (spec §4.1 "each implicitly requires a subsequent header
// rerender").
func (b *Base) SetCodecPrivate(data []byte) {
	b.ti = b.ti.WithPrivateData(data)
	b.headersRendered = false
}

// SetVideoPixelWidth updates the pixel width and marks headers stale.
func (b *Base) SetVideoPixelWidth(w int) {
	b.video.PixelWidth = w
	b.headersRendered = false
}

// SetVideoPixelHeight updates the pixel height and marks headers stale.
func (b *Base) SetVideoPixelHeight(h int) {
	b.video.PixelHeight = h
	b.headersRendered = false
}

// SetAudioOutputSamplingFreq sets the (possibly SBR-doubled) output
// sampling frequency (spec §4.4 AAC) and marks headers stale.
func (b *Base) SetAudioOutputSamplingFreq(freq float64) {
	b.audio.OutputSamplingFreq = freq
	b.headersRendered = false
}

// SetAudioMeta replaces the audio metadata wholesale and marks headers
// stale. Used by packetizers (PCM, AC-3, MP3) whose sampling
// rate/channel count/bit depth are all known together at construction
// or detection time, rather than mutated field-by-field.
func (b *Base) SetAudioMeta(meta track.AudioMeta) {
	b.audio = meta
	b.headersRendered = false
}

// SetVideoMeta replaces the video metadata wholesale and marks headers
// stale.
func (b *Base) SetVideoMeta(meta track.VideoMeta) {
	b.video = meta
	b.headersRendered = false
}

// AddAVIBlockSize records n as the track-info's SamplesPerChunk (spec
// §4.1); used by audio packetizers fed from an AVI reader that only
// knows per-chunk sizes. Each call replaces the previous value; sizes
// are not accumulated.
func (b *Base) AddAVIBlockSize(n int) {
	b.ti.SamplesPerChunk = n
}

// RerenderTrackHeaders forces the next SetHeaders call to rebuild the
// Track value even if nothing else changed — the explicit hook spec
// §4.1 calls out for metadata mutators to invoke after a batch of
// changes.
func (b *Base) RerenderTrackHeaders() {
	b.headersRendered = false
}

// BuildTrack assembles a track.Track from current Base state. Concrete
// packetizers call this from their own SetHeaders to avoid repeating
// the UID/codec-id/metadata plumbing; only SetHeaders itself decides
// whether a rebuild is actually necessary (idempotency, spec §4.1).
func (b *Base) BuildTrack() track.Track {
	return track.Track{
		UID:       b.UID(),
		Type:      b.trackType,
		CodecID:   b.codecID,
		CodecData: b.ti.PrivateData,
		Video:     b.video,
		Audio:     b.audio,
	}
}

// HeadersStale reports whether SetHeaders must rebuild rather than
// return a cached value.
func (b *Base) HeadersStale() bool { return !b.headersRendered }

// MarkHeadersRendered lets a concrete packetizer record that it just
// rebuilt its headers.
func (b *Base) MarkHeadersRendered() { b.headersRendered = true }

// Emit hands a finished packet to the sink and bumps the output frame
// counter used by the 50-frame metadata-extraction latch (spec §4.3).
func (b *Base) Emit(p packet.Packet) {
	b.framesOutput++
	b.sink.Emit(p)
}

// FramesOutput returns how many packets this packetizer has emitted so
// far.
func (b *Base) FramesOutput() int { return b.framesOutput }

// Logger returns the packetizer's logger.
func (b *Base) Logger() *slog.Logger { return b.logger }

// TraceID returns a time-sortable trace identifier for one frame,
// stamped only when debug-level tracing is enabled — oklog/ulid rather
// than a random UUID, because a log aggregator sorting debug lines by
// this id should reproduce the order frames actually moved through the
// reorder queues in.
func (b *Base) TraceID() string {
	if !b.logger.Enabled(context.Background(), slog.LevelDebug) {
		return ""
	}
	return ulid.Make().String()
}

// ConfigError is a convenience for variant constructors that must
// reject an invalid configuration (spec §7 InvalidConfig).
func ConfigError(format string, args ...any) error {
	return merrors.New(merrors.InvalidConfig, format, args...)
}
