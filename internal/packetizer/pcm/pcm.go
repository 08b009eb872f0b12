// Package pcm implements the PCM packetizer (spec.md §4.2): it splits
// incoming raw PCM into fixed-interleave Matroska packets and derives
// each packet's timecode from a running byte-output counter rather than
// from any source timecode (raw PCM from AVI/WAV never carries one).
package pcm

import (
	"log/slog"

	"github.com/acdvorak/mkvtoolnix/internal/frame"
	"github.com/acdvorak/mkvtoolnix/internal/merrors"
	"github.com/acdvorak/mkvtoolnix/internal/packet"
	"github.com/acdvorak/mkvtoolnix/internal/packetizer"
	"github.com/acdvorak/mkvtoolnix/internal/track"
	"github.com/acdvorak/mkvtoolnix/internal/trackinfo"
)

// Interleave is the fixed number of samples per emitted packet (spec
// §6: "PCM interleave constant: 16 samples; fixed"), confirmed by the
// original p_pcm.h's `const int pcm_interleave = 16`.
const Interleave = 16

// Packetizer splits raw PCM into fixed-size packets.
type Packetizer struct {
	*packetizer.Base

	channels      int
	bitsPerSample int
	samplesPerSec int

	packetBytes    int64 // Interleave * channels * bitsPerSample/8
	bytesPerSecond int64

	bytesOutput   int64
	remainingSync int64 // fractional-nanosecond carry, see computeDuration
	timecodeAccum int64
	pending       []byte
	track         track.Track
}

// New constructs a PCM packetizer. Matches spec §4.2's error condition:
// a zero channel count or bit depth fails construction with
// InvalidConfig.
func New(reader packetizer.ReaderRef, ti trackinfo.TrackInfo, samplesPerSec, channels, bitsPerSample int, uidSvc *track.UIDService, sink packetizer.Sink, logger *slog.Logger) (*Packetizer, error) {
	if channels == 0 {
		return nil, merrors.New(merrors.InvalidConfig, "PCM packetizer: channel count must not be zero")
	}
	if bitsPerSample == 0 {
		return nil, merrors.New(merrors.InvalidConfig, "PCM packetizer: bits per sample must not be zero")
	}

	bytesPerSample := int64(channels * bitsPerSample / 8)
	p := &Packetizer{
		Base:           packetizer.NewBase(reader, ti, track.CodecPCMInt, track.Audio, uidSvc, sink, logger),
		channels:       channels,
		bitsPerSample:  bitsPerSample,
		samplesPerSec:  samplesPerSec,
		packetBytes:    int64(Interleave) * bytesPerSample,
		bytesPerSecond: int64(samplesPerSec) * bytesPerSample,
	}
	return p, nil
}

// Process implements packetizer.Packetizer. Raw PCM carries no useful
// per-chunk timecode (spec §4.2), so any frame-level Timecode/Duration
// is ignored; timecodes are always derived from the byte counter.
func (p *Packetizer) Process(f frame.Frame) (packetizer.Status, error) {
	p.pending = append(p.pending, f.Payload.Bytes()...)

	for int64(len(p.pending)) >= p.packetBytes {
		chunk := p.pending[:p.packetBytes]
		p.pending = p.pending[p.packetBytes:]

		duration := p.computeDuration()
		timecode := p.timecodeAccum
		p.timecodeAccum += duration
		p.bytesOutput += p.packetBytes

		buf := make([]byte, len(chunk))
		copy(buf, chunk)
		p.Emit(packet.New(p.UID(), frame.NewBuffer(buf), timecode, duration, packet.None()))
	}

	return packetizer.MoreData, nil
}

// computeDuration returns this packet's duration and updates
// remainingSync so that a systematic truncation in integer division
// never compounds: spec §4.2 "a remaining_sync compensates for
// non-integer timecode boundaries carried across invocations", and
// spec §8 law 9 requires drift to stay under one sample even after a
// million packets.
func (p *Packetizer) computeDuration() int64 {
	numerator := p.packetBytes*1_000_000_000 + p.remainingSync
	duration := numerator / p.bytesPerSecond
	p.remainingSync = numerator % p.bytesPerSecond
	return duration
}

// Flush implements packetizer.Packetizer. Any leftover partial-packet
// bytes at end of stream are padded to a full packet with silence
// (zero bytes) rather than dropped, so no audio sample is lost.
func (p *Packetizer) Flush() error {
	if len(p.pending) == 0 {
		return nil
	}
	padded := make([]byte, p.packetBytes)
	copy(padded, p.pending)
	p.pending = nil

	duration := p.computeDuration()
	timecode := p.timecodeAccum
	p.timecodeAccum += duration
	p.bytesOutput += p.packetBytes

	p.Emit(packet.New(p.UID(), frame.NewBuffer(padded), timecode, duration, packet.None()))
	return nil
}

// SetHeaders implements packetizer.Packetizer. Idempotent: returns the
// last rendered Track unless a metadata mutator has marked headers
// stale since.
func (p *Packetizer) SetHeaders() track.Track {
	if !p.HeadersStale() {
		return p.track
	}
	p.SetAudioMeta(track.AudioMeta{
		SamplingFreq: float64(p.samplesPerSec),
		Channels:     p.channels,
		BitDepth:     p.bitsPerSample,
	})
	p.track = p.BuildTrack()
	p.MarkHeadersRendered()
	return p.track
}
