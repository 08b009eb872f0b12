package reader

import (
	"github.com/acdvorak/mkvtoolnix/internal/frame"
	"github.com/acdvorak/mkvtoolnix/internal/merrors"
	"github.com/acdvorak/mkvtoolnix/internal/packetizer"
)

// trackQueue is one packetizer this FixtureReader feeds, plus the
// frames still queued for it.
type trackQueue struct {
	target     packetizer.Packetizer
	descriptor Descriptor
	frames     []frame.Frame
	pos        int
}

// FixtureReader is an in-memory Reader: each owned packetizer is fed a
// fixed slice of frames, one per Read call, in order. It exists for
// tests exercising the controller/packetizer pipeline without a real
// demuxer (spec §1 places container demuxing out of scope for the
// core), mirroring avi_reader_c's one-reader-owns-several-packetizers
// shape with canned data in place of `AVI_read_frame`.
type FixtureReader struct {
	queues   []*trackQueue
	priority int
}

// NewFixtureReader creates an empty FixtureReader reporting the given
// display priority (reader.DisplayPriorityHigh for the reader driving
// the video track, Low otherwise — spec §6 / r_avi.cpp's
// display_priority split).
func NewFixtureReader(priority int) *FixtureReader {
	return &FixtureReader{priority: priority}
}

// AddTrack registers a packetizer this reader owns, along with the
// fixed sequence of frames it will hand that packetizer one Read call
// at a time.
func (r *FixtureReader) AddTrack(p packetizer.Packetizer, desc Descriptor, frames []frame.Frame) {
	r.queues = append(r.queues, &trackQueue{target: p, descriptor: desc, frames: frames})
}

// Read implements Reader. target must be a packetizer previously
// registered via AddTrack.
func (r *FixtureReader) Read(target packetizer.Packetizer) (packetizer.Status, error) {
	for _, q := range r.queues {
		if q.target != target {
			continue
		}
		if q.pos >= len(q.frames) {
			return packetizer.Done, nil
		}
		f := q.frames[q.pos]
		q.pos++
		if _, err := target.Process(f); err != nil {
			return packetizer.Error, err
		}
		return packetizer.MoreData, nil
	}
	return packetizer.Error, merrors.ProgrammingErrorf("fixture reader: Read called for an unregistered packetizer")
}

// AllDone reports whether every owned track has exhausted its queued
// frames.
func (r *FixtureReader) AllDone() bool {
	for _, q := range r.queues {
		if q.pos < len(q.frames) {
			return false
		}
	}
	return true
}

// Identify implements Reader.
func (r *FixtureReader) Identify() []Descriptor {
	out := make([]Descriptor, len(r.queues))
	for i, q := range r.queues {
		out[i] = q.descriptor
	}
	return out
}

// DisplayPriority implements Reader.
func (r *FixtureReader) DisplayPriority() int {
	return r.priority
}

// DisplayProgress implements Reader, reporting frames consumed across
// all owned tracks against the total queued.
func (r *FixtureReader) DisplayProgress(final bool) Progress {
	var done, total int
	for _, q := range r.queues {
		done += q.pos
		total += len(q.frames)
	}
	return Progress{Done: done, Total: total, Final: final}
}
