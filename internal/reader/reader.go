// Package reader defines the Reader contract the output controller
// drives (spec.md §6): demuxing a source container is an external
// concern (spec §1), so this package holds only the interface and the
// progress/identify value types real demuxers (AVI, WAV, elementary
// stream files) would implement against, plus an in-memory fixture used
// by tests and by internal/controller's own test suite.
//
// Modeled on mkvmerge's avi_reader_c (src/input/r_avi.cpp): read's
// per-packetizer dispatch (a reader owns several packetizers and only
// acts when handed the one whose turn it is),
// display_priority/display_progress's high/low priority split between
// the video track and everything else, and identify's "Track ID N:
// {type} (CODEC)" line shape. probe_file's magic-number check is not
// part of this interface (see Reader).
package reader

import (
	"github.com/acdvorak/mkvtoolnix/internal/packetizer"
	"github.com/acdvorak/mkvtoolnix/internal/track"
)

// DisplayPriority mirrors avi_reader_c::display_priority's two-level
// scheme: the reader driving the video track reports progress by frame
// count; any other reader (audio-only, or between video frames) reports
// only a spinner.
const (
	DisplayPriorityLow  = 0
	DisplayPriorityHigh = 1
)

// Progress is one display_progress sample (spec §6
// "display_progress(final: bool)").
type Progress struct {
	Done  int
	Total int
	Final bool
}

// Descriptor is one line of `identify()` output (spec §6 "Track ID N:
// {video|audio|subtitle} (CODEC)").
type Descriptor struct {
	TrackID int
	Type    track.Type
	Codec   string
}

// Reader is what the output controller requires from a demuxer (spec
// §6). Probing and construction (`probe`, `new`) are left to each
// concrete reader's own package-level functions, not modeled in this
// interface, because a reader is only handed to the controller once it
// already exists — "not this format" is resolved before a Reader value
// is ever created (spec §9 "replace exceptions-for-control-flow with
// fallible constructors").
type Reader interface {
	// Read makes one unit of progress against the packetizer named by
	// target, pushing any newly demuxed frame(s) into it.
	Read(target packetizer.Packetizer) (packetizer.Status, error)
	// Identify reports one descriptor per track this reader owns.
	Identify() []Descriptor
	// DisplayPriority reports whether this reader should drive the
	// controller's frame-count progress display or just a spinner.
	DisplayPriority() int
	// DisplayProgress reports how far this reader has gotten.
	DisplayProgress(final bool) Progress
}
