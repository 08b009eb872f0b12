// Package writer defines the Writer contract the output controller
// drives (spec.md §6): logical block records and track-header records,
// the boundary beyond which EBML/Matroska byte-level serialization is
// an external concern (spec §1 "out of scope"). Grounded on
// internal/relay/ts_muxer.go's TSMuxer shape — a lazily-initialized
// writer wrapping an io.Writer, registering tracks before any block is
// written.
package writer

import (
	"github.com/acdvorak/mkvtoolnix/internal/track"
)

// TrackHeader is the controller's one-time-per-track header record
// (spec §6 "Track-header records").
type TrackHeader struct {
	UID          uint32
	Type         track.Type
	CodecID      string
	CodecPrivate []byte
	Video        track.VideoMeta
	Audio        track.AudioMeta
	TrackNumber  int
}

// Block is one logical Matroska block (spec §6 "Logical block
// records"): a track's packet reduced to exactly the fields the byte
// serializer needs.
type Block struct {
	TrackUID   uint32
	Timecode   int64
	Duration   int64
	Payload    []byte
	References []int64
}

// Writer accepts finalized track headers and blocks and produces the
// EBML byte stream (spec §1, §6). The core never serializes EBML
// itself; this interface is the seam a real Matroska writer implements.
type Writer interface {
	// WriteTrackHeader registers one track. Called once per track before
	// any of its blocks are written; may be called again after a
	// rerender (spec §4.1 "set_headers ... may be re-invoked").
	WriteTrackHeader(TrackHeader) error
	// WriteBlock appends one block to the track it names.
	WriteBlock(Block) error
	// Close finalizes the output after every packetizer has flushed
	// (spec §4.5 "Shutdown").
	Close() error
}
