// Package trackinfo holds Track Info: the per-output-track configuration
// a Packetizer is constructed from (spec.md §3). It is created by the
// CLI/config layer and consumed by a packetizer at construction; the
// packetizer itself may later update the private-data field when it
// extracts configuration from the bitstream (spec §4.3).
package trackinfo

// AspectRatio carries a display aspect ratio hint for a video track.
type AspectRatio struct {
	Given bool
	Ratio float64
}

// DisplayDimensions carries explicit display width/height, independent
// of pixel width/height (a video may be stored anamorphic).
type DisplayDimensions struct {
	Given  bool
	Width  int
	Height int
}

// TrackInfo is the immutable (except for PrivateData, see below)
// configuration for one output track.
type TrackInfo struct {
	// SourceFilename is the input this track is read from. May be a
	// network URL; never logged unredacted (internal/runtimectx owns
	// the redaction).
	SourceFilename string
	// RequestedTrackID is the track id as it appeared in the source
	// container (distinct from the Matroska UID assigned later).
	RequestedTrackID int

	// PrivateData is opaque codec-private configuration bytes (VOL/VOS
	// headers, an AAC AudioSpecificConfig, a WAVEFORMATEX-ish blob).
	// Set at construction if known, or by the packetizer itself once
	// extracted from the bitstream (spec §4.3 step 1). Mutating this
	// field always implies a subsequent SetHeaders/rerender.
	PrivateData []byte

	AspectRatioHint   AspectRatio
	DisplayDimensions DisplayDimensions

	// Language is an opaque ISO-639-2 code; validation against the
	// table is out of scope (spec §1).
	Language string

	// AVI-style audio framing hints; zero value means "not applicable".
	BlockAlign      int
	AvgBytesPerSec  int
	SamplesPerChunk int

	// TrackOrder is this track's position in the user-supplied ordering
	// list, or -1 if unordered (spec §4.5).
	TrackOrder int
}

// WithPrivateData returns a copy of ti with PrivateData replaced. Used
// by packetizers instead of mutating a shared TrackInfo in place, so
// that a TrackInfo handed to one packetizer is never silently changed
// out from under another holder of the same value.
func (ti TrackInfo) WithPrivateData(data []byte) TrackInfo {
	ti.PrivateData = data
	return ti
}
