// Package track models Matroska track identity: the UID, type, codec
// id, and codec-specific metadata the writer needs to render a track
// header (spec.md §3, §6).
package track

// Type is the Matroska track type.
type Type int

const (
	Video Type = iota
	Audio
	Subtitle
)

func (t Type) String() string {
	switch t {
	case Video:
		return "video"
	case Audio:
		return "audio"
	case Subtitle:
		return "subtitle"
	default:
		return "unknown"
	}
}

// Matroska codec-id strings this module emits (spec §3).
const (
	CodecMPEG4ASP = "V_MPEG4/ISO/ASP"
	CodecMSComp   = "V_MS/VFW/FOURCC"
	CodecMP3      = "A_MPEG/L3"
	CodecAC3      = "A_AC3"
	CodecPCMInt   = "A_PCM/INT/LIT"
	CodecAAC      = "A_AAC"
	CodecH264     = "V_MPEG4/ISO/AVC"
	CodecH265     = "V_MPEGH/ISO/HEVC"
)

// VideoMeta carries the type-specific metadata a video track header
// needs.
type VideoMeta struct {
	PixelWidth    int
	PixelHeight   int
	DisplayWidth  int
	DisplayHeight int
}

// AudioMeta carries the type-specific metadata an audio track header
// needs.
type AudioMeta struct {
	SamplingFreq       float64
	OutputSamplingFreq float64 // set by AAC only: twice SamplingFreq with SBR, equal to it otherwise (spec §4.4)
	Channels           int
	BitDepth           int
}

// Track is the identity Matroska records for one output track (spec
// §3). It is built by a Packetizer's SetHeaders step and handed to the
// writer as a header record (spec §6).
type Track struct {
	UID         uint32
	Type        Type
	CodecID     string
	CodecData   []byte
	Video       VideoMeta
	Audio       AudioMeta
	TrackNumber int // 1-based position in the controller's emission order (spec §4.5); blocks are routed by UID
}
