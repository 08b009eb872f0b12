// Package frame defines the unit a Reader hands to a Packetizer: one
// codec access unit, optionally timestamped, classified by prediction
// type. See spec.md §3.
package frame

// Type classifies a Frame by its prediction structure.
type Type int

const (
	// Automatic means the packetizer must derive the real type from
	// the payload itself (the default for containers that don't carry
	// frame-type flags, e.g. AVI's "keyframe" bit is all a reader
	// usually has).
	Automatic Type = iota
	// IFrame is self-decodable; it carries no references.
	IFrame
	// PFrame references one past frame.
	PFrame
	// BFrame references one past and one future frame.
	BFrame
	// NVOP is a not-coded MPEG-4 dummy frame; may be dropped.
	NVOP
)

// String renders the frame type for logging.
func (t Type) String() string {
	switch t {
	case IFrame:
		return "I"
	case PFrame:
		return "P"
	case BFrame:
		return "B"
	case NVOP:
		return "N"
	default:
		return "AUTO"
	}
}

// NoTimecode is the sentinel meaning "absent" for any timecode or
// duration field (spec §6).
const NoTimecode int64 = -1

// Frame is one codec access unit as received from a reader. Payload is
// exclusively owned by the Frame until it is consumed by a packetizer;
// see Buffer for the copy-on-write discipline packetizers that split a
// Frame into sub-frames must follow (spec §5, §9).
type Frame struct {
	Payload  *Buffer
	Timecode int64 // nanoseconds, or NoTimecode
	Duration int64 // nanoseconds, or NoTimecode
	Type     Type
}

// New wraps a payload with no timecode/duration information.
func New(payload []byte) Frame {
	return Frame{Payload: NewBuffer(payload), Timecode: NoTimecode, Duration: NoTimecode, Type: Automatic}
}

// HasTimecode reports whether the frame carries a source timecode.
func (f Frame) HasTimecode() bool {
	return f.Timecode != NoTimecode
}

// HasDuration reports whether the frame carries a source duration.
func (f Frame) HasDuration() bool {
	return f.Duration != NoTimecode
}
