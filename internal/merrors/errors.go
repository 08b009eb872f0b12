// Package merrors defines the error taxonomy shared by every muxer
// component: readers, packetizers, and the output controller all report
// failures through a Kind and an *Error rather than panicking or using
// sentinel booleans.
package merrors

import "fmt"

// Kind classifies a muxer error so callers can decide how to react
// without string-matching messages.
type Kind int

const (
	// Unknown is the zero value; never returned by this package.
	Unknown Kind = iota

	// InvalidConfig marks a constructor-time inconsistency: zero
	// channels, an unsupported bit depth, missing codec-private data
	// when the variant requires it up front.
	InvalidConfig

	// MissingConfig marks a bitstream that should have carried embedded
	// configuration data (MPEG-4 Part 2 VOL/VOS headers, an AAC
	// AudioSpecificConfig) but did not.
	MissingConfig

	// NoTimingInfo marks a reorder-required stream that supplies
	// neither source timecodes nor a frame rate to synthesize from.
	NoTimingInfo

	// IoError passes a reader's I/O failure through unchanged.
	IoError

	// FormatError marks a malformed bitstream: a bad AAC header, an
	// AC-3 frame whose size code decodes to something impossible.
	FormatError

	// ProgrammingError marks a broken invariant. It always aborts the
	// process; there is no recovery path a caller could take.
	ProgrammingError
)

// String renders the kind for log output.
func (k Kind) String() string {
	switch k {
	case InvalidConfig:
		return "InvalidConfig"
	case MissingConfig:
		return "MissingConfig"
	case NoTimingInfo:
		return "NoTimingInfo"
	case IoError:
		return "IoError"
	case FormatError:
		return "FormatError"
	case ProgrammingError:
		return "ProgrammingError"
	default:
		return "Unknown"
	}
}

// Fatal reports whether an error of this kind must abort the whole
// pipeline (after a best-effort flush of the other tracks) rather than
// being downgraded to a per-frame warning. Matches spec §7's propagation
// table: InvalidConfig, MissingConfig, NoTimingInfo and ProgrammingError
// are fatal; FormatError may be degraded to a warning by the caller;
// IoError is fatal except at EOF, which the reader itself distinguishes
// by never constructing an *Error for a clean end-of-stream.
func (k Kind) Fatal() bool {
	switch k {
	case InvalidConfig, MissingConfig, NoTimingInfo, ProgrammingError, IoError:
		return true
	default:
		return false
	}
}

// Error is the error type every muxer component returns. File and
// TrackID are optional context used to format the
// "Error: <file>: <track-id>: <message>" user-visible line (spec §7).
type Error struct {
	Kind    Kind
	File    string
	TrackID int
	Message string
	Err     error
}

// Error implements the error interface, producing the user-visible
// "Error: <file>: <track-id>: <message>" line (spec §7), or
// "Error: <kind>: <message>" when no file/track-id context was attached.
func (e *Error) Error() string {
	if e.File == "" {
		return fmt.Sprintf("Error: %s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("Error: %s: %d: %s", e.File, e.TrackID, e.Message)
}

// Unwrap exposes the wrapped cause, if any, to errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Err
}

// New builds an *Error of the given kind with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WithTrack attaches file/track-id context used by the user-visible
// "Error: <file>: <track-id>: <message>" formatting (spec §7).
func (e *Error) WithTrack(file string, trackID int) *Error {
	e.File = file
	e.TrackID = trackID
	return e
}

// Wrap builds an *Error of the given kind around an underlying cause,
// typically a reader's I/O failure being surfaced as IoError.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// ProgrammingErrorf builds a ProgrammingError with the "please file a
// bug report" convention mkvmerge uses for asserted invariant failures.
func ProgrammingErrorf(format string, args ...any) *Error {
	msg := fmt.Sprintf(format, args...)
	return &Error{Kind: ProgrammingError, Message: msg + " (this is a bug, please file a bug report)"}
}
