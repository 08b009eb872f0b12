// Package timecode implements the timecode factory referenced by
// spec.md §4.1: an optional policy object a Packetizer consults when it
// needs to know how much frame lookahead its reordering is allowed to
// buffer before it must commit to an output timecode.
package timecode

// ApplicationMode describes how far a packetizer's internal reordering
// may look ahead before it must assign a final timecode to a frame.
type ApplicationMode int

const (
	// None means the packetizer emits frames in arrival order with no
	// reordering; the factory is unused.
	None ApplicationMode = iota
	// ShortQueueing bounds lookahead to a small, fixed depth — the
	// MPEG-4 Part 2 reorder engine needs exactly this: at most one
	// backward and one forward reference frame buffered at a time
	// (spec §4.3).
	ShortQueueing
	// FullQueueing allows unbounded lookahead. Reserved for codecs with
	// arbitrary reordering; no packetizer in this module needs it.
	FullQueueing
)

func (m ApplicationMode) String() string {
	switch m {
	case ShortQueueing:
		return "short-queueing"
	case FullQueueing:
		return "full-queueing"
	default:
		return "none"
	}
}

// ShortQueueDepth is the maximum number of reference frames the
// MPEG-4 Part 2 engine holds at once: one backward ref and one forward
// ref (spec §4.3 "ref_frames ... holds at most two").
const ShortQueueDepth = 2

// Factory hands out timecodes/durations to a packetizer that cannot
// derive them from the source container alone — either because the
// container supplies none at all (synthesize from fps, spec §4.3
// "Timecode synthesis"), or because an external timecode source (not
// modeled by this core; readers own that) has been attached.
//
// Source, if non-nil, is consulted first for each frame; when it is
// exhausted (or nil), Factory falls back to synthesizing from FPS.
type Factory struct {
	Mode     ApplicationMode
	FPS      float64
	Source   []int64 // externally supplied timecodes, consumed in order
	consumed int

	previous int64 // last timecode handed out; seed for FPS synthesis
	primed   bool
}

// New builds a Factory for the given application mode and frame rate.
// FPS may be zero when every frame is guaranteed to carry a source
// timecode; Next will only need it if Source (or frames pushed via
// PushSourceTimecode) runs dry.
func New(mode ApplicationMode, fps float64) *Factory {
	return &Factory{Mode: mode, FPS: fps, previous: 0}
}

// PushSourceTimecode appends a timecode supplied by the source
// container, to be consumed by a future Next call before any
// synthesis is attempted.
func (f *Factory) PushSourceTimecode(ts int64) {
	f.Source = append(f.Source, ts)
}

// Available reports how many source-supplied timecodes are still
// queued, unconsumed.
func (f *Factory) Available() int {
	return len(f.Source) - f.consumed
}

// Next returns the next timecode to assign. If a source-supplied value
// is queued it is consumed and returned (and primes synthesis for any
// later gap); otherwise it synthesizes previous + 1e9/FPS. FPS <= 0 with
// no queued source value is a caller bug — the MPEG-4 Part 2
// packetizer's nextTimecode (internal/packetizer/mpeg4p2) checks for it
// up front and returns NoTimingInfo
// before ever calling here, per spec §4.3 and the corrected polarity
// noted in spec §9 ("synthesize only if fps > 0, fatal otherwise").
func (f *Factory) Next() int64 {
	if f.Available() > 0 {
		ts := f.Source[f.consumed]
		f.consumed++
		f.previous = ts
		f.primed = true
		return ts
	}
	if !f.primed {
		f.previous = 0
		f.primed = true
		return f.previous
	}
	f.previous += int64(1e9 / f.FPS)
	return f.previous
}

// NextDuration returns 1e9/FPS nanoseconds, the synthesized duration
// used whenever a frame's source duration is unknown (spec §4.3).
func (f *Factory) NextDuration() int64 {
	return int64(1e9 / f.FPS)
}
