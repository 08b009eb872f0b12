// Package controller implements the Output Controller (spec.md §4.5):
// the single-threaded scheduler that round-robins readers, merges each
// packetizer's emitted packets into non-decreasing timecode order, and
// drives the Writer. There is exactly one control loop here (spec §5
// "single-threaded cooperative" scheduling model), not a worker pool.
package controller

import (
	"log/slog"

	"github.com/acdvorak/mkvtoolnix/internal/merrors"
	"github.com/acdvorak/mkvtoolnix/internal/packet"
	"github.com/acdvorak/mkvtoolnix/internal/packetizer"
	"github.com/acdvorak/mkvtoolnix/internal/reader"
	"github.com/acdvorak/mkvtoolnix/internal/track"
	"github.com/acdvorak/mkvtoolnix/internal/writer"
)

// trackState is the Controller's bookkeeping for one registered
// packetizer: the reader that feeds it, the queue of packets it has
// emitted but the Controller hasn't yet written, and whether its owning
// reader has reported this packetizer exhausted.
type trackState struct {
	index      int
	r          reader.Reader
	p          packetizer.Packetizer
	queue      []packet.Packet
	eof        bool
	lastHeader *track.Track // last value written to the writer, if any
}

// Controller is the Output Controller (spec §4.5).
type Controller struct {
	w          writer.Writer
	tracks     []*trackState
	byUID      map[uint32]*trackState
	order      []int // emission order, as indices into tracks; nil means registration order
	logger     *slog.Logger
	terminated bool
}

// New creates a Controller writing to w. logger may be nil.
func New(w writer.Writer, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		w:      w,
		byUID:  make(map[uint32]*trackState),
		logger: logger,
	}
}

// Register adds a packetizer fed by r to the controller. Order of
// registration is the default emission order; call SetTrackOrder to
// override it (spec §4.5 "Track ordering"). Registration allocates the
// packetizer's track UID immediately (the same lazy draw SetHeaders
// would otherwise trigger on first header render, spec §4.5 "Track UID
// allocation") so the Controller can route emitted packets by UID in
// O(1) instead of scanning every track on every packet.
func (c *Controller) Register(r reader.Reader, p packetizer.Packetizer) {
	ts := &trackState{index: len(c.tracks), r: r, p: p}
	c.tracks = append(c.tracks, ts)
	c.byUID[p.UID()] = ts
}

// SetTrackOrder overrides emission order with a caller-supplied
// permutation of registration indices (spec §4.5 "if a user-supplied
// track_order list is present"). Every registered track must appear
// exactly once.
func (c *Controller) SetTrackOrder(order []int) error {
	if len(order) != len(c.tracks) {
		return merrors.New(merrors.InvalidConfig, "track order: expected %d entries, got %d", len(c.tracks), len(order))
	}
	seen := make(map[int]bool, len(order))
	for _, idx := range order {
		if idx < 0 || idx >= len(c.tracks) {
			return merrors.New(merrors.InvalidConfig, "track order: index %d out of range", idx)
		}
		if seen[idx] {
			return merrors.New(merrors.InvalidConfig, "track order: index %d repeated", idx)
		}
		seen[idx] = true
	}
	c.order = order
	return nil
}

// Emit implements packetizer.Sink. Packetizers call this (via
// Base.Emit) as they finish assembling each packet; the Controller
// queues it against the emitting packetizer's track state rather than
// writing it immediately, since the merge decision needs to compare
// across tracks first.
func (c *Controller) Emit(p packet.Packet) {
	if ts, ok := c.byUID[p.TrackUID]; ok {
		ts.queue = append(ts.queue, p)
	}
}

func (c *Controller) emissionOrder() []int {
	if c.order != nil {
		return c.order
	}
	order := make([]int, len(c.tracks))
	for i := range order {
		order[i] = i
	}
	return order
}

// Run drives every registered reader to completion: pulling frames,
// merging emitted packets in non-decreasing timecode order (ties
// broken by track emission order, spec §5), writing blocks, and
// finishing with the flush-then-close shutdown sequence (spec §4.5).
func (c *Controller) Run() error {
	if c.terminated {
		return merrors.ProgrammingErrorf("controller: Run called more than once")
	}
	c.terminated = true

	for {
		if err := c.fillStarvedQueues(); err != nil {
			return err
		}
		ts := c.pickNext()
		if ts == nil {
			break
		}
		if err := c.writeHeaderIfNeeded(ts); err != nil {
			return err
		}
		p := ts.queue[0]
		ts.queue = ts.queue[1:]
		if err := c.writeBlock(ts, p); err != nil {
			return err
		}
	}

	return c.shutdown()
}

// fillStarvedQueues services every active track whose queue is
// currently empty: its head timecode can't be compared against any
// other track until it has produced at least one more packet (or its
// reader confirms there are none left).
func (c *Controller) fillStarvedQueues() error {
	for _, ts := range c.tracks {
		for !ts.eof && len(ts.queue) == 0 {
			status, err := ts.r.Read(ts.p)
			if err != nil {
				return err
			}
			if status == packetizer.Done {
				ts.eof = true
				break
			}
		}
	}
	return nil
}

// pickNext selects, among tracks with a non-empty queue, the one whose
// head packet has the smallest timecode, breaking ties by emission
// order (spec §5 "ties broken by track index").
func (c *Controller) pickNext() *trackState {
	var best *trackState
	bestRank := -1
	for rank, idx := range c.emissionOrder() {
		ts := c.tracks[idx]
		if len(ts.queue) == 0 {
			continue
		}
		if best == nil || ts.queue[0].Timecode < best.queue[0].Timecode {
			best, bestRank = ts, rank
		} else if ts.queue[0].Timecode == best.queue[0].Timecode && rank < bestRank {
			best, bestRank = ts, rank
		}
	}
	return best
}

// writeHeaderIfNeeded calls SetHeaders (cheap: idempotent when nothing
// changed) and re-registers the track with the writer whenever the
// result differs from what was last written — covering both the
// initial render and any later rerender a metadata mutator triggered
// (spec §4.1 "may be re-invoked").
func (c *Controller) writeHeaderIfNeeded(ts *trackState) error {
	tr := ts.p.SetHeaders()
	for rank, idx := range c.emissionOrder() {
		if idx == ts.index {
			tr.TrackNumber = rank + 1
			break
		}
	}
	if ts.lastHeader != nil && sameHeader(*ts.lastHeader, tr) {
		return nil
	}
	ts.lastHeader = &tr
	return c.w.WriteTrackHeader(toTrackHeader(tr))
}

func sameHeader(a, b track.Track) bool {
	return a.UID == b.UID &&
		a.Type == b.Type &&
		a.CodecID == b.CodecID &&
		a.TrackNumber == b.TrackNumber &&
		a.Video == b.Video &&
		a.Audio == b.Audio &&
		bytesEqual(a.CodecData, b.CodecData)
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (c *Controller) writeBlock(ts *trackState, p packet.Packet) error {
	return c.w.WriteBlock(writer.Block{
		TrackUID:   p.TrackUID,
		Timecode:   p.Timecode,
		Duration:   p.Duration,
		Payload:    p.Payload.Bytes(),
		References: []int64(p.References),
	})
}

// shutdown flushes every packetizer in emission order, drains whatever
// that flush enqueues, and closes the writer (spec §4.5 "Shutdown").
func (c *Controller) shutdown() error {
	for _, idx := range c.emissionOrder() {
		ts := c.tracks[idx]
		if err := ts.p.Flush(); err != nil {
			return err
		}
	}
	for {
		progressed := false
		for _, idx := range c.emissionOrder() {
			ts := c.tracks[idx]
			for len(ts.queue) > 0 {
				if err := c.writeHeaderIfNeeded(ts); err != nil {
					return err
				}
				p := ts.queue[0]
				ts.queue = ts.queue[1:]
				if err := c.writeBlock(ts, p); err != nil {
					return err
				}
				progressed = true
			}
		}
		if !progressed {
			break
		}
	}
	return c.w.Close()
}

func toTrackHeader(t track.Track) writer.TrackHeader {
	return writer.TrackHeader{
		UID:          t.UID,
		Type:         t.Type,
		CodecID:      t.CodecID,
		CodecPrivate: t.CodecData,
		Video:        t.Video,
		Audio:        t.Audio,
		TrackNumber:  t.TrackNumber,
	}
}
