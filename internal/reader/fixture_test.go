package reader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acdvorak/mkvtoolnix/internal/frame"
	"github.com/acdvorak/mkvtoolnix/internal/packet"
	"github.com/acdvorak/mkvtoolnix/internal/packetizer"
	"github.com/acdvorak/mkvtoolnix/internal/packetizer/pcm"
	"github.com/acdvorak/mkvtoolnix/internal/track"
	"github.com/acdvorak/mkvtoolnix/internal/trackinfo"
)

type recordingSink struct {
	packets []packet.Packet
}

func (s *recordingSink) Emit(p packet.Packet) {
	s.packets = append(s.packets, p)
}

func newPCMFixture(t *testing.T, sink packetizer.Sink) *pcm.Packetizer {
	t.Helper()
	p, err := pcm.New(0, trackinfo.TrackInfo{}, 48000, 2, 16, track.NewUIDService(), sink, nil)
	require.NoError(t, err)
	return p
}

func TestFixtureReaderDispatchesFramesInOrder(t *testing.T) {
	sink := &recordingSink{}
	target := newPCMFixture(t, sink)

	r := NewFixtureReader(DisplayPriorityLow)
	r.AddTrack(target, Descriptor{TrackID: 0, Type: track.Audio, Codec: track.CodecPCMInt}, []frame.Frame{
		frame.New(make([]byte, pcm.Interleave*2*2)),
		frame.New(make([]byte, pcm.Interleave*2*2)),
	})

	status, err := r.Read(target)
	require.NoError(t, err)
	assert.Equal(t, packetizer.MoreData, status)
	assert.False(t, r.AllDone())

	status, err = r.Read(target)
	require.NoError(t, err)
	assert.Equal(t, packetizer.MoreData, status)
	assert.True(t, r.AllDone())

	status, err = r.Read(target)
	require.NoError(t, err)
	assert.Equal(t, packetizer.Done, status)

	assert.Len(t, sink.packets, 2)
}

func TestFixtureReaderRejectsUnregisteredTarget(t *testing.T) {
	sink := &recordingSink{}
	r := NewFixtureReader(DisplayPriorityHigh)
	other := newPCMFixture(t, sink)

	_, err := r.Read(other)
	assert.Error(t, err)
}

func TestFixtureReaderIdentifyAndProgress(t *testing.T) {
	sink := &recordingSink{}
	target := newPCMFixture(t, sink)

	r := NewFixtureReader(DisplayPriorityHigh)
	desc := Descriptor{TrackID: 0, Type: track.Audio, Codec: track.CodecPCMInt}
	r.AddTrack(target, desc, []frame.Frame{
		frame.New(make([]byte, pcm.Interleave*2*2)),
	})

	assert.Equal(t, []Descriptor{desc}, r.Identify())
	assert.Equal(t, DisplayPriorityHigh, r.DisplayPriority())

	progress := r.DisplayProgress(false)
	assert.Equal(t, 0, progress.Done)
	assert.Equal(t, 1, progress.Total)
	assert.False(t, progress.Final)

	_, err := r.Read(target)
	require.NoError(t, err)

	progress = r.DisplayProgress(true)
	assert.Equal(t, 1, progress.Done)
	assert.True(t, progress.Final)
}
