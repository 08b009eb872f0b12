package controller

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acdvorak/mkvtoolnix/internal/frame"
	"github.com/acdvorak/mkvtoolnix/internal/packetizer/pcm"
	"github.com/acdvorak/mkvtoolnix/internal/reader"
	"github.com/acdvorak/mkvtoolnix/internal/track"
	"github.com/acdvorak/mkvtoolnix/internal/trackinfo"
	"github.com/acdvorak/mkvtoolnix/internal/writer"
)

func chunk(n int) frame.Frame {
	return frame.New(make([]byte, n))
}

func TestControllerMergesTwoTracksByTimecode(t *testing.T) {
	w := writer.NewMemoryWriter()
	c := New(w, nil)
	uidSvc := track.NewUIDService()

	rA := reader.NewFixtureReader(reader.DisplayPriorityHigh)
	pA, err := pcm.New(0, trackinfo.TrackInfo{}, 8000, 1, 16, uidSvc, c, nil)
	require.NoError(t, err)
	rA.AddTrack(pA, reader.Descriptor{TrackID: 0, Type: track.Audio, Codec: track.CodecPCMInt}, []frame.Frame{
		chunk(pcm.Interleave * 1 * 2),
		chunk(pcm.Interleave * 1 * 2),
	})

	rB := reader.NewFixtureReader(reader.DisplayPriorityLow)
	pB, err := pcm.New(1, trackinfo.TrackInfo{}, 8000, 1, 16, uidSvc, c, nil)
	require.NoError(t, err)
	rB.AddTrack(pB, reader.Descriptor{TrackID: 1, Type: track.Audio, Codec: track.CodecPCMInt}, []frame.Frame{
		chunk(pcm.Interleave * 1 * 2),
	})

	c.Register(rA, pA)
	c.Register(rB, pB)

	require.NoError(t, c.Run())

	assert.True(t, w.Closed())
	headers := w.Headers()
	assert.Len(t, headers, 2)

	blocks := w.Blocks()
	require.Len(t, blocks, 3)
	for i := 1; i < len(blocks); i++ {
		assert.LessOrEqual(t, blocks[i-1].Timecode, blocks[i].Timecode)
	}
}

func TestControllerRespectsTrackOrderForHeaderNumbers(t *testing.T) {
	w := writer.NewMemoryWriter()
	c := New(w, nil)
	uidSvc := track.NewUIDService()

	rA := reader.NewFixtureReader(reader.DisplayPriorityHigh)
	pA, err := pcm.New(0, trackinfo.TrackInfo{}, 8000, 1, 16, uidSvc, c, nil)
	require.NoError(t, err)
	rA.AddTrack(pA, reader.Descriptor{}, []frame.Frame{chunk(pcm.Interleave * 1 * 2)})

	rB := reader.NewFixtureReader(reader.DisplayPriorityLow)
	pB, err := pcm.New(1, trackinfo.TrackInfo{}, 8000, 1, 16, uidSvc, c, nil)
	require.NoError(t, err)
	rB.AddTrack(pB, reader.Descriptor{}, []frame.Frame{chunk(pcm.Interleave * 1 * 2)})

	c.Register(rA, pA)
	c.Register(rB, pB)
	require.NoError(t, c.SetTrackOrder([]int{1, 0}))

	require.NoError(t, c.Run())

	headers := w.Headers()
	require.Len(t, headers, 2)
	assert.Equal(t, pB.UID(), headers[0].UID)
	assert.Equal(t, 1, headers[0].TrackNumber)
	assert.Equal(t, pA.UID(), headers[1].UID)
	assert.Equal(t, 2, headers[1].TrackNumber)
}

func TestControllerRejectsSecondRun(t *testing.T) {
	w := writer.NewMemoryWriter()
	c := New(w, nil)
	require.NoError(t, c.Run())
	assert.Error(t, c.Run())
}

func TestSetTrackOrderValidatesPermutation(t *testing.T) {
	w := writer.NewMemoryWriter()
	c := New(w, nil)
	uidSvc := track.NewUIDService()
	p, err := pcm.New(0, trackinfo.TrackInfo{}, 8000, 1, 16, uidSvc, c, nil)
	require.NoError(t, err)
	c.Register(reader.NewFixtureReader(reader.DisplayPriorityHigh), p)

	assert.Error(t, c.SetTrackOrder([]int{0, 0}))
	assert.Error(t, c.SetTrackOrder([]int{1}))
	assert.Error(t, c.SetTrackOrder([]int{}))
}
