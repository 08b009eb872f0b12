package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acdvorak/mkvtoolnix/internal/config"
	"github.com/acdvorak/mkvtoolnix/internal/controller"
	"github.com/acdvorak/mkvtoolnix/internal/frame"
	"github.com/acdvorak/mkvtoolnix/internal/packetizer/pcm"
	"github.com/acdvorak/mkvtoolnix/internal/reader"
	"github.com/acdvorak/mkvtoolnix/internal/runtimectx"
	"github.com/acdvorak/mkvtoolnix/internal/track"
	"github.com/acdvorak/mkvtoolnix/internal/trackinfo"
	"github.com/acdvorak/mkvtoolnix/internal/writer"
)

func newTestRuntimeContext(t *testing.T) *runtimectx.RuntimeContext {
	t.Helper()
	rc, err := runtimectx.New(&config.Config{
		Logging: config.LoggingConfig{Level: "error", Format: "json"},
		Muxer:   config.MuxerConfig{Charset: "UTF-8"},
	})
	require.NoError(t, err)
	return rc
}

func TestRunPipelineWithNoRegistrationsStillClosesWriter(t *testing.T) {
	rc := newTestRuntimeContext(t)
	w := writer.NewMemoryWriter()
	c := controller.New(w, rc.Logger)

	require.NoError(t, RunPipeline(rc, nil, c))
	assert.True(t, w.Closed())
}

func TestRunPipelineDrivesRegisteredTrack(t *testing.T) {
	rc := newTestRuntimeContext(t)
	w := writer.NewMemoryWriter()
	c := controller.New(w, rc.Logger)

	r := reader.NewFixtureReader(reader.DisplayPriorityHigh)
	p, err := pcm.New(0, trackinfo.TrackInfo{}, 8000, 1, 16, rc.UIDs, c, nil)
	require.NoError(t, err)
	r.AddTrack(p, reader.Descriptor{TrackID: 0, Type: track.Audio, Codec: track.CodecPCMInt}, []frame.Frame{
		frame.New(make([]byte, pcm.Interleave*1*2)),
	})
	c.Register(r, p)

	require.NoError(t, RunPipeline(rc, nil, c))

	assert.True(t, w.Closed())
	assert.Len(t, w.Headers(), 1)
	assert.Len(t, w.Blocks(), 1)
}

func TestRunPipelineAppliesTrackOrder(t *testing.T) {
	rc := newTestRuntimeContext(t)
	w := writer.NewMemoryWriter()
	c := controller.New(w, rc.Logger)

	r := reader.NewFixtureReader(reader.DisplayPriorityHigh)
	p, err := pcm.New(0, trackinfo.TrackInfo{}, 8000, 1, 16, rc.UIDs, c, nil)
	require.NoError(t, err)
	r.AddTrack(p, reader.Descriptor{}, []frame.Frame{frame.New(make([]byte, pcm.Interleave*1*2))})
	c.Register(r, p)

	assert.Error(t, RunPipeline(rc, []int{0, 1}, c))
}
