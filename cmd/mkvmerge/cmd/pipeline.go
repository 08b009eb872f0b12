package cmd

import (
	"log/slog"

	"github.com/acdvorak/mkvtoolnix/internal/controller"
	"github.com/acdvorak/mkvtoolnix/internal/runtimectx"
)

// RunPipeline applies cfg.Muxer.TrackOrder (if non-empty) to an
// already-assembled Controller and runs it to completion. Callers
// build the Controller themselves via controller.New and register
// every (Reader, Packetizer) pair before calling this — a Packetizer's
// Sink is fixed at construction time (spec §9 "the only shared
// state"), so the Controller it will report packets to must exist
// before any Packetizer sharing it is built. Concrete demuxers (AVI,
// WAV, elementary-stream readers) are the wiring point a real
// deployment would plug in here; container demuxing stays out of
// scope for this module (spec §1).
func RunPipeline(rc *runtimectx.RuntimeContext, trackOrder []int, c *controller.Controller) error {
	if len(trackOrder) > 0 {
		if err := c.SetTrackOrder(trackOrder); err != nil {
			return err
		}
	}

	rc.Logger.Info("starting mux run")
	if err := c.Run(); err != nil {
		rc.Logger.Error("mux run failed", slog.String("error", err.Error()))
		return err
	}
	rc.Logger.Info("mux run complete")
	return nil
}
