// Package runtimectx assembles the process-wide collaborators spec.md
// §5 and §9 call "Global state": the logger, the random-unique-UID
// service, and the charset conversion table, plus a per-run identifier
// every log line this run produces carries.
package runtimectx

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/acdvorak/mkvtoolnix/internal/config"
	"github.com/acdvorak/mkvtoolnix/internal/track"
)

// RuntimeContext owns the collaborators every reader, packetizer, and
// the controller itself are constructed with.
type RuntimeContext struct {
	RunID   string
	Logger  *slog.Logger
	UIDs    *track.UIDService
	Charset *CharsetTable
}

// New builds a RuntimeContext from cfg: a fresh run id, a logger
// scoped to that run id, a process-wide UID service, and the charset
// table cfg.Muxer.Charset names.
func New(cfg *config.Config) (*RuntimeContext, error) {
	runID := uuid.NewString()
	logger := NewLogger(cfg.Logging).With(slog.String("run_id", runID))

	charset, err := NewCharsetTable(cfg.Muxer.Charset)
	if err != nil {
		return nil, err
	}

	return &RuntimeContext{
		RunID:   runID,
		Logger:  logger,
		UIDs:    track.NewUIDService(),
		Charset: charset,
	}, nil
}
