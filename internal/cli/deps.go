package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fieldscope/fieldscope/internal/camera"
	"github.com/fieldscope/fieldscope/internal/identity"
	"github.com/fieldscope/fieldscope/internal/model"
	"github.com/fieldscope/fieldscope/internal/session"
	"github.com/fieldscope/fieldscope/internal/store"
	"github.com/fieldscope/fieldscope/internal/vision"
	"github.com/fieldscope/fieldscope/internal/voice"
)

// buildDeps wires the orchestrator's collaborators from configuration. A
// nil cam means "use the configured spool directory". The returned cleanup
// closes whatever was opened.
func buildDeps(cfg model.Config, cam camera.Source) (session.Deps, func(), error) {
	deps := session.Deps{Camera: cam}
	var closers []func()
	cleanup := func() {
		for _, c := range closers {
			c()
		}
	}

	provider, err := vision.NewProvider(cfg.Vision)
	if err != nil {
		return deps, cleanup, err
	}
	if provider == nil {
		slog.Warn("no vision provider configured, serving synthetic results only")
	}
	deps.Provider = provider

	if deps.Camera == nil {
		spool, err := camera.NewSpoolSource(cfg.Camera.SpoolDir, cfg.Camera.MaxFrameBytes)
		if err != nil {
			return deps, cleanup, fmt.Errorf("camera spool: %w", err)
		}
		deps.Camera = spool
		closers = append(closers, func() { _ = spool.Close() })
	}

	if cfg.Voice.Enabled {
		sink, err := voice.NewHTTPSink(cfg.Voice)
		if err != nil {
			// Voice is best-effort end to end; a bad config only loses it.
			slog.Warn("voice feedback disabled", "error", err)
		} else {
			deps.Voice = sink
		}
	}

	if cfg.Store.Enabled {
		db, err := store.Open(context.Background(), cfg.Store.Path)
		if err != nil {
			slog.Warn("durable store unavailable, persistence disabled", "error", err)
		} else {
			deps.Store = db
			closers = append(closers, func() { _ = db.Close() })
		}
	}

	ttl := time.Duration(cfg.Identity.TTLMinutes) * time.Minute
	deps.Identity = identity.NewCachedProvider(identity.EnvProvider{Var: cfg.Identity.OperatorEnv}, ttl)

	return deps, cleanup, nil
}
