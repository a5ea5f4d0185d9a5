package handlers

import (
	"context"
	"log/slog"

	"github.com/edgard/tguserbot/internal/config"
	"github.com/edgard/tguserbot/internal/database"
	"github.com/edgard/tguserbot/internal/gemini"
	"github.com/edgard/tguserbot/internal/purge"
)

// Purger runs a purge from an anchor message. *purge.Engine satisfies it.
type Purger interface {
	Purge(ctx context.Context, anchor purge.Anchor) (*purge.Result, error)
}

// HandlerDeps provides dependencies for Telegram command handlers.
type HandlerDeps struct {
	Logger      *slog.Logger
	Config      *config.Config
	Store       database.Store
	PurgeEngine Purger
	Locker      *purge.ChatLocker
	// GeminiClient is nil when translation is not configured.
	GeminiClient gemini.Client
}
