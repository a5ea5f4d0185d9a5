// Package tasks implements the scheduled maintenance tasks of the userbot.
package tasks

import (
	"log/slog"

	"github.com/jonboulle/clockwork"

	"github.com/edgard/tguserbot/internal/config"
	"github.com/edgard/tguserbot/internal/database"
)

// TaskDeps contains all dependencies required by scheduled tasks.
type TaskDeps struct {
	Logger *slog.Logger
	Store  database.Store
	Config *config.Config
	// Clock defaults to the real clock when nil.
	Clock clockwork.Clock
}
