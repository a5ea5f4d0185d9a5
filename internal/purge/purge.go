// Package purge bulk-deletes a contiguous range of chat messages: the anchor
// message and every message newer than it, in bounded batches, followed by a
// short-lived completion notice.
package purge

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// ChatID identifies the conversation a purge targets.
type ChatID int64

// MessageID is a message identifier. Identifiers grow monotonically within a
// chat, so their order is the chronological order of the messages.
type MessageID int

// Anchor is the oldest message of a purge range. It is deleted together with
// the range but is not counted in the result.
type Anchor struct {
	ChatID    ChatID
	MessageID MessageID
}

// MessageHandle refers to a message the engine sent itself.
type MessageHandle struct {
	ChatID    ChatID
	MessageID MessageID
}

// Transport is the messaging platform surface used by the engine.
type Transport interface {
	// ResolveConversation returns the chat the anchor belongs to. It returns an
	// error wrapping ErrNotFound if the anchor is unknown or inaccessible.
	ResolveConversation(ctx context.Context, anchor Anchor) (ChatID, error)

	// FetchHistory returns up to limit identifiers greater than minID and, when
	// beforeID is non-zero, lower than beforeID, newest first. An empty page
	// means the history is exhausted.
	FetchHistory(ctx context.Context, chat ChatID, minID, beforeID MessageID, limit int) ([]MessageID, error)

	// DeleteMessages deletes a batch of messages. Identifiers that no longer
	// exist must not cause an error.
	DeleteMessages(ctx context.Context, chat ChatID, ids []MessageID) error

	SendMessage(ctx context.Context, chat ChatID, text string) (MessageHandle, error)
	DeleteMessage(ctx context.Context, handle MessageHandle) error
}

const (
	// MaxBatchSize is the largest batch the Telegram API accepts in a single
	// deleteMessages call.
	MaxBatchSize = 100

	DefaultBatchSize   = MaxBatchSize
	DefaultPageSize    = 100
	DefaultGracePeriod = 3 * time.Second
	DefaultNoticeText  = "Purge complete! Purged %d messages."

	cleanupTimeout = 10 * time.Second
)

// Config holds the engine settings. Zero BatchSize, PageSize and NoticeText
// fall back to the defaults.
type Config struct {
	BatchSize int
	PageSize  int
	// GracePeriod is how long the completion notice stays visible. Zero removes
	// it right away.
	GracePeriod time.Duration
	// Timeout bounds a whole purge, notice included. Zero disables it.
	Timeout time.Duration
	// NoticeText is a format string receiving the purged message count.
	NoticeText string
}

func (c Config) withDefaults() Config {
	if c.BatchSize == 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.PageSize == 0 {
		c.PageSize = DefaultPageSize
	}
	if c.NoticeText == "" {
		c.NoticeText = DefaultNoticeText
	}
	return c
}

// Result describes a completed purge.
type Result struct {
	ID     string
	ChatID ChatID
	// Count is the number of purged messages, the anchor excluded.
	Count   int
	Batches int
	// NoticeDelivered reports whether the completion notice was sent.
	NoticeDelivered bool
	Duration        time.Duration
}

// Engine runs purges. It keeps no state between invocations and is safe for
// concurrent use on different chats.
type Engine struct {
	transport Transport
	cfg       Config
	clock     clockwork.Clock
	logger    *slog.Logger
}

// Option customizes an Engine.
type Option func(*Engine)

// WithClock replaces the clock driving the notice grace period.
func WithClock(clock clockwork.Clock) Option {
	return func(e *Engine) { e.clock = clock }
}

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// NewEngine creates a purge engine on top of the given transport.
func NewEngine(transport Transport, cfg Config, opts ...Option) (*Engine, error) {
	if transport == nil {
		return nil, errors.New("purge transport cannot be nil")
	}
	cfg = cfg.withDefaults()
	if cfg.BatchSize < 1 || cfg.BatchSize > MaxBatchSize {
		return nil, fmt.Errorf("batch size must be between 1 and %d, got %d", MaxBatchSize, cfg.BatchSize)
	}
	if cfg.PageSize < 1 {
		return nil, fmt.Errorf("page size must be positive, got %d", cfg.PageSize)
	}
	if cfg.GracePeriod < 0 || cfg.Timeout < 0 {
		return nil, errors.New("grace period and timeout cannot be negative")
	}

	e := &Engine{
		transport: transport,
		cfg:       cfg,
		clock:     clockwork.NewRealClock(),
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With("component", "purge_engine")
	return e, nil
}

// Purge deletes the anchor and every newer message of its chat, then posts a
// completion notice and removes it after the grace period.
//
// Errors are *ResolutionError when nothing was deleted yet, or *TransportError
// when history or a batch deletion failed. Batches flushed before a failure
// stay deleted.
func (e *Engine) Purge(ctx context.Context, anchor Anchor) (*Result, error) {
	start := e.clock.Now()
	id := uuid.NewString()
	log := e.logger.With("purge_id", id, "chat_id", int64(anchor.ChatID), "anchor_id", int(anchor.MessageID))

	if e.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.Timeout)
		defer cancel()
	}

	chat, err := e.transport.ResolveConversation(ctx, anchor)
	if err != nil {
		err = &ResolutionError{Anchor: anchor, Err: err}
		log.WarnContext(ctx, "Failed to resolve purge anchor", "error", err)
		observePurge(err, e.clock.Since(start))
		return nil, err
	}

	log.InfoContext(ctx, "Starting purge", "batch_size", e.cfg.BatchSize)

	enum := newEnumerator(e.transport, chat, anchor.MessageID, e.cfg.PageSize)
	com := newCommitter(e.transport, chat, anchor.MessageID, e.cfg.BatchSize)
	if err := com.run(ctx, enum); err != nil {
		log.ErrorContext(ctx, "Purge aborted",
			"error", err,
			"batches_flushed", com.batches,
			"pages_fetched", enum.pages)
		observePurge(err, e.clock.Since(start))
		return nil, err
	}

	result := &Result{
		ID:      id,
		ChatID:  chat,
		Count:   com.count,
		Batches: com.batches,
	}

	n := newNotifier(e.transport, e.clock, e.cfg.GracePeriod, log)
	result.NoticeDelivered = n.notify(ctx, chat, fmt.Sprintf(e.cfg.NoticeText, result.Count))

	result.Duration = e.clock.Since(start)
	observePurge(nil, result.Duration)
	log.InfoContext(ctx, "Purge completed",
		"count", result.Count,
		"batches", result.Batches,
		"notice_delivered", result.NoticeDelivered,
		"duration", result.Duration)
	return result, nil
}
