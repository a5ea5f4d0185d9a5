package telegram

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"golang.org/x/time/rate"

	"github.com/edgard/tguserbot/internal/database"
	"github.com/edgard/tguserbot/internal/purge"
)

// BotAPI is the subset of the Bot API client used by Transport.
// *bot.Bot satisfies it.
type BotAPI interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	DeleteMessage(ctx context.Context, params *bot.DeleteMessageParams) (bool, error)
	DeleteMessages(ctx context.Context, params *bot.DeleteMessagesParams) (bool, error)
}

// Transport implements purge.Transport on top of the Bot API and the
// recorded message log. The Bot API cannot read chat history, so history
// pages come from the log and deleted messages are forgotten there.
type Transport struct {
	api     BotAPI
	store   database.Store
	limiter *rate.Limiter
	logger  *slog.Logger
}

var _ purge.Transport = (*Transport)(nil)

// NewTransport creates a Transport. A nil limiter disables pacing of
// deleteMessages calls.
func NewTransport(api BotAPI, store database.Store, limiter *rate.Limiter, logger *slog.Logger) *Transport {
	if logger == nil {
		logger = slog.Default()
	}
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 0)
	}
	return &Transport{
		api:     api,
		store:   store,
		limiter: limiter,
		logger:  logger.With("component", "telegram_transport"),
	}
}

// ResolveConversation checks that the anchor is a recorded message.
func (t *Transport) ResolveConversation(ctx context.Context, anchor purge.Anchor) (purge.ChatID, error) {
	msg, err := t.store.GetMessage(ctx, int64(anchor.ChatID), int(anchor.MessageID))
	if err != nil {
		return 0, fmt.Errorf("failed to look up anchor: %w", err)
	}
	if msg == nil {
		return 0, fmt.Errorf("%w: message %d is not in the log of chat %d",
			purge.ErrNotFound, anchor.MessageID, anchor.ChatID)
	}
	return purge.ChatID(msg.ChatID), nil
}

// FetchHistory pages through the recorded ids of a chat, newest first.
func (t *Transport) FetchHistory(ctx context.Context, chat purge.ChatID, minID, beforeID purge.MessageID, limit int) ([]purge.MessageID, error) {
	ids, err := t.store.ListMessageIDs(ctx, int64(chat), int(minID), int(beforeID), limit)
	if err != nil {
		return nil, err
	}
	page := make([]purge.MessageID, len(ids))
	for i, id := range ids {
		page[i] = purge.MessageID(id)
	}
	return page, nil
}

// DeleteMessages deletes a batch with a single deleteMessages call, which
// skips ids that no longer exist, then forgets the batch in the log.
func (t *Transport) DeleteMessages(ctx context.Context, chat purge.ChatID, ids []purge.MessageID) error {
	if len(ids) == 0 {
		return nil
	}
	if err := t.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("waiting for delete rate limit: %w", err)
	}

	raw := toInts(ids)
	if _, err := t.api.DeleteMessages(ctx, &bot.DeleteMessagesParams{
		ChatID:     int64(chat),
		MessageIDs: raw,
	}); err != nil {
		return fmt.Errorf("deleteMessages failed: %w", err)
	}

	// A stale log entry only costs a no-op delete later.
	if _, err := t.store.DeleteMessages(ctx, int64(chat), raw); err != nil {
		t.logger.WarnContext(ctx, "Failed to forget deleted messages", "chat_id", int64(chat), "count", len(raw), "error", err)
	}
	return nil
}

// SendMessage posts text and records the sent message so later purges
// cover it too.
func (t *Transport) SendMessage(ctx context.Context, chat purge.ChatID, text string) (purge.MessageHandle, error) {
	msg, err := t.api.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: int64(chat),
		Text:   text,
	})
	if err != nil {
		return purge.MessageHandle{}, fmt.Errorf("sendMessage failed: %w", err)
	}
	if msg == nil {
		return purge.MessageHandle{}, fmt.Errorf("sendMessage returned no message")
	}

	RecordMessage(ctx, t.store, t.logger, msg)
	return purge.MessageHandle{ChatID: purge.ChatID(msg.Chat.ID), MessageID: purge.MessageID(msg.ID)}, nil
}

// DeleteMessage deletes a single message and forgets it.
func (t *Transport) DeleteMessage(ctx context.Context, handle purge.MessageHandle) error {
	if _, err := t.api.DeleteMessage(ctx, &bot.DeleteMessageParams{
		ChatID:    int64(handle.ChatID),
		MessageID: int(handle.MessageID),
	}); err != nil {
		return fmt.Errorf("deleteMessage failed: %w", err)
	}
	if _, err := t.store.DeleteMessages(ctx, int64(handle.ChatID), []int{int(handle.MessageID)}); err != nil {
		t.logger.WarnContext(ctx, "Failed to forget deleted message",
			"chat_id", int64(handle.ChatID), "message_id", int(handle.MessageID), "error", err)
	}
	return nil
}

// RecordMessage saves msg in the message log. Failures are logged only.
func RecordMessage(ctx context.Context, store database.Store, logger *slog.Logger, msg *models.Message) {
	entry := database.MessageFromTelegram(msg)
	if entry == nil {
		return
	}
	if err := store.SaveMessage(ctx, entry); err != nil {
		logger.WarnContext(ctx, "Failed to record message",
			"chat_id", entry.ChatID, "message_id", entry.MessageID, "error", err)
	}
}

func toInts(ids []purge.MessageID) []int {
	out := make([]int, len(ids))
	for i, id := range ids {
		out[i] = int(id)
	}
	return out
}
