package handlers

import (
	"context"
	"errors"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/tguserbot/internal/purge"
)

// NewPurgeHandler returns a handler for the /purge command. The command must
// reply to the oldest message to delete.
func NewPurgeHandler(deps HandlerDeps) bot.HandlerFunc {
	return purgeHandler{deps}.Handle
}

type purgeHandler struct {
	deps HandlerDeps
}

func (h purgeHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "purge")

	if update.Message == nil {
		log.WarnContext(ctx, "Purge handler received update with nil message", "update_id", update.ID)
		return
	}

	msg := update.Message
	chatID := msg.Chat.ID
	msgs := h.deps.Config.Messages

	if msg.ReplyToMessage == nil {
		log.InfoContext(ctx, "Purge requested without a reply", "chat_id", chatID)
		sendReply(ctx, b, h.deps, chatID, msgs.PurgeNoReplyMsg)
		return
	}

	chat := purge.ChatID(chatID)
	release, err := h.deps.Locker.Acquire(chat)
	if err != nil {
		log.InfoContext(ctx, "Refusing purge", "chat_id", chatID, "error", err)
		sendReply(ctx, b, h.deps, chatID, purgeErrorText(err, h.deps))
		return
	}
	defer release()

	anchor := purge.Anchor{ChatID: chat, MessageID: purge.MessageID(msg.ReplyToMessage.ID)}
	log.InfoContext(ctx, "Handling /purge command", "chat_id", chatID, "anchor_id", anchor.MessageID)

	result, err := h.deps.PurgeEngine.Purge(ctx, anchor)
	if err != nil {
		text := purgeErrorText(err, h.deps)
		log.WarnContext(ctx, "Purge failed", "chat_id", chatID, "error", err)
		sendReply(ctx, b, h.deps, chatID, text)
		return
	}

	log.InfoContext(ctx, "Purge finished",
		"purge_id", result.ID,
		"chat_id", chatID,
		"count", result.Count,
		"batches", result.Batches,
		"duration", result.Duration)
}

// purgeErrorText picks the user-facing text for a failed purge.
func purgeErrorText(err error, deps HandlerDeps) string {
	var resErr *purge.ResolutionError
	switch {
	case errors.Is(err, purge.ErrInProgress):
		return deps.Config.Messages.PurgeBusyMsg
	case errors.Is(err, purge.ErrNotFound):
		return deps.Config.Messages.PurgeNotFoundMsg
	case errors.As(err, &resErr):
		return deps.Config.Messages.ErrorGeneralMsg
	default:
		return deps.Config.Messages.PurgeFailedMsg
	}
}
