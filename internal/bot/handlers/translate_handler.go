package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/tguserbot/internal/gemini"
)

// NewTranslateHandler returns a handler for the /trt command.
func NewTranslateHandler(deps HandlerDeps) bot.HandlerFunc {
	return translateHandler{deps}.Handle
}

type translateHandler struct {
	deps HandlerDeps
}

func (h translateHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "translate")

	if update.Message == nil {
		log.WarnContext(ctx, "Translate handler received update with nil message", "update_id", update.ID)
		return
	}

	msg := update.Message
	chatID := msg.Chat.ID
	msgs := h.deps.Config.Messages

	if h.deps.GeminiClient == nil {
		sendReply(ctx, b, h.deps, chatID, msgs.TranslateDisabledMsg)
		return
	}

	text := translateSource(msg)
	if text == "" {
		sendReply(ctx, b, h.deps, chatID, msgs.TranslateNoTextMsg)
		return
	}

	working := sendReply(ctx, b, h.deps, chatID, msgs.TranslateWorkingMsg)

	tctx, cancel := context.WithTimeout(ctx, h.deps.Config.Gemini.Timeout)
	defer cancel()

	target := h.deps.Config.Gemini.TargetLanguage
	start := time.Now()
	result, err := h.deps.GeminiClient.Translate(tctx, text, target)

	var reply string
	switch {
	case errors.Is(err, gemini.ErrSameLanguage):
		reply = msgs.TranslateSameLanguageMsg
	case err != nil:
		log.ErrorContext(ctx, "Translation failed", "chat_id", chatID, "error", err)
		reply = msgs.TranslateFailedMsg
	default:
		log.InfoContext(ctx, "Translated message",
			"chat_id", chatID,
			"source_language", result.SourceLanguage,
			"duration", time.Since(start))
		reply = formatTranslation(result, target)
	}

	if working == nil {
		sendReply(ctx, b, h.deps, chatID, reply)
		return
	}
	if _, err := b.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:    chatID,
		MessageID: working.ID,
		Text:      reply,
	}); err != nil {
		log.ErrorContext(ctx, "Failed to edit working message", "error", err, "chat_id", chatID)
	}
}

// translateSource returns the command arguments, or the replied message
// text when there are none.
func translateSource(msg *models.Message) string {
	if args := commandArgs(msg.Text); args != "" {
		return args
	}
	if reply := msg.ReplyToMessage; reply != nil {
		if reply.Text != "" {
			return strings.TrimSpace(reply.Text)
		}
		return strings.TrimSpace(reply.Caption)
	}
	return ""
}

func formatTranslation(t *gemini.Translation, target string) string {
	return fmt.Sprintf("🌐 %s → %s\n\n%s", t.SourceLanguage, target, t.Text)
}
