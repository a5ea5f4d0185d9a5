// Package handlers contains Telegram bot command and message handlers,
// along with their registration logic and middleware.
package handlers

import (
	"context"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/tguserbot/internal/database"
)

// AdminOnly creates a middleware that checks if the message sender is the configured admin user.
// If not, it sends a "Not Authorized" message and stops processing.
func AdminOnly(deps HandlerDeps) tgbot.Middleware {
	return func(next tgbot.HandlerFunc) tgbot.HandlerFunc {
		return func(ctx context.Context, bot *tgbot.Bot, update *models.Update) {
			if update.Message == nil || update.Message.From == nil {
				next(ctx, bot, update)
				return
			}

			userID := update.Message.From.ID
			if userID != deps.Config.Telegram.AdminUserID {
				chatID := update.Message.Chat.ID
				log := deps.Logger.With("middleware", "AdminOnly")
				log.WarnContext(ctx, "Unauthorized access attempt", "user_id", userID, "chat_id", chatID)
				sendReply(ctx, bot, deps, chatID, deps.Config.Messages.ErrorUnauthorizedMsg)
				return
			}

			next(ctx, bot, update)
		}
	}
}

// RecordHistory creates a middleware that saves every observed message, and
// the message it replies to, in the message log before the update is handled.
func RecordHistory(deps HandlerDeps) tgbot.Middleware {
	log := deps.Logger.With("middleware", "RecordHistory")
	return func(next tgbot.HandlerFunc) tgbot.HandlerFunc {
		return func(ctx context.Context, bot *tgbot.Bot, update *models.Update) {
			for _, msg := range observedMessages(update) {
				entry := database.MessageFromTelegram(msg)
				if entry == nil {
					continue
				}
				if err := deps.Store.SaveMessage(ctx, entry); err != nil {
					log.WarnContext(ctx, "Failed to record message",
						"chat_id", entry.ChatID, "message_id", entry.MessageID, "error", err)
				}
			}
			next(ctx, bot, update)
		}
	}
}

// observedMessages lists the messages an update reveals, oldest first.
func observedMessages(update *models.Update) []*models.Message {
	var msgs []*models.Message
	for _, msg := range []*models.Message{update.Message, update.ChannelPost} {
		if msg == nil {
			continue
		}
		if msg.ReplyToMessage != nil {
			msgs = append(msgs, msg.ReplyToMessage)
		}
		msgs = append(msgs, msg)
	}
	return msgs
}

// sendReply sends text to chatID and records the sent message so purges
// cover the bot's own replies.
func sendReply(ctx context.Context, b *tgbot.Bot, deps HandlerDeps, chatID int64, text string) *models.Message {
	sent, err := b.SendMessage(ctx, &tgbot.SendMessageParams{ChatID: chatID, Text: text})
	if err != nil {
		deps.Logger.ErrorContext(ctx, "Failed to send reply", "error", err, "chat_id", chatID)
		return nil
	}
	recordSent(ctx, deps, sent)
	return sent
}

func recordSent(ctx context.Context, deps HandlerDeps, sent *models.Message) {
	entry := database.MessageFromTelegram(sent)
	if entry == nil || deps.Store == nil {
		return
	}
	if err := deps.Store.SaveMessage(ctx, entry); err != nil {
		deps.Logger.WarnContext(ctx, "Failed to record sent message", "chat_id", entry.ChatID, "error", err)
	}
}
