package database

import (
	"time"

	"github.com/go-telegram/bot/models"
)

// Message is one entry of the message log. The Bot API offers no history
// query, so every message the bot observes is recorded here and the log is
// what purges enumerate.
type Message struct {
	ID        uint      `db:"id"`
	CreatedAt time.Time `db:"created_at"`

	ChatID    int64     `db:"chat_id"`
	MessageID int       `db:"message_id"` // Telegram message id, unique per chat
	UserID    int64     `db:"user_id"`    // zero for anonymous and channel posts
	Content   string    `db:"content"`
	Timestamp time.Time `db:"timestamp"`
}

// MessageFromTelegram converts an observed Telegram message into a log entry.
// It returns nil for messages without an id, which cannot be deleted.
func MessageFromTelegram(msg *models.Message) *Message {
	if msg == nil || msg.ID <= 0 || msg.Chat.ID == 0 {
		return nil
	}
	entry := &Message{
		ChatID:    msg.Chat.ID,
		MessageID: msg.ID,
		Content:   msg.Text,
	}
	if entry.Content == "" {
		entry.Content = msg.Caption
	}
	if msg.From != nil {
		entry.UserID = msg.From.ID
	}
	if msg.Date > 0 {
		entry.Timestamp = time.Unix(int64(msg.Date), 0).UTC()
	}
	return entry
}
