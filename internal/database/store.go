package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
)

// Store defines the message log operations.
// Methods accept context.Context for cancellation and timeouts.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// SaveMessage records a message. Recording the same chat/message pair
	// twice is a no-op.
	SaveMessage(ctx context.Context, message *Message) error

	// GetMessage returns a recorded message, or nil, nil if it is unknown.
	GetMessage(ctx context.Context, chatID int64, messageID int) (*Message, error)

	// ListMessageIDs returns up to limit message ids of a chat greater than
	// afterID and, when beforeID is non-zero, lower than beforeID. Newest first.
	ListMessageIDs(ctx context.Context, chatID int64, afterID, beforeID, limit int) ([]int, error)

	// DeleteMessages forgets the given messages of a chat.
	DeleteMessages(ctx context.Context, chatID int64, messageIDs []int) (int64, error)

	// PruneMessagesBefore forgets every message older than cutoff.
	PruneMessagesBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// RunSQLMaintenance performs database maintenance tasks like VACUUM.
	RunSQLMaintenance(ctx context.Context) error
}

// sqlxStore provides an implementation of the Store interface using sqlx.
type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a new Store implementation backed by sqlx.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "store"),
	}
}

// Ping checks the database connection.
func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// SaveMessage inserts a message unless the chat/message pair already exists.
func (s *sqlxStore) SaveMessage(ctx context.Context, message *Message) error {
	if message == nil {
		return fmt.Errorf("cannot save nil message")
	}
	if message.ChatID == 0 {
		return fmt.Errorf("message must have a non-zero chat_id")
	}
	if message.MessageID <= 0 {
		return fmt.Errorf("message must have a positive message_id")
	}
	if message.Timestamp.IsZero() {
		message.Timestamp = time.Now().UTC()
	}
	message.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO messages (chat_id, message_id, user_id, content, timestamp, created_at)
		VALUES (:chat_id, :message_id, :user_id, :content, :timestamp, :created_at)
		ON CONFLICT (chat_id, message_id) DO NOTHING
	`
	result, err := s.db.NamedExecContext(ctx, query, message)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error saving message",
			"chat_id", message.ChatID, "message_id", message.MessageID, "error", err)
		return fmt.Errorf("failed to save message %d in chat %d: %w", message.MessageID, message.ChatID, err)
	}

	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		s.logger.DebugContext(ctx, "Message already recorded",
			"chat_id", message.ChatID, "message_id", message.MessageID)
		return nil
	}

	s.logger.DebugContext(ctx, "Message saved successfully",
		"chat_id", message.ChatID, "message_id", message.MessageID)
	return nil
}

// GetMessage returns a recorded message, or nil, nil when it is unknown.
func (s *sqlxStore) GetMessage(ctx context.Context, chatID int64, messageID int) (*Message, error) {
	if chatID == 0 {
		return nil, fmt.Errorf("chat_id cannot be zero")
	}

	var message Message
	query := `SELECT id, chat_id, message_id, user_id, content, timestamp, created_at
	          FROM messages WHERE chat_id = ? AND message_id = ?`
	err := s.db.GetContext(ctx, &message, query, chatID, messageID)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		s.logger.DebugContext(ctx, "Message not found", "chat_id", chatID, "message_id", messageID)
		return nil, nil

	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		s.logger.WarnContext(ctx, "Context timeout or cancellation while fetching message",
			"chat_id", chatID, "message_id", messageID, "error", err)
		return nil, err

	case err != nil:
		s.logger.ErrorContext(ctx, "Error getting message", "chat_id", chatID, "message_id", messageID, "error", err)
		return nil, fmt.Errorf("failed to get message %d in chat %d: %w", messageID, chatID, err)
	}

	return &message, nil
}

// ListMessageIDs pages through a chat's message ids, newest first, using
// beforeID as a keyset cursor.
func (s *sqlxStore) ListMessageIDs(ctx context.Context, chatID int64, afterID, beforeID, limit int) ([]int, error) {
	if chatID == 0 {
		return nil, fmt.Errorf("chat_id cannot be zero")
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive, got %d", limit)
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	query := `
		SELECT message_id FROM messages
		WHERE chat_id = ? AND message_id > ? AND (? = 0 OR message_id < ?)
		ORDER BY message_id DESC
		LIMIT ?
	`
	ids := []int{}
	err := s.db.SelectContext(ctx, &ids, query, chatID, afterID, beforeID, beforeID, limit)

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		s.logger.WarnContext(ctx, "Context timeout or cancellation while listing message ids",
			"chat_id", chatID, "error", err)
		return nil, err
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "Error listing message ids",
			"chat_id", chatID,
			"after_id", afterID,
			"before_id", beforeID,
			"error", err)
		return nil, fmt.Errorf("failed to list message ids for chat %d: %w", chatID, err)
	}

	s.logger.DebugContext(ctx, "Listed message ids",
		"chat_id", chatID,
		"after_id", afterID,
		"before_id", beforeID,
		"count", len(ids))
	return ids, nil
}

// DeleteMessages forgets the given messages of a chat in one transaction.
func (s *sqlxStore) DeleteMessages(ctx context.Context, chatID int64, messageIDs []int) (int64, error) {
	if len(messageIDs) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to begin transaction for deleting messages", "error", err)
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if tx != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
				s.logger.WarnContext(ctx, "Error rolling back transaction", "error", rollbackErr)
			}
		}
	}()

	query, args, err := sqlx.In(`DELETE FROM messages WHERE chat_id = ? AND message_id IN (?)`, chatID, messageIDs)
	if err != nil {
		return 0, fmt.Errorf("failed to build query for deleting messages: %w", err)
	}
	result, err := tx.ExecContext(ctx, tx.Rebind(query), args...)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error deleting messages", "chat_id", chatID, "count", len(messageIDs), "error", err)
		return 0, fmt.Errorf("failed to delete messages in chat %d: %w", chatID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		s.logger.WarnContext(ctx, "Could not get affected row count", "error", err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.ErrorContext(ctx, "Failed to commit transaction", "error", err)
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	tx = nil

	s.logger.DebugContext(ctx, "Deleted messages from log",
		"chat_id", chatID,
		"requested", len(messageIDs),
		"affected", affected)
	return affected, nil
}

// PruneMessagesBefore forgets every message recorded with a timestamp older
// than cutoff.
func (s *sqlxStore) PruneMessagesBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM messages WHERE timestamp < ?`, cutoff.UTC())
	if err != nil {
		s.logger.ErrorContext(ctx, "Error pruning messages", "cutoff", cutoff, "error", err)
		return 0, fmt.Errorf("failed to prune messages before %s: %w", cutoff.Format(time.RFC3339), err)
	}

	count, _ := result.RowsAffected()
	s.logger.InfoContext(ctx, "Pruned message log", "cutoff", cutoff, "count", count)
	return count, nil
}

// RunSQLMaintenance executes a VACUUM command on the SQLite database.
func (s *sqlxStore) RunSQLMaintenance(ctx context.Context) error {
	if ctx.Err() != nil {
		s.logger.WarnContext(ctx, "Context cancelled or timed out before starting VACUUM", "error", ctx.Err())
		return ctx.Err()
	}

	s.logger.InfoContext(ctx, "Starting database maintenance (VACUUM)...")

	if _, err := s.db.ExecContext(ctx, "PRAGMA busy_timeout = 5000;"); err != nil {
		s.logger.WarnContext(ctx, "Failed to set busy timeout", "error", err)
	}

	// VACUUM must run outside a transaction in SQLite
	_, err := s.db.ExecContext(ctx, "VACUUM;")

	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		s.logger.WarnContext(ctx, "VACUUM operation timed out or was cancelled", "error", err)
		return fmt.Errorf("database maintenance (VACUUM) timed out: %w", err)

	case err != nil:
		s.logger.ErrorContext(ctx, "Database maintenance (VACUUM) failed", "error", err)
		return fmt.Errorf("failed to execute VACUUM: %w", err)
	}

	s.logger.InfoContext(ctx, "Database maintenance (VACUUM) completed successfully")
	return nil
}
