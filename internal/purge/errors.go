package purge

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound reports an anchor message that is unknown or inaccessible.
	ErrNotFound = errors.New("anchor message not found")
	// ErrInProgress reports a purge already running in the same chat.
	ErrInProgress = errors.New("purge already in progress")
)

// Op names the transport operation behind a TransportError.
type Op string

const (
	OpFetchHistory   Op = "fetch_history"
	OpDeleteMessages Op = "delete_messages"
)

// ResolutionError is returned when the anchor cannot be resolved. Nothing has
// been deleted when it occurs.
type ResolutionError struct {
	Anchor Anchor
	Err    error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolve anchor %d in chat %d: %v", e.Anchor.MessageID, e.Anchor.ChatID, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// TransportError is returned when a history page or a batch deletion failed.
// Batch is the 1-based index of the failed batch for OpDeleteMessages.
type TransportError struct {
	Op     Op
	ChatID ChatID
	Batch  int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Op == OpDeleteMessages {
		return fmt.Sprintf("%s batch %d in chat %d: %v", e.Op, e.Batch, e.ChatID, e.Err)
	}
	return fmt.Sprintf("%s in chat %d: %v", e.Op, e.ChatID, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Stage names the notice step behind a NotificationError.
type Stage string

const (
	StageSend    Stage = "send"
	StageCleanup Stage = "cleanup"
)

// NotificationError describes a failed completion notice. It is only logged.
type NotificationError struct {
	Stage     Stage
	ChatID    ChatID
	MessageID MessageID
	Err       error
}

func (e *NotificationError) Error() string {
	return fmt.Sprintf("completion notice %s in chat %d: %v", e.Stage, e.ChatID, e.Err)
}

func (e *NotificationError) Unwrap() error { return e.Err }
