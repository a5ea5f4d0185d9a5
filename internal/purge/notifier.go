package purge

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
)

// notifier posts the completion notice and removes it after the grace period.
// Its failures never reach the caller of Purge.
type notifier struct {
	transport Transport
	clock     clockwork.Clock
	grace     time.Duration
	log       *slog.Logger
}

func newNotifier(t Transport, clock clockwork.Clock, grace time.Duration, log *slog.Logger) *notifier {
	return &notifier{transport: t, clock: clock, grace: grace, log: log}
}

// notify reports whether the notice was sent.
func (n *notifier) notify(ctx context.Context, chat ChatID, text string) bool {
	handle, err := n.transport.SendMessage(ctx, chat, text)
	if err != nil {
		n.report(ctx, &NotificationError{Stage: StageSend, ChatID: chat, Err: err})
		return false
	}
	defer n.release(ctx, handle)

	if n.grace <= 0 {
		return true
	}
	timer := n.clock.NewTimer(n.grace)
	defer timer.Stop()
	select {
	case <-timer.Chan():
	case <-ctx.Done():
		n.log.WarnContext(ctx, "Grace period interrupted, removing notice early", "error", ctx.Err())
	}
	return true
}

// release deletes the notice even when ctx is already done.
func (n *notifier) release(ctx context.Context, handle MessageHandle) {
	cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
	defer cancel()

	if err := n.transport.DeleteMessage(cleanupCtx, handle); err != nil {
		n.report(ctx, &NotificationError{Stage: StageCleanup, ChatID: handle.ChatID, MessageID: handle.MessageID, Err: err})
		return
	}
	n.log.DebugContext(ctx, "Completion notice removed", "notice_id", int(handle.MessageID))
}

func (n *notifier) report(ctx context.Context, err *NotificationError) {
	noticeFailures.WithLabelValues(string(err.Stage)).Inc()
	n.log.WarnContext(ctx, "Completion notice failed", "stage", err.Stage, "error", err)
}
