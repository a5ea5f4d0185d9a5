package purge

import (
	"context"
	"slices"
)

// committer accumulates identifiers into batches of at most limit and submits
// each full batch for deletion. The anchor is always the first identifier of
// the first batch.
type committer struct {
	transport Transport
	chat      ChatID
	anchor    MessageID
	limit     int

	batch   []MessageID
	count   int
	batches int
}

func newCommitter(t Transport, chat ChatID, anchor MessageID, limit int) *committer {
	return &committer{
		transport: t,
		chat:      chat,
		anchor:    anchor,
		limit:     limit,
		batch:     make([]MessageID, 0, limit),
	}
}

// run drains the enumerator, flushing batches as they fill up, and flushes the
// remainder once the history is exhausted. It stops at the first error.
func (c *committer) run(ctx context.Context, en *enumerator) error {
	if err := c.add(ctx, c.anchor); err != nil {
		return err
	}

	for {
		id, ok, err := en.Next(ctx)
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		if id == c.anchor {
			continue
		}
		c.count++
		if err := c.add(ctx, id); err != nil {
			return err
		}
	}

	if len(c.batch) > 0 {
		return c.flush(ctx)
	}
	return nil
}

func (c *committer) add(ctx context.Context, id MessageID) error {
	c.batch = append(c.batch, id)
	if len(c.batch) >= c.limit {
		return c.flush(ctx)
	}
	return nil
}

func (c *committer) flush(ctx context.Context) error {
	ids := slices.Clone(c.batch)
	if err := c.transport.DeleteMessages(ctx, c.chat, ids); err != nil {
		return &TransportError{Op: OpDeleteMessages, ChatID: c.chat, Batch: c.batches + 1, Err: err}
	}
	c.batches++
	batchesFlushed.Inc()
	messagesDeleted.Add(float64(len(ids)))
	c.batch = c.batch[:0]
	return nil
}
