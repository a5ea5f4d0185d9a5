package purge

import (
	"context"
	"errors"
)

var errStalledHistory = errors.New("history cursor did not advance")

// enumerator walks the history of a chat from the most recent message down to
// (but excluding) minID, one page at a time. It is lazy and single use.
type enumerator struct {
	transport Transport
	chat      ChatID
	minID     MessageID
	pageSize  int

	// cursor is the lowest identifier seen so far; zero before the first page.
	cursor MessageID
	// upper is the cursor the current page was requested with.
	upper MessageID
	page  []MessageID
	pos   int
	done  bool
	pages int
}

func newEnumerator(t Transport, chat ChatID, minID MessageID, pageSize int) *enumerator {
	return &enumerator{
		transport: t,
		chat:      chat,
		minID:     minID,
		pageSize:  pageSize,
	}
}

// Next returns the next identifier. ok is false once the history is exhausted;
// err is non-nil only when a page fetch failed.
func (en *enumerator) Next(ctx context.Context) (id MessageID, ok bool, err error) {
	for {
		for en.pos < len(en.page) {
			id = en.page[en.pos]
			en.pos++
			if id <= en.minID || (en.upper != 0 && id >= en.upper) {
				continue
			}
			return id, true, nil
		}
		if en.done {
			return 0, false, nil
		}
		if err := en.fetch(ctx); err != nil {
			return 0, false, err
		}
	}
}

func (en *enumerator) fetch(ctx context.Context) error {
	page, err := en.transport.FetchHistory(ctx, en.chat, en.minID, en.cursor, en.pageSize)
	if err != nil {
		return &TransportError{Op: OpFetchHistory, ChatID: en.chat, Err: err}
	}
	en.pages++

	if len(page) == 0 {
		en.done = true
		en.page, en.pos = nil, 0
		return nil
	}

	lowest := page[0]
	for _, id := range page[1:] {
		if id < lowest {
			lowest = id
		}
	}
	if en.cursor != 0 && lowest >= en.cursor {
		return &TransportError{Op: OpFetchHistory, ChatID: en.chat, Err: errStalledHistory}
	}

	en.upper = en.cursor
	en.cursor = lowest
	en.page, en.pos = page, 0
	if lowest <= en.minID+1 {
		// nothing can lie between minID and lowest
		en.done = true
	}
	return nil
}
