package purge

import (
	"fmt"
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"
)

// ChatLocker lets a caller refuse a second purge in a chat while one is
// running. Locks expire after ttl so a crashed purge cannot hold a chat.
type ChatLocker struct {
	entries *cache.Cache
	ttl     time.Duration
}

// NewChatLocker creates a locker whose locks expire after ttl.
func NewChatLocker(ttl time.Duration) *ChatLocker {
	return &ChatLocker{
		entries: cache.New(ttl, ttl),
		ttl:     ttl,
	}
}

// TryLock takes the lock for chat, reporting false if it is already held.
func (l *ChatLocker) TryLock(chat ChatID) bool {
	return l.entries.Add(lockKey(chat), struct{}{}, l.ttl) == nil
}

// Acquire takes the lock for chat and returns its release function. It fails
// with ErrInProgress if the lock is already held.
func (l *ChatLocker) Acquire(chat ChatID) (func(), error) {
	if !l.TryLock(chat) {
		return nil, fmt.Errorf("%w in chat %d", ErrInProgress, chat)
	}
	return func() { l.Unlock(chat) }, nil
}

// Unlock releases the lock for chat.
func (l *ChatLocker) Unlock(chat ChatID) {
	l.entries.Delete(lockKey(chat))
}

func lockKey(chat ChatID) string {
	return strconv.FormatInt(int64(chat), 10)
}
