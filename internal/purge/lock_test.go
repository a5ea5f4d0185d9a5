package purge

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestChatLocker(t *testing.T) {
	l := NewChatLocker(time.Minute)

	require.True(t, l.TryLock(1))
	require.False(t, l.TryLock(1), "second lock on the same chat must fail")
	require.True(t, l.TryLock(2), "other chats are independent")

	l.Unlock(1)
	require.True(t, l.TryLock(1))
}

func TestChatLockerExpires(t *testing.T) {
	l := NewChatLocker(20 * time.Millisecond)

	require.True(t, l.TryLock(7))
	require.Eventually(t, func() bool { return l.TryLock(7) }, time.Second, 10*time.Millisecond)
}

func TestChatLockerAcquire(t *testing.T) {
	l := NewChatLocker(time.Minute)

	release, err := l.Acquire(3)
	require.NoError(t, err)

	_, err = l.Acquire(3)
	require.ErrorIs(t, err, ErrInProgress)

	release()
	release, err = l.Acquire(3)
	require.NoError(t, err)
	release()
}
