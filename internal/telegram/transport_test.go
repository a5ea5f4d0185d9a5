package telegram

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/edgard/tguserbot/internal/bot/handlers"
	"github.com/edgard/tguserbot/internal/config"
	"github.com/edgard/tguserbot/internal/database"
	"github.com/edgard/tguserbot/internal/purge"
)

const testChat int64 = -100777

type fakeAPI struct {
	mu        sync.Mutex
	nextID    int
	sent      []string
	deleted   [][]int
	single    []int
	deleteErr error
	sendErr   error
}

func (f *fakeAPI) SendMessage(_ context.Context, params *bot.SendMessageParams) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.nextID++
	f.sent = append(f.sent, params.Text)
	return &models.Message{
		ID:   f.nextID,
		Chat: models.Chat{ID: params.ChatID.(int64)},
		Text: params.Text,
		Date: int(time.Now().Unix()),
	}, nil
}

func (f *fakeAPI) DeleteMessage(_ context.Context, params *bot.DeleteMessageParams) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.single = append(f.single, params.MessageID)
	return true, nil
}

func (f *fakeAPI) DeleteMessages(_ context.Context, params *bot.DeleteMessagesParams) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return false, f.deleteErr
	}
	f.deleted = append(f.deleted, append([]int(nil), params.MessageIDs...))
	return true, nil
}

func newTestStore(t *testing.T) database.Store {
	t.Helper()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "transport.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.CloseDB(db) })
	return database.NewStore(db, nil)
}

func seed(t *testing.T, store database.Store, from, to int) {
	t.Helper()
	for id := from; id <= to; id++ {
		require.NoError(t, store.SaveMessage(context.Background(), &database.Message{ChatID: testChat, MessageID: id}))
	}
}

func TestTransportResolveConversation(t *testing.T) {
	store := newTestStore(t)
	seed(t, store, 10, 10)
	tr := NewTransport(&fakeAPI{}, store, nil, nil)

	chat, err := tr.ResolveConversation(context.Background(), purge.Anchor{ChatID: purge.ChatID(testChat), MessageID: 10})
	require.NoError(t, err)
	require.Equal(t, purge.ChatID(testChat), chat)

	_, err = tr.ResolveConversation(context.Background(), purge.Anchor{ChatID: purge.ChatID(testChat), MessageID: 11})
	require.ErrorIs(t, err, purge.ErrNotFound)
}

func TestTransportFetchHistory(t *testing.T) {
	store := newTestStore(t)
	seed(t, store, 1, 6)
	tr := NewTransport(&fakeAPI{}, store, nil, nil)

	page, err := tr.FetchHistory(context.Background(), purge.ChatID(testChat), 2, 0, 3)
	require.NoError(t, err)
	require.Equal(t, []purge.MessageID{6, 5, 4}, page)

	page, err = tr.FetchHistory(context.Background(), purge.ChatID(testChat), 2, 4, 3)
	require.NoError(t, err)
	require.Equal(t, []purge.MessageID{3}, page)
}

func TestTransportDeleteMessagesForgetsBatch(t *testing.T) {
	store := newTestStore(t)
	seed(t, store, 1, 5)
	api := &fakeAPI{}
	tr := NewTransport(api, store, nil, nil)

	require.NoError(t, tr.DeleteMessages(context.Background(), purge.ChatID(testChat), []purge.MessageID{5, 4, 99}))
	require.Equal(t, [][]int{{5, 4, 99}}, api.deleted)

	ids, err := store.ListMessageIDs(context.Background(), testChat, 0, 0, 10)
	require.NoError(t, err)
	require.Equal(t, []int{3, 2, 1}, ids)

	require.NoError(t, tr.DeleteMessages(context.Background(), purge.ChatID(testChat), nil))
	require.Len(t, api.deleted, 1, "empty batch makes no call")
}

func TestTransportDeleteMessagesFailureKeepsLog(t *testing.T) {
	store := newTestStore(t)
	seed(t, store, 1, 3)
	apiErr := errors.New("Bad Request: message can't be deleted")
	tr := NewTransport(&fakeAPI{deleteErr: apiErr}, store, nil, nil)

	err := tr.DeleteMessages(context.Background(), purge.ChatID(testChat), []purge.MessageID{3, 2})
	require.ErrorIs(t, err, apiErr)

	ids, err := store.ListMessageIDs(context.Background(), testChat, 0, 0, 10)
	require.NoError(t, err)
	require.Equal(t, []int{3, 2, 1}, ids)
}

func TestTransportDeleteMessagesHonoursLimiter(t *testing.T) {
	store := newTestStore(t)
	api := &fakeAPI{}
	limiter := rate.NewLimiter(rate.Every(time.Hour), 1)
	tr := NewTransport(api, store, limiter, nil)

	require.NoError(t, tr.DeleteMessages(context.Background(), purge.ChatID(testChat), []purge.MessageID{1}))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := tr.DeleteMessages(ctx, purge.ChatID(testChat), []purge.MessageID{2})
	require.Error(t, err)
	require.Len(t, api.deleted, 1)
}

func TestTransportNoticeRoundTrip(t *testing.T) {
	store := newTestStore(t)
	api := &fakeAPI{nextID: 40}
	tr := NewTransport(api, store, nil, nil)
	ctx := context.Background()

	handle, err := tr.SendMessage(ctx, purge.ChatID(testChat), "Purge complete! Purged 3 messages.")
	require.NoError(t, err)
	require.Equal(t, purge.MessageHandle{ChatID: purge.ChatID(testChat), MessageID: 41}, handle)

	recorded, err := store.GetMessage(ctx, testChat, 41)
	require.NoError(t, err)
	require.NotNil(t, recorded, "sent messages are recorded")

	require.NoError(t, tr.DeleteMessage(ctx, handle))
	require.Equal(t, []int{41}, api.single)

	recorded, err = store.GetMessage(ctx, testChat, 41)
	require.NoError(t, err)
	require.Nil(t, recorded)
}

func TestTransportSendMessageError(t *testing.T) {
	apiErr := errors.New("Forbidden: bot was kicked")
	tr := NewTransport(&fakeAPI{sendErr: apiErr}, newTestStore(t), nil, nil)

	_, err := tr.SendMessage(context.Background(), purge.ChatID(testChat), "hi")
	require.ErrorIs(t, err, apiErr)
}

func TestBotCommands(t *testing.T) {
	registered := map[string]handlers.RegisteredHandler{
		"/purge": {Pattern: "purge", Description: "Delete from the replied message"},
		"/help":  {Pattern: "help", Description: "Show help"},
		"/start": {Pattern: "start"},
	}

	require.Equal(t, []models.BotCommand{
		{Command: "help", Description: "Show help"},
		{Command: "purge", Description: "Delete from the replied message"},
	}, BotCommands(registered))
}

func TestNewDeleteLimiter(t *testing.T) {
	l := NewDeleteLimiter(config.PurgeConfig{DeleteRate: 2, DeleteBurst: 4})
	require.Equal(t, rate.Limit(2), l.Limit())
	require.Equal(t, 4, l.Burst())
}
