package tasks

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/edgard/tguserbot/internal/config"
	"github.com/edgard/tguserbot/internal/database"
)

const testChat int64 = -100321

func testDeps(t *testing.T, store database.Store, clock clockwork.Clock) TaskDeps {
	t.Helper()
	return TaskDeps{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Store:  store,
		Config: &config.Config{Database: config.DatabaseConfig{Retention: 72 * time.Hour}},
		Clock:  clock,
	}
}

func newTestStore(t *testing.T) database.Store {
	t.Helper()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "tasks.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.CloseDB(db) })
	return database.NewStore(db, nil)
}

func TestRegisterAllTasks(t *testing.T) {
	deps := testDeps(t, newTestStore(t), nil)
	registered := RegisterAllTasks(deps)

	require.Len(t, registered, 2)
	require.Contains(t, registered, "sql_maintenance")
	require.Contains(t, registered, "history_retention")
}

func TestHistoryRetentionTask(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store := newTestStore(t)

	for id, age := range map[int]time.Duration{1: 96 * time.Hour, 2: 73 * time.Hour, 3: 71 * time.Hour, 4: time.Minute} {
		require.NoError(t, store.SaveMessage(ctx, &database.Message{ChatID: testChat, MessageID: id, Timestamp: now.Add(-age)}))
	}

	task := newHistoryRetentionTask(testDeps(t, store, clockwork.NewFakeClockAt(now)))
	require.NoError(t, task(ctx))

	ids, err := store.ListMessageIDs(ctx, testChat, 0, 0, 10)
	require.NoError(t, err)
	require.Equal(t, []int{4, 3}, ids)
}

func TestHistoryRetentionTaskDisabled(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	deps := testDeps(t, database.NewStore(sqlx.NewDb(mockDB, "sqlmock"), nil), clockwork.NewFakeClock())
	deps.Config.Database.Retention = 0

	require.NoError(t, newHistoryRetentionTask(deps)(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet(), "no query when retention is disabled")
}

func TestTasksWrapStoreErrors(t *testing.T) {
	diskErr := errors.New("disk full")

	t.Run("history retention", func(t *testing.T) {
		mockDB, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer mockDB.Close()
		mock.ExpectExec("DELETE FROM messages WHERE timestamp").WillReturnError(diskErr)

		deps := testDeps(t, database.NewStore(sqlx.NewDb(mockDB, "sqlmock"), nil), clockwork.NewFakeClock())
		err = newHistoryRetentionTask(deps)(context.Background())
		require.ErrorIs(t, err, diskErr)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("sql maintenance", func(t *testing.T) {
		mockDB, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer mockDB.Close()
		mock.ExpectExec("PRAGMA busy_timeout").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("VACUUM").WillReturnError(diskErr)

		deps := testDeps(t, database.NewStore(sqlx.NewDb(mockDB, "sqlmock"), nil), clockwork.NewFakeClock())
		err = newSQLMaintenanceTask(deps)(context.Background())
		require.ErrorIs(t, err, diskErr)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestSQLMaintenanceTask(t *testing.T) {
	deps := testDeps(t, newTestStore(t), clockwork.NewRealClock())
	require.NoError(t, newSQLMaintenanceTask(deps)(context.Background()))
}
