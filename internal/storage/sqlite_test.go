package storage

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/parley/pkg/obligation"
	"github.com/jwebster45206/parley/pkg/player"
	"github.com/jwebster45206/parley/pkg/relationship"
)

func setupTestSQLite(t *testing.T) *SQLiteStorage {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	store, err := NewSQLiteStorage(":memory:", logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestNewSQLiteStorage_EmptyPath(t *testing.T) {
	_, err := NewSQLiteStorage("  ", slog.Default())
	assert.Error(t, err)
}

func TestSQLiteStorage_Relationship(t *testing.T) {
	store := setupTestSQLite(t)
	ctx := context.Background()

	loaded, err := store.LoadRelationship(ctx, "p1", "viktor")
	require.NoError(t, err)
	assert.Nil(t, loaded)

	rec := relationship.NewRecord("p1", "viktor")
	rec.State = relationship.Guarded
	rec.Flow = 1
	rec.Tokens[relationship.Status] = 2
	rec.LastObligationID = "ob-1"
	rec.Conversations = 1
	rec.UpdatedAt = time.Date(2026, 5, 2, 8, 30, 0, 0, time.UTC)
	require.NoError(t, store.SaveRelationship(ctx, rec))

	rec.State = relationship.Neutral
	rec.Conversations = 2
	require.NoError(t, store.SaveRelationship(ctx, rec))

	loaded, err = store.LoadRelationship(ctx, "p1", "viktor")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, relationship.Neutral, loaded.State)
	assert.Equal(t, 1, loaded.Flow)
	assert.Equal(t, 2, loaded.Tokens[relationship.Status])
	assert.Equal(t, "ob-1", loaded.LastObligationID)
	assert.Equal(t, 2, loaded.Conversations)
	assert.True(t, loaded.UpdatedAt.Equal(rec.UpdatedAt))
}

func TestSQLiteStorage_ObligationQueue(t *testing.T) {
	store := setupTestSQLite(t)
	ctx := context.Background()

	for i, sender := range []string{"marcus", "elena", "viktor"} {
		o := &obligation.Obligation{ID: sender, SenderID: sender, Payment: 5 + i}
		require.NoError(t, store.EnqueueObligation(ctx, "p1", o))
		assert.Equal(t, i, o.Priority)
	}
	require.NoError(t, store.PrioritizeObligations(ctx, "p1", "viktor"))

	list, err := store.ListObligations(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "viktor", list[0].SenderID)
	assert.Equal(t, "marcus", list[1].SenderID)
	assert.Equal(t, "elena", list[2].SenderID)
	assert.Equal(t, 7, list[0].Payment)
	assert.Equal(t, 0, list[0].Priority)

	other, err := store.ListObligations(ctx, "p2")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestSQLiteStorage_Experience(t *testing.T) {
	store := setupTestSQLite(t)
	ctx := context.Background()

	stats, err := store.LoadPlayerStats(ctx, "p1")
	require.NoError(t, err)
	assert.Nil(t, stats)

	require.NoError(t, store.GrantExperience(ctx, "p1", player.Commerce, 7))
	require.NoError(t, store.GrantExperience(ctx, "p1", player.Commerce, 7))
	assert.Error(t, store.GrantExperience(ctx, "p1", player.Stat("luck"), 1))

	stats, err = store.LoadPlayerStats(ctx, "p1")
	require.NoError(t, err)
	require.NotNil(t, stats)
	assert.Equal(t, 14, stats.XP[player.Commerce])
	assert.Equal(t, 2, stats.Level(player.Commerce))
}

func TestSQLiteStorage_FileSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "parley.db")
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	ctx := context.Background()

	store, err := NewSQLiteStorage(path, logger)
	require.NoError(t, err)
	require.NoError(t, store.SaveRelationship(ctx, relationship.NewRecord("p1", "elena")))
	require.NoError(t, store.Close())

	store, err = NewSQLiteStorage(path, logger)
	require.NoError(t, err)
	defer store.Close()

	loaded, err := store.LoadRelationship(ctx, "p1", "elena")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, relationship.Neutral, loaded.State)
}
