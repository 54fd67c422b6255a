package migrations

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/meghashyamc/sitesearch/db/kvdb"
	"github.com/meghashyamc/sitesearch/logger"
	"github.com/stretchr/testify/require"
)

func newTestLogger() logger.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func newTestStore(t *testing.T) *kvdb.BoltDB {
	t.Helper()
	store, err := kvdb.New(newTestLogger(), filepath.Join(t.TempDir(), "kv.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestUpAppliesPendingInOrder(t *testing.T) {
	require := require.New(t)
	store := newTestStore(t)
	migrator := NewMigrator(newTestLogger(), store, All())

	ran, err := migrator.Up()
	require.NoError(err)
	require.Equal([]string{"1680000000_posts", "1680000001_pages"}, ran)

	for _, name := range []string{PostsCollection, PagesCollection} {
		exists, err := store.BucketExists(name)
		require.NoError(err)
		require.True(exists, "bucket %s should exist", name)
	}

	posts, err := FindCollection(store, PostsCollection)
	require.NoError(err)
	title, ok := posts.Field("title")
	require.True(ok)
	require.True(title.Required)
	published, ok := posts.Field("published")
	require.True(ok)
	require.Equal(FieldAutodate, published.Type)
	require.True(published.OnCreate)

	pages, err := FindCollection(store, PagesCollection)
	require.NoError(err)
	sortOrder, ok := pages.Field("sort_order")
	require.True(ok)
	require.Equal(FieldNumber, sortOrder.Type)

	ran, err = migrator.Up()
	require.NoError(err)
	require.Empty(ran)

	applied, err := migrator.Applied()
	require.NoError(err)
	require.Equal([]string{"1680000000_posts", "1680000001_pages"}, applied)
}

func TestDownRevertsLatest(t *testing.T) {
	require := require.New(t)
	store := newTestStore(t)
	migrator := NewMigrator(newTestLogger(), store, All())

	_, err := migrator.Up()
	require.NoError(err)

	reverted, err := migrator.Down()
	require.NoError(err)
	require.Equal("1680000001_pages", reverted)

	exists, err := store.BucketExists(PagesCollection)
	require.NoError(err)
	require.False(exists)
	_, err = FindCollection(store, PagesCollection)
	require.ErrorIs(err, ErrCollectionNotFound)

	_, err = FindCollection(store, PostsCollection)
	require.NoError(err)

	reverted, err = migrator.Down()
	require.NoError(err)
	require.Equal("1680000000_posts", reverted)

	_, err = migrator.Down()
	require.ErrorIs(err, ErrNothingToRevert)

	ran, err := migrator.Up()
	require.NoError(err)
	require.Len(ran, 2)
}

func TestUpStopsAtFailure(t *testing.T) {
	require := require.New(t)
	store := newTestStore(t)

	failing := Migration{
		ID:   "1690000000_broken",
		Up:   func(kvdb.DB) error { return errors.New("boom") },
		Down: func(kvdb.DB) error { return nil },
	}
	migrator := NewMigrator(newTestLogger(), store, append([]Migration{failing}, All()...))

	ran, err := migrator.Up()
	require.Error(err)
	require.Equal([]string{"1680000000_posts", "1680000001_pages"}, ran)

	applied, err := migrator.Applied()
	require.NoError(err)
	require.NotContains(applied, failing.ID)
}

func TestDownUnknownMigration(t *testing.T) {
	require := require.New(t)
	store := newTestStore(t)
	require.NoError(store.Set(kvdb.MigrationsBucket, "1700000000_gone", "2024-01-01T00:00:00Z"))

	migrator := NewMigrator(newTestLogger(), store, All())
	_, err := migrator.Down()
	require.Error(err)
}
