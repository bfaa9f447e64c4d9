package repository

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	medivault "github.com/set-night/medivault"
)

// exerciseStore runs the behaviour every Store backend must share.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Get(ctx, "medivault_documents")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set(ctx, "medivault_documents", []byte(`[{"id":"a"}]`)))
	got, err := s.Get(ctx, "medivault_documents")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"a"}]`, string(got))

	require.NoError(t, s.Set(ctx, "medivault_documents", []byte(`[]`)))
	got, err = s.Get(ctx, "medivault_documents")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(got))

	require.NoError(t, s.Remove(ctx, "medivault_documents"))
	_, err = s.Get(ctx, "medivault_documents")
	assert.ErrorIs(t, err, ErrNotFound)

	// removing an absent key is not an error
	require.NoError(t, s.Remove(ctx, "medivault_documents"))
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestMemoryStoreCopiesValues(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	value := []byte("abc")
	require.NoError(t, s.Set(ctx, "k", value))
	value[0] = 'z'

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}

func TestMemoryStoreCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewMemoryStore().Get(ctx, "k")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBoltStore(t *testing.T) {
	s, err := OpenBolt(filepath.Join(t.TempDir(), "data", "medivault.db"))
	require.NoError(t, err)
	defer s.Close()

	exerciseStore(t, s)
}

func TestBoltStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "medivault.db")
	ctx := context.Background()

	s, err := OpenBolt(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "medivault_current_session", []byte(`{"id":"s1"}`)))
	require.NoError(t, s.Close())

	s, err = OpenBolt(path)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Get(ctx, "medivault_current_session")
	require.NoError(t, err)
	assert.Equal(t, `{"id":"s1"}`, string(got))
}

func TestOpenBoltRequiresPath(t *testing.T) {
	_, err := OpenBolt("  ")
	assert.Error(t, err)
}

func TestNamespaceIsolatesKeys(t *testing.T) {
	ctx := context.Background()
	base := NewMemoryStore()
	a := Namespace(base, "chat:1:")
	b := Namespace(base, "chat:2:")

	exerciseStore(t, a)

	require.NoError(t, a.Set(ctx, "medivault_documents", []byte("one")))
	_, err := b.Get(ctx, "medivault_documents")
	assert.ErrorIs(t, err, ErrNotFound)

	raw, err := base.Get(ctx, "chat:1:medivault_documents")
	require.NoError(t, err)
	assert.Equal(t, "one", string(raw))
}

func TestPostgresStore(t *testing.T) {
	databaseURL := os.Getenv("TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()

	migrations, err := fs.Sub(medivault.MigrationsFS, "migrations")
	require.NoError(t, err)
	require.NoError(t, RunMigrations(databaseURL, migrations))

	pool, err := NewPool(ctx, databaseURL)
	require.NoError(t, err)
	defer pool.Close()

	exerciseStore(t, Namespace(NewPostgresStore(pool), "test:"+t.Name()+":"))
}

func TestRedisStore(t *testing.T) {
	redisURL := os.Getenv("TEST_REDIS_URL")
	if redisURL == "" {
		t.Skip("TEST_REDIS_URL not set")
	}

	s, err := OpenRedis(context.Background(), redisURL)
	require.NoError(t, err)
	defer s.Close()

	exerciseStore(t, Namespace(s, "test:"+t.Name()+":"))
}
