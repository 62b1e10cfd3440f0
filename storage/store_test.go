package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/tabprep/pkg/errors"
)

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Get(ctx, "pipelines/spaceship.bin")
	assert.True(t, errors.Is(err, ErrNotFound))

	require.NoError(t, s.Put(ctx, "pipelines/spaceship.bin", []byte("state-v1")))
	require.NoError(t, s.Put(ctx, "pipelines/spaceship.bin", []byte("state-v2")))
	got, err := s.Get(ctx, "pipelines/spaceship.bin")
	require.NoError(t, err)
	assert.Equal(t, []byte("state-v2"), got)

	require.NoError(t, s.Delete(ctx, "pipelines/spaceship.bin"))
	require.NoError(t, s.Delete(ctx, "pipelines/spaceship.bin"), "deleting a missing key is not an error")
	_, err = s.Get(ctx, "pipelines/spaceship.bin")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.NoError(t, s.Close())
}

func TestFileStore(t *testing.T) {
	root := filepath.Join(t.TempDir(), "artifacts")
	s, err := NewFileStore(root)
	require.NoError(t, err)
	assert.Equal(t, "file", s.Name())
	exerciseStore(t, s)

	require.NoError(t, s.Put(context.Background(), "state.bin", []byte{1, 2, 3}))
	data, err := os.ReadFile(filepath.Join(root, "state.bin"))
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, data)

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".tmp-", "temporary files are cleaned up")
	}
}

func TestFileStoreRejectsEscapingKeys(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	for _, key := range []string{"", "../outside", "/etc/passwd", "a/../../b"} {
		err := s.Put(context.Background(), key, []byte("x"))
		var ve *errors.ValidationError
		assert.True(t, errors.As(err, &ve), "key %q", key)
	}
}

func TestFileStoreHonoursContext(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Put(ctx, "k", nil), context.Canceled)
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	exerciseStore(t, s)

	buf := []byte("abc")
	require.NoError(t, s.Put(context.Background(), "k", buf))
	buf[0] = 'x'
	got, _ := s.Get(context.Background(), "k")
	assert.Equal(t, []byte("abc"), got, "stored value is copied")
}

// TABPREP_REDIS_ADDR points the test at a real server, e.g. localhost:6379.
func TestRedisStore(t *testing.T) {
	addr := os.Getenv("TABPREP_REDIS_ADDR")
	if addr == "" {
		t.Skip("TABPREP_REDIS_ADDR not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s, err := NewRedisStore(ctx, RedisOptions{Addr: addr, TTL: time.Minute})
	require.NoError(t, err)
	assert.Equal(t, "redis", s.Name())
	exerciseStore(t, s)
}
