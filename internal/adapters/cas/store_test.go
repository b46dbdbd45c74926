package cas_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocloud.dev/blob/memblob"
	"go.trai.ch/haul/internal/adapters/cas"
	"go.trai.ch/haul/internal/core/domain"
)

func newMemStore(t *testing.T) *cas.Store {
	t.Helper()
	s := cas.NewStore(memblob.OpenBucket(nil))
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_StoreReplaces(t *testing.T) {
	ctx := context.Background()
	s := newMemStore(t)

	require.NoError(t, s.Store(ctx, "a", []byte("one")))
	require.NoError(t, s.Store(ctx, "a", []byte("two")))

	data, err := s.Read(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))
}

func TestStore_MoveOrReplace(t *testing.T) {
	ctx := context.Background()
	s := newMemStore(t)

	require.NoError(t, s.Store(ctx, "interim", []byte("new")))
	require.NoError(t, s.Store(ctx, "digest", []byte("old")))

	require.NoError(t, s.MoveOrReplace(ctx, "interim", "digest"))

	ok, err := s.Exists(ctx, "interim")
	require.NoError(t, err)
	assert.False(t, ok)

	data, err := s.Read(ctx, "digest")
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}

func TestStore_MoveOrReplace_SameName(t *testing.T) {
	ctx := context.Background()
	s := newMemStore(t)

	require.NoError(t, s.Store(ctx, "same", []byte("x")))
	require.NoError(t, s.MoveOrReplace(ctx, "same", "same"))

	ok, err := s.Exists(ctx, "same")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestStore_MoveOrReplace_MissingSource(t *testing.T) {
	s := newMemStore(t)

	err := s.MoveOrReplace(context.Background(), "missing", "digest")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStorage)
}

func TestStore_RemoveAll(t *testing.T) {
	ctx := context.Background()
	s := newMemStore(t)

	for _, key := range []string{"a", "b", "c", "http:__host_x"} {
		require.NoError(t, s.Store(ctx, key, []byte(key)))
	}
	keys, err := s.Keys(ctx)
	require.NoError(t, err)
	assert.Len(t, keys, 4)

	require.NoError(t, s.RemoveAll(ctx))

	keys, err = s.Keys(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestOpen_LocalDirectory(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "nested", "downloads")

	s, err := cas.Open(ctx, dir)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	require.NoError(t, s.Store(ctx, "http:__example.com_a.txt", []byte("payload")))
	require.NoError(t, s.MoveOrReplace(ctx, "http:__example.com_a.txt", "0123abcd"))

	data, err := os.ReadFile(filepath.Join(dir, "0123abcd"))
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
}

func TestOpen_BucketURL(t *testing.T) {
	ctx := context.Background()

	s, err := cas.Open(ctx, "mem://")
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	require.NoError(t, s.Store(ctx, "k", []byte("v")))
	ok, err := s.Exists(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestOpen_UnknownScheme(t *testing.T) {
	_, err := cas.Open(context.Background(), "nope://bucket")
	require.Error(t, err)
}
