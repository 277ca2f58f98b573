package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Write(ctx, "sessions/current.yaml", []byte("username: budi\n")))

	data, err := s.Read(ctx, "sessions/current.yaml")
	require.NoError(t, err)
	assert.Equal(t, "username: budi\n", string(data))

	exists, err := s.Exists(ctx, "sessions/current.yaml")
	require.NoError(t, err)
	assert.True(t, exists)

	paths, err := s.List(ctx, "sessions")
	require.NoError(t, err)
	assert.Equal(t, []string{"sessions/current.yaml"}, paths)

	require.NoError(t, s.Delete(ctx, "sessions/current.yaml"))
	_, err = s.Read(ctx, "sessions/current.yaml")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, "sessions/current.yaml"), ErrNotFound)
}

func TestLocalStorage_ListMissingPrefix(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	paths, err := s.List(context.Background(), "nothing-here")
	require.NoError(t, err)
	assert.Empty(t, paths)
}

func TestLocalStorage_ResolveStaysInsideBase(t *testing.T) {
	base := t.TempDir()
	s, err := NewLocalStorage(base)
	require.NoError(t, err)

	require.NoError(t, s.Write(context.Background(), "../../escape.yaml", []byte("x")))
	exists, err := s.Exists(context.Background(), "escape.yaml")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestOpen_DefaultsToLocal(t *testing.T) {
	s, err := Open(context.Background(), Options{BaseDir: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &LocalStorage{}, s)

	_, err = Open(context.Background(), Options{Type: TypeS3})
	assert.Error(t, err)
}
