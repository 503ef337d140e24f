package objectstore

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_PutGet(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	loc, err := store.Put(ctx, "audio-1.wav", []byte("RIFF..."))
	require.NoError(t, err)
	assert.Equal(t, "mem://audio-1.wav", loc)

	rc, err := store.Get(ctx, loc)
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, []byte("RIFF..."), data)
}

func TestMemory_GetMissing(t *testing.T) {
	_, err := NewMemory().Get(context.Background(), "mem://nope.wav")
	assert.ErrorIs(t, err, ErrNoObject)
}

func TestMemory_PutCopiesData(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	buf := []byte("original")
	loc, err := store.Put(ctx, "a.wav", buf)
	require.NoError(t, err)
	copy(buf, "mangled!")

	rc, err := store.Get(ctx, loc)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, []byte("original"), data)
}

func TestLocal_PutGet(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	loc, err := store.Put(ctx, "audio-1.wav", []byte("RIFF..."))
	require.NoError(t, err)
	assert.Contains(t, loc, "file://")
	assert.Contains(t, loc, "audio-1.wav")

	rc, err := store.Get(ctx, loc)
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, []byte("RIFF..."), data)
}

func TestLocal_GetMissing(t *testing.T) {
	store, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	_, err = store.Get(context.Background(), "file:///does/not/exist.wav")
	assert.ErrorIs(t, err, ErrNoObject)
}

func TestLocal_RejectsKeysOutsideBase(t *testing.T) {
	ctx := context.Background()
	parent := t.TempDir()
	base := filepath.Join(parent, "blobs")
	store, err := NewLocal(base)
	require.NoError(t, err)

	tests := []struct {
		name string
		key  string
	}{
		{name: "parent traversal", key: "../escape.wav"},
		{name: "sibling sharing the base name as prefix", key: "../blobs-evil/escape.wav"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.Put(ctx, tt.key, []byte("RIFF..."))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid object key")
		})
	}
}

func TestLocal_GetSiblingDirFallsBackToBase(t *testing.T) {
	ctx := context.Background()
	parent := t.TempDir()
	base := filepath.Join(parent, "blobs")
	store, err := NewLocal(base)
	require.NoError(t, err)

	// A sibling whose path starts with the base path must not be readable
	// through the store.
	sibling := filepath.Join(parent, "blobsided")
	require.NoError(t, os.MkdirAll(sibling, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(sibling, "leak.wav"), []byte("secret"), 0o600))

	_, err = store.Get(ctx, "file://"+filepath.Join(sibling, "leak.wav"))
	assert.ErrorIs(t, err, ErrNoObject)
}

func TestLocal_OverwriteIsLastWriteWins(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	_, err = store.Put(ctx, "a.wav", []byte("first"))
	require.NoError(t, err)
	loc, err := store.Put(ctx, "a.wav", []byte("second"))
	require.NoError(t, err)

	rc, err := store.Get(ctx, loc)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), data)
}
