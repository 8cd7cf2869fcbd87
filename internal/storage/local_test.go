package storage_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memoria/internal/storage"
)

func newLocal(t *testing.T) (*storage.Local, string) {
	t.Helper()
	root := t.TempDir()
	store, err := storage.NewLocal(root)
	require.NoError(t, err)
	return store, store.Root()
}

func TestLocal_WriteAndExists(t *testing.T) {
	store, root := newLocal(t)
	ctx := context.Background()

	n, err := store.Write(ctx, "images/a.jpg", strings.NewReader("hello"), 5, "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)

	data, err := os.ReadFile(filepath.Join(root, "images", "a.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	ok, err := store.Exists(ctx, "images/a.jpg")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Exists(ctx, "images/missing.jpg")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = os.Stat(filepath.Join(root, "images", "a.jpg.part"))
	assert.True(t, os.IsNotExist(err))
}

func TestLocal_RejectsEscapingPaths(t *testing.T) {
	store, _ := newLocal(t)
	ctx := context.Background()

	_, err := store.Write(ctx, "../outside.txt", strings.NewReader("x"), 1, "")
	assert.Error(t, err)

	_, err = store.Exists(ctx, "images/../../outside.txt")
	assert.Error(t, err)

	assert.Error(t, store.RemoveAll(ctx, ""))
	assert.Error(t, store.RemoveAll(ctx, "."))
}

func TestLocal_CopyMoveDelete(t *testing.T) {
	store, root := newLocal(t)
	ctx := context.Background()

	_, err := store.Write(ctx, "images/a.jpg", strings.NewReader("bytes"), 5, "")
	require.NoError(t, err)

	require.NoError(t, store.Copy(ctx, "images/a.jpg", "tmp/s1/a.jpg"))
	data, err := os.ReadFile(filepath.Join(root, "tmp", "s1", "a.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "bytes", string(data))

	require.NoError(t, store.Move(ctx, "tmp/s1/a.jpg", "videos/a.jpg"))
	ok, _ := store.Exists(ctx, "tmp/s1/a.jpg")
	assert.False(t, ok)
	ok, _ = store.Exists(ctx, "videos/a.jpg")
	assert.True(t, ok)

	require.NoError(t, store.Delete(ctx, "videos/a.jpg"))
	require.NoError(t, store.Delete(ctx, "videos/a.jpg"), "deleting a missing file is not an error")

	assert.Error(t, store.Copy(ctx, "images/missing.jpg", "tmp/x.jpg"))
}

func TestLocal_ListAndRemoveAll(t *testing.T) {
	store, _ := newLocal(t)
	ctx := context.Background()

	names, err := store.List(ctx, "tmp")
	require.NoError(t, err)
	assert.Empty(t, names)

	require.NoError(t, store.MkdirAll(ctx, "tmp/one"))
	require.NoError(t, store.MkdirAll(ctx, "tmp/two"))

	names, err = store.List(ctx, "tmp")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"one", "two"}, names)

	require.NoError(t, store.RemoveAll(ctx, "tmp/one"))
	require.NoError(t, store.RemoveAll(ctx, "tmp/one"))

	names, err = store.List(ctx, "tmp")
	require.NoError(t, err)
	assert.Equal(t, []string{"two"}, names)
}
