package storage_test

import (
	"context"
	"errors"
	"os"
	"path"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memoria/internal/config"
	"memoria/internal/domain"
	"memoria/internal/storage"
)

// flakyStore fails Delete for the listed paths.
type flakyStore struct {
	storage.FileStore
	failDelete map[string]bool
}

func (f *flakyStore) Delete(ctx context.Context, p string) error {
	if f.failDelete[p] {
		return errors.New("device busy")
	}
	return f.FileStore.Delete(ctx, p)
}

func newStager(t *testing.T) (*storage.Stager, *storage.Local) {
	t.Helper()
	local, _ := newLocal(t)
	stager := storage.NewStager(local, config.NewUploadsConfig(local.Root()))
	require.NoError(t, stager.Init(context.Background()))
	return stager, local
}

func place(t *testing.T, stager *storage.Stager, kind domain.MediaKind, name, body string) string {
	t.Helper()
	p, err := stager.Place(context.Background(), kind, domain.Upload{
		FileName: name,
		Size:     int64(len(body)),
		Content:  strings.NewReader(body),
	})
	require.NoError(t, err)
	return p
}

func TestStager_Place(t *testing.T) {
	stager, local := newStager(t)

	img := place(t, stager, domain.MediaImage, "Holiday.JPG", "img")
	vid := place(t, stager, domain.MediaVideo, "clip.mp4", "vid")

	assert.True(t, strings.HasPrefix(img, "images/"))
	assert.Equal(t, ".jpg", path.Ext(img))
	assert.True(t, strings.HasPrefix(vid, "videos/"))

	data, err := os.ReadFile(filepath.Join(local.Root(), filepath.FromSlash(img)))
	require.NoError(t, err)
	assert.Equal(t, "img", string(data))

	_, err = stager.Place(context.Background(), domain.MediaImage, domain.Upload{FileName: "empty.png"})
	assert.Error(t, err)
}

func TestSession_StageRestoreDiscard(t *testing.T) {
	stager, local := newStager(t)
	ctx := context.Background()
	p := place(t, stager, domain.MediaImage, "a.png", "original")
	name := path.Base(p)

	session := stager.Begin()
	staged, err := session.Stage(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, path.Join(session.Dir(), name), staged)

	ok, _ := local.Exists(ctx, p)
	assert.False(t, ok, "original is gone after staging")
	ok, _ = local.Exists(ctx, staged)
	assert.True(t, ok, "staged copy exists")

	final, err := session.Restore(ctx, domain.MediaImage, name)
	require.NoError(t, err)
	assert.Equal(t, p, final)

	data, err := os.ReadFile(filepath.Join(local.Root(), filepath.FromSlash(p)))
	require.NoError(t, err)
	assert.Equal(t, "original", string(data))
	ok, _ = local.Exists(ctx, staged)
	assert.False(t, ok, "staged copy removed after restore")

	// Restoring twice is harmless.
	_, err = session.Restore(ctx, domain.MediaImage, name)
	require.NoError(t, err)

	require.NoError(t, session.Discard(ctx))
	require.NoError(t, session.Discard(ctx))
	ok, _ = local.Exists(ctx, session.Dir())
	assert.False(t, ok)
}

func TestSession_RestoreWithoutAnyCopy(t *testing.T) {
	stager, _ := newStager(t)

	_, err := stager.Begin().Restore(context.Background(), domain.MediaVideo, "nothing.mp4")
	assert.Error(t, err)
}

func TestSession_StageKeepsCopyWhenDeleteFails(t *testing.T) {
	stager, local := newStager(t)
	ctx := context.Background()
	p := place(t, stager, domain.MediaImage, "a.png", "original")

	flaky := &flakyStore{FileStore: local, failDelete: map[string]bool{p: true}}
	session := storage.NewStager(flaky, config.NewUploadsConfig(local.Root())).Begin()

	staged, err := session.Stage(ctx, p)
	require.Error(t, err)
	require.NotEmpty(t, staged)

	ok, _ := local.Exists(ctx, p)
	assert.True(t, ok)
	ok, _ = local.Exists(ctx, staged)
	assert.True(t, ok)

	// Restore sees both copies and only drops the staged one.
	_, err = session.Restore(ctx, domain.MediaImage, path.Base(p))
	require.NoError(t, err)
	ok, _ = local.Exists(ctx, staged)
	assert.False(t, ok)
	ok, _ = local.Exists(ctx, p)
	assert.True(t, ok)
}

func TestSessions_AreIsolated(t *testing.T) {
	stager, local := newStager(t)
	ctx := context.Background()
	first := place(t, stager, domain.MediaImage, "a.png", "a")
	second := place(t, stager, domain.MediaImage, "b.png", "b")

	s1 := stager.Begin()
	s2 := stager.Begin()
	assert.NotEqual(t, s1.Dir(), s2.Dir())

	staged1, err := s1.Stage(ctx, first)
	require.NoError(t, err)
	_, err = s2.Stage(ctx, second)
	require.NoError(t, err)

	require.NoError(t, s2.Discard(ctx))

	ok, _ := local.Exists(ctx, staged1)
	assert.True(t, ok, "discarding one session leaves others alone")

	residue, err := stager.Residue(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{path.Base(s1.Dir())}, residue)
}

func TestStager_RemoveFinal(t *testing.T) {
	stager, local := newStager(t)
	ctx := context.Background()
	a := place(t, stager, domain.MediaImage, "a.png", "a")
	b := place(t, stager, domain.MediaVideo, "b.mp4", "b")

	stager.RemoveFinal(ctx, []string{a, "images/missing.png", b})

	ok, _ := local.Exists(ctx, a)
	assert.False(t, ok)
	ok, _ = local.Exists(ctx, b)
	assert.False(t, ok)
}
