package post_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memoria/internal/domain"
)

func newCachedEnv(t *testing.T) (*env, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return newEnvWith(t, envOptions{redis: client}), mr
}

func TestGet_ServesFromCache(t *testing.T) {
	e, mr := newCachedEnv(t)
	ctx := context.Background()

	p := e.seedPost(t, "Picnic", 1)
	key := "post:view:" + p.ID.String()
	require.True(t, mr.Exists(key), "create leaves the view cached")
	assert.Equal(t, time.Minute, mr.TTL(key))

	raw, err := mr.Get(key)
	require.NoError(t, err)
	var cached domain.PostView
	require.NoError(t, json.Unmarshal([]byte(raw), &cached))
	assert.Equal(t, p.Images[0].URL, cached.Images[0].URL, "cached urls are already public")

	row, err := e.repos.Post.GetByID(ctx, p.ID)
	require.NoError(t, err)
	row.Content = "<p>changed behind the cache</p>"
	require.NoError(t, e.repos.Post.Update(ctx, row))

	view, err := e.svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.Content, view.Content)
	assert.Equal(t, p.Images[0].URL, view.Images[0].URL)
}

func TestUpdate_InvalidatesCache(t *testing.T) {
	e, mr := newCachedEnv(t)
	ctx := context.Background()

	p := e.seedPost(t, "Picnic", 1)
	key := "post:view:" + p.ID.String()
	require.True(t, mr.Exists(key))

	view, err := e.svc.Update(ctx, domain.UpdatePostInput{
		PostID:  p.ID,
		Title:   "Picnic",
		Content: "<p>fresh</p>",
	})
	require.NoError(t, err)
	assert.Equal(t, "<p>fresh</p>", view.Content)

	raw, err := mr.Get(key)
	require.NoError(t, err)
	assert.Contains(t, raw, "fresh")

	t.Run("Failed edit", func(t *testing.T) {
		e.media.failInsert = true
		defer func() { e.media.failInsert = false }()

		_, err := e.svc.Update(ctx, domain.UpdatePostInput{
			PostID:   p.ID,
			Title:    "Picnic",
			Content:  "<p>never saved</p>",
			NewFiles: domain.UploadSet{Images: []domain.Upload{image("new.png")}},
		})
		require.Error(t, err)

		got, err := e.svc.Get(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, "<p>fresh</p>", got.Content)
		assert.Len(t, got.Images, 1)
	})
}
