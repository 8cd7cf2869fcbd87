package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memoria/internal/domain"
	"memoria/internal/repository"
	"memoria/internal/testutil"
)

var baseTime = time.Date(2024, 6, 1, 12, 30, 0, 123456000, time.UTC)

func seed(t *testing.T, repos *repository.Repositories) (domain.Album, domain.Post) {
	t.Helper()
	ctx := context.Background()

	album := domain.Album{ID: uuid.New(), Name: "Picnic", CreatedAt: baseTime}
	require.NoError(t, repos.Album.Create(ctx, &album))

	eventDate := baseTime.Add(-24 * time.Hour)
	post := domain.Post{
		ID:        uuid.New(),
		Title:     "Picnic",
		Content:   "<p>sunny</p>",
		EventDate: &eventDate,
		AlbumID:   &album.ID,
		CreatedAt: baseTime,
		UpdatedAt: baseTime,
	}
	require.NoError(t, repos.Post.Create(ctx, &post))
	return album, post
}

func TestPostRepository(t *testing.T) {
	repos := repository.NewRepositories(testutil.NewDB(t))
	ctx := context.Background()
	album, post := seed(t, repos)

	t.Run("GetByID", func(t *testing.T) {
		got, err := repos.Post.GetByID(ctx, post.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, post.Title, got.Title)
		assert.Equal(t, album.ID, *got.AlbumID)
		assert.True(t, post.CreatedAt.Equal(got.CreatedAt))
		assert.True(t, post.EventDate.Equal(*got.EventDate))
	})

	t.Run("GetByID missing", func(t *testing.T) {
		got, err := repos.Post.GetByID(ctx, uuid.New())
		assert.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("Update", func(t *testing.T) {
		updated := post
		updated.Title = "Beach"
		updated.UpdatedAt = baseTime.Add(time.Hour)
		require.NoError(t, repos.Post.Update(ctx, &updated))

		got, err := repos.Post.GetByID(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, "Beach", got.Title)
		assert.True(t, updated.UpdatedAt.Equal(got.UpdatedAt))

		require.NoError(t, repos.Post.Update(ctx, &post))
	})

	t.Run("Update missing", func(t *testing.T) {
		missing := post
		missing.ID = uuid.New()
		assert.ErrorIs(t, repos.Post.Update(ctx, &missing), domain.ErrPostNotFound)
	})

	t.Run("SetAlbum", func(t *testing.T) {
		require.NoError(t, repos.Post.SetAlbum(ctx, post.ID, nil))
		got, _ := repos.Post.GetByID(ctx, post.ID)
		assert.Nil(t, got.AlbumID)

		require.NoError(t, repos.Post.SetAlbum(ctx, post.ID, &album.ID))
		got, _ = repos.Post.GetByID(ctx, post.ID)
		assert.Equal(t, album.ID, *got.AlbumID)
	})

	t.Run("SetAlbum unknown album violates foreign key", func(t *testing.T) {
		unknown := uuid.New()
		assert.Error(t, repos.Post.SetAlbum(ctx, post.ID, &unknown))
	})
}

func TestAlbumRepository(t *testing.T) {
	repos := repository.NewRepositories(testutil.NewDB(t))
	ctx := context.Background()
	album, post := seed(t, repos)

	t.Run("GetByName prefers oldest", func(t *testing.T) {
		newer := domain.Album{ID: uuid.New(), Name: "Picnic", CreatedAt: baseTime.Add(time.Hour)}
		require.NoError(t, repos.Album.Create(ctx, &newer))

		got, err := repos.Album.GetByName(ctx, "Picnic")
		require.NoError(t, err)
		assert.Equal(t, album.ID, got.ID)

		got, err = repos.Album.GetByName(ctx, "Nope")
		require.NoError(t, err)
		assert.Nil(t, got)

		require.NoError(t, repos.Album.Delete(ctx, newer.ID))
	})

	t.Run("Re-create verbatim after delete", func(t *testing.T) {
		lonely := domain.Album{ID: uuid.New(), Name: "Lonely", CreatedAt: baseTime}
		require.NoError(t, repos.Album.Create(ctx, &lonely))
		require.NoError(t, repos.Album.Delete(ctx, lonely.ID))

		got, err := repos.Album.GetByID(ctx, lonely.ID)
		require.NoError(t, err)
		assert.Nil(t, got)

		require.NoError(t, repos.Album.Create(ctx, &lonely))
		got, err = repos.Album.GetByID(ctx, lonely.ID)
		require.NoError(t, err)
		assert.Equal(t, lonely.Name, got.Name)
		assert.True(t, lonely.CreatedAt.Equal(got.CreatedAt))
	})

	t.Run("List", func(t *testing.T) {
		albums, total, err := repos.Album.List(ctx, domain.PaginationParams{Page: 1, PageSize: 1})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		require.Len(t, albums, 1)
		assert.Equal(t, "Lonely", albums[0].Name)
	})

	t.Run("Delete nulls post reference", func(t *testing.T) {
		require.NoError(t, repos.Album.Delete(ctx, album.ID))
		got, err := repos.Post.GetByID(ctx, post.ID)
		require.NoError(t, err)
		assert.Nil(t, got.AlbumID)
	})
}

func TestMediaRepository(t *testing.T) {
	repos := repository.NewRepositories(testutil.NewDB(t))
	ctx := context.Background()
	album, post := seed(t, repos)

	items := []domain.Media{
		{Kind: domain.MediaImage, URL: "images/a.jpg"},
		{Kind: domain.MediaVideo, URL: "videos/b.mp4", Title: "Clip", Description: "waves", Visible: true},
		{Kind: domain.MediaImage, URL: "images/c.jpg"},
	}
	ids, err := repos.Media.Insert(ctx, post.ID, &album.ID, items)
	require.NoError(t, err)
	require.Len(t, ids.Images, 2)
	require.Len(t, ids.Videos, 1)

	t.Run("FetchByID", func(t *testing.T) {
		video, err := repos.Media.FetchByID(ctx, domain.MediaVideo, ids.Videos[0])
		require.NoError(t, err)
		require.NotNil(t, video)
		assert.Equal(t, domain.MediaVideo, video.Kind)
		assert.Equal(t, "videos/b.mp4", video.URL)
		assert.Equal(t, "Clip", video.Title)
		assert.True(t, video.Visible)
		assert.Equal(t, post.ID, *video.PostID)
		assert.Equal(t, album.ID, *video.AlbumID)

		missing, err := repos.Media.FetchByID(ctx, domain.MediaImage, ids.Videos[0])
		require.NoError(t, err)
		assert.Nil(t, missing)
	})

	t.Run("CountByAlbum", func(t *testing.T) {
		usage, err := repos.Media.CountByAlbum(ctx, album.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.AlbumUsage{Posts: 1, Images: 2, Videos: 1}, usage)
		assert.False(t, usage.IsOrphaned())

		usage, err = repos.Media.CountByAlbum(ctx, uuid.New())
		require.NoError(t, err)
		assert.True(t, usage.IsOrphaned())
	})

	t.Run("ReassignAlbum", func(t *testing.T) {
		other := domain.Album{ID: uuid.New(), Name: "Other", CreatedAt: baseTime}
		require.NoError(t, repos.Album.Create(ctx, &other))

		require.NoError(t, repos.Media.ReassignAlbum(ctx, post.ID, &other.ID))
		usage, err := repos.Media.CountByAlbum(ctx, other.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.AlbumUsage{Images: 2, Videos: 1}, usage)

		require.NoError(t, repos.Media.ReassignAlbum(ctx, post.ID, &album.ID))
	})

	t.Run("Delete and restore verbatim", func(t *testing.T) {
		before, err := repos.Media.FetchByID(ctx, domain.MediaImage, ids.Images[0])
		require.NoError(t, err)

		require.NoError(t, repos.Media.DeleteByID(ctx, domain.MediaImage, before.ID))
		gone, err := repos.Media.FetchByID(ctx, domain.MediaImage, before.ID)
		require.NoError(t, err)
		assert.Nil(t, gone)

		require.NoError(t, repos.Media.Restore(ctx, *before))
		after, err := repos.Media.FetchByID(ctx, domain.MediaImage, before.ID)
		require.NoError(t, err)
		assert.Equal(t, before.URL, after.URL)
		assert.Equal(t, *before.AlbumID, *after.AlbumID)
		assert.True(t, before.CreatedAt.Equal(after.CreatedAt))
	})

	t.Run("Insert reports partial progress", func(t *testing.T) {
		dup := ids.Images[1]
		partial, err := repos.Media.Insert(ctx, post.ID, &album.ID, []domain.Media{
			{Kind: domain.MediaVideo, URL: "videos/new.mp4"},
			{Kind: domain.MediaImage, ID: dup, URL: "images/dup.jpg"},
		})
		require.Error(t, err)
		assert.Len(t, partial.Videos, 1)
		assert.Empty(t, partial.Images)

		require.NoError(t, repos.Media.DeleteByID(ctx, domain.MediaVideo, partial.Videos[0]))
	})
}

func TestPostViewRepository(t *testing.T) {
	repos := repository.NewRepositories(testutil.NewDB(t))
	ctx := context.Background()
	album, post := seed(t, repos)

	t.Run("Post without media", func(t *testing.T) {
		view, err := repos.PostView.Get(ctx, post.ID)
		require.NoError(t, err)
		require.NotNil(t, view)
		assert.Equal(t, "Picnic", *view.AlbumName)
		assert.NotNil(t, view.Images)
		assert.NotNil(t, view.Videos)
		assert.Empty(t, view.Images)
		assert.Empty(t, view.Videos)
	})

	t.Run("Post with media", func(t *testing.T) {
		_, err := repos.Media.Insert(ctx, post.ID, &album.ID, []domain.Media{
			{Kind: domain.MediaImage, URL: "images/a.jpg"},
			{Kind: domain.MediaVideo, URL: "videos/b.mp4"},
		})
		require.NoError(t, err)

		view, err := repos.PostView.Get(ctx, post.ID)
		require.NoError(t, err)
		require.Len(t, view.Images, 1)
		require.Len(t, view.Videos, 1)
		assert.Equal(t, "images/a.jpg", view.Images[0].URL)
	})

	t.Run("Missing post", func(t *testing.T) {
		view, err := repos.PostView.Get(ctx, uuid.New())
		require.NoError(t, err)
		assert.Nil(t, view)
	})
}

func TestAuditLogRepository(t *testing.T) {
	repos := repository.NewRepositories(testutil.NewDB(t))
	ctx := context.Background()
	postID := uuid.New()

	require.NoError(t, repository.CreateAuditLog(repos.AuditLog, ctx, domain.CreateAuditLogInput{
		Action:     domain.AuditCreate,
		EntityType: "POST",
		EntityID:   postID,
		NewValue:   map[string]string{"title": "Picnic"},
	}))

	logs, total, err := repos.AuditLog.ListByEntity(ctx, "POST", postID, domain.PaginationParams{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, logs, 1)
	assert.Equal(t, domain.AuditCreate, logs[0].Action)
	assert.JSONEq(t, `{"title":"Picnic"}`, string(logs[0].NewValue))
}
