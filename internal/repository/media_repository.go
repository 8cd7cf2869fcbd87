package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"memoria/internal/domain"
)

type MediaRepository interface {
	// Insert stores one row per item under postID and albumID. On failure the
	// ids inserted before the failing row are returned with the error.
	Insert(ctx context.Context, postID uuid.UUID, albumID *uuid.UUID, items []domain.Media) (domain.MediaIDs, error)
	// Restore re-inserts a previously deleted row verbatim.
	Restore(ctx context.Context, item domain.Media) error
	DeleteByID(ctx context.Context, kind domain.MediaKind, id uuid.UUID) error
	ReassignAlbum(ctx context.Context, postID uuid.UUID, albumID *uuid.UUID) error
	CountByAlbum(ctx context.Context, albumID uuid.UUID) (domain.AlbumUsage, error)
	FetchByID(ctx context.Context, kind domain.MediaKind, id uuid.UUID) (*domain.Media, error)
}

const (
	imageColumns = `id, url, post_id, album_id, created_at`
	videoColumns = `id, title, description, url, visible, post_id, album_id, created_at`
)

type mediaRepository struct {
	db *sqlx.DB
}

func NewMediaRepository(db *sqlx.DB) MediaRepository {
	return &mediaRepository{db: db}
}

func tableFor(kind domain.MediaKind) (string, error) {
	switch kind {
	case domain.MediaImage:
		return "images", nil
	case domain.MediaVideo:
		return "videos", nil
	}
	return "", fmt.Errorf("unknown media kind %q", kind)
}

func (r *mediaRepository) Insert(ctx context.Context, postID uuid.UUID, albumID *uuid.UUID, items []domain.Media) (domain.MediaIDs, error) {
	var ids domain.MediaIDs
	for i := range items {
		item := &items[i]
		if item.ID == uuid.Nil {
			item.ID = uuid.New()
		}
		if item.CreatedAt.IsZero() {
			item.CreatedAt = time.Now().UTC().Truncate(time.Microsecond)
		}
		item.PostID = &postID
		item.AlbumID = albumID

		if err := r.insert(ctx, *item); err != nil {
			return ids, err
		}
		ids.Add(item.Kind, item.ID)
	}
	return ids, nil
}

func (r *mediaRepository) Restore(ctx context.Context, item domain.Media) error {
	return r.insert(ctx, item)
}

func (r *mediaRepository) insert(ctx context.Context, item domain.Media) error {
	switch item.Kind {
	case domain.MediaImage:
		query := r.db.Rebind(`INSERT INTO images (` + imageColumns + `) VALUES (?, ?, ?, ?, ?)`)
		_, err := r.db.ExecContext(ctx, query,
			item.ID, item.URL, item.PostID, item.AlbumID, item.CreatedAt)
		return err
	case domain.MediaVideo:
		query := r.db.Rebind(`INSERT INTO videos (` + videoColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
		_, err := r.db.ExecContext(ctx, query,
			item.ID, item.Title, item.Description, item.URL, item.Visible,
			item.PostID, item.AlbumID, item.CreatedAt)
		return err
	}
	return fmt.Errorf("unknown media kind %q", item.Kind)
}

func (r *mediaRepository) DeleteByID(ctx context.Context, kind domain.MediaKind, id uuid.UUID) error {
	table, err := tableFor(kind)
	if err != nil {
		return err
	}
	query := r.db.Rebind(`DELETE FROM ` + table + ` WHERE id = ?`)
	_, err = r.db.ExecContext(ctx, query, id)
	return err
}

func (r *mediaRepository) ReassignAlbum(ctx context.Context, postID uuid.UUID, albumID *uuid.UUID) error {
	for _, table := range []string{"images", "videos"} {
		query := r.db.Rebind(`UPDATE ` + table + ` SET album_id = ? WHERE post_id = ?`)
		if _, err := r.db.ExecContext(ctx, query, albumID, postID); err != nil {
			return fmt.Errorf("reassign %s: %w", table, err)
		}
	}
	return nil
}

func (r *mediaRepository) CountByAlbum(ctx context.Context, albumID uuid.UUID) (domain.AlbumUsage, error) {
	var usage domain.AlbumUsage
	query := r.db.Rebind(`
		SELECT
			(SELECT COUNT(*) FROM posts WHERE album_id = ?) AS posts,
			(SELECT COUNT(*) FROM images WHERE album_id = ?) AS images,
			(SELECT COUNT(*) FROM videos WHERE album_id = ?) AS videos`)

	err := r.db.GetContext(ctx, &usage, query, albumID, albumID, albumID)
	return usage, err
}

func (r *mediaRepository) FetchByID(ctx context.Context, kind domain.MediaKind, id uuid.UUID) (*domain.Media, error) {
	table, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	columns := imageColumns
	if kind == domain.MediaVideo {
		columns = videoColumns
	}

	var item domain.Media
	query := r.db.Rebind(`SELECT ` + columns + ` FROM ` + table + ` WHERE id = ?`)
	err = r.db.GetContext(ctx, &item, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	item.Kind = kind
	return &item, nil
}

// listMediaByPost returns images first, then videos, each oldest first.
func listMediaByPost(ctx context.Context, db *sqlx.DB, postID uuid.UUID) ([]domain.Media, error) {
	var images []domain.Media
	query := db.Rebind(`
		SELECT ` + imageColumns + ` FROM images
		WHERE post_id = ? AND url IS NOT NULL
		ORDER BY created_at, id`)
	if err := db.SelectContext(ctx, &images, query, postID); err != nil {
		return nil, err
	}

	var videos []domain.Media
	query = db.Rebind(`
		SELECT ` + videoColumns + ` FROM videos
		WHERE post_id = ? AND url IS NOT NULL
		ORDER BY created_at, id`)
	if err := db.SelectContext(ctx, &videos, query, postID); err != nil {
		return nil, err
	}

	items := make([]domain.Media, 0, len(images)+len(videos))
	for _, m := range images {
		m.Kind = domain.MediaImage
		items = append(items, m)
	}
	for _, m := range videos {
		m.Kind = domain.MediaVideo
		items = append(items, m)
	}
	return items, nil
}
