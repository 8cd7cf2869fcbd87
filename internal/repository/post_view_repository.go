package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"memoria/internal/domain"
)

type PostViewRepository interface {
	Get(ctx context.Context, postID uuid.UUID) (*domain.PostView, error)
}

type postViewRepository struct {
	db *sqlx.DB
}

func NewPostViewRepository(db *sqlx.DB) PostViewRepository {
	return &postViewRepository{db: db}
}

func (r *postViewRepository) Get(ctx context.Context, postID uuid.UUID) (*domain.PostView, error) {
	var view domain.PostView
	query := r.db.Rebind(`
		SELECT p.id, p.title, p.content, p.event_date, p.album_id, p.created_at, p.updated_at,
			a.name AS album_name
		FROM posts p
		LEFT JOIN albums a ON a.id = p.album_id
		WHERE p.id = ?`)

	err := r.db.GetContext(ctx, &view, query, postID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	items, err := listMediaByPost(ctx, r.db, postID)
	if err != nil {
		return nil, err
	}

	view.Images = []domain.Media{}
	view.Videos = []domain.Media{}
	seen := make(map[uuid.UUID]bool, len(items))
	for _, m := range items {
		if seen[m.ID] {
			continue
		}
		seen[m.ID] = true
		if m.Kind == domain.MediaVideo {
			view.Videos = append(view.Videos, m)
		} else {
			view.Images = append(view.Images, m)
		}
	}
	return &view, nil
}
