package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"memoria/internal/domain"
)

type PostRepository interface {
	Create(ctx context.Context, post *domain.Post) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Post, error)
	Update(ctx context.Context, post *domain.Post) error
	SetAlbum(ctx context.Context, postID uuid.UUID, albumID *uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type postRepository struct {
	db *sqlx.DB
}

func NewPostRepository(db *sqlx.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *domain.Post) error {
	query := r.db.Rebind(`
		INSERT INTO posts (id, title, content, event_date, album_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)

	_, err := r.db.ExecContext(ctx, query,
		post.ID, post.Title, post.Content, post.EventDate, post.AlbumID,
		post.CreatedAt, post.UpdatedAt,
	)
	return err
}

func (r *postRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Post, error) {
	var post domain.Post
	query := r.db.Rebind(`
		SELECT id, title, content, event_date, album_id, created_at, updated_at
		FROM posts WHERE id = ?`)

	err := r.db.GetContext(ctx, &post, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// Update writes every mutable column, updated_at included, so a snapshot
// can be written back verbatim.
func (r *postRepository) Update(ctx context.Context, post *domain.Post) error {
	query := r.db.Rebind(`
		UPDATE posts
		SET title = ?, content = ?, event_date = ?, album_id = ?, updated_at = ?
		WHERE id = ?`)

	res, err := r.db.ExecContext(ctx, query,
		post.Title, post.Content, post.EventDate, post.AlbumID, post.UpdatedAt, post.ID,
	)
	if err != nil {
		return err
	}
	return expectRow(res, domain.ErrPostNotFound)
}

func (r *postRepository) SetAlbum(ctx context.Context, postID uuid.UUID, albumID *uuid.UUID) error {
	query := r.db.Rebind(`UPDATE posts SET album_id = ? WHERE id = ?`)
	res, err := r.db.ExecContext(ctx, query, albumID, postID)
	if err != nil {
		return err
	}
	return expectRow(res, domain.ErrPostNotFound)
}

func (r *postRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := r.db.Rebind(`DELETE FROM posts WHERE id = ?`)
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func expectRow(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
