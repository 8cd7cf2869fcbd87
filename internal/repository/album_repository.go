package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"memoria/internal/domain"
)

type AlbumRepository interface {
	// Create inserts the album with its given id and created_at, which lets
	// a deleted album be re-created verbatim.
	Create(ctx context.Context, album *domain.Album) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Album, error)
	GetByName(ctx context.Context, name string) (*domain.Album, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params domain.PaginationParams) ([]domain.Album, int64, error)
}

type albumRepository struct {
	db *sqlx.DB
}

func NewAlbumRepository(db *sqlx.DB) AlbumRepository {
	return &albumRepository{db: db}
}

func (r *albumRepository) Create(ctx context.Context, album *domain.Album) error {
	query := r.db.Rebind(`INSERT INTO albums (id, name, created_at) VALUES (?, ?, ?)`)
	_, err := r.db.ExecContext(ctx, query, album.ID, album.Name, album.CreatedAt)
	return err
}

func (r *albumRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Album, error) {
	var album domain.Album
	query := r.db.Rebind(`SELECT id, name, created_at FROM albums WHERE id = ?`)

	err := r.db.GetContext(ctx, &album, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &album, nil
}

// GetByName returns the oldest album with exactly this name.
func (r *albumRepository) GetByName(ctx context.Context, name string) (*domain.Album, error) {
	var album domain.Album
	query := r.db.Rebind(`
		SELECT id, name, created_at FROM albums
		WHERE name = ?
		ORDER BY created_at, id
		LIMIT 1`)

	err := r.db.GetContext(ctx, &album, query, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &album, nil
}

func (r *albumRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := r.db.Rebind(`DELETE FROM albums WHERE id = ?`)
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func (r *albumRepository) List(ctx context.Context, params domain.PaginationParams) ([]domain.Album, int64, error) {
	params.Validate()

	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM albums`); err != nil {
		return nil, 0, err
	}

	query := r.db.Rebind(`
		SELECT id, name, created_at FROM albums
		ORDER BY name, created_at
		LIMIT ? OFFSET ?`)

	var albums []domain.Album
	err := r.db.SelectContext(ctx, &albums, query, params.PageSize, params.Offset())
	return albums, total, err
}
