package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"memoria/internal/domain"
)

type MediaRepository struct {
	mock.Mock
}

func (m *MediaRepository) Insert(ctx context.Context, postID uuid.UUID, albumID *uuid.UUID, items []domain.Media) (domain.MediaIDs, error) {
	args := m.Called(ctx, postID, albumID, items)
	return args.Get(0).(domain.MediaIDs), args.Error(1)
}

func (m *MediaRepository) Restore(ctx context.Context, item domain.Media) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MediaRepository) DeleteByID(ctx context.Context, kind domain.MediaKind, id uuid.UUID) error {
	args := m.Called(ctx, kind, id)
	return args.Error(0)
}

func (m *MediaRepository) ReassignAlbum(ctx context.Context, postID uuid.UUID, albumID *uuid.UUID) error {
	args := m.Called(ctx, postID, albumID)
	return args.Error(0)
}

func (m *MediaRepository) CountByAlbum(ctx context.Context, albumID uuid.UUID) (domain.AlbumUsage, error) {
	args := m.Called(ctx, albumID)
	return args.Get(0).(domain.AlbumUsage), args.Error(1)
}

func (m *MediaRepository) FetchByID(ctx context.Context, kind domain.MediaKind, id uuid.UUID) (*domain.Media, error) {
	args := m.Called(ctx, kind, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Media), args.Error(1)
}
