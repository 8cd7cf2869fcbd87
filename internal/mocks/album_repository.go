package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"memoria/internal/domain"
)

type AlbumRepository struct {
	mock.Mock
}

func (m *AlbumRepository) Create(ctx context.Context, album *domain.Album) error {
	args := m.Called(ctx, album)
	return args.Error(0)
}

func (m *AlbumRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Album, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Album), args.Error(1)
}

func (m *AlbumRepository) GetByName(ctx context.Context, name string) (*domain.Album, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Album), args.Error(1)
}

func (m *AlbumRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *AlbumRepository) List(ctx context.Context, params domain.PaginationParams) ([]domain.Album, int64, error) {
	args := m.Called(ctx, params)
	return args.Get(0).([]domain.Album), args.Get(1).(int64), args.Error(2)
}
