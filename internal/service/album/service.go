package album

import (
	"context"

	"memoria/internal/domain"
	"memoria/internal/repository"
)

type Service interface {
	List(ctx context.Context, params domain.PaginationParams) (*domain.PaginatedResponse[domain.Album], error)
}

type service struct {
	albumRepo repository.AlbumRepository
}

func NewService(albumRepo repository.AlbumRepository) Service {
	return &service{albumRepo: albumRepo}
}

func (s *service) List(ctx context.Context, params domain.PaginationParams) (*domain.PaginatedResponse[domain.Album], error) {
	params.Validate()

	albums, total, err := s.albumRepo.List(ctx, params)
	if err != nil {
		return nil, domain.PersistenceError("failed to list albums", err)
	}

	resp := domain.NewPaginatedResponse(albums, params, total)
	return &resp, nil
}
