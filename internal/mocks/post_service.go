package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"memoria/internal/domain"
)

type PostService struct {
	mock.Mock
}

func (m *PostService) Create(ctx context.Context, input domain.CreatePostInput) (*domain.PostView, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PostView), args.Error(1)
}

func (m *PostService) Update(ctx context.Context, input domain.UpdatePostInput) (*domain.PostView, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PostView), args.Error(1)
}

func (m *PostService) Get(ctx context.Context, id uuid.UUID) (*domain.PostView, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PostView), args.Error(1)
}
