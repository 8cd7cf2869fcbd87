package audit

import (
	"context"

	"github.com/google/uuid"

	"memoria/internal/domain"
	"memoria/internal/repository"
)

type Service interface {
	// PostHistory lists the audit entries of a post, newest first.
	PostHistory(ctx context.Context, postID uuid.UUID, params domain.PaginationParams) (*domain.PaginatedResponse[domain.AuditLog], error)
}

type service struct {
	auditRepo repository.AuditLogRepository
}

func NewService(auditRepo repository.AuditLogRepository) Service {
	return &service{
		auditRepo: auditRepo,
	}
}

func (s *service) PostHistory(ctx context.Context, postID uuid.UUID, params domain.PaginationParams) (*domain.PaginatedResponse[domain.AuditLog], error) {
	params.Validate()

	logs, total, err := s.auditRepo.ListByEntity(ctx, "POST", postID, params)
	if err != nil {
		return nil, domain.PersistenceError("failed to load history", err)
	}

	resp := domain.NewPaginatedResponse(logs, params, total)
	return &resp, nil
}
