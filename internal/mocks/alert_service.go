package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"memoria/internal/service/alert"
)

type AlertService struct {
	mock.Mock
}

func (m *AlertService) CompensationFailed(ctx context.Context, report alert.Report) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}
