package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"veridoc/internal/domain"
)

// MockReviewEventRepo is a mock implementation of port.ReviewEventRepository.
type MockReviewEventRepo struct {
	mock.Mock
}

func (m *MockReviewEventRepo) Create(ctx context.Context, event *domain.ReviewEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockReviewEventRepo) ListByDocument(ctx context.Context, documentID uuid.UUID, offset, limit int) ([]domain.ReviewEvent, int, error) {
	args := m.Called(ctx, documentID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.ReviewEvent), args.Int(1), args.Error(2)
}
