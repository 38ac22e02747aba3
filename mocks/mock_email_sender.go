package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"veridoc/internal/port"
)

// MockEmailSender is a mock implementation of port.EmailSender.
type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) SendReviewAlert(ctx context.Context, recipients []string, alert port.ReviewAlert) error {
	args := m.Called(ctx, recipients, alert)
	return args.Error(0)
}
