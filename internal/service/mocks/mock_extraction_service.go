package mocks

import (
	"context"

	"ocrweb/internal/model"
	"ocrweb/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockExtractionService struct {
	mock.Mock
}

func (m *MockExtractionService) Process(ctx context.Context, in service.UploadInput) (*model.Extraction, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Extraction), args.Error(1)
}
