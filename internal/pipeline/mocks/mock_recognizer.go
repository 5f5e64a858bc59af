package mocks

import (
	"context"

	"ocrweb/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockRecognizer struct {
	mock.Mock
}

func (m *MockRecognizer) Available() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockRecognizer) EngineName() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockRecognizer) Recognize(ctx context.Context, path string) (*model.OCRResult, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OCRResult), args.Error(1)
}
