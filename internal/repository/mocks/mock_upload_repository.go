package mocks

import (
	"context"

	"ocrweb/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockUploadRepository struct {
	mock.Mock
}

func (m *MockUploadRepository) Create(ctx context.Context, f *model.StoredFile) error {
	args := m.Called(ctx, f)
	return args.Error(0)
}

func (m *MockUploadRepository) DeleteByNames(ctx context.Context, names []string) (int64, error) {
	args := m.Called(ctx, names)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUploadRepository) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
