package mocks

import (
	"context"
	"io"

	"trackflow/internal/storage"

	"github.com/stretchr/testify/mock"
)

type MockObjectReader struct {
	mock.Mock
}

func (m *MockObjectReader) Get(ctx context.Context, key string) (io.ReadCloser, storage.ObjectInfo, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Get(1).(storage.ObjectInfo), args.Error(2)
	}
	return args.Get(0).(io.ReadCloser), args.Get(1).(storage.ObjectInfo), args.Error(2)
}
