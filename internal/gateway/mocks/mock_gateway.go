package mocks

import (
	"context"

	"trackflow/internal/gateway"
	"trackflow/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockGateway struct {
	mock.Mock
}

var _ gateway.Gateway = (*MockGateway)(nil)

func (m *MockGateway) ListLeads(ctx context.Context) ([]model.Lead, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Lead), args.Error(1)
}

func (m *MockGateway) CreateLead(ctx context.Context, p model.LeadPayload) (*model.Lead, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Lead), args.Error(1)
}

func (m *MockGateway) UpdateLead(ctx context.Context, id int64, p model.LeadPayload) (*model.Lead, error) {
	args := m.Called(ctx, id, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Lead), args.Error(1)
}

func (m *MockGateway) DeleteLead(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockGateway) ListOrders(ctx context.Context) ([]model.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

func (m *MockGateway) CreateOrder(ctx context.Context, p model.OrderPayload) (*model.Order, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockGateway) UpdateOrder(ctx context.Context, id int64, p model.OrderPayload) (*model.Order, error) {
	args := m.Called(ctx, id, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockGateway) DeleteOrder(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockGateway) ListReminders(ctx context.Context) ([]model.Reminder, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Reminder), args.Error(1)
}

func (m *MockGateway) CreateReminder(ctx context.Context, p model.ReminderPayload) (*model.Reminder, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Reminder), args.Error(1)
}

func (m *MockGateway) UpdateReminder(ctx context.Context, id int64, p model.ReminderPayload) (*model.Reminder, error) {
	args := m.Called(ctx, id, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Reminder), args.Error(1)
}

func (m *MockGateway) DeleteReminder(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockGateway) Dashboard(ctx context.Context) (*model.DashboardStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DashboardStats), args.Error(1)
}

func (m *MockGateway) Upload(ctx context.Context, owner model.Owner, f gateway.UploadFile) (*model.Document, error) {
	args := m.Called(ctx, owner, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockGateway) ListDocuments(ctx context.Context, owner model.Owner) ([]model.Document, error) {
	args := m.Called(ctx, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Document), args.Error(1)
}

func (m *MockGateway) DeleteDocument(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
