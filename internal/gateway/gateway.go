// Package gateway is the HTTP client for the TrackFlow CRM backend.
// It performs no validation and keeps no state; every call maps to one request.
package gateway

import (
	"context"
	"io"

	"trackflow/internal/model"
)

// EntityGateway covers the CRUD resources and the dashboard aggregate.
type EntityGateway interface {
	ListLeads(ctx context.Context) ([]model.Lead, error)
	CreateLead(ctx context.Context, p model.LeadPayload) (*model.Lead, error)
	UpdateLead(ctx context.Context, id int64, p model.LeadPayload) (*model.Lead, error)
	DeleteLead(ctx context.Context, id int64) error

	ListOrders(ctx context.Context) ([]model.Order, error)
	CreateOrder(ctx context.Context, p model.OrderPayload) (*model.Order, error)
	UpdateOrder(ctx context.Context, id int64, p model.OrderPayload) (*model.Order, error)
	DeleteOrder(ctx context.Context, id int64) error

	ListReminders(ctx context.Context) ([]model.Reminder, error)
	CreateReminder(ctx context.Context, p model.ReminderPayload) (*model.Reminder, error)
	UpdateReminder(ctx context.Context, id int64, p model.ReminderPayload) (*model.Reminder, error)
	DeleteReminder(ctx context.Context, id int64) error

	Dashboard(ctx context.Context) (*model.DashboardStats, error)
}

// DocumentGateway covers attachment upload, listing and removal.
type DocumentGateway interface {
	// Upload posts f as multipart field "file" for the given owner.
	Upload(ctx context.Context, owner model.Owner, f UploadFile) (*model.Document, error)
	// ListDocuments returns the owner's documents in server order.
	// A 404 from the backend yields an empty slice, not an error.
	ListDocuments(ctx context.Context, owner model.Owner) ([]model.Document, error)
	DeleteDocument(ctx context.Context, id int64) error
}

// Gateway is the full remote contract.
type Gateway interface {
	EntityGateway
	DocumentGateway
}

// UploadFile is the content of a single upload.
type UploadFile struct {
	Name        string
	ContentType string
	Body        io.Reader
}
