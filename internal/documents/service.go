// Package documents manages file attachments scoped to a lead or an order.
package documents

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
	"sync"

	"go.uber.org/zap"

	"trackflow/internal/gateway"
	"trackflow/internal/model"
)

var (
	ErrOwnerNotPersisted = errors.New("please save the lead/order before uploading documents")
	ErrInvalidOwner      = errors.New("documents can only be attached to a lead or an order")
	ErrNoFile            = errors.New("no file selected")
	// ErrRefreshAfterWrite means the upload or delete was applied but the list
	// could not be re-fetched; Documents still holds the previous list.
	ErrRefreshAfterWrite = errors.New("document list refresh after write failed")
)

// Service talks to the backend's document endpoints and resolves view URLs.
type Service struct {
	gw         gateway.DocumentGateway
	uploadsURL string
	logger     *zap.Logger
}

// NewService creates a document service. uploadsURL is the static file root, e.g. https://host/uploads.
func NewService(gw gateway.DocumentGateway, uploadsURL string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{gw: gw, uploadsURL: strings.TrimRight(uploadsURL, "/"), logger: logger}
}

// List returns the owner's documents in server order.
// An owner that is not saved yet, or unknown to the backend, has no documents.
func (s *Service) List(ctx context.Context, owner model.Owner) ([]model.Document, error) {
	if !owner.Type.Valid() {
		return nil, ErrInvalidOwner
	}
	if !owner.Persisted() {
		return []model.Document{}, nil
	}
	docs, err := s.gw.ListDocuments(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("list documents for %s: %w", owner, err)
	}
	return docs, nil
}

// Upload sends f for owner. It fails locally, without a request, when the
// owner has not been saved yet or no file was given. Upload closes f.Body.
func (s *Service) Upload(ctx context.Context, owner model.Owner, f File) (*model.Document, error) {
	if f.Body != nil {
		defer f.Body.Close()
	}
	if !owner.Type.Valid() {
		return nil, ErrInvalidOwner
	}
	if !owner.Persisted() {
		return nil, ErrOwnerNotPersisted
	}
	if f.Body == nil {
		return nil, ErrNoFile
	}

	doc, err := s.gw.Upload(ctx, owner, gateway.UploadFile{Name: f.Name, ContentType: f.ContentType, Body: f.Body})
	if err != nil {
		return nil, fmt.Errorf("upload %s for %s: %w", f.Name, owner, err)
	}
	s.logger.Info("document uploaded", zap.Stringer("owner", owner), zap.String("filename", f.Name))
	return doc, nil
}

// Delete removes a document server-side.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.gw.DeleteDocument(ctx, id); err != nil {
		return fmt.Errorf("delete document %d: %w", id, err)
	}
	s.logger.Info("document deleted", zap.Int64("document_id", id))
	return nil
}

// ViewURL resolves the static URL of doc. Uploads are served from one flat
// directory, so only the last segment of file_path is used.
func (s *Service) ViewURL(doc model.Document) string {
	name := path.Base(strings.ReplaceAll(doc.FilePath, `\`, "/"))
	return s.uploadsURL + "/" + url.PathEscape(name)
}

// Attachments is the live document list of one owner. Uploads and deletes
// made through it re-fetch the list before returning.
type Attachments struct {
	svc   *Service
	owner model.Owner

	mu   sync.RWMutex
	docs []model.Document
}

// For returns an attachment list for owner. It starts empty; call Refresh to load it.
func (s *Service) For(owner model.Owner) *Attachments {
	return &Attachments{svc: s, owner: owner}
}

func (a *Attachments) Owner() model.Owner { return a.owner }

// Documents returns a copy of the current list.
func (a *Attachments) Documents() []model.Document {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]model.Document{}, a.docs...)
}

// Refresh replaces the list with the backend's. On failure the list is unchanged.
func (a *Attachments) Refresh(ctx context.Context) error {
	docs, err := a.svc.List(ctx, a.owner)
	if err != nil {
		return err
	}
	a.mu.Lock()
	a.docs = docs
	a.mu.Unlock()
	return nil
}

// Upload uploads f and refreshes the list.
func (a *Attachments) Upload(ctx context.Context, f File) error {
	if _, err := a.svc.Upload(ctx, a.owner, f); err != nil {
		return err
	}
	return a.refreshAfterWrite(ctx)
}

// Delete removes document id and refreshes the list.
func (a *Attachments) Delete(ctx context.Context, id int64) error {
	if err := a.svc.Delete(ctx, id); err != nil {
		return err
	}
	return a.refreshAfterWrite(ctx)
}

func (a *Attachments) refreshAfterWrite(ctx context.Context) error {
	if err := a.Refresh(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrRefreshAfterWrite, err)
	}
	return nil
}
