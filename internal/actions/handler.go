// Package actions implements the user commands of the CRM client.
//
// Each command validates its input, asks for confirmation where it destroys
// data, runs through the store, workflow engine or document service, and
// reports one notification. A failed command leaves local state untouched.
package actions

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"trackflow/internal/documents"
	"trackflow/internal/form"
	"trackflow/internal/model"
	"trackflow/internal/notify"
	"trackflow/internal/store"
	"trackflow/internal/workflow"
)

var (
	ErrNotFound        = errors.New("record not found")
	ErrLeadNotEligible = errors.New("orders can only be created for won leads")
)

// Notifier shows the outcome of a command to the user.
type Notifier interface {
	Notify(level notify.Level, msg string)
}

// ConfirmationPrompt asks the user a yes/no question.
type ConfirmationPrompt interface {
	Confirm(question string) bool
}

// Handler runs user commands.
type Handler struct {
	store     *store.Store
	engine    *workflow.Engine
	docs      *documents.Service
	files     documents.FileSource
	validator *form.Validator
	notifier  Notifier
	prompt    ConfirmationPrompt
	logger    *zap.Logger
}

// Deps are the collaborators of a Handler.
type Deps struct {
	Store     *store.Store
	Documents *documents.Service
	Files     documents.FileSource
	Validator *form.Validator
	Notifier  Notifier
	Prompt    ConfirmationPrompt
	Logger    *zap.Logger
}

func NewHandler(d Deps) *Handler {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		store:     d.Store,
		engine:    workflow.NewEngine(d.Store, logger),
		docs:      d.Documents,
		files:     d.Files,
		validator: d.Validator,
		notifier:  d.Notifier,
		prompt:    d.Prompt,
		logger:    logger,
	}
}

// report notifies the outcome of a command and passes err through.
// A write the backend applied counts as success even when the follow-up
// refresh failed; the refresh failure gets its own notice.
func (h *Handler) report(err error, ok, failed string) error {
	if stale, isStale := staleAfterWrite(err); isStale {
		h.logger.Warn("write applied but refresh failed", zap.Error(err))
		h.notifier.Notify(notify.Success, ok)
		h.notifier.Notify(notify.Error, stale)
		return nil
	}
	if err != nil {
		h.logger.Warn(failed, zap.Error(err))
		if userFacing(err) {
			h.notifier.Notify(notify.Error, err.Error())
		} else {
			h.notifier.Notify(notify.Error, failed)
		}
		return err
	}
	h.notifier.Notify(notify.Success, ok)
	return nil
}

// staleAfterWrite returns the fetch-failure notice for a write whose refresh failed.
func staleAfterWrite(err error) (string, bool) {
	var rerr *store.RefreshAfterWriteError
	if errors.As(err, &rerr) {
		return fmt.Sprintf("Failed to fetch %s", rerr.Collection), true
	}
	if errors.Is(err, documents.ErrRefreshAfterWrite) {
		return "Failed to load documents", true
	}
	return "", false
}

// userFacing reports whether err was caught locally and its text tells the user what to fix.
func userFacing(err error) bool {
	var verr *form.ValidationError
	return errors.As(err, &verr) ||
		errors.Is(err, form.ErrInvalidDate) ||
		errors.Is(err, ErrLeadNotEligible) ||
		errors.Is(err, workflow.ErrUnknownStage)
}

// confirmDelete asks before deleting a record of the given kind.
func (h *Handler) confirmDelete(kind string) bool {
	return h.prompt.Confirm(fmt.Sprintf("Are you sure you want to delete this %s?", kind))
}

// LoadAll performs the initial load of every collection.
func (h *Handler) LoadAll(ctx context.Context) error {
	err := h.store.LoadAll(ctx)
	if err != nil {
		h.logger.Warn("initial load incomplete", zap.Error(err))
		h.notifier.Notify(notify.Error, "Failed to fetch data")
	}
	return err
}

// Refresh re-fetches one collection, as when its view is opened.
func (h *Handler) Refresh(ctx context.Context, c store.Collection) error {
	err := h.store.Refresh(ctx, c)
	if err != nil {
		h.notifier.Notify(notify.Error, fmt.Sprintf("Failed to fetch %s", c))
	}
	return err
}

func (h *Handler) leadPayload(in form.LeadInput) (model.LeadPayload, error) {
	p, err := in.Payload()
	if err != nil {
		return p, err
	}
	return p, h.validator.Lead(p)
}

func (h *Handler) CreateLead(ctx context.Context, in form.LeadInput) error {
	p, err := h.leadPayload(in)
	if err == nil {
		err = h.store.CreateLead(ctx, p)
	}
	return h.report(err, "Lead created successfully", "Failed to create lead")
}

func (h *Handler) UpdateLead(ctx context.Context, id int64, in form.LeadInput) error {
	p, err := h.leadPayload(in)
	if err == nil {
		err = h.store.UpdateLead(ctx, id, p)
	}
	return h.report(err, "Lead updated successfully", "Failed to update lead")
}

// DeleteLead deletes a lead after confirmation. It reports whether the lead was deleted.
func (h *Handler) DeleteLead(ctx context.Context, id int64) (bool, error) {
	if !h.confirmDelete("lead") {
		return false, nil
	}
	err := h.report(h.store.DeleteLead(ctx, id), "Lead deleted successfully", "Failed to delete lead")
	return err == nil, err
}

// MoveLead applies a board drop of lead id onto stage.
func (h *Handler) MoveLead(ctx context.Context, id int64, stage model.LeadStage) error {
	lead, ok := h.store.Lead(id)
	if !ok {
		return h.report(fmt.Errorf("lead %d: %w", id, ErrNotFound), "", "Failed to update lead")
	}
	moved, err := h.engine.DropLead(ctx, lead, stage)
	if err != nil || moved {
		return h.report(err, "Lead updated successfully", "Failed to update lead")
	}
	return nil
}

func (h *Handler) orderPayload(in form.OrderInput) (model.OrderPayload, error) {
	p, err := in.Payload()
	if err != nil {
		return p, err
	}
	if err := h.validator.Order(p); err != nil {
		return p, err
	}
	return p, nil
}

// CreateOrder creates an order. Only leads currently in stage Won are accepted.
func (h *Handler) CreateOrder(ctx context.Context, in form.OrderInput) error {
	p, err := h.orderPayload(in)
	if err == nil {
		err = h.checkEligible(p.LeadID)
	}
	if err == nil {
		err = h.store.CreateOrder(ctx, p)
	}
	return h.report(err, "Order created successfully", "Failed to create order")
}

func (h *Handler) checkEligible(leadID int64) error {
	for _, l := range workflow.EligibleLeads(h.store.Leads()) {
		if l.ID == leadID {
			return nil
		}
	}
	return fmt.Errorf("lead %d: %w", leadID, ErrLeadNotEligible)
}

// OrderLeadOptions returns the leads offered when creating an order.
func (h *Handler) OrderLeadOptions() []model.Lead {
	return workflow.EligibleLeads(h.store.Leads())
}

func (h *Handler) UpdateOrder(ctx context.Context, id int64, in form.OrderInput) error {
	p, err := h.orderPayload(in)
	if err == nil {
		err = h.store.UpdateOrder(ctx, id, p)
	}
	return h.report(err, "Order updated successfully", "Failed to update order")
}

func (h *Handler) DeleteOrder(ctx context.Context, id int64) (bool, error) {
	if !h.confirmDelete("order") {
		return false, nil
	}
	err := h.report(h.store.DeleteOrder(ctx, id), "Order deleted successfully", "Failed to delete order")
	return err == nil, err
}

func (h *Handler) MoveOrder(ctx context.Context, id int64, stage model.OrderStage) error {
	order, ok := h.store.Order(id)
	if !ok {
		return h.report(fmt.Errorf("order %d: %w", id, ErrNotFound), "", "Failed to update order")
	}
	moved, err := h.engine.DropOrder(ctx, order, stage)
	if err != nil || moved {
		return h.report(err, "Order updated successfully", "Failed to update order")
	}
	return nil
}

func (h *Handler) reminderPayload(in form.ReminderInput) (model.ReminderPayload, error) {
	p, err := in.Payload()
	if err != nil {
		return p, err
	}
	return p, h.validator.Reminder(p)
}

func (h *Handler) CreateReminder(ctx context.Context, in form.ReminderInput) error {
	p, err := h.reminderPayload(in)
	if err == nil {
		err = h.store.CreateReminder(ctx, p)
	}
	return h.report(err, "Reminder created successfully", "Failed to create reminder")
}

func (h *Handler) UpdateReminder(ctx context.Context, id int64, in form.ReminderInput) error {
	p, err := h.reminderPayload(in)
	if err == nil {
		err = h.store.UpdateReminder(ctx, id, p)
	}
	return h.report(err, "Reminder updated successfully", "Failed to update reminder")
}

// ToggleReminder flips the completion flag of reminder id with a full-payload update.
func (h *Handler) ToggleReminder(ctx context.Context, id int64) error {
	r, ok := h.store.Reminder(id)
	if !ok {
		return h.report(fmt.Errorf("reminder %d: %w", id, ErrNotFound), "", "Failed to update reminder")
	}
	p := r.Payload()
	p.IsCompleted = !p.IsCompleted
	return h.report(h.store.UpdateReminder(ctx, id, p), "Reminder updated successfully", "Failed to update reminder")
}

func (h *Handler) DeleteReminder(ctx context.Context, id int64) (bool, error) {
	if !h.confirmDelete("reminder") {
		return false, nil
	}
	err := h.report(h.store.DeleteReminder(ctx, id), "Reminder deleted successfully", "Failed to delete reminder")
	return err == nil, err
}

// Attachments opens and loads the document list of owner.
func (h *Handler) Attachments(ctx context.Context, owner model.Owner) (*documents.Attachments, error) {
	att := h.docs.For(owner)
	if err := att.Refresh(ctx); err != nil {
		h.logger.Warn("load documents failed", zap.Stringer("owner", owner), zap.Error(err))
		h.notifier.Notify(notify.Error, "Failed to load documents")
		return att, err
	}
	return att, nil
}

// UploadDocument opens ref through the file source and uploads it to att's owner.
// Nothing is opened or sent when the owner is not saved yet.
func (h *Handler) UploadDocument(ctx context.Context, att *documents.Attachments, ref string) error {
	if !att.Owner().Persisted() {
		h.notifier.Notify(notify.Error, "Please save the lead/order before uploading documents")
		return documents.ErrOwnerNotPersisted
	}
	f, err := h.files.Open(ctx, ref)
	if err == nil {
		err = att.Upload(ctx, f)
	}
	return h.report(err, "Document uploaded successfully", "Failed to upload document")
}

func (h *Handler) DeleteDocument(ctx context.Context, att *documents.Attachments, id int64) (bool, error) {
	if !h.confirmDelete("document") {
		return false, nil
	}
	err := h.report(att.Delete(ctx, id), "Document deleted successfully", "Failed to delete document")
	return err == nil, err
}

// ViewURL returns the direct link to a document.
func (h *Handler) ViewURL(doc model.Document) string {
	return h.docs.ViewURL(doc)
}
