package actions_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"trackflow/internal/actions"
	"trackflow/internal/backendtest"
	"trackflow/internal/documents"
	"trackflow/internal/form"
	"trackflow/internal/gateway"
	"trackflow/internal/model"
	"trackflow/internal/notify"
	"trackflow/internal/store"
	"trackflow/internal/workflow"
)

type notice struct {
	level notify.Level
	msg   string
}

type recorder struct {
	notices []notice
	answer  bool
	asked   []string
}

func (r *recorder) Notify(level notify.Level, msg string) {
	r.notices = append(r.notices, notice{level, msg})
}

func (r *recorder) Confirm(q string) bool {
	r.asked = append(r.asked, q)
	return r.answer
}

func (r *recorder) last() notice {
	if len(r.notices) == 0 {
		return notice{}
	}
	return r.notices[len(r.notices)-1]
}

type memFiles map[string]string

func (m memFiles) Open(_ context.Context, ref string) (documents.File, error) {
	body, ok := m[ref]
	if !ok {
		return documents.File{}, errors.New("no such file")
	}
	return documents.File{Name: ref, ContentType: "text/plain", Body: io.NopCloser(strings.NewReader(body))}, nil
}

type fixture struct {
	srv *backendtest.Server
	st  *store.Store
	rec *recorder
	h   *actions.Handler
}

func setup(t *testing.T) fixture {
	t.Helper()
	srv := backendtest.Start(t)
	gw := gateway.New(srv.APIURL())
	v, err := form.NewValidator()
	require.NoError(t, err)

	st := store.New(gw)
	rec := &recorder{answer: true}
	h := actions.NewHandler(actions.Deps{
		Store:     st,
		Documents: documents.NewService(gw, srv.UploadsURL(), nil),
		Files:     memFiles{"notes.txt": "hello"},
		Validator: v,
		Notifier:  rec,
		Prompt:    rec,
	})
	require.NoError(t, h.LoadAll(context.Background()))
	return fixture{srv: srv, st: st, rec: rec, h: h}
}

var ann = form.LeadInput{Name: "Ann", Contact: "ann@x.com", Company: "Acme", ProductInterest: "Widget", Stage: "New"}

func TestCreateLead(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	require.NoError(t, f.h.CreateLead(ctx, ann))
	assert.Equal(t, notice{notify.Success, "Lead created successfully"}, f.rec.last())

	col := workflow.FilterByStage(f.st.Leads(), model.LeadNew)
	require.Len(t, col, 1)
	assert.Equal(t, "Ann", col[0].Name)
	assert.Equal(t, "ann@x.com", col[0].Contact)
}

func TestCreateLead_ValidationStopsBeforeNetwork(t *testing.T) {
	f := setup(t)
	in := ann
	in.Company = ""

	err := f.h.CreateLead(context.Background(), in)
	var verr *form.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, notify.Error, f.rec.last().level)
	assert.Contains(t, f.rec.last().msg, "company is required")
	assert.Zero(t, f.srv.CountRequests(http.MethodPost, "/api/leads"))
}

func TestCreateLead_BackendFailure(t *testing.T) {
	f := setup(t)
	f.srv.FailNext(http.MethodPost, "/api/leads", http.StatusInternalServerError, "db down")

	err := f.h.CreateLead(context.Background(), ann)
	require.Error(t, err)
	assert.Equal(t, notice{notify.Error, "Failed to create lead"}, f.rec.last())
	assert.Empty(t, f.st.Leads())
}

func TestDeleteLead_Confirmation(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	lead := f.srv.SeedLead(model.Lead{Name: "Ann", Stage: model.LeadNew})
	require.NoError(t, f.st.Refresh(ctx, store.Leads))

	f.rec.answer = false
	deleted, err := f.h.DeleteLead(ctx, lead.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.Equal(t, []string{"Are you sure you want to delete this lead?"}, f.rec.asked)
	assert.Zero(t, f.srv.CountRequests(http.MethodDelete, "/api/leads/1"))
	assert.Len(t, f.st.Leads(), 1)

	f.rec.answer = true
	deleted, err = f.h.DeleteLead(ctx, lead.ID)
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Empty(t, f.st.Leads())
	assert.Equal(t, notice{notify.Success, "Lead deleted successfully"}, f.rec.last())
}

func TestMoveLead(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	lead := f.srv.SeedLead(model.Lead{Name: "Ann", Contact: "ann@x.com", Company: "Acme", ProductInterest: "Widget", Stage: model.LeadProposalSent})
	require.NoError(t, f.st.Refresh(ctx, store.Leads))

	require.NoError(t, f.h.MoveLead(ctx, lead.ID, model.LeadProposalSent))
	assert.Zero(t, f.srv.CountRequests(http.MethodPut, "/api/leads/1"))
	assert.Empty(t, f.rec.notices)

	require.NoError(t, f.h.MoveLead(ctx, lead.ID, model.LeadWon))
	got, ok := f.st.Lead(lead.ID)
	require.True(t, ok)
	assert.Equal(t, model.LeadWon, got.Stage)
	assert.Equal(t, "Acme", got.Company)

	// the backend opens an order for a won lead; orders are refreshed on their own view
	assert.Empty(t, f.st.Orders())
	require.NoError(t, f.h.Refresh(ctx, store.Orders))
	assert.Len(t, f.st.Orders(), 1)

	err := f.h.MoveLead(ctx, 999, model.LeadLost)
	assert.ErrorIs(t, err, actions.ErrNotFound)
}

func TestCreateOrder_Eligibility(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	won := f.srv.SeedLead(model.Lead{Name: "Won", Stage: model.LeadWon})
	lost := f.srv.SeedLead(model.Lead{Name: "Lost", Stage: model.LeadLost})
	require.NoError(t, f.st.Refresh(ctx, store.Leads))

	opts := f.h.OrderLeadOptions()
	require.Len(t, opts, 1)
	assert.Equal(t, won.ID, opts[0].ID)

	err := f.h.CreateOrder(ctx, form.OrderInput{LeadID: lost.ID})
	assert.ErrorIs(t, err, actions.ErrLeadNotEligible)
	assert.Zero(t, f.srv.CountRequests(http.MethodPost, "/api/orders"))

	require.NoError(t, f.h.CreateOrder(ctx, form.OrderInput{LeadID: won.ID, Stage: "In Development", Courier: "DHL"}))
	orders := f.st.Orders()
	require.Len(t, orders, 1)
	assert.Equal(t, model.OrderInDevelopment, orders[0].Stage)

	require.NoError(t, f.h.MoveOrder(ctx, orders[0].ID, model.OrderDispatched))
	o, _ := f.st.Order(orders[0].ID)
	assert.Equal(t, model.OrderDispatched, o.Stage)
	require.NotNil(t, o.Courier)
	assert.Equal(t, "DHL", *o.Courier)

	err = f.h.MoveOrder(ctx, orders[0].ID, "Lost in transit")
	assert.ErrorIs(t, err, workflow.ErrUnknownStage)
}

func TestReminders(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	yesterday := time.Now().Add(-24 * time.Hour).UTC().Format("2006-01-02T15:04")

	require.NoError(t, f.h.CreateReminder(ctx, form.ReminderInput{Title: "Call Ann", ReminderDate: yesterday}))
	rs := f.st.Reminders()
	require.Len(t, rs, 1)
	assert.True(t, rs[0].Overdue(time.Now()))

	require.NoError(t, f.h.ToggleReminder(ctx, rs[0].ID))
	r, _ := f.st.Reminder(rs[0].ID)
	assert.True(t, r.IsCompleted)
	assert.False(t, r.Overdue(time.Now()))
	assert.Equal(t, "Call Ann", r.Title)

	err := f.h.CreateReminder(ctx, form.ReminderInput{Title: "No date"})
	var verr *form.ValidationError
	assert.True(t, errors.As(err, &verr))

	deleted, err := f.h.DeleteReminder(ctx, r.ID)
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Empty(t, f.st.Reminders())
}

func TestDocuments(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	lead := f.srv.SeedLead(model.Lead{Name: "Ann", Stage: model.LeadNew})

	att, err := f.h.Attachments(ctx, model.Owner{Type: model.OwnerLead, ID: lead.ID})
	require.NoError(t, err)
	assert.Empty(t, att.Documents())

	require.NoError(t, f.h.UploadDocument(ctx, att, "notes.txt"))
	docs := att.Documents()
	require.Len(t, docs, 1)
	assert.Equal(t, notice{notify.Success, "Document uploaded successfully"}, f.rec.last())
	assert.True(t, strings.HasPrefix(f.h.ViewURL(docs[0]), f.srv.UploadsURL()+"/"))

	err = f.h.UploadDocument(ctx, att, "missing.txt")
	require.Error(t, err)
	assert.Equal(t, notice{notify.Error, "Failed to upload document"}, f.rec.last())

	deleted, err := f.h.DeleteDocument(ctx, att, docs[0].ID)
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Empty(t, att.Documents())
	assert.Contains(t, f.rec.asked, "Are you sure you want to delete this document?")
}

func TestUploadDocument_UnsavedOwner(t *testing.T) {
	f := setup(t)
	files := new(mockFiles)

	h := actions.NewHandler(actions.Deps{
		Store:     f.st,
		Documents: documents.NewService(gateway.New(f.srv.APIURL()), f.srv.UploadsURL(), nil),
		Files:     files,
		Notifier:  f.rec,
		Prompt:    f.rec,
	})
	att, err := h.Attachments(context.Background(), model.Owner{Type: model.OwnerOrder})
	require.NoError(t, err)

	err = h.UploadDocument(context.Background(), att, "notes.txt")
	assert.ErrorIs(t, err, documents.ErrOwnerNotPersisted)
	assert.Equal(t, notice{notify.Error, "Please save the lead/order before uploading documents"}, f.rec.last())
	files.AssertNotCalled(t, "Open", mock.Anything, mock.Anything)
	assert.Zero(t, f.srv.CountRequests(http.MethodPost, "/api/upload/order/0"))
}

type mockFiles struct {
	mock.Mock
}

func (m *mockFiles) Open(ctx context.Context, ref string) (documents.File, error) {
	args := m.Called(ctx, ref)
	return args.Get(0).(documents.File), args.Error(1)
}

func TestLoadAll_ReportsFailure(t *testing.T) {
	f := setup(t)
	f.srv.FailNext(http.MethodGet, "/api/dashboard", http.StatusInternalServerError, "boom")

	err := f.h.LoadAll(context.Background())
	require.Error(t, err)
	assert.Equal(t, notice{notify.Error, "Failed to fetch data"}, f.rec.last())
	assert.False(t, f.st.Loading())
}

func TestWriteAppliedButRefreshFailed(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.srv.FailNext(http.MethodGet, "/api/leads", http.StatusServiceUnavailable, "busy")

	require.NoError(t, f.h.CreateLead(ctx, ann))
	assert.Equal(t, []notice{
		{notify.Success, "Lead created successfully"},
		{notify.Error, "Failed to fetch leads"},
	}, f.rec.notices)
	assert.Equal(t, 1, f.srv.CountRequests(http.MethodPost, "/api/leads"))
	assert.Len(t, f.srv.Leads(), 1)
	assert.Empty(t, f.st.Leads())

	require.NoError(t, f.h.Refresh(ctx, store.Leads))
	assert.Len(t, f.st.Leads(), 1)
}

func TestDeleteReminder_RefreshFailedStillDeleted(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	r := f.srv.SeedReminder(model.Reminder{Title: "Call", ReminderDate: model.NewTimestamp(time.Now())})
	require.NoError(t, f.h.Refresh(ctx, store.Reminders))
	f.srv.FailNext(http.MethodGet, "/api/reminders", http.StatusInternalServerError, "boom")

	deleted, err := f.h.DeleteReminder(ctx, r.ID)
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Equal(t, notice{notify.Error, "Failed to fetch reminders"}, f.rec.last())
	assert.Contains(t, f.rec.notices, notice{notify.Success, "Reminder deleted successfully"})
}

func TestUploadDocument_RefreshFailedStillUploaded(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	lead := f.srv.SeedLead(model.Lead{Name: "Ann", Stage: model.LeadNew})
	att, err := f.h.Attachments(ctx, model.Owner{Type: model.OwnerLead, ID: lead.ID})
	require.NoError(t, err)
	f.srv.FailNext(http.MethodGet, "/api/documents/lead/"+strconv.FormatInt(lead.ID, 10), http.StatusInternalServerError, "boom")

	require.NoError(t, f.h.UploadDocument(ctx, att, "notes.txt"))
	assert.Equal(t, []notice{
		{notify.Success, "Document uploaded successfully"},
		{notify.Error, "Failed to load documents"},
	}, f.rec.notices)
	assert.Len(t, f.srv.Documents(), 1)
	assert.Empty(t, att.Documents())
}
