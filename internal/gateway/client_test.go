package gateway_test

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"trackflow/internal/backendtest"
	"trackflow/internal/gateway"
	"trackflow/internal/model"
)

func strPtr(s string) *string { return &s }

func newClient(t *testing.T, opts ...gateway.Option) (*gateway.Client, *backendtest.Server) {
	t.Helper()
	srv := backendtest.Start(t)
	opts = append([]gateway.Option{gateway.WithLogger(zap.NewNop()), gateway.WithTimeout(5 * time.Second)}, opts...)
	return gateway.New(srv.APIURL(), opts...), srv
}

func TestClient_LeadCRUD(t *testing.T) {
	c, srv := newClient(t)
	ctx := context.Background()

	leads, err := c.ListLeads(ctx)
	require.NoError(t, err)
	assert.Empty(t, leads)

	created, err := c.CreateLead(ctx, model.LeadPayload{
		Name:            "Ann",
		Contact:         "ann@x.com",
		Company:         "Acme",
		ProductInterest: "Widget",
		Stage:           model.LeadNew,
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "Ann", created.Name)
	assert.Nil(t, created.FollowUpDate)

	p := created.Payload()
	p.Stage = model.LeadQualified
	p.Notes = strPtr("call back")
	updated, err := c.UpdateLead(ctx, created.ID, p)
	require.NoError(t, err)
	assert.Equal(t, model.LeadQualified, updated.Stage)
	require.NotNil(t, updated.Notes)
	assert.Equal(t, "call back", *updated.Notes)

	require.NoError(t, c.DeleteLead(ctx, created.ID))
	assert.Empty(t, srv.Leads())
}

func TestClient_WonLeadCreatesOrder(t *testing.T) {
	c, _ := newClient(t)
	ctx := context.Background()

	lead, err := c.CreateLead(ctx, model.LeadPayload{
		Name: "Bo", Contact: "bo@x.com", Company: "Beta", ProductInterest: "Gear", Stage: model.LeadWon,
	})
	require.NoError(t, err)

	orders, err := c.ListOrders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, lead.ID, orders[0].LeadID)
	assert.Equal(t, model.OrderReceived, orders[0].Stage)
}

func TestClient_OrderAndReminder(t *testing.T) {
	c, srv := newClient(t)
	ctx := context.Background()
	lead := srv.SeedLead(model.Lead{Name: "Cy", Contact: "cy@x.com", Company: "Core", ProductInterest: "Bolt", Stage: model.LeadWon})

	order, err := c.CreateOrder(ctx, model.OrderPayload{LeadID: lead.ID, Stage: model.OrderInDevelopment})
	require.NoError(t, err)
	assert.Equal(t, model.OrderInDevelopment, order.Stage)

	p := order.Payload()
	p.Stage = model.OrderDispatched
	p.Courier = strPtr("DHL")
	p.DispatchDate = model.TimestampPtr(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
	order, err = c.UpdateOrder(ctx, order.ID, p)
	require.NoError(t, err)
	assert.Equal(t, model.OrderDispatched, order.Stage)
	require.NotNil(t, order.DispatchDate)
	assert.True(t, order.DispatchDate.Equal(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)))

	_, err = c.CreateOrder(ctx, model.OrderPayload{LeadID: 999, Stage: model.OrderReceived})
	assert.True(t, gateway.IsNotFound(err))

	due := model.NewTimestamp(time.Now().Add(-time.Hour).Truncate(time.Second))
	rem, err := c.CreateReminder(ctx, model.ReminderPayload{Title: "Call", ReminderDate: due})
	require.NoError(t, err)
	assert.True(t, rem.ReminderDate.Equal(due.Time))

	rp := rem.Payload()
	rp.IsCompleted = true
	rem, err = c.UpdateReminder(ctx, rem.ID, rp)
	require.NoError(t, err)
	assert.True(t, rem.IsCompleted)

	reminders, err := c.ListReminders(ctx)
	require.NoError(t, err)
	assert.Len(t, reminders, 1)
	require.NoError(t, c.DeleteReminder(ctx, rem.ID))
	require.NoError(t, c.DeleteOrder(ctx, order.ID))
}

func TestClient_Dashboard(t *testing.T) {
	c, srv := newClient(t)
	srv.SeedLead(model.Lead{Name: "a", Stage: model.LeadWon})
	srv.SeedLead(model.Lead{Name: "b", Stage: model.LeadLost})
	srv.SeedLead(model.Lead{Name: "c", Stage: model.LeadNew})
	srv.SeedOrder(model.Order{LeadID: 1, Stage: model.OrderReceived})
	srv.SeedReminder(model.Reminder{Title: "due", ReminderDate: model.NewTimestamp(time.Now().Add(-time.Hour))})
	srv.SeedReminder(model.Reminder{Title: "later", ReminderDate: model.NewTimestamp(time.Now().Add(time.Hour))})

	stats, err := c.Dashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalLeads)
	assert.Equal(t, 1, stats.OpenLeads)
	assert.Equal(t, 1, stats.WonLeads)
	assert.Equal(t, 1, stats.LostLeads)
	assert.InDelta(t, 33.33, stats.ConversionRate, 0.001)
	assert.Equal(t, 1, stats.OrdersReceived)
	assert.Equal(t, 1, stats.PendingReminders)
}

func TestClient_APIErrorCarriesDetail(t *testing.T) {
	c, srv := newClient(t)
	srv.FailNext(http.MethodGet, "/api/leads", http.StatusInternalServerError, "database unavailable")

	_, err := c.ListLeads(context.Background())
	require.Error(t, err)

	var apiErr *gateway.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.Equal(t, "database unavailable", apiErr.Message)
	assert.Equal(t, http.StatusInternalServerError, gateway.StatusCode(err))
	assert.False(t, gateway.IsNetwork(err))
}

func TestClient_UpdateMissingLeadIsNotFound(t *testing.T) {
	c, _ := newClient(t)
	_, err := c.UpdateLead(context.Background(), 42, model.LeadPayload{Name: "x", Stage: model.LeadNew})
	require.Error(t, err)
	assert.True(t, gateway.IsNotFound(err))
	assert.Contains(t, err.Error(), "Lead not found")
}

func TestClient_NetworkError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	c := gateway.New("http://"+addr+"/api", gateway.WithTimeout(time.Second))
	_, err = c.ListLeads(context.Background())
	require.Error(t, err)
	assert.True(t, gateway.IsNetwork(err))
	assert.Zero(t, gateway.StatusCode(err))
}

func TestClient_RequestIDHeader(t *testing.T) {
	c, srv := newClient(t)
	_, err := c.ListOrders(context.Background())
	require.NoError(t, err)

	reqs := srv.Requests()
	require.Len(t, reqs, 1)
	assert.Len(t, reqs[0].RequestID, 36)
}

func TestClient_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := gateway.NewMetrics(reg)
	require.NoError(t, err)

	c, srv := newClient(t, gateway.WithMetrics(m))
	ctx := context.Background()
	_, err = c.ListLeads(ctx)
	require.NoError(t, err)
	srv.FailNext(http.MethodGet, "/api/leads", http.StatusBadGateway, "upstream")
	_, _ = c.ListLeads(ctx)

	count, err := testutil.GatherAndCount(reg, "trackflow_gateway_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	expected := `
# HELP trackflow_gateway_requests_total Total number of requests sent to the CRM backend.
# TYPE trackflow_gateway_requests_total counter
trackflow_gateway_requests_total{method="GET",resource="leads",status="200"} 1
trackflow_gateway_requests_total{method="GET",resource="leads",status="502"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "trackflow_gateway_requests_total"))

	_, err = gateway.NewMetrics(reg)
	assert.Error(t, err, "duplicate registration")
}

func TestClient_Documents(t *testing.T) {
	c, srv := newClient(t)
	ctx := context.Background()
	lead := srv.SeedLead(model.Lead{Name: "Ann", Stage: model.LeadNew})
	owner := model.Owner{Type: model.OwnerLead, ID: lead.ID}

	docs, err := c.ListDocuments(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, docs)

	doc, err := c.Upload(ctx, owner, gateway.UploadFile{
		Name:        "quote.pdf",
		ContentType: "application/pdf",
		Body:        strings.NewReader("%PDF-1.4 quote"),
	})
	require.NoError(t, err)
	assert.Equal(t, "quote.pdf", doc.Filename)
	assert.True(t, strings.HasSuffix(doc.FilePath, ".pdf"))
	assert.Equal(t, owner, doc.Owner)

	docs, err = c.ListDocuments(ctx, owner)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, doc.ID, docs[0].ID)
	assert.Equal(t, owner, docs[0].Owner)

	resp, err := http.Get(srv.UploadsURL() + "/" + doc.FilePath[strings.LastIndex(doc.FilePath, "/")+1:])
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, "%PDF-1.4 quote", string(body))

	require.NoError(t, c.DeleteDocument(ctx, doc.ID))
	err = c.DeleteDocument(ctx, doc.ID)
	assert.True(t, gateway.IsNotFound(err))
}

func TestClient_ListDocumentsNotFoundIsEmpty(t *testing.T) {
	c, srv := newClient(t)

	docs, err := c.ListDocuments(context.Background(), model.Owner{Type: model.OwnerOrder, ID: 77})
	require.NoError(t, err)
	assert.NotNil(t, docs)
	assert.Empty(t, docs)
	assert.Equal(t, 1, srv.CountRequests(http.MethodGet, "/api/documents/order/77"))
}

func TestClient_ListDocumentsOtherFailures(t *testing.T) {
	c, srv := newClient(t)
	srv.FailNext(http.MethodGet, "/api/documents/lead/1", http.StatusInternalServerError, "boom")

	_, err := c.ListDocuments(context.Background(), model.Owner{Type: model.OwnerLead, ID: 1})
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, gateway.StatusCode(err))
}

func TestClient_UploadNilReader(t *testing.T) {
	c := gateway.New("http://127.0.0.1:1/api")
	_, err := c.Upload(context.Background(), model.Owner{Type: model.OwnerLead, ID: 1}, gateway.UploadFile{Name: "a.txt"})
	assert.ErrorIs(t, err, gateway.ErrReaderNil)
}
