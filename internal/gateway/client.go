package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"trackflow/internal/model"
)

const (
	resourceLeads     = "leads"
	resourceOrders    = "orders"
	resourceReminders = "reminders"
	resourceDashboard = "dashboard"
	resourceDocuments = "documents"
	resourceUpload    = "upload"
)

// Client is the net/http implementation of Gateway.
// It is safe for concurrent use by multiple goroutines.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
	metrics *Metrics
	timeout time.Duration
}

var _ Gateway = (*Client)(nil)

// Option configures the client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. Its transport is wrapped, not replaced.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		cp := *h
		c.http = &cp
	}
}

// WithTimeout sets the per-request timeout. It wins over the timeout of a
// client given to WithHTTPClient, whatever the option order.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithLogger sets the request logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithMetrics records request counts and latencies.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// New creates a client for the API rooted at baseURL (e.g. https://host/api).
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		logger:  zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	if c.timeout > 0 {
		c.http.Timeout = c.timeout
	}

	base := c.http.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	c.http.Transport = &requestIDTransport{
		next: otelhttp.NewTransport(&instrumentedTransport{
			next:    base,
			logger:  c.logger,
			metrics: c.metrics,
		}),
	}
	return c
}

// ListLeads calls GET /leads.
func (c *Client) ListLeads(ctx context.Context) ([]model.Lead, error) {
	out := make([]model.Lead, 0)
	err := c.do(ctx, http.MethodGet, resourceLeads, "/leads", nil, &out)
	return out, err
}

// CreateLead calls POST /leads.
func (c *Client) CreateLead(ctx context.Context, p model.LeadPayload) (*model.Lead, error) {
	var out model.Lead
	if err := c.do(ctx, http.MethodPost, resourceLeads, "/leads", p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateLead calls PUT /leads/{id}.
func (c *Client) UpdateLead(ctx context.Context, id int64, p model.LeadPayload) (*model.Lead, error) {
	var out model.Lead
	if err := c.do(ctx, http.MethodPut, resourceLeads, fmt.Sprintf("/leads/%d", id), p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteLead calls DELETE /leads/{id}.
func (c *Client) DeleteLead(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, resourceLeads, fmt.Sprintf("/leads/%d", id), nil, nil)
}

// ListOrders calls GET /orders.
func (c *Client) ListOrders(ctx context.Context) ([]model.Order, error) {
	out := make([]model.Order, 0)
	err := c.do(ctx, http.MethodGet, resourceOrders, "/orders", nil, &out)
	return out, err
}

// CreateOrder calls POST /orders.
func (c *Client) CreateOrder(ctx context.Context, p model.OrderPayload) (*model.Order, error) {
	var out model.Order
	if err := c.do(ctx, http.MethodPost, resourceOrders, "/orders", p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateOrder calls PUT /orders/{id}.
func (c *Client) UpdateOrder(ctx context.Context, id int64, p model.OrderPayload) (*model.Order, error) {
	var out model.Order
	if err := c.do(ctx, http.MethodPut, resourceOrders, fmt.Sprintf("/orders/%d", id), p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteOrder calls DELETE /orders/{id}.
func (c *Client) DeleteOrder(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, resourceOrders, fmt.Sprintf("/orders/%d", id), nil, nil)
}

// ListReminders calls GET /reminders.
func (c *Client) ListReminders(ctx context.Context) ([]model.Reminder, error) {
	out := make([]model.Reminder, 0)
	err := c.do(ctx, http.MethodGet, resourceReminders, "/reminders", nil, &out)
	return out, err
}

// CreateReminder calls POST /reminders.
func (c *Client) CreateReminder(ctx context.Context, p model.ReminderPayload) (*model.Reminder, error) {
	var out model.Reminder
	if err := c.do(ctx, http.MethodPost, resourceReminders, "/reminders", p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateReminder calls PUT /reminders/{id}.
func (c *Client) UpdateReminder(ctx context.Context, id int64, p model.ReminderPayload) (*model.Reminder, error) {
	var out model.Reminder
	if err := c.do(ctx, http.MethodPut, resourceReminders, fmt.Sprintf("/reminders/%d", id), p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteReminder calls DELETE /reminders/{id}.
func (c *Client) DeleteReminder(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, resourceReminders, fmt.Sprintf("/reminders/%d", id), nil, nil)
}

// Dashboard calls GET /dashboard.
func (c *Client) Dashboard(ctx context.Context) (*model.DashboardStats, error) {
	var out model.DashboardStats
	if err := c.do(ctx, http.MethodGet, resourceDashboard, "/dashboard", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Upload calls POST /upload/{entityType}/{entityId} with a streamed multipart body.
func (c *Client) Upload(ctx context.Context, owner model.Owner, f UploadFile) (*model.Document, error) {
	if f.Body == nil {
		return nil, ErrReaderNil
	}
	pr, pw := io.Pipe()
	defer pr.Close()
	mw := multipart.NewWriter(pw)

	go func() {
		part, err := mw.CreatePart(filePartHeader(f))
		if err == nil {
			_, err = io.Copy(part, f.Body)
		}
		if err == nil {
			err = mw.Close()
		}
		pw.CloseWithError(err)
	}()

	var out model.Document
	path := fmt.Sprintf("/upload/%s/%d", owner.Type, owner.ID)
	if err := c.send(ctx, http.MethodPost, resourceUpload, path, pr, mw.FormDataContentType(), &out); err != nil {
		return nil, err
	}
	out.Owner = owner
	return &out, nil
}

// ListDocuments calls GET /documents/{entityType}/{entityId}.
func (c *Client) ListDocuments(ctx context.Context, owner model.Owner) ([]model.Document, error) {
	out := make([]model.Document, 0)
	path := fmt.Sprintf("/documents/%s/%d", owner.Type, owner.ID)
	if err := c.do(ctx, http.MethodGet, resourceDocuments, path, nil, &out); err != nil {
		if IsNotFound(err) {
			return []model.Document{}, nil
		}
		return nil, err
	}
	for i := range out {
		out[i].Owner = owner
	}
	return out, nil
}

// DeleteDocument calls DELETE /documents/{documentId}.
func (c *Client) DeleteDocument(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, resourceDocuments, fmt.Sprintf("/documents/%d", id), nil, nil)
}

func (c *Client) do(ctx context.Context, method, resource, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(b)
	}
	return c.send(ctx, method, resource, path, reader, "application/json", out)
}

func (c *Client) send(ctx context.Context, method, resource, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(withResource(ctx, resource), method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &NetworkError{Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{
			Method:  method,
			Path:    path,
			Status:  resp.StatusCode,
			Message: errorMessage(resp),
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: %w: %v", method, path, ErrDecode, err)
	}
	return nil
}

// errorMessage extracts the backend's "detail" field, falling back to the status text.
func errorMessage(resp *http.Response) string {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err == nil && len(raw) > 0 {
		var body struct {
			Detail json.RawMessage `json:"detail"`
		}
		if json.Unmarshal(raw, &body) == nil && len(body.Detail) > 0 {
			var s string
			if json.Unmarshal(body.Detail, &s) == nil {
				return s
			}
			return string(body.Detail)
		}
	}
	return http.StatusText(resp.StatusCode)
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func filePartHeader(f UploadFile) textproto.MIMEHeader {
	ct := f.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(f.Name)))
	h.Set("Content-Type", ct)
	return h
}
