package gateway

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequestIDHeader is the header used to correlate client requests with backend logs.
const RequestIDHeader = "X-Request-ID"

type resourceKey struct{}

func withResource(ctx context.Context, resource string) context.Context {
	return context.WithValue(ctx, resourceKey{}, resource)
}

func resourceFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(resourceKey{}).(string); ok {
		return v
	}
	return "unknown"
}

// requestIDTransport ensures every outgoing request carries an X-Request-ID.
// An ID already set by the caller is preserved.
type requestIDTransport struct {
	next http.RoundTripper
}

func (t *requestIDTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get(RequestIDHeader) != "" {
		return t.next.RoundTrip(req)
	}
	r := req.Clone(req.Context())
	r.Header.Set(RequestIDHeader, uuid.NewString())
	return t.next.RoundTrip(r)
}

// instrumentedTransport logs and measures each round trip.
// Logged fields: request_id, method, path, status, latency_ms.
type instrumentedTransport struct {
	next    http.RoundTripper
	logger  *zap.Logger
	metrics *Metrics
}

func (t *instrumentedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resource := resourceFromContext(req.Context())

	resp, err := t.next.RoundTrip(req)

	latency := time.Since(start)
	status := "error"
	if err == nil {
		status = strconv.Itoa(resp.StatusCode)
	}
	t.metrics.observe(resource, req.Method, status, latency)

	fields := []zap.Field{
		zap.String("request_id", req.Header.Get(RequestIDHeader)),
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.String("status", status),
		zap.Float64("latency_ms", float64(latency.Microseconds())/1000),
	}
	if err != nil {
		t.logger.Warn("gateway request failed", append(fields, zap.Error(err))...)
	} else {
		t.logger.Debug("gateway request", fields...)
	}
	return resp, err
}
