// Package backendtest runs an in-memory imitation of the TrackFlow REST backend
// for tests. It reproduces the server-side behaviour the client depends on:
// computed dashboard aggregates, the Won-lead auto order, partial order and
// reminder updates, and flat upload storage served under /uploads.
package backendtest

import (
	"net"
	"sync"
	"testing"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap/zaptest"

	"trackflow/internal/model"
)

// Request is a request observed by the fake backend.
type Request struct {
	Method    string
	Path      string
	RequestID string
}

type failure struct {
	status int
	detail string
}

type storedDocument struct {
	doc     model.Document
	content []byte
}

// Server is a running fake backend.
type Server struct {
	app *fiber.App
	url string

	mu        sync.Mutex
	nextID    int64
	leads     []model.Lead
	orders    []model.Order
	reminders []model.Reminder
	documents []storedDocument
	requests  []Request
	failures  map[string]failure
}

// Start launches a fake backend on a loopback port and stops it when the test ends.
func Start(t testing.TB) *Server {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	s := &Server{
		url:      "http://" + ln.Addr().String(),
		failures: make(map[string]failure),
	}
	// Paths, params and bodies outlive the handler in the recorded requests
	// and stored documents, so fiber must not hand out views of its buffers.
	s.app = fiber.New(fiber.Config{
		ErrorHandler:          errorHandler(),
		DisableStartupMessage: true,
		Immutable:             true,
	})
	s.app.Use(otelfiber.Middleware())
	s.app.Use(requestID())
	s.app.Use(logRequests(zaptest.NewLogger(t)))
	s.app.Use(s.record)
	s.app.Use(s.injectFailures)
	s.registerRoutes()

	go func() {
		_ = s.app.Listener(ln)
	}()
	t.Cleanup(func() {
		_ = s.app.Shutdown()
	})
	return s
}

// APIURL is the base URL of the REST API (…/api).
func (s *Server) APIURL() string { return s.url + "/api" }

// UploadsURL is the base URL of static upload serving (…/uploads).
func (s *Server) UploadsURL() string { return s.url + "/uploads" }

// FailNext makes the next request matching method and path (e.g. "/api/leads")
// fail with status and detail.
func (s *Server) FailNext(method, path string, status int, detail string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+path] = failure{status: status, detail: detail}
}

// Requests returns every request received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// CountRequests returns how many requests matched method and path.
func (s *Server) CountRequests(method, path string) int {
	n := 0
	for _, r := range s.Requests() {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

// SeedLead stores l directly, assigning an ID, and returns the stored lead.
func (s *Server) SeedLead(l model.Lead) model.Lead {
	s.mu.Lock()
	defer s.mu.Unlock()
	l.ID = s.newID()
	s.leads = append(s.leads, l)
	return l
}

// SeedOrder stores o directly, assigning an ID, and returns the stored order.
func (s *Server) SeedOrder(o model.Order) model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	o.ID = s.newID()
	s.orders = append(s.orders, o)
	return o
}

// SeedReminder stores r directly, assigning an ID, and returns the stored reminder.
func (s *Server) SeedReminder(r model.Reminder) model.Reminder {
	s.mu.Lock()
	defer s.mu.Unlock()
	r.ID = s.newID()
	s.reminders = append(s.reminders, r)
	return r
}

// Leads returns the server-side leads.
func (s *Server) Leads() []model.Lead {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Lead(nil), s.leads...)
}

// Orders returns the server-side orders.
func (s *Server) Orders() []model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Order(nil), s.orders...)
}

// Documents returns the server-side documents.
func (s *Server) Documents() []model.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Document, 0, len(s.documents))
	for _, d := range s.documents {
		out = append(out, d.doc)
	}
	return out
}

// newID must be called with mu held.
func (s *Server) newID() int64 {
	s.nextID++
	return s.nextID
}

func (s *Server) record(c *fiber.Ctx) error {
	s.mu.Lock()
	s.requests = append(s.requests, Request{
		Method:    c.Method(),
		Path:      c.Path(),
		RequestID: requestIDFromCtx(c),
	})
	s.mu.Unlock()
	return c.Next()
}

func (s *Server) injectFailures(c *fiber.Ctx) error {
	key := c.Method() + " " + c.Path()
	s.mu.Lock()
	f, ok := s.failures[key]
	if ok {
		delete(s.failures, key)
	}
	s.mu.Unlock()
	if ok {
		return writeError(c, f.status, f.detail)
	}
	return c.Next()
}
