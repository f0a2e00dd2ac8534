// Package store holds the session's copies of the backend collections.
//
// Every write goes through the gateway and, on success, is followed by a full
// re-fetch of the collection it touched. Collections are only ever replaced
// wholesale; nothing is patched locally.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"trackflow/internal/gateway"
	"trackflow/internal/model"
)

// Collection names a server-backed collection held by the store.
type Collection string

const (
	Leads     Collection = "leads"
	Orders    Collection = "orders"
	Reminders Collection = "reminders"
	Dashboard Collection = "dashboard"
)

// Collections lists every collection in initial-load order.
var Collections = []Collection{Leads, Orders, Reminders, Dashboard}

var (
	// ErrRefreshAfterWrite means the write succeeded server-side but the
	// follow-up fetch failed; the local collection still holds pre-write data.
	ErrRefreshAfterWrite = errors.New("refresh after write failed")
	ErrUnknownCollection = errors.New("unknown collection")
)

// RefreshAfterWriteError is returned by a mutation the backend applied whose
// follow-up refresh failed. It matches ErrRefreshAfterWrite.
type RefreshAfterWriteError struct {
	Op         string
	Collection Collection
	Err        error
}

func (e *RefreshAfterWriteError) Error() string {
	return fmt.Sprintf("%s %s: %v: %v", e.Op, e.Collection, ErrRefreshAfterWrite, e.Err)
}

func (e *RefreshAfterWriteError) Unwrap() []error {
	return []error{ErrRefreshAfterWrite, e.Err}
}

// Store is the single source of truth for leads, orders, reminders and the
// dashboard within a session. It is safe for concurrent use.
type Store struct {
	gw     gateway.EntityGateway
	logger *zap.Logger
	tracer trace.Tracer

	loading atomic.Bool

	// refreshMu serializes refreshes of one collection so a slower, older
	// response can never overwrite a newer one.
	refreshMu map[Collection]*sync.Mutex

	mu        sync.RWMutex
	leads     []model.Lead
	orders    []model.Order
	reminders []model.Reminder
	dashboard *model.DashboardStats
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the store logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// New creates an empty store backed by gw.
func New(gw gateway.EntityGateway, opts ...Option) *Store {
	s := &Store{
		gw:     gw,
		logger: zap.NewNop(),
		tracer: otel.Tracer("trackflow/store"),

		refreshMu: make(map[Collection]*sync.Mutex, len(Collections)),
	}
	for _, c := range Collections {
		s.refreshMu[c] = new(sync.Mutex)
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Loading reports whether the initial bulk load is in progress.
func (s *Store) Loading() bool { return s.loading.Load() }

// LoadAll fetches every collection concurrently. Each fetch is independent:
// one failing does not cancel the others, and every failure is returned joined.
func (s *Store) LoadAll(ctx context.Context) error {
	s.loading.Store(true)
	defer s.loading.Store(false)

	ctx, span := s.tracer.Start(ctx, "store.LoadAll")
	defer span.End()

	errs := make([]error, len(Collections))
	var g errgroup.Group
	for i, c := range Collections {
		g.Go(func() error {
			errs[i] = s.Refresh(ctx, c)
			return nil
		})
	}
	_ = g.Wait()

	err := errors.Join(errs...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load failed")
	}
	return err
}

// Refresh replaces collection c with the backend's current contents.
// On failure the existing contents are left as they were. Refreshes of
// different collections run in parallel; refreshes of the same collection
// run one at a time, in call order.
func (s *Store) Refresh(ctx context.Context, c Collection) error {
	if mu, ok := s.refreshMu[c]; ok {
		mu.Lock()
		defer mu.Unlock()
	}

	ctx, span := s.tracer.Start(ctx, "store.Refresh", trace.WithAttributes(attribute.String("collection", string(c))))
	defer span.End()

	err := s.fetch(ctx, c)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "refresh failed")
		s.logger.Warn("refresh failed", zap.String("collection", string(c)), zap.Error(err))
		return fmt.Errorf("refresh %s: %w", c, err)
	}
	s.logger.Debug("refreshed", zap.String("collection", string(c)))
	return nil
}

func (s *Store) fetch(ctx context.Context, c Collection) error {
	switch c {
	case Leads:
		items, err := s.gw.ListLeads(ctx)
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.leads = items
		s.mu.Unlock()
	case Orders:
		items, err := s.gw.ListOrders(ctx)
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.orders = items
		s.mu.Unlock()
	case Reminders:
		items, err := s.gw.ListReminders(ctx)
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.reminders = items
		s.mu.Unlock()
	case Dashboard:
		stats, err := s.gw.Dashboard(ctx)
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.dashboard = stats
		s.mu.Unlock()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCollection, c)
	}
	return nil
}

// Leads returns a copy of the lead collection.
func (s *Store) Leads() []model.Lead {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Lead{}, s.leads...)
}

// Orders returns a copy of the order collection.
func (s *Store) Orders() []model.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Order{}, s.orders...)
}

// Reminders returns a copy of the reminder collection.
func (s *Store) Reminders() []model.Reminder {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Reminder{}, s.reminders...)
}

// Dashboard returns the last fetched aggregate; ok is false before the first fetch.
func (s *Store) Dashboard() (stats model.DashboardStats, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.dashboard == nil {
		return model.DashboardStats{}, false
	}
	return *s.dashboard, true
}

// Lead returns the lead with the given id from the local collection.
func (s *Store) Lead(id int64) (model.Lead, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, l := range s.leads {
		if l.ID == id {
			return l, true
		}
	}
	return model.Lead{}, false
}

// Order returns the order with the given id from the local collection.
func (s *Store) Order(id int64) (model.Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, o := range s.orders {
		if o.ID == id {
			return o, true
		}
	}
	return model.Order{}, false
}

// Reminder returns the reminder with the given id from the local collection.
func (s *Store) Reminder(id int64) (model.Reminder, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.reminders {
		if r.ID == id {
			return r, true
		}
	}
	return model.Reminder{}, false
}
