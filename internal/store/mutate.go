package store

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"trackflow/internal/model"
)

// mutate runs write and, only if it succeeds, refreshes c.
// The returned error never leaves c partially updated.
func (s *Store) mutate(ctx context.Context, c Collection, op string, write func(context.Context) error) error {
	ctx, span := s.tracer.Start(ctx, "store.Mutate", trace.WithAttributes(
		attribute.String("collection", string(c)),
		attribute.String("op", op),
	))
	defer span.End()

	if err := write(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, op+" failed")
		s.logger.Warn("write failed", zap.String("collection", string(c)), zap.String("op", op), zap.Error(err))
		return fmt.Errorf("%s %s: %w", op, c, err)
	}
	if err := s.Refresh(ctx, c); err != nil {
		span.SetStatus(codes.Error, "refresh after write failed")
		return &RefreshAfterWriteError{Op: op, Collection: c, Err: err}
	}
	s.logger.Info("write applied", zap.String("collection", string(c)), zap.String("op", op))
	return nil
}

// CreateLead creates a lead and refreshes the lead collection.
func (s *Store) CreateLead(ctx context.Context, p model.LeadPayload) error {
	return s.mutate(ctx, Leads, "create", func(ctx context.Context) error {
		_, err := s.gw.CreateLead(ctx, p)
		return err
	})
}

// UpdateLead replaces lead id with p and refreshes the lead collection.
func (s *Store) UpdateLead(ctx context.Context, id int64, p model.LeadPayload) error {
	return s.mutate(ctx, Leads, "update", func(ctx context.Context) error {
		_, err := s.gw.UpdateLead(ctx, id, p)
		return err
	})
}

// DeleteLead deletes lead id and refreshes the lead collection.
func (s *Store) DeleteLead(ctx context.Context, id int64) error {
	return s.mutate(ctx, Leads, "delete", func(ctx context.Context) error {
		return s.gw.DeleteLead(ctx, id)
	})
}

func (s *Store) CreateOrder(ctx context.Context, p model.OrderPayload) error {
	return s.mutate(ctx, Orders, "create", func(ctx context.Context) error {
		_, err := s.gw.CreateOrder(ctx, p)
		return err
	})
}

func (s *Store) UpdateOrder(ctx context.Context, id int64, p model.OrderPayload) error {
	return s.mutate(ctx, Orders, "update", func(ctx context.Context) error {
		_, err := s.gw.UpdateOrder(ctx, id, p)
		return err
	})
}

func (s *Store) DeleteOrder(ctx context.Context, id int64) error {
	return s.mutate(ctx, Orders, "delete", func(ctx context.Context) error {
		return s.gw.DeleteOrder(ctx, id)
	})
}

func (s *Store) CreateReminder(ctx context.Context, p model.ReminderPayload) error {
	return s.mutate(ctx, Reminders, "create", func(ctx context.Context) error {
		_, err := s.gw.CreateReminder(ctx, p)
		return err
	})
}

func (s *Store) UpdateReminder(ctx context.Context, id int64, p model.ReminderPayload) error {
	return s.mutate(ctx, Reminders, "update", func(ctx context.Context) error {
		_, err := s.gw.UpdateReminder(ctx, id, p)
		return err
	})
}

func (s *Store) DeleteReminder(ctx context.Context, id int64) error {
	return s.mutate(ctx, Reminders, "delete", func(ctx context.Context) error {
		return s.gw.DeleteReminder(ctx, id)
	})
}
