package workflow

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"trackflow/internal/model"
)

// Writer is the subset of the entity store used to apply stage moves.
type Writer interface {
	UpdateLead(ctx context.Context, id int64, p model.LeadPayload) error
	UpdateOrder(ctx context.Context, id int64, p model.OrderPayload) error
}

// Engine applies board drops through the store.
type Engine struct {
	w      Writer
	logger *zap.Logger
}

func NewEngine(w Writer, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{w: w, logger: logger}
}

// DropLead moves lead to target. Dropping onto the lead's own stage is a no-op
// and sends nothing. It reports whether an update was issued.
func (e *Engine) DropLead(ctx context.Context, lead model.Lead, target model.LeadStage) (bool, error) {
	changed, err := LeadPipeline.Transition(lead.Stage, target)
	if err != nil || !changed {
		return false, err
	}
	p := lead.Payload()
	p.Stage = target
	if err := e.w.UpdateLead(ctx, lead.ID, p); err != nil {
		return false, fmt.Errorf("move lead %d to %s: %w", lead.ID, target, err)
	}
	e.logger.Info("lead moved", zap.Int64("lead_id", lead.ID), zap.String("from", string(lead.Stage)), zap.String("to", string(target)))
	return true, nil
}

// DropOrder moves order to target, with the same no-op rule as DropLead.
func (e *Engine) DropOrder(ctx context.Context, order model.Order, target model.OrderStage) (bool, error) {
	changed, err := OrderPipeline.Transition(order.Stage, target)
	if err != nil || !changed {
		return false, err
	}
	p := order.Payload()
	p.Stage = target
	if err := e.w.UpdateOrder(ctx, order.ID, p); err != nil {
		return false, fmt.Errorf("move order %d to %s: %w", order.ID, target, err)
	}
	e.logger.Info("order moved", zap.Int64("order_id", order.ID), zap.String("from", string(order.Stage)), zap.String("to", string(target)))
	return true, nil
}

// EligibleLeads returns the leads an order may be created for: those in stage Won.
func EligibleLeads(leads []model.Lead) []model.Lead {
	return FilterByStage(leads, model.LeadWon)
}

// SearchLeads matches query case-insensitively against name and company.
// An empty query matches everything.
func SearchLeads(leads []model.Lead, query string) []model.Lead {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]model.Lead, 0, len(leads))
	for _, l := range leads {
		if q == "" || strings.Contains(strings.ToLower(l.Name), q) || strings.Contains(strings.ToLower(l.Company), q) {
			out = append(out, l)
		}
	}
	return out
}

// LeadFor finds the lead an order belongs to.
func LeadFor(o model.Order, leads []model.Lead) (model.Lead, bool) {
	for _, l := range leads {
		if l.ID == o.LeadID {
			return l, true
		}
	}
	return model.Lead{}, false
}
