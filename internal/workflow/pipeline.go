// Package workflow models the fixed stage pipelines for leads and orders.
//
// Transitions are permissive: any stage may move to any other stage,
// backwards included. Only stages outside the pipeline are rejected.
package workflow

import (
	"errors"
	"fmt"
	"slices"

	"trackflow/internal/model"
)

var ErrUnknownStage = errors.New("unknown stage")

// Staged is anything that sits in exactly one stage of a pipeline.
type Staged[S ~string] interface {
	CurrentStage() S
}

// Pipeline is a fixed ordered sequence of stages.
type Pipeline[S ~string] struct {
	stages []S
}

// NewPipeline returns a pipeline over stages in the given order.
func NewPipeline[S ~string](stages ...S) Pipeline[S] {
	return Pipeline[S]{stages: slices.Clone(stages)}
}

var (
	LeadPipeline  = NewPipeline(model.LeadStages...)
	OrderPipeline = NewPipeline(model.OrderStages...)
)

// Stages returns the stages in pipeline order.
func (p Pipeline[S]) Stages() []S { return slices.Clone(p.stages) }

// Contains reports whether s is a stage of p.
func (p Pipeline[S]) Contains(s S) bool { return slices.Contains(p.stages, s) }

// Index returns the position of s in the pipeline, or -1.
func (p Pipeline[S]) Index(s S) int { return slices.Index(p.stages, s) }

// Transition reports whether moving from one stage to another changes anything.
// It fails only when to is not a stage of p.
func (p Pipeline[S]) Transition(from, to S) (changed bool, err error) {
	if !p.Contains(to) {
		return false, fmt.Errorf("%w: %q", ErrUnknownStage, to)
	}
	return from != to, nil
}

// FilterByStage returns the items whose current stage is exactly stage, in input order.
func FilterByStage[T Staged[S], S ~string](items []T, stage S) []T {
	out := make([]T, 0)
	for _, it := range items {
		if it.CurrentStage() == stage {
			out = append(out, it)
		}
	}
	return out
}

// Column is one stage of a board with the items currently in it.
type Column[T any, S ~string] struct {
	Stage S
	Items []T
}

// Columns splits items into one column per pipeline stage, in pipeline order.
func Columns[T Staged[S], S ~string](p Pipeline[S], items []T) []Column[T, S] {
	cols := make([]Column[T, S], 0, len(p.stages))
	for _, s := range p.stages {
		cols = append(cols, Column[T, S]{Stage: s, Items: FilterByStage(items, s)})
	}
	return cols
}
