package form

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"trackflow/internal/model"
)

var ErrInvalidDate = errors.New("invalid date")

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02T15:04"
)

// ParseDate parses a date-only field (YYYY-MM-DD) as midnight UTC.
// An empty value means the field is unset.
func ParseDate(s string) (*model.Timestamp, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(dateLayout, s, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("%w: %q, want YYYY-MM-DD", ErrInvalidDate, s)
	}
	return model.TimestampPtr(t), nil
}

// ParseDateTime parses a date-time field (YYYY-MM-DDTHH:MM, seconds and zone optional).
// An empty value yields the zero Timestamp, which the reminder form rejects as missing.
func ParseDateTime(s string) (model.Timestamp, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return model.Timestamp{}, nil
	}
	if t, err := time.ParseInLocation(dateTimeLayout, s, time.UTC); err == nil {
		return model.NewTimestamp(t), nil
	}
	ts, err := model.ParseTimestamp(s)
	if err != nil {
		return model.Timestamp{}, fmt.Errorf("%w: %q, want YYYY-MM-DDTHH:MM", ErrInvalidDate, s)
	}
	return ts, nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// LeadInput is the raw text of the lead form.
type LeadInput struct {
	Name            string
	Contact         string
	Company         string
	ProductInterest string
	Stage           string
	FollowUpDate    string
	Notes           string
}

// Payload converts the form into a request body. A blank stage defaults to New.
func (in LeadInput) Payload() (model.LeadPayload, error) {
	followUp, err := ParseDate(in.FollowUpDate)
	if err != nil {
		return model.LeadPayload{}, fmt.Errorf("follow_up_date: %w", err)
	}
	stage := model.LeadStage(strings.TrimSpace(in.Stage))
	if stage == "" {
		stage = model.LeadNew
	}
	return model.LeadPayload{
		Name:            strings.TrimSpace(in.Name),
		Contact:         strings.TrimSpace(in.Contact),
		Company:         strings.TrimSpace(in.Company),
		ProductInterest: strings.TrimSpace(in.ProductInterest),
		Stage:           stage,
		FollowUpDate:    followUp,
		Notes:           optional(in.Notes),
	}, nil
}

// OrderInput is the raw text of the order form.
type OrderInput struct {
	LeadID         int64
	Stage          string
	Courier        string
	TrackingNumber string
	DispatchDate   string
	Notes          string
}

// Payload converts the form into a request body. A blank stage defaults to Order Received.
func (in OrderInput) Payload() (model.OrderPayload, error) {
	dispatch, err := ParseDate(in.DispatchDate)
	if err != nil {
		return model.OrderPayload{}, fmt.Errorf("dispatch_date: %w", err)
	}
	stage := model.OrderStage(strings.TrimSpace(in.Stage))
	if stage == "" {
		stage = model.OrderReceived
	}
	return model.OrderPayload{
		LeadID:         in.LeadID,
		Stage:          stage,
		Courier:        optional(in.Courier),
		TrackingNumber: optional(in.TrackingNumber),
		DispatchDate:   dispatch,
		Notes:          optional(in.Notes),
	}, nil
}

// ReminderInput is the raw text of the reminder form.
type ReminderInput struct {
	Title        string
	Description  string
	ReminderDate string
	IsCompleted  bool
}

func (in ReminderInput) Payload() (model.ReminderPayload, error) {
	at, err := ParseDateTime(in.ReminderDate)
	if err != nil {
		return model.ReminderPayload{}, fmt.Errorf("reminder_date: %w", err)
	}
	return model.ReminderPayload{
		Title:        strings.TrimSpace(in.Title),
		Description:  optional(in.Description),
		ReminderDate: at,
		IsCompleted:  in.IsCompleted,
	}, nil
}
