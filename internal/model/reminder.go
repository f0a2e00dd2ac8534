package model

import "time"

// Reminder is a dated follow-up task.
type Reminder struct {
	ID           int64      `json:"id"`
	Title        string     `json:"title"`
	Description  *string    `json:"description"`
	ReminderDate Timestamp  `json:"reminder_date"`
	IsCompleted  bool       `json:"is_completed"`
	LeadID       *int64     `json:"lead_id,omitempty"`
	OrderID      *int64     `json:"order_id,omitempty"`
	CreatedAt    *Timestamp `json:"created_at,omitempty"`
}

// ReminderPayload is the request body for reminder create and update.
type ReminderPayload struct {
	Title        string    `json:"title"`
	Description  *string   `json:"description"`
	ReminderDate Timestamp `json:"reminder_date"`
	IsCompleted  bool      `json:"is_completed"`
}

// Overdue reports whether the reminder is due before now and still open.
// It is a display predicate only and is never sent to the backend.
func (r Reminder) Overdue(now time.Time) bool {
	return !r.IsCompleted && r.ReminderDate.Before(now)
}

// Payload returns the full update payload for the reminder's current values.
func (r Reminder) Payload() ReminderPayload {
	return ReminderPayload{
		Title:        r.Title,
		Description:  r.Description,
		ReminderDate: r.ReminderDate,
		IsCompleted:  r.IsCompleted,
	}
}

// OverdueReminders returns the reminders that are overdue at now, in input order.
func OverdueReminders(reminders []Reminder, now time.Time) []Reminder {
	out := make([]Reminder, 0)
	for _, r := range reminders {
		if r.Overdue(now) {
			out = append(out, r)
		}
	}
	return out
}
