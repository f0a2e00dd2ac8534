package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReminderOverdue(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	yesterday := NewTimestamp(now.Add(-24 * time.Hour))
	tomorrow := NewTimestamp(now.Add(24 * time.Hour))

	tests := []struct {
		name     string
		reminder Reminder
		want     bool
	}{
		{name: "past and open", reminder: Reminder{ReminderDate: yesterday}, want: true},
		{name: "past and completed", reminder: Reminder{ReminderDate: yesterday, IsCompleted: true}, want: false},
		{name: "future and open", reminder: Reminder{ReminderDate: tomorrow}, want: false},
		{name: "exactly now", reminder: Reminder{ReminderDate: NewTimestamp(now)}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.reminder.Overdue(now))
		})
	}
}

func TestOverdueReminders(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	reminders := []Reminder{
		{ID: 1, ReminderDate: NewTimestamp(now.Add(-time.Hour))},
		{ID: 2, ReminderDate: NewTimestamp(now.Add(-time.Hour)), IsCompleted: true},
		{ID: 3, ReminderDate: NewTimestamp(now.Add(time.Hour))},
		{ID: 4, ReminderDate: NewTimestamp(now.Add(-48 * time.Hour))},
	}

	got := OverdueReminders(reminders, now)
	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].ID)
	assert.Equal(t, int64(4), got[1].ID)
	assert.Empty(t, OverdueReminders(nil, now))
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{in: "2024-05-01T09:30:00Z", want: time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)},
		{in: "2024-05-01T11:30:00+02:00", want: time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)},
		{in: "2024-05-01T09:30:00.123456", want: time.Date(2024, 5, 1, 9, 30, 0, 123456000, time.UTC)},
		{in: "2024-05-01T09:30:00", want: time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)},
		{in: "2024-05-01", want: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimestamp(tt.in)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got.Time), "got %s", got.Time)
		})
	}

	_, err := ParseTimestamp("yesterday")
	assert.Error(t, err)
}

func TestLeadJSONFieldNames(t *testing.T) {
	notes := "met at expo"
	p := LeadPayload{
		Name:            "Ann",
		Contact:         "ann@x.com",
		Company:         "Acme",
		ProductInterest: "Widget",
		Stage:           LeadNew,
		Notes:           &notes,
	}
	b, err := json.Marshal(p)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	assert.Equal(t, "Widget", m["product_interest"])
	assert.Equal(t, "New", m["stage"])
	assert.Contains(t, m, "follow_up_date")
	assert.Nil(t, m["follow_up_date"])
}

func TestDecodeNaiveBackendTimestamps(t *testing.T) {
	raw := `{"id":3,"lead_id":7,"stage":"Dispatched","courier":null,"tracking_number":"TN1",
		"dispatch_date":"2024-05-02T00:00:00","notes":null,"created_at":"2024-05-01T10:00:00.000001"}`

	var o Order
	require.NoError(t, json.Unmarshal([]byte(raw), &o))
	assert.Equal(t, OrderDispatched, o.Stage)
	require.NotNil(t, o.DispatchDate)
	assert.Equal(t, 2, o.DispatchDate.Day())
	assert.Nil(t, o.Courier)
	assert.Equal(t, "TN1", *o.TrackingNumber)
}

func TestOwnerPersisted(t *testing.T) {
	assert.False(t, Owner{Type: OwnerLead}.Persisted())
	assert.True(t, Owner{Type: OwnerOrder, ID: 4}.Persisted())
	assert.True(t, OwnerLead.Valid())
	assert.False(t, OwnerType("invoice").Valid())
}
