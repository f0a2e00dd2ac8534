package model

// OrderStage is a position in the order fulfilment pipeline.
type OrderStage string

const (
	OrderReceived        OrderStage = "Order Received"
	OrderInDevelopment   OrderStage = "In Development"
	OrderReadyToDispatch OrderStage = "Ready to Dispatch"
	OrderDispatched      OrderStage = "Dispatched"
)

// OrderStages lists every order stage in pipeline order.
var OrderStages = []OrderStage{OrderReceived, OrderInDevelopment, OrderReadyToDispatch, OrderDispatched}

// Order is fulfilment work originating from a won lead.
type Order struct {
	ID             int64      `json:"id"`
	LeadID         int64      `json:"lead_id"`
	Stage          OrderStage `json:"stage"`
	Courier        *string    `json:"courier"`
	TrackingNumber *string    `json:"tracking_number"`
	DispatchDate   *Timestamp `json:"dispatch_date"`
	Notes          *string    `json:"notes"`
	CreatedAt      *Timestamp `json:"created_at,omitempty"`
	UpdatedAt      *Timestamp `json:"updated_at,omitempty"`
}

// OrderPayload is the request body for order create and update.
type OrderPayload struct {
	LeadID         int64      `json:"lead_id"`
	Stage          OrderStage `json:"stage"`
	Courier        *string    `json:"courier"`
	TrackingNumber *string    `json:"tracking_number"`
	DispatchDate   *Timestamp `json:"dispatch_date"`
	Notes          *string    `json:"notes"`
}

func (o Order) CurrentStage() OrderStage { return o.Stage }

// Payload returns the full update payload for the order's current values.
func (o Order) Payload() OrderPayload {
	return OrderPayload{
		LeadID:         o.LeadID,
		Stage:          o.Stage,
		Courier:        o.Courier,
		TrackingNumber: o.TrackingNumber,
		DispatchDate:   o.DispatchDate,
		Notes:          o.Notes,
	}
}
