package model

// DashboardStats is the server-computed aggregate shown on the dashboard.
// It is fetched whole and never modified locally.
type DashboardStats struct {
	TotalLeads            int     `json:"total_leads"`
	OpenLeads             int     `json:"open_leads"`
	WonLeads              int     `json:"won_leads"`
	LostLeads             int     `json:"lost_leads"`
	ConversionRate        float64 `json:"conversion_rate"`
	OrdersReceived        int     `json:"orders_received"`
	OrdersInDevelopment   int     `json:"orders_in_development"`
	OrdersReadyToDispatch int     `json:"orders_ready_to_dispatch"`
	OrdersDispatched      int     `json:"orders_dispatched"`
	PendingReminders      int     `json:"pending_reminders"`
}

// ActiveOrders counts orders that are received or in development.
func (d DashboardStats) ActiveOrders() int {
	return d.OrdersReceived + d.OrdersInDevelopment
}
