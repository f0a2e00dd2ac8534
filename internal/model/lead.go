package model

// LeadStage is a position in the lead pipeline.
type LeadStage string

const (
	LeadNew          LeadStage = "New"
	LeadContacted    LeadStage = "Contacted"
	LeadQualified    LeadStage = "Qualified"
	LeadProposalSent LeadStage = "Proposal Sent"
	LeadWon          LeadStage = "Won"
	LeadLost         LeadStage = "Lost"
)

// LeadStages lists every lead stage in pipeline order.
var LeadStages = []LeadStage{LeadNew, LeadContacted, LeadQualified, LeadProposalSent, LeadWon, LeadLost}

// Lead is a prospective customer tracked through the sales pipeline.
type Lead struct {
	ID              int64      `json:"id"`
	Name            string     `json:"name"`
	Contact         string     `json:"contact"`
	Company         string     `json:"company"`
	ProductInterest string     `json:"product_interest"`
	Stage           LeadStage  `json:"stage"`
	FollowUpDate    *Timestamp `json:"follow_up_date"`
	Notes           *string    `json:"notes"`
	CreatedAt       *Timestamp `json:"created_at,omitempty"`
	UpdatedAt       *Timestamp `json:"updated_at,omitempty"`
}

// LeadPayload is the request body for lead create and update.
type LeadPayload struct {
	Name            string     `json:"name"`
	Contact         string     `json:"contact"`
	Company         string     `json:"company"`
	ProductInterest string     `json:"product_interest"`
	Stage           LeadStage  `json:"stage"`
	FollowUpDate    *Timestamp `json:"follow_up_date"`
	Notes           *string    `json:"notes"`
}

// CurrentStage implements the workflow staged contract.
func (l Lead) CurrentStage() LeadStage { return l.Stage }

// Payload returns the full update payload for the lead's current values.
func (l Lead) Payload() LeadPayload {
	return LeadPayload{
		Name:            l.Name,
		Contact:         l.Contact,
		Company:         l.Company,
		ProductInterest: l.ProductInterest,
		Stage:           l.Stage,
		FollowUpDate:    l.FollowUpDate,
		Notes:           l.Notes,
	}
}
