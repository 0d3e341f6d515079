package models

import "time"

// BookingBid is a provider's price proposal for a booking. One row per
// (booking, provider); resubmission appends to RevisionHistory instead of
// creating a second row.
type BookingBid struct {
	ID string `gorm:"primaryKey;size:36" json:"id"`

	BookingID  string `gorm:"size:36;index:idx_bid_pair,unique" json:"booking_id"`
	ProviderID string `gorm:"size:36;index:idx_bid_pair,unique" json:"provider_id"`

	Amount   float64 `json:"amount"`
	Currency string  `gorm:"size:3" json:"currency"`
	Status   string  `gorm:"size:20;default:'pending'" json:"status"` // pending | accepted | declined | withdrawn

	RevisionHistory []BidRevision   `gorm:"serializer:json;type:text" json:"revision_history"`
	AuditLog        []BidAuditEntry `gorm:"serializer:json;type:text" json:"audit_log"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type BidRevision struct {
	Amount    float64   `json:"amount"`
	Currency  string    `json:"currency"`
	Message   string    `json:"message,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type BidAuditEntry struct {
	Action  string         `json:"action"`
	Actor   string         `json:"actor"`
	At      time.Time      `json:"at"`
	Payload map[string]any `json:"payload,omitempty"`
}

// BookingBidComment is a threaded message on a bid, immutable once created.
type BookingBidComment struct {
	ID string `gorm:"primaryKey;size:36" json:"id"`

	BidID      string `gorm:"size:36;index" json:"bid_id"`
	AuthorID   string `gorm:"size:36" json:"author_id"`
	AuthorType string `gorm:"size:20" json:"author_type"` // customer | provider | admin
	Body       string `gorm:"type:text" json:"body"`

	CreatedAt time.Time `json:"created_at"`
}
