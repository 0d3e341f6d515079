package models

import "time"

// Order is the financial envelope created alongside a Booking by the
// purchase orchestrator.
type Order struct {
	ID string `gorm:"primaryKey;size:36" json:"id"`

	BuyerID   string `gorm:"size:36;index" json:"buyer_id"`
	ServiceID string `gorm:"size:36;index" json:"service_id"`

	Status      string  `gorm:"size:20;default:'funded'" json:"status"`
	Currency    string  `gorm:"size:3" json:"currency"`
	TotalAmount float64 `json:"total_amount"`

	ScheduledStart *time.Time `json:"scheduled_start,omitempty"`
	ScheduledEnd   *time.Time `json:"scheduled_end,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Escrow tracks held funds, 1:1 with an Order. Funding and release are
// status fields here, not gateway calls. Disputes attach to the escrow.
type Escrow struct {
	ID string `gorm:"primaryKey;size:36" json:"id"`

	OrderID string `gorm:"size:36;uniqueIndex" json:"order_id"`

	Status string `gorm:"size:20;default:'funded'" json:"status"` // funded | released | refunded | disputed

	FundedAt   time.Time  `json:"funded_at"`
	ReleasedAt *time.Time `json:"released_at,omitempty"`
	DisputedAt *time.Time `json:"disputed_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
