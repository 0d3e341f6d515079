package models

import "time"

// Booking is the aggregate root of the marketplace core. Status is owned by
// the state machine in domain/booking; nothing else writes it.
type Booking struct {
	ID string `gorm:"primaryKey;size:36" json:"id"`

	Status      string `gorm:"size:30;index;default:'pending'" json:"status"`
	Type        string `gorm:"size:20" json:"type"`         // scheduled | on_demand
	DemandLevel string `gorm:"size:20" json:"demand_level"` // low | medium | high (lookup tag only)

	CustomerID string `gorm:"size:36;index" json:"customer_id"`
	CompanyID  string `gorm:"size:36;index" json:"company_id"`
	ZoneID     string `gorm:"size:36;index" json:"zone_id"`

	ServiceID *string `gorm:"size:36" json:"service_id,omitempty"`
	OrderID   *string `gorm:"size:36" json:"order_id,omitempty"`
	EscrowID  *string `gorm:"size:36" json:"escrow_id,omitempty"`

	ScheduledStart *time.Time `json:"scheduled_start,omitempty"`
	ScheduledEnd   *time.Time `json:"scheduled_end,omitempty"`

	// Computed once at creation, never recomputed on reschedule.
	SlaExpiresAt time.Time `json:"sla_expires_at"`

	// Financial snapshot frozen at creation time.
	Currency         string  `gorm:"size:3" json:"currency"`
	BaseAmount       float64 `json:"base_amount"`
	CommissionAmount float64 `json:"commission_amount"`
	TaxAmount        float64 `json:"tax_amount"`
	TotalAmount      float64 `json:"total_amount"`
	CommissionRate   float64 `json:"commission_rate"`
	TaxRate          float64 `json:"tax_rate"`

	Meta BookingMeta `gorm:"serializer:json;type:text" json:"meta"`

	LastStatusTransitionAt *time.Time `json:"last_status_transition_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ===============================
// Meta side-channel
// ===============================

// BookingMeta replaces the old free-form JSON blob with named fields so each
// subsystem writes its own namespace. Extra is for operator annotations only.
type BookingMeta struct {
	Reference string `json:"reference,omitempty"`

	LastStatusContext *StatusContext   `json:"last_status_context,omitempty"`
	Dispute           *DisputeInfo     `json:"dispute,omitempty"`
	Pricing           *PricingSnapshot `json:"pricing,omitempty"`

	LastAssignmentAt     *time.Time `json:"last_assignment_at,omitempty"`
	AssignmentAcceptedAt *time.Time `json:"assignment_accepted_at,omitempty"`

	BidAcceptedAt *time.Time `json:"bid_accepted_at,omitempty"`
	BidAcceptedBy string     `json:"bid_accepted_by,omitempty"`

	Checklist []string `json:"checklist,omitempty"`
	Tags      []string `json:"tags,omitempty"`

	Extra map[string]any `json:"extra,omitempty"`
}

type StatusContext struct {
	ActorID   string    `json:"actor_id"`
	Reason    string    `json:"reason,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

type DisputeInfo struct {
	Reason     string     `json:"reason"`
	RaisedBy   string     `json:"raised_by"`
	RaisedAt   time.Time  `json:"raised_at"`
	Resolution string     `json:"resolution,omitempty"`
	ResolvedBy string     `json:"resolved_by,omitempty"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
}

// PricingSnapshot records the rates in force when the booking was priced.
// Rate drift after creation never changes a booking's totals.
type PricingSnapshot struct {
	SourceCurrency string    `json:"source_currency"`
	CommissionRate float64   `json:"commission_rate"`
	TaxRate        float64   `json:"tax_rate"`
	PricedAt       time.Time `json:"priced_at"`
}
