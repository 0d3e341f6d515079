package models

import "time"

// BookingAssignment is one row per (booking, provider) pair. Duplicates are
// never created; the repository find-or-creates under lock.
type BookingAssignment struct {
	ID string `gorm:"primaryKey;size:36" json:"id"`

	BookingID  string `gorm:"size:36;index:idx_assignment_pair,unique" json:"booking_id"`
	ProviderID string `gorm:"size:36;index:idx_assignment_pair,unique" json:"provider_id"`

	Status string `gorm:"size:20;default:'pending'" json:"status"` // pending | accepted | declined | withdrawn
	Role   string `gorm:"size:30" json:"role,omitempty"`

	AssignedAt     time.Time  `json:"assigned_at"`
	AcknowledgedAt *time.Time `json:"acknowledged_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
