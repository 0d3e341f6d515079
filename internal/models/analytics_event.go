package models

import "time"

// AnalyticsEvent is the append-only audit trail row. Events are written in
// the same transaction as the mutation they describe; there is no read path
// in the core.
type AnalyticsEvent struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Name     string `gorm:"size:60;not null;index" json:"name"`
	EntityID string `gorm:"size:36;index" json:"entity_id"`
	ActorID  string `gorm:"size:36" json:"actor_id"`
	TenantID string `gorm:"size:36" json:"tenant_id"`

	OccurredAt time.Time `json:"occurred_at"`
	Metadata   string    `gorm:"type:text" json:"metadata,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
