package models

import "time"

// BookingHistoryEntry is an operational timeline entry on a booking. Its
// lifecycle is independent of the booking status.
type BookingHistoryEntry struct {
	ID string `gorm:"primaryKey;size:36" json:"id"`

	BookingID string `gorm:"size:36;index" json:"booking_id"`

	Title     string `gorm:"size:200" json:"title"`
	EntryType string `gorm:"size:30" json:"entry_type"` // note | status_update | milestone | handoff | document
	Status    string `gorm:"size:20" json:"status"`     // open | in_progress | blocked | completed | cancelled
	ActorID   string `gorm:"size:36" json:"actor_id"`
	ActorRole string `gorm:"size:20" json:"actor_role"` // customer | provider | admin | system

	OccurredAt  time.Time           `json:"occurred_at"`
	Attachments []HistoryAttachment `gorm:"serializer:json;type:text" json:"attachments,omitempty"`
	Meta        map[string]any      `gorm:"serializer:json;type:text" json:"meta,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type HistoryAttachment struct {
	URL   string `json:"url"`
	Label string `json:"label"`
	Type  string `json:"type"`
}
