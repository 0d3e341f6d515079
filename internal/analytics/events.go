package analytics

import (
	"encoding/json"
	"time"

	"github.com/fieldserve/marketplace-core/internal/models"
)

// Event names. One event per meaningful mutation, written in the same
// transaction as the mutation itself.
const (
	EventBookingCreated      = "booking.created"
	EventStatusTransition    = "booking.status_transition"
	EventDisputeRaised       = "booking.dispute.raised"
	EventDisputeResolved     = "booking.dispute.resolved"
	EventAssignmentCreated   = "booking.assignment.created"
	EventAssignmentResponded = "booking.assignment.responded"
	EventBidSubmitted        = "booking.bid.submitted"
	EventBidStatusChanged    = "booking.bid.status_changed"
	EventBidCommentAdded     = "booking.bid.comment_added"
	EventHistoryEntryCreated = "booking.history.created"
	EventHistoryEntryUpdated = "booking.history.updated"
	EventHistoryEntryDeleted = "booking.history.deleted"
	EventPurchaseCompleted   = "purchase.completed"
	EventEscrowReleased      = "escrow.released"
	EventEscrowRefunded      = "escrow.refunded"
)

// NewEvent builds an analytics row. Metadata that fails to marshal is
// dropped silently; the event itself still records.
func NewEvent(name, entityID, actorID, tenantID string, at time.Time, metadata any) models.AnalyticsEvent {
	var metaJSON string
	if metadata != nil {
		if b, err := json.Marshal(metadata); err == nil {
			metaJSON = string(b)
		}
	}

	return models.AnalyticsEvent{
		Name:       name,
		EntityID:   entityID,
		ActorID:    actorID,
		TenantID:   tenantID,
		OccurredAt: at,
		Metadata:   metaJSON,
	}
}
