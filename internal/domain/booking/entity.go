package booking

import (
	"time"

	"github.com/fieldserve/marketplace-core/internal/httperr"
)

// ===============================
// Booking Type
// ===============================

type Type string

const (
	TypeScheduled Type = "scheduled"
	TypeOnDemand  Type = "on_demand"
)

func IsValidType(t Type) bool {
	return t == TypeScheduled || t == TypeOnDemand
}

// ValidateSchedule enforces the schedule rules for a booking type: scheduled
// bookings need a window with end after start, on-demand bookings must not
// carry one.
func ValidateSchedule(t Type, start, end *time.Time) error {
	switch t {
	case TypeScheduled:
		if start == nil || end == nil {
			return httperr.ErrInvalidArgument("schedule_required")
		}
		if !end.After(*start) {
			return httperr.ErrInvalidArgument("schedule_end_before_start")
		}
	case TypeOnDemand:
		if start != nil || end != nil {
			return httperr.ErrInvalidArgument("schedule_not_allowed")
		}
	default:
		return httperr.ErrInvalidArgument("invalid_booking_type")
	}
	return nil
}

// ===============================
// Assignment / Bid responses
// ===============================

const (
	ResponseAccepted  = "accepted"
	ResponseDeclined  = "declined"
	ResponseWithdrawn = "withdrawn"
)

func IsValidResponse(s string) bool {
	return s == ResponseAccepted || s == ResponseDeclined || s == ResponseWithdrawn
}

// ===============================
// History enumerations
// ===============================

var historyEntryTypes = map[string]bool{
	"note":          true,
	"status_update": true,
	"milestone":     true,
	"handoff":       true,
	"document":      true,
}

var historyStatuses = map[string]bool{
	"open":        true,
	"in_progress": true,
	"blocked":     true,
	"completed":   true,
	"cancelled":   true,
}

var actorRoles = map[string]bool{
	"customer": true,
	"provider": true,
	"admin":    true,
	"system":   true,
}

func IsValidHistoryEntryType(s string) bool { return historyEntryTypes[s] }
func IsValidHistoryStatus(s string) bool    { return historyStatuses[s] }
func IsValidActorRole(s string) bool        { return actorRoles[s] }

var bidAuthorTypes = map[string]bool{
	"customer": true,
	"provider": true,
	"admin":    true,
}

func IsValidBidAuthorType(s string) bool { return bidAuthorTypes[s] }
