package booking

import "github.com/fieldserve/marketplace-core/internal/httperr"

// ===============================
// Booking Status
// ===============================

type Status string

const (
	StatusPending            Status = "pending"
	StatusAwaitingAssignment Status = "awaiting_assignment"
	StatusScheduled          Status = "scheduled"
	StatusInProgress         Status = "in_progress"
	StatusCompleted          Status = "completed"
	StatusCancelled          Status = "cancelled"
	StatusDisputed           Status = "disputed"
)

// transitions is the authoritative table. Terminal states have no targets.
var transitions = map[Status][]Status{
	StatusPending:            {StatusAwaitingAssignment, StatusCancelled},
	StatusAwaitingAssignment: {StatusScheduled, StatusInProgress, StatusCancelled},
	StatusScheduled:          {StatusInProgress, StatusCancelled},
	StatusInProgress:         {StatusCompleted, StatusDisputed, StatusCancelled},
	StatusCompleted:          {},
	StatusCancelled:          {},
	StatusDisputed:           {StatusInProgress},
}

func InitialStatus() Status {
	return StatusPending
}

func IsValidStatus(s Status) bool {
	_, ok := transitions[s]
	return ok
}

func IsTerminal(s Status) bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransition reports whether from -> to is in the table. A same-status
// pair is not a transition; callers treat it as a no-op before asking.
func CanTransition(from, to Status) bool {
	for _, t := range transitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// AssertTransition validates from -> to and returns an illegal_transition
// business error otherwise.
func AssertTransition(from, to Status) error {
	if !IsValidStatus(to) {
		return httperr.ErrInvalidArgument("unknown_status")
	}
	if !CanTransition(from, to) {
		return httperr.ErrIllegalTransition("illegal_transition")
	}
	return nil
}
