package booking

import (
	"context"

	"go.uber.org/zap"

	"github.com/fieldserve/marketplace-core/internal/analytics"
	domain "github.com/fieldserve/marketplace-core/internal/domain/booking"
	"github.com/fieldserve/marketplace-core/internal/httperr"
	"github.com/fieldserve/marketplace-core/internal/models"
)

// ======================================================
// ASSIGN PROVIDERS
// ======================================================

type AssignmentEntry struct {
	ProviderID string
	Role       string
}

// AssignmentResult distinguishes the idempotent path: Created is false when
// the (booking, provider) row already existed and was returned unchanged.
type AssignmentResult struct {
	Assignment *models.BookingAssignment
	Created    bool
}

type AssignProviders struct {
	repo domain.Repository
	log  *zap.Logger
}

func NewAssignProviders(repo domain.Repository, log *zap.Logger) *AssignProviders {
	return &AssignProviders{repo: repo, log: log}
}

func (uc *AssignProviders) Execute(
	ctx context.Context,
	bookingID string,
	entries []AssignmentEntry,
	actorID string,
) ([]AssignmentResult, error) {

	if len(entries) == 0 {
		return nil, httperr.ErrInvalidArgument("assignments_required")
	}
	for _, e := range entries {
		if e.ProviderID == "" {
			return nil, httperr.ErrInvalidArgument("provider_id_required")
		}
	}

	var results []AssignmentResult
	err := uc.repo.Transaction(ctx, func(uow domain.Repository) error {
		// Booking row first; lock order is always booking -> assignment.
		b, err := uow.GetBookingForUpdate(ctx, bookingID)
		if err != nil {
			return notFoundAs(err, "booking_not_found")
		}
		if domain.IsTerminal(domain.Status(b.Status)) {
			return httperr.ErrPreconditionFailed("booking_closed")
		}

		now := domain.Now()
		var events []models.AnalyticsEvent

		results = results[:0]
		for _, e := range entries {
			row, created, err := uow.FindOrCreateAssignment(ctx, &models.BookingAssignment{
				BookingID:  bookingID,
				ProviderID: e.ProviderID,
				Role:       e.Role,
				Status:     "pending",
				AssignedAt: now,
			})
			if err != nil {
				return err
			}
			results = append(results, AssignmentResult{Assignment: row, Created: created})

			if created {
				events = append(events, analytics.NewEvent(
					analytics.EventAssignmentCreated,
					bookingID,
					actorID,
					b.CompanyID,
					now,
					map[string]any{"provider_id": e.ProviderID, "role": e.Role},
				))
			}
		}

		if len(events) == 0 {
			return nil
		}

		b.Meta.LastAssignmentAt = &now
		if b.Status == string(domain.StatusPending) {
			if err := transitionBooking(ctx, uow, b, domain.StatusAwaitingAssignment, actorID, "providers_assigned"); err != nil {
				return err
			}
		} else if err := uow.SaveBooking(ctx, b); err != nil {
			return err
		}

		return uow.RecordEvents(ctx, events)
	})
	if err != nil {
		return nil, err
	}

	return results, nil
}

// ======================================================
// RECORD ASSIGNMENT RESPONSE
// ======================================================

type RecordAssignmentResponse struct {
	repo domain.Repository
	log  *zap.Logger
}

func NewRecordAssignmentResponse(repo domain.Repository, log *zap.Logger) *RecordAssignmentResponse {
	return &RecordAssignmentResponse{repo: repo, log: log}
}

// Execute records a provider's answer. The first acceptance ever seen on the
// booking drives the status transition (on_demand -> in_progress, otherwise
// -> scheduled); later acceptances on multi-provider bookings do not.
// Booking and assignment rows are locked so two racing acceptances cannot
// both observe an unset acceptance stamp.
func (uc *RecordAssignmentResponse) Execute(
	ctx context.Context,
	bookingID string,
	providerID string,
	status string,
) (*models.BookingAssignment, error) {

	if !domain.IsValidResponse(status) {
		return nil, httperr.ErrInvalidArgument("invalid_response_status")
	}

	var out *models.BookingAssignment
	err := uc.repo.Transaction(ctx, func(uow domain.Repository) error {
		b, err := uow.GetBookingForUpdate(ctx, bookingID)
		if err != nil {
			return notFoundAs(err, "booking_not_found")
		}

		a, err := uow.GetAssignmentForUpdate(ctx, bookingID, providerID)
		if err != nil {
			return notFoundAs(err, "assignment_not_found")
		}

		now := domain.Now()
		a.Status = status
		if status == domain.ResponseAccepted {
			a.AcknowledgedAt = &now
		}
		if err := uow.SaveAssignment(ctx, a); err != nil {
			return err
		}

		ev := analytics.NewEvent(
			analytics.EventAssignmentResponded,
			bookingID,
			providerID,
			b.CompanyID,
			now,
			map[string]any{"provider_id": providerID, "status": status},
		)
		if err := uow.RecordEvent(ctx, ev); err != nil {
			return err
		}

		if status == domain.ResponseAccepted && b.Meta.AssignmentAcceptedAt == nil {
			b.Meta.AssignmentAcceptedAt = &now

			target := domain.StatusScheduled
			if b.Type == string(domain.TypeOnDemand) {
				target = domain.StatusInProgress
			}
			if err := transitionBooking(ctx, uow, b, target, providerID, "assignment_accepted"); err != nil {
				return err
			}
		}

		out = a
		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

// ======================================================
// LIST
// ======================================================

type ListAssignments struct {
	repo domain.Repository
}

func NewListAssignments(repo domain.Repository) *ListAssignments {
	return &ListAssignments{repo: repo}
}

func (uc *ListAssignments) Execute(
	ctx context.Context,
	bookingID string,
) ([]models.BookingAssignment, error) {

	if _, err := uc.repo.GetBooking(ctx, bookingID); err != nil {
		return nil, notFoundAs(err, "booking_not_found")
	}
	return uc.repo.ListAssignments(ctx, bookingID)
}
