package booking

import (
	"context"

	"go.uber.org/zap"

	"github.com/fieldserve/marketplace-core/internal/analytics"
	domain "github.com/fieldserve/marketplace-core/internal/domain/booking"
	"github.com/fieldserve/marketplace-core/internal/models"
)

type TransitionStatus struct {
	repo domain.Repository
	log  *zap.Logger
}

func NewTransitionStatus(repo domain.Repository, log *zap.Logger) *TransitionStatus {
	return &TransitionStatus{repo: repo, log: log}
}

// Execute moves a booking to nextStatus under the transition table. Asking
// for the current status is a no-op: the booking comes back unchanged and no
// event is written.
func (uc *TransitionStatus) Execute(
	ctx context.Context,
	bookingID string,
	nextStatus domain.Status,
	actorID string,
	reason string,
) (*models.Booking, error) {

	var out *models.Booking
	err := uc.repo.Transaction(ctx, func(uow domain.Repository) error {
		b, err := uow.GetBookingForUpdate(ctx, bookingID)
		if err != nil {
			return notFoundAs(err, "booking_not_found")
		}

		if b.Status == string(nextStatus) {
			out = b
			return nil
		}

		if err := transitionBooking(ctx, uow, b, nextStatus, actorID, reason); err != nil {
			return err
		}

		out = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

// transitionBooking applies one validated status change: stamps the
// transition timestamp and context, persists the booking and writes the
// status_transition event in the caller's transaction. It is the only write
// path for Booking.Status.
func transitionBooking(
	ctx context.Context,
	uow domain.Repository,
	b *models.Booking,
	nextStatus domain.Status,
	actorID string,
	reason string,
) error {
	from := domain.Status(b.Status)

	if err := domain.AssertTransition(from, nextStatus); err != nil {
		return err
	}

	now := domain.Now()
	b.Status = string(nextStatus)
	b.LastStatusTransitionAt = &now
	b.Meta.LastStatusContext = &models.StatusContext{
		ActorID:   actorID,
		Reason:    reason,
		UpdatedAt: now,
	}

	if err := uow.SaveBooking(ctx, b); err != nil {
		return err
	}

	ev := analytics.NewEvent(
		analytics.EventStatusTransition,
		b.ID,
		actorID,
		b.CompanyID,
		now,
		map[string]any{
			"from":    string(from),
			"to":      string(nextStatus),
			"reason":  reason,
			"zone_id": b.ZoneID,
			"type":    b.Type,
		},
	)
	return uow.RecordEvent(ctx, ev)
}
