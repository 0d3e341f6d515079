package booking

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fieldserve/marketplace-core/internal/analytics"
	domain "github.com/fieldserve/marketplace-core/internal/domain/booking"
	"github.com/fieldserve/marketplace-core/internal/httperr"
	"github.com/fieldserve/marketplace-core/internal/models"
)

// Dispute resolutions.
const (
	ResolutionResume = "resume"
	ResolutionRefund = "refund"
)

type TriggerDispute struct {
	repo domain.Repository
	log  *zap.Logger
}

func NewTriggerDispute(repo domain.Repository, log *zap.Logger) *TriggerDispute {
	return &TriggerDispute{repo: repo, log: log}
}

// Execute raises a dispute. Idempotent when the booking is already disputed;
// otherwise the regular transition table decides whether the current status
// allows it. The escrow, when present, is marked disputed in the same
// transaction.
func (uc *TriggerDispute) Execute(
	ctx context.Context,
	bookingID string,
	reason string,
	actorID string,
) (*models.Booking, error) {

	if strings.TrimSpace(reason) == "" {
		return nil, httperr.ErrInvalidArgument("dispute_reason_required")
	}

	var out *models.Booking
	err := uc.repo.Transaction(ctx, func(uow domain.Repository) error {
		b, err := uow.GetBookingForUpdate(ctx, bookingID)
		if err != nil {
			return notFoundAs(err, "booking_not_found")
		}

		if b.Status == string(domain.StatusDisputed) {
			out = b
			return nil
		}

		now := domain.Now()
		b.Meta.Dispute = &models.DisputeInfo{
			Reason:   reason,
			RaisedBy: actorID,
			RaisedAt: now,
		}

		if err := transitionBooking(ctx, uow, b, domain.StatusDisputed, actorID, reason); err != nil {
			return err
		}

		if b.EscrowID != nil && b.OrderID != nil {
			esc, err := uow.GetEscrowByOrderForUpdate(ctx, *b.OrderID)
			if err != nil {
				return notFoundAs(err, "escrow_not_found")
			}
			esc.Status = "disputed"
			esc.DisputedAt = &now
			if err := uow.SaveEscrow(ctx, esc); err != nil {
				return err
			}
		}

		ev := analytics.NewEvent(
			analytics.EventDisputeRaised,
			b.ID,
			actorID,
			b.CompanyID,
			now,
			map[string]any{"reason": reason},
		)
		if err := uow.RecordEvent(ctx, ev); err != nil {
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

// ======================================================
// RESOLUTION
// ======================================================

type ResolveDispute struct {
	repo domain.Repository
	log  *zap.Logger
}

func NewResolveDispute(repo domain.Repository, log *zap.Logger) *ResolveDispute {
	return &ResolveDispute{repo: repo, log: log}
}

// Execute closes an open dispute. "resume" puts the booking back in
// progress; "refund" refunds the escrow and then cancels the booking through
// the regular table (disputed -> in_progress -> cancelled).
func (uc *ResolveDispute) Execute(
	ctx context.Context,
	bookingID string,
	resolution string,
	actorID string,
) (*models.Booking, error) {

	if resolution != ResolutionResume && resolution != ResolutionRefund {
		return nil, httperr.ErrInvalidArgument("invalid_resolution")
	}

	var out *models.Booking
	err := uc.repo.Transaction(ctx, func(uow domain.Repository) error {
		b, err := uow.GetBookingForUpdate(ctx, bookingID)
		if err != nil {
			return notFoundAs(err, "booking_not_found")
		}

		if b.Status != string(domain.StatusDisputed) || b.Meta.Dispute == nil {
			return httperr.ErrPreconditionFailed("booking_not_disputed")
		}

		now := domain.Now()
		b.Meta.Dispute.Resolution = resolution
		b.Meta.Dispute.ResolvedBy = actorID
		b.Meta.Dispute.ResolvedAt = &now

		if err := transitionBooking(ctx, uow, b, domain.StatusInProgress, actorID, "dispute_"+resolution); err != nil {
			return err
		}

		switch resolution {
		case ResolutionResume:
			if b.OrderID != nil {
				if err := uc.moveEscrow(ctx, uow, *b.OrderID, "funded", nil); err != nil {
					return err
				}
			}
		case ResolutionRefund:
			if err := transitionBooking(ctx, uow, b, domain.StatusCancelled, actorID, "dispute_refund"); err != nil {
				return err
			}
			if b.OrderID != nil {
				if err := uc.moveEscrow(ctx, uow, *b.OrderID, "refunded", &now); err != nil {
					return err
				}
				ev := analytics.NewEvent(
					analytics.EventEscrowRefunded,
					*b.OrderID,
					actorID,
					b.CompanyID,
					now,
					nil,
				)
				if err := uow.RecordEvent(ctx, ev); err != nil {
					return err
				}
			}
		}

		ev := analytics.NewEvent(
			analytics.EventDisputeResolved,
			b.ID,
			actorID,
			b.CompanyID,
			now,
			map[string]any{"resolution": resolution},
		)
		if err := uow.RecordEvent(ctx, ev); err != nil {
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

func (uc *ResolveDispute) moveEscrow(
	ctx context.Context,
	uow domain.Repository,
	orderID string,
	status string,
	releasedAt *time.Time,
) error {
	esc, err := uow.GetEscrowByOrderForUpdate(ctx, orderID)
	if err != nil {
		return notFoundAs(err, "escrow_not_found")
	}
	esc.Status = status
	if releasedAt != nil {
		esc.ReleasedAt = releasedAt
	}
	return uow.SaveEscrow(ctx, esc)
}
