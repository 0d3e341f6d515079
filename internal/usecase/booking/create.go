package booking

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/fieldserve/marketplace-core/internal/analytics"
	domain "github.com/fieldserve/marketplace-core/internal/domain/booking"
	"github.com/fieldserve/marketplace-core/internal/finance"
	"github.com/fieldserve/marketplace-core/internal/httperr"
	"github.com/fieldserve/marketplace-core/internal/models"
)

// ======================================================
// INPUT
// ======================================================

type CreateBookingInput struct {
	CustomerID string
	CompanyID  string
	ZoneID     string

	Type        domain.Type
	DemandLevel string

	ScheduledStart *time.Time
	ScheduledEnd   *time.Time

	BaseAmount     float64
	Currency       string
	TargetCurrency string

	// Totals, when set, is the frozen pricing computed by the caller (the
	// purchase orchestrator) so booking and order share one snapshot.
	Totals *finance.Totals

	Reference string
	ServiceID *string
	OrderID   *string
	EscrowID  *string

	Checklist []string
	Tags      []string
	Extra     map[string]any

	ActorID string
}

// ======================================================
// USE CASE
// ======================================================

type CreateBooking struct {
	repo domain.Repository
	calc *finance.Calculator
	log  *zap.Logger
}

func NewCreateBooking(
	repo domain.Repository,
	calc *finance.Calculator,
	log *zap.Logger,
) *CreateBooking {
	return &CreateBooking{
		repo: repo,
		calc: calc,
		log:  log,
	}
}

// Execute opens its own unit of work. The orchestrator composes instead via
// ExecuteIn with the transaction it already holds.
func (uc *CreateBooking) Execute(
	ctx context.Context,
	in CreateBookingInput,
) (*models.Booking, error) {

	var created *models.Booking
	err := uc.repo.Transaction(ctx, func(uow domain.Repository) error {
		b, err := uc.ExecuteIn(ctx, uow, in)
		if err != nil {
			return err
		}
		created = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (uc *CreateBooking) ExecuteIn(
	ctx context.Context,
	uow domain.Repository,
	in CreateBookingInput,
) (*models.Booking, error) {

	// --------------------------------------------------
	// 1. Required fields + schedule rules
	// --------------------------------------------------
	if in.CustomerID == "" || in.CompanyID == "" || in.ZoneID == "" {
		return nil, httperr.ErrInvalidArgument("missing_required_field")
	}
	if !domain.IsValidType(in.Type) {
		return nil, httperr.ErrInvalidArgument("invalid_booking_type")
	}
	if err := domain.ValidateSchedule(in.Type, in.ScheduledStart, in.ScheduledEnd); err != nil {
		return nil, err
	}

	now := domain.Now()

	// --------------------------------------------------
	// 2. Financial snapshot (frozen at creation)
	// --------------------------------------------------
	totals := in.Totals
	if totals == nil {
		var err error
		totals, err = uc.calc.CalculateBookingTotals(ctx, finance.TotalsInput{
			BaseAmount:     in.BaseAmount,
			Currency:       in.Currency,
			BookingType:    string(in.Type),
			DemandLevel:    in.DemandLevel,
			TargetCurrency: in.TargetCurrency,
		})
		if err != nil {
			return nil, err
		}
	}

	// --------------------------------------------------
	// 3. SLA deadline (computed once, never on reschedule)
	// --------------------------------------------------
	slaExpiresAt, err := uc.calc.ResolveSlaExpiry(ctx, string(in.Type), now)
	if err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// 4. Booking row
	// --------------------------------------------------
	b := &models.Booking{
		Status:      string(domain.InitialStatus()),
		Type:        string(in.Type),
		DemandLevel: in.DemandLevel,

		CustomerID: in.CustomerID,
		CompanyID:  in.CompanyID,
		ZoneID:     in.ZoneID,

		ServiceID: in.ServiceID,
		OrderID:   in.OrderID,
		EscrowID:  in.EscrowID,

		ScheduledStart: in.ScheduledStart,
		ScheduledEnd:   in.ScheduledEnd,
		SlaExpiresAt:   slaExpiresAt,

		Currency:         totals.Currency,
		BaseAmount:       totals.BaseAmount,
		CommissionAmount: totals.CommissionAmount,
		TaxAmount:        totals.TaxAmount,
		TotalAmount:      totals.TotalAmount,
		CommissionRate:   totals.CommissionRate,
		TaxRate:          totals.TaxRate,

		Meta: models.BookingMeta{
			Reference: in.Reference,
			Checklist: in.Checklist,
			Tags:      in.Tags,
			Extra:     in.Extra,
			Pricing: &models.PricingSnapshot{
				SourceCurrency: in.Currency,
				CommissionRate: totals.CommissionRate,
				TaxRate:        totals.TaxRate,
				PricedAt:       now,
			},
		},
	}

	if err := uow.CreateBooking(ctx, b); err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// 5. Creation audit event (same transaction)
	// --------------------------------------------------
	ev := analytics.NewEvent(
		analytics.EventBookingCreated,
		b.ID,
		in.ActorID,
		b.CompanyID,
		now,
		map[string]any{
			"type":         b.Type,
			"zone_id":      b.ZoneID,
			"total_amount": b.TotalAmount,
			"currency":     b.Currency,
		},
	)
	if err := uow.RecordEvent(ctx, ev); err != nil {
		return nil, err
	}

	uc.log.Info("booking created",
		zap.String("booking_id", b.ID),
		zap.String("type", b.Type),
		zap.String("company_id", b.CompanyID),
	)

	return b, nil
}
