package purchase

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fieldserve/marketplace-core/internal/analytics"
	domain "github.com/fieldserve/marketplace-core/internal/domain/booking"
	"github.com/fieldserve/marketplace-core/internal/finance"
	"github.com/fieldserve/marketplace-core/internal/httperr"
	"github.com/fieldserve/marketplace-core/internal/models"
	"github.com/fieldserve/marketplace-core/internal/scam"
	ucbooking "github.com/fieldserve/marketplace-core/internal/usecase/booking"
)

// ======================================================
// INPUT / OUTPUT
// ======================================================

type Input struct {
	ServiceID string
	BuyerID   string
	ZoneID    string

	BookingType domain.Type
	DemandLevel string

	ScheduledStart *time.Time
	ScheduledEnd   *time.Time

	// BaseAmount and Currency override the service defaults when set.
	BaseAmount *float64
	Currency   string

	Metadata map[string]any
}

type Result struct {
	Order   *models.Order   `json:"order"`
	Escrow  *models.Escrow  `json:"escrow"`
	Booking *models.Booking `json:"booking"`
	Totals  *finance.Totals `json:"totals"`
}

// ======================================================
// USE CASE
// ======================================================

// PurchaseServiceOffering creates the Order, the Escrow and the Booking as
// one unit. Nothing about it is partial: a failure at any step leaves no
// row behind. The service row is locked for the whole purchase so the
// listing cannot change mid-flight.
type PurchaseServiceOffering struct {
	repo          domain.Repository
	calc          *finance.Calculator
	createBooking *ucbooking.CreateBooking
	scam          *scam.Dispatcher
	log           *zap.Logger
}

func NewPurchaseServiceOffering(
	repo domain.Repository,
	calc *finance.Calculator,
	createBooking *ucbooking.CreateBooking,
	scamDispatcher *scam.Dispatcher,
	log *zap.Logger,
) *PurchaseServiceOffering {
	return &PurchaseServiceOffering{
		repo:          repo,
		calc:          calc,
		createBooking: createBooking,
		scam:          scamDispatcher,
		log:           log,
	}
}

func (uc *PurchaseServiceOffering) Execute(
	ctx context.Context,
	in Input,
) (*Result, error) {

	if in.ServiceID == "" || in.BuyerID == "" || in.ZoneID == "" {
		return nil, httperr.ErrInvalidArgument("missing_required_field")
	}

	var out *Result
	err := uc.repo.Transaction(ctx, func(uow domain.Repository) error {

		// --------------------------------------------------
		// 1. Lock and validate Service + Company + Zone
		// --------------------------------------------------
		svc, err := uow.GetServiceForUpdate(ctx, in.ServiceID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return httperr.ErrNotFound("service_not_found")
			}
			return err
		}
		if svc.CompanyID == "" {
			return httperr.ErrPreconditionFailed("service_without_company")
		}
		if !svc.Active {
			return httperr.ErrPreconditionFailed("service_inactive")
		}
		if in.BuyerID == svc.ProviderID {
			return httperr.ErrPreconditionFailed("self_purchase_forbidden")
		}

		company, err := uow.GetCompany(ctx, svc.CompanyID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return httperr.ErrNotFound("company_not_found")
			}
			return err
		}
		if company.Status != "verified" {
			return httperr.ErrPreconditionFailed("company_not_verified")
		}

		zone, err := uow.GetZone(ctx, in.ZoneID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return httperr.ErrNotFound("zone_not_found")
			}
			return err
		}
		if zone.CompanyID != svc.CompanyID {
			return httperr.ErrPreconditionFailed("zone_company_mismatch")
		}

		if err := domain.ValidateSchedule(in.BookingType, in.ScheduledStart, in.ScheduledEnd); err != nil {
			return err
		}

		// --------------------------------------------------
		// 2. Totals from one settings snapshot
		// --------------------------------------------------
		baseAmount := svc.BasePrice
		if in.BaseAmount != nil {
			baseAmount = *in.BaseAmount
		}
		currency := in.Currency
		if currency == "" {
			currency = svc.Currency
		}

		totals, err := uc.calc.CalculateBookingTotals(ctx, finance.TotalsInput{
			BaseAmount:  baseAmount,
			Currency:    currency,
			BookingType: string(in.BookingType),
			DemandLevel: in.DemandLevel,
		})
		if err != nil {
			return err
		}

		now := domain.Now()

		// --------------------------------------------------
		// 3. Order + Escrow (modeled as funded, 1:1)
		// --------------------------------------------------
		order := &models.Order{
			BuyerID:        in.BuyerID,
			ServiceID:      svc.ID,
			Status:         "funded",
			Currency:       totals.Currency,
			TotalAmount:    totals.TotalAmount,
			ScheduledStart: in.ScheduledStart,
			ScheduledEnd:   in.ScheduledEnd,
		}
		if err := uow.CreateOrder(ctx, order); err != nil {
			return err
		}

		escrow := &models.Escrow{
			OrderID:  order.ID,
			Status:   "funded",
			FundedAt: now,
		}
		if err := uow.CreateEscrow(ctx, escrow); err != nil {
			return err
		}

		// --------------------------------------------------
		// 4. Booking via the state-machine creation path
		// --------------------------------------------------
		b, err := uc.createBooking.ExecuteIn(ctx, uow, ucbooking.CreateBookingInput{
			CustomerID:     in.BuyerID,
			CompanyID:      svc.CompanyID,
			ZoneID:         zone.ID,
			Type:           in.BookingType,
			DemandLevel:    in.DemandLevel,
			ScheduledStart: in.ScheduledStart,
			ScheduledEnd:   in.ScheduledEnd,
			Currency:       currency,
			Totals:         totals,
			ServiceID:      &svc.ID,
			OrderID:        &order.ID,
			EscrowID:       &escrow.ID,
			Extra:          in.Metadata,
			ActorID:        in.BuyerID,
		})
		if err != nil {
			return err
		}

		ev := analytics.NewEvent(
			analytics.EventPurchaseCompleted,
			order.ID,
			in.BuyerID,
			svc.CompanyID,
			now,
			map[string]any{
				"booking_id":   b.ID,
				"escrow_id":    escrow.ID,
				"service_id":   svc.ID,
				"total_amount": totals.TotalAmount,
				"currency":     totals.Currency,
			},
		)
		if err := uow.RecordEvent(ctx, ev); err != nil {
			return err
		}

		out = &Result{
			Order:   order,
			Escrow:  escrow,
			Booking: b,
			Totals:  totals,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Best-effort, after commit. Failures never surface.
	uc.scam.Dispatch(scam.Check{Booking: out.Booking, ActorID: in.BuyerID})

	uc.log.Info("purchase completed",
		zap.String("order_id", out.Order.ID),
		zap.String("booking_id", out.Booking.ID),
		zap.Float64("total", out.Totals.TotalAmount),
	)

	return out, nil
}
