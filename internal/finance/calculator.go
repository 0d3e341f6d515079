package finance

import (
	"context"
	"math"
	"strings"

	"github.com/fieldserve/marketplace-core/internal/httperr"
	"github.com/fieldserve/marketplace-core/internal/settings"
)

// ======================================================
// INPUT / OUTPUT
// ======================================================

type TotalsInput struct {
	BaseAmount     float64
	Currency       string
	BookingType    string
	DemandLevel    string
	TargetCurrency string // optional; defaults to Currency
}

type Totals struct {
	Currency         string  `json:"currency"`
	BaseAmount       float64 `json:"base_amount"`
	CommissionAmount float64 `json:"commission_amount"`
	TaxAmount        float64 `json:"tax_amount"`
	TotalAmount      float64 `json:"total_amount"`
	CommissionRate   float64 `json:"commission_rate"`
	TaxRate          float64 `json:"tax_rate"`
}

// ======================================================
// CALCULATOR
// ======================================================

type Calculator struct {
	source settings.Source
}

func NewCalculator(source settings.Source) *Calculator {
	return &Calculator{source: source}
}

// CalculateBookingTotals prices a booking from one settings snapshot.
// Order matters: convert the gross first, then commission on the gross, then
// tax on gross+commission. Every monetary value is rounded to 2 decimals as
// it is produced, not only at the end; totals must reproduce exactly.
func (c *Calculator) CalculateBookingTotals(ctx context.Context, in TotalsInput) (*Totals, error) {
	if math.IsNaN(in.BaseAmount) || math.IsInf(in.BaseAmount, 0) {
		return nil, httperr.ErrInvalidArgument("invalid_amount")
	}
	if in.Currency == "" {
		return nil, httperr.ErrInvalidArgument("currency_required")
	}

	target := in.TargetCurrency
	if target == "" {
		target = in.Currency
	}
	source := strings.ToUpper(in.Currency)
	target = strings.ToUpper(target)

	snap, err := c.source.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	gross, err := convert(snap, in.BaseAmount, source, target)
	if err != nil {
		return nil, err
	}

	commissionRate, ok := snap.CommissionRate(in.BookingType, in.DemandLevel)
	if !ok {
		return nil, httperr.ErrNoRateConfigured("no_commission_rate")
	}
	commission := Round2(gross * commissionRate)

	taxableBase := Round2(gross + commission)
	taxRate := snap.TaxRate(target, source)
	tax := Round2(taxableBase * taxRate)

	total := Round2(taxableBase + tax)

	return &Totals{
		Currency:         target,
		BaseAmount:       gross,
		CommissionAmount: commission,
		TaxAmount:        tax,
		TotalAmount:      total,
		CommissionRate:   commissionRate,
		TaxRate:          taxRate,
	}, nil
}

// convert moves an amount between currencies through the reference rates of
// a single snapshot. Same-currency conversion is a rounding pass-through and
// needs no rates configured.
func convert(snap *settings.Snapshot, amount float64, source, target string) (float64, error) {
	if source == target {
		return Round2(amount), nil
	}

	sourceRate, ok := snap.ExchangeRate(source)
	if !ok || sourceRate == 0 {
		return 0, httperr.ErrNoRateConfigured("no_exchange_rate_source")
	}
	targetRate, ok := snap.ExchangeRate(target)
	if !ok {
		return 0, httperr.ErrNoRateConfigured("no_exchange_rate_target")
	}

	return Round2(amount / sourceRate * targetRate), nil
}

// Round2 rounds half away from zero to 2 decimal places.
func Round2(v float64) float64 {
	return math.Copysign(math.Floor(math.Abs(v)*100+0.5)/100, v)
}
