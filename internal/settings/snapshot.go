package settings

import "time"

// Snapshot is one immutable view of the platform finance settings. A
// calculation reads exactly one snapshot; refreshes build a new value and
// never touch a published one.
type Snapshot struct {
	CommissionEnabled bool
	// CommissionRates is keyed by "{type}:{demandLevel}", "{type}",
	// "{demandLevel}" and "default".
	CommissionRates map[string]float64

	// TaxRates and ExchangeRates are keyed by currency code. Exchange rates
	// are expressed against the reference currency.
	TaxRates      map[string]float64
	ExchangeRates map[string]float64

	DefaultCurrency string

	// SlaTargetMinutes is keyed by booking type plus "default".
	SlaTargetMinutes  map[string]int
	SlaDefaultMinutes int

	RefreshedAt time.Time
}

// CommissionRate resolves the effective commission rate, most specific key
// first. The second return reports whether any key matched.
func (s *Snapshot) CommissionRate(bookingType, demandLevel string) (float64, bool) {
	if !s.CommissionEnabled {
		return 0, true
	}
	keys := []string{
		bookingType + ":" + demandLevel,
		bookingType,
		demandLevel,
		"default",
	}
	for _, k := range keys {
		if rate, ok := s.CommissionRates[k]; ok {
			return rate, true
		}
	}
	return 0, false
}

// TaxRate resolves target currency first, then source, then the platform
// default currency. Missing everywhere means no tax.
func (s *Snapshot) TaxRate(targetCurrency, sourceCurrency string) float64 {
	for _, k := range []string{targetCurrency, sourceCurrency, s.DefaultCurrency} {
		if rate, ok := s.TaxRates[k]; ok {
			return rate
		}
	}
	return 0
}

func (s *Snapshot) ExchangeRate(currency string) (float64, bool) {
	rate, ok := s.ExchangeRates[currency]
	return rate, ok
}

func (s *Snapshot) SlaMinutes(bookingType string) int {
	if m, ok := s.SlaTargetMinutes[bookingType]; ok {
		return m
	}
	if m, ok := s.SlaTargetMinutes["default"]; ok {
		return m
	}
	return s.SlaDefaultMinutes
}
