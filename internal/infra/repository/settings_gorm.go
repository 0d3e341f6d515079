package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/fieldserve/marketplace-core/internal/models"
	"github.com/fieldserve/marketplace-core/internal/settings"
)

// Platform-scope setting keys.
const (
	keyCommissionEnabled = "commission_enabled"
	keyDefaultCurrency   = "default_currency"
)

// SettingsGormLoader folds finance_settings rows into one immutable
// snapshot for the settings provider.
type SettingsGormLoader struct {
	db *gorm.DB
}

func NewSettingsGormLoader(db *gorm.DB) *SettingsGormLoader {
	return &SettingsGormLoader{db: db}
}

func (l *SettingsGormLoader) LoadFinanceSnapshot(ctx context.Context) (*settings.Snapshot, error) {
	var rows []models.FinanceSetting
	if err := l.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, err
	}

	snap := settingsSnapshotDefaults()

	for _, row := range rows {
		switch row.Scope {
		case models.FinanceScopeCommission:
			if row.Enabled {
				snap.CommissionRates[row.Key] = row.Value
			}
		case models.FinanceScopeTax:
			if row.Enabled {
				snap.TaxRates[row.Key] = row.Value
			}
		case models.FinanceScopeExchange:
			if row.Enabled {
				snap.ExchangeRates[row.Key] = row.Value
			}
		case models.FinanceScopeSla:
			if row.Enabled {
				snap.SlaTargetMinutes[row.Key] = int(row.Value)
			}
		case models.FinanceScopePlatform:
			switch row.Key {
			case keyCommissionEnabled:
				snap.CommissionEnabled = row.Enabled
			case keyDefaultCurrency:
				if row.TextValue != "" {
					snap.DefaultCurrency = row.TextValue
				}
			}
		}
	}

	return snap, nil
}

func settingsSnapshotDefaults() *settings.Snapshot {
	return &settings.Snapshot{
		CommissionEnabled: true,
		CommissionRates:   map[string]float64{},
		TaxRates:          map[string]float64{},
		ExchangeRates:     map[string]float64{},
		SlaTargetMinutes:  map[string]int{},
		SlaDefaultMinutes: 180,
		DefaultCurrency:   "USD",
	}
}
