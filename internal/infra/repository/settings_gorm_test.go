package repository

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/fieldserve/marketplace-core/internal/models"
)

var testDBSeq atomic.Int64

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:settings_repo_%d?mode=memory&cache=shared", testDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&models.FinanceSetting{}))
	return db
}

func TestLoadFinanceSnapshot_Defaults(t *testing.T) {
	db := newTestDB(t)
	loader := NewSettingsGormLoader(db)

	snap, err := loader.LoadFinanceSnapshot(context.Background())
	require.NoError(t, err)

	assert.True(t, snap.CommissionEnabled)
	assert.Equal(t, "USD", snap.DefaultCurrency)
	assert.Equal(t, 180, snap.SlaDefaultMinutes)
	assert.Empty(t, snap.CommissionRates)
	assert.Empty(t, snap.ExchangeRates)
}

func TestLoadFinanceSnapshot_FoldsRowsByScope(t *testing.T) {
	db := newTestDB(t)
	loader := NewSettingsGormLoader(db)

	rows := []models.FinanceSetting{
		{Scope: models.FinanceScopeCommission, Key: "scheduled:high", Value: 0.07, Enabled: true},
		{Scope: models.FinanceScopeCommission, Key: "default", Value: 0.025, Enabled: true},
		{Scope: models.FinanceScopeCommission, Key: "on_demand", Value: 0.05, Enabled: false},
		{Scope: models.FinanceScopeTax, Key: "BRL", Value: 0.1, Enabled: true},
		{Scope: models.FinanceScopeExchange, Key: "EUR", Value: 1.1, Enabled: true},
		{Scope: models.FinanceScopeSla, Key: "on_demand", Value: 60, Enabled: true},
		{Scope: models.FinanceScopePlatform, Key: "default_currency", TextValue: "EUR", Enabled: true},
	}
	require.NoError(t, db.Create(&rows).Error)

	snap, err := loader.LoadFinanceSnapshot(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0.07, snap.CommissionRates["scheduled:high"])
	assert.Equal(t, 0.025, snap.CommissionRates["default"])
	// Disabled rows are excluded from the snapshot.
	_, ok := snap.CommissionRates["on_demand"]
	assert.False(t, ok)

	assert.Equal(t, 0.1, snap.TaxRates["BRL"])
	assert.Equal(t, 1.1, snap.ExchangeRates["EUR"])
	assert.Equal(t, 60, snap.SlaTargetMinutes["on_demand"])
	assert.Equal(t, "EUR", snap.DefaultCurrency)
}

func TestLoadFinanceSnapshot_CommissionKillSwitch(t *testing.T) {
	db := newTestDB(t)
	loader := NewSettingsGormLoader(db)

	rows := []models.FinanceSetting{
		{Scope: models.FinanceScopeCommission, Key: "default", Value: 0.025, Enabled: true},
		{Scope: models.FinanceScopePlatform, Key: "commission_enabled", Enabled: false},
	}
	require.NoError(t, db.Create(&rows).Error)

	snap, err := loader.LoadFinanceSnapshot(context.Background())
	require.NoError(t, err)

	assert.False(t, snap.CommissionEnabled)
	rate, ok := snap.CommissionRate("scheduled", "high")
	assert.True(t, ok)
	assert.Zero(t, rate)
}
