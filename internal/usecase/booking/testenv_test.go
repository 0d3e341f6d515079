package booking

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	dbpkg "github.com/fieldserve/marketplace-core/internal/db"
	domain "github.com/fieldserve/marketplace-core/internal/domain/booking"
	"github.com/fieldserve/marketplace-core/internal/finance"
	infraRepo "github.com/fieldserve/marketplace-core/internal/infra/repository"
	"github.com/fieldserve/marketplace-core/internal/models"
	"github.com/fieldserve/marketplace-core/internal/settings"
)

var testDBSeq atomic.Int64

func timePtr(hour int) *time.Time {
	v := time.Date(2025, 6, 1, hour, 0, 0, 0, time.UTC)
	return &v
}

// newTestRepo opens a per-test in-memory database. Shared cache keeps the
// schema alive across the pooled connections of one DSN.
func newTestRepo(t *testing.T) (domain.Repository, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:booking_uc_%d?mode=memory&cache=shared", testDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, dbpkg.Migrate(db))

	return infraRepo.NewBookingGormRepository(db), db
}

type staticSource struct {
	snap *settings.Snapshot
}

func (s *staticSource) Snapshot(ctx context.Context) (*settings.Snapshot, error) {
	return s.snap, nil
}

func testCalculator() *finance.Calculator {
	return finance.NewCalculator(&staticSource{snap: &settings.Snapshot{
		CommissionEnabled: true,
		CommissionRates:   map[string]float64{"default": 0.05},
		TaxRates:          map[string]float64{"BRL": 0.1},
		ExchangeRates:     map[string]float64{"USD": 1.0, "EUR": 1.1},
		DefaultCurrency:   "USD",
		SlaTargetMinutes:  map[string]int{"on_demand": 60},
		SlaDefaultMinutes: 180,
	}})
}

func seedBooking(t *testing.T, db *gorm.DB, status domain.Status, bookingType domain.Type) *models.Booking {
	t.Helper()

	b := &models.Booking{
		ID:          uuid.NewString(),
		Status:      string(status),
		Type:        string(bookingType),
		CustomerID:  uuid.NewString(),
		CompanyID:   uuid.NewString(),
		ZoneID:      uuid.NewString(),
		Currency:    "USD",
		BaseAmount:  100,
		TotalAmount: 105,
	}
	if bookingType == domain.TypeScheduled {
		b.ScheduledStart = timePtr(10)
		b.ScheduledEnd = timePtr(12)
	}
	require.NoError(t, db.Create(b).Error)
	return b
}

func seedEscrowedBooking(t *testing.T, db *gorm.DB, status domain.Status) *models.Booking {
	t.Helper()

	b := seedBooking(t, db, status, domain.TypeOnDemand)

	order := &models.Order{
		ID:          uuid.NewString(),
		BuyerID:     b.CustomerID,
		Status:      "funded",
		Currency:    b.Currency,
		TotalAmount: b.TotalAmount,
	}
	require.NoError(t, db.Create(order).Error)

	escrow := &models.Escrow{
		ID:       uuid.NewString(),
		OrderID:  order.ID,
		Status:   "funded",
		FundedAt: domain.Now(),
	}
	require.NoError(t, db.Create(escrow).Error)

	b.OrderID = &order.ID
	b.EscrowID = &escrow.ID
	require.NoError(t, db.Save(b).Error)
	return b
}

func eventNames(t *testing.T, db *gorm.DB) []string {
	t.Helper()

	var names []string
	require.NoError(t, db.Model(&models.AnalyticsEvent{}).Order("id").Pluck("name", &names).Error)
	return names
}

func countEvents(t *testing.T, db *gorm.DB, name string) int64 {
	t.Helper()

	var n int64
	require.NoError(t, db.Model(&models.AnalyticsEvent{}).Where("name = ?", name).Count(&n).Error)
	return n
}

func loadEscrow(t *testing.T, db *gorm.DB, orderID string) *models.Escrow {
	t.Helper()

	var esc models.Escrow
	require.NoError(t, db.First(&esc, "order_id = ?", orderID).Error)
	return &esc
}
