package db

import (
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/fieldserve/marketplace-core/internal/config"
	"github.com/fieldserve/marketplace-core/internal/models"
)

func NewDB(cfg *config.Config) *gorm.DB {
	db, err := gorm.Open(postgres.Open(cfg.DBUrl), &gorm.Config{
		PrepareStmt: true,
	})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("failed to get sql.DB: %v", err)
	}

	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := Migrate(db); err != nil {
		log.Fatalf("failed to migrate: %v", err)
	}

	return db
}

// SeedFinanceDefaults inserts a baseline finance configuration when the
// settings table is empty. Installed platforms override these rows.
func SeedFinanceDefaults(db *gorm.DB) error {
	var n int64
	if err := db.Model(&models.FinanceSetting{}).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	rows := []models.FinanceSetting{
		{Scope: models.FinanceScopeCommission, Key: "default", Value: 0.025, Enabled: true},
		{Scope: models.FinanceScopeSla, Key: "default", Value: 180, Enabled: true},
		{Scope: models.FinanceScopePlatform, Key: "default_currency", TextValue: "USD", Enabled: true},
	}
	return db.Create(&rows).Error
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Company{},
		&models.Zone{},
		&models.ServiceOffering{},
		&models.Booking{},
		&models.BookingAssignment{},
		&models.BookingBid{},
		&models.BookingBidComment{},
		&models.BookingHistoryEntry{},
		&models.Order{},
		&models.Escrow{},
		&models.FinanceSetting{},
		&models.AnalyticsEvent{},
	)
}
