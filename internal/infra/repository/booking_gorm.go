package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/fieldserve/marketplace-core/internal/domain/booking"
	"github.com/fieldserve/marketplace-core/internal/models"
)

type BookingGormRepository struct {
	db *gorm.DB
}

func NewBookingGormRepository(db *gorm.DB) *BookingGormRepository {
	return &BookingGormRepository{db: db}
}

// --------------------------------------------------
// Unit of work
// --------------------------------------------------

// Transaction hands fn a repository bound to one gorm transaction. Any
// error rolls back everything written through it.
func (r *BookingGormRepository) Transaction(
	ctx context.Context,
	fn func(uow domain.Repository) error,
) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&BookingGormRepository{db: tx})
	})
}

// forUpdate applies SELECT ... FOR UPDATE where the dialect supports it.
// The sqlite test dialect serializes writers on its own.
func (r *BookingGormRepository) forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// --------------------------------------------------
// Booking
// --------------------------------------------------

func (r *BookingGormRepository) GetBooking(
	ctx context.Context,
	id string,
) (*models.Booking, error) {

	var b models.Booking
	if err := r.db.WithContext(ctx).First(&b, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BookingGormRepository) GetBookingForUpdate(
	ctx context.Context,
	id string,
) (*models.Booking, error) {

	var b models.Booking
	if err := r.forUpdate(r.db.WithContext(ctx)).
		First(&b, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BookingGormRepository) CreateBooking(
	ctx context.Context,
	b *models.Booking,
) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *BookingGormRepository) SaveBooking(
	ctx context.Context,
	b *models.Booking,
) error {
	return r.db.WithContext(ctx).Save(b).Error
}

func (r *BookingGormRepository) ListBookings(
	ctx context.Context,
	f domain.ListFilters,
) ([]models.Booking, int64, error) {

	page := f.Page
	if page < 1 {
		page = 1
	}
	size := f.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}

	q := r.db.WithContext(ctx).Model(&models.Booking{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.CustomerID != "" {
		q = q.Where("customer_id = ?", f.CustomerID)
	}
	if f.CompanyID != "" {
		q = q.Where("company_id = ?", f.CompanyID)
	}
	if f.ZoneID != "" {
		q = q.Where("zone_id = ?", f.ZoneID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var out []models.Booking
	if err := q.Order("created_at DESC").
		Limit(size).
		Offset((page - 1) * size).
		Find(&out).Error; err != nil {
		return nil, 0, err
	}

	return out, total, nil
}

// --------------------------------------------------
// Assignment
// --------------------------------------------------

// FindOrCreateAssignment is the idempotent path for provider assignment.
// The existing row is locked and returned unchanged; only a missing pair
// creates a new pending row.
func (r *BookingGormRepository) FindOrCreateAssignment(
	ctx context.Context,
	a *models.BookingAssignment,
) (*models.BookingAssignment, bool, error) {

	var existing models.BookingAssignment
	err := r.forUpdate(r.db.WithContext(ctx)).
		Where("booking_id = ? AND provider_id = ?", a.BookingID, a.ProviderID).
		First(&existing).Error

	if err == nil {
		return &existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if err := r.db.WithContext(ctx).Create(a).Error; err != nil {
		return nil, false, err
	}
	return a, true, nil
}

func (r *BookingGormRepository) GetAssignmentForUpdate(
	ctx context.Context,
	bookingID string,
	providerID string,
) (*models.BookingAssignment, error) {

	var a models.BookingAssignment
	if err := r.forUpdate(r.db.WithContext(ctx)).
		Where("booking_id = ? AND provider_id = ?", bookingID, providerID).
		First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *BookingGormRepository) SaveAssignment(
	ctx context.Context,
	a *models.BookingAssignment,
) error {
	return r.db.WithContext(ctx).Save(a).Error
}

func (r *BookingGormRepository) ListAssignments(
	ctx context.Context,
	bookingID string,
) ([]models.BookingAssignment, error) {

	var out []models.BookingAssignment
	if err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("assigned_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// --------------------------------------------------
// Bid
// --------------------------------------------------

func (r *BookingGormRepository) GetBidByProviderForUpdate(
	ctx context.Context,
	bookingID string,
	providerID string,
) (*models.BookingBid, error) {

	var b models.BookingBid
	if err := r.forUpdate(r.db.WithContext(ctx)).
		Where("booking_id = ? AND provider_id = ?", bookingID, providerID).
		First(&b).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BookingGormRepository) GetBidForUpdate(
	ctx context.Context,
	bookingID string,
	bidID string,
) (*models.BookingBid, error) {

	var b models.BookingBid
	if err := r.forUpdate(r.db.WithContext(ctx)).
		Where("id = ? AND booking_id = ?", bidID, bookingID).
		First(&b).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BookingGormRepository) CreateBid(
	ctx context.Context,
	b *models.BookingBid,
) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *BookingGormRepository) SaveBid(
	ctx context.Context,
	b *models.BookingBid,
) error {
	return r.db.WithContext(ctx).Save(b).Error
}

func (r *BookingGormRepository) ListBids(
	ctx context.Context,
	bookingID string,
) ([]models.BookingBid, error) {

	var out []models.BookingBid
	if err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *BookingGormRepository) CreateBidComment(
	ctx context.Context,
	c *models.BookingBidComment,
) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Create(c).Error
}

// --------------------------------------------------
// History
// --------------------------------------------------

func (r *BookingGormRepository) GetHistoryEntry(
	ctx context.Context,
	bookingID string,
	entryID string,
) (*models.BookingHistoryEntry, error) {

	var e models.BookingHistoryEntry
	if err := r.db.WithContext(ctx).
		Where("id = ? AND booking_id = ?", entryID, bookingID).
		First(&e).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *BookingGormRepository) CreateHistoryEntry(
	ctx context.Context,
	e *models.BookingHistoryEntry,
) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *BookingGormRepository) SaveHistoryEntry(
	ctx context.Context,
	e *models.BookingHistoryEntry,
) error {
	return r.db.WithContext(ctx).Save(e).Error
}

func (r *BookingGormRepository) DeleteHistoryEntry(
	ctx context.Context,
	bookingID string,
	entryID string,
) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND booking_id = ?", entryID, bookingID).
		Delete(&models.BookingHistoryEntry{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *BookingGormRepository) ListHistory(
	ctx context.Context,
	bookingID string,
) ([]models.BookingHistoryEntry, error) {

	var out []models.BookingHistoryEntry
	if err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("occurred_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// --------------------------------------------------
// Catalog
// --------------------------------------------------

func (r *BookingGormRepository) GetServiceForUpdate(
	ctx context.Context,
	id string,
) (*models.ServiceOffering, error) {

	var s models.ServiceOffering
	if err := r.forUpdate(r.db.WithContext(ctx)).
		First(&s, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *BookingGormRepository) GetCompany(
	ctx context.Context,
	id string,
) (*models.Company, error) {

	var c models.Company
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *BookingGormRepository) GetZone(
	ctx context.Context,
	id string,
) (*models.Zone, error) {

	var z models.Zone
	if err := r.db.WithContext(ctx).First(&z, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &z, nil
}

// --------------------------------------------------
// Order / Escrow
// --------------------------------------------------

func (r *BookingGormRepository) CreateOrder(
	ctx context.Context,
	o *models.Order,
) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *BookingGormRepository) GetOrder(
	ctx context.Context,
	id string,
) (*models.Order, error) {

	var o models.Order
	if err := r.db.WithContext(ctx).First(&o, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *BookingGormRepository) CreateEscrow(
	ctx context.Context,
	e *models.Escrow,
) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *BookingGormRepository) GetEscrowByOrderForUpdate(
	ctx context.Context,
	orderID string,
) (*models.Escrow, error) {

	var e models.Escrow
	if err := r.forUpdate(r.db.WithContext(ctx)).
		Where("order_id = ?", orderID).
		First(&e).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *BookingGormRepository) SaveEscrow(
	ctx context.Context,
	e *models.Escrow,
) error {
	return r.db.WithContext(ctx).Save(e).Error
}

// --------------------------------------------------
// Analytics sink
// --------------------------------------------------

func (r *BookingGormRepository) RecordEvent(
	ctx context.Context,
	ev models.AnalyticsEvent,
) error {
	return r.db.WithContext(ctx).Create(&ev).Error
}

func (r *BookingGormRepository) RecordEvents(
	ctx context.Context,
	evs []models.AnalyticsEvent,
) error {
	if len(evs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&evs).Error
}
