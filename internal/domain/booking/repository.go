package booking

import (
	"context"
	"time"

	"github.com/fieldserve/marketplace-core/internal/models"
)

// ListFilters narrows ListBookings. Zero values mean "no filter".
type ListFilters struct {
	Status     string
	Type       string
	CustomerID string
	CompanyID  string
	ZoneID     string
	Page       int
	PageSize   int
}

type Repository interface {

	// -------- Unit of work --------
	// Transaction runs fn against a repository bound to one database
	// transaction. Everything written through that repository, analytics
	// events included, commits or rolls back as a unit.
	Transaction(ctx context.Context, fn func(uow Repository) error) error

	// -------- Booking --------
	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	GetBookingForUpdate(ctx context.Context, id string) (*models.Booking, error)
	CreateBooking(ctx context.Context, b *models.Booking) error
	SaveBooking(ctx context.Context, b *models.Booking) error
	ListBookings(ctx context.Context, f ListFilters) ([]models.Booking, int64, error)

	// -------- Assignment --------
	// FindOrCreateAssignment takes the row lock before checking the pair and
	// reports whether a new row was created.
	FindOrCreateAssignment(ctx context.Context, a *models.BookingAssignment) (row *models.BookingAssignment, created bool, err error)
	GetAssignmentForUpdate(ctx context.Context, bookingID, providerID string) (*models.BookingAssignment, error)
	SaveAssignment(ctx context.Context, a *models.BookingAssignment) error
	ListAssignments(ctx context.Context, bookingID string) ([]models.BookingAssignment, error)

	// -------- Bid --------
	GetBidByProviderForUpdate(ctx context.Context, bookingID, providerID string) (*models.BookingBid, error)
	GetBidForUpdate(ctx context.Context, bookingID, bidID string) (*models.BookingBid, error)
	CreateBid(ctx context.Context, b *models.BookingBid) error
	SaveBid(ctx context.Context, b *models.BookingBid) error
	ListBids(ctx context.Context, bookingID string) ([]models.BookingBid, error)
	CreateBidComment(ctx context.Context, c *models.BookingBidComment) error

	// -------- History --------
	GetHistoryEntry(ctx context.Context, bookingID, entryID string) (*models.BookingHistoryEntry, error)
	CreateHistoryEntry(ctx context.Context, e *models.BookingHistoryEntry) error
	SaveHistoryEntry(ctx context.Context, e *models.BookingHistoryEntry) error
	DeleteHistoryEntry(ctx context.Context, bookingID, entryID string) error
	ListHistory(ctx context.Context, bookingID string) ([]models.BookingHistoryEntry, error)

	// -------- Catalog --------
	GetServiceForUpdate(ctx context.Context, id string) (*models.ServiceOffering, error)
	GetCompany(ctx context.Context, id string) (*models.Company, error)
	GetZone(ctx context.Context, id string) (*models.Zone, error)

	// -------- Order / Escrow --------
	CreateOrder(ctx context.Context, o *models.Order) error
	GetOrder(ctx context.Context, id string) (*models.Order, error)
	CreateEscrow(ctx context.Context, e *models.Escrow) error
	GetEscrowByOrderForUpdate(ctx context.Context, orderID string) (*models.Escrow, error)
	SaveEscrow(ctx context.Context, e *models.Escrow) error

	// -------- Analytics sink (append-only) --------
	RecordEvent(ctx context.Context, ev models.AnalyticsEvent) error
	RecordEvents(ctx context.Context, evs []models.AnalyticsEvent) error
}

// Now is the clock used by use cases; swapped in tests.
var Now = func() time.Time { return time.Now().UTC() }
