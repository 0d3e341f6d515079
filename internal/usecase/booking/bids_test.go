package booking

import (
	"context"
	"math"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fieldserve/marketplace-core/internal/analytics"
	domain "github.com/fieldserve/marketplace-core/internal/domain/booking"
	"github.com/fieldserve/marketplace-core/internal/httperr"
	"github.com/fieldserve/marketplace-core/internal/models"
)

func TestSubmitBid_CreatesWithHistoryAndComment(t *testing.T) {
	repo, db := newTestRepo(t)
	uc := NewSubmitBid(repo, zap.NewNop())
	b := seedBooking(t, db, domain.StatusAwaitingAssignment, domain.TypeScheduled)

	bid, err := uc.Execute(context.Background(), b.ID, "prov-1", 120, "usd", "can start monday")
	require.NoError(t, err)

	assert.NotEmpty(t, bid.ID)
	assert.Equal(t, "pending", bid.Status)
	assert.Equal(t, "USD", bid.Currency)
	require.Len(t, bid.RevisionHistory, 1)
	assert.Equal(t, 120.0, bid.RevisionHistory[0].Amount)
	require.Len(t, bid.AuditLog, 1)
	assert.Equal(t, "submit_bid", bid.AuditLog[0].Action)

	// The initial message becomes the first comment.
	var comments []models.BookingBidComment
	require.NoError(t, db.Find(&comments, "bid_id = ?", bid.ID).Error)
	require.Len(t, comments, 1)
	assert.Equal(t, "can start monday", comments[0].Body)
	assert.Equal(t, "provider", comments[0].AuthorType)

	assert.Equal(t, int64(1), countEvents(t, db, analytics.EventBidSubmitted))
}

func TestSubmitBid_ResubmissionRevises(t *testing.T) {
	repo, db := newTestRepo(t)
	uc := NewSubmitBid(repo, zap.NewNop())
	ctx := context.Background()
	b := seedBooking(t, db, domain.StatusAwaitingAssignment, domain.TypeScheduled)

	first, err := uc.Execute(ctx, b.ID, "prov-1", 120, "USD", "")
	require.NoError(t, err)

	// Decline it, then resubmit: same row, fresh pending status.
	require.NoError(t, db.Model(&models.BookingBid{}).
		Where("id = ?", first.ID).Update("status", "declined").Error)

	second, err := uc.Execute(ctx, b.ID, "prov-1", 95, "USD", "lowered")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "pending", second.Status)
	assert.Equal(t, 95.0, second.Amount)
	require.Len(t, second.RevisionHistory, 2)
	assert.Equal(t, 120.0, second.RevisionHistory[0].Amount)
	assert.Equal(t, 95.0, second.RevisionHistory[1].Amount)

	var n int64
	require.NoError(t, db.Model(&models.BookingBid{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)

	// Resubmission message does not create a comment; comments are explicit.
	var comments int64
	require.NoError(t, db.Model(&models.BookingBidComment{}).Count(&comments).Error)
	assert.Zero(t, comments)
}

func TestSubmitBid_ConcurrentSameProviderUpserts(t *testing.T) {
	repo, db := newTestRepo(t)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// One pooled connection: the goroutines still race the use case, but
	// sqlite never sees two writers at once.
	sqlDB.SetMaxOpenConns(1)

	uc := NewSubmitBid(repo, zap.NewNop())
	ctx := context.Background()
	b := seedBooking(t, db, domain.StatusAwaitingAssignment, domain.TypeScheduled)

	amounts := []float64{120, 110}
	errs := make([]error, len(amounts))
	var wg sync.WaitGroup
	for i := range amounts {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = uc.Execute(ctx, b.ID, "prov-1", amounts[i], "USD", "")
		}(i)
	}
	wg.Wait()
	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	// The booking row lock serializes the upsert: one row, both submissions
	// recorded as revisions, no unique-index violation surfacing.
	var bids []models.BookingBid
	require.NoError(t, db.Find(&bids, "booking_id = ?", b.ID).Error)
	require.Len(t, bids, 1)
	assert.Len(t, bids[0].RevisionHistory, 2)
	assert.Equal(t, "pending", bids[0].Status)
	assert.Equal(t, int64(2), countEvents(t, db, analytics.EventBidSubmitted))
}

func TestSubmitBid_Validation(t *testing.T) {
	repo, db := newTestRepo(t)
	uc := NewSubmitBid(repo, zap.NewNop())
	ctx := context.Background()
	b := seedBooking(t, db, domain.StatusAwaitingAssignment, domain.TypeScheduled)

	_, err := uc.Execute(ctx, b.ID, "", 100, "USD", "")
	assert.True(t, httperr.IsBusiness(err, "provider_id_required"))

	_, err = uc.Execute(ctx, b.ID, "prov-1", 0, "USD", "")
	assert.True(t, httperr.IsBusiness(err, "invalid_amount"))

	_, err = uc.Execute(ctx, b.ID, "prov-1", -10, "USD", "")
	assert.True(t, httperr.IsBusiness(err, "invalid_amount"))

	_, err = uc.Execute(ctx, b.ID, "prov-1", math.NaN(), "USD", "")
	assert.True(t, httperr.IsBusiness(err, "invalid_amount"))

	_, err = uc.Execute(ctx, b.ID, "prov-1", 100, "", "")
	assert.True(t, httperr.IsBusiness(err, "currency_required"))

	_, err = uc.Execute(ctx, "no-such-id", "prov-1", 100, "USD", "")
	assert.True(t, httperr.IsBusiness(err, "booking_not_found"))

	closed := seedBooking(t, db, domain.StatusCancelled, domain.TypeScheduled)
	_, err = uc.Execute(ctx, closed.ID, "prov-1", 100, "USD", "")
	assert.True(t, httperr.IsBusiness(err, "booking_closed"))
}

func TestUpdateBidStatus_AcceptStampsBookingOnly(t *testing.T) {
	repo, db := newTestRepo(t)
	submit := NewSubmitBid(repo, zap.NewNop())
	update := NewUpdateBidStatus(repo, zap.NewNop())
	ctx := context.Background()

	b := seedBooking(t, db, domain.StatusAwaitingAssignment, domain.TypeScheduled)
	bid, err := submit.Execute(ctx, b.ID, "prov-1", 120, "USD", "")
	require.NoError(t, err)

	got, err := update.Execute(ctx, b.ID, bid.ID, domain.ResponseAccepted, "cust-1")
	require.NoError(t, err)
	assert.Equal(t, "accepted", got.Status)
	require.Len(t, got.AuditLog, 2)
	assert.Equal(t, "update_status", got.AuditLog[1].Action)

	// Accepting a bid never moves the booking status.
	var stored models.Booking
	require.NoError(t, db.First(&stored, "id = ?", b.ID).Error)
	assert.Equal(t, string(domain.StatusAwaitingAssignment), stored.Status)
	assert.NotNil(t, stored.Meta.BidAcceptedAt)
	assert.Equal(t, "prov-1", stored.Meta.BidAcceptedBy)

	assert.Equal(t, int64(1), countEvents(t, db, analytics.EventBidStatusChanged))
	assert.Equal(t, int64(0), countEvents(t, db, analytics.EventStatusTransition))
}

func TestUpdateBidStatus_Validation(t *testing.T) {
	repo, db := newTestRepo(t)
	update := NewUpdateBidStatus(repo, zap.NewNop())
	ctx := context.Background()
	b := seedBooking(t, db, domain.StatusAwaitingAssignment, domain.TypeScheduled)

	_, err := update.Execute(ctx, b.ID, "bid-1", "expired", "cust-1")
	assert.True(t, httperr.IsBusiness(err, "invalid_bid_status"))

	_, err = update.Execute(ctx, b.ID, "no-such-bid", domain.ResponseDeclined, "cust-1")
	assert.True(t, httperr.IsBusiness(err, "bid_not_found"))

	_, err = update.Execute(ctx, "no-such-id", "bid-1", domain.ResponseDeclined, "cust-1")
	assert.True(t, httperr.IsBusiness(err, "booking_not_found"))
}

func TestAddBidComment_AppendsAuditTruncated(t *testing.T) {
	repo, db := newTestRepo(t)
	submit := NewSubmitBid(repo, zap.NewNop())
	comment := NewAddBidComment(repo, zap.NewNop())
	ctx := context.Background()

	b := seedBooking(t, db, domain.StatusAwaitingAssignment, domain.TypeScheduled)
	bid, err := submit.Execute(ctx, b.ID, "prov-1", 120, "USD", "")
	require.NoError(t, err)

	longBody := strings.Repeat("x", 250)
	c, err := comment.Execute(ctx, b.ID, bid.ID, "cust-9", "customer", longBody)
	require.NoError(t, err)

	// The comment keeps the full body; the audit trail keeps a prefix.
	assert.Equal(t, longBody, c.Body)

	var stored models.BookingBid
	require.NoError(t, db.First(&stored, "id = ?", bid.ID).Error)
	require.Len(t, stored.AuditLog, 2)
	entry := stored.AuditLog[1]
	assert.Equal(t, "comment", entry.Action)
	assert.Equal(t, strings.Repeat("x", 100), entry.Payload["body"])

	assert.Equal(t, int64(1), countEvents(t, db, analytics.EventBidCommentAdded))
}

func TestAddBidComment_AuditTruncationKeepsRunesWhole(t *testing.T) {
	repo, db := newTestRepo(t)
	submit := NewSubmitBid(repo, zap.NewNop())
	comment := NewAddBidComment(repo, zap.NewNop())
	ctx := context.Background()

	b := seedBooking(t, db, domain.StatusAwaitingAssignment, domain.TypeScheduled)
	bid, err := submit.Execute(ctx, b.ID, "prov-1", 120, "USD", "")
	require.NoError(t, err)

	// 40 three-byte runes: the byte cap lands mid-rune.
	body := strings.Repeat("€", 40)
	c, err := comment.Execute(ctx, b.ID, bid.ID, "cust-9", "customer", body)
	require.NoError(t, err)
	assert.Equal(t, body, c.Body)

	var stored models.BookingBid
	require.NoError(t, db.First(&stored, "id = ?", bid.ID).Error)
	require.Len(t, stored.AuditLog, 2)
	got, ok := stored.AuditLog[1].Payload["body"].(string)
	require.True(t, ok)
	assert.Equal(t, strings.Repeat("€", 33), got)
	assert.True(t, utf8.ValidString(got))
}

func TestBidAuditTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 10))
	assert.Equal(t, "ab", truncate("abc", 2))
	assert.Equal(t, "", truncate("é", 1))
	assert.Equal(t, "é", truncate("éé", 3))
}

func TestAddBidComment_Validation(t *testing.T) {
	repo, db := newTestRepo(t)
	submit := NewSubmitBid(repo, zap.NewNop())
	comment := NewAddBidComment(repo, zap.NewNop())
	ctx := context.Background()

	b := seedBooking(t, db, domain.StatusAwaitingAssignment, domain.TypeScheduled)
	bid, err := submit.Execute(ctx, b.ID, "prov-1", 120, "USD", "")
	require.NoError(t, err)

	_, err = comment.Execute(ctx, b.ID, bid.ID, "cust-9", "customer", "   ")
	assert.True(t, httperr.IsBusiness(err, "comment_body_required"))

	_, err = comment.Execute(ctx, b.ID, bid.ID, "cust-9", "system", "hello")
	assert.True(t, httperr.IsBusiness(err, "invalid_author_type"))

	_, err = comment.Execute(ctx, b.ID, "no-such-bid", "cust-9", "customer", "hello")
	assert.True(t, httperr.IsBusiness(err, "bid_not_found"))
}

func TestListBids(t *testing.T) {
	repo, db := newTestRepo(t)
	submit := NewSubmitBid(repo, zap.NewNop())
	list := NewListBids(repo)
	ctx := context.Background()

	b := seedBooking(t, db, domain.StatusAwaitingAssignment, domain.TypeScheduled)
	_, err := submit.Execute(ctx, b.ID, "prov-1", 120, "USD", "")
	require.NoError(t, err)
	_, err = submit.Execute(ctx, b.ID, "prov-2", 110, "USD", "")
	require.NoError(t, err)

	bids, err := list.Execute(ctx, b.ID)
	require.NoError(t, err)
	assert.Len(t, bids, 2)

	_, err = list.Execute(ctx, "no-such-id")
	assert.True(t, httperr.IsBusiness(err, "booking_not_found"))
}
