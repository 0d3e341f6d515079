package routes

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fieldserve/marketplace-core/internal/config"
	"github.com/fieldserve/marketplace-core/internal/finance"
	"github.com/fieldserve/marketplace-core/internal/handlers"
	infraRepo "github.com/fieldserve/marketplace-core/internal/infra/repository"
	"github.com/fieldserve/marketplace-core/internal/middleware"
	"github.com/fieldserve/marketplace-core/internal/scam"
	"github.com/fieldserve/marketplace-core/internal/settings"
	ucbooking "github.com/fieldserve/marketplace-core/internal/usecase/booking"
	ucpurchase "github.com/fieldserve/marketplace-core/internal/usecase/purchase"
)

func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg *config.Config, log *zap.Logger) {

	// ======================================================
	// INFRA (SINGLETONS)
	// ======================================================
	repo := infraRepo.NewBookingGormRepository(db)

	settingsProvider := settings.NewProvider(
		infraRepo.NewSettingsGormLoader(db),
		cfg.SettingsCacheTTL,
		log,
	)
	calc := finance.NewCalculator(settingsProvider)

	scamDispatcher := scam.NewDispatcher(
		scam.NewThresholdHeuristic(cfg.ScamThreshold, log),
		log,
	)

	// ======================================================
	// USE CASES
	// ======================================================
	createBookingUC := ucbooking.NewCreateBooking(repo, calc, log)
	transitionUC := ucbooking.NewTransitionStatus(repo, log)
	disputeUC := ucbooking.NewTriggerDispute(repo, log)
	resolveDisputeUC := ucbooking.NewResolveDispute(repo, log)
	getBookingUC := ucbooking.NewGetBooking(repo)
	listBookingsUC := ucbooking.NewListBookings(repo)

	assignUC := ucbooking.NewAssignProviders(repo, log)
	respondUC := ucbooking.NewRecordAssignmentResponse(repo, log)
	listAssignmentsUC := ucbooking.NewListAssignments(repo)

	submitBidUC := ucbooking.NewSubmitBid(repo, log)
	bidStatusUC := ucbooking.NewUpdateBidStatus(repo, log)
	bidCommentUC := ucbooking.NewAddBidComment(repo, log)
	listBidsUC := ucbooking.NewListBids(repo)

	historyLedger := ucbooking.NewHistoryLedger(repo, log)

	purchaseUC := ucpurchase.NewPurchaseServiceOffering(repo, calc, createBookingUC, scamDispatcher, log)
	releaseEscrowUC := ucpurchase.NewReleaseEscrow(repo, log)

	// ======================================================
	// HANDLERS
	// ======================================================
	bookingHandler := handlers.NewBookingHandler(
		createBookingUC,
		transitionUC,
		disputeUC,
		resolveDisputeUC,
		getBookingUC,
		listBookingsUC,
	)
	assignmentHandler := handlers.NewAssignmentHandler(assignUC, respondUC, listAssignmentsUC)
	bidHandler := handlers.NewBidHandler(submitBidUC, bidStatusUC, bidCommentUC, listBidsUC)
	historyHandler := handlers.NewHistoryHandler(historyLedger)
	purchaseHandler := handlers.NewPurchaseHandler(purchaseUC, releaseEscrowUC, calc)

	// ======================================================
	// API (JSON)
	// ======================================================
	api := r.Group("/api")
	api.Use(middleware.AuthMiddleware(cfg))
	{
		// ------------------------------
		// BOOKINGS
		// ------------------------------
		api.POST("/bookings", bookingHandler.Create)
		api.GET("/bookings", bookingHandler.List)
		api.GET("/bookings/:id", bookingHandler.Get)
		api.PATCH("/bookings/:id/status", bookingHandler.Transition)
		api.POST("/bookings/:id/dispute", bookingHandler.Dispute)
		api.POST("/bookings/:id/dispute/resolve", bookingHandler.ResolveDispute)

		// ------------------------------
		// ASSIGNMENTS
		// ------------------------------
		api.POST("/bookings/:id/assignments", assignmentHandler.Assign)
		api.GET("/bookings/:id/assignments", assignmentHandler.List)
		api.POST("/bookings/:id/assignments/response", assignmentHandler.Respond)

		// ------------------------------
		// BIDS
		// ------------------------------
		api.POST("/bookings/:id/bids", bidHandler.Submit)
		api.GET("/bookings/:id/bids", bidHandler.List)
		api.PATCH("/bookings/:id/bids/:bidId/status", bidHandler.UpdateStatus)
		api.POST("/bookings/:id/bids/:bidId/comments", bidHandler.Comment)

		// ------------------------------
		// HISTORY
		// ------------------------------
		api.GET("/bookings/:id/history", historyHandler.List)
		api.POST("/bookings/:id/history", historyHandler.Create)
		api.PATCH("/bookings/:id/history/:entryId", historyHandler.Update)
		api.DELETE("/bookings/:id/history/:entryId", historyHandler.Delete)

		// ------------------------------
		// PURCHASE / ESCROW
		// ------------------------------
		api.POST("/purchases", purchaseHandler.Purchase)
		api.POST("/orders/:orderId/escrow/release", purchaseHandler.ReleaseEscrow)
		api.POST("/quotes", purchaseHandler.Quote)
	}
}
