package scam

import "go.uber.org/zap"

// ThresholdHeuristic flags bookings whose total crosses a fixed amount. The
// real scoring pipeline lives outside this service; this keeps the hook hot.
type ThresholdHeuristic struct {
	Threshold float64
	log       *zap.Logger
}

func NewThresholdHeuristic(threshold float64, log *zap.Logger) *ThresholdHeuristic {
	return &ThresholdHeuristic{Threshold: threshold, log: log}
}

func (h *ThresholdHeuristic) Run(check Check) error {
	if check.Booking.TotalAmount >= h.Threshold {
		h.log.Info("booking flagged for review",
			zap.String("booking_id", check.Booking.ID),
			zap.String("actor_id", check.ActorID),
			zap.Float64("total", check.Booking.TotalAmount),
		)
	}
	return nil
}
