package scam

import (
	"go.uber.org/zap"

	"github.com/fieldserve/marketplace-core/internal/models"
)

// Check is one booking submitted to the scam heuristic.
type Check struct {
	Booking *models.Booking
	ActorID string
}

// Heuristic scores a booking. Failures are swallowed by the dispatcher and
// never reach the calling transaction.
type Heuristic interface {
	Run(check Check) error
}

type Dispatcher struct {
	heuristic Heuristic
	log       *zap.Logger
	queue     chan Check
}

func NewDispatcher(heuristic Heuristic, log *zap.Logger) *Dispatcher {
	d := &Dispatcher{
		heuristic: heuristic,
		log:       log,
		queue:     make(chan Check, 100),
	}

	go d.worker()
	return d
}

func (d *Dispatcher) worker() {
	for check := range d.queue {
		if err := d.heuristic.Run(check); err != nil {
			d.log.Warn("scam heuristic failed",
				zap.String("booking_id", check.Booking.ID),
				zap.Error(err),
			)
		}
	}
}

// Dispatch is fire-and-forget. A full queue drops the check; the heuristic
// must never block or break a purchase.
func (d *Dispatcher) Dispatch(check Check) {
	select {
	case d.queue <- check:
	default:
		d.log.Warn("scam queue full, dropping check",
			zap.String("booking_id", check.Booking.ID),
		)
	}
}
