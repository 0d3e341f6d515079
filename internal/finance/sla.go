package finance

import (
	"context"
	"time"
)

// DefaultSlaMinutes applies when no target is configured for a booking type
// and there is no configured default either.
const DefaultSlaMinutes = 180

// ResolveSlaExpiry returns now + the configured target minutes for the
// booking type. The result is frozen on the booking at creation and is not
// recomputed on reschedule.
func (c *Calculator) ResolveSlaExpiry(ctx context.Context, bookingType string, now time.Time) (time.Time, error) {
	snap, err := c.source.Snapshot(ctx)
	if err != nil {
		return time.Time{}, err
	}

	minutes := snap.SlaMinutes(bookingType)
	if minutes <= 0 {
		minutes = DefaultSlaMinutes
	}

	return now.Add(time.Duration(minutes) * time.Minute), nil
}
