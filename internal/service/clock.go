package service

import (
	"context"
	"time"
)

// ClockLayout is the live clock's HH:MM:SS format.
const ClockLayout = "15:04:05"

// LiveClock emits the wall clock at a fixed interval.
type LiveClock struct {
	interval time.Duration
	loc      *time.Location
	now      func() time.Time
}

// NewLiveClock builds a clock ticking every interval (one second when zero).
func NewLiveClock(interval time.Duration, loc *time.Location) *LiveClock {
	if interval <= 0 {
		interval = time.Second
	}
	if loc == nil {
		loc = time.Local
	}
	return &LiveClock{interval: interval, loc: loc, now: time.Now}
}

// Now returns the current time formatted.
func (c *LiveClock) Now() string {
	return c.now().In(c.loc).Format(ClockLayout)
}

// Run calls tick with the formatted time immediately and then on every
// interval until ctx is done. The ticker is stopped on return.
func (c *LiveClock) Run(ctx context.Context, tick func(string)) error {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	tick(c.Now())
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			tick(c.Now())
		}
	}
}
