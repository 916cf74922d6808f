package reconciler

import (
	"time"

	"github.com/benbjohnson/clock"
	"github.com/cenkalti/backoff/v4"
)

// clockTimer drives backoff retries from the reconciler's clock.
type clockTimer struct {
	clock clock.Clock
	timer *clock.Timer
}

var _ backoff.Timer = (*clockTimer)(nil)

func (t *clockTimer) Start(duration time.Duration) {
	if t.timer == nil {
		t.timer = t.clock.Timer(duration)
		return
	}

	t.timer.Reset(duration)
}

func (t *clockTimer) Stop() {
	if t.timer != nil {
		t.timer.Stop()
	}
}

func (t *clockTimer) C() <-chan time.Time {
	return t.timer.C
}
