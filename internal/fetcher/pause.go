package fetcher

import (
	"context"
	"time"
)

// pauseController abstracts how the fetcher sleeps between requests.
type pauseController interface {
	Pause(ctx context.Context, delay time.Duration)
}

type timerPauseController struct{}

func (p *timerPauseController) Pause(ctx context.Context, delay time.Duration) {
	if delay <= 0 {
		return
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// politeDelay picks a duration uniformly from [max(0,low), max(low,high)]
// seconds using u in [0,1). It reports false when high <= 0, meaning no
// delay is configured.
func politeDelay(low, high, u float64) (time.Duration, bool) {
	if high <= 0 {
		return 0, false
	}
	lo := max(0, low)
	hi := max(low, high)
	seconds := lo + u*(hi-lo)
	return time.Duration(seconds * float64(time.Second)), true
}
