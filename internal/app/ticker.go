package app

import (
	"context"
	"time"
)

// Ticker drives the simulation at a fixed period. Each firing calls the
// step with the real elapsed seconds since the previous one, so a late
// firing never slows the simulated clock down. The step itself is
// expected to serialize on the strand (Application.AdvanceTime does);
// because the call is synchronous, a new tick cannot start before the
// previous one has fully finished.
type Ticker struct {
	period time.Duration
	step   func(dt float64)
}

// NewTicker wires a fixed period to a step function.
func NewTicker(period time.Duration, step func(dt float64)) *Ticker {
	return &Ticker{period: period, step: step}
}

// Run blocks, firing the step every period, until ctx is cancelled.
func (t *Ticker) Run(ctx context.Context) {
	ticker := time.NewTicker(t.period)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now
			t.step(dt)
		}
	}
}
