// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package ticker

import "time"

//go:generate mockgen -source ticker.go -destination ticker_mocks.go -package ticker

// Ticker is an abstraction of a ticker from standard time package.
// It contains a channel which produces ticks at certain intervals
// defined by implementations. Stopping a ticker ends the delivery of ticks.
type Ticker interface {

	// C returns the channel on which the ticks are delivered.
	C() <-chan time.Time

	// Stop turns off a ticker. After Stop, no more ticks will be sent.
	Stop()
}

// Factory creates tickers firing at the given interval. Components that need
// periodic work accept a factory so tests can substitute the clock.
type Factory func(interval time.Duration) Ticker

// NewTimeTickerFactory is the Factory producing TimeTickers.
func NewTimeTickerFactory() Factory {
	return func(interval time.Duration) Ticker {
		return NewTimeTicker(interval)
	}
}

// TimeTicker wraps the standard time.Ticker.
type TimeTicker struct {
	ticker *time.Ticker
}

func NewTimeTicker(d time.Duration) TimeTicker {
	return TimeTicker{time.NewTicker(d)}
}

func (t TimeTicker) C() <-chan time.Time {
	return t.ticker.C
}

func (t TimeTicker) Stop() {
	t.ticker.Stop()
}

// ManualTicker is a ticker whose ticks are triggered explicitly by calling
// Tick. It is intended for tests of components driven by tickers.
type ManualTicker struct {
	c       chan time.Time
	stopped chan struct{}
}

// NewManualTicker creates a ticker that only ticks on request.
func NewManualTicker() *ManualTicker {
	return &ManualTicker{
		c:       make(chan time.Time),
		stopped: make(chan struct{}),
	}
}

func (t *ManualTicker) C() <-chan time.Time {
	return t.c
}

// Tick delivers a tick and blocks until it is consumed or the ticker is stopped.
// It returns false if the ticker was stopped before the tick was consumed.
func (t *ManualTicker) Tick() bool {
	select {
	case t.c <- time.Now():
		return true
	case <-t.stopped:
		return false
	}
}

func (t *ManualTicker) Stop() {
	select {
	case <-t.stopped:
	default:
		close(t.stopped)
	}
}
