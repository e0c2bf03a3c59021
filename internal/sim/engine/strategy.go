package engine

import "github.com/dasje/cookie-clicker-simulator/internal/sim/catalog"

// Decision is a strategy's verdict for one step: buy a named item, or
// stop purchasing. The zero value is stop.
type Decision struct {
	item string
	buy  bool
}

func Buy(item string) Decision { return Decision{item: item, buy: true} }

func Stop() Decision { return Decision{} }

// Item returns the picked item and true, or "" and false for stop.
func (d Decision) Item() (string, bool) { return d.item, d.buy }

func (d Decision) IsStop() bool { return !d.buy }

// Strategy decides the next purchase from a snapshot of the run: current
// balance and rate, a copy of the history, the time remaining before the
// horizon, and a read-only view of the working catalog. Strategies must
// be stateless and must not try to mutate the view. They may pick items
// that are unaffordable or unknown; the driver degrades gracefully or
// surfaces the error, so a strategy is never trusted for feasibility.
type Strategy func(balance, rate float64, history []Event, timeLeft float64, view catalog.View) Decision

// Observer receives each history event as the driver appends it,
// starting with the initial sentinel. Used for live streaming of runs.
type Observer func(Event)
