package engine

import (
	"github.com/dasje/cookie-clicker-simulator/internal/sim/catalog"
)

// Options tunes a single run. The zero value gives the default base rate
// and no observer.
type Options struct {
	// BaseRate is the production rate before any purchases. Zero selects
	// DefaultBaseRate.
	BaseRate float64
	// Observer, when set, receives every history event as it is appended,
	// starting with the initial sentinel.
	Observer Observer
}

// Simulate plays strategy against a private clone of cat until horizon is
// exhausted, then sweeps up whatever the final balance still affords. The
// caller's catalog is never mutated; a negative horizon is treated as
// zero. Unknown-item picks and a non-positive rate end the run with an
// error, everything else a broken strategy can do degrades to a stop.
func Simulate(cat *catalog.Catalog, horizon float64, strat Strategy) (*State, error) {
	return SimulateWithOptions(cat, horizon, strat, Options{})
}

func SimulateWithOptions(cat *catalog.Catalog, horizon float64, strat Strategy, opts Options) (*State, error) {
	if horizon < 0 {
		horizon = 0
	}
	rate := opts.BaseRate
	if rate == 0 {
		rate = DefaultBaseRate
	}
	work := cat.Clone()
	st := NewStateWithRate(rate)

	observe := func(ev Event) {
		if opts.Observer != nil {
			opts.Observer(ev)
		}
	}
	observe(st.history[0])

	// Purchase-and-wait phase: wait until the pick is affordable, buy it,
	// grow its cost, repeat. A pick that cannot complete before the
	// horizon ends the phase.
	for st.elapsed <= horizon {
		dec := strat(st.balance, st.rate, st.History(), horizon-st.elapsed, work)
		item, ok := dec.Item()
		if !ok {
			break
		}
		cost, err := work.Cost(item)
		if err != nil {
			return nil, err
		}
		wait, err := st.TimeToReach(cost)
		if err != nil {
			return nil, err
		}
		if st.elapsed+wait > horizon {
			break
		}
		if cost == 0 && !growsFromZero(work, item) {
			// A free item whose cost stays free would stall the loop.
			// Leave it to the terminal sweep, which buys it once.
			break
		}
		st.Advance(wait)
		if err := buy(st, work, item, cost, observe); err != nil {
			return nil, err
		}
	}

	// Run out the clock.
	st.Advance(horizon - st.elapsed)

	// Terminal sweep: no waiting is possible anymore, so only purchases
	// covered by the balance already accumulated may still happen.
	for {
		dec := strat(st.balance, st.rate, st.History(), 0, work)
		item, ok := dec.Item()
		if !ok {
			break
		}
		cost, err := work.Cost(item)
		if err != nil {
			return nil, err
		}
		if cost > st.balance {
			break
		}
		if err := buy(st, work, item, cost, observe); err != nil {
			return nil, err
		}
		if cost == 0 {
			if next, _ := work.Cost(item); next == 0 {
				// One free purchase is honored; a second would never
				// make progress.
				break
			}
		}
	}
	return st, nil
}

func buy(st *State, work *catalog.Catalog, item string, cost float64, observe func(Event)) error {
	contrib, err := work.RateContribution(item)
	if err != nil {
		return err
	}
	before := len(st.history)
	st.RecordPurchase(item, cost, contrib)
	if len(st.history) > before {
		observe(st.history[len(st.history)-1])
	}
	return work.ApplyPurchase(item)
}

// growsFromZero reports whether an item's zero cost turns positive after
// one purchase. Multiplicative growth keeps zero at zero; additive growth
// escapes it only with a positive increment.
func growsFromZero(work *catalog.Catalog, item string) bool {
	def, err := work.Definition(item)
	if err != nil {
		return false
	}
	return def.Growth.Kind == catalog.GrowAdd && def.Growth.Increment > 0
}
