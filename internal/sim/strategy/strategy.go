// Package strategy holds the reference purchase strategies. They are
// interchangeable engine.Strategy values; none of them is engine
// machinery, and none of them is guaranteed to be any good.
package strategy

import (
	"fmt"
	"strings"

	"github.com/dasje/cookie-clicker-simulator/internal/sim/catalog"
	"github.com/dasje/cookie-clicker-simulator/internal/sim/engine"
)

// None stops immediately. Useful as a baseline: the run degenerates to
// pure accrual at the base rate.
func None(_, _ float64, _ []engine.Event, _ float64, _ catalog.View) engine.Decision {
	return engine.Stop()
}

// Always picks the same item forever, affordable or not. Deliberately
// broken; exercises the driver's graceful degradation.
func Always(item string) engine.Strategy {
	return func(_, _ float64, _ []engine.Event, _ float64, _ catalog.View) engine.Decision {
		return engine.Buy(item)
	}
}

// Cheapest buys the lowest-cost item still reachable within the remaining
// time, counting both the current balance and everything the current rate
// will produce. Stops when nothing is reachable.
func Cheapest(balance, rate float64, _ []engine.Event, timeLeft float64, view catalog.View) engine.Decision {
	return pickByCost(balance, rate, timeLeft, view, false)
}

// MostExpensive is Cheapest's mirror image: same reachability set,
// highest cost wins.
func MostExpensive(balance, rate float64, _ []engine.Event, timeLeft float64, view catalog.View) engine.Decision {
	return pickByCost(balance, rate, timeLeft, view, true)
}

func pickByCost(balance, rate, timeLeft float64, view catalog.View, wantMax bool) engine.Decision {
	budget := balance + rate*timeLeft
	best := ""
	var bestCost float64
	for _, id := range view.Items() {
		cost, err := view.Cost(id)
		if err != nil {
			continue
		}
		if cost > budget {
			continue
		}
		if best == "" || (wantMax && cost > bestCost) || (!wantMax && cost < bestCost) {
			best, bestCost = id, cost
		}
	}
	if best == "" {
		return engine.Stop()
	}
	return engine.Buy(best)
}

// Direction selects which end of the cost-to-rate scale Ratio goes for.
type Direction int

const (
	// RatioMin favors the most production per unit cost.
	RatioMin Direction = iota
	// RatioMax favors the least production per unit cost.
	RatioMax
)

// Ratio extremizes cost divided by rate contribution across the whole
// catalog. The direction is a policy parameter; neither is endorsed as
// the better player. It never checks affordability; the driver's horizon
// check is the only guard.
func Ratio(dir Direction) engine.Strategy {
	return func(_, _ float64, _ []engine.Event, _ float64, view catalog.View) engine.Decision {
		best := ""
		var bestScore float64
		for _, id := range view.Items() {
			cost, err := view.Cost(id)
			if err != nil {
				continue
			}
			contrib, err := view.RateContribution(id)
			if err != nil {
				continue
			}
			score := cost / contrib
			if best == "" || (dir == RatioMax && score > bestScore) || (dir == RatioMin && score < bestScore) {
				best, bestScore = id, score
			}
		}
		if best == "" {
			return engine.Stop()
		}
		return engine.Buy(best)
	}
}

// Names lists the fixed strategy names ByName accepts, in display order.
// "always:<item>" is accepted on top of these.
func Names() []string {
	return []string{"cheapest", "expensive", "ratio-min", "ratio-max", "none"}
}

// ByName resolves a strategy from its configuration name.
func ByName(name string) (engine.Strategy, error) {
	switch name {
	case "none":
		return None, nil
	case "cheapest":
		return Cheapest, nil
	case "expensive":
		return MostExpensive, nil
	case "ratio-min":
		return Ratio(RatioMin), nil
	case "ratio-max":
		return Ratio(RatioMax), nil
	}
	if item, ok := strings.CutPrefix(name, "always:"); ok {
		if item == "" {
			return nil, fmt.Errorf("strategy %q: missing item", name)
		}
		return Always(item), nil
	}
	return nil, fmt.Errorf("unknown strategy %q", name)
}
