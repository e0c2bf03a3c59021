// Package simtest is a small black-box helper for tests that need
// finished simulation runs as fixtures. It drives the engine only through
// exported APIs so it can be used from any package.
package simtest

import (
	"testing"

	"github.com/dasje/cookie-clicker-simulator/internal/sim/catalog"
	"github.com/dasje/cookie-clicker-simulator/internal/sim/engine"
)

type Harness struct {
	T       *testing.T
	Catalog *catalog.Catalog
	Horizon float64
	Opts    engine.Options
}

func NewHarness(t *testing.T, items []catalog.Item, horizon float64) *Harness {
	t.Helper()
	cat, err := catalog.New(items)
	if err != nil {
		t.Fatalf("simtest: new catalog: %v", err)
	}
	return &Harness{T: t, Catalog: cat, Horizon: horizon}
}

// TwoItemTable is a compact catalog that gives strategies a real choice:
// a cheap slow item and an expensive fast one.
func TwoItemTable() []catalog.Item {
	return []catalog.Item{
		{ID: "cheap", BaseCost: 5, Rate: 1, Growth: catalog.Growth{Kind: catalog.GrowMultiply, Factor: 2}},
		{ID: "pricey", BaseCost: 30, Rate: 10, Growth: catalog.Growth{Kind: catalog.GrowMultiply, Factor: 2}},
	}
}

// Run executes one simulation and fails the test on any engine error.
func (h *Harness) Run(strat engine.Strategy) *engine.State {
	h.T.Helper()
	st, err := engine.SimulateWithOptions(h.Catalog, h.Horizon, strat, h.Opts)
	if err != nil {
		h.T.Fatalf("simtest: simulate: %v", err)
	}
	return st
}

// Purchases reduces a run to its purchased item sequence, sentinel
// excluded.
func Purchases(st *engine.State) []string {
	h := st.History()
	out := make([]string, 0, len(h)-1)
	for _, ev := range h[1:] {
		out = append(out, ev.Item)
	}
	return out
}

// AssertSentinel asserts the history opens with the zero sentinel entry.
func AssertSentinel(t *testing.T, history []engine.Event) {
	t.Helper()
	if len(history) == 0 {
		t.Errorf("AssertSentinel: empty history")
		return
	}
	if history[0] != (engine.Event{}) {
		t.Errorf("AssertSentinel: first event %+v", history[0])
	}
}

// AssertHistoryOrdered asserts event times never go backwards.
func AssertHistoryOrdered(t *testing.T, history []engine.Event) {
	t.Helper()
	for i := 1; i < len(history); i++ {
		if history[i].Time < history[i-1].Time {
			t.Errorf("AssertHistoryOrdered: event %d at %v after %v", i, history[i].Time, history[i-1].Time)
		}
	}
}

// AssertLifetimeCoversBalance asserts the lifetime total never drops
// below the live balance.
func AssertLifetimeCoversBalance(t *testing.T, st *engine.State) {
	t.Helper()
	if st.LifetimeTotal() < st.Balance() {
		t.Errorf("AssertLifetimeCoversBalance: total %v below balance %v", st.LifetimeTotal(), st.Balance())
	}
}

// AssertPurchaseSequence asserts the run bought exactly the given items
// in order.
func AssertPurchaseSequence(t *testing.T, st *engine.State, want ...string) {
	t.Helper()
	got := Purchases(st)
	if len(got) != len(want) {
		t.Errorf("AssertPurchaseSequence: got %v want %v", got, want)
		return
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("AssertPurchaseSequence: purchase %d: got %q want %q", i, got[i], want[i])
			return
		}
	}
}
