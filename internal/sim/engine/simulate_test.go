package engine

import (
	"errors"
	"testing"

	"github.com/dasje/cookie-clicker-simulator/internal/sim/catalog"
)

func stopStrategy(_, _ float64, _ []Event, _ float64, _ catalog.View) Decision {
	return Stop()
}

func always(item string) Strategy {
	return func(_, _ float64, _ []Event, _ float64, _ catalog.View) Decision {
		return Buy(item)
	}
}

func newCatalog(t *testing.T, items ...catalog.Item) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New(items)
	if err != nil {
		t.Fatalf("new catalog: %v", err)
	}
	return c
}

func TestSimulate_StopStrategy(t *testing.T) {
	cat := newCatalog(t, catalog.Item{
		ID: "gen", BaseCost: 15, Rate: 1,
		Growth: catalog.Growth{Kind: catalog.GrowMultiply, Factor: 1.15},
	})
	st, err := Simulate(cat, 37, stopStrategy)
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	if st.ElapsedTime() != 37 {
		t.Fatalf("elapsed: %v", st.ElapsedTime())
	}
	if st.Balance() != 37 || st.LifetimeTotal() != 37 {
		t.Fatalf("balance %v total %v", st.Balance(), st.LifetimeTotal())
	}
	if st.Rate() != DefaultBaseRate {
		t.Fatalf("rate: %v", st.Rate())
	}
	if h := st.History(); len(h) != 1 || h[0] != (Event{}) {
		t.Fatalf("history: %+v", h)
	}
}

func TestSimulate_NegativeHorizonTreatedAsZero(t *testing.T) {
	cat := newCatalog(t, catalog.Item{
		ID: "gen", BaseCost: 15, Rate: 1,
		Growth: catalog.Growth{Kind: catalog.GrowMultiply, Factor: 1.15},
	})
	st, err := Simulate(cat, -5, stopStrategy)
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	if st.ElapsedTime() != 0 || st.Balance() != 0 || len(st.History()) != 1 {
		t.Fatalf("negative horizon leaked: elapsed %v balance %v", st.ElapsedTime(), st.Balance())
	}
}

func TestSimulate_AlwaysPickFullTrajectory(t *testing.T) {
	cat := newCatalog(t, catalog.Item{
		ID: "gen", BaseCost: 1, Rate: 1,
		Growth: catalog.Growth{Kind: catalog.GrowMultiply, Factor: 2},
	})
	st, err := Simulate(cat, 10, always("gen"))
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}

	want := []Event{
		{},
		{Time: 1, Item: "gen", Cost: 1, Total: 1},
		{Time: 2, Item: "gen", Cost: 2, Total: 3},
		{Time: 4, Item: "gen", Cost: 4, Total: 9},
		{Time: 6, Item: "gen", Cost: 8, Total: 17},
		{Time: 9, Item: "gen", Cost: 16, Total: 32},
	}
	got := st.History()
	if len(got) != len(want) {
		t.Fatalf("history length: got %d want %d\n%+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("event %d: got %+v want %+v", i, got[i], want[i])
		}
	}
	if st.ElapsedTime() != 10 || st.Balance() != 7 || st.LifetimeTotal() != 38 || st.Rate() != 6 {
		t.Fatalf("final state: elapsed %v balance %v total %v rate %v",
			st.ElapsedTime(), st.Balance(), st.LifetimeTotal(), st.Rate())
	}
}

func TestSimulate_PurchaseAtExactHorizon(t *testing.T) {
	cat := newCatalog(t, catalog.Item{
		ID: "gen", BaseCost: 10, Rate: 1,
		Growth: catalog.Growth{Kind: catalog.GrowMultiply, Factor: 2},
	})
	st, err := Simulate(cat, 10, always("gen"))
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	h := st.History()
	if len(h) != 2 {
		t.Fatalf("history: %+v", h)
	}
	if h[1].Time != 10 || h[1].Cost != 10 {
		t.Fatalf("boundary purchase: %+v", h[1])
	}
}

func TestSimulate_HorizonZeroUnaffordable(t *testing.T) {
	cat := newCatalog(t, catalog.Item{
		ID: "gen", BaseCost: 15, Rate: 1,
		Growth: catalog.Growth{Kind: catalog.GrowMultiply, Factor: 1.15},
	})
	st, err := Simulate(cat, 0, always("gen"))
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	if st.ElapsedTime() != 0 || st.Balance() != 0 || len(st.History()) != 1 {
		t.Fatalf("horizon zero bought something: %+v", st.History())
	}
}

func TestSimulate_HorizonZeroFreeItemBoughtInSweep(t *testing.T) {
	cat := newCatalog(t, catalog.Item{
		ID: "free", BaseCost: 0, Rate: 2,
		Growth: catalog.Growth{Kind: catalog.GrowMultiply, Factor: 1.15},
	})
	st, err := Simulate(cat, 0, always("free"))
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	h := st.History()
	if len(h) != 2 {
		t.Fatalf("want exactly one purchase, got %+v", h)
	}
	if h[1] != (Event{Time: 0, Item: "free", Cost: 0, Total: 0}) {
		t.Fatalf("sweep purchase: %+v", h[1])
	}
	if st.Rate() != 3 {
		t.Fatalf("rate after free purchase: %v", st.Rate())
	}
}

func TestSimulate_FreeItemThatStaysFreeBuysOnce(t *testing.T) {
	cat := newCatalog(t, catalog.Item{
		ID: "free", BaseCost: 0, Rate: 2,
		Growth: catalog.Growth{Kind: catalog.GrowMultiply, Factor: 2},
	})
	st, err := Simulate(cat, 50, always("free"))
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	h := st.History()
	if len(h) != 2 {
		t.Fatalf("want exactly one purchase, got %d events", len(h))
	}
	if h[1].Time != 50 {
		t.Fatalf("free purchase should land in the sweep at the horizon: %+v", h[1])
	}
}

func TestSimulate_FreeAdditiveItemBuysInMainPhase(t *testing.T) {
	cat := newCatalog(t, catalog.Item{
		ID: "free", BaseCost: 0, Rate: 2,
		Growth: catalog.Growth{Kind: catalog.GrowAdd, Increment: 5},
	})
	st, err := Simulate(cat, 3, always("free"))
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	want := []Event{
		{},
		{Time: 0, Item: "free", Cost: 0, Total: 0},
		{Time: 2, Item: "free", Cost: 5, Total: 6},
	}
	got := st.History()
	if len(got) != len(want) {
		t.Fatalf("history: %+v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("event %d: got %+v want %+v", i, got[i], want[i])
		}
	}
	if st.ElapsedTime() != 3 || st.Balance() != 6 || st.LifetimeTotal() != 11 || st.Rate() != 5 {
		t.Fatalf("final state: elapsed %v balance %v total %v rate %v",
			st.ElapsedTime(), st.Balance(), st.LifetimeTotal(), st.Rate())
	}
}

func TestSimulate_SweepSpendsAccumulatedBalance(t *testing.T) {
	cat := newCatalog(t, catalog.Item{
		ID: "slot", BaseCost: 10, Rate: 1,
		Growth: catalog.Growth{Kind: catalog.GrowAdd, Increment: 10},
	})
	// Hold every purchase until the horizon, then spend the pile.
	patient := func(_, _ float64, _ []Event, timeLeft float64, _ catalog.View) Decision {
		if timeLeft > 0 {
			return Stop()
		}
		return Buy("slot")
	}
	st, err := Simulate(cat, 35, patient)
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	h := st.History()
	if len(h) != 3 {
		t.Fatalf("sweep purchases: %+v", h)
	}
	// Growth applies between sweep purchases, so the second one costs more.
	if h[1].Cost != 10 || h[2].Cost != 20 {
		t.Fatalf("sweep costs: %v then %v", h[1].Cost, h[2].Cost)
	}
	if h[1].Time != 35 || h[2].Time != 35 {
		t.Fatalf("sweep purchases not at the horizon: %+v", h)
	}
	if st.Balance() != 5 {
		t.Fatalf("leftover balance: %v", st.Balance())
	}
}

func TestSimulate_StrategySeesHistory(t *testing.T) {
	cat := newCatalog(t, catalog.Item{
		ID: "gen", BaseCost: 1, Rate: 1,
		Growth: catalog.Growth{Kind: catalog.GrowAdd, Increment: 0},
	})
	twoThenStop := func(_, _ float64, history []Event, _ float64, _ catalog.View) Decision {
		if len(history) >= 3 {
			return Stop()
		}
		return Buy("gen")
	}
	st, err := Simulate(cat, 100, twoThenStop)
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	if len(st.History()) != 3 {
		t.Fatalf("strategy did not see appended history: %+v", st.History())
	}
	if st.ElapsedTime() != 100 {
		t.Fatalf("clock did not run out: %v", st.ElapsedTime())
	}
}

func TestSimulate_UnknownItemSurfaces(t *testing.T) {
	cat := newCatalog(t, catalog.Item{
		ID: "gen", BaseCost: 1, Rate: 1,
		Growth: catalog.Growth{Kind: catalog.GrowMultiply, Factor: 2},
	})
	st, err := Simulate(cat, 10, always("ghost"))
	if !errors.Is(err, catalog.ErrUnknownItem) {
		t.Fatalf("want ErrUnknownItem, got %v", err)
	}
	if st != nil {
		t.Fatalf("state returned alongside error")
	}
}

func TestSimulate_NonPositiveBaseRateSurfaces(t *testing.T) {
	cat := newCatalog(t, catalog.Item{
		ID: "gen", BaseCost: 5, Rate: 1,
		Growth: catalog.Growth{Kind: catalog.GrowMultiply, Factor: 2},
	})
	_, err := SimulateWithOptions(cat, 10, always("gen"), Options{BaseRate: -2})
	if !errors.Is(err, ErrNonPositiveRate) {
		t.Fatalf("want ErrNonPositiveRate, got %v", err)
	}
}

func TestSimulate_CallerCatalogUntouched(t *testing.T) {
	cat := newCatalog(t, catalog.Item{
		ID: "gen", BaseCost: 1, Rate: 1,
		Growth: catalog.Growth{Kind: catalog.GrowMultiply, Factor: 2},
	})
	if _, err := Simulate(cat, 10, always("gen")); err != nil {
		t.Fatalf("simulate: %v", err)
	}
	cost, err := cat.Cost("gen")
	if err != nil || cost != 1 {
		t.Fatalf("caller catalog mutated: cost %v err %v", cost, err)
	}
}

func TestSimulate_ObserverSeesEveryEvent(t *testing.T) {
	cat := newCatalog(t, catalog.Item{
		ID: "gen", BaseCost: 1, Rate: 1,
		Growth: catalog.Growth{Kind: catalog.GrowMultiply, Factor: 2},
	})
	var seen []Event
	st, err := SimulateWithOptions(cat, 10, always("gen"), Options{
		Observer: func(ev Event) { seen = append(seen, ev) },
	})
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	h := st.History()
	if len(seen) != len(h) {
		t.Fatalf("observer saw %d events, history has %d", len(seen), len(h))
	}
	for i := range h {
		if seen[i] != h[i] {
			t.Fatalf("observer event %d: got %+v want %+v", i, seen[i], h[i])
		}
	}
}

func TestSimulate_BaseRateOption(t *testing.T) {
	cat := newCatalog(t, catalog.Item{
		ID: "gen", BaseCost: 1, Rate: 1,
		Growth: catalog.Growth{Kind: catalog.GrowMultiply, Factor: 2},
	})
	st, err := SimulateWithOptions(cat, 4, stopStrategy, Options{BaseRate: 5})
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	if st.Balance() != 20 || st.Rate() != 5 {
		t.Fatalf("base rate ignored: balance %v rate %v", st.Balance(), st.Rate())
	}
}
