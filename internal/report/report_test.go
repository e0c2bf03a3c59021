package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/dasje/cookie-clicker-simulator/internal/sim/engine"
	"github.com/dasje/cookie-clicker-simulator/internal/sim/simtest"
	"github.com/dasje/cookie-clicker-simulator/internal/sim/strategy"
)

func fixtureHistory(t *testing.T) []engine.Event {
	t.Helper()
	h := simtest.NewHarness(t, simtest.TwoItemTable(), 40)
	return h.Run(strategy.Cheapest).History()
}

func TestPointsProjection(t *testing.T) {
	history := []engine.Event{
		{},
		{Time: 3, Item: "a", Cost: 2, Total: 3},
		{Time: 7, Item: "b", Cost: 5, Total: 9},
	}
	pts := Points(history)
	want := []Point{{0, 0}, {3, 3}, {7, 9}}
	if len(pts) != len(want) {
		t.Fatalf("points: %+v", pts)
	}
	for i := range want {
		if pts[i] != want[i] {
			t.Fatalf("point %d: got %+v want %+v", i, pts[i], want[i])
		}
	}
}

func TestPointsFromRealRun(t *testing.T) {
	history := fixtureHistory(t)
	pts := Points(history)
	if len(pts) != len(history) {
		t.Fatalf("length: %d vs %d", len(pts), len(history))
	}
	if pts[0] != (Point{}) {
		t.Fatalf("first point not the origin: %+v", pts[0])
	}
	for i := 1; i < len(pts); i++ {
		if pts[i].Time < pts[i-1].Time || pts[i].Total < pts[i-1].Total {
			t.Fatalf("projection not monotone at %d: %+v", i, pts[i-1:i+1])
		}
	}
}

func TestPurchaseCountsFirstSeenOrder(t *testing.T) {
	history := []engine.Event{
		{},
		{Time: 1, Item: "belt", Cost: 1, Total: 1},
		{Time: 2, Item: "drill", Cost: 2, Total: 2},
		{Time: 3, Item: "belt", Cost: 1, Total: 3},
		{Time: 4, Item: "belt", Cost: 1, Total: 4},
	}
	counts := PurchaseCounts(history)
	if len(counts) != 2 {
		t.Fatalf("counts: %+v", counts)
	}
	if counts[0] != (ItemCount{Item: "belt", Count: 3}) {
		t.Fatalf("first entry: %+v", counts[0])
	}
	if counts[1] != (ItemCount{Item: "drill", Count: 1}) {
		t.Fatalf("second entry: %+v", counts[1])
	}
}

func TestPurchaseCountsEmptyRun(t *testing.T) {
	if counts := PurchaseCounts([]engine.Event{{}}); len(counts) != 0 {
		t.Fatalf("sentinel tallied: %+v", counts)
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	series := []Series{
		{Name: "cheapest", Points: []Point{{0, 0}, {2.5, 10}}},
		{Name: "none", Points: []Point{{0, 0}}},
	}
	if err := WriteCSV(&buf, series); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	want := []string{
		"series,time,total",
		"cheapest,0,0",
		"cheapest,2.5,10",
		"none,0,0",
	}
	if len(lines) != len(want) {
		t.Fatalf("csv lines: %q", lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("line %d: got %q want %q", i, lines[i], want[i])
		}
	}
}

func TestRenderChart(t *testing.T) {
	history := fixtureHistory(t)
	var buf bytes.Buffer
	err := RenderChart(&buf, "strategies", []Series{
		{Name: "cheapest", Points: Points(history)},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "cheapest") {
		t.Fatalf("series name missing from chart output")
	}
	if !strings.Contains(out, "echarts") {
		t.Fatalf("chart output does not look like an echarts page")
	}
}

func TestRenderChartRejectsEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderChart(&buf, "empty", nil); err == nil {
		t.Fatalf("empty series accepted")
	}
}
