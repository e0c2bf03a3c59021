// Package report turns finished runs into comparable outputs: the
// (time, lifetime total) point series, CSV exports, purchase tallies,
// and HTML charts.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/elliotchance/orderedmap/v2"

	"github.com/dasje/cookie-clicker-simulator/internal/sim/engine"
)

// Point is one sample of accumulated production over time.
type Point struct {
	Time  float64 `json:"time"`
	Total float64 `json:"total"`
}

// Series is one run's trajectory under a display name, usually the
// strategy that produced it.
type Series struct {
	Name   string  `json:"name"`
	Points []Point `json:"points"`
}

// Points projects the history onto (time, lifetime total) pairs, sentinel
// included, preserving order.
func Points(history []engine.Event) []Point {
	out := make([]Point, len(history))
	for i, ev := range history {
		out[i] = Point{Time: ev.Time, Total: ev.Total}
	}
	return out
}

// ItemCount is a purchase tally entry.
type ItemCount struct {
	Item  string `json:"item"`
	Count int    `json:"count"`
}

// PurchaseCounts tallies purchases per item, ordered by each item's first
// appearance in the run.
func PurchaseCounts(history []engine.Event) []ItemCount {
	counts := orderedmap.NewOrderedMap[string, int]()
	for _, ev := range history {
		if ev.Item == "" {
			continue
		}
		counts.Set(ev.Item, counts.GetOrDefault(ev.Item, 0)+1)
	}
	out := make([]ItemCount, 0, counts.Len())
	for el := counts.Front(); el != nil; el = el.Next() {
		out = append(out, ItemCount{Item: el.Key, Count: el.Value})
	}
	return out
}

// WriteCSV emits all series in long form: series,time,total. One header
// row, then one row per point.
func WriteCSV(w io.Writer, series []Series) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"series", "time", "total"}); err != nil {
		return err
	}
	for _, s := range series {
		for _, p := range s.Points {
			row := []string{
				s.Name,
				strconv.FormatFloat(p.Time, 'f', -1, 64),
				strconv.FormatFloat(p.Total, 'f', -1, 64),
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("series %s: %w", s.Name, err)
			}
		}
	}
	cw.Flush()
	return cw.Error()
}
