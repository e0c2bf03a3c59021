package engine

import (
	"errors"
	"fmt"
	"math"
)

// DefaultBaseRate is the production rate of a fresh state before any
// purchases.
const DefaultBaseRate = 1.0

// ErrNonPositiveRate is returned by TimeToReach when the current rate
// cannot grow the balance. The model has no way to express an infinite
// wait, so the condition surfaces instead of being absorbed.
var ErrNonPositiveRate = errors.New("non-positive rate")

// Event is one entry of the run history. Item is empty only for the
// initial sentinel. Total is the lifetime total at the moment of the
// event.
type Event struct {
	Time  float64 `json:"time"`
	Item  string  `json:"item,omitempty"`
	Cost  float64 `json:"cost"`
	Total float64 `json:"total"`
}

// State is the mutable core of one simulation run: elapsed time, current
// balance, lifetime total, production rate, and the append-only history.
// Mutations happen only through Advance and RecordPurchase; accessors
// return copies, so no caller can reach the internals.
type State struct {
	elapsed float64
	balance float64
	total   float64
	rate    float64
	history []Event
}

// NewState returns the zero state with the default base rate. The history
// starts with the sentinel entry (time 0, no item, zero cost, zero total).
func NewState() *State {
	return NewStateWithRate(DefaultBaseRate)
}

func NewStateWithRate(rate float64) *State {
	return &State{
		rate:    rate,
		history: []Event{{}},
	}
}

func (s *State) Balance() float64       { return s.balance }
func (s *State) Rate() float64          { return s.rate }
func (s *State) ElapsedTime() float64   { return s.elapsed }
func (s *State) LifetimeTotal() float64 { return s.total }

// History returns an independent copy of the event log, ordered by
// non-decreasing time.
func (s *State) History() []Event {
	out := make([]Event, len(s.history))
	copy(out, s.history)
	return out
}

// TimeToReach returns the smallest whole duration after which the balance
// reaches target at the current rate. Zero when the target is already
// covered. Fails with ErrNonPositiveRate when the rate is not positive,
// since no finite wait exists.
func (s *State) TimeToReach(target float64) (float64, error) {
	if target <= s.balance {
		return 0, nil
	}
	if s.rate <= 0 {
		return 0, fmt.Errorf("%w: %v", ErrNonPositiveRate, s.rate)
	}
	return math.Ceil((target - s.balance) / s.rate), nil
}

// Advance moves the clock forward by d, accruing d*rate into both the
// balance and the lifetime total. Non-positive durations are a no-op.
func (s *State) Advance(d float64) {
	if d <= 0 {
		return
	}
	s.elapsed += d
	earned := s.rate * d
	s.balance += earned
	s.total += earned
}

// RecordPurchase deducts cost, raises the rate by rateIncrease, and
// appends the purchase to the history. A cost above the current balance
// is a silent no-op, not an error.
func (s *State) RecordPurchase(item string, cost, rateIncrease float64) {
	if cost > s.balance {
		return
	}
	s.balance -= cost
	s.rate += rateIncrease
	s.history = append(s.history, Event{
		Time:  s.elapsed,
		Item:  item,
		Cost:  cost,
		Total: s.total,
	})
}
