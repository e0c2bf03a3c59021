package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownItem is returned by lookups for an id the catalog does not hold.
var ErrUnknownItem = errors.New("unknown item")

type GrowthKind string

const (
	GrowMultiply GrowthKind = "MULTIPLY"
	GrowAdd      GrowthKind = "ADD"
)

// Growth is an item's cost progression rule, fixed at construction.
// MULTIPLY scales the cost by Factor (>= 1) after each purchase,
// ADD raises it by Increment (>= 0). Either way the cost never decreases.
type Growth struct {
	Kind      GrowthKind `json:"kind"`
	Factor    float64    `json:"factor,omitempty"`
	Increment float64    `json:"increment,omitempty"`
}

type Item struct {
	ID       string  `json:"id"`
	BaseCost float64 `json:"base_cost"`
	Rate     float64 `json:"rate"`
	Growth   Growth  `json:"growth"`
}

// View is the read-only surface handed to strategies. It exposes current
// costs and rate contributions but no way to mutate the catalog.
type View interface {
	Cost(id string) (float64, error)
	RateContribution(id string) (float64, error)
	Items() []string
}

// Catalog tracks the current cost of every purchasable item. Costs move
// under each item's growth rule; definitions and rate contributions are
// immutable after New.
type Catalog struct {
	defs    map[string]Item
	costs   map[string]float64
	palette []string
	digest  string
}

func New(items []Item) (*Catalog, error) {
	c := &Catalog{
		defs:  make(map[string]Item, len(items)),
		costs: make(map[string]float64, len(items)),
	}
	for _, it := range items {
		if it.ID == "" {
			return nil, fmt.Errorf("catalog: empty id")
		}
		if _, dup := c.defs[it.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate id %q", it.ID)
		}
		if it.BaseCost < 0 {
			return nil, fmt.Errorf("catalog: item %q: negative base_cost %v", it.ID, it.BaseCost)
		}
		if it.Rate <= 0 {
			return nil, fmt.Errorf("catalog: item %q: rate must be positive, got %v", it.ID, it.Rate)
		}
		switch it.Growth.Kind {
		case GrowMultiply:
			if it.Growth.Factor < 1 {
				return nil, fmt.Errorf("catalog: item %q: growth factor must be >= 1, got %v", it.ID, it.Growth.Factor)
			}
		case GrowAdd:
			if it.Growth.Increment < 0 {
				return nil, fmt.Errorf("catalog: item %q: growth increment must be >= 0, got %v", it.ID, it.Growth.Increment)
			}
		default:
			return nil, fmt.Errorf("catalog: item %q: unknown growth kind %q", it.ID, it.Growth.Kind)
		}
		c.defs[it.ID] = it
		c.costs[it.ID] = it.BaseCost
	}

	ids := make([]string, 0, len(c.defs))
	for id := range c.defs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	c.palette = ids

	canon := make([]Item, len(ids))
	for i, id := range ids {
		canon[i] = c.defs[id]
	}
	raw, err := json.Marshal(canon)
	if err != nil {
		return nil, fmt.Errorf("catalog: digest: %w", err)
	}
	c.digest = sha256Hex(raw)
	return c, nil
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// Digest identifies the catalog definitions (not current costs). Two
// catalogs built from the same definitions share a digest regardless of
// file formatting or purchase history.
func (c *Catalog) Digest() string { return c.digest }

func (c *Catalog) Cost(id string) (float64, error) {
	cost, ok := c.costs[id]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownItem, id)
	}
	return cost, nil
}

func (c *Catalog) RateContribution(id string) (float64, error) {
	def, ok := c.defs[id]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownItem, id)
	}
	return def.Rate, nil
}

// ApplyPurchase advances the item's cost under its growth rule. The rate
// contribution is unchanged.
func (c *Catalog) ApplyPurchase(id string) error {
	def, ok := c.defs[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownItem, id)
	}
	switch def.Growth.Kind {
	case GrowMultiply:
		c.costs[id] *= def.Growth.Factor
	case GrowAdd:
		c.costs[id] += def.Growth.Increment
	}
	return nil
}

// Items returns every id in sorted order. The slice is a copy.
func (c *Catalog) Items() []string {
	out := make([]string, len(c.palette))
	copy(out, c.palette)
	return out
}

func (c *Catalog) Definition(id string) (Item, error) {
	def, ok := c.defs[id]
	if !ok {
		return Item{}, fmt.Errorf("%w: %q", ErrUnknownItem, id)
	}
	return def, nil
}

// Clone returns an independent copy. Purchases against the clone never
// reach the original, so a caller's catalog survives any number of runs.
func (c *Catalog) Clone() *Catalog {
	out := &Catalog{
		defs:    make(map[string]Item, len(c.defs)),
		costs:   make(map[string]float64, len(c.costs)),
		palette: make([]string, len(c.palette)),
		digest:  c.digest,
	}
	for id, def := range c.defs {
		out.defs[id] = def
	}
	for id, cost := range c.costs {
		out.costs[id] = cost
	}
	copy(out.palette, c.palette)
	return out
}
