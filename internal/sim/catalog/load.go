package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Load reads a JSON array of item definitions and builds a validated
// catalog from it. See schemas/catalog.schema.json for the file shape.
func Load(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var items []Item
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	c, err := New(items)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return c, nil
}

// ClassicItems is the traditional ten-item build table with 1.15x cost
// growth. Used when no catalog file is configured.
func ClassicItems() []Item {
	mul := Growth{Kind: GrowMultiply, Factor: 1.15}
	return []Item{
		{ID: "Cursor", BaseCost: 15, Rate: 0.1, Growth: mul},
		{ID: "Grandma", BaseCost: 100, Rate: 0.5, Growth: mul},
		{ID: "Farm", BaseCost: 500, Rate: 4, Growth: mul},
		{ID: "Factory", BaseCost: 3000, Rate: 10, Growth: mul},
		{ID: "Mine", BaseCost: 10000, Rate: 40, Growth: mul},
		{ID: "Shipment", BaseCost: 40000, Rate: 100, Growth: mul},
		{ID: "Alchemy Lab", BaseCost: 200000, Rate: 400, Growth: mul},
		{ID: "Portal", BaseCost: 1666666, Rate: 6666, Growth: mul},
		{ID: "Time Machine", BaseCost: 123456789, Rate: 98765, Growth: mul},
		{ID: "Antimatter Condenser", BaseCost: 3999999999, Rate: 999999, Growth: mul},
	}
}
