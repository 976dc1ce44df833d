// Package elements serves the static periodic-table reference dataset. The
// data ships with the binary and is never written by the catalog; an override
// file can be supplied for alternate layouts.
package elements

import (
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/elemephant/backend/internal/domain"
)

//go:embed data/periodic-table.json
var dataFS embed.FS

type Dataset struct {
	all      []domain.Element
	bySymbol map[string]domain.Element
}

// Load returns the embedded dataset, or the file at ELEMENTS_PATH when set.
func Load() (*Dataset, error) {
	if path := os.Getenv("ELEMENTS_PATH"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read elements dataset %q: %w", path, err)
		}
		return Parse(raw)
	}
	raw, err := dataFS.ReadFile("data/periodic-table.json")
	if err != nil {
		return nil, fmt.Errorf("read embedded elements dataset: %w", err)
	}
	return Parse(raw)
}

func Parse(raw []byte) (*Dataset, error) {
	var all []domain.Element
	if err := json.Unmarshal(raw, &all); err != nil {
		return nil, fmt.Errorf("parse elements dataset: %w", err)
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("elements dataset is empty")
	}

	bySymbol := make(map[string]domain.Element, len(all))
	for _, e := range all {
		if e.Symbol == "" {
			return nil, fmt.Errorf("element %q has no symbol", e.Name)
		}
		if !e.Category.Valid() {
			return nil, fmt.Errorf("element %q has unknown category %q", e.Symbol, e.Category)
		}
		if _, dup := bySymbol[e.Symbol]; dup {
			return nil, fmt.Errorf("duplicate element symbol %q", e.Symbol)
		}
		bySymbol[e.Symbol] = e
	}

	sort.Slice(all, func(i, j int) bool { return all[i].AtomicNumber < all[j].AtomicNumber })
	return &Dataset{all: all, bySymbol: bySymbol}, nil
}

// All returns the elements ordered by atomic number. Callers must not mutate
// the returned slice.
func (d *Dataset) All() []domain.Element {
	return d.all
}

func (d *Dataset) BySymbol(symbol string) (domain.Element, bool) {
	e, ok := d.bySymbol[symbol]
	return e, ok
}

func (d *Dataset) Len() int {
	return len(d.all)
}
