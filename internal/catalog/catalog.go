// Package catalog lists well-known listings that can be selected by name and
// maps ticker symbols to the exchange they trade on.
package catalog

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var embedded []byte

// DefaultMax is the number of symbols a selection may hold.
const DefaultMax = 3

// Stock is one catalog entry.
type Stock struct {
	Name   string `yaml:"name" json:"name"`
	Symbol string `yaml:"symbol" json:"symbol"`
	ISIN   string `yaml:"isin" json:"isin,omitempty"`
	WKN    string `yaml:"wkn" json:"wkn,omitempty"`
}

// Market groups the stocks of one index or exchange.
type Market struct {
	Name   string  `yaml:"name" json:"name"`
	MIC    string  `yaml:"mic" json:"mic"`
	Stocks []Stock `yaml:"stocks" json:"stocks"`
}

// Catalog is a read-only index over markets.
type Catalog struct {
	Markets []Market `yaml:"markets" json:"markets"`

	byName   map[string]Stock
	bySymbol map[string]Stock
}

// Parse decodes a catalog document.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	c.byName = make(map[string]Stock)
	c.bySymbol = make(map[string]Stock)
	for _, m := range c.Markets {
		for _, s := range m.Stocks {
			if s.Name == "" || s.Symbol == "" {
				return nil, fmt.Errorf("catalog market %q: entry without name or symbol", m.Name)
			}
			c.byName[s.Name] = s
			c.bySymbol[strings.ToUpper(s.Symbol)] = s
		}
	}
	return &c, nil
}

var loadDefault = sync.OnceValues(func() (*Catalog, error) { return Parse(embedded) })

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := loadDefault()
	if err != nil {
		// The embedded document is part of the binary; a parse error is a build defect.
		panic(err)
	}
	return c
}

// Lookup finds a stock by display name.
func (c *Catalog) Lookup(name string) (Stock, bool) {
	s, ok := c.byName[name]
	return s, ok
}

// BySymbol finds a stock by ticker symbol, case-insensitively.
func (c *Catalog) BySymbol(symbol string) (Stock, bool) {
	s, ok := c.bySymbol[strings.ToUpper(symbol)]
	return s, ok
}

// Names returns every display name in sorted order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.byName))
	for n := range c.byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Selection is the outcome of resolving user input to symbols.
type Selection struct {
	Symbols  []string         `json:"symbols"`
	Listings map[string]Stock `json:"listings"`
	Unknown  []string         `json:"unknown,omitempty"`
}

// Resolve turns catalog names or a comma-separated list of symbols into at
// most limit symbols. Manual symbols take precedence over names; names not in
// the catalog are reported in Unknown.
func (c *Catalog) Resolve(names []string, manual string, limit int) Selection {
	if limit <= 0 {
		limit = DefaultMax
	}
	sel := Selection{Listings: make(map[string]Stock)}

	if strings.TrimSpace(manual) != "" {
		for _, raw := range strings.Split(manual, ",") {
			sym := strings.ToUpper(strings.TrimSpace(raw))
			if sym == "" || len(sel.Symbols) == limit {
				continue
			}
			if _, dup := sel.Listings[sym]; dup {
				continue
			}
			listing, ok := c.BySymbol(sym)
			if !ok {
				listing = Stock{Name: sym, Symbol: sym}
			}
			sel.Symbols = append(sel.Symbols, sym)
			sel.Listings[sym] = listing
		}
		return sel
	}

	for _, name := range names {
		s, ok := c.Lookup(name)
		if !ok {
			sel.Unknown = append(sel.Unknown, name)
			continue
		}
		if _, dup := sel.Listings[s.Symbol]; dup || len(sel.Symbols) == limit {
			continue
		}
		sel.Symbols = append(sel.Symbols, s.Symbol)
		sel.Listings[s.Symbol] = s
	}
	return sel
}
