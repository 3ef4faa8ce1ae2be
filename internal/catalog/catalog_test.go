package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_Loads(t *testing.T) {
	c := Default()
	require.Len(t, c.Markets, 2)

	apple, ok := c.Lookup("Apple")
	require.True(t, ok)
	assert.Equal(t, "AAPL", apple.Symbol)
	assert.Equal(t, "US0378331005", apple.ISIN)
	assert.Equal(t, "865985", apple.WKN)

	sap, ok := c.BySymbol("sap.de")
	require.True(t, ok)
	assert.Equal(t, "SAP", sap.Name)
}

func TestResolve(t *testing.T) {
	c := Default()

	tests := []struct {
		name        string
		names       []string
		manual      string
		limit       int
		wantSymbols []string
		wantUnknown []string
	}{
		{"names", []string{"Apple", "Amazon", "NVIDIA"}, "", 3, []string{"AAPL", "AMZN", "NVDA"}, nil},
		{"manual wins", []string{"Apple"}, " msft, sap.de ", 3, []string{"MSFT", "SAP.DE"}, nil},
		{"manual capped", nil, "A,B,C,D", 3, []string{"A", "B", "C"}, nil},
		{"manual skips blanks and duplicates", nil, "A,,a,B", 3, []string{"A", "B"}, nil},
		{"names capped", []string{"Apple", "Amazon", "NVIDIA", "Tesla"}, "", 3, []string{"AAPL", "AMZN", "NVDA"}, nil},
		{"unknown name reported", []string{"Apple", "Nope"}, "", 3, []string{"AAPL"}, []string{"Nope"}},
		{"default limit", []string{"Apple", "Amazon", "NVIDIA", "Tesla"}, "", 0, []string{"AAPL", "AMZN", "NVDA"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel := c.Resolve(tt.names, tt.manual, tt.limit)
			assert.Equal(t, tt.wantSymbols, sel.Symbols)
			assert.Equal(t, tt.wantUnknown, sel.Unknown)
			for _, s := range sel.Symbols {
				assert.Contains(t, sel.Listings, s)
			}
		})
	}
}

func TestResolve_ManualKnownSymbolKeepsListing(t *testing.T) {
	sel := Default().Resolve(nil, "msft", 3)
	assert.Equal(t, "Microsoft", sel.Listings["MSFT"].Name)

	sel = Default().Resolve(nil, "xyz", 3)
	assert.Equal(t, "XYZ", sel.Listings["XYZ"].Name)
}

func TestParse_RejectsIncompleteEntry(t *testing.T) {
	_, err := Parse([]byte("markets:\n  - name: X\n    stocks:\n      - {name: Foo}\n"))
	assert.Error(t, err)
}

func TestExchange(t *testing.T) {
	tests := map[string]string{
		"AAPL":    "xnys",
		"SAP.DE":  "xfra",
		"VOD.L":   "xlon",
		"7203.T":  "xtks",
		"SHOP.TO": "xtse",
		"ABC.V":   "xtsx",
		"OMV.VI":  "xwbo",
	}
	for symbol, want := range tests {
		assert.Equal(t, want, Exchange(symbol), symbol)
	}
}
