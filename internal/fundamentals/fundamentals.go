// Package fundamentals extracts company profile and valuation figures from
// source metadata and joins them per symbol.
package fundamentals

import (
	"encoding/json"
	"math"
	"strconv"

	"MarketAnalyst/internal/calculator"
	"MarketAnalyst/internal/catalog"
)

const billion = 1e9

// Profile describes a listed company.
type Profile struct {
	Symbol           string   `json:"symbol"`
	Name             string   `json:"name"`
	ISIN             string   `json:"isin,omitempty"`
	WKN              string   `json:"wkn,omitempty"`
	Industry         string   `json:"industry,omitempty"`
	Sector           string   `json:"sector,omitempty"`
	MarketCapBn      *float64 `json:"market_cap_bn"`
	DividendYieldPct *float64 `json:"dividend_yield_pct"`
}

// Metrics are the core valuation figures.
type Metrics struct {
	Symbol      string   `json:"symbol"`
	PE          *float64 `json:"pe"`
	EPS         *float64 `json:"eps"`
	RevenueBn   *float64 `json:"revenue_bn"`
	NetIncomeBn *float64 `json:"net_income_bn"`
	Employees   *int64   `json:"employees"`
	Beta        *float64 `json:"beta"`
	RatingMean  *float64 `json:"rating_mean"`
	RatingKey   string   `json:"rating_key,omitempty"`
	Rating      Rating   `json:"rating"`
}

// Extra holds balance-sheet figures fetched alongside the core metrics.
type Extra struct {
	Symbol          string   `json:"symbol"`
	ROEPct          *float64 `json:"roe_pct"`
	DebtToEquityPct *float64 `json:"debt_to_equity_pct"`
	CashBn          *float64 `json:"cash_bn"`
}

// Extract reads a source metadata map. Missing or non-numeric fields stay nil.
// The source reports dividend yield and return on equity as fractions; both
// are converted to percent. Debt to equity is already a percentage.
func Extract(listing catalog.Stock, meta map[string]any) (Profile, Metrics, Extra) {
	sym := listing.Symbol

	name := listing.Name
	if name == "" || name == sym {
		if n, ok := meta["longName"].(string); ok && n != "" {
			name = n
		} else if name == "" {
			name = sym
		}
	}
	p := Profile{
		Symbol:           sym,
		Name:             name,
		ISIN:             listing.ISIN,
		WKN:              listing.WKN,
		Industry:         str(meta, "industry"),
		Sector:           str(meta, "sector"),
		MarketCapBn:      scaled(meta, "marketCap", 1/billion),
		DividendYieldPct: scaled(meta, "dividendYield", 100),
	}

	m := Metrics{
		Symbol:      sym,
		PE:          scaled(meta, "trailingPE", 1),
		EPS:         scaled(meta, "trailingEps", 1),
		RevenueBn:   scaled(meta, "totalRevenue", 1/billion),
		NetIncomeBn: scaled(meta, "netIncomeToCommon", 1/billion),
		Beta:        scaled(meta, "beta", 1),
		RatingMean:  scaled(meta, "recommendationMean", 1),
		RatingKey:   str(meta, "recommendationKey"),
	}
	m.Rating = ClassifyRating(m.RatingKey)
	if v, ok := number(meta, "fullTimeEmployees"); ok {
		n := int64(math.Round(v))
		m.Employees = &n
	}

	e := Extra{
		Symbol:          sym,
		ROEPct:          scaled(meta, "returnOnEquity", 100),
		DebtToEquityPct: scaled(meta, "debtToEquity", 1),
		CashBn:          scaled(meta, "totalCash", 1/billion),
	}
	return p, m, e
}

// Combined is one symbol's metrics joined with its extra figures.
type Combined struct {
	Symbol  string  `json:"symbol"`
	Metrics Metrics `json:"metrics"`
	Extra   *Extra  `json:"extra,omitempty"`
}

// Merge joins metrics with extras on symbol, in the order of metrics.
// Extras without metrics are ignored; metrics without extras keep a nil Extra.
func Merge(metrics []Metrics, extras []Extra) []Combined {
	bySymbol := make(map[string]Extra, len(extras))
	for _, e := range extras {
		bySymbol[e.Symbol] = e
	}
	out := make([]Combined, 0, len(metrics))
	for _, m := range metrics {
		c := Combined{Symbol: m.Symbol, Metrics: m}
		if e, ok := bySymbol[m.Symbol]; ok {
			c.Extra = &e
		}
		out = append(out, c)
	}
	return out
}

func str(meta map[string]any, key string) string {
	s, _ := meta[key].(string)
	return s
}

func number(meta map[string]any, key string) (float64, bool) {
	var v float64
	switch n := meta[key].(type) {
	case float64:
		v = n
	case float32:
		v = float64(n)
	case int:
		v = float64(n)
	case int64:
		v = float64(n)
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		v = f
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, false
		}
		v = f
	default:
		return 0, false
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func scaled(meta map[string]any, key string, factor float64) *float64 {
	v, ok := number(meta, key)
	if !ok {
		return nil
	}
	r := calculator.Round2(v * factor)
	return &r
}
