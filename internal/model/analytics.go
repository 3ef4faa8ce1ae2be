package model

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"time"
)

// LookbackWindow is a named trailing span ending at the as-of date.
type LookbackWindow struct {
	Label string `json:"label"`
	Days  int    `json:"days"`
}

// Start returns the first calendar day of the window, asOf minus Days.
func (w LookbackWindow) Start(asOf time.Time) time.Time {
	return Date(asOf).AddDate(0, 0, -w.Days)
}

// Date truncates t to its calendar day in UTC.
func Date(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// PerformanceWindows are the trailing-return windows of the performance table.
var PerformanceWindows = []LookbackWindow{
	{Label: "1 day", Days: 1},
	{Label: "1 week", Days: 7},
	{Label: "1 month", Days: 30},
	{Label: "6 months", Days: 182},
	{Label: "1 year", Days: 365},
	{Label: "3 years", Days: 3 * 365},
	{Label: "5 years", Days: 5 * 365},
}

// RiskWindows are the windows of the risk table.
var RiskWindows = []LookbackWindow{
	{Label: "1 month", Days: 30},
	{Label: "6 months", Days: 182},
	{Label: "1 year", Days: 365},
	{Label: "3 years", Days: 3 * 365},
	{Label: "5 years", Days: 5 * 365},
}

// LongestWindow returns the window with the most days.
func LongestWindow(windows []LookbackWindow) LookbackWindow {
	var longest LookbackWindow
	for _, w := range windows {
		if w.Days > longest.Days {
			longest = w
		}
	}
	return longest
}

// PerformanceCell is one window's percentage change; Change is nil when undefined.
type PerformanceCell struct {
	Window  string   `json:"window"`
	Change  *float64 `json:"change"`
	Failure *Failure `json:"failure,omitempty"`
}

// PerformanceRow holds one symbol's trailing returns, one cell per window.
type PerformanceRow struct {
	Symbol  string            `json:"symbol"`
	Cells   []PerformanceCell `json:"cells"`
	Failure *Failure          `json:"failure,omitempty"`
}

// Cell returns the cell for a window label.
func (r PerformanceRow) Cell(label string) (PerformanceCell, bool) {
	for _, c := range r.Cells {
		if c.Window == label {
			return c, true
		}
	}
	return PerformanceCell{}, false
}

// RiskCell is one window's risk triple. The three values are nil together;
// Failure may also accompany present values when a guard resolved one of them.
type RiskCell struct {
	Window      string   `json:"window"`
	Volatility  *float64 `json:"volatility_pct"`
	Sharpe      *float64 `json:"sharpe"`
	MaxDrawdown *float64 `json:"max_drawdown_pct"`
	Failure     *Failure `json:"failure,omitempty"`
}

// RiskMetricSet holds one symbol's risk metrics, one cell per window.
type RiskMetricSet struct {
	Symbol  string     `json:"symbol"`
	Cells   []RiskCell `json:"cells"`
	Failure *Failure   `json:"failure,omitempty"`
}

// Cell returns the cell for a window label.
func (r RiskMetricSet) Cell(label string) (RiskCell, bool) {
	for _, c := range r.Cells {
		if c.Window == label {
			return c, true
		}
	}
	return RiskCell{}, false
}

// Values is a numeric series in which NaN marks an undefined point.
// It encodes NaN as JSON null.
type Values []float64

func (v Values) MarshalJSON() ([]byte, error) {
	if v == nil {
		return []byte("null"), nil
	}
	var b bytes.Buffer
	b.WriteByte('[')
	for i, x := range v {
		if i > 0 {
			b.WriteByte(',')
		}
		if math.IsNaN(x) || math.IsInf(x, 0) {
			b.WriteString("null")
			continue
		}
		b.WriteString(strconv.FormatFloat(x, 'g', -1, 64))
	}
	b.WriteByte(']')
	return b.Bytes(), nil
}

// IndexedSeries is a close series rebased so that its first point is 100.
type IndexedSeries struct {
	Symbol string      `json:"symbol"`
	Times  []time.Time `json:"times"`
	Values Values      `json:"values"`
}

// Comparison holds indexed series aligned on their common timestamps.
type Comparison struct {
	Period  Period          `json:"period"`
	Times   []time.Time     `json:"times"`
	Series  []IndexedSeries `json:"series"`
	Dropped []*Failure      `json:"dropped,omitempty"`
}

// IndicatorOptions selects which overlays to compute.
type IndicatorOptions struct {
	SMA50  bool `json:"sma50" yaml:"sma50"`
	SMA200 bool `json:"sma200" yaml:"sma200"`
	RSI    bool `json:"rsi" yaml:"rsi"`
	Volume bool `json:"volume" yaml:"volume"`
}

// IndicatorSeries holds overlays aligned with the input bars. A disabled
// indicator is nil; leading points below an indicator's minimum period are NaN.
type IndicatorSeries struct {
	Symbol   string      `json:"symbol"`
	Interval Interval    `json:"interval"`
	Times    []time.Time `json:"times"`
	Close    Values      `json:"close"`
	Volume   Values      `json:"volume,omitempty"`
	SMA50    Values      `json:"sma50,omitempty"`
	SMA200   Values      `json:"sma200,omitempty"`
	RSI14    Values      `json:"rsi14,omitempty"`
}

// ForecastMethod selects a forecasting model.
type ForecastMethod string

const (
	MethodNone                 ForecastMethod = ""
	MethodExponentialSmoothing ForecastMethod = "exponential_smoothing"
	MethodSeasonal             ForecastMethod = "seasonal"
)

// ParseForecastMethod validates s. An empty string selects no forecast.
func ParseForecastMethod(s string) (ForecastMethod, error) {
	switch ForecastMethod(s) {
	case MethodNone, MethodExponentialSmoothing, MethodSeasonal:
		return ForecastMethod(s), nil
	}
	return MethodNone, fmt.Errorf("%w: unknown forecast method %q", ErrInvalidRequest, s)
}

// ForecastPoint is one future value; bounds are nil for models without uncertainty.
type ForecastPoint struct {
	Time  time.Time `json:"time"`
	Value float64   `json:"value"`
	Lower *float64  `json:"lower,omitempty"`
	Upper *float64  `json:"upper,omitempty"`
}

// ForecastResult is the output of a successful forecast.
type ForecastResult struct {
	Symbol   string          `json:"symbol"`
	Interval Interval        `json:"interval"`
	Method   ForecastMethod  `json:"method"`
	Horizon  int             `json:"horizon"`
	Points   []ForecastPoint `json:"points"`
}

// Float returns a pointer to v, for optional numeric cells.
func Float(v float64) *float64 { return &v }

// RangeWindows are the trailing windows of the high/low range table.
var RangeWindows = []LookbackWindow{
	{Label: "30 days", Days: 30},
	{Label: "52 weeks", Days: 364},
}

// RangeBand is the high and low of one window and the position of the last
// close between them, 0 at the low and 1 at the high.
type RangeBand struct {
	Window   string   `json:"window"`
	High     *float64 `json:"high"`
	Low      *float64 `json:"low"`
	Position *float64 `json:"position"`
	Failure  *Failure `json:"failure,omitempty"`
}

// RangeSnapshot holds one symbol's range bands as of a date.
type RangeSnapshot struct {
	Symbol  string      `json:"symbol"`
	Last    *float64    `json:"last"`
	Bands   []RangeBand `json:"bands"`
	Failure *Failure    `json:"failure,omitempty"`
}
