package model

import (
	"fmt"
	"time"
)

// OHLCV represents a single candlestick bar.
type OHLCV struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// PriceSeries holds one symbol's bars at a single sampling interval.
// Bars are ordered by strictly increasing UTC timestamp.
type PriceSeries struct {
	Symbol   string   `json:"symbol"`
	Interval Interval `json:"interval"`
	Bars     []OHLCV  `json:"bars"`
}

// Len returns the number of bars.
func (s PriceSeries) Len() int { return len(s.Bars) }

// Closes returns a fresh slice of close prices.
func (s PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		closes[i] = b.Close
	}
	return closes
}

// Times returns a fresh slice of bar timestamps.
func (s PriceSeries) Times() []time.Time {
	times := make([]time.Time, len(s.Bars))
	for i, b := range s.Bars {
		times[i] = b.Time
	}
	return times
}

// Between returns the bars with from <= Time < to. A zero bound is open.
func (s PriceSeries) Between(from, to time.Time) PriceSeries {
	out := PriceSeries{Symbol: s.Symbol, Interval: s.Interval}
	for _, b := range s.Bars {
		if !from.IsZero() && b.Time.Before(from) {
			continue
		}
		if !to.IsZero() && !b.Time.Before(to) {
			break
		}
		out.Bars = append(out.Bars, b)
	}
	return out
}

// Interval is a sampling cadence understood by the market-data source.
type Interval string

const (
	Interval15m Interval = "15m"
	Interval1h  Interval = "1h"
	Interval1d  Interval = "1d"
	Interval1wk Interval = "1wk"
	Interval1mo Interval = "1mo"
	Interval3mo Interval = "3mo"
)

// Intervals lists every supported interval from finest to coarsest.
var Intervals = []Interval{Interval15m, Interval1h, Interval1d, Interval1wk, Interval1mo, Interval3mo}

// ParseInterval validates s as an Interval.
func ParseInterval(s string) (Interval, error) {
	for _, iv := range Intervals {
		if string(iv) == s {
			return iv, nil
		}
	}
	return "", fmt.Errorf("%w: unknown interval %q", ErrInvalidRequest, s)
}

// Intraday reports whether bars of this interval are finer than one day.
func (iv Interval) Intraday() bool {
	return iv == Interval15m || iv == Interval1h
}

// Step returns the nominal duration between intraday bars.
// Coarser intervals advance by calendar arithmetic, see Advance.
func (iv Interval) Step() time.Duration {
	switch iv {
	case Interval15m:
		return 15 * time.Minute
	case Interval1h:
		return time.Hour
	case Interval1d:
		return 24 * time.Hour
	case Interval1wk:
		return 7 * 24 * time.Hour
	}
	return 0
}

// Advance moves t forward by n steps of the interval. Monthly and quarterly
// steps keep the day of month, clamped to the length of the target month, so
// every step lands in its own bucket.
func (iv Interval) Advance(t time.Time, n int) time.Time {
	switch iv {
	case Interval1d:
		return t.AddDate(0, 0, n)
	case Interval1wk:
		return t.AddDate(0, 0, 7*n)
	case Interval1mo:
		return addMonths(t, n)
	case Interval3mo:
		return addMonths(t, 3*n)
	}
	return t.Add(time.Duration(n) * iv.Step())
}

func addMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	if last := first.AddDate(0, 1, -1).Day(); d > last {
		d = last
	}
	return first.AddDate(0, 0, d-1)
}

// DefaultPeriod is the history length fetched for a detail chart at this interval.
func (iv Interval) DefaultPeriod() Period {
	switch iv {
	case Interval15m:
		return Period15d
	case Interval1h:
		return Period40d
	case Interval1d:
		return Period1y
	case Interval1wk, Interval1mo:
		return Period5y
	case Interval3mo:
		return Period10y
	}
	return Period1y
}

// Period is a trailing history length such as "1y".
type Period string

const (
	Period15d Period = "15d"
	Period40d Period = "40d"
	Period1mo Period = "1mo"
	Period3mo Period = "3mo"
	Period6mo Period = "6mo"
	Period1y  Period = "1y"
	Period2y  Period = "2y"
	Period5y  Period = "5y"
	Period10y Period = "10y"
)

var periodOffsets = map[Period][3]int{
	Period15d: {0, 0, 15},
	Period40d: {0, 0, 40},
	Period1mo: {0, 1, 0},
	Period3mo: {0, 3, 0},
	Period6mo: {0, 6, 0},
	Period1y:  {1, 0, 0},
	Period2y:  {2, 0, 0},
	Period5y:  {5, 0, 0},
	Period10y: {10, 0, 0},
}

// ParsePeriod validates s as a Period.
func ParsePeriod(s string) (Period, error) {
	p := Period(s)
	if _, ok := periodOffsets[p]; !ok {
		return "", fmt.Errorf("%w: unknown period %q", ErrInvalidRequest, s)
	}
	return p, nil
}

// Start returns the first instant covered by the period ending at asOf.
func (p Period) Start(asOf time.Time) time.Time {
	off, ok := periodOffsets[p]
	if !ok {
		return asOf
	}
	return asOf.AddDate(-off[0], -off[1], -off[2])
}

// Span selects the history to fetch: either a trailing Period or an explicit [Start, End) range.
type Span struct {
	Period Period
	Start  time.Time
	End    time.Time
}

// SpanOf returns a Span covering a trailing period.
func SpanOf(p Period) Span { return Span{Period: p} }

// SpanBetween returns a Span covering [start, end).
func SpanBetween(start, end time.Time) Span { return Span{Start: start, End: end} }

// IsRange reports whether the span is an explicit date range.
func (s Span) IsRange() bool { return s.Period == "" }
