// Package store holds the fetched price series, one per symbol, normalized
// to UTC at ingestion so that no downstream code branches on time zones.
package store

import (
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"MarketAnalyst/internal/model"
)

// Store is an in-memory set of immutable price series sharing one interval.
type Store struct {
	interval model.Interval
	mu       sync.RWMutex
	series   map[string]model.PriceSeries
	order    []string
}

// New creates an empty store for bars of the given interval.
func New(interval model.Interval) *Store {
	return &Store{
		interval: interval,
		series:   make(map[string]model.PriceSeries),
	}
}

// Interval returns the sampling interval of every series in the store.
func (s *Store) Interval() model.Interval { return s.interval }

// Put normalizes bars and stores them under symbol, replacing any previous series.
// exchangeTZ is the zone the source reports the exchange in; nil means UTC.
func (s *Store) Put(symbol string, bars []model.OHLCV, exchangeTZ *time.Location) (model.PriceSeries, error) {
	normalized := Normalize(bars, s.interval, exchangeTZ)
	if len(normalized) == 0 {
		return model.PriceSeries{}, fmt.Errorf("%s: %w", symbol, model.ErrDataUnavailable)
	}
	ps := model.PriceSeries{Symbol: symbol, Interval: s.interval, Bars: normalized}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.series[symbol]; !ok {
		s.order = append(s.order, symbol)
	}
	s.series[symbol] = ps
	return clone(ps), nil
}

// Get returns a copy of the series stored for symbol.
func (s *Store) Get(symbol string) (model.PriceSeries, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ps, ok := s.series[symbol]
	if !ok {
		return model.PriceSeries{}, fmt.Errorf("%s: %w", symbol, model.ErrDataUnavailable)
	}
	return clone(ps), nil
}

// Symbols returns stored symbols in insertion order.
func (s *Store) Symbols() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Len returns the number of stored series.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.series)
}

// Normalize converts bars to the store's canonical form: finite closes only,
// UTC timestamps, strictly increasing, duplicates resolved in favour of the
// later bar. Daily and coarser bars are stamped with their exchange-local
// calendar date at midnight UTC so that different exchanges align on dates.
func Normalize(bars []model.OHLCV, interval model.Interval, exchangeTZ *time.Location) []model.OHLCV {
	if exchangeTZ == nil {
		exchangeTZ = time.UTC
	}
	out := make([]model.OHLCV, 0, len(bars))
	for _, b := range bars {
		if math.IsNaN(b.Close) || math.IsInf(b.Close, 0) {
			continue
		}
		if interval.Intraday() {
			b.Time = b.Time.UTC()
		} else {
			local := b.Time.In(exchangeTZ)
			b.Time = time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
		}
		out = append(out, b)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })

	dedup := out[:0]
	for _, b := range out {
		if n := len(dedup); n > 0 && dedup[n-1].Time.Equal(b.Time) {
			dedup[n-1] = b
			continue
		}
		dedup = append(dedup, b)
	}
	return dedup
}

func clone(ps model.PriceSeries) model.PriceSeries {
	bars := make([]model.OHLCV, len(ps.Bars))
	copy(bars, ps.Bars)
	ps.Bars = bars
	return ps
}
