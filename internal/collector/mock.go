package collector

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"MarketAnalyst/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
// Symbols without fixed bars get a generated series oscillating within
// mockSwing of Price when Price is positive.
type MockFetcher struct {
	Price    float64
	Series   map[string][]model.OHLCV
	Metadata map[string]map[string]any
	Errors   map[string]error
	Timezone *time.Location

	mu    sync.Mutex
	calls map[string]int
}

func (m *MockFetcher) Name() string { return "mock" }

// Calls returns how many times symbol was fetched.
func (m *MockFetcher) Calls(symbol string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[symbol]
}

func (m *MockFetcher) record(symbol string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[symbol]++
}

func (m *MockFetcher) Fetch(ctx context.Context, symbol string, span model.Span, interval model.Interval) (FetchResult, error) {
	m.record(symbol)
	if err := ctx.Err(); err != nil {
		return FetchResult{}, err
	}
	if err := m.Errors[symbol]; err != nil {
		return FetchResult{}, err
	}

	bars, ok := m.Series[symbol]
	if !ok {
		if m.Price <= 0 {
			return FetchResult{}, fmt.Errorf("mock: no data for %s: %w", symbol, model.ErrDataUnavailable)
		}
		bars = generateMockBars(m.Price, 5*365)
	}
	return FetchResult{Bars: clip(bars, span), Timezone: m.Timezone}, nil
}

func (m *MockFetcher) FetchMetadata(ctx context.Context, symbol string) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := m.Errors[symbol]; err != nil {
		return nil, err
	}
	meta, ok := m.Metadata[symbol]
	if !ok {
		return nil, fmt.Errorf("mock: no metadata for %s: %w", symbol, model.ErrDataUnavailable)
	}
	return meta, nil
}

// clip keeps the bars a source would return for span. A trailing period is
// measured back from the newest bar.
func clip(bars []model.OHLCV, span model.Span) []model.OHLCV {
	if len(bars) == 0 {
		return nil
	}
	from, to := span.Start, span.End
	if !span.IsRange() {
		from, to = span.Period.Start(bars[len(bars)-1].Time), time.Time{}
	}
	out := make([]model.OHLCV, 0, len(bars))
	for _, b := range bars {
		if !from.IsZero() && b.Time.Before(from) {
			continue
		}
		if !to.IsZero() && !b.Time.Before(to) {
			continue
		}
		out = append(out, b)
	}
	return out
}

const (
	mockSwing = 0.03
	mockCycle = 60 // days
)

func generateMockBars(basePrice float64, count int) []model.OHLCV {
	end := model.Date(time.Now())
	bars := make([]model.OHLCV, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + mockSwing*math.Sin(2*math.Pi*float64(i)/mockCycle))
		bars[i] = model.OHLCV{
			Time:   end.AddDate(0, 0, -(count - 1 - i)),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}
