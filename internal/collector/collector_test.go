package collector

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketAnalyst/internal/model"
)

func dailyBars(start time.Time, closes ...float64) []model.OHLCV {
	bars := make([]model.OHLCV, len(closes))
	for i, c := range closes {
		bars[i] = model.OHLCV{Time: start.AddDate(0, 0, i), Open: c, High: c, Low: c, Close: c, Volume: 10}
	}
	return bars
}

func TestCollector_LoadIsolatesFailures(t *testing.T) {
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	mock := &MockFetcher{
		Series: map[string][]model.OHLCV{
			"AAA":   dailyBars(start, 1, 2, 3),
			"EMPTY": nil,
		},
		Errors: map[string]error{"BAD": errors.New("connection reset")},
	}
	c := NewCollector(mock, 2, zerolog.Nop())

	st, failures := c.Load(context.Background(), []string{"BAD", "AAA", "EMPTY", "NONE"}, model.SpanOf(model.Period1y), model.Interval1d)

	assert.Equal(t, []string{"AAA"}, st.Symbols())
	require.Len(t, failures, 3)
	assert.Equal(t, []string{"BAD", "EMPTY", "NONE"}, []string{failures[0].Symbol, failures[1].Symbol, failures[2].Symbol})
	for _, f := range failures {
		assert.Equal(t, model.KindDataUnavailable, f.Kind, f.Symbol)
	}
	assert.Equal(t, 1, mock.Calls("BAD"))
}

func TestCollector_LoadAppliesExchangeTimezone(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	// 16:00 New York on 2024-03-01 is 21:00 UTC the same day.
	bar := model.OHLCV{Time: time.Date(2024, 3, 1, 16, 0, 0, 0, ny), Close: 10}
	mock := &MockFetcher{Series: map[string][]model.OHLCV{"X": {bar}}, Timezone: ny}

	st, failures := NewCollector(mock, 1, zerolog.Nop()).Load(context.Background(), []string{"X"}, model.SpanOf(model.Period1mo), model.Interval1d)

	require.Empty(t, failures)
	ps, err := st.Get("X")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), ps.Bars[0].Time)
}

func TestCollector_Metadata(t *testing.T) {
	mock := &MockFetcher{Metadata: map[string]map[string]any{"AAA": {"longName": "Triple A"}}}

	meta, failures := NewCollector(mock, 0, zerolog.Nop()).Metadata(context.Background(), []string{"AAA", "BBB"})

	assert.Equal(t, "Triple A", meta["AAA"]["longName"])
	require.Len(t, failures, 1)
	assert.Equal(t, "BBB", failures[0].Symbol)
}

func TestMockFetcher_ClipsSpan(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mock := &MockFetcher{Series: map[string][]model.OHLCV{"X": dailyBars(start, 1, 2, 3, 4, 5)}}

	res, err := mock.Fetch(context.Background(), "X", model.SpanBetween(start.AddDate(0, 0, 1), start.AddDate(0, 0, 3)), model.Interval1d)
	require.NoError(t, err)
	require.Len(t, res.Bars, 2)
	assert.Equal(t, 2.0, res.Bars[0].Close)
	assert.Equal(t, 3.0, res.Bars[1].Close)
}

func TestMockFetcher_GeneratesAroundPrice(t *testing.T) {
	mock := &MockFetcher{Price: 100}
	res, err := mock.Fetch(context.Background(), "ANY", model.SpanOf(model.Period1mo), model.Interval1d)
	require.NoError(t, err)
	assert.NotEmpty(t, res.Bars)
	for _, b := range res.Bars {
		assert.InDelta(t, 100, b.Close, 5)
	}

	res, err = mock.Fetch(context.Background(), "ANY", model.SpanOf(model.Period5y), model.Interval1d)
	require.NoError(t, err)
	require.Greater(t, len(res.Bars), 1000)
	for _, b := range res.Bars {
		assert.InDelta(t, 100, b.Close, 3.0001, b.Time.Format(time.DateOnly))
	}
}
