package store

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketAnalyst/internal/model"
)

func bar(t time.Time, close float64) model.OHLCV {
	return model.OHLCV{Time: t, Open: close, High: close, Low: close, Close: close, Volume: 100}
}

func TestPut_NormalizesDailyBarsToExchangeDate(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	s := New(model.Interval1d)
	// 09:30 New York on two days, delivered out of order and with a duplicate.
	d1 := time.Date(2024, 3, 4, 9, 30, 0, 0, ny)
	d2 := time.Date(2024, 3, 5, 9, 30, 0, 0, ny)
	ps, err := s.Put("AAPL", []model.OHLCV{bar(d2, 11), bar(d1, 10), bar(d2, 12)}, ny)
	require.NoError(t, err)

	require.Len(t, ps.Bars, 2)
	assert.Equal(t, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), ps.Bars[0].Time)
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), ps.Bars[1].Time)
	assert.Equal(t, 12.0, ps.Bars[1].Close, "later duplicate wins")
}

func TestPut_LateEveningBarKeepsLocalDate(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	s := New(model.Interval1d)
	// 00:00 Tokyo is the previous day in UTC; the exchange date must win.
	ps, err := s.Put("7203.T", []model.OHLCV{bar(time.Date(2024, 3, 5, 0, 0, 0, 0, tokyo), 1)}, tokyo)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), ps.Bars[0].Time)
}

func TestPut_IntradayConvertsToUTC(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	s := New(model.Interval15m)
	ts := time.Date(2024, 6, 3, 9, 15, 0, 0, berlin)
	ps, err := s.Put("SAP.DE", []model.OHLCV{bar(ts, 180)}, berlin)
	require.NoError(t, err)
	assert.Equal(t, time.UTC, ps.Bars[0].Time.Location())
	assert.True(t, ps.Bars[0].Time.Equal(ts))
}

func TestPut_DropsNonFiniteAndRejectsEmpty(t *testing.T) {
	s := New(model.Interval1d)
	day := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	_, err := s.Put("BAD", []model.OHLCV{bar(day, math.NaN()), bar(day.AddDate(0, 0, 1), math.Inf(1))}, nil)
	require.ErrorIs(t, err, model.ErrDataUnavailable)

	_, err = s.Get("BAD")
	assert.ErrorIs(t, err, model.ErrDataUnavailable)
	assert.Zero(t, s.Len())
}

func TestGet_ReturnsCopy(t *testing.T) {
	s := New(model.Interval1d)
	day := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	_, err := s.Put("MSFT", []model.OHLCV{bar(day, 300), bar(day.AddDate(0, 0, 1), 301)}, nil)
	require.NoError(t, err)

	first, err := s.Get("MSFT")
	require.NoError(t, err)
	first.Bars[0].Close = -1

	second, err := s.Get("MSFT")
	require.NoError(t, err)
	assert.Equal(t, 300.0, second.Bars[0].Close)
}

func TestSymbols_InsertionOrder(t *testing.T) {
	s := New(model.Interval1d)
	day := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	for _, sym := range []string{"NVDA", "AAPL", "AMZN", "AAPL"} {
		_, err := s.Put(sym, []model.OHLCV{bar(day, 1)}, nil)
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"NVDA", "AAPL", "AMZN"}, s.Symbols())
}
