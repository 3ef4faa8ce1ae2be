package calculator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketAnalyst/internal/model"
)

func TestPriceRange(t *testing.T) {
	bars := []model.OHLCV{
		{High: 12, Low: 9, Close: 10},
		{High: 15, Low: 11, Close: 14},
		{Close: 8}, // no intraday range
	}
	high, low, err := PriceRange(bars)
	require.NoError(t, err)
	assert.Equal(t, 15.0, high)
	assert.Equal(t, 8.0, low)

	_, _, err = PriceRange(nil)
	assert.ErrorIs(t, err, model.ErrInsufficientHistory)
}

func TestRangePosition(t *testing.T) {
	tests := []struct {
		name              string
		current, high, lo float64
		want              float64
		wantErr           bool
	}{
		{"middle", 15, 20, 10, 0.5, false},
		{"at high", 20, 20, 10, 1, false},
		{"below low clamps", 5, 20, 10, 0, false},
		{"flat range", 10, 10, 10, 0.5, false},
		{"inverted", 10, 5, 20, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RangePosition(tt.current, tt.high, tt.lo)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRanges(t *testing.T) {
	closes := make([]float64, 400)
	for i := range closes {
		closes[i] = 100 + float64(i%50)
	}
	ps := daily("A", date(2023, 1, 1), closes...)
	asOf := ps.Bars[ps.Len()-1].Time

	snap := Ranges(ps, asOf, model.RangeWindows)

	require.NotNil(t, snap.Last)
	assert.Equal(t, closes[len(closes)-1], *snap.Last)
	require.Len(t, snap.Bands, 2)
	year := snap.Bands[1]
	require.NotNil(t, year.High)
	assert.Equal(t, 149.0, *year.High)
	assert.Equal(t, 100.0, *year.Low)
	assert.Nil(t, year.Failure)
}

func TestRanges_NoHistory(t *testing.T) {
	ps := daily("A", date(2024, 1, 1), 1, 2)

	snap := Ranges(ps, date(2023, 1, 1), model.RangeWindows)

	require.NotNil(t, snap.Failure)
	assert.Nil(t, snap.Last)
	for _, b := range snap.Bands {
		assert.Nil(t, b.High)
		assert.NotNil(t, b.Failure)
	}
}
