package calculator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketAnalyst/internal/model"
)

func series(symbol string, points map[time.Time]float64) model.PriceSeries {
	ps := model.PriceSeries{Symbol: symbol, Interval: model.Interval1d}
	for t, c := range points {
		ps.Bars = append(ps.Bars, model.OHLCV{Time: t, Close: c})
	}
	sortBars(ps.Bars)
	return ps
}

func sortBars(bars []model.OHLCV) {
	for i := 1; i < len(bars); i++ {
		for j := i; j > 0 && bars[j].Time.Before(bars[j-1].Time); j-- {
			bars[j], bars[j-1] = bars[j-1], bars[j]
		}
	}
}

func TestPerformance_Windows(t *testing.T) {
	asOf := date(2024, 6, 30)
	ps := series("A", map[time.Time]float64{
		date(2024, 6, 20): 100,
		date(2024, 6, 23): 100,
		date(2024, 6, 30): 110,
		date(2024, 7, 1):  500, // after as-of, ignored
	})

	row := Performance(ps, asOf, model.PerformanceWindows)

	require.Len(t, row.Cells, len(model.PerformanceWindows))
	assert.Nil(t, row.Failure)

	week, ok := row.Cell("1 week")
	require.True(t, ok)
	require.NotNil(t, week.Change)
	assert.Equal(t, 10.0, *week.Change)

	month, _ := row.Cell("1 month")
	require.NotNil(t, month.Change)
	assert.Equal(t, 10.0, *month.Change)

	day, _ := row.Cell("1 day")
	assert.Nil(t, day.Change)
	require.NotNil(t, day.Failure)
	assert.Equal(t, model.KindInsufficientHistory, day.Failure.Kind)
}

func TestPerformance_ZeroStartPrice(t *testing.T) {
	asOf := date(2024, 6, 30)
	ps := series("A", map[time.Time]float64{
		date(2024, 6, 25): 0,
		date(2024, 6, 30): 5,
	})

	row := Performance(ps, asOf, []model.LookbackWindow{{Label: "1 week", Days: 7}})

	cell := row.Cells[0]
	assert.Nil(t, cell.Change)
	require.NotNil(t, cell.Failure)
	assert.Equal(t, model.KindGuardedZeroDivision, cell.Failure.Kind)
}

func TestPerformance_SingleObservationInWindow(t *testing.T) {
	asOf := date(2024, 6, 30)
	ps := series("A", map[time.Time]float64{
		date(2024, 3, 1):  90,
		date(2024, 4, 1):  95,
		date(2024, 6, 30): 100,
	})

	row := Performance(ps, asOf, model.PerformanceWindows)

	month, _ := row.Cell("1 month")
	assert.Nil(t, month.Change)
	sixMonths, _ := row.Cell("6 months")
	require.NotNil(t, sixMonths.Change)
	assert.Equal(t, 11.11, *sixMonths.Change)
}

func TestPerformance_NoHistoryBeforeAsOf(t *testing.T) {
	ps := daily("A", date(2024, 1, 1), 1, 2, 3)

	row := Performance(ps, date(2023, 1, 1), model.PerformanceWindows)

	require.NotNil(t, row.Failure)
	assert.Equal(t, model.KindDataUnavailable, row.Failure.Kind)
	for _, c := range row.Cells {
		assert.Nil(t, c.Change, c.Window)
	}
}

func TestPerformance_Idempotent(t *testing.T) {
	ps := daily("A", date(2019, 1, 1), randomWalk(7, 2000)...)
	asOf := ps.Bars[ps.Len()-1].Time

	assert.Equal(t, Performance(ps, asOf, model.PerformanceWindows), Performance(ps, asOf, model.PerformanceWindows))
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 1.24, Round2(1.235))
	assert.Equal(t, -1.24, Round2(-1.235))
	assert.Equal(t, 10.0, Round2(9.999))
}
