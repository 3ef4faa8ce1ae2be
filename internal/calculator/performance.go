package calculator

import (
	"fmt"
	"time"

	"MarketAnalyst/internal/model"
)

// History returns the part of ps observed on or before the as-of date.
func History(ps model.PriceSeries, asOf time.Time) model.PriceSeries {
	return ps.Between(time.Time{}, model.Date(asOf).AddDate(0, 0, 1))
}

// Performance computes the percentage change of the last close against the
// first close at or after each window's start. A window needs at least two
// observations and a non-zero start price; otherwise its cell is nil and
// carries the reason.
func Performance(ps model.PriceSeries, asOf time.Time, windows []model.LookbackWindow) model.PerformanceRow {
	row := model.PerformanceRow{Symbol: ps.Symbol, Cells: make([]model.PerformanceCell, len(windows))}

	hist := History(ps, asOf)
	if hist.Len() == 0 {
		row.Failure = model.NewFailure(ps.Symbol, "", fmt.Errorf("no prices on or before %s: %w",
			model.Date(asOf).Format(time.DateOnly), model.ErrDataUnavailable))
	}

	for i, w := range windows {
		cell := model.PerformanceCell{Window: w.Label}
		change, err := windowChange(hist, w.Start(asOf))
		if err != nil {
			cell.Failure = model.NewFailure(ps.Symbol, w.Label, err)
		} else {
			cell.Change = model.Float(change)
		}
		row.Cells[i] = cell
	}
	return row
}

func windowChange(hist model.PriceSeries, start time.Time) (float64, error) {
	slice := hist.Between(start, time.Time{})
	if slice.Len() < 2 {
		return 0, fmt.Errorf("%d observations since %s: %w", slice.Len(), start.Format(time.DateOnly), model.ErrInsufficientHistory)
	}
	first := slice.Bars[0].Close
	last := slice.Bars[slice.Len()-1].Close
	if first == 0 {
		return 0, fmt.Errorf("start price is zero: %w", model.ErrGuardedZeroDivision)
	}
	return Round2((last - first) / first * 100), nil
}
