package calculator

import (
	"errors"
	"fmt"
	"math"
	"time"

	"MarketAnalyst/internal/model"
)

// PriceRange returns the highest high and lowest low of bars. Bars without
// an intraday range contribute their close.
func PriceRange(bars []model.OHLCV) (high, low float64, err error) {
	if len(bars) == 0 {
		return 0, 0, fmt.Errorf("no bars provided: %w", model.ErrInsufficientHistory)
	}
	high = math.Inf(-1)
	low = math.Inf(1)
	for _, b := range bars {
		h, l := b.High, b.Low
		if h == 0 && l == 0 {
			h, l = b.Close, b.Close
		}
		if h > high {
			high = h
		}
		if l < low {
			low = l
		}
	}
	return high, low, nil
}

// RangePosition returns where current sits within [low, high] (0.0~1.0).
// A flat range places it in the middle.
func RangePosition(current, high, low float64) (float64, error) {
	if high == low {
		return 0.5, nil
	}
	if high < low {
		return 0, errors.New("high must be >= low")
	}
	return clamp((current-low)/(high-low), 0, 1), nil
}

// Ranges computes the high/low band of each window ending at asOf.
func Ranges(ps model.PriceSeries, asOf time.Time, windows []model.LookbackWindow) model.RangeSnapshot {
	snap := model.RangeSnapshot{Symbol: ps.Symbol, Bands: make([]model.RangeBand, len(windows))}

	hist := History(ps, asOf)
	if hist.Len() == 0 {
		snap.Failure = model.NewFailure(ps.Symbol, "", fmt.Errorf("no prices on or before %s: %w",
			model.Date(asOf).Format(time.DateOnly), model.ErrDataUnavailable))
	} else {
		snap.Last = model.Float(hist.Bars[hist.Len()-1].Close)
	}

	for i, w := range windows {
		band := model.RangeBand{Window: w.Label}
		high, low, err := PriceRange(hist.Between(w.Start(asOf), time.Time{}).Bars)
		if err == nil && snap.Last != nil {
			var pos float64
			if pos, err = RangePosition(*snap.Last, high, low); err == nil {
				band.High = model.Float(Round2(high))
				band.Low = model.Float(Round2(low))
				band.Position = model.Float(Round2(pos))
			}
		}
		if err != nil {
			band.Failure = model.NewFailure(ps.Symbol, w.Label, err)
		}
		snap.Bands[i] = band
	}
	return snap
}
