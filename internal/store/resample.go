package store

import (
	"time"

	"MarketAnalyst/internal/model"
)

// Resample aggregates bars into buckets of the target interval: first open,
// highest high, lowest low, last close and summed volume. A bucket is stamped
// with the time of its last bar, so an already-regular series is unchanged.
// Input must be normalized (sorted, UTC).
func Resample(ps model.PriceSeries, interval model.Interval) model.PriceSeries {
	out := model.PriceSeries{Symbol: ps.Symbol, Interval: interval}
	if len(ps.Bars) == 0 {
		return out
	}

	var (
		cur    model.OHLCV
		curKey time.Time
		open   bool
	)
	for _, b := range ps.Bars {
		key := BucketStart(b.Time, interval)
		if open && key.Equal(curKey) {
			if b.High > cur.High {
				cur.High = b.High
			}
			if b.Low < cur.Low {
				cur.Low = b.Low
			}
			cur.Close = b.Close
			cur.Volume += b.Volume
			cur.Time = b.Time
			continue
		}
		if open {
			out.Bars = append(out.Bars, cur)
		}
		cur, curKey, open = b, key, true
	}
	out.Bars = append(out.Bars, cur)
	return out
}

// BucketStart returns the start of the interval bucket containing t (UTC).
func BucketStart(t time.Time, interval model.Interval) time.Time {
	t = t.UTC()
	switch interval {
	case model.Interval15m, model.Interval1h:
		return t.Truncate(interval.Step())
	case model.Interval1d:
		return model.Date(t)
	case model.Interval1wk:
		day := model.Date(t)
		offset := (int(day.Weekday()) + 6) % 7 // Monday = 0, matching ISO weeks
		return day.AddDate(0, 0, -offset)
	case model.Interval1mo:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	case model.Interval3mo:
		q := (int(t.Month()) - 1) / 3
		return time.Date(t.Year(), time.Month(q*3+1), 1, 0, 0, 0, 0, time.UTC)
	}
	return t
}
