package calculator

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/floats"

	"MarketAnalyst/internal/model"
)

// IndexBase is the value the first observation of an indexed series maps to.
const IndexBase = 100.0

// Normalize rebases a close series to IndexBase: the first positive close maps
// to 100 and every later point is 100 × Π(1 + rᵢ) over the step returns.
// A step from a zero close is guarded to a zero return.
func Normalize(ps model.PriceSeries) (model.IndexedSeries, error) {
	out := model.IndexedSeries{Symbol: ps.Symbol}

	first := -1
	for i, b := range ps.Bars {
		if b.Close > 0 && finite(b.Close) {
			first = i
			break
		}
	}
	if first < 0 {
		return out, fmt.Errorf("normalize %s: %w", ps.Symbol, model.ErrDataUnavailable)
	}

	bars := ps.Bars[first:]
	growth := make([]float64, len(bars))
	growth[0] = 1
	for i := 1; i < len(bars); i++ {
		r, _ := stepReturn(bars[i-1].Close, bars[i].Close)
		growth[i] = 1 + r
	}
	floats.CumProd(growth, growth)
	floats.Scale(IndexBase, growth)

	out.Times = make([]time.Time, len(bars))
	for i, b := range bars {
		out.Times[i] = b.Time
	}
	out.Values = growth
	return out, nil
}

// Intersect aligns indexed series on the timestamps they all share (inner join),
// taking symbols in the given order. A symbol whose inclusion would leave no
// common timestamp is dropped from the comparison and reported in Dropped.
func Intersect(period model.Period, series ...model.IndexedSeries) model.Comparison {
	cmp := model.Comparison{Period: period}

	var (
		common map[int64]struct{}
		kept   []model.IndexedSeries
	)
	for _, s := range series {
		keys := make(map[int64]struct{}, len(s.Times))
		for _, t := range s.Times {
			if common == nil {
				keys[t.UnixNano()] = struct{}{}
				continue
			}
			if _, ok := common[t.UnixNano()]; ok {
				keys[t.UnixNano()] = struct{}{}
			}
		}
		if len(keys) == 0 {
			cmp.Dropped = append(cmp.Dropped, model.NewFailure(s.Symbol, "",
				fmt.Errorf("no dates in common with the other symbols: %w", model.ErrInsufficientHistory)))
			continue
		}
		common = keys
		kept = append(kept, s)
	}
	if len(kept) == 0 {
		return cmp
	}

	// Timestamps follow the first kept series, which is already sorted.
	for _, t := range kept[0].Times {
		if _, ok := common[t.UnixNano()]; ok {
			cmp.Times = append(cmp.Times, t)
		}
	}
	for _, s := range kept {
		aligned := model.IndexedSeries{Symbol: s.Symbol, Times: cmp.Times, Values: make(model.Values, 0, len(cmp.Times))}
		for i, t := range s.Times {
			if _, ok := common[t.UnixNano()]; ok {
				aligned.Values = append(aligned.Values, s.Values[i])
			}
		}
		cmp.Series = append(cmp.Series, aligned)
	}
	return cmp
}
