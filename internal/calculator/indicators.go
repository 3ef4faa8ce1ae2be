package calculator

import (
	"MarketAnalyst/internal/model"
)

// Indicators builds the overlay series selected by opts for one price series.
// Every enabled overlay has the same length as the input bars.
func Indicators(ps model.PriceSeries, opts model.IndicatorOptions) (model.IndicatorSeries, error) {
	closes := ps.Closes()
	out := model.IndicatorSeries{
		Symbol:   ps.Symbol,
		Interval: ps.Interval,
		Times:    ps.Times(),
		Close:    closes,
	}

	if opts.Volume {
		out.Volume = make(model.Values, ps.Len())
		for i, b := range ps.Bars {
			out.Volume[i] = b.Volume
		}
	}
	if opts.SMA50 {
		sma, err := SMA(closes, 50)
		if err != nil {
			return out, err
		}
		out.SMA50 = sma
	}
	if opts.SMA200 {
		sma, err := SMA(closes, 200)
		if err != nil {
			return out, err
		}
		out.SMA200 = sma
	}
	if opts.RSI {
		rsi, err := RSI(closes, RSIPeriod)
		if err != nil {
			return out, err
		}
		out.RSI14 = rsi
	}
	return out, nil
}
