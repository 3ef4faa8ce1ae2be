package calculator

import (
	"math/rand"
	"time"

	"MarketAnalyst/internal/model"
)

func daily(symbol string, start time.Time, closes ...float64) model.PriceSeries {
	bars := make([]model.OHLCV, len(closes))
	for i, c := range closes {
		bars[i] = model.OHLCV{Time: start.AddDate(0, 0, i), Open: c, High: c, Low: c, Close: c, Volume: 1000}
	}
	return model.PriceSeries{Symbol: symbol, Interval: model.Interval1d, Bars: bars}
}

func randomWalk(seed int64, n int) []float64 {
	rng := rand.New(rand.NewSource(seed))
	closes := make([]float64, n)
	price := 1000.0
	for i := range closes {
		price += rng.NormFloat64() * 5
		closes[i] = price
	}
	return closes
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
