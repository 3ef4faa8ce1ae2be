package calculator

import (
	"errors"
	"math"

	"github.com/markcheno/go-talib"
)

// SMA computes the simple moving average of prices over period, aligned with
// the input. Positions before the first full window use the mean of every
// price seen so far, so the result is defined from the first point on.
func SMA(prices []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, errors.New("period must be positive")
	}
	out := make([]float64, len(prices))
	if len(prices) == 0 {
		return out, nil
	}

	sum := 0.0
	for i := 0; i < len(prices) && i < period-1; i++ {
		sum += prices[i]
		out[i] = sum / float64(i+1)
	}
	if len(prices) < period {
		return out, nil
	}

	full := talib.Sma(prices, period)
	copy(out[period-1:], full[period-1:])
	return out, nil
}

// LastSMA returns the moving average at the most recent price.
func LastSMA(prices []float64, period int) (float64, error) {
	if len(prices) == 0 {
		return math.NaN(), errors.New("not enough data for SMA calculation")
	}
	sma, err := SMA(prices, period)
	if err != nil {
		return math.NaN(), err
	}
	return sma[len(sma)-1], nil
}
