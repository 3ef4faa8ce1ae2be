package calculator

import (
	"errors"
	"math"
)

// RSIPeriod is the standard relative strength lookback.
const RSIPeriod = 14

// RSI computes the relative strength index over prices, aligned with the input.
// Gains and losses are smoothed with Wilder's average, a recursive exponential
// average with alpha 1/period seeded with the first price change. A point is
// defined once period changes have been observed; earlier points are NaN.
// When the average loss is zero the index saturates at 100.
func RSI(prices []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, errors.New("period must be positive")
	}
	out := make([]float64, len(prices))
	for i := range out {
		out[i] = math.NaN()
	}
	if len(prices) < 2 {
		return out, nil
	}

	alpha := 1.0 / float64(period)
	var avgGain, avgLoss float64
	for i := 1; i < len(prices); i++ {
		change := prices[i] - prices[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		if i == 1 {
			avgGain, avgLoss = gain, loss
		} else {
			avgGain = alpha*gain + (1-alpha)*avgGain
			avgLoss = alpha*loss + (1-alpha)*avgLoss
		}
		if i >= period {
			out[i] = rsiFromAverages(avgGain, avgLoss)
		}
	}
	return out, nil
}

func rsiFromAverages(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100.0
	}
	rs := avgGain / avgLoss
	return clamp(100.0-100.0/(1.0+rs), 0, 100)
}
