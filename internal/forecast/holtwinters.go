package forecast

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat"

	"MarketAnalyst/internal/calculator"
	"MarketAnalyst/internal/model"
)

// HoltWinters is additive-trend exponential smoothing with optional additive
// seasonality of Period observations. Seasonality is dropped when the history
// holds fewer than two full seasons.
type HoltWinters struct {
	Period int
}

// hwParams are the smoothing weights for level, trend and season.
type hwParams struct {
	alpha, beta, gamma float64
}

// hwState is the fitted recursion after the last observation.
type hwState struct {
	level, trend float64
	season       []float64
	n            int
}

func (hw HoltWinters) seasonLength(n int) int {
	if hw.Period > 1 && n >= 2*hw.Period {
		return hw.Period
	}
	return 0
}

// Forecast fits the smoothing weights by minimising the in-sample squared
// one-step error and projects the last state onto len(future) steps.
func (hw HoltWinters) Forecast(_ []time.Time, y []float64, future []time.Time) ([]model.ForecastPoint, error) {
	if len(y) < 2 {
		return nil, fmt.Errorf("holt-winters needs 2 observations, got %d: %w", len(y), model.ErrInsufficientHistory)
	}
	m := hw.seasonLength(len(y))

	params, err := hw.fit(y, m)
	if err != nil {
		return nil, err
	}
	st, sse := smooth(y, m, params)
	if math.IsNaN(sse) || math.IsInf(sse, 0) {
		return nil, fmt.Errorf("non-finite fit error: %w", model.ErrModelFitFailure)
	}

	points := make([]model.ForecastPoint, len(future))
	for h := 1; h <= len(future); h++ {
		v := st.level + float64(h)*st.trend
		if m > 0 {
			v += st.season[(st.n+h-1)%m]
		}
		points[h-1] = model.ForecastPoint{Time: future[h-1], Value: v}
	}
	return points, nil
}

func (hw HoltWinters) fit(y []float64, m int) (hwParams, error) {
	k := 2
	if m > 0 {
		k = 3
	}
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			_, sse := smooth(y, m, decode(x))
			if math.IsNaN(sse) || math.IsInf(sse, 0) {
				return math.MaxFloat64
			}
			return sse
		},
	}
	initial := []float64{logit(0.5), logit(0.1), logit(0.1)}[:k]

	result, err := optimize.Minimize(problem, initial, &optimize.Settings{}, &optimize.NelderMead{})
	// A stalled search still returns its best point; only reject unusable ones.
	if result == nil || result.F == math.MaxFloat64 || !calculator.AllFinite(result.X) {
		return hwParams{}, fmt.Errorf("smoothing weights did not converge: %v: %w", err, model.ErrModelFitFailure)
	}
	return decode(result.X), nil
}

// decode maps unconstrained optimiser coordinates into (0, 1).
func decode(x []float64) hwParams {
	p := hwParams{alpha: logistic(x[0]), beta: logistic(x[1])}
	if len(x) > 2 {
		p.gamma = logistic(x[2])
	}
	return p
}

func logistic(x float64) float64 { return 1 / (1 + math.Exp(-x)) }

func logit(p float64) float64 { return math.Log(p / (1 - p)) }

// smooth runs the recursion over y and returns the final state with the sum
// of squared one-step errors.
func smooth(y []float64, m int, p hwParams) (hwState, float64) {
	st := initialState(y, m)
	sse := 0.0
	for t, obs := range y {
		s := 0.0
		if m > 0 {
			s = st.season[t%m]
		}
		e := obs - (st.level + st.trend + s)
		sse += e * e

		level := p.alpha*(obs-s) + (1-p.alpha)*(st.level+st.trend)
		st.trend = p.beta*(level-st.level) + (1-p.beta)*st.trend
		if m > 0 {
			st.season[t%m] = p.gamma*(obs-level) + (1-p.gamma)*s
		}
		st.level = level
	}
	st.n = len(y)
	return st, sse
}

// initialState seeds level and trend from the first two seasons, or from the
// first two observations without seasonality, so that the first one-step
// prediction is the first observation.
func initialState(y []float64, m int) hwState {
	if m == 0 {
		trend := y[1] - y[0]
		return hwState{level: y[0] - trend, trend: trend}
	}
	first := stat.Mean(y[:m], nil)
	second := stat.Mean(y[m:2*m], nil)
	st := hwState{level: first, trend: (second - first) / float64(m), season: make([]float64, m)}
	for i := 0; i < m; i++ {
		st.season[i] = y[i] - first
	}
	return st
}
