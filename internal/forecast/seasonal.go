package forecast

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"MarketAnalyst/internal/model"
)

const (
	yearDays = 365.25
	weekDays = 7.0

	yearlyOrder = 10
	weeklyOrder = 3

	// ridge keeps the normal equations positive definite when Fourier
	// columns are nearly collinear over short histories.
	ridge = 1e-6

	// intervalCoverage is the two-sided probability of the forecast band.
	intervalCoverage = 0.8
)

// SeasonalModel regresses prices on a linear trend plus Fourier terms for
// yearly and weekly seasonality and reports an 80% band around each point.
type SeasonalModel struct {
	Interval model.Interval
}

type fourier struct {
	period float64
	order  int
}

// seasonalities picks the Fourier blocks that the interval can resolve and
// that the history spans at least twice, then trims orders until the design
// has fewer columns than observations.
func (s SeasonalModel) seasonalities(spanDays float64, n int) []fourier {
	var weekly, yearly bool
	switch s.Interval {
	case model.Interval15m, model.Interval1h:
		weekly = true
	case model.Interval1d:
		weekly, yearly = true, true
	case model.Interval1wk, model.Interval1mo:
		yearly = true
	}

	var blocks []fourier
	if yearly && spanDays >= 2*yearDays {
		blocks = append(blocks, fourier{period: yearDays, order: yearlyOrder})
	}
	if weekly && spanDays >= 2*weekDays {
		blocks = append(blocks, fourier{period: weekDays, order: weeklyOrder})
	}

	params := func() int {
		p := 2
		for _, b := range blocks {
			p += 2 * b.order
		}
		return p
	}
	for params() >= n && len(blocks) > 0 {
		blocks[0].order--
		if blocks[0].order == 0 {
			blocks = blocks[1:]
		}
	}
	return blocks
}

type design struct {
	origin time.Time
	scale  float64
	blocks []fourier
}

func (d design) cols() int {
	c := 2
	for _, b := range d.blocks {
		c += 2 * b.order
	}
	return c
}

func (d design) row(t time.Time, dst []float64) {
	days := t.Sub(d.origin).Hours() / 24
	dst[0] = 1
	dst[1] = days / d.scale
	j := 2
	for _, b := range d.blocks {
		for k := 1; k <= b.order; k++ {
			arg := 2 * math.Pi * float64(k) * days / b.period
			dst[j] = math.Sin(arg)
			dst[j+1] = math.Cos(arg)
			j += 2
		}
	}
}

// Forecast fits the regression by ridge-regularised least squares and
// evaluates it at the future timestamps.
func (s SeasonalModel) Forecast(times []time.Time, y []float64, future []time.Time) ([]model.ForecastPoint, error) {
	n := len(y)
	if n < 2 || len(times) != n {
		return nil, fmt.Errorf("seasonal model needs 2 aligned observations, got %d: %w", n, model.ErrInsufficientHistory)
	}
	spanDays := times[n-1].Sub(times[0]).Hours() / 24
	if spanDays <= 0 {
		return nil, fmt.Errorf("history has no time span: %w", model.ErrModelFitFailure)
	}

	d := design{origin: times[0], scale: spanDays, blocks: s.seasonalities(spanDays, n)}
	p := d.cols()

	x := mat.NewDense(n, p, nil)
	for i, t := range times {
		d.row(t, x.RawRowView(i))
	}
	yv := mat.NewVecDense(n, append([]float64(nil), y...))

	var gram mat.SymDense
	gram.SymOuterK(1, x.T())
	for i := 0; i < p; i++ {
		gram.SetSym(i, i, gram.At(i, i)+ridge)
	}
	var chol mat.Cholesky
	if ok := chol.Factorize(&gram); !ok {
		return nil, fmt.Errorf("normal equations not positive definite: %w", model.ErrModelFitFailure)
	}
	var xty, beta mat.VecDense
	xty.MulVec(x.T(), yv)
	if err := chol.SolveVecTo(&beta, &xty); err != nil {
		return nil, fmt.Errorf("solve regression: %v: %w", err, model.ErrModelFitFailure)
	}

	var fitted mat.VecDense
	fitted.MulVec(x, &beta)
	resid := make([]float64, n)
	for i := range resid {
		resid[i] = y[i] - fitted.AtVec(i)
	}
	sigma := stat.StdDev(resid, nil)
	if math.IsNaN(sigma) {
		sigma = 0
	}
	z := distuv.Normal{Mu: 0, Sigma: 1}.Quantile(0.5 + intervalCoverage/2)
	half := z * sigma * math.Sqrt(1+float64(p)/float64(n))

	row := make([]float64, p)
	points := make([]model.ForecastPoint, len(future))
	for i, t := range future {
		d.row(t, row)
		v := mat.Dot(mat.NewVecDense(p, row), &beta)
		points[i] = model.ForecastPoint{
			Time:  t,
			Value: v,
			Lower: model.Float(v - half),
			Upper: model.Float(v + half),
		}
	}
	return points, nil
}
