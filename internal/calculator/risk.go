package calculator

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"MarketAnalyst/internal/model"
)

// TradingDaysPerYear annualizes daily statistics.
const TradingDaysPerYear = 252

// RiskMetrics are the unrounded risk figures of one return series.
// Volatility and MaxDrawdown are fractions, not percent.
type RiskMetrics struct {
	Volatility  float64
	Sharpe      float64
	MaxDrawdown float64
	// Guarded is set when a zero standard deviation resolved Sharpe to 0.
	Guarded bool
}

// Returns computes simple step returns and drops undefined ones.
func Returns(closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}
	out := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if r, ok := stepReturn(closes[i-1], closes[i]); ok {
			out = append(out, r)
		}
	}
	return out
}

// ComputeRisk derives volatility, Sharpe ratio (risk-free rate 0) and maximum
// drawdown from clean step returns.
func ComputeRisk(returns []float64) (RiskMetrics, error) {
	if len(returns) == 0 {
		return RiskMetrics{}, fmt.Errorf("no returns: %w", model.ErrInsufficientHistory)
	}

	var m RiskMetrics
	// A single return has no sample deviation; treat it as zero spread.
	sd := 0.0
	if len(returns) > 1 {
		sd = stat.StdDev(returns, nil)
	}
	if !finite(sd) {
		sd = 0
	}
	annual := math.Sqrt(TradingDaysPerYear)

	m.Volatility = sd * annual
	if sd == 0 {
		m.Guarded = true
	}
	m.Sharpe = ratioOr(stat.Mean(returns, nil), sd, 0) * annual
	m.MaxDrawdown = MaxDrawdown(returns)
	return m, nil
}

// MaxDrawdown returns the deepest fall of cumulative wealth Π(1+r) below its
// running peak, as a fraction in [-1, 0]. Empty input yields 0.
func MaxDrawdown(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	wealth := make([]float64, len(returns))
	for i, r := range returns {
		wealth[i] = 1 + r
	}
	floats.CumProd(wealth, wealth)

	worst := 0.0
	peak := math.Inf(-1)
	for _, w := range wealth {
		if w > peak {
			peak = w
		}
		dd := -1.0
		if peak > 0 {
			dd = (w - peak) / peak
		}
		if dd < worst {
			worst = dd
		}
	}
	return clamp(worst, -1, 0)
}

// Risk computes the risk table row for one symbol. Each window slices the
// history to timestamps at or after its start and is computed independently.
func Risk(ps model.PriceSeries, asOf time.Time, windows []model.LookbackWindow) model.RiskMetricSet {
	set := model.RiskMetricSet{Symbol: ps.Symbol, Cells: make([]model.RiskCell, len(windows))}

	hist := History(ps, asOf)
	if hist.Len() == 0 {
		set.Failure = model.NewFailure(ps.Symbol, "", fmt.Errorf("no prices on or before %s: %w",
			model.Date(asOf).Format(time.DateOnly), model.ErrDataUnavailable))
	}

	for i, w := range windows {
		cell := model.RiskCell{Window: w.Label}
		slice := hist.Between(w.Start(asOf), time.Time{})
		m, err := ComputeRisk(Returns(slice.Closes()))
		switch {
		case err != nil:
			cell.Failure = model.NewFailure(ps.Symbol, w.Label, fmt.Errorf("%d observations: %w", slice.Len(), err))
		default:
			cell.Volatility = model.Float(Round2(m.Volatility * 100))
			cell.Sharpe = model.Float(Round2(m.Sharpe))
			cell.MaxDrawdown = model.Float(Round2(m.MaxDrawdown * 100))
			if m.Guarded {
				cell.Failure = model.NewFailure(ps.Symbol, w.Label,
					fmt.Errorf("zero return deviation, Sharpe set to 0: %w", model.ErrGuardedZeroDivision))
			}
		}
		set.Cells[i] = cell
	}
	return set
}
