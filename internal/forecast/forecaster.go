// Package forecast projects a price series a few steps into the future with
// one of two interchangeable models and tracks each request through a small
// state machine.
package forecast

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"MarketAnalyst/internal/calculator"
	"MarketAnalyst/internal/model"
	"MarketAnalyst/internal/store"
)

// Predictor fits a history and evaluates it at future timestamps.
type Predictor interface {
	Forecast(times []time.Time, values []float64, future []time.Time) ([]model.ForecastPoint, error)
}

// Config bounds requests and shapes the generated cadence.
type Config struct {
	MinHorizon int
	MaxHorizon int
	// SeasonPeriods is the exponential smoothing season length in steps per
	// interval; intervals without an entry are fitted without seasonality.
	SeasonPeriods map[model.Interval]int
	// WeekdayOnly lists the intervals whose future steps skip weekends.
	WeekdayOnly map[model.Interval]bool
	// Holidays also skips exchange holidays of the symbol's listing venue.
	Holidays bool
}

// DefaultConfig forecasts 3 to 180 steps. Daily series get a five-day
// season and skip weekends.
func DefaultConfig() Config {
	return Config{
		MinHorizon:    3,
		MaxHorizon:    180,
		SeasonPeriods: map[model.Interval]int{model.Interval1d: 5},
		WeekdayOnly:   map[model.Interval]bool{model.Interval1d: true},
	}
}

// Forecaster runs forecast requests. It holds no per-request state and is
// safe for concurrent use.
type Forecaster struct {
	cfg Config
	log zerolog.Logger
}

// New creates a Forecaster.
func New(cfg Config, log zerolog.Logger) *Forecaster {
	return &Forecaster{cfg: cfg, log: log.With().Str("component", "forecast").Logger()}
}

// Cadence returns the future-timestamp generator for a request.
func (f *Forecaster) Cadence(req Request) Cadence {
	c := Cadence{Interval: req.Interval, WeekdayOnly: f.cfg.WeekdayOnly[req.Interval]}
	if f.cfg.Holidays {
		c.Holidays = ExchangeCalendar(req.Symbol, req.Interval)
	}
	return c
}

func (f *Forecaster) predictor(req Request) (Predictor, error) {
	switch req.Method {
	case model.MethodExponentialSmoothing:
		return HoltWinters{Period: f.cfg.SeasonPeriods[req.Interval]}, nil
	case model.MethodSeasonal:
		return SeasonalModel{Interval: req.Interval}, nil
	}
	return nil, fmt.Errorf("%w: unknown forecast method %q", model.ErrInvalidRequest, req.Method)
}

// Run executes req against ps. The series is resampled to the request
// interval first. Run never panics on bad input; every problem ends in a
// Failed outcome carrying the reason.
func (f *Forecaster) Run(req Request, ps model.PriceSeries) Outcome {
	start := time.Now()
	out := Outcome{Request: req, State: StateNoForecast}
	if req.Method == model.MethodNone {
		return out
	}
	out.moveTo(StateFitting)

	res, err := f.run(req, ps)
	out.Duration = time.Since(start)
	if err != nil {
		f.log.Warn().Err(err).Str("symbol", req.Symbol).Str("method", string(req.Method)).Msg("forecast failed")
		return out.fail(err)
	}
	f.log.Debug().Str("symbol", req.Symbol).Str("method", string(req.Method)).
		Int("points", len(res.Points)).Dur("took", out.Duration).Msg("forecast fitted")
	return out.succeed(res)
}

func (f *Forecaster) run(req Request, ps model.PriceSeries) (*model.ForecastResult, error) {
	res := &model.ForecastResult{
		Symbol:   req.Symbol,
		Interval: req.Interval,
		Method:   req.Method,
		Horizon:  req.Horizon,
		Points:   []model.ForecastPoint{},
	}
	if req.Horizon == 0 {
		return res, nil
	}
	if req.Horizon < f.cfg.MinHorizon || req.Horizon > f.cfg.MaxHorizon {
		return nil, fmt.Errorf("%w: horizon %d outside [%d, %d]", model.ErrInvalidRequest, req.Horizon, f.cfg.MinHorizon, f.cfg.MaxHorizon)
	}
	predictor, err := f.predictor(req)
	if err != nil {
		return nil, err
	}

	series := store.Resample(ps, req.Interval)
	if series.Len() < 2 {
		return nil, fmt.Errorf("%d observations at %s: %w", series.Len(), req.Interval, model.ErrInsufficientHistory)
	}
	values := series.Closes()
	if !calculator.AllFinite(values) {
		return nil, fmt.Errorf("history contains undefined prices: %w", model.ErrModelFitFailure)
	}

	times := series.Times()
	future := f.Cadence(req).Next(times[len(times)-1], req.Horizon)
	if len(future) < req.Horizon {
		return nil, fmt.Errorf("calendar yields only %d future steps: %w", len(future), model.ErrModelFitFailure)
	}

	points, err := predictor.Forecast(times, values, future)
	if err != nil {
		return nil, err
	}
	for _, p := range points {
		if !calculator.AllFinite([]float64{p.Value}) {
			return nil, fmt.Errorf("model produced an undefined value: %w", model.ErrModelFitFailure)
		}
	}
	res.Points = points
	return res, nil
}
