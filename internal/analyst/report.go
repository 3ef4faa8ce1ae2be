package analyst

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"MarketAnalyst/internal/calculator"
	"MarketAnalyst/internal/forecast"
	"MarketAnalyst/internal/model"
)

// Request is the complete, immutable input of one analytics run.
type Request struct {
	Symbols      []string               `json:"symbols"`
	Period       model.Period           `json:"period"`
	AsOf         time.Time              `json:"as_of"`
	Interval     model.Interval         `json:"interval"`
	Indicators   model.IndicatorOptions `json:"indicators"`
	Method       model.ForecastMethod   `json:"method,omitempty"`
	Horizon      int                    `json:"horizon,omitempty"`
	Fundamentals bool                   `json:"fundamentals"`
}

// Validate checks the request parameters.
func (r Request) Validate() error {
	if err := validSymbols(r.Symbols); err != nil {
		return err
	}
	if _, err := model.ParsePeriod(string(r.Period)); err != nil {
		return err
	}
	if _, err := model.ParseInterval(string(r.Interval)); err != nil {
		return err
	}
	if _, err := model.ParseForecastMethod(string(r.Method)); err != nil {
		return err
	}
	if r.AsOf.IsZero() {
		return fmt.Errorf("%w: as-of date is required", model.ErrInvalidRequest)
	}
	if r.Horizon < 0 {
		return fmt.Errorf("%w: negative horizon %d", model.ErrInvalidRequest, r.Horizon)
	}
	return nil
}

// Notice is a user-facing summary of one failure.
type Notice struct {
	Symbol  string            `json:"symbol"`
	Window  string            `json:"window,omitempty"`
	Kind    model.FailureKind `json:"kind"`
	Message string            `json:"message"`
}

// Report is the result of one analytics run.
type Report struct {
	ID           string                  `json:"id"`
	Request      Request                 `json:"request"`
	GeneratedAt  time.Time               `json:"generated_at"`
	Comparison   model.Comparison        `json:"comparison"`
	Performance  []model.PerformanceRow  `json:"performance"`
	Risk         []model.RiskMetricSet   `json:"risk"`
	Ranges       []model.RangeSnapshot   `json:"ranges"`
	Indicators   []model.IndicatorSeries `json:"indicators,omitempty"`
	Forecasts    []forecast.Outcome      `json:"forecasts,omitempty"`
	Fundamentals *Fundamentals           `json:"fundamentals,omitempty"`
	Notices      []Notice                `json:"notices,omitempty"`
}

// Report runs every stage for req. Daily history is loaded once and shared
// read-only by the stages, which then run concurrently. A failing symbol or
// window only blanks its own cells.
func (a *Analyst) Report(ctx context.Context, req Request) (*Report, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()
	rep := &Report{ID: uuid.New().String(), Request: req, GeneratedAt: start.UTC()}

	span := windowSpan(req.AsOf, model.PerformanceWindows, model.RiskWindows, model.RangeWindows)
	if ps := req.Period.Start(model.Date(req.AsOf)).AddDate(0, 0, -spanMargin); ps.Before(span.Start) {
		span.Start = ps
	}
	daily := a.load(ctx, req.Symbols, span, model.Interval1d)

	detail := daily
	if req.Interval != model.Interval1d {
		detail = a.load(ctx, req.Symbols, detailSpan(req.Interval, req.AsOf), req.Interval)
	}

	var g errgroup.Group
	g.Go(func() error {
		rep.Comparison = comparison(daily, req.Symbols, req.Period, req.AsOf)
		return nil
	})
	g.Go(func() error {
		rep.Performance = performance(daily, req.Symbols, req.AsOf)
		return nil
	})
	g.Go(func() error {
		rep.Risk = risk(daily, req.Symbols, req.AsOf)
		return nil
	})
	g.Go(func() error {
		rep.Ranges = ranges(daily, req.Symbols, req.AsOf)
		return nil
	})
	if req.Indicators != (model.IndicatorOptions{}) {
		g.Go(func() error {
			rep.Indicators = a.indicators(detail, req)
			return nil
		})
	}
	if req.Method != model.MethodNone {
		g.Go(func() error {
			rep.Forecasts = a.forecasts(detail, req)
			return nil
		})
	}
	if req.Fundamentals {
		g.Go(func() error {
			f := a.FundamentalsTable(ctx, req.Symbols)
			rep.Fundamentals = &f
			return nil
		})
	}
	_ = g.Wait()

	rep.Notices = notices(rep)
	a.log.Info().Str("report_id", rep.ID).Strs("symbols", req.Symbols).Int("notices", len(rep.Notices)).
		Dur("took", time.Since(start)).Msg("report complete")
	return rep, nil
}

func (a *Analyst) indicators(l loaded, req Request) []model.IndicatorSeries {
	var out []model.IndicatorSeries
	for _, sym := range req.Symbols {
		ps, f := l.series(sym)
		if f != nil {
			continue
		}
		ps = calculator.History(ps, req.AsOf)
		if req.Interval == model.Interval1d {
			ps = ps.Between(req.Interval.DefaultPeriod().Start(model.Date(req.AsOf)), time.Time{})
		}
		s, err := calculator.Indicators(ps, req.Indicators)
		if err != nil {
			a.log.Warn().Err(err).Str("symbol", sym).Msg("indicators failed")
			continue
		}
		out = append(out, s)
	}
	return out
}

func (a *Analyst) forecasts(l loaded, req Request) []forecast.Outcome {
	out := make([]forecast.Outcome, len(req.Symbols))
	for i, sym := range req.Symbols {
		fr := forecast.Request{Symbol: sym, Interval: req.Interval, Method: req.Method, Horizon: req.Horizon}
		if fr.Horizon == 0 {
			out[i] = a.forecaster.Run(fr, model.PriceSeries{Symbol: sym})
			continue
		}
		ps, f := l.series(sym)
		if f != nil {
			out[i] = forecast.Failed(fr, f)
			continue
		}
		out[i] = a.forecaster.Run(fr, calculator.History(ps, req.AsOf))
	}
	return out
}

func notices(rep *Report) []Notice {
	var out []Notice
	seen := make(map[string]bool)
	add := func(f *model.Failure) {
		if f == nil {
			return
		}
		key := f.Symbol + "\x00" + f.Window + "\x00" + string(f.Kind)
		if seen[key] {
			return
		}
		seen[key] = true
		out = append(out, Notice{Symbol: f.Symbol, Window: f.Window, Kind: f.Kind, Message: f.Message()})
	}

	for _, f := range rep.Comparison.Dropped {
		add(f)
	}
	for _, row := range rep.Performance {
		add(row.Failure)
		for _, c := range row.Cells {
			add(c.Failure)
		}
	}
	for _, set := range rep.Risk {
		add(set.Failure)
		for _, c := range set.Cells {
			add(c.Failure)
		}
	}
	for _, snap := range rep.Ranges {
		add(snap.Failure)
		for _, b := range snap.Bands {
			add(b.Failure)
		}
	}
	for _, o := range rep.Forecasts {
		add(o.Failure)
	}
	if rep.Fundamentals != nil {
		for _, f := range rep.Fundamentals.Failures {
			add(f)
		}
	}
	return out
}
