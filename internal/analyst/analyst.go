// Package analyst exposes the analytics operations consumed by the
// presentation layer. Each operation loads what it needs through the
// collector and hands immutable series to the pure calculators.
package analyst

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"MarketAnalyst/internal/calculator"
	"MarketAnalyst/internal/catalog"
	"MarketAnalyst/internal/collector"
	"MarketAnalyst/internal/forecast"
	"MarketAnalyst/internal/fundamentals"
	"MarketAnalyst/internal/model"
	"MarketAnalyst/internal/store"
)

// spanMargin widens date-range fetches so a window that starts on a
// non-trading day still finds its first observation.
const spanMargin = 7

// Analyst runs analytics over data loaded by a Collector.
type Analyst struct {
	collector  *collector.Collector
	forecaster *forecast.Forecaster
	catalog    *catalog.Catalog
	log        zerolog.Logger
}

// New creates an Analyst. A nil catalog uses the embedded default.
func New(c *collector.Collector, f *forecast.Forecaster, cat *catalog.Catalog, log zerolog.Logger) *Analyst {
	if cat == nil {
		cat = catalog.Default()
	}
	return &Analyst{
		collector:  c,
		forecaster: f,
		catalog:    cat,
		log:        log.With().Str("component", "analyst").Logger(),
	}
}

// loaded is one collector run: the stored series and the failure of every
// symbol that could not be loaded.
type loaded struct {
	store    *store.Store
	failures map[string]*model.Failure
}

func (a *Analyst) load(ctx context.Context, symbols []string, span model.Span, interval model.Interval) loaded {
	st, failures := a.collector.Load(ctx, symbols, span, interval)
	l := loaded{store: st, failures: make(map[string]*model.Failure, len(failures))}
	for _, f := range failures {
		l.failures[f.Symbol] = f
	}
	return l
}

// series returns the stored series of symbol, or the reason it is missing.
func (l loaded) series(symbol string) (model.PriceSeries, *model.Failure) {
	if f, ok := l.failures[symbol]; ok {
		return model.PriceSeries{Symbol: symbol}, f
	}
	ps, err := l.store.Get(symbol)
	if err != nil {
		return model.PriceSeries{Symbol: symbol}, model.NewFailure(symbol, "", err)
	}
	return ps, nil
}

// detailSpan covers the default history of interval ending at asOf.
func detailSpan(interval model.Interval, asOf time.Time) model.Span {
	end := model.Date(asOf)
	start := interval.DefaultPeriod().Start(end).AddDate(0, 0, -spanMargin)
	return model.SpanBetween(start, end.AddDate(0, 0, 1))
}

// windowSpan covers the longest of windows ending at asOf.
func windowSpan(asOf time.Time, windows ...[]model.LookbackWindow) model.Span {
	start := model.Date(asOf)
	for _, ws := range windows {
		if s := model.LongestWindow(ws).Start(asOf); s.Before(start) {
			start = s
		}
	}
	return model.SpanBetween(start.AddDate(0, 0, -spanMargin), model.Date(asOf).AddDate(0, 0, 1))
}

func validSymbols(symbols []string) error {
	if len(symbols) == 0 {
		return fmt.Errorf("%w: no symbols selected", model.ErrInvalidRequest)
	}
	return nil
}

// ComparisonSeries rebases the daily closes of symbols over period to 100
// and aligns them on their common dates.
func (a *Analyst) ComparisonSeries(ctx context.Context, symbols []string, period model.Period) (model.Comparison, error) {
	if err := validSymbols(symbols); err != nil {
		return model.Comparison{Period: period}, err
	}
	if _, err := model.ParsePeriod(string(period)); err != nil {
		return model.Comparison{Period: period}, err
	}
	l := a.load(ctx, symbols, model.SpanOf(period), model.Interval1d)
	return comparison(l, symbols, period, time.Time{}), nil
}

// comparison builds the indexed comparison. A non-zero asOf limits each
// series to the period ending at that date.
func comparison(l loaded, symbols []string, period model.Period, asOf time.Time) model.Comparison {
	var (
		indexed []model.IndexedSeries
		dropped []*model.Failure
	)
	for _, sym := range symbols {
		ps, f := l.series(sym)
		if f != nil {
			dropped = append(dropped, f)
			continue
		}
		if !asOf.IsZero() {
			ps = calculator.History(ps, asOf).Between(period.Start(model.Date(asOf)), time.Time{})
		}
		s, err := calculator.Normalize(ps)
		if err != nil {
			dropped = append(dropped, model.NewFailure(sym, "", err))
			continue
		}
		indexed = append(indexed, s)
	}
	cmp := calculator.Intersect(period, indexed...)
	cmp.Dropped = append(dropped, cmp.Dropped...)
	return cmp
}

// PerformanceTable returns one row of trailing returns per symbol, in order.
func (a *Analyst) PerformanceTable(ctx context.Context, symbols []string, asOf time.Time) []model.PerformanceRow {
	l := a.load(ctx, symbols, windowSpan(asOf, model.PerformanceWindows), model.Interval1d)
	return performance(l, symbols, asOf)
}

func performance(l loaded, symbols []string, asOf time.Time) []model.PerformanceRow {
	rows := make([]model.PerformanceRow, len(symbols))
	for i, sym := range symbols {
		ps, f := l.series(sym)
		rows[i] = calculator.Performance(ps, asOf, model.PerformanceWindows)
		if f != nil {
			rows[i].Failure = f
		}
	}
	return rows
}

// RiskTable returns one set of risk metrics per symbol, in order.
func (a *Analyst) RiskTable(ctx context.Context, symbols []string, asOf time.Time) []model.RiskMetricSet {
	l := a.load(ctx, symbols, windowSpan(asOf, model.RiskWindows), model.Interval1d)
	return risk(l, symbols, asOf)
}

func risk(l loaded, symbols []string, asOf time.Time) []model.RiskMetricSet {
	sets := make([]model.RiskMetricSet, len(symbols))
	for i, sym := range symbols {
		ps, f := l.series(sym)
		sets[i] = calculator.Risk(ps, asOf, model.RiskWindows)
		if f != nil {
			sets[i].Failure = f
		}
	}
	return sets
}

// RangeTable returns the 30-day and 52-week high/low bands per symbol.
func (a *Analyst) RangeTable(ctx context.Context, symbols []string, asOf time.Time) []model.RangeSnapshot {
	l := a.load(ctx, symbols, windowSpan(asOf, model.RangeWindows), model.Interval1d)
	return ranges(l, symbols, asOf)
}

func ranges(l loaded, symbols []string, asOf time.Time) []model.RangeSnapshot {
	snaps := make([]model.RangeSnapshot, len(symbols))
	for i, sym := range symbols {
		ps, f := l.series(sym)
		snaps[i] = calculator.Ranges(ps, asOf, model.RangeWindows)
		if f != nil {
			snaps[i].Failure = f
		}
	}
	return snaps
}

// IndicatorOverlay computes the selected overlays for symbol over the
// default history of interval.
func (a *Analyst) IndicatorOverlay(ctx context.Context, symbol string, interval model.Interval, opts model.IndicatorOptions) (model.IndicatorSeries, error) {
	if _, err := model.ParseInterval(string(interval)); err != nil {
		return model.IndicatorSeries{Symbol: symbol, Interval: interval}, err
	}
	l := a.load(ctx, []string{symbol}, model.SpanOf(interval.DefaultPeriod()), interval)
	ps, f := l.series(symbol)
	if f != nil {
		return model.IndicatorSeries{Symbol: symbol, Interval: interval}, f
	}
	return calculator.Indicators(ps, opts)
}

// Forecast projects symbol horizon steps ahead at interval.
func (a *Analyst) Forecast(ctx context.Context, symbol string, interval model.Interval, method model.ForecastMethod, horizon int) forecast.Outcome {
	req := forecast.Request{Symbol: symbol, Interval: interval, Method: method, Horizon: horizon}
	if _, err := model.ParseInterval(string(interval)); err != nil {
		return forecast.Failed(req, err)
	}
	if method == model.MethodNone || horizon == 0 {
		return a.forecaster.Run(req, model.PriceSeries{Symbol: symbol})
	}
	l := a.load(ctx, []string{symbol}, model.SpanOf(interval.DefaultPeriod()), interval)
	ps, f := l.series(symbol)
	if f != nil {
		return forecast.Failed(req, f)
	}
	return a.forecaster.Run(req, ps)
}

// Fundamentals is the company table of a selection.
type Fundamentals struct {
	Profiles []fundamentals.Profile  `json:"profiles"`
	Rows     []fundamentals.Combined `json:"rows"`
	Failures []*model.Failure        `json:"failures,omitempty"`
}

// FundamentalsTable fetches metadata for symbols and extracts profiles and
// valuation figures, joined on symbol. Symbols without metadata are reported
// in Failures and left out of the rows.
func (a *Analyst) FundamentalsTable(ctx context.Context, symbols []string) Fundamentals {
	metas, failures := a.collector.Metadata(ctx, symbols)
	out := Fundamentals{Failures: failures}

	var (
		metrics []fundamentals.Metrics
		extras  []fundamentals.Extra
	)
	for _, sym := range symbols {
		meta, ok := metas[sym]
		if !ok {
			continue
		}
		listing, found := a.catalog.BySymbol(sym)
		if !found {
			listing = catalog.Stock{Name: sym, Symbol: sym}
		}
		p, m, e := fundamentals.Extract(listing, meta)
		out.Profiles = append(out.Profiles, p)
		metrics = append(metrics, m)
		extras = append(extras, e)
	}
	out.Rows = fundamentals.Merge(metrics, extras)
	return out
}
