package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"MarketAnalyst/internal/model"
	"MarketAnalyst/internal/store"
)

// BarAPIFetcher implements Fetcher against a REST service that serves bars
// as JSON and authenticates with a bearer key.
//
//	GET /api/v1/bars?symbol=&interval=&period=   (or &from=&to= in Unix seconds)
//	GET /api/v1/profile?symbol=
type BarAPIFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewBarAPIFetcher creates a new fetcher with optional proxy support.
func NewBarAPIFetcher(baseURL, apiKey, proxyURL string) *BarAPIFetcher {
	return &BarAPIFetcher{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client:  newHTTPClient(proxyURL),
	}
}

func (f *BarAPIFetcher) Name() string { return "barapi" }

// apiBar is the expected JSON shape of one bar.
type apiBar struct {
	Timestamp int64   `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
}

// barsResponse carries the bars and the IANA zone of the listing exchange.
// An empty timezone means the timestamps are taken as UTC dates.
type barsResponse struct {
	Timezone string   `json:"timezone"`
	Bars     []apiBar `json:"bars"`
}

// Fetch requests bars at the given interval. When the service has no
// endpoint for a coarse interval, daily bars are fetched and aggregated.
func (f *BarAPIFetcher) Fetch(ctx context.Context, symbol string, span model.Span, interval model.Interval) (FetchResult, error) {
	bars, loc, err := f.fetchBars(ctx, symbol, span, interval)
	if err == nil {
		return FetchResult{Bars: bars, Timezone: loc}, nil
	}
	if interval.Intraday() || interval == model.Interval1d {
		return FetchResult{}, err
	}

	daily, loc, dailyErr := f.fetchBars(ctx, symbol, span, model.Interval1d)
	if dailyErr != nil {
		return FetchResult{}, fmt.Errorf("%s fetch failed: %w; daily fallback also failed: %w", interval, err, dailyErr)
	}
	daily = store.Normalize(daily, model.Interval1d, loc)
	ps := store.Resample(model.PriceSeries{Symbol: symbol, Interval: model.Interval1d, Bars: daily}, interval)
	return FetchResult{Bars: ps.Bars}, nil
}

func (f *BarAPIFetcher) fetchBars(ctx context.Context, symbol string, span model.Span, interval model.Interval) ([]model.OHLCV, *time.Location, error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("interval", string(interval))
	if span.IsRange() {
		q.Set("from", strconv.FormatInt(span.Start.Unix(), 10))
		q.Set("to", strconv.FormatInt(span.End.Unix(), 10))
	} else {
		q.Set("period", string(span.Period))
	}

	var resp barsResponse
	if err := f.getJSON(ctx, "/api/v1/bars", q, &resp); err != nil {
		return nil, nil, fmt.Errorf("fetch bars: %w", err)
	}
	if len(resp.Bars) == 0 {
		return nil, nil, fmt.Errorf("fetch bars: empty response: %w", model.ErrDataUnavailable)
	}
	var loc *time.Location
	if resp.Timezone != "" {
		l, err := time.LoadLocation(resp.Timezone)
		if err != nil {
			return nil, nil, fmt.Errorf("fetch bars: timezone %q: %v: %w", resp.Timezone, err, model.ErrDataUnavailable)
		}
		loc = l
	}
	bars := make([]model.OHLCV, len(resp.Bars))
	for i, b := range resp.Bars {
		bars[i] = model.OHLCV{
			Time:   time.Unix(b.Timestamp, 0).UTC(),
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: b.Volume,
		}
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return bars, loc, nil
}

// FetchMetadata returns the service's company profile for symbol.
func (f *BarAPIFetcher) FetchMetadata(ctx context.Context, symbol string) (map[string]any, error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	var meta map[string]any
	if err := f.getJSON(ctx, "/api/v1/profile", q, &meta); err != nil {
		return nil, fmt.Errorf("fetch profile: %w", err)
	}
	return meta, nil
}

func (f *BarAPIFetcher) getJSON(ctx context.Context, path string, q url.Values, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.BaseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	if f.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+f.APIKey)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &statusError{source: "barapi", code: resp.StatusCode, body: truncate(body, 200)}
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}
