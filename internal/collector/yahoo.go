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
	"strings"
	"time"

	"MarketAnalyst/internal/model"
)

// DefaultYahooBaseURL is the public Yahoo Finance API host.
const DefaultYahooBaseURL = "https://query1.finance.yahoo.com"

// YahooFetcher implements Fetcher using Yahoo Finance public API.
type YahooFetcher struct {
	BaseURL   string
	Client    *http.Client
	SymbolMap map[string]string // maps internal symbol to Yahoo ticker
	Retry     Retry
}

// NewYahooFetcher creates a new Yahoo Finance fetcher.
func NewYahooFetcher(proxyURL string) *YahooFetcher {
	return &YahooFetcher{
		BaseURL: DefaultYahooBaseURL,
		Client:  newHTTPClient(proxyURL),
		Retry:   DefaultRetry,
		SymbolMap: map[string]string{
			"SPX500": "^GSPC",
			"SPX":    "^GSPC",
			"SP500":  "^GSPC",
			"DAX":    "^GDAXI",
		},
	}
}

func newHTTPClient(proxyURL string) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{
		Timeout:   30 * time.Second,
		Transport: transport,
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

func (f *YahooFetcher) yahooSymbol(symbol string) string {
	if mapped, ok := f.SymbolMap[symbol]; ok {
		return mapped
	}
	return symbol
}

// yahooChart is the response structure from Yahoo Finance chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta struct {
				ExchangeTimezoneName string `json:"exchangeTimezoneName"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *yahooError `json:"error"`
	} `json:"chart"`
}

type yahooError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

func at(vs []*float64, i int) (float64, bool) {
	if i >= len(vs) || vs[i] == nil {
		return 0, false
	}
	return *vs[i], true
}

func (f *YahooFetcher) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	u := f.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	var body []byte
	err := f.Retry.Do(ctx, func() error {
		var err error
		body, err = f.getOnce(ctx, u)
		return err
	})
	return body, err
}

func (f *YahooFetcher) getOnce(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yahoo fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("yahoo read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &statusError{source: "yahoo", code: resp.StatusCode, body: truncate(body, 200)}
	}
	return body, nil
}

// Fetch downloads bars for a trailing period or an explicit range.
func (f *YahooFetcher) Fetch(ctx context.Context, symbol string, span model.Span, interval model.Interval) (FetchResult, error) {
	q := url.Values{}
	q.Set("interval", string(interval))
	q.Set("includePrePost", "false")
	q.Set("events", "div,splits")
	if span.IsRange() {
		q.Set("period1", strconv.FormatInt(span.Start.Unix(), 10))
		q.Set("period2", strconv.FormatInt(span.End.Unix(), 10))
	} else {
		q.Set("range", string(span.Period))
	}

	body, err := f.get(ctx, "/v8/finance/chart/"+url.PathEscape(f.yahooSymbol(symbol)), q)
	if err != nil {
		return FetchResult{}, err
	}

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return FetchResult{}, fmt.Errorf("yahoo decode: %w", err)
	}
	if chart.Chart.Error != nil {
		return FetchResult{}, fmt.Errorf("yahoo api error: %s: %w", chart.Chart.Error.Description, model.ErrDataUnavailable)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 ||
		len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return FetchResult{}, fmt.Errorf("yahoo: no data returned: %w", model.ErrDataUnavailable)
	}

	result := chart.Chart.Result[0]
	quote := result.Indicators.Quote[0]
	bars := make([]model.OHLCV, 0, len(result.Timestamp))

	for i, ts := range result.Timestamp {
		c, ok := at(quote.Close, i)
		if !ok {
			continue // skip null bars (holidays etc.)
		}
		o, _ := at(quote.Open, i)
		h, _ := at(quote.High, i)
		l, _ := at(quote.Low, i)
		v, _ := at(quote.Volume, i)
		bars = append(bars, model.OHLCV{
			Time:   time.Unix(ts, 0).UTC(),
			Open:   o,
			High:   h,
			Low:    l,
			Close:  c,
			Volume: v,
		})
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })

	res := FetchResult{Bars: bars}
	if name := result.Meta.ExchangeTimezoneName; name != "" {
		if loc, err := time.LoadLocation(name); err == nil {
			res.Timezone = loc
		}
	}
	return res, nil
}

// quoteSummaryModules are the profile and statistics blocks merged into metadata.
const quoteSummaryModules = "price,assetProfile,summaryDetail,financialData,defaultKeyStatistics"

type yahooQuoteSummary struct {
	QuoteSummary struct {
		Result []map[string]map[string]any `json:"result"`
		Error  *yahooError                 `json:"error"`
	} `json:"quoteSummary"`
}

// FetchMetadata returns the company profile and key statistics as a flat map
// keyed by field name. Numeric fields are unwrapped from their raw/fmt form.
func (f *YahooFetcher) FetchMetadata(ctx context.Context, symbol string) (map[string]any, error) {
	q := url.Values{}
	q.Set("modules", quoteSummaryModules)
	body, err := f.get(ctx, "/v10/finance/quoteSummary/"+url.PathEscape(f.yahooSymbol(symbol)), q)
	if err != nil {
		return nil, err
	}

	var qs yahooQuoteSummary
	if err := json.Unmarshal(body, &qs); err != nil {
		return nil, fmt.Errorf("yahoo decode: %w", err)
	}
	if qs.QuoteSummary.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s: %w", qs.QuoteSummary.Error.Description, model.ErrDataUnavailable)
	}
	if len(qs.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("yahoo: no metadata returned: %w", model.ErrDataUnavailable)
	}

	meta := make(map[string]any)
	result := qs.QuoteSummary.Result[0]
	for _, name := range strings.Split(quoteSummaryModules, ",") {
		for k, v := range result[name] {
			if _, seen := meta[k]; seen {
				continue
			}
			if wrapped, ok := v.(map[string]any); ok {
				raw, ok := wrapped["raw"]
				if !ok {
					continue
				}
				v = raw
			}
			meta[k] = v
		}
	}
	return meta, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
