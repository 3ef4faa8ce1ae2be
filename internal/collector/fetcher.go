package collector

import (
	"context"
	"time"

	"MarketAnalyst/internal/model"
)

// FetchResult is one symbol's raw bars as delivered by a source.
type FetchResult struct {
	Bars []model.OHLCV
	// Timezone is the exchange zone the source reports; nil when unknown.
	Timezone *time.Location
}

// Fetcher defines the interface for fetching market data.
type Fetcher interface {
	Fetch(ctx context.Context, symbol string, span model.Span, interval model.Interval) (FetchResult, error)
	FetchMetadata(ctx context.Context, symbol string) (map[string]any, error)
	Name() string
}
