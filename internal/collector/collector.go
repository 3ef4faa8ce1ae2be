// Package collector loads price series and company metadata from a market
// data source into the store, isolating failures per symbol.
package collector

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"MarketAnalyst/internal/model"
	"MarketAnalyst/internal/store"
)

// DefaultConcurrency bounds simultaneous requests to the source.
const DefaultConcurrency = 4

// Collector orchestrates data fetching for a set of symbols.
type Collector struct {
	Fetcher     Fetcher
	Concurrency int
	log         zerolog.Logger
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, concurrency int, log zerolog.Logger) *Collector {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Collector{
		Fetcher:     fetcher,
		Concurrency: concurrency,
		log:         log.With().Str("component", "collector").Str("source", fetcher.Name()).Logger(),
	}
}

// Load fetches every symbol concurrently and stores the normalized series.
// A symbol that cannot be fetched or yields no usable bars is reported as a
// Failure and never aborts the others. Failures follow the order of symbols.
func (c *Collector) Load(ctx context.Context, symbols []string, span model.Span, interval model.Interval) (*store.Store, []*model.Failure) {
	st := store.New(interval)
	failures := make([]*model.Failure, len(symbols))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.Concurrency)
	for i, symbol := range symbols {
		g.Go(func() error {
			res, err := c.Fetcher.Fetch(gctx, symbol, span, interval)
			if err == nil {
				_, err = st.Put(symbol, res.Bars, res.Timezone)
			}
			if err != nil {
				c.log.Warn().Err(err).Str("symbol", symbol).Str("interval", string(interval)).Msg("load failed")
				failures[i] = model.NewFailure(symbol, "", fmt.Errorf("load %s: %w", symbol, err))
				return nil
			}
			c.log.Debug().Str("symbol", symbol).Int("bars", len(res.Bars)).Msg("loaded")
			return nil
		})
	}
	_ = g.Wait()

	return st, compact(failures)
}

// Metadata fetches company metadata for every symbol concurrently.
func (c *Collector) Metadata(ctx context.Context, symbols []string) (map[string]map[string]any, []*model.Failure) {
	var mu sync.Mutex
	out := make(map[string]map[string]any, len(symbols))
	failures := make([]*model.Failure, len(symbols))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.Concurrency)
	for i, symbol := range symbols {
		g.Go(func() error {
			meta, err := c.Fetcher.FetchMetadata(gctx, symbol)
			if err != nil {
				c.log.Warn().Err(err).Str("symbol", symbol).Msg("metadata failed")
				failures[i] = model.NewFailure(symbol, "", fmt.Errorf("metadata %s: %w", symbol, err))
				return nil
			}
			mu.Lock()
			out[symbol] = meta
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return out, compact(failures)
}

func compact(failures []*model.Failure) []*model.Failure {
	var out []*model.Failure
	for _, f := range failures {
		if f != nil {
			out = append(out, f)
		}
	}
	return out
}
