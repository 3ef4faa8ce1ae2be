package collector

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketAnalyst/internal/model"
	"MarketAnalyst/internal/store"
)

func TestBarAPIFetcher_WeeklyFallsBackToDaily(t *testing.T) {
	monday := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	var daily []apiBar
	for i, c := range []float64{10, 11, 12, 13, 14, 20} {
		d := monday.AddDate(0, 0, i)
		if i == 5 {
			d = monday.AddDate(0, 0, 7)
		}
		daily = append(daily, apiBar{Timestamp: d.Unix(), Open: c, High: c, Low: c, Close: c, Volume: 1})
	}

	var auth []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = append(auth, r.Header.Get("Authorization"))
		if r.URL.Query().Get("interval") != "1d" {
			http.Error(w, "unsupported interval", http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(barsResponse{Bars: daily})
	}))
	defer srv.Close()

	f := NewBarAPIFetcher(srv.URL, "secret", "")
	res, err := f.Fetch(context.Background(), "X", model.SpanOf(model.Period1mo), model.Interval1wk)
	require.NoError(t, err)

	require.Len(t, res.Bars, 2)
	assert.Equal(t, 14.0, res.Bars[0].Close)
	assert.Equal(t, 5.0, res.Bars[0].Volume)
	assert.Equal(t, 20.0, res.Bars[1].Close)
	assert.Equal(t, []string{"Bearer secret", "Bearer secret"}, auth)
}

func TestBarAPIFetcher_ReportsExchangeTimezone(t *testing.T) {
	// 23:00 UTC on Monday is Tuesday morning in Tokyo.
	ts := time.Date(2024, 3, 4, 23, 0, 0, 0, time.UTC)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/bars", r.URL.Path)
		assert.Equal(t, "1y", r.URL.Query().Get("period"))
		_ = json.NewEncoder(w).Encode(barsResponse{
			Timezone: "Asia/Tokyo",
			Bars:     []apiBar{{Timestamp: ts.Unix(), Open: 1, High: 1, Low: 1, Close: 1, Volume: 1}},
		})
	}))
	defer srv.Close()

	res, err := NewBarAPIFetcher(srv.URL, "", "").Fetch(context.Background(), "7203.T", model.SpanOf(model.Period1y), model.Interval1d)
	require.NoError(t, err)
	require.NotNil(t, res.Timezone)
	assert.Equal(t, "Asia/Tokyo", res.Timezone.String())

	bars := store.Normalize(res.Bars, model.Interval1d, res.Timezone)
	require.Len(t, bars, 1)
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), bars[0].Time)
}

func TestBarAPIFetcher_UnknownTimezone(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(barsResponse{
			Timezone: "Mars/Olympus",
			Bars:     []apiBar{{Timestamp: 1709600000, Close: 1}},
		})
	}))
	defer srv.Close()

	_, err := NewBarAPIFetcher(srv.URL, "", "").Fetch(context.Background(), "X", model.SpanOf(model.Period1y), model.Interval1d)
	assert.ErrorIs(t, err, model.ErrDataUnavailable)
}

func TestBarAPIFetcher_DailyErrorIsFinal(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewBarAPIFetcher(srv.URL, "", "").Fetch(context.Background(), "X", model.SpanOf(model.Period1y), model.Interval1d)
	assert.ErrorIs(t, err, model.ErrDataUnavailable)
	assert.Equal(t, 1, calls)
}

func TestBarAPIFetcher_FetchMetadata(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/profile", r.URL.Path)
		_, _ = w.Write([]byte(`{"longName":"X Corp","beta":1.2}`))
	}))
	defer srv.Close()

	meta, err := NewBarAPIFetcher(srv.URL, "", "").FetchMetadata(context.Background(), "X")
	require.NoError(t, err)
	assert.Equal(t, "X Corp", meta["longName"])
	assert.Equal(t, 1.2, meta["beta"])
}
