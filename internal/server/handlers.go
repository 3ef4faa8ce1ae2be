package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"MarketAnalyst/internal/analyst"
	"MarketAnalyst/internal/model"
)

type selectionQuery struct {
	Symbols []string `validate:"required,min=1,dive,required,max=20"`
	AsOf    string   `validate:"omitempty,datetime=2006-01-02"`
}

type comparisonQuery struct {
	Symbols []string `validate:"required,min=1,dive,required,max=20"`
	Period  string   `validate:"required,oneof=15d 40d 1mo 3mo 6mo 1y 2y 5y 10y"`
}

type overlayQuery struct {
	Symbol   string `validate:"required,max=20"`
	Interval string `validate:"required,oneof=15m 1h 1d 1wk 1mo 3mo"`
}

type forecastQuery struct {
	Symbol   string `validate:"required,max=20"`
	Interval string `validate:"required,oneof=15m 1h 1d 1wk 1mo 3mo"`
	Method   string `validate:"omitempty,oneof=exponential_smoothing seasonal"`
	Horizon  int    `validate:"gte=0"`
}

// reportBody is the JSON body of POST /api/report.
type reportBody struct {
	Symbols      []string               `json:"symbols" validate:"required_without=Names,dive,required,max=20"`
	Names        []string               `json:"names"`
	Period       string                 `json:"period" validate:"required,oneof=15d 40d 1mo 3mo 6mo 1y 2y 5y 10y"`
	AsOf         string                 `json:"as_of" validate:"omitempty,datetime=2006-01-02"`
	Interval     string                 `json:"interval" validate:"required,oneof=15m 1h 1d 1wk 1mo 3mo"`
	Indicators   model.IndicatorOptions `json:"indicators"`
	Method       string                 `json:"method" validate:"omitempty,oneof=exponential_smoothing seasonal"`
	Horizon      int                    `json:"horizon" validate:"gte=0"`
	Fundamentals bool                   `json:"fundamentals"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog)
}

// symbols resolves the symbols and names query parameters through the catalog.
func (s *Server) symbols(r *http.Request) []string {
	q := r.URL.Query()
	return s.catalog.Resolve(splitList(q.Get("names")), q.Get("symbols"), s.maxSymbols).Symbols
}

func (s *Server) asOf(raw string) time.Time {
	if raw == "" {
		return model.Date(s.now())
	}
	t, _ := time.Parse(time.DateOnly, raw)
	return t
}

func (s *Server) handleComparison(w http.ResponseWriter, r *http.Request) {
	q := comparisonQuery{Symbols: s.symbols(r), Period: r.URL.Query().Get("period")}
	if q.Period == "" {
		q.Period = string(model.Period1y)
	}
	if !s.valid(w, q) {
		return
	}
	cmp, err := s.analyst.ComparisonSeries(r.Context(), q.Symbols, model.Period(q.Period))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cmp)
}

func (s *Server) handlePerformance(w http.ResponseWriter, r *http.Request) {
	q := selectionQuery{Symbols: s.symbols(r), AsOf: r.URL.Query().Get("as_of")}
	if !s.valid(w, q) {
		return
	}
	writeJSON(w, http.StatusOK, s.analyst.PerformanceTable(r.Context(), q.Symbols, s.asOf(q.AsOf)))
}

func (s *Server) handleRisk(w http.ResponseWriter, r *http.Request) {
	q := selectionQuery{Symbols: s.symbols(r), AsOf: r.URL.Query().Get("as_of")}
	if !s.valid(w, q) {
		return
	}
	writeJSON(w, http.StatusOK, s.analyst.RiskTable(r.Context(), q.Symbols, s.asOf(q.AsOf)))
}

func (s *Server) handleRanges(w http.ResponseWriter, r *http.Request) {
	q := selectionQuery{Symbols: s.symbols(r), AsOf: r.URL.Query().Get("as_of")}
	if !s.valid(w, q) {
		return
	}
	writeJSON(w, http.StatusOK, s.analyst.RangeTable(r.Context(), q.Symbols, s.asOf(q.AsOf)))
}

func (s *Server) handleFundamentals(w http.ResponseWriter, r *http.Request) {
	q := selectionQuery{Symbols: s.symbols(r)}
	if !s.valid(w, q) {
		return
	}
	writeJSON(w, http.StatusOK, s.analyst.FundamentalsTable(r.Context(), q.Symbols))
}

func (s *Server) handleIndicators(w http.ResponseWriter, r *http.Request) {
	q := overlayQuery{Symbol: strings.ToUpper(chi.URLParam(r, "symbol")), Interval: r.URL.Query().Get("interval")}
	if q.Interval == "" {
		q.Interval = string(model.Interval1d)
	}
	if !s.valid(w, q) {
		return
	}
	opts := model.IndicatorOptions{
		SMA50:  flag(r, "sma50"),
		SMA200: flag(r, "sma200"),
		RSI:    flag(r, "rsi"),
		Volume: flag(r, "volume"),
	}
	series, err := s.analyst.IndicatorOverlay(r.Context(), q.Symbol, model.Interval(q.Interval), opts)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, series)
}

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	qs := r.URL.Query()
	q := forecastQuery{
		Symbol:   strings.ToUpper(chi.URLParam(r, "symbol")),
		Interval: qs.Get("interval"),
		Method:   qs.Get("method"),
	}
	if q.Interval == "" {
		q.Interval = string(model.Interval1d)
	}
	if raw := qs.Get("horizon"); raw != "" {
		h, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, fmt.Errorf("%w: horizon %q is not a number", model.ErrInvalidRequest, raw))
			return
		}
		q.Horizon = h
	}
	if !s.valid(w, q) {
		return
	}
	out := s.analyst.Forecast(r.Context(), q.Symbol, model.Interval(q.Interval), model.ForecastMethod(q.Method), q.Horizon)
	status := http.StatusOK
	if out.Failure != nil {
		status = statusOf(out.Failure)
	}
	writeJSON(w, status, out)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	var body reportBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, fmt.Errorf("%w: invalid request body: %v", model.ErrInvalidRequest, err))
		return
	}
	if !s.valid(w, body) {
		return
	}
	sel := s.catalog.Resolve(body.Names, strings.Join(body.Symbols, ","), s.maxSymbols)
	req := analyst.Request{
		Symbols:      sel.Symbols,
		Period:       model.Period(body.Period),
		AsOf:         s.asOf(body.AsOf),
		Interval:     model.Interval(body.Interval),
		Indicators:   body.Indicators,
		Method:       model.ForecastMethod(body.Method),
		Horizon:      body.Horizon,
		Fundamentals: body.Fundamentals,
	}
	rep, err := s.analyst.Report(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// valid validates v and writes a 400 response listing the failed fields.
func (s *Server) valid(w http.ResponseWriter, v any) bool {
	err := s.validate.Struct(v)
	if err == nil {
		return true
	}
	var fields validator.ValidationErrors
	if errors.As(err, &fields) {
		msgs := make([]string, len(fields))
		for i, fe := range fields {
			msgs[i] = fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag())
		}
		err = fmt.Errorf("%w: %s", model.ErrInvalidRequest, strings.Join(msgs, "; "))
	}
	writeError(w, err)
	return false
}

func flag(r *http.Request, name string) bool {
	v, _ := strconv.ParseBool(r.URL.Query().Get(name))
	return v
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

type errorResponse struct {
	Error   string            `json:"error"`
	Kind    model.FailureKind `json:"kind"`
	Message string            `json:"message"`
}

func statusOf(err error) int {
	switch model.KindOf(err) {
	case model.KindInvalidRequest:
		return http.StatusBadRequest
	case model.KindInsufficientHistory, model.KindModelFitFailure:
		return http.StatusUnprocessableEntity
	}
	return http.StatusBadGateway
}

func writeError(w http.ResponseWriter, err error) {
	f := model.NewFailure("", "", err)
	writeJSON(w, statusOf(err), errorResponse{Error: err.Error(), Kind: f.Kind, Message: f.Message()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v) // Ignore encode error - already committed response
}
