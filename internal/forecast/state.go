package forecast

import (
	"fmt"
	"time"

	"MarketAnalyst/internal/model"
)

// State is the lifecycle position of a forecast request.
type State string

const (
	StateNoForecast State = "no_forecast"
	StateFitting    State = "fitting"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
)

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s == StateNoForecast || s == StateSucceeded || s == StateFailed
}

// Transition validates a move between states. Fitting is only entered from
// NoForecast and only left for Succeeded or Failed; a failed fit is never retried.
func Transition(from, to State) error {
	switch {
	case from == StateNoForecast && to == StateFitting,
		from == StateFitting && to == StateSucceeded,
		from == StateFitting && to == StateFailed:
		return nil
	}
	return fmt.Errorf("%w: forecast cannot move from %s to %s", model.ErrInvalidRequest, from, to)
}

// Request describes one forecast. It is passed by value and never mutated.
type Request struct {
	Symbol   string               `json:"symbol"`
	Interval model.Interval       `json:"interval"`
	Method   model.ForecastMethod `json:"method"`
	Horizon  int                  `json:"horizon"`
}

// Outcome is the terminal result of running a Request.
type Outcome struct {
	Request  Request               `json:"request"`
	State    State                 `json:"state"`
	Result   *model.ForecastResult `json:"result,omitempty"`
	Failure  *model.Failure        `json:"failure,omitempty"`
	Duration time.Duration         `json:"duration_ns"`
}

func (o *Outcome) moveTo(s State) {
	if err := Transition(o.State, s); err != nil {
		// Programming error in the runner; surface it as a failed outcome.
		o.State = StateFailed
		o.Failure = model.NewFailure(o.Request.Symbol, "", err)
		return
	}
	o.State = s
}

func (o *Outcome) fail(err error) Outcome {
	o.moveTo(StateFailed)
	if o.Failure == nil {
		o.Failure = model.NewFailure(o.Request.Symbol, "", err)
	}
	o.Result = nil
	return *o
}

func (o *Outcome) succeed(res *model.ForecastResult) Outcome {
	o.moveTo(StateSucceeded)
	if o.State == StateSucceeded {
		o.Result = res
	}
	return *o
}

// Failed returns the outcome of a request whose history could not be loaded.
// A request without a method still ends in NoForecast.
func Failed(req Request, err error) Outcome {
	out := Outcome{Request: req, State: StateNoForecast}
	if req.Method == model.MethodNone {
		return out
	}
	out.moveTo(StateFitting)
	return out.fail(err)
}
