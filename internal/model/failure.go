package model

import (
	"errors"
	"fmt"
)

var (
	// ErrDataUnavailable means the source returned an empty or missing series.
	ErrDataUnavailable = errors.New("data unavailable")
	// ErrInsufficientHistory means too few observations for a window or a forecast fit.
	ErrInsufficientHistory = errors.New("insufficient history")
	// ErrGuardedZeroDivision means a zero denominator was resolved to a sentinel.
	ErrGuardedZeroDivision = errors.New("guarded zero division")
	// ErrModelFitFailure means a forecast model could not be fitted.
	ErrModelFitFailure = errors.New("model fit failure")
	// ErrInvalidRequest means the caller supplied an unusable parameter.
	ErrInvalidRequest = errors.New("invalid request")
)

// FailureKind tags a Failure with its taxonomy class.
type FailureKind string

const (
	KindDataUnavailable     FailureKind = "DataUnavailable"
	KindInsufficientHistory FailureKind = "InsufficientHistory"
	KindGuardedZeroDivision FailureKind = "GuardedZeroDivision"
	KindModelFitFailure     FailureKind = "ModelFitFailure"
	KindInvalidRequest      FailureKind = "InvalidRequest"
)

// Failure records why a symbol, window or forecast produced no value.
type Failure struct {
	Symbol string      `json:"symbol"`
	Window string      `json:"window,omitempty"`
	Kind   FailureKind `json:"kind"`
	Reason string      `json:"reason"`
	Err    error       `json:"-"`
}

// NewFailure classifies err and attaches the symbol and window it belongs to.
func NewFailure(symbol, window string, err error) *Failure {
	return &Failure{Symbol: symbol, Window: window, Kind: KindOf(err), Reason: err.Error(), Err: err}
}

func (f *Failure) Error() string {
	if f.Window != "" {
		return fmt.Sprintf("%s [%s]: %v", f.Symbol, f.Window, f.Err)
	}
	return fmt.Sprintf("%s: %v", f.Symbol, f.Err)
}

func (f *Failure) Unwrap() error { return f.Err }

// Message is a short, non-technical explanation for end users.
func (f *Failure) Message() string {
	switch f.Kind {
	case KindDataUnavailable:
		return "No price data could be loaded for " + f.Symbol + "."
	case KindInsufficientHistory:
		return "Not enough price history for this period."
	case KindGuardedZeroDivision:
		return "The value cannot be computed for this period."
	case KindModelFitFailure:
		return "The forecast could not be created. Try another method or horizon."
	case KindInvalidRequest:
		return "The request parameters are not supported."
	}
	return "An unexpected problem occurred."
}

// KindOf maps an error to its taxonomy class. Unclassified errors come from
// the market-data source and count as unavailable data.
func KindOf(err error) FailureKind {
	switch {
	case errors.Is(err, ErrDataUnavailable):
		return KindDataUnavailable
	case errors.Is(err, ErrInsufficientHistory):
		return KindInsufficientHistory
	case errors.Is(err, ErrGuardedZeroDivision):
		return KindGuardedZeroDivision
	case errors.Is(err, ErrModelFitFailure):
		return KindModelFitFailure
	case errors.Is(err, ErrInvalidRequest):
		return KindInvalidRequest
	}
	return KindDataUnavailable
}
