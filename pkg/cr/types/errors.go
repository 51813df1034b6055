package types

import (
	"errors"
	"fmt"
)

// ErrorKind names a failure class in reports and batch results.
type ErrorKind string

const (
	KindInsufficientData    ErrorKind = "InsufficientDataError"
	KindInsufficientHistory ErrorKind = "InsufficientHistoryError"
	KindZeroVolatility      ErrorKind = "ZeroVolatilityError"
	KindInvalidInput        ErrorKind = "InvalidInputError"
	KindDataProvider        ErrorKind = "DataProviderError"
	KindInternal            ErrorKind = "InternalError"
)

// InsufficientDataError reports a missing or zero required accounting field.
type InsufficientDataError struct {
	Field  string
	Reason string
}

func (e *InsufficientDataError) Error() string {
	if e.Reason != "" {
		return "insufficient data: " + e.Field + " " + e.Reason
	}
	return "insufficient data: " + e.Field + " is missing"
}

// InsufficientHistoryError reports too few year-over-year asset changes.
type InsufficientHistoryError struct {
	Have int
	Need int
}

func (e *InsufficientHistoryError) Error() string {
	return fmt.Sprintf("insufficient asset history: %d year-over-year changes, need at least %d", e.Have, e.Need)
}

// ZeroVolatilityError reports a degenerate asset history with sigma = 0.
type ZeroVolatilityError struct {
	Observations int
}

func (e *ZeroVolatilityError) Error() string {
	return fmt.Sprintf("asset volatility is zero across %d observations", e.Observations)
}

// InvalidInputError reports a non-economic value.
type InvalidInputError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input %s=%g: %s", e.Field, e.Value, e.Reason)
}

// DataProviderError wraps an opaque failure from the data provider.
type DataProviderError struct {
	Ticker string
	Err    error
}

func (e *DataProviderError) Error() string {
	return fmt.Sprintf("data provider: %s: %v", e.Ticker, e.Err)
}

func (e *DataProviderError) Unwrap() error { return e.Err }

// KindOf classifies err. Unrecognized errors are KindInternal.
func KindOf(err error) ErrorKind {
	var (
		dataErr    *InsufficientDataError
		histErr    *InsufficientHistoryError
		volErr     *ZeroVolatilityError
		inputErr   *InvalidInputError
		provErr    *DataProviderError
		analysisEr *AnalysisError
	)
	switch {
	case errors.As(err, &analysisEr):
		return analysisEr.Kind
	case errors.As(err, &dataErr):
		return KindInsufficientData
	case errors.As(err, &histErr):
		return KindInsufficientHistory
	case errors.As(err, &volErr):
		return KindZeroVolatility
	case errors.As(err, &inputErr):
		return KindInvalidInput
	case errors.As(err, &provErr):
		return KindDataProvider
	}
	return KindInternal
}

// FieldOf returns the offending field name when err carries one.
func FieldOf(err error) string {
	var (
		dataErr  *InsufficientDataError
		inputErr *InvalidInputError
		histErr  *InsufficientHistoryError
	)
	switch {
	case errors.As(err, &dataErr):
		return dataErr.Field
	case errors.As(err, &inputErr):
		return inputErr.Field
	case errors.As(err, &histErr):
		return FieldAssetHistory
	}
	return ""
}

// AnalysisError is the per-ticker failure record.
type AnalysisError struct {
	Ticker  string    `json:"ticker"`
	Kind    ErrorKind `json:"kind"`
	Field   string    `json:"field,omitempty"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

// NewAnalysisError classifies err for ticker.
func NewAnalysisError(ticker string, err error) *AnalysisError {
	var ae *AnalysisError
	if errors.As(err, &ae) {
		return ae
	}
	return &AnalysisError{
		Ticker:  ticker,
		Kind:    KindOf(err),
		Field:   FieldOf(err),
		Message: err.Error(),
		Err:     err,
	}
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Ticker, e.Kind, e.Message)
}

func (e *AnalysisError) Unwrap() error { return e.Err }
