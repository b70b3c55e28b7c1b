package model

import "errors"

var (
	// ErrInvalidRange is returned when the start date is not before the end date.
	ErrInvalidRange = errors.New("invalid date range")
	// ErrDataFetch is returned when a provider has no usable data for a valid request.
	ErrDataFetch = errors.New("no data returned")
	// ErrFxUnavailable is returned when currencies differ and no FX series can be obtained.
	ErrFxUnavailable = errors.New("fx series unavailable")
	// ErrInsufficientData is returned when a statistic needs at least two observations.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrUnknownTicker is returned by fetchers for symbols the provider does not know.
	ErrUnknownTicker = errors.New("unknown ticker")
)
