package core

import "errors"

// Sentinel errors shared by stores, sources and the refresh controller.
var (
	// ErrNotFound is returned when no company matches a query.
	ErrNotFound = errors.New("company not found")

	// ErrQueryRequired is returned when neither ticker nor company is set.
	ErrQueryRequired = errors.New("either 'ticker' or 'company' must be provided")

	// ErrNoData marks a payload without metrics, the "no data available" state.
	ErrNoData = errors.New("no data available")
)
