package gallery

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means the asset vanished from the canonical collection
	// before the action could run.
	ErrNotFound = errors.New("asset not found in collection")

	// ErrAlreadyInProgress means a repost for the same asset is still
	// settling; the duplicate-submission guard rejected the call.
	ErrAlreadyInProgress = errors.New("repost already in progress for asset")
)

// CooldownActiveError is returned when a repost is attempted inside the
// cooldown window. It carries the raw fractional hours remaining.
type CooldownActiveError struct {
	HoursRemaining float64
}

func (e *CooldownActiveError) Error() string {
	return fmt.Sprintf("cooldown active, %dh remaining", Verdict{Active: true, HoursRemaining: e.HoursRemaining}.DisplayHours())
}

// ServerError is a non-2xx response from the API, carrying the server's
// error message when it provided one.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server rejected request (%d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("server rejected request (%d)", e.StatusCode)
}

// NetworkError is a transport-level failure (connection, timeout) before any
// server response was decoded.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network failure: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}
