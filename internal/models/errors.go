package models

import (
	"errors"
	"fmt"
)

var (
	// ErrNoFile is returned when no input file was supplied.
	ErrNoFile = errors.New("no file uploaded")
	// ErrMissingColumns is returned when the date or amount column cannot be found.
	ErrMissingColumns = errors.New("could not find date and amount columns")
	// ErrMissingConfig is returned when ledger credentials or ids are not set.
	ErrMissingConfig = errors.New("ledger access token, budget id and account id are required")
	// ErrEmptyInput is returned for files without a header row.
	ErrEmptyInput = errors.New("csv is empty")
)

// APIError is a failure reported by the remote ledger API.
type APIError struct {
	StatusCode int
	ID         string
	Name       string
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("ledger API request failed with status %d", e.StatusCode)
}
