package models

import "errors"

var (
	// ErrValidation indicates caller-supplied input was rejected before any persistence.
	ErrValidation = errors.New("validation failed")
	// ErrStorage indicates a persisted collection could not be read or written.
	ErrStorage = errors.New("storage unavailable")
	// ErrAnalysisFailed indicates the vision collaborator could not produce a usable answer.
	ErrAnalysisFailed = errors.New("food analysis failed")
	// ErrAdviceFailed indicates the daily advice collaborator could not produce a usable answer.
	ErrAdviceFailed = errors.New("daily advice failed")
	// ErrNoEntries indicates a day has nothing logged.
	ErrNoEntries = errors.New("no entries for day")
)
