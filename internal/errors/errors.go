package errors

import "errors"

var (
	// Rule validation errors
	ErrInvalidRule      = errors.New("invalid alert rule")
	ErrUnknownCondition = errors.New("unknown rule condition")

	// Journal errors
	ErrJournalUnavailable = errors.New("alert journal unavailable")
)
