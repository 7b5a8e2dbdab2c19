package models

import "errors"

// Error taxonomy of the split workflow. Callers match with errors.Is.
var (
	// ErrDocumentLoad is returned when the source bytes do not parse as a PDF.
	ErrDocumentLoad = errors.New("document could not be loaded")

	// ErrPageRange is returned when a page index falls outside the document.
	ErrPageRange = errors.New("page index out of range")

	// ErrEncoding is returned when serializing or transport-encoding fails.
	ErrEncoding = errors.New("document could not be encoded")

	// ErrEmptySelection is returned when a split is requested with no pages kept.
	ErrEmptySelection = errors.New("select at least one page to split")

	// ErrStorage is returned for session storage failures. It is never fatal.
	ErrStorage = errors.New("session storage failure")

	// ErrBusy is returned when an action arrives while a split is in flight.
	ErrBusy = errors.New("workflow is busy")

	// ErrInvalidTransition is returned when an action is not valid in the current phase.
	ErrInvalidTransition = errors.New("action not allowed in current phase")
)
