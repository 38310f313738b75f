package readview

import "errors"

var (
	// ErrEmpty is returned when the document has no root element.
	ErrEmpty = errors.New("readview: document has no root element")
	// ErrNoContent is returned when extraction completed but no article was
	// selectable, even through the body fallback.
	ErrNoContent = errors.New("readview: no article content found")
	// ErrMalformed is returned when a structural precondition is violated,
	// e.g. the document has no body element where one is required.
	ErrMalformed = errors.New("readview: malformed document")
)
