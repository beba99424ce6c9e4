package content

import "errors"

var (
	ErrNotFound     = errors.New("content: not found")
	ErrConflict     = errors.New("content: already exists")
	ErrInvalidInput = errors.New("content: invalid input")
	ErrForbidden    = errors.New("content: forbidden")
)
