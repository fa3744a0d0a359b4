package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrNotMapped             = errors.New("competition is not mapped")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)
