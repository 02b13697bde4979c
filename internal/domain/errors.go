package domain

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidRequest     = errors.New("invalid request")
	ErrInvalidMarkup      = errors.New("invalid markup")
	ErrUnsupportedRuntime = errors.New("unsupported runtime")
	ErrCancelled          = errors.New("render cancelled")
	ErrEngineFailure      = errors.New("engine failure")
)
