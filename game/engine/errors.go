package engine

import "errors"

var (
	ErrInvalidDirection   = errors.New("invalid direction")
	ErrRestartUnavailable = errors.New("restart is only available after game over or win")
	ErrInvalidConfig      = errors.New("invalid campaign config")
	ErrOutOfBounds        = errors.New("cell out of bounds")
)
