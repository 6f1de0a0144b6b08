package domain

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidStage = errors.New("invalid pipeline stage")
	ErrUnknownCard  = errors.New("unknown pipeline card")
	ErrCardBusy     = errors.New("pipeline card has a move in flight")
)
