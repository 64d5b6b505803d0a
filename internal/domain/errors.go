package domain

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrStaleState   = errors.New("saved state is stale")
	ErrInvalidSide  = errors.New("invalid side")
	ErrInvalidMode  = errors.New("invalid ladder mode")
	ErrInvalidPrice = errors.New("invalid price")
	ErrInvalidQty   = errors.New("invalid quantity")
)
