package repository

import "errors"

// Sentinel kinds for catalog errors.
var (
	ErrNotFound     = errors.New("catalog entry not found")
	ErrInvalidLimit = errors.New("invalid notice limit")
	ErrNoData       = errors.New("store returned no rows")
	ErrUnknownTag   = errors.New("unknown cache tag")
)
