package scoring

import "errors"

var (
	// ErrUnknownMode is returned by ParseMode for values outside the Mode enum.
	ErrUnknownMode = errors.New("unknown scoring mode")
	// ErrInvalidPolicy is returned when a region policy document is malformed
	// or violates bucket invariants.
	ErrInvalidPolicy = errors.New("invalid region policy")
)
