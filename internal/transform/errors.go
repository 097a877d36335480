package transform

import "errors"

// Errors returned by the transform layer. Empty input is never an error.
var (
	// ErrInvalidQuantile is returned when a quantile is outside [0, 1] or NaN.
	ErrInvalidQuantile = errors.New("invalid quantile: must be within [0, 1]")

	// ErrTimestampTimezoneMismatch is returned when a zone-naive timestamp is
	// compared with a zone-aware one.
	ErrTimestampTimezoneMismatch = errors.New("cannot compare zone-naive and zone-aware timestamps")

	// ErrUnknownDimensionKey is returned for a malformed dimension key, such as
	// weekday 9 or an unnamed time period. A well-formed key that simply has no
	// rows yields an empty result instead.
	ErrUnknownDimensionKey = errors.New("unknown dimension key")
)
