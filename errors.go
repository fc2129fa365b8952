package welford

import (
	"errors"
	"math"
)

var (
	// ErrInvalidConfig is returned when an accumulator is configured with
	// inconsistent or out of range values. The accumulator stays usable and
	// can be reconfigured.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// IsUndefined reports whether v is the sentinel returned by Variance and
// StdDev when fewer than two samples have been seen.
func IsUndefined(v float64) bool {
	return math.IsNaN(v)
}
