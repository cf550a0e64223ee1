package stats

import (
	"errors"
	"fmt"
)

// ErrInvalidStats is the sentinel wrapped by every InvalidStatsError.
var ErrInvalidStats = errors.New("invalid stats")

// InvalidStatsError reports a malformed IV, EV, level or stat key.
type InvalidStatsError struct {
	Field  string
	Reason string
}

func (e *InvalidStatsError) Error() string {
	return fmt.Sprintf("invalid stats: %s: %s", e.Field, e.Reason)
}

// Unwrap allows errors.Is(err, ErrInvalidStats).
func (e *InvalidStatsError) Unwrap() error { return ErrInvalidStats }
