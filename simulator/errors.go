package simulator

import (
	"errors"
	"fmt"
)

// SimError is a custom error type for simulation errors
type SimError struct {
	Message string
}

func (e SimError) Error() string {
	return fmt.Sprintf("simulation error: %s", e.Message)
}

// ErrInvalidConfig creates an error for invalid configuration
func ErrInvalidConfig(msg string) error {
	return SimError{Message: fmt.Sprintf("invalid config: %s", msg)}
}

var (
	// ErrNoElements is returned when metrics are requested before any element
	// reached a terminal state.
	ErrNoElements = errors.New("no terminal elements recorded")

	// ErrInvalidRate is returned by the variate generator for a non-positive rate.
	ErrInvalidRate = errors.New("rate must be > 0")

	// ErrWaitLineFull is returned when enqueueing into a full wait line.
	ErrWaitLineFull = errors.New("wait line is full")
)

// IsConfigError reports whether err was produced by configuration validation.
func IsConfigError(err error) bool {
	var se SimError
	return errors.As(err, &se)
}
