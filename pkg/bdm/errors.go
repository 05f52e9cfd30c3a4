package bdm

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig indicates a model that cannot produce meaningful
	// results: fewer than two distinct positions (the position range would
	// be zero and every comparison would divide by zero), a duplicate
	// actor name, or a negative status-quo weight.
	ErrInvalidConfig = errors.New("invalid model configuration")

	// ErrDegenerateDanger indicates every actor carries an identical danger
	// level, so risk acceptance cannot be normalized.
	ErrDegenerateDanger = errors.New("all actors share the same danger level")
)

// RecordError describes an input record that could not be converted
// into an Actor.
type RecordError struct {
	Index   int    // zero-based position in the input sequence
	Name    string // actor name, when one was present
	Field   string
	Message string
}

func (e *RecordError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("record %d (%s): %s: %s", e.Index, e.Name, e.Field, e.Message)
	}
	return fmt.Sprintf("record %d: %s: %s", e.Index, e.Field, e.Message)
}
