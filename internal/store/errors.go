package store

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("record not found")
	ErrGoalNotFound = errors.New("referenced goal not found")
	ErrGoalCycle    = errors.New("goal cannot be its own ancestor")
	// ErrUnscopedFilter guards bulk operations against an empty filter.
	ErrUnscopedFilter = errors.New("filter must constrain at least one field")
)

// StoreError wraps an underlying persistence failure.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// wrap annotates a driver error with the failed operation. Domain sentinels
// pass through untouched so callers can match them with errors.Is.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	for _, sentinel := range []error{ErrNotFound, ErrGoalNotFound, ErrGoalCycle, ErrUnscopedFilter} {
		if errors.Is(err, sentinel) {
			return err
		}
	}
	return &StoreError{Op: op, Err: err}
}
