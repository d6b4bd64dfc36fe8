package task

import "errors"

// ErrInvalidRecurrence is returned when a recurrence ends before its anchor
// or would produce more occurrences than allowed. No task is written.
var ErrInvalidRecurrence = errors.New("invalid recurrence")
