package selection

import (
	"errors"
	"fmt"
)

// UnknownCategoryError is returned when the chart is asked to show a
// category its records do not contain.
type UnknownCategoryError struct {
	Category string
}

// Error implements the error interface.
func (e *UnknownCategoryError) Error() string {
	return fmt.Sprintf("unknown category %q", e.Category)
}

// UnknownOptionError is returned when a user selects a value that is not
// one of the selector's options.
type UnknownOptionError struct {
	Value string
}

// Error implements the error interface.
func (e *UnknownOptionError) Error() string {
	return fmt.Sprintf("unknown option %q", e.Value)
}

// DuplicateOptionError is returned when an option list repeats a label.
type DuplicateOptionError struct {
	Option string
}

// Error implements the error interface.
func (e *DuplicateOptionError) Error() string {
	return fmt.Sprintf("duplicate option %q", e.Option)
}

// HopsExceededError is reported when one notification chain delivers more
// notifications than the store's hop budget allows.
//
// The rest of the chain is dropped. With idempotent subscribers a chain
// ends after a single round trip, so this only fires for a miswired
// subscriber.
type HopsExceededError struct {
	Flow  string // The flow the chain belongs to
	Hops  int    // Number of notifications delivered
	Limit int    // Maximum allowed per chain
}

// Error implements the error interface.
func (e *HopsExceededError) Error() string {
	return fmt.Sprintf("flow %s exceeded max hops: %d hops > %d limit", e.Flow, e.Hops, e.Limit)
}

// IsUnknownCategory returns true if err is or wraps an UnknownCategoryError.
func IsUnknownCategory(err error) bool {
	var ue *UnknownCategoryError
	return errors.As(err, &ue)
}

// IsUnknownOption returns true if err is or wraps an UnknownOptionError.
func IsUnknownOption(err error) bool {
	var ue *UnknownOptionError
	return errors.As(err, &ue)
}

// IsHopsExceeded returns true if err is or wraps a HopsExceededError.
func IsHopsExceeded(err error) bool {
	var he *HopsExceededError
	return errors.As(err, &he)
}
