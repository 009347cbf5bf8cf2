package ledger

import (
	"errors"
	"fmt"
)

// NotFoundError reports that a referenced book or entry does not exist.
// It is a reported failure, never fatal to the process.
type NotFoundError struct {
	// Resource is "book" or "entry".
	Resource string

	// Key is the book name or the entry id.
	Key string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.Key)
}

func bookNotFound(name string) error {
	return &NotFoundError{Resource: "book", Key: fmt.Sprintf("%q", name)}
}

func entryNotFound(id int64) error {
	return &NotFoundError{Resource: "entry", Key: fmt.Sprintf("%d", id)}
}

// PreconditionError reports an operation attempted on a book that is not
// ready for it, e.g. interest accrual with no entries or no APR.
type PreconditionError struct {
	Book   string
	Reason string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("book %q: %s", e.Book, e.Reason)
}

// ValidationError reports malformed input at the boundary: a bad date,
// a non-numeric amount, an empty book name.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// IsNotFound returns true if err wraps a *NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsPrecondition returns true if err wraps a *PreconditionError.
func IsPrecondition(err error) bool {
	var pe *PreconditionError
	return errors.As(err, &pe)
}

// IsValidation returns true if err wraps a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
