package ledger

type fieldState uint8

const (
	fieldKeep fieldState = iota
	fieldNull
	fieldSet
)

// Field is one slot of a partial update. It distinguishes "leave as is"
// from "clear" from "set to this value", so a supplied zero amount or
// empty description is never mistaken for "not provided".
//
// The zero Field keeps the current value.
type Field[T any] struct {
	state fieldState
	value T
}

// Keep leaves the stored value unchanged.
func Keep[T any]() Field[T] { return Field[T]{} }

// Set replaces the stored value with v.
func Set[T any](v T) Field[T] { return Field[T]{state: fieldSet, value: v} }

// Null clears the stored value. Only nullable columns accept it.
func Null[T any]() Field[T] { return Field[T]{state: fieldNull} }

// IsKeep reports whether the field leaves the value unchanged.
func (f Field[T]) IsKeep() bool { return f.state == fieldKeep }

// IsNull reports whether the field clears the value.
func (f Field[T]) IsNull() bool { return f.state == fieldNull }

// Get returns the new value and true when the field is Set.
func (f Field[T]) Get() (T, bool) { return f.value, f.state == fieldSet }
