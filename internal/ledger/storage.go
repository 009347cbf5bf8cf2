package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Storage is the persistence contract of the ledger. Implementations must
// commit every mutating call before returning and report missing rows as
// sql.ErrNoRows (reads) or a false "changed" result (updates, deletes).
type Storage interface {
	// EnsureBook inserts a book with only its name if absent and returns the stored row.
	EnsureBook(ctx context.Context, name string) (Book, error)
	GetBook(ctx context.Context, name string) (Book, error)
	UpdateBookDescription(ctx context.Context, name string, description *string) (bool, error)
	UpdateBookAPR(ctx context.Context, name string, apr decimal.NullDecimal) (bool, error)

	// InsertEntry stores e and returns it with its storage-assigned id.
	InsertEntry(ctx context.Context, e Entry) (Entry, error)
	GetEntry(ctx context.Context, id int64) (Entry, error)
	UpdateEntry(ctx context.Context, e Entry) (bool, error)
	DeleteEntry(ctx context.Context, id int64) (bool, error)

	// ListEntries returns the entries of a book ordered by date, then id.
	ListEntries(ctx context.Context, book string) ([]Entry, error)

	// ClearBook removes all entries of a book, the book row, and resets the
	// entry id sequence, atomically. It returns the number of entries removed.
	ClearBook(ctx context.Context, book string) (int64, error)
}

// Clock supplies the calendar date used when a caller omits one.
type Clock interface {
	Today() Date
}

// SystemClock reads today's date from the local wall clock on every call.
type SystemClock struct{}

// Today returns the current local date.
func (SystemClock) Today() Date { return NewDate(time.Now().Date()) }
