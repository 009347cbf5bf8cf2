package ledger

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"
)

// Ledger exposes the library contract consumed by the CLI.
type Ledger struct {
	Books    *Registry
	Entries  *Entries
	Balances *Balances
	Interest *Accruer
}

// Option configures a Ledger.
type Option func(*options)

type options struct {
	clock  Clock
	logger *slog.Logger
}

// WithClock sets the clock used for default dates.
func WithClock(c Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithLogger sets the logger for all components.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// New wires the four components over one storage handle.
func New(storage Storage, opts ...Option) *Ledger {
	o := options{clock: SystemClock{}, logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	books := NewRegistry(storage, o.logger)
	entries := NewEntries(storage, books, o.clock, o.logger)
	balances := NewBalances(entries)
	return &Ledger{
		Books:    books,
		Entries:  entries,
		Balances: balances,
		Interest: NewAccruer(books, entries, balances, o.logger),
	}
}

// EnsureBook creates the book if needed and returns it.
func (l *Ledger) EnsureBook(ctx context.Context, name string) (Book, error) {
	return l.Books.Ensure(ctx, name)
}

// BookInfo returns the stored book.
func (l *Ledger) BookInfo(ctx context.Context, name string) (Book, error) {
	return l.Books.Info(ctx, name)
}

// SetDescription replaces (or with nil clears) the book description.
func (l *Ledger) SetDescription(ctx context.Context, name string, description *string) (Book, error) {
	return l.Books.SetDescription(ctx, name, description)
}

// SetAPR replaces (or with an invalid value clears) the book APR.
func (l *Ledger) SetAPR(ctx context.Context, name string, apr decimal.NullDecimal) (Book, error) {
	return l.Books.SetAPR(ctx, name, apr)
}

// AddEntry records an entry and reports the book balance after it.
func (l *Ledger) AddEntry(ctx context.Context, n NewEntry) (Posting, error) {
	e, err := l.Entries.Add(ctx, n)
	if err != nil {
		return Posting{}, err
	}
	total, err := l.Balances.Total(ctx, e.Book)
	if err != nil {
		return Posting{}, err
	}
	return Posting{Entry: e, Balance: total.Decimal}, nil
}

// EditEntry applies a partial update to an entry.
func (l *Ledger) EditEntry(ctx context.Context, id int64, patch EntryPatch) (Entry, error) {
	return l.Entries.Edit(ctx, id, patch)
}

// DeleteEntry removes an entry; false means the id did not exist.
func (l *Ledger) DeleteEntry(ctx context.Context, id int64) (bool, error) {
	return l.Entries.Delete(ctx, id)
}

// ClearBook removes a book and all of its entries.
func (l *Ledger) ClearBook(ctx context.Context, name string) (int64, error) {
	return l.Entries.Clear(ctx, name)
}

// ListEntries returns the ordered entries of a book.
func (l *Ledger) ListEntries(ctx context.Context, name string) ([]Entry, error) {
	return l.Entries.List(ctx, name)
}

// TotalBalance returns the book total, invalid when the book has no entries.
func (l *Ledger) TotalBalance(ctx context.Context, name string) (decimal.NullDecimal, error) {
	return l.Balances.Total(ctx, name)
}

// RunningBalance returns the prefix sums aligned with ListEntries.
func (l *Ledger) RunningBalance(ctx context.Context, name string) ([]decimal.Decimal, error) {
	return l.Balances.Running(ctx, name)
}

// Statement returns the entries of a book with running balances attached.
func (l *Ledger) Statement(ctx context.Context, name string) ([]Line, error) {
	return l.Balances.Statement(ctx, name)
}

// AccrueInterest records periodic interest and returns its amount.
func (l *Ledger) AccrueInterest(ctx context.Context, name string, on Date, periodsPerYear int) (decimal.Decimal, error) {
	return l.Interest.Accrue(ctx, name, on, periodsPerYear)
}
