package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
)

// Entries is the only writer of entry rows.
type Entries struct {
	storage  Storage
	registry *Registry
	clock    Clock
	logger   *slog.Logger
}

// NewEntries creates the entry ledger. Books are ensured through registry
// before any insert so that every entry references an existing book.
func NewEntries(storage Storage, registry *Registry, clock Clock, logger *slog.Logger) *Entries {
	if clock == nil {
		clock = SystemClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Entries{storage: storage, registry: registry, clock: clock, logger: logger}
}

// Add inserts a new entry with a fresh id and commits it.
// A zero date means today, read from the clock at call time.
func (l *Entries) Add(ctx context.Context, n NewEntry) (Entry, error) {
	book, err := l.registry.Ensure(ctx, n.Book)
	if err != nil {
		return Entry{}, err
	}

	date := n.Date
	if date.IsZero() {
		date = l.clock.Today()
	}

	e, err := l.storage.InsertEntry(ctx, Entry{
		Book:        book.Name,
		Date:        date,
		Description: n.Description,
		Amount:      n.Amount,
	})
	if err != nil {
		return Entry{}, fmt.Errorf("add entry to %q: %w", book.Name, err)
	}

	l.logger.Info("entry added",
		"book", e.Book,
		"id", e.ID,
		"date", e.Date.String(),
		"amount", e.Amount.String(),
	)
	return e, nil
}

// Get returns a single entry by id.
func (l *Entries) Get(ctx context.Context, id int64) (Entry, error) {
	e, err := l.storage.GetEntry(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, entryNotFound(id)
	}
	if err != nil {
		return Entry{}, fmt.Errorf("read entry %d: %w", id, err)
	}
	return e, nil
}

// Edit applies a partial update to an entry, keeping its id.
func (l *Entries) Edit(ctx context.Context, id int64, patch EntryPatch) (Entry, error) {
	current, err := l.Get(ctx, id)
	if err != nil {
		return Entry{}, err
	}

	updated, err := patch.apply(current)
	if err != nil {
		return Entry{}, err
	}
	if patch.IsEmpty() {
		return current, nil
	}

	ok, err := l.storage.UpdateEntry(ctx, updated)
	if err != nil {
		return Entry{}, fmt.Errorf("edit entry %d: %w", id, err)
	}
	if !ok {
		return Entry{}, entryNotFound(id)
	}

	l.logger.Info("entry edited",
		"book", updated.Book,
		"id", id,
		"date", updated.Date.String(),
		"amount", updated.Amount.String(),
	)
	return updated, nil
}

// Delete removes an entry. It returns false, and no error, when no entry
// had that id.
func (l *Entries) Delete(ctx context.Context, id int64) (bool, error) {
	removed, err := l.storage.DeleteEntry(ctx, id)
	if err != nil {
		return false, fmt.Errorf("delete entry %d: %w", id, err)
	}
	if removed {
		l.logger.Info("entry deleted", "id", id)
	} else {
		l.logger.Info("entry not found for delete", "id", id)
	}
	return removed, nil
}

// Clear deletes every entry of the book and the book itself, and resets
// the entry id sequence. It is irreversible; callers confirm beforehand.
func (l *Entries) Clear(ctx context.Context, book string) (int64, error) {
	name, err := NormalizeBookName(book)
	if err != nil {
		return 0, err
	}

	n, err := l.storage.ClearBook(ctx, name)
	if err != nil {
		return 0, fmt.Errorf("clear book %q: %w", name, err)
	}
	l.logger.Warn("book cleared", "book", name, "entries", n)
	return n, nil
}

// List returns the entries of a book ordered by date, then insertion order.
// An unknown book has no entries.
func (l *Entries) List(ctx context.Context, book string) ([]Entry, error) {
	name, err := NormalizeBookName(book)
	if err != nil {
		return nil, err
	}

	entries, err := l.storage.ListEntries(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("list entries of %q: %w", name, err)
	}
	l.logger.Debug("entries listed", "book", name, "count", len(entries))
	return entries, nil
}
