package store

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jamesus88/turb-tax/internal/ledger"
)

// EnsureBook inserts a book with only its name populated, unless it already
// exists, and returns the stored row.
// Uses ON CONFLICT(name) DO NOTHING for idempotency.
func (s *Store) EnsureBook(ctx context.Context, name string) (ledger.Book, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ledger.Book{}, fmt.Errorf("ensure book: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if _, err := tx.ExecContext(ctx, s.dialect.rebind(`
		INSERT INTO books (name) VALUES (?)
		ON CONFLICT(name) DO NOTHING
	`), name); err != nil {
		return ledger.Book{}, fmt.Errorf("ensure book: insert: %w", err)
	}

	book, err := scanBook(tx.QueryRowContext(ctx, s.dialect.rebind(`
		SELECT name, description, apr FROM books WHERE name = ?
	`), name))
	if err != nil {
		return ledger.Book{}, fmt.Errorf("ensure book: select: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return ledger.Book{}, fmt.Errorf("ensure book: commit: %w", err)
	}
	return book, nil
}

// UpdateBookDescription sets or (with nil) clears the description.
// Returns false if no book has that name.
func (s *Store) UpdateBookDescription(ctx context.Context, name string, description *string) (bool, error) {
	res, err := s.db.ExecContext(ctx, s.dialect.rebind(`
		UPDATE books SET description = ? WHERE name = ?
	`), description, name)
	if err != nil {
		return false, fmt.Errorf("update book description: %w", err)
	}
	return affected(res)
}

// UpdateBookAPR sets or (with an invalid value) clears the APR.
// Returns false if no book has that name.
func (s *Store) UpdateBookAPR(ctx context.Context, name string, apr decimal.NullDecimal) (bool, error) {
	res, err := s.db.ExecContext(ctx, s.dialect.rebind(`
		UPDATE books SET apr = ? WHERE name = ?
	`), apr, name)
	if err != nil {
		return false, fmt.Errorf("update book apr: %w", err)
	}
	return affected(res)
}

// InsertEntry inserts an entry and returns it with the auto-assigned id.
//
// Note: The book referenced by e.Book must exist (foreign key constraint).
func (s *Store) InsertEntry(ctx context.Context, e ledger.Entry) (ledger.Entry, error) {
	err := s.db.QueryRowContext(ctx, s.dialect.rebind(`
		INSERT INTO entries (book, date, description, amount)
		VALUES (?, ?, ?, ?)
		RETURNING id
	`), e.Book, e.Date, e.Description, e.Amount).Scan(&e.ID)
	if err != nil {
		return ledger.Entry{}, fmt.Errorf("insert entry: %w", err)
	}
	return e, nil
}

// UpdateEntry overwrites date, description and amount of an existing entry.
// Returns false if no entry has that id.
func (s *Store) UpdateEntry(ctx context.Context, e ledger.Entry) (bool, error) {
	res, err := s.db.ExecContext(ctx, s.dialect.rebind(`
		UPDATE entries SET date = ?, description = ?, amount = ?
		WHERE id = ?
	`), e.Date, e.Description, e.Amount, e.ID)
	if err != nil {
		return false, fmt.Errorf("update entry: %w", err)
	}
	return affected(res)
}

// DeleteEntry removes an entry. Returns false if no entry has that id.
func (s *Store) DeleteEntry(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, s.dialect.rebind(`
		DELETE FROM entries WHERE id = ?
	`), id)
	if err != nil {
		return false, fmt.Errorf("delete entry: %w", err)
	}
	return affected(res)
}

// ClearBook deletes all entries of a book, the book row, and resets the
// entry id sequence in one transaction.
func (s *Store) ClearBook(ctx context.Context, book string) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("clear book: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	res, err := tx.ExecContext(ctx, s.dialect.rebind(`DELETE FROM entries WHERE book = ?`), book)
	if err != nil {
		return 0, fmt.Errorf("clear book: delete entries: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("clear book: rows affected: %w", err)
	}

	if _, err := tx.ExecContext(ctx, s.dialect.rebind(`DELETE FROM books WHERE name = ?`), book); err != nil {
		return 0, fmt.Errorf("clear book: delete book: %w", err)
	}

	if err := s.dialect.resetEntrySequence(ctx, tx); err != nil {
		return 0, fmt.Errorf("clear book: reset sequence: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("clear book: commit: %w", err)
	}
	return removed, nil
}

func affected(res interface{ RowsAffected() (int64, error) }) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}
