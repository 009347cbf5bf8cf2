package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jamesus88/turb-tax/internal/ledger"
)

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// GetBook retrieves a book by name.
// Returns sql.ErrNoRows if not found.
func (s *Store) GetBook(ctx context.Context, name string) (ledger.Book, error) {
	row := s.db.QueryRowContext(ctx, s.dialect.rebind(`
		SELECT name, description, apr
		FROM books
		WHERE name = ?
	`), name)

	return scanBook(row)
}

// GetEntry retrieves a single entry by id.
// Returns sql.ErrNoRows if not found.
func (s *Store) GetEntry(ctx context.Context, id int64) (ledger.Entry, error) {
	row := s.db.QueryRowContext(ctx, s.dialect.rebind(`
		SELECT id, book, date, description, amount
		FROM entries
		WHERE id = ?
	`), id)

	return scanEntry(row)
}

// ListEntries returns all entries of a book in deterministic order:
// ORDER BY date ASC, id ASC.
//
// Returns an empty slice (not nil) if the book has no entries.
func (s *Store) ListEntries(ctx context.Context, book string) ([]ledger.Entry, error) {
	rows, err := s.db.QueryContext(ctx, s.dialect.rebind(`
		SELECT id, book, date, description, amount
		FROM entries
		WHERE book = ?
		ORDER BY date ASC, id ASC
	`), book)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	entries := []ledger.Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}

	return entries, nil
}

func scanBook(row scanner) (ledger.Book, error) {
	var (
		b    ledger.Book
		desc sql.NullString
	)
	if err := row.Scan(&b.Name, &desc, &b.APR); err != nil {
		if err == sql.ErrNoRows {
			return ledger.Book{}, err
		}
		return ledger.Book{}, fmt.Errorf("scan book: %w", err)
	}
	b.Description = nullStringPtr(desc)
	return b, nil
}

func scanEntry(row scanner) (ledger.Entry, error) {
	var (
		e    ledger.Entry
		desc sql.NullString
	)
	if err := row.Scan(&e.ID, &e.Book, &e.Date, &desc, &e.Amount); err != nil {
		if err == sql.ErrNoRows {
			return ledger.Entry{}, err
		}
		return ledger.Entry{}, fmt.Errorf("scan entry: %w", err)
	}
	e.Description = nullStringPtr(desc)
	return e, nil
}

func nullStringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
