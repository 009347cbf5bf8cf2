package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"
)

// Registry owns book metadata rows.
type Registry struct {
	storage Storage
	logger  *slog.Logger
}

// NewRegistry creates a Registry over storage.
func NewRegistry(storage Storage, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{storage: storage, logger: logger}
}

// Ensure creates the book if it does not exist and returns it.
// Calling it any number of times leaves exactly one row for the name.
func (r *Registry) Ensure(ctx context.Context, name string) (Book, error) {
	name, err := NormalizeBookName(name)
	if err != nil {
		return Book{}, err
	}

	book, err := r.storage.EnsureBook(ctx, name)
	if err != nil {
		return Book{}, fmt.Errorf("ensure book %q: %w", name, err)
	}
	r.logger.Debug("book ensured", "book", name)
	return book, nil
}

// Info returns the stored book. Unknown names yield a *NotFoundError.
func (r *Registry) Info(ctx context.Context, name string) (Book, error) {
	name, err := NormalizeBookName(name)
	if err != nil {
		return Book{}, err
	}

	book, err := r.storage.GetBook(ctx, name)
	if errors.Is(err, sql.ErrNoRows) {
		return Book{}, bookNotFound(name)
	}
	if err != nil {
		return Book{}, fmt.Errorf("read book %q: %w", name, err)
	}
	return book, nil
}

// SetDescription replaces the book description. A nil description clears it.
func (r *Registry) SetDescription(ctx context.Context, name string, description *string) (Book, error) {
	name, err := NormalizeBookName(name)
	if err != nil {
		return Book{}, err
	}

	ok, err := r.storage.UpdateBookDescription(ctx, name, description)
	if err != nil {
		return Book{}, fmt.Errorf("update description of %q: %w", name, err)
	}
	if !ok {
		return Book{}, bookNotFound(name)
	}
	r.logger.Info("book description updated", "book", name)
	return r.Info(ctx, name)
}

// SetAPR replaces the annual rate of the book. An invalid NullDecimal clears it.
func (r *Registry) SetAPR(ctx context.Context, name string, apr decimal.NullDecimal) (Book, error) {
	name, err := NormalizeBookName(name)
	if err != nil {
		return Book{}, err
	}
	if apr.Valid && apr.Decimal.IsNegative() {
		return Book{}, &ValidationError{Field: "apr", Value: apr.Decimal.String(), Reason: "must not be negative"}
	}

	ok, err := r.storage.UpdateBookAPR(ctx, name, apr)
	if err != nil {
		return Book{}, fmt.Errorf("update apr of %q: %w", name, err)
	}
	if !ok {
		return Book{}, bookNotFound(name)
	}
	r.logger.Info("book apr updated", "book", name, "apr", apr.Decimal.String(), "set", apr.Valid)
	return r.Info(ctx, name)
}
