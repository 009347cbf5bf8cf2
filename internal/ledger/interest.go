package ledger

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"
)

// Accruer records periodic interest on a book.
type Accruer struct {
	registry *Registry
	entries  *Entries
	balances *Balances
	logger   *slog.Logger
}

// NewAccruer creates an interest calculator.
func NewAccruer(registry *Registry, entries *Entries, balances *Balances, logger *slog.Logger) *Accruer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Accruer{registry: registry, entries: entries, balances: balances, logger: logger}
}

// Accrue computes balance * apr / periodsPerYear and records it as an
// "interest earned" entry on the given date (today when zero).
//
// The book must hold at least one entry and have an APR configured,
// otherwise a *PreconditionError is returned and nothing is written.
func (a *Accruer) Accrue(ctx context.Context, book string, on Date, periodsPerYear int) (decimal.Decimal, error) {
	if periodsPerYear <= 0 {
		return decimal.Decimal{}, &ValidationError{
			Field:  "compounding",
			Value:  fmt.Sprintf("%d", periodsPerYear),
			Reason: "must be a positive number of periods per year",
		}
	}
	name, err := NormalizeBookName(book)
	if err != nil {
		return decimal.Decimal{}, err
	}

	total, err := a.balances.Total(ctx, name)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if !total.Valid {
		return decimal.Decimal{}, &PreconditionError{Book: name, Reason: "no entries to accrue interest on"}
	}

	info, err := a.registry.Info(ctx, name)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if !info.APR.Valid {
		return decimal.Decimal{}, &PreconditionError{Book: name, Reason: "no APR configured"}
	}

	interest := total.Decimal.Mul(info.APR.Decimal).Div(decimal.NewFromInt(int64(periodsPerYear)))

	e, err := a.entries.Add(ctx, NewEntry{
		Book:        name,
		Amount:      interest,
		Date:        on,
		Description: stringPtr(InterestDescription),
	})
	if err != nil {
		return decimal.Decimal{}, err
	}

	a.logger.Info("interest accrued",
		"book", name,
		"id", e.ID,
		"balance", total.Decimal.String(),
		"apr", info.APR.Decimal.String(),
		"periods", periodsPerYear,
		"interest", interest.String(),
	)
	return interest, nil
}
