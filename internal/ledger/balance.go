package ledger

import (
	"context"

	"github.com/shopspring/decimal"
)

// Balances derives balances from the current entries of a book. It holds
// no state: every call reads the entries again.
type Balances struct {
	entries *Entries
}

// NewBalances creates a balance engine reading through entries.
func NewBalances(entries *Entries) *Balances {
	return &Balances{entries: entries}
}

// Total returns the sum of all amounts of the book. The result is not
// Valid when the book has no entries, which is distinct from a zero sum.
func (b *Balances) Total(ctx context.Context, book string) (decimal.NullDecimal, error) {
	entries, err := b.entries.List(ctx, book)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return TotalBalance(entries), nil
}

// Running returns the running balance aligned with Entries.List.
func (b *Balances) Running(ctx context.Context, book string) ([]decimal.Decimal, error) {
	entries, err := b.entries.List(ctx, book)
	if err != nil {
		return nil, err
	}
	return RunningBalance(entries), nil
}

// Statement returns the entries of the book with their running balance.
func (b *Balances) Statement(ctx context.Context, book string) ([]Line, error) {
	entries, err := b.entries.List(ctx, book)
	if err != nil {
		return nil, err
	}
	return Attach(entries), nil
}

// TotalBalance sums the amounts of entries. It returns an invalid
// NullDecimal for an empty slice.
func TotalBalance(entries []Entry) decimal.NullDecimal {
	if len(entries) == 0 {
		return decimal.NullDecimal{}
	}
	sum := decimal.Zero
	for _, e := range entries {
		sum = sum.Add(e.Amount)
	}
	return decimal.NewNullDecimal(sum)
}

// RunningBalance returns the prefix sums of the amounts, in the order given.
func RunningBalance(entries []Entry) []decimal.Decimal {
	out := make([]decimal.Decimal, len(entries))
	sum := decimal.Zero
	for i, e := range entries {
		sum = sum.Add(e.Amount)
		out[i] = sum
	}
	return out
}

// Attach pairs each entry with its running balance.
func Attach(entries []Entry) []Line {
	running := RunningBalance(entries)
	lines := make([]Line, len(entries))
	for i, e := range entries {
		lines[i] = Line{Entry: e, Balance: running[i]}
	}
	return lines
}
