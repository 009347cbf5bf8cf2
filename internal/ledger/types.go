package ledger

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"
)

// InterestDescription is the description recorded on accrued interest entries.
const InterestDescription = "interest earned"

// Book is a named, independent ledger.
type Book struct {
	Name        string              `json:"name"`
	Description *string             `json:"description"`
	APR         decimal.NullDecimal `json:"apr"`
}

// Entry is one dated, signed line item of a book.
type Entry struct {
	ID          int64           `json:"id"`
	Book        string          `json:"book"`
	Date        Date            `json:"date"`
	Description *string         `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

// NewEntry carries the caller-supplied fields of an entry to add.
// A zero Date is replaced by the clock's today at call time.
type NewEntry struct {
	Book        string
	Amount      decimal.Decimal
	Date        Date
	Description *string
}

// EntryPatch is a partial update of an entry. Date and Amount are not
// nullable; Description is.
type EntryPatch struct {
	Date        Field[Date]
	Description Field[string]
	Amount      Field[decimal.Decimal]
}

// IsEmpty reports whether the patch would change nothing.
func (p EntryPatch) IsEmpty() bool {
	return p.Date.IsKeep() && p.Description.IsKeep() && p.Amount.IsKeep()
}

// apply returns e with the patch applied. The id and book are preserved.
func (p EntryPatch) apply(e Entry) (Entry, error) {
	if p.Date.IsNull() {
		return Entry{}, &ValidationError{Field: "date", Reason: "date cannot be cleared"}
	}
	if p.Amount.IsNull() {
		return Entry{}, &ValidationError{Field: "amount", Reason: "amount cannot be cleared"}
	}

	if d, ok := p.Date.Get(); ok {
		if d.IsZero() {
			return Entry{}, &ValidationError{Field: "date", Reason: "date is required"}
		}
		e.Date = d
	}
	if a, ok := p.Amount.Get(); ok {
		e.Amount = a
	}
	if p.Description.IsNull() {
		e.Description = nil
	} else if s, ok := p.Description.Get(); ok {
		e.Description = &s
	}
	return e, nil
}

// Line is an entry with the running balance of its book at that entry.
type Line struct {
	Entry
	Balance decimal.Decimal `json:"balance"`
}

// Posting is the result of adding an entry: the stored entry and the
// book's total balance right after it.
type Posting struct {
	Entry   Entry           `json:"entry"`
	Balance decimal.Decimal `json:"balance"`
}

// NormalizeBookName trims surrounding whitespace and applies Unicode NFC so
// that visually identical names map to the same book.
func NormalizeBookName(name string) (string, error) {
	n := norm.NFC.String(strings.TrimSpace(name))
	if n == "" {
		return "", &ValidationError{Field: "book", Value: name, Reason: "name is required"}
	}
	return n, nil
}

// ParseAmount parses a signed decimal amount.
func ParseAmount(s string) (decimal.Decimal, error) {
	return parseDecimal("amount", s)
}

// ParseRate parses an annual rate given as a decimal fraction (0.12 = 12%).
// Negative rates are rejected.
func ParseRate(s string) (decimal.Decimal, error) {
	r, err := parseDecimal("apr", s)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if r.IsNegative() {
		return decimal.Decimal{}, &ValidationError{Field: "apr", Value: s, Reason: "must not be negative"}
	}
	return r, nil
}

func parseDecimal(field, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Decimal{}, &ValidationError{Field: field, Value: s, Reason: "not a number"}
	}
	return d, nil
}

func stringPtr(s string) *string { return &s }
