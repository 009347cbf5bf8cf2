package harness

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jamesus88/turb-tax/internal/ledger"
)

// AssertionContext provides what assertions need to read final state.
type AssertionContext struct {
	Ledger *ledger.Ledger
	Ctx    context.Context
}

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Book     string
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s on %q\n", e.Type, e.Book)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)
	return buf.String()
}

// EvaluateAssertions runs every assertion and returns one message per
// failure. An empty slice means all assertions held.
func EvaluateAssertions(assertions []Assertion, actx *AssertionContext) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluateAssertion(actx, a); err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}

func evaluateAssertion(actx *AssertionContext, a Assertion) error {
	switch a.Type {
	case AssertTotalBalance:
		return assertTotalBalance(actx, a)
	case AssertRunningBalance:
		return assertRunningBalance(actx, a)
	case AssertEntryCount:
		return assertEntryCount(actx, a)
	case AssertEntry:
		return assertEntry(actx, a)
	case AssertBook:
		return assertBook(actx, a)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

// assertTotalBalance checks the book total. NoBalance expects a book
// without entries, which is different from a zero total.
func assertTotalBalance(actx *AssertionContext, a Assertion) error {
	total, err := actx.Ledger.TotalBalance(actx.Ctx, a.Book)
	if err != nil {
		return fmt.Errorf("total balance: %w", err)
	}

	actual := NoBalance
	if total.Valid {
		actual = total.Decimal.String()
	}
	if a.Balance == NoBalance || actual == NoBalance {
		if a.Balance != actual {
			return &AssertionError{Type: a.Type, Book: a.Book, Expected: a.Balance, Actual: actual}
		}
		return nil
	}
	if !valuesEqual(a.Balance, actual) {
		return &AssertionError{Type: a.Type, Book: a.Book, Expected: a.Balance, Actual: actual}
	}
	return nil
}

// assertRunningBalance checks the full sequence of running balances.
func assertRunningBalance(actx *AssertionContext, a Assertion) error {
	running, err := actx.Ledger.RunningBalance(actx.Ctx, a.Book)
	if err != nil {
		return fmt.Errorf("running balance: %w", err)
	}

	actual := make([]string, len(running))
	for i, r := range running {
		actual[i] = r.String()
	}

	mismatch := len(actual) != len(a.Balances)
	for i := 0; !mismatch && i < len(actual); i++ {
		mismatch = !valuesEqual(a.Balances[i], actual[i])
	}
	if mismatch {
		return &AssertionError{
			Type:     a.Type,
			Book:     a.Book,
			Expected: "[" + strings.Join(a.Balances, " ") + "]",
			Actual:   "[" + strings.Join(actual, " ") + "]",
		}
	}
	return nil
}

// assertEntryCount checks the number of entries in the book.
func assertEntryCount(actx *AssertionContext, a Assertion) error {
	entries, err := actx.Ledger.ListEntries(actx.Ctx, a.Book)
	if err != nil {
		return fmt.Errorf("list entries: %w", err)
	}
	if len(entries) != a.Count {
		return &AssertionError{
			Type:     a.Type,
			Book:     a.Book,
			Expected: fmt.Sprintf("%d entries", a.Count),
			Actual:   fmt.Sprintf("%d entries", len(entries)),
		}
	}
	return nil
}

// assertEntry checks fields of one entry of the book (subset semantics).
func assertEntry(actx *AssertionContext, a Assertion) error {
	entries, err := actx.Ledger.ListEntries(actx.Ctx, a.Book)
	if err != nil {
		return fmt.Errorf("list entries: %w", err)
	}
	for _, e := range entries {
		if e.ID == a.Entry {
			return matchFields(a, entryValues(e))
		}
	}
	return &AssertionError{
		Type:     a.Type,
		Book:     a.Book,
		Expected: "entry " + strconv.FormatInt(a.Entry, 10),
		Actual:   "entry not in book",
	}
}

// assertBook checks book metadata (subset semantics). The book must exist.
func assertBook(actx *AssertionContext, a Assertion) error {
	b, err := actx.Ledger.BookInfo(actx.Ctx, a.Book)
	if err != nil {
		if ledger.IsNotFound(err) {
			return &AssertionError{Type: a.Type, Book: a.Book, Expected: "book to exist", Actual: "book not found"}
		}
		return err
	}
	return matchFields(a, bookValues(b))
}

func matchFields(a Assertion, actual map[string]string) error {
	for _, key := range sortedKeys(a.Expect) {
		expected := a.Expect[key]
		got, ok := actual[key]
		if !ok {
			return &AssertionError{
				Type:     a.Type,
				Book:     a.Book,
				Expected: fmt.Sprintf("field %q to exist", key),
				Actual:   fmt.Sprintf("fields %v", sortedKeys(actual)),
			}
		}
		if !valuesEqual(expected, got) {
			return &AssertionError{
				Type:     a.Type,
				Book:     a.Book,
				Expected: fmt.Sprintf("%s = %q", key, expected),
				Actual:   fmt.Sprintf("%s = %q", key, got),
			}
		}
	}
	return nil
}
