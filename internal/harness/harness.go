package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/jamesus88/turb-tax/internal/ledger"
	"github.com/jamesus88/turb-tax/internal/store"
	"github.com/jamesus88/turb-tax/internal/testutil"
)

// DefaultPeriods is the compounding count used by accrue steps that set none.
const DefaultPeriods = 12

// Harness runs scenarios against a real store with a settable calendar.
type Harness struct {
	store    *store.Store
	ledger   *ledger.Ledger
	calendar *testutil.Calendar
	logger   *slog.Logger
	seq      int64
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation, and the
// calendar starts at the scenario's today so default dates are reproducible.
//
// Execution flow:
// 1. Create fresh in-memory database
// 2. Execute steps, checking each step's expect clause
// 3. Evaluate assertions against the final state
// 4. Return result with pass/fail, trace, and errors
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario)
}

// RunContext is Run with a caller-supplied context.
func RunContext(ctx context.Context, scenario *Scenario) (*Result, error) {
	today := scenario.Today
	if today == "" {
		today = DefaultToday
	}
	start, err := ledger.ParseDate(today)
	if err != nil {
		return nil, fmt.Errorf("scenario today: %w", err)
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	calendar := testutil.NewCalendar(start)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // Suppress logs in tests
	h := &Harness{
		store:    st,
		ledger:   ledger.New(st, ledger.WithClock(calendar), ledger.WithLogger(logger)),
		calendar: calendar,
		logger:   logger,
	}

	result := NewResult()
	for i, step := range scenario.Steps {
		h.executeStep(ctx, i, step, result)
	}

	actx := &AssertionContext{Ledger: h.ledger, Ctx: ctx}
	for _, msg := range EvaluateAssertions(scenario.Assertions, actx) {
		result.AddError(msg)
	}
	return result, nil
}

// executeStep runs one step, records it in the trace and checks its
// expect clause. Ledger errors are outcomes, not harness failures.
func (h *Harness) executeStep(ctx context.Context, index int, step Step, result *Result) {
	h.seq++
	ev := TraceEvent{
		Seq:  h.seq,
		Op:   step.Op,
		Book: step.Book,
		Args: stepArgs(step),
	}

	values, err := h.apply(ctx, step)
	ev.Outcome = outcomeOf(err)
	if err != nil {
		ev.Result = map[string]string{"error": err.Error()}
	} else if len(values) > 0 {
		ev.Result = values
	}
	result.AddTrace(ev)

	for _, msg := range checkExpect(index, step, ev) {
		result.AddError(msg)
	}
}

// apply performs the step's operation and returns its observable values.
func (h *Harness) apply(ctx context.Context, step Step) (map[string]string, error) {
	l := h.ledger

	switch step.Op {
	case OpEnsure:
		b, err := l.EnsureBook(ctx, step.Book)
		if err != nil {
			return nil, err
		}
		return bookValues(b), nil

	case OpInfo:
		b, err := l.BookInfo(ctx, step.Book)
		if err != nil {
			return nil, err
		}
		return bookValues(b), nil

	case OpSetDescription:
		b, err := l.SetDescription(ctx, step.Book, step.Description)
		if err != nil {
			return nil, err
		}
		return bookValues(b), nil

	case OpSetAPR:
		var apr decimal.NullDecimal
		if step.APR != nil {
			r, err := ledger.ParseRate(*step.APR)
			if err != nil {
				return nil, err
			}
			apr = decimal.NewNullDecimal(r)
		}
		b, err := l.SetAPR(ctx, step.Book, apr)
		if err != nil {
			return nil, err
		}
		return bookValues(b), nil

	case OpAdd:
		amount, err := ledger.ParseAmount(step.Amount)
		if err != nil {
			return nil, err
		}
		date, err := optionalDate(step.Date)
		if err != nil {
			return nil, err
		}
		p, err := l.AddEntry(ctx, ledger.NewEntry{
			Book:        step.Book,
			Amount:      amount,
			Date:        date,
			Description: step.Description,
		})
		if err != nil {
			return nil, err
		}
		values := entryValues(p.Entry)
		values["balance"] = p.Balance.String()
		return values, nil

	case OpEdit:
		patch, err := entryPatch(step)
		if err != nil {
			return nil, err
		}
		e, err := l.EditEntry(ctx, step.Entry, patch)
		if err != nil {
			return nil, err
		}
		return entryValues(e), nil

	case OpDelete:
		removed, err := l.DeleteEntry(ctx, step.Entry)
		if err != nil {
			return nil, err
		}
		return map[string]string{"removed": strconv.FormatBool(removed)}, nil

	case OpClear:
		n, err := l.ClearBook(ctx, step.Book)
		if err != nil {
			return nil, err
		}
		return map[string]string{"removed": strconv.FormatInt(n, 10)}, nil

	case OpAccrue:
		date, err := optionalDate(step.Date)
		if err != nil {
			return nil, err
		}
		periods := DefaultPeriods
		if step.Periods != nil {
			periods = *step.Periods
		}
		interest, err := l.AccrueInterest(ctx, step.Book, date, periods)
		if err != nil {
			return nil, err
		}
		total, err := l.TotalBalance(ctx, step.Book)
		if err != nil {
			return nil, err
		}
		return map[string]string{
			"interest": interest.String(),
			"balance":  total.Decimal.String(),
		}, nil

	case OpAdvance:
		return map[string]string{"today": h.calendar.Advance(step.Days).String()}, nil
	}

	return nil, fmt.Errorf("unknown op %q", step.Op)
}

func optionalDate(s string) (ledger.Date, error) {
	if s == "" {
		return ledger.Date{}, nil
	}
	return ledger.ParseDate(s)
}

func entryPatch(step Step) (ledger.EntryPatch, error) {
	var patch ledger.EntryPatch
	if step.Date != "" {
		d, err := ledger.ParseDate(step.Date)
		if err != nil {
			return patch, err
		}
		patch.Date = ledger.Set(d)
	}
	if step.Amount != "" {
		a, err := ledger.ParseAmount(step.Amount)
		if err != nil {
			return patch, err
		}
		patch.Amount = ledger.Set(a)
	}
	switch {
	case step.ClearDescription:
		patch.Description = ledger.Null[string]()
	case step.Description != nil:
		patch.Description = ledger.Set(*step.Description)
	}
	return patch, nil
}

// outcomeOf maps a ledger error to its trace outcome.
func outcomeOf(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case ledger.IsNotFound(err):
		return OutcomeNotFound
	case ledger.IsPrecondition(err):
		return OutcomePrecondition
	case ledger.IsValidation(err):
		return OutcomeValidation
	default:
		return OutcomeFailed
	}
}

// checkExpect compares a step's trace event with its expect clause.
// A step without an expect clause must still succeed.
func checkExpect(index int, step Step, ev TraceEvent) []string {
	var errs []string
	label := fmt.Sprintf("step %d (%s)", index, step.Op)

	want := OutcomeOK
	if step.Expect != nil && step.Expect.Error != "" {
		want = step.Expect.Error
	}
	if ev.Outcome != want {
		detail := ""
		if msg, ok := ev.Result["error"]; ok {
			detail = ": " + msg
		}
		errs = append(errs, fmt.Sprintf("%s: expected outcome %s, got %s%s", label, want, ev.Outcome, detail))
		return errs
	}

	if step.Expect == nil {
		return errs
	}
	for _, key := range sortedKeys(step.Expect.Result) {
		expected := step.Expect.Result[key]
		actual, ok := ev.Result[key]
		if !ok {
			errs = append(errs, fmt.Sprintf("%s: result has no %q", label, key))
			continue
		}
		if !valuesEqual(expected, actual) {
			errs = append(errs, fmt.Sprintf("%s: expected %s = %q, got %q", label, key, expected, actual))
		}
	}
	return errs
}

// valuesEqual compares two result values. Values that both parse as
// decimals compare numerically, so "10" matches "10.00".
func valuesEqual(expected, actual string) bool {
	if expected == actual {
		return true
	}
	e, err1 := decimal.NewFromString(expected)
	a, err2 := decimal.NewFromString(actual)
	if err1 != nil || err2 != nil {
		return false
	}
	return e.Equal(a)
}

func stepArgs(step Step) map[string]string {
	args := map[string]string{}
	if step.Entry != 0 {
		args["entry"] = strconv.FormatInt(step.Entry, 10)
	}
	if step.Amount != "" {
		args["amount"] = step.Amount
	}
	if step.Date != "" {
		args["date"] = step.Date
	}
	if step.Description != nil {
		args["description"] = *step.Description
	}
	if step.ClearDescription {
		args["description"] = NullValue
	}
	if step.APR != nil {
		args["apr"] = *step.APR
	}
	if step.Periods != nil {
		args["periods"] = strconv.Itoa(*step.Periods)
	}
	if step.Days != 0 {
		args["days"] = strconv.Itoa(step.Days)
	}
	if len(args) == 0 {
		return nil
	}
	return args
}

func bookValues(b ledger.Book) map[string]string {
	v := map[string]string{
		"name":        b.Name,
		"description": nullString(b.Description),
		"apr":         NullValue,
	}
	if b.APR.Valid {
		v["apr"] = b.APR.Decimal.String()
	}
	return v
}

func entryValues(e ledger.Entry) map[string]string {
	return map[string]string{
		"id":          strconv.FormatInt(e.ID, 10),
		"book":        e.Book,
		"date":        e.Date.String(),
		"description": nullString(e.Description),
		"amount":      e.Amount.String(),
	}
}

// NullValue stands for an absent description or APR in results and
// assertion expectations.
const NullValue = "<null>"

func nullString(s *string) string {
	if s == nil {
		return NullValue
	}
	return *s
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
