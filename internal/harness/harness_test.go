package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

func TestRun_MinimalScenario(t *testing.T) {
	scenario := &Scenario{
		Name:        "minimal",
		Description: "Minimal test scenario",
		Steps: []Step{
			{Op: OpEnsure, Book: "rent"},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.True(t, result.Pass)
	assert.Empty(t, result.Errors)

	require.Len(t, result.Trace, 1)
	ev := result.Trace[0]
	assert.Equal(t, int64(1), ev.Seq)
	assert.Equal(t, OpEnsure, ev.Op)
	assert.Equal(t, OutcomeOK, ev.Outcome)
	assert.Equal(t, "rent", ev.Result["name"])
	assert.Equal(t, NullValue, ev.Result["apr"])
	assert.Nil(t, ev.Args)
}

func TestRun_DefaultToday(t *testing.T) {
	result, err := Run(&Scenario{
		Name:        "default_today",
		Description: "Entries without a date use the default calendar date",
		Steps: []Step{
			{Op: OpAdd, Book: "rent", Amount: "5"},
		},
	})
	require.NoError(t, err)
	require.True(t, result.Pass, result.Errors)
	assert.Equal(t, DefaultToday, result.Trace[0].Result["date"])
}

func TestRun_SequenceNumbersIncrease(t *testing.T) {
	result, err := Run(&Scenario{
		Name:        "seq",
		Description: "Seq follows step order",
		Steps: []Step{
			{Op: OpEnsure, Book: "a"},
			{Op: OpEnsure, Book: "b"},
			{Op: OpAdvance, Days: 1},
		},
	})
	require.NoError(t, err)
	require.Len(t, result.Trace, 3)
	for i, ev := range result.Trace {
		assert.Equal(t, int64(i+1), ev.Seq)
	}
}

func TestRun_UnexpectedErrorFails(t *testing.T) {
	result, err := Run(&Scenario{
		Name:        "unexpected",
		Description: "Info on an unknown book without expect",
		Steps: []Step{
			{Op: OpInfo, Book: "ghost"},
		},
	})
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "expected outcome ok, got not_found")
	assert.Contains(t, result.Errors[0], `book "ghost" not found`)
	assert.Equal(t, OutcomeNotFound, result.Trace[0].Outcome)
}

func TestRun_ExpectedErrorPasses(t *testing.T) {
	result, err := Run(&Scenario{
		Name:        "expected",
		Description: "Errors named in expect are outcomes",
		Steps: []Step{
			{Op: OpInfo, Book: "ghost", Expect: &Expect{Error: OutcomeNotFound}},
			{Op: OpAdd, Book: "rent", Amount: "lots", Expect: &Expect{Error: OutcomeValidation}},
			{Op: OpSetAPR, Book: "ghost", APR: strPtr("0.1"), Expect: &Expect{Error: OutcomeNotFound}},
			{Op: OpSetAPR, Book: "ghost", APR: strPtr("-0.1"), Expect: &Expect{Error: OutcomeValidation}},
			{Op: OpAccrue, Book: "ghost", Expect: &Expect{Error: OutcomePrecondition}},
		},
	})
	require.NoError(t, err)
	assert.True(t, result.Pass, result.Errors)
}

func TestRun_ExpectedErrorMissing(t *testing.T) {
	result, err := Run(&Scenario{
		Name:        "missing_error",
		Description: "A step that should fail but succeeds",
		Steps: []Step{
			{Op: OpEnsure, Book: "rent", Expect: &Expect{Error: OutcomeNotFound}},
		},
	})
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Contains(t, result.Errors[0], "expected outcome not_found, got ok")
}

func TestRun_ExpectResultMismatch(t *testing.T) {
	result, err := Run(&Scenario{
		Name:        "mismatch",
		Description: "Result values are checked",
		Steps: []Step{
			{
				Op:     OpAdd,
				Book:   "rent",
				Amount: "-1200",
				Date:   "2024-01-01",
				Expect: &Expect{Result: map[string]string{"balance": "-1000", "nope": "x"}},
			},
		},
	})
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], `expected balance = "-1000", got "-1200"`)
	assert.Contains(t, result.Errors[1], `result has no "nope"`)
}

func TestRun_ExpectComparesDecimalsByValue(t *testing.T) {
	result, err := Run(&Scenario{
		Name:        "decimals",
		Description: "10.00 matches 10",
		Steps: []Step{
			{Op: OpAdd, Book: "b", Amount: "10", Expect: &Expect{Result: map[string]string{"amount": "10.00"}}},
		},
	})
	require.NoError(t, err)
	assert.True(t, result.Pass, result.Errors)
}

func TestRun_Interest(t *testing.T) {
	result, err := Run(&Scenario{
		Name:        "quarterly",
		Description: "Quarterly compounding",
		Today:       "2024-06-15",
		Steps: []Step{
			{Op: OpAdd, Book: "savings", Amount: "100", Date: "2024-01-01"},
			{Op: OpSetAPR, Book: "savings", APR: strPtr("0.12")},
			{
				Op:      OpAccrue,
				Book:    "savings",
				Periods: intPtr(4),
				Expect:  &Expect{Result: map[string]string{"interest": "3", "balance": "103"}},
			},
		},
		Assertions: []Assertion{
			{Type: AssertEntry, Book: "savings", Entry: 2, Expect: map[string]string{
				"date":        "2024-06-15",
				"description": "interest earned",
			}},
		},
	})
	require.NoError(t, err)
	assert.True(t, result.Pass, result.Errors)
}

func TestRun_EditKeepsUntouchedFields(t *testing.T) {
	result, err := Run(&Scenario{
		Name:        "edit",
		Description: "Partial edit",
		Steps: []Step{
			{Op: OpAdd, Book: "b", Amount: "-5", Date: "2024-02-02", Description: strPtr("coffee")},
			{Op: OpEdit, Entry: 1, Amount: "-6"},
		},
		Assertions: []Assertion{
			{Type: AssertEntry, Book: "b", Entry: 1, Expect: map[string]string{
				"amount":      "-6",
				"date":        "2024-02-02",
				"description": "coffee",
			}},
		},
	})
	require.NoError(t, err)
	assert.True(t, result.Pass, result.Errors)
}

func TestRun_SetDescriptionNilClears(t *testing.T) {
	result, err := Run(&Scenario{
		Name:        "desc",
		Description: "Description set then cleared",
		Steps: []Step{
			{Op: OpEnsure, Book: "b"},
			{Op: OpSetDescription, Book: "b", Description: strPtr("household")},
			{Op: OpSetDescription, Book: "b"},
		},
		Assertions: []Assertion{
			{Type: AssertBook, Book: "b", Expect: map[string]string{"description": NullValue}},
		},
	})
	require.NoError(t, err)
	assert.True(t, result.Pass, result.Errors)
	assert.Equal(t, "household", result.Trace[1].Result["description"])
}

func TestRun_ClearedBookAssertionFails(t *testing.T) {
	result, err := Run(&Scenario{
		Name:        "cleared",
		Description: "Book assertions need the book",
		Steps: []Step{
			{Op: OpAdd, Book: "b", Amount: "1"},
			{Op: OpClear, Book: "b"},
		},
		Assertions: []Assertion{
			{Type: AssertBook, Book: "b", Expect: map[string]string{"name": "b"}},
			{Type: AssertTotalBalance, Book: "b", Balance: NoBalance},
		},
	})
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "book not found")
}

func TestRun_BadToday(t *testing.T) {
	_, err := Run(&Scenario{
		Name:        "bad",
		Description: "Bad date",
		Today:       "June",
		Steps:       []Step{{Op: OpEnsure, Book: "b"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scenario today")
}
