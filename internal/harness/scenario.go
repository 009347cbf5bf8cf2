package harness

import (
	"bytes"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/jamesus88/turb-tax/internal/ledger"
)

// Scenario is a scripted run against a fresh ledger: a sequence of
// operations, each with optional expectations, followed by assertions on
// the final state of the books.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Today is the calendar date (YYYY-MM-DD) used for default entry dates.
	// If empty, DefaultToday is used.
	Today string `yaml:"today,omitempty"`

	// Steps run in order against one ledger.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final state.
	// Supported types: total_balance, running_balance, entry_count, entry, book
	Assertions []Assertion `yaml:"assertions"`
}

// DefaultToday is the calendar date when a scenario sets none.
const DefaultToday = "2024-01-01"

// Step is one ledger operation.
type Step struct {
	// Op selects the operation (see the Op* constants).
	Op string `yaml:"op"`

	// Book is the target book name for book-scoped operations.
	Book string `yaml:"book,omitempty"`

	// Entry is the target entry id for edit and delete.
	Entry int64 `yaml:"entry,omitempty"`

	// Amount is a signed decimal string.
	Amount string `yaml:"amount,omitempty"`

	// Date is YYYY-MM-DD. Empty means the calendar's today.
	Date string `yaml:"date,omitempty"`

	// Description sets a description. For set_description a missing value
	// clears it.
	Description *string `yaml:"description,omitempty"`

	// ClearDescription removes the entry description on edit.
	ClearDescription bool `yaml:"clear_description,omitempty"`

	// APR is a decimal fraction for set_apr. A missing value clears it.
	APR *string `yaml:"apr,omitempty"`

	// Periods is the compounding count for accrue. Missing means 12.
	Periods *int `yaml:"periods,omitempty"`

	// Days moves the calendar for advance.
	Days int `yaml:"days,omitempty"`

	// Expect checks the outcome of this step.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect describes what a step should produce. Empty fields are not checked.
type Expect struct {
	// Error is the expected failure kind: not_found, precondition or
	// validation. Empty means the step must succeed.
	Error string `yaml:"error,omitempty"`

	// Result holds expected values from the step's trace result, compared
	// as strings (decimals by value).
	Result map[string]string `yaml:"result,omitempty"`
}

// Assertion validates the final state of a book.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Book is the book the assertion inspects.
	Book string `yaml:"book"`

	// Balance is the expected total for total_balance. Use "none" for a
	// book without entries.
	Balance string `yaml:"balance,omitempty"`

	// Balances are the expected running balances for running_balance.
	Balances []string `yaml:"balances,omitempty"`

	// Count is the expected number of entries for entry_count.
	Count int `yaml:"count,omitempty"`

	// Entry is the entry id for the entry assertion.
	Entry int64 `yaml:"entry,omitempty"`

	// Expect holds expected fields for entry and book assertions.
	Expect map[string]string `yaml:"expect,omitempty"`
}

// Step operations.
const (
	OpEnsure         = "ensure"
	OpInfo           = "info"
	OpSetDescription = "set_description"
	OpSetAPR         = "set_apr"
	OpAdd            = "add"
	OpEdit           = "edit"
	OpDelete         = "delete"
	OpClear          = "clear"
	OpAccrue         = "accrue"
	OpAdvance        = "advance"
)

// Assertion types.
const (
	AssertTotalBalance   = "total_balance"
	AssertRunningBalance = "running_balance"
	AssertEntryCount     = "entry_count"
	AssertEntry          = "entry"
	AssertBook           = "book"
)

// NoBalance is the total_balance value for a book without entries.
const NoBalance = "none"

var knownOps = []string{
	OpEnsure, OpInfo, OpSetDescription, OpSetAPR, OpAdd,
	OpEdit, OpDelete, OpClear, OpAccrue, OpAdvance,
}

var knownErrors = []string{OutcomeNotFound, OutcomePrecondition, OutcomeValidation}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Today != "" {
		if _, err := ledger.ParseDate(s.Today); err != nil {
			return fmt.Errorf("today: %w", err)
		}
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}
	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(index int, st *Step) error {
	if st.Op == "" {
		return fmt.Errorf("steps[%d]: op is required", index)
	}
	if !slices.Contains(knownOps, st.Op) {
		return fmt.Errorf("steps[%d]: unknown op %q", index, st.Op)
	}

	switch st.Op {
	case OpEdit, OpDelete:
		if st.Entry <= 0 {
			return fmt.Errorf("steps[%d]: entry is required for %s", index, st.Op)
		}
	case OpAdvance:
		if st.Days == 0 {
			return fmt.Errorf("steps[%d]: days is required for advance", index)
		}
	default:
		if st.Book == "" {
			return fmt.Errorf("steps[%d]: book is required for %s", index, st.Op)
		}
	}
	if st.Op == OpAdd && st.Amount == "" {
		return fmt.Errorf("steps[%d]: amount is required for add", index)
	}

	if st.Expect != nil && st.Expect.Error != "" && !slices.Contains(knownErrors, st.Expect.Error) {
		return fmt.Errorf("steps[%d].expect: unknown error kind %q", index, st.Expect.Error)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}
	if a.Book == "" {
		return fmt.Errorf("assertions[%d]: book is required", index)
	}

	switch a.Type {
	case AssertTotalBalance:
		if a.Balance == "" {
			return fmt.Errorf("assertions[%d]: balance is required for total_balance", index)
		}
	case AssertRunningBalance:
	case AssertEntryCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for entry_count", index)
		}
	case AssertEntry:
		if a.Entry <= 0 {
			return fmt.Errorf("assertions[%d]: entry is required for entry", index)
		}
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for entry", index)
		}
	case AssertBook:
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for book", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
