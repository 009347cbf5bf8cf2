package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jamesus88/turb-tax/internal/harness"
)

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	*RootOptions
	Filter string // scenario filter (glob pattern on the file name)
}

// ScenarioResult holds the result of a single scenario execution.
type ScenarioResult struct {
	Name   string   `json:"name"`
	Pass   bool     `json:"pass"`
	Errors []string `json:"errors,omitempty"`
}

// CheckResult holds the overall check result.
type CheckResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "check <scenarios-dir>",
		Short: "Run ledger scenario files",
		Long: `Run YAML ledger scenarios against a scratch in-memory database.

Each scenario adds, edits and accrues against fresh books and then asserts
balances and entries. Your own database is never touched.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, etc.)

Examples:
  turbtax check ./scenarios
  turbtax check ./scenarios --filter "rent*"
  turbtax check ./scenarios --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern")
	return cmd
}

func runCheck(opts *CheckOptions, dir string, cmd *cobra.Command) error {
	gen := opts.TraceGenerator
	if gen == nil {
		gen = UUIDv7Generator{}
	}
	out := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
		TraceID:   gen.Generate(),
	}

	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return out.Fail(NewExitError(ExitCommandError, fmt.Sprintf("scenarios directory not found: %s", dir)))
	}

	files, err := findScenarioFiles(dir, opts.Filter)
	if err != nil {
		return out.Fail(WrapExitError(ExitCommandError, "find scenarios", err))
	}

	result := CheckResult{
		Scenarios: make([]ScenarioResult, 0, len(files)),
		Total:     len(files),
	}
	for _, file := range files {
		r := checkScenario(file)
		out.VerboseLog("%s: pass=%t", r.Name, r.Pass)
		result.Scenarios = append(result.Scenarios, r)
		if r.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
	}

	if err := out.Success(result, func(w io.Writer) error {
		writeCheckText(w, result)
		return nil
	}); err != nil {
		return err
	}

	if result.Failed > 0 {
		return &ExitError{
			Code:     ExitFailure,
			Message:  fmt.Sprintf("%d of %d scenarios failed", result.Failed, result.Total),
			Reported: true,
		}
	}
	return nil
}

// findScenarioFiles lists the .yaml and .yml files directly in dir,
// optionally filtered by a glob on the name without extension.
func findScenarioFiles(dir, filter string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		if filter != "" {
			matched, err := filepath.Match(filter, strings.TrimSuffix(e.Name(), ext))
			if err != nil {
				return nil, fmt.Errorf("invalid filter pattern: %w", err)
			}
			if !matched {
				continue
			}
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	return files, nil
}

// checkScenario loads and runs one scenario file. Load and run errors
// become failed results so one bad file does not stop the rest.
func checkScenario(file string) ScenarioResult {
	s, err := harness.LoadScenario(file)
	if err != nil {
		return ScenarioResult{
			Name:   filepath.Base(file),
			Errors: []string{fmt.Sprintf("failed to load scenario: %v", err)},
		}
	}

	r, err := harness.Run(s)
	if err != nil {
		return ScenarioResult{
			Name:   s.Name,
			Errors: []string{fmt.Sprintf("execution failed: %v", err)},
		}
	}
	return ScenarioResult{Name: s.Name, Pass: r.Pass, Errors: r.Errors}
}

func writeCheckText(w io.Writer, result CheckResult) {
	if result.Total == 0 {
		fmt.Fprintln(w, "No scenarios found.")
		return
	}
	for _, s := range result.Scenarios {
		if s.Pass {
			fmt.Fprintf(w, "PASS %s\n", s.Name)
			continue
		}
		fmt.Fprintf(w, "FAIL %s\n", s.Name)
		for _, e := range s.Errors {
			fmt.Fprintf(w, "  %s\n", strings.ReplaceAll(e, "\n", "\n  "))
		}
	}
	fmt.Fprintf(w, "\n%d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)
}
