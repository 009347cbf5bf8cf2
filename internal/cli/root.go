package cli

import (
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"

	"github.com/jamesus88/turb-tax/internal/ledger"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "text" | "json" | "markdown"; empty means the config value
	ConfigPath string
	Database   string
	Driver     string

	// Clock supplies "today" for entries added without a date.
	// If nil, defaults to ledger.SystemClock.
	Clock ledger.Clock

	// TraceGenerator allows overriding the trace id generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	TraceGenerator TraceGenerator
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json", "markdown"}

// NewRootCommand creates the root command for the turbtax CLI.
func NewRootCommand() *cobra.Command {
	return NewRootCommandWith(&RootOptions{})
}

// NewRootCommandWith creates the root command around preset options.
func NewRootCommandWith(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "turbtax",
		Short: "turb tax - easy finance tracker",
		Long: `A personal ledger: dated entries grouped into named books, with
running balances and interest accrual.

Books are created the first time an entry is added to them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.Format != "" && !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "", "output format (text|json|markdown)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to YAML config file")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to SQLite database (or postgres DSN)")
	cmd.PersistentFlags().StringVar(&opts.Driver, "driver", "", "database driver (sqlite|postgres)")

	// Add subcommands
	cmd.AddCommand(NewViewCommand(opts))
	cmd.AddCommand(NewInfoCommand(opts))
	cmd.AddCommand(NewAddCommand(opts))
	cmd.AddCommand(NewEditCommand(opts))
	cmd.AddCommand(NewInterestCommand(opts))
	cmd.AddCommand(NewDeleteCommand(opts))
	cmd.AddCommand(NewClearCommand(opts))
	cmd.AddCommand(NewCheckCommand(opts))

	return cmd
}

// Execute runs the CLI with args and returns the process exit code.
// Errors not already shown by a command are printed to stderr.
func Execute(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	return execute(&RootOptions{}, args, stdin, stdout, stderr)
}

func execute(opts *RootOptions, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cmd := NewRootCommandWith(opts)
	cmd.SetArgs(args)
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.Execute()
	if err == nil {
		return ExitSuccess
	}

	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		// cobra usage errors: unknown command, bad flag, wrong arg count
		exitErr = WrapExitError(ExitCommandError, "invalid command", err)
	}
	if !exitErr.Reported {
		fmt.Fprintf(stderr, "Error: %v\n", exitErr)
	}
	return exitErr.Code
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
