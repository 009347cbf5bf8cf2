package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/jamesus88/turb-tax/internal/config"
	"github.com/jamesus88/turb-tax/internal/ledger"
	"github.com/jamesus88/turb-tax/internal/report"
	"github.com/jamesus88/turb-tax/internal/store"
)

// tailLines is how many statement lines follow a mutation.
const tailLines = 5

// session is one CLI invocation: effective config, an open store and the
// ledger over it. The store is closed by Close.
type session struct {
	cfg    *config.Config
	store  *store.Store
	ledger *ledger.Ledger
	out    *OutputFormatter
	logger *slog.Logger
}

// openSession loads config, applies flag overrides and opens the store.
// Failures are command errors (exit 2).
func openSession(opts *RootOptions, cmd *cobra.Command) (*session, error) {
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

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, out.Fail(WrapExitError(ExitCommandError, "load config", err))
	}
	if opts.Driver != "" {
		cfg.Database.Driver = opts.Driver
	}
	if opts.Database != "" {
		if cfg.Database.Driver == store.DriverPostgres {
			cfg.Database.DSN = opts.Database
		} else {
			cfg.Database.Path = opts.Database
		}
	}
	if opts.Format == "" {
		out.Format = cfg.Format
	}
	if err := cfg.Validate(); err != nil {
		return nil, out.Fail(WrapExitError(ExitCommandError, "invalid config", err))
	}

	level := cfg.Level()
	if opts.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	driver, dsn := cfg.Source()
	if driver == store.DriverSQLite {
		if err := os.MkdirAll(filepath.Dir(dsn), 0755); err != nil {
			return nil, out.Fail(WrapExitError(ExitCommandError, "create database directory", err))
		}
	}
	logger.Debug("opening database", "driver", driver, "trace_id", out.TraceID)
	st, err := store.OpenDriver(driver, dsn)
	if err != nil {
		return nil, out.Fail(WrapExitError(ExitCommandError, "failed to open database", err))
	}

	clock := opts.Clock
	if clock == nil {
		clock = ledger.SystemClock{}
	}
	l := ledger.New(st,
		ledger.WithClock(clock),
		ledger.WithLogger(logger.With("trace_id", out.TraceID)),
	)

	return &session{cfg: cfg, store: st, ledger: l, out: out, logger: logger}, nil
}

// Close releases the store.
func (s *session) Close() error {
	return s.store.Close()
}

// statement loads the book statement for display.
func (s *session) statement(cmd *cobra.Command, book string) (*report.Statement, error) {
	info, err := s.ledger.BookInfo(cmd.Context(), book)
	if err != nil {
		return nil, err
	}
	lines, err := s.ledger.Statement(cmd.Context(), info.Name)
	if err != nil {
		return nil, err
	}
	return report.NewStatement(info, lines, s.cfg.Currency), nil
}

// renderStatement writes st in the session's text or markdown format.
func (s *session) renderStatement(w io.Writer, st *report.Statement, details bool) error {
	if s.out.Format == "markdown" {
		_, err := io.WriteString(w, st.Markdown(details))
		return err
	}
	return st.WriteText(w, details)
}

// withTail renders a one-line message followed by the last lines of st.
func (s *session) withTail(message string, st *report.Statement) func(w io.Writer) error {
	return func(w io.Writer) error {
		fmt.Fprintf(w, "%s\n\n", message)
		return s.renderStatement(w, st.Tail(tailLines), false)
	}
}

// money formats an amount in the configured display currency.
func (s *session) money(d decimal.Decimal) string {
	return report.Money(d, s.cfg.Currency)
}

// balance formats a book total, which may be the "no entries" value.
func (s *session) balance(total decimal.NullDecimal) string {
	if !total.Valid {
		return "no entries"
	}
	return s.money(total.Decimal)
}
