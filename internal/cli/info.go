package cli

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/jamesus88/turb-tax/internal/ledger"
	"github.com/jamesus88/turb-tax/internal/report"
)

// commandHint is printed under book info in text output.
const commandHint = "Commands: view, add, edit, interest, delete, clear. Call --help for more."

// bookData is the JSON payload of book info.
type bookData struct {
	Book    ledger.Book         `json:"book"`
	Balance decimal.NullDecimal `json:"balance"`
	Entries int                 `json:"entries"`
}

// NewInfoCommand creates the info command.
func NewInfoCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info <book>",
		Short: "Show book description, APR and balance",
		Long: `Show the stored metadata of a book and its current balance.

Example:
  turbtax info savings`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runInfo(opts *RootOptions, book string, cmd *cobra.Command) error {
	s, err := openSession(opts, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	st, err := s.statement(cmd, book)
	if err != nil {
		return s.out.Fail(err)
	}

	data := bookData{Book: st.Book, Balance: st.Total, Entries: len(st.Lines)}
	return s.out.Success(data, func(w io.Writer) error {
		if s.out.Format == "markdown" {
			_, err := io.WriteString(w, report.BookMarkdown(st.Book, st.Total, s.cfg.Currency))
			return err
		}
		report.WriteBookText(w, st.Book, st.Total, s.cfg.Currency)
		fmt.Fprintf(w, "entries:     %d\n\n%s\n", len(st.Lines), commandHint)
		return nil
	})
}
