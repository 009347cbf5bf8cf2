package cli

import (
	"io"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/jamesus88/turb-tax/internal/ledger"
	"github.com/jamesus88/turb-tax/internal/report"
)

// ViewOptions holds flags for the view command.
type ViewOptions struct {
	*RootOptions
	Max     int
	Details bool
	Pretty  bool
	Width   int
}

// statementData is the JSON payload of a statement.
type statementData struct {
	Book    ledger.Book         `json:"book"`
	Lines   []ledger.Line       `json:"lines"`
	Balance decimal.NullDecimal `json:"balance"`
	Hidden  int                 `json:"hidden"`
}

func newStatementData(st *report.Statement) statementData {
	lines := st.Lines
	if lines == nil {
		lines = []ledger.Line{}
	}
	return statementData{Book: st.Book, Lines: lines, Balance: st.Total, Hidden: st.Hidden}
}

// NewViewCommand creates the view command.
func NewViewCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ViewOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "view <book>",
		Short: "View the entries of a book with running balance",
		Long: `Print the entries of a book ordered by date, each with the running
balance of the book at that entry.

Examples:
  turbtax view rent
  turbtax view rent --max 10 --details
  turbtax view rent --pretty`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runView(opts, args[0], cmd)
		},
	}

	cmd.Flags().IntVarP(&opts.Max, "max", "m", 200, "show only the last N entries (0 for all)")
	cmd.Flags().BoolVarP(&opts.Details, "details", "d", false, "show book details above the entries")
	cmd.Flags().BoolVar(&opts.Pretty, "pretty", false, "render styled markdown for the terminal")
	cmd.Flags().IntVar(&opts.Width, "width", 100, "wrap width for --pretty")

	return cmd
}

func runView(opts *ViewOptions, book string, cmd *cobra.Command) error {
	s, err := openSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	st, err := s.statement(cmd, book)
	if err != nil {
		return s.out.Fail(err)
	}
	st = st.Tail(opts.Max)

	return s.out.Success(newStatementData(st), func(w io.Writer) error {
		if opts.Pretty {
			rendered, err := report.Pretty(st.Markdown(opts.Details), "", opts.Width)
			if err != nil {
				return err
			}
			_, err = io.WriteString(w, rendered)
			return err
		}
		return s.renderStatement(w, st, opts.Details)
	})
}
