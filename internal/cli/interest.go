package cli

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/jamesus88/turb-tax/internal/ledger"
)

// InterestOptions holds flags for the interest command.
type InterestOptions struct {
	*RootOptions
	Date     string
	Compound int
}

// interestData is the JSON payload of interest.
type interestData struct {
	Book     string          `json:"book"`
	Interest decimal.Decimal `json:"interest"`
	Balance  decimal.Decimal `json:"balance"`
	Periods  int             `json:"periods"`
}

// NewInterestCommand creates the interest command.
func NewInterestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InterestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "interest <book>",
		Short: "Accrue one period of interest on a book",
		Long: `Record balance * APR / periods as an "interest earned" entry.

The book needs at least one entry and an APR (see edit --apr).
Periods per year default to the configured compounding (12).

Examples:
  turbtax interest savings
  turbtax interest savings --date 2024-01-31 --compound 4`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInterest(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Date, "date", "d", "", "date (yyyy-mm-dd), default today")
	cmd.Flags().IntVarP(&opts.Compound, "compound", "c", 0, "compounding periods per year (default from config)")

	return cmd
}

func runInterest(opts *InterestOptions, book string, cmd *cobra.Command) error {
	s, err := openSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	var on ledger.Date
	if opts.Date != "" {
		if on, err = ledger.ParseDate(opts.Date); err != nil {
			return s.out.Fail(err)
		}
	}
	periods := s.cfg.Compounding
	if cmd.Flags().Changed("compound") {
		periods = opts.Compound
	}

	interest, err := s.ledger.AccrueInterest(cmd.Context(), book, on, periods)
	if err != nil {
		return s.out.Fail(err)
	}
	st, err := s.statement(cmd, book)
	if err != nil {
		return s.out.Fail(err)
	}

	data := interestData{Book: st.Book.Name, Interest: interest, Balance: st.Total.Decimal, Periods: periods}
	msg := fmt.Sprintf("Interest added: %s. New balance: %s", s.money(interest), s.balance(st.Total))
	return s.out.Success(data, s.withTail(msg, st))
}
