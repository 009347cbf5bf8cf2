package cli

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/jamesus88/turb-tax/internal/ledger"
)

// AddOptions holds flags for the add command.
type AddOptions struct {
	*RootOptions
	Amount      string
	Date        string
	Description string
}

// postingData is the JSON payload of add.
type postingData struct {
	Entry   ledger.Entry    `json:"entry"`
	Balance decimal.Decimal `json:"balance"`
}

// NewAddCommand creates the add command.
func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AddOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "add <book> [amount]",
		Short: "Add an entry to a book",
		Long: `Add a dated entry to a book, creating the book if needed.

Negative amounts are debits. Pass them with --amount or after "--" so
they are not read as flags. The date defaults to today.

Examples:
  turbtax add rent --amount -1200 --date 2024-01-01 --desc january
  turbtax add savings 250
  turbtax add rent -- -1200`,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 2 {
				if cmd.Flags().Changed("amount") {
					return NewExitError(ExitCommandError, "amount given both as argument and --amount")
				}
				opts.Amount = args[1]
			}
			return runAdd(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Amount, "amount", "a", "", "signed amount")
	cmd.Flags().StringVarP(&opts.Date, "date", "d", "", "date (yyyy-mm-dd), default today")
	cmd.Flags().StringVarP(&opts.Description, "desc", "p", "", "description")

	return cmd
}

func runAdd(opts *AddOptions, book string, cmd *cobra.Command) error {
	s, err := openSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	if opts.Amount == "" {
		return s.out.Fail(&ledger.ValidationError{Field: "amount", Reason: "amount is required"})
	}
	amount, err := ledger.ParseAmount(opts.Amount)
	if err != nil {
		return s.out.Fail(err)
	}

	n := ledger.NewEntry{Book: book, Amount: amount}
	if opts.Date != "" {
		if n.Date, err = ledger.ParseDate(opts.Date); err != nil {
			return s.out.Fail(err)
		}
	}
	if cmd.Flags().Changed("desc") {
		n.Description = &opts.Description
	}

	posting, err := s.ledger.AddEntry(cmd.Context(), n)
	if err != nil {
		return s.out.Fail(err)
	}
	st, err := s.statement(cmd, posting.Entry.Book)
	if err != nil {
		return s.out.Fail(err)
	}

	msg := fmt.Sprintf("Line added. New balance: %s", s.money(posting.Balance))
	return s.out.Success(postingData{Entry: posting.Entry, Balance: posting.Balance}, s.withTail(msg, st))
}
