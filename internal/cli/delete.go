package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/jamesus88/turb-tax/internal/ledger"
)

// deleteData is the JSON payload of delete.
type deleteData struct {
	ID      int64               `json:"id"`
	Removed bool                `json:"removed"`
	Balance decimal.NullDecimal `json:"balance"`
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <book> <id>",
		Short: "Delete one entry of a book",
		Long: `Delete the entry with the given id. An id that does not exist in the
book is reported and leaves the book unchanged.

Example:
  turbtax delete rent 3`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(rootOpts, args[0], args[1], cmd)
		},
	}
	return cmd
}

func runDelete(opts *RootOptions, book, rawID string, cmd *cobra.Command) error {
	s, err := openSession(opts, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return s.out.Fail(&ledger.ValidationError{Field: "id", Value: rawID, Reason: "not an integer"})
	}
	name, err := ledger.NormalizeBookName(book)
	if err != nil {
		return s.out.Fail(err)
	}

	// An id belonging to another book counts as not found in this one.
	removed := false
	e, err := s.ledger.Entries.Get(cmd.Context(), id)
	switch {
	case err == nil && e.Book == name:
		if removed, err = s.ledger.DeleteEntry(cmd.Context(), id); err != nil {
			return s.out.Fail(err)
		}
	case err != nil && !ledger.IsNotFound(err):
		return s.out.Fail(err)
	}

	total, err := s.ledger.TotalBalance(cmd.Context(), name)
	if err != nil {
		return s.out.Fail(err)
	}
	data := deleteData{ID: id, Removed: removed, Balance: total}

	if !removed {
		return s.out.Success(data, func(w io.Writer) error {
			_, err := fmt.Fprintf(w, "Failed to delete line %d: id not found.\n", id)
			return err
		})
	}

	st, err := s.statement(cmd, name)
	if err != nil {
		return s.out.Fail(err)
	}
	msg := fmt.Sprintf("Line removed. New balance: %s", s.balance(total))
	return s.out.Success(data, s.withTail(msg, st))
}
