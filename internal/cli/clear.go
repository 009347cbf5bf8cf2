package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jamesus88/turb-tax/internal/ledger"
)

// ClearOptions holds flags for the clear command.
type ClearOptions struct {
	*RootOptions
	Confirm bool
	Yes     bool
}

// clearData is the JSON payload of clear.
type clearData struct {
	Book    string `json:"book"`
	Cleared bool   `json:"cleared"`
	Removed int64  `json:"removed"`
}

// NewClearCommand creates the clear command.
func NewClearCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ClearOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "clear <book>",
		Short: "Delete a book and all of its entries",
		Long: `Delete every entry of a book and the book itself. This cannot be undone.

--confirm is required, and the command then asks once more on the
terminal. Pressing Enter clears the book; any other input cancels.
--yes skips the question for scripts.

Examples:
  turbtax clear rent --confirm
  turbtax clear rent --confirm --yes`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClear(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Confirm, "confirm", false, "confirm the deletion")
	cmd.Flags().BoolVarP(&opts.Yes, "yes", "y", false, "do not prompt")

	return cmd
}

func runClear(opts *ClearOptions, book string, cmd *cobra.Command) error {
	if !opts.Confirm {
		return NewExitError(ExitCommandError, "did not --confirm")
	}

	s, err := openSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	name, err := ledger.NormalizeBookName(book)
	if err != nil {
		return s.out.Fail(err)
	}
	if _, err := s.ledger.BookInfo(cmd.Context(), name); err != nil {
		return s.out.Fail(err)
	}

	if !opts.Yes && !confirm(cmd.InOrStdin(), s.out.GetErrWriter(), fmt.Sprintf("Clear book %q? Enter to continue: ", name)) {
		return s.out.Success(clearData{Book: name}, func(w io.Writer) error {
			_, err := fmt.Fprintln(w, "Deletion canceled.")
			return err
		})
	}

	n, err := s.ledger.ClearBook(cmd.Context(), name)
	if err != nil {
		return s.out.Fail(err)
	}
	return s.out.Success(clearData{Book: name, Cleared: true, Removed: n}, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "All lines cleared (%d removed).\n", n)
		return err
	})
}

// confirm prints prompt and reports whether the reply was an empty line.
// End of input without a newline counts as a refusal.
func confirm(in io.Reader, prompt io.Writer, question string) bool {
	fmt.Fprint(prompt, question)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil {
		return false
	}
	return strings.TrimSpace(line) == ""
}
