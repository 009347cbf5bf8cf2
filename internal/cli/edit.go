package cli

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/jamesus88/turb-tax/internal/ledger"
	"github.com/jamesus88/turb-tax/internal/report"
)

// EditOptions holds flags for the edit command.
type EditOptions struct {
	*RootOptions
	Index       int64
	Date        string
	Amount      string
	Description string
	NoDesc      bool
	APR         string
	NoAPR       bool
}

// editData is the JSON payload of edit. Entry is set only for entry edits.
type editData struct {
	Book  ledger.Book   `json:"book"`
	Entry *ledger.Entry `json:"entry,omitempty"`
}

// NewEditCommand creates the edit command.
func NewEditCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EditOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "edit <book>",
		Short: "Edit a book or one of its entries",
		Long: `Edit a book's description and APR, or with --index one of its entries.

Only the flags given are changed. --apr may be combined with --index.

Examples:
  turbtax edit savings --desc "rainy day fund" --apr 0.045
  turbtax edit savings --no-apr
  turbtax edit rent --index 2 --amount -1250 --date 2024-02-03
  turbtax edit rent -i 2 --no-desc`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEdit(opts, args[0], cmd)
		},
	}

	cmd.Flags().Int64VarP(&opts.Index, "index", "i", 0, "id of the entry to edit (omit to edit the book)")
	cmd.Flags().StringVarP(&opts.Date, "date", "d", "", "new entry date (yyyy-mm-dd)")
	cmd.Flags().StringVarP(&opts.Amount, "amount", "a", "", "new entry amount")
	cmd.Flags().StringVarP(&opts.Description, "desc", "p", "", "new description")
	cmd.Flags().BoolVar(&opts.NoDesc, "no-desc", false, "clear the description")
	cmd.Flags().StringVar(&opts.APR, "apr", "", "book APR as a decimal (0.12 = 12%)")
	cmd.Flags().BoolVar(&opts.NoAPR, "no-apr", false, "clear the book APR")
	cmd.MarkFlagsMutuallyExclusive("desc", "no-desc")
	cmd.MarkFlagsMutuallyExclusive("apr", "no-apr")

	return cmd
}

func runEdit(opts *EditOptions, book string, cmd *cobra.Command) error {
	flags := cmd.Flags()
	entryEdit := flags.Changed("index")
	if !entryEdit && (flags.Changed("date") || flags.Changed("amount")) {
		return NewExitError(ExitCommandError, "--date and --amount need --index")
	}
	if !flags.Changed("desc") && !opts.NoDesc && !flags.Changed("apr") && !opts.NoAPR &&
		!flags.Changed("date") && !flags.Changed("amount") {
		return NewExitError(ExitCommandError, "nothing to edit")
	}

	s, err := openSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer s.Close()
	ctx := cmd.Context()

	name, err := ledger.NormalizeBookName(book)
	if err != nil {
		return s.out.Fail(err)
	}

	// All flag values are parsed before the first write.
	var patch ledger.EntryPatch
	if entryEdit {
		if patch, err = opts.entryPatch(flags.Changed); err != nil {
			return s.out.Fail(err)
		}
	}
	setAPR := flags.Changed("apr") || opts.NoAPR
	apr, err := opts.rate(flags.Changed("apr"))
	if err != nil {
		return s.out.Fail(err)
	}

	var edited *ledger.Entry
	if entryEdit {
		current, err := s.ledger.Entries.Get(ctx, opts.Index)
		if err != nil {
			return s.out.Fail(err)
		}
		if current.Book != name {
			return s.out.Fail(&ledger.NotFoundError{Resource: "entry", Key: fmt.Sprintf("%d in book %q", opts.Index, name)})
		}
		e, err := s.ledger.EditEntry(ctx, opts.Index, patch)
		if err != nil {
			return s.out.Fail(err)
		}
		edited = &e
	} else {
		if _, err := s.ledger.EnsureBook(ctx, name); err != nil {
			return s.out.Fail(err)
		}
		if flags.Changed("desc") {
			_, err = s.ledger.SetDescription(ctx, name, &opts.Description)
		} else if opts.NoDesc {
			_, err = s.ledger.SetDescription(ctx, name, nil)
		}
		if err != nil {
			return s.out.Fail(err)
		}
	}

	if setAPR {
		if _, err := s.ledger.SetAPR(ctx, name, apr); err != nil {
			return s.out.Fail(err)
		}
	}

	st, err := s.statement(cmd, name)
	if err != nil {
		return s.out.Fail(err)
	}
	data := editData{Book: st.Book, Entry: edited}

	if edited != nil {
		return s.out.Success(data, s.withTail(fmt.Sprintf("Line %d updated.", edited.ID), st))
	}
	return s.out.Success(data, func(w io.Writer) error {
		if s.out.Format == "markdown" {
			_, err := io.WriteString(w, report.BookMarkdown(st.Book, st.Total, s.cfg.Currency))
			return err
		}
		fmt.Fprintln(w, "Book updated.")
		fmt.Fprintln(w)
		report.WriteBookText(w, st.Book, st.Total, s.cfg.Currency)
		return nil
	})
}

// rate parses --apr when it was given. An unset or cleared APR is the
// null decimal.
func (o *EditOptions) rate(given bool) (decimal.NullDecimal, error) {
	if !given || o.NoAPR {
		return decimal.NullDecimal{}, nil
	}
	r, err := ledger.ParseRate(o.APR)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NewNullDecimal(r), nil
}

// entryPatch builds the partial update from the flags that were given.
func (o *EditOptions) entryPatch(changed func(name string) bool) (ledger.EntryPatch, error) {
	var p ledger.EntryPatch
	if changed("date") {
		d, err := ledger.ParseDate(o.Date)
		if err != nil {
			return p, err
		}
		p.Date = ledger.Set(d)
	}
	if changed("amount") {
		a, err := ledger.ParseAmount(o.Amount)
		if err != nil {
			return p, err
		}
		p.Amount = ledger.Set(a)
	}
	switch {
	case o.NoDesc:
		p.Description = ledger.Null[string]()
	case changed("desc"):
		p.Description = ledger.Set(o.Description)
	}
	return p, nil
}
