package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"github.com/jamesus88/turb-tax/internal/ledger"
)

// Statement is a book with its entries and running balances, ready to render.
type Statement struct {
	Book     ledger.Book
	Lines    []ledger.Line
	Total    decimal.NullDecimal
	Currency string

	// Hidden counts leading lines dropped by Tail.
	Hidden int
}

// NewStatement builds a statement. The total is taken from the last
// running balance, so it is invalid for a book without entries.
func NewStatement(book ledger.Book, lines []ledger.Line, currency string) *Statement {
	s := &Statement{Book: book, Lines: lines, Currency: currency}
	if len(lines) > 0 {
		s.Total = decimal.NewNullDecimal(lines[len(lines)-1].Balance)
	}
	return s
}

// Tail returns a copy holding only the last n lines. The total still
// covers the whole book. n <= 0 keeps every line.
func (s *Statement) Tail(n int) *Statement {
	out := *s
	if n > 0 && len(s.Lines) > n {
		out.Hidden = s.Hidden + len(s.Lines) - n
		out.Lines = s.Lines[len(s.Lines)-n:]
	}
	return &out
}

// BalanceString is the display form of the total, or "no entries".
func (s *Statement) BalanceString() string {
	if !s.Total.Valid {
		return "no entries"
	}
	return Money(s.Total.Decimal, s.Currency)
}

// WriteText writes the statement as an aligned plain-text table.
// With details, the book metadata is printed above the table.
func (s *Statement) WriteText(w io.Writer, details bool) error {
	fmt.Fprintln(w, "---------------")
	fmt.Fprintln(w, "turb tax:", s.Book.Name)
	fmt.Fprintln(w, "---------------")
	if details {
		WriteBookText(w, s.Book, s.Total, s.Currency)
		fmt.Fprintln(w)
	}

	if len(s.Lines) == 0 {
		fmt.Fprintln(w, "(no entries)")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "id\tdate\tdescription\tamount\tbalance\t")
	if s.Hidden > 0 {
		fmt.Fprintf(tw, "...\t\t(%d earlier)\t\t\t\n", s.Hidden)
	}
	for _, l := range s.Lines {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t\n",
			l.ID,
			l.Date,
			description(l.Description),
			Money(l.Amount, s.Currency),
			Money(l.Balance, s.Currency),
		)
	}
	return tw.Flush()
}

// WriteBookText writes book metadata and balance, one field per line.
func WriteBookText(w io.Writer, b ledger.Book, total decimal.NullDecimal, currency string) {
	fmt.Fprintf(w, "book:        %s\n", b.Name)
	fmt.Fprintf(w, "description: %s\n", description(b.Description))
	if b.APR.Valid {
		fmt.Fprintf(w, "apr:         %s\n", Percent(b.APR.Decimal))
	} else {
		fmt.Fprintln(w, "apr:         -")
	}
	if total.Valid {
		fmt.Fprintf(w, "balance:     %s\n", Money(total.Decimal, currency))
	} else {
		fmt.Fprintln(w, "balance:     no entries")
	}
}

// Markdown renders the statement as a markdown document with a heading,
// an optional details list and an entries table.
func (s *Statement) Markdown(details bool) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", escape(s.Book.Name))
	if details {
		s.writeDetails(&b)
		b.WriteString("\n")
	}

	if len(s.Lines) == 0 {
		fmt.Fprint(&b, "_No entries._\n")
		return b.String()
	}

	fmt.Fprintln(&b, "| ID | Date | Description | Amount | Balance |")
	fmt.Fprintln(&b, "|---:|:---|:---|---:|---:|")
	for _, l := range s.Lines {
		fmt.Fprintf(&b, "| %d | %s | %s | %s | %s |\n",
			l.ID,
			l.Date,
			escape(description(l.Description)),
			Money(l.Amount, s.Currency),
			Money(l.Balance, s.Currency),
		)
	}
	fmt.Fprintf(&b, "| | | **Total** | | **%s** |\n", s.BalanceString())
	if s.Hidden > 0 {
		fmt.Fprintf(&b, "\n_%d earlier entries not shown._\n", s.Hidden)
	}
	return b.String()
}

func (s *Statement) writeDetails(b *strings.Builder) {
	fmt.Fprintf(b, "- **Description:** %s\n", escape(description(s.Book.Description)))
	if s.Book.APR.Valid {
		fmt.Fprintf(b, "- **APR:** %s\n", Percent(s.Book.APR.Decimal))
	} else {
		fmt.Fprint(b, "- **APR:** -\n")
	}
	fmt.Fprintf(b, "- **Balance:** %s\n", s.BalanceString())
}

func description(d *string) string {
	if d == nil || *d == "" {
		return "-"
	}
	return *d
}

var markdownEscaper = strings.NewReplacer("|", `\|`, "*", `\*`, "_", `\_`, "`", "\\`")

func escape(s string) string { return markdownEscaper.Replace(s) }

// BookMarkdown renders book metadata and balance as a markdown section.
func BookMarkdown(b ledger.Book, total decimal.NullDecimal, currency string) string {
	s := &Statement{Book: b, Total: total, Currency: currency}
	var out strings.Builder
	fmt.Fprintf(&out, "# %s\n\n", escape(b.Name))
	s.writeDetails(&out)
	return out.String()
}
