// Package harness runs scripted ledger scenarios end to end.
//
// A scenario is a YAML file naming a start date and a list of steps. Each
// step is one ledger operation (ensure, add, edit, delete, clear, accrue,
// set_description, set_apr, info) or a calendar move (advance). Steps may
// carry an expect clause naming an error kind or result values. After the
// steps run, assertions check the final state of the books.
//
// Every scenario runs against a fresh in-memory SQLite store through the
// same ledger.Ledger the CLI uses, with a testutil.Calendar standing in for
// the system clock, so default dates and entry ids are reproducible.
//
// # Traces
//
// Each executed step becomes a TraceEvent holding the op, its arguments,
// the outcome (ok, not_found, precondition, validation, failed) and the
// values the ledger returned. RunWithGolden compares the JSON trace with
// testdata/golden/<name>.golden:
//
//	go test ./internal/harness -update
//
// Example scenario:
//
//	name: rent
//	description: monthly rent payments accumulate
//	today: "2024-06-15"
//	steps:
//	  - op: add
//	    book: rent
//	    amount: "-1200"
//	    date: "2024-01-01"
//	  - op: add
//	    book: rent
//	    amount: "-1200"
//	    date: "2024-02-01"
//	    expect:
//	      result:
//	        balance: "-2400"
//	assertions:
//	  - type: total_balance
//	    book: rent
//	    balance: "-2400"
package harness
