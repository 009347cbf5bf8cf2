// Package ledger implements the turbtax accounting engine.
//
// A ledger is a set of named books. Each book holds dated, signed entries
// plus an optional description and annual interest rate (APR). The package
// is split the same way the work is split:
//
//   - Registry: ensures books exist and edits their metadata
//   - Entries:  the only writer of entry rows (add, edit, delete, clear)
//   - Balances: derives total and running balances, never stores them
//   - Accruer:  turns a balance and an APR into an "interest earned" entry
//
// Ledger bundles the four behind the operations the CLI calls.
//
// # Ordering
//
// Entries are always read ORDER BY date ASC, id ASC. Running balances are
// prefix sums over that order and are recomputed on every read, so an edit
// or delete anywhere in a book is reflected in every later line.
//
// # Storage
//
// Persistence goes through the Storage interface. internal/store provides
// the SQLite and PostgreSQL implementations. Every mutation is a single
// statement or a single transaction, committed before the call returns.
package ledger
