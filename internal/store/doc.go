// Package store provides durable storage for turbtax books and entries.
//
// Two tables back the ledger:
//   - books:   one row per book (name, description, apr)
//   - entries: dated, signed line items referencing books(name)
//
// # Ordering
//
// Entry reads are ORDER BY date ASC, id ASC. Dates are ISO text, so lexical
// order is calendar order, and id breaks ties by insertion order.
//
// # Transactions
//
// Every exported mutation commits before it returns. Multi-statement
// mutations (EnsureBook, ClearBook) run in a single transaction.
//
// # Dialects
//
// SQLite (github.com/mattn/go-sqlite3) is the default and is configured with:
//   - WAL mode
//   - synchronous=NORMAL
//   - busy_timeout=5000
//   - foreign_keys=ON
//   - a single open connection (one writer)
//
// PostgreSQL (github.com/lib/pq) is available through OpenPostgres. Queries
// are written with ? placeholders and rebound to $n for it.
package store
