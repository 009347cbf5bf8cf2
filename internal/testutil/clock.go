package testutil

import (
	"sync"

	"github.com/jamesus88/turb-tax/internal/ledger"
)

// Calendar is a settable ledger.Clock for tests.
//
// Unlike ledger.SystemClock, Calendar only moves when told to, so tests
// that rely on the default "today" date produce identical rows every run.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type Calendar struct {
	mu    sync.Mutex
	today ledger.Date
}

// NewCalendar creates a calendar fixed at the given date.
func NewCalendar(today ledger.Date) *Calendar {
	return &Calendar{today: today}
}

// NewCalendarAt is NewCalendar with a YYYY-MM-DD string. It panics on a
// malformed date.
func NewCalendarAt(today string) *Calendar {
	return NewCalendar(ledger.MustParseDate(today))
}

// Today returns the current calendar date.
// Implements ledger.Clock.
func (c *Calendar) Today() ledger.Date {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.today
}

// Advance moves the calendar forward by n days (backward if negative)
// and returns the new date.
func (c *Calendar) Advance(n int) ledger.Date {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.today = c.today.AddDays(n)
	return c.today
}

// Set moves the calendar to d.
func (c *Calendar) Set(d ledger.Date) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.today = d
}
