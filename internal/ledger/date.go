package ledger

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// DateFormat is the canonical ISO-8601 calendar date layout used for
// storage, JSON and display.
const DateFormat = "2006-01-02"

// readDateFormat also accepts single-digit months and days ("2024-3-1").
const readDateFormat = "2006-1-2"

// Date is a calendar day with no time-of-day or location.
// The zero Date means "not supplied".
type Date struct {
	y int
	m time.Month
	d int
}

// NewDate returns a normalized Date for the given year, month and day.
func NewDate(year int, month time.Month, day int) Date {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	y, m, d := t.Date()
	return Date{y, m, d}
}

// ParseDate parses "YYYY-MM-DD" (single-digit month and day allowed).
// Malformed input yields a *ValidationError.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(readDateFormat, s)
	if err != nil {
		return Date{}, &ValidationError{Field: "date", Value: s, Reason: fmt.Sprintf("want format %s", DateFormat)}
	}
	return NewDate(t.Date()), nil
}

// MustParseDate is like ParseDate but panics on error.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err.Error())
	}
	return d
}

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool { return d == Date{} }

func (d Date) time() time.Time { return time.Date(d.y, d.m, d.d, 0, 0, 0, 0, time.UTC) }

// AddDays returns d shifted by n days.
func (d Date) AddDays(n int) Date { return NewDate(d.y, d.m, d.d+n) }

// String formats d as YYYY-MM-DD.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.time().Format(DateFormat)
}

// Value implements driver.Valuer. Dates are stored as ISO text so that
// lexical order equals calendar order.
func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, fmt.Errorf("cannot store zero date")
	}
	return d.String(), nil
}

// Scan implements sql.Scanner.
func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case string:
		return d.parseInto(v)
	case []byte:
		return d.parseInto(string(v))
	case time.Time:
		*d = NewDate(v.Date())
		return nil
	case nil:
		return fmt.Errorf("scan date: unexpected NULL")
	default:
		return fmt.Errorf("scan date: unsupported type %T", src)
	}
}

func (d *Date) parseInto(s string) error {
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalJSON implements json.Marshaler.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Date) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	return d.parseInto(s)
}
