// Package civil provides timezone-free calendar dates, wall-clock times and
// date-times. Each type marshals to JSON as a string and encodes to Postgres
// DATE, TIME and TIMESTAMP columns through pgx.
package civil

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

const (
	dateLayout = "2006-01-02"
	clockShort = "15:04"
	clockLong  = "15:04:05"
)

// Date is a calendar date without a time zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the date part of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
	}
	return DateOf(t), nil
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// IsZero reports whether d is the zero value.
func (d Date) IsZero() bool { return d.Year == 0 && d.Month == 0 && d.Day == 0 }

// In returns midnight of d in loc.
func (d Date) In(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// AddDays returns d shifted by n days.
func (d Date) AddDays(n int) Date {
	return DateOf(d.In(time.UTC).AddDate(0, 0, n))
}

// Before reports whether d is strictly before o.
func (d Date) Before(o Date) bool { return d.In(time.UTC).Before(o.In(time.UTC)) }

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	v, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// ScanDate implements pgtype.DateScanner.
func (d *Date) ScanDate(v pgtype.Date) error {
	if !v.Valid {
		*d = Date{}
		return nil
	}
	*d = DateOf(v.Time)
	return nil
}

// DateValue implements pgtype.DateValuer.
func (d Date) DateValue() (pgtype.Date, error) {
	if d.IsZero() {
		return pgtype.Date{}, nil
	}
	return pgtype.Date{Time: d.In(time.UTC), Valid: true}, nil
}

// Scan implements sql.Scanner for drivers that hand over driver values.
func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = Date{}
	case Date:
		*d = v
	case time.Time:
		*d = DateOf(v)
	case string:
		p, err := ParseDate(v)
		if err != nil {
			return err
		}
		*d = p
	default:
		return fmt.Errorf("cannot scan %T into civil.Date", src)
	}
	return nil
}

// Value implements driver.Valuer.
func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.String(), nil
}

// Clock is a wall-clock time of day with second precision.
type Clock struct {
	Hour   int
	Minute int
	Second int
}

// ParseClock accepts HH:MM or HH:MM:SS.
func ParseClock(s string) (Clock, error) {
	s = strings.TrimSpace(s)
	layout := clockLong
	if strings.Count(s, ":") == 1 {
		layout = clockShort
	}
	t, err := time.Parse(layout, s)
	if err != nil {
		return Clock{}, fmt.Errorf("invalid time %q: want HH:MM or HH:MM:SS", s)
	}
	return Clock{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second()}, nil
}

func (c Clock) String() string {
	if c.Second == 0 {
		return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
	}
	return fmt.Sprintf("%02d:%02d:%02d", c.Hour, c.Minute, c.Second)
}

// Seconds returns the number of seconds since midnight.
func (c Clock) Seconds() int { return c.Hour*3600 + c.Minute*60 + c.Second }

// Before reports whether c is strictly earlier in the day than o.
func (c Clock) Before(o Clock) bool { return c.Seconds() < o.Seconds() }

func clockFromSeconds(s int) Clock {
	return Clock{Hour: s / 3600, Minute: (s % 3600) / 60, Second: s % 60}
}

func (c Clock) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *Clock) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("time must be a string: %w", err)
	}
	v, err := ParseClock(s)
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// ScanTime implements pgtype.TimeScanner.
func (c *Clock) ScanTime(v pgtype.Time) error {
	if !v.Valid {
		*c = Clock{}
		return nil
	}
	*c = clockFromSeconds(int(v.Microseconds / 1_000_000))
	return nil
}

// TimeValue implements pgtype.TimeValuer.
func (c Clock) TimeValue() (pgtype.Time, error) {
	return pgtype.Time{Microseconds: int64(c.Seconds()) * 1_000_000, Valid: true}, nil
}

// Scan implements sql.Scanner.
func (c *Clock) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*c = Clock{}
	case Clock:
		*c = v
	case string:
		// Postgres text format may carry fractional seconds.
		if i := strings.IndexByte(v, '.'); i >= 0 {
			v = v[:i]
		}
		p, err := ParseClock(v)
		if err != nil {
			return err
		}
		*c = p
	case time.Time:
		*c = Clock{Hour: v.Hour(), Minute: v.Minute(), Second: v.Second()}
	default:
		return fmt.Errorf("cannot scan %T into civil.Clock", src)
	}
	return nil
}

// Value implements driver.Valuer.
func (c Clock) Value() (driver.Value, error) {
	return fmt.Sprintf("%02d:%02d:%02d", c.Hour, c.Minute, c.Second), nil
}

// DateTime is a date plus a wall-clock time, without a time zone.
type DateTime struct {
	Date Date
	Time Clock
}

var dateTimeLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// ParseDateTime accepts YYYY-MM-DDTHH:MM[:SS] and RFC 3339. An RFC 3339 offset
// is dropped: the wall-clock reading is kept as-is.
func ParseDateTime(s string) (DateTime, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return DateTimeOf(t), nil
		}
	}
	return DateTime{}, fmt.Errorf("invalid date-time %q: want YYYY-MM-DDTHH:MM[:SS]", s)
}

// DateTimeOf returns the wall-clock reading of t in t's location.
func DateTimeOf(t time.Time) DateTime {
	return DateTime{
		Date: DateOf(t),
		Time: Clock{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second()},
	}
}

func (dt DateTime) String() string {
	return fmt.Sprintf("%sT%02d:%02d:%02d", dt.Date, dt.Time.Hour, dt.Time.Minute, dt.Time.Second)
}

// IsZero reports whether dt is the zero value.
func (dt DateTime) IsZero() bool { return dt.Date.IsZero() && dt.Time == Clock{} }

// In returns dt as an instant in loc.
func (dt DateTime) In(loc *time.Location) time.Time {
	return time.Date(dt.Date.Year, dt.Date.Month, dt.Date.Day,
		dt.Time.Hour, dt.Time.Minute, dt.Time.Second, 0, loc)
}

func (dt DateTime) MarshalJSON() ([]byte, error) {
	if dt.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(dt.String())
}

func (dt *DateTime) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("dateTime must be a string: %w", err)
	}
	if s == "" {
		*dt = DateTime{}
		return nil
	}
	v, err := ParseDateTime(s)
	if err != nil {
		return err
	}
	*dt = v
	return nil
}

// ScanTimestamp implements pgtype.TimestampScanner.
func (dt *DateTime) ScanTimestamp(v pgtype.Timestamp) error {
	if !v.Valid {
		*dt = DateTime{}
		return nil
	}
	*dt = DateTimeOf(v.Time)
	return nil
}

// TimestampValue implements pgtype.TimestampValuer.
func (dt DateTime) TimestampValue() (pgtype.Timestamp, error) {
	if dt.IsZero() {
		return pgtype.Timestamp{}, nil
	}
	return pgtype.Timestamp{Time: dt.In(time.UTC), Valid: true}, nil
}

// Scan implements sql.Scanner.
func (dt *DateTime) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*dt = DateTime{}
	case DateTime:
		*dt = v
	case time.Time:
		*dt = DateTimeOf(v)
	case string:
		p, err := ParseDateTime(v)
		if err != nil {
			return err
		}
		*dt = p
	default:
		return fmt.Errorf("cannot scan %T into civil.DateTime", src)
	}
	return nil
}

// Value implements driver.Valuer.
func (dt DateTime) Value() (driver.Value, error) {
	if dt.IsZero() {
		return nil, nil
	}
	return dt.In(time.UTC), nil
}
