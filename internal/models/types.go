// Package models holds the entities exchanged with the invoicing backend.
// The same structs are persisted by the development server through gorm, so
// every type carries both json and gorm tags.
package models

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02T15:04:05"
)

// Date is a calendar day serialised as YYYY-MM-DD.
type Date struct{ time.Time }

// NewDate truncates t to its day.
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(strconv.Quote(d.Format(dateLayout))), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s, ok, err := unquote(b)
	if err != nil || !ok {
		d.Time = time.Time{}
		return err
	}
	if len(s) > len(dateLayout) {
		s = s[:len(dateLayout)]
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return fmt.Errorf("date %q: %w", s, err)
	}
	d.Time = t
	return nil
}

func (Date) GormDataType() string { return "date" }

func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.Time, nil
}

func (d *Date) Scan(src any) error {
	t, err := scanTime(src, dateLayout)
	if err != nil {
		return err
	}
	if t.IsZero() {
		d.Time = t
		return nil
	}
	*d = NewDate(t)
	return nil
}

// DateTime is a zone-less local timestamp serialised as YYYY-MM-DDTHH:MM:SS.
type DateTime struct{ time.Time }

// Now returns the current time truncated to the second.
func Now() DateTime { return DateTime{time.Now().Truncate(time.Second)} }

func (d DateTime) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateTimeLayout)
}

func (d DateTime) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(strconv.Quote(d.Format(dateTimeLayout))), nil
}

func (d *DateTime) UnmarshalJSON(b []byte) error {
	s, ok, err := unquote(b)
	if err != nil || !ok {
		d.Time = time.Time{}
		return err
	}
	t, err := parseDateTime(s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

func (DateTime) GormDataType() string { return "time" }

func (d DateTime) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.Time, nil
}

func (d *DateTime) Scan(src any) error {
	t, err := scanTime(src, dateTimeLayout)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

func unquote(b []byte) (string, bool, error) {
	raw := strings.TrimSpace(string(b))
	if raw == "null" || raw == `""` {
		return "", false, nil
	}
	s, err := strconv.Unquote(raw)
	if err != nil {
		return "", false, fmt.Errorf("expected JSON string, got %s", raw)
	}
	return s, s != "", nil
}

func parseDateTime(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02T15:04:05.999999999", time.RFC3339Nano, "2006-01-02 15:04:05.999999999-07:00", "2006-01-02 15:04:05", dateLayout} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("datetime %q: unsupported format", s)
}

func scanTime(src any, layout string) (time.Time, error) {
	switch v := src.(type) {
	case nil:
		return time.Time{}, nil
	case time.Time:
		return v, nil
	case string:
		return parseDateTime(v)
	case []byte:
		return parseDateTime(string(v))
	}
	return time.Time{}, fmt.Errorf("cannot scan %T into %s value", src, layout)
}

// ParseDateTime reads an ISO local timestamp as sent in query strings.
func ParseDateTime(s string) (DateTime, error) {
	t, err := parseDateTime(s)
	return DateTime{t}, err
}
