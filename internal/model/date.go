package model

import (
	"fmt"
	"strings"
	"time"
)

// DateLayouts are the accepted front-matter date formats, tried in order.
var DateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Date is a front-matter calendar date. It remembers the layout it was
// parsed from so it serializes back to the same text.
type Date struct {
	time.Time
	layout string
}

// NewDate returns a date-only Date for the given day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC), layout: "2006-01-02"}
}

// ParseDate parses s with the first matching layout in DateLayouts.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, fmt.Errorf("empty date")
	}
	for _, layout := range DateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return Date{Time: t, layout: layout}, nil
		}
	}
	return Date{}, fmt.Errorf("date %q does not match YYYY-MM-DD or RFC3339", s)
}

// String formats the date with its original layout.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	layout := d.layout
	if layout == "" {
		layout = "2006-01-02"
	}
	return d.Format(layout)
}

// Equal reports whether both dates denote the same instant.
func (d Date) Equal(o Date) bool {
	return d.Time.Equal(o.Time)
}

// UnmarshalYAML accepts quoted and unquoted timestamps.
func (d *Date) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw interface{}
	if err := unmarshal(&raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case nil:
		*d = Date{}
		return nil
	case string:
		parsed, err := ParseDate(v)
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	case time.Time:
		*d = Date{Time: v, layout: time.RFC3339}
		return nil
	default:
		return fmt.Errorf("date must be a string, got %T", raw)
	}
}

// MarshalYAML writes the date in its original layout.
func (d Date) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}
