package models

import (
	"bytes"
	"fmt"
	"time"
)

const dateOnly = "2006-01-02"

// ParseDate accepts RFC 3339 timestamps and plain YYYY-MM-DD dates, the
// latter interpreted as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(dateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	return t, nil
}

// FlexibleTime decodes either date form accepted by ParseDate from JSON.
type FlexibleTime struct {
	time.Time
}

func (f *FlexibleTime) UnmarshalJSON(b []byte) error {
	b = bytes.Trim(b, `"`)
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	t, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	f.Time = t
	return nil
}
