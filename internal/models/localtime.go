package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

// TimeLayout is the timestamp format used in JSON payloads and timestamp
// columns: "YYYY-MM-DD HH:mm:ss" in server-local time, not ISO-8601 UTC.
const TimeLayout = "2006-01-02 15:04:05"

// LocalTime wraps time.Time to serialize in TimeLayout.
type LocalTime struct {
	time.Time
}

// NewLocalTime converts t to the server-local zone.
func NewLocalTime(t time.Time) LocalTime {
	return LocalTime{t.Local()}
}

// MarshalJSON renders the timestamp as a TimeLayout string, or null when zero.
func (t LocalTime) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + t.Local().Format(TimeLayout) + `"`), nil
}

// UnmarshalJSON parses a TimeLayout string in the server-local zone.
func (t *LocalTime) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		t.Time = time.Time{}
		return nil
	}
	parsed, err := time.ParseInLocation(TimeLayout, s, time.Local)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

// Value implements driver.Valuer.
func (t LocalTime) Value() (driver.Value, error) {
	if t.IsZero() {
		return nil, nil
	}
	return t.Time, nil
}

// Scan implements sql.Scanner.
func (t *LocalTime) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		t.Time = time.Time{}
		return nil
	case time.Time:
		t.Time = v.Local()
		return nil
	case []byte:
		return t.parse(string(v))
	case string:
		return t.parse(v)
	}
	return fmt.Errorf("cannot scan %T into LocalTime", value)
}

func (t *LocalTime) parse(s string) error {
	parsed, err := time.ParseInLocation(TimeLayout, s, time.Local)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}
