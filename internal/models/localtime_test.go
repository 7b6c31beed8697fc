package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestLocalTimeMarshalFormat(t *testing.T) {
	lt := NewLocalTime(time.Date(2025, 3, 7, 14, 5, 9, 0, time.Local))

	data, err := json.Marshal(lt)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `"2025-03-07 14:05:09"` {
		t.Errorf("marshal = %s, want \"2025-03-07 14:05:09\"", data)
	}
}

func TestLocalTimeMarshalZero(t *testing.T) {
	var lt LocalTime
	data, err := json.Marshal(lt)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != "null" {
		t.Errorf("zero timestamp = %s, want null", data)
	}
}

func TestLocalTimeRoundTrip(t *testing.T) {
	var lt LocalTime
	if err := json.Unmarshal([]byte(`"2025-12-31 23:59:58"`), &lt); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	want := time.Date(2025, 12, 31, 23, 59, 58, 0, time.Local)
	if !lt.Time.Equal(want) {
		t.Errorf("parsed %v, want %v", lt.Time, want)
	}

	data, err := json.Marshal(lt)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `"2025-12-31 23:59:58"` {
		t.Errorf("round trip = %s", data)
	}
}

func TestLocalTimeUnmarshalNull(t *testing.T) {
	lt := NewLocalTime(time.Now())
	if err := json.Unmarshal([]byte("null"), &lt); err != nil {
		t.Fatalf("unmarshal null: %v", err)
	}
	if !lt.IsZero() {
		t.Error("null must reset the timestamp")
	}
}

func TestLocalTimeUnmarshalRejectsISO(t *testing.T) {
	var lt LocalTime
	if err := json.Unmarshal([]byte(`"2025-03-07T14:05:09Z"`), &lt); err == nil {
		t.Error("ISO-8601 input must be rejected")
	}
}

func TestLocalTimeScan(t *testing.T) {
	var lt LocalTime
	if err := lt.Scan(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)); err != nil {
		t.Fatalf("scan time.Time: %v", err)
	}
	if lt.IsZero() {
		t.Error("scan must populate the value")
	}

	if err := lt.Scan("2024-01-02 03:04:05"); err != nil {
		t.Fatalf("scan string: %v", err)
	}
	if err := lt.Scan(nil); err != nil {
		t.Fatalf("scan nil: %v", err)
	}
	if !lt.IsZero() {
		t.Error("scanning nil must zero the value")
	}

	if err := lt.Scan(42); err == nil {
		t.Error("scanning an int must fail")
	}
}
