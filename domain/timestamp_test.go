package domain

import (
	"encoding/json"
	"testing"
	"time"
)

func TestTimestampScan(t *testing.T) {
	want := time.Date(2024, 5, 1, 8, 30, 0, 0, time.UTC)
	tests := []struct {
		name string
		src  any
	}{
		{"storage text", "2024-05-01 08:30:00"},
		{"rfc3339", "2024-05-01T08:30:00Z"},
		{"bytes", []byte("2024-05-01 08:30:00")},
		{"time", time.Date(2024, 5, 1, 15, 30, 0, 0, time.FixedZone("ICT", 7*3600))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ts Timestamp
			if err := ts.Scan(tt.src); err != nil {
				t.Fatalf("Scan: %v", err)
			}
			if !ts.Equal(want) {
				t.Errorf("got %v, want %v", ts.Time, want)
			}
		})
	}
}

func TestTimestampRejectsGarbage(t *testing.T) {
	var ts Timestamp
	if err := ts.Scan("yesterday"); err == nil {
		t.Fatal("expected error")
	}
	if err := ts.Scan(42); err == nil {
		t.Fatal("expected error for int")
	}
}

func TestTimestampJSON(t *testing.T) {
	var ts Timestamp
	if err := json.Unmarshal([]byte(`"2024-02-29"`), &ts); err != nil {
		t.Fatal(err)
	}
	out, err := json.Marshal(ts)
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != `"2024-02-29T00:00:00Z"` {
		t.Errorf("got %s", out)
	}
	v, _ := ts.Value()
	if v != "2024-02-29 00:00:00" {
		t.Errorf("Value = %v", v)
	}
	zero, _ := json.Marshal(Timestamp{})
	if string(zero) != "null" {
		t.Errorf("zero marshals to %s", zero)
	}
}
