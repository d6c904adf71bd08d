package timeutil

import (
	"testing"
)

func TestParseTimestampFormats(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"2024-03-15T13:30:00", "2024-03-15 13:30 UTC"},
		{"2024-03-15T13:30:00Z", "2024-03-15 13:30 UTC"},
		{"2024-03-15T13:30:00+00:00", "2024-03-15 13:30 UTC"},
		{"2024-03-15 13:30:00", "2024-03-15 13:30 UTC"},
		{"2024-03-15", "2024-03-15 00:00 UTC"},
	}
	for _, tc := range cases {
		got := ParseTimestamp(tc.in)
		if got == nil {
			t.Errorf("ParseTimestamp(%q) = nil, want %s", tc.in, tc.want)
			continue
		}
		if s := FormatDateTimeUTC(*got); s != tc.want {
			t.Errorf("ParseTimestamp(%q) = %s, want %s", tc.in, s, tc.want)
		}
	}
}

func TestParseTimestampFallsBackToAbsent(t *testing.T) {
	for _, in := range []string{"", "tomorrow", "15/03/2024", "not-a-time"} {
		if got := ParseTimestamp(in); got != nil {
			t.Errorf("ParseTimestamp(%q) = %v, want nil", in, got)
		}
	}
}

func TestParseDateRoundTrip(t *testing.T) {
	d, err := ParseDate("2024-01-02")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	if FormatDate(d) != "2024-01-02" {
		t.Errorf("round trip = %s", FormatDate(d))
	}

	if _, err := ParseDate("02-01-2024"); err == nil {
		t.Error("expected error for non-ISO date")
	}
}
