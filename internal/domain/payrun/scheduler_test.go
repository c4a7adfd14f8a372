package payrun

import (
	"testing"
	"time"
)

var central = time.FixedZone("CST", -6*60*60)

// mkTime builds an instant in the reference zone for readability.
func mkTime(year int, month time.Month, day, hour, min int) time.Time {
	return time.Date(year, month, day, hour, min, 0, 0, central)
}

func TestNextPayDate_CutoffRule(t *testing.T) {
	// 2026-08-30 is a Sunday; 2026-09-04 and 2026-09-11 are Fridays.
	tests := []struct {
		name string
		in   time.Time
		want string
	}{
		{"sunday", mkTime(2026, time.August, 30, 12, 0), "2026-09-04"},
		{"monday", mkTime(2026, time.August, 31, 23, 59), "2026-09-04"},
		{"tuesday morning", mkTime(2026, time.September, 1, 9, 0), "2026-09-04"},
		{"tuesday 14:59", mkTime(2026, time.September, 1, 14, 59), "2026-09-04"},
		{"tuesday 15:00 exactly", mkTime(2026, time.September, 1, 15, 0), "2026-09-11"},
		{"tuesday evening", mkTime(2026, time.September, 1, 20, 0), "2026-09-11"},
		{"wednesday", mkTime(2026, time.September, 2, 8, 0), "2026-09-11"},
		{"thursday", mkTime(2026, time.September, 3, 16, 30), "2026-09-11"},
		{"friday rolls to following friday", mkTime(2026, time.September, 4, 7, 0), "2026-09-11"},
		{"friday late", mkTime(2026, time.September, 4, 23, 0), "2026-09-11"},
		{"saturday", mkTime(2026, time.September, 5, 10, 0), "2026-09-11"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextPayDate(tt.in, central)

			if got.Weekday() != time.Friday {
				t.Errorf("NextPayDate() fell on %s, want Friday", got.Weekday())
			}
			if FormatDate(got) != tt.want {
				t.Errorf("NextPayDate(%s) = %s, want %s", tt.in, FormatDate(got), tt.want)
			}

			h, m, s := got.Clock()
			if h != 0 || m != 0 || s != 0 {
				t.Errorf("NextPayDate() = %s, want local midnight", got)
			}
		})
	}
}

func TestNextPayDate_ConvertsToReferenceZone(t *testing.T) {
	// Tuesday 20:30 UTC is Tuesday 14:30 in the reference zone, still before
	// the cutoff.
	in := time.Date(2026, time.September, 1, 20, 30, 0, 0, time.UTC)
	got := NextPayDate(in, central)
	if FormatDate(got) != "2026-09-04" {
		t.Errorf("NextPayDate(%s) = %s, want 2026-09-04", in, FormatDate(got))
	}
}

func TestDateRoundTrip(t *testing.T) {
	orig := NextPayDate(mkTime(2026, time.September, 2, 8, 0), central)

	parsed, err := ParseDate(FormatDate(orig), central)
	if err != nil {
		t.Fatalf("ParseDate() error: %v", err)
	}
	if !parsed.Equal(orig) {
		t.Errorf("round trip = %s, want %s", parsed, orig)
	}
}

func TestNextPayDate_NeverSameDay(t *testing.T) {
	for day := 0; day < 14; day++ {
		in := mkTime(2026, time.September, 1+day, 11, 0)
		got := NextPayDate(in, central)
		if got.Year() == in.Year() && got.YearDay() == in.YearDay() {
			t.Errorf("NextPayDate(%s) returned the same day", in)
		}
		if !got.After(in.Truncate(24 * time.Hour)) {
			t.Errorf("NextPayDate(%s) = %s is not in the future", in, got)
		}
	}
}
