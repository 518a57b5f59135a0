package daterange

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
	_ "time/tzdata"
)

func mustLoad(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	if err != nil {
		t.Fatalf("loading %s: %v", name, err)
	}
	return loc
}

func TestCurrentWeekRangeScenarios(t *testing.T) {
	shanghai := mustLoad(t, "Asia/Shanghai")
	cases := []struct {
		name      string
		now       time.Time
		startDate string
		endDate   string
	}{
		{"thursday", time.Date(2024, 3, 14, 15, 30, 0, 0, shanghai), "2024-03-11", "2024-03-17"},
		{"sunday", time.Date(2024, 3, 10, 9, 0, 0, 0, shanghai), "2024-03-04", "2024-03-10"},
		{"monday midnight", time.Date(2024, 3, 11, 0, 0, 0, 0, shanghai), "2024-03-11", "2024-03-17"},
		{"sunday last millisecond", time.Date(2024, 3, 17, 23, 59, 59, 999_000_000, shanghai), "2024-03-11", "2024-03-17"},
		{"saturday", time.Date(2024, 3, 16, 12, 0, 0, 0, shanghai), "2024-03-11", "2024-03-17"},
		{"across month", time.Date(2024, 1, 31, 8, 0, 0, 0, shanghai), "2024-01-29", "2024-02-04"},
		{"across year", time.Date(2024, 12, 31, 8, 0, 0, 0, shanghai), "2024-12-30", "2025-01-05"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := CurrentWeekRange(tc.now)
			if r.StartDate != tc.startDate {
				t.Errorf("start_date = %s, want %s", r.StartDate, tc.startDate)
			}
			if r.EndDate != tc.endDate {
				t.Errorf("end_date = %s, want %s", r.EndDate, tc.endDate)
			}
			if !r.Contains(tc.now) {
				t.Errorf("range %s does not contain %v", r, tc.now)
			}
		})
	}
}

func TestCurrentWeekRangeInvariants(t *testing.T) {
	shanghai := mustLoad(t, "Asia/Shanghai")
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, shanghai)
	for i := 0; i < 366*4; i++ {
		now = now.Add(6 * time.Hour)
		r := CurrentWeekRange(now)

		if r.Start.Weekday() != time.Monday {
			t.Fatalf("%v: start %v is not a Monday", now, r.Start)
		}
		if r.End.Weekday() != time.Sunday {
			t.Fatalf("%v: end %v is not a Sunday", now, r.End)
		}
		if h, m, s := r.Start.Clock(); h != 0 || m != 0 || s != 0 || r.Start.Nanosecond() != 0 {
			t.Fatalf("%v: start not at midnight: %v", now, r.Start)
		}
		if h, m, s := r.End.Clock(); h != 23 || m != 59 || s != 59 || r.End.Nanosecond() != 999_000_000 {
			t.Fatalf("%v: end not at 23:59:59.999: %v", now, r.End)
		}
		if r.Start.After(now) || r.End.Before(now) {
			t.Fatalf("%v outside [%v, %v]", now, r.Start, r.End)
		}
		if got := r.EndTimestamp - r.StartTimestamp; got != 604799999 {
			t.Fatalf("%v: span = %d ms", now, got)
		}
		if r.StartTimestamp != r.Start.UnixMilli() || r.EndTimestamp != r.End.UnixMilli() {
			t.Fatalf("%v: timestamps do not match bounds", now)
		}
	}
}

func TestCurrentWeekRangeSundayEndsToday(t *testing.T) {
	now := time.Date(2024, 6, 2, 18, 0, 0, 0, time.UTC)
	r := CurrentWeekRange(now)
	if FormatDate(r.End) != FormatDate(now) {
		t.Errorf("sunday week should end today, got %s", r.EndDate)
	}
	if r.StartDate != "2024-05-27" {
		t.Errorf("start_date = %s", r.StartDate)
	}
}

func TestCurrentWeekRangeDST(t *testing.T) {
	ny := mustLoad(t, "America/New_York")
	// Clocks spring forward on Sunday 2024-03-10.
	r := CurrentWeekRange(time.Date(2024, 3, 7, 12, 0, 0, 0, ny))
	if r.StartDate != "2024-03-04" || r.EndDate != "2024-03-10" {
		t.Fatalf("unexpected week %s", r)
	}
	want := int64(604799999 - 3600*1000)
	if got := r.EndTimestamp - r.StartTimestamp; got != want {
		t.Errorf("span across DST = %d, want %d", got, want)
	}
	if r.End.Hour() != 23 || r.Start.Hour() != 0 {
		t.Errorf("bounds drifted: %v %v", r.Start, r.End)
	}
}

func TestPrevious(t *testing.T) {
	ny := mustLoad(t, "America/New_York")
	r := CurrentWeekRange(time.Date(2024, 3, 14, 12, 0, 0, 0, ny))
	prev := r.Previous()
	if prev.StartDate != "2024-03-04" || prev.EndDate != "2024-03-10" {
		t.Errorf("previous week = %s", prev)
	}
	if prev.Start.Hour() != 0 {
		t.Errorf("previous start not at midnight: %v", prev.Start)
	}
}

func TestWeekOf(t *testing.T) {
	r, err := WeekOf("2025.12.14", DotLayout, time.UTC)
	if err != nil {
		t.Fatalf("WeekOf: %v", err)
	}
	start, end := r.Format(DotLayout)
	if start != "2025.12.08" || end != "2025.12.14" {
		t.Errorf("got %s~%s", start, end)
	}

	if _, err := WeekOf("14/12/2025", DotLayout, time.UTC); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestDateRangeJSON(t *testing.T) {
	r := CurrentWeekRange(time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC))
	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var body map[string]any
	if err := json.Unmarshal(data, &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(body) != 4 {
		t.Errorf("expected 4 wire fields, got %v", body)
	}
	if body["start_date"] != "2024-03-11" || body["end_date"] != "2024-03-17" {
		t.Errorf("unexpected body %v", body)
	}
	if int64(body["start_timestamp"].(float64)) != r.StartTimestamp {
		t.Errorf("start_timestamp mismatch")
	}
}

func TestString(t *testing.T) {
	r := CurrentWeekRange(time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC))
	if r.String() != "2024-03-11~2024-03-17" {
		t.Errorf("String() = %s", r.String())
	}
	if r.Duration() != WeekLength {
		t.Errorf("Duration() = %v", r.Duration())
	}
}
