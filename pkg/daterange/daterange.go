// Package daterange computes the calendar-week boundaries used to scope
// analytics queries and renders dates in the fixed formats the backend
// expects.
//
// All computations happen in the location of the input time. Callers that
// want a specific time zone convert with t.In(loc) before calling.
package daterange

import (
	"fmt"
	"time"
)

// DayLayout is the zero-padded YYYY-MM-DD layout sent to the backend.
const DayLayout = "2006-01-02"

// DotLayout is the YYYY.MM.DD layout used by the report tooling.
const DotLayout = "2006.01.02"

// WeekLength is the span between Start and End of a week without a DST
// transition: 6d 23h 59m 59.999s.
const WeekLength = 7*24*time.Hour - time.Millisecond

// DateRange is a normalized calendar week. Start is Monday 00:00:00.000 and
// End is Sunday 23:59:59.999, both inclusive.
type DateRange struct {
	Start time.Time `json:"-"`
	End   time.Time `json:"-"`

	StartDate      string `json:"start_date"`
	EndDate        string `json:"end_date"`
	StartTimestamp int64  `json:"start_timestamp"`
	EndTimestamp   int64  `json:"end_timestamp"`
}

// CurrentWeekRange returns the Monday-to-Sunday week containing now.
//
// Weekdays follow the Sunday=0 convention, so a Sunday closes the week that
// began six days earlier rather than opening a new one.
func CurrentWeekRange(now time.Time) DateRange {
	dayOfWeek := int(now.Weekday())

	mondayOffset := dayOfWeek - 1
	if dayOfWeek == 0 {
		mondayOffset = 6
	}

	endOffset := 0
	if dayOfWeek != 0 {
		endOffset = 7 - dayOfWeek
	}

	y, m, d := now.Date()
	loc := now.Location()
	start := time.Date(y, m, d-mondayOffset, 0, 0, 0, 0, loc)
	end := time.Date(y, m, d+endOffset, 23, 59, 59, int(999*time.Millisecond), loc)
	return newRange(start, end)
}

// WeekOf parses value with layout in loc and returns the week containing it.
func WeekOf(value, layout string, loc *time.Location) (DateRange, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(layout, value, loc)
	if err != nil {
		return DateRange{}, fmt.Errorf("%w: %q does not match layout %q", ErrInvalidInput, value, layout)
	}
	return CurrentWeekRange(t), nil
}

func newRange(start, end time.Time) DateRange {
	return DateRange{
		Start:          start,
		End:            end,
		StartDate:      FormatDate(start),
		EndDate:        FormatDate(end),
		StartTimestamp: start.UnixMilli(),
		EndTimestamp:   end.UnixMilli(),
	}
}

// Previous returns the week before r. Boundaries are recomputed from
// calendar days so a DST change between the two weeks does not shift them.
func (r DateRange) Previous() DateRange {
	y, m, d := r.Start.Date()
	return CurrentWeekRange(time.Date(y, m, d-7, 12, 0, 0, 0, r.Start.Location()))
}

// Contains reports whether t falls within the range, bounds included.
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// Duration is End minus Start. It equals WeekLength unless a DST
// transition occurs inside the week.
func (r DateRange) Duration() time.Duration {
	return r.End.Sub(r.Start)
}

// Format renders both bounds with layout.
func (r DateRange) Format(layout string) (start, end string) {
	return r.Start.Format(layout), r.End.Format(layout)
}

// String renders the range as "start~end".
func (r DateRange) String() string {
	return r.StartDate + "~" + r.EndDate
}
