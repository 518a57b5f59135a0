package daterange

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/sentineleye/dashboard/pkg/errors"
)

// ErrInvalidInput is returned when a date string cannot be parsed.
var ErrInvalidInput = apperrors.ErrInvalidInput

// chineseLayouts are tried in order by FormatDateChinese.
var chineseLayouts = []string{
	DayLayout,
	"2006/01/02",
	DotLayout,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// FormatDate renders t as zero-padded YYYY-MM-DD using the calendar day in
// t's own location.
func FormatDate(t time.Time) string {
	y, m, d := t.Date()
	return fmt.Sprintf("%04d-%02d-%02d", y, int(m), d)
}

// ParseDate is the inverse of FormatDate. The result is midnight of that day
// in loc (time.Local when loc is nil).
func ParseDate(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(DayLayout, strings.TrimSpace(value), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q is not a YYYY-MM-DD date", ErrInvalidInput, value)
	}
	return t, nil
}

// FormatDateChinese renders a date string as "2024年3月14日" with unpadded
// components. Timestamps keep the calendar day of the offset they were
// written in.
func FormatDateChinese(value string) (string, error) {
	value = strings.TrimSpace(value)
	for _, layout := range chineseLayouts {
		t, err := time.Parse(layout, value)
		if err != nil {
			continue
		}
		y, m, d := t.Date()
		return fmt.Sprintf("%d年%d月%d日", y, int(m), d), nil
	}
	return "", fmt.Errorf("%w: unrecognised date %q", ErrInvalidInput, value)
}
