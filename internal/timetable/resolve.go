package timetable

import (
	"fmt"
	"strings"
	"time"

	"github.com/locnguyen/uel-calendar-sync/internal/event"
)

// Weekdays is the fixed Monday-first ordering of the timetable's day column
// headers. The column's index in this list is the day offset from week start.
var Weekdays = []string{"THỨ 2", "THỨ 3", "THỨ 4", "THỨ 5", "THỨ 6", "THỨ 7", "CHỦ NHẬT"}

// roomHeader is the normalized text of the room column header.
const roomHeader = "PHÒNG"

// dayOffset returns the day-of-week index for a normalized day label.
func dayOffset(dayLabel string) (int, error) {
	for i, d := range Weekdays {
		if d == dayLabel {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown day label %q", dayLabel)
}

// parseClock parses a clock token of form "8h00" or "08:00", choosing the
// layout by whichever separator is present.
func parseClock(token string) (hour, minute int, err error) {
	layout := "15:04"
	if strings.Contains(token, "h") {
		layout = "15h04"
	}
	t, err := time.Parse(layout, token)
	if err != nil {
		return 0, 0, fmt.Errorf("parsing clock token %q: %w", token, err)
	}
	return t.Hour(), t.Minute(), nil
}

// ResolveTimes combines a day label, the week's start date and the block's
// clock tokens into absolute start/end timestamps in the institution offset.
//
// A missing end token yields end == start with startOnly set. A parsed end at
// or before the start is a data error and is clamped to the start.
func ResolveTimes(dayLabel string, weekStart time.Time, startToken, endToken string) (start, end time.Time, startOnly bool, err error) {
	offset, err := dayOffset(dayLabel)
	if err != nil {
		return time.Time{}, time.Time{}, false, err
	}
	day := weekStart.AddDate(0, 0, offset)

	h, m, err := parseClock(startToken)
	if err != nil {
		return time.Time{}, time.Time{}, false, err
	}
	start = time.Date(day.Year(), day.Month(), day.Day(), h, m, 0, 0, event.Location)

	if endToken == "" {
		return start, start, true, nil
	}

	h, m, err = parseClock(endToken)
	if err != nil {
		return time.Time{}, time.Time{}, false, err
	}
	end = time.Date(day.Year(), day.Month(), day.Day(), h, m, 0, 0, event.Location)
	if !end.After(start) {
		end = start
	}
	return start, end, false, nil
}
