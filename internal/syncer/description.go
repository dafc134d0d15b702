package syncer

import (
	"fmt"

	"github.com/locnguyen/uel-calendar-sync/internal/event"
)

// startOnlyNote flags events extracted from a block that carried no end time.
const startOnlyNote = "\n(Chỉ giờ BĐ)"

// BuildDescription composes the calendar event description from the block's
// optional fields, in the timetable's own labels: teacher (GV), campus (CS),
// periods (Tiết) and room (Phòng).
func BuildDescription(e *event.ScheduleEvent) string {
	periodsText := ""
	if e.Periods != "" {
		periodsText = "\nTiết: " + e.Periods
	}
	extra := ""
	if e.StartOnly {
		extra = startOnlyNote
	}
	return fmt.Sprintf("GV: %s\nCS: %s%s\nPhòng: %s%s",
		orNA(e.Teacher), orNA(e.LocationNote), periodsText, e.Room, extra)
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
