package calendar

import (
	"strings"
	"testing"
	"time"

	"github.com/locnguyen/uel-calendar-sync/internal/event"
)

func sampleWeek() event.WeekWindow {
	return event.WeekWindow{
		Start:     time.Date(2024, 7, 1, 0, 0, 0, 0, event.Location),
		StartText: "01/07/2024",
		EndText:   "07/07/2024",
	}
}

func sampleEvent(subject, room string, hour int) *event.ScheduleEvent {
	start := time.Date(2024, 7, 1, hour, 0, 0, 0, event.Location)
	return &event.ScheduleEvent{
		Subject: subject,
		Room:    room,
		Teacher: "Nguyễn Văn A",
		Start:   start,
		End:     start.Add(90 * time.Minute),
	}
}

func TestWeekICS(t *testing.T) {
	events := []*event.ScheduleEvent{
		sampleEvent("Giải thuật nâng cao", "A.101", 8),
		sampleEvent("Kinh tế vi mô", "A.101", 13),
	}

	ics := WeekICS(events, sampleWeek())

	requiredFields := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:" + prodID,
		"METHOD:PUBLISH",
		"BEGIN:VEVENT",
		"DTSTAMP:",
		"DTSTART:",
		"DTEND:",
		"END:VEVENT",
		"END:VCALENDAR",
	}
	for _, field := range requiredFields {
		if !strings.Contains(ics, field) {
			t.Errorf("ICS missing required field: %s", field)
		}
	}

	if got := strings.Count(ics, "BEGIN:VEVENT"); got != 2 {
		t.Errorf("Expected 2 BEGIN:VEVENT, got %d", got)
	}

	for _, evt := range events {
		uid := evt.UID() + "@uel-calendar-sync"
		if !strings.Contains(ics, uid) {
			t.Errorf("Missing UID for event: %s", evt.Subject)
		}
	}

	// Check that lines end with \r\n
	if !strings.Contains(ics, "\r\n") {
		t.Error("ICS should use \\r\\n line endings")
	}
}

func TestWeekICS_StableUIDs(t *testing.T) {
	events := []*event.ScheduleEvent{sampleEvent("Môn A", "A.101", 8)}

	first := WeekICS(events, sampleWeek())
	second := WeekICS(events, sampleWeek())

	uid := events[0].UID() + "@uel-calendar-sync"
	if !strings.Contains(first, uid) || !strings.Contains(second, uid) {
		t.Error("UID should be stable across renders")
	}
}

func TestWeekICS_Empty(t *testing.T) {
	ics := WeekICS(nil, sampleWeek())

	if !strings.Contains(ics, "BEGIN:VCALENDAR") {
		t.Error("Should render a calendar shell for an empty week")
	}
	if strings.Contains(ics, "BEGIN:VEVENT") {
		t.Error("Empty week should contain no events")
	}
}
