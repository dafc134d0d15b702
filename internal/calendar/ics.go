// Package calendar renders an extracted week as an iCalendar document, for
// use outside the Google sync path (manual import, other calendar apps).
package calendar

import (
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/locnguyen/uel-calendar-sync/internal/event"
	"github.com/locnguyen/uel-calendar-sync/internal/syncer"
)

const prodID = "-//UEL Calendar Sync//uel-sync//VI"

// WeekICS renders the events of one extracted week as an .ics document.
// Event UIDs are derived from the composite key, so re-importing the same
// week updates rather than duplicates.
func WeekICS(events []*event.ScheduleEvent, week event.WeekWindow) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(prodID)
	cal.SetXWRCalDesc(fmt.Sprintf("Thời khóa biểu %s", week.Label()))

	now := time.Now()
	for _, evt := range events {
		e := cal.AddEvent(evt.UID() + "@uel-calendar-sync")
		e.SetDtStampTime(now)
		e.SetStartAt(evt.Start)
		e.SetEndAt(evt.End)
		e.SetSummary(evt.Subject)
		e.SetLocation(evt.Room)
		e.SetDescription(syncer.BuildDescription(evt))
	}

	return cal.Serialize()
}
