package event

import (
	"strings"
	"time"
)

// TimezoneName is the IANA zone attached to calendar writes.
const TimezoneName = "Asia/Ho_Chi_Minh"

// Location is the fixed civil offset for the institution. The extractor and
// the remote index both resolve into this zone; the host zone is never used.
var Location = time.FixedZone("ICT", 7*60*60)

// ScheduleEvent is one class session extracted from the timetable.
type ScheduleEvent struct {
	Date          string    `json:"date"`     // DD/MM/YYYY, for display
	DayLabel      string    `json:"day_name"` // source day-of-week token, e.g. "THỨ 2"
	Room          string    `json:"room"`
	Subject       string    `json:"subject"`
	TimeRangeText string    `json:"time_range"`
	Periods       string    `json:"periods,omitempty"`
	Teacher       string    `json:"teacher,omitempty"`
	LocationNote  string    `json:"location,omitempty"` // campus/site, distinct from Room
	Start         time.Time `json:"start_datetime"`
	End           time.Time `json:"end_datetime"`
	StartOnly     bool      `json:"start_only,omitempty"` // block carried no end time
}

// ExistingEvent is a point-in-time view of one event already on the remote
// calendar. It is never mutated; it only feeds the reconciliation index.
type ExistingEvent struct {
	Summary  string
	Start    time.Time
	End      time.Time
	Location string
}

// Key is the composite identity tuple used to compare extracted events against
// the remote snapshot. Times are carried as RFC 3339 strings in the
// institution's offset so keys built from either source compare equal.
type Key struct {
	Subject string
	Start   string
	End     string
	Room    string
}

// NewKey builds a key from its raw fields, normalizing the room.
func NewKey(subject string, start, end time.Time, room string) Key {
	return Key{
		Subject: subject,
		Start:   start.In(Location).Format(time.RFC3339),
		End:     end.In(Location).Format(time.RFC3339),
		Room:    strings.TrimSpace(room),
	}
}

// Key returns the event's composite identity key.
func (e *ScheduleEvent) Key() Key {
	return NewKey(e.Subject, e.Start, e.End, e.Room)
}

// Key returns the remote event's composite identity key.
func (e *ExistingEvent) Key() Key {
	return NewKey(e.Summary, e.Start, e.End, e.Location)
}
