package event

import "time"

// DateLayout is the display layout used by the timetable for calendar days.
const DateLayout = "02/01/2006"

// WeekWindow is the seven-day range one sync operates over. StartText and
// EndText keep the literal strings from the source sentence so summaries
// round-trip exactly; Start is the parsed first day at midnight in Location.
type WeekWindow struct {
	Start     time.Time `json:"-"`
	StartText string    `json:"week_start"`
	EndText   string    `json:"week_end"`
}

// Label renders the window the way user-facing summaries show it,
// e.g. "01/07/2024-07/07/2024".
func (w WeekWindow) Label() string {
	return w.StartText + "-" + w.EndText
}

// Bounds returns the inclusive query range for the remote snapshot:
// week start at 00:00:00 through week end at 23:59:59, both in Location.
func (w WeekWindow) Bounds() (time.Time, time.Time, error) {
	end, err := time.ParseInLocation(DateLayout, w.EndText, Location)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	min := w.Start
	max := end.Add(23*time.Hour + 59*time.Minute + 59*time.Second)
	return min, max, nil
}
