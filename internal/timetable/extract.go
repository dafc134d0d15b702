package timetable

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/locnguyen/uel-calendar-sync/internal/event"
	"github.com/locnguyen/uel-calendar-sync/internal/logger"
)

// DefaultTableID is the fixed element id of the timetable on the UEL portal.
const DefaultTableID = "portlet_3750a397-90f5-4478-b67c-a8f0a1a4060b_ctl00_tblThoiKhoaBieu"

// dateRangePattern extracts the two DD/MM/YYYY dates from the week sentence
// "Từ ngày 01/07/2024 đến ngày 07/07/2024".
var dateRangePattern = regexp.MustCompile(`(?i)Từ ngày\s*(\d{2}/\d{2}/\d{4})\s*đến ngày\s*(\d{2}/\d{2}/\d{4})`)

// Extractor drives the timetable scan: header detection, row/column mapping
// and per-cell block parsing.
type Extractor struct {
	tableID string
}

// New creates an Extractor bound to the portal's default table id.
func New() *Extractor {
	return NewWithTableID(DefaultTableID)
}

// NewWithTableID creates an Extractor looking up the timetable by a custom id.
func NewWithTableID(tableID string) *Extractor {
	return &Extractor{tableID: tableID}
}

// ParseWeekRange resolves the free-text date-range sentence into a WeekWindow.
func ParseWeekRange(dateRangeText string) (event.WeekWindow, error) {
	m := dateRangePattern.FindStringSubmatch(dateRangeText)
	if m == nil {
		return event.WeekWindow{}, &FormatError{Text: dateRangeText, Reason: "date range sentence not recognized"}
	}
	startText, endText := m[1], m[2]

	start, err := time.ParseInLocation(event.DateLayout, startText, event.Location)
	if err != nil {
		return event.WeekWindow{}, &FormatError{Text: startText, Reason: "invalid start date"}
	}

	return event.WeekWindow{Start: start, StartText: startText, EndText: endText}, nil
}

// dayColumn maps one recognized weekday header onto its cell index.
type dayColumn struct {
	label string
	index int
}

// Extract parses the timetable HTML against the week described by
// dateRangeText and returns the ordered, de-duplicated schedule events plus
// the week window. A table with fewer than two rows is a valid empty result.
func (x *Extractor) Extract(timetableHTML, dateRangeText string) ([]*event.ScheduleEvent, event.WeekWindow, error) {
	week, err := ParseWeekRange(dateRangeText)
	if err != nil {
		return nil, event.WeekWindow{}, err
	}
	logger.Info("parsed week range", logger.Fields{"week": week.Label()})

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(timetableHTML))
	if err != nil {
		return nil, event.WeekWindow{}, fmt.Errorf("parsing HTML: %w", err)
	}

	table := doc.Find(fmt.Sprintf("table[id=%q]", x.tableID))
	if table.Length() == 0 {
		return nil, event.WeekWindow{}, &StructureError{Reason: fmt.Sprintf("timetable not found (id %q)", x.tableID)}
	}

	rows := table.Find("tr")
	if rows.Length() < 2 {
		return []*event.ScheduleEvent{}, week, nil
	}

	roomIndex, dayColumns, err := parseHeader(rows.First())
	if err != nil {
		return nil, event.WeekWindow{}, err
	}

	events := make([]*event.ScheduleEvent, 0)
	seen := make(map[event.Key]struct{})
	duplicates := 0

	rows.Slice(1, rows.Length()).Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() <= roomIndex {
			return
		}
		room := strings.TrimSpace(cells.Eq(roomIndex).Text())
		if strings.TrimSpace(strings.ReplaceAll(room, "\u00a0", "")) == "" || room == "N/A" {
			return
		}

		for _, col := range dayColumns {
			if col.index >= cells.Length() {
				continue
			}
			cellHTML, err := cells.Eq(col.index).Html()
			if err != nil {
				continue
			}

			for block := range Blocks(cellHTML) {
				evt := x.parseBlock(block, col.label, room, week)
				if evt == nil {
					continue
				}
				key := evt.Key()
				if _, dup := seen[key]; dup {
					duplicates++
					logger.Warn("duplicate schedule block dropped", logger.Fields{
						"subject": evt.Subject,
						"start":   key.Start,
						"room":    key.Room,
					})
					continue
				}
				seen[key] = struct{}{}
				events = append(events, evt)
			}
		}
	})

	logger.Info("extraction done", logger.Fields{
		"week":       week.Label(),
		"events":     len(events),
		"duplicates": duplicates,
	})
	return events, week, nil
}

// parseHeader reads the first row's cell texts and locates the room column and
// the recognized weekday columns, preserving header order.
func parseHeader(header *goquery.Selection) (int, []dayColumn, error) {
	known := make(map[string]bool, len(Weekdays))
	for _, d := range Weekdays {
		known[d] = true
	}

	roomIndex := -1
	var columns []dayColumn
	header.Find("td,th").Each(func(i int, cell *goquery.Selection) {
		text := strings.ToUpper(strings.TrimSpace(cell.Text()))
		switch {
		case text == roomHeader:
			roomIndex = i
		case known[text]:
			columns = append(columns, dayColumn{label: text, index: i})
		}
	})

	if roomIndex == -1 {
		return 0, nil, &StructureError{Reason: fmt.Sprintf("missing %q header", roomHeader)}
	}
	if len(columns) == 0 {
		return 0, nil, &StructureError{Reason: "no weekday headers found"}
	}
	return roomIndex, columns, nil
}

// parseBlock turns one cell block into a ScheduleEvent, or nil when the block
// cannot become an event. Per-block failures never abort the scan.
func (x *Extractor) parseBlock(block, dayLabel, room string, week event.WeekWindow) *event.ScheduleEvent {
	lines := blockLines(block)
	if len(lines) == 0 {
		return nil
	}

	f := ExtractFields(lines)
	if !f.HasTime() {
		err := &TimeParseError{Subject: f.Subject}
		logger.Warn("block skipped", logger.Fields{
			"error": err.Error(),
			"lines": lines,
		})
		return nil
	}
	if f.Periods == "" {
		logger.Warn("block without periods label", logger.Fields{"subject": f.Subject})
	}

	start, end, startOnly, err := ResolveTimes(dayLabel, week.Start, f.StartToken, f.EndToken)
	if err != nil {
		logger.Error("resolving block times failed", logger.Fields{"subject": f.Subject}, err)
		return nil
	}

	return &event.ScheduleEvent{
		Date:          start.Format(event.DateLayout),
		DayLabel:      dayLabel,
		Room:          room,
		Subject:       f.Subject,
		TimeRangeText: f.TimeRangeText,
		Periods:       f.Periods,
		Teacher:       f.Teacher,
		LocationNote:  f.Campus,
		Start:         start,
		End:           end,
		StartOnly:     startOnly,
	}
}
