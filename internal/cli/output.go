package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/locnguyen/uel-calendar-sync/internal/event"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// OutputResult contains data to be output
type OutputResult struct {
	Week       event.WeekWindow       `json:"week"`
	Events     []*event.ScheduleEvent `json:"events"`
	EventCount int                    `json:"event_count"`
}

// WriteOutput writes the result in the specified format
func WriteOutput(w io.Writer, result *OutputResult, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		return writeText(w, result)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs results as JSON
func writeJSON(w io.Writer, result *OutputResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// writeText outputs results as human-readable text
func writeText(w io.Writer, result *OutputResult) error {
	fmt.Fprintf(w, "Week %s: %d events\n", result.Week.Label(), result.EventCount)

	for _, evt := range result.Events {
		fmt.Fprintf(w, "  %s %s  %s  %s", evt.DayLabel, evt.Date, evt.TimeRangeText, evt.Subject)
		if evt.Room != "" {
			fmt.Fprintf(w, "  [%s]", evt.Room)
		}
		if evt.StartOnly {
			fmt.Fprint(w, "  (chỉ giờ BĐ)")
		}
		fmt.Fprintln(w)
		if evt.Teacher != "" {
			fmt.Fprintf(w, "      GV: %s\n", evt.Teacher)
		}
		if evt.Periods != "" {
			fmt.Fprintf(w, "      Tiết: %s\n", evt.Periods)
		}
	}
	return nil
}
