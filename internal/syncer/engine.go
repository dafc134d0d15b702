package syncer

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/locnguyen/uel-calendar-sync/internal/event"
	"github.com/locnguyen/uel-calendar-sync/internal/gcal"
	"github.com/locnguyen/uel-calendar-sync/internal/logger"
)

// DefaultReminderMinutes is the popup reminder attached to every insert.
const DefaultReminderMinutes = 15

// Calendar is the remote transport the engine dispatches through.
type Calendar interface {
	ListEvents(timeMin, timeMax time.Time) ([]event.ExistingEvent, error)
	InsertBatch(ops []gcal.InsertOp, cb func(correlationID string, err error)) error
}

// Summary is the aggregate result returned to the caller after one sync.
type Summary struct {
	Message        string  `json:"message"`
	Week           string  `json:"week"`
	Added          int     `json:"added"`
	Skipped        int     `json:"skipped"`
	Errors         int     `json:"errors"`
	ProcessingTime float64 `json:"processing_time"`
}

// Engine reconciles one week's extracted events against the remote calendar.
type Engine struct {
	cal             Calendar
	palette         []string
	reminderMinutes int
}

// New creates an engine with the default palette and reminder policy.
func New(cal Calendar) *Engine {
	return &Engine{
		cal:             cal,
		palette:         DefaultPalette,
		reminderMinutes: DefaultReminderMinutes,
	}
}

// NewWithOptions creates an engine with a custom palette and reminder policy.
func NewWithOptions(cal Calendar, palette []string, reminderMinutes int) *Engine {
	e := New(cal)
	if len(palette) > 0 {
		e.palette = palette
	}
	if reminderMinutes > 0 {
		e.reminderMinutes = reminderMinutes
	}
	return e
}

// outcome holds the per-item batch counters. The mutex guards against
// transports that deliver completion callbacks from worker goroutines.
type outcome struct {
	mu     sync.Mutex
	added  int
	errors int
}

func (o *outcome) record(correlationID string, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err != nil {
		o.errors++
		logger.Error("batch item failed", logger.Fields{"correlation_id": correlationID}, err)
		return
	}
	o.added++
	logger.Debug("batch item inserted", logger.Fields{"correlation_id": correlationID})
}

func (o *outcome) addErrors(n int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.errors += n
}

func (o *outcome) counts() (added, errors int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.added, o.errors
}

// Sync diffs the extracted events against the week's remote snapshot, inserts
// the complement as one batch and returns the aggregate summary.
//
// A failed snapshot read aborts the sync before anything is written. A
// wholesale batch failure counts every unresolved operation as an error; the
// summary is still produced.
func (e *Engine) Sync(events []*event.ScheduleEvent, week event.WeekWindow) (*Summary, error) {
	started := time.Now()

	if len(events) == 0 {
		return &Summary{
			Message:        fmt.Sprintf("No events extracted for %s.", week.Label()),
			Week:           week.Label(),
			ProcessingTime: elapsedSeconds(started),
		}, nil
	}

	timeMin, timeMax, err := week.Bounds()
	if err != nil {
		return nil, fmt.Errorf("resolving week bounds: %w", err)
	}

	existing, err := e.cal.ListEvents(timeMin, timeMax)
	if err != nil {
		return nil, err
	}
	index := BuildIndex(existing)

	colors := NewColorAssigner(e.palette)
	var ops []gcal.InsertOp
	skipped := 0

	for i, evt := range events {
		if index.Has(evt.Key()) {
			skipped++
			logger.Info("event already on calendar, skipping", logger.Fields{
				"subject": evt.Subject,
				"start":   evt.Start.Format(time.RFC3339),
			})
			continue
		}
		ops = append(ops, e.buildInsert(i+1, evt, colors))
	}

	var result outcome
	if len(ops) > 0 {
		logger.Info("dispatching batch insert", logger.Fields{"operations": len(ops)})
		if err := e.cal.InsertBatch(ops, result.record); err != nil {
			added, errored := result.counts()
			pending := len(ops) - added - errored
			result.addErrors(pending)
			logger.Error("batch transport failed, pending operations counted as errors", logger.Fields{
				"pending": pending,
			}, err)
		}
	}

	added, errors := result.counts()
	summary := &Summary{
		Message:        fmt.Sprintf("Sync complete for %s.", week.Label()),
		Week:           week.Label(),
		Added:          added,
		Skipped:        skipped,
		Errors:         errors,
		ProcessingTime: elapsedSeconds(started),
	}
	logger.Info("sync done", logger.Fields{
		"week":    summary.Week,
		"added":   summary.Added,
		"skipped": summary.Skipped,
		"errors":  summary.Errors,
	})
	logger.AddCounter("sync.added", int64(summary.Added))
	logger.AddCounter("sync.skipped", int64(summary.Skipped))
	logger.AddCounter("sync.errors", int64(summary.Errors))
	logger.RecordTiming("sync.total", time.Since(started))
	return summary, nil
}

// buildInsert constructs the insert operation for one event. The ordinal is
// the event's 1-based position in the extracted list; skipped events still
// consume ordinals so correlation ids line up with extraction order.
func (e *Engine) buildInsert(ordinal int, evt *event.ScheduleEvent, colors *ColorAssigner) gcal.InsertOp {
	return gcal.InsertOp{
		CorrelationID: fmt.Sprintf("event-%d-%s", ordinal, subjectPrefix(evt.Subject, 10)),
		Body: gcal.EventBody{
			Summary:     evt.Subject,
			Location:    evt.Room,
			Description: BuildDescription(evt),
			Start: gcal.EventDateTime{
				DateTime: evt.Start.Format(time.RFC3339),
				TimeZone: event.TimezoneName,
			},
			End: gcal.EventDateTime{
				DateTime: evt.End.Format(time.RFC3339),
				TimeZone: event.TimezoneName,
			},
			ColorID: colors.Color(evt.Subject),
			Reminders: gcal.Reminders{
				UseDefault: false,
				Overrides: []gcal.ReminderOverride{
					{Method: "popup", Minutes: e.reminderMinutes},
				},
			},
		},
	}
}

// subjectPrefix returns the first n runes of a subject for correlation ids.
func subjectPrefix(s string, n int) string {
	runes := []rune(s)
	if len(runes) > n {
		runes = runes[:n]
	}
	return string(runes)
}

// elapsedSeconds reports seconds since start, rounded to two decimals the way
// the summary payload displays it.
func elapsedSeconds(start time.Time) float64 {
	return math.Round(time.Since(start).Seconds()*100) / 100
}
