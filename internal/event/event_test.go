package event

import (
	"testing"
	"time"
)

func TestNewKeyNormalizesZone(t *testing.T) {
	start := time.Date(2024, 7, 1, 8, 0, 0, 0, Location)
	end := start.Add(90 * time.Minute)

	local := NewKey("Môn A", start, end, "A.101")
	utc := NewKey("Môn A", start.UTC(), end.UTC(), "A.101")
	if local != utc {
		t.Errorf("key differs by zone: %+v vs %+v", local, utc)
	}
	if local.Start != "2024-07-01T08:00:00+07:00" {
		t.Errorf("key start = %q", local.Start)
	}
}

func TestNewKeyTrimsRoom(t *testing.T) {
	start := time.Date(2024, 7, 1, 8, 0, 0, 0, Location)
	a := NewKey("Môn A", start, start, "  A.101 ")
	b := NewKey("Môn A", start, start, "A.101")
	if a != b {
		t.Errorf("room whitespace affects key: %+v vs %+v", a, b)
	}
}

func TestScheduleAndExistingKeysAgree(t *testing.T) {
	start := time.Date(2024, 7, 1, 8, 0, 0, 0, Location)
	end := start.Add(90 * time.Minute)

	scheduled := &ScheduleEvent{Subject: "Môn A", Room: "A.101", Start: start, End: end}
	existing := &ExistingEvent{Summary: "Môn A", Location: "A.101", Start: start.UTC(), End: end.UTC()}
	if scheduled.Key() != existing.Key() {
		t.Errorf("keys disagree: %+v vs %+v", scheduled.Key(), existing.Key())
	}

	other := &ExistingEvent{Summary: "Môn A", Location: "B.202", Start: start, End: end}
	if scheduled.Key() == other.Key() {
		t.Error("different rooms produced equal keys")
	}
}

func TestUIDStable(t *testing.T) {
	start := time.Date(2024, 7, 1, 8, 0, 0, 0, Location)
	evt := &ScheduleEvent{Subject: "Môn A", Room: "A.101", Start: start, End: start.Add(time.Hour)}
	if evt.UID() != evt.UID() {
		t.Error("UID not deterministic")
	}

	moved := &ScheduleEvent{Subject: "Môn A", Room: "A.101", Start: start.Add(time.Hour), End: start.Add(2 * time.Hour)}
	if evt.UID() == moved.UID() {
		t.Error("distinct events share a UID")
	}
}

func TestWeekWindowBounds(t *testing.T) {
	week := WeekWindow{
		Start:     time.Date(2024, 7, 1, 0, 0, 0, 0, Location),
		StartText: "01/07/2024",
		EndText:   "07/07/2024",
	}
	min, max, err := week.Bounds()
	if err != nil {
		t.Fatalf("Bounds failed: %v", err)
	}
	if got := min.Format(time.RFC3339); got != "2024-07-01T00:00:00+07:00" {
		t.Errorf("min = %s", got)
	}
	if got := max.Format(time.RFC3339); got != "2024-07-07T23:59:59+07:00" {
		t.Errorf("max = %s", got)
	}
}

func TestWeekWindowBoundsBadEndText(t *testing.T) {
	week := WeekWindow{EndText: "garbage"}
	if _, _, err := week.Bounds(); err == nil {
		t.Error("expected error for unparseable end text")
	}
}
