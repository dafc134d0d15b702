package timetable

import "fmt"

// FormatError reports unparseable date-range text or a malformed date.
// It aborts the whole extraction.
type FormatError struct {
	Text   string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("format error: %s: %q", e.Reason, e.Text)
}

// StructureError reports a missing timetable element, header row or expected
// column. It aborts the whole extraction.
type StructureError struct {
	Reason string
}

func (e *StructureError) Error() string {
	return "structure error: " + e.Reason
}

// TimeParseError reports a block without a recoverable time token. The block
// is dropped and the scan continues; this error never aborts a run.
type TimeParseError struct {
	Subject string
}

func (e *TimeParseError) Error() string {
	return fmt.Sprintf("no parseable time for %q", e.Subject)
}
