// Package event provides the data model shared by the timetable extractor and
// the calendar sync engine.
//
// The event package defines ScheduleEvent (one class session extracted from the
// timetable), ExistingEvent (one event already present on the remote calendar)
// and the composite identity key used to compare the two lists. Identity is the
// tuple (subject, start, end, room) with the room trimmed of surrounding
// whitespace; two events with the same key are the same class session.
package event
