// Package timetable extracts class-schedule events from the UEL student portal
// timetable HTML.
//
// The timetable package locates the timetable element by its fixed id, maps the
// header row onto a room column and weekday columns, splits every cell into
// hr-separated schedule blocks, classifies block lines into subject, time
// range, periods, teacher and campus, and resolves day labels plus clock
// tokens into absolute timestamps in the institution's +07:00 offset. Events
// carrying a duplicate (subject, start, end, room) key within one run are
// dropped.
package timetable
