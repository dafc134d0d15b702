package event

import (
	"crypto/sha1"
	"fmt"
)

// UID creates a deterministic identifier for the event from its composite
// key, stable across runs for identical timetable input. Used as the ICS UID.
func (e *ScheduleEvent) UID() string {
	k := e.Key()
	h := sha1.New()
	h.Write([]byte(k.Subject + "|" + k.Start + "|" + k.End + "|" + k.Room))
	return fmt.Sprintf("%x", h.Sum(nil))
}
