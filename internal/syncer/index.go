package syncer

import "github.com/locnguyen/uel-calendar-sync/internal/event"

// Index is the lookup set of events already present on the remote calendar
// for the target week, keyed by composite identity. It is read-only for the
// duration of one reconciliation pass.
type Index map[event.Key]struct{}

// BuildIndex builds the index from a remote snapshot.
func BuildIndex(existing []event.ExistingEvent) Index {
	ix := make(Index, len(existing))
	for i := range existing {
		ix[existing[i].Key()] = struct{}{}
	}
	return ix
}

// Has reports whether an event with the given key already exists remotely.
func (ix Index) Has(k event.Key) bool {
	_, ok := ix[k]
	return ok
}
