// Package syncer reconciles extracted schedule events against the remote
// calendar's existing state and dispatches the missing ones as one batch.
//
// The engine fetches the week's existing events once, indexes them by the
// composite identity key, assigns per-subject colors in first-seen order, and
// builds an insert operation for every extracted event whose key is absent.
// Per-item outcomes arrive through transport callbacks and are folded into
// mutex-guarded counters; a wholesale transport failure counts every pending
// operation as an error. The engine never re-reads the remote state mid-batch.
package syncer
