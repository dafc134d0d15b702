// Package gcal is a minimal Google Calendar v3 REST client covering the two
// calls the sync engine needs: the paginated events.list read for one week
// window and the multipart batch insert with per-item outcome callbacks.
//
// The client authenticates with a caller-supplied OAuth access token; token
// acquisition and refresh belong to the browser extension and are not handled
// here.
package gcal
