package gcal

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

var (
	queryMin = time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	queryMax = time.Date(2024, 7, 7, 23, 59, 59, 0, time.UTC)
)

func TestListEventsPaginates(t *testing.T) {
	var tokens []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer token-1" {
			t.Errorf("authorization header = %q", got)
		}
		token := r.URL.Query().Get("pageToken")
		tokens = append(tokens, token)

		resp := map[string]any{}
		switch token {
		case "":
			resp["items"] = []map[string]any{
				{
					"summary":  "Môn A",
					"start":    map[string]string{"dateTime": "2024-07-01T08:00:00+07:00"},
					"end":      map[string]string{"dateTime": "2024-07-01T09:30:00+07:00"},
					"location": "A.101",
				},
			}
			resp["nextPageToken"] = "page-2"
		case "page-2":
			resp["items"] = []map[string]any{
				{
					"summary": "Môn B",
					"start":   map[string]string{"dateTime": "2024-07-02T10:00:00+07:00"},
					"end":     map[string]string{"dateTime": "2024-07-02T11:30:00+07:00"},
				},
			}
		default:
			t.Errorf("unexpected page token %q", token)
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	c := NewClientWithEndpoints("token-1", srv.URL, srv.URL)
	existing, err := c.ListEvents(queryMin, queryMax)
	if err != nil {
		t.Fatalf("ListEvents failed: %v", err)
	}
	if len(existing) != 2 {
		t.Fatalf("expected 2 events, got %d", len(existing))
	}
	if existing[0].Summary != "Môn A" || existing[0].Location != "A.101" {
		t.Errorf("first event = %+v", existing[0])
	}
	if existing[1].Summary != "Môn B" {
		t.Errorf("second event = %+v", existing[1])
	}
	if len(tokens) != 2 || tokens[1] != "page-2" {
		t.Errorf("page tokens = %v", tokens)
	}
}

func TestListEventsQueryWindow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if got := q.Get("timeMin"); got != "2024-06-30T17:00:00Z" {
			t.Errorf("timeMin = %q", got)
		}
		if got := q.Get("singleEvents"); got != "true" {
			t.Errorf("singleEvents = %q", got)
		}
		if got := q.Get("maxResults"); got != "250" {
			t.Errorf("maxResults = %q", got)
		}
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	// A +07:00 lower bound must be sent as its UTC instant.
	ict := time.FixedZone("ICT", 7*60*60)
	min := time.Date(2024, 7, 1, 0, 0, 0, 0, ict)

	c := NewClientWithEndpoints("token-1", srv.URL, srv.URL)
	if _, err := c.ListEvents(min, queryMax); err != nil {
		t.Fatalf("ListEvents failed: %v", err)
	}
}

func TestListEventsSkipsIncompleteItems(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items": [
			{"summary": "", "start": {"dateTime": "2024-07-01T08:00:00+07:00"}, "end": {"dateTime": "2024-07-01T09:00:00+07:00"}},
			{"summary": "All day", "start": {}, "end": {}},
			{"summary": "Bad clock", "start": {"dateTime": "yesterday"}, "end": {"dateTime": "2024-07-01T09:00:00+07:00"}},
			{"summary": "Kept", "start": {"dateTime": "2024-07-01T08:00:00+07:00"}, "end": {"dateTime": "2024-07-01T09:00:00+07:00"}}
		]}`))
	}))
	defer srv.Close()

	c := NewClientWithEndpoints("token-1", srv.URL, srv.URL)
	existing, err := c.ListEvents(queryMin, queryMax)
	if err != nil {
		t.Fatalf("ListEvents failed: %v", err)
	}
	if len(existing) != 1 || existing[0].Summary != "Kept" {
		t.Errorf("existing = %+v", existing)
	}
}

func TestListEventsAuthFailure(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClientWithEndpoints("expired", srv.URL, srv.URL)
	_, err := c.ListEvents(queryMin, queryMax)
	var readErr *RemoteReadError
	if !errors.As(err, &readErr) {
		t.Fatalf("expected RemoteReadError, got %v", err)
	}
	if calls != 1 {
		t.Errorf("4xx retried %d times, expected a single attempt", calls)
	}
}
