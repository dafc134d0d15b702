package gcal

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
)

func sampleOps() []InsertOp {
	return []InsertOp{
		{
			CorrelationID: "event-1-Môn A",
			Body: EventBody{
				Summary:  "Môn A",
				Location: "A.101",
				Start:    EventDateTime{DateTime: "2024-07-01T08:00:00+07:00", TimeZone: "Asia/Ho_Chi_Minh"},
				End:      EventDateTime{DateTime: "2024-07-01T09:30:00+07:00", TimeZone: "Asia/Ho_Chi_Minh"},
			},
		},
		{
			CorrelationID: "event-2-Môn B",
			Body: EventBody{
				Summary: "Môn B",
				Start:   EventDateTime{DateTime: "2024-07-02T10:00:00+07:00", TimeZone: "Asia/Ho_Chi_Minh"},
				End:     EventDateTime{DateTime: "2024-07-02T11:30:00+07:00", TimeZone: "Asia/Ho_Chi_Minh"},
			},
		},
	}
}

// writeItemResponse writes one batch response part embedding an HTTP response
// with the given status and JSON body.
func writeItemResponse(t *testing.T, w *multipart.Writer, correlationID string, status int, body string) {
	t.Helper()
	header := textproto.MIMEHeader{}
	header.Set("Content-Type", "application/http")
	header.Set("Content-ID", "<response-"+correlationID+">")
	part, err := w.CreatePart(header)
	if err != nil {
		t.Fatalf("creating response part: %v", err)
	}
	fmt.Fprintf(part, "HTTP/1.1 %d %s\r\n", status, http.StatusText(status))
	fmt.Fprintf(part, "Content-Type: application/json\r\n")
	fmt.Fprintf(part, "Content-Length: %d\r\n\r\n", len(body))
	io.WriteString(part, body)
}

// batchServer decodes the incoming batch request, records the submitted parts
// and answers each with the scripted status.
func batchServer(t *testing.T, statusFor func(correlationID string) (int, string)) (*httptest.Server, *[]string) {
	t.Helper()
	var received []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mediaType, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if err != nil || mediaType != "multipart/mixed" {
			t.Errorf("request content type = %q", r.Header.Get("Content-Type"))
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		out := multipart.NewWriter(w)
		w.Header().Set("Content-Type", "multipart/mixed; boundary="+out.Boundary())

		reader := multipart.NewReader(r.Body, params["boundary"])
		for {
			part, err := reader.NextPart()
			if err == io.EOF {
				break
			}
			if err != nil {
				t.Errorf("reading request part: %v", err)
				break
			}
			if got := part.Header.Get("Content-Type"); got != "application/http" {
				t.Errorf("part content type = %q", got)
			}
			id := strings.Trim(part.Header.Get("Content-ID"), "<>")
			received = append(received, id)

			payload, _ := io.ReadAll(part)
			if !strings.HasPrefix(string(payload), "POST /calendar/v3/calendars/primary/events HTTP/1.1") {
				t.Errorf("part %s request line malformed: %.60s", id, payload)
			}

			status, body := statusFor(id)
			writeItemResponse(t, out, id, status, body)
		}
		out.Close()
	}))
	return srv, &received
}

func TestInsertBatch(t *testing.T) {
	srv, received := batchServer(t, func(string) (int, string) {
		return http.StatusOK, `{"id": "abc"}`
	})
	defer srv.Close()

	c := NewClientWithEndpoints("token-1", srv.URL, srv.URL)
	results := map[string]error{}
	err := c.InsertBatch(sampleOps(), func(id string, err error) {
		results[id] = err
	})
	if err != nil {
		t.Fatalf("InsertBatch failed: %v", err)
	}
	if len(*received) != 2 {
		t.Fatalf("server received %d parts, expected 2", len(*received))
	}
	for _, id := range []string{"event-1-Môn A", "event-2-Môn B"} {
		got, ok := results[id]
		if !ok {
			t.Errorf("no callback for %q", id)
			continue
		}
		if got != nil {
			t.Errorf("callback for %q = %v, expected success", id, got)
		}
	}
}

func TestInsertBatchMixedOutcomes(t *testing.T) {
	srv, _ := batchServer(t, func(id string) (int, string) {
		if strings.HasPrefix(id, "event-2-") {
			return http.StatusForbidden, `{"error": {"message": "Rate Limit Exceeded"}}`
		}
		return http.StatusOK, `{"id": "abc"}`
	})
	defer srv.Close()

	c := NewClientWithEndpoints("token-1", srv.URL, srv.URL)
	results := map[string]error{}
	err := c.InsertBatch(sampleOps(), func(id string, err error) {
		results[id] = err
	})
	if err != nil {
		t.Fatalf("InsertBatch failed: %v", err)
	}

	if results["event-1-Môn A"] != nil {
		t.Errorf("first item = %v, expected success", results["event-1-Môn A"])
	}
	var itemErr *ItemError
	if !errors.As(results["event-2-Môn B"], &itemErr) {
		t.Fatalf("second item = %v, expected ItemError", results["event-2-Môn B"])
	}
	if itemErr.Status != http.StatusForbidden || itemErr.Message != "Rate Limit Exceeded" {
		t.Errorf("item error = %+v", itemErr)
	}
}

func TestInsertBatchTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClientWithEndpoints("token-1", srv.URL, srv.URL)
	callbacks := 0
	err := c.InsertBatch(sampleOps(), func(string, error) { callbacks++ })
	var writeErr *RemoteWriteError
	if !errors.As(err, &writeErr) {
		t.Fatalf("expected RemoteWriteError, got %v", err)
	}
	if callbacks != 0 {
		t.Errorf("callbacks delivered after transport failure: %d", callbacks)
	}
}

func TestInsertBatchEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("request sent for an empty batch")
	}))
	defer srv.Close()

	c := NewClientWithEndpoints("token-1", srv.URL, srv.URL)
	if err := c.InsertBatch(nil, func(string, error) {}); err != nil {
		t.Errorf("empty batch returned %v", err)
	}
}

func TestParseCorrelationID(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"<response-event-1-Môn A>", "event-1-Môn A"},
		{"<event-1-Môn A>", "event-1-Môn A"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := parseCorrelationID(tt.in); got != tt.want {
			t.Errorf("parseCorrelationID(%q) = %q, expected %q", tt.in, got, tt.want)
		}
	}
}
