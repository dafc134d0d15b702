package gcal

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/locnguyen/uel-calendar-sync/internal/logger"
)

// EventDateTime is the zoned timestamp of an insert body.
type EventDateTime struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

// ReminderOverride is one reminder of an insert body.
type ReminderOverride struct {
	Method  string `json:"method"`
	Minutes int    `json:"minutes"`
}

// Reminders is the reminder policy of an insert body.
type Reminders struct {
	UseDefault bool               `json:"useDefault"`
	Overrides  []ReminderOverride `json:"overrides,omitempty"`
}

// EventBody is the events.insert request payload.
type EventBody struct {
	Summary     string        `json:"summary"`
	Location    string        `json:"location,omitempty"`
	Description string        `json:"description,omitempty"`
	Start       EventDateTime `json:"start"`
	End         EventDateTime `json:"end"`
	ColorID     string        `json:"colorId,omitempty"`
	Reminders   Reminders     `json:"reminders"`
}

// InsertOp is one enqueued insert operation with its caller-assigned
// correlation id.
type InsertOp struct {
	CorrelationID string
	Body          EventBody
}

// InsertBatch submits all operations as one multipart/mixed batch request and
// invokes cb once per operation with the correlation id and the per-item
// outcome. Callback order follows the transport's response order, not
// submission order. A transport-level failure is returned as RemoteWriteError
// and no further callbacks are delivered.
func (c *Client) InsertBatch(ops []InsertOp, cb func(correlationID string, err error)) error {
	if len(ops) == 0 {
		return nil
	}

	body, contentType, err := c.encodeBatch(ops)
	if err != nil {
		return &RemoteWriteError{Err: err}
	}

	req, err := http.NewRequest("POST", c.batchURL, body)
	if err != nil {
		return &RemoteWriteError{Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &RemoteWriteError{Err: fmt.Errorf("sending batch: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &RemoteWriteError{Err: fmt.Errorf("batch endpoint returned status %d", resp.StatusCode)}
	}

	return c.decodeBatch(resp, cb)
}

// encodeBatch renders the operations as multipart/mixed parts, each carrying
// one application/http events.insert request tagged with its correlation id.
func (c *Client) encodeBatch(ops []InsertOp) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, op := range ops {
		header := textproto.MIMEHeader{}
		header.Set("Content-Type", "application/http")
		header.Set("Content-Transfer-Encoding", "binary")
		header.Set("Content-ID", "<"+op.CorrelationID+">")

		part, err := w.CreatePart(header)
		if err != nil {
			return nil, "", fmt.Errorf("creating batch part: %w", err)
		}

		payload, err := json.Marshal(op.Body)
		if err != nil {
			return nil, "", fmt.Errorf("encoding event body: %w", err)
		}

		fmt.Fprintf(part, "POST /calendar/v3/calendars/%s/events HTTP/1.1\r\n", calendarID)
		fmt.Fprintf(part, "Content-Type: application/json\r\n")
		fmt.Fprintf(part, "Content-Length: %d\r\n\r\n", len(payload))
		part.Write(payload)
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("closing multipart body: %w", err)
	}

	return &buf, "multipart/mixed; boundary=" + w.Boundary(), nil
}

// decodeBatch walks the multipart response and delivers one callback per part.
func (c *Client) decodeBatch(resp *http.Response, cb func(correlationID string, err error)) error {
	mediaType, params, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil || !strings.HasPrefix(mediaType, "multipart/") {
		return &RemoteWriteError{Err: fmt.Errorf("unexpected batch response content type %q", resp.Header.Get("Content-Type"))}
	}

	reader := multipart.NewReader(resp.Body, params["boundary"])
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return &RemoteWriteError{Err: fmt.Errorf("reading batch response part: %w", err)}
		}

		correlationID := parseCorrelationID(part.Header.Get("Content-ID"))
		cb(correlationID, decodeItem(part))
		part.Close()
	}
}

// parseCorrelationID recovers the caller-assigned id from a response part's
// Content-ID, which arrives as "<response-ID>".
func parseCorrelationID(contentID string) string {
	id := strings.TrimSuffix(strings.TrimPrefix(contentID, "<"), ">")
	return strings.TrimPrefix(id, "response-")
}

// decodeItem reads one part's embedded HTTP response and returns nil on
// success or an ItemError describing the failure.
func decodeItem(part *multipart.Part) error {
	itemResp, err := http.ReadResponse(bufio.NewReader(part), nil)
	if err != nil {
		return &ItemError{Message: fmt.Sprintf("unreadable item response: %v", err)}
	}
	defer itemResp.Body.Close()

	if itemResp.StatusCode < 300 {
		return nil
	}

	// Classify the failure from the error payload where possible.
	var detail struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	message := ""
	if body, err := io.ReadAll(itemResp.Body); err == nil {
		if err := json.Unmarshal(body, &detail); err == nil && detail.Error.Message != "" {
			message = detail.Error.Message
		} else if len(body) > 0 {
			message = string(body)
		}
	}

	logger.Debug("batch item failed", logger.Fields{
		"status":  itemResp.StatusCode,
		"message": message,
	})
	return &ItemError{Status: itemResp.StatusCode, Message: message}
}
