package gcal

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/locnguyen/uel-calendar-sync/internal/event"
	"github.com/locnguyen/uel-calendar-sync/internal/logger"
)

const (
	defaultBaseURL  = "https://www.googleapis.com/calendar/v3"
	defaultBatchURL = "https://www.googleapis.com/batch/calendar/v3"
	calendarID      = "primary"

	// DefaultPageSize is the events.list page size.
	DefaultPageSize = 250

	timeout    = 30 * time.Second
	maxRetries = 3
)

// queryTimeLayout is the absolute-time format the list API expects.
const queryTimeLayout = "2006-01-02T15:04:05Z"

// Client is a Google Calendar API client bound to one access token.
type Client struct {
	accessToken string
	baseURL     string
	batchURL    string
	pageSize    int
	httpClient  *http.Client
}

// NewClient creates a client for the public Google Calendar endpoints.
func NewClient(accessToken string) *Client {
	return NewClientWithEndpoints(accessToken, defaultBaseURL, defaultBatchURL)
}

// NewClientWithEndpoints creates a client against custom endpoints. Tests use
// this to point the client at a local server.
func NewClientWithEndpoints(accessToken, baseURL, batchURL string) *Client {
	return &Client{
		accessToken: accessToken,
		baseURL:     baseURL,
		batchURL:    batchURL,
		pageSize:    DefaultPageSize,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// listResponse mirrors the fields of the events.list payload the index needs.
type listResponse struct {
	Items []struct {
		Summary string `json:"summary"`
		Start   struct {
			DateTime string `json:"dateTime"`
		} `json:"start"`
		End struct {
			DateTime string `json:"dateTime"`
		} `json:"end"`
		Location string `json:"location"`
	} `json:"items"`
	NextPageToken string `json:"nextPageToken"`
}

// ListEvents fetches every event intersecting [timeMin, timeMax], following
// continuation tokens until none remains. Events missing a summary, start or
// end are skipped. Failures are reported as RemoteReadError.
func (c *Client) ListEvents(timeMin, timeMax time.Time) ([]event.ExistingEvent, error) {
	var existing []event.ExistingEvent
	skipped := 0
	pageToken := ""

	for {
		page, err := c.listPage(timeMin, timeMax, pageToken)
		if err != nil {
			return nil, &RemoteReadError{Err: err}
		}

		for _, item := range page.Items {
			if item.Summary == "" || item.Start.DateTime == "" || item.End.DateTime == "" {
				skipped++
				continue
			}
			start, err := time.Parse(time.RFC3339, item.Start.DateTime)
			if err != nil {
				skipped++
				continue
			}
			end, err := time.Parse(time.RFC3339, item.End.DateTime)
			if err != nil {
				skipped++
				continue
			}
			existing = append(existing, event.ExistingEvent{
				Summary:  item.Summary,
				Start:    start,
				End:      end,
				Location: item.Location,
			})
		}

		if page.NextPageToken == "" {
			break
		}
		pageToken = page.NextPageToken
	}

	if skipped > 0 {
		logger.Warn("existing events skipped for missing fields", logger.Fields{"skipped": skipped})
	}
	logger.Info("fetched existing events", logger.Fields{"count": len(existing)})
	return existing, nil
}

// listPage fetches one events.list page, retrying transient failures with
// exponential backoff. 4xx responses are permanent.
func (c *Client) listPage(timeMin, timeMax time.Time, pageToken string) (*listResponse, error) {
	params := url.Values{}
	params.Set("timeMin", timeMin.UTC().Format(queryTimeLayout))
	params.Set("timeMax", timeMax.UTC().Format(queryTimeLayout))
	params.Set("singleEvents", "true")
	params.Set("maxResults", fmt.Sprintf("%d", c.pageSize))
	if pageToken != "" {
		params.Set("pageToken", pageToken)
	}

	reqURL := fmt.Sprintf("%s/calendars/%s/events?%s", c.baseURL, calendarID, params.Encode())

	var page *listResponse
	operation := func() error {
		req, err := http.NewRequest("GET", reqURL, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("creating request: %w", err))
		}
		req.Header.Set("Authorization", "Bearer "+c.accessToken)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("listing events: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			err := fmt.Errorf("calendar API error (status %d)", resp.StatusCode)
			if resp.StatusCode >= 400 && resp.StatusCode < 500 {
				return backoff.Permanent(err)
			}
			return err
		}

		var decoded listResponse
		if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
			return backoff.Permanent(fmt.Errorf("decoding list response: %w", err))
		}
		page = &decoded
		return nil
	}

	policy := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxRetries)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}
	return page, nil
}
