// Package econcal collects scheduled macroeconomic releases from the
// Trading Economics public calendar API.
//
// The API accepts guest credentials; real credentials raise the rate limit
// and unlock more countries. Credentials are injected at construction so
// tests never touch the process environment.
package econcal

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/marketbrief/marketbrief/internal/collector"
	"github.com/marketbrief/marketbrief/pkg/models"
	"github.com/marketbrief/marketbrief/pkg/timeutil"
)

const (
	sourceName     = "economic"
	defaultBaseURL = "https://api.tradingeconomics.com"

	// GuestCredential is the public credential Trading Economics documents
	// for anonymous access.
	GuestCredential = "guest"
)

// Config holds collector construction options.
type Config struct {
	BaseURL string // override for tests; defaults to the public API
	Client  string // API client id, defaults to GuestCredential
	Secret  string // API secret, defaults to GuestCredential
	HTTP    *http.Client
}

// Filters narrows the calendar query. All lists are optional; values are
// comma-joined into the matching API parameter.
type Filters struct {
	Countries  []string
	Categories []string
	Importance []string // "1" (low) to "3" (high)
}

// Collector fetches the economic calendar for a window in a single call.
type Collector struct {
	baseURL    string
	credential string
	http       *http.Client

	// degraded counts records kept without a release time because their
	// timestamp failed to parse, reset on every collection.
	degraded int
}

// DegradedCount reports how many records in the most recent collection
// carried a release timestamp that could not be parsed. Such records are
// kept, rendered without a time.
func (c *Collector) DegradedCount() int { return c.degraded }

// New creates an economic calendar collector.
func New(cfg Config) *Collector {
	base := cfg.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	client := cfg.Client
	if client == "" {
		client = GuestCredential
	}
	secret := cfg.Secret
	if secret == "" {
		secret = GuestCredential
	}
	httpClient := cfg.HTTP
	if httpClient == nil {
		httpClient = collector.NewHTTPClient(collector.DefaultTimeout)
	}
	return &Collector{
		baseURL:    base,
		credential: client + ":" + secret,
		http:       httpClient,
	}
}

// looseString decodes a JSON string, number, or null into a string. The
// calendar API mixes the three for Actual/Forecast/Previous depending on the
// indicator, and a malformed value should degrade to empty rather than fail
// the whole payload.
type looseString string

func (s *looseString) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" || trimmed == "" {
		*s = ""
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = looseString(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err == nil {
		*s = looseString(num.String())
		return nil
	}
	*s = ""
	return nil
}

// calendarEntry is the raw Trading Economics calendar row.
type calendarEntry struct {
	Country  looseString `json:"Country"`
	Category looseString `json:"Category"`
	Event    looseString `json:"Event"`
	Date     looseString `json:"Date"`
	DateUTC  looseString `json:"DateUTC"`
	Actual   looseString `json:"Actual"`
	Forecast looseString `json:"Forecast"`
	Previous looseString `json:"Previous"`
}

// Collect fetches every scheduled release inside the window, one API call
// for the whole range. Events come back in the provider's calendar order
// and are not re-sorted.
func (c *Collector) Collect(ctx context.Context, w collector.Window, f Filters) ([]models.EconomicEvent, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("start", timeutil.FormatDate(w.Start))
	q.Set("end", timeutil.FormatDate(w.End))
	q.Set("format", "json")
	q.Set("c", c.credential)
	if len(f.Importance) > 0 {
		q.Set("importance", strings.Join(f.Importance, ","))
	}
	if len(f.Countries) > 0 {
		q.Set("country", strings.Join(f.Countries, ","))
	}
	if len(f.Categories) > 0 {
		q.Set("category", strings.Join(f.Categories, ","))
	}

	var entries []calendarEntry
	if err := collector.GetJSON(ctx, c.http, c.baseURL+"/calendar?"+q.Encode(), nil, &entries); err != nil {
		// A JSON object here usually means an error envelope instead of the
		// calendar list; either way the structure is not what we expect.
		return nil, collector.Unavailable(sourceName, "calendar request failed", err)
	}

	c.degraded = 0
	events := make([]models.EconomicEvent, 0, len(entries))
	for _, e := range entries {
		when := timeutil.ParseTimestamp(trim(e.DateUTC))
		if when == nil {
			when = timeutil.ParseTimestamp(trim(e.Date))
		}
		if when == nil && (e.DateUTC != "" || e.Date != "") {
			c.degraded++
		}
		events = append(events, models.EconomicEvent{
			Country:     trim(e.Country),
			Category:    trim(e.Category),
			Event:       trim(e.Event),
			ReleaseTime: when,
			Actual:      trim(e.Actual),
			Forecast:    trim(e.Forecast),
			Previous:    trim(e.Previous),
		})
	}
	return events, nil
}

func trim(s looseString) string {
	return strings.TrimSpace(string(s))
}
