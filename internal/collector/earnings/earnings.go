// Package earnings collects the corporate earnings calendar from Nasdaq's
// public API. The API is keyed by single calendar day, so a window turns
// into one request per day; days are fetched concurrently and reassembled
// in ascending date order.
package earnings

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/marketbrief/marketbrief/internal/collector"
	"github.com/marketbrief/marketbrief/pkg/models"
	"github.com/marketbrief/marketbrief/pkg/timeutil"
)

const (
	sourceName     = "earnings"
	defaultBaseURL = "https://api.nasdaq.com"
	calendarPath   = "/api/calendar/earnings"

	// maxConcurrentDays bounds the per-day fan-out for wide windows.
	maxConcurrentDays = 4
)

// Config holds collector construction options.
type Config struct {
	BaseURL string // override for tests; defaults to the public API
	HTTP    *http.Client
}

// Collector fetches the earnings calendar one day at a time.
type Collector struct {
	baseURL string
	http    *http.Client
}

// New creates an earnings calendar collector.
func New(cfg Config) *Collector {
	base := cfg.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	httpClient := cfg.HTTP
	if httpClient == nil {
		httpClient = collector.NewHTTPClient(collector.DefaultTimeout)
	}
	return &Collector{baseURL: base, http: httpClient}
}

// calendarResponse is the raw Nasdaq calendar envelope. Rows is null on
// days without scheduled announcements.
type calendarResponse struct {
	Data struct {
		Rows []calendarRow `json:"rows"`
	} `json:"data"`
}

type calendarRow struct {
	Symbol      string `json:"symbol"`
	CompanyName string `json:"companyName"`
	EPSForecast string `json:"epsForecast"`
	EPSActual   string `json:"epsActual"`
	Time        string `json:"time"`
	TimeZone    string `json:"timeZone"`
}

// Collect fetches earnings for every day in the window. Grouping is by date
// ascending; rows within a day keep provider order. A failure on any day
// marks the whole source unavailable.
func (c *Collector) Collect(ctx context.Context, w collector.Window) ([]models.EarningsDay, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}

	days := w.Days()
	out := make([]models.EarningsDay, len(days))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentDays)
	for i, day := range days {
		i, day := i, day
		g.Go(func() error {
			events, err := c.fetchDay(gctx, day)
			if err != nil {
				return err
			}
			out[i] = models.EarningsDay{Date: day, Events: events}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, collector.Unavailable(sourceName, "calendar request failed", err)
	}
	return out, nil
}

func (c *Collector) fetchDay(ctx context.Context, day time.Time) ([]models.EarningsEvent, error) {
	q := url.Values{}
	q.Set("date", timeutil.FormatDate(day))

	var resp calendarResponse
	if err := c.getJSON(ctx, c.baseURL+calendarPath+"?"+q.Encode(), &resp); err != nil {
		return nil, err
	}

	events := make([]models.EarningsEvent, 0, len(resp.Data.Rows))
	for _, row := range resp.Data.Rows {
		// Older API responses carry the announcement slot in timeZone.
		slot := row.Time
		if slot == "" {
			slot = row.TimeZone
		}
		events = append(events, models.EarningsEvent{
			Symbol:      strings.TrimSpace(row.Symbol),
			Company:     strings.TrimSpace(row.CompanyName),
			Date:        day,
			Time:        strings.TrimSpace(slot),
			EPSEstimate: strings.TrimSpace(row.EPSForecast),
			EPSActual:   strings.TrimSpace(row.EPSActual),
		})
	}
	return events, nil
}

func (c *Collector) getJSON(ctx context.Context, url string, dest any) error {
	headers := map[string]string{"Accept": "application/json, text/plain, */*"}
	return collector.GetJSON(ctx, c.http, url, headers, dest)
}
