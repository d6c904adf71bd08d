// Package collector defines the contract shared by all data source adapters:
// the inclusive calendar-date window that bounds every collection request,
// the error taxonomy the pipeline branches on, and the HTTP helpers the
// concrete collectors are built from.
//
// Each collector exposes a Collect method taking a Window plus source-specific
// filters and returning normalized records or an error. A nil error with zero
// records means the source was reachable and had nothing to report; a
// *UnavailableError means the source could not be consulted at all. The
// pipeline treats the two very differently, so collectors must never fold an
// empty result into a failure.
package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrInvalidWindow is returned when a window's end precedes its start.
// Collectors check this before issuing any network call.
var ErrInvalidWindow = errors.New("window end precedes start")

// Window is an inclusive calendar-date range bounding a collection request.
type Window struct {
	Start time.Time
	End   time.Time
}

// NewWindow builds a window from a start date and a lookahead offset in days.
// Negative lookahead is clamped to zero, so the smallest window is one day.
func NewWindow(start time.Time, lookaheadDays int) Window {
	if lookaheadDays < 0 {
		lookaheadDays = 0
	}
	start = start.UTC().Truncate(24 * time.Hour)
	return Window{Start: start, End: start.AddDate(0, 0, lookaheadDays)}
}

// WeekAhead returns the seven-day window starting at the given date.
func WeekAhead(start time.Time) Window {
	return NewWindow(start, 6)
}

// Validate reports ErrInvalidWindow when the end date precedes the start.
func (w Window) Validate() error {
	if w.End.Before(w.Start) {
		return fmt.Errorf("%w: start %s, end %s", ErrInvalidWindow,
			w.Start.Format("2006-01-02"), w.End.Format("2006-01-02"))
	}
	return nil
}

// Days returns every calendar day in the window, ascending and inclusive.
func (w Window) Days() []time.Time {
	var days []time.Time
	for d := w.Start; !d.After(w.End); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// UnavailableError marks a source that could not be consulted: transport
// failure, non-2xx response, authentication problem, or a payload missing its
// expected structure. The pipeline recovers it into a placeholder section.
type UnavailableError struct {
	Source string
	Reason string
	Err    error
}

func (e *UnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s unavailable: %s: %v", e.Source, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s unavailable: %s", e.Source, e.Reason)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// Unavailable builds an UnavailableError for the named source.
func Unavailable(source, reason string, err error) *UnavailableError {
	return &UnavailableError{Source: source, Reason: reason, Err: err}
}

// ErrHTTP wraps a non-2xx HTTP response.
type ErrHTTP struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *ErrHTTP) Error() string {
	return fmt.Sprintf("HTTP %d %s: %s", e.StatusCode, e.Status, e.Body)
}

// DefaultUserAgent is sent with every outbound request. Some providers
// reject requests without a browser user agent.
const DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36"

// DefaultTimeout is the per-call timeout applied when no client is supplied.
const DefaultTimeout = 30 * time.Second

// NewHTTPClient returns an HTTP client with the given per-call timeout,
// suitable for sharing across collectors for connection reuse.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// DoGet performs a GET request and returns the response body. Non-2xx
// statuses are returned as *ErrHTTP with a truncated body for diagnostics.
// The caller must close the returned ReadCloser on success.
func DoGet(ctx context.Context, client *http.Client, url string, headers map[string]string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", DefaultUserAgent)
	req.Header.Set("Accept", "application/json, text/plain, */*")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &ErrHTTP{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(body),
		}
	}

	return resp.Body, nil
}

// GetJSON performs a GET request and decodes the JSON response into dest.
func GetJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, dest any) error {
	body, err := DoGet(ctx, client, url, headers)
	if err != nil {
		return err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("parse JSON: %w", err)
	}
	return nil
}
