package econcal

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/marketbrief/marketbrief/internal/collector"
)

func window(t *testing.T, start string, lookahead int) collector.Window {
	t.Helper()
	d, err := time.Parse("2006-01-02", start)
	if err != nil {
		t.Fatal(err)
	}
	return collector.NewWindow(d, lookahead)
}

func TestCollectNormalizesEvents(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`[
			{"Country":" United States ","Category":"Inflation Rate","Event":" CPI YoY ","DateUTC":"2024-03-12T12:30:00","Actual":"3.2%","Forecast":"3.1%","Previous":"3.1%"},
			{"Country":"Japan","Event":"GDP Growth Rate","Date":"not-a-date","Actual":1.5,"Forecast":null}
		]`))
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL, HTTP: srv.Client()})
	events, err := c.Collect(context.Background(), window(t, "2024-03-11", 6), Filters{
		Countries:  []string{"United States", "Japan"},
		Importance: []string{"3"},
	})
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}

	first := events[0]
	if first.Country != "United States" || first.Event != "CPI YoY" {
		t.Errorf("fields not trimmed: %+v", first)
	}
	if first.ReleaseTime == nil || first.ReleaseTime.Hour() != 12 {
		t.Errorf("release time not parsed: %v", first.ReleaseTime)
	}

	second := events[1]
	if second.ReleaseTime != nil {
		t.Errorf("malformed date should yield absent release time, got %v", second.ReleaseTime)
	}
	if second.Actual != "1.5" {
		t.Errorf("numeric actual should decode as string, got %q", second.Actual)
	}
	if second.Forecast != "" {
		t.Errorf("null forecast should be empty, got %q", second.Forecast)
	}
	if c.DegradedCount() != 1 {
		t.Errorf("degraded count = %d, want 1", c.DegradedCount())
	}

	for _, want := range []string{"start=2024-03-11", "end=2024-03-17", "c=guest%3Aguest", "importance=3"} {
		if !strings.Contains(gotQuery, want) {
			t.Errorf("query %q missing %q", gotQuery, want)
		}
	}
}

func TestCollectInvalidWindowSkipsNetwork(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL, HTTP: srv.Client()})
	w := collector.Window{
		Start: time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	_, err := c.Collect(context.Background(), w, Filters{})
	if !errors.Is(err, collector.ErrInvalidWindow) {
		t.Fatalf("expected ErrInvalidWindow, got %v", err)
	}
	if atomic.LoadInt32(&calls) != 0 {
		t.Errorf("invalid window issued %d network calls", calls)
	}
}

func TestCollectServerErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL, HTTP: srv.Client()})
	_, err := c.Collect(context.Background(), window(t, "2024-01-01", 0), Filters{})
	var unavail *collector.UnavailableError
	if !errors.As(err, &unavail) {
		t.Fatalf("expected UnavailableError, got %v", err)
	}
	if unavail.Source != "economic" {
		t.Errorf("source = %q", unavail.Source)
	}
}

func TestCollectUnexpectedStructureIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Error envelope instead of the calendar list.
		w.Write([]byte(`{"message":"invalid credentials"}`))
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL, HTTP: srv.Client()})
	_, err := c.Collect(context.Background(), window(t, "2024-01-01", 0), Filters{})
	var unavail *collector.UnavailableError
	if !errors.As(err, &unavail) {
		t.Fatalf("expected UnavailableError, got %v", err)
	}
}

func TestCollectEmptyCalendarIsOk(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL, HTTP: srv.Client()})
	events, err := c.Collect(context.Background(), window(t, "2024-01-01", 0), Filters{})
	if err != nil {
		t.Fatalf("empty calendar should not fail: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("expected no events, got %d", len(events))
	}
}

func TestCustomCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("c"); got != "myclient:mysecret" {
			t.Errorf("credential = %q", got)
		}
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL, HTTP: srv.Client(), Client: "myclient", Secret: "mysecret"})
	if _, err := c.Collect(context.Background(), window(t, "2024-01-01", 0), Filters{}); err != nil {
		t.Fatal(err)
	}
}
