// Package twitter collects recent posts from the Twitter API v2. Fetching is
// a two-step flow: handles are first resolved to user IDs in one lookup call,
// then each user's timeline is fetched. The lookup must complete before any
// timeline request; the timelines themselves run in parallel.
package twitter

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/marketbrief/marketbrief/internal/collector"
	"github.com/marketbrief/marketbrief/pkg/models"
	"github.com/marketbrief/marketbrief/pkg/timeutil"
)

const (
	sourceName     = "twitter"
	defaultBaseURL = "https://api.twitter.com"

	defaultMaxResults = 10
	// The timeline endpoint accepts 5..100 results per request.
	minAPIResults = 5
	maxAPIResults = 100

	maxConcurrentTimelines = 4
)

// Config holds collector construction options. BearerToken is required for
// any network access; there is no anonymous tier.
type Config struct {
	BaseURL     string // override for tests; defaults to the public API
	BearerToken string
	HTTP        *http.Client
}

// Filters selects which timelines to fetch.
type Filters struct {
	Handles    []string // "@" prefixes are optional
	MaxResults int      // per handle; defaults to defaultMaxResults
}

// Collector fetches recent tweets for a set of handles.
type Collector struct {
	baseURL string
	token   string
	http    *http.Client
}

// New creates a Twitter collector. A missing bearer token is not an error
// here; Collect reports the source unavailable before touching the network.
func New(cfg Config) *Collector {
	base := cfg.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	httpClient := cfg.HTTP
	if httpClient == nil {
		httpClient = collector.NewHTTPClient(collector.DefaultTimeout)
	}
	return &Collector{baseURL: base, token: cfg.BearerToken, http: httpClient}
}

type userLookupResponse struct {
	Data []struct {
		ID       string `json:"id"`
		Username string `json:"username"`
	} `json:"data"`
	Errors []apiError `json:"errors"`
}

type timelineResponse struct {
	Data []struct {
		ID        string `json:"id"`
		AuthorID  string `json:"author_id"`
		Text      string `json:"text"`
		CreatedAt string `json:"created_at"`
	} `json:"data"`
	Errors []apiError `json:"errors"`
}

type apiError struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

// Collect returns one feed per requested handle, in input order. Handles
// that do not resolve to a user yield an empty feed rather than a failure.
func (c *Collector) Collect(ctx context.Context, w collector.Window, f Filters) ([]models.SocialFeed, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	if c.token == "" {
		return nil, collector.Unavailable(sourceName, "bearer token not configured", nil)
	}

	handles := cleanHandles(f.Handles)
	if len(handles) == 0 {
		return []models.SocialFeed{}, nil
	}

	ids, err := c.lookupUserIDs(ctx, handles)
	if err != nil {
		return nil, err
	}

	feeds := make([]models.SocialFeed, len(handles))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentTimelines)
	for i, handle := range handles {
		i, handle := i, handle
		g.Go(func() error {
			feeds[i] = models.SocialFeed{Label: "@" + handle, Posts: []models.SocialPost{}}
			userID, ok := ids[strings.ToLower(handle)]
			if !ok {
				return nil
			}
			posts, err := c.fetchTimeline(gctx, handle, userID, f.MaxResults)
			if err != nil {
				return err
			}
			feeds[i].Posts = posts
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, collector.Unavailable(sourceName, "timeline request failed", err)
	}
	return feeds, nil
}

// lookupUserIDs resolves handles to user IDs, keyed by lowercase username.
func (c *Collector) lookupUserIDs(ctx context.Context, handles []string) (map[string]string, error) {
	q := url.Values{}
	q.Set("usernames", strings.Join(handles, ","))
	q.Set("user.fields", "username")

	var resp userLookupResponse
	if err := c.getJSON(ctx, c.baseURL+"/2/users/by?"+q.Encode(), &resp); err != nil {
		return nil, collector.Unavailable(sourceName, "user lookup failed", err)
	}
	if len(resp.Errors) > 0 && len(resp.Data) == 0 {
		return nil, collector.Unavailable(sourceName, "user lookup rejected", apiErrorf(resp.Errors))
	}

	ids := make(map[string]string, len(resp.Data))
	for _, u := range resp.Data {
		ids[strings.ToLower(u.Username)] = u.ID
	}
	return ids, nil
}

func (c *Collector) fetchTimeline(ctx context.Context, handle, userID string, maxResults int) ([]models.SocialPost, error) {
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}
	if maxResults < minAPIResults {
		maxResults = minAPIResults
	}
	if maxResults > maxAPIResults {
		maxResults = maxAPIResults
	}

	q := url.Values{}
	q.Set("max_results", strconv.Itoa(maxResults))
	q.Set("tweet.fields", "created_at,author_id")

	var resp timelineResponse
	endpoint := fmt.Sprintf("%s/2/users/%s/tweets?%s", c.baseURL, userID, q.Encode())
	if err := c.getJSON(ctx, endpoint, &resp); err != nil {
		return nil, err
	}
	if len(resp.Errors) > 0 && len(resp.Data) == 0 {
		return nil, apiErrorf(resp.Errors)
	}

	posts := make([]models.SocialPost, 0, len(resp.Data))
	for _, tw := range resp.Data {
		post := models.SocialPost{
			ID:        tw.ID,
			Author:    handle,
			Text:      strings.TrimSpace(tw.Text),
			CreatedAt: timeutil.ParseTimestamp(tw.CreatedAt),
		}
		if tw.ID != "" {
			post.URL = fmt.Sprintf("https://twitter.com/%s/status/%s", handle, tw.ID)
		}
		posts = append(posts, post)
	}
	return posts, nil
}

func (c *Collector) getJSON(ctx context.Context, url string, dest any) error {
	headers := map[string]string{"Authorization": "Bearer " + c.token}
	return collector.GetJSON(ctx, c.http, url, headers, dest)
}

// cleanHandles trims whitespace and "@" prefixes and drops empty entries.
func cleanHandles(handles []string) []string {
	out := make([]string, 0, len(handles))
	for _, h := range handles {
		h = strings.TrimPrefix(strings.TrimSpace(h), "@")
		if h != "" {
			out = append(out, h)
		}
	}
	return out
}

func apiErrorf(errs []apiError) error {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		if e.Detail != "" {
			parts = append(parts, e.Detail)
		} else {
			parts = append(parts, e.Title)
		}
	}
	return fmt.Errorf("API error: %s", strings.Join(parts, "; "))
}
