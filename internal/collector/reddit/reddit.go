// Package reddit collects recent submissions from Reddit's public Atom
// listings, one feed per subreddit or user. No credentials are required;
// Reddit serves the listings anonymously.
package reddit

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/marketbrief/marketbrief/internal/collector"
	"github.com/marketbrief/marketbrief/pkg/models"
)

const (
	sourceName     = "reddit"
	defaultBaseURL = "https://www.reddit.com"

	defaultLimit = 10
	// excerptMaxLen caps the plain-text preview taken from a post body.
	excerptMaxLen = 160
)

// Config holds collector construction options.
type Config struct {
	BaseURL string // override for tests; defaults to www.reddit.com
	HTTP    *http.Client
}

// Filters selects which listings to fetch. "r/" and "u/" prefixes on the
// names are optional.
type Filters struct {
	Subreddits []string
	Users      []string
	Limit      int // posts per listing; defaults to defaultLimit
}

// Collector fetches new-post listings for subreddits and users.
type Collector struct {
	baseURL string
	http    *http.Client
	parser  *gofeed.Parser
}

// New creates a Reddit collector.
func New(cfg Config) *Collector {
	base := cfg.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	httpClient := cfg.HTTP
	if httpClient == nil {
		httpClient = collector.NewHTTPClient(collector.DefaultTimeout)
	}
	parser := gofeed.NewParser()
	parser.Client = httpClient
	parser.UserAgent = "marketbrief/1.0"
	return &Collector{baseURL: base, http: httpClient, parser: parser}
}

// Collect fetches every requested listing: subreddits first, then users,
// each preserving input order. Posts keep feed delivery order (newest
// first). Any listing failure marks the whole source unavailable.
func (c *Collector) Collect(ctx context.Context, w collector.Window, f Filters) ([]models.SocialFeed, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}

	limit := f.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	var feeds []models.SocialFeed
	for _, sub := range cleanNames(f.Subreddits, "r/") {
		path := fmt.Sprintf("/r/%s/new.rss", sub)
		posts, err := c.fetchListing(ctx, path, limit)
		if err != nil {
			return nil, collector.Unavailable(sourceName, "listing r/"+sub+" failed", err)
		}
		feeds = append(feeds, models.SocialFeed{Label: "r/" + sub, Posts: posts})
	}
	for _, user := range cleanNames(f.Users, "u/") {
		path := fmt.Sprintf("/user/%s/submitted.rss", user)
		posts, err := c.fetchListing(ctx, path, limit)
		if err != nil {
			return nil, collector.Unavailable(sourceName, "listing u/"+user+" failed", err)
		}
		feeds = append(feeds, models.SocialFeed{Label: "u/" + user, Posts: posts})
	}
	if feeds == nil {
		feeds = []models.SocialFeed{}
	}
	return feeds, nil
}

func (c *Collector) fetchListing(ctx context.Context, path string, limit int) ([]models.SocialPost, error) {
	url := fmt.Sprintf("%s%s?limit=%d", c.baseURL, path, limit)
	feed, err := c.parser.ParseURLWithContext(url, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse listing %s: %w", path, err)
	}

	posts := make([]models.SocialPost, 0, len(feed.Items))
	for _, item := range feed.Items {
		post := models.SocialPost{
			ID:      item.GUID,
			Text:    strings.TrimSpace(item.Title),
			URL:     item.Link,
			Excerpt: excerpt(item.Content),
		}
		if item.Author != nil {
			post.Author = strings.TrimPrefix(strings.TrimSpace(item.Author.Name), "/u/")
		}
		if item.PublishedParsed != nil {
			t := item.PublishedParsed.UTC()
			post.CreatedAt = &t
		} else if item.UpdatedParsed != nil {
			t := item.UpdatedParsed.UTC()
			post.CreatedAt = &t
		}
		posts = append(posts, post)
	}
	return posts, nil
}

// excerpt reduces an HTML post body to a short single-line plain-text
// preview. Listing entries wrap the body in markup plus boilerplate links;
// goquery strips the markup and the preview is truncated at a word boundary.
func excerpt(html string) string {
	if html == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + html + "</body>"))
	if err != nil {
		return ""
	}
	text := strings.Join(strings.Fields(doc.Text()), " ")
	// Reddit appends "submitted by /u/... [link] [comments]" to every entry.
	if i := strings.Index(text, "submitted by"); i >= 0 {
		text = strings.TrimSpace(text[:i])
	}
	if len(text) <= excerptMaxLen {
		return text
	}
	// Back off to a rune boundary so the cut never splits a multi-byte rune,
	// then prefer the last word boundary inside the cut.
	n := excerptMaxLen
	for n > 0 && !utf8.RuneStart(text[n]) {
		n--
	}
	cut := text[:n]
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	return cut + "…"
}

// cleanNames trims whitespace and an optional prefix, dropping empties.
func cleanNames(names []string, prefix string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimPrefix(strings.TrimSpace(n), prefix)
		if n != "" {
			out = append(out, n)
		}
	}
	return out
}
