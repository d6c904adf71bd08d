// Package models defines the normalized record types shared between the
// collectors, the pipeline, and the report renderers. Raw provider payloads
// never cross the collector boundary; these structs are populated once at
// parse time with explicit optional fields.
package models

import "time"

// EconomicEvent represents one scheduled macroeconomic data release.
// All fields except Event may be empty; ReleaseTime is nil when the
// provider timestamp was absent or unparseable.
type EconomicEvent struct {
	Country     string     `json:"country,omitempty"`
	Category    string     `json:"category,omitempty"`
	Event       string     `json:"event"`
	ReleaseTime *time.Time `json:"release_time,omitempty"`
	Actual      string     `json:"actual,omitempty"`
	Forecast    string     `json:"forecast,omitempty"`
	Previous    string     `json:"previous,omitempty"`
}

// EarningsEvent represents a single earnings announcement.
// EPS figures are kept as provider-formatted strings ("$1.20", "(0.45)");
// empty means the provider did not publish the figure.
type EarningsEvent struct {
	Symbol      string    `json:"symbol"`
	Company     string    `json:"company"`
	Date        time.Time `json:"date"`
	Time        string    `json:"time,omitempty"`
	EPSEstimate string    `json:"eps_estimate,omitempty"`
	EPSActual   string    `json:"eps_actual,omitempty"`
}

// EarningsDay groups the earnings announcements of one calendar day.
// Days are ordered ascending; events keep provider row order.
type EarningsDay struct {
	Date   time.Time       `json:"date"`
	Events []EarningsEvent `json:"events"`
}

// SocialPost is the shared shape for posts from the social providers.
// Text holds the tweet text or the submission title. CreatedAt is nil when
// the provider timestamp was absent or unparseable. Excerpt is an optional
// plain-text preview of the post body.
type SocialPost struct {
	ID        string     `json:"id"`
	Author    string     `json:"author,omitempty"`
	Text      string     `json:"text"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	URL       string     `json:"url,omitempty"`
	Excerpt   string     `json:"excerpt,omitempty"`
}

// SocialFeed holds the posts collected for one handle, subreddit, or user,
// in provider delivery order (newest first).
type SocialFeed struct {
	Label string       `json:"label"` // e.g. "@handle", "r/investing", "u/name"
	Posts []SocialPost `json:"posts"`
}
