// Package report renders normalized records into Markdown fragments and
// assembles the fragments into the final document. Renderers are pure
// functions: identical input produces byte-identical output, and no renderer
// performs I/O or reads the clock.
package report

import (
	"fmt"
	"strings"

	"github.com/marketbrief/marketbrief/pkg/models"
	"github.com/marketbrief/marketbrief/pkg/timeutil"
)

// Fixed sentences for reachable-but-empty sources. These are distinct from
// the unavailable placeholder the assembler emits for failed sources.
const (
	NoEconomicEvents = "No economic events found."
	NoEarningsEvents = "No earnings events found."
	NoScheduledDay   = "No scheduled earnings releases."
	NoTweets         = "No tweets collected."
	NoTweetsForFeed  = "No recent tweets found."
	NoCommunityPosts = "No community posts found."
	NoPostsForFeed   = "No new posts."
)

// RenderEconomic renders economic events as one pipe table in provider
// calendar order. Absent optional fields render as empty cells.
func RenderEconomic(events []models.EconomicEvent) string {
	if len(events) == 0 {
		return NoEconomicEvents + "\n"
	}

	var b strings.Builder
	b.WriteString("| Date | Time (UTC) | Country | Event | Actual | Forecast | Previous |\n")
	b.WriteString("|---|---|---|---|---|---|---|\n")
	for _, e := range events {
		var date, clock string
		if e.ReleaseTime != nil {
			date = timeutil.FormatDate(*e.ReleaseTime)
			clock = e.ReleaseTime.UTC().Format("15:04")
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s |\n",
			date, clock, cell(e.Country), cell(e.Event),
			cell(e.Actual), cell(e.Forecast), cell(e.Previous))
	}
	return b.String()
}

// RenderEarnings renders earnings grouped under one "###" heading per day,
// days ascending as provided, rows in provider order within a day.
func RenderEarnings(days []models.EarningsDay) string {
	if countEarnings(days) == 0 {
		return NoEarningsEvents + "\n"
	}

	var b strings.Builder
	for _, day := range days {
		fmt.Fprintf(&b, "### %s\n\n", day.Date.UTC().Format("Monday, January 02, 2006"))
		if len(day.Events) == 0 {
			b.WriteString(NoScheduledDay + "\n\n")
			continue
		}
		b.WriteString("| Symbol | Company | Time | EPS Estimate | EPS Actual |\n")
		b.WriteString("|---|---|---|---|---|\n")
		for _, e := range day.Events {
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
				cell(e.Symbol), cell(e.Company), cell(e.Time),
				cell(e.EPSEstimate), cell(e.EPSActual))
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}

// RenderMicroblog renders short-post feeds as bullet lists under one "###"
// heading per feed, posts in delivery order.
func RenderMicroblog(feeds []models.SocialFeed) string {
	return renderSocial(feeds, NoTweets, NoTweetsForFeed, false)
}

// RenderCommunity renders community feeds like RenderMicroblog, adding the
// author clause and an optional excerpt quote line per post.
func RenderCommunity(feeds []models.SocialFeed) string {
	return renderSocial(feeds, NoCommunityPosts, NoPostsForFeed, true)
}

func renderSocial(feeds []models.SocialFeed, emptyAll, emptyFeed string, community bool) string {
	if len(feeds) == 0 {
		return emptyAll + "\n"
	}

	var b strings.Builder
	for _, feed := range feeds {
		fmt.Fprintf(&b, "### %s\n\n", strings.TrimSpace(feed.Label))
		if len(feed.Posts) == 0 {
			b.WriteString(emptyFeed + "\n\n")
			continue
		}
		for _, post := range feed.Posts {
			var ts string
			if post.CreatedAt != nil {
				ts = timeutil.FormatDateTimeUTC(*post.CreatedAt)
			}
			fmt.Fprintf(&b, "- [%s](%s) %s", ts, post.URL, cell(post.Text))
			if community && post.Author != "" {
				fmt.Fprintf(&b, " by u/%s", post.Author)
			}
			b.WriteString("\n")
			if community && post.Excerpt != "" {
				fmt.Fprintf(&b, "  > %s\n", post.Excerpt)
			}
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}

func countEarnings(days []models.EarningsDay) int {
	n := 0
	for _, d := range days {
		n += len(d.Events)
	}
	return n
}

// cell trims a field for table/list use; absent values stay empty rather
// than rendering a "None" or "null" literal.
func cell(s string) string {
	return strings.TrimSpace(s)
}
