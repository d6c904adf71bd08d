package report

import (
	"fmt"
	"strings"
	"time"
)

// Section titles in their fixed display order.
const (
	TitleEconomic  = "Economic Calendar"
	TitleEarnings  = "Earnings Calendar"
	TitleMicroblog = "Microblog Highlights"
	TitleCommunity = "Community Highlights"
)

// SectionOrder returns the fixed section order of the assembled document.
func SectionOrder() []string {
	return []string{TitleEconomic, TitleEarnings, TitleMicroblog, TitleCommunity}
}

// Section is one named unit of the report. Exactly one of Body and
// Unavailable is meaningful: a section whose source failed carries the
// failure reason instead of a rendered fragment.
type Section struct {
	Title       string
	Body        string // rendered Markdown fragment
	Unavailable string // failure reason; non-empty marks the source failed
}

// Assemble joins the given sections into the final Markdown document, in the
// order supplied. Disabled sources are simply not passed in; failed sources
// render an explicit unavailable line so readers can tell fetch failure from
// absence of data. Output depends only on the arguments.
func Assemble(generatedAt time.Time, sections []Section) string {
	var b strings.Builder
	b.WriteString("# Market Intelligence Report\n")
	fmt.Fprintf(&b, "_Generated on %s_\n", generatedAt.UTC().Format("2006-01-02 15:04 UTC"))

	for _, s := range sections {
		b.WriteString("\n## " + s.Title + "\n\n")
		if s.Unavailable != "" {
			fmt.Fprintf(&b, "_Source unavailable: %s_\n", s.Unavailable)
			continue
		}
		b.WriteString(strings.TrimRight(s.Body, "\n") + "\n")
	}
	return b.String()
}
