// Package pipeline orchestrates the data collectors over one shared window
// and produces the final report. Its central invariant: collectors fail
// independently, and no single source's failure ever aborts the run — the
// document always reflects every source that could be reached.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/marketbrief/marketbrief/internal/collector"
	"github.com/marketbrief/marketbrief/internal/collector/econcal"
	"github.com/marketbrief/marketbrief/internal/collector/reddit"
	"github.com/marketbrief/marketbrief/internal/collector/twitter"
	"github.com/marketbrief/marketbrief/internal/report"
	"github.com/marketbrief/marketbrief/pkg/models"
)

// Source identifies one data source.
type Source string

const (
	SourceEconomic Source = "economic"
	SourceEarnings Source = "earnings"
	SourceTwitter  Source = "twitter"
	SourceReddit   Source = "reddit"
)

// AllSources returns every source in report section order.
func AllSources() []Source {
	return []Source{SourceEconomic, SourceEarnings, SourceTwitter, SourceReddit}
}

// Collector interfaces, one per source. Concrete adapters satisfy these;
// tests substitute fakes.
type (
	EconomicCollector interface {
		Collect(ctx context.Context, w collector.Window, f econcal.Filters) ([]models.EconomicEvent, error)
	}
	EarningsCollector interface {
		Collect(ctx context.Context, w collector.Window) ([]models.EarningsDay, error)
	}
	TwitterCollector interface {
		Collect(ctx context.Context, w collector.Window, f twitter.Filters) ([]models.SocialFeed, error)
	}
	RedditCollector interface {
		Collect(ctx context.Context, w collector.Window, f reddit.Filters) ([]models.SocialFeed, error)
	}
)

// Options configures one pipeline run.
type Options struct {
	Window   collector.Window
	Enabled  map[Source]bool // sources missing from the map are disabled
	Economic econcal.Filters
	Twitter  twitter.Filters
	Reddit   reddit.Filters
}

// Outcome records how one enabled source fared, for the diagnostic stream
// and the process exit policy.
type Outcome struct {
	Source  Source
	Records int
	Err     error // nil on success
}

// Result is the product of one pipeline run.
type Result struct {
	Document string
	Outcomes []Outcome // one per enabled source, in section order
}

// Failed returns the outcomes of sources that could not be collected.
func (r *Result) Failed() []Outcome {
	var failed []Outcome
	for _, o := range r.Outcomes {
		if o.Err != nil {
			failed = append(failed, o)
		}
	}
	return failed
}

// Pipeline runs the enabled collectors and assembles the report.
type Pipeline struct {
	economic EconomicCollector
	earnings EarningsCollector
	twitter  TwitterCollector
	reddit   RedditCollector
	log      zerolog.Logger

	// now supplies the generation timestamp; overridable in tests.
	now func() time.Time
}

// New creates a pipeline over the given collectors. Any collector may be nil
// as long as its source is never enabled.
func New(economic EconomicCollector, earnings EarningsCollector, tw TwitterCollector, rd RedditCollector, log zerolog.Logger) *Pipeline {
	return &Pipeline{
		economic: economic,
		earnings: earnings,
		twitter:  tw,
		reddit:   rd,
		log:      log,
		now:      time.Now,
	}
}

// degradedCounter is an optional collector capability: sources that keep
// malformed records in degraded form report how many the last collection
// produced.
type degradedCounter interface {
	DegradedCount() int
}

// sectionState carries one source's collection+render outcome across the
// join barrier.
type sectionState struct {
	fragment string
	records  int
	err      error
}

// Run invokes every enabled collector in parallel, isolates their failures,
// and assembles the document in fixed section order once all have finished.
// The returned error is reserved for context cancellation; per-source
// failures are reported through Result.Outcomes.
func (p *Pipeline) Run(ctx context.Context, opts Options) (*Result, error) {
	states := make(map[Source]*sectionState, 4)
	for _, src := range AllSources() {
		if opts.Enabled[src] {
			states[src] = &sectionState{}
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	for src, state := range states {
		src, state := src, state
		g.Go(func() error {
			state.fragment, state.records, state.err = p.collectOne(gctx, src, opts)
			if state.err != nil {
				p.log.Warn().Str("source", string(src)).Err(state.err).Msg("source failed")
			} else {
				p.log.Info().Str("source", string(src)).Int("records", state.records).Msg("source collected")
			}
			return nil
		})
	}
	// Goroutines never return errors; the barrier exists so assembly sees
	// every section.
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var sections []report.Section
	var outcomes []Outcome
	for _, src := range AllSources() {
		state, ok := states[src]
		if !ok {
			continue // disabled: no section at all
		}
		section := report.Section{Title: sectionTitle(src)}
		if state.err != nil {
			section.Unavailable = state.err.Error()
		} else {
			section.Body = state.fragment
		}
		sections = append(sections, section)
		outcomes = append(outcomes, Outcome{Source: src, Records: state.records, Err: state.err})
	}

	return &Result{
		Document: report.Assemble(p.now().UTC(), sections),
		Outcomes: outcomes,
	}, nil
}

// collectOne dispatches to the source's collector and renders the fragment.
// A panic escaping an adapter is contained here and reported as that
// source's failure, keeping the sibling collectors alive.
func (p *Pipeline) collectOne(ctx context.Context, src Source, opts Options) (fragment string, records int, err error) {
	defer func() {
		if r := recover(); r != nil {
			fragment, records = "", 0
			err = fmt.Errorf("collector panic: %v", r)
		}
	}()

	switch src {
	case SourceEconomic:
		events, cerr := p.economic.Collect(ctx, opts.Window, opts.Economic)
		if cerr != nil {
			return "", 0, cerr
		}
		p.logDegraded(src, p.economic)
		return report.RenderEconomic(events), len(events), nil

	case SourceEarnings:
		days, cerr := p.earnings.Collect(ctx, opts.Window)
		if cerr != nil {
			return "", 0, cerr
		}
		p.logDegraded(src, p.earnings)
		return report.RenderEarnings(days), countEvents(days), nil

	case SourceTwitter:
		feeds, cerr := p.twitter.Collect(ctx, opts.Window, opts.Twitter)
		if cerr != nil {
			return "", 0, cerr
		}
		p.logDegraded(src, p.twitter)
		return report.RenderMicroblog(feeds), countPosts(feeds), nil

	case SourceReddit:
		feeds, cerr := p.reddit.Collect(ctx, opts.Window, opts.Reddit)
		if cerr != nil {
			return "", 0, cerr
		}
		p.logDegraded(src, p.reddit)
		return report.RenderCommunity(feeds), countPosts(feeds), nil
	}
	return "", 0, fmt.Errorf("unknown source %q", src)
}

// logDegraded emits the source's degraded-record count when the collector
// tracks one and the last collection produced any.
func (p *Pipeline) logDegraded(src Source, c any) {
	dc, ok := c.(degradedCounter)
	if !ok {
		return
	}
	if n := dc.DegradedCount(); n > 0 {
		p.log.Debug().Str("source", string(src)).Int("degraded", n).Msg("records kept with unparseable fields")
	}
}

func sectionTitle(src Source) string {
	switch src {
	case SourceEconomic:
		return report.TitleEconomic
	case SourceEarnings:
		return report.TitleEarnings
	case SourceTwitter:
		return report.TitleMicroblog
	case SourceReddit:
		return report.TitleCommunity
	}
	return string(src)
}

func countEvents(days []models.EarningsDay) int {
	n := 0
	for _, d := range days {
		n += len(d.Events)
	}
	return n
}

func countPosts(feeds []models.SocialFeed) int {
	n := 0
	for _, f := range feeds {
		n += len(f.Posts)
	}
	return n
}
