// marketbrief — consolidated market intelligence reports.
//
// Main CLI entrypoint using the cobra command framework.
package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/marketbrief/marketbrief/internal/collector"
	"github.com/marketbrief/marketbrief/internal/collector/earnings"
	"github.com/marketbrief/marketbrief/internal/collector/econcal"
	"github.com/marketbrief/marketbrief/internal/collector/reddit"
	"github.com/marketbrief/marketbrief/internal/collector/twitter"
	"github.com/marketbrief/marketbrief/internal/config"
	"github.com/marketbrief/marketbrief/internal/pipeline"
	"github.com/marketbrief/marketbrief/pkg/timeutil"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

var (
	cfg *config.Config
	log zerolog.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "marketbrief",
	Short: "marketbrief — consolidated market intelligence reports",
	Long: `marketbrief aggregates scheduled economic releases, corporate earnings
announcements, and recent social-media activity from independent public data
sources into one Markdown report. Sources fail independently: an outage at
one never blocks the others.`,
}

func init() {
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		// Local .env first, so file-based credentials reach viper's env pass.
		_ = godotenv.Load()

		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		log = newLogger(cfg.Logging)
		return nil
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(reportCmd)
}

func newLogger(lc config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(lc.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	if override, _ := rootCmd.PersistentFlags().GetString("log-level"); override != "" {
		if l, err := zerolog.ParseLevel(override); err == nil {
			level = l
		}
	}

	var out = os.Stderr
	if lc.Format == "json" {
		return zerolog.New(out).Level(level).With().Timestamp().Logger()
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}).
		Level(level).With().Timestamp().Logger()
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("marketbrief %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Report Command ---

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate a consolidated market report",
	Long: `Collect the enabled sources over the requested window and write the
assembled Markdown report. Individual source failures are reported on stderr
and rendered as explicit placeholders; they do not fail the run.`,
	RunE: runReport,
}

func init() {
	f := reportCmd.Flags()
	f.String("output", "market_report.md", "output file path")
	f.String("start", "", "window start date, YYYY-MM-DD (default: today)")
	f.Int("lookahead", 0, "number of days ahead to include")
	f.Bool("week-ahead", false, "cover the seven days from the start date (overrides --lookahead)")

	f.StringSlice("countries", nil, "economic calendar country filters")
	f.StringSlice("categories", nil, "economic calendar category filters")
	f.StringSlice("importance", nil, "economic calendar importance filters (1-3)")

	f.StringSlice("twitter-handles", nil, "Twitter handles to include (@ optional)")
	f.StringSlice("reddit-subreddits", nil, "subreddits to include (r/ optional)")
	f.StringSlice("reddit-users", nil, "Reddit usernames to include (u/ optional)")
	f.Int("reddit-limit", 0, "posts per subreddit/user (default from config)")

	f.Bool("skip-economic", false, "skip the economic calendar source")
	f.Bool("skip-earnings", false, "skip the earnings calendar source")
	f.Bool("skip-twitter", false, "skip the Twitter source")
	f.Bool("skip-reddit", false, "skip the Reddit source")
}

func runReport(cmd *cobra.Command, args []string) error {
	f := cmd.Flags()

	start := time.Now().UTC()
	if s, _ := f.GetString("start"); s != "" {
		parsed, err := timeutil.ParseDate(s)
		if err != nil {
			return fmt.Errorf("invalid --start date %q (want YYYY-MM-DD): %w", s, err)
		}
		start = parsed
	}
	lookahead, _ := f.GetInt("lookahead")
	window := collector.NewWindow(start, lookahead)
	if weekAhead, _ := f.GetBool("week-ahead"); weekAhead {
		window = collector.WeekAhead(start)
	}

	handles, _ := f.GetStringSlice("twitter-handles")
	subreddits, _ := f.GetStringSlice("reddit-subreddits")
	redditUsers, _ := f.GetStringSlice("reddit-users")

	skipEconomic, _ := f.GetBool("skip-economic")
	skipEarnings, _ := f.GetBool("skip-earnings")
	skipTwitter, _ := f.GetBool("skip-twitter")
	skipReddit, _ := f.GetBool("skip-reddit")

	// Social sources need targets to be worth a section at all.
	enabled := map[pipeline.Source]bool{
		pipeline.SourceEconomic: !skipEconomic,
		pipeline.SourceEarnings: !skipEarnings,
		pipeline.SourceTwitter:  !skipTwitter && len(nonEmpty(handles)) > 0,
		pipeline.SourceReddit:   !skipReddit && len(nonEmpty(subreddits))+len(nonEmpty(redditUsers)) > 0,
	}
	if !enabled[pipeline.SourceEconomic] && !enabled[pipeline.SourceEarnings] &&
		!enabled[pipeline.SourceTwitter] && !enabled[pipeline.SourceReddit] {
		log.Warn().Msg("all sources disabled; the report will contain no sections")
	}

	countries, _ := f.GetStringSlice("countries")
	categories, _ := f.GetStringSlice("categories")
	importance, _ := f.GetStringSlice("importance")
	redditLimit, _ := f.GetInt("reddit-limit")
	if redditLimit <= 0 {
		redditLimit = cfg.Reddit.Limit
	}

	httpClient := collector.NewHTTPClient(time.Duration(cfg.HTTP.TimeoutSec) * time.Second)
	p := pipeline.New(
		econcal.New(econcal.Config{Client: cfg.Economic.Client, Secret: cfg.Economic.Secret, HTTP: httpClient}),
		earnings.New(earnings.Config{HTTP: httpClient}),
		twitter.New(twitter.Config{BearerToken: cfg.Twitter.BearerToken, HTTP: httpClient}),
		reddit.New(reddit.Config{HTTP: httpClient}),
		log,
	)

	res, err := p.Run(cmd.Context(), pipeline.Options{
		Window:   window,
		Enabled:  enabled,
		Economic: econcal.Filters{Countries: countries, Categories: categories, Importance: importance},
		Twitter:  twitter.Filters{Handles: handles, MaxResults: cfg.Twitter.MaxResults},
		Reddit:   reddit.Filters{Subreddits: subreddits, Users: redditUsers, Limit: redditLimit},
	})
	if err != nil {
		return err
	}

	output, _ := f.GetString("output")
	if err := os.WriteFile(output, []byte(res.Document), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	// Partial data is not a fatal outcome; failed sources were already
	// reported on the diagnostic stream by the pipeline.
	if failed := res.Failed(); len(failed) > 0 {
		log.Warn().Int("failed_sources", len(failed)).Msg("report written with placeholders")
	}
	log.Info().Str("output", output).Msg("report written")
	fmt.Printf("Report written to %s\n", output)
	return nil
}

func nonEmpty(values []string) []string {
	out := values[:0:0]
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}
