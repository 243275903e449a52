package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/massalia/crawler/internal/cache"
	"github.com/massalia/crawler/internal/classify"
	"github.com/massalia/crawler/internal/config"
	"github.com/massalia/crawler/internal/content"
	"github.com/massalia/crawler/internal/fetch"
	"github.com/massalia/crawler/internal/pipeline"
	"github.com/massalia/crawler/internal/selection"
	"github.com/massalia/crawler/internal/venue"
	"github.com/massalia/crawler/internal/worker"
)

var (
	sourcesFile  string
	criteriaFile string
	venuesFile   string
	outputDir    string
	cacheDir     string
	onlySource   string
	limit        int
	concurrency  int
	crawlTimeout time.Duration
	dryRun       bool
	noCache      bool
	noRobots     bool
	force        bool
	httpProxy    string
	httpsProxy   string
	llmEnabled   bool
	llmModel     string
)

// crawlCmd represents the crawl command
var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Crawl configured sources and write event content files",
	Long: `Crawl fetches every enabled source, extracts events, filters them
through the selection criteria and writes one markdown file per event.

Example:
  crawler crawl
  crawler crawl --source le-silo --limit 5 --dry-run
  crawler crawl --no-cache --output ./content/events --verbose
  crawler crawl --llm --llm-model gpt-4o-mini`,
	Args: cobra.NoArgs,
	RunE: runCrawl,
}

func init() {
	rootCmd.AddCommand(crawlCmd)

	// Input/output flags
	crawlCmd.Flags().StringVar(&sourcesFile, "sources", "configs/sources.yaml", "sources configuration file")
	crawlCmd.Flags().StringVar(&criteriaFile, "criteria", "configs/selection-criteria.yaml", "selection criteria file (missing file uses defaults)")
	crawlCmd.Flags().StringVar(&venuesFile, "venues", "configs/venues.yaml", "venues file for location mapping (optional)")
	crawlCmd.Flags().StringVarP(&outputDir, "output", "o", "content/events", "output directory for event files")
	crawlCmd.Flags().BoolVar(&dryRun, "dry-run", false, "report what would be written without writing")
	crawlCmd.Flags().BoolVar(&force, "force", false, "overwrite existing event files")

	// Scope flags
	crawlCmd.Flags().StringVar(&onlySource, "source", "", "crawl only this source id")
	crawlCmd.Flags().IntVar(&limit, "limit", 0, "max events per source (0 = unlimited)")
	crawlCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of sources crawled in parallel")
	crawlCmd.Flags().DurationVar(&crawlTimeout, "timeout", 10*time.Minute, "total crawl timeout")

	// HTTP flags
	crawlCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the response cache (force fresh fetches)")
	crawlCmd.Flags().StringVar(&cacheDir, "cache-dir", defaultCacheDir(), "response cache directory")
	crawlCmd.Flags().BoolVar(&noRobots, "no-robots", false, "skip robots.txt checks")
	crawlCmd.Flags().StringVar(&httpProxy, "http-proxy", "", "HTTP proxy URL (overrides HTTP_PROXY env var)")
	crawlCmd.Flags().StringVar(&httpsProxy, "https-proxy", "", "HTTPS proxy URL (overrides HTTPS_PROXY env var)")

	// LLM flags
	crawlCmd.Flags().BoolVar(&llmEnabled, "llm", false, "enable LLM category refinement for uncertain events")
	crawlCmd.Flags().StringVar(&llmModel, "llm-model", "gpt-4o-mini", "LLM model name")
}

func runCrawl(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), crawlTimeout)
	defer cancel()

	cfg, err := config.LoadSources(sourcesFile)
	if err != nil {
		return err
	}

	srcs := cfg.Enabled()
	if onlySource != "" {
		src, ok := cfg.ByID(onlySource)
		if !ok {
			return fmt.Errorf("unknown source id %q", onlySource)
		}
		srcs = []config.Source{src}
	}
	if len(srcs) == 0 {
		return fmt.Errorf("no enabled sources in %s", sourcesFile)
	}

	criteria, err := selection.Load(criteriaFile)
	if err != nil {
		return err
	}

	venues, err := venue.Load(venuesFile)
	if err != nil {
		return err
	}

	// Assemble fetch stack
	opts := fetch.DefaultOptions()
	opts.CheckRobots = !noRobots
	opts.HTTPProxy = httpProxy
	opts.HTTPSProxy = httpsProxy

	var responseCache cache.Cache
	if !noCache {
		responseCache = cache.NewLayeredCache(10*time.Minute, cacheDir, opts.CacheTTL)
	}

	limiter := worker.NewLimiter(2 * time.Second)
	for _, src := range srcs {
		limiter.SetDelay(src.ID, src.RateLimit.Delay())
	}

	client := fetch.NewClient(opts, responseCache, limiter)

	// The criteria's category mappings extend the classifier vocabulary
	classifier := classify.New(criteria.CategoryMapping.Mappings, criteria.CategoryMapping.Default)

	var assist *classify.Assist
	if llmEnabled {
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
		assist, err = classify.NewAssist(apiKey, llmModel)
		if err != nil {
			return fmt.Errorf("initialize LLM assist: %w", err)
		}
	}

	writer := content.NewWriter(outputDir, dryRun, !force)

	p := pipeline.NewPipeline(client, classifier, assist, criteria, venues, writer, pipeline.Options{
		Limit:   limit,
		Verbose: verbose,
	})

	if verbose {
		fmt.Fprintf(os.Stderr, "Crawling %d source(s) with %d worker(s)\n", len(srcs), concurrency)
		fmt.Fprintf(os.Stderr, "Output: %s (dry-run: %v, cache: %v)\n", outputDir, dryRun, !noCache)
		fmt.Fprintln(os.Stderr)
	}

	reports := p.CrawlAll(ctx, srcs, concurrency)

	// Summary
	var extracted, accepted, rejected, duplicates, failed int
	for _, report := range reports {
		if report.Err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", report.SourceID, report.Err)
			continue
		}
		extracted += report.Extracted
		accepted += report.Accepted
		rejected += report.Rejected
		duplicates += report.Duplicates
		fmt.Fprintf(os.Stderr, "✓ %s: %d extracted, %d accepted, %d rejected, %d duplicates\n",
			report.SourceID, report.Extracted, report.Accepted, report.Rejected, report.Duplicates)
	}

	stats := writer.Stats()
	fmt.Fprintln(os.Stderr)
	fmt.Fprintf(os.Stderr, "Sources:   %d ok, %d failed\n", len(reports)-failed, failed)
	fmt.Fprintf(os.Stderr, "Events:    %d extracted, %d accepted, %d rejected, %d duplicates\n",
		extracted, accepted, rejected, duplicates)
	fmt.Fprintf(os.Stderr, "Files:     %d created, %d skipped, %d failed\n", stats.Created, stats.SkippedExists, stats.Failed)
	if dryRun {
		fmt.Fprintln(os.Stderr, "Dry run: no files were written")
	}

	// A failing source is reported, not fatal, as long as something ran
	if failed == len(reports) {
		return fmt.Errorf("all %d sources failed", failed)
	}
	return nil
}

func defaultCacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".crawler-cache"
	}
	return filepath.Join(home, ".crawler", "cache")
}
