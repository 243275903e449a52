// Package pipeline wires the crawl stages together: parse a source,
// map venues, classify, apply selection criteria, and write content
// files. Sources are independent and run concurrently on a worker pool.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/massalia/crawler/internal/classify"
	"github.com/massalia/crawler/internal/config"
	"github.com/massalia/crawler/internal/content"
	"github.com/massalia/crawler/internal/fetch"
	"github.com/massalia/crawler/internal/selection"
	"github.com/massalia/crawler/internal/sources"
	"github.com/massalia/crawler/internal/venue"
	"github.com/massalia/crawler/internal/worker"
)

// Options controls per-run pipeline behavior
type Options struct {
	Limit   int // max events per source, 0 = unlimited
	Verbose bool
}

// Pipeline orchestrates the complete crawl for configured sources
type Pipeline struct {
	client     *fetch.Client
	classifier *classify.Classifier
	assist     *classify.Assist // optional, nil when disabled
	criteria   *selection.Criteria
	venues     *venue.Manager
	writer     *content.Writer
	opts       Options
}

// NewPipeline assembles a pipeline from its components. The assist may
// be nil to disable LLM refinement.
func NewPipeline(
	client *fetch.Client,
	classifier *classify.Classifier,
	assist *classify.Assist,
	criteria *selection.Criteria,
	venues *venue.Manager,
	writer *content.Writer,
	opts Options,
) *Pipeline {
	return &Pipeline{
		client:     client,
		classifier: classifier,
		assist:     assist,
		criteria:   criteria,
		venues:     venues,
		writer:     writer,
		opts:       opts,
	}
}

// SourceReport summarizes one source's crawl
type SourceReport struct {
	SourceID   string
	SourceName string
	Extracted  int
	Accepted   int
	Rejected   int
	Duplicates int
	Refined    int
	Results    []content.Result
	Err        error
}

// GetError implements worker.Result
func (r *SourceReport) GetError() error { return r.Err }

// sourceJob carries the crawl context so caller cancellation reaches
// the fetch client through the pool
type sourceJob struct {
	pipeline *Pipeline
	source   config.Source
	ctx      context.Context
}

func (j sourceJob) Execute(context.Context) worker.Result {
	return j.pipeline.CrawlSource(j.ctx, j.source)
}

// CrawlAll runs every source on a bounded worker pool and collects the
// per-source reports. A failing source is reported, never fatal.
func (p *Pipeline) CrawlAll(ctx context.Context, srcs []config.Source, workers int) []*SourceReport {
	pool := worker.NewPool(workers)
	pool.Start()

	for _, src := range srcs {
		pool.Submit(sourceJob{pipeline: p, source: src, ctx: ctx})
	}

	results := pool.Wait()
	reports := make([]*SourceReport, 0, len(results))
	for _, result := range results {
		if report, ok := result.(*SourceReport); ok {
			reports = append(reports, report)
		}
	}
	return reports
}

// CrawlSource fetches, extracts, filters and writes one source. Errors
// stop only this source; per-event rejections are counted, not fatal.
func (p *Pipeline) CrawlSource(ctx context.Context, src config.Source) *SourceReport {
	report := &SourceReport{SourceID: src.ID, SourceName: src.Name}

	parser, err := sources.New(src)
	if err != nil {
		report.Err = err
		return report
	}

	events, err := parser.Parse(ctx, p.client)
	if err != nil {
		report.Err = fmt.Errorf("source %s: %w", src.ID, err)
		return report
	}
	report.Extracted = len(events)

	if p.opts.Limit > 0 && len(events) > p.opts.Limit {
		events = events[:p.opts.Limit]
	}

	for _, event := range events {
		for i, loc := range event.Locations {
			event.Locations[i] = p.venues.MapLocation(loc)
		}
		location := strings.Join(event.Locations, " ")

		sourceCategory := ""
		if len(event.Categories) > 0 {
			sourceCategory = event.Categories[0]
		}

		cls := p.classifier.Classify(event.Name, event.Description, location, sourceCategory)
		if p.assist != nil && cls.IsUncertain() {
			refined := p.assist.Refine(ctx, event.Name, event.Description, cls)
			if refined.Category != cls.Category {
				report.Refined++
			}
			cls = refined
		}
		event.Categories = []string{cls.Category}

		sel := p.criteria.Evaluate(event.Name, event.Start, location, event.Description, cls.Category)
		if !sel.Accepted {
			report.Rejected++
			if p.opts.Verbose {
				fmt.Fprintf(os.Stderr, "  ✗ %s [%s]: %s\n", event.Name, sel.Rule, sel.Reason)
			}
			continue
		}

		// A file already carrying this source id means the event was
		// written on an earlier crawl, possibly under a different slug
		// or date; never write it a second time
		dedupID := event.SourceID
		if len(event.PerformanceDates) > 1 && dedupID != "" {
			dedupID += ":day1"
		}
		if dedupID != "" && len(p.writer.FindBySourceID(dedupID)) > 0 {
			report.Duplicates++
			if p.opts.Verbose {
				fmt.Fprintf(os.Stderr, "  = %s: already on disk (%s)\n", event.Name, event.SourceID)
			}
			continue
		}

		// A range or day list becomes one linked file per day
		if len(event.PerformanceDates) > 1 {
			report.Results = append(report.Results, p.writer.GenerateMultiDay(event, event.PerformanceDates, "")...)
		} else {
			result, err := p.writer.Generate(event)
			if err != nil {
				fmt.Printf("Warning: failed to write %q: %v\n", event.Name, err)
			}
			report.Results = append(report.Results, result)
		}
		report.Accepted++

		if p.opts.Verbose {
			fmt.Fprintf(os.Stderr, "  ✓ %s (%s, %.2f)\n", event.Name, cls.Category, cls.Confidence)
		}
	}

	return report
}
