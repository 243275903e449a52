package sources

import (
	"context"
	"fmt"

	"github.com/massalia/crawler/internal/config"
	"github.com/massalia/crawler/internal/extract"
	"github.com/massalia/crawler/internal/fetch"
	"github.com/massalia/crawler/internal/model"
)

// DetailParser implements the two-phase protocol: collect candidate
// detail links from the listing page (dropping sold-out and cancelled
// items), then fetch and extract each detail page independently. One
// failing item never aborts its siblings.
type DetailParser struct {
	source config.Source
	engine *extract.Engine

	// Per-run counters, refreshed by Parse
	stats DetailStats
}

// DetailStats describes one two-phase run
type DetailStats struct {
	Candidates  int
	FetchFailed int
	ParseFailed int
	Built       int
}

func newDetail(src config.Source) Parser {
	hour, minute := src.DefaultEventTime()
	return &DetailParser{
		source: src,
		engine: extract.NewEngine(src.Selectors, src.URL).WithDefaultTime(hour, minute),
	}
}

// Source returns the source configuration this parser serves
func (p *DetailParser) Source() config.Source { return p.source }

// Stats returns the counters from the last Parse call
func (p *DetailParser) Stats() DetailStats { return p.stats }

// Parse runs both phases. An empty result is valid: it simply means
// the listing was empty or every item was filtered or failed.
func (p *DetailParser) Parse(ctx context.Context, client *fetch.Client) ([]*model.Event, error) {
	p.stats = DetailStats{}

	listing := client.Fetch(ctx, p.source.URL, p.source.ID)
	if !listing.Success() {
		return nil, fmt.Errorf("fetch listing %s: %s", p.source.URL, fetchFailure(listing))
	}

	candidates, err := p.engine.Candidates(listing.Body)
	if err != nil {
		return nil, fmt.Errorf("parse listing %s: %w", p.source.URL, err)
	}
	p.stats.Candidates = len(candidates)

	var events []*model.Event
	for _, link := range candidates {
		if ctx.Err() != nil {
			return events, ctx.Err()
		}

		detail := client.Fetch(ctx, link, p.source.ID)
		if !detail.Success() {
			p.stats.FetchFailed++
			continue
		}

		event, ok := p.buildFromDetail(link, detail.Body)
		if !ok {
			p.stats.ParseFailed++
			continue
		}
		events = append(events, event)
		p.stats.Built++
	}

	return events, nil
}

// buildFromDetail extracts a single event from a detail page. The
// engine falls back to treating the whole document as one item when no
// item container matches.
func (p *DetailParser) buildFromDetail(link, markup string) (*model.Event, bool) {
	parsed, err := p.engine.Parse(markup)
	if err != nil || len(parsed) == 0 {
		return nil, false
	}

	item := parsed[0]
	// The canonical URL is the page we fetched, not whatever link the
	// detail page happens to contain
	item.EventURL = link

	event, err := toEvent(p.source, item)
	if err != nil {
		return nil, false
	}
	return event, true
}

func fetchFailure(result *fetch.Result) string {
	if result.Error != "" {
		return result.Error
	}
	return fmt.Sprintf("status %d", result.StatusCode)
}
