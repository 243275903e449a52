package sources

import (
	"context"
	"fmt"
	"time"

	"github.com/massalia/crawler/internal/config"
	"github.com/massalia/crawler/internal/extract"
	"github.com/massalia/crawler/internal/fetch"
	"github.com/massalia/crawler/internal/model"
)

// ConfigurableParser extracts events from a single listing page using
// the source's selector configuration. It covers sites whose listing
// markup carries everything we need.
type ConfigurableParser struct {
	source config.Source
	engine *extract.Engine
}

func newConfigurable(src config.Source) Parser {
	hour, minute := src.DefaultEventTime()
	return &ConfigurableParser{
		source: src,
		engine: extract.NewEngine(src.Selectors, src.URL).WithDefaultTime(hour, minute),
	}
}

// Source returns the source configuration this parser serves
func (p *ConfigurableParser) Source() config.Source { return p.source }

// Parse fetches the listing page and converts every extractable item.
// Items that cannot become a valid event are skipped, never fatal.
func (p *ConfigurableParser) Parse(ctx context.Context, client *fetch.Client) ([]*model.Event, error) {
	result := client.Fetch(ctx, p.source.URL, p.source.ID)
	if !result.Success() {
		return nil, fmt.Errorf("fetch listing %s: %s", p.source.URL, fetchFailure(result))
	}

	parsed, err := p.engine.Parse(result.Body)
	if err != nil {
		return nil, fmt.Errorf("parse listing %s: %w", p.source.URL, err)
	}

	var events []*model.Event
	for _, item := range parsed {
		event, err := toEvent(p.source, item)
		if err != nil {
			continue
		}
		events = append(events, event)
	}
	return events, nil
}

// toEvent converts raw extraction output to the canonical event.
// Items without a resolvable date are dropped here; name and URL were
// already required by the engine.
func toEvent(src config.Source, item extract.ParsedEvent) (*model.Event, error) {
	if !item.HasDate {
		return nil, fmt.Errorf("item %q has no date", item.Name)
	}

	start := item.Date
	if item.StartTime != "" {
		var hour, minute int
		if _, err := fmt.Sscanf(item.StartTime, "%d:%d", &hour, &minute); err == nil {
			start = time.Date(start.Year(), start.Month(), start.Day(), hour, minute, 0, 0, model.ParisTZ)
		}
	}

	var locations []string
	if item.Location != "" {
		locations = append(locations, item.Location)
	}

	return model.NewEvent(model.Event{
		Name:             item.Name,
		EventURL:         item.EventURL,
		Start:            start,
		PerformanceDates: item.Dates,
		Description:      item.Description,
		Image:            item.ImageURL,
		Categories:       []string{mapCategory(item.Category, src.CategoryMap)},
		Locations:        locations,
		Tags:             item.Tags,
		SourceID:         sourceID(src, item.EventURL),
	})
}
