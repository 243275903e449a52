package selection

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/massalia/crawler/internal/model"
)

// Result of evaluating one candidate event
type Result struct {
	Accepted bool
	Reason   string
	Rule     string
}

// Geography scopes events to the local area. Local keywords name
// venues and districts that are trusted even when an excluded city
// appears in the surrounding text (a film about Paris screened locally
// must not be rejected).
type Geography struct {
	RequiredLocation string   `yaml:"required_location"`
	IncludeNearby    []string `yaml:"include_nearby"`
	ExcludeLocations []string `yaml:"exclude_locations"`
	LocalKeywords    []string `yaml:"local_keywords"`
}

// Dates bounds the accepted date window relative to today
type Dates struct {
	MinDaysAhead int  `yaml:"min_days_ahead"`
	MaxDaysAhead int  `yaml:"max_days_ahead"`
	ExcludePast  bool `yaml:"exclude_past"`
}

// EventTypes filters on event type text
type EventTypes struct {
	Include []string `yaml:"include"`
	Exclude []string `yaml:"exclude"`
}

// Keywords accepts or rejects on free-text matches
type Keywords struct {
	Positive []string `yaml:"positive"`
	Negative []string `yaml:"negative"`
}

// CategoryMapping maps source category strings to the site taxonomy
type CategoryMapping struct {
	Default  string            `yaml:"default"`
	Mappings map[string]string `yaml:"mappings"`
}

// Criteria decides which extracted events make it into the calendar
type Criteria struct {
	Version         string          `yaml:"version"`
	Geography       Geography       `yaml:"geography"`
	Dates           Dates           `yaml:"dates"`
	EventTypes      EventTypes      `yaml:"event_types"`
	Keywords        Keywords        `yaml:"keywords"`
	RequiredFields  []string        `yaml:"required_fields"`
	CategoryMapping CategoryMapping `yaml:"category_mapping"`

	now func() time.Time
}

// Default returns the criteria used when no configuration file exists
func Default() *Criteria {
	return &Criteria{
		Version: "1.0",
		Geography: Geography{
			RequiredLocation: "Marseille",
		},
		Dates: Dates{
			MinDaysAhead: 0,
			MaxDaysAhead: 90,
			ExcludePast:  true,
		},
		RequiredFields: []string{"name", "date"},
		CategoryMapping: CategoryMapping{
			Default: "communaute",
		},
		now: time.Now,
	}
}

// Evaluate applies the selection rules in a fixed order and stops at
// the first failure: required fields, date window, excluded locations,
// event types, negative keywords, then acceptance (with a positive
// keyword note when one matched). A zero date means no date was
// extracted.
func (c *Criteria) Evaluate(name string, date time.Time, location, description, category string) Result {
	rawText := strings.Join([]string{name, location, description, category}, " ")
	allText := strings.ToLower(rawText)

	if result := c.checkRequiredFields(name, date, location); !result.Accepted {
		return result
	}

	if !date.IsZero() {
		if result := c.checkDateWindow(date); !result.Accepted {
			return result
		}
	}

	if result := c.checkExcludedLocations(location, rawText); !result.Accepted {
		return result
	}

	if result := c.checkEventTypes(allText, category); !result.Accepted {
		return result
	}

	for _, keyword := range c.Keywords.Negative {
		if strings.Contains(allText, strings.ToLower(keyword)) {
			return Result{
				Reason: fmt.Sprintf("contains negative keyword: %q", keyword),
				Rule:   "negative_keyword",
			}
		}
	}

	if found := c.findPositiveKeywords(allText); len(found) > 0 {
		return Result{
			Accepted: true,
			Reason:   "accepted with positive keywords: " + strings.Join(found, ", "),
			Rule:     "positive_keywords",
		}
	}

	return Result{
		Accepted: true,
		Reason:   "accepted - passed all criteria",
		Rule:     "all_criteria",
	}
}

// MapCategory maps a source category string through the configured
// mappings (case-insensitive substring match, keys checked in sorted
// order so overlapping keys resolve the same way every run), falling
// back to the default category
func (c *Criteria) MapCategory(sourceCategory string) string {
	if sourceCategory == "" {
		return c.CategoryMapping.Default
	}

	lower := strings.ToLower(sourceCategory)
	for _, source := range sortedKeys(c.CategoryMapping.Mappings) {
		if strings.Contains(lower, strings.ToLower(source)) {
			return c.CategoryMapping.Mappings[source]
		}
	}
	return c.CategoryMapping.Default
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func (c *Criteria) checkRequiredFields(name string, date time.Time, location string) Result {
	var missing []string
	for _, field := range c.RequiredFields {
		switch field {
		case "name":
			if name == "" {
				missing = append(missing, "name")
			}
		case "date":
			if date.IsZero() {
				missing = append(missing, "date")
			}
		case "location":
			if location == "" {
				missing = append(missing, "location")
			}
		}
	}

	if len(missing) > 0 {
		return Result{
			Reason: "missing required fields: " + strings.Join(missing, ", "),
			Rule:   "required_fields",
		}
	}
	return Result{Accepted: true}
}

func (c *Criteria) checkDateWindow(date time.Time) Result {
	now := c.timeNow().In(model.ParisTZ)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, model.ParisTZ)

	if c.Dates.ExcludePast && date.Before(today) {
		return Result{Reason: "event date is in the past", Rule: "past_date"}
	}

	if date.Before(today.AddDate(0, 0, c.Dates.MinDaysAhead)) {
		return Result{
			Reason: fmt.Sprintf("event date is before minimum (%d days ahead)", c.Dates.MinDaysAhead),
			Rule:   "min_days",
		}
	}

	if date.After(today.AddDate(0, 0, c.Dates.MaxDaysAhead)) {
		return Result{
			Reason: fmt.Sprintf("event date is beyond maximum (%d days ahead)", c.Dates.MaxDaysAhead),
			Rule:   "max_days",
		}
	}

	return Result{Accepted: true}
}

// checkExcludedLocations matches excluded place names case-sensitively
// so that proper nouns like "Paris" do not collide with common words
func (c *Criteria) checkExcludedLocations(location, rawText string) Result {
	// A location matching a known local keyword is trusted outright
	if location != "" && len(c.Geography.LocalKeywords) > 0 {
		locNorm := normalizeLocation(location)
		for _, keyword := range c.Geography.LocalKeywords {
			kwNorm := normalizeLocation(keyword)
			if strings.Contains(locNorm, kwNorm) || strings.Contains(kwNorm, locNorm) {
				return Result{Accepted: true}
			}
		}
	}

	checkText := location + " " + rawText
	for _, excluded := range c.Geography.ExcludeLocations {
		if strings.Contains(checkText, excluded) {
			return Result{
				Reason: fmt.Sprintf("excluded location: %q", excluded),
				Rule:   "excluded_location",
			}
		}
	}
	return Result{Accepted: true}
}

func (c *Criteria) checkEventTypes(allText, category string) Result {
	checkText := strings.ToLower(allText + " " + category)

	if len(c.EventTypes.Include) > 0 {
		matched := false
		for _, included := range c.EventTypes.Include {
			if strings.Contains(checkText, strings.ToLower(included)) {
				matched = true
				break
			}
		}
		if !matched {
			return Result{
				Reason: "does not match any included event type",
				Rule:   "no_included_type",
			}
		}
	}

	for _, excluded := range c.EventTypes.Exclude {
		if strings.Contains(checkText, strings.ToLower(excluded)) {
			return Result{
				Reason: fmt.Sprintf("excluded event type: %q", excluded),
				Rule:   "excluded_type",
			}
		}
	}

	return Result{Accepted: true}
}

func (c *Criteria) findPositiveKeywords(allText string) []string {
	var found []string
	for _, keyword := range c.Keywords.Positive {
		if strings.Contains(allText, strings.ToLower(keyword)) {
			found = append(found, keyword)
		}
	}
	return found
}

func (c *Criteria) timeNow() time.Time {
	if c.now != nil {
		return c.now()
	}
	return time.Now()
}

func normalizeLocation(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")
	return s
}
