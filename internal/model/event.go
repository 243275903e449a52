package model

import (
	"fmt"
	"strings"
	"time"
)

// ParisTZ is the timezone for all event dates.
var ParisTZ = mustLoadParis()

func mustLoadParis() *time.Location {
	loc, err := time.LoadLocation("Europe/Paris")
	if err != nil {
		return time.FixedZone("CET", 3600)
	}
	return loc
}

// French weekday and month names used for the dates taxonomy.
var frenchDays = [...]string{"dimanche", "lundi", "mardi", "mercredi", "jeudi", "vendredi", "samedi"}

var frenchMonthSlugs = [...]string{
	"janvier", "fevrier", "mars", "avril", "mai", "juin",
	"juillet", "aout", "septembre", "octobre", "novembre", "decembre",
}

// Event is the canonical event record written to the content tree.
// It matches the Hugo front matter schema of the events archetype.
type Event struct {
	// Required
	Name     string
	EventURL string
	Start    time.Time

	// All performance dates when the source announces a range or list;
	// each date becomes its own content file
	PerformanceDates []time.Time

	// Optional
	Description string
	Image       string
	Categories  []string
	Locations   []string
	Tags        []string

	// Multi-day event support
	EventGroupID string
	DayOf        string // e.g. "Jour 1 sur 3"

	// Tracking
	SourceID string
	Draft    bool
}

// NewEvent validates required fields and normalizes categories and
// locations of the given event. Categories are lowercased; locations
// become slugs. The returned event should be treated as immutable.
func NewEvent(e Event) (*Event, error) {
	if e.Name == "" {
		return nil, fmt.Errorf("event name is required")
	}
	if e.EventURL == "" {
		return nil, fmt.Errorf("event URL is required")
	}
	if e.Start.IsZero() {
		return nil, fmt.Errorf("event start time is required")
	}
	for i, c := range e.Categories {
		e.Categories[i] = strings.ToLower(c)
	}
	for i, l := range e.Locations {
		e.Locations[i] = Slugify(l)
	}
	return &e, nil
}

// Title is the page title. Multi-day events append the day marker.
func (e *Event) Title() string {
	if e.DayOf != "" {
		return e.Name + " - " + e.DayOf
	}
	return e.Name
}

// Slug derives the URL-safe identifier from the title.
func (e *Event) Slug() string {
	return Slugify(e.Title())
}

// StartTime returns the event start time in 24h format.
func (e *Event) StartTime() string {
	return e.Start.Format("15:04")
}

// ExpiryDate is midnight after the event, when it stops being shown.
func (e *Event) ExpiryDate() time.Time {
	next := e.Start.AddDate(0, 0, 1)
	return time.Date(next.Year(), next.Month(), next.Day(), 0, 0, 0, 0, e.Start.Location())
}

// DatesTaxonomy returns the French date taxonomy terms ("jour-DD-mois").
func (e *Event) DatesTaxonomy() []string {
	day := frenchDays[int(e.Start.Weekday())]
	month := frenchMonthSlugs[int(e.Start.Month())-1]
	return []string{fmt.Sprintf("%s-%02d-%s", day, e.Start.Day(), month)}
}

// FilePath is the content file path, derived purely from the event's
// start date and slug: YYYY/MM/DD/slug.fr.md.
func (e *Event) FilePath() string {
	return fmt.Sprintf("%d/%02d/%02d/%s.fr.md",
		e.Start.Year(), int(e.Start.Month()), e.Start.Day(), e.Slug())
}
