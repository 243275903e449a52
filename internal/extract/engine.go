package extract

import (
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

const (
	maxTags           = 5
	maxTagLength      = 50
	descriptionMaxLen = 160
)

// Listing-page marker texts for items that should never reach the
// detail phase
var unavailableMarkers = []string{
	"complet",
	"annulé",
	"annule",
	"sold out",
	"cancelled",
	"reporté",
}

// ParsedEvent is the raw extraction output for one item, before
// conversion to a canonical event. Raw date/time strings are kept for
// diagnostics.
type ParsedEvent struct {
	Name        string
	EventURL    string
	Date        time.Time
	HasDate     bool
	Dates       []time.Time // all performance dates for multi-day events
	StartTime   string
	Location    string
	Description string
	Category    string
	ImageURL    string
	Tags        []string
	RawDate     string
	RawTime     string
}

// Engine extracts events from markup using a selector configuration.
// Malformed markup degrades to best-effort extraction, never an error
// per item.
type Engine struct {
	selectors     Selectors
	baseURL       *url.URL
	defaultHour   int
	defaultMinute int

	now func() time.Time
}

// NewEngine creates an extraction engine. Relative links and image
// sources are resolved against baseURL.
func NewEngine(selectors Selectors, baseURL string) *Engine {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		parsed = nil
	}
	return &Engine{
		selectors:     selectors.withDefaults(),
		baseURL:       parsed,
		defaultHour:   DefaultHour,
		defaultMinute: DefaultMinute,
		now:           time.Now,
	}
}

// WithDefaultTime overrides the start time applied to events whose
// markup carries no time
func (e *Engine) WithDefaultTime(hour, minute int) *Engine {
	e.defaultHour = hour
	e.defaultMinute = minute
	return e
}

// Parse extracts all event items from a page. Items lacking a name or
// a link are silently dropped.
func (e *Engine) Parse(markup string) ([]ParsedEvent, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parse markup: %w", err)
	}

	var events []ParsedEvent
	for _, item := range e.findItems(doc) {
		if ev, ok := e.parseItem(item); ok {
			events = append(events, ev)
		}
	}
	return events, nil
}

// Candidates returns the distinct detail-page links found on a listing
// page, in document order, skipping items whose text carries a
// sold-out or cancelled marker.
func (e *Engine) Candidates(markup string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parse markup: %w", err)
	}

	seen := make(map[string]bool)
	var links []string
	for _, item := range e.findItems(doc) {
		if isUnavailable(item.Text()) {
			continue
		}
		link := e.link(item)
		if link == "" || seen[link] {
			continue
		}
		seen[link] = true
		links = append(links, link)
	}
	return links, nil
}

func isUnavailable(text string) bool {
	lower := strings.ToLower(text)
	for _, marker := range unavailableMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// findItems locates the event item elements: the configured container
// and item selectors first, then the fallback chain, then the whole
// document as a single pseudo-item (the detail-page case).
func (e *Engine) findItems(doc *goquery.Document) []*goquery.Selection {
	if e.selectors.EventList != "" && e.selectors.EventItem != "" {
		container := doc.Find(e.selectors.EventList).First()
		if container.Length() > 0 {
			if items := asList(container.Find(e.selectors.EventItem)); len(items) > 0 {
				return items
			}
		}
	}

	if e.selectors.EventItem != "" {
		if items := asList(doc.Find(e.selectors.EventItem)); len(items) > 0 {
			return items
		}
	}

	for _, selector := range fallbackItemSelectors {
		if items := asList(doc.Find(selector)); len(items) > 0 {
			return items
		}
	}

	return []*goquery.Selection{doc.Selection}
}

func asList(sel *goquery.Selection) []*goquery.Selection {
	items := make([]*goquery.Selection, 0, sel.Length())
	sel.Each(func(_ int, s *goquery.Selection) {
		items = append(items, s)
	})
	return items
}

func (e *Engine) parseItem(item *goquery.Selection) (ParsedEvent, bool) {
	name := e.text(item, e.selectors.Name)
	if name == "" {
		return ParsedEvent{}, false
	}

	link := e.link(item)
	if link == "" {
		return ParsedEvent{}, false
	}

	ev := ParsedEvent{
		Name:     name,
		EventURL: link,
		RawDate:  e.text(item, e.selectors.Date),
		RawTime:  e.text(item, e.selectors.Time),
	}

	if ev.RawDate != "" {
		if d, ok := ParseFrenchDate(ev.RawDate, e.now(), e.defaultHour, e.defaultMinute); ok {
			ev.Date = d
			ev.HasDate = true
		}
		// Ranges and day lists ("du 3 au 5 février") expand to one
		// date per performance day. They also cover forms the single
		// date parser cannot read, so the first day doubles as the
		// start date.
		if dates := ParseAllFrenchDates(ev.RawDate, e.now(), e.defaultHour, e.defaultMinute); len(dates) > 0 {
			if len(dates) > 1 {
				ev.Dates = dates
			}
			if !ev.HasDate {
				ev.Date = dates[0]
				ev.HasDate = true
			}
		}
	}

	if h, m, ok := ParseFrenchTime(ev.RawTime); ok {
		ev.StartTime = fmt.Sprintf("%02d:%02d", h, m)
	}

	ev.Location = e.text(item, e.selectors.Location)
	ev.Description = e.description(item)
	ev.Category = e.text(item, e.selectors.Category)
	ev.ImageURL = e.image(item)
	ev.Tags = e.tags(item)
	return ev, true
}

// text returns the cleaned text of the first element matching selector
func (e *Engine) text(item *goquery.Selection, selector string) string {
	target := item.Find(selector).First()
	if target.Length() == 0 {
		return ""
	}
	return cleanText(target.Text())
}

// description sanitizes the inner markup of the description element so
// entities are decoded exactly once and script content is dropped
func (e *Engine) description(item *goquery.Selection) string {
	target := item.Find(e.selectors.Description).First()
	if target.Length() == 0 {
		return ""
	}
	inner, err := target.Html()
	if err != nil {
		return ""
	}
	return Truncate(Sanitize(inner), descriptionMaxLen)
}

func (e *Engine) link(item *goquery.Selection) string {
	target := item.Find(e.selectors.Link).First()
	if target.Length() == 0 {
		// Event cards are sometimes the anchor themselves
		if item.Is("a") {
			target = item
		} else {
			return ""
		}
	}

	href, _ := target.Attr("href")
	return e.resolve(href)
}

// image prefers lazy-load attributes over src and rejects inline data
// URIs
func (e *Engine) image(item *goquery.Selection) string {
	target := item.Find(e.selectors.Image).First()
	if target.Length() == 0 {
		return ""
	}

	for _, attr := range []string{"data-src", "data-lazy-src", "src"} {
		src, ok := target.Attr(attr)
		src = strings.TrimSpace(src)
		if !ok || src == "" || strings.HasPrefix(src, "data:") {
			continue
		}
		return e.resolve(src)
	}
	return ""
}

func (e *Engine) tags(item *goquery.Selection) []string {
	var tags []string
	item.Find(e.selectors.Tags).Each(func(_ int, s *goquery.Selection) {
		if len(tags) >= maxTags {
			return
		}
		text := cleanText(s.Text())
		if text == "" || utf8.RuneCountInString(text) >= maxTagLength {
			return
		}
		tags = append(tags, strings.ToLower(text))
	})
	return tags
}

func (e *Engine) resolve(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}

	parsed, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	if e.baseURL != nil {
		return e.baseURL.ResolveReference(parsed).String()
	}
	return ref
}
