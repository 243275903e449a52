package extract

// Selectors configures the CSS selectors used to locate event items and
// their fields within a page. Empty fields fall back to selectors that
// cover the common venue-site markup patterns.
type Selectors struct {
	EventList   string `yaml:"event_list" mapstructure:"event_list"`
	EventItem   string `yaml:"event_item" mapstructure:"event_item"`
	Name        string `yaml:"name" mapstructure:"name"`
	Date        string `yaml:"date" mapstructure:"date"`
	Time        string `yaml:"time" mapstructure:"time"`
	Location    string `yaml:"location" mapstructure:"location"`
	Description string `yaml:"description" mapstructure:"description"`
	Category    string `yaml:"category" mapstructure:"category"`
	Image       string `yaml:"image" mapstructure:"image"`
	Link        string `yaml:"link" mapstructure:"link"`
	Tags        string `yaml:"tags" mapstructure:"tags"`
}

// Item container selectors tried in order when the configured ones
// match nothing
var fallbackItemSelectors = []string{
	".event-card",
	".event-item",
	".event",
	"article.event",
	"[class*='event']",
	".agenda-item",
	"[class*='agenda']",
}

func (s Selectors) withDefaults() Selectors {
	def := func(configured, fallback string) string {
		if configured == "" {
			return fallback
		}
		return configured
	}

	s.Name = def(s.Name, "h2, h3, .title, .event-title")
	s.Date = def(s.Date, ".date, .event-date, time")
	s.Time = def(s.Time, ".time, .event-time, .hour")
	s.Location = def(s.Location, ".location, .venue, .event-venue")
	s.Description = def(s.Description, ".description, .excerpt, p")
	s.Category = def(s.Category, ".category, .tag, .type")
	s.Image = def(s.Image, "img")
	s.Link = def(s.Link, "a")
	s.Tags = def(s.Tags, ".tag, .label, .keyword")
	return s
}
