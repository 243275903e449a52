package selection

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/massalia/crawler/internal/config"
	"github.com/massalia/crawler/internal/model"
)

func testCriteria() *Criteria {
	c := Default()
	c.Dates.MaxDaysAhead = 30
	c.Geography.ExcludeLocations = []string{"Paris", "Lyon"}
	c.Geography.LocalKeywords = []string{"friche", "vieux port"}
	c.Keywords.Negative = []string{"annulé"}
	c.Keywords.Positive = []string{"concert"}
	c.now = func() time.Time {
		return time.Date(2026, time.January, 15, 12, 0, 0, 0, model.ParisTZ)
	}
	return c
}

func eventDate(day int) time.Time {
	return time.Date(2026, time.January, day, 20, 0, 0, 0, model.ParisTZ)
}

func TestCriteria_Evaluate(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(*Criteria)
		evName   string
		date     time.Time
		location string
		desc     string
		category string
		accepted bool
		rule     string
	}{
		{
			name: "accepted generic", evName: "Soirée jazz", date: eventDate(20),
			accepted: true, rule: "all_criteria",
		},
		{
			name: "missing name rejected", evName: "", date: eventDate(20),
			accepted: false, rule: "required_fields",
		},
		{
			name: "missing date rejected", evName: "Soirée jazz",
			accepted: false, rule: "required_fields",
		},
		{
			name: "past date rejected", evName: "Soirée jazz", date: eventDate(10),
			accepted: false, rule: "past_date",
		},
		{
			name: "beyond max days rejected", evName: "Soirée jazz",
			date:     time.Date(2026, time.February, 15, 20, 0, 0, 0, model.ParisTZ),
			accepted: false, rule: "max_days",
		},
		{
			name: "before min days rejected",
			setup: func(c *Criteria) {
				c.Dates.MinDaysAhead = 7
			},
			evName: "Soirée jazz", date: eventDate(17),
			accepted: false, rule: "min_days",
		},
		{
			name: "excluded location rejected", evName: "Opéra",
			date: eventDate(20), location: "Opéra de Paris",
			accepted: false, rule: "excluded_location",
		},
		{
			name: "local venue trusted despite excluded city in text",
			evName: "Paris vu du large", date: eventDate(20),
			location: "Friche la Belle de Mai",
			desc:     "Un documentaire sur Paris",
			accepted: true, rule: "all_criteria",
		},
		{
			name: "no included type rejected",
			setup: func(c *Criteria) {
				c.EventTypes.Include = []string{"concert", "danse"}
			},
			evName: "Atelier cuisine", date: eventDate(20),
			accepted: false, rule: "no_included_type",
		},
		{
			name: "excluded type rejected",
			setup: func(c *Criteria) {
				c.EventTypes.Exclude = []string{"conférence"}
			},
			evName: "Conférence sur la mer", date: eventDate(20),
			accepted: false, rule: "excluded_type",
		},
		{
			name: "negative keyword rejected", evName: "Soirée jazz",
			date: eventDate(20), desc: "Événement annulé",
			accepted: false, rule: "negative_keyword",
		},
		{
			name: "positive keyword noted", evName: "Grand concert du nouvel an",
			date:     eventDate(20),
			accepted: true, rule: "positive_keywords",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testCriteria()
			if tt.setup != nil {
				tt.setup(c)
			}

			result := c.Evaluate(tt.evName, tt.date, tt.location, tt.desc, tt.category)
			if result.Accepted != tt.accepted {
				t.Errorf("accepted = %v (%s), want %v", result.Accepted, result.Reason, tt.accepted)
			}
			if result.Rule != tt.rule {
				t.Errorf("rule = %q, want %q", result.Rule, tt.rule)
			}
		})
	}
}

func TestCriteria_Evaluate_MaxDaysBoundary(t *testing.T) {
	c := testCriteria()

	// 30 days ahead of Jan 15 is Feb 14: the last accepted day
	onLimit := time.Date(2026, time.February, 14, 20, 0, 0, 0, model.ParisTZ)
	if result := c.Evaluate("Soirée jazz", onLimit, "", "", ""); !result.Accepted {
		t.Errorf("date on the window limit rejected: %s", result.Reason)
	}

	past := time.Date(2026, time.February, 15, 20, 0, 0, 0, model.ParisTZ)
	if result := c.Evaluate("Soirée jazz", past, "", "", ""); result.Accepted {
		t.Error("31 days ahead should be rejected")
	}
}

func TestCriteria_PositiveKeywordReason(t *testing.T) {
	c := testCriteria()
	result := c.Evaluate("Grand concert", eventDate(20), "", "", "")
	if !result.Accepted {
		t.Fatalf("rejected: %s", result.Reason)
	}
	if !strings.Contains(result.Reason, "concert") {
		t.Errorf("reason should name the keyword: %q", result.Reason)
	}
}

func TestCriteria_MapCategory(t *testing.T) {
	c := Default()
	c.CategoryMapping.Mappings = map[string]string{"Concert": "musique"}

	if got := c.MapCategory("Concert Rock"); got != "musique" {
		t.Errorf("MapCategory = %q", got)
	}
	if got := c.MapCategory("Atelier"); got != "communaute" {
		t.Errorf("unmapped category should use default, got %q", got)
	}
	if got := c.MapCategory(""); got != "communaute" {
		t.Errorf("empty category should use default, got %q", got)
	}
}

func TestCriteria_MapCategoryOverlappingKeys(t *testing.T) {
	c := Default()
	c.CategoryMapping.Mappings = map[string]string{
		"soir":   "theatre",
		"soirée": "musique",
	}

	// Keys are checked in sorted order, so overlapping keys must
	// resolve the same way on every run
	for i := 0; i < 50; i++ {
		if got := c.MapCategory("Soirée électro"); got != "theatre" {
			t.Fatalf("MapCategory() = %q on run %d, want %q", got, i, "theatre")
		}
	}
}

func TestLoad(t *testing.T) {
	content := `
version: "2.0"
dates:
  max_days_ahead: 45
geography:
  exclude_locations:
    - Paris
keywords:
  negative:
    - annulé
category_mapping:
  default: communaute
  mappings:
    Concert: musique
`
	path := filepath.Join(t.TempDir(), "selection-criteria.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	criteria, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if criteria.Version != "2.0" {
		t.Errorf("version = %q", criteria.Version)
	}
	if criteria.Dates.MaxDaysAhead != 45 {
		t.Errorf("max days = %d", criteria.Dates.MaxDaysAhead)
	}
	if !criteria.Dates.ExcludePast {
		t.Error("exclude_past default lost on partial config")
	}
	if len(criteria.RequiredFields) != 2 {
		t.Errorf("required fields default lost: %v", criteria.RequiredFields)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	criteria, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if criteria.Dates.MaxDaysAhead != 90 || !criteria.Dates.ExcludePast {
		t.Errorf("unexpected defaults: %+v", criteria.Dates)
	}
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("dates: [\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var configErr *config.ConfigError
	_, err := Load(path)
	if !errors.As(err, &configErr) {
		t.Fatalf("expected ConfigError, got %v", err)
	}
}
