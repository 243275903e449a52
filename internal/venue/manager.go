// Package venue maps raw location names from event sources to
// canonical venue slugs. The venues file is the single source of truth;
// anything it does not know passes through unchanged.
package venue

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/massalia/crawler/internal/model"
)

// Leading articles stripped when generating lookup variants
var frenchArticles = map[string]bool{
	"le": true, "la": true, "les": true, "l": true,
	"un": true, "une": true, "des": true, "du": true, "de": true, "d": true,
}

// Venue is one entry of the venues file
type Venue struct {
	Slug        string   `yaml:"slug"`
	Title       string   `yaml:"title"`
	Address     string   `yaml:"address"`
	Website     string   `yaml:"website"`
	Aliases     []string `yaml:"aliases"`
	SearchNames []string `yaml:"search_names"`
}

// Manager resolves raw location names to canonical venue slugs. The
// lookup table is built once at load time from venue titles, slugs,
// aliases and explicit search names, each with accent-stripped and
// article-stripped variants.
type Manager struct {
	venues []Venue
	lookup map[string]string

	// lookup keys sorted longest first, so substring matching never
	// prefers a short key over a more specific one
	sortedKeys []string
}

// Load reads the venues file and builds the lookup table. A missing
// file yields an empty manager whose MapLocation is the identity.
func Load(path string) (*Manager, error) {
	m := &Manager{lookup: make(map[string]string)}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return m, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read venues file: %w", err)
	}

	if err := yaml.Unmarshal(data, &m.venues); err != nil {
		return nil, fmt.Errorf("parse venues file %s: %w", path, err)
	}

	m.buildLookup()
	return m, nil
}

// NewManager builds a manager from in-memory venue entries
func NewManager(venues []Venue) *Manager {
	m := &Manager{venues: venues, lookup: make(map[string]string)}
	m.buildLookup()
	return m
}

func (m *Manager) buildLookup() {
	for _, v := range m.venues {
		if v.Slug == "" {
			continue
		}

		keys := make(map[string]bool)
		keys[strings.ReplaceAll(v.Slug, "-", " ")] = true

		if v.Title != "" {
			title := normalize(v.Title)
			keys[title] = true
			if stripped := stripArticles(title); stripped != "" {
				keys[stripped] = true
			}
		}

		for _, alias := range v.Aliases {
			if slug := aliasSlug(alias); slug != "" {
				keys[strings.ReplaceAll(slug, "-", " ")] = true
			}
		}

		for _, name := range v.SearchNames {
			if n := normalize(name); n != "" {
				keys[n] = true
			}
		}

		// First venue wins on key collisions
		for key := range keys {
			if key == "" {
				continue
			}
			if _, taken := m.lookup[key]; !taken {
				m.lookup[key] = v.Slug
			}
		}
	}

	m.sortedKeys = make([]string, 0, len(m.lookup))
	for key := range m.lookup {
		m.sortedKeys = append(m.sortedKeys, key)
	}
	sort.Slice(m.sortedKeys, func(i, j int) bool {
		a, b := m.sortedKeys[i], m.sortedKeys[j]
		if len(a) != len(b) {
			return len(a) > len(b)
		}
		return a < b
	})
}

// MapLocation resolves a raw location name to its canonical venue slug.
// Exact matches win, then the longest lookup key contained in the
// normalized name. Unknown names come back unchanged.
func (m *Manager) MapLocation(raw string) string {
	if raw == "" {
		return raw
	}

	normalized := normalize(raw)
	if slug, ok := m.lookup[normalized]; ok {
		return slug
	}

	for _, key := range m.sortedKeys {
		if strings.Contains(normalized, key) {
			return m.lookup[key]
		}
	}

	return raw
}

// Slugs returns all known canonical venue slugs, sorted
func (m *Manager) Slugs() []string {
	var slugs []string
	for _, v := range m.venues {
		if v.Slug != "" {
			slugs = append(slugs, v.Slug)
		}
	}
	sort.Strings(slugs)
	return slugs
}

// normalize lowercases, transliterates accents and reduces everything
// that is not a letter or digit to single spaces
func normalize(text string) string {
	return strings.ReplaceAll(model.Slugify(text), "-", " ")
}

func stripArticles(normalized string) string {
	words := strings.Fields(normalized)
	for len(words) > 0 && frenchArticles[words[0]] {
		words = words[1:]
	}
	return strings.Join(words, " ")
}

// aliasSlug extracts the slug from a site alias path like
// "/locations/le-silo/"
func aliasSlug(alias string) string {
	parts := strings.Split(strings.Trim(alias, "/"), "/")
	if len(parts) >= 2 && parts[0] == "locations" {
		return parts[1]
	}
	return ""
}
