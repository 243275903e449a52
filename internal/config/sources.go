package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/massalia/crawler/internal/extract"
)

// ConfigError is a fatal startup problem with the sources file. Nothing
// is fetched once one is raised.
type ConfigError struct {
	Path   string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Path == "" {
		return "sources config: " + e.Reason
	}
	return fmt.Sprintf("sources config %s: %s", e.Path, e.Reason)
}

// RateLimit controls fetch pacing for one source
type RateLimit struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	DelayBetweenPages float64 `yaml:"delay_between_pages"`
}

// Delay converts the configured pacing to the minimum gap between
// successive fetches for the source
func (r RateLimit) Delay() time.Duration {
	if r.DelayBetweenPages > 0 {
		return time.Duration(r.DelayBetweenPages * float64(time.Second))
	}
	if r.RequestsPerSecond > 0 {
		return time.Duration(float64(time.Second) / r.RequestsPerSecond)
	}
	return 2 * time.Second
}

// Source describes one configured event listing site
type Source struct {
	ID          string
	Name        string
	URL         string
	Parser      string
	Enabled     bool
	RateLimit   RateLimit
	Selectors   extract.Selectors
	CategoryMap map[string]string
	DefaultTime string
}

// DefaultEventTime parses the source's default start time, falling back
// to 20:00
func (s Source) DefaultEventTime() (int, int) {
	var hour, minute int
	if _, err := fmt.Sscanf(s.DefaultTime, "%d:%d", &hour, &minute); err == nil {
		if hour >= 0 && hour <= 23 && minute >= 0 && minute <= 59 {
			return hour, minute
		}
	}
	return extract.DefaultHour, extract.DefaultMinute
}

// SourcesConfig is the full parsed sources file
type SourcesConfig struct {
	Sources  []Source
	Defaults Defaults
}

// Defaults apply to every source that does not override them
type Defaults struct {
	RateLimit   RateLimit `yaml:"rate_limit"`
	DefaultTime string    `yaml:"default_time"`
}

// Enabled returns only the sources that should be crawled
func (c *SourcesConfig) Enabled() []Source {
	var enabled []Source
	for _, s := range c.Sources {
		if s.Enabled {
			enabled = append(enabled, s)
		}
	}
	return enabled
}

// ByID finds a source by its identifier
func (c *SourcesConfig) ByID(id string) (Source, bool) {
	for _, s := range c.Sources {
		if s.ID == id {
			return s, true
		}
	}
	return Source{}, false
}

type rawSourcesFile struct {
	Defaults Defaults    `yaml:"defaults"`
	Sources  []rawSource `yaml:"sources"`
}

type rawSource struct {
	ID          string            `yaml:"id"`
	Name        string            `yaml:"name"`
	URL         string            `yaml:"url"`
	Parser      string            `yaml:"parser"`
	Enabled     *bool             `yaml:"enabled"`
	RateLimit   *RateLimit        `yaml:"rate_limit"`
	Selectors   extract.Selectors `yaml:"selectors"`
	CategoryMap map[string]string `yaml:"categories_map"`
	DefaultTime string            `yaml:"default_time"`
}

// LoadSources reads and validates the sources YAML file. Missing
// required fields, empty files and malformed YAML are all ConfigErrors.
// Per-source environment overrides (CRAWLER_SOURCE_<ID>_URL and
// CRAWLER_SOURCE_<ID>_ENABLED) are applied after parsing.
func LoadSources(path string) (*SourcesConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{Path: path, Reason: fmt.Sprintf("read file: %v", err)}
	}

	var raw rawSourcesFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &ConfigError{Path: path, Reason: fmt.Sprintf("invalid YAML: %v", err)}
	}

	if len(raw.Sources) == 0 {
		return nil, &ConfigError{Path: path, Reason: "no sources defined"}
	}

	cfg := &SourcesConfig{Defaults: raw.Defaults}
	for i, rs := range raw.Sources {
		source, err := buildSource(rs, raw.Defaults)
		if err != nil {
			name := rs.Name
			if name == "" {
				name = fmt.Sprintf("source #%d", i+1)
			}
			return nil, &ConfigError{Path: path, Reason: fmt.Sprintf("invalid source %q: %v", name, err)}
		}
		cfg.Sources = append(cfg.Sources, source)
	}

	return cfg, nil
}

func buildSource(raw rawSource, defaults Defaults) (Source, error) {
	for field, value := range map[string]string{
		"id":     raw.ID,
		"name":   raw.Name,
		"url":    raw.URL,
		"parser": raw.Parser,
	} {
		if value == "" {
			return Source{}, fmt.Errorf("missing required field: %s", field)
		}
	}

	source := Source{
		ID:          raw.ID,
		Name:        raw.Name,
		URL:         raw.URL,
		Parser:      raw.Parser,
		Enabled:     true,
		RateLimit:   defaults.RateLimit,
		Selectors:   raw.Selectors,
		CategoryMap: raw.CategoryMap,
		DefaultTime: raw.DefaultTime,
	}

	if raw.Enabled != nil {
		source.Enabled = *raw.Enabled
	}
	if raw.RateLimit != nil {
		source.RateLimit = *raw.RateLimit
	}
	if source.DefaultTime == "" {
		source.DefaultTime = defaults.DefaultTime
	}

	applyEnvOverrides(&source)
	return source, nil
}

// applyEnvOverrides lets deployments repoint or disable a source
// without editing the config file
func applyEnvOverrides(source *Source) {
	prefix := "CRAWLER_SOURCE_" + strings.ToUpper(strings.ReplaceAll(source.ID, "-", "_"))

	if url := os.Getenv(prefix + "_URL"); url != "" {
		source.URL = url
	}

	if enabled, ok := os.LookupEnv(prefix + "_ENABLED"); ok {
		switch strings.ToLower(enabled) {
		case "true", "1", "yes":
			source.Enabled = true
		default:
			source.Enabled = false
		}
	}
}
