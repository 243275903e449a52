package sources

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"

	"github.com/massalia/crawler/internal/config"
	"github.com/massalia/crawler/internal/fetch"
	"github.com/massalia/crawler/internal/model"
)

// Parser extracts canonical events for one configured source
type Parser interface {
	Source() config.Source
	Parse(ctx context.Context, client *fetch.Client) ([]*model.Event, error)
}

// Factory builds a parser for a source configuration
type Factory func(src config.Source) Parser

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

func init() {
	Register("configurable", newConfigurable)
	Register("detail", newDetail)
}

// Register adds a parser variant under a name. Later registrations
// replace earlier ones.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = factory
}

// New builds the parser the source's configuration names
func New(src config.Source) (Parser, error) {
	registryMu.RLock()
	factory, ok := registry[src.Parser]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown parser %q for source %q (have: %s)",
			src.Parser, src.ID, strings.Join(Registered(), ", "))
	}
	return factory(src), nil
}

// Registered lists the known parser variant names, sorted
func Registered() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// sourceID derives the stable per-item identity from the event URL:
// "<source>:<last path segment>"
func sourceID(src config.Source, eventURL string) string {
	parsed, err := url.Parse(eventURL)
	if err != nil {
		return src.ID + ":" + eventURL
	}

	path := strings.Trim(parsed.Path, "/")
	segments := strings.Split(path, "/")
	itemID := segments[len(segments)-1]
	if itemID == "" {
		itemID = path
	}
	return src.ID + ":" + itemID
}
