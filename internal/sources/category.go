package sources

import (
	"sort"
	"strings"
)

type categoryRule struct {
	key    string
	target string
}

// Built-in fallbacks applied after the source's own category map
var defaultCategoryRules = []categoryRule{
	{"danse", "danse"},
	{"dance", "danse"},
	{"ballet", "danse"},
	{"musique", "musique"},
	{"music", "musique"},
	{"concert", "musique"},
	{"dj", "musique"},
	{"theatre", "theatre"},
	{"théâtre", "theatre"},
	{"spectacle", "theatre"},
	{"humour", "theatre"},
	{"art", "art"},
	{"expo", "art"},
	{"exposition", "art"},
	{"vernissage", "art"},
	{"cinéma", "art"},
	{"projection", "art"},
}

// mapCategory maps a source site's category label to the taxonomy.
// The source's explicit map wins over the built-in rules; anything
// unrecognized lands in "communaute".
func mapCategory(raw string, sourceMap map[string]string) string {
	if raw == "" {
		return "communaute"
	}

	// Sorted key order keeps overlapping map keys deterministic
	keys := make([]string, 0, len(sourceMap))
	for key := range sourceMap {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	lower := strings.ToLower(raw)
	for _, source := range keys {
		if strings.Contains(lower, strings.ToLower(source)) {
			return sourceMap[source]
		}
	}

	for _, rule := range defaultCategoryRules {
		if strings.Contains(lower, rule.key) {
			return rule.target
		}
	}

	return "communaute"
}
