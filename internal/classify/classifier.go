package classify

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

const (
	venueWeight       = 3.0
	nameKeywordWeight = 2.0
	descKeywordWeight = 1.0

	sourceCategoryConfidence = 0.95
	defaultConfidence        = 0.3
	maxConfidence            = 0.95
	strongScoreThreshold     = 5.0
)

// Alternative is a non-winning candidate category and its score
type Alternative struct {
	Category string
	Score    float64
}

// Result of classifying one event
type Result struct {
	Category     string
	Confidence   float64
	Reason       string
	Alternatives []Alternative
}

// IsConfident reports a high-confidence classification
func (r Result) IsConfident() bool { return r.Confidence >= 0.7 }

// IsUncertain reports a classification that likely needs review
func (r Result) IsUncertain() bool { return r.Confidence < 0.5 }

// Classifier assigns taxonomy categories from weighted signals: an
// explicit source category beats a venue hint, which beats keyword
// matches in the name, which beat keyword matches in the description.
type Classifier struct {
	sourceMappings  []sourceMapping
	venueMappings   []venueMapping
	keywords        map[string][]string
	defaultCategory string
}

// New creates a classifier with the built-in vocabulary. Custom source
// mappings take precedence over the defaults; an empty defaultCategory
// falls back to "communaute".
func New(customSourceMappings map[string]string, defaultCategory string) *Classifier {
	if defaultCategory == "" {
		defaultCategory = "communaute"
	}

	// Custom mappings are checked before the defaults, in sorted key
	// order for determinism
	var mappings []sourceMapping
	customKeys := make([]string, 0, len(customSourceMappings))
	for key := range customSourceMappings {
		customKeys = append(customKeys, key)
	}
	sort.Strings(customKeys)
	for _, key := range customKeys {
		mappings = append(mappings, sourceMapping{key: key, category: customSourceMappings[key]})
	}
	mappings = append(mappings, defaultSourceMappings...)

	return &Classifier{
		sourceMappings:  mappings,
		venueMappings:   venueCategories,
		keywords:        categoryKeywords,
		defaultCategory: defaultCategory,
	}
}

// Classify scores an event against all signals and returns the best
// category with a confidence in [0, 1]. An empty name or a total lack
// of signal yields the default category at low confidence.
func (c *Classifier) Classify(name, description, location, sourceCategory string) Result {
	nameNorm := normalize(name)
	descNorm := normalize(description)
	locationNorm := normalize(location)
	sourceCatNorm := normalize(sourceCategory)

	if nameNorm == "" {
		return Result{
			Category:   c.defaultCategory,
			Confidence: defaultConfidence,
			Reason:     "no event name, using default",
		}
	}

	// An explicit source category is authoritative
	if sourceCatNorm != "" {
		for _, m := range c.sourceMappings {
			if strings.Contains(sourceCatNorm, strings.ToLower(m.key)) {
				return Result{
					Category:   m.category,
					Confidence: sourceCategoryConfidence,
					Reason:     fmt.Sprintf("source category mapped: %q → %s", sourceCategory, m.category),
				}
			}
		}
	}

	scores := make(map[string]float64, len(Categories))

	var venueMatch, venueCat string
	for _, m := range c.venueMappings {
		if !strings.Contains(locationNorm, m.venue) {
			continue
		}
		// Multi-purpose venues carry no category signal
		if m.category != "" {
			scores[m.category] += venueWeight
			venueMatch = m.venue
			venueCat = m.category
		}
		break
	}

	for category, keywords := range c.keywords {
		for _, keyword := range keywords {
			kw := strings.ToLower(keyword)
			if strings.Contains(nameNorm, kw) {
				scores[category] += nameKeywordWeight
			} else if strings.Contains(descNorm, kw) {
				scores[category] += descKeywordWeight
			}
		}
	}

	best, bestScore, total := bestCategory(scores)
	if bestScore == 0 {
		return Result{
			Category:   c.defaultCategory,
			Confidence: defaultConfidence,
			Reason:     "no category keywords matched, using default",
		}
	}

	confidence := bestScore / total
	if bestScore >= strongScoreThreshold {
		confidence += 0.1
	}
	if confidence > maxConfidence {
		confidence = maxConfidence
	}

	var reasons []string
	if venueMatch != "" {
		reasons = append(reasons, fmt.Sprintf("venue %q", venueMatch))
	}
	keywordScore := bestScore
	if venueCat == best {
		keywordScore -= venueWeight
	}
	if keywordScore > 0 {
		reasons = append(reasons, fmt.Sprintf("%d keyword point(s)", int(keywordScore)))
	}

	return Result{
		Category:     best,
		Confidence:   confidence,
		Reason:       fmt.Sprintf("matched %s for %q", strings.Join(reasons, ", "), best),
		Alternatives: alternatives(scores, best),
	}
}

// bestCategory picks the highest-scoring category, breaking ties by
// canonical category order
func bestCategory(scores map[string]float64) (string, float64, float64) {
	best := Categories[0]
	var bestScore, total float64
	for _, category := range Categories {
		score := scores[category]
		total += score
		if score > bestScore {
			best = category
			bestScore = score
		}
	}
	return best, bestScore, total
}

// alternatives lists up to three runner-up categories with non-zero
// scores, most likely first
func alternatives(scores map[string]float64, best string) []Alternative {
	var alts []Alternative
	for _, category := range Categories {
		if category != best && scores[category] > 0 {
			alts = append(alts, Alternative{Category: category, Score: scores[category]})
		}
	}
	sort.SliceStable(alts, func(i, j int) bool {
		return alts[i].Score > alts[j].Score
	})
	if len(alts) > 3 {
		alts = alts[:3]
	}
	return alts
}

var normalizeSpaceRe = regexp.MustCompile(`\s+`)

func normalize(text string) string {
	return strings.TrimSpace(normalizeSpaceRe.ReplaceAllString(strings.ToLower(text), " "))
}
