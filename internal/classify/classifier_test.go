package classify

import (
	"strings"
	"testing"
)

func TestClassifier_SourceCategoryWins(t *testing.T) {
	c := New(nil, "")

	result := c.Classify("Soirée d'ouverture", "", "", "Concert")
	if result.Category != "musique" {
		t.Errorf("category = %q, want musique", result.Category)
	}
	if result.Confidence < 0.9 {
		t.Errorf("source category match should be confident, got %.2f", result.Confidence)
	}
	if !result.IsConfident() {
		t.Error("expected confident result")
	}
}

func TestClassifier_CustomSourceMappingPrecedence(t *testing.T) {
	c := New(map[string]string{"concert": "theatre"}, "")

	result := c.Classify("Soirée", "", "", "Concert")
	if result.Category != "theatre" {
		t.Errorf("custom mapping should win, got %q", result.Category)
	}
}

func TestClassifier_VenueSignal(t *testing.T) {
	c := New(nil, "")

	result := c.Classify("Nouvelle création", "", "Théâtre du Gymnase", "")
	if result.Category != "theatre" {
		t.Errorf("category = %q, want theatre", result.Category)
	}
	if !strings.Contains(result.Reason, "venue") {
		t.Errorf("reason should mention the venue: %q", result.Reason)
	}
}

func TestClassifier_MultiPurposeVenueIgnored(t *testing.T) {
	c := New(nil, "")

	// "la friche" hosts everything: the venue alone must not classify
	result := c.Classify("Grande soirée", "", "La Friche la Belle de Mai", "")
	if result.Category != "communaute" || result.Confidence != 0.3 {
		t.Errorf("multi-purpose venue should not classify: %q at %.2f", result.Category, result.Confidence)
	}
}

func TestClassifier_NameKeywordsBeatDescriptionKeywords(t *testing.T) {
	c := New(nil, "")

	result := c.Classify("Ballet contemporain", "une exposition accompagne la soirée", "", "")
	if result.Category != "danse" {
		t.Errorf("category = %q, want danse", result.Category)
	}
	if len(result.Alternatives) == 0 {
		t.Fatal("expected alternatives for the description match")
	}
	if result.Alternatives[0].Category != "art" {
		t.Errorf("first alternative = %q, want art", result.Alternatives[0].Category)
	}
}

func TestClassifier_DescriptionKeywordNotDoubleCounted(t *testing.T) {
	c := New(nil, "")

	// "concert" in both name and description scores once, as a name match
	both := c.Classify("Concert de jazz", "un concert exceptionnel", "", "")
	nameOnly := c.Classify("Concert de jazz", "", "", "")
	if both.Category != "musique" || nameOnly.Category != "musique" {
		t.Fatalf("categories = %q, %q", both.Category, nameOnly.Category)
	}
	if both.Confidence != nameOnly.Confidence {
		t.Errorf("repeated keyword changed confidence: %.2f vs %.2f", both.Confidence, nameOnly.Confidence)
	}
}

func TestClassifier_NoSignalUsesDefault(t *testing.T) {
	c := New(nil, "")

	result := c.Classify("Quelque chose d'inédit", "", "", "")
	if result.Category != "communaute" {
		t.Errorf("category = %q, want communaute", result.Category)
	}
	if result.Confidence != 0.3 {
		t.Errorf("confidence = %.2f, want 0.3", result.Confidence)
	}
	if !result.IsUncertain() {
		t.Error("default result should be uncertain")
	}
}

func TestClassifier_EmptyNameUsesDefault(t *testing.T) {
	c := New(nil, "autre")

	result := c.Classify("", "un concert de jazz", "", "")
	if result.Category != "autre" {
		t.Errorf("category = %q, want autre", result.Category)
	}
	if result.Confidence != 0.3 {
		t.Errorf("confidence = %.2f, want 0.3", result.Confidence)
	}
}

func TestClassifier_ConfidenceCapped(t *testing.T) {
	c := New(nil, "")

	result := c.Classify(
		"Concert jazz rock électro techno",
		"",
		"Opéra de Marseille",
		"",
	)
	if result.Category != "musique" {
		t.Fatalf("category = %q", result.Category)
	}
	if result.Confidence > 0.95 {
		t.Errorf("confidence above cap: %.2f", result.Confidence)
	}
}
