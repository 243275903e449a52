package extract

import (
	"strings"
	"testing"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"clean text unchanged", "Café & Bar", "Café & Bar"},
		{"strips tags", "<p>Hello <b>world</b></p>", "Hello world"},
		{"drops script content", "<p>Concert</p><script>var x = 1;</script>", "Concert"},
		{"drops style content", "<style>.a{color:red}</style>Vernissage", "Vernissage"},
		{"decodes named entities", "Tom &amp; Jerry", "Tom & Jerry"},
		{"decodes numeric entities", "caf&#233; &#x26; bar", "café & bar"},
		{"double-encoded stays encoded once", "&amp;lt;b&amp;gt;", "&lt;b&gt;"},
		{"removes event handlers", "click onclick= here", "click here"},
		{"collapses whitespace", "un\n\tdeux   trois", "un deux trois"},
		{"tags preserve word boundaries", "<p>un</p><p>deux</p>", "un deux"},
		{"only markup yields empty", "<div><script>x()</script>  </div>", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sanitize(tt.input); got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitize_RemovesJavascriptScheme(t *testing.T) {
	got := Sanitize(`voir href="javascript:alert(1)" ici`)
	if strings.Contains(strings.ToLower(got), "javascript:") {
		t.Errorf("javascript: scheme survived sanitization: %q", got)
	}
}

func TestSanitize_Idempotent(t *testing.T) {
	inputs := []string{
		"Café & Bar",
		"Soirée jazz au théâtre, entrée libre",
		"a < b mais b > c",
	}

	for _, input := range inputs {
		once := Sanitize(input)
		twice := Sanitize(once)
		if once != twice {
			t.Errorf("Sanitize not idempotent on %q: %q then %q", input, once, twice)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("court", 160); got != "court" {
		t.Errorf("short text should pass through, got %q", got)
	}

	long := "Une très longue description qui dépasse largement la limite autorisée pour les extraits"
	got := Truncate(long, 40)
	if len([]rune(got)) > 40 {
		t.Errorf("truncated text too long: %d runes", len([]rune(got)))
	}
	if got[len(got)-3:] != "..." {
		t.Errorf("expected ellipsis suffix, got %q", got)
	}
	// Cut lands on a word boundary, never mid-word
	if got != "Une très longue description qui..." {
		t.Errorf("unexpected truncation: %q", got)
	}
}
