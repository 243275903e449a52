package extract

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var (
	dangerousAttrRe = regexp.MustCompile(`(?i)(?:href|src|action)\s*=\s*["']?\s*javascript:`)
	eventHandlerRe  = regexp.MustCompile(`(?i)\bon\w+\s*=`)
	whitespaceRe    = regexp.MustCompile(`\s+`)
)

// Elements whose text content never belongs in scraped copy
var droppedContentTags = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"iframe":   true,
	"template": true,
}

// Sanitize turns a scraped markup fragment into plain text safe for
// front matter: tags are stripped (script/style content dropped
// entirely), character entities are decoded exactly once, residual
// javascript: URIs and inline event handler fragments are removed, and
// whitespace runs collapse to single spaces. Already-clean text passes
// through unchanged.
func Sanitize(text string) string {
	if text == "" {
		return ""
	}

	var b strings.Builder
	tokenizer := html.NewTokenizer(strings.NewReader(text))
	skip := ""

	for {
		tokenType := tokenizer.Next()
		if tokenType == html.ErrorToken {
			break
		}

		switch tokenType {
		case html.TextToken:
			if skip == "" {
				b.Write(tokenizer.Text())
			}
		case html.StartTagToken:
			name, _ := tokenizer.TagName()
			if skip == "" && droppedContentTags[string(name)] {
				skip = string(name)
			}
			b.WriteByte(' ')
		case html.EndTagToken:
			name, _ := tokenizer.TagName()
			if skip == string(name) {
				skip = ""
			}
			b.WriteByte(' ')
		case html.SelfClosingTagToken:
			b.WriteByte(' ')
		}
	}

	clean := dangerousAttrRe.ReplaceAllString(b.String(), "")
	clean = eventHandlerRe.ReplaceAllString(clean, "")
	clean = whitespaceRe.ReplaceAllString(clean, " ")
	return strings.TrimSpace(clean)
}

// Truncate shortens text to at most maxLen characters, cutting at a
// word boundary and appending an ellipsis
func Truncate(text string, maxLen int) string {
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}

	cut := string(runes[:maxLen-3])
	if idx := strings.LastIndex(cut, " "); idx > 0 {
		cut = cut[:idx]
	}
	return cut + "..."
}

func cleanText(text string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
}
