package model

import (
	"testing"
	"time"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Événement à Marseille", "evenement-a-marseille"},
		{"Concert  Jazz!", "concert-jazz"},
		{"L'Œuvre d'été", "l-oeuvre-d-ete"},
		{"  déjà--vu  ", "deja-vu"},
		{"çà et là", "ca-et-la"},
		{"", ""},
		{"---", ""},
	}
	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSlugify_Idempotent(t *testing.T) {
	once := Slugify("Fête de la Musique 2026")
	twice := Slugify(once)
	if once != twice {
		t.Errorf("Slugify not idempotent: %q vs %q", once, twice)
	}
}

func TestNewEvent_RequiredFields(t *testing.T) {
	start := time.Date(2026, 3, 7, 20, 0, 0, 0, ParisTZ)

	if _, err := NewEvent(Event{EventURL: "https://example.com/e", Start: start}); err == nil {
		t.Error("expected error for missing name")
	}
	if _, err := NewEvent(Event{Name: "Concert", Start: start}); err == nil {
		t.Error("expected error for missing URL")
	}
	if _, err := NewEvent(Event{Name: "Concert", EventURL: "https://example.com/e"}); err == nil {
		t.Error("expected error for missing start time")
	}
}

func TestNewEvent_Normalizes(t *testing.T) {
	evt, err := NewEvent(Event{
		Name:       "Soirée Tango",
		EventURL:   "https://example.com/tango",
		Start:      time.Date(2026, 3, 7, 20, 30, 0, 0, ParisTZ),
		Categories: []string{"Danse", "MUSIQUE"},
		Locations:  []string{"La Friche Belle de Mai"},
	})
	if err != nil {
		t.Fatalf("NewEvent failed: %v", err)
	}

	if evt.Categories[0] != "danse" || evt.Categories[1] != "musique" {
		t.Errorf("categories not lowercased: %v", evt.Categories)
	}
	if evt.Locations[0] != "la-friche-belle-de-mai" {
		t.Errorf("location not slugified: %v", evt.Locations)
	}
}

func TestEvent_DerivedFields(t *testing.T) {
	evt, err := NewEvent(Event{
		Name:     "Éclats de Rire",
		EventURL: "https://example.com/eclats",
		Start:    time.Date(2026, 1, 27, 19, 30, 0, 0, ParisTZ), // a Tuesday
	})
	if err != nil {
		t.Fatalf("NewEvent failed: %v", err)
	}

	if got := evt.Slug(); got != "eclats-de-rire" {
		t.Errorf("Slug() = %q", got)
	}
	if got := evt.FilePath(); got != "2026/01/27/eclats-de-rire.fr.md" {
		t.Errorf("FilePath() = %q", got)
	}
	if got := evt.StartTime(); got != "19:30" {
		t.Errorf("StartTime() = %q", got)
	}

	expiry := evt.ExpiryDate()
	if expiry.Day() != 28 || expiry.Hour() != 0 || expiry.Minute() != 0 {
		t.Errorf("ExpiryDate() = %v, want midnight Jan 28", expiry)
	}

	dates := evt.DatesTaxonomy()
	if len(dates) != 1 || dates[0] != "mardi-27-janvier" {
		t.Errorf("DatesTaxonomy() = %v", dates)
	}
}

func TestEvent_MultiDayTitle(t *testing.T) {
	evt, err := NewEvent(Event{
		Name:     "Festival Jazz",
		EventURL: "https://example.com/jazz",
		Start:    time.Date(2026, 5, 1, 20, 0, 0, 0, ParisTZ),
		DayOf:    "Jour 2 sur 3",
	})
	if err != nil {
		t.Fatalf("NewEvent failed: %v", err)
	}

	if got := evt.Title(); got != "Festival Jazz - Jour 2 sur 3" {
		t.Errorf("Title() = %q", got)
	}
	if got := evt.Slug(); got != "festival-jazz-jour-2-sur-3" {
		t.Errorf("Slug() = %q", got)
	}
}
