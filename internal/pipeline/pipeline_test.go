package pipeline

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/massalia/crawler/internal/classify"
	"github.com/massalia/crawler/internal/config"
	"github.com/massalia/crawler/internal/content"
	"github.com/massalia/crawler/internal/fetch"
	"github.com/massalia/crawler/internal/selection"
	"github.com/massalia/crawler/internal/venue"
	"github.com/massalia/crawler/internal/worker"
)

const pipelineListing = `
<html><body>
<div class="event-item">
  <h3>Concert de Jazz</h3>
  <span class="date">15 mars 2027</span>
  <span class="time">20h30</span>
  <span class="location">Le Silo</span>
  <span class="category">Concert</span>
  <a href="/agenda/concert-de-jazz">Voir</a>
</div>
<div class="event-item">
  <h3>Opéra annulé</h3>
  <span class="date">16 mars 2027</span>
  <a href="/agenda/opera">Voir</a>
</div>
</body></html>`

// wideCriteria accepts any date so the test stays deterministic
// regardless of the clock
func wideCriteria() *selection.Criteria {
	c := selection.Default()
	c.Dates = selection.Dates{MinDaysAhead: -100000, MaxDaysAhead: 100000}
	c.Keywords.Negative = []string{"annulé"}
	return c
}

func testPipeline(t *testing.T, outputDir string) *Pipeline {
	t.Helper()

	opts := fetch.DefaultOptions()
	opts.RetryCount = 0
	opts.CheckRobots = false
	client := fetch.NewClient(opts, nil, worker.NewLimiter(time.Millisecond))

	venues := venue.NewManager([]venue.Venue{
		{Slug: "le-cepac-silo", Title: "Le Cepac Silo", Aliases: []string{"/locations/le-silo/"}},
	})

	return NewPipeline(
		client,
		classify.New(nil, ""),
		nil,
		wideCriteria(),
		venues,
		content.NewWriter(outputDir, false, false),
		Options{},
	)
}

func TestPipeline_CrawlSource(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(pipelineListing))
	}))
	defer server.Close()

	outputDir := t.TempDir()
	p := testPipeline(t, outputDir)

	src := config.Source{ID: "le-silo", Name: "Le Silo", URL: server.URL, Parser: "configurable"}
	report := p.CrawlSource(context.Background(), src)
	if report.Err != nil {
		t.Fatalf("CrawlSource() error = %v", report.Err)
	}

	if report.Extracted != 2 {
		t.Errorf("Extracted = %d, want 2", report.Extracted)
	}
	if report.Accepted != 1 {
		t.Errorf("Accepted = %d, want 1", report.Accepted)
	}
	if report.Rejected != 1 {
		t.Errorf("Rejected = %d, want 1 (negative keyword)", report.Rejected)
	}

	path := filepath.Join(outputDir, "2027", "03", "15", "concert-de-jazz.fr.md")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("expected content file at %s: %v", path, err)
	}
	if !strings.Contains(string(data), "- musique") {
		t.Errorf("content should carry the classified category:\n%s", data)
	}
	if !strings.Contains(string(data), "- le-cepac-silo") {
		t.Errorf("location should be mapped to the canonical venue slug:\n%s", data)
	}
}

func TestPipeline_SkipsEventAlreadyOnDisk(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(pipelineListing))
	}))
	defer server.Close()

	outputDir := t.TempDir()

	// The same event, written on an earlier crawl under a different
	// slug and date
	oldDir := filepath.Join(outputDir, "2026", "12", "01")
	if err := os.MkdirAll(oldDir, 0o755); err != nil {
		t.Fatal(err)
	}
	oldFile := "---\ntitle: Ancien titre\nsourceId: le-silo:concert-de-jazz\n---\n"
	if err := os.WriteFile(filepath.Join(oldDir, "ancien-titre.fr.md"), []byte(oldFile), 0o644); err != nil {
		t.Fatal(err)
	}

	p := testPipeline(t, outputDir)
	report := p.CrawlSource(context.Background(), config.Source{
		ID: "le-silo", Name: "Le Silo", URL: server.URL, Parser: "configurable",
	})
	if report.Err != nil {
		t.Fatalf("CrawlSource() error = %v", report.Err)
	}

	if report.Duplicates != 1 {
		t.Errorf("Duplicates = %d, want 1", report.Duplicates)
	}
	if report.Accepted != 0 {
		t.Errorf("Accepted = %d, want 0 (the only acceptable event is a duplicate)", report.Accepted)
	}

	newPath := filepath.Join(outputDir, "2027", "03", "15", "concert-de-jazz.fr.md")
	if _, err := os.Stat(newPath); err == nil {
		t.Errorf("a second file was written for an already-crawled source id: %s", newPath)
	}
}

func TestPipeline_CrawlSource_UnknownParser(t *testing.T) {
	p := testPipeline(t, t.TempDir())
	report := p.CrawlSource(context.Background(), config.Source{
		ID: "x", Name: "X", URL: "https://example.org", Parser: "rss",
	})
	if report.Err == nil {
		t.Fatal("expected error for unknown parser")
	}
}

func TestPipeline_CrawlAll_IsolatesFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(pipelineListing))
	}))
	defer server.Close()

	p := testPipeline(t, t.TempDir())
	srcs := []config.Source{
		{ID: "ok", Name: "OK", URL: server.URL, Parser: "configurable"},
		{ID: "broken", Name: "Broken", URL: "http://127.0.0.1:1", Parser: "configurable"},
	}

	reports := p.CrawlAll(context.Background(), srcs, 2)
	if len(reports) != 2 {
		t.Fatalf("CrawlAll() returned %d reports, want 2", len(reports))
	}

	byID := make(map[string]*SourceReport)
	for _, r := range reports {
		byID[r.SourceID] = r
	}
	if byID["ok"] == nil || byID["ok"].Err != nil {
		t.Errorf("healthy source should succeed, got %+v", byID["ok"])
	}
	if byID["broken"] == nil || byID["broken"].Err == nil {
		t.Error("broken source should report its error")
	}
}

func TestPipeline_MultiDayEventWritesOneFilePerDay(t *testing.T) {
	markup := `
<html><body>
<div class="event-item">
  <h3>Festival de Danse</h3>
  <span class="date">du 3 au 4 février 2027</span>
  <a href="/agenda/festival-danse">Voir</a>
</div>
</body></html>`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(markup))
	}))
	defer server.Close()

	outputDir := t.TempDir()
	p := testPipeline(t, outputDir)

	report := p.CrawlSource(context.Background(), config.Source{
		ID: "festival", Name: "Festival", URL: server.URL, Parser: "configurable",
	})
	if report.Err != nil {
		t.Fatalf("CrawlSource() error = %v", report.Err)
	}
	if len(report.Results) != 2 {
		t.Fatalf("got %d results, want one file per day", len(report.Results))
	}

	first := filepath.Join(outputDir, "2027", "02", "03", "festival-de-danse-jour-1-sur-2.fr.md")
	data, err := os.ReadFile(first)
	if err != nil {
		t.Fatalf("expected day file at %s: %v", first, err)
	}
	if !strings.Contains(string(data), "dayOf: Jour 1 sur 2") {
		t.Errorf("day file should carry the day marker:\n%s", data)
	}
}

func TestPipeline_LimitCapsEvents(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(pipelineListing))
	}))
	defer server.Close()

	p := testPipeline(t, t.TempDir())
	p.opts.Limit = 1

	report := p.CrawlSource(context.Background(), config.Source{
		ID: "le-silo", Name: "Le Silo", URL: server.URL, Parser: "configurable",
	})
	if report.Err != nil {
		t.Fatalf("CrawlSource() error = %v", report.Err)
	}
	if report.Accepted+report.Rejected != 1 {
		t.Errorf("processed %d events, want 1 with limit", report.Accepted+report.Rejected)
	}
}
