package content

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/massalia/crawler/internal/model"
)

// Actions reported per generated event
const (
	ActionCreated = "created"
	ActionSkipped = "skipped"
	ActionFailed  = "failed"
)

// Result of one generate call
type Result struct {
	FilePath string
	Action   string
	Reason   string
}

// Stats accumulates counts across a run
type Stats struct {
	Created       int
	SkippedExists int
	Failed        int
}

// frontMatter field order is part of the output contract: generated
// files must stay byte-stable across runs for clean diffs
type frontMatter struct {
	Title        string   `yaml:"title"`
	Date         string   `yaml:"date"`
	Draft        bool     `yaml:"draft"`
	ExpiryDate   string   `yaml:"expiryDate"`
	Name         string   `yaml:"name"`
	EventURL     string   `yaml:"eventURL"`
	StartTime    string   `yaml:"startTime"`
	Description  string   `yaml:"description"`
	Categories   []string `yaml:"categories"`
	Locations    []string `yaml:"locations"`
	Dates        []string `yaml:"dates"`
	Tags         []string `yaml:"tags"`
	Image        string   `yaml:"image,omitempty"`
	EventGroupID string   `yaml:"eventGroupId,omitempty"`
	DayOf        string   `yaml:"dayOf,omitempty"`
	SourceID     string   `yaml:"sourceId,omitempty"`
	LastCrawled  string   `yaml:"lastCrawled"`
	Expired      bool     `yaml:"expired"`
}

// Writer renders canonical events as markdown content files under a
// date-based directory tree. Generation is idempotent: the same event
// always maps to the same path. One writer is shared by all
// concurrently crawled sources, so the counters are mutex-guarded.
type Writer struct {
	outputDir    string
	dryRun       bool
	skipExisting bool

	statsMu sync.Mutex
	stats   Stats

	now func() time.Time
}

// NewWriter creates a content writer rooted at outputDir. In dry-run
// mode no filesystem mutation happens; with skipExisting, events whose
// file already exists are left untouched.
func NewWriter(outputDir string, dryRun, skipExisting bool) *Writer {
	return &Writer{
		outputDir:    outputDir,
		dryRun:       dryRun,
		skipExisting: skipExisting,
		now:          time.Now,
	}
}

// Generate writes the markdown file for one event, creating parent
// directories as needed. The returned result always carries the
// canonical path, even in dry-run mode.
func (w *Writer) Generate(event *model.Event) (Result, error) {
	path := filepath.Join(w.outputDir, filepath.FromSlash(event.FilePath()))

	if w.skipExisting {
		if _, err := os.Stat(path); err == nil {
			w.count(func(s *Stats) { s.SkippedExists++ })
			return Result{FilePath: path, Action: ActionSkipped, Reason: "file already exists"}, nil
		}
	}

	content, err := w.render(event)
	if err != nil {
		w.count(func(s *Stats) { s.Failed++ })
		return Result{FilePath: path, Action: ActionFailed, Reason: err.Error()}, err
	}

	if w.dryRun {
		w.count(func(s *Stats) { s.Created++ })
		return Result{FilePath: path, Action: ActionCreated, Reason: "dry run"}, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		w.count(func(s *Stats) { s.Failed++ })
		return Result{FilePath: path, Action: ActionFailed, Reason: err.Error()}, fmt.Errorf("create directories: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		w.count(func(s *Stats) { s.Failed++ })
		return Result{FilePath: path, Action: ActionFailed, Reason: err.Error()}, fmt.Errorf("write file: %w", err)
	}

	w.count(func(s *Stats) { s.Created++ })
	return Result{FilePath: path, Action: ActionCreated}, nil
}

func (w *Writer) count(update func(*Stats)) {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()
	update(&w.stats)
}

// GenerateAll processes a batch of events, never letting one failure
// stop the rest
func (w *Writer) GenerateAll(events []*model.Event) []Result {
	results := make([]Result, 0, len(events))
	for _, event := range events {
		result, _ := w.Generate(event)
		results = append(results, result)
	}
	return results
}

// GenerateMultiDay writes one linked file per date of a multi-day
// event. Files share an eventGroupId and carry a "Jour i sur N"
// marker; each day gets a distinct source id suffix.
func (w *Writer) GenerateMultiDay(base *model.Event, dates []time.Time, groupID string) []Result {
	if len(dates) == 0 {
		return nil
	}

	sorted := make([]time.Time, len(dates))
	copy(sorted, dates)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	if groupID == "" {
		groupID = fmt.Sprintf("%s-%s", model.Slugify(base.Name), sorted[0].Format("200601"))
	}

	results := make([]Result, 0, len(sorted))
	for i, date := range sorted {
		day := *base
		day.Start = time.Date(
			date.Year(), date.Month(), date.Day(),
			base.Start.Hour(), base.Start.Minute(), 0, 0,
			model.ParisTZ,
		)
		day.EventGroupID = groupID
		day.DayOf = fmt.Sprintf("Jour %d sur %d", i+1, len(sorted))
		if base.SourceID != "" {
			day.SourceID = fmt.Sprintf("%s:day%d", base.SourceID, i+1)
		}

		result, _ := w.Generate(&day)
		results = append(results, result)
	}
	return results
}

// CheckExists reports whether the event's file is already on disk
func (w *Writer) CheckExists(event *model.Event) bool {
	path := filepath.Join(w.outputDir, filepath.FromSlash(event.FilePath()))
	_, err := os.Stat(path)
	return err == nil
}

// FindBySourceID scans the content tree for files whose front matter
// carries the given source id. Used for deduplication without an
// external index.
func (w *Writer) FindBySourceID(sourceID string) []string {
	if sourceID == "" {
		return nil
	}

	needle := "sourceId: " + sourceID + "\n"
	var matches []string
	_ = filepath.WalkDir(w.outputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(path, ".fr.md") {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		if strings.Contains(string(data), needle) {
			matches = append(matches, path)
		}
		return nil
	})
	return matches
}

// Stats returns the counters accumulated so far
func (w *Writer) Stats() Stats {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()
	return w.stats
}

func (w *Writer) render(event *model.Event) (string, error) {
	fm := frontMatter{
		Title:        event.Title(),
		Date:         event.Start.Format(time.RFC3339),
		Draft:        event.Draft,
		ExpiryDate:   event.ExpiryDate().Format(time.RFC3339),
		Name:         event.Name,
		EventURL:     event.EventURL,
		StartTime:    event.StartTime(),
		Description:  event.Description,
		Categories:   event.Categories,
		Locations:    event.Locations,
		Dates:        event.DatesTaxonomy(),
		Tags:         event.Tags,
		Image:        event.Image,
		EventGroupID: event.EventGroupID,
		DayOf:        event.DayOf,
		SourceID:     event.SourceID,
		LastCrawled:  w.now().In(model.ParisTZ).Format(time.RFC3339),
	}

	data, err := yaml.Marshal(&fm)
	if err != nil {
		return "", fmt.Errorf("marshal front matter: %w", err)
	}

	return "---\n" + string(data) + "---\n", nil
}
