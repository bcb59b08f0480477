package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/dgallion1/docoutline/internal/collector"
	"github.com/dgallion1/docoutline/internal/outline"
	"github.com/dgallion1/docoutline/internal/stats"
	"github.com/dgallion1/docoutline/internal/store"
)

const guideMD = "# Guide\n\n" +
	"Intro text that is long enough to be the body of the page.\n\n" +
	"## Setup\n\n" +
	"More body text follows here.\n"

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func newTestExtractor(t *testing.T, cache *store.Store, latency *stats.Latency) *Extractor {
	t.Helper()
	return NewExtractor(outline.New(outline.DefaultConfig()), cache, collector.Options{}, 5*time.Second, latency, testLogger())
}

func openCache(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestExtractor_Markdown(t *testing.T) {
	latency := stats.NewLatency(time.Hour)
	ex := newTestExtractor(t, nil, latency)

	var mu sync.Mutex
	var stages []JobStatus
	out, err := ex.Extract(context.Background(), Request{
		Filename: "guide.md",
		Data:     []byte(guideMD),
		Sections: true,
		OnStage: func(s JobStatus) {
			mu.Lock()
			stages = append(stages, s)
			mu.Unlock()
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if out.Result.Title != "Guide" {
		t.Errorf("expected title %q, got %q", "Guide", out.Result.Title)
	}
	want := []outline.Entry{{Level: outline.H1, Text: "Setup", Page: 1}}
	if len(out.Result.Outline) != 1 || out.Result.Outline[0] != want[0] {
		t.Errorf("expected outline %+v, got %+v", want, out.Result.Outline)
	}
	if len(out.Sections) != 1 || out.Sections[0].Content != "More body text follows here." {
		t.Errorf("unexpected sections: %+v", out.Sections)
	}
	if out.Spans != 4 {
		t.Errorf("expected 4 spans, got %d", out.Spans)
	}
	if out.ContentHash != ContentHashHex([]byte(guideMD)) {
		t.Errorf("expected content hash of input, got %q", out.ContentHash)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(stages) != 2 || stages[0] != StatusCollecting || stages[1] != StatusClassifying {
		t.Errorf("expected collecting then classifying, got %v", stages)
	}
	if latency.Snapshot().Count != 1 {
		t.Errorf("expected one latency sample, got %d", latency.Snapshot().Count)
	}
}

func TestExtractor_CacheRoundTrip(t *testing.T) {
	cache := openCache(t)
	ex := newTestExtractor(t, cache, nil)
	ctx := context.Background()
	req := Request{Filename: "guide.md", Data: []byte(guideMD)}

	first, err := ex.Extract(ctx, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Cached {
		t.Error("expected first run to miss the cache")
	}

	second, err := ex.Extract(ctx, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !second.Cached {
		t.Error("expected second run to hit the cache")
	}
	if second.Result.Title != first.Result.Title || len(second.Result.Outline) != len(first.Result.Outline) {
		t.Errorf("expected cached result %+v, got %+v", first.Result, second.Result)
	}

	// Sections need spans, so they bypass the cache.
	withSections, err := ex.Extract(ctx, Request{Filename: "guide.md", Data: []byte(guideMD), Sections: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if withSections.Cached || len(withSections.Sections) != 1 {
		t.Errorf("expected uncached run with sections, got cached=%v sections=%d", withSections.Cached, len(withSections.Sections))
	}

	if n, _ := cache.Count(ctx); n != 1 {
		t.Errorf("expected 1 cache row, got %d", n)
	}
}

func TestExtractor_DifferentThresholdsMissCache(t *testing.T) {
	cache := openCache(t)
	ctx := context.Background()
	req := Request{Filename: "guide.md", Data: []byte(guideMD)}

	if _, err := newTestExtractor(t, cache, nil).Extract(ctx, req); err != nil {
		t.Fatal(err)
	}
	cfg := outline.DefaultConfig()
	cfg.SizeTolerance = 1
	other := NewExtractor(outline.New(cfg), cache, collector.Options{}, time.Second, nil, testLogger())
	out, err := other.Extract(ctx, req)
	if err != nil {
		t.Fatal(err)
	}
	if out.Cached {
		t.Error("expected a classifier with other thresholds to miss the cache")
	}
}

func TestExtractor_FailuresYieldEmptyResult(t *testing.T) {
	ex := newTestExtractor(t, nil, nil)
	tests := []struct {
		name string
		data []byte
	}{
		{"data.csv", []byte("a,b")},
		{"broken.docx", []byte("not a zip archive")},
	}
	for _, tt := range tests {
		out, err := ex.Extract(context.Background(), Request{Filename: tt.name, Data: tt.data})
		if err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
		if out.Result.Title != "" || out.Result.Outline == nil || len(out.Result.Outline) != 0 {
			t.Errorf("%s: expected empty result, got %+v", tt.name, out.Result)
		}
	}
}

func TestExtractor_EmptyDocument(t *testing.T) {
	ex := newTestExtractor(t, nil, nil)
	out, err := ex.Extract(context.Background(), Request{Filename: "empty.txt", Data: nil})
	if err != nil {
		t.Fatalf("expected empty input not to be an error, got %v", err)
	}
	if out.Result.Title != "" || len(out.Result.Outline) != 0 || out.Result.Outline == nil {
		t.Errorf("expected empty result, got %+v", out.Result)
	}
}

func TestExtractor_CancelledContext(t *testing.T) {
	ex := newTestExtractor(t, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out, err := ex.Extract(ctx, Request{Filename: "guide.md", Data: []byte(guideMD)})
	// Either the run finished before the select or the cancellation won;
	// both must leave a well-formed result.
	if out.Result.Outline == nil {
		t.Errorf("expected non-nil outline, err=%v", err)
	}
}
