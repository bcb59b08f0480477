package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/docoutline/internal/collector"
	"github.com/dgallion1/docoutline/internal/outline"
	"github.com/dgallion1/docoutline/internal/stats"
	"github.com/dgallion1/docoutline/internal/store"
)

// Request is one document to outline.
type Request struct {
	Filename string
	Data     []byte
	Sections bool
	// OnStage, when set, is told when collection and classification start.
	OnStage func(JobStatus)
}

// Output is what one extraction produced. Result is always well formed,
// even when Extract also returns an error.
type Output struct {
	Result      outline.Result
	Sections    []outline.Section
	Spans       int
	Skipped     int
	Cached      bool
	ContentHash string
	Duration    time.Duration
}

// Extractor runs collect then classify for one document at a time. It is
// safe for concurrent use; per-document state lives on the stack.
type Extractor struct {
	classifier  *outline.Classifier
	fingerprint string
	cache       *store.Store
	opts        collector.Options
	timeout     time.Duration
	latency     *stats.Latency
	log         *slog.Logger
}

// NewExtractor wires an extractor. cache and latency may be nil.
func NewExtractor(cls *outline.Classifier, cache *store.Store, opts collector.Options, timeout time.Duration, latency *stats.Latency, log *slog.Logger) *Extractor {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	if opts.Log == nil {
		opts.Log = log
	}
	return &Extractor{
		classifier:  cls,
		fingerprint: cls.Config().Fingerprint(),
		cache:       cache,
		opts:        opts,
		timeout:     timeout,
		latency:     latency,
		log:         log,
	}
}

type analysisResult struct {
	analysis *outline.Analysis
	spans    int
	err      error
}

// Extract outlines one document. A collector failure or an exceeded time
// budget returns the empty outline together with the error, so callers can
// log it and still emit a result.
func (e *Extractor) Extract(ctx context.Context, req Request) (Output, error) {
	start := time.Now()
	log := e.log.With("file", req.Filename)
	out := Output{
		Result:      outline.Empty(),
		ContentHash: ContentHashHex(req.Data),
	}
	if req.Sections {
		out.Sections = []outline.Section{}
	}
	key := out.ContentHash + ":" + e.fingerprint

	// Sections need the spans, which the cache does not keep.
	if !req.Sections {
		res, ok, err := e.cache.Get(ctx, key)
		if err != nil {
			log.Warn("cache lookup failed", "error", err)
		} else if ok {
			out.Result = res
			out.Cached = true
			out.Duration = time.Since(start)
			log.Debug("cache hit", "key", key)
			return out, nil
		}
	}

	c, err := collector.ForFile(req.Filename, e.opts)
	if err != nil {
		return out, err
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	stage := func(s JobStatus) {
		if req.OnStage != nil {
			req.OnStage(s)
		}
	}

	// Buffered so an abandoned run can still finish and exit.
	ch := make(chan analysisResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- analysisResult{err: fmt.Errorf("collect %s: panic: %v", req.Filename, r)}
			}
		}()
		stage(StatusCollecting)
		spans, err := c.Collect(bytes.NewReader(req.Data), req.Filename)
		if err != nil {
			ch <- analysisResult{err: fmt.Errorf("collect %s: %w", req.Filename, err)}
			return
		}
		stage(StatusClassifying)
		ch <- analysisResult{analysis: e.classifier.Analyze(spans), spans: len(spans)}
	}()

	var r analysisResult
	select {
	case <-ctx.Done():
		out.Duration = time.Since(start)
		return out, fmt.Errorf("extract %s: %w", req.Filename, ctx.Err())
	case r = <-ch:
	}
	out.Duration = time.Since(start)
	if r.err != nil {
		return out, r.err
	}

	a := r.analysis
	out.Result = a.Result()
	out.Spans = r.spans
	out.Skipped = len(a.Skipped)
	if req.Sections {
		out.Sections = a.Sections()
	}
	if len(a.Skipped) > 0 {
		first := a.Skipped[0]
		log.Warn("skipped malformed spans", "count", len(a.Skipped), "first_index", first.Index, "first_reason", first.Reason)
	}

	if err := e.cache.Put(ctx, key, req.Filename, out.Result); err != nil {
		log.Warn("cache store failed", "error", err)
	}
	if e.latency != nil {
		e.latency.Observe(out.Duration)
	}
	log.Info("outline extracted",
		"spans", out.Spans,
		"headings", len(out.Result.Outline),
		"title_found", out.Result.Title != "",
		"duration_ms", out.Duration.Milliseconds(),
	)
	return out, nil
}
