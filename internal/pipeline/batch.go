package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/dgallion1/docoutline/internal/collector"
	"github.com/dgallion1/docoutline/internal/outline"
)

// BatchOptions controls RunBatch.
type BatchOptions struct {
	// Workers bounds concurrent documents; values below 1 mean 1.
	Workers  int
	Sections bool
}

// BatchSummary counts what RunBatch did.
type BatchSummary struct {
	Documents int `json:"documents"`
	// Degraded documents were written with the empty outline.
	Degraded int `json:"degraded"`
	Cached   int `json:"cached"`
}

// RunBatch outlines every supported file directly inside inDir and writes
// one <stem>.json per input to outDir. A document that cannot be read or
// collected still gets a file holding the empty outline. Only directory
// errors, output write errors and cancellation stop the batch.
func RunBatch(ctx context.Context, ex *Extractor, inDir, outDir string, opts BatchOptions, log *slog.Logger) (BatchSummary, error) {
	var summary BatchSummary

	entries, err := os.ReadDir(inDir)
	if err != nil {
		return summary, fmt.Errorf("read input dir: %w", err)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return summary, fmt.Errorf("create output dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() && collector.IsSupportedExtension(e.Name()) {
			names = append(names, e.Name())
		}
	}
	stems := outputStems(names)

	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	var degraded, cached atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, name := range names {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			dlog := log.With("file", name)

			out := Output{Result: outline.Empty()}
			if opts.Sections {
				out.Sections = []outline.Section{}
			}
			data, err := os.ReadFile(filepath.Join(inDir, name))
			if err == nil {
				out, err = ex.Extract(ctx, Request{Filename: name, Data: data, Sections: opts.Sections})
			}
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				dlog.Error("document degraded to empty outline", "error", err)
				degraded.Add(1)
			}
			if out.Cached {
				cached.Add(1)
			}

			stem := stems[name]
			if err := writeJSONFile(filepath.Join(outDir, stem+".json"), out.Result); err != nil {
				return err
			}
			if opts.Sections {
				if err := writeJSONFile(filepath.Join(outDir, stem+".sections.json"), out.Sections); err != nil {
					return err
				}
			}
			return nil
		})
	}
	err = g.Wait()

	summary.Documents = len(names)
	summary.Degraded = int(degraded.Load())
	summary.Cached = int(cached.Load())
	log.Info("batch complete", "documents", summary.Documents, "degraded", summary.Degraded, "cached", summary.Cached)
	return summary, err
}

// outputStems maps each input name to its output stem. Names that would
// collide once the extension is dropped keep their extension instead.
func outputStems(names []string) map[string]string {
	count := make(map[string]int, len(names))
	for _, n := range names {
		count[strings.TrimSuffix(n, filepath.Ext(n))]++
	}
	stems := make(map[string]string, len(names))
	for _, n := range names {
		stem := strings.TrimSuffix(n, filepath.Ext(n))
		if count[stem] > 1 {
			stem = n
		}
		stems[n] = stem
	}
	return stems
}

// writeJSONFile writes through a temp file and rename so readers never see
// a partial document.
func writeJSONFile(path string, v any) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*.json")
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	tmpPath := tmp.Name()
	if err := outline.WriteJSON(tmp, v); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
