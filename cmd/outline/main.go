// Command outline writes <stem>.json for every supported document in an
// input directory. Flags override the environment.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/docoutline/internal/collector"
	"github.com/dgallion1/docoutline/internal/config"
	"github.com/dgallion1/docoutline/internal/outline"
	"github.com/dgallion1/docoutline/internal/pipeline"
	"github.com/dgallion1/docoutline/internal/store"
)

type options struct {
	inDir      string
	outDir     string
	workers    int
	sections   bool
	classifier string
	cachePath  string
	timeout    time.Duration
	preflight  bool
	fallback   bool
	verbose    bool
}

func main() {
	opts, err := parseFlags(os.Args[1:], config.Load())
	if err != nil {
		fmt.Fprintf(os.Stderr, "outline: %v\n", err)
		os.Exit(2)
	}
	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "outline: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags(args []string, env config.Config) (options, error) {
	fs := flag.NewFlagSet("outline", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: outline [flags]\n")
		fs.PrintDefaults()
	}

	var opts options
	fs.StringVar(&opts.inDir, "in", env.InputDir, "Directory of documents to outline")
	fs.StringVar(&opts.outDir, "out", env.OutputDir, "Directory for <stem>.json results")
	fs.IntVar(&opts.workers, "workers", env.WorkerCount, "Documents processed concurrently")
	fs.BoolVar(&opts.sections, "sections", false, "Also write <stem>.sections.json with body text per heading")
	fs.StringVar(&opts.classifier, "config", env.ClassifierPath, "YAML file with classifier thresholds")
	fs.StringVar(&opts.cachePath, "cache", env.CachePath, "Result cache: SQLite path or postgres:// DSN (empty disables)")
	fs.DurationVar(&opts.timeout, "timeout", env.DocTimeout, "Per-document time budget")
	fs.BoolVar(&opts.preflight, "preflight", env.PDFPreflight, "Validate PDFs with pdfcpu before reading")
	fs.BoolVar(&opts.fallback, "pdftotext", env.PDFFallbackPdftotext, "Fall back to pdftotext when a PDF yields no text")
	fs.BoolVar(&opts.verbose, "v", false, "Debug logging")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	if fs.NArg() != 0 {
		fs.Usage()
		return options{}, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	if opts.inDir == "" || opts.outDir == "" {
		return options{}, fmt.Errorf("-in and -out are required")
	}
	if opts.workers < 1 {
		return options{}, fmt.Errorf("-workers must be at least 1")
	}
	return opts, nil
}

func run(opts options) error {
	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	clsCfg, err := config.LoadClassifier(opts.classifier)
	if err != nil {
		return err
	}

	var cache *store.Store
	if opts.cachePath != "" {
		cache, err = store.Open(opts.cachePath)
		if err != nil {
			return err
		}
		defer cache.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ex := pipeline.NewExtractor(outline.New(clsCfg), cache, collector.Options{
		PDFPreflight:      opts.preflight,
		FallbackPdftotext: opts.fallback,
		Log:               log,
	}, opts.timeout, nil, log)

	summary, err := pipeline.RunBatch(ctx, ex, opts.inDir, opts.outDir, pipeline.BatchOptions{
		Workers:  opts.workers,
		Sections: opts.sections,
	}, log)
	if err != nil {
		return err
	}
	log.Info("batch complete",
		"documents", summary.Documents,
		"degraded", summary.Degraded,
		"cached", summary.Cached,
		"out", opts.outDir,
	)
	return nil
}
