package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dgallion1/docoutline/internal/config"
)

func TestParseFlags_Defaults(t *testing.T) {
	env := config.Config{InputDir: "/in", OutputDir: "/out", WorkerCount: 3, DocTimeout: 2 * time.Second, PDFFallbackPdftotext: true}
	opts, err := parseFlags(nil, env)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.inDir != "/in" || opts.outDir != "/out" {
		t.Errorf("expected env dirs, got %q %q", opts.inDir, opts.outDir)
	}
	if opts.workers != 3 || opts.timeout != 2*time.Second || !opts.fallback {
		t.Errorf("unexpected options: %+v", opts)
	}
}

func TestParseFlags_Override(t *testing.T) {
	env := config.Config{InputDir: "/in", OutputDir: "/out", WorkerCount: 3}
	opts, err := parseFlags([]string{"-in", "docs", "-workers", "8", "-sections"}, env)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.inDir != "docs" || opts.workers != 8 || !opts.sections {
		t.Errorf("unexpected options: %+v", opts)
	}
}

func TestParseFlags_Errors(t *testing.T) {
	env := config.Config{InputDir: "/in", OutputDir: "/out", WorkerCount: 1}
	cases := [][]string{
		{"-workers", "0"},
		{"extra"},
		{"-out", ""},
	}
	for _, args := range cases {
		if _, err := parseFlags(args, env); err == nil {
			t.Errorf("expected error for %v", args)
		}
	}
}

func TestRun(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	doc := "# Guide\n\nIntro text that is long enough to be the body of the page.\n\n## Setup\n\nMore body text follows here.\n"
	if err := os.WriteFile(filepath.Join(in, "guide.md"), []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	err := run(options{inDir: in, outDir: out, workers: 1, timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(out, "guide.json")); err != nil {
		t.Errorf("expected guide.json: %v", err)
	}
}
