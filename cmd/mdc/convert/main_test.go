package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	mdc "github.com/goliatone/go-mdc"
	"github.com/goliatone/go-mdc/cmd/mdc/internal/bootstrap"
	"github.com/goliatone/go-mdc/internal/di"
	"github.com/goliatone/go-mdc/internal/logging"
)

func quietModuleBuilder(bootstrap.Options) (*bootstrap.Module, error) {
	module, err := mdc.New(mdc.DefaultConfig(), di.WithClock(func() time.Time {
		return time.Date(2025, 4, 2, 8, 0, 0, 0, time.UTC)
	}))
	if err != nil {
		return nil, err
	}
	return &bootstrap.Module{Module: module, Logger: logging.NoOp()}, nil
}

func TestRunConvertEmitsDocuments(t *testing.T) {
	original := moduleBuilder
	defer func() { moduleBuilder = original }()
	moduleBuilder = quietModuleBuilder

	srcDir := t.TempDir()
	outDir := t.TempDir()
	docPath := filepath.Join(srcDir, "docs", "a.md")
	if err := os.MkdirAll(filepath.Dir(docPath), 0o755); err != nil {
		t.Fatalf("mkdir docs: %v", err)
	}
	if err := os.WriteFile(docPath, []byte("# Alpha\n\nAlpha body text.\n"), 0o644); err != nil {
		t.Fatalf("write doc: %v", err)
	}

	if err := runConvert([]string{
		"-source", srcDir,
		"-output", outDir,
		"-repo", "acme/widgets",
	}); err != nil {
		t.Fatalf("runConvert returned error: %v", err)
	}

	if _, err := os.Stat(filepath.Join(outDir, "widgets__docs__a.mdc")); err != nil {
		t.Fatalf("expected emitted document: %v", err)
	}
	if _, err := os.Stat(filepath.Join(outDir, "index.jsonl")); err != nil {
		t.Fatalf("expected manifest: %v", err)
	}
}

func TestRunConvertMissingSource(t *testing.T) {
	original := moduleBuilder
	defer func() { moduleBuilder = original }()
	moduleBuilder = quietModuleBuilder

	outDir := t.TempDir()
	missing := filepath.Join(t.TempDir(), "absent")

	if err := runConvert([]string{"-source", missing, "-output", outDir}); err == nil {
		t.Fatal("expected error for missing source directory")
	}
}
