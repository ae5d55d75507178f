package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	mdc "github.com/goliatone/go-mdc"
	"github.com/goliatone/go-mdc/cmd/mdc/internal/bootstrap"
)

var moduleBuilder = bootstrap.BuildModule

func main() {
	if err := runAnalyze(os.Args[1:]); err != nil {
		log.Fatalf("mdc analyze: %v", err)
	}
}

func runAnalyze(args []string) error {
	fs := flag.NewFlagSet("mdc-analyze", flag.ExitOnError)
	dir := fs.String("dir", "output", "Directory holding emitted .mdc documents")
	features := fs.String("features", "", "Comma separated analysis features (defaults to all)")
	full := fs.Bool("full", false, "Reanalyze every document, ignoring recorded analysis state")
	stateFile := fs.String("state-file", "", "Override path for the analysis state file")
	indexFile := fs.String("index-file", "", "Override path for the intelligence index")
	workers := fs.Int("workers", 0, "Concurrent analysis workers (0 selects automatically)")
	verbose := fs.Bool("verbose", false, "Enable debug logging")

	if err := fs.Parse(args); err != nil {
		return err
	}

	module, err := moduleBuilder(bootstrap.Options{Verbose: *verbose})
	if err != nil {
		return fmt.Errorf("bootstrap module: %w", err)
	}

	msg := mdc.AnalyzeMessage{
		Directory:   *dir,
		Features:    bootstrap.SplitList(*features),
		Incremental: !*full,
		StateFile:   *stateFile,
		IndexFile:   *indexFile,
		Workers:     *workers,
	}

	summary, err := module.Module.Analyze(context.Background(), msg)
	if err != nil {
		return fmt.Errorf("execute analysis: %w", err)
	}

	fmt.Fprintf(os.Stdout, "Analyzed %d documents (%d updated, %d skipped, %d errors)\n",
		summary.Processed, summary.Updated, summary.Skipped, summary.Errors)
	fmt.Fprintf(os.Stdout, "Features: %s\n", strings.Join(summary.FeaturesEnabled, ", "))

	return nil
}
