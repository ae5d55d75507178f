package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	mdc "github.com/goliatone/go-mdc"
	"github.com/goliatone/go-mdc/cmd/mdc/internal/bootstrap"
)

var moduleBuilder = bootstrap.BuildModule

func main() {
	if err := runConvert(os.Args[1:]); err != nil {
		log.Fatalf("mdc convert: %v", err)
	}
}

func runConvert(args []string) error {
	fs := flag.NewFlagSet("mdc-convert", flag.ExitOnError)
	source := fs.String("source", ".", "Path to the documentation source tree")
	output := fs.String("output", "output", "Directory receiving converted .mdc documents")
	projectConfig := fs.String("project-config", "", "Explicit context7.json path (defaults to auto-detection near the source)")
	repo := fs.String("repo", "", "Source repository as owner/name, used for canonical URLs")
	ref := fs.String("ref", "", "Git reference the sources were fetched at")
	topics := fs.String("topics", "", "Comma separated topics applied to every document")
	profile := fs.String("profile", "", "Compression profile: lossless, balanced, or compact")
	verbose := fs.Bool("verbose", false, "Enable debug logging")

	if err := fs.Parse(args); err != nil {
		return err
	}

	module, err := moduleBuilder(bootstrap.Options{Verbose: *verbose})
	if err != nil {
		return fmt.Errorf("bootstrap module: %w", err)
	}

	msg := mdc.ConvertMessage{
		SourceDir:     *source,
		OutputDir:     *output,
		ProjectConfig: *projectConfig,
		Repo:          *repo,
		Ref:           *ref,
		Topics:        bootstrap.SplitList(*topics),
		Profile:       *profile,
	}

	result, err := module.Module.Convert(context.Background(), msg)
	if err != nil {
		return fmt.Errorf("execute conversion: %w", err)
	}

	fmt.Fprintf(os.Stdout, "Converted %d of %d documents (%d skipped, %d errors)\n",
		result.Written, result.Processed, result.Skipped, result.Errors)
	fmt.Fprintf(os.Stdout, "Totals: %d files, %d words, %d tokens\n",
		result.Totals.Files, result.Totals.Words, result.Totals.Tokens)

	return nil
}
