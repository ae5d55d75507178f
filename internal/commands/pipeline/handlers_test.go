package pipelinecmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/goliatone/go-mdc/internal/logging"
	"github.com/goliatone/go-mdc/pkg/interfaces"
	goerrors "github.com/goliatone/go-errors"
)

type captureLogger struct {
	fields       []map[string]any
	infoMessages []string
}

var _ interfaces.Logger = (*captureLogger)(nil)

func (c *captureLogger) Trace(string, ...any) {}
func (c *captureLogger) Debug(string, ...any) {}
func (c *captureLogger) Info(msg string, _ ...any) {
	c.infoMessages = append(c.infoMessages, msg)
}
func (c *captureLogger) Warn(string, ...any)  {}
func (c *captureLogger) Error(string, ...any) {}
func (c *captureLogger) Fatal(string, ...any) {}

func (c *captureLogger) WithFields(fields map[string]any) interfaces.Logger {
	copied := make(map[string]any, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	c.fields = append(c.fields, copied)
	return c
}

func (c *captureLogger) WithContext(context.Context) interfaces.Logger {
	return c
}

func (c *captureLogger) fieldValue(key string) (any, bool) {
	for _, fields := range c.fields {
		if value, ok := fields[key]; ok {
			return value, true
		}
	}
	return nil, false
}

func TestConvertHandlerInvokesService(t *testing.T) {
	sourceDir := t.TempDir()
	outputDir := t.TempDir()
	writeSourceTree(t, sourceDir, map[string]string{
		"docs/a.md": "# Alpha\n\nBody.\n",
	})

	logger := &captureLogger{}
	service := NewService(logger)
	handler := NewConvertHandler(service, logger)

	err := handler.Execute(context.Background(), ConvertMessage{
		SourceDir: sourceDir,
		OutputDir: outputDir,
		Repo:      "acme/docs",
	})
	if err != nil {
		t.Fatalf("execute convert: %v", err)
	}

	if _, err := os.Stat(filepath.Join(outputDir, "docs__docs__a.mdc")); err != nil {
		t.Fatalf("expected document emitted: %v", err)
	}

	value, ok := logger.fieldValue("processed_count")
	if !ok {
		t.Fatalf("expected completion fields recorded, got %#v", logger.fields)
	}
	if value != 1 {
		t.Fatalf("expected processed_count 1, got %v", value)
	}
	if _, ok := logger.fieldValue("written_count"); !ok {
		t.Fatalf("expected written_count field, got %#v", logger.fields)
	}
}

func TestConvertHandlerValidation(t *testing.T) {
	handler := NewConvertHandler(NewService(logging.NoOp()), logging.NoOp())

	err := handler.Execute(context.Background(), ConvertMessage{})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}
}

func TestConvertHandlerNilService(t *testing.T) {
	handler := NewConvertHandler(nil, logging.NoOp())

	err := handler.Execute(context.Background(), ConvertMessage{
		SourceDir: "./docs",
		OutputDir: "./output",
	})
	if !errors.Is(err, ErrServiceRequired) {
		t.Fatalf("expected service required error, got %v", err)
	}
}

func TestAnalyzeHandlerInvokesService(t *testing.T) {
	sourceDir := t.TempDir()
	outputDir := t.TempDir()
	writeSourceTree(t, sourceDir, map[string]string{
		"docs/a.md": "# Alpha\n\nBody about routing and navigation.\n",
	})

	service := NewService(logging.NoOp())
	if _, err := service.Convert(context.Background(), ConvertMessage{
		SourceDir: sourceDir,
		OutputDir: outputDir,
		Repo:      "acme/docs",
	}); err != nil {
		t.Fatalf("convert: %v", err)
	}

	logger := &captureLogger{}
	handler := NewAnalyzeHandler(NewService(logger), logger)

	if err := handler.Execute(context.Background(), AnalyzeMessage{Directory: outputDir}); err != nil {
		t.Fatalf("execute analyze: %v", err)
	}

	value, ok := logger.fieldValue("processed_count")
	if !ok {
		t.Fatalf("expected completion fields recorded, got %#v", logger.fields)
	}
	if value != 1 {
		t.Fatalf("expected processed_count 1, got %v", value)
	}
}

func TestAnalyzeHandlerContextCancellation(t *testing.T) {
	handler := NewAnalyzeHandler(NewService(logging.NoOp()), logging.NoOp())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := handler.Execute(ctx, AnalyzeMessage{Directory: t.TempDir()})
	if err == nil {
		t.Fatal("expected context cancellation error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command error category, got %v", err)
	}
}

type stubRegistry struct {
	handlers []any
	err      error
}

func (s *stubRegistry) RegisterCommand(handler any) error {
	if s.err != nil {
		return s.err
	}
	s.handlers = append(s.handlers, handler)
	return nil
}

func TestRegisterPipelineCommands(t *testing.T) {
	reg := &stubRegistry{}
	service := NewService(logging.NoOp())

	set, err := RegisterPipelineCommands(reg, service, nil)
	if err != nil {
		t.Fatalf("register pipeline commands: %v", err)
	}
	if set == nil || set.Convert == nil || set.Analyze == nil {
		t.Fatalf("expected handler set populated, got %#v", set)
	}
	if len(reg.handlers) != 2 {
		t.Fatalf("expected 2 registered handlers, got %d", len(reg.handlers))
	}
}

func TestRegisterPipelineCommandsRequiresService(t *testing.T) {
	if _, err := RegisterPipelineCommands(&stubRegistry{}, nil, nil); !errors.Is(err, ErrServiceRequired) {
		t.Fatalf("expected service required error, got %v", err)
	}
}

func TestRegisterPipelineCommandsPropagatesRegistryError(t *testing.T) {
	reg := &stubRegistry{err: errors.New("registry full")}
	if _, err := RegisterPipelineCommands(reg, NewService(logging.NoOp()), nil); err == nil {
		t.Fatal("expected registry error to propagate")
	}
}
