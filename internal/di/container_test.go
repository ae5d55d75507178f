package di

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/goliatone/go-command/dispatcher"

	pipelinecmd "github.com/goliatone/go-mdc/internal/commands/pipeline"
	"github.com/goliatone/go-mdc/internal/logging"
	"github.com/goliatone/go-mdc/internal/runtimeconfig"
	"github.com/goliatone/go-mdc/pkg/interfaces"
)

var containerTestNow = time.Date(2025, 4, 2, 8, 0, 0, 0, time.UTC)

type staticProvider struct {
	name string
}

func (staticProvider) GetLogger(string) interfaces.Logger { return logging.NoOp() }

func testConfig(mutate func(*runtimeconfig.Config)) runtimeconfig.Config {
	cfg := runtimeconfig.DefaultConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	return cfg
}

func writeSourceDoc(tb testing.TB, dir, rel, body string) {
	tb.Helper()

	path := filepath.Join(dir, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		tb.Fatalf("mkdir %s: %v", rel, err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		tb.Fatalf("write %s: %v", rel, err)
	}
}

func TestNewContainerDefaults(t *testing.T) {
	container, err := NewContainer(runtimeconfig.DefaultConfig())
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}

	if container.Loader() != nil {
		t.Fatal("loader should be nil while the emitter feature is disabled")
	}
	if container.Emitter() != nil || container.Transformer() != nil {
		t.Fatal("emitter services should be nil while the emitter feature is disabled")
	}
	if container.Store() != nil || container.Intelligence() != nil {
		t.Fatal("intelligence services should be nil while the feature is disabled")
	}
	if container.Handlers() != nil || container.Dispatcher() != nil {
		t.Fatal("command services should be nil while commands are disabled")
	}
	if container.LoggerProvider() != nil {
		t.Fatal("logger provider should be nil while the logging feature is disabled")
	}
	if container.Projects() == nil {
		t.Fatal("expected project service")
	}
	if container.Pipeline() == nil {
		t.Fatal("expected pipeline service")
	}
}

func TestNewContainerInvalidConfig(t *testing.T) {
	cfg := testConfig(func(cfg *runtimeconfig.Config) {
		cfg.Intelligence.TopicExtraction.MaxTopics = 0
	})

	if _, err := NewContainer(cfg); !errors.Is(err, runtimeconfig.ErrTopicLimitInvalid) {
		t.Fatalf("expected topic limit error, got %v", err)
	}
}

func TestNewContainerDisabled(t *testing.T) {
	cfg := testConfig(func(cfg *runtimeconfig.Config) {
		cfg.Enabled = false
		cfg.Features.Emitter = true
		cfg.Features.Intelligence = true
		cfg.Commands.Enabled = true
	})

	container, err := NewContainer(cfg)
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	if container.Loader() != nil || container.Intelligence() != nil || container.Pipeline() != nil {
		t.Fatal("disabled module should not construct services")
	}
}

func TestNewContainerEmitterServices(t *testing.T) {
	cfg := testConfig(func(cfg *runtimeconfig.Config) {
		cfg.Features.Emitter = true
	})

	container, err := NewContainer(cfg)
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	if container.Loader() == nil {
		t.Fatal("expected loader")
	}
	if container.Transformer() == nil {
		t.Fatal("expected transformer")
	}
	if container.Emitter() == nil {
		t.Fatal("expected emitter")
	}
	if container.Store() != nil {
		t.Fatal("store should stay nil while intelligence is disabled")
	}
}

func TestNewContainerIntelligenceServices(t *testing.T) {
	cfg := testConfig(func(cfg *runtimeconfig.Config) {
		cfg.Features.Intelligence = true
	})

	container, err := NewContainer(cfg)
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	if container.Store() == nil {
		t.Fatal("expected document store")
	}
	if container.Intelligence() == nil {
		t.Fatal("expected analyzer")
	}
	if container.Emitter() != nil {
		t.Fatal("emitter should stay nil while the emitter feature is disabled")
	}
}

func TestNewContainerCommandHandlers(t *testing.T) {
	cfg := testConfig(func(cfg *runtimeconfig.Config) {
		cfg.Commands.Enabled = true
		cfg.Commands.Timeout = 5 * time.Second
	})

	container, err := NewContainer(cfg)
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}

	handlers := container.Handlers()
	if handlers == nil {
		t.Fatal("expected handler set")
	}
	if handlers.Convert == nil || handlers.Analyze == nil {
		t.Fatalf("expected both handlers, got %+v", handlers)
	}
	if container.Dispatcher() == nil {
		t.Fatal("expected dispatcher bridge")
	}
}

func TestNewContainerConsoleProvider(t *testing.T) {
	cfg := testConfig(func(cfg *runtimeconfig.Config) {
		cfg.Features.Logger = true
	})

	container, err := NewContainer(cfg)
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}

	provider := container.LoggerProvider()
	if provider == nil {
		t.Fatal("expected console provider")
	}
	if provider.GetLogger("mdc.test") == nil {
		t.Fatal("provider returned nil logger")
	}
}

func TestNewContainerGologgerProvider(t *testing.T) {
	cfg := testConfig(func(cfg *runtimeconfig.Config) {
		cfg.Features.Logger = true
		cfg.Logging.Provider = "gologger"
		cfg.Logging.Format = "json"
	})

	container, err := NewContainer(cfg)
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	if container.LoggerProvider() == nil {
		t.Fatal("expected gologger provider")
	}
}

func TestNewContainerRejectsUnknownLoggingFormat(t *testing.T) {
	cfg := testConfig(func(cfg *runtimeconfig.Config) {
		cfg.Features.Logger = true
		cfg.Logging.Provider = "gologger"
		cfg.Logging.Format = "xml"
	})

	if _, err := NewContainer(cfg); !errors.Is(err, runtimeconfig.ErrLoggingFormatInvalid) {
		t.Fatalf("expected logging format error, got %v", err)
	}
}

func TestNewContainerWithLoggerProviderOverride(t *testing.T) {
	injected := &staticProvider{name: "injected"}

	container, err := NewContainer(runtimeconfig.DefaultConfig(), WithLoggerProvider(injected))
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	if container.LoggerProvider() != interfaces.LoggerProvider(injected) {
		t.Fatal("expected the injected provider to win")
	}
}

func TestContainerClockReachesPipeline(t *testing.T) {
	srcDir := t.TempDir()
	outDir := t.TempDir()
	writeSourceDoc(t, srcDir, "docs/a.md", "# Alpha\n\nAlpha body text.\n")

	container, err := NewContainer(runtimeconfig.DefaultConfig(), WithClock(func() time.Time { return containerTestNow }))
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}

	result, err := container.Pipeline().Convert(context.Background(), pipelinecmd.ConvertMessage{
		SourceDir: srcDir,
		OutputDir: outDir,
	})
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if result.GeneratedAt != "2025-04-02T08:00:00Z" {
		t.Fatalf("generated_at = %q", result.GeneratedAt)
	}
	if _, err := os.Stat(filepath.Join(outDir, "unknown__docs__a.mdc")); err != nil {
		t.Fatalf("expected emitted document: %v", err)
	}
}

func TestContainerFilesystemOverride(t *testing.T) {
	outDir := t.TempDir()
	sources := fstest.MapFS{
		"docs/a.md": &fstest.MapFile{Data: []byte("# Alpha\n\nAlpha body text.\n")},
	}

	container, err := NewContainer(runtimeconfig.DefaultConfig(), WithFilesystem(func(string) fs.FS { return sources }))
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}

	result, err := container.Pipeline().Convert(context.Background(), pipelinecmd.ConvertMessage{
		SourceDir: "virtual",
		OutputDir: outDir,
	})
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if result.Processed != 1 {
		t.Fatalf("processed = %d", result.Processed)
	}
}

func TestDispatcherSubscribeAndClose(t *testing.T) {
	srcDir := t.TempDir()
	outDir := t.TempDir()
	writeSourceDoc(t, srcDir, "docs/a.md", "# Alpha\n\nAlpha body text.\n")

	cfg := testConfig(func(cfg *runtimeconfig.Config) {
		cfg.Commands.Enabled = true
	})

	container, err := NewContainer(cfg, WithClock(func() time.Time { return containerTestNow }))
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}

	bridge := container.Dispatcher()
	if bridge == nil {
		t.Fatal("expected dispatcher bridge")
	}
	bridge.Subscribe()
	bridge.Subscribe()
	t.Cleanup(bridge.Close)

	err = dispatcher.Dispatch(context.Background(), pipelinecmd.ConvertMessage{
		SourceDir: srcDir,
		OutputDir: outDir,
	})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	if _, err := os.Stat(filepath.Join(outDir, "unknown__docs__a.mdc")); err != nil {
		t.Fatalf("expected emitted document: %v", err)
	}

	bridge.Close()
}

func TestResolveUnder(t *testing.T) {
	if got := resolveUnder("output", ""); got != "" {
		t.Fatalf("empty path should stay empty, got %q", got)
	}
	if got := resolveUnder("output", "state.json"); got != filepath.Join("output", "state.json") {
		t.Fatalf("relative path = %q", got)
	}
	abs := filepath.Join(string(filepath.Separator), "var", "state.json")
	if got := resolveUnder("output", abs); got != abs {
		t.Fatalf("absolute path = %q", got)
	}
}
