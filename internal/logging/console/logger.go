// Package console provides a dependency-free logger provider that writes
// single-line key=value entries. It is the default provider for the document
// pipeline and is primarily useful for CLI runs and tests, where a full
// logging backend would be overkill.
package console

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-mdc/internal/logging"
	"github.com/goliatone/go-mdc/pkg/interfaces"
)

// Level represents the severity attached to a log entry.
type Level uint8

const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

var levelLabels = [...]string{"TRACE", "DEBUG", "INFO", "WARN", "ERROR", "FATAL"}

// String renders the severity label used in console output.
func (l Level) String() string {
	if int(l) < len(levelLabels) {
		return levelLabels[l]
	}
	return "INFO"
}

// Options configures the console logger provider. Zero values select stdout,
// the wall clock, and a DEBUG minimum severity.
type Options struct {
	Writer   io.Writer
	TimeFunc func() time.Time
	MinLevel *Level
}

// sink serializes writes from every logger handed out by one provider.
type sink struct {
	mu    sync.Mutex
	out   io.Writer
	clock func() time.Time
	min   Level
}

// NewProvider constructs a console-backed provider for the pipeline logging
// contract.
func NewProvider(opts Options) interfaces.LoggerProvider {
	s := &sink{
		out:   opts.Writer,
		clock: opts.TimeFunc,
		min:   LevelDebug,
	}
	if s.out == nil {
		s.out = os.Stdout
	}
	if s.clock == nil {
		s.clock = time.Now
	}
	if opts.MinLevel != nil {
		s.min = *opts.MinLevel
	}
	return s
}

func (s *sink) GetLogger(name string) interfaces.Logger {
	return &entryLogger{
		sink:  s,
		bound: []boundField{{key: "logger", value: name}},
	}
}

type boundField struct {
	key   string
	value any
}

// entryLogger accumulates bound fields in application order; collisions are
// resolved last-wins when the entry is rendered.
type entryLogger struct {
	sink  *sink
	bound []boundField
	ctx   context.Context
}

var (
	_ interfaces.Logger       = (*entryLogger)(nil)
	_ interfaces.FieldsLogger = (*entryLogger)(nil)
)

func (l *entryLogger) Trace(msg string, args ...any) { l.emit(LevelTrace, msg, args) }
func (l *entryLogger) Debug(msg string, args ...any) { l.emit(LevelDebug, msg, args) }
func (l *entryLogger) Info(msg string, args ...any)  { l.emit(LevelInfo, msg, args) }
func (l *entryLogger) Warn(msg string, args ...any)  { l.emit(LevelWarn, msg, args) }
func (l *entryLogger) Error(msg string, args ...any) { l.emit(LevelError, msg, args) }
func (l *entryLogger) Fatal(msg string, args ...any) { l.emit(LevelFatal, msg, args) }

func (l *entryLogger) WithFields(fields map[string]any) interfaces.Logger {
	if len(fields) == 0 {
		return l
	}
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	bound := make([]boundField, len(l.bound), len(l.bound)+len(keys))
	copy(bound, l.bound)
	for _, key := range keys {
		bound = append(bound, boundField{key: key, value: fields[key]})
	}
	return &entryLogger{sink: l.sink, bound: bound, ctx: l.ctx}
}

func (l *entryLogger) WithContext(ctx context.Context) interfaces.Logger {
	return &entryLogger{sink: l.sink, bound: l.bound, ctx: ctx}
}

func (l *entryLogger) emit(level Level, msg string, args []any) {
	if l.sink == nil || level < l.sink.min {
		return
	}

	fields := make(map[string]any, len(l.bound)+len(args)/2)
	for _, field := range l.bound {
		fields[field.key] = field.value
	}
	for key, value := range logging.ContextFields(l.ctx) {
		fields[key] = value
	}
	collectArgs(fields, args)

	line := renderEntry(l.sink.clock().UTC(), level, msg, fields)

	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	// Best effort. A broken writer must not take the pipeline down with it.
	_, _ = io.WriteString(l.sink.out, line+"\n")
}

// collectArgs folds variadic key/value arguments into fields. Non-string keys
// and a dangling trailing value are kept under positional field_N keys rather
// than dropped.
func collectArgs(fields map[string]any, args []any) {
	for i := 0; i < len(args); i += 2 {
		if i+1 >= len(args) {
			fields[positionalKey(i)] = args[i]
			return
		}
		key, ok := args[i].(string)
		if !ok || key == "" {
			fields[positionalKey(i/2)] = args[i+1]
			continue
		}
		fields[key] = args[i+1]
	}
}

func positionalKey(position int) string {
	return "field_" + strconv.Itoa(position)
}

func renderEntry(ts time.Time, level Level, msg string, fields map[string]any) string {
	var b strings.Builder
	b.Grow(64 + len(msg) + len(fields)*16)
	b.WriteString(ts.Format(time.RFC3339Nano))
	b.WriteByte(' ')
	b.WriteString(level.String())
	b.WriteByte(' ')
	b.WriteString(msg)

	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		b.WriteByte(' ')
		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(renderValue(fields[key]))
	}
	return b.String()
}

func renderValue(value any) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case string:
		return quote(v)
	case time.Time:
		return quote(v.UTC().Format(time.RFC3339Nano))
	case *time.Time:
		if v == nil {
			return "null"
		}
		return quote(v.UTC().Format(time.RFC3339Nano))
	case error:
		return quote(v.Error())
	case fmt.Stringer:
		return quote(v.String())
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int8, int16, int32, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", v)
	default:
		return quote(fmt.Sprint(v))
	}
}

// quote wraps values containing whitespace, control characters, or '=' in Go
// string-literal quoting so entries stay parseable as key=value pairs.
func quote(value string) string {
	if value == "" {
		return `""`
	}
	for _, r := range value {
		if r <= 0x20 || r == '=' {
			return strconv.Quote(value)
		}
	}
	return value
}
