package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"
)

type flakyConvertMessage struct {
	Directory string
}

func (flakyConvertMessage) Type() string { return "mdc.test.flaky_convert" }

func (flakyConvertMessage) Validate() error { return nil }

type doomedAnalyzeMessage struct {
	Directory string
}

func (doomedAnalyzeMessage) Type() string { return "mdc.test.doomed_analyze" }

func (doomedAnalyzeMessage) Validate() error { return nil }

func TestDispatcherRetriesUntilSuccess(t *testing.T) {
	var attempts int
	handler := NewHandler(func(ctx context.Context, _ flakyConvertMessage) error {
		attempts++
		if attempts == 1 {
			return errors.New("transient failure")
		}
		return nil
	}, WithTimeout[flakyConvertMessage](time.Second))

	sub := dispatcher.SubscribeCommand(handler, runner.WithMaxRetries(1))
	t.Cleanup(sub.Unsubscribe)

	if err := dispatcher.Dispatch(context.Background(), flakyConvertMessage{Directory: "docs"}); err != nil {
		t.Fatalf("dispatch: expected success after retry, got %v", err)
	}
	if attempts != 2 {
		t.Fatalf("expected 2 attempts (initial + retry), got %d", attempts)
	}
}

func TestDispatcherRetryExhaustionPropagatesError(t *testing.T) {
	var attempts int
	handler := NewHandler(func(ctx context.Context, _ doomedAnalyzeMessage) error {
		attempts++
		return errors.New("permanent failure")
	}, WithTimeout[doomedAnalyzeMessage](time.Second))

	sub := dispatcher.SubscribeCommand(handler, runner.WithMaxRetries(2))
	t.Cleanup(sub.Unsubscribe)

	err := dispatcher.Dispatch(context.Background(), doomedAnalyzeMessage{Directory: "docs"})
	if err == nil {
		t.Fatal("expected dispatcher to return error after exhausting retries")
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts (initial + 2 retries), got %d", attempts)
	}
}
