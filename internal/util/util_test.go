package util

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestRetry(t *testing.T) {
	attempts := 0
	err := Retry(context.Background(), 5, 0, nil, func() error {
		attempts++
		if attempts < 3 {
			return errors.New("transient error")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Retry returned unexpected error: %v", err)
	}
	if attempts != 3 {
		t.Errorf("Retry called fn %d times, want 3", attempts)
	}
}

func TestRetryAllFail(t *testing.T) {
	attempts := 0
	err := Retry(context.Background(), 3, 0, nil, func() error {
		attempts++
		return errors.New("persistent error")
	})
	if err == nil {
		t.Fatal("Retry should return error when all attempts fail")
	}
	if attempts != 3 {
		t.Errorf("Retry called fn %d times, want 3", attempts)
	}
}

func TestRetryStopsOnPermanentError(t *testing.T) {
	permanent := errors.New("permanent")
	attempts := 0
	err := Retry(context.Background(), 5, 0, func(err error) bool { return !errors.Is(err, permanent) }, func() error {
		attempts++
		return permanent
	})
	if !errors.Is(err, permanent) {
		t.Fatalf("err = %v, want permanent", err)
	}
	if attempts != 1 {
		t.Errorf("Retry called fn %d times, want 1", attempts)
	}
}

func TestRetryCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Retry(ctx, 3, 0, nil, func() error { return errors.New("fail") })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewLoggerFormat(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, "info", "json").Info("hello", "k", "v")
	if !strings.HasPrefix(buf.String(), "{") {
		t.Errorf("json output = %q", buf.String())
	}

	buf.Reset()
	newLogger(&buf, "info", "text").Info("hello", "k", "v")
	if !strings.Contains(buf.String(), "k=v") {
		t.Errorf("text output = %q", buf.String())
	}

	buf.Reset()
	newLogger(&buf, "warn", "text").Info("hidden")
	if buf.Len() != 0 {
		t.Errorf("info logged at warn level: %q", buf.String())
	}
}
