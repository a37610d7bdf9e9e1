// Cookbook API - Recipe sharing REST backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookbook

package supervisor

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tomtom215/cookbook/internal/logging"
)

// testService implements suture.Service with scripted failures.
type testService struct {
	name       string
	startCount atomic.Int32
	mu         sync.Mutex
	failures   int32
}

func newTestService(name string) *testService {
	return &testService{name: name}
}

func (s *testService) Serve(ctx context.Context) error {
	n := s.startCount.Add(1)

	s.mu.Lock()
	failures := s.failures
	s.mu.Unlock()
	if n <= failures {
		return errors.New("simulated failure")
	}

	<-ctx.Done()
	return ctx.Err()
}

// failTimes makes the first n calls to Serve fail.
func (s *testService) failTimes(n int32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = n
}

func (s *testService) String() string { return s.name }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSupervisorTreeConstruction(t *testing.T) {
	t.Run("applies default values for zero config", func(t *testing.T) {
		tree, err := NewSupervisorTree(quietLogger(), TreeConfig{})
		if err != nil {
			t.Fatalf("failed to create tree: %v", err)
		}
		if tree.Root() == nil {
			t.Fatal("root supervisor should not be nil")
		}
		if tree.config != DefaultTreeConfig() {
			t.Errorf("config = %+v, want defaults %+v", tree.config, DefaultTreeConfig())
		}
	})

	t.Run("keeps explicit values", func(t *testing.T) {
		tree, err := NewSupervisorTree(quietLogger(), TreeConfig{FailureBackoff: time.Second})
		if err != nil {
			t.Fatalf("failed to create tree: %v", err)
		}
		if tree.config.FailureBackoff != time.Second {
			t.Errorf("FailureBackoff = %v, want 1s", tree.config.FailureBackoff)
		}
		if tree.config.FailureThreshold != 5.0 {
			t.Errorf("FailureThreshold = %v, want default 5", tree.config.FailureThreshold)
		}
	})
}

func TestSupervisorTreeLifecycle(t *testing.T) {
	tree, err := NewSupervisorTree(quietLogger(), TreeConfig{
		FailureBackoff:  100 * time.Millisecond,
		ShutdownTimeout: time.Second,
	})
	if err != nil {
		t.Fatalf("failed to create tree: %v", err)
	}

	storage := newTestService("storage")
	api := newTestService("api")
	tree.AddStorageService(storage)
	tree.AddAPIService(api)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	time.Sleep(100 * time.Millisecond)
	if storage.startCount.Load() < 1 || api.startCount.Load() < 1 {
		t.Errorf("services not started: storage=%d api=%d", storage.startCount.Load(), api.startCount.Load())
	}

	cancel()
	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Errorf("unexpected error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("tree did not shut down in time")
	}

	report, err := tree.UnstoppedServiceReport()
	if err != nil {
		t.Fatalf("UnstoppedServiceReport: %v", err)
	}
	if len(report) != 0 {
		t.Errorf("unstopped services: %v", report)
	}
}

func TestSupervisorTreeRestartsFailingStorageService(t *testing.T) {
	tree, _ := NewSupervisorTree(quietLogger(), TreeConfig{
		FailureThreshold: 10,
		FailureBackoff:   10 * time.Millisecond,
		ShutdownTimeout:  time.Second,
	})

	failing := newTestService("flaky-gc")
	failing.failTimes(2)
	stable := newTestService("http")

	tree.AddStorageService(failing)
	tree.AddAPIService(stable)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	go func() { _ = tree.Serve(ctx) }()
	time.Sleep(200 * time.Millisecond)

	if got := failing.startCount.Load(); got < 3 {
		t.Errorf("failing service starts = %d, want at least 3", got)
	}
	if got := stable.startCount.Load(); got != 1 {
		t.Errorf("api service starts = %d, want 1 (isolated from storage failures)", got)
	}
}

func TestSupervisorEventsReachZerolog(t *testing.T) {
	var buf bytes.Buffer
	var mu sync.Mutex
	w := writerFunc(func(p []byte) (int, error) {
		mu.Lock()
		defer mu.Unlock()
		return buf.Write(p)
	})
	logger := slog.New(logging.NewSlogHandlerWithLogger(logging.NewTestLogger(w)))

	tree, _ := NewSupervisorTree(logger, TreeConfig{
		FailureThreshold: 10,
		FailureBackoff:   10 * time.Millisecond,
		ShutdownTimeout:  time.Second,
	})
	failing := newTestService("noisy")
	failing.failTimes(1)
	tree.AddStorageService(failing)

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	_ = tree.Serve(ctx)

	mu.Lock()
	out := buf.String()
	mu.Unlock()
	if !strings.Contains(out, "noisy") {
		t.Errorf("supervisor event for failing service not logged: %s", out)
	}
}

type writerFunc func(p []byte) (int, error)

func (f writerFunc) Write(p []byte) (int, error) { return f(p) }
