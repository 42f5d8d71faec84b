// Cinerec - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerec

package supervisor

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"
)

// stubService runs until canceled, optionally failing its first starts.
type stubService struct {
	name       string
	failFirst  int32
	startCount atomic.Int32
}

var _ suture.Service = (*stubService)(nil)

func (s *stubService) Serve(ctx context.Context) error {
	if n := s.startCount.Add(1); n <= s.failFirst {
		return errors.New("simulated failure")
	}
	<-ctx.Done()
	return ctx.Err()
}

func (s *stubService) String() string { return s.name }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestSupervisorTreeConstruction(t *testing.T) {
	t.Parallel()

	t.Run("applies default values for zero config", func(t *testing.T) {
		t.Parallel()
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
		t.Parallel()
		tree, err := NewSupervisorTree(quietLogger(), TreeConfig{
			FailureThreshold: 2,
			FailureBackoff:   time.Second,
		})
		if err != nil {
			t.Fatalf("failed to create tree: %v", err)
		}
		if tree.config.FailureThreshold != 2 || tree.config.FailureBackoff != time.Second {
			t.Errorf("explicit values overwritten: %+v", tree.config)
		}
		if tree.config.FailureDecay != 30 {
			t.Errorf("FailureDecay = %v, want default 30", tree.config.FailureDecay)
		}
	})
}

func TestSupervisorTreeLifecycle(t *testing.T) {
	t.Parallel()

	tree, err := NewSupervisorTree(quietLogger(), TreeConfig{
		FailureThreshold: 10,
		FailureBackoff:   10 * time.Millisecond,
		ShutdownTimeout:  time.Second,
	})
	if err != nil {
		t.Fatalf("failed to create tree: %v", err)
	}

	watcher := &stubService{name: "model-watcher", failFirst: 2}
	server := &stubService{name: "http-server"}
	tree.AddModelService(watcher)
	tree.AddAPIService(server)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for watcher.startCount.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
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

	if got := watcher.startCount.Load(); got < 3 {
		t.Errorf("failing model service started %d times, want at least 3", got)
	}
	if got := server.startCount.Load(); got != 1 {
		t.Errorf("api service started %d times, want 1 (isolated from model failures)", got)
	}

	report, err := tree.UnstoppedServiceReport()
	if err != nil {
		t.Fatalf("UnstoppedServiceReport() error = %v", err)
	}
	if len(report) != 0 {
		t.Errorf("unstopped services: %v", report)
	}
}
