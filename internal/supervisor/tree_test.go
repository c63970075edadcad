// PreviouslyOn - Social TV Tracking and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/previouslyon

package supervisor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"
)

// mockService runs until canceled, optionally failing its first few starts.
type mockService struct {
	name     string
	starts   atomic.Int32
	maxFails int32
}

func (m *mockService) Serve(ctx context.Context) error {
	if n := m.starts.Add(1); n <= m.maxFails {
		return errors.New("simulated failure")
	}
	<-ctx.Done()
	return ctx.Err()
}

func (m *mockService) String() string { return m.name }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewSupervisorTree_Defaults(t *testing.T) {
	t.Parallel()

	tree, err := NewSupervisorTree(quietLogger(), TreeConfig{})
	if err != nil {
		t.Fatalf("NewSupervisorTree: %v", err)
	}
	if tree.Root() == nil {
		t.Fatal("root supervisor should not be nil")
	}
	if tree.spec.FailureThreshold != 5 || tree.spec.Timeout != 10*time.Second || tree.spec.FailureBackoff != 15*time.Second {
		t.Errorf("spec = %+v, want defaults", tree.spec)
	}

	custom, _ := NewSupervisorTree(quietLogger(), TreeConfig{ShutdownTimeout: 3 * time.Second})
	if custom.spec.Timeout != 3*time.Second || custom.spec.FailureThreshold != 5 {
		t.Errorf("spec = %+v", custom.spec)
	}

	if _, err := NewSupervisorTree(nil, TreeConfig{}); err == nil {
		t.Error("expected error for nil logger")
	}
}

func TestSupervisorTree_AddAndLayout(t *testing.T) {
	t.Parallel()

	tree, _ := NewSupervisorTree(quietLogger(), TreeConfig{})
	tree.AddDataService(&mockService{name: "cache-writer"})
	tree.AddMaintenanceService(&mockService{name: "cache-janitor"})
	tree.AddAPIService(&mockService{name: "http-server"})

	if _, err := tree.Add(Layer("bogus"), &mockService{name: "x"}); err == nil {
		t.Error("expected error for unknown layer")
	}

	layout := tree.Layout()
	want := map[Layer]string{LayerData: "cache-writer", LayerMaintenance: "cache-janitor", LayerAPI: "http-server"}
	for layer, name := range want {
		if got := layout[layer]; len(got) != 1 || got[0] != name {
			t.Errorf("layout[%s] = %v, want [%s]", layer, got, name)
		}
	}
	if _, ok := layout["bogus"]; ok {
		t.Error("rejected service should not appear in layout")
	}
}

func TestSupervisorTree_StartsEveryLayer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		add  func(*SupervisorTree, suture.Service) suture.ServiceToken
	}{
		{"data", (*SupervisorTree).AddDataService},
		{"maintenance", (*SupervisorTree).AddMaintenanceService},
		{"api", (*SupervisorTree).AddAPIService},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tree, _ := NewSupervisorTree(quietLogger(), TreeConfig{ShutdownTimeout: time.Second})
			svc := &mockService{name: tt.name}
			tt.add(tree, svc)

			ctx, cancel := context.WithCancel(context.Background())
			errCh := tree.ServeBackground(ctx)

			deadline := time.Now().Add(time.Second)
			for svc.starts.Load() == 0 && time.Now().Before(deadline) {
				time.Sleep(5 * time.Millisecond)
			}
			cancel()

			if svc.starts.Load() == 0 {
				t.Errorf("%s service was not started", tt.name)
			}
			select {
			case err := <-errCh:
				if err != nil && !errors.Is(err, context.Canceled) {
					t.Errorf("unexpected error: %v", err)
				}
			case <-time.After(2 * time.Second):
				t.Error("tree did not shut down in time")
			}
		})
	}
}

func TestSupervisorTree_RestartsFailingService(t *testing.T) {
	t.Parallel()

	tree, _ := NewSupervisorTree(quietLogger(), TreeConfig{
		FailureThreshold: 10,
		FailureBackoff:   10 * time.Millisecond,
		ShutdownTimeout:  time.Second,
	})

	failing := &mockService{name: "failing", maxFails: 2}
	stable := &mockService{name: "stable"}
	tree.AddMaintenanceService(failing)
	tree.AddAPIService(stable)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	_ = tree.Serve(ctx)

	if failing.starts.Load() < 3 {
		t.Errorf("expected at least 3 starts, got %d", failing.starts.Load())
	}
	if stable.starts.Load() != 1 {
		t.Errorf("stable service started %d times, want 1", stable.starts.Load())
	}
}
