// PreviouslyOn - Social TV Tracking and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/previouslyon

package supervisor

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/thejerf/suture/v4"
	"github.com/thejerf/sutureslog"
)

// Layer names a child supervisor of the root.
type Layer string

// Layers, in start order.
const (
	LayerData        Layer = "data"
	LayerMaintenance Layer = "maintenance"
	LayerAPI         Layer = "api"
)

var layerOrder = []Layer{LayerData, LayerMaintenance, LayerAPI}

// TreeConfig tunes restart behaviour. Zero fields take the defaults.
type TreeConfig struct {
	FailureThreshold float64       // failures before backoff, default 5
	FailureDecay     float64       // seconds, default 30
	FailureBackoff   time.Duration // default 15s
	ShutdownTimeout  time.Duration // per service, default 10s
}

// DefaultTreeConfig returns suture's documented defaults.
func DefaultTreeConfig() TreeConfig {
	return TreeConfig{
		FailureThreshold: 5,
		FailureDecay:     30,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  10 * time.Second,
	}
}

func (c TreeConfig) spec() suture.Spec {
	d := DefaultTreeConfig()
	return suture.Spec{
		FailureThreshold: cmp.Or(c.FailureThreshold, d.FailureThreshold),
		FailureDecay:     cmp.Or(c.FailureDecay, d.FailureDecay),
		FailureBackoff:   cmp.Or(c.FailureBackoff, d.FailureBackoff),
		Timeout:          cmp.Or(c.ShutdownTimeout, d.ShutdownTimeout),
	}
}

// SupervisorTree is the root supervisor plus one child per Layer. A failing
// service is restarted inside its own layer; siblings in other layers keep
// running.
type SupervisorTree struct {
	root   *suture.Supervisor
	layers map[Layer]*suture.Supervisor
	spec   suture.Spec

	mu       sync.Mutex
	services map[Layer][]string
}

// NewSupervisorTree builds the tree. Events from every layer are logged
// through logger.
func NewSupervisorTree(logger *slog.Logger, config TreeConfig) (*SupervisorTree, error) {
	if logger == nil {
		return nil, fmt.Errorf("supervisor: logger is required")
	}
	spec := config.spec()

	// MustHook has a pointer receiver.
	hook := &sutureslog.Handler{Logger: logger}
	rootSpec := spec
	rootSpec.EventHook = hook.MustHook()

	t := &SupervisorTree{
		root:     suture.New("previouslyon", rootSpec),
		layers:   make(map[Layer]*suture.Supervisor, len(layerOrder)),
		spec:     spec,
		services: make(map[Layer][]string),
	}
	for _, l := range layerOrder {
		child := suture.New(string(l)+"-layer", spec)
		t.layers[l] = child
		t.root.Add(child)
	}
	return t, nil
}

// Add starts svc under layer once the tree is serving.
func (t *SupervisorTree) Add(layer Layer, svc suture.Service) (suture.ServiceToken, error) {
	sup, ok := t.layers[layer]
	if !ok {
		return suture.ServiceToken{}, fmt.Errorf("supervisor: unknown layer %q", layer)
	}
	t.mu.Lock()
	t.services[layer] = append(t.services[layer], fmt.Sprint(svc))
	t.mu.Unlock()
	return sup.Add(svc), nil
}

// AddDataService adds a service to the data layer.
func (t *SupervisorTree) AddDataService(svc suture.Service) suture.ServiceToken {
	tok, _ := t.Add(LayerData, svc)
	return tok
}

// AddMaintenanceService adds a background housekeeping service.
func (t *SupervisorTree) AddMaintenanceService(svc suture.Service) suture.ServiceToken {
	tok, _ := t.Add(LayerMaintenance, svc)
	return tok
}

// AddAPIService adds a service to the API layer.
func (t *SupervisorTree) AddAPIService(svc suture.Service) suture.ServiceToken {
	tok, _ := t.Add(LayerAPI, svc)
	return tok
}

// Layout returns the names of the services added to each layer.
func (t *SupervisorTree) Layout() map[Layer][]string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[Layer][]string, len(t.services))
	for l, names := range t.services {
		out[l] = slices.Clone(names)
	}
	return out
}

// Root returns the root supervisor.
func (t *SupervisorTree) Root() *suture.Supervisor { return t.root }

// Serve runs the tree until ctx is canceled.
func (t *SupervisorTree) Serve(ctx context.Context) error { return t.root.Serve(ctx) }

// ServeBackground runs the tree in a goroutine. The channel receives the
// result when the tree stops.
func (t *SupervisorTree) ServeBackground(ctx context.Context) <-chan error {
	return t.root.ServeBackground(ctx)
}

// UnstoppedServiceReport lists services that ignored the shutdown timeout.
func (t *SupervisorTree) UnstoppedServiceReport() ([]suture.UnstoppedService, error) {
	return t.root.UnstoppedServiceReport()
}
