// PreviouslyOn - Social TV Tracking and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/previouslyon

/*
Package supervisor runs the long-lived PreviouslyOn services under suture v4.

	RootSupervisor ("previouslyon")
	├── DataSupervisor ("data-layer")
	│   └── CacheWriterService        metadata cache upserts
	├── MaintenanceSupervisor ("maintenance-layer")
	│   └── CacheJanitorService       evicts expired TMDB cache entries
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

A crashing janitor or writer is restarted without touching the HTTP server.
Supervisor events are logged through sutureslog and the zerolog slog
adapter:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
	    ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	tree.AddDataService(cacheWriter)
	tree.AddMaintenanceService(janitor)
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout, logger))
	errCh := tree.ServeBackground(ctx)
*/
package supervisor
