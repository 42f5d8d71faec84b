// Cinerec - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerec

/*
Package supervisor provides process supervision for Cinerec using suture v4.

The serving process runs its long-lived services under a two-layer tree:

	RootSupervisor ("cinerec")
	├── ModelSupervisor ("model-layer")
	│   └── ModelWatcher (if model.watch is enabled)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Crashed services are restarted with suture's backoff. Supervisor events are
logged through sutureslog, which writes to the zerolog-backed slog handler
from the logging package.

Usage:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddModelService(watcher)
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	errCh := tree.ServeBackground(ctx)

Service implementations live in the services subpackage.
*/
package supervisor
