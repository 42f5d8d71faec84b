// Cinerec - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerec

/*
Package services provides suture.Service implementations for the serving process.

HTTP Server (HTTPServerService):
  - Wraps *http.Server with graceful shutdown
  - Converts the blocking ListenAndServe pattern to Serve(ctx)

Model Watcher (ModelWatcher):
  - Watches the artifacts directory with fsnotify
  - Debounces bursts of writes, then reloads the factor bundle
  - Swaps the bundle atomically; a failed reload keeps the previous ready bundle
  - Also exposes Reload for the admin endpoint

Each service returns ctx.Err() on cancellation and a wrapped error on failure
so the supervisor can decide whether to restart it.
*/
package services
