// Cinerec - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerec

package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/tomtom215/cinerec/internal/factors"
	"github.com/tomtom215/cinerec/internal/metrics"
)

// Reload results recorded in metrics.
const (
	reloadSuccess = "success"
	reloadFailure = "failure"
)

// ModelWatcherConfig configures a ModelWatcher.
type ModelWatcherConfig struct {
	Paths factors.ArtifactPaths

	// Debounce is how long the artifact files must stay quiet before a
	// reload. Exporters write three files in a burst. Default: 2s
	Debounce time.Duration
}

// ModelWatcher reloads the factor bundle when the artifacts change on disk
// and publishes it through the holder.
//
// A reload that produces a ready bundle replaces the served bundle. A failed
// reload is logged and counted, and the previous ready bundle stays in place.
// That includes maps rewritten by an export whose factors are not trained yet.
// When nothing ready has been served yet the failed bundle is installed
// instead, so health reports the newest load error.
type ModelWatcher struct {
	paths    factors.ArtifactPaths
	debounce time.Duration
	holder   *factors.Holder
	load     func(factors.ArtifactPaths) *factors.Bundle
	logger   zerolog.Logger

	mu sync.Mutex // serializes reloads
}

// NewModelWatcher creates a watcher that publishes into holder.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewModelWatcher(cfg ModelWatcherConfig, holder *factors.Holder, logger zerolog.Logger) (*ModelWatcher, error) {
	if holder == nil {
		return nil, errors.New("model holder is required")
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = 2 * time.Second
	}
	return &ModelWatcher{
		paths:    cfg.Paths,
		debounce: cfg.Debounce,
		holder:   holder,
		load:     factors.LoadBundle,
		logger:   logger.With().Str("component", "model-watcher").Logger(),
	}, nil
}

// Reload loads the artifacts and installs the result. It returns the bundle
// being served afterwards, or an error when the new artifacts are unusable.
func (w *ModelWatcher) Reload(ctx context.Context) (*factors.Bundle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	start := time.Now()
	next := w.load(w.paths)
	current := w.holder.Load()

	if !next.Ready() {
		metrics.RecordModelReload(reloadFailure)
		if !current.Ready() {
			w.holder.Swap(next)
			metrics.SetModelState(false, next.NumUsers(), next.NumItems(), 0)
		}
		event := w.logger.Error()
		if errors.Is(next.Err(), factors.ErrGenerationMismatch) {
			// Expected between an export and the matching training run.
			event = w.logger.Warn()
		}
		event.
			Err(next.Err()).
			Bool("serving_previous", current.Ready()).
			Msg("Model reload failed")
		return nil, fmt.Errorf("reload model: %w", next.Err())
	}

	w.holder.Swap(next)
	metrics.RecordModelReload(reloadSuccess)
	metrics.SetModelState(true, next.NumUsers(), next.NumItems(), next.Factors())
	w.logger.Info().
		Int("users", next.NumUsers()).
		Int("items", next.NumItems()).
		Int("factors", next.Factors()).
		Dur("duration", time.Since(start)).
		Msg("Model reloaded")
	return next, nil
}

// watchedFiles returns the directories to watch and the artifact paths whose
// changes trigger a reload.
func (w *ModelWatcher) watchedFiles() (dirs []string, names map[string]struct{}) {
	userMap, itemMap, factorsFile := w.paths.Resolve()
	names = make(map[string]struct{}, 3)
	seen := make(map[string]struct{}, 1)
	for _, p := range []string{userMap, itemMap, factorsFile} {
		names[filepath.Clean(p)] = struct{}{}
		dir := filepath.Dir(p)
		if _, ok := seen[dir]; !ok {
			seen[dir] = struct{}{}
			dirs = append(dirs, dir)
		}
	}
	return dirs, names
}

// relevant reports whether ev touches one of the artifact files. Temporary
// files written before the final rename are ignored.
func relevant(ev fsnotify.Event, names map[string]struct{}) bool {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Rename) && !ev.Has(fsnotify.Remove) {
		return false
	}
	_, ok := names[filepath.Clean(ev.Name)]
	return ok
}

// Serve implements suture.Service. It watches the artifact directories and
// reloads once a burst of changes has been quiet for the debounce interval.
func (w *ModelWatcher) Serve(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create artifact watcher: %w", err)
	}
	defer watcher.Close()

	dirs, names := w.watchedFiles()
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}
	w.logger.Info().Strs("dirs", dirs).Dur("debounce", w.debounce).Msg("Watching model artifacts")

	// Armed only by artifact events.
	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-watcher.Events:
			if !ok {
				return errors.New("artifact watcher closed")
			}
			if !relevant(ev, names) {
				continue
			}
			w.logger.Debug().Str("file", ev.Name).Str("op", ev.Op.String()).Msg("Artifact changed")
			timer.Reset(w.debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return errors.New("artifact watcher closed")
			}
			w.logger.Warn().Err(err).Msg("Artifact watcher error")

		case <-timer.C:
			// Failures are logged by Reload; keep watching for the next export.
			_, _ = w.Reload(ctx) //nolint:errcheck // logged and counted in Reload
		}
	}
}

// String implements fmt.Stringer for logging.
func (w *ModelWatcher) String() string {
	return "model-watcher"
}
