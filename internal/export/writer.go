// Cinerec - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerec

package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/tomtom215/cinerec/internal/factors"
)

// DefaultInteractionsFile is the training table written next to the identity maps.
const DefaultInteractionsFile = "interactions.csv"

var interactionsHeader = []string{"user_idx", "item_idx", "score"}

// InteractionsPath returns the location of the interactions table for paths.
func InteractionsPath(paths factors.ArtifactPaths) string {
	return filepath.Join(paths.Dir, DefaultInteractionsFile)
}

// Write stores the identity maps in the format the server loads and the
// interactions table the training job reads. It sets ds.Generation to the
// generation stamped on the maps.
func Write(paths factors.ArtifactPaths, ds *Dataset) error {
	generation, err := factors.WriteIdentityMaps(paths, ds.Users, ds.Items)
	if err != nil {
		return fmt.Errorf("write identity maps: %w", err)
	}
	ds.Generation = generation
	if err := writeInteractions(InteractionsPath(paths), ds.Interactions); err != nil {
		return fmt.Errorf("write interactions: %w", err)
	}
	return nil
}

func writeInteractions(path string, rows []Interaction) (err error) {
	tmp := path + ".tmp"
	f, err := os.Create(tmp) //nolint:gosec // path comes from configuration
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp)
		}
	}()

	w := csv.NewWriter(f)
	if err := w.Write(interactionsHeader); err != nil {
		_ = f.Close()
		return err
	}
	record := make([]string, 3)
	for _, r := range rows {
		record[0] = strconv.Itoa(r.UserIdx)
		record[1] = strconv.Itoa(r.ItemIdx)
		record[2] = strconv.FormatFloat(r.Score, 'f', -1, 64)
		if err := w.Write(record); err != nil {
			_ = f.Close()
			return err
		}
	}
	w.Flush()
	if err := errors.Join(w.Error(), f.Close()); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
