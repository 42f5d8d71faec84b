// Cinerec - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerec

package factors

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	"gonum.org/v1/gonum/mat"
)

// Default artifact file names inside the artifacts directory.
const (
	DefaultUserMapFile = "user_id_map.json"
	DefaultItemMapFile = "item_id_map.json"
	DefaultFactorsFile = "factors.json"
)

// ArtifactPaths locates the model artifacts. Empty file names fall back to
// the defaults; relative file names are resolved against Dir.
type ArtifactPaths struct {
	Dir     string
	UserMap string
	ItemMap string
	Factors string
}

// Resolve returns absolute-or-dir-relative paths for the three artifacts.
func (p ArtifactPaths) Resolve() (userMap, itemMap, factors string) {
	return p.join(p.UserMap, DefaultUserMapFile),
		p.join(p.ItemMap, DefaultItemMapFile),
		p.join(p.Factors, DefaultFactorsFile)
}

func (p ArtifactPaths) join(name, fallback string) string {
	if name == "" {
		name = fallback
	}
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(p.Dir, name)
}

// ErrGenerationMismatch is returned when the factor matrices were not
// trained on the identity maps found next to them.
var ErrGenerationMismatch = errors.New("model artifacts belong to different generations")

// UserMapFile is the on-disk shape of the ordered user list.
type UserMapFile struct {
	Generation string   `json:"generation,omitempty"`
	Users      []string `json:"users"`
}

// ItemMapFile is the on-disk shape of the ordered item key list.
type ItemMapFile struct {
	Generation string   `json:"generation,omitempty"`
	Items      []string `json:"items"`
}

// FactorsFile is the on-disk shape of the two factor matrices, row-major.
// Generation must equal the generation of the identity maps the rows were
// trained on; the training job copies it from the maps.
type FactorsFile struct {
	Generation  string      `json:"generation"`
	UserFactors [][]float64 `json:"user_factors"`
	ItemFactors [][]float64 `json:"item_factors"`
}

// Generation fingerprints an ordered user list and item list. Any change to
// either list, including a reorder, yields a different generation.
func Generation(users, items []string) string {
	h := sha256.New()
	for _, u := range users {
		h.Write([]byte(u))
		h.Write([]byte{0})
	}
	h.Write([]byte{1})
	for _, it := range items {
		h.Write([]byte(it))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil)[:16])
}

// checkGeneration verifies that the maps and the factors describe the same export.
func checkGeneration(users UserMapFile, items ItemMapFile, raw FactorsFile) error {
	want := Generation(users.Users, items.Items)
	if users.Generation != "" && users.Generation != want {
		return fmt.Errorf("%w: user map is stamped %s, lists hash to %s", ErrGenerationMismatch, users.Generation, want)
	}
	if items.Generation != "" && items.Generation != want {
		return fmt.Errorf("%w: item map is stamped %s, lists hash to %s", ErrGenerationMismatch, items.Generation, want)
	}
	switch raw.Generation {
	case want:
		return nil
	case "":
		return fmt.Errorf("%w: factors file has no generation", ErrGenerationMismatch)
	default:
		return fmt.Errorf("%w: factors trained on %s, maps are %s", ErrGenerationMismatch, raw.Generation, want)
	}
}

// Load reads and validates a bundle. Any error means the artifacts cannot be served.
func Load(paths ArtifactPaths) (*Bundle, error) {
	bundle := LoadBundle(paths)
	if !bundle.Ready() {
		return nil, bundle.Err()
	}
	return bundle, nil
}

// LoadBundle reads the artifacts and always returns a bundle. On failure the
// bundle is not ready, carries the error, and keeps the identity maps if they
// were readable so health can still report their sizes.
//
// Maps and factors written by different exports are rejected with
// ErrGenerationMismatch even when their row counts agree.
func LoadBundle(paths ArtifactPaths) *Bundle {
	userPath, itemPath, factorsPath := paths.Resolve()

	var users UserMapFile
	if err := readJSON(userPath, &users); err != nil {
		return NewNotReadyBundle(nil, fmt.Errorf("read user map: %w", err))
	}
	var items ItemMapFile
	if err := readJSON(itemPath, &items); err != nil {
		return NewNotReadyBundle(nil, fmt.Errorf("read item map: %w", err))
	}

	maps, err := NewIdentityMaps(users.Users, items.Items)
	if err != nil {
		return NewNotReadyBundle(nil, fmt.Errorf("build identity maps: %w", err))
	}
	if maps.NumUsers() == 0 || maps.NumItems() == 0 {
		return NewNotReadyBundle(maps, fmt.Errorf("%w: empty user or item list", ErrShapeMismatch))
	}

	var raw FactorsFile
	if err := readJSON(factorsPath, &raw); err != nil {
		return NewNotReadyBundle(maps, fmt.Errorf("read factors: %w", err))
	}
	if err := checkGeneration(users, items, raw); err != nil {
		return NewNotReadyBundle(maps, err)
	}
	u, err := denseFromRows(raw.UserFactors)
	if err != nil {
		return NewNotReadyBundle(maps, fmt.Errorf("user factors: %w", err))
	}
	v, err := denseFromRows(raw.ItemFactors)
	if err != nil {
		return NewNotReadyBundle(maps, fmt.Errorf("item factors: %w", err))
	}

	store, err := NewStore(u, v, maps.NumUsers(), maps.NumItems())
	if err != nil {
		return NewNotReadyBundle(maps, err)
	}
	return NewBundle(maps, store)
}

func readJSON(path string, dst any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return nil
}

// denseFromRows packs a row-major [][]float64 into a gonum matrix.
func denseFromRows(rows [][]float64) (*mat.Dense, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no rows", ErrShapeMismatch)
	}
	cols := len(rows[0])
	if cols == 0 {
		return nil, fmt.Errorf("%w: zero latent factors", ErrShapeMismatch)
	}
	data := make([]float64, 0, len(rows)*cols)
	for i, row := range rows {
		if len(row) != cols {
			return nil, fmt.Errorf("%w: row %d has %d columns, want %d", ErrShapeMismatch, i, len(row), cols)
		}
		data = append(data, row...)
	}
	return mat.NewDense(len(rows), cols, data), nil
}

// WriteIdentityMaps writes the ordered user and item lists in the format Load
// reads, both stamped with their generation, and returns that generation.
func WriteIdentityMaps(paths ArtifactPaths, users, items []string) (string, error) {
	userPath, itemPath, _ := paths.Resolve()
	if err := os.MkdirAll(filepath.Dir(userPath), 0o755); err != nil {
		return "", fmt.Errorf("create artifacts dir: %w", err)
	}
	generation := Generation(users, items)
	err := errors.Join(
		writeJSON(userPath, UserMapFile{Generation: generation, Users: users}),
		writeJSON(itemPath, ItemMapFile{Generation: generation, Items: items}),
	)
	if err != nil {
		return "", err
	}
	return generation, nil
}

// WriteFactors writes the factor matrices trained on the maps of generation.
func WriteFactors(paths ArtifactPaths, generation string, userFactors, itemFactors [][]float64) error {
	_, _, factorsPath := paths.Resolve()
	return writeJSON(factorsPath, FactorsFile{
		Generation:  generation,
		UserFactors: userFactors,
		ItemFactors: itemFactors,
	})
}

// writeJSON writes through a temp file and renames, so a watcher never reads a half-written artifact.
func writeJSON(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil { //nolint:gosec // artifacts are not secret
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename %s: %w", filepath.Base(path), err)
	}
	return nil
}
