// Package store owns the on-disk dependency tree layout. The path of every
// artifact is a pure function of (manifest, version, artifact id,
// classifier), and a marker file written after promotion lets re-resolution
// skip completed artifacts before any network access.
package store

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"golang.org/x/mod/semver"

	"github.com/frctools/vendordep/module/vendordep/types"
	"github.com/frctools/vendordep/util/common/errors"
	"github.com/frctools/vendordep/util/common/fileutil"
)

const markerDir = ".markers"

type Store struct {
	Root string
}

// New opens (creating if needed) the dependency store rooted at root.
func New(root string) (*Store, error) {
	if root == "" {
		return nil, errors.NewValidationError("root", "store root cannot be empty")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, errors.NewFileError(root, "create", err)
	}
	return &Store{Root: root}, nil
}

// FinalPath maps a descriptor to its absolute destination. The mapping is
// injective within a resolution pass, which is what lets concurrent workers
// write without tree-level locking.
func (s *Store) FinalPath(d types.DownloadDescriptor) string {
	return filepath.Join(s.Root, filepath.FromSlash(d.RelPath))
}

// Marker records the identity of a completed artifact. Its presence next to
// the final path is the store's fast freshness check.
type Marker struct {
	Manifest   string    `toml:"manifest"`
	Version    string    `toml:"version"`
	Artifact   string    `toml:"artifact"`
	Classifier string    `toml:"classifier,omitempty"`
	SourceURL  string    `toml:"source_url"`
	SHA256     string    `toml:"sha256"`
	Size       int64     `toml:"size"`
	FetchedAt  time.Time `toml:"fetched_at"`
}

func (s *Store) markerPath(d types.DownloadDescriptor) string {
	name := d.ArtifactID
	if d.Classifier != "" {
		name += "-" + d.Classifier
	}
	return filepath.Join(s.Root, markerDir, d.Manifest, d.Version, name+".toml")
}

// IsFresh reports whether the store already holds a complete artifact for
// the descriptor: the final path exists and the marker matches the
// descriptor's identity (including the expected checksum when one is
// declared). A fresh artifact is skipped without any network access.
func (s *Store) IsFresh(d types.DownloadDescriptor) bool {
	if !fileutil.Exists(s.FinalPath(d)) {
		return false
	}
	raw, err := os.ReadFile(s.markerPath(d))
	if err != nil {
		return false
	}
	var m Marker
	if err := toml.Unmarshal(raw, &m); err != nil {
		return false
	}
	if m.Manifest != d.Manifest || m.Version != d.Version ||
		m.Artifact != d.ArtifactID || m.Classifier != d.Classifier {
		return false
	}
	if d.ExpectedSHA256 != "" && !strings.EqualFold(d.ExpectedSHA256, m.SHA256) {
		return false
	}
	return true
}

// WriteMarker persists the completion record for a promoted artifact.
func (s *Store) WriteMarker(d types.DownloadDescriptor, sha256 string, size int64, sourceURL string) error {
	m := Marker{
		Manifest:   d.Manifest,
		Version:    d.Version,
		Artifact:   d.ArtifactID,
		Classifier: d.Classifier,
		SourceURL:  sourceURL,
		SHA256:     sha256,
		Size:       size,
		FetchedAt:  time.Now().UTC(),
	}
	raw, err := toml.Marshal(m)
	if err != nil {
		return err
	}
	return fileutil.WriteFileAtomic(s.markerPath(d), raw, 0o644)
}

// InstalledVersions lists the versions present for a manifest, newest first.
// Versions are ordered semver-style when they parse as semver; anything that
// does not parse sorts lexically after the parseable ones.
func (s *Store) InstalledVersions(manifestName string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.Root, manifestName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var versions []string
	for _, e := range entries {
		if e.IsDir() {
			versions = append(versions, e.Name())
		}
	}
	sort.Slice(versions, func(i, j int) bool {
		vi, vj := "v"+versions[i], "v"+versions[j]
		iv, jv := semver.IsValid(vi), semver.IsValid(vj)
		switch {
		case iv && jv:
			return semver.Compare(vi, vj) > 0
		case iv:
			return true
		case jv:
			return false
		default:
			return versions[i] > versions[j]
		}
	})
	return versions, nil
}
