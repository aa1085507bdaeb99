// Package stage implements the temp-write-then-rename discipline: every
// download lands in a temporary file under the store's scratch directory,
// gets its byte count and checksum verified there, and only then is renamed
// into its final path. Final paths are therefore always either absent or
// complete, even across interrupted runs.
package stage

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/frctools/vendordep/module/vendordep/types"
	"github.com/frctools/vendordep/util/common/errors"
)

// scratchDir lives under the store root so renames into the store never
// cross a filesystem boundary.
const scratchDir = ".tmp"

type Stager struct {
	dir string
}

// NewStager prepares the scratch directory under the store root.
func NewStager(storeRoot string) (*Stager, error) {
	dir := filepath.Join(storeRoot, scratchDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.NewFileError(dir, "create", err)
	}
	return &Stager{dir: dir}, nil
}

// Dir returns the scratch directory.
func (s *Stager) Dir() string { return s.dir }

// WriteTemp streams the response body into a fresh temporary file, hashing
// as it copies. When the server declared a content length, a short write is
// rejected as a truncated transfer and the temp file is discarded. The whole
// payload is never buffered in memory.
func (s *Stager) WriteTemp(desc types.DownloadDescriptor, body io.Reader, declared int64, sourceURL string) (*types.StagedArtifact, error) {
	f, err := os.CreateTemp(s.dir, sanitize(desc.ArtifactID)+"-*")
	if err != nil {
		return nil, errors.NewFileError(s.dir, "create temp", err)
	}
	tempPath := f.Name()

	hash := sha256.New()
	size, err := io.Copy(io.MultiWriter(f, hash), body)
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tempPath)
		return nil, &types.FetchError{URL: sourceURL, Transient: true, Err: err}
	}
	if declared >= 0 && size != declared {
		os.Remove(tempPath)
		return nil, &types.FetchError{
			URL:       sourceURL,
			Truncated: true,
			Err:       fmt.Errorf("wrote %d of %d declared bytes", size, declared),
		}
	}

	return &types.StagedArtifact{
		Descriptor: desc,
		TempPath:   tempPath,
		Size:       size,
		SHA256:     hex.EncodeToString(hash.Sum(nil)),
	}, nil
}

// Verify checks the staged artifact against the descriptor's expected
// checksum, when one was declared. A mismatch discards the temp file; it is
// never promoted.
func (s *Stager) Verify(a *types.StagedArtifact) error {
	want := strings.ToLower(strings.TrimSpace(a.Descriptor.ExpectedSHA256))
	if want == "" {
		return nil
	}
	if a.SHA256 != want {
		os.Remove(a.TempPath)
		return &types.IntegrityError{Path: a.TempPath, Want: want, Got: a.SHA256}
	}
	return nil
}

// NewTempDir creates a scratch directory for whole-tree extraction staging.
func (s *Stager) NewTempDir(pattern string) (string, error) {
	dir, err := os.MkdirTemp(s.dir, sanitize(pattern)+"-*")
	if err != nil {
		return "", errors.NewFileError(s.dir, "create temp dir", err)
	}
	return dir, nil
}

// Discard removes a staged artifact that will not be promoted.
func (s *Stager) Discard(a *types.StagedArtifact) {
	if a != nil && a.TempPath != "" {
		os.RemoveAll(a.TempPath)
	}
}

// Cleanup removes the scratch directory and anything abandoned in it.
func (s *Stager) Cleanup() error {
	return os.RemoveAll(s.dir)
}

// Promote renames a staged file or directory into its final path. The
// rename is the single atomic step; concurrent readers observe either no
// final path or the complete artifact.
func Promote(tempPath, finalPath string) error {
	if err := os.MkdirAll(filepath.Dir(finalPath), 0o755); err != nil {
		return errors.NewFileError(finalPath, "create parent", err)
	}
	if err := os.Rename(tempPath, finalPath); err != nil {
		return errors.NewFileError(finalPath, "promote", err)
	}
	return nil
}

func sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(`/\:*?"<>|`, r) {
			return '_'
		}
		return r
	}, name)
}
