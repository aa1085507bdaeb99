// Package extract materializes staged artifacts into the dependency store.
// Zip archives are unpacked into a scratch tree and promoted with a single
// rename; plain files reuse the stager's promotion. Entry paths are
// sanitized so no archive can write outside its destination root.
package extract

import (
	"errors"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/zip"
	"github.com/rs/zerolog/log"
	"github.com/zhyee/zipstream"

	"github.com/frctools/vendordep/module/vendordep/stage"
	"github.com/frctools/vendordep/module/vendordep/types"
)

// Materialize places a staged artifact at finalPath according to its kind:
// archives are probed and unpacked, plain files are promoted as-is. The
// returned paths are relative to finalPath for archives, or the single file
// name for plain files.
func Materialize(stager *stage.Stager, staged *types.StagedArtifact, finalPath string) ([]string, error) {
	switch staged.Descriptor.Kind {
	case types.KindArchive:
		return Zip(stager, staged.TempPath, finalPath)
	case types.KindFile:
		if err := stage.Promote(staged.TempPath, finalPath); err != nil {
			return nil, err
		}
		return []string{filepath.Base(finalPath)}, nil
	default:
		return nil, errors.New("unknown artifact kind " + string(staged.Descriptor.Kind))
	}
}

// Probe streams through a zip payload without touching the filesystem,
// reading every entry to force CRC validation. It reports the entry count
// and a CorruptArchive error for undecodable data.
func Probe(r io.Reader) (int, error) {
	zr := zipstream.NewReader(r)
	count := 0
	for {
		entry, err := zr.GetNextEntry()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return count, &types.ExtractError{Kind: types.ExtractCorruptArchive, Err: err}
		}
		if !strings.HasSuffix(entry.Name, "/") {
			rc, err := entry.Open()
			if err != nil {
				return count, &types.ExtractError{Kind: types.ExtractCorruptArchive, Entry: entry.Name, Err: err}
			}
			_, err = io.Copy(io.Discard, rc)
			rc.Close()
			if err != nil {
				return count, &types.ExtractError{Kind: types.ExtractCorruptArchive, Entry: entry.Name, Err: err}
			}
		}
		count++
	}
	return count, nil
}

// Zip unpacks the archive at archivePath into destRoot. The whole tree is
// built under a scratch directory first and promoted with one rename, so an
// interrupted or failed extraction never leaves destRoot partially
// populated. Directory entries are created before file entries.
func Zip(stager *stage.Stager, archivePath, destRoot string) ([]string, error) {
	f, err := os.Open(archivePath)
	if err != nil {
		return nil, &types.ExtractError{Kind: types.ExtractCorruptArchive, Err: err}
	}
	_, err = Probe(f)
	f.Close()
	if err != nil {
		return nil, err
	}

	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, &types.ExtractError{Kind: types.ExtractCorruptArchive, Err: err}
	}
	defer zr.Close()

	tempRoot, err := stager.NewTempDir("extract-" + filepath.Base(destRoot))
	if err != nil {
		return nil, err
	}
	cleanup := func() { os.RemoveAll(tempRoot) }

	var extracted []string

	// Directories first so empty directories survive and file parents exist
	// regardless of entry order inside the archive.
	for _, entry := range zr.File {
		if !entry.FileInfo().IsDir() {
			continue
		}
		rel, err := sanitizeEntry(entry.Name)
		if err != nil {
			cleanup()
			return nil, err
		}
		if err := os.MkdirAll(filepath.Join(tempRoot, rel), 0o755); err != nil {
			cleanup()
			return nil, err
		}
	}

	for _, entry := range zr.File {
		if entry.FileInfo().IsDir() {
			continue
		}
		rel, err := sanitizeEntry(entry.Name)
		if err != nil {
			cleanup()
			return nil, err
		}
		if err := writeEntry(entry, filepath.Join(tempRoot, rel)); err != nil {
			cleanup()
			return nil, err
		}
		extracted = append(extracted, rel)
	}

	// Re-runs replace the old tree; there is never a window with a partial
	// one, only absent or complete.
	if err := os.RemoveAll(destRoot); err != nil {
		cleanup()
		return nil, err
	}
	if err := stage.Promote(tempRoot, destRoot); err != nil {
		cleanup()
		return nil, err
	}

	sort.Strings(extracted)
	log.Debug().Str("dest", destRoot).Int("files", len(extracted)).Msg("Extracted archive")
	return extracted, nil
}

func writeEntry(entry *zip.File, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	rc, err := entry.Open()
	if err != nil {
		return &types.ExtractError{Kind: types.ExtractCorruptArchive, Entry: entry.Name, Err: err}
	}
	defer rc.Close()

	mode := entry.Mode() & 0o777
	if mode == 0 {
		mode = 0o644
	}
	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	_, err = io.Copy(out, rc)
	closeErr := out.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(dest)
		return &types.ExtractError{Kind: types.ExtractCorruptArchive, Entry: entry.Name, Err: err}
	}
	return nil
}

// sanitizeEntry normalizes an archive entry name and rejects anything that
// would resolve outside the destination root: absolute paths, drive
// prefixes, backslash separators, or leading ".." segments.
func sanitizeEntry(name string) (string, error) {
	if strings.Contains(name, `\`) {
		return "", &types.ExtractError{Kind: types.ExtractPathTraversal, Entry: name,
			Err: errors.New("backslash in entry name")}
	}
	if strings.HasPrefix(name, "/") || filepath.IsAbs(name) || strings.Contains(name, ":") {
		return "", &types.ExtractError{Kind: types.ExtractPathTraversal, Entry: name,
			Err: errors.New("absolute entry path")}
	}
	clean := path.Clean(name)
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return "", &types.ExtractError{Kind: types.ExtractPathTraversal, Entry: name,
			Err: errors.New("entry escapes destination root")}
	}
	if clean == "." || clean == "" {
		return "", &types.ExtractError{Kind: types.ExtractPathTraversal, Entry: name,
			Err: errors.New("empty entry name")}
	}
	return filepath.FromSlash(clean), nil
}
