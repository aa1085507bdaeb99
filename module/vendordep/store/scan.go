package store

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/frctools/vendordep/util/common/fileutil"
)

// LibraryReport describes what a compiler or runtime linker needs from an
// installed manifest: header roots, directories holding library objects, and
// bare library names.
type LibraryReport struct {
	IncludeDirs        []string
	LibrarySearchPaths []string
	Libraries          []string
}

// Scan walks one installed manifest version and builds its LibraryReport.
// Library names follow linker conventions: "libfoo.so" contributes "foo",
// "foo.dll" contributes "foo".
func (s *Store) Scan(manifestName, version string) (*LibraryReport, error) {
	root := filepath.Join(s.Root, manifestName, version)
	report := &LibraryReport{}
	if !fileutil.Exists(root) {
		return report, nil
	}
	searchPaths := map[string]struct{}{}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == "include" {
				report.IncludeDirs = append(report.IncludeDirs, path)
				return filepath.SkipDir
			}
			return nil
		}
		stem := strings.TrimSuffix(d.Name(), filepath.Ext(d.Name()))
		switch filepath.Ext(d.Name()) {
		case ".so", ".dylib":
			searchPaths[filepath.Dir(path)] = struct{}{}
			report.Libraries = append(report.Libraries, strings.TrimPrefix(stem, "lib"))
		case ".dll":
			searchPaths[filepath.Dir(path)] = struct{}{}
			report.Libraries = append(report.Libraries, stem)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for p := range searchPaths {
		report.LibrarySearchPaths = append(report.LibrarySearchPaths, p)
	}
	sort.Strings(report.LibrarySearchPaths)
	sort.Strings(report.IncludeDirs)
	return report, nil
}

// Merge folds another report into this one.
func (r *LibraryReport) Merge(other *LibraryReport) {
	r.IncludeDirs = append(r.IncludeDirs, other.IncludeDirs...)
	r.LibrarySearchPaths = append(r.LibrarySearchPaths, other.LibrarySearchPaths...)
	r.Libraries = append(r.Libraries, other.Libraries...)
}

// LinkerPath renders the library search paths as an LD_LIBRARY_PATH style
// value.
func (r *LibraryReport) LinkerPath() string {
	return strings.Join(r.LibrarySearchPaths, ":")
}

// CompilerArgs renders -I/-L/-l arguments for gcc or clang.
func (r *LibraryReport) CompilerArgs() []string {
	var args []string
	for _, d := range r.IncludeDirs {
		args = append(args, "-I"+d)
	}
	for _, d := range r.LibrarySearchPaths {
		args = append(args, "-L"+d)
	}
	for _, l := range r.Libraries {
		args = append(args, "-l"+l)
	}
	return args
}
