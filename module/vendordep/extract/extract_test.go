package extract

import (
	"archive/zip"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/frctools/vendordep/module/vendordep/stage"
	"github.com/frctools/vendordep/module/vendordep/types"
)

type zipEntry struct {
	name string
	body string
}

func buildZip(t *testing.T, dir string, entries []zipEntry) string {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		w, err := zw.Create(e.name)
		if err != nil {
			t.Fatalf("creating zip entry %q: %v", e.name, err)
		}
		if _, err := w.Write([]byte(e.body)); err != nil {
			t.Fatalf("writing zip entry %q: %v", e.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("closing zip writer: %v", err)
	}
	p := filepath.Join(dir, "payload.zip")
	if err := os.WriteFile(p, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("writing archive: %v", err)
	}
	return p
}

func newStager(t *testing.T, root string) *stage.Stager {
	t.Helper()
	s, err := stage.NewStager(root)
	if err != nil {
		t.Fatalf("NewStager() error = %v", err)
	}
	return s
}

func TestZipExtractsTree(t *testing.T) {
	root := t.TempDir()
	archive := buildZip(t, root, []zipEntry{
		{"include/", ""},
		{"include/lib.h", "#pragma once"},
		{"linux/x86-64/shared/libcore.so", "elf bytes"},
	})

	dest := filepath.Join(root, "mylib", "1.0.0", "cpp", "core", "libs", "linuxx86-64")
	extracted, err := Zip(newStager(t, root), archive, dest)
	if err != nil {
		t.Fatalf("Zip() error = %v", err)
	}

	want := []string{
		filepath.FromSlash("include/lib.h"),
		filepath.FromSlash("linux/x86-64/shared/libcore.so"),
	}
	if !reflect.DeepEqual(extracted, want) {
		t.Errorf("extracted = %v, want %v", extracted, want)
	}
	got, err := os.ReadFile(filepath.Join(dest, "include", "lib.h"))
	if err != nil || string(got) != "#pragma once" {
		t.Errorf("extracted header = %q, %v", got, err)
	}
}

func TestZipRejectsPathTraversal(t *testing.T) {
	tests := []struct {
		name  string
		entry string
	}{
		{"parent escape", "../../evil.txt"},
		{"nested escape", "ok/../../evil.txt"},
		{"absolute path", "/etc/evil.txt"},
		{"backslash separator", `sub\evil.txt`},
		{"drive prefix", "C:evil.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			archive := buildZip(t, root, []zipEntry{
				{"ok.txt", "fine"},
				{tt.entry, "malicious"},
			})

			dest := filepath.Join(root, "out")
			_, err := Zip(newStager(t, root), archive, dest)
			var ee *types.ExtractError
			if !errors.As(err, &ee) || ee.Kind != types.ExtractPathTraversal {
				t.Fatalf("Zip() = %v, want path traversal ExtractError", err)
			}
			// Failed extraction must not leave a destination at all.
			if _, statErr := os.Stat(dest); !os.IsNotExist(statErr) {
				t.Error("destination exists after rejected archive")
			}
			if _, statErr := os.Stat(filepath.Join(filepath.Dir(root), "evil.txt")); !os.IsNotExist(statErr) {
				t.Error("entry escaped the destination root")
			}
		})
	}
}

func TestZipRejectsCorruptArchive(t *testing.T) {
	root := t.TempDir()
	archive := filepath.Join(root, "broken.zip")
	if err := os.WriteFile(archive, []byte("this is not a zip"), 0o644); err != nil {
		t.Fatalf("writing file: %v", err)
	}

	dest := filepath.Join(root, "out")
	_, err := Zip(newStager(t, root), archive, dest)
	var ee *types.ExtractError
	if !errors.As(err, &ee) || ee.Kind != types.ExtractCorruptArchive {
		t.Fatalf("Zip() = %v, want corrupt archive ExtractError", err)
	}
	if _, statErr := os.Stat(dest); !os.IsNotExist(statErr) {
		t.Error("destination exists after corrupt archive")
	}
}

func TestZipReplacesPreviousTree(t *testing.T) {
	root := t.TempDir()
	dest := filepath.Join(root, "out")
	if err := os.MkdirAll(dest, 0o755); err != nil {
		t.Fatal(err)
	}
	stale := filepath.Join(dest, "stale.txt")
	if err := os.WriteFile(stale, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}

	archive := buildZip(t, root, []zipEntry{{"fresh.txt", "new"}})
	if _, err := Zip(newStager(t, root), archive, dest); err != nil {
		t.Fatalf("Zip() error = %v", err)
	}

	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Error("stale file survived re-extraction")
	}
	if got, err := os.ReadFile(filepath.Join(dest, "fresh.txt")); err != nil || string(got) != "new" {
		t.Errorf("fresh file = %q, %v", got, err)
	}
}

func TestProbeCountsEntries(t *testing.T) {
	root := t.TempDir()
	archive := buildZip(t, root, []zipEntry{
		{"a.txt", "a"},
		{"dir/", ""},
		{"dir/b.txt", "b"},
	})
	f, err := os.Open(archive)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	count, err := Probe(f)
	if err != nil {
		t.Fatalf("Probe() error = %v", err)
	}
	if count != 3 {
		t.Errorf("Probe() count = %d, want 3", count)
	}
}

func TestProbeRejectsGarbage(t *testing.T) {
	_, err := Probe(bytes.NewReader([]byte("garbage payload")))
	var ee *types.ExtractError
	if !errors.As(err, &ee) || ee.Kind != types.ExtractCorruptArchive {
		t.Errorf("Probe() = %v, want corrupt archive ExtractError", err)
	}
}

func TestMaterializePlainFile(t *testing.T) {
	root := t.TempDir()
	stager := newStager(t, root)

	temp := filepath.Join(stager.Dir(), "staged-file")
	if err := os.WriteFile(temp, []byte("jar bytes"), 0o644); err != nil {
		t.Fatal(err)
	}
	staged := &types.StagedArtifact{
		Descriptor: types.DownloadDescriptor{Kind: types.KindFile},
		TempPath:   temp,
	}

	final := filepath.Join(root, "java", "lib-1.0.0.jar")
	paths, err := Materialize(stager, staged, final)
	if err != nil {
		t.Fatalf("Materialize() error = %v", err)
	}
	if len(paths) != 1 || paths[0] != "lib-1.0.0.jar" {
		t.Errorf("paths = %v", paths)
	}
	if got, err := os.ReadFile(final); err != nil || string(got) != "jar bytes" {
		t.Errorf("final file = %q, %v", got, err)
	}
}
