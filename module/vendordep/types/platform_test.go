package types

import (
	"sort"
	"testing"
)

func TestParsePlatform(t *testing.T) {
	tests := []struct {
		classifier string
		wantOS     string
		wantArch   string
		wantErr    bool
	}{
		{"linuxx86-64", "linux", "x86-64", false},
		{"linuxathena", "linux", "athena", false},
		{"linuxarm32", "linux", "arm32", false},
		{"linuxarm64", "linux", "arm64", false},
		{"osxuniversal", "osx", "universal", false},
		{"windowsx86-64", "windows", "x86-64", false},
		{"windowsarm64", "windows", "arm64", false},
		{"amiga68k", "", "", true},
		{"", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.classifier, func(t *testing.T) {
			p, err := ParsePlatform(tt.classifier)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParsePlatform(%q) error = %v, wantErr %v", tt.classifier, err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if p.OS != tt.wantOS || p.Arch != tt.wantArch {
				t.Errorf("ParsePlatform(%q) = %s/%s, want %s/%s",
					tt.classifier, p.OS, p.Arch, tt.wantOS, tt.wantArch)
			}
			if p.Classifier() != tt.classifier {
				t.Errorf("Classifier() = %q, want round-trip to %q", p.Classifier(), tt.classifier)
			}
		})
	}
}

func TestKnownClassifiersSorted(t *testing.T) {
	cs := KnownClassifiers()
	if len(cs) == 0 {
		t.Fatal("no known classifiers")
	}
	if !sort.StringsAreSorted(cs) {
		t.Errorf("KnownClassifiers() not sorted: %v", cs)
	}
	for _, c := range cs {
		if _, err := ParsePlatform(c); err != nil {
			t.Errorf("known classifier %q does not parse: %v", c, err)
		}
	}
}
