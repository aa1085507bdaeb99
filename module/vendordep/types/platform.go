package types

import (
	"fmt"
	"sort"
	"strings"
)

// Platform describes the target the caller is resolving for: operating
// system, architecture, and the optional build flavor knobs that alter the
// published classifier suffix. There is no default platform; callers must
// supply one explicitly.
type Platform struct {
	OS   string
	Arch string

	// Debug and Static select the debug/static artifact flavors where the
	// vendor publishes them. They affect the file name suffix only, not
	// classifier matching.
	Debug  bool
	Static bool
}

// Classifier returns the single-token platform classifier used in published
// artifact names, e.g. "linuxx86-64".
func (p Platform) Classifier() string {
	return p.OS + p.Arch
}

func (p Platform) String() string {
	return p.Classifier()
}

// ClassifierHeaders is the pseudo-classifier used for header-only artifacts.
const ClassifierHeaders = "headers"

// knownClassifiers maps every classifier observed in published vendor
// repositories to its OS/arch split.
var knownClassifiers = map[string]Platform{
	"linuxarm32":    {OS: "linux", Arch: "arm32"},
	"linuxarm64":    {OS: "linux", Arch: "arm64"},
	"linuxathena":   {OS: "linux", Arch: "athena"},
	"linuxx86-64":   {OS: "linux", Arch: "x86-64"},
	"osxuniversal":  {OS: "osx", Arch: "universal"},
	"windowsarm64":  {OS: "windows", Arch: "arm64"},
	"windowsx86-64": {OS: "windows", Arch: "x86-64"},
}

// KnownClassifiers returns the supported classifier tokens in sorted order.
func KnownClassifiers() []string {
	out := make([]string, 0, len(knownClassifiers))
	for c := range knownClassifiers {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// ParsePlatform resolves a classifier token like "linuxathena" into a
// Platform. Unknown tokens are rejected so that typos fail fast instead of
// producing URLs that can never exist.
func ParsePlatform(classifier string) (Platform, error) {
	p, ok := knownClassifiers[strings.TrimSpace(classifier)]
	if !ok {
		return Platform{}, fmt.Errorf("unknown platform classifier %q (known: %s)",
			classifier, strings.Join(KnownClassifiers(), ", "))
	}
	return p, nil
}
