package types

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Year is the season marker carried by vendor manifests. Vendors publish it
// either as a JSON number or as a quoted string, so it needs a lenient decoder.
type Year int

// UnmarshalJSON accepts both `2025` and `"2025"`.
func (y *Year) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	v, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("year is not numeric: %q", s)
	}
	*y = Year(v)
	return nil
}

// MarshalJSON writes the year back as a number.
func (y Year) MarshalJSON() ([]byte, error) {
	return json.Marshal(int(y))
}

// PackageRef points at another vendor manifest, identified by its uuid.
// Used by the conflictsWith list.
type PackageRef struct {
	UUID            string `json:"uuid"`
	ErrorMessage    string `json:"errorMessage"`
	OfflineFileName string `json:"offlineFileName"`
}

// JavaDependency is a plain Maven coordinate compiled against by Java code.
// There is one artifact per coordinate and no platform variation.
type JavaDependency struct {
	GroupID    string `json:"groupId"`
	ArtifactID string `json:"artifactId"`
	Version    string `json:"version"`
}

// FileName returns the jar name as published to the Maven repository.
func (d JavaDependency) FileName() string {
	return fmt.Sprintf("%s-%s.jar", d.ArtifactID, d.Version)
}

// JniDependency is a native library loaded by Java through JNI. Artifacts are
// published per platform classifier; ValidPlatforms enumerates the supported
// set and may contain glob patterns such as "linux*".
type JniDependency struct {
	GroupID              string   `json:"groupId"`
	ArtifactID           string   `json:"artifactId"`
	Version              string   `json:"version"`
	IsJar                bool     `json:"isJar"`
	SkipInvalidPlatforms bool     `json:"skipInvalidPlatforms"`
	ValidPlatforms       []string `json:"validPlatforms"`
	SimMode              string   `json:"simMode,omitempty"`
}

// CppDependency is a native library consumed by C++ code. Headers live in a
// separate artifact addressed by HeaderClassifier; binaries are published per
// platform classifier listed in BinaryPlatforms.
type CppDependency struct {
	GroupID          string   `json:"groupId"`
	ArtifactID       string   `json:"artifactId"`
	Version          string   `json:"version"`
	HeaderClassifier string   `json:"headerClassifier"`
	SharedLibrary    bool     `json:"sharedLibrary,omitempty"`
	BinaryPlatforms  []string `json:"binaryPlatforms,omitempty"`
}

// DirectDownload is a raw URL artifact with no Maven coordinate. The URL is
// passed to the fetcher unchanged. SHA256, when present, is verified before
// the file is promoted into the store.
type DirectDownload struct {
	URL      string `json:"url"`
	FileName string `json:"fileName"`
	SHA256   string `json:"sha256,omitempty"`
}

// VendorManifest is the parsed form of one vendor dependency descriptor.
// Name and Version together identify a manifest instance.
type VendorManifest struct {
	FileName         string           `json:"fileName"`
	Name             string           `json:"name"`
	Version          string           `json:"version"`
	FrcYear          Year             `json:"frcYear"`
	UUID             string           `json:"uuid"`
	MavenURLs        []string         `json:"mavenUrls"`
	JSONURL          string           `json:"jsonUrl"`
	ConflictsWith    []PackageRef     `json:"conflictsWith,omitempty"`
	JavaDependencies []JavaDependency `json:"javaDependencies"`
	JniDependencies  []JniDependency  `json:"jniDependencies"`
	CppDependencies  []CppDependency  `json:"cppDependencies"`
	DirectDownloads  []DirectDownload `json:"directDownloads,omitempty"`
}

// Key returns the identity of this manifest instance.
func (m *VendorManifest) Key() string {
	return m.Name + "@" + m.Version
}

// ArtifactCount returns the number of declared artifact specs across all
// dependency groups.
func (m *VendorManifest) ArtifactCount() int {
	return len(m.JavaDependencies) + len(m.JniDependencies) +
		len(m.CppDependencies) + len(m.DirectDownloads)
}
