// Package manifest converts raw vendor dependency JSON into the in-memory
// model. Parsing is a pure transformation: no network, no filesystem, and
// identical bytes always yield structurally equal manifests.
package manifest

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/frctools/vendordep/module/vendordep/types"
)

// SchemaVersion is the manifest schema revision this tool understands.
// Manifests normally omit the field; when present, any other major revision
// is rejected as unsupported rather than misread.
const SchemaVersion = 1

type schemaProbe struct {
	SchemaVersion *int `json:"schemaVersion"`
}

// Parse decodes and validates one vendor manifest. Unknown fields are
// ignored for forward compatibility; missing required fields yield a
// ParseError with kind malformed, an unrecognized schemaVersion yields kind
// unsupported schema.
func Parse(raw []byte) (*types.VendorManifest, error) {
	var probe schemaProbe
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, &types.ParseError{Kind: types.ParseMalformed, Detail: "invalid JSON", Err: err}
	}
	if probe.SchemaVersion != nil && *probe.SchemaVersion != SchemaVersion {
		return nil, &types.ParseError{
			Kind:   types.ParseUnsupportedSchema,
			Detail: fmt.Sprintf("schemaVersion %d, supported %d", *probe.SchemaVersion, SchemaVersion),
		}
	}

	var m types.VendorManifest
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, &types.ParseError{Kind: types.ParseMalformed, Detail: "invalid manifest document", Err: err}
	}
	if err := validate(&m); err != nil {
		return nil, err
	}
	return &m, nil
}

func validate(m *types.VendorManifest) error {
	malformed := func(format string, args ...interface{}) error {
		return &types.ParseError{Kind: types.ParseMalformed, Detail: fmt.Sprintf(format, args...)}
	}

	if m.Name == "" {
		return malformed("missing required field name")
	}
	if m.Version == "" {
		return malformed("missing required field version")
	}
	if m.UUID != "" {
		if _, err := uuid.Parse(m.UUID); err != nil {
			return malformed("invalid uuid %q", m.UUID)
		}
	}
	if m.ArtifactCount() == 0 {
		return malformed("manifest %s declares no artifacts", m.Name)
	}

	for i, d := range m.JavaDependencies {
		if d.GroupID == "" || d.ArtifactID == "" || d.Version == "" {
			return malformed("javaDependencies[%d]: groupId, artifactId and version are required", i)
		}
	}
	for i, d := range m.JniDependencies {
		if d.GroupID == "" || d.ArtifactID == "" || d.Version == "" {
			return malformed("jniDependencies[%d]: groupId, artifactId and version are required", i)
		}
		// A classified binary with no classifiers can never resolve.
		if len(d.ValidPlatforms) == 0 {
			return malformed("jniDependencies[%d] (%s): validPlatforms must not be empty", i, d.ArtifactID)
		}
	}
	for i, d := range m.CppDependencies {
		if d.GroupID == "" || d.ArtifactID == "" || d.Version == "" {
			return malformed("cppDependencies[%d]: groupId, artifactId and version are required", i)
		}
		if len(d.BinaryPlatforms) == 0 && d.HeaderClassifier == "" {
			return malformed("cppDependencies[%d] (%s): need binaryPlatforms or headerClassifier", i, d.ArtifactID)
		}
	}
	for i, d := range m.DirectDownloads {
		if d.URL == "" || d.FileName == "" {
			return malformed("directDownloads[%d]: url and fileName are required", i)
		}
	}
	return nil
}

// ValidateConflicts checks a batch of manifests against each other's
// conflictsWith declarations. A conflict in either direction fails the pair.
func ValidateConflicts(manifests []*types.VendorManifest) error {
	byUUID := make(map[string]*types.VendorManifest, len(manifests))
	for _, m := range manifests {
		if m.UUID != "" {
			byUUID[m.UUID] = m
		}
	}
	for _, m := range manifests {
		for _, ref := range m.ConflictsWith {
			other, ok := byUUID[ref.UUID]
			if !ok || other == m {
				continue
			}
			return &types.ConflictError{
				Manifest: m.Name,
				Other:    other.Name,
				Message:  ref.ErrorMessage,
			}
		}
	}
	return nil
}
