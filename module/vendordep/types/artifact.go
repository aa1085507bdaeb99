package types

// ArtifactSpec is the closed set of artifact declarations a manifest can
// carry. The variant set is fixed: JavaDependency (plain Maven coordinate),
// JniDependency and CppDependency (classified binaries), and DirectDownload
// (raw URL). The locator matches exhaustively over these; there is no open
// extension point.
type ArtifactSpec interface {
	// SpecID is the logical artifact id used in descriptors and reports.
	SpecID() string

	sealed()
}

func (d JavaDependency) SpecID() string { return d.ArtifactID }
func (d JavaDependency) sealed()        {}

func (d JniDependency) SpecID() string { return d.ArtifactID }
func (d JniDependency) sealed()        {}

func (d CppDependency) SpecID() string { return d.ArtifactID }
func (d CppDependency) sealed()        {}

func (d DirectDownload) SpecID() string { return d.FileName }
func (d DirectDownload) sealed()        {}

// Artifacts returns every declared spec in manifest declaration order:
// java, then jni, then cpp, then direct downloads. Resolution and result
// ordering follow this sequence, never map iteration order.
func (m *VendorManifest) Artifacts() []ArtifactSpec {
	out := make([]ArtifactSpec, 0, m.ArtifactCount())
	for _, d := range m.JavaDependencies {
		out = append(out, d)
	}
	for _, d := range m.JniDependencies {
		out = append(out, d)
	}
	for _, d := range m.CppDependencies {
		out = append(out, d)
	}
	for _, d := range m.DirectDownloads {
		out = append(out, d)
	}
	return out
}
