// Package locator turns a parsed manifest plus a target platform into the
// ordered list of concrete download descriptors. Resolution is deterministic:
// artifacts resolve in manifest declaration order, candidate URLs follow the
// manifest's repository declaration order, and no map iteration is involved.
package locator

import (
	"fmt"
	"path"
	"strings"

	"github.com/gobwas/glob"
	"github.com/rs/zerolog/log"

	"github.com/frctools/vendordep/module/vendordep/types"
)

// Options tune a resolution pass.
type Options struct {
	// ExtraRepos are appended after the manifest's own mavenUrls.
	ExtraRepos []string
}

// Resolve produces download descriptors for every artifact the manifest
// declares that the platform supports. Artifacts with no matching classifier
// are reported as LocatorErrors without affecting their siblings; the
// returned descriptor slice is always usable.
func Resolve(m *types.VendorManifest, platform types.Platform, opts Options) ([]types.DownloadDescriptor, []error) {
	repos := normalizeRepos(append(append([]string{}, m.MavenURLs...), opts.ExtraRepos...))
	classifier := platform.Classifier()

	var descriptors []types.DownloadDescriptor
	var failures []error

	for _, spec := range m.Artifacts() {
		switch d := spec.(type) {
		case types.JavaDependency:
			descriptors = append(descriptors, types.DownloadDescriptor{
				Manifest:   m.Name,
				Version:    m.Version,
				ArtifactID: d.ArtifactID,
				URLs:       mavenURLs(repos, d.GroupID, d.ArtifactID, d.Version, d.FileName()),
				RelPath:    path.Join(m.Name, m.Version, "java", d.FileName()),
				Kind:       types.KindFile,
			})

		case types.JniDependency:
			pattern, ok := matchClassifier(d.ValidPlatforms, classifier)
			if !ok {
				if d.SkipInvalidPlatforms {
					log.Debug().
						Str("manifest", m.Name).
						Str("artifact", d.ArtifactID).
						Str("platform", classifier).
						Msg("Skipping JNI artifact for unsupported platform")
					continue
				}
				failures = append(failures, &types.LocatorError{
					Manifest:   m.Name,
					ArtifactID: d.ArtifactID,
					Classifier: classifier,
					Declared:   d.ValidPlatforms,
				})
				continue
			}
			ext := "zip"
			if d.IsJar {
				ext = "jar"
			}
			name := fmt.Sprintf("%s-%s-%s%s.%s", d.ArtifactID, d.Version, classifier, flavorSuffix(platform, false), ext)
			log.Debug().Str("artifact", d.ArtifactID).Str("matched", pattern).Msg("Resolved JNI classifier")
			descriptors = append(descriptors, types.DownloadDescriptor{
				Manifest:   m.Name,
				Version:    m.Version,
				ArtifactID: d.ArtifactID,
				Classifier: classifier,
				URLs:       mavenURLs(repos, d.GroupID, d.ArtifactID, d.Version, name),
				RelPath:    path.Join(m.Name, m.Version, "jni", d.ArtifactID, classifier),
				Kind:       types.KindArchive,
			})

		case types.CppDependency:
			// Headers ship as a separate artifact addressed by the
			// header classifier, independent of the target platform.
			if d.HeaderClassifier != "" {
				name := fmt.Sprintf("%s-%s-%s.zip", d.ArtifactID, d.Version, d.HeaderClassifier)
				descriptors = append(descriptors, types.DownloadDescriptor{
					Manifest:   m.Name,
					Version:    m.Version,
					ArtifactID: d.ArtifactID,
					Classifier: d.HeaderClassifier,
					URLs:       mavenURLs(repos, d.GroupID, d.ArtifactID, d.Version, name),
					RelPath:    path.Join(m.Name, m.Version, "cpp", d.ArtifactID, "include"),
					Kind:       types.KindArchive,
				})
			}
			if len(d.BinaryPlatforms) == 0 {
				continue
			}
			if _, ok := matchClassifier(d.BinaryPlatforms, classifier); !ok {
				failures = append(failures, &types.LocatorError{
					Manifest:   m.Name,
					ArtifactID: d.ArtifactID,
					Classifier: classifier,
					Declared:   d.BinaryPlatforms,
				})
				continue
			}
			name := fmt.Sprintf("%s-%s-%s%s.zip", d.ArtifactID, d.Version, classifier, flavorSuffix(platform, true))
			descriptors = append(descriptors, types.DownloadDescriptor{
				Manifest:   m.Name,
				Version:    m.Version,
				ArtifactID: d.ArtifactID,
				Classifier: classifier,
				URLs:       mavenURLs(repos, d.GroupID, d.ArtifactID, d.Version, name),
				RelPath:    path.Join(m.Name, m.Version, "cpp", d.ArtifactID, "libs", classifier),
				Kind:       types.KindArchive,
			})

		case types.DirectDownload:
			kind := types.KindFile
			if strings.HasSuffix(strings.ToLower(d.FileName), ".zip") {
				kind = types.KindArchive
			}
			rel := path.Join(m.Name, m.Version, "files", d.FileName)
			if kind == types.KindArchive {
				rel = path.Join(m.Name, m.Version, "files", strings.TrimSuffix(d.FileName, path.Ext(d.FileName)))
			}
			descriptors = append(descriptors, types.DownloadDescriptor{
				Manifest:       m.Name,
				Version:        m.Version,
				ArtifactID:     d.FileName,
				URLs:           []string{d.URL},
				RelPath:        rel,
				Kind:           kind,
				ExpectedSHA256: d.SHA256,
			})

		default:
			// The artifact variant set is closed; reaching here means a
			// variant was added without teaching the locator about it.
			failures = append(failures, fmt.Errorf("unhandled artifact spec %T", spec))
		}
	}

	return descriptors, failures
}

// flavorSuffix renders the debug/static suffixes the way vendor repositories
// publish them: "<classifier>[static][debug]".
func flavorSuffix(p types.Platform, allowStatic bool) string {
	var s string
	if allowStatic && p.Static {
		s += "static"
	}
	if p.Debug {
		s += "debug"
	}
	return s
}

// mavenURLs builds the candidate URL per repository for one published file.
func mavenURLs(repos []string, group, artifact, version, fileName string) []string {
	groupPath := strings.ReplaceAll(group, ".", "/")
	urls := make([]string, 0, len(repos))
	for _, repo := range repos {
		urls = append(urls, repo+groupPath+"/"+artifact+"/"+version+"/"+fileName)
	}
	return urls
}

func normalizeRepos(repos []string) []string {
	out := make([]string, 0, len(repos))
	for _, r := range repos {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		if !strings.HasSuffix(r, "/") {
			r += "/"
		}
		out = append(out, r)
	}
	return out
}

// matchClassifier decides whether a declared classifier set supports the
// requested platform and which declared entry matched. An exact entry always
// beats a glob pattern; among matching globs the one with the most literal
// (non-wildcard) characters wins, with declaration order breaking ties. The
// policy is deliberately explicit because vendor manifests in the wild mix
// exact tokens with patterns like "linux*".
func matchClassifier(declared []string, classifier string) (string, bool) {
	bestLiteral := -1
	best := ""
	for _, entry := range declared {
		if entry == classifier {
			return entry, true
		}
		if !strings.ContainsAny(entry, "*?[") {
			continue
		}
		g, err := glob.Compile(entry)
		if err != nil {
			continue
		}
		if g.Match(classifier) {
			literal := len(strings.Map(func(r rune) rune {
				if strings.ContainsRune("*?[]", r) {
					return -1
				}
				return r
			}, entry))
			if literal > bestLiteral {
				bestLiteral = literal
				best = entry
			}
		}
	}
	return best, best != ""
}
