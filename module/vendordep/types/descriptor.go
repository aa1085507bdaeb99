package types

// ArtifactKind tells the pipeline how a fetched payload is materialized.
type ArtifactKind string

const (
	// KindFile is promoted into the store as a single file (jars, headers
	// shipped loose, direct downloads that are not archives).
	KindFile ArtifactKind = "file"
	// KindArchive is unpacked into a directory tree.
	KindArchive ArtifactKind = "archive"
)

// DownloadDescriptor is one concrete fetch unit produced by the locator.
// URLs holds the candidate locations across the manifest's Maven
// repositories in declaration order; the fetcher tries them until one
// succeeds. RelPath is where the payload lands under the store root: the
// final file path for KindFile, the extraction root for KindArchive.
//
// Descriptors are created per resolution pass, consumed exactly once by the
// fetcher, and never persisted.
type DownloadDescriptor struct {
	Manifest   string
	Version    string
	ArtifactID string
	Classifier string

	URLs    []string
	RelPath string
	Kind    ArtifactKind

	// ExpectedSHA256 is verified before promotion when non-empty.
	ExpectedSHA256 string
}

// ID identifies the descriptor within a resolution pass.
func (d DownloadDescriptor) ID() string {
	id := d.Manifest + ":" + d.ArtifactID
	if d.Classifier != "" {
		id += ":" + d.Classifier
	}
	return id
}

// URL returns the primary candidate location.
func (d DownloadDescriptor) URL() string {
	if len(d.URLs) == 0 {
		return ""
	}
	return d.URLs[0]
}

// FetchStatus classifies the outcome of one descriptor.
type FetchStatus string

const (
	StatusSuccess FetchStatus = "success"
	StatusFail    FetchStatus = "fail"
	// StatusSkip means the store already held a complete matching artifact
	// and no network access was attempted.
	StatusSkip FetchStatus = "skip"
)

// FetchResult is the outcome of one DownloadDescriptor. Results are produced
// by the fetcher, one writer per descriptor, and handed to the caller in the
// original descriptor order regardless of completion timing.
type FetchResult struct {
	Descriptor DownloadDescriptor
	Status     FetchStatus

	// FinalPath is the absolute promoted path (file or extraction root)
	// when Status is success or skip.
	FinalPath string
	// Size is the byte count written during download; zero on skip.
	Size int64
	// SourceURL is the candidate that served the payload.
	SourceURL string
	// Err holds the terminal failure when Status is fail.
	Err error
}

// StagedArtifact is a verified download sitting at a temporary path, ready
// for promotion or extraction. Hand-off is single-owner: the stager produces
// it, the extractor or promoter consumes it.
type StagedArtifact struct {
	Descriptor DownloadDescriptor
	TempPath   string
	Size       int64
	SHA256     string
}
