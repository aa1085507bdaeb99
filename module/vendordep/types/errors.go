package types

import (
	"errors"
	"fmt"
)

// ParseErrorKind distinguishes why a manifest was rejected.
type ParseErrorKind string

const (
	// ParseMalformed covers invalid JSON and missing required fields.
	ParseMalformed ParseErrorKind = "malformed"
	// ParseUnsupportedSchema covers manifests declaring a schema revision
	// this tool does not understand.
	ParseUnsupportedSchema ParseErrorKind = "unsupported schema"
)

// ParseError reports a rejected manifest. Parsing has no side effects, so a
// ParseError never implies partial state anywhere.
type ParseError struct {
	Kind   ParseErrorKind
	Detail string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("manifest %s: %s: %v", e.Kind, e.Detail, e.Err)
	}
	return fmt.Sprintf("manifest %s: %s", e.Kind, e.Detail)
}

func (e *ParseError) Unwrap() error { return e.Err }

// LocatorError reports an artifact that cannot be resolved for the requested
// platform. It is non-fatal for the manifest: sibling artifacts still
// resolve.
type LocatorError struct {
	Manifest   string
	ArtifactID string
	Classifier string
	Declared   []string
}

func (e *LocatorError) Error() string {
	return fmt.Sprintf("%s:%s: no declared classifier matches platform %s (declared: %v)",
		e.Manifest, e.ArtifactID, e.Classifier, e.Declared)
}

// IsNoMatchingClassifier reports whether err is a LocatorError.
func IsNoMatchingClassifier(err error) bool {
	var le *LocatorError
	return errors.As(err, &le)
}

// FetchError reports a download failure for one candidate URL. Transient
// failures (connection errors, timeouts, 5xx) have already been retried by
// the transport before one surfaces here.
type FetchError struct {
	URL        string
	StatusCode int
	Transient  bool
	Truncated  bool
	Err        error
}

func (e *FetchError) Error() string {
	switch {
	case e.Truncated:
		return fmt.Sprintf("fetch %s: truncated transfer: %v", e.URL, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
	default:
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	}
}

func (e *FetchError) Unwrap() error { return e.Err }

// NotFound reports whether the failure was a plain 404, which lets the
// fetcher fall through to the next candidate repository.
func (e *FetchError) NotFound() bool { return e.StatusCode == 404 }

// IntegrityError reports a checksum or size mismatch detected before
// promotion. The staged temporary file is discarded, never promoted.
type IntegrityError struct {
	Path string
	Want string
	Got  string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("checksum mismatch for %s: want %s, got %s", e.Path, e.Want, e.Got)
}

// ExtractErrorKind distinguishes extraction failures.
type ExtractErrorKind string

const (
	// ExtractPathTraversal marks an archive entry that would resolve
	// outside the destination root.
	ExtractPathTraversal ExtractErrorKind = "path traversal"
	// ExtractCorruptArchive marks undecodable or truncated archive data.
	ExtractCorruptArchive ExtractErrorKind = "corrupt archive"
)

// ExtractError reports a failed extraction. The destination is never
// partially populated: extraction stages into a temporary tree and only a
// fully extracted tree is promoted.
type ExtractError struct {
	Kind  ExtractErrorKind
	Entry string
	Err   error
}

func (e *ExtractError) Error() string {
	if e.Entry != "" {
		return fmt.Sprintf("extract: %s: entry %q: %v", e.Kind, e.Entry, e.Err)
	}
	return fmt.Sprintf("extract: %s: %v", e.Kind, e.Err)
}

func (e *ExtractError) Unwrap() error { return e.Err }

// ConflictError reports two manifests that declare each other incompatible.
type ConflictError struct {
	Manifest string
	Other    string
	Message  string
}

func (e *ConflictError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("manifest %s conflicts with %s: %s", e.Manifest, e.Other, e.Message)
	}
	return fmt.Sprintf("manifest %s conflicts with %s", e.Manifest, e.Other)
}
