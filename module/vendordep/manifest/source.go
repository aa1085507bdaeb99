package manifest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Source provides raw manifest bytes by name. The resolve-and-fetch core
// only ever needs this one capability; where manifests come from (checked-in
// files, vendor URLs, test fixtures) is the caller's business.
type Source interface {
	Fetch(ctx context.Context, name string) ([]byte, error)
}

// FileSource reads manifests from a directory, resolving bare names against
// it and absolute or relative paths as-is.
type FileSource struct {
	Dir string
}

func (s FileSource) Fetch(_ context.Context, name string) ([]byte, error) {
	path := name
	if !filepath.IsAbs(path) && !strings.ContainsRune(path, os.PathSeparator) {
		path = filepath.Join(s.Dir, name)
	}
	return os.ReadFile(path)
}

// HTTPSource fetches manifest documents from vendor URLs.
type HTTPSource struct {
	Client *http.Client
}

func (s HTTPSource) Fetch(ctx context.Context, url string) ([]byte, error) {
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch manifest %s: unexpected status %d", url, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// BytesSource serves manifests from memory. Test fixtures mostly.
type BytesSource map[string][]byte

func (s BytesSource) Fetch(_ context.Context, name string) ([]byte, error) {
	raw, ok := s[name]
	if !ok {
		return nil, fmt.Errorf("manifest %q not found", name)
	}
	return raw, nil
}

// AutoSource dispatches per reference: URLs go through HTTP, everything
// else is treated as a file path.
type AutoSource struct {
	HTTP HTTPSource
	File FileSource
}

func (s AutoSource) Fetch(ctx context.Context, ref string) ([]byte, error) {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return s.HTTP.Fetch(ctx, ref)
	}
	return s.File.Fetch(ctx, ref)
}
