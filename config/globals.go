package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/frctools/vendordep/util/common/errors"
)

// GlobalFlags contains common flags used across commands
type GlobalFlags struct {
	ConfigPath string
	StoreRoot  string
	Debug      bool
	JSONLogs   bool
}

// Global is the shared instance of GlobalFlags
var Global = GlobalFlags{}

// FileConfig is the optional on-disk tool configuration, discovered at
// ~/.config/vendordep/config.yaml unless --config points elsewhere.
type FileConfig struct {
	StoreRoot   string   `yaml:"storeRoot"`
	Concurrency int      `yaml:"concurrency"`
	ExtraRepos  []string `yaml:"extraRepos"`
	// RetryMax overrides the transport's retry budget for transient
	// download failures. Zero keeps the built-in default.
	RetryMax int `yaml:"retryMax"`
}

// DefaultPath returns the conventional config file location.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "vendordep", "config.yaml")
}

// DefaultStoreRoot returns where dependencies land when no store root is
// configured.
func DefaultStoreRoot() string {
	return "vendordeps_store"
}

// Load reads the file config at path. A missing file is not an error; an
// unreadable or invalid one is.
func Load(path string) (*FileConfig, error) {
	cfg := &FileConfig{}
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, errors.NewFileError(path, "read", err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, errors.Wrap(err, "parse config "+path)
	}
	return cfg, nil
}
