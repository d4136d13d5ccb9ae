// Package diskconfig loads branch-deck's optional ".branchdeck.yml"
// file, which holds per-repository defaults that are awkward to store
// as single git config values (e.g. ignore patterns).
//
// Configuration merging: zero values (0, "", nil) in the file are
// treated as "not set" and the caller's defaults are kept. This allows
// partial configuration files, with the limitation that a field cannot
// be explicitly set to its zero value.
package diskconfig

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/develar/branch-deck/internal/cmputil"
)

// FileName is the name of the configuration file, read from the
// repository's worktree root.
const FileName = ".branchdeck.yml"

// Config holds optional per-repository defaults.
type Config struct {
	// Workers overrides the default cherry-pick worker pool size.
	Workers int `yaml:"workers"`

	// IgnorePrefixes lists prefix tags that "sync" should never turn
	// into a branch, e.g. "wip" commits kept local on purpose.
	IgnorePrefixes []string `yaml:"ignorePrefixes"`

	// SlugMaxLength overrides [branchdeck.DefaultSlugMaxLength] for the
	// default branch namer.
	SlugMaxLength int `yaml:"slugMaxLength"`
}

// Load reads and parses FileName from dir. A missing file is not an
// error; it returns a zero Config.
func Load(dir string) (Config, error) {
	data, err := os.ReadFile(filepath.Join(dir, FileName))
	if errors.Is(err, os.ErrNotExist) {
		return Config{}, nil
	}
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Merge overlays non-zero fields from override onto base, returning the
// result. Used to apply file-based defaults without clobbering values
// already set some other way (flags, git config).
func Merge(base, override Config) Config {
	if !cmputil.Zero(override.Workers) {
		base.Workers = override.Workers
	}
	if len(override.IgnorePrefixes) != 0 {
		base.IgnorePrefixes = override.IgnorePrefixes
	}
	if !cmputil.Zero(override.SlugMaxLength) {
		base.SlugMaxLength = override.SlugMaxLength
	}
	return base
}
