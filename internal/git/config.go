package git

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"iter"

	"github.com/develar/branch-deck/internal/scanutil"
	"github.com/develar/branch-deck/internal/silog"
)

// UserPrefixKey is the git config key under which the per-repository
// user prefix is stored, e.g. "branchdeck.userprefix = alice".
const UserPrefixKey ConfigKey = "branchdeck.userPrefix"

// Config provides access to Git configuration for a repository.
type Config struct {
	log  *silog.Logger
	dir  string
	env  []string
	exec execer
}

// ConfigOptions configures the behavior of a [Config].
type ConfigOptions struct {
	// Dir specifies the directory to run Git commands in. Defaults to
	// the current working directory if empty.
	Dir string

	// Env specifies additional environment variables to set when
	// running Git commands.
	Env []string

	// Log used for logging messages. If nil, no messages are logged.
	Log *silog.Logger

	exec execer
}

// NewConfig builds a new [Config] for accessing Git configuration.
func NewConfig(opts ConfigOptions) *Config {
	exec := opts.exec
	if exec == nil {
		exec = _realExec
	}
	if opts.Log == nil {
		opts.Log = silog.New(io.Discard, nil)
	}

	return &Config{log: opts.Log, dir: opts.Dir, env: opts.Env, exec: exec}
}

// Config returns a [Config] scoped to this repository's root.
func (r *Repository) Config() *Config {
	return &Config{log: r.log, dir: r.root, exec: r.exec}
}

// ConfigKey is divided into up to three parts: section.subsection.name.
// subsection may be absent. section and name are case-insensitive;
// subsection is case-sensitive.
type ConfigKey string

func (k ConfigKey) String() string { return string(k) }

// ConfigEntry is a single key-value pair in Git configuration.
type ConfigEntry struct {
	Key   ConfigKey
	Value string
}

// Get returns the value of a single configuration key. It returns
// [ErrNotExist] if the key is unset.
func (cfg *Config) Get(ctx context.Context, key ConfigKey) (string, error) {
	out, err := newGitCmd(ctx, cfg.log, "config", "--get", key.String()).
		Dir(cfg.dir).
		AppendEnv(cfg.env...).
		OutputString(cfg.exec)
	if err != nil {
		return "", ErrNotExist
	}
	return out, nil
}

// Set writes a single configuration key.
func (cfg *Config) Set(ctx context.Context, key ConfigKey, value string) error {
	err := newGitCmd(ctx, cfg.log, "config", key.String(), value).
		Dir(cfg.dir).
		AppendEnv(cfg.env...).
		Run(cfg.exec)
	if err != nil {
		return fmt.Errorf("git config %s: %w", key, err)
	}
	return nil
}

// ListRegexp lists all configuration entries whose key matches pattern.
// If pattern is empty, '.' is used to match all entries. The alias
// loader uses this to read every branchdeck.alias.* entry.
func (cfg *Config) ListRegexp(ctx context.Context, pattern string) iter.Seq2[ConfigEntry, error] {
	if pattern == "" {
		pattern = "."
	}
	return cfg.list(ctx, "--get-regexp", pattern)
}

func (cfg *Config) list(ctx context.Context, args ...string) iter.Seq2[ConfigEntry, error] {
	args = append([]string{"config", "--null"}, args...)
	cmd := newGitCmd(ctx, cfg.log, args...).Dir(cfg.dir).AppendEnv(cfg.env...)

	return func(yield func(ConfigEntry, error) bool) {
		for entry, err := range cmd.Scan(cfg.exec, scanutil.SplitNull) {
			if err != nil {
				// git-config exits non-zero when there are no matches;
				// that's not a failure for an iteration with no entries.
				if IsExitError(err) {
					return
				}
				yield(ConfigEntry{}, fmt.Errorf("git config: %w", err))
				return
			}

			key, value, ok := bytes.Cut(entry, []byte{'\n'})
			if !ok {
				cfg.log.Warn("skipping invalid config entry", "entry", string(entry))
				continue
			}

			if !yield(ConfigEntry{Key: ConfigKey(key), Value: string(value)}, nil) {
				return
			}
		}
	}
}
