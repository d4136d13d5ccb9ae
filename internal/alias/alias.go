// Package alias implements shorthand expansion for the branch-deck CLI,
// letting a user define e.g. "branchdeck.alias.s = sync --branch main"
// in git config and invoke it as "branchdeck s".
package alias

import (
	"context"
	"slices"

	"github.com/buildkite/shellwords"

	"github.com/develar/branch-deck/internal/git"
)

// aliasPrefix is the config subsection aliases are stored under, e.g.
// "branchdeck.alias.s".
const aliasPrefix = "branchdeck.alias."

// Source expands a single argument into a longer argument list. An
// argument that is not a known alias returns ok=false.
type Source interface {
	Expand(arg string) (args []string, ok bool)
}

// ConfigSource reads alias definitions from git config.
type ConfigSource struct {
	aliases map[string][]string
}

// Load reads every "branchdeck.alias.*" entry from repo's configuration,
// parsing each value as a shell command line.
func Load(ctx context.Context, cfg *git.Config) (*ConfigSource, error) {
	src := &ConfigSource{aliases: make(map[string][]string)}
	for entry, err := range cfg.ListRegexp(ctx, "^branchdeck\\.alias\\.") {
		if err != nil {
			return nil, err
		}

		name := string(entry.Key)[len(aliasPrefix):]
		expanded, err := shellwords.SplitPosix(entry.Value)
		if err != nil {
			continue
		}
		src.aliases[name] = expanded
	}
	return src, nil
}

// Expand implements [Source].
func (s *ConfigSource) Expand(arg string) ([]string, bool) {
	expanded, ok := s.aliases[arg]
	return expanded, ok
}

// Expand rewrites args by substituting known aliases, repeating until no
// more expansions apply. A single alias name expands only once per
// occurrence, so an alias cannot expand into itself.
func Expand(src Source, args []string) []string {
	if len(args) == 0 {
		return args
	}

	seen := make(map[string]struct{})
	expanded, ok := src.Expand(args[0])
	for ok {
		seen[args[0]] = struct{}{}
		args = slices.Replace(args, 0, 1, expanded...)

		if len(args) == 0 {
			break
		}
		if _, done := seen[args[0]]; done {
			break
		}
		expanded, ok = src.Expand(args[0])
	}

	return args
}
