package git

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/develar/branch-deck/internal/silog"
)

// OpenOptions configures the behavior of Open.
type OpenOptions struct {
	// Log specifies the logger to use for messages.
	// Stderr of every git subprocess is logged at debug level under it.
	Log *silog.Logger

	exec execer
}

// Open opens the repository at the given directory, resolving its
// worktree root and git directory via `git rev-parse`.
// If dir is empty, the current working directory is used.
func Open(ctx context.Context, dir string, opts OpenOptions) (*Repository, error) {
	if opts.exec == nil {
		opts.exec = _realExec
	}
	if opts.Log == nil {
		opts.Log = silog.New(io.Discard, nil)
	}

	out, err := newGitCmd(ctx, opts.Log,
		"rev-parse",
		"--show-toplevel",
		"--absolute-git-dir",
	).Dir(dir).OutputString(opts.exec)
	if err != nil {
		return nil, fmt.Errorf("not a git repository: %w", err)
	}

	root, gitDir, ok := strings.Cut(out, "\n")
	if !ok {
		return nil, fmt.Errorf("unexpected output from git rev-parse: %q", out)
	}

	return newRepository(root, gitDir, opts.Log, opts.exec), nil
}

// Repository is a handle to a Git repository. It is the concrete
// implementation of the GitExecutor capability the sync engine depends on:
// every method shells out to a single `git` subprocess and translates its
// exit status into a Go error.
type Repository struct {
	root   string
	gitDir string

	log  *silog.Logger
	exec execer
}

func newRepository(root, gitDir string, log *silog.Logger, exec execer) *Repository {
	return &Repository{
		root:   root,
		gitDir: gitDir,
		log:    log,
		exec:   exec,
	}
}

// Root returns the absolute path to the repository's worktree root.
func (r *Repository) Root() string { return r.root }

// GitDir returns the absolute path to the repository's git directory.
// For a linked worktree this is the worktree-private git directory, not
// the common one; use [Repository.CommonDir] for the shared one.
func (r *Repository) GitDir() string { return r.gitDir }

// CommonDir returns the shared git directory, even when called on a
// linked worktree.
func (r *Repository) CommonDir(ctx context.Context) (string, error) {
	out, err := r.gitCmd(ctx, "rev-parse", "--git-common-dir").OutputString(r.exec)
	if err != nil {
		return "", fmt.Errorf("git-common-dir: %w", err)
	}
	return out, nil
}

// gitCmd returns a gitCmd that will run with the repository's root as the
// working directory.
func (r *Repository) gitCmd(ctx context.Context, args ...string) *gitCmd {
	return newGitCmd(ctx, r.log, args...).Dir(r.root)
}
