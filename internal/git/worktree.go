package git

import (
	"bytes"
	"context"
	"fmt"
	"iter"
	"strings"

	"github.com/develar/branch-deck/internal/scanutil"
	"github.com/develar/branch-deck/internal/silog"
)

// Worktree is a checkout of a Git repository at a specific path. Every
// worker in the Cherry-pick Executor's pool owns exactly one private
// Worktree, created lazily and reused across sync rounds.
type Worktree struct {
	gitDir  string
	rootDir string
	repo    *Repository

	log  *silog.Logger
	exec execer
}

func newWorktree(gitDir, rootDir string, repo *Repository, log *silog.Logger, exec execer) *Worktree {
	return &Worktree{gitDir: gitDir, rootDir: rootDir, repo: repo, log: log, exec: exec}
}

func (w *Worktree) gitCmd(ctx context.Context, args ...string) *gitCmd {
	return newGitCmd(ctx, w.log, args...).Dir(w.rootDir)
}

// RootDir returns the absolute path to the worktree's root directory.
func (w *Worktree) RootDir() string { return w.rootDir }

// Repository returns the repository this worktree belongs to.
func (w *Worktree) Repository() *Repository { return w.repo }

// OpenWorktree opens a worktree of this repository at the given directory.
func (r *Repository) OpenWorktree(ctx context.Context, dir string) (*Worktree, error) {
	out, err := r.gitCmd(ctx, "rev-parse", "--show-toplevel", "--absolute-git-dir").
		Dir(dir).
		OutputString(r.exec)
	if err != nil {
		return nil, fmt.Errorf("open worktree %s: %w", dir, err)
	}

	rootDir, gitDir, ok := strings.Cut(out, "\n")
	if !ok {
		return nil, fmt.Errorf("unexpected output from git rev-parse: %q", out)
	}
	return newWorktree(gitDir, rootDir, r, r.log, r.exec), nil
}

// AddWorktreeRequest specifies the parameters for creating a new linked
// worktree.
type AddWorktreeRequest struct {
	// Path is the directory to create the worktree at.
	Path string

	// Branch, if set, is checked out in the new worktree. It must name
	// an existing branch or commit; this request never creates a branch.
	Branch string

	// Detach checks out a detached HEAD at Branch instead of a branch.
	Detach bool
}

// AddWorktree creates a new linked worktree. Worker worktrees under
// ".git/branch-deck/worktrees/<n>" are created this way, once per
// worker, the first time the pool runs.
func (r *Repository) AddWorktree(ctx context.Context, req AddWorktreeRequest) (*Worktree, error) {
	args := []string{"worktree", "add"}
	if req.Detach {
		args = append(args, "--detach")
	}
	args = append(args, req.Path)
	if req.Branch != "" {
		args = append(args, req.Branch)
	}

	if err := r.gitCmd(ctx, args...).Run(r.exec); err != nil {
		return nil, fmt.Errorf("worktree add: %w", err)
	}

	return r.OpenWorktree(ctx, req.Path)
}

// RemoveWorktreeOptions configures [Repository.RemoveWorktree].
type RemoveWorktreeOptions struct {
	// Force removes the worktree even if it has local modifications.
	Force bool
}

// RemoveWorktree removes a linked worktree. The `worktrees prune`
// command uses this to remove every worker worktree.
func (r *Repository) RemoveWorktree(ctx context.Context, path string, opts RemoveWorktreeOptions) error {
	args := []string{"worktree", "remove"}
	if opts.Force {
		args = append(args, "--force")
	}
	args = append(args, path)

	if err := r.gitCmd(ctx, args...).Run(r.exec); err != nil {
		return fmt.Errorf("worktree remove: %w", err)
	}
	return nil
}

// WorktreeListItem represents one worktree associated with a repository.
type WorktreeListItem struct {
	Path         string
	Bare         bool
	Detached     bool
	LockedReason string
	Branch       string
	Head         Hash
}

// Worktrees lists the worktrees associated with the repository,
// including the main one.
func (r *Repository) Worktrees(ctx context.Context) iter.Seq2[*WorktreeListItem, error] {
	cmd := r.gitCmd(ctx, "worktree", "list", "--porcelain", "-z")
	return func(yield func(*WorktreeListItem, error) bool) {
		var item *WorktreeListItem
		for line, err := range cmd.Scan(r.exec, scanutil.SplitNull) {
			if err != nil {
				yield(nil, fmt.Errorf("worktree list: %w", err))
				return
			}

			if len(line) == 0 {
				if item != nil && !yield(item, nil) {
					return
				}
				item = nil
				continue
			}

			key, value, _ := bytes.Cut(line, []byte(" "))
			switch string(key) {
			case "worktree":
				item = &WorktreeListItem{Path: string(value)}
			case "detached":
				item.Detached = true
			case "bare":
				item.Bare = true
			case "branch":
				item.Branch = strings.TrimPrefix(string(value), "refs/heads/")
			case "HEAD":
				item.Head = Hash(value)
			case "locked":
				item.LockedReason = string(value)
			}
		}
	}
}

// DetachHead detaches HEAD from the current branch, staying at the same
// commit (or the given commitish).
func (w *Worktree) DetachHead(ctx context.Context, commitish string) error {
	args := []string{"checkout", "--detach"}
	if commitish != "" {
		args = append(args, commitish)
	}
	if err := w.gitCmd(ctx, args...).Run(w.exec); err != nil {
		return fmt.Errorf("git checkout --detach: %w", err)
	}
	return nil
}

// Checkout switches the worktree to the specified branch.
func (w *Worktree) Checkout(ctx context.Context, branch string) error {
	if err := w.gitCmd(ctx, "checkout", branch).Run(w.exec); err != nil {
		return fmt.Errorf("git checkout %s: %w", branch, err)
	}
	return nil
}

// Head reports the commit this worktree's HEAD currently points to.
// Unlike [Repository.PeelToCommit], this resolves HEAD in the
// worktree's own directory -- required after a worker has detached and
// reset its private worktree, since HEAD is worktree-local state.
func (w *Worktree) Head(ctx context.Context) (Hash, error) {
	return w.peelToCommit(ctx, "HEAD")
}

// ResetMode specifies the mode used by [Worktree.Reset].
type ResetMode int

// Reset modes, mirroring `git reset --<mode>`.
const (
	ResetMixed ResetMode = iota
	ResetHard
	ResetSoft
)

func (m ResetMode) flag() string {
	switch m {
	case ResetHard:
		return "--hard"
	case ResetSoft:
		return "--soft"
	default:
		return "--mixed"
	}
}

// Reset resets the worktree's HEAD, and optionally its index and
// working tree, to the given commit. Workers use ResetHard to rewind to
// the round's baseline before replaying a branch's commits.
func (w *Worktree) Reset(ctx context.Context, commit string, mode ResetMode) error {
	if err := w.gitCmd(ctx, "reset", mode.flag(), commit).Run(w.exec); err != nil {
		return fmt.Errorf("git reset %s %s: %w", mode.flag(), commit, err)
	}
	return nil
}

// WriteIndexTree writes the current index to a new tree object and
// returns its hash.
func (w *Worktree) WriteIndexTree(ctx context.Context) (Hash, error) {
	out, err := w.gitCmd(ctx, "write-tree").OutputString(w.exec)
	if err != nil {
		return ZeroHash, fmt.Errorf("write-tree: %w", err)
	}
	return Hash(out), nil
}

// UnmergedFile is one stage of a conflicted path in the index, as
// reported by `git ls-files --unmerged`.
type UnmergedFile struct {
	Mode   Mode
	Object Hash
	Stage  ConflictStage
	Path   string
}

// ListUnmergedFiles lists the conflicted index entries left behind by a
// failed cherry-pick, one entry per (path, stage) pair. The Conflict
// Analyzer groups these by path to build each [FileConflict]'s
// base/ours/theirs blob references.
func (w *Worktree) ListUnmergedFiles(ctx context.Context) ([]UnmergedFile, error) {
	cmd := w.gitCmd(ctx, "ls-files", "--unmerged", "-z")

	var files []UnmergedFile
	for line, err := range cmd.Scan(w.exec, scanutil.SplitNull) {
		if err != nil {
			return nil, fmt.Errorf("ls-files --unmerged: %w", err)
		}
		if len(line) == 0 {
			continue
		}

		f, err := parseUnmergedFile(string(line))
		if err != nil {
			return nil, fmt.Errorf("parse ls-files entry %q: %w", line, err)
		}
		files = append(files, f)
	}
	return files, nil
}

// parseUnmergedFile parses a single line of `ls-files --unmerged`
// output, in the form "<mode> SP <object> SP <stage> TAB <path>".
func parseUnmergedFile(line string) (UnmergedFile, error) {
	modeStr, rest, ok := strings.Cut(line, " ")
	if !ok {
		return UnmergedFile{}, fmt.Errorf("expected <mode>, got %q", line)
	}
	mode, err := ParseMode(modeStr)
	if err != nil {
		return UnmergedFile{}, fmt.Errorf("invalid mode %q: %w", modeStr, err)
	}

	objectStr, rest, ok := strings.Cut(rest, " ")
	if !ok {
		return UnmergedFile{}, fmt.Errorf("expected <object>, got %q", line)
	}

	stageStr, path, ok := strings.Cut(rest, "\t")
	if !ok {
		return UnmergedFile{}, fmt.Errorf("expected <stage> and <path>, got %q", line)
	}
	stage, err := parseConflictStage(stageStr)
	if err != nil {
		return UnmergedFile{}, err
	}

	return UnmergedFile{
		Mode:   mode,
		Object: Hash(objectStr),
		Stage:  stage,
		Path:   path,
	}, nil
}
