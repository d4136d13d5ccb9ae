package git

import (
	"context"
	"errors"
	"fmt"
)

// CherryPickInterruptedError indicates that a cherry-pick could not be
// applied cleanly, either because of conflicts or because it would
// introduce no change. The Conflict Analyzer is invoked whenever a
// worker's cherry-pick fails with this error.
type CherryPickInterruptedError struct {
	// Commit is the hash of the commit that could not be applied.
	Commit Hash

	// Err is the original error reported by the subprocess.
	Err error
}

func (e *CherryPickInterruptedError) Error() string {
	return fmt.Sprintf("cherry-pick %v interrupted", e.Commit.Short())
}

func (e *CherryPickInterruptedError) Unwrap() error { return e.Err }

// CherryPickRequest is a request to cherry-pick a single commit into
// the worktree's current HEAD. The executor always picks one commit at
// a time (never a range) so that a conflict can be attributed to the
// exact commit that produced it.
type CherryPickRequest struct {
	// Commit to cherry-pick.
	Commit Hash

	// AllowEmpty permits cherry-picking a commit whose diff, once
	// replayed on top of the current tree, produces no change -- the
	// "empty cherry-pick is accepted" edge case.
	AllowEmpty bool
}

// CherryPick cherry-picks a single commit into the current HEAD,
// re-creating it unsigned with the original author but a fresh
// committer identity and time.
//
// Returns [*CherryPickInterruptedError] if the commit could not be
// applied cleanly; the worktree is left with the conflicted index in
// place for the Conflict Analyzer to inspect.
func (w *Worktree) CherryPick(ctx context.Context, req CherryPickRequest) error {
	args := []string{"cherry-pick", "--no-gpg-sign"}
	if req.AllowEmpty {
		args = append(args, "--allow-empty", "--keep-redundant-commits")
	}
	args = append(args, req.Commit.String())

	err := w.gitCmd(ctx, args...).Run(w.exec)
	return w.handleCherryPickError(ctx, req.Commit, err)
}

// CherryPickAbort aborts an in-progress cherry-pick, restoring the
// worktree to the state before it began.
func (w *Worktree) CherryPickAbort(ctx context.Context) error {
	if err := w.gitCmd(ctx, "cherry-pick", "--abort").Run(w.exec); err != nil {
		return fmt.Errorf("cherry-pick --abort: %w", err)
	}
	return nil
}

func (w *Worktree) handleCherryPickError(ctx context.Context, commit Hash, err error) error {
	if err == nil {
		return nil
	}
	if !IsExitError(err) {
		return fmt.Errorf("cherry-pick %s: %w", commit.Short(), err)
	}

	// A conflicted or empty cherry-pick leaves CHERRY_PICK_HEAD
	// pointing at the commit that could not be applied. This must be
	// resolved in the worktree's own directory: CHERRY_PICK_HEAD is
	// worktree-private state, not shared across the repository's
	// worktrees.
	head, peelErr := w.peelToCommit(ctx, "CHERRY_PICK_HEAD")
	if peelErr != nil {
		if errors.Is(peelErr, ErrNotExist) {
			return fmt.Errorf("cherry-pick %s: %w", commit.Short(), err)
		}
		return errors.Join(
			fmt.Errorf("resolve CHERRY_PICK_HEAD: %w", peelErr),
			fmt.Errorf("cherry-pick %s: %w", commit.Short(), err),
		)
	}

	return &CherryPickInterruptedError{Commit: head, Err: err}
}

func (w *Worktree) peelToCommit(ctx context.Context, ref string) (Hash, error) {
	out, err := w.gitCmd(ctx,
		"rev-parse", "--verify", "--quiet", "--end-of-options", ref+"^{commit}",
	).OutputString(w.exec)
	if err != nil {
		return "", ErrNotExist
	}
	return Hash(out), nil
}
