package git

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
)

// LocalBranches lists local branches in the repository.
func (r *Repository) LocalBranches(ctx context.Context) ([]string, error) {
	cmd := r.gitCmd(ctx, "branch")
	out, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("git branch: %w", err)
	}

	if err := cmd.Start(r.exec); err != nil {
		return nil, fmt.Errorf("start git branch: %w", err)
	}

	var branches []string
	scan := bufio.NewScanner(out)
	for scan.Scan() {
		line := bytes.TrimSpace(scan.Bytes())
		if len(line) == 0 {
			continue
		}

		switch line[0] {
		case '(':
			continue // (HEAD detached at ...)
		case '*', '+':
			branches = append(branches, string(bytes.TrimSpace(line[1:])))
		default:
			branches = append(branches, string(line))
		}
	}

	if err := scan.Err(); err != nil {
		return nil, fmt.Errorf("read output: %w", err)
	}

	if err := cmd.Wait(r.exec); err != nil {
		return nil, fmt.Errorf("git branch: %w", err)
	}

	return branches, nil
}

// BranchesWithPrefix lists local branches whose name starts with prefix,
// stripped of that prefix. It backs the branch-list CLI helper and the
// archive detector's scan of `refs/heads/<userPrefix>/*`.
func (r *Repository) BranchesWithPrefix(ctx context.Context, prefix string) ([]string, error) {
	all, err := r.LocalBranches(ctx)
	if err != nil {
		return nil, err
	}

	var matched []string
	for _, b := range all {
		if rest, ok := strings.CutPrefix(b, prefix); ok {
			matched = append(matched, rest)
		}
	}
	return matched, nil
}

// ErrDetachedHead indicates that the repository is unexpectedly in
// detached HEAD state.
var ErrDetachedHead = errors.New("in detached HEAD state")

// CurrentBranch reports the current branch name.
// It returns [ErrDetachedHead] if the repository is in detached HEAD state.
func (r *Repository) CurrentBranch(ctx context.Context) (string, error) {
	name, err := r.gitCmd(ctx, "branch", "--show-current").OutputString(r.exec)
	if err != nil {
		return "", fmt.Errorf("git branch --show-current: %w", err)
	}
	name = strings.TrimSpace(name)
	if len(name) == 0 {
		return "", ErrDetachedHead
	}
	return name, nil
}

// CreateBranchRequest specifies the parameters for creating a new branch.
type CreateBranchRequest struct {
	Name string
	Head string // defaults to current HEAD
}

// CreateBranch creates a new branch. It fails if a branch with the same
// name already exists; the Cherry-pick Executor uses [Repository.SetRef]
// instead so that branch creation and update share one CAS-protected
// code path.
func (r *Repository) CreateBranch(ctx context.Context, req CreateBranchRequest) error {
	args := []string{"branch", req.Name}
	if req.Head != "" {
		args = append(args, req.Head)
	}
	if err := r.gitCmd(ctx, args...).Run(r.exec); err != nil {
		return fmt.Errorf("git branch: %w", err)
	}
	return nil
}

// BranchDeleteOptions specifies options for deleting a branch.
type BranchDeleteOptions struct {
	Force bool
}

// DeleteBranch deletes a branch from the repository. Used by the
// `deleteArchivedBranch` command to remove a branch whose upstream work
// has already landed on the integration branch.
func (r *Repository) DeleteBranch(ctx context.Context, branch string, opts BranchDeleteOptions) error {
	args := []string{"branch", "--delete"}
	if opts.Force {
		args = append(args, "--force")
	}
	args = append(args, branch)

	if err := r.gitCmd(ctx, args...).Run(r.exec); err != nil {
		return fmt.Errorf("git branch --delete: %w", err)
	}
	return nil
}

// BranchUpstream reports the upstream branch of a local branch, in the
// form "remote/branch". It returns [ErrNotExist] if the branch has no
// upstream configured -- the Baseline Resolver falls back to walking
// HEAD for the nearest unprefixed commit in that case.
func (r *Repository) BranchUpstream(ctx context.Context, branch string) (string, error) {
	upstream, err := r.gitCmd(ctx,
		"rev-parse",
		"--abbrev-ref",
		"--verify",
		"--quiet",
		"--end-of-options",
		branch+"@{upstream}",
	).OutputString(r.exec)
	if err != nil {
		return "", ErrNotExist
	}
	return upstream, nil
}
