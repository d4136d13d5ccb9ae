package git

import (
	"context"
	"errors"
	"fmt"

	"github.com/develar/branch-deck/internal/silog"
)

// FetchOptions specifies parameters for [Repository.Fetch].
type FetchOptions struct {
	// Remote to fetch from. If empty, Refspecs must be non-empty.
	Remote string

	// Refspecs to fetch, e.g. "refs/heads/main:refs/remotes/origin/main".
	Refspecs []string
}

// Fetch fetches objects and refs from a remote repository. The Push
// Coordinator fetches before computing [RemoteStatus] so that "commits
// behind" reflects the remote's current state, not a stale one.
func (r *Repository) Fetch(ctx context.Context, opts FetchOptions) error {
	if opts.Remote == "" && len(opts.Refspecs) == 0 {
		return errors.New("fetch: no remote or refspecs specified")
	}

	r.log.Debug("fetching from remote", silog.NonZero("name", opts.Remote))

	args := []string{"fetch"}
	if opts.Remote != "" {
		args = append(args, opts.Remote)
	}
	args = append(args, opts.Refspecs...)

	if err := r.gitCmd(ctx, args...).Run(r.exec); err != nil {
		return fmt.Errorf("fetch: %w", err)
	}
	return nil
}
