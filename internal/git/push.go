package git

import (
	"context"
	"errors"
	"fmt"
)

// PushOptions specifies options for [Repository.Push].
type PushOptions struct {
	// Remote to push to.
	Remote string

	// Refspec to push, e.g. "refs/heads/alice/feature-auth:refs/heads/alice/feature-auth".
	// If empty, the current branch is pushed.
	Refspec string

	// ForceWithLease, if non-empty, is the expected current value of
	// the remote ref (in the form accepted by
	// `--force-with-lease=<ref>:<expected>`). The Push Coordinator
	// always sets this rather than using a bare `--force`, so a push
	// race against upstream work fails loudly instead of discarding it.
	ForceWithLease string
}

// Push pushes objects and refs to a remote repository.
func (r *Repository) Push(ctx context.Context, opts PushOptions) error {
	if opts.Remote == "" {
		return errors.New("push: no remote specified")
	}

	args := []string{"push"}
	if opts.ForceWithLease != "" {
		args = append(args, "--force-with-lease="+opts.ForceWithLease)
	}
	args = append(args, opts.Remote)
	if opts.Refspec != "" {
		args = append(args, opts.Refspec)
	}

	if err := r.gitCmd(ctx, args...).Run(r.exec); err != nil {
		return fmt.Errorf("push: %w", err)
	}
	return nil
}
