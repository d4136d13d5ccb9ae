package git

import (
	"context"
	"fmt"
)

// SetRefRequest is a request to set a ref to a new hash.
type SetRefRequest struct {
	// Ref is the fully-qualified name of the ref to set, e.g.
	// "refs/heads/alice/feature-auth".
	Ref string

	// Hash is the hash to set the ref to.
	Hash Hash

	// OldHash, if set, specifies the current value of the ref. The
	// update is rejected if the ref does not currently point to
	// OldHash -- this is the compare-and-swap the Cherry-pick Executor
	// relies on so that two workers racing on the same branch ref
	// never clobber each other's work. Set to ZeroHash to require that
	// a ref being created does not already exist.
	OldHash Hash
}

// SetRef changes the value of a ref, optionally verifying its prior
// value first.
func (r *Repository) SetRef(ctx context.Context, req SetRefRequest) error {
	args := []string{"update-ref", req.Ref, string(req.Hash)}
	if req.OldHash != "" {
		args = append(args, string(req.OldHash))
	}

	if err := r.gitCmd(ctx, args...).Run(r.exec); err != nil {
		return fmt.Errorf("update-ref %s: %w", req.Ref, err)
	}
	return nil
}

// DeleteRef removes a ref entirely.
func (r *Repository) DeleteRef(ctx context.Context, ref string) error {
	if err := r.gitCmd(ctx, "update-ref", "-d", ref).Run(r.exec); err != nil {
		return fmt.Errorf("update-ref -d %s: %w", ref, err)
	}
	return nil
}
