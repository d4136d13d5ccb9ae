package git

import (
	"context"
	"fmt"
	"iter"
	"strings"
)

// ListRemotes returns the names of remotes configured for the repository.
func (r *Repository) ListRemotes(ctx context.Context) ([]string, error) {
	var remotes []string
	for line, err := range r.gitCmd(ctx, "remote").ScanLines(r.exec) {
		if err != nil {
			return nil, fmt.Errorf("git remote: %w", err)
		}
		remotes = append(remotes, string(line))
	}
	return remotes, nil
}

// RemoteURL reports the URL of a known Git remote.
func (r *Repository) RemoteURL(ctx context.Context, remote string) (string, error) {
	url, err := r.gitCmd(ctx, "remote", "get-url", remote).OutputString(r.exec)
	if err != nil {
		return "", fmt.Errorf("remote get-url %s: %w", remote, err)
	}
	return url, nil
}

// RemoteDefaultBranch reports the default branch of a remote, e.g.
// "main". The remote's HEAD symref must have been set (typically by
// `git remote set-head <remote> -a`, which `git clone` does
// automatically).
func (r *Repository) RemoteDefaultBranch(ctx context.Context, remote string) (string, error) {
	ref, err := r.gitCmd(ctx, "symbolic-ref", "--short", "refs/remotes/"+remote+"/HEAD").
		OutputString(r.exec)
	if err != nil {
		return "", fmt.Errorf("symbolic-ref: %w", err)
	}
	return strings.TrimPrefix(ref, remote+"/"), nil
}

// RemoteRef is a reference in a remote Git repository.
type RemoteRef struct {
	// Name is the full name of the reference, e.g. "refs/heads/main".
	Name string

	// Hash is the object the reference points to.
	Hash Hash
}

// ListRemoteRefsOptions controls [Repository.ListRemoteRefs].
type ListRemoteRefsOptions struct {
	// Heads restricts the listing to refs under refs/heads.
	Heads bool

	// Patterns additionally filters ref names.
	Patterns []string
}

// ListRemoteRefs lists references in a remote repository without
// fetching, via `git ls-remote`. The Push Coordinator uses this to
// determine remote status (exists / ahead / behind) before pushing.
func (r *Repository) ListRemoteRefs(ctx context.Context, remote string, opts *ListRemoteRefsOptions) iter.Seq2[RemoteRef, error] {
	if opts == nil {
		opts = &ListRemoteRefsOptions{}
	}

	args := []string{"ls-remote", "--quiet"}
	if opts.Heads {
		args = append(args, "--heads")
	}
	args = append(args, remote)
	args = append(args, opts.Patterns...)

	return func(yield func(RemoteRef, error) bool) {
		for line, err := range r.gitCmd(ctx, args...).ScanLines(r.exec) {
			if err != nil {
				yield(RemoteRef{}, fmt.Errorf("git ls-remote: %w", err))
				return
			}

			oid, ref, ok := strings.Cut(string(line), "\t")
			if !ok {
				r.log.Warn("bad ls-remote output", "line", string(line))
				continue
			}

			if !yield(RemoteRef{Name: ref, Hash: Hash(oid)}, nil) {
				return
			}
		}
	}
}

// remoteHeadRef reports the hash a single-ref `ls-remote` query
// resolves to, or [ErrNotExist] if the remote has no such ref.
func (r *Repository) remoteHeadRef(ctx context.Context, remote, ref string) (Hash, error) {
	for rr, err := range r.ListRemoteRefs(ctx, remote, &ListRemoteRefsOptions{Patterns: []string{ref}}) {
		if err != nil {
			return "", err
		}
		return rr.Hash, nil
	}
	return "", ErrNotExist
}
