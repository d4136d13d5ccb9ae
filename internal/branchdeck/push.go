package branchdeck

import (
	"context"
	"errors"
	"fmt"

	"github.com/develar/branch-deck/internal/git"
)

// maxUnpushedCommits bounds how many commits [ResolveRemoteStatus] lists
// in RemoteStatus.UnpushedCommits, per spec.
const maxUnpushedCommits = 500

// PushRequest specifies a single branch to push after a sync round.
type PushRequest struct {
	Remote   string
	FullName string // "alice/feature-auth"
	Tip      git.Hash
}

// ResolveRemoteStatus fetches remote, then reports how a branch's
// current tip compares to the remote's copy of the same ref. The Push
// Coordinator calls this before every push so a stale local view of the
// remote never causes a force-with-lease push to clobber upstream work.
// myEmail is used to compute MyUnpushedCount, the subset of
// UnpushedCommits this caller authored.
func ResolveRemoteStatus(ctx context.Context, repo *git.Repository, remote, fullName string, localTip git.Hash, myEmail string) (RemoteStatus, error) {
	if err := repo.Fetch(ctx, git.FetchOptions{Remote: remote}); err != nil {
		return RemoteStatus{}, NewIoError("fetch before push", err)
	}

	ref := "refs/heads/" + fullName
	remoteHash, err := findRemoteRef(ctx, repo, remote, ref)
	if err != nil {
		return RemoteStatus{}, NewIoError("resolve remote ref", err)
	}

	status := RemoteStatus{FullName: fullName}
	if remoteHash.IsZero() {
		status.Exists = false
		return status, nil
	}
	status.Exists = true

	unpushed, behind, err := divergence(ctx, repo, remoteHash, localTip)
	if err != nil {
		return RemoteStatus{}, err
	}
	status.Behind = behind
	status.Ahead = len(unpushed)
	status.UnpushedCommits = unpushed
	for _, c := range unpushed {
		if c.AuthorEmail == myEmail {
			status.MyUnpushedCount++
		}
	}
	return status, nil
}

func findRemoteRef(ctx context.Context, repo *git.Repository, remote, ref string) (git.Hash, error) {
	for rr, err := range repo.ListRemoteRefs(ctx, remote, &git.ListRemoteRefsOptions{Patterns: []string{ref}}) {
		if err != nil {
			return "", err
		}
		if rr.Name == ref {
			return rr.Hash, nil
		}
	}
	return git.ZeroHash, nil
}

// divergence reports the commits on localTip not on remoteTip (oldest
// first, bounded to maxUnpushedCommits), and the count of commits on
// remoteTip not on localTip.
func divergence(ctx context.Context, repo *git.Repository, remoteTip, localTip git.Hash) ([]CommitRef, int, error) {
	base, err := repo.MergeBase(ctx, remoteTip.String(), localTip.String())
	if err != nil {
		return nil, 0, NewIoError("merge-base for remote divergence", err)
	}

	aheadInfos, err := repo.ListCommits(ctx, git.ListCommitsRequest{Start: localTip.String(), Stop: base.String()})
	if err != nil {
		return nil, 0, NewIoError("list commits ahead of remote", err)
	}
	behindCommits, err := repo.ListCommits(ctx, git.ListCommitsRequest{Start: remoteTip.String(), Stop: base.String()})
	if err != nil {
		return nil, 0, NewIoError("list commits behind remote", err)
	}

	// aheadInfos is newest first (rev-list order); unpushedCommits reads
	// oldest first, and is bounded rather than silently unbounded for
	// branches with a long unpushed tail.
	if len(aheadInfos) > maxUnpushedCommits {
		aheadInfos = aheadInfos[:maxUnpushedCommits]
	}
	unpushed := make([]CommitRef, len(aheadInfos))
	for i, info := range aheadInfos {
		c := ParseCommit(info)
		unpushed[len(aheadInfos)-1-i] = CommitRef{
			Hash:            c.Hash,
			StrippedSubject: c.StrippedSubject,
			AuthorEmail:     c.Author.Email,
			AuthorTime:      c.Author.Time,
		}
	}

	return unpushed, len(behindCommits), nil
}

// Push force-with-lease pushes req's branch to req.Remote, expecting
// the remote's current tip to match status.Exists/the last-observed
// hash -- a push race where the remote moved since [ResolveRemoteStatus]
// ran is rejected by Git itself, not silently overwritten.
func Push(ctx context.Context, repo *git.Repository, req PushRequest, status RemoteStatus) error {
	if status.Behind > 0 {
		return NewUserError("refusing to push %s: %d commits behind remote, pull first", req.FullName, status.Behind)
	}

	ref := "refs/heads/" + req.FullName
	refspec := fmt.Sprintf("%s:%s", ref, ref)

	lease := ref + ":"
	if status.Exists {
		remoteHash, err := findRemoteRef(ctx, repo, req.Remote, ref)
		if err != nil {
			return NewIoError("resolve remote ref before push", err)
		}
		lease += remoteHash.String()
	}

	err := repo.Push(ctx, git.PushOptions{
		Remote:         req.Remote,
		Refspec:        refspec,
		ForceWithLease: lease,
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return &Cancelled{Err: err}
		}
		return NewIoError(fmt.Sprintf("push %s", req.FullName), err)
	}
	return nil
}
