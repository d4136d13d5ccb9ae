package branchdeck

import (
	"context"
	"errors"

	"github.com/develar/branch-deck/internal/git"
)

// ResolveBaseline finds the commit every branch plan in a round is
// cherry-picked onto. Resolution order:
//
//  1. If integrationBranch has an upstream configured, the merge-base
//     of integrationBranch and that upstream.
//  2. Otherwise, the nearest ancestor of integrationBranch whose
//     subject carries no prefix tag -- the last commit that looks like
//     it landed directly on the integration branch rather than through
//     branch-deck.
//  3. Otherwise (every reachable commit is tagged, or the branch has no
//     upstream and no unprefixed ancestor), the root commit.
//
// Returns [NoBaseline] if integrationBranch has no commits at all.
func ResolveBaseline(ctx context.Context, repo *git.Repository, integrationBranch string) (git.Hash, error) {
	if upstream, err := repo.BranchUpstream(ctx, integrationBranch); err == nil {
		base, err := repo.MergeBase(ctx, integrationBranch, upstream)
		if err == nil {
			return base, nil
		}
		if !errors.Is(err, git.ErrNotExist) {
			return "", NewRepositoryError("merge-base with upstream", err)
		}
		// Fall through to the ancestor walk: upstream and
		// integrationBranch share no history (e.g. upstream was force
		// pushed to an unrelated tip).
	} else if !errors.Is(err, git.ErrNotExist) {
		return "", NewRepositoryError("resolve upstream", err)
	}

	infos, err := repo.ListCommits(ctx, git.ListCommitsRequest{Start: integrationBranch})
	if err != nil {
		return "", NewRepositoryError("list commits", err)
	}
	if len(infos) == 0 {
		return "", NoBaseline
	}

	for _, info := range infos {
		c := ParseCommit(info)
		if c.Prefix == nil {
			return c.Hash, nil
		}
	}

	// Every reachable commit is tagged: fall back to the root, the
	// oldest commit in the walk.
	return infos[len(infos)-1].Hash, nil
}
