package branchdeck

import (
	"context"
	"errors"
	"time"

	"github.com/develar/branch-deck/internal/git"
)

// ArchiveCandidate is a branch whose commits are already present on the
// integration branch's upstream -- by tree and stripped subject, not by
// commit hash, since the upstream's copy was itself produced by a
// rebase/cherry-pick/squash-merge and will never share a hash with the
// original.
type ArchiveCandidate struct {
	Prefix   string
	FullName string
	Tip      git.Hash

	// IntegratedAt is the committer time of the upstream commit that
	// matched this branch's most recently landed commit.
	IntegratedAt time.Time

	// MergeTargetHash is the upstream tip the scan was run against.
	MergeTargetHash git.Hash
}

// DetectArchivable scans the user's namespace of branches
// (refs/heads/<userPrefix>/*) for ones whose entire ordered commit set
// is already present on integrationBranch's upstream tracking branch:
// every commit's (tree, stripped subject) pair appears among the
// upstream's commits. Branches whose prefix is in planPrefixes --
// actively being rewritten this round -- are never archive candidates.
//
// The Sync Service runs this before the Cherry-pick Executor starts, so
// the scan sees refs as they were at the start of the round. The
// upstream's commits are listed once up front; each branch's tip is
// read as the scan reaches it.
func DetectArchivable(ctx context.Context, repo *git.Repository, userPrefix, integrationBranch string, planPrefixes []string) ([]ArchiveCandidate, error) {
	upstream, err := repo.BranchUpstream(ctx, integrationBranch)
	if err != nil {
		if errors.Is(err, git.ErrNotExist) {
			return nil, nil // no upstream configured: nothing can be archived yet
		}
		return nil, NewRepositoryError("resolve upstream for archive scan", err)
	}

	upstreamTip, err := repo.PeelToCommit(ctx, upstream)
	if err != nil {
		return nil, NewRepositoryError("resolve upstream tip for archive scan", err)
	}

	upstreamInfos, err := repo.ListCommits(ctx, git.ListCommitsRequest{Start: upstream})
	if err != nil {
		return nil, NewRepositoryError("list upstream commits for archive scan", err)
	}

	landed := make(map[string]Commit, len(upstreamInfos))
	for _, info := range upstreamInfos {
		c := ParseCommit(info)
		if c.IsMerge() {
			continue // merges never appear on the rewritten branch either
		}
		landed[landedKey(c)] = c
	}

	inPlan := make(map[string]struct{}, len(planPrefixes))
	for _, p := range planPrefixes {
		inPlan[p] = struct{}{}
	}

	prefixes, err := repo.BranchesWithPrefix(ctx, userPrefix+"/")
	if err != nil {
		return nil, NewRepositoryError("list user-prefixed branches", err)
	}

	var candidates []ArchiveCandidate
	for _, prefix := range prefixes {
		if _, ok := inPlan[prefix]; ok {
			continue // actively rewritten this round, not archivable
		}

		fullName := userPrefix + "/" + prefix
		tip, err := repo.PeelToCommit(ctx, "refs/heads/"+fullName)
		if err != nil {
			continue // branch deleted concurrently with the scan
		}

		infos, err := repo.ListCommits(ctx, git.ListCommitsRequest{
			Start: tip.String(),
			Stop:  "", // walk to the root; branch history is small
		})
		if err != nil {
			return nil, NewRepositoryError("list branch commits", err)
		}
		if len(infos) == 0 {
			continue
		}

		latest, ok := allLanded(infos, landed)
		if !ok {
			continue
		}

		candidates = append(candidates, ArchiveCandidate{
			Prefix:          prefix,
			FullName:        fullName,
			Tip:             tip,
			IntegratedAt:    latest.Committer.Time,
			MergeTargetHash: upstreamTip,
		})
	}

	return candidates, nil
}

// allLanded reports whether every non-merge commit in infos has landed
// upstream, returning the landed commit with the latest committer time
// among the matches -- the "tip commit on the upstream that matches".
func allLanded(infos []git.CommitInfo, landed map[string]Commit) (Commit, bool) {
	var latest Commit
	found := false
	for _, info := range infos {
		c := ParseCommit(info)
		if c.IsMerge() {
			continue // merges never appear on the rewritten branch either
		}
		match, ok := landed[landedKey(c)]
		if !ok {
			return Commit{}, false
		}
		if !found || match.Committer.Time.After(latest.Committer.Time) {
			latest = match
			found = true
		}
	}
	return latest, found
}

func landedKey(c Commit) string {
	return string(c.Tree) + "\x00" + c.StrippedSubject
}
