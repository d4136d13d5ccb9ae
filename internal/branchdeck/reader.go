package branchdeck

import (
	"context"

	"github.com/develar/branch-deck/internal/git"
	"github.com/develar/branch-deck/internal/silog"
)

// ReadCommitsRequest selects the range of commits the Commit Reader
// walks.
type ReadCommitsRequest struct {
	// IntegrationBranch is the branch whose history is scanned for
	// prefix-tagged commits, typically the repository's current branch.
	IntegrationBranch string

	// Baseline excludes commits already reachable from it. The Sync
	// Service resolves this once per round via [ResolveBaseline] and
	// passes it in, so the reader and the resolver agree on the same
	// commit-ish.
	Baseline git.Hash
}

// ReadResult is the outcome of one Commit Reader pass.
type ReadResult struct {
	// Commits is every non-merge commit between Baseline and
	// IntegrationBranch, oldest first, whether tagged or not.
	Commits []Commit

	// SkippedMerges counts merge commits that were excluded. Surfaced so
	// the CLI can warn without failing the round.
	SkippedMerges int
}

// ReadCommits walks commits reachable from req.IntegrationBranch but
// not from req.Baseline, parses each subject's prefix tag, and returns
// them oldest first. Merge commits are always skipped, with a warning;
// their prefix, if any, is ignored, since a merge's parents already
// carry its content and replaying it verbatim would duplicate history
// rather than preserve it. Untagged, non-merge commits are still
// returned -- the Branch Grouper classifies them into the Unassigned
// group.
func ReadCommits(ctx context.Context, repo *git.Repository, log *silog.Logger, req ReadCommitsRequest) (ReadResult, error) {
	infos, err := repo.ListCommits(ctx, git.ListCommitsRequest{
		Start: req.IntegrationBranch,
		Stop:  req.Baseline.String(),
	})
	if err != nil {
		return ReadResult{}, NewRepositoryError("list commits", err)
	}

	result := ReadResult{Commits: make([]Commit, 0, len(infos))}

	// ListCommits returns newest first; walk in reverse so the result
	// is oldest first, matching replay order.
	for i := len(infos) - 1; i >= 0; i-- {
		c := ParseCommit(infos[i])
		if c.IsMerge() {
			result.SkippedMerges++
			prefix := "(none)"
			if c.Prefix != nil {
				prefix = *c.Prefix
			}
			log.Warn("skipping merge commit", "commit", c.Hash, "prefix", prefix)
			continue
		}
		result.Commits = append(result.Commits, c)
	}

	return result, nil
}
