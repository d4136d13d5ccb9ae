package branchdeck

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/develar/branch-deck/internal/git"
)

// analyzeConflict builds a [ConflictReport] from the conflicted index
// state a failed cherry-pick left behind in w. It must be called before
// the cherry-pick is aborted: aborting restores the index to stage 0
// and the unmerged entries this reads would be gone.
func analyzeConflict(ctx context.Context, w *worker, plan BranchPlan, failed Commit) (*ConflictReport, error) {
	unmerged, err := w.wt.ListUnmergedFiles(ctx)
	if err != nil {
		return nil, NewBranchError(plan.FullName(), "list unmerged files", err)
	}

	byPath := make(map[string]*FileConflict)
	order := make([]string, 0)
	for _, u := range unmerged {
		fc, ok := byPath[u.Path]
		if !ok {
			fc = &FileConflict{Path: u.Path}
			byPath[u.Path] = fc
			order = append(order, u.Path)
		}
		switch u.Stage {
		case git.ConflictStageBase:
			fc.BaseBlob = u.Object
		case git.ConflictStageOurs:
			fc.OursBlob = u.Object
		case git.ConflictStageTheirs:
			fc.TheirsBlob = u.Object
		}
	}

	files := make([]FileConflict, 0, len(order))
	for _, path := range order {
		fc := byPath[path]
		fc.Status = classifyFileConflict(*fc)
		fc.Hunks = readConflictHunks(w, fc.Path)
		files = append(files, *fc)
	}

	var parent git.Hash
	if len(failed.Parents) > 0 {
		parent = failed.Parents[0]
	}

	repo := w.wt.Repository()
	mergeBase, err := repo.MergeBase(ctx, plan.Baseline.Hash.String(), parent.String())
	if err != nil {
		// The failing commit's parent may not share history with the
		// baseline at all (e.g. the very first commit of the prefix);
		// fall back to the plan's own baseline.
		mergeBase = plan.Baseline.Hash
	}

	// HEAD still points at the last commit the worktree successfully
	// landed -- the "ours" side of the conflict -- since the
	// interrupted cherry-pick never created a new commit.
	oursTip, err := w.wt.Head(ctx)
	if err != nil {
		return nil, NewBranchError(plan.FullName(), "resolve worktree HEAD for conflict analysis", err)
	}

	missing, err := findMissingCommits(ctx, repo, plan, failed, files, oursTip)
	if err != nil {
		return nil, err
	}

	return &ConflictReport{
		CommitHash:            failed.Hash,
		Files:                 files,
		MergeBase:             mergeBase,
		DivergenceSummary:     summarizeDivergence(plan, failed),
		MissingCommits:        missing,
		ConflictMarkerCommits: blameConflictMarkers(ctx, repo, oursTip, failed.Hash, files),
	}, nil
}

// classifyFileConflict infers a [FileConflictStatus] from which of the
// three stages are present.
func classifyFileConflict(fc FileConflict) FileConflictStatus {
	hasBase, hasOurs, hasTheirs := !fc.BaseBlob.IsZero(), !fc.OursBlob.IsZero(), !fc.TheirsBlob.IsZero()
	switch {
	case hasBase && hasOurs && hasTheirs:
		return FileConflictBothModified
	case hasBase && !hasOurs && hasTheirs:
		return FileConflictDeletedByUs
	case hasBase && hasOurs && !hasTheirs:
		return FileConflictDeletedByThem
	case !hasBase && hasOurs && hasTheirs:
		return FileConflictBothAdded
	case !hasBase && hasOurs && !hasTheirs:
		return FileConflictAddedByUs
	default:
		return FileConflictAddedByThem
	}
}

func summarizeDivergence(plan BranchPlan, failed Commit) string {
	return fmt.Sprintf("cherry-pick of %s onto %s failed", failed.Hash.Short(), plan.Baseline.Hash.Short())
}

// readConflictHunks reads the conflicted file out of w's working tree
// and extracts its conflict-marker regions. Returns nil if the path no
// longer exists in the working tree (e.g. deleted on one side) or
// can't be read -- hunks are best-effort detail, not load-bearing for
// the rest of the report.
func readConflictHunks(w *worker, path string) []ConflictHunk {
	content, err := os.ReadFile(filepath.Join(w.wt.RootDir(), path))
	if err != nil {
		return nil
	}
	return extractConflictHunks(content)
}

// extractConflictHunks parses standard git conflict markers
// (<<<<<<< / ||||||| / ======= / >>>>>>>) out of content. The
// ||||||| base section is only present when merge.conflictStyle is
// diff3; BaseText is empty otherwise.
func extractConflictHunks(content []byte) []ConflictHunk {
	const (
		sectionNone = iota
		sectionOurs
		sectionBase
		sectionTheirs
	)

	var hunks []ConflictHunk
	var cur ConflictHunk
	var ours, base, theirs []string
	section := sectionNone

	lines := strings.Split(string(content), "\n")
	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, "<<<<<<<"):
			cur = ConflictHunk{StartLine: i + 1}
			ours, base, theirs = nil, nil, nil
			section = sectionOurs
		case strings.HasPrefix(line, "|||||||") && section != sectionNone:
			section = sectionBase
		case strings.HasPrefix(line, "=======") && section != sectionNone:
			section = sectionTheirs
		case strings.HasPrefix(line, ">>>>>>>") && section != sectionNone:
			cur.OursText = strings.Join(ours, "\n")
			cur.BaseText = strings.Join(base, "\n")
			cur.TheirText = strings.Join(theirs, "\n")
			hunks = append(hunks, cur)
			section = sectionNone
		case section == sectionOurs:
			ours = append(ours, line)
		case section == sectionBase:
			base = append(base, line)
		case section == sectionTheirs:
			theirs = append(theirs, line)
		}
	}
	return hunks
}

// blameConflictMarkers attributes each conflicting file, on both sides
// of the merge, to the last commit that touched it: oursTip for the
// "ours" side, theirHash (the commit whose cherry-pick failed) for
// "theirs". Keyed "<path>:ours" / "<path>:theirs", per spec §4.6 step 5.
func blameConflictMarkers(ctx context.Context, repo *git.Repository, oursTip, theirHash git.Hash, files []FileConflict) map[string]CommitRef {
	out := make(map[string]CommitRef, len(files)*2)
	for _, fc := range files {
		if ref, ok := lastCommitRef(ctx, repo, oursTip.String(), fc.Path); ok {
			out[fc.Path+":ours"] = ref
		}
		if ref, ok := lastCommitRef(ctx, repo, theirHash.String(), fc.Path); ok {
			out[fc.Path+":theirs"] = ref
		}
	}
	return out
}

func lastCommitRef(ctx context.Context, repo *git.Repository, start, path string) (CommitRef, bool) {
	info, err := repo.LastCommitTouching(ctx, start, path)
	if err != nil {
		return CommitRef{}, false
	}
	c := ParseCommit(info)
	return CommitRef{
		Hash:            c.Hash,
		StrippedSubject: c.StrippedSubject,
		AuthorEmail:     c.Author.Email,
		AuthorTime:      c.Author.Time,
	}, true
}

// findMissingCommits enumerates the minimal set of commits reachable
// from the integration branch (but not from the branch's current
// progress) whose diff touches one of the conflicting paths -- changes
// that, if cherry-picked first, would plausibly resolve the conflict.
// "Minimal" means: only commits between the merge-base and failed's
// parent that actually touch a conflicting path, excluding any whose
// changes to those paths are already identical on targetTip (the
// branch's current progress), ordered by committer time so the
// earliest relevant change is first.
func findMissingCommits(ctx context.Context, repo *git.Repository, plan BranchPlan, failed Commit, files []FileConflict, targetTip git.Hash) ([]MissingCommit, error) {
	if len(files) == 0 {
		return nil, nil
	}

	conflictingPaths := make(map[string]struct{}, len(files))
	for _, fc := range files {
		conflictingPaths[fc.Path] = struct{}{}
	}

	if len(failed.Parents) == 0 {
		return nil, nil // root commit: no ancestry to search for missing changes in
	}
	parent := failed.Parents[0]

	infos, err := repo.ListCommits(ctx, git.ListCommitsRequest{
		Start: parent.String(),
		Stop:  plan.Baseline.Hash.String(),
	})
	if err != nil {
		return nil, NewBranchError(plan.FullName(), "list commits for missing-commit search", err)
	}

	var missing []MissingCommit
	for _, info := range infos {
		if len(info.Parents) == 0 {
			continue
		}

		touched, err := repo.DiffTreePaths(ctx, info.Parents[0].String(), info.Hash.String())
		if err != nil {
			return nil, NewBranchError(plan.FullName(), "diff-tree for missing-commit search", err)
		}

		touchedConflicting := intersect(touched, conflictingPaths)
		if len(touchedConflicting) == 0 {
			continue
		}

		present, err := allPathsMatchTarget(ctx, repo, info.Hash, targetTip, touchedConflicting)
		if err != nil {
			return nil, NewBranchError(plan.FullName(), "compare conflicting paths against target", err)
		}
		if present {
			continue // already landed on the target side; cherry-picking it first would change nothing
		}

		c := ParseCommit(info)
		missing = append(missing, MissingCommit{
			Hash:            c.Hash,
			StrippedSubject: c.StrippedSubject,
			CommitterTime:   c.Committer.Time,
		})
	}

	sort.Slice(missing, func(i, j int) bool {
		return missing[i].CommitterTime.Before(missing[j].CommitterTime)
	})

	return missing, nil
}

// allPathsMatchTarget reports whether, for every path in paths, the
// tree hash at that path in commit is identical to the tree hash at
// that path in targetTip -- i.e. the commit's change to every
// conflicting path it touches is already present on the target side.
func allPathsMatchTarget(ctx context.Context, repo *git.Repository, commit, targetTip git.Hash, paths map[string]struct{}) (bool, error) {
	for path := range paths {
		commitHash, err := pathHashOrZero(ctx, repo, commit.String(), path)
		if err != nil {
			return false, err
		}
		targetHash, err := pathHashOrZero(ctx, repo, targetTip.String(), path)
		if err != nil {
			return false, err
		}
		if commitHash != targetHash {
			return false, nil
		}
	}
	return true, nil
}

func pathHashOrZero(ctx context.Context, repo *git.Repository, treeish, path string) (git.Hash, error) {
	h, err := repo.HashAt(ctx, treeish, path)
	if err != nil {
		if errors.Is(err, git.ErrNotExist) {
			return git.ZeroHash, nil
		}
		return "", err
	}
	return h, nil
}

func intersect(touched, conflicting map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{})
	for p := range touched {
		if _, ok := conflicting[p]; ok {
			out[p] = struct{}{}
		}
	}
	return out
}
