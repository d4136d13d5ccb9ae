package branchdeck

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"

	"github.com/develar/branch-deck/internal/diskconfig"
	"github.com/develar/branch-deck/internal/git"
	"github.com/develar/branch-deck/internal/progress"
	"github.com/develar/branch-deck/internal/silog"
)

// SyncOptions configures one invocation of [Service.Sync].
type SyncOptions struct {
	// IntegrationBranch is the branch scanned for prefix-tagged
	// commits. Empty means the repository's current branch.
	IntegrationBranch string

	// UserPrefix namespaces every rewritten branch, e.g. "alice". A
	// Service with no UserPrefix configured falls back to
	// branchdeck.userPrefix from Git config; if that's unset too, Sync
	// fails with a [UserError].
	UserPrefix string

	Sink progress.Sink
}

// SyncResult is the complete output of one sync round.
type SyncResult struct {
	Baseline      git.Hash
	Outcomes      []BranchOutcome
	Unassigned    int
	SkippedMerges int
	Archivable    []ArchiveCandidate
}

// Service orchestrates a full sync round: reading commits, resolving
// the baseline, grouping into branch plans, executing the cherry-pick
// pool, and detecting archivable branches. It holds no state of its own
// between rounds besides its configuration and the repository handle.
type Service struct {
	Repo  *git.Repository
	Log   *silog.Logger
	Namer BranchNamer
}

// NewService builds a [Service] bound to repo. log may be nil, in which
// case a no-op logger is used. If repo's worktree root has a
// [diskconfig.FileName], its slugMaxLength setting overrides the
// default namer.
func NewService(repo *git.Repository, log *silog.Logger) *Service {
	if log == nil {
		log = silog.Nop()
	}

	namer := BranchNamer(SlugNamer{})
	if cfg, err := diskconfig.Load(repo.Root()); err == nil && cfg.SlugMaxLength > 0 {
		namer = SlugNamer{MaxLength: cfg.SlugMaxLength}
	}

	return &Service{Repo: repo, Log: log, Namer: namer}
}

// Sync runs one complete round.
func (s *Service) Sync(ctx context.Context, opts SyncOptions) (*SyncResult, error) {
	integrationBranch := opts.IntegrationBranch
	if integrationBranch == "" {
		branch, err := s.Repo.CurrentBranch(ctx)
		if err != nil {
			return nil, NewRepositoryError("resolve integration branch", err)
		}
		integrationBranch = branch
	}

	userPrefix, err := s.resolveUserPrefix(ctx, opts.UserPrefix)
	if err != nil {
		return nil, err
	}

	baseline, err := ResolveBaseline(ctx, s.Repo, integrationBranch)
	if err != nil {
		return nil, err
	}

	baselineCommit, err := s.loadCommit(ctx, baseline)
	if err != nil {
		return nil, err
	}

	read, err := ReadCommits(ctx, s.Repo, s.Log, ReadCommitsRequest{
		IntegrationBranch: integrationBranch,
		Baseline:          baseline,
	})
	if err != nil {
		return nil, err
	}

	plans := GroupCommits(userPrefix, baselineCommit, read.Commits)

	diskCfg, _ := diskconfig.Load(s.Repo.Root())
	executable := executablePlans(plans, diskCfg.IgnorePrefixes)

	sink := opts.Sink
	if sink == nil {
		sink = progress.NopSink{}
	}

	gitDir := s.Repo.GitDir()
	worktreeDir := filepath.Join(gitDir, "branch-deck", "worktrees")

	planPrefixes := make([]string, len(executable))
	for i, p := range executable {
		planPrefixes[i] = p.Prefix
	}

	archivable, err := DetectArchivable(ctx, s.Repo, userPrefix, integrationBranch, planPrefixes)
	if err != nil {
		return nil, err
	}

	outcomes, err := Execute(ctx, ExecuteOptions{
		Repo:        s.Repo,
		WorktreeDir: worktreeDir,
		Log:         s.Log,
		Sink:        sink,
		Workers:     diskCfg.Workers,
	}, executable)
	if err != nil {
		return nil, err
	}

	_ = sink.Send(ctx, progress.KindRoundEnd, "", fmt.Sprintf("%d branches processed", len(outcomes)), outcomes)

	return &SyncResult{
		Baseline:      baseline,
		Outcomes:      outcomes,
		Unassigned:    unassignedCount(plans),
		SkippedMerges: read.SkippedMerges,
		Archivable:    archivable,
	}, nil
}

// executablePlans drops the Unassigned plan -- it has no branch to
// cherry-pick onto, only a commit count to report -- and any prefix
// listed in ignorePrefixes.
func executablePlans(plans []BranchPlan, ignorePrefixes []string) []BranchPlan {
	out := make([]BranchPlan, 0, len(plans))
	for _, p := range plans {
		if p.Prefix == UnassignedPrefix {
			continue
		}
		if slices.Contains(ignorePrefixes, p.Prefix) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// SuggestBranchName proposes a prefix for a set of commits the user has
// picked out of the Unassigned group to turn into their own branch
// ("group into branch"), using s.Namer on the oldest commit's stripped
// subject. Returns "" if commits is empty.
func (s *Service) SuggestBranchName(commits []Commit) string {
	if len(commits) == 0 {
		return ""
	}
	return s.Namer.Name(commits[0].StrippedSubject)
}

// resolveUserPrefix prefers an explicitly passed prefix, falling back
// to branchdeck.userPrefix from Git config.
func (s *Service) resolveUserPrefix(ctx context.Context, explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}

	value, err := s.Repo.Config().Get(ctx, git.UserPrefixKey)
	if err != nil {
		return "", NewUserError("no user prefix configured: set branchdeck.userPrefix or pass --user-prefix")
	}
	return value, nil
}

func (s *Service) loadCommit(ctx context.Context, hash git.Hash) (Commit, error) {
	info, err := s.Repo.ShowCommit(ctx, hash.String())
	if err != nil {
		return Commit{}, NewRepositoryError("load baseline commit", err)
	}
	return ParseCommit(info), nil
}
