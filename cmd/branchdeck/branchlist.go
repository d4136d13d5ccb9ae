package main

import (
	"context"
	"fmt"

	"github.com/sahilm/fuzzy"

	"github.com/develar/branch-deck/internal/branchdeck"
	"github.com/develar/branch-deck/internal/git"
	"github.com/develar/branch-deck/internal/silog"
	"github.com/develar/branch-deck/internal/text"
)

type branchCmd struct {
	List        branchListCmd        `cmd:"" default:"1" help:"List prefixes and how many commits are assigned to each."`
	SuggestName branchSuggestNameCmd `cmd:"" name:"suggest-name" help:"Propose a prefix for a run of unassigned commits."`
}

type branchSuggestNameCmd struct {
	Commits []string `arg:"" help:"Hashes of unassigned commits to name, oldest first."`
}

func (*branchSuggestNameCmd) Help() string {
	return text.Dedent(`
		Proposes a branch prefix for a set of Unassigned commits the user
		wants to turn into their own branch ("group into branch"), by
		slugifying the oldest commit's stripped subject.
	`)
}

func (cmd *branchSuggestNameCmd) Run(ctx context.Context, log *silog.Logger, _ *globalOptions) error {
	repo, err := git.Open(ctx, ".", git.OpenOptions{Log: log})
	if err != nil {
		return fmt.Errorf("open repository: %w", err)
	}

	commits := make([]branchdeck.Commit, 0, len(cmd.Commits))
	for _, hash := range cmd.Commits {
		info, err := repo.ShowCommit(ctx, hash)
		if err != nil {
			return fmt.Errorf("read %s: %w", hash, err)
		}
		commits = append(commits, branchdeck.ParseCommit(info))
	}

	svc := branchdeck.NewService(repo, log)
	fmt.Println(svc.SuggestBranchName(commits))
	return nil
}

type branchListCmd struct {
	UserPrefix string `short:"u" help:"Namespace used for existing branches. Defaults to branchdeck.userPrefix."`
	Branch     string `short:"b" help:"Integration branch to scan. Defaults to the current branch."`
	Filter     string `short:"f" help:"Only show prefixes fuzzy-matching this pattern."`
}

func (*branchListCmd) Help() string {
	return text.Dedent(`
		Groups tagged commits into branch plans without executing any
		cherry-picks, for inspecting what a "sync" run would do.
	`)
}

func (cmd *branchListCmd) Run(ctx context.Context, log *silog.Logger, _ *globalOptions) error {
	repo, err := git.Open(ctx, ".", git.OpenOptions{Log: log})
	if err != nil {
		return fmt.Errorf("open repository: %w", err)
	}

	integrationBranch := cmd.Branch
	if integrationBranch == "" {
		integrationBranch, err = repo.CurrentBranch(ctx)
		if err != nil {
			return fmt.Errorf("resolve integration branch: %w", err)
		}
	}

	userPrefix := cmd.UserPrefix
	if userPrefix == "" {
		userPrefix, err = repo.Config().Get(ctx, git.UserPrefixKey)
		if err != nil {
			userPrefix = "(unset)"
		}
	}

	baseline, err := branchdeck.ResolveBaseline(ctx, repo, integrationBranch)
	if err != nil {
		return err
	}

	read, err := branchdeck.ReadCommits(ctx, repo, log, branchdeck.ReadCommitsRequest{
		IntegrationBranch: integrationBranch,
		Baseline:          baseline,
	})
	if err != nil {
		return err
	}

	counts := make(map[string]int)
	var order []string
	for _, c := range read.Commits {
		prefix := branchdeck.UnassignedPrefix
		if c.Prefix != nil {
			prefix = *c.Prefix
		}
		if _, ok := counts[prefix]; !ok {
			order = append(order, prefix)
		}
		counts[prefix]++
	}

	if cmd.Filter != "" {
		order = filterPrefixes(order, cmd.Filter)
	}

	fmt.Printf("baseline %s, user prefix %q\n", baseline.Short(), userPrefix)
	for _, prefix := range order {
		name := prefix
		if name == branchdeck.UnassignedPrefix {
			name = "(no prefix)"
		}
		fmt.Printf("  %-30s %d commits\n", name, counts[prefix])
	}
	if read.SkippedMerges > 0 {
		fmt.Printf("%d merge commits skipped\n", read.SkippedMerges)
	}
	return nil
}

// filterPrefixes narrows prefixes down to those fuzzy-matching pattern,
// ranked best match first.
func filterPrefixes(prefixes []string, pattern string) []string {
	matches := fuzzy.Find(pattern, prefixes)
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.Str
	}
	return out
}
