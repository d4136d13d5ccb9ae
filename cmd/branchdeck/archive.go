package main

import (
	"context"
	"fmt"

	"github.com/develar/branch-deck/internal/branchdeck"
	"github.com/develar/branch-deck/internal/git"
	"github.com/develar/branch-deck/internal/silog"
	"github.com/develar/branch-deck/internal/text"
)

type archiveCmd struct {
	List   archiveListCmd   `cmd:"" default:"1" help:"List branches already landed on the integration branch."`
	Delete archiveDeleteCmd `cmd:"" help:"Delete a landed branch."`
}

type archiveListCmd struct {
	UserPrefix string `short:"u" help:"Namespace to scan. Defaults to branchdeck.userPrefix."`
	Branch     string `short:"b" help:"Integration branch to compare against. Defaults to the current branch."`
}

func (*archiveListCmd) Help() string {
	return text.Dedent(`
		Lists branches under the user's namespace whose commits are all
		already present (by tree and stripped subject) on the
		integration branch's upstream, and so are safe to delete.
	`)
}

func (cmd *archiveListCmd) Run(ctx context.Context, log *silog.Logger, _ *globalOptions) error {
	repo, userPrefix, integrationBranch, err := openForArchiveScan(ctx, log, cmd.UserPrefix, cmd.Branch)
	if err != nil {
		return err
	}

	candidates, err := scanArchivable(ctx, repo, userPrefix, integrationBranch)
	if err != nil {
		return err
	}

	if len(candidates) == 0 {
		fmt.Println("no branches are fully landed")
		return nil
	}
	for _, c := range candidates {
		fmt.Printf("%s (%s)\n", c.FullName, c.Tip.Short())
	}
	return nil
}

type archiveDeleteCmd struct {
	Branch string `arg:"" help:"Prefix of the branch to delete, e.g. \"feature-auth\"."`

	UserPrefix string `short:"u" help:"Namespace the branch was rewritten under. Defaults to branchdeck.userPrefix."`
	Branch_    string `short:"b" name:"integration-branch" help:"Integration branch to confirm against. Defaults to the current branch."`
	Force      bool   `short:"f" help:"Delete even if the branch does not verify as fully landed."`
}

func (*archiveDeleteCmd) Help() string {
	return text.Dedent(`
		Deletes a branch after confirming its commits are already
		landed on the integration branch, unless --force is given.
	`)
}

func (cmd *archiveDeleteCmd) Run(ctx context.Context, log *silog.Logger, _ *globalOptions) error {
	repo, userPrefix, integrationBranch, err := openForArchiveScan(ctx, log, cmd.UserPrefix, cmd.Branch_)
	if err != nil {
		return err
	}

	if !cmd.Force {
		candidates, err := scanArchivable(ctx, repo, userPrefix, integrationBranch)
		if err != nil {
			return err
		}
		if !containsPrefix(candidates, cmd.Branch) {
			return fmt.Errorf("%s/%s does not verify as fully landed; use --force to delete anyway", userPrefix, cmd.Branch)
		}
	}

	fullName := userPrefix + "/" + cmd.Branch
	if err := repo.DeleteBranch(ctx, fullName, git.BranchDeleteOptions{Force: true}); err != nil {
		return fmt.Errorf("delete %s: %w", fullName, err)
	}
	fmt.Printf("deleted %s\n", fullName)
	return nil
}

func containsPrefix(candidates []branchdeck.ArchiveCandidate, prefix string) bool {
	for _, c := range candidates {
		if c.Prefix == prefix {
			return true
		}
	}
	return false
}

func openForArchiveScan(ctx context.Context, log *silog.Logger, userPrefixFlag, branchFlag string) (repo *git.Repository, userPrefix, integrationBranch string, err error) {
	repo, err = git.Open(ctx, ".", git.OpenOptions{Log: log})
	if err != nil {
		return nil, "", "", fmt.Errorf("open repository: %w", err)
	}

	integrationBranch = branchFlag
	if integrationBranch == "" {
		integrationBranch, err = repo.CurrentBranch(ctx)
		if err != nil {
			return nil, "", "", fmt.Errorf("resolve integration branch: %w", err)
		}
	}

	userPrefix = userPrefixFlag
	if userPrefix == "" {
		userPrefix, err = repo.Config().Get(ctx, git.UserPrefixKey)
		if err != nil {
			return nil, "", "", fmt.Errorf("resolve user prefix: %w", err)
		}
	}

	return repo, userPrefix, integrationBranch, nil
}

func scanArchivable(ctx context.Context, repo *git.Repository, userPrefix, integrationBranch string) ([]branchdeck.ArchiveCandidate, error) {
	return branchdeck.DetectArchivable(ctx, repo, userPrefix, integrationBranch, nil)
}
