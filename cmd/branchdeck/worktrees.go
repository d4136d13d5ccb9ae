package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/develar/branch-deck/internal/git"
	"github.com/develar/branch-deck/internal/silog"
	"github.com/develar/branch-deck/internal/text"
)

type worktreesCmd struct {
	List  worktreesListCmd  `cmd:"" default:"1" help:"List the worker worktrees sync has provisioned."`
	Prune worktreesPruneCmd `cmd:"" help:"Remove worker worktrees left over from a previous run."`
}

type worktreesListCmd struct{}

func (*worktreesListCmd) Help() string {
	return text.Dedent(`
		Lists all worktrees registered against this repository, marking
		which ones are branch-deck's cherry-pick workers.
	`)
}

func (*worktreesListCmd) Run(ctx context.Context, log *silog.Logger, _ *globalOptions) error {
	repo, err := git.Open(ctx, ".", git.OpenOptions{Log: log})
	if err != nil {
		return fmt.Errorf("open repository: %w", err)
	}

	workerDir := workerWorktreeDir(repo)

	for item, err := range repo.Worktrees(ctx) {
		if err != nil {
			return err
		}
		role := ""
		if filepath.Dir(item.Path) == workerDir {
			role = " (branch-deck worker)"
		}
		fmt.Printf("%s  %s%s\n", item.Head.Short(), item.Path, role)
	}
	return nil
}

type worktreesPruneCmd struct{}

func (*worktreesPruneCmd) Help() string {
	return text.Dedent(`
		Removes every worker worktree branch-deck has provisioned under
		.git/branch-deck/worktrees. Safe to run between syncs; sync
		re-provisions whatever it needs on its next run.
	`)
}

func (*worktreesPruneCmd) Run(ctx context.Context, log *silog.Logger, _ *globalOptions) error {
	repo, err := git.Open(ctx, ".", git.OpenOptions{Log: log})
	if err != nil {
		return fmt.Errorf("open repository: %w", err)
	}

	workerDir := workerWorktreeDir(repo)

	var removed int
	for item, err := range repo.Worktrees(ctx) {
		if err != nil {
			return err
		}
		if filepath.Dir(item.Path) != workerDir {
			continue
		}
		if err := repo.RemoveWorktree(ctx, item.Path, git.RemoveWorktreeOptions{Force: true}); err != nil {
			return fmt.Errorf("remove %s: %w", item.Path, err)
		}
		removed++
	}

	fmt.Printf("removed %d worker worktrees\n", removed)
	return nil
}

func workerWorktreeDir(repo *git.Repository) string {
	return filepath.Join(repo.GitDir(), "branch-deck", "worktrees")
}
