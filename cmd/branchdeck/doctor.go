package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/develar/branch-deck/internal/branchdeck"
	"github.com/develar/branch-deck/internal/git"
	"github.com/develar/branch-deck/internal/silog"
	"github.com/develar/branch-deck/internal/text"
)

type doctorCmd struct {
	Branch string `short:"b" help:"Integration branch to check. Defaults to the current branch."`
}

func (*doctorCmd) Help() string {
	return text.Dedent(`
		Runs preflight checks that "sync" depends on: that
		branchdeck.userPrefix is configured, that the integration branch
		resolves to a baseline, and that the worker worktree directory
		is usable.
	`)
}

func (cmd *doctorCmd) Run(ctx context.Context, log *silog.Logger, _ *globalOptions) error {
	repo, err := git.Open(ctx, ".", git.OpenOptions{Log: log})
	if err != nil {
		return fmt.Errorf("open repository: %w", err)
	}

	var failed bool
	check := func(name string, err error) {
		if err != nil {
			failed = true
			fmt.Printf("[FAIL] %s: %v\n", name, err)
			return
		}
		fmt.Printf("[ OK ] %s\n", name)
	}

	_, err = repo.Config().Get(ctx, git.UserPrefixKey)
	check("branchdeck.userPrefix is set", err)

	integrationBranch := cmd.Branch
	if integrationBranch == "" {
		integrationBranch, err = repo.CurrentBranch(ctx)
	}
	check("integration branch resolves", err)

	if integrationBranch != "" {
		_, err = branchdeck.ResolveBaseline(ctx, repo, integrationBranch)
		check("baseline resolves on "+integrationBranch, err)
	}

	check("worker worktree directory is writable", checkWritable(workerWorktreeDir(repo)))

	if failed {
		return fmt.Errorf("one or more preflight checks failed")
	}
	fmt.Println("all checks passed")
	return nil
}

// checkWritable confirms the worker worktree directory can be created,
// without actually provisioning any worktrees in it.
func checkWritable(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	probe := filepath.Join(dir, ".doctor-probe")
	if err := os.WriteFile(probe, nil, 0o644); err != nil {
		return err
	}
	return os.Remove(probe)
}
