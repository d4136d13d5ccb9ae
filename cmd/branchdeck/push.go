package main

import (
	"context"
	"fmt"

	"github.com/develar/branch-deck/internal/branchdeck"
	"github.com/develar/branch-deck/internal/git"
	"github.com/develar/branch-deck/internal/silog"
	"github.com/develar/branch-deck/internal/text"
)

type pushCmd struct {
	Branch string `arg:"" help:"Prefix of the branch to push, e.g. \"feature-auth\"."`
	Remote string `short:"r" default:"origin" help:"Remote to push to."`

	UserPrefix string `short:"u" help:"Namespace the branch was rewritten under. Defaults to branchdeck.userPrefix."`
}

func (*pushCmd) Help() string {
	return text.Dedent(`
		Pushes a branch produced by "sync" to its remote, using
		--force-with-lease so a push race against upstream work fails
		loudly instead of discarding it.
	`)
}

func (cmd *pushCmd) Run(ctx context.Context, log *silog.Logger, _ *globalOptions) error {
	repo, err := git.Open(ctx, ".", git.OpenOptions{Log: log})
	if err != nil {
		return fmt.Errorf("open repository: %w", err)
	}

	userPrefix := cmd.UserPrefix
	if userPrefix == "" {
		userPrefix, err = repo.Config().Get(ctx, git.UserPrefixKey)
		if err != nil {
			return fmt.Errorf("resolve user prefix: %w", err)
		}
	}

	fullName := userPrefix + "/" + cmd.Branch
	tip, err := repo.PeelToCommit(ctx, "refs/heads/"+fullName)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", fullName, err)
	}

	myEmail, err := repo.Config().Get(ctx, "user.email")
	if err != nil {
		return fmt.Errorf("resolve user.email: %w", err)
	}

	status, err := branchdeck.ResolveRemoteStatus(ctx, repo, cmd.Remote, fullName, tip, myEmail)
	if err != nil {
		return err
	}

	if status.MyUnpushedCount > 0 {
		fmt.Printf("%d of your own commits among %d unpushed\n", status.MyUnpushedCount, status.Ahead)
	}

	if err := branchdeck.Push(ctx, repo, branchdeck.PushRequest{
		Remote:   cmd.Remote,
		FullName: fullName,
		Tip:      tip,
	}, status); err != nil {
		return err
	}

	fmt.Printf("pushed %s to %s\n", fullName, cmd.Remote)
	return nil
}
