// branchdeck is a command line tool that splits a branch's commits into
// separate virtual branches by a "(prefix)" tag in each commit's
// subject, keeping every prefix's branch up to date as the source
// branch changes.
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"

	"github.com/develar/branch-deck/internal/alias"
	"github.com/develar/branch-deck/internal/git"
	"github.com/develar/branch-deck/internal/silog"
)

func main() {
	log := silog.New(os.Stderr, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt)
	go func() {
		<-sigc
		log.Warn("interrupted, cleaning up -- press Ctrl-C again to exit immediately")
		cancel()

		<-sigc
		os.Exit(1)
	}()

	args := expandAliases(ctx, log, os.Args[1:])

	var cmd rootCmd
	parser, err := kong.New(
		&cmd,
		kong.Name("branchdeck"),
		kong.Description("Splits a branch's commits into separate virtual branches by prefix tag."),
		kong.Bind(log, &cmd.globalOptions),
		kong.BindTo(ctx, (*context.Context)(nil)),
		kong.UsageOnError(),
	)
	if err != nil {
		log.Fatal("build CLI parser", "error", err)
	}

	kctx, err := parser.Parse(args)
	parser.FatalIfErrorf(err)
	kctx.FatalIfErrorf(kctx.Run())
}

// expandAliases rewrites args by substituting any "branchdeck.alias.*"
// shorthand defined in the current repository's git config. Run outside
// a repository, or if config can't be read, args pass through
// unchanged.
func expandAliases(ctx context.Context, log *silog.Logger, args []string) []string {
	repo, err := git.Open(ctx, ".", git.OpenOptions{Log: log})
	if err != nil {
		return args
	}

	src, err := alias.Load(ctx, repo.Config())
	if err != nil {
		return args
	}

	return alias.Expand(src, args)
}
