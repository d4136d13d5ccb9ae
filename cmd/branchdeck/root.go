package main

import (
	"github.com/alecthomas/kong"

	"github.com/develar/branch-deck/internal/silog"
)

type globalOptions struct {
	Verbose bool `short:"v" help:"Enable debug logging."`
}

type rootCmd struct {
	globalOptions

	Sync      syncCmd      `cmd:"" help:"Sync prefix-tagged commits into virtual branches."`
	Push      pushCmd      `cmd:"" help:"Push a branch produced by sync to its remote."`
	Branch    branchCmd    `cmd:"" help:"Inspect branch plans without executing them."`
	Archive   archiveCmd   `cmd:"" help:"List and delete branches already landed on the integration branch."`
	Worktrees worktreesCmd `cmd:"" help:"Manage the worker worktrees sync uses."`
	Doctor    doctorCmd    `cmd:"" help:"Check repository configuration for sync."`
	Config    configCmd    `cmd:"" help:"Get or set branch-deck configuration."`

	Version    versionFlag `help:"Print version information and quit."`
	VersionCmd versionCmd  `cmd:"version" name:"version" help:"Print version information."`
}

func (cmd *rootCmd) AfterApply(_ *kong.Context, log *silog.Logger) error {
	if cmd.Verbose {
		log.SetLevel(silog.LevelDebug)
	}
	return nil
}
