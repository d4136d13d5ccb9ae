package main

import (
	"context"
	"fmt"

	"github.com/develar/branch-deck/internal/git"
	"github.com/develar/branch-deck/internal/silog"
	"github.com/develar/branch-deck/internal/text"
)

type configCmd struct {
	Get configGetCmd `cmd:"" help:"Print a configuration value."`
	Set configSetCmd `cmd:"" help:"Write a configuration value."`
}

type configGetCmd struct {
	Key string `arg:"" help:"Configuration key, e.g. \"userPrefix\"."`
}

func (*configGetCmd) Help() string {
	return text.Dedent(`
		Reads a branch-deck configuration value from "git config", under
		the "branchdeck." section.
	`)
}

func (cmd *configGetCmd) Run(ctx context.Context, log *silog.Logger, _ *globalOptions) error {
	repo, err := git.Open(ctx, ".", git.OpenOptions{Log: log})
	if err != nil {
		return fmt.Errorf("open repository: %w", err)
	}

	value, err := repo.Config().Get(ctx, configKey(cmd.Key))
	if err != nil {
		return err
	}
	fmt.Println(value)
	return nil
}

type configSetCmd struct {
	Key   string `arg:"" help:"Configuration key, e.g. \"userPrefix\"."`
	Value string `arg:"" help:"Value to store."`
}

func (*configSetCmd) Help() string {
	return text.Dedent(`
		Writes a branch-deck configuration value via "git config", under
		the "branchdeck." section.
	`)
}

func (cmd *configSetCmd) Run(ctx context.Context, log *silog.Logger, _ *globalOptions) error {
	repo, err := git.Open(ctx, ".", git.OpenOptions{Log: log})
	if err != nil {
		return fmt.Errorf("open repository: %w", err)
	}

	if err := repo.Config().Set(ctx, configKey(cmd.Key), cmd.Value); err != nil {
		return err
	}
	fmt.Printf("%s = %s\n", configKey(cmd.Key), cmd.Value)
	return nil
}

// configKey maps a short user-facing key, e.g. "userPrefix", onto its
// full "branchdeck.<key>" config key.
func configKey(key string) git.ConfigKey {
	if key == "userPrefix" {
		return git.UserPrefixKey
	}
	return git.ConfigKey("branchdeck." + key)
}
