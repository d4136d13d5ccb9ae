package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"

	"github.com/develar/branch-deck/internal/branchdeck"
	"github.com/develar/branch-deck/internal/git"
	"github.com/develar/branch-deck/internal/progress"
	"github.com/develar/branch-deck/internal/silog"
	"github.com/develar/branch-deck/internal/text"
)

type syncCmd struct {
	UserPrefix string `short:"u" help:"Namespace rewritten branches under refs/heads/<prefix>/*. Defaults to branchdeck.userPrefix."`
	Branch     string `short:"b" help:"Integration branch to scan. Defaults to the current branch."`
}

func (*syncCmd) Help() string {
	return text.Dedent(`
		Walks the integration branch for commits whose subject starts
		with a "(prefix)" tag, groups them by prefix, and cherry-picks
		each group onto its own branch under the configured namespace.
	`)
}

func (cmd *syncCmd) Run(ctx context.Context, log *silog.Logger, _ *globalOptions) error {
	repo, err := git.Open(ctx, ".", git.OpenOptions{Log: log})
	if err != nil {
		return fmt.Errorf("open repository: %w", err)
	}

	svc := branchdeck.NewService(repo, log)

	sink, events := progress.NewChannelSink(progress.DefaultCapacity)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if isatty.IsTerminal(os.Stdout.Fd()) {
			renderEventsInteractive(events)
		} else {
			renderEvents(events)
		}
	}()

	result, err := svc.Sync(ctx, branchdeck.SyncOptions{
		IntegrationBranch: cmd.Branch,
		UserPrefix:        cmd.UserPrefix,
		Sink:              sink,
	})
	sink.Close()
	<-done
	if err != nil {
		return err
	}

	printSyncSummary(result)
	return nil
}

// renderEventsInteractive drives the bubbletea progress view from
// progressview.go. Used when stdout is a terminal; falls back to
// renderEvents otherwise.
func renderEventsInteractive(events <-chan progress.Event) {
	p := tea.NewProgram(newProgressModel(events))
	if _, err := p.Run(); err != nil {
		renderEvents(events)
	}
}

// renderEvents prints each progress event as it arrives. Used when
// stdout is not a terminal, or if the interactive view fails to start.
func renderEvents(events <-chan progress.Event) {
	for ev := range events {
		switch ev.Kind {
		case progress.KindTaskStart:
			fmt.Printf("-> %s: %s\n", ev.FullName, ev.Message)
		case progress.KindTaskEnd:
			fmt.Printf("   %s: %s\n", ev.FullName, ev.Message)
		case progress.KindRoundEnd:
			fmt.Println(ev.Message)
		}
	}
}

func printSyncSummary(result *branchdeck.SyncResult) {
	fmt.Printf("baseline: %s\n", result.Baseline.Short())
	for _, o := range result.Outcomes {
		unit := "commits"
		if o.CommitCount == 1 {
			unit = "commit"
		}
		fmt.Printf("  %-10s %s (%d %s)\n", o.Kind, o.FullName, o.CommitCount, unit)
		if o.Kind == branchdeck.OutcomeConflicted && o.Conflict != nil {
			for _, f := range o.Conflict.Files {
				fmt.Printf("      conflict: %s\n", f.Path)
			}
		}
	}
	if result.Unassigned > 0 {
		fmt.Printf("%d commits have no prefix tag\n", result.Unassigned)
	}
	if result.SkippedMerges > 0 {
		fmt.Printf("%d merge commits were skipped\n", result.SkippedMerges)
	}
	if len(result.Archivable) > 0 {
		fmt.Printf("%d branches are fully landed and can be archived (see `branchdeck archive list`)\n", len(result.Archivable))
	}
}
