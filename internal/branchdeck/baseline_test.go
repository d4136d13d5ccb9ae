package branchdeck_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/develar/branch-deck/internal/branchdeck"
	"github.com/develar/branch-deck/internal/git"
	"github.com/develar/branch-deck/internal/git/gittest"
	"github.com/develar/branch-deck/internal/silog/silogtest"
	"github.com/develar/branch-deck/internal/text"
)

func TestResolveBaselineFallsBackToLastUnprefixedAncestor(t *testing.T) {
	fixture, err := gittest.LoadFixtureScript([]byte(text.Dedent(`
		as 'Test <test@example.com>'
		at '2024-05-21T20:30:40Z'

		git init
		git commit --allow-empty -m 'Initial commit'
		git commit --allow-empty -m 'Second plain commit'
		git commit --allow-empty -m '(feature-auth) add login form'
		git commit --allow-empty -m '(feature-auth) wire up session store'
	`)))
	require.NoError(t, err)
	t.Cleanup(fixture.Cleanup)

	ctx := context.Background()
	repo, err := git.Open(ctx, fixture.Dir(), git.OpenOptions{Log: silogtest.New(t)})
	require.NoError(t, err)

	baseline, err := branchdeck.ResolveBaseline(ctx, repo, "main")
	require.NoError(t, err)

	want, err := repo.PeelToCommit(ctx, "HEAD~2")
	require.NoError(t, err)
	assert.Equal(t, want, baseline)
}

func TestResolveBaselineFallsBackToRootWhenEverythingTagged(t *testing.T) {
	fixture, err := gittest.LoadFixtureScript([]byte(text.Dedent(`
		as 'Test <test@example.com>'
		at '2024-05-21T20:30:40Z'

		git init
		git commit --allow-empty -m '(feature-auth) root commit'
		git commit --allow-empty -m '(feature-auth) follow-up commit'
	`)))
	require.NoError(t, err)
	t.Cleanup(fixture.Cleanup)

	ctx := context.Background()
	repo, err := git.Open(ctx, fixture.Dir(), git.OpenOptions{Log: silogtest.New(t)})
	require.NoError(t, err)

	baseline, err := branchdeck.ResolveBaseline(ctx, repo, "main")
	require.NoError(t, err)

	root, err := repo.PeelToCommit(ctx, "HEAD~1")
	require.NoError(t, err)
	assert.Equal(t, root, baseline)
}
