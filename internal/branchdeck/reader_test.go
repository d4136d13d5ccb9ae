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

func TestReadCommitsReturnsTaggedAndUntaggedOldestFirst(t *testing.T) {
	fixture, err := gittest.LoadFixtureScript([]byte(text.Dedent(`
		as 'Test <test@example.com>'
		at '2024-05-21T20:30:40Z'

		git init
		git commit --allow-empty -m 'Initial commit'
		git tag base

		git commit --allow-empty -m '(feature-auth) add login form'
		git commit --allow-empty -m 'untagged fixup'
		git commit --allow-empty -m '(feature-auth) wire up session store'
	`)))
	require.NoError(t, err)
	t.Cleanup(fixture.Cleanup)

	ctx := context.Background()
	repo, err := git.Open(ctx, fixture.Dir(), git.OpenOptions{Log: silogtest.New(t)})
	require.NoError(t, err)

	baseline, err := repo.PeelToCommit(ctx, "base")
	require.NoError(t, err)

	result, err := branchdeck.ReadCommits(ctx, repo, silogtest.New(t), branchdeck.ReadCommitsRequest{
		IntegrationBranch: "main",
		Baseline:          baseline,
	})
	require.NoError(t, err)

	require.Len(t, result.Commits, 3)
	assert.Equal(t, "add login form", result.Commits[0].StrippedSubject)
	assert.NotNil(t, result.Commits[0].Prefix)
	assert.Equal(t, "untagged fixup", result.Commits[1].StrippedSubject)
	assert.Nil(t, result.Commits[1].Prefix)
	assert.Equal(t, "wire up session store", result.Commits[2].StrippedSubject)
	assert.Equal(t, 0, result.SkippedMerges)
}

func TestReadCommitsSkipsMergesRegardlessOfTag(t *testing.T) {
	fixture, err := gittest.LoadFixtureScript([]byte(text.Dedent(`
		as 'Test <test@example.com>'
		at '2024-05-21T20:30:40Z'

		git init
		git commit --allow-empty -m 'Initial commit'
		git tag base

		git commit --allow-empty -m '(feature-auth) add login form'

		git checkout -b side
		git commit --allow-empty -m '(feature-auth) side commit'
		git checkout main
		git merge side --no-ff -m '(feature-auth) Merge side into main'

		git commit --allow-empty -m 'untagged fixup'
	`)))
	require.NoError(t, err)
	t.Cleanup(fixture.Cleanup)

	ctx := context.Background()
	repo, err := git.Open(ctx, fixture.Dir(), git.OpenOptions{Log: silogtest.New(t)})
	require.NoError(t, err)

	baseline, err := repo.PeelToCommit(ctx, "base")
	require.NoError(t, err)

	result, err := branchdeck.ReadCommits(ctx, repo, silogtest.New(t), branchdeck.ReadCommitsRequest{
		IntegrationBranch: "main",
		Baseline:          baseline,
	})
	require.NoError(t, err)

	// "add login form", "side commit" and "untagged fixup" are
	// non-merge and must all surface, oldest first; the tagged merge
	// commit itself is always skipped, prefix or not.
	require.Len(t, result.Commits, 3)
	assert.Equal(t, "add login form", result.Commits[0].StrippedSubject)
	assert.Equal(t, "side commit", result.Commits[1].StrippedSubject)
	assert.Equal(t, "untagged fixup", result.Commits[2].StrippedSubject)
	for _, c := range result.Commits {
		assert.False(t, c.IsMerge())
	}
	assert.Equal(t, 1, result.SkippedMerges)
}
