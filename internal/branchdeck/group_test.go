package branchdeck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupCommitsAlwaysIncludesUnassigned(t *testing.T) {
	baseline := Commit{Hash: "base"}
	plans := GroupCommits("alice", baseline, nil)

	require.Len(t, plans, 1)
	assert.Equal(t, UnassignedPrefix, plans[0].Prefix)
	assert.Empty(t, plans[0].OrderedCommits)
}

func TestGroupCommitsPartitionsByPrefix(t *testing.T) {
	feat := "feature-auth"
	fix := "fix-bug"
	commits := []Commit{
		{Hash: "1", Prefix: &feat},
		{Hash: "2", Prefix: nil},
		{Hash: "3", Prefix: &fix},
		{Hash: "4", Prefix: &feat},
	}

	plans := GroupCommits("alice", Commit{Hash: "base"}, commits)

	byPrefix := make(map[string]BranchPlan)
	var order []string
	for _, p := range plans {
		byPrefix[p.Prefix] = p
		order = append(order, p.Prefix)
	}

	// Unassigned always comes first, then groups in first-seen order.
	assert.Equal(t, []string{UnassignedPrefix, feat, fix}, order)

	assert.Len(t, byPrefix[UnassignedPrefix].OrderedCommits, 1)
	assert.Equal(t, "2", byPrefix[UnassignedPrefix].OrderedCommits[0].Hash.String())

	require.Len(t, byPrefix[feat].OrderedCommits, 2)
	assert.Equal(t, "1", byPrefix[feat].OrderedCommits[0].Hash.String())
	assert.Equal(t, "4", byPrefix[feat].OrderedCommits[1].Hash.String())

	require.Len(t, byPrefix[fix].OrderedCommits, 1)
	assert.Equal(t, "3", byPrefix[fix].OrderedCommits[0].Hash.String())
}

func TestGroupCommitsCasePreserving(t *testing.T) {
	upper := "Feature"
	lower := "feature"
	commits := []Commit{
		{Hash: "1", Prefix: &upper},
		{Hash: "2", Prefix: &lower},
	}

	plans := GroupCommits("alice", Commit{}, commits)

	var prefixes []string
	for _, p := range plans {
		if p.Prefix != UnassignedPrefix {
			prefixes = append(prefixes, p.Prefix)
		}
	}
	assert.ElementsMatch(t, []string{"Feature", "feature"}, prefixes)
}

func TestUnassignedCount(t *testing.T) {
	none := "none"
	commits := []Commit{
		{Hash: "1", Prefix: nil},
		{Hash: "2", Prefix: nil},
		{Hash: "3", Prefix: &none},
	}
	plans := GroupCommits("alice", Commit{}, commits)
	assert.Equal(t, 2, unassignedCount(plans))
}

func TestUnassignedCountEmpty(t *testing.T) {
	plans := GroupCommits("alice", Commit{}, nil)
	assert.Equal(t, 0, unassignedCount(plans))
}
