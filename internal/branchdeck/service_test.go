package branchdeck

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExecutablePlansDropsUnassigned(t *testing.T) {
	plans := []BranchPlan{
		{Prefix: UnassignedPrefix, OrderedCommits: []Commit{{Hash: "1"}}},
		{Prefix: "feature-auth"},
		{Prefix: "fix-bug"},
	}

	got := executablePlans(plans, nil)

	var prefixes []string
	for _, p := range got {
		prefixes = append(prefixes, p.Prefix)
	}
	assert.Equal(t, []string{"feature-auth", "fix-bug"}, prefixes)
}

func TestExecutablePlansDropsIgnoredPrefixes(t *testing.T) {
	plans := []BranchPlan{
		{Prefix: UnassignedPrefix},
		{Prefix: "feature-auth"},
		{Prefix: "wip"},
	}

	got := executablePlans(plans, []string{"wip"})

	var prefixes []string
	for _, p := range got {
		prefixes = append(prefixes, p.Prefix)
	}
	assert.Equal(t, []string{"feature-auth"}, prefixes)
}

func TestServiceSuggestBranchName(t *testing.T) {
	svc := &Service{Namer: SlugNamer{}}

	assert.Equal(t, "", svc.SuggestBranchName(nil))

	commits := []Commit{
		{StrippedSubject: "Add login form"},
		{StrippedSubject: "Wire up session store"},
	}
	assert.Equal(t, "add-login-form", svc.SuggestBranchName(commits))
}
