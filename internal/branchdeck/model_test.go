package branchdeck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/develar/branch-deck/internal/git"
)

func TestParseCommit(t *testing.T) {
	tests := []struct {
		name        string
		subject     string
		wantPrefix  *string
		wantStrip   string
	}{
		{
			name:      "no tag",
			subject:   "fix the thing",
			wantStrip: "fix the thing",
		},
		{
			name:       "tagged",
			subject:    "(feature-auth) add login form",
			wantPrefix: strPtr("feature-auth"),
			wantStrip:  "add login form",
		},
		{
			name:       "tag with path-safe punctuation",
			subject:    "(release/v2.1_rc-1) cut branch",
			wantPrefix: strPtr("release/v2.1_rc-1"),
			wantStrip:  "cut branch",
		},
		{
			name:      "parenthetical not at start is not a tag",
			subject:   "update docs (closes #12)",
			wantStrip: "update docs (closes #12)",
		},
		{
			name:      "tag without trailing space is not a tag",
			subject:   "(feature)add login form",
			wantStrip: "(feature)add login form",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := ParseCommit(git.CommitInfo{Subject: tt.subject})
			if tt.wantPrefix == nil {
				assert.Nil(t, c.Prefix)
			} else {
				require.NotNil(t, c.Prefix)
				assert.Equal(t, *tt.wantPrefix, *c.Prefix)
			}
			assert.Equal(t, tt.wantStrip, c.StrippedSubject)
			assert.Equal(t, tt.subject, c.Subject)
		})
	}
}

func TestCommitIsMerge(t *testing.T) {
	assert.False(t, Commit{Parents: nil}.IsMerge())
	assert.False(t, Commit{Parents: []git.Hash{"a"}}.IsMerge())
	assert.True(t, Commit{Parents: []git.Hash{"a", "b"}}.IsMerge())
}

func TestBranchPlanNames(t *testing.T) {
	p := BranchPlan{Prefix: "feature-auth", UserPrefix: "alice"}
	assert.Equal(t, "alice/feature-auth", p.FullName())
	assert.Equal(t, "refs/heads/alice/feature-auth", p.RefName())
}

func TestOutcomeKindString(t *testing.T) {
	tests := []struct {
		kind OutcomeKind
		want string
	}{
		{OutcomeUnchanged, "unchanged"},
		{OutcomeCreated, "created"},
		{OutcomeUpdated, "updated"},
		{OutcomeConflicted, "conflicted"},
		{OutcomeArchived, "archived"},
		{OutcomeRefRaceLost, "ref-race-lost"},
		{OutcomeFailed, "failed"},
		{OutcomeKind(99), "unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.kind.String())
	}
}

func strPtr(s string) *string { return &s }
