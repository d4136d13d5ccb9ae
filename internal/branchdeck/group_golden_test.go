package branchdeck

import (
	"testing"

	"github.com/hexops/autogold/v2"
)

func TestGroupCommitsPrefixOrder_golden(t *testing.T) {
	feat := "feature-auth"
	fix := "fix-bug"
	commits := []Commit{
		{Hash: "c1", Prefix: &feat, StrippedSubject: "add login form"},
		{Hash: "c2", Prefix: nil, StrippedSubject: "untagged fixup"},
		{Hash: "c3", Prefix: &fix, StrippedSubject: "fix the crash"},
		{Hash: "c4", Prefix: &feat, StrippedSubject: "wire up session store"},
	}

	plans := GroupCommits("alice", Commit{Hash: "base"}, commits)

	var order []string
	for _, p := range plans {
		order = append(order, p.FullName())
	}

	autogold.Expect([]string{
		"alice/",
		"alice/feature-auth",
		"alice/fix-bug",
	}).Equal(t, order)
}
