package branchdeck

import (
	"testing"

	"pgregory.net/rapid"

	"github.com/develar/branch-deck/internal/git"
)

// TestGroupCommitsPropertyInvariants checks, across randomly generated
// commit lists, the two invariants the spec relies on: every commit
// lands in exactly one group, and the Unassigned group is always
// present even when no commit lacks a prefix.
func TestGroupCommitsPropertyInvariants(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		prefixGen := rapid.SampledFrom([]string{"feature-auth", "fix-bug", "chore", ""})
		n := rapid.IntRange(0, 20).Draw(t, "numCommits")

		commits := make([]Commit, n)
		for i := range commits {
			prefix := prefixGen.Draw(t, "prefix")
			c := Commit{Hash: git.Hash(rapid.StringN(1, 8, 8).Draw(t, "hash"))}
			if prefix != "" {
				c.Prefix = &prefix
			}
			commits[i] = c
		}

		plans := GroupCommits("alice", Commit{Hash: "base"}, commits)

		total := 0
		seenPrefix := make(map[string]bool)
		for _, p := range plans {
			if seenPrefix[p.Prefix] {
				t.Fatalf("prefix %q grouped more than once", p.Prefix)
			}
			seenPrefix[p.Prefix] = true
			total += len(p.OrderedCommits)
		}

		if total != len(commits) {
			t.Fatalf("grouped %d commits, want %d", total, len(commits))
		}
		if !seenPrefix[UnassignedPrefix] {
			t.Fatalf("unassigned group missing")
		}
	})
}

// TestComputeFingerprintPropertyDeterministic checks that fingerprinting
// the same inputs twice always yields the same digest, regardless of
// what the inputs happen to be -- the Fingerprint Cache's correctness
// depends on this holding for every possible plan, not just the fixed
// examples in TestComputeFingerprintStable.
func TestComputeFingerprintPropertyDeterministic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		baseline := Commit{Hash: git.Hash(rapid.StringN(1, 8, 8).Draw(t, "baselineHash"))}

		n := rapid.IntRange(0, 5).Draw(t, "numCommits")
		commits := make([]Commit, n)
		for i := range commits {
			commits[i] = Commit{
				Hash:            git.Hash(rapid.StringN(1, 8, 8).Draw(t, "hash")),
				Tree:            git.Hash(rapid.StringN(1, 8, 8).Draw(t, "tree")),
				StrippedSubject: rapid.String().Draw(t, "subject"),
			}
		}

		a := computeFingerprint(baseline, commits)
		b := computeFingerprint(baseline, commits)
		if a != b {
			t.Fatalf("fingerprint not deterministic: %q != %q", a, b)
		}
	})
}
