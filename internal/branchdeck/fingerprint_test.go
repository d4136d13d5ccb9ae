package branchdeck

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/develar/branch-deck/internal/git"
)

func TestComputeFingerprintStable(t *testing.T) {
	baseline := Commit{Hash: "base1"}
	at := time.Unix(1000, 0)
	commits := []Commit{
		{
			Hash:            "c1",
			Tree:            "t1",
			Parents:         []git.Hash{"base1"},
			Author:          Signature{Time: at},
			Committer:       Signature{Time: at},
			StrippedSubject: "add login form",
		},
	}

	a := computeFingerprint(baseline, commits)
	b := computeFingerprint(baseline, commits)
	assert.Equal(t, a, b)
	assert.NotEmpty(t, a)
}

func TestComputeFingerprintIgnoresCommitHashAndRawSubject(t *testing.T) {
	baseline := Commit{Hash: "base1"}
	at := time.Unix(1000, 0)
	c1 := Commit{
		Hash:            "c1",
		Tree:            "t1",
		Parents:         []git.Hash{"base1"},
		Author:          Signature{Time: at},
		Committer:       Signature{Time: at},
		Subject:         "(feature) add login form",
		StrippedSubject: "add login form",
	}
	// Same tree/parent/times/stripped subject, different commit hash and
	// raw subject -- as would happen after a rebase that reproduces
	// identical content.
	c2 := c1
	c2.Hash = "c2-after-rebase"
	c2.Subject = "(feature) add login form (amended)"

	a := computeFingerprint(baseline, []Commit{c1})
	b := computeFingerprint(baseline, []Commit{c2})
	assert.Equal(t, a, b)
}

func TestComputeFingerprintSensitiveToTree(t *testing.T) {
	baseline := Commit{Hash: "base1"}
	at := time.Unix(1000, 0)
	c1 := Commit{Hash: "c1", Tree: "t1", Author: Signature{Time: at}, Committer: Signature{Time: at}}
	c2 := Commit{Hash: "c1", Tree: "t2", Author: Signature{Time: at}, Committer: Signature{Time: at}}

	a := computeFingerprint(baseline, []Commit{c1})
	b := computeFingerprint(baseline, []Commit{c2})
	assert.NotEqual(t, a, b)
}

func TestComputeFingerprintSensitiveToBaseline(t *testing.T) {
	commits := []Commit{{Hash: "c1", Tree: "t1"}}
	a := computeFingerprint(Commit{Hash: "base1"}, commits)
	b := computeFingerprint(Commit{Hash: "base2"}, commits)
	assert.NotEqual(t, a, b)
}
