package branchdeck

import (
	"context"
	"crypto/sha1" //nolint:gosec // content-addressing, not a security boundary
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/develar/branch-deck/internal/git"
)

// Fingerprint is a digest over a branch plan's inputs, used to detect
// that a prior round's output for this branch is still current without
// re-running the cherry-pick.
type Fingerprint string

// computeFingerprint digests (baseline hash, and for each ordered
// commit: tree, first parent, author time, committer time, stripped
// subject). Anything not in this list -- the commit hash itself, the
// raw subject, the body -- is deliberately excluded, so that an
// upstream rebase that reproduces identical trees and timestamps (e.g.
// after `git commit --amend --no-edit` style tooling) still hits the
// cache.
func computeFingerprint(baseline Commit, commits []Commit) Fingerprint {
	h := sha1.New() //nolint:gosec

	fmt.Fprintln(h, baseline.Hash)
	for _, c := range commits {
		var firstParent git.Hash
		if len(c.Parents) > 0 {
			firstParent = c.Parents[0]
		}
		fmt.Fprintln(h, c.Tree)
		fmt.Fprintln(h, firstParent)
		fmt.Fprintln(h, strconv.FormatInt(c.Author.Time.Unix(), 10))
		fmt.Fprintln(h, strconv.FormatInt(c.Committer.Time.Unix(), 10))
		fmt.Fprintln(h, c.StrippedSubject)
	}

	return Fingerprint(hex.EncodeToString(h.Sum(nil)))
}

// LookupFingerprint reads the fingerprint note recorded against tip, if
// any. It returns ("", false, nil) if tip has no recorded fingerprint.
func LookupFingerprint(ctx context.Context, repo *git.Repository, tip git.Hash) (Fingerprint, bool, error) {
	if tip.IsZero() {
		return "", false, nil
	}

	note, err := repo.Notes(git.FingerprintNotesRef).Show(ctx, tip.String())
	if err != nil {
		if errors.Is(err, git.ErrNotExist) {
			return "", false, nil
		}
		return "", false, NewIoError("read fingerprint note", err)
	}

	return Fingerprint(strings.TrimSpace(note)), true, nil
}

// StoreFingerprint records fingerprint against newTip, removing any
// stale note on oldTip.
func StoreFingerprint(ctx context.Context, repo *git.Repository, oldTip, newTip git.Hash, fingerprint Fingerprint) error {
	err := repo.Notes(git.FingerprintNotesRef).MoveFingerprint(ctx, oldTip, newTip, string(fingerprint))
	if err != nil {
		return NewIoError("store fingerprint", err)
	}
	return nil
}
