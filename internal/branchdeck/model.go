// Package branchdeck implements the Sync Engine: given a repository, a
// user prefix, and the current state of the integration branch, it
// produces the complete set of virtual branch outcomes by cherry-picking
// prefix-tagged commits onto a shared baseline, detecting conflicts, and
// caching unchanged results by content-addressed fingerprint.
package branchdeck

import (
	"regexp"
	"strings"
	"time"

	"github.com/develar/branch-deck/internal/git"
)

// prefixPattern matches a leading "(name) " tag at the very start of a
// commit subject. name may contain letters, digits, and the path-safe
// punctuation a branch component can hold.
var prefixPattern = regexp.MustCompile(`^\(([A-Za-z0-9_./-]+)\) `)

// Signature is the author or committer identity of a commit.
type Signature struct {
	Name  string
	Email string
	Time  time.Time
}

// Commit is an immutable, read-only snapshot of a commit reachable from
// the integration branch, with the prefix tag and stripped subject
// already extracted from the raw subject line.
type Commit struct {
	Hash      git.Hash
	Tree      git.Hash
	Parents   []git.Hash
	Author    Signature
	Committer Signature
	Subject   string
	Body      string

	// Prefix is the captured "(name)" tag, or nil if the subject has
	// none.
	Prefix *string

	// StrippedSubject is Subject with a matched leading "(name) " tag
	// removed. Equal to Subject when Prefix is nil.
	StrippedSubject string
}

// ParseCommit builds a [Commit] from raw commit info, extracting the
// prefix tag. Parsing never inspects the body, only the subject.
func ParseCommit(info git.CommitInfo) Commit {
	c := Commit{
		Hash:            info.Hash,
		Tree:            info.Tree,
		Parents:         info.Parents,
		Author:          Signature(info.Author),
		Committer:       Signature(info.Committer),
		Subject:         info.Subject,
		Body:            info.Body,
		StrippedSubject: info.Subject,
	}

	if m := prefixPattern.FindStringSubmatch(info.Subject); m != nil {
		prefix := m[1]
		c.Prefix = &prefix
		c.StrippedSubject = strings.TrimPrefix(info.Subject, m[0])
	}

	return c
}

// IsMerge reports whether the commit has more than one parent. Merge
// commits are always skipped by the Commit Reader ([ReadCommits]), even
// when tagged with a prefix.
func (c Commit) IsMerge() bool { return len(c.Parents) > 1 }

// BranchPlan is the unit of work the Cherry-pick Executor dispatches to
// a single worker: one prefix's ordered commits, cherry-picked onto a
// shared baseline.
type BranchPlan struct {
	// Prefix is the tag captured from commit subjects, e.g.
	// "feature-auth".
	Prefix string

	// UserPrefix namespaces every rewritten branch for this repository,
	// e.g. "alice".
	UserPrefix string

	// Baseline is the commit every plan in the round is cherry-picked
	// onto.
	Baseline Commit

	// OrderedCommits preserves the relative order from the integration
	// branch walk: parent before child (oldest first).
	OrderedCommits []Commit
}

// FullName is the branch this plan rewrites: UserPrefix + "/" + Prefix.
func (p BranchPlan) FullName() string {
	return p.UserPrefix + "/" + p.Prefix
}

// RefName is the fully-qualified ref for this plan's branch.
func (p BranchPlan) RefName() string {
	return "refs/heads/" + p.FullName()
}

// OutcomeKind tags the variant of a [BranchOutcome].
type OutcomeKind int

// Outcome kinds, one per branch after a sync round.
const (
	// OutcomeUnchanged means the stored fingerprint already matched;
	// the branch ref was not touched.
	OutcomeUnchanged OutcomeKind = iota

	// OutcomeCreated means the branch ref did not exist before this
	// round and was created.
	OutcomeCreated

	// OutcomeUpdated means the branch ref existed and was moved to a
	// new tip.
	OutcomeUpdated

	// OutcomeConflicted means a cherry-pick failed; the branch ref (if
	// any) is unchanged and a [ConflictReport] is attached.
	OutcomeConflicted

	// OutcomeArchived means the branch's commits are already present
	// on the integration branch's upstream (by tree + stripped subject), so the
	// branch is reported for archival rather than rewritten.
	OutcomeArchived

	// OutcomeRefRaceLost means the ref CAS failed twice in a row: once,
	// then again after re-reading the tip. The branch's ref is
	// unchanged; the round continues for every other branch.
	OutcomeRefRaceLost

	// OutcomeFailed means some other branch-scoped error stopped this
	// plan (a worktree that could not be reset, a cherry-pick that
	// failed for a reason other than a conflict). The branch's ref is
	// unchanged; the round continues for every other branch.
	OutcomeFailed
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeUnchanged:
		return "unchanged"
	case OutcomeCreated:
		return "created"
	case OutcomeUpdated:
		return "updated"
	case OutcomeConflicted:
		return "conflicted"
	case OutcomeArchived:
		return "archived"
	case OutcomeRefRaceLost:
		return "ref-race-lost"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// BranchOutcome is the result of executing one [BranchPlan].
type BranchOutcome struct {
	Kind     OutcomeKind
	FullName string

	// TipHash is the branch's tip after this round. Zero for
	// OutcomeConflicted when the branch did not previously exist, or for
	// OutcomeRefRaceLost.
	TipHash git.Hash

	// CommitCount is the number of commits in the plan, used for
	// "N commits" summaries.
	CommitCount int

	// Conflict is set when Kind is OutcomeConflicted.
	Conflict *ConflictReport

	// Err is set when Kind is OutcomeRefRaceLost or OutcomeFailed,
	// carrying the underlying branch-scoped error for logging; the
	// branch is otherwise unaffected and retried on the next round.
	Err error
}

// MissingCommit is one commit, identified as part of the minimal set
// that would resolve a conflict if cherry-picked first.
type MissingCommit struct {
	Hash            git.Hash
	StrippedSubject string
	CommitterTime   time.Time
}

// CommitRef is a lightweight pointer to a commit, used wherever a full
// [Commit] snapshot isn't needed: conflict-marker blame attribution and
// the Push Coordinator's unpushed-commit listing.
type CommitRef struct {
	Hash            git.Hash
	StrippedSubject string
	AuthorEmail     string
	AuthorTime      time.Time
}

// FileConflictStatus classifies how a conflicted file differs between
// sides of a three-way merge.
type FileConflictStatus int

// File conflict statuses.
const (
	FileConflictBothModified FileConflictStatus = iota
	FileConflictAddedByUs
	FileConflictAddedByThem
	FileConflictDeletedByUs
	FileConflictDeletedByThem
	FileConflictBothAdded
)

// FileConflict describes one conflicted path from a failed cherry-pick,
// with references to each side's blob so a UI (or a CLI diff) can
// render the conflict without re-running git.
type FileConflict struct {
	Path string

	// BaseBlob, OursBlob, TheirsBlob are the blob hashes at this path
	// for each stage of the conflict. A zero hash means the file does
	// not exist on that side.
	BaseBlob, OursBlob, TheirsBlob git.Hash

	Status FileConflictStatus

	// Hunks holds raw conflict-marker regions extracted from the
	// working tree file, when available.
	Hunks []ConflictHunk
}

// ConflictHunk is a single conflict-marker region (<<<<<<< / ======= /
// >>>>>>>) within a conflicted file.
type ConflictHunk struct {
	StartLine int
	OursText  string
	BaseText  string
	TheirText string
}

// ConflictReport is the forensic detail attached to an
// [OutcomeConflicted] outcome.
type ConflictReport struct {
	// CommitHash is the commit whose cherry-pick failed.
	CommitHash git.Hash

	// Files lists the conflicted paths.
	Files []FileConflict

	// MergeBase is the common ancestor used to compute divergence.
	MergeBase git.Hash

	// DivergenceSummary is a short human-readable line naming the commit
	// whose cherry-pick failed and the baseline it was applied onto,
	// e.g. "cherry-pick of 1234567 onto abcdef1 failed". It does not
	// count commits ahead or behind on either side.
	DivergenceSummary string

	// MissingCommits is the minimal, committer-time-ordered set of
	// commits on the integration branch whose changes to the
	// conflicting paths are not yet present on the target side.
	MissingCommits []MissingCommit

	// ConflictMarkerCommits attributes each conflicting file, on each
	// side of the merge, to the commit last responsible for its
	// conflicting lines. Keyed "<path>:ours" / "<path>:theirs".
	ConflictMarkerCommits map[string]CommitRef
}

// RemoteStatus describes a branch's relationship to its remote
// counterpart, as computed by the Push Coordinator.
type RemoteStatus struct {
	FullName string

	// Exists reports whether the remote has this branch at all.
	Exists bool

	// Ahead is the number of commits on the local branch not on the
	// remote.
	Ahead int

	// Behind is the number of commits on the remote not on the local
	// branch -- upstream work a force-with-lease push must not discard.
	Behind int

	// UnpushedCommits lists the commits on the local tip not on the
	// remote tip (bounded to 500), oldest first.
	UnpushedCommits []CommitRef

	// MyUnpushedCount is the subset of UnpushedCommits authored by the
	// caller's email. Always <= len(UnpushedCommits).
	MyUnpushedCount int

	// LastSynced is when the remote ref was last observed to match the
	// local tip, if known.
	LastSynced time.Time
}
