package git

import (
	"bufio"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/develar/branch-deck/internal/scanutil"
)

// Signature holds authorship or committer information for a commit.
type Signature struct {
	Name  string
	Email string
	Time  time.Time
}

// typ is one of "COMMIT" or "AUTHOR".
func (s *Signature) appendEnv(typ string, env []string) []string {
	if s == nil {
		return env
	}

	env = append(env, "GIT_"+typ+"_NAME="+s.Name)
	env = append(env, "GIT_"+typ+"_EMAIL="+s.Email)
	if !s.Time.IsZero() {
		env = append(env, "GIT_"+typ+"_DATE="+s.Time.Format(time.RFC3339))
	}
	return env
}

// CommitInfo is the raw shape of a commit as read off the Git object
// database: hash, tree, parents, author/committer signatures, and the
// unparsed subject/body. It carries no branch-deck-specific derived
// fields (prefix, stripped subject) -- those live on the domain Commit
// type built from this one.
type CommitInfo struct {
	Hash      Hash
	Tree      Hash
	Parents   []Hash
	Author    Signature
	Committer Signature
	Subject   string
	Body      string
}

// commitFormat pulls one record per commit out of `git rev-list`,
// separating fields with a unit separator (0x1f) and records with a
// null byte, so that subjects and bodies containing arbitrary text
// (including newlines) can never be mistaken for a delimiter.
const commitFormat = "%H\x1f%T\x1f%P\x1f%an\x1f%ae\x1f%at\x1f%cn\x1f%ce\x1f%ct\x1f%s\x1f%b\x00"

// ListCommitsRequest selects the range of commits to list.
type ListCommitsRequest struct {
	// Start is the starting commit-ish, inclusive.
	Start string

	// Stop is the stopping commit-ish, exclusive. Commits reachable
	// from Stop are excluded from the result.
	Stop string

	// FirstParent restricts traversal to the first-parent chain,
	// skipping the side history merged in by merge commits.
	FirstParent bool
}

// ListCommits walks commits reachable from req.Start but not from
// req.Stop, newest first with every commit listed before its parents,
// and parses each into a [CommitInfo].
func (r *Repository) ListCommits(ctx context.Context, req ListCommitsRequest) ([]CommitInfo, error) {
	args := []string{"rev-list", "--topo-order", "--format=" + commitFormat}
	if req.FirstParent {
		args = append(args, "--first-parent")
	}
	args = append(args, req.Start)
	if req.Stop != "" {
		args = append(args, "--not", req.Stop)
	}
	args = append(args, "--")

	cmd := r.gitCmd(ctx, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("pipe: %w", err)
	}

	if err := cmd.Start(r.exec); err != nil {
		return nil, fmt.Errorf("start rev-list: %w", err)
	}

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	scanner.Split(scanutil.SplitNull)

	var commits []CommitInfo
	for scanner.Scan() {
		raw := scanner.Text()
		// rev-list --format writes "commit <hash>\n<format>" per
		// record; drop the synthetic header line.
		_, raw, ok := strings.Cut(raw, "\n")
		if !ok {
			continue
		}

		c, err := parseCommitInfo(raw)
		if err != nil {
			return nil, fmt.Errorf("parse commit: %w", err)
		}
		commits = append(commits, c)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan rev-list: %w", err)
	}

	if err := cmd.Wait(r.exec); err != nil {
		return nil, fmt.Errorf("rev-list: %w", err)
	}

	return commits, nil
}

// ShowCommit reads a single commit's info without walking its
// ancestry, via `git log --max-count=1`. Unlike [Repository.ListCommits],
// `git log --format` does not prefix the record with a synthetic
// "commit <hash>" header line, so the raw output is parsed directly.
func (r *Repository) ShowCommit(ctx context.Context, commit string) (CommitInfo, error) {
	out, err := r.gitCmd(ctx, "log", "--max-count=1", "--format="+commitFormat, commit, "--").
		OutputString(r.exec)
	if err != nil {
		return CommitInfo{}, fmt.Errorf("show commit %s: %w", commit, err)
	}
	out = strings.TrimSuffix(out, "\x00")
	return parseCommitInfo(out)
}

// LastCommitTouching reports the most recent commit reachable from
// start whose diff touches path -- a whole-file equivalent of `git
// blame`, used to attribute a conflicting file to the commit last
// responsible for its current content on one side of a merge. Returns
// [ErrNotExist] if no commit reachable from start ever touched path.
func (r *Repository) LastCommitTouching(ctx context.Context, start, path string) (CommitInfo, error) {
	out, err := r.gitCmd(ctx, "log", "--max-count=1", "--format="+commitFormat, start, "--", path).
		OutputString(r.exec)
	if err != nil {
		return CommitInfo{}, fmt.Errorf("last commit touching %s: %w", path, err)
	}
	if out == "" {
		return CommitInfo{}, ErrNotExist
	}
	out = strings.TrimSuffix(out, "\x00")
	return parseCommitInfo(out)
}

func parseCommitInfo(raw string) (CommitInfo, error) {
	fields := strings.SplitN(raw, "\x1f", 11)
	if len(fields) != 11 {
		return CommitInfo{}, fmt.Errorf("expected 11 fields, got %d", len(fields))
	}

	authorTime, err := parseUnixTime(fields[5])
	if err != nil {
		return CommitInfo{}, fmt.Errorf("author time: %w", err)
	}
	committerTime, err := parseUnixTime(fields[8])
	if err != nil {
		return CommitInfo{}, fmt.Errorf("committer time: %w", err)
	}

	var parents []Hash
	if p := strings.TrimSpace(fields[2]); p != "" {
		for _, s := range strings.Fields(p) {
			parents = append(parents, Hash(s))
		}
	}

	return CommitInfo{
		Hash:    Hash(fields[0]),
		Tree:    Hash(fields[1]),
		Parents: parents,
		Author: Signature{
			Name:  fields[3],
			Email: fields[4],
			Time:  authorTime,
		},
		Committer: Signature{
			Name:  fields[6],
			Email: fields[7],
			Time:  committerTime,
		},
		Subject: fields[9],
		Body:    strings.TrimRight(fields[10], "\n"),
	}, nil
}

func parseUnixTime(s string) (time.Time, error) {
	sec, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(sec, 0).UTC(), nil
}

// CommitTreeRequest is a request to create a new commit from a tree,
// bypassing the index, with explicit author/committer signatures.
type CommitTreeRequest struct {
	Tree    Hash
	Message string
	Parents []Hash

	Author, Committer *Signature
}

// CommitTree creates a new commit object pointing at the given tree and
// returns its hash.
func (r *Repository) CommitTree(ctx context.Context, req CommitTreeRequest) (Hash, error) {
	if req.Message == "" {
		return ZeroHash, fmt.Errorf("empty commit message")
	}
	if req.Committer == nil {
		req.Committer = req.Author
	}

	args := make([]string, 0, 2+2*len(req.Parents)+1)
	args = append(args, "commit-tree")
	for _, parent := range req.Parents {
		args = append(args, "-p", parent.String())
	}
	args = append(args, req.Tree.String())

	var env []string
	env = req.Author.appendEnv("AUTHOR", env)
	env = req.Committer.appendEnv("COMMITTER", env)

	out, err := r.gitCmd(ctx, args...).
		AppendEnv(env...).
		StdinString(req.Message).
		OutputString(r.exec)
	if err != nil {
		return ZeroHash, fmt.Errorf("commit-tree: %w", err)
	}

	return Hash(out), nil
}
