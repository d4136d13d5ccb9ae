package git

import (
	"context"
	"fmt"
	"iter"

	"github.com/develar/branch-deck/internal/scanutil"
)

// FileStatus is a single file entry in a diff.
type FileStatus struct {
	// Status is the single-letter status code from
	// git-diff's --name-status output: A(dded), D(eleted),
	// M(odified), R(enamed), T(ype changed), U(nmerged), C(opied).
	Status string

	// Path to the file relative to the tree root.
	Path string
}

// DiffTree compares two trees and yields the files that differ between
// them. The Conflict Analyzer uses this to classify which files a
// cherry-picked commit touches relative to its parent.
func (r *Repository) DiffTree(ctx context.Context, treeish1, treeish2 string) iter.Seq2[FileStatus, error] {
	cmd := r.gitCmd(ctx, "diff-tree", "-r", "--name-status", "-z", treeish1, treeish2)
	return scanFileStatuses(cmd, r.exec)
}

// DiffTreePaths reports the set of paths in treeish1..treeish2, without
// the status codes. Convenience wrapper over [Repository.DiffTree] for
// the minimal-missing-commits search, which only needs to know whether
// a commit's diff *touches* a conflicting path.
func (r *Repository) DiffTreePaths(ctx context.Context, treeish1, treeish2 string) (map[string]struct{}, error) {
	paths := make(map[string]struct{})
	for fs, err := range r.DiffTree(ctx, treeish1, treeish2) {
		if err != nil {
			return nil, err
		}
		paths[fs.Path] = struct{}{}
	}
	return paths, nil
}

func scanFileStatuses(cmd *gitCmd, exec execer) iter.Seq2[FileStatus, error] {
	return func(yield func(FileStatus, error) bool) {
		var status string
		var expectingPath bool
		for line, err := range cmd.Scan(exec, scanutil.SplitNull) {
			if err != nil {
				yield(FileStatus{}, fmt.Errorf("diff: %w", err))
				return
			}
			if len(line) == 0 {
				continue
			}

			if !expectingPath {
				status = string(line)
				expectingPath = true
				continue
			}

			if !yield(FileStatus{Status: status, Path: string(line)}, nil) {
				return
			}
			expectingPath = false
		}
	}
}
