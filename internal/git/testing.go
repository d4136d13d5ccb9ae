package git

import (
	"io"
	"testing"

	"github.com/develar/branch-deck/internal/silog"
)

//go:generate mockgen -destination=mock_test.go -package=git -source=exec.go execer

// NewTestRepository builds a [Repository] rooted at dir, using exec for
// all subprocess invocations instead of the real git binary. Tests pass
// a mock execer (see mock_test.go) to assert on the exact git
// subcommands issued without touching a real repository.
func NewTestRepository(t testing.TB, dir string, exec execer) *Repository {
	t.Helper()
	if exec == nil {
		exec = _realExec
	}
	return newRepository(dir, dir+"/.git", silog.New(io.Discard, nil), exec)
}
