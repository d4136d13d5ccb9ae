package branchdeck

import (
	"context"
	"errors"
	"os/exec"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "bad input", NewUserError("bad input").Error())
	assert.Equal(t, "bad input: 42", NewUserError("bad input: %d", 42).Error())

	assert.Equal(t, "list commits", NewRepositoryError("list commits", nil).Error())
	wrapped := errors.New("boom")
	assert.Equal(t, "list commits: boom", NewRepositoryError("list commits", wrapped).Error())

	assert.Equal(t, "branch alice/feature: cherry-pick failed", NewBranchError("alice/feature", "cherry-pick failed", nil).Error())
	assert.Equal(t, "branch alice/feature: cherry-pick failed: boom", NewBranchError("alice/feature", "cherry-pick failed", wrapped).Error())

	assert.Equal(t, "fetch remote: boom", NewIoError("fetch remote", wrapped).Error())
}

func TestErrorsUnwrap(t *testing.T) {
	wrapped := errors.New("boom")

	repoErr := NewRepositoryError("x", wrapped)
	assert.ErrorIs(t, repoErr, wrapped)

	branchErr := NewBranchError("x", "y", wrapped)
	assert.ErrorIs(t, branchErr, wrapped)

	ioErr := NewIoError("x", wrapped)
	assert.ErrorIs(t, ioErr, wrapped)
}

func TestAsCancelled(t *testing.T) {
	c, ok := AsCancelled(context.Canceled)
	assert.True(t, ok)
	assert.ErrorIs(t, c, context.Canceled)

	c, ok = AsCancelled(context.DeadlineExceeded)
	assert.True(t, ok)
	assert.ErrorIs(t, c, context.DeadlineExceeded)

	_, ok = AsCancelled(errors.New("unrelated"))
	assert.False(t, ok)

	_, ok = AsCancelled(nil)
	assert.False(t, ok)

	// Already-wrapped Cancelled errors are recognized, not double-wrapped.
	inner, _ := AsCancelled(context.Canceled)
	again, ok := AsCancelled(inner)
	assert.True(t, ok)
	assert.Same(t, inner, again)
}

func TestIsTransient(t *testing.T) {
	assert.False(t, IsTransient(nil))
	assert.False(t, IsTransient(errors.New("not an exit error")))

	assert.True(t, IsTransient(exitWithCode(t, 128)))
	assert.False(t, IsTransient(exitWithCode(t, 1)))
}

// exitWithCode runs a subprocess that exits with code and returns the
// resulting *exec.ExitError, for exercising [IsTransient] against a
// real exit status rather than a hand-built fake.
func exitWithCode(t *testing.T, code int) error {
	t.Helper()
	cmd := exec.Command("sh", "-c", "exit "+strconv.Itoa(code))
	err := cmd.Run()
	if err == nil {
		t.Fatalf("expected command to exit with code %d", code)
	}
	return err
}
