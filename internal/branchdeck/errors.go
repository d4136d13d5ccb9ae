package branchdeck

import (
	"context"
	"errors"
	"fmt"

	"github.com/develar/branch-deck/internal/git"
)

// UserError reports a problem caused by how the user invoked the sync
// engine, not by repository state or I/O: an unset user prefix, an
// invalid prefix pattern, or similar. The CLI renders these without a
// stack trace.
type UserError struct {
	Msg string
}

func (e *UserError) Error() string { return e.Msg }

// NewUserError builds a [UserError].
func NewUserError(format string, args ...any) error {
	return &UserError{Msg: fmt.Sprintf(format, args...)}
}

// RepositoryError reports that the repository itself is in a state the
// sync engine cannot proceed from: no commits, a detached HEAD where a
// branch was expected, or a missing baseline.
type RepositoryError struct {
	Msg string
	Err error
}

func (e *RepositoryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *RepositoryError) Unwrap() error { return e.Err }

// NewRepositoryError builds a [RepositoryError] wrapping a lower-level
// cause.
func NewRepositoryError(msg string, err error) error {
	return &RepositoryError{Msg: msg, Err: err}
}

// NoBaseline is a [RepositoryError] raised when the Baseline Resolver
// cannot find any ancestor to cherry-pick onto -- the repository has no
// commits at all, or HEAD is unborn.
var NoBaseline = &RepositoryError{Msg: "no baseline commit found"}

// BranchError reports a failure specific to one branch plan's
// execution: a ref CAS conflict, a worktree that could not be reset, or
// similar. It carries the branch's full name so the caller can attach
// it to the right [BranchOutcome].
type BranchError struct {
	FullName string
	Msg      string
	Err      error
}

func (e *BranchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("branch %s: %s: %v", e.FullName, e.Msg, e.Err)
	}
	return fmt.Sprintf("branch %s: %s", e.FullName, e.Msg)
}

func (e *BranchError) Unwrap() error { return e.Err }

// NewBranchError builds a [BranchError] for the named branch.
func NewBranchError(fullName, msg string, err error) error {
	return &BranchError{FullName: fullName, Msg: msg, Err: err}
}

// RefRaceLostError reports that the ref CAS for a branch failed twice
// in a row: once, then again after re-reading the ref's current value.
// Scoped to one branch, same as [BranchError].
type RefRaceLostError struct {
	FullName string
	Err      error
}

func (e *RefRaceLostError) Error() string {
	return fmt.Sprintf("branch %s: lost the ref race twice", e.FullName)
}

func (e *RefRaceLostError) Unwrap() error { return e.Err }

// NewRefRaceLostError builds a [RefRaceLostError] for the named branch.
func NewRefRaceLostError(fullName string, err error) error {
	return &RefRaceLostError{FullName: fullName, Err: err}
}

// IoError wraps a failure from a Git subprocess or the filesystem that
// is not specific to one branch -- a fetch that failed, a worktree that
// could not be created. Exit code 128 from git indicates a transient
// condition (a stale lock file, a racing concurrent process) worth
// retrying once before surfacing to the user.
type IoError struct {
	Msg string
	Err error
}

func (e *IoError) Error() string {
	return fmt.Sprintf("%s: %v", e.Msg, e.Err)
}

func (e *IoError) Unwrap() error { return e.Err }

// NewIoError builds an [IoError].
func NewIoError(msg string, err error) error {
	return &IoError{Msg: msg, Err: err}
}

// IsTransient reports whether err looks like a transient Git failure
// (exit code 128) worth retrying once, as opposed to a conflict or a
// genuine misuse error.
func IsTransient(err error) bool {
	return git.IsExitError(err) && git.ExitCode(err) == 128
}

// Cancelled wraps context.Canceled or context.DeadlineExceeded so
// callers can distinguish a deliberate abort from a failure, without
// reporting it as an error to the user.
type Cancelled struct {
	Err error
}

func (e *Cancelled) Error() string { return fmt.Sprintf("cancelled: %v", e.Err) }
func (e *Cancelled) Unwrap() error { return e.Err }

// AsCancelled reports whether err is, or wraps, context cancellation,
// returning the normalized [Cancelled] error if so.
func AsCancelled(err error) (*Cancelled, bool) {
	if err == nil {
		return nil, false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &Cancelled{Err: err}, true
	}
	var c *Cancelled
	if errors.As(err, &c) {
		return c, true
	}
	return nil, false
}
