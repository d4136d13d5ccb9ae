package branchdeck

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/develar/branch-deck/internal/git"
	"github.com/develar/branch-deck/internal/progress"
	"github.com/develar/branch-deck/internal/silog"
)

// DefaultWorkerCount bounds the Cherry-pick Executor's worker pool: it
// never runs more workers than there are branch plans, and never more
// than this, regardless of host parallelism.
const DefaultWorkerCount = 4

// workerPoolSize picks min(len(plans), host parallelism, DefaultWorkerCount).
func workerPoolSize(planCount int) int {
	n := runtime.GOMAXPROCS(0)
	if n > DefaultWorkerCount {
		n = DefaultWorkerCount
	}
	if planCount < n {
		n = planCount
	}
	if n < 1 {
		n = 1
	}
	return n
}

// ExecuteOptions configures a round of [Execute].
type ExecuteOptions struct {
	// Repo is the shared repository every worker's worktree is linked
	// against.
	Repo *git.Repository

	// WorktreeDir is the directory worker worktrees are created under,
	// one subdirectory per worker, e.g.
	// "<git-dir>/branch-deck/worktrees/0".
	WorktreeDir string

	Log  *silog.Logger
	Sink progress.Sink

	// Workers overrides the pool size computed by [workerPoolSize].
	// Zero means "compute it".
	Workers int
}

// worker owns one private worktree and executes plans handed to it from
// a shared queue, strictly one at a time.
type worker struct {
	id int
	wt *git.Worktree
}

// Execute runs every plan in plans through a bounded pool of worker
// worktrees, returning one [BranchOutcome] per plan (same order as
// input). A plan whose fingerprint already matches the branch's current
// tip is reported [OutcomeUnchanged] without touching its worktree.
func Execute(ctx context.Context, opts ExecuteOptions, plans []BranchPlan) ([]BranchOutcome, error) {
	outcomes := make([]BranchOutcome, len(plans))

	workers, err := provisionWorkers(ctx, opts)
	if err != nil {
		return nil, err
	}

	n := opts.Workers
	if n <= 0 {
		n = workerPoolSize(len(plans))
	}
	if n > len(workers) {
		n = len(workers)
	}

	// free holds the workers not running a plan. A goroutine takes one
	// for the whole plan and returns it afterwards, so no worktree is
	// used by two plans at once.
	free := make(chan *worker, len(workers))
	for _, w := range workers {
		free <- w
	}

	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(n)

	for i, plan := range plans {
		i, plan := i, plan
		group.Go(func() error {
			w := <-free
			defer func() { free <- w }()
			outcome, err := executePlan(gctx, opts, w, plan)
			if err != nil {
				// Branch-scoped errors must not cancel gctx and abort
				// every other in-flight worker; they become an
				// error-tagged outcome instead. Only a genuinely
				// round-scoped failure (cancellation, worker
				// provisioning) is returned here, which does cancel
				// the round via errgroup.WithContext.
				var raceErr *RefRaceLostError
				if errors.As(err, &raceErr) {
					outcomes[i] = BranchOutcome{
						Kind:     OutcomeRefRaceLost,
						FullName: plan.FullName(),
						Err:      raceErr,
					}
					return nil
				}
				var branchErr *BranchError
				if errors.As(err, &branchErr) {
					outcomes[i] = BranchOutcome{
						Kind:     OutcomeFailed,
						FullName: plan.FullName(),
						Err:      branchErr,
					}
					return nil
				}
				return err
			}
			outcomes[i] = outcome
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		if c, ok := AsCancelled(err); ok {
			return nil, c
		}
		return nil, err
	}

	return outcomes, nil
}

// provisionWorkers creates (or reuses, if already present on disk) one
// linked worktree per worker under opts.WorktreeDir.
func provisionWorkers(ctx context.Context, opts ExecuteOptions) ([]*worker, error) {
	n := workerPoolSize(DefaultWorkerCount)

	workers := make([]*worker, 0, n)
	for i := range n {
		path := filepath.Join(opts.WorktreeDir, fmt.Sprintf("%d", i))

		wt, err := opts.Repo.OpenWorktree(ctx, path)
		if err != nil {
			wt, err = opts.Repo.AddWorktree(ctx, git.AddWorktreeRequest{
				Path:   path,
				Detach: true,
			})
			if err != nil {
				return nil, NewIoError(fmt.Sprintf("provision worker %d worktree", i), err)
			}
		}

		workers = append(workers, &worker{id: i, wt: wt})
	}
	return workers, nil
}

// executePlan runs one branch plan to completion on worker w: checks the
// fingerprint cache, and if it misses, resets the worktree to the
// baseline and replays the plan's commits one at a time.
func executePlan(ctx context.Context, opts ExecuteOptions, w *worker, plan BranchPlan) (BranchOutcome, error) {
	fullName := plan.FullName()
	log := opts.Log.With("branch", fullName, "worker", w.id)

	_ = opts.Sink.Send(ctx, progress.KindTaskStart, fullName,
		fmt.Sprintf("cherry-picking %d commits", len(plan.OrderedCommits)), nil)

	refName := plan.RefName()
	currentTip, err := opts.Repo.PeelToCommit(ctx, refName)
	hadExistingRef := err == nil
	if err != nil {
		if !errors.Is(err, git.ErrNotExist) {
			return BranchOutcome{}, NewBranchError(fullName, "resolve current tip", err)
		}
		currentTip = git.ZeroHash
	}

	fingerprint := computeFingerprint(plan.Baseline, plan.OrderedCommits)
	if hadExistingRef {
		cached, ok, err := LookupFingerprint(ctx, opts.Repo, currentTip)
		if err != nil {
			log.Warn("fingerprint lookup failed, recomputing", "error", err)
		} else if ok && cached == fingerprint {
			outcome := BranchOutcome{
				Kind:        OutcomeUnchanged,
				FullName:    fullName,
				TipHash:     currentTip,
				CommitCount: len(plan.OrderedCommits),
			}
			_ = opts.Sink.Send(ctx, progress.KindTaskEnd, fullName, "unchanged", outcome)
			return outcome, nil
		}
	}

	tip, conflict, err := replay(ctx, w, plan, log)
	if err != nil {
		return BranchOutcome{}, err
	}

	if conflict != nil {
		outcome := BranchOutcome{Kind: OutcomeConflicted, FullName: fullName, Conflict: conflict}
		_ = opts.Sink.Send(ctx, progress.KindTaskEnd, fullName, "conflict", outcome)
		return outcome, nil
	}

	if err := setRefWithRetry(ctx, opts.Repo, fullName, refName, tip, currentTip); err != nil {
		return BranchOutcome{}, err
	}

	if err := StoreFingerprint(ctx, opts.Repo, currentTip, tip, fingerprint); err != nil {
		log.Warn("failed to store fingerprint, branch will be recomputed next round", "error", err)
	}

	kind := OutcomeCreated
	if hadExistingRef {
		kind = OutcomeUpdated
	}
	outcome := BranchOutcome{
		Kind:        kind,
		FullName:    fullName,
		TipHash:     tip,
		CommitCount: len(plan.OrderedCommits),
	}
	_ = opts.Sink.Send(ctx, progress.KindTaskEnd, fullName, kind.String(), outcome)
	return outcome, nil
}

// setRefWithRetry performs the ref CAS that lands tip onto refName,
// expecting the ref to still be at observedTip. If the CAS fails
// (another worker or process moved the ref concurrently), it re-reads
// the ref's current value and retries once against that value; a
// second failure is reported as a [RefRaceLostError] for fullName only.
func setRefWithRetry(ctx context.Context, repo *git.Repository, fullName, refName string, tip git.Hash, observedTip git.Hash) error {
	firstErr := repo.SetRef(ctx, git.SetRefRequest{
		Ref:     refName,
		Hash:    tip,
		OldHash: observedTip,
	})
	if firstErr == nil {
		return nil
	}

	reread, err := repo.PeelToCommit(ctx, refName)
	if err != nil {
		if !errors.Is(err, git.ErrNotExist) {
			return NewBranchError(fullName, "re-read ref after CAS failure", err)
		}
		reread = git.ZeroHash
	}

	secondErr := repo.SetRef(ctx, git.SetRefRequest{
		Ref:     refName,
		Hash:    tip,
		OldHash: reread,
	})
	if secondErr == nil {
		return nil
	}

	return NewRefRaceLostError(fullName, secondErr)
}

// replay resets w to plan.Baseline and cherry-picks plan's commits in
// order. It returns the resulting tip hash, or a [ConflictReport] if a
// cherry-pick could not be applied -- never both.
func replay(ctx context.Context, w *worker, plan BranchPlan, log *silog.Logger) (git.Hash, *ConflictReport, error) {
	if err := w.wt.Reset(ctx, plan.Baseline.Hash.String(), git.ResetHard); err != nil {
		return "", nil, NewBranchError(plan.FullName(), "reset worktree to baseline", err)
	}

	for idx, commit := range plan.OrderedCommits {
		err := w.wt.CherryPick(ctx, git.CherryPickRequest{
			Commit:     commit.Hash,
			AllowEmpty: true,
		})
		if err == nil {
			continue
		}

		var interrupted *git.CherryPickInterruptedError
		if !errors.As(err, &interrupted) {
			return "", nil, NewBranchError(plan.FullName(), "cherry-pick", err)
		}

		log.Debug("cherry-pick conflict", "commit", commit.Hash, "index", idx)
		report, analyzeErr := analyzeConflict(ctx, w, plan, commit)
		if analyzeErr != nil {
			return "", nil, analyzeErr
		}
		if abortErr := w.wt.CherryPickAbort(ctx); abortErr != nil {
			log.Warn("failed to abort interrupted cherry-pick", "error", abortErr)
		}
		return "", report, nil
	}

	tip, err := w.wt.Head(ctx)
	if err != nil {
		return "", nil, NewBranchError(plan.FullName(), "resolve worker HEAD", err)
	}

	return tip, nil, nil
}
