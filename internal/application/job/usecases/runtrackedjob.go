package usecases

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/candlepin/candlepin-sub005/internal/domain/job"
	"github.com/candlepin/candlepin-sub005/internal/shared/logger"
)

// Task is one unit of background work. It returns the number of items it
// processed.
type Task interface {
	Execute(ctx context.Context) (int, error)
}

// TaskFunc adapts a function to Task.
type TaskFunc func(ctx context.Context) (int, error)

func (f TaskFunc) Execute(ctx context.Context) (int, error) { return f(ctx) }

// JobSpec describes a job to record before it runs.
type JobSpec struct {
	Key         string
	Name        string
	Group       string
	Origin      string
	Principal   string
	OwnerID     string
	MaxAttempts int
	Metadata    map[string]string
}

// RunTrackedJobUseCase runs a task and records its lifecycle as a job
// status: CREATED, QUEUED, then RUNNING once per attempt, ending COMPLETED
// or FAILED. Failed attempts pass through FAILED_WITH_RETRY while attempts
// remain.
type RunTrackedJobUseCase struct {
	jobRepo  job.Repository
	executor string
	logger   logger.Interface
}

func NewRunTrackedJobUseCase(jobRepo job.Repository, logger logger.Interface) *RunTrackedJobUseCase {
	executor, err := os.Hostname()
	if err != nil {
		executor = "unknown"
	}
	return &RunTrackedJobUseCase{
		jobRepo:  jobRepo,
		executor: executor,
		logger:   logger,
	}
}

// Execute records and runs task. The returned status reflects the final
// state even when the task failed; err is the task's last error.
func (uc *RunTrackedJobUseCase) Execute(ctx context.Context, spec JobSpec, task Task) (*job.Status, error) {
	status, err := job.NewStatus(job.Params{
		JobKey:      spec.Key,
		Name:        spec.Name,
		Group:       spec.Group,
		Origin:      spec.Origin,
		Executor:    uc.executor,
		Principal:   spec.Principal,
		OwnerID:     spec.OwnerID,
		MaxAttempts: spec.MaxAttempts,
		Metadata:    spec.Metadata,
	})
	if err != nil {
		return nil, err
	}
	if err := uc.jobRepo.Create(ctx, status); err != nil {
		return nil, fmt.Errorf("failed to create job status: %w", err)
	}
	if err := uc.transition(ctx, status, job.StateQueued); err != nil {
		return status, err
	}

	var taskErr error
	for {
		if err := uc.transition(ctx, status, job.StateRunning); err != nil {
			return status, err
		}
		attempt := status.IncrementAttempts()

		uc.logger.Infow("job started", "job_id", status.ID(), "job_key", status.JobKey(), "attempt", attempt)

		var processed int
		processed, taskErr = task.Execute(ctx)
		if taskErr == nil {
			status.SetResult(strconv.Itoa(processed))
			if err := uc.transition(ctx, status, job.StateCompleted); err != nil {
				return status, err
			}
			uc.logger.Infow("job completed", "job_id", status.ID(), "job_key", status.JobKey(), "processed", processed)
			return status, nil
		}

		uc.logger.Warnw("job attempt failed",
			"job_id", status.ID(),
			"job_key", status.JobKey(),
			"attempt", attempt,
			"max_attempts", status.MaxAttempts(),
			"error", taskErr,
		)
		status.SetResult(taskErr.Error())

		if !status.CanRetry() || ctx.Err() != nil {
			break
		}
		if err := uc.transition(ctx, status, job.StateFailedWithRetry); err != nil {
			return status, err
		}
	}

	if err := uc.transition(context.WithoutCancel(ctx), status, job.StateFailed); err != nil {
		return status, err
	}
	uc.logger.Errorw("job failed", "job_id", status.ID(), "job_key", status.JobKey(), "attempts", status.Attempts(), "error", taskErr)
	return status, taskErr
}

func (uc *RunTrackedJobUseCase) transition(ctx context.Context, status *job.Status, target job.State) error {
	if err := status.SetState(target); err != nil {
		return err
	}
	if err := uc.jobRepo.Update(ctx, status); err != nil {
		return fmt.Errorf("failed to record job state %s: %w", target, err)
	}
	return nil
}

// Track wraps task so that every run of the returned Task is recorded as a
// new job built from spec.
func (uc *RunTrackedJobUseCase) Track(spec JobSpec, task Task) Task {
	return TaskFunc(func(ctx context.Context) (int, error) {
		var processed int
		_, err := uc.Execute(ctx, spec, TaskFunc(func(ctx context.Context) (int, error) {
			n, err := task.Execute(ctx)
			processed = n
			return n, err
		}))
		return processed, err
	})
}
