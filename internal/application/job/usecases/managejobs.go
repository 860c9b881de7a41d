package usecases

import (
	"context"
	stderrors "errors"

	"github.com/candlepin/candlepin-sub005/internal/application/job/dto"
	"github.com/candlepin/candlepin-sub005/internal/domain/job"
	"github.com/candlepin/candlepin-sub005/internal/domain/permission"
	"github.com/candlepin/candlepin-sub005/internal/shared/errors"
	"github.com/candlepin/candlepin-sub005/internal/shared/logger"
)

type GetJobUseCase struct {
	jobRepo job.Repository
	logger  logger.Interface
}

func NewGetJobUseCase(jobRepo job.Repository, logger logger.Interface) *GetJobUseCase {
	return &GetJobUseCase{jobRepo: jobRepo, logger: logger}
}

func (uc *GetJobUseCase) Execute(ctx context.Context, id string) (*dto.JobResponse, error) {
	status, err := findVisibleJob(ctx, uc.jobRepo, id, permission.AccessReadOnly)
	if err != nil {
		return nil, err
	}
	return dto.ToJobResponse(status), nil
}

type ListJobsUseCase struct {
	jobRepo job.Repository
	logger  logger.Interface
}

func NewListJobsUseCase(jobRepo job.Repository, logger logger.Interface) *ListJobsUseCase {
	return &ListJobsUseCase{jobRepo: jobRepo, logger: logger}
}

func (uc *ListJobsUseCase) Execute(ctx context.Context, request dto.ListJobsRequest) (*dto.ListJobsResponse, error) {
	filter := job.Filter{
		JobKey:  request.JobKey,
		OwnerID: request.OwnerID,
		Page:    request.Page,
	}
	for _, raw := range request.States {
		state, err := job.ParseState(raw)
		if err != nil {
			return nil, errors.NewValidationError(err.Error())
		}
		filter.States = append(filter.States, state)
	}

	// principals without full access only see the jobs of an owner they
	// can read
	if principal, ok := permission.PrincipalFrom(ctx); ok && !principal.HasFullAccess() {
		if filter.OwnerID == "" || !principal.CanAccessOwner(filter.OwnerID, permission.AccessReadOnly) {
			return nil, errors.NewForbiddenError("owner is required to list jobs")
		}
	}

	page, err := uc.jobRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return dto.ToListJobsResponse(page), nil
}

// CancelJobUseCase moves a job to CANCELED. Jobs already in a terminal
// state cannot be canceled.
type CancelJobUseCase struct {
	jobRepo job.Repository
	logger  logger.Interface
}

func NewCancelJobUseCase(jobRepo job.Repository, logger logger.Interface) *CancelJobUseCase {
	return &CancelJobUseCase{jobRepo: jobRepo, logger: logger}
}

func (uc *CancelJobUseCase) Execute(ctx context.Context, id string) (*dto.JobResponse, error) {
	uc.logger.Infow("executing cancel job use case", "job_id", id)

	status, err := findVisibleJob(ctx, uc.jobRepo, id, permission.AccessAll)
	if err != nil {
		return nil, err
	}
	if err := status.SetState(job.StateCanceled); err != nil {
		if stderrors.Is(err, job.ErrInvalidStateTransition) {
			return nil, errors.NewIllegalStateError("job cannot be canceled", status.State().String())
		}
		return nil, err
	}
	if err := uc.jobRepo.Update(ctx, status); err != nil {
		return nil, err
	}

	uc.logger.Infow("job canceled", "job_id", id, "previous_state", status.PreviousState())
	return dto.ToJobResponse(status), nil
}

// findVisibleJob loads a job, reporting jobs of owners the caller cannot
// access as missing.
func findVisibleJob(ctx context.Context, repo job.Repository, id string, required permission.Access) (*job.Status, error) {
	status, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if status == nil {
		return nil, errors.NewNotFoundError("job not found", id)
	}
	if principal, ok := permission.PrincipalFrom(ctx); ok && !principal.HasFullAccess() {
		if status.OwnerID() == "" || !principal.CanAccessOwner(status.OwnerID(), required) {
			return nil, errors.NewNotFoundError("job not found", id)
		}
	}
	return status, nil
}
