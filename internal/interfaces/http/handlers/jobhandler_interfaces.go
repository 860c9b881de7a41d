package handlers

import (
	"context"

	jobdto "github.com/candlepin/candlepin-sub005/internal/application/job/dto"
)

// Use case interfaces for JobHandler

type getJobUseCase interface {
	Execute(ctx context.Context, jobID string) (*jobdto.JobResponse, error)
}

type listJobsUseCase interface {
	Execute(ctx context.Context, request jobdto.ListJobsRequest) (*jobdto.ListJobsResponse, error)
}

type cancelJobUseCase interface {
	Execute(ctx context.Context, jobID string) (*jobdto.JobResponse, error)
}
