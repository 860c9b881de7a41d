package dto

import (
	"time"

	"github.com/candlepin/candlepin-sub005/internal/domain/job"
	"github.com/candlepin/candlepin-sub005/internal/shared/query"
)

// ListJobsRequest filters job listings. States are matched case-insensitively.
type ListJobsRequest struct {
	JobKey  string
	OwnerID string
	States  []string
	Page    *query.PageRequest
}

// JobResponse is the public view of a job record.
type JobResponse struct {
	ID            string            `json:"id"`
	JobKey        string            `json:"job_key"`
	Name          string            `json:"name"`
	Group         string            `json:"group,omitempty"`
	Origin        string            `json:"origin,omitempty"`
	Executor      string            `json:"executor,omitempty"`
	Principal     string            `json:"principal,omitempty"`
	OwnerID       string            `json:"owner_id,omitempty"`
	State         string            `json:"state"`
	PreviousState string            `json:"previous_state,omitempty"`
	Attempts      int               `json:"attempts"`
	MaxAttempts   int               `json:"max_attempts"`
	StartTime     *time.Time        `json:"start_time,omitempty"`
	EndTime       *time.Time        `json:"end_time,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
	Result        string            `json:"result,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// ListJobsResponse is one page of jobs.
type ListJobsResponse struct {
	Jobs       []*JobResponse `json:"jobs"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	PerPage    int            `json:"per_page"`
	TotalPages int            `json:"total_pages"`
}

func ToJobResponse(s *job.Status) *JobResponse {
	if s == nil {
		return nil
	}
	return &JobResponse{
		ID:            s.ID(),
		JobKey:        s.JobKey(),
		Name:          s.Name(),
		Group:         s.Group(),
		Origin:        s.Origin(),
		Executor:      s.Executor(),
		Principal:     s.Principal(),
		OwnerID:       s.OwnerID(),
		State:         s.State().String(),
		PreviousState: s.PreviousState().String(),
		Attempts:      s.Attempts(),
		MaxAttempts:   s.MaxAttempts(),
		StartTime:     s.StartTime(),
		EndTime:       s.EndTime(),
		Metadata:      s.Metadata(),
		Result:        s.Result(),
		CreatedAt:     s.CreatedAt(),
		UpdatedAt:     s.UpdatedAt(),
	}
}

func ToListJobsResponse(page *query.Page[*job.Status]) *ListJobsResponse {
	jobs := make([]*JobResponse, 0, len(page.Items))
	for _, s := range page.Items {
		jobs = append(jobs, ToJobResponse(s))
	}
	return &ListJobsResponse{
		Jobs:       jobs,
		Total:      page.Total,
		Page:       page.Page,
		PerPage:    page.PerPage,
		TotalPages: page.TotalPages(),
	}
}
