package mappers

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"github.com/candlepin/candlepin-sub005/internal/domain/job"
	"github.com/candlepin/candlepin-sub005/internal/infrastructure/persistence/models"
)

// JobMapper converts between job records and their persistence models.
type JobMapper interface {
	ToEntity(model *models.AsyncJobModel) (*job.Status, error)
	ToModel(entity *job.Status) (*models.AsyncJobModel, error)
}

type jobMapper struct{}

func NewJobMapper() JobMapper {
	return &jobMapper{}
}

func (m *jobMapper) ToEntity(model *models.AsyncJobModel) (*job.Status, error) {
	if model == nil {
		return nil, nil
	}

	var metadata map[string]string
	if len(model.Metadata) > 0 {
		if err := json.Unmarshal(model.Metadata, &metadata); err != nil {
			return nil, fmt.Errorf("failed to decode job metadata: %w", err)
		}
	}

	entity, err := job.ReconstructStatus(model.ID, job.Params{
		JobKey:      model.JobKey,
		Name:        model.Name,
		Group:       model.JobGroup,
		Origin:      model.Origin,
		Executor:    model.Executor,
		Principal:   model.Principal,
		OwnerID:     model.OwnerID,
		MaxAttempts: model.MaxAttempts,
		Metadata:    metadata,
	}, job.Snapshot{
		State:         job.State(model.State),
		PreviousState: job.State(model.PreviousState),
		Attempts:      model.Attempts,
		StartTime:     model.StartTime,
		EndTime:       model.EndTime,
		Result:        model.Result,
		Version:       model.Version,
		CreatedAt:     model.CreatedAt,
		UpdatedAt:     model.UpdatedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct job %s: %w", model.ID, err)
	}
	return entity, nil
}

func (m *jobMapper) ToModel(entity *job.Status) (*models.AsyncJobModel, error) {
	if entity == nil {
		return nil, nil
	}

	metadata, err := json.Marshal(entity.Metadata())
	if err != nil {
		return nil, fmt.Errorf("failed to encode job metadata: %w", err)
	}

	return &models.AsyncJobModel{
		ID:            entity.ID(),
		JobKey:        entity.JobKey(),
		Name:          entity.Name(),
		JobGroup:      entity.Group(),
		Origin:        entity.Origin(),
		Executor:      entity.Executor(),
		Principal:     entity.Principal(),
		OwnerID:       entity.OwnerID(),
		State:         entity.State().String(),
		PreviousState: entity.PreviousState().String(),
		Attempts:      entity.Attempts(),
		MaxAttempts:   entity.MaxAttempts(),
		StartTime:     entity.StartTime(),
		EndTime:       entity.EndTime(),
		Metadata:      datatypes.JSON(metadata),
		Result:        entity.Result(),
		Version:       entity.Version(),
		CreatedAt:     entity.CreatedAt(),
		UpdatedAt:     entity.UpdatedAt(),
	}, nil
}
