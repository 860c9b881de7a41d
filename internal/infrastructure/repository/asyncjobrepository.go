package repository

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/candlepin/candlepin-sub005/internal/domain/job"
	"github.com/candlepin/candlepin-sub005/internal/infrastructure/persistence/mappers"
	"github.com/candlepin/candlepin-sub005/internal/infrastructure/persistence/models"
	"github.com/candlepin/candlepin-sub005/internal/shared/db"
	"github.com/candlepin/candlepin-sub005/internal/shared/errors"
	"github.com/candlepin/candlepin-sub005/internal/shared/id"
	"github.com/candlepin/candlepin-sub005/internal/shared/logger"
	"github.com/candlepin/candlepin-sub005/internal/shared/query"
)

var jobSortColumns = map[string]string{
	"id":      "id",
	"key":     "job_key",
	"state":   "state",
	"created": "created_at",
	"updated": "updated_at",
}

// AsyncJobRepositoryImpl implements job.Repository on GORM.
type AsyncJobRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.JobMapper
	logger logger.Interface
}

// NewAsyncJobRepository creates a new job repository instance
func NewAsyncJobRepository(db *gorm.DB, logger logger.Interface) job.Repository {
	return &AsyncJobRepositoryImpl{
		db:     db,
		mapper: mappers.NewJobMapper(),
		logger: logger,
	}
}

func (r *AsyncJobRepositoryImpl) Create(ctx context.Context, s *job.Status) error {
	if s.ID() == "" {
		if err := s.SetID(id.New()); err != nil {
			return err
		}
	}

	model, err := r.mapper.ToModel(s)
	if err != nil {
		return err
	}
	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		r.logger.Errorw("failed to create job", "job_key", s.JobKey(), "error", err)
		return fmt.Errorf("failed to create job: %w", err)
	}

	r.logger.Debugw("job created", "id", s.ID(), "job_key", s.JobKey())
	return nil
}

// Update stores s with an optimistic version check.
func (r *AsyncJobRepositoryImpl) Update(ctx context.Context, s *job.Status) error {
	model, err := r.mapper.ToModel(s)
	if err != nil {
		return err
	}

	result := db.GetTxFromContext(ctx, r.db).Model(&models.AsyncJobModel{}).
		Where("id = ? AND version = ?", model.ID, model.Version).
		Updates(map[string]any{
			"state":          model.State,
			"previous_state": model.PreviousState,
			"attempts":       model.Attempts,
			"max_attempts":   model.MaxAttempts,
			"start_time":     model.StartTime,
			"end_time":       model.EndTime,
			"metadata":       model.Metadata,
			"result":         model.Result,
			"updated_at":     time.Now().UTC(),
			"version":        model.Version + 1,
		})
	if result.Error != nil {
		r.logger.Errorw("failed to update job", "id", model.ID, "error", result.Error)
		return fmt.Errorf("failed to update job: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.NewConcurrencyError("job has been modified by another process or not found", model.ID)
	}

	s.IncrementVersion()
	return nil
}

// GetByID returns nil, nil when the job does not exist.
func (r *AsyncJobRepositoryImpl) GetByID(ctx context.Context, jobID string) (*job.Status, error) {
	var model models.AsyncJobModel
	if err := db.GetTxFromContext(ctx, r.db).Where("id = ?", jobID).First(&model).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Errorw("failed to get job", "id", jobID, "error", err)
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return r.mapper.ToEntity(&model)
}

func (r *AsyncJobRepositoryImpl) List(ctx context.Context, f job.Filter) (*query.Page[*job.Status], error) {
	orderBy, err := f.Page.OrderClause(jobSortColumns, "id")
	if err != nil {
		return nil, err
	}

	tx := db.GetTxFromContext(ctx, r.db).Model(&models.AsyncJobModel{})
	if f.JobKey != "" {
		tx = tx.Where("job_key = ?", f.JobKey)
	}
	if f.OwnerID != "" {
		tx = tx.Where("owner_id = ?", f.OwnerID)
	}
	if len(f.States) > 0 {
		states := make([]string, len(f.States))
		for i, s := range f.States {
			states[i] = s.String()
		}
		tx = tx.Where("state IN ?", states)
	}
	tx = tx.Session(&gorm.Session{})

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		r.logger.Errorw("failed to count jobs", "error", err)
		return nil, fmt.Errorf("failed to count jobs: %w", err)
	}

	find := tx.Order(orderBy)
	if f.Page.IsPaging() {
		find = find.Offset(f.Page.Offset()).Limit(f.Page.Limit())
	}
	var rows []models.AsyncJobModel
	if err := find.Find(&rows).Error; err != nil {
		r.logger.Errorw("failed to list jobs", "error", err)
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}

	items := make([]*job.Status, 0, len(rows))
	for i := range rows {
		s, err := r.mapper.ToEntity(&rows[i])
		if err != nil {
			return nil, err
		}
		items = append(items, s)
	}

	page := query.Page[*job.Status]{Items: items, Total: total, Page: 1, PerPage: len(items)}
	if f.Page.IsPaging() {
		page.Page = f.Page.Page
		page.PerPage = f.Page.PerPage
	}
	return &page, nil
}
