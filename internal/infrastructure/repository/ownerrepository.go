package repository

import (
	"context"
	stderrors "errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/candlepin/candlepin-sub005/internal/domain/owner"
	"github.com/candlepin/candlepin-sub005/internal/infrastructure/persistence/mappers"
	"github.com/candlepin/candlepin-sub005/internal/infrastructure/persistence/models"
	"github.com/candlepin/candlepin-sub005/internal/shared/db"
	"github.com/candlepin/candlepin-sub005/internal/shared/errors"
	"github.com/candlepin/candlepin-sub005/internal/shared/id"
	"github.com/candlepin/candlepin-sub005/internal/shared/logger"
)

type OwnerRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.OwnerMapper
	logger logger.Interface
}

// NewOwnerRepository creates a new owner repository instance
func NewOwnerRepository(db *gorm.DB, logger logger.Interface) owner.Repository {
	return &OwnerRepositoryImpl{
		db:     db,
		mapper: mappers.NewOwnerMapper(),
		logger: logger,
	}
}

func (r *OwnerRepositoryImpl) Create(ctx context.Context, o *owner.Owner) error {
	if o.ID() == "" {
		if err := o.SetID(id.New()); err != nil {
			return err
		}
	}

	if err := db.GetTxFromContext(ctx, r.db).Create(r.mapper.ToModel(o)).Error; err != nil {
		if errors.IsDuplicateError(err) {
			return errors.NewConflictError("owner key already exists", o.Key())
		}
		r.logger.Errorw("failed to create owner", "key", o.Key(), "error", err)
		return fmt.Errorf("failed to create owner: %w", err)
	}

	r.logger.Infow("owner created", "id", o.ID(), "key", o.Key())
	return nil
}

func (r *OwnerRepositoryImpl) GetByID(ctx context.Context, ownerID string) (*owner.Owner, error) {
	return r.getBy(ctx, "id", ownerID)
}

func (r *OwnerRepositoryImpl) GetByKey(ctx context.Context, key string) (*owner.Owner, error) {
	return r.getBy(ctx, "owner_key", key)
}

func (r *OwnerRepositoryImpl) getBy(ctx context.Context, column, value string) (*owner.Owner, error) {
	var model models.OwnerModel
	if err := db.GetTxFromContext(ctx, r.db).Where(column+" = ?", value).First(&model).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Errorw("failed to get owner", column, value, "error", err)
		return nil, fmt.Errorf("failed to get owner: %w", err)
	}
	return r.mapper.ToEntity(&model)
}
