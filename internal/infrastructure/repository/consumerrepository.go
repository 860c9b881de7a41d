package repository

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/candlepin/candlepin-sub005/internal/domain/consumer"
	"github.com/candlepin/candlepin-sub005/internal/infrastructure/persistence/mappers"
	"github.com/candlepin/candlepin-sub005/internal/infrastructure/persistence/models"
	"github.com/candlepin/candlepin-sub005/internal/shared/constants"
	"github.com/candlepin/candlepin-sub005/internal/shared/db"
	"github.com/candlepin/candlepin-sub005/internal/shared/errors"
	"github.com/candlepin/candlepin-sub005/internal/shared/id"
	"github.com/candlepin/candlepin-sub005/internal/shared/logger"
)

// ConsumerRepositoryImpl implements consumer.Repository on GORM.
type ConsumerRepositoryImpl struct {
	db        *gorm.DB
	mapper    mappers.ConsumerMapper
	validator consumer.FactValidator
	logger    logger.Interface
}

// NewConsumerRepository creates a consumer repository. Facts are checked
// with validator before every write; a nil validator accepts any fact.
func NewConsumerRepository(db *gorm.DB, validator consumer.FactValidator, logger logger.Interface) consumer.Repository {
	return &ConsumerRepositoryImpl{
		db:        db,
		mapper:    mappers.NewConsumerMapper(),
		validator: validator,
		logger:    logger,
	}
}

func (r *ConsumerRepositoryImpl) Create(ctx context.Context, c *consumer.Consumer) error {
	if err := consumer.ValidateFacts(r.validator, c.Facts()); err != nil {
		return errors.NewValidationError("invalid consumer facts", err.Error())
	}
	if c.UUID() == "" {
		if err := c.SetUUID(uuid.NewString()); err != nil {
			return err
		}
	}
	if c.ID() == "" {
		if err := c.SetID(id.New()); err != nil {
			return err
		}
	}

	model := r.mapper.ToModel(c)
	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		if errors.IsDuplicateError(err) {
			return errors.NewConflictError("consumer already exists", c.UUID())
		}
		r.logger.Errorw("failed to create consumer", "uuid", c.UUID(), "owner_id", c.OwnerID(), "error", err)
		return fmt.Errorf("failed to create consumer: %w", err)
	}

	r.logger.Infow("consumer registered", "id", c.ID(), "uuid", c.UUID(), "owner_id", c.OwnerID())
	return nil
}

func (r *ConsumerRepositoryImpl) Update(ctx context.Context, c *consumer.Consumer) error {
	if err := consumer.ValidateFacts(r.validator, c.Facts()); err != nil {
		return errors.NewValidationError("invalid consumer facts", err.Error())
	}

	model := r.mapper.ToModel(c)
	now := time.Now().UTC()
	err := db.GetTxFromContext(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.ConsumerModel{}).
			Where("id = ? AND version = ?", model.ID, model.Version).
			Updates(map[string]any{
				"name":           model.Name,
				"username":       model.Username,
				"hypervisor_id":  model.HypervisorID,
				"environment_id": model.EnvironmentID,
				"updated_at":     now,
				"version":        model.Version + 1,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to update consumer: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return errors.NewConcurrencyError("consumer has been modified by another transaction or not found", c.UUID())
		}

		if err := tx.Where("consumer_id = ?", model.ID).Delete(&models.ConsumerFactModel{}).Error; err != nil {
			return fmt.Errorf("failed to clear consumer facts: %w", err)
		}
		if len(model.Facts) > 0 {
			if err := tx.Create(&model.Facts).Error; err != nil {
				return fmt.Errorf("failed to store consumer facts: %w", err)
			}
		}
		if err := tx.Where("consumer_id = ?", model.ID).Delete(&models.ConsumerGuestModel{}).Error; err != nil {
			return fmt.Errorf("failed to clear consumer guests: %w", err)
		}
		for i := range model.Guests {
			model.Guests[i].CreatedAt = now
			model.Guests[i].UpdatedAt = now
		}
		if len(model.Guests) > 0 {
			if err := tx.Create(&model.Guests).Error; err != nil {
				return fmt.Errorf("failed to store consumer guests: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		if !errors.IsConcurrencyError(err) {
			r.logger.Errorw("failed to update consumer", "uuid", c.UUID(), "error", err)
		}
		return err
	}

	c.IncrementVersion()
	return nil
}

// GetByUUID returns nil, nil when no consumer has the UUID.
func (r *ConsumerRepositoryImpl) GetByUUID(ctx context.Context, consumerUUID string) (*consumer.Consumer, error) {
	var model models.ConsumerModel
	err := db.GetTxFromContext(ctx, r.db).
		Preload("Facts").
		Preload("Guests").
		Where("uuid = ?", consumerUUID).
		First(&model).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Errorw("failed to get consumer", "uuid", consumerUUID, "error", err)
		return nil, fmt.Errorf("failed to get consumer: %w", err)
	}
	return r.mapper.ToEntity(&model)
}

func (r *ConsumerRepositoryImpl) VerifyAndLookup(ctx context.Context, consumerUUID string) (*consumer.Consumer, error) {
	c, err := r.GetByUUID(ctx, consumerUUID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, errors.NewNotFoundError("consumer not found", consumerUUID)
	}
	return c, nil
}

// GetHost returns the consumer of ownerID that most recently reported
// guestID, or nil. Lookups are memoized in the request's HostCache.
func (r *ConsumerRepositoryImpl) GetHost(ctx context.Context, guestID, ownerID string) (*consumer.Consumer, error) {
	if strings.TrimSpace(guestID) == "" {
		return nil, nil
	}

	cache, cached := consumer.HostCacheFrom(ctx)
	if cached {
		if host, ok := cache.Get(guestID, ownerID); ok {
			return host, nil
		}
	}

	var model models.ConsumerModel
	err := db.GetTxFromContext(ctx, r.db).
		Preload("Facts").
		Preload("Guests").
		Joins("JOIN "+constants.TableConsumerGuests+" g ON g.consumer_id = "+constants.TableConsumers+".id").
		Where(constants.TableConsumers+".owner_id = ?", ownerID).
		Where("g.guest_id_lower = ?", strings.ToLower(guestID)).
		Order("g.updated_at DESC").
		Order(constants.TableConsumers + ".updated_at DESC").
		First(&model).Error

	var host *consumer.Consumer
	switch {
	case err == nil:
		host, err = r.mapper.ToEntity(&model)
		if err != nil {
			return nil, err
		}
	case stderrors.Is(err, gorm.ErrRecordNotFound):
	default:
		r.logger.Errorw("failed to look up guest host", "guest_id", guestID, "owner_id", ownerID, "error", err)
		return nil, fmt.Errorf("failed to look up guest host: %w", err)
	}

	if cached {
		cache.Put(guestID, ownerID, host)
	}
	return host, nil
}
