package repository

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/candlepin/candlepin-sub005/internal/domain/entitlement"
	"github.com/candlepin/candlepin-sub005/internal/domain/shared"
	"github.com/candlepin/candlepin-sub005/internal/infrastructure/persistence/mappers"
	"github.com/candlepin/candlepin-sub005/internal/infrastructure/persistence/models"
	"github.com/candlepin/candlepin-sub005/internal/shared/constants"
	"github.com/candlepin/candlepin-sub005/internal/shared/db"
	"github.com/candlepin/candlepin-sub005/internal/shared/id"
	"github.com/candlepin/candlepin-sub005/internal/shared/logger"
)

const (
	entitlementPoolJoin = "JOIN " + constants.TablePools + " p ON p.id = " + constants.TableEntitlements + ".pool_id"

	poolProductModifies = "EXISTS (SELECT 1 FROM " + constants.TableOwnerProducts + " op" +
		" JOIN " + constants.TableProductContents + " pc ON pc.product_uuid = op.product_uuid" +
		" JOIN " + constants.TableContentModifiedProducts + " cmp ON cmp.content_uuid = pc.content_uuid" +
		" WHERE op.owner_id = p.owner_id AND op.product_id = p.product_id AND cmp.product_id IN ?)"

	poolProvides = "(p.product_id = ? OR EXISTS (SELECT 1 FROM " + constants.TablePoolProvidedProducts + " ppp" +
		" WHERE ppp.pool_id = p.id AND ppp.product_id = ?))"
)

// EntitlementRepositoryImpl implements entitlement.Repository on GORM.
type EntitlementRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.EntitlementMapper
	logger logger.Interface
}

// NewEntitlementRepository creates a new entitlement repository instance
func NewEntitlementRepository(db *gorm.DB, logger logger.Interface) entitlement.Repository {
	return &EntitlementRepositoryImpl{
		db:     db,
		mapper: mappers.NewEntitlementMapper(),
		logger: logger,
	}
}

// withPool preloads what the mapper needs from the backing pool.
func (r *EntitlementRepositoryImpl) withPool(ctx context.Context) *gorm.DB {
	return db.GetTxFromContext(ctx, r.db).Preload("Pool").Preload("Pool.ProvidedProducts")
}

// Create creates a new entitlement
func (r *EntitlementRepositoryImpl) Create(ctx context.Context, e *entitlement.Entitlement) error {
	if e.ID() == "" {
		if err := e.SetID(id.New()); err != nil {
			return err
		}
	}

	model := r.mapper.ToModel(e)
	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		r.logger.Errorw("failed to create entitlement", "consumer_id", e.ConsumerID(), "pool_id", e.PoolID(), "error", err)
		return fmt.Errorf("failed to create entitlement: %w", err)
	}

	r.logger.Infow("entitlement created",
		"id", e.ID(),
		"consumer_id", e.ConsumerID(),
		"pool_id", e.PoolID(),
		"quantity", e.Quantity(),
	)
	return nil
}

// Delete removes an entitlement. Absent entitlements are ignored.
func (r *EntitlementRepositoryImpl) Delete(ctx context.Context, entitlementID string) error {
	result := db.GetTxFromContext(ctx, r.db).Where("id = ?", entitlementID).Delete(&models.EntitlementModel{})
	if result.Error != nil {
		r.logger.Errorw("failed to delete entitlement", "id", entitlementID, "error", result.Error)
		return fmt.Errorf("failed to delete entitlement: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		r.logger.Infow("entitlement deleted", "id", entitlementID)
	}
	return nil
}

// GetByID returns nil, nil when the entitlement does not exist.
func (r *EntitlementRepositoryImpl) GetByID(ctx context.Context, entitlementID string) (*entitlement.Entitlement, error) {
	var model models.EntitlementModel
	if err := r.withPool(ctx).Where("id = ?", entitlementID).First(&model).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Errorw("failed to get entitlement", "id", entitlementID, "error", err)
		return nil, fmt.Errorf("failed to get entitlement: %w", err)
	}
	return r.mapper.ToEntity(&model)
}

func (r *EntitlementRepositoryImpl) ListByConsumer(ctx context.Context, consumerID string) ([]*entitlement.Entitlement, error) {
	return r.find(ctx, "list entitlements by consumer", func(tx *gorm.DB) *gorm.DB {
		return tx.Where(constants.TableEntitlements+".consumer_id = ?", consumerID)
	})
}

func (r *EntitlementRepositoryImpl) ListByPool(ctx context.Context, poolID string) ([]*entitlement.Entitlement, error) {
	return r.find(ctx, "list entitlements by pool", func(tx *gorm.DB) *gorm.DB {
		return tx.Where(constants.TableEntitlements+".pool_id = ?", poolID)
	})
}

// ListActiveAndFutureByConsumerAndDate narrows by consumer in SQL and keeps
// the entitlements whose pool window contains activeOn.
func (r *EntitlementRepositoryImpl) ListActiveAndFutureByConsumerAndDate(ctx context.Context, consumerID string, activeOn time.Time) ([]*entitlement.Entitlement, error) {
	ents, err := r.ListByConsumer(ctx, consumerID)
	if err != nil {
		return nil, err
	}
	return entitlement.PoolActiveOn(ents, activeOn), nil
}

// ListModifying returns the consumer's entitlements whose pool product
// modifies one of productIDs and whose pool window overlaps dr. Dates are
// compared in memory so shared.Overlaps stays the only overlap rule.
func (r *EntitlementRepositoryImpl) ListModifying(ctx context.Context, consumerID string, productIDs []string, dr shared.DateRange) ([]*entitlement.Entitlement, error) {
	if len(productIDs) == 0 {
		return []*entitlement.Entitlement{}, nil
	}

	var blocks []predicate
	for _, block := range db.Partition(productIDs, db.InBlockSize()) {
		blocks = append(blocks, expr(poolProductModifies, block))
	}
	modifies := or(blocks...)

	ents, err := r.find(ctx, "list modifying entitlements", func(tx *gorm.DB) *gorm.DB {
		return tx.Joins(entitlementPoolJoin).
			Where(constants.TableEntitlements+".consumer_id = ?", consumerID).
			Where(modifies.sql, modifies.args...)
	})
	if err != nil {
		return nil, err
	}
	return entitlement.PoolOverlapping(ents, dr), nil
}

// ListProviding returns the consumer's entitlements whose pool grants
// productID and whose pool window overlaps dr.
func (r *EntitlementRepositoryImpl) ListProviding(ctx context.Context, consumerID, productID string, dr shared.DateRange) ([]*entitlement.Entitlement, error) {
	ents, err := r.find(ctx, "list providing entitlements", func(tx *gorm.DB) *gorm.DB {
		return tx.Joins(entitlementPoolJoin).
			Where(constants.TableEntitlements+".consumer_id = ?", consumerID).
			Where(poolProvides, productID, productID)
	})
	if err != nil {
		return nil, err
	}
	return entitlement.PoolOverlapping(ents, dr), nil
}

func (r *EntitlementRepositoryImpl) find(ctx context.Context, op string, scope func(*gorm.DB) *gorm.DB) ([]*entitlement.Entitlement, error) {
	var rows []models.EntitlementModel
	if err := r.withPool(ctx).Scopes(scope).Order(constants.TableEntitlements + ".id").Find(&rows).Error; err != nil {
		r.logger.Errorw("failed to "+op, "error", err)
		return nil, fmt.Errorf("failed to %s: %w", op, err)
	}
	return r.mapper.ToEntities(rows)
}

// MarkDirty flags entitlements for certificate regeneration.
func (r *EntitlementRepositoryImpl) MarkDirty(ctx context.Context, ids []string) error {
	conn := db.GetTxFromContext(ctx, r.db)
	err := db.ForEachBlock(ids, func(block []string) error {
		return conn.Model(&models.EntitlementModel{}).
			Where("id IN ?", block).
			Updates(map[string]any{"dirty": true, "updated_at": time.Now().UTC()}).Error
	})
	if err != nil {
		r.logger.Errorw("failed to mark entitlements dirty", "count", len(ids), "error", err)
		return fmt.Errorf("failed to mark entitlements dirty: %w", err)
	}
	return nil
}
