package repository

import (
	"context"
	"fmt"
	"slices"
	"time"

	"gorm.io/gorm"

	"github.com/candlepin/candlepin-sub005/internal/domain/pool"
	"github.com/candlepin/candlepin-sub005/internal/infrastructure/persistence/models"
	"github.com/candlepin/candlepin-sub005/internal/shared/constants"
	"github.com/candlepin/candlepin-sub005/internal/shared/db"
	"github.com/candlepin/candlepin-sub005/internal/shared/errors"
)

const consumedFromEntitlements = "(SELECT COALESCE(SUM(e.quantity), 0) FROM " + constants.TableEntitlements +
	" e WHERE e.pool_id = " + constants.TablePools + ".id)"

// LockPools takes row locks on the given pools in ID order, so concurrent
// binds against overlapping pool sets cannot deadlock.
func (r *PoolRepositoryImpl) LockPools(ctx context.Context, ids []string) ([]*pool.Pool, error) {
	if !db.InTransaction(ctx) {
		return nil, errors.NewIllegalStateError("pool locks require an open transaction")
	}
	if len(ids) == 0 {
		return []*pool.Pool{}, nil
	}

	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	conn := r.conn(ctx)
	var rows []models.PoolModel
	err := db.ForEachBlock(sorted, func(block []string) error {
		var part []models.PoolModel
		if err := conn.Scopes(db.ForUpdate()).Where("id IN ?", block).Order("id").Find(&part).Error; err != nil {
			return err
		}
		rows = append(rows, part...)
		return nil
	})
	if err != nil {
		if errors.IsLockTimeoutError(err) {
			r.logger.Warnw("timed out locking pools", "count", len(sorted), "error", err)
			return nil, errors.NewConcurrencyError("timed out waiting for pool locks")
		}
		r.logger.Errorw("failed to lock pools", "count", len(sorted), "error", err)
		return nil, fmt.Errorf("failed to lock pools: %w", err)
	}

	r.logger.Debugw("pools locked", "requested", len(sorted), "locked", len(rows))
	return r.hydrate(ctx, rows)
}

// RecalculateConsumed sets consumed to the sum of entitlement quantities.
func (r *PoolRepositoryImpl) RecalculateConsumed(ctx context.Context, poolIDs []string) error {
	conn := r.conn(ctx)
	return db.ForEachBlock(poolIDs, func(block []string) error {
		result := conn.Model(&models.PoolModel{}).
			Where("id IN ?", block).
			Updates(map[string]any{
				"consumed":   gorm.Expr(consumedFromEntitlements),
				"version":    gorm.Expr("version + 1"),
				"updated_at": time.Now().UTC(),
			})
		if result.Error != nil {
			r.logger.Errorw("failed to recalculate consumed quantity", "count", len(block), "error", result.Error)
			return fmt.Errorf("failed to recalculate consumed quantity: %w", result.Error)
		}
		return nil
	})
}

// FindOversubscribed returns the pools of the query's owner, drawn from its
// subscriptions, that are consumed beyond their quantity. Unlimited pools
// are never oversubscribed.
func (r *PoolRepositoryImpl) FindOversubscribed(ctx context.Context, q pool.OversubscriptionQuery) ([]*pool.Pool, error) {
	if q.IsEmpty() {
		return []*pool.Pool{}, nil
	}

	var bySubscription []predicate
	for _, pair := range q.Pairs() {
		bySubscription = append(bySubscription, expr(
			"source_subscription_id = ? AND (source_entitlement_id IS NULL OR source_entitlement_id = ?)",
			pair.SubscriptionID, pair.EntitlementID,
		))
	}

	// Each pair binds two parameters.
	conn := r.conn(ctx)
	var rows []models.PoolModel
	var err error
	for _, block := range db.Partition(bySubscription, db.BlockSizeFor(2)) {
		where := or(block...)
		var part []models.PoolModel
		if err = conn.
			Where("owner_id = ?", q.OwnerID()).
			Where("quantity >= 0 AND consumed > quantity").
			Where(where.sql, where.args...).
			Order("id").
			Find(&part).Error; err != nil {
			break
		}
		rows = append(rows, part...)
	}
	if err != nil {
		r.logger.Errorw("failed to find oversubscribed pools", "owner_id", q.OwnerID(), "error", err)
		return nil, fmt.Errorf("failed to find oversubscribed pools: %w", err)
	}
	return r.hydrate(ctx, rows)
}

// ListBySourceEntitlements returns the pools derived from the entitlements.
func (r *PoolRepositoryImpl) ListBySourceEntitlements(ctx context.Context, entitlementIDs []string) ([]*pool.Pool, error) {
	return r.listIn(ctx, "source_entitlement_id", entitlementIDs, nil)
}

// GetBySubscriptionIDs returns the pools of ownerID created from the
// subscriptions.
func (r *PoolRepositoryImpl) GetBySubscriptionIDs(ctx context.Context, ownerID string, subscriptionIDs []string) ([]*pool.Pool, error) {
	return r.listIn(ctx, "source_subscription_id", subscriptionIDs, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("owner_id = ?", ownerID)
	})
}

func (r *PoolRepositoryImpl) listIn(ctx context.Context, column string, values []string, scope func(*gorm.DB) *gorm.DB) ([]*pool.Pool, error) {
	if len(values) == 0 {
		return []*pool.Pool{}, nil
	}
	conn := r.conn(ctx)
	if scope != nil {
		conn = conn.Scopes(scope)
	}

	var rows []models.PoolModel
	err := db.ForEachBlock(values, func(block []string) error {
		var part []models.PoolModel
		if err := conn.Where(column+" IN ?", block).Order("id").Find(&part).Error; err != nil {
			return err
		}
		rows = append(rows, part...)
		return nil
	})
	if err != nil {
		r.logger.Errorw("failed to list pools", "column", column, "count", len(values), "error", err)
		return nil, fmt.Errorf("failed to list pools: %w", err)
	}
	return r.hydrate(ctx, rows)
}

// HasActiveEntitlementPools reports whether ownerID has an entitlement
// derived pool active on date.
func (r *PoolRepositoryImpl) HasActiveEntitlementPools(ctx context.Context, ownerID string, date time.Time) (bool, error) {
	var count int64
	err := r.conn(ctx).Model(&models.PoolModel{}).
		Where("owner_id = ?", ownerID).
		Where("source_entitlement_id IS NOT NULL").
		Where("start_date <= ? AND end_date >= ?", date.UTC(), date.UTC()).
		Count(&count).Error
	if err != nil {
		r.logger.Errorw("failed to check entitlement derived pools", "owner_id", ownerID, "error", err)
		return false, fmt.Errorf("failed to check entitlement derived pools: %w", err)
	}
	return count > 0, nil
}

// ListExpired returns pools that ended before now and carry no
// entitlements, oldest ID first.
func (r *PoolRepositoryImpl) ListExpired(ctx context.Context, now time.Time, limit int) ([]*pool.Pool, error) {
	tx := r.conn(ctx).
		Where("end_date < ?", now.UTC()).
		Where("NOT EXISTS (SELECT 1 FROM " + constants.TableEntitlements + " e WHERE e.pool_id = " + constants.TablePools + ".id)").
		Order("id")
	if limit > 0 {
		tx = tx.Limit(limit)
	}

	var rows []models.PoolModel
	if err := tx.Find(&rows).Error; err != nil {
		r.logger.Errorw("failed to list expired pools", "error", err)
		return nil, fmt.Errorf("failed to list expired pools: %w", err)
	}
	return r.hydrate(ctx, rows)
}

// BatchDelete removes pools and their child rows block by block.
func (r *PoolRepositoryImpl) BatchDelete(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	var deleted int64
	err := r.conn(ctx).Transaction(func(tx *gorm.DB) error {
		return db.ForEachBlock(ids, func(block []string) error {
			for _, child := range []any{&models.PoolAttributeModel{}, &models.PoolProvidedProductModel{}, &models.PoolDerivedProvidedProductModel{}} {
				if err := tx.Where("pool_id IN ?", block).Delete(child).Error; err != nil {
					return err
				}
			}
			result := tx.Where("id IN ?", block).Delete(&models.PoolModel{})
			if result.Error != nil {
				return result.Error
			}
			deleted += result.RowsAffected
			return nil
		})
	})
	if err != nil {
		r.logger.Errorw("failed to delete pools", "count", len(ids), "error", err)
		return 0, fmt.Errorf("failed to delete pools: %w", err)
	}

	r.logger.Infow("pools deleted", "requested", len(ids), "deleted", deleted)
	return deleted, nil
}
