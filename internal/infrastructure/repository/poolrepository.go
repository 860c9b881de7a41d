package repository

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/candlepin/candlepin-sub005/internal/domain/pool"
	"github.com/candlepin/candlepin-sub005/internal/infrastructure/persistence/mappers"
	"github.com/candlepin/candlepin-sub005/internal/infrastructure/persistence/models"
	"github.com/candlepin/candlepin-sub005/internal/shared/constants"
	"github.com/candlepin/candlepin-sub005/internal/shared/db"
	"github.com/candlepin/candlepin-sub005/internal/shared/errors"
	"github.com/candlepin/candlepin-sub005/internal/shared/id"
	"github.com/candlepin/candlepin-sub005/internal/shared/logger"
)

const (
	poolIDColumn    = constants.TablePools + ".id"
	poolOwnerColumn = constants.TablePools + ".owner_id"
)

// PoolRepositoryImpl implements pool.Repository on GORM.
type PoolRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.PoolMapper
	logger logger.Interface
}

// NewPoolRepository creates a new pool repository instance
func NewPoolRepository(db *gorm.DB, logger logger.Interface) pool.Repository {
	return &PoolRepositoryImpl{
		db:     db,
		mapper: mappers.NewPoolMapper(),
		logger: logger,
	}
}

func (r *PoolRepositoryImpl) conn(ctx context.Context) *gorm.DB {
	return db.GetTxFromContext(ctx, r.db)
}

// Create stores a new pool together with its attributes and product links.
func (r *PoolRepositoryImpl) Create(ctx context.Context, p *pool.Pool) error {
	if p.ID() == "" {
		if err := p.SetID(id.New()); err != nil {
			return fmt.Errorf("failed to assign pool ID: %w", err)
		}
	}

	model := r.mapper.ToModel(p)
	if err := r.conn(ctx).Create(model).Error; err != nil {
		if errors.IsDuplicateError(err) {
			return errors.NewConflictError("pool already exists", p.ID())
		}
		r.logger.Errorw("failed to create pool", "id", p.ID(), "owner_id", p.OwnerID(), "error", err)
		return fmt.Errorf("failed to create pool: %w", err)
	}

	r.logger.Debugw("pool created", "id", p.ID(), "owner_id", p.OwnerID(), "product_id", p.ProductID())
	return nil
}

// Update stores p with optimistic locking and replaces its child rows.
func (r *PoolRepositoryImpl) Update(ctx context.Context, p *pool.Pool) error {
	model := r.mapper.ToModel(p)

	err := r.conn(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.PoolModel{}).
			Where("id = ? AND version = ?", model.ID, model.Version).
			Updates(map[string]any{
				"product_id":                  model.ProductID,
				"derived_product_id":          model.DerivedProductID,
				"quantity":                    model.Quantity,
				"consumed":                    model.Consumed,
				"exported":                    model.Exported,
				"start_date":                  model.StartDate,
				"end_date":                    model.EndDate,
				"active_subscription":         model.ActiveSubscription,
				"source_subscription_id":      model.SourceSubscriptionID,
				"source_subscription_sub_key": model.SourceSubscriptionSubKey,
				"source_entitlement_id":       model.SourceEntitlementID,
				"source_stack_id":             model.SourceStackID,
				"contract_number":             model.ContractNumber,
				"order_number":                model.OrderNumber,
				"account_number":              model.AccountNumber,
				"restricted_to_username":      model.RestrictedToUsername,
				"updated_at":                  time.Now().UTC(),
				"version":                     model.Version + 1,
			})
		if result.Error != nil {
			r.logger.Errorw("failed to update pool", "id", model.ID, "error", result.Error)
			return fmt.Errorf("failed to update pool: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return errors.NewConcurrencyError("pool has been modified by another transaction or not found", model.ID)
		}
		return r.replaceChildren(tx, model)
	})
	if err != nil {
		return err
	}

	p.IncrementVersion()
	return nil
}

func (r *PoolRepositoryImpl) replaceChildren(tx *gorm.DB, model *models.PoolModel) error {
	for _, child := range []any{&models.PoolAttributeModel{}, &models.PoolProvidedProductModel{}, &models.PoolDerivedProvidedProductModel{}} {
		if err := tx.Where("pool_id = ?", model.ID).Delete(child).Error; err != nil {
			return fmt.Errorf("failed to clear pool children: %w", err)
		}
	}
	if len(model.Attributes) > 0 {
		if err := tx.Create(&model.Attributes).Error; err != nil {
			return fmt.Errorf("failed to store pool attributes: %w", err)
		}
	}
	if len(model.ProvidedProducts) > 0 {
		if err := tx.Create(&model.ProvidedProducts).Error; err != nil {
			return fmt.Errorf("failed to store provided products: %w", err)
		}
	}
	if len(model.DerivedProvidedProducts) > 0 {
		if err := tx.Create(&model.DerivedProvidedProducts).Error; err != nil {
			return fmt.Errorf("failed to store derived provided products: %w", err)
		}
	}
	return nil
}

// GetByID retrieves a pool by ID. It returns nil, nil when absent.
func (r *PoolRepositoryImpl) GetByID(ctx context.Context, poolID string) (*pool.Pool, error) {
	var model models.PoolModel
	if err := r.conn(ctx).Where("id = ?", poolID).First(&model).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Errorw("failed to get pool", "id", poolID, "error", err)
		return nil, fmt.Errorf("failed to get pool: %w", err)
	}

	pools, err := r.hydrate(ctx, []models.PoolModel{model})
	if err != nil {
		return nil, err
	}
	return pools[0], nil
}

// hydrate loads the child rows and product details of rows and maps them
// to entities, keeping order. Children are fetched one IN-list block at a
// time.
func (r *PoolRepositoryImpl) hydrate(ctx context.Context, rows []models.PoolModel) ([]*pool.Pool, error) {
	if len(rows) == 0 {
		return []*pool.Pool{}, nil
	}
	conn := r.conn(ctx)

	ids := make([]string, len(rows))
	productsByOwner := make(map[string][]string)
	for i, row := range rows {
		ids[i] = row.ID
		productsByOwner[row.OwnerID] = append(productsByOwner[row.OwnerID], row.ProductID)
	}

	attrs := make(map[string][]models.PoolAttributeModel, len(rows))
	provided := make(map[string][]models.PoolProvidedProductModel, len(rows))
	derived := make(map[string][]models.PoolDerivedProvidedProductModel, len(rows))

	err := db.ForEachBlock(ids, func(block []string) error {
		var a []models.PoolAttributeModel
		if err := conn.Where("pool_id IN ?", block).Order("name").Find(&a).Error; err != nil {
			return fmt.Errorf("failed to load pool attributes: %w", err)
		}
		for _, row := range a {
			attrs[row.PoolID] = append(attrs[row.PoolID], row)
		}

		var pp []models.PoolProvidedProductModel
		if err := conn.Where("pool_id IN ?", block).Find(&pp).Error; err != nil {
			return fmt.Errorf("failed to load provided products: %w", err)
		}
		for _, row := range pp {
			provided[row.PoolID] = append(provided[row.PoolID], row)
		}

		var dp []models.PoolDerivedProvidedProductModel
		if err := conn.Where("pool_id IN ?", block).Find(&dp).Error; err != nil {
			return fmt.Errorf("failed to load derived provided products: %w", err)
		}
		for _, row := range dp {
			derived[row.PoolID] = append(derived[row.PoolID], row)
		}
		return nil
	})
	if err != nil {
		r.logger.Errorw("failed to load pool children", "count", len(rows), "error", err)
		return nil, err
	}

	products := make(map[string]map[string]*models.ProductModel, len(productsByOwner))
	for ownerID, productIDs := range productsByOwner {
		found, err := loadOwnerProductModels(conn, ownerID, productIDs, "Attributes")
		if err != nil {
			r.logger.Errorw("failed to load pool products", "owner_id", ownerID, "error", err)
			return nil, err
		}
		products[ownerID] = found
	}

	out := make([]*pool.Pool, 0, len(rows))
	for i := range rows {
		row := &rows[i]
		row.Attributes = attrs[row.ID]
		row.ProvidedProducts = provided[row.ID]
		row.DerivedProvidedProducts = derived[row.ID]

		entity, err := r.mapper.ToEntity(row, products[row.OwnerID][row.ProductID])
		if err != nil {
			r.logger.Errorw("failed to map pool model to entity", "id", row.ID, "error", err)
			return nil, fmt.Errorf("failed to map pool: %w", err)
		}
		out = append(out, entity)
	}
	return out, nil
}
