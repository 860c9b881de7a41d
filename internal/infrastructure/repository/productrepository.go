package repository

import (
	"context"
	stderrors "errors"
	"fmt"
	"slices"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/candlepin/candlepin-sub005/internal/domain/product"
	"github.com/candlepin/candlepin-sub005/internal/infrastructure/persistence/mappers"
	"github.com/candlepin/candlepin-sub005/internal/infrastructure/persistence/models"
	"github.com/candlepin/candlepin-sub005/internal/shared/constants"
	"github.com/candlepin/candlepin-sub005/internal/shared/db"
	"github.com/candlepin/candlepin-sub005/internal/shared/errors"
	"github.com/candlepin/candlepin-sub005/internal/shared/id"
	"github.com/candlepin/candlepin-sub005/internal/shared/logger"
)

// productPreloads loads everything ProductMapper.ToEntity reads.
var productPreloads = []string{"Attributes", "ProvidedProducts", "DependentProducts", "Contents.Content.ModifiedProducts"}

// ProductRepositoryImpl implements product.Repository on GORM.
type ProductRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.ProductMapper
	logger logger.Interface
}

// NewProductRepository creates a new product repository instance
func NewProductRepository(db *gorm.DB, logger logger.Interface) product.Repository {
	return &ProductRepositoryImpl{
		db:     db,
		mapper: mappers.NewProductMapper(),
		logger: logger,
	}
}

// Save stores p for ownerID, reusing any stored product or content version
// with the same entity version.
func (r *ProductRepositoryImpl) Save(ctx context.Context, ownerID string, p *product.Product) error {
	err := db.GetTxFromContext(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		for _, pc := range p.Content() {
			if err := r.saveContent(tx, pc.Content); err != nil {
				return err
			}
		}

		uuid, err := r.resolveVersion(tx, &models.ProductModel{}, "product_id", p.ID(), p.UUID(), p.EntityVersion())
		if err != nil {
			return err
		}
		if uuid == "" {
			if p.UUID() == "" {
				_ = p.SetUUID(id.New())
			}
			if err := tx.Create(r.mapper.ToModel(p)).Error; err != nil {
				return fmt.Errorf("failed to create product: %w", err)
			}
		} else if err := p.SetUUID(uuid); err != nil {
			return errors.NewConflictError("product version changed", p.ID())
		}

		link := models.OwnerProductModel{OwnerID: ownerID, ProductID: p.ID(), ProductUUID: p.UUID()}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "owner_id"}, {Name: "product_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"product_uuid"}),
		}).Create(&link).Error
	})
	if err != nil {
		r.logger.Errorw("failed to save product", "owner_id", ownerID, "product_id", p.ID(), "error", err)
		if errors.IsAppError(err) {
			return err
		}
		return fmt.Errorf("failed to save product: %w", err)
	}

	r.logger.Debugw("product saved", "owner_id", ownerID, "product_id", p.ID(), "uuid", p.UUID())
	return nil
}

func (r *ProductRepositoryImpl) saveContent(tx *gorm.DB, c *product.Content) error {
	uuid, err := r.resolveVersion(tx, &models.ContentModel{}, "content_id", c.ID(), c.UUID(), c.EntityVersion())
	if err != nil {
		return err
	}
	if uuid != "" {
		if err := c.SetUUID(uuid); err != nil {
			return errors.NewConflictError("content version changed", c.ID())
		}
		return nil
	}
	if c.UUID() == "" {
		_ = c.SetUUID(id.New())
	}
	if err := tx.Create(r.mapper.ContentToModel(c)).Error; err != nil {
		return fmt.Errorf("failed to create content: %w", err)
	}
	return nil
}

// resolveVersion returns the UUID of the stored row holding version, or ""
// when none does. A stored row already bound to currentUUID must hold
// version.
func (r *ProductRepositoryImpl) resolveVersion(tx *gorm.DB, model any, idColumn, entityID, currentUUID string, version int64) (string, error) {
	var row struct {
		UUID          string
		EntityVersion int64
	}

	if currentUUID != "" {
		err := tx.Model(model).Select("uuid", "entity_version").Where("uuid = ?", currentUUID).Take(&row).Error
		if err == nil {
			if row.EntityVersion != version {
				return "", errors.NewConflictError("stored version differs", entityID)
			}
			return row.UUID, nil
		}
		if !stderrors.Is(err, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("failed to load stored version: %w", err)
		}
	}

	err := tx.Model(model).Select("uuid", "entity_version").
		Where(idColumn+" = ? AND entity_version = ?", entityID, version).
		Order("created_at").
		Take(&row).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to look up version: %w", err)
	}
	return row.UUID, nil
}

// GetByID returns nil, nil when ownerID has no product with that ID.
func (r *ProductRepositoryImpl) GetByID(ctx context.Context, ownerID, productID string) (*product.Product, error) {
	products, err := r.GetProductsByIDs(ctx, ownerID, []string{productID})
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, nil
	}
	return products[0], nil
}

// GetProductsByIDs returns ownerID's products with the given IDs, ordered by
// product ID.
func (r *ProductRepositoryImpl) GetProductsByIDs(ctx context.Context, ownerID string, ids []string) ([]*product.Product, error) {
	found, err := loadOwnerProductModels(db.GetTxFromContext(ctx, r.db), ownerID, ids, productPreloads...)
	if err != nil {
		r.logger.Errorw("failed to load products", "owner_id", ownerID, "count", len(ids), "error", err)
		return nil, err
	}

	keys := make([]string, 0, len(found))
	for productID := range found {
		keys = append(keys, productID)
	}
	slices.Sort(keys)

	out := make([]*product.Product, 0, len(keys))
	for _, productID := range keys {
		p, err := r.mapper.ToEntity(found[productID])
		if err != nil {
			return nil, fmt.Errorf("failed to map product: %w", err)
		}
		out = append(out, p)
	}
	return out, nil
}

// RemoveFromOwner unlinks productID from ownerID.
func (r *ProductRepositoryImpl) RemoveFromOwner(ctx context.Context, ownerID, productID string) error {
	conn := db.GetTxFromContext(ctx, r.db)

	var active int64
	err := conn.Model(&models.PoolModel{}).
		Where("owner_id = ?", ownerID).
		Where("product_id = ? OR derived_product_id = ?", productID, productID).
		Where("end_date >= ?", time.Now().UTC()).
		Count(&active).Error
	if err != nil {
		r.logger.Errorw("failed to count pools of product", "owner_id", ownerID, "product_id", productID, "error", err)
		return fmt.Errorf("failed to count pools of product: %w", err)
	}
	if active > 0 {
		return errors.NewIllegalStateError("product is referenced by active pools", productID)
	}

	result := conn.Where("owner_id = ? AND product_id = ?", ownerID, productID).Delete(&models.OwnerProductModel{})
	if result.Error != nil {
		r.logger.Errorw("failed to remove product from owner", "owner_id", ownerID, "product_id", productID, "error", result.Error)
		return fmt.Errorf("failed to remove product from owner: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.NewNotFoundError("product not found", productID)
	}

	r.logger.Infow("product removed from owner", "owner_id", ownerID, "product_id", productID)
	return nil
}

// loadOwnerProductModels returns the product versions ownerID links to for
// productIDs, keyed by product ID.
func loadOwnerProductModels(conn *gorm.DB, ownerID string, productIDs []string, preloads ...string) (map[string]*models.ProductModel, error) {
	ids := slices.Clone(productIDs)
	slices.Sort(ids)
	ids = slices.Compact(ids)

	found := make(map[string]*models.ProductModel, len(ids))
	err := db.ForEachBlock(ids, func(block []string) error {
		tx := conn.Model(&models.ProductModel{}).
			Joins("JOIN "+constants.TableOwnerProducts+" op ON op.product_uuid = "+constants.TableProducts+".uuid").
			Where("op.owner_id = ? AND op.product_id IN ?", ownerID, block)
		for _, preload := range preloads {
			tx = tx.Preload(preload)
		}

		var rows []models.ProductModel
		if err := tx.Find(&rows).Error; err != nil {
			return fmt.Errorf("failed to load products: %w", err)
		}
		for i := range rows {
			found[rows[i].ProductID] = &rows[i]
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}
