package migration

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/candlepin/candlepin-sub005/internal/infrastructure/persistence/models"
	"github.com/candlepin/candlepin-sub005/internal/shared/logger"
)

// AutoMigrateModels lists every persisted model in dependency order.
func AutoMigrateModels() []any {
	return []any{
		&models.OwnerModel{},
		&models.ContentModel{},
		&models.ContentModifiedProductModel{},
		&models.ProductModel{},
		&models.ProductAttributeModel{},
		&models.ProductProvidedProductModel{},
		&models.ProductDependentProductModel{},
		&models.ProductContentModel{},
		&models.OwnerProductModel{},
		&models.PoolModel{},
		&models.PoolAttributeModel{},
		&models.PoolProvidedProductModel{},
		&models.PoolDerivedProvidedProductModel{},
		&models.ConsumerModel{},
		&models.ConsumerFactModel{},
		&models.ConsumerGuestModel{},
		&models.EntitlementModel{},
		&models.AsyncJobModel{},
	}
}

// GormAutoMigrateStrategy derives the schema from the model definitions.
type GormAutoMigrateStrategy struct {
	logger logger.Interface
}

func NewGormAutoMigrateStrategy(log logger.Interface) Strategy {
	return &GormAutoMigrateStrategy{logger: log}
}

func (s *GormAutoMigrateStrategy) Migrate(db *gorm.DB, models ...any) error {
	if len(models) == 0 {
		models = AutoMigrateModels()
	}
	s.logger.Infow("running gorm auto migrate", "models_count", len(models))

	if err := db.AutoMigrate(models...); err != nil {
		s.logger.Errorw("auto migrate failed", "error", err)
		return fmt.Errorf("failed to auto migrate: %w", err)
	}
	return nil
}

func (s *GormAutoMigrateStrategy) GetName() string {
	return "gorm_auto_migrate"
}
