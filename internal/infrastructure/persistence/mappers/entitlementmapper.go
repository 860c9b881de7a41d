package mappers

import (
	"fmt"

	"github.com/candlepin/candlepin-sub005/internal/domain/entitlement"
	"github.com/candlepin/candlepin-sub005/internal/infrastructure/persistence/models"
)

// EntitlementMapper handles the conversion between domain entities and persistence models
type EntitlementMapper interface {
	// ToEntity converts a model whose pool, with its provided products, has
	// been preloaded.
	ToEntity(model *models.EntitlementModel) (*entitlement.Entitlement, error)

	ToEntities(models []models.EntitlementModel) ([]*entitlement.Entitlement, error)

	// ToModel converts an entitlement without its pool.
	ToModel(entity *entitlement.Entitlement) *models.EntitlementModel
}

type entitlementMapper struct{}

func NewEntitlementMapper() EntitlementMapper {
	return &entitlementMapper{}
}

func (m *entitlementMapper) ToEntity(model *models.EntitlementModel) (*entitlement.Entitlement, error) {
	if model == nil {
		return nil, nil
	}
	if model.Pool == nil {
		return nil, fmt.Errorf("entitlement %s: pool not loaded", model.ID)
	}

	entity, err := entitlement.ReconstructEntitlement(model.ID, model.Version, model.Dirty, entitlement.Params{
		OwnerID:         model.OwnerID,
		ConsumerID:      model.ConsumerID,
		PoolID:          model.PoolID,
		Quantity:        model.Quantity,
		EndDateOverride: model.EndDateOverride,
		Pool: entitlement.PoolSnapshot{
			StartDate:          model.Pool.StartDate,
			EndDate:            model.Pool.EndDate,
			ProductID:          model.Pool.ProductID,
			ProvidedProductIDs: providedIDs(model.Pool.ProvidedProducts),
		},
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct entitlement entity: %w", err)
	}
	return entity, nil
}

func (m *entitlementMapper) ToEntities(rows []models.EntitlementModel) ([]*entitlement.Entitlement, error) {
	entities := make([]*entitlement.Entitlement, 0, len(rows))
	for i := range rows {
		entity, err := m.ToEntity(&rows[i])
		if err != nil {
			return nil, fmt.Errorf("failed to map model at index %d (ID %s): %w", i, rows[i].ID, err)
		}
		entities = append(entities, entity)
	}
	return entities, nil
}

func (m *entitlementMapper) ToModel(entity *entitlement.Entitlement) *models.EntitlementModel {
	if entity == nil {
		return nil
	}
	return &models.EntitlementModel{
		ID:              entity.ID(),
		OwnerID:         entity.OwnerID(),
		ConsumerID:      entity.ConsumerID(),
		PoolID:          entity.PoolID(),
		Quantity:        entity.Quantity(),
		EndDateOverride: entity.EndDateOverride(),
		Dirty:           entity.IsDirty(),
		Version:         entity.Version(),
		CreatedAt:       entity.CreatedAt(),
		UpdatedAt:       entity.UpdatedAt(),
	}
}
