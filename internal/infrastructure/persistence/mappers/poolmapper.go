package mappers

import (
	"fmt"
	"sort"

	"github.com/candlepin/candlepin-sub005/internal/domain/pool"
	"github.com/candlepin/candlepin-sub005/internal/infrastructure/persistence/models"
)

// PoolMapper converts between pools and their persistence models.
type PoolMapper interface {
	// ToEntity rebuilds a pool. product supplies the name and attributes of
	// the pool's top-level product and may be nil.
	ToEntity(model *models.PoolModel, product *models.ProductModel) (*pool.Pool, error)

	// ToModel flattens a pool and its child rows.
	ToModel(entity *pool.Pool) *models.PoolModel
}

type poolMapper struct{}

func NewPoolMapper() PoolMapper {
	return &poolMapper{}
}

func (m *poolMapper) ToEntity(model *models.PoolModel, product *models.ProductModel) (*pool.Pool, error) {
	if model == nil {
		return nil, nil
	}

	attrs := make(map[string]string, len(model.Attributes))
	for _, a := range model.Attributes {
		attrs[a.Name] = derefString(a.Value)
	}

	params := pool.Params{
		OwnerID:                   model.OwnerID,
		ProductID:                 model.ProductID,
		DerivedProductID:          model.DerivedProductID,
		ProvidedProductIDs:        providedIDs(model.ProvidedProducts),
		DerivedProvidedProductIDs: derivedProvidedIDs(model.DerivedProvidedProducts),
		Attributes:                attrs,
		Quantity:                  model.Quantity,
		Consumed:                  model.Consumed,
		Exported:                  model.Exported,
		StartDate:                 model.StartDate,
		EndDate:                   model.EndDate,
		ActiveSubscription:        model.ActiveSubscription,
		SubscriptionID:            model.SourceSubscriptionID,
		SubscriptionSubKey:        model.SourceSubscriptionSubKey,
		SourceEntitlementID:       derefString(model.SourceEntitlementID),
		SourceStackID:             model.SourceStackID,
		ContractNumber:            model.ContractNumber,
		OrderNumber:               model.OrderNumber,
		AccountNumber:             model.AccountNumber,
		RestrictedToUsername:      model.RestrictedToUsername,
		CreatedAt:                 model.CreatedAt,
		UpdatedAt:                 model.UpdatedAt,
	}
	if product != nil {
		params.ProductName = product.Name
		params.ProductAttributes = productAttributeMap(product.Attributes)
	}

	entity, err := pool.ReconstructPool(model.ID, model.Version, params)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct pool %s: %w", model.ID, err)
	}
	return entity, nil
}

func (m *poolMapper) ToModel(entity *pool.Pool) *models.PoolModel {
	if entity == nil {
		return nil
	}

	attrs := entity.Attributes()
	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	sort.Strings(names)

	model := &models.PoolModel{
		ID:                       entity.ID(),
		OwnerID:                  entity.OwnerID(),
		ProductID:                entity.ProductID(),
		DerivedProductID:         entity.DerivedProductID(),
		Quantity:                 entity.Quantity(),
		Consumed:                 entity.Consumed(),
		Exported:                 entity.Exported(),
		StartDate:                entity.StartDate().UTC(),
		EndDate:                  entity.EndDate().UTC(),
		ActiveSubscription:       entity.ActiveSubscription(),
		SourceSubscriptionID:     entity.SubscriptionID(),
		SourceSubscriptionSubKey: entity.SubscriptionSubKey(),
		SourceEntitlementID:      optionalString(entity.SourceEntitlementID()),
		SourceStackID:            entity.SourceStackID(),
		ContractNumber:           entity.ContractNumber(),
		OrderNumber:              entity.OrderNumber(),
		AccountNumber:            entity.AccountNumber(),
		RestrictedToUsername:     entity.RestrictedToUsername(),
		Version:                  entity.Version(),
		CreatedAt:                entity.CreatedAt(),
		UpdatedAt:                entity.UpdatedAt(),
	}
	for _, name := range names {
		value := attrs[name]
		model.Attributes = append(model.Attributes, models.PoolAttributeModel{
			PoolID: entity.ID(),
			Name:   name,
			Value:  &value,
		})
	}
	for _, id := range entity.ProvidedProductIDs() {
		model.ProvidedProducts = append(model.ProvidedProducts, models.PoolProvidedProductModel{PoolID: entity.ID(), ProductID: id})
	}
	for _, id := range entity.DerivedProvidedProductIDs() {
		model.DerivedProvidedProducts = append(model.DerivedProvidedProducts, models.PoolDerivedProvidedProductModel{PoolID: entity.ID(), ProductID: id})
	}
	return model
}

func providedIDs(rows []models.PoolProvidedProductModel) []string {
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ProductID)
	}
	sort.Strings(ids)
	return ids
}

func derivedProvidedIDs(rows []models.PoolDerivedProvidedProductModel) []string {
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ProductID)
	}
	sort.Strings(ids)
	return ids
}

func productAttributeMap(rows []models.ProductAttributeModel) map[string]string {
	attrs := make(map[string]string, len(rows))
	for _, a := range rows {
		attrs[a.Name] = a.Value
	}
	return attrs
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
