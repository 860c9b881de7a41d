package mappers

import (
	"github.com/candlepin/candlepin-sub005/internal/domain/owner"
	"github.com/candlepin/candlepin-sub005/internal/infrastructure/persistence/models"
)

// OwnerMapper converts between owners and their persistence model.
type OwnerMapper interface {
	ToEntity(model *models.OwnerModel) (*owner.Owner, error)
	ToModel(entity *owner.Owner) *models.OwnerModel
}

type ownerMapper struct{}

func NewOwnerMapper() OwnerMapper {
	return &ownerMapper{}
}

func (m *ownerMapper) ToEntity(model *models.OwnerModel) (*owner.Owner, error) {
	if model == nil {
		return nil, nil
	}
	return owner.ReconstructOwner(model.ID, model.Key, model.DisplayName, model.ContentAccessMode, model.CreatedAt, model.UpdatedAt)
}

func (m *ownerMapper) ToModel(entity *owner.Owner) *models.OwnerModel {
	if entity == nil {
		return nil
	}
	return &models.OwnerModel{
		ID:                entity.ID(),
		Key:               entity.Key(),
		DisplayName:       entity.DisplayName(),
		ContentAccessMode: entity.ContentAccessMode(),
		CreatedAt:         entity.CreatedAt(),
		UpdatedAt:         entity.UpdatedAt(),
	}
}
