package mappers

import (
	"fmt"
	"sort"
	"strings"

	"github.com/candlepin/candlepin-sub005/internal/domain/consumer"
	"github.com/candlepin/candlepin-sub005/internal/infrastructure/persistence/models"
)

// ConsumerMapper converts between consumers and their persistence models.
type ConsumerMapper interface {
	ToEntity(model *models.ConsumerModel) (*consumer.Consumer, error)
	ToModel(entity *consumer.Consumer) *models.ConsumerModel
}

type consumerMapper struct{}

func NewConsumerMapper() ConsumerMapper {
	return &consumerMapper{}
}

func (m *consumerMapper) ToEntity(model *models.ConsumerModel) (*consumer.Consumer, error) {
	if model == nil {
		return nil, nil
	}

	facts := make(map[string]string, len(model.Facts))
	for _, f := range model.Facts {
		facts[f.Name] = f.Value
	}
	guests := make([]string, 0, len(model.Guests))
	for _, g := range model.Guests {
		guests = append(guests, g.GuestID)
	}

	entity, err := consumer.ReconstructConsumer(model.ID, model.Version, consumer.Params{
		UUID:          model.UUID,
		OwnerID:       model.OwnerID,
		Name:          model.Name,
		Username:      model.Username,
		Type:          consumer.NewType(model.TypeLabel, model.TypeManifest),
		Facts:         facts,
		GuestIDs:      guests,
		HypervisorID:  model.HypervisorID,
		EnvironmentID: model.EnvironmentID,
		CreatedAt:     model.CreatedAt,
		UpdatedAt:     model.UpdatedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct consumer %s: %w", model.ID, err)
	}
	return entity, nil
}

func (m *consumerMapper) ToModel(entity *consumer.Consumer) *models.ConsumerModel {
	if entity == nil {
		return nil
	}

	model := &models.ConsumerModel{
		ID:            entity.ID(),
		UUID:          entity.UUID(),
		OwnerID:       entity.OwnerID(),
		Name:          entity.Name(),
		Username:      entity.Username(),
		TypeLabel:     entity.Type().Label(),
		TypeManifest:  entity.Type().IsManifest(),
		HypervisorID:  entity.HypervisorID(),
		EnvironmentID: entity.EnvironmentID(),
		Version:       entity.Version(),
		CreatedAt:     entity.CreatedAt(),
		UpdatedAt:     entity.UpdatedAt(),
	}

	facts := entity.Facts()
	names := make([]string, 0, len(facts))
	for name := range facts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		model.Facts = append(model.Facts, models.ConsumerFactModel{ConsumerID: entity.ID(), Name: name, Value: facts[name]})
	}
	for _, guestID := range entity.GuestIDs() {
		model.Guests = append(model.Guests, models.ConsumerGuestModel{
			ConsumerID:   entity.ID(),
			GuestID:      guestID,
			GuestIDLower: strings.ToLower(guestID),
			CreatedAt:    entity.UpdatedAt(),
			UpdatedAt:    entity.UpdatedAt(),
		})
	}
	return model
}
