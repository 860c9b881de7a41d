package mappers

import (
	"fmt"
	"sort"

	"github.com/candlepin/candlepin-sub005/internal/domain/product"
	"github.com/candlepin/candlepin-sub005/internal/infrastructure/persistence/models"
)

// ProductMapper converts between products and their persistence models.
type ProductMapper interface {
	ToEntity(model *models.ProductModel) (*product.Product, error)
	ToEntities(models []models.ProductModel) ([]*product.Product, error)
	// ToModel flattens p. Content rows reference content UUIDs, which must
	// already be assigned.
	ToModel(p *product.Product) *models.ProductModel
	ContentToModel(c *product.Content) *models.ContentModel
}

type productMapper struct{}

func NewProductMapper() ProductMapper {
	return &productMapper{}
}

func (m *productMapper) ToEntity(model *models.ProductModel) (*product.Product, error) {
	if model == nil {
		return nil, nil
	}

	provided := make([]string, 0, len(model.ProvidedProducts))
	for _, pp := range model.ProvidedProducts {
		provided = append(provided, pp.ProvidedProductID)
	}
	dependent := make([]string, 0, len(model.DependentProducts))
	for _, dp := range model.DependentProducts {
		dependent = append(dependent, dp.DependentProductID)
	}
	sort.Strings(provided)
	sort.Strings(dependent)

	content := make([]product.ProductContent, 0, len(model.Contents))
	for _, pc := range model.Contents {
		if pc.Content == nil {
			return nil, fmt.Errorf("product %s: content %s not loaded", model.ProductID, pc.ContentUUID)
		}
		c, err := m.contentToEntity(pc.Content)
		if err != nil {
			return nil, err
		}
		content = append(content, product.ProductContent{Content: c, Enabled: pc.Enabled})
	}

	p, err := product.NewProduct(product.Params{
		UUID:                model.UUID,
		ID:                  model.ProductID,
		Name:                model.Name,
		Multiplier:          model.Multiplier,
		Attributes:          productAttributeMap(model.Attributes),
		DependentProductIDs: dependent,
		ProvidedProductIDs:  provided,
		Content:             content,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct product %s: %w", model.ProductID, err)
	}
	return p, nil
}

func (m *productMapper) ToEntities(rows []models.ProductModel) ([]*product.Product, error) {
	out := make([]*product.Product, 0, len(rows))
	for i := range rows {
		p, err := m.ToEntity(&rows[i])
		if err != nil {
			return nil, fmt.Errorf("failed to map model at index %d (UUID %s): %w", i, rows[i].UUID, err)
		}
		out = append(out, p)
	}
	return out, nil
}

func (m *productMapper) contentToEntity(model *models.ContentModel) (*product.Content, error) {
	modified := make([]string, 0, len(model.ModifiedProducts))
	for _, mp := range model.ModifiedProducts {
		modified = append(modified, mp.ProductID)
	}
	sort.Strings(modified)

	c, err := product.NewContent(product.ContentParams{
		UUID:               model.UUID,
		ID:                 model.ContentID,
		Type:               model.Type,
		Label:              model.Label,
		Name:               model.Name,
		Vendor:             model.Vendor,
		ContentURL:         model.ContentURL,
		GPGURL:             model.GPGURL,
		Arches:             model.Arches,
		ModifiedProductIDs: modified,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct content %s: %w", model.ContentID, err)
	}
	return c, nil
}

func (m *productMapper) ToModel(p *product.Product) *models.ProductModel {
	model := &models.ProductModel{
		UUID:          p.UUID(),
		ProductID:     p.ID(),
		Name:          p.Name(),
		Multiplier:    p.Multiplier(),
		EntityVersion: p.EntityVersion(),
	}

	attrs := p.Attributes()
	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		model.Attributes = append(model.Attributes, models.ProductAttributeModel{
			ProductUUID: p.UUID(),
			Name:        name,
			Value:       attrs[name],
		})
	}
	for _, id := range p.ProvidedProductIDs() {
		model.ProvidedProducts = append(model.ProvidedProducts, models.ProductProvidedProductModel{ProductUUID: p.UUID(), ProvidedProductID: id})
	}
	for _, id := range p.DependentProductIDs() {
		model.DependentProducts = append(model.DependentProducts, models.ProductDependentProductModel{ProductUUID: p.UUID(), DependentProductID: id})
	}
	for _, pc := range p.Content() {
		model.Contents = append(model.Contents, models.ProductContentModel{
			ProductUUID: p.UUID(),
			ContentUUID: pc.Content.UUID(),
			Enabled:     pc.Enabled,
		})
	}
	return model
}

func (m *productMapper) ContentToModel(c *product.Content) *models.ContentModel {
	model := &models.ContentModel{
		UUID:          c.UUID(),
		ContentID:     c.ID(),
		Type:          c.Type(),
		Label:         c.Label(),
		Name:          c.Name(),
		Vendor:        c.Vendor(),
		ContentURL:    c.ContentURL(),
		GPGURL:        c.GPGURL(),
		Arches:        c.Arches(),
		EntityVersion: c.EntityVersion(),
	}
	for _, id := range c.ModifiedProductIDs() {
		model.ModifiedProducts = append(model.ModifiedProducts, models.ContentModifiedProductModel{ContentUUID: c.UUID(), ProductID: id})
	}
	return model
}
