// Package product defines products, the content they deliver and the
// modifies relation between products.
package product

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sort"
)

var (
	// ErrProductIDRequired is returned when a product is created without an ID.
	ErrProductIDRequired = errors.New("product ID is required")
	// ErrProductNameRequired is returned when a product is created without a name.
	ErrProductNameRequired = errors.New("product name is required")
)

// Well known product attributes.
const (
	AttrSupportLevel = "support_level"
	AttrArch         = "arch"
	AttrVersion      = "version"
)

// ProductContent links a content to a product.
type ProductContent struct {
	Content *Content
	Enabled bool
}

// Params carries the fields of a Product. Maps and slices are copied on
// construction.
type Params struct {
	UUID                string
	ID                  string
	Name                string
	Multiplier          int64
	Attributes          map[string]string
	DependentProductIDs []string
	ProvidedProductIDs  []string
	Content             []ProductContent
}

// Product is a versioned product definition. Many owners may share the
// same version.
type Product struct {
	uuid                string
	id                  string
	name                string
	multiplier          int64
	attributes          map[string]string
	dependentProductIDs []string
	providedProductIDs  []string
	content             []ProductContent
}

// NewProduct validates params and builds a Product.
func NewProduct(p Params) (*Product, error) {
	if p.ID == "" {
		return nil, ErrProductIDRequired
	}
	if p.Name == "" {
		return nil, ErrProductNameRequired
	}
	multiplier := p.Multiplier
	if multiplier < 1 {
		multiplier = 1
	}
	attrs := maps.Clone(p.Attributes)
	if attrs == nil {
		attrs = make(map[string]string)
	}
	content := make([]ProductContent, 0, len(p.Content))
	for _, pc := range p.Content {
		if pc.Content == nil {
			return nil, fmt.Errorf("product %s: nil content", p.ID)
		}
		content = append(content, pc)
	}

	return &Product{
		uuid:                p.UUID,
		id:                  p.ID,
		name:                p.Name,
		multiplier:          multiplier,
		attributes:          attrs,
		dependentProductIDs: dedupe(p.DependentProductIDs),
		providedProductIDs:  dedupe(p.ProvidedProductIDs),
		content:             content,
	}, nil
}

func (p *Product) UUID() string      { return p.uuid }
func (p *Product) ID() string        { return p.id }
func (p *Product) Name() string      { return p.name }
func (p *Product) Multiplier() int64 { return p.multiplier }

// Attributes returns a copy of the product attributes.
func (p *Product) Attributes() map[string]string {
	return maps.Clone(p.attributes)
}

// Attribute returns the named attribute and whether it is present.
func (p *Product) Attribute(name string) (string, bool) {
	v, ok := p.attributes[name]
	return v, ok
}

func (p *Product) DependentProductIDs() []string {
	return slices.Clone(p.dependentProductIDs)
}

func (p *Product) ProvidedProductIDs() []string {
	return slices.Clone(p.providedProductIDs)
}

// Content returns a copy of the product content links.
func (p *Product) Content() []ProductContent {
	return slices.Clone(p.content)
}

// SetUUID assigns the storage identity once.
func (p *Product) SetUUID(uuid string) error {
	if p.uuid != "" && p.uuid != uuid {
		return fmt.Errorf("product UUID is already set")
	}
	p.uuid = uuid
	return nil
}

// Modifies reports whether any content of p lists productID among the
// products it modifies.
func (p *Product) Modifies(productID string) bool {
	for _, pc := range p.content {
		if pc.Content.ModifiesProduct(productID) {
			return true
		}
	}
	return false
}

// ModifiesAny reports whether p modifies at least one of productIDs.
func (p *Product) ModifiesAny(productIDs []string) bool {
	for _, id := range productIDs {
		if p.Modifies(id) {
			return true
		}
	}
	return false
}

// EntityVersion hashes the semantic fields of the product, including the
// versions of its content. The storage identity is excluded.
func (p *Product) EntityVersion() int64 {
	h := newVersionHasher()
	h.string(p.id)
	h.string(p.name)
	h.uint64(uint64(p.multiplier))
	h.attributes(p.attributes)
	h.strings(p.dependentProductIDs)
	h.strings(p.providedProductIDs)

	content := slices.Clone(p.content)
	sort.Slice(content, func(i, j int) bool {
		return content[i].Content.ID() < content[j].Content.ID()
	})
	h.uint64(uint64(len(content)))
	for _, pc := range content {
		h.uint64(uint64(pc.Content.EntityVersion()))
		h.bool(pc.Enabled)
	}
	return h.sum()
}

// Resolver fetches product definitions visible to an owner.
type Resolver interface {
	// GetProductsByIDs returns the products of ownerID with the given IDs.
	// Unknown IDs are skipped.
	GetProductsByIDs(ctx context.Context, ownerID string, ids []string) ([]*Product, error)
}

// Repository persists products and their owner links.
type Repository interface {
	Resolver

	// Save stores p for ownerID. An identical version already stored for any
	// owner is reused instead of duplicated.
	Save(ctx context.Context, ownerID string, p *Product) error

	// GetByID returns nil, nil when ownerID has no product with that ID.
	GetByID(ctx context.Context, ownerID, id string) (*Product, error)

	// RemoveFromOwner unlinks productID from ownerID. It fails with an illegal
	// state error while an active pool of the owner still references the
	// product.
	RemoveFromOwner(ctx context.Context, ownerID, productID string) error
}
