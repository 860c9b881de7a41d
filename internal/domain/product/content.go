package product

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrContentIDRequired is returned when content is created without an ID.
	ErrContentIDRequired = errors.New("content ID is required")
	// ErrContentLabelRequired is returned when content is created without a label.
	ErrContentLabelRequired = errors.New("content label is required")
)

// ContentParams carries the fields of a Content. Slices are copied on
// construction.
type ContentParams struct {
	UUID               string
	ID                 string
	Type               string
	Label              string
	Name               string
	Vendor             string
	ContentURL         string
	GPGURL             string
	Arches             string
	ModifiedProductIDs []string
}

// Content is a repository of packages delivered by one or more products.
type Content struct {
	uuid               string
	id                 string
	contentType        string
	label              string
	name               string
	vendor             string
	contentURL         string
	gpgURL             string
	arches             string
	modifiedProductIDs []string
}

// NewContent validates params and builds a Content.
func NewContent(p ContentParams) (*Content, error) {
	if p.ID == "" {
		return nil, ErrContentIDRequired
	}
	if p.Label == "" {
		return nil, ErrContentLabelRequired
	}
	return &Content{
		uuid:               p.UUID,
		id:                 p.ID,
		contentType:        p.Type,
		label:              p.Label,
		name:               p.Name,
		vendor:             p.Vendor,
		contentURL:         p.ContentURL,
		gpgURL:             p.GPGURL,
		arches:             p.Arches,
		modifiedProductIDs: dedupe(p.ModifiedProductIDs),
	}, nil
}

func (c *Content) UUID() string       { return c.uuid }
func (c *Content) ID() string         { return c.id }
func (c *Content) Type() string       { return c.contentType }
func (c *Content) Label() string      { return c.label }
func (c *Content) Name() string       { return c.name }
func (c *Content) Vendor() string     { return c.vendor }
func (c *Content) ContentURL() string { return c.contentURL }
func (c *Content) GPGURL() string     { return c.gpgURL }
func (c *Content) Arches() string     { return c.arches }

// ModifiedProductIDs returns a copy of the IDs of products this content modifies.
func (c *Content) ModifiedProductIDs() []string {
	return slices.Clone(c.modifiedProductIDs)
}

// ModifiesProduct reports whether productID is listed as modified.
func (c *Content) ModifiesProduct(productID string) bool {
	return slices.Contains(c.modifiedProductIDs, productID)
}

// SetUUID assigns the storage identity once.
func (c *Content) SetUUID(uuid string) error {
	if c.uuid != "" && c.uuid != uuid {
		return fmt.Errorf("content UUID is already set")
	}
	c.uuid = uuid
	return nil
}

// EntityVersion hashes the semantic fields of the content. The storage
// identity is excluded, so two owners' copies of identical content agree.
func (c *Content) EntityVersion() int64 {
	h := newVersionHasher()
	h.string(c.id)
	h.string(c.contentType)
	h.string(c.label)
	h.string(c.name)
	h.string(c.vendor)
	h.string(c.contentURL)
	h.string(c.gpgURL)
	h.string(c.arches)
	h.strings(c.modifiedProductIDs)
	return h.sum()
}

// Params returns the fields of c as ContentParams, suitable for building a
// modified copy.
func (c *Content) Params() ContentParams {
	return ContentParams{
		UUID:               c.uuid,
		ID:                 c.id,
		Type:               c.contentType,
		Label:              c.label,
		Name:               c.name,
		Vendor:             c.vendor,
		ContentURL:         c.contentURL,
		GPGURL:             c.gpgURL,
		Arches:             c.arches,
		ModifiedProductIDs: slices.Clone(c.modifiedProductIDs),
	}
}

func dedupe(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
