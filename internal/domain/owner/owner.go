package owner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrOwnerKeyRequired is returned when an owner is created without a key.
var ErrOwnerKeyRequired = errors.New("owner key is required")

// Content access modes.
const (
	ContentAccessEntitlement    = "entitlement"
	ContentAccessOrgEnvironment = "org_environment"
)

// ueberProductSuffix names the per-owner bookkeeping product that is never
// offered for normal consumption.
const ueberProductSuffix = "_ueber_product"

// Owner is an organization owning consumers, products and pools.
type Owner struct {
	id                string
	key               string
	displayName       string
	contentAccessMode string
	createdAt         time.Time
	updatedAt         time.Time
}

// NewOwner creates an owner with a key unique across the system.
func NewOwner(key, displayName string) (*Owner, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, ErrOwnerKeyRequired
	}
	if displayName == "" {
		displayName = key
	}
	now := time.Now().UTC()
	return &Owner{
		key:               key,
		displayName:       displayName,
		contentAccessMode: ContentAccessEntitlement,
		createdAt:         now,
		updatedAt:         now,
	}, nil
}

// ReconstructOwner rebuilds an owner from persistence.
func ReconstructOwner(id, key, displayName, contentAccessMode string, createdAt, updatedAt time.Time) (*Owner, error) {
	if id == "" {
		return nil, fmt.Errorf("owner ID cannot be empty")
	}
	if key == "" {
		return nil, ErrOwnerKeyRequired
	}
	return &Owner{
		id:                id,
		key:               key,
		displayName:       displayName,
		contentAccessMode: contentAccessMode,
		createdAt:         createdAt,
		updatedAt:         updatedAt,
	}, nil
}

func (o *Owner) ID() string                { return o.id }
func (o *Owner) Key() string               { return o.key }
func (o *Owner) DisplayName() string       { return o.displayName }
func (o *Owner) ContentAccessMode() string { return o.contentAccessMode }
func (o *Owner) CreatedAt() time.Time      { return o.createdAt }
func (o *Owner) UpdatedAt() time.Time      { return o.updatedAt }

// SetID assigns the persistent ID once.
func (o *Owner) SetID(id string) error {
	if o.id != "" {
		return fmt.Errorf("owner ID is already set")
	}
	if id == "" {
		return fmt.Errorf("owner ID cannot be empty")
	}
	o.id = id
	return nil
}

// UeberProductID returns the ID of the owner's bookkeeping product.
func (o *Owner) UeberProductID() string {
	return UeberProductIDFor(o.key)
}

// UeberProductIDFor returns the bookkeeping product ID for an owner key.
func UeberProductIDFor(ownerKey string) string {
	return ownerKey + ueberProductSuffix
}

// Repository persists owners.
type Repository interface {
	Create(ctx context.Context, o *Owner) error
	// GetByID returns nil, nil when the owner does not exist.
	GetByID(ctx context.Context, id string) (*Owner, error)
	// GetByKey returns nil, nil when the owner does not exist.
	GetByKey(ctx context.Context, key string) (*Owner, error)
}
