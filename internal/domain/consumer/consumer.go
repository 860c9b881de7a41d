// Package consumer defines registered systems, their facts and the
// request-scoped guest to host lookup cache.
package consumer

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/candlepin/candlepin-sub005/internal/domain/permission"
)

var (
	ErrConsumerNotFound    = errors.New("consumer not found")
	ErrOwnerRequired       = errors.New("consumer owner is required")
	ErrNameRequired        = errors.New("consumer name is required")
	ErrTypeRequired        = errors.New("consumer type is required")
	ErrUUIDAlreadyAssigned = errors.New("consumer UUID cannot be changed once set")
)

// Facts the engine interprets.
const (
	FactVirtIsGuest = "virt.is_guest"
	FactVirtUUID    = "virt.uuid"
)

// Type is the kind of a consumer. Manifest types represent downstream
// distributors rather than machines.
type Type struct {
	label    string
	manifest bool
}

// Standard consumer types.
var (
	TypeSystem     = NewType("system", false)
	TypeHypervisor = NewType("hypervisor", false)
	TypePerson     = NewType("person", false)
	TypeCandlepin  = NewType("candlepin", true)
	TypeSatellite  = NewType("satellite", true)
)

func NewType(label string, manifest bool) Type {
	return Type{label: label, manifest: manifest}
}

func (t Type) Label() string    { return t.label }
func (t Type) IsManifest() bool { return t.manifest }

// Params carries the fields of a Consumer. Maps and slices are copied.
type Params struct {
	UUID          string
	OwnerID       string
	Name          string
	Username      string
	Type          Type
	Facts         map[string]string
	GuestIDs      []string
	HypervisorID  string
	EnvironmentID string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Consumer is a registered system or distributor.
type Consumer struct {
	id            string
	uuid          string
	ownerID       string
	name          string
	username      string
	consumerType  Type
	facts         map[string]string
	guestIDs      []string
	hypervisorID  string
	environmentID string
	version       int
	createdAt     time.Time
	updatedAt     time.Time
}

// NewConsumer validates params and builds an unsaved consumer.
func NewConsumer(p Params) (*Consumer, error) {
	if p.OwnerID == "" {
		return nil, ErrOwnerRequired
	}
	if strings.TrimSpace(p.Name) == "" {
		return nil, ErrNameRequired
	}
	if p.Type.Label() == "" {
		return nil, ErrTypeRequired
	}
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = now
	}
	facts := maps.Clone(p.Facts)
	if facts == nil {
		facts = make(map[string]string)
	}
	return &Consumer{
		uuid:          p.UUID,
		ownerID:       p.OwnerID,
		name:          p.Name,
		username:      p.Username,
		consumerType:  p.Type,
		facts:         facts,
		guestIDs:      slices.Clone(p.GuestIDs),
		hypervisorID:  p.HypervisorID,
		environmentID: p.EnvironmentID,
		version:       1,
		createdAt:     p.CreatedAt,
		updatedAt:     p.UpdatedAt,
	}, nil
}

// ReconstructConsumer rebuilds a consumer from persistence.
func ReconstructConsumer(id string, version int, p Params) (*Consumer, error) {
	if id == "" {
		return nil, fmt.Errorf("consumer ID cannot be empty")
	}
	c, err := NewConsumer(p)
	if err != nil {
		return nil, err
	}
	c.id = id
	c.version = version
	return c, nil
}

func (c *Consumer) ID() string            { return c.id }
func (c *Consumer) UUID() string          { return c.uuid }
func (c *Consumer) OwnerID() string       { return c.ownerID }
func (c *Consumer) Name() string          { return c.name }
func (c *Consumer) Username() string      { return c.username }
func (c *Consumer) Type() Type            { return c.consumerType }
func (c *Consumer) HypervisorID() string  { return c.hypervisorID }
func (c *Consumer) EnvironmentID() string { return c.environmentID }
func (c *Consumer) Version() int          { return c.version }
func (c *Consumer) CreatedAt() time.Time  { return c.createdAt }
func (c *Consumer) UpdatedAt() time.Time  { return c.updatedAt }

// Facts returns a copy of the consumer facts.
func (c *Consumer) Facts() map[string]string {
	return maps.Clone(c.facts)
}

// Fact returns one fact and whether it is set.
func (c *Consumer) Fact(name string) (string, bool) {
	v, ok := c.facts[name]
	return v, ok
}

// GuestIDs returns a copy of the virtual guest IDs reported by the consumer.
func (c *Consumer) GuestIDs() []string {
	return slices.Clone(c.guestIDs)
}

// IsGuest reports whether the consumer declared itself a virtual guest.
func (c *Consumer) IsGuest() bool {
	v, ok := c.facts[FactVirtIsGuest]
	return ok && strings.EqualFold(v, "true")
}

// VirtUUID returns the guest's virtual machine UUID fact, if any.
func (c *Consumer) VirtUUID() (string, bool) {
	v, ok := c.facts[FactVirtUUID]
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return v, true
}

// IsManifest reports whether the consumer is a distributor.
func (c *Consumer) IsManifest() bool {
	return c.consumerType.IsManifest()
}

// SetUUID assigns the UUID. A UUID once set is immutable.
func (c *Consumer) SetUUID(uuid string) error {
	if c.uuid != "" && c.uuid != uuid {
		return ErrUUIDAlreadyAssigned
	}
	c.uuid = uuid
	return nil
}

// SetID assigns the persistent ID once.
func (c *Consumer) SetID(id string) error {
	if c.id != "" {
		return fmt.Errorf("consumer ID is already set")
	}
	c.id = id
	return nil
}

// SetFacts replaces all facts.
func (c *Consumer) SetFacts(facts map[string]string) {
	c.facts = maps.Clone(facts)
	if c.facts == nil {
		c.facts = make(map[string]string)
	}
	c.updatedAt = time.Now().UTC()
}

// SetGuestIDs replaces the reported guest IDs.
func (c *Consumer) SetGuestIDs(ids []string) {
	c.guestIDs = slices.Clone(ids)
	c.updatedAt = time.Now().UTC()
}

// IncrementVersion is called after a successful optimistic update.
func (c *Consumer) IncrementVersion() {
	c.version++
}

// PermissionSubject exposes the fields permission restrictions inspect.
func (c *Consumer) PermissionSubject() permission.Subject {
	return permission.Subject{OwnerID: c.ownerID, Username: c.username}
}

// Repository persists consumers.
type Repository interface {
	// Create validates facts, assigns a UUID when none is set and stores c.
	Create(ctx context.Context, c *Consumer) error
	// Update validates facts and stores c with an optimistic version check.
	Update(ctx context.Context, c *Consumer) error
	// GetByUUID returns nil, nil when no consumer has the UUID.
	GetByUUID(ctx context.Context, uuid string) (*Consumer, error)
	// VerifyAndLookup is GetByUUID that reports an absent consumer as a not
	// found error.
	VerifyAndLookup(ctx context.Context, uuid string) (*Consumer, error)
	// GetHost returns the most recently updated consumer of ownerID that
	// reports guestID, compared case-insensitively, or nil when none does.
	// Results are memoized in the HostCache carried by ctx, if any.
	GetHost(ctx context.Context, guestID, ownerID string) (*Consumer, error)
}
