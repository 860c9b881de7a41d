// Package permission models what a principal may see. Each permission may
// contribute a restriction for an entity type; restrictions contributed by
// different permissions are OR'd so that holding more permissions never
// hides more rows.
package permission

import (
	"fmt"
	"strings"
)

// EntityType names the kind of row a restriction applies to.
type EntityType string

const (
	EntityPool        EntityType = "pool"
	EntityConsumer    EntityType = "consumer"
	EntityEntitlement EntityType = "entitlement"
)

// Access is the level granted by a permission.
type Access string

const (
	AccessReadOnly Access = "read_only"
	AccessCreate   Access = "create"
	AccessAll      Access = "all"
)

var accessRank = map[Access]int{
	AccessReadOnly: 1,
	AccessCreate:   2,
	AccessAll:      3,
}

// ParseAccess parses an access level name.
func ParseAccess(s string) (Access, error) {
	a := Access(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := accessRank[a]; !ok {
		return "", fmt.Errorf("invalid access level: %s", s)
	}
	return a, nil
}

// Provides reports whether a satisfies required.
func (a Access) Provides(required Access) bool {
	return accessRank[a] >= accessRank[required]
}

// Subject is the view of a row needed to evaluate a restriction in memory.
type Subject struct {
	OwnerID    string
	Username   string
	Attributes map[string]string
}

// Restriction is a predicate a permission places on one entity type.
type Restriction interface {
	Matches(s Subject) bool
}

// OwnerRestriction limits rows to the listed owners.
type OwnerRestriction struct {
	OwnerIDs []string
}

func (r OwnerRestriction) Matches(s Subject) bool {
	for _, id := range r.OwnerIDs {
		if id == s.OwnerID {
			return true
		}
	}
	return false
}

// UsernameRestriction limits rows of OwnerID to those tied to Username. With
// AllowUnset, rows of OwnerID not tied to any username also pass. An empty
// OwnerID does not pin the owner.
type UsernameRestriction struct {
	OwnerID    string
	Username   string
	AllowUnset bool
}

func (r UsernameRestriction) Matches(s Subject) bool {
	if r.OwnerID != "" && s.OwnerID != r.OwnerID {
		return false
	}
	if s.Username == "" {
		return r.AllowUnset
	}
	return s.Username == r.Username
}

// AttributeRestriction limits rows to those carrying Name=Value.
type AttributeRestriction struct {
	Name  string
	Value string
}

func (r AttributeRestriction) Matches(s Subject) bool {
	v, ok := s.Attributes[r.Name]
	return ok && v == r.Value
}

// Permission is a capability held by a principal.
type Permission interface {
	// QueryRestriction returns the restriction for entity, or false when the
	// permission contributes none.
	QueryRestriction(entity EntityType) (Restriction, bool)
}

// FullAccess is the only variant that lifts every restriction.
type FullAccess struct{}

func (FullAccess) QueryRestriction(EntityType) (Restriction, bool) {
	return nil, false
}

// OwnerPermission grants access to everything belonging to one owner.
type OwnerPermission struct {
	OwnerID string
	Access  Access
}

func (p OwnerPermission) QueryRestriction(entity EntityType) (Restriction, bool) {
	return OwnerRestriction{OwnerIDs: []string{p.OwnerID}}, true
}

// UsernamePermission grants access to the consumers a user registered in one
// owner, and to that owner's pools that are unrestricted or restricted to
// the same user.
type UsernamePermission struct {
	OwnerID  string
	Username string
}

func (p UsernamePermission) QueryRestriction(entity EntityType) (Restriction, bool) {
	switch entity {
	case EntityConsumer:
		return UsernameRestriction{OwnerID: p.OwnerID, Username: p.Username}, true
	case EntityPool:
		return UsernameRestriction{OwnerID: p.OwnerID, Username: p.Username, AllowUnset: true}, true
	default:
		return nil, false
	}
}

// AttributePermission grants access to pools carrying a given attribute.
type AttributePermission struct {
	Name  string
	Value string
}

func (p AttributePermission) QueryRestriction(entity EntityType) (Restriction, bool) {
	if entity != EntityPool {
		return nil, false
	}
	return AttributeRestriction{Name: p.Name, Value: p.Value}, true
}

// Combine collects the restrictions contributed for entity. An empty result
// means no restriction: either a FullAccess permission is held or no
// permission contributed anything. Otherwise a row is visible when it matches
// any one of the returned restrictions.
func Combine(perms []Permission, entity EntityType) []Restriction {
	var restrictions []Restriction
	for _, p := range perms {
		if _, ok := p.(FullAccess); ok {
			return nil
		}
		if r, ok := p.QueryRestriction(entity); ok && r != nil {
			restrictions = append(restrictions, r)
		}
	}
	return restrictions
}

// Allows evaluates combined restrictions in memory.
func Allows(restrictions []Restriction, s Subject) bool {
	if len(restrictions) == 0 {
		return true
	}
	for _, r := range restrictions {
		if r.Matches(s) {
			return true
		}
	}
	return false
}
