// Package permission resolves principals to their permissions from casbin
// policies stored through the gorm adapter.
//
// Policy objects encode the permission variant:
//
//	p, role:admin, *, all                  full access
//	p, alice, owner:<owner id>, create     owner permission at an access level
//	p, alice, user:<owner id>, read_only   pools and consumers of alice in the owner
//	p, alice, attribute:<name>=<value>, *  pools carrying the attribute
//	g, alice, role:admin                   role membership
package permission

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"gorm.io/gorm"

	"github.com/candlepin/candlepin-sub005/internal/domain/permission"
	"github.com/candlepin/candlepin-sub005/internal/shared/constants"
	"github.com/candlepin/candlepin-sub005/internal/shared/logger"
)

const (
	objectAll       = "*"
	prefixOwner     = "owner:"
	prefixUser      = "user:"
	prefixAttribute = "attribute:"
)

// defaultModel is used when no model file is configured.
const defaultModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && (p.obj == "*" || r.obj == p.obj) && (p.act == "all" || r.act == p.act)
`

var _ permission.Resolver = (*Enforcer)(nil)

type Enforcer struct {
	enforcer *casbin.Enforcer
	mu       sync.RWMutex
	logger   logger.Interface
}

// NewEnforcer loads the casbin model from modelPath, or the built-in model
// when modelPath is empty, and the policies stored in db.
func NewEnforcer(db *gorm.DB, modelPath string, log logger.Interface) (*Enforcer, error) {
	adapter, err := gormadapter.NewAdapterByDBUseTableName(db, "", constants.TableCasbinRules)
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin adapter: %w", err)
	}

	var m model.Model
	if modelPath != "" {
		m, err = model.NewModelFromFile(modelPath)
	} else {
		m, err = model.NewModelFromString(defaultModel)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load casbin model: %w", err)
	}

	enforcer, err := casbin.NewEnforcer(m, adapter)
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
	}

	if err := enforcer.LoadPolicy(); err != nil {
		return nil, fmt.Errorf("failed to load policy: %w", err)
	}

	return &Enforcer{
		enforcer: enforcer,
		logger:   log,
	}, nil
}

// Resolve collects the implicit policies of name, including those inherited
// through roles, and maps them to permissions. Unparseable policies are
// skipped.
func (e *Enforcer) Resolve(ctx context.Context, name string) (*permission.Principal, error) {
	e.mu.RLock()
	policies, err := e.enforcer.GetImplicitPermissionsForUser(name)
	e.mu.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("failed to get permissions for %s: %w", name, err)
	}

	principal := &permission.Principal{Name: name}
	for _, policy := range policies {
		if len(policy) < 3 {
			continue
		}
		perm, err := toPermission(name, policy[1], policy[2])
		if err != nil {
			e.logger.Warnw("skipping invalid permission policy", "principal", name, "policy", policy, "error", err)
			continue
		}
		principal.Permissions = append(principal.Permissions, perm)
	}

	e.logger.Debugw("principal resolved", "principal", name, "permissions", len(principal.Permissions))
	return principal, nil
}

func toPermission(name, object, action string) (permission.Permission, error) {
	switch {
	case object == objectAll:
		return permission.FullAccess{}, nil
	case strings.HasPrefix(object, prefixOwner):
		access, err := permission.ParseAccess(action)
		if err != nil {
			return nil, err
		}
		return permission.OwnerPermission{OwnerID: strings.TrimPrefix(object, prefixOwner), Access: access}, nil
	case strings.HasPrefix(object, prefixUser):
		return permission.UsernamePermission{OwnerID: strings.TrimPrefix(object, prefixUser), Username: name}, nil
	case strings.HasPrefix(object, prefixAttribute):
		attrName, value, ok := strings.Cut(strings.TrimPrefix(object, prefixAttribute), "=")
		if !ok || attrName == "" {
			return nil, fmt.Errorf("malformed attribute object %q", object)
		}
		return permission.AttributePermission{Name: attrName, Value: value}, nil
	default:
		return nil, fmt.Errorf("unknown permission object %q", object)
	}
}

// GrantFullAccess gives subject, a user or a role, every permission.
func (e *Enforcer) GrantFullAccess(subject string) error {
	return e.addPolicy(subject, objectAll, string(permission.AccessAll))
}

func (e *Enforcer) GrantOwner(subject, ownerID string, access permission.Access) error {
	return e.addPolicy(subject, prefixOwner+ownerID, string(access))
}

func (e *Enforcer) GrantUsername(subject, ownerID string) error {
	return e.addPolicy(subject, prefixUser+ownerID, string(permission.AccessReadOnly))
}

func (e *Enforcer) GrantAttribute(subject, name, value string) error {
	return e.addPolicy(subject, prefixAttribute+name+"="+value, string(permission.AccessReadOnly))
}

func (e *Enforcer) addPolicy(subject, object, action string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.enforcer.AddPolicy(subject, object, action); err != nil {
		e.logger.Errorw("failed to add policy", "error", err, "subject", subject, "object", object)
		return fmt.Errorf("failed to add policy: %w", err)
	}
	return nil
}

// RevokeOwner removes an owner permission at the given access level.
func (e *Enforcer) RevokeOwner(subject, ownerID string, access permission.Access) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.enforcer.RemovePolicy(subject, prefixOwner+ownerID, string(access)); err != nil {
		e.logger.Errorw("failed to remove policy", "error", err)
		return fmt.Errorf("failed to remove policy: %w", err)
	}
	return nil
}

func (e *Enforcer) AddRoleForUser(userID string, role string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, err := e.enforcer.AddRoleForUser(userID, role)
	if err != nil {
		e.logger.Errorw("failed to add role for user", "error", err, "user_id", userID, "role", role)
		return fmt.Errorf("failed to add role for user: %w", err)
	}
	return nil
}

func (e *Enforcer) DeleteRoleForUser(userID string, role string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, err := e.enforcer.DeleteRoleForUser(userID, role)
	if err != nil {
		e.logger.Errorw("failed to delete role for user", "error", err, "user_id", userID, "role", role)
		return fmt.Errorf("failed to delete role for user: %w", err)
	}
	return nil
}

func (e *Enforcer) LoadPolicy() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.enforcer.LoadPolicy(); err != nil {
		return fmt.Errorf("failed to reload policy: %w", err)
	}

	e.logger.Infow("policy reloaded successfully")
	return nil
}
