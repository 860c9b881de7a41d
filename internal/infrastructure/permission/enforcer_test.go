package permission

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/candlepin/candlepin-sub005/internal/domain/permission"
	"github.com/candlepin/candlepin-sub005/internal/infrastructure/database"
	"github.com/candlepin/candlepin-sub005/internal/shared/config"
	"github.com/candlepin/candlepin-sub005/internal/shared/logger"
)

func newTestEnforcer(t *testing.T) *Enforcer {
	t.Helper()
	gdb, err := database.Open(&config.DatabaseConfig{Driver: config.DriverSQLite, Database: ":memory:"})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	e, err := NewEnforcer(gdb, "", logger.NewNopLogger())
	require.NoError(t, err)
	return e
}

func TestEnforcer_ResolveMapsPolicies(t *testing.T) {
	e := newTestEnforcer(t)
	require.NoError(t, e.GrantOwner("alice", "owner-1", permission.AccessCreate))
	require.NoError(t, e.GrantUsername("alice", "owner-2"))
	require.NoError(t, e.GrantAttribute("alice", "support_level", "premium"))

	p, err := e.Resolve(context.Background(), "alice")
	require.NoError(t, err)

	assert.Equal(t, "alice", p.Name)
	assert.ElementsMatch(t, []permission.Permission{
		permission.OwnerPermission{OwnerID: "owner-1", Access: permission.AccessCreate},
		permission.UsernamePermission{OwnerID: "owner-2", Username: "alice"},
		permission.AttributePermission{Name: "support_level", Value: "premium"},
	}, p.Permissions)
	assert.False(t, p.HasFullAccess())
	assert.True(t, p.CanAccessOwner("owner-1", permission.AccessReadOnly))
	assert.False(t, p.CanAccessOwner("owner-1", permission.AccessAll))
	assert.Len(t, p.Restrictions(permission.EntityPool), 3)
}

func TestEnforcer_RoleInheritance(t *testing.T) {
	e := newTestEnforcer(t)
	require.NoError(t, e.GrantFullAccess("role:admin"))
	require.NoError(t, e.AddRoleForUser("root", "role:admin"))

	p, err := e.Resolve(context.Background(), "root")
	require.NoError(t, err)
	assert.True(t, p.HasFullAccess())
	assert.Empty(t, p.Restrictions(permission.EntityPool))

	require.NoError(t, e.DeleteRoleForUser("root", "role:admin"))
	p, err = e.Resolve(context.Background(), "root")
	require.NoError(t, err)
	assert.Empty(t, p.Permissions)
}

func TestEnforcer_RevokeAndReload(t *testing.T) {
	e := newTestEnforcer(t)
	require.NoError(t, e.GrantOwner("bob", "owner-1", permission.AccessAll))
	require.NoError(t, e.RevokeOwner("bob", "owner-1", permission.AccessAll))
	require.NoError(t, e.LoadPolicy())

	p, err := e.Resolve(context.Background(), "bob")
	require.NoError(t, err)
	assert.Empty(t, p.Permissions)
}

func TestToPermission_Invalid(t *testing.T) {
	_, err := toPermission("x", "owner:o1", "sudo")
	assert.Error(t, err)
	_, err = toPermission("x", "attribute:novalue", "read_only")
	assert.Error(t, err)
	_, err = toPermission("x", "product:p1", "read_only")
	assert.Error(t, err)
}
