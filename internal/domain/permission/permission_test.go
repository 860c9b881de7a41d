package permission

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCombine_FullAccessLiftsRestrictions(t *testing.T) {
	perms := []Permission{
		OwnerPermission{OwnerID: "o1", Access: AccessAll},
		FullAccess{},
	}
	assert.Empty(t, Combine(perms, EntityPool))
}

func TestCombine_NoContributionMeansUnrestricted(t *testing.T) {
	perms := []Permission{AttributePermission{Name: "x", Value: "y"}}
	restrictions := Combine(perms, EntityConsumer)
	assert.Empty(t, restrictions)
	assert.True(t, Allows(restrictions, Subject{OwnerID: "anyone"}))
}

func TestCombine_RestrictionsAreOred(t *testing.T) {
	perms := []Permission{
		OwnerPermission{OwnerID: "o1", Access: AccessReadOnly},
		OwnerPermission{OwnerID: "o2", Access: AccessReadOnly},
	}
	restrictions := Combine(perms, EntityPool)
	require.Len(t, restrictions, 2)

	assert.True(t, Allows(restrictions, Subject{OwnerID: "o1"}))
	assert.True(t, Allows(restrictions, Subject{OwnerID: "o2"}))
	assert.False(t, Allows(restrictions, Subject{OwnerID: "o3"}))
}

func TestUsernamePermission(t *testing.T) {
	perm := UsernamePermission{OwnerID: "o1", Username: "alice"}

	r, ok := perm.QueryRestriction(EntityConsumer)
	require.True(t, ok)
	assert.True(t, r.Matches(Subject{OwnerID: "o1", Username: "alice"}))
	assert.False(t, r.Matches(Subject{OwnerID: "o1", Username: "bob"}))
	assert.False(t, r.Matches(Subject{OwnerID: "o1"}))
	assert.False(t, r.Matches(Subject{OwnerID: "o2", Username: "alice"}))

	r, ok = perm.QueryRestriction(EntityPool)
	require.True(t, ok)
	assert.True(t, r.Matches(Subject{OwnerID: "o1"}))
	assert.True(t, r.Matches(Subject{OwnerID: "o1", Username: "alice"}))
	assert.False(t, r.Matches(Subject{OwnerID: "o1", Username: "bob"}))

	_, ok = perm.QueryRestriction(EntityEntitlement)
	assert.False(t, ok)
}

func TestUsernamePermission_PinsOwner(t *testing.T) {
	restrictions := Combine([]Permission{UsernamePermission{OwnerID: "o1", Username: "alice"}}, EntityPool)
	require.Len(t, restrictions, 1)

	assert.True(t, Allows(restrictions, Subject{OwnerID: "o1"}))
	assert.False(t, Allows(restrictions, Subject{OwnerID: "o2"}), "unrestricted pools of another owner stay hidden")
	assert.False(t, Allows(restrictions, Subject{OwnerID: "o2", Username: "alice"}))
}

func TestAttributePermission(t *testing.T) {
	perm := AttributePermission{Name: "support_level", Value: "premium"}
	r, ok := perm.QueryRestriction(EntityPool)
	require.True(t, ok)
	assert.True(t, r.Matches(Subject{Attributes: map[string]string{"support_level": "premium"}}))
	assert.False(t, r.Matches(Subject{Attributes: map[string]string{"support_level": "standard"}}))
	assert.False(t, r.Matches(Subject{}))
}

func TestAccess(t *testing.T) {
	assert.True(t, AccessAll.Provides(AccessReadOnly))
	assert.True(t, AccessCreate.Provides(AccessCreate))
	assert.False(t, AccessReadOnly.Provides(AccessCreate))

	a, err := ParseAccess("ALL")
	require.NoError(t, err)
	assert.Equal(t, AccessAll, a)

	_, err = ParseAccess("everything")
	assert.Error(t, err)
}

func TestPrincipal(t *testing.T) {
	p := &Principal{Name: "alice", Permissions: []Permission{OwnerPermission{OwnerID: "o1", Access: AccessCreate}}}
	assert.True(t, p.CanAccessOwner("o1", AccessReadOnly))
	assert.False(t, p.CanAccessOwner("o1", AccessAll))
	assert.False(t, p.CanAccessOwner("o2", AccessReadOnly))
	assert.False(t, p.HasFullAccess())

	admin := &Principal{Name: "admin", Permissions: []Permission{FullAccess{}}}
	assert.True(t, admin.CanAccessOwner("o2", AccessAll))
	assert.Empty(t, admin.Restrictions(EntityPool))

	ctx := WithPrincipal(context.Background(), p)
	got, ok := PrincipalFrom(ctx)
	require.True(t, ok)
	assert.Same(t, p, got)

	_, ok = PrincipalFrom(context.Background())
	assert.False(t, ok)
}
