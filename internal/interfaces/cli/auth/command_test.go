package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/candlepin/candlepin-sub005/internal/domain/permission"
)

type recordingGranter struct {
	calls []string
}

func (g *recordingGranter) GrantFullAccess(subject string) error {
	g.calls = append(g.calls, "full:"+subject)
	return nil
}

func (g *recordingGranter) GrantOwner(subject, ownerID string, access permission.Access) error {
	g.calls = append(g.calls, "owner:"+subject+":"+ownerID+":"+string(access))
	return nil
}

func (g *recordingGranter) AddRoleForUser(userID string, role string) error {
	g.calls = append(g.calls, "role:"+userID+":"+role)
	return nil
}

func TestApplyGrant(t *testing.T) {
	tests := []struct {
		name    string
		opts    grantOptions
		want    []string
		wantErr bool
	}{
		{"owner", grantOptions{principal: "alice", ownerID: "o1", access: "all"}, []string{"owner:alice:o1:all"}, false},
		{"full access", grantOptions{principal: "admin", fullAccess: true}, []string{"full:admin"}, false},
		{"role wins", grantOptions{principal: "bob", role: "auditors", fullAccess: true}, []string{"role:bob:auditors"}, false},
		{"bad access", grantOptions{principal: "alice", ownerID: "o1", access: "root"}, nil, true},
		{"nothing to grant", grantOptions{principal: "alice"}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := &recordingGranter{}
			err := applyGrant(g, &tt.opts)
			if tt.wantErr {
				require.Error(t, err)
				assert.Empty(t, g.calls)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, g.calls)
		})
	}
}
