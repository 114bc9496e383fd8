package identity

import (
	"context"
	"testing"
	"time"

	"github.com/pulsepage/pulsepage/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthenticator_RoundTrip(t *testing.T) {
	auth := NewAuthenticator(Config{SecretKey: "test-secret", TokenDuration: time.Hour})

	token, err := auth.IssueToken(domain.Identity{
		UserID:         "user_1",
		OrganizationID: "org_1",
		Role:           domain.RoleAdmin,
	})
	require.NoError(t, err)

	ident, err := auth.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "user_1", ident.UserID)
	assert.Equal(t, "org_1", ident.OrganizationID)
	assert.Equal(t, domain.RoleAdmin, ident.Role)
}

func TestAuthenticator_MissingOrganization(t *testing.T) {
	auth := NewAuthenticator(Config{SecretKey: "test-secret"})

	token, err := auth.IssueToken(domain.Identity{UserID: "user_1", Role: domain.RoleMember})
	require.NoError(t, err)

	ident, err := auth.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Empty(t, ident.OrganizationID)
}

func TestAuthenticator_DefaultsToMemberRole(t *testing.T) {
	auth := NewAuthenticator(Config{SecretKey: "test-secret"})

	token, err := auth.IssueToken(domain.Identity{UserID: "user_1", OrganizationID: "org_1"})
	require.NoError(t, err)

	ident, err := auth.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleMember, ident.Role)
}

func TestAuthenticator_WrongSecret(t *testing.T) {
	issuer := NewAuthenticator(Config{SecretKey: "secret-a"})
	verifier := NewAuthenticator(Config{SecretKey: "secret-b"})

	token, err := issuer.IssueToken(domain.Identity{UserID: "user_1", OrganizationID: "org_1"})
	require.NoError(t, err)

	_, err = verifier.ValidateToken(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthenticator_Garbage(t *testing.T) {
	auth := NewAuthenticator(Config{SecretKey: "test-secret"})

	_, err := auth.ValidateToken(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRole_HasPermission(t *testing.T) {
	assert.True(t, domain.RoleAdmin.HasPermission(domain.RoleAdmin))
	assert.True(t, domain.RoleAdmin.HasPermission(domain.RoleMember))
	assert.True(t, domain.RoleMember.HasPermission(domain.RoleMember))
	assert.False(t, domain.RoleMember.HasPermission(domain.RoleAdmin))
	assert.False(t, domain.Role("").HasPermission(domain.RoleMember))
}
