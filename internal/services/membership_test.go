package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskhive-dev/taskhive/internal/apperrors"
	"github.com/taskhive-dev/taskhive/internal/models"
)

func TestResolve(t *testing.T) {
	f := newFixture(t)
	owner := f.createUser(t, "owner@example.com")
	outsider := f.createUser(t, "outsider@example.com")
	workspace := f.createWorkspace(t, owner.ID, "Acme")

	t.Run("member", func(t *testing.T) {
		member, err := f.members.Resolve(owner.ID, workspace.ID)
		require.NoError(t, err)
		require.NotNil(t, member)
		assert.Equal(t, models.RoleOwner, member.Role)
	})

	t.Run("non-member", func(t *testing.T) {
		member, err := f.members.Resolve(outsider.ID, workspace.ID)
		require.NoError(t, err)
		assert.Nil(t, member)
	})
}

func TestRequireRole(t *testing.T) {
	f := newFixture(t)
	owner := f.createUser(t, "owner@example.com")
	admin := f.createUser(t, "admin@example.com")
	outsider := f.createUser(t, "outsider@example.com")
	workspace := f.createWorkspace(t, owner.ID, "Acme")
	f.addMember(t, workspace.ID, admin.ID, models.RoleAdmin)

	t.Run("role in set", func(t *testing.T) {
		member, err := f.members.RequireRole(admin.ID, workspace.ID, models.RoleOwner, models.RoleAdmin)
		require.NoError(t, err)
		assert.Equal(t, models.RoleAdmin, member.Role)
	})

	// OWNER-only sets must reject ADMIN; the roles are not ordered.
	t.Run("admin does not satisfy owner-only", func(t *testing.T) {
		_, err := f.members.RequireRole(admin.ID, workspace.ID, models.RoleOwner)
		require.Error(t, err)
		assert.Equal(t, apperrors.KindAuthorization, apperrors.KindOf(err))
	})

	t.Run("non-member", func(t *testing.T) {
		_, err := f.members.RequireRole(outsider.ID, workspace.ID, models.RoleOwner, models.RoleAdmin, models.RoleMember)
		require.Error(t, err)
		assert.Equal(t, apperrors.KindAuthorization, apperrors.KindOf(err))
	})
}
