package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskhive-dev/taskhive/internal/apperrors"
	"github.com/taskhive-dev/taskhive/internal/models"
)

func TestCreateProject(t *testing.T) {
	f := newFixture(t)
	owner := f.createUser(t, "owner@example.com")
	plain := f.createUser(t, "member@example.com")
	outsider := f.createUser(t, "outsider@example.com")
	workspace := f.createWorkspace(t, owner.ID, "Acme")
	f.addMember(t, workspace.ID, plain.ID, models.RoleMember)

	t.Run("any member may create", func(t *testing.T) {
		project, err := f.projects.Create(plain.ID, workspace.ID, "  Launch  ", "First release")
		require.NoError(t, err)
		assert.Equal(t, "Launch", project.Name)
		assert.Equal(t, "First release", project.Description)
		assert.Equal(t, plain.ID, project.CreatedBy)
		assert.Equal(t, workspace.ID, project.WorkspaceID)
	})

	t.Run("non-member is refused", func(t *testing.T) {
		_, err := f.projects.Create(outsider.ID, workspace.ID, "Sneaky", "")
		assert.Equal(t, apperrors.KindAuthorization, apperrors.KindOf(err))
	})

	t.Run("blank name", func(t *testing.T) {
		_, err := f.projects.Create(owner.ID, workspace.ID, "  ", "")
		assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
	})
}

func TestListProjects(t *testing.T) {
	f := newFixture(t)
	owner := f.createUser(t, "owner@example.com")
	outsider := f.createUser(t, "outsider@example.com")
	workspace := f.createWorkspace(t, owner.ID, "Acme")
	other := f.createWorkspace(t, owner.ID, "Other")

	f.createProject(t, owner.ID, workspace.ID, "Alpha")
	f.createProject(t, owner.ID, workspace.ID, "Beta")
	f.createProject(t, owner.ID, other.ID, "Elsewhere")

	projects, err := f.projects.List(workspace.ID, owner.ID)
	require.NoError(t, err)
	require.Len(t, projects, 2)

	// Newest first.
	assert.Equal(t, "Beta", projects[0].Name)
	assert.Equal(t, "Alpha", projects[1].Name)

	_, err = f.projects.List(workspace.ID, outsider.ID)
	assert.Equal(t, apperrors.KindAuthorization, apperrors.KindOf(err))
}

func TestUpdateProject(t *testing.T) {
	f := newFixture(t)
	owner := f.createUser(t, "owner@example.com")
	plain := f.createUser(t, "member@example.com")
	workspace := f.createWorkspace(t, owner.ID, "Acme")
	f.addMember(t, workspace.ID, plain.ID, models.RoleMember)
	project := f.createProject(t, owner.ID, workspace.ID, "Launch")

	t.Run("member is refused", func(t *testing.T) {
		_, err := f.projects.Update(workspace.ID, project.ID, plain.ID, "Renamed", nil)
		assert.Equal(t, apperrors.KindAuthorization, apperrors.KindOf(err))
	})

	t.Run("nil description is untouched", func(t *testing.T) {
		desc := "Keep me"
		_, err := f.projects.Update(workspace.ID, project.ID, owner.ID, "Launch", &desc)
		require.NoError(t, err)

		updated, err := f.projects.Update(workspace.ID, project.ID, owner.ID, "Renamed", nil)
		require.NoError(t, err)
		assert.Equal(t, "Renamed", updated.Name)
		assert.Equal(t, "Keep me", updated.Description)
	})

	t.Run("blank name", func(t *testing.T) {
		_, err := f.projects.Update(workspace.ID, project.ID, owner.ID, " ", nil)
		assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
	})

	t.Run("unknown project", func(t *testing.T) {
		_, err := f.projects.Update(workspace.ID, 9999, owner.ID, "Ghost", nil)
		assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
	})

	t.Run("wrong workspace", func(t *testing.T) {
		other := f.createWorkspace(t, owner.ID, "Other")
		_, err := f.projects.Update(other.ID, project.ID, owner.ID, "Hijack", nil)
		assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
	})
}

func TestDeleteProject(t *testing.T) {
	f := newFixture(t)
	owner := f.createUser(t, "owner@example.com")
	plain := f.createUser(t, "member@example.com")
	workspace := f.createWorkspace(t, owner.ID, "Acme")
	f.addMember(t, workspace.ID, plain.ID, models.RoleMember)

	project := f.createProject(t, owner.ID, workspace.ID, "Launch")
	keep := f.createProject(t, owner.ID, workspace.ID, "Keep")

	task := f.createTask(t, owner.ID, workspace.ID, project.ID, "Ship it")
	kept := f.createTask(t, owner.ID, workspace.ID, keep.ID, "Stays")
	_, err := f.comments.Create(task.ID, owner.ID, "On it")
	require.NoError(t, err)

	t.Run("member is refused", func(t *testing.T) {
		err := f.projects.Delete(workspace.ID, project.ID, plain.ID)
		require.Error(t, err)
		assert.Equal(t, apperrors.KindAuthorization, apperrors.KindOf(err))
	})

	t.Run("owner cascades tasks and comments", func(t *testing.T) {
		require.NoError(t, f.projects.Delete(workspace.ID, project.ID, owner.ID))

		var taskCount, commentCount int64
		require.NoError(t, f.conn.Model(&models.Task{}).Count(&taskCount).Error)
		require.NoError(t, f.conn.Model(&models.Comment{}).Count(&commentCount).Error)
		assert.EqualValues(t, 1, taskCount)
		assert.EqualValues(t, 0, commentCount)

		var remaining models.Task
		require.NoError(t, f.conn.First(&remaining, kept.ID).Error)
	})
}
