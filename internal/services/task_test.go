package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskhive-dev/taskhive/internal/apperrors"
	"github.com/taskhive-dev/taskhive/internal/models"
	"github.com/taskhive-dev/taskhive/internal/types"
)

func TestCreateTask(t *testing.T) {
	f := newFixture(t)
	owner := f.createUser(t, "owner@example.com")
	outsider := f.createUser(t, "outsider@example.com")
	workspace := f.createWorkspace(t, owner.ID, "Acme")
	project := f.createProject(t, owner.ID, workspace.ID, "Launch")

	t.Run("defaults", func(t *testing.T) {
		task, err := f.tasks.Create(owner.ID, workspace.ID, project.ID, CreateTaskInput{Title: "  Ship it  "})
		require.NoError(t, err)
		assert.Equal(t, "Ship it", task.Title)
		assert.Equal(t, models.TaskStatusTodo, task.Status)
		assert.Equal(t, models.TaskPriorityMedium, task.Priority)
		assert.Nil(t, task.DueDate)
		assert.Nil(t, task.AssignedTo)
		assert.Equal(t, owner.ID, task.CreatedBy)
	})

	t.Run("blank title", func(t *testing.T) {
		_, err := f.tasks.Create(owner.ID, workspace.ID, project.ID, CreateTaskInput{Title: " "})
		assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
	})

	t.Run("invalid status", func(t *testing.T) {
		_, err := f.tasks.Create(owner.ID, workspace.ID, project.ID, CreateTaskInput{Title: "X", Status: "BLOCKED"})
		assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
	})

	t.Run("invalid priority", func(t *testing.T) {
		_, err := f.tasks.Create(owner.ID, workspace.ID, project.ID, CreateTaskInput{Title: "X", Priority: "URGENT"})
		assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
	})

	t.Run("non-member is refused", func(t *testing.T) {
		_, err := f.tasks.Create(outsider.ID, workspace.ID, project.ID, CreateTaskInput{Title: "Sneaky"})
		assert.Equal(t, apperrors.KindAuthorization, apperrors.KindOf(err))
	})

	t.Run("unknown project", func(t *testing.T) {
		_, err := f.tasks.Create(owner.ID, workspace.ID, 9999, CreateTaskInput{Title: "Lost"})
		assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
	})

	t.Run("assignee outside workspace", func(t *testing.T) {
		var before int64
		require.NoError(t, f.conn.Model(&models.Task{}).Count(&before).Error)

		_, err := f.tasks.Create(owner.ID, workspace.ID, project.ID, CreateTaskInput{
			Title:      "Misassigned",
			AssignedTo: &outsider.ID,
		})
		require.Error(t, err)
		assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

		// The rejected task must not be created.
		var after int64
		require.NoError(t, f.conn.Model(&models.Task{}).Count(&after).Error)
		assert.Equal(t, before, after)
	})

	t.Run("assignee in workspace", func(t *testing.T) {
		bob := f.createUser(t, "bob@example.com")
		f.addMember(t, workspace.ID, bob.ID, models.RoleMember)

		due := time.Now().Add(48 * time.Hour).UTC().Truncate(time.Second)
		task, err := f.tasks.Create(owner.ID, workspace.ID, project.ID, CreateTaskInput{
			Title:      "Assigned",
			Status:     models.TaskStatusInProgress,
			Priority:   models.TaskPriorityHigh,
			DueDate:    &due,
			AssignedTo: &bob.ID,
		})
		require.NoError(t, err)
		require.NotNil(t, task.AssignedTo)
		assert.Equal(t, bob.ID, *task.AssignedTo)
		assert.Equal(t, models.TaskStatusInProgress, task.Status)
		assert.Equal(t, models.TaskPriorityHigh, task.Priority)
	})
}

func TestListTasks(t *testing.T) {
	f := newFixture(t)
	owner := f.createUser(t, "owner@example.com")
	workspace := f.createWorkspace(t, owner.ID, "Acme")
	project := f.createProject(t, owner.ID, workspace.ID, "Launch")
	other := f.createProject(t, owner.ID, workspace.ID, "Other")

	f.createTask(t, owner.ID, workspace.ID, project.ID, "First")
	f.createTask(t, owner.ID, workspace.ID, project.ID, "Second")
	f.createTask(t, owner.ID, workspace.ID, other.ID, "Elsewhere")

	tasks, err := f.tasks.List(workspace.ID, project.ID, owner.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "Second", tasks[0].Title)
	assert.Equal(t, "First", tasks[1].Title)
}

func TestUpdateTask(t *testing.T) {
	f := newFixture(t)
	owner := f.createUser(t, "owner@example.com")
	plain := f.createUser(t, "member@example.com")
	workspace := f.createWorkspace(t, owner.ID, "Acme")
	f.addMember(t, workspace.ID, plain.ID, models.RoleMember)
	project := f.createProject(t, owner.ID, workspace.ID, "Launch")

	t.Run("any member may update", func(t *testing.T) {
		task := f.createTask(t, owner.ID, workspace.ID, project.ID, "Ship it")

		status := models.TaskStatusDone
		updated, err := f.tasks.Update(workspace.ID, project.ID, task.ID, plain.ID, UpdateTaskInput{
			Status: &status,
		})
		require.NoError(t, err)
		assert.Equal(t, models.TaskStatusDone, updated.Status)
		assert.Equal(t, "Ship it", updated.Title)
	})

	t.Run("unset fields stay untouched", func(t *testing.T) {
		due := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Second)
		task, err := f.tasks.Create(owner.ID, workspace.ID, project.ID, CreateTaskInput{
			Title:       "Keep",
			Description: "Original",
			DueDate:     &due,
		})
		require.NoError(t, err)

		title := "Kept and renamed"
		_, err = f.tasks.Update(workspace.ID, project.ID, task.ID, owner.ID, UpdateTaskInput{Title: &title})
		require.NoError(t, err)

		var stored models.Task
		require.NoError(t, f.conn.First(&stored, task.ID).Error)
		assert.Equal(t, "Kept and renamed", stored.Title)
		assert.Equal(t, "Original", stored.Description)
		require.NotNil(t, stored.DueDate)
	})

	t.Run("explicit null clears fields", func(t *testing.T) {
		bob := f.createUser(t, "bob2@example.com")
		f.addMember(t, workspace.ID, bob.ID, models.RoleMember)

		due := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Second)
		task, err := f.tasks.Create(owner.ID, workspace.ID, project.ID, CreateTaskInput{
			Title:       "Clear me",
			Description: "Doomed",
			DueDate:     &due,
			AssignedTo:  &bob.ID,
		})
		require.NoError(t, err)

		_, err = f.tasks.Update(workspace.ID, project.ID, task.ID, owner.ID, UpdateTaskInput{
			Description: types.Null[string](),
			DueDate:     types.Null[time.Time](),
			AssignedTo:  types.Null[uint](),
		})
		require.NoError(t, err)

		var stored models.Task
		require.NoError(t, f.conn.First(&stored, task.ID).Error)
		assert.Empty(t, stored.Description)
		assert.Nil(t, stored.DueDate)
		assert.Nil(t, stored.AssignedTo)
	})

	t.Run("reassignment checks membership", func(t *testing.T) {
		stranger := f.createUser(t, "stranger@example.com")
		task := f.createTask(t, owner.ID, workspace.ID, project.ID, "Handoff")

		_, err := f.tasks.Update(workspace.ID, project.ID, task.ID, owner.ID, UpdateTaskInput{
			AssignedTo: types.Some(stranger.ID),
		})
		require.Error(t, err)
		assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
	})

	t.Run("invalid status", func(t *testing.T) {
		task := f.createTask(t, owner.ID, workspace.ID, project.ID, "Status check")

		bad := "BLOCKED"
		_, err := f.tasks.Update(workspace.ID, project.ID, task.ID, owner.ID, UpdateTaskInput{Status: &bad})
		assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
	})

	t.Run("unknown task", func(t *testing.T) {
		_, err := f.tasks.Update(workspace.ID, project.ID, 9999, owner.ID, UpdateTaskInput{})
		assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
	})
}

// A MEMBER can move any task along, but deleting someone else's task takes
// the creator or an elevated role.
func TestDeleteTask(t *testing.T) {
	f := newFixture(t)
	owner := f.createUser(t, "owner@example.com")
	admin := f.createUser(t, "admin@example.com")
	plain := f.createUser(t, "member@example.com")
	workspace := f.createWorkspace(t, owner.ID, "Acme")
	f.addMember(t, workspace.ID, admin.ID, models.RoleAdmin)
	f.addMember(t, workspace.ID, plain.ID, models.RoleMember)
	project := f.createProject(t, owner.ID, workspace.ID, "Launch")

	t.Run("member cannot delete another's task", func(t *testing.T) {
		task := f.createTask(t, owner.ID, workspace.ID, project.ID, "Owned elsewhere")

		err := f.tasks.Delete(workspace.ID, project.ID, task.ID, plain.ID)
		require.Error(t, err)
		assert.Equal(t, apperrors.KindAuthorization, apperrors.KindOf(err))
	})

	t.Run("creator may delete", func(t *testing.T) {
		task := f.createTask(t, plain.ID, workspace.ID, project.ID, "Mine")
		assert.NoError(t, f.tasks.Delete(workspace.ID, project.ID, task.ID, plain.ID))
	})

	t.Run("admin may delete and comments go too", func(t *testing.T) {
		task := f.createTask(t, plain.ID, workspace.ID, project.ID, "Reviewed")
		_, err := f.comments.Create(task.ID, plain.ID, "Needs work")
		require.NoError(t, err)

		require.NoError(t, f.tasks.Delete(workspace.ID, project.ID, task.ID, admin.ID))

		var count int64
		require.NoError(t, f.conn.Model(&models.Comment{}).Where("task_id = ?", task.ID).Count(&count).Error)
		assert.Zero(t, count)
	})
}
