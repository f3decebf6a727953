package services

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/taskhive-dev/taskhive/db"
	"github.com/taskhive-dev/taskhive/internal/auth"
	"github.com/taskhive-dev/taskhive/internal/mailer"
	"github.com/taskhive-dev/taskhive/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testPassword = "Sup3rSecret"

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// A fresh in-memory database exists per connection; pin the pool to one
	// so every query and the async mailer goroutines see the same database.
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.Migrate(conn))

	return conn
}

type fixture struct {
	conn       *gorm.DB
	tokens     *auth.TokenManager
	mail       *mailer.Mailer
	members    *MembershipResolver
	identity   *IdentityService
	workspaces *WorkspaceService
	projects   *ProjectService
	tasks      *TaskService
	comments   *CommentService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	conn := newTestDB(t)
	tokens := auth.NewTokenManager("test-secret")
	mail := mailer.New(conn, nil)
	members := NewMembershipResolver(conn)

	return &fixture{
		conn:       conn,
		tokens:     tokens,
		mail:       mail,
		members:    members,
		identity:   NewIdentityService(conn, tokens, mail),
		workspaces: NewWorkspaceService(conn, members, mail),
		projects:   NewProjectService(conn, members),
		tasks:      NewTaskService(conn, members),
		comments:   NewCommentService(conn, members, false),
	}
}

func (f *fixture) createUser(t *testing.T, email string) models.User {
	t.Helper()

	hash, err := auth.HashPassword(testPassword)
	require.NoError(t, err)

	user := models.User{
		Name:         "Test User",
		Email:        email,
		PasswordHash: hash,
	}
	require.NoError(t, f.conn.Create(&user).Error)

	return user
}

func (f *fixture) createWorkspace(t *testing.T, ownerID uint, name string) *models.Workspace {
	t.Helper()

	workspace, err := f.workspaces.Create(ownerID, name)
	require.NoError(t, err)

	return workspace
}

func (f *fixture) addMember(t *testing.T, workspaceID, userID uint, role string) {
	t.Helper()

	member := models.WorkspaceMember{
		WorkspaceID: workspaceID,
		UserID:      userID,
		Role:        role,
	}
	require.NoError(t, f.conn.Create(&member).Error)
}

func (f *fixture) createProject(t *testing.T, userID, workspaceID uint, name string) *models.Project {
	t.Helper()

	project, err := f.projects.Create(userID, workspaceID, name, "")
	require.NoError(t, err)

	return project
}

func (f *fixture) createTask(t *testing.T, userID, workspaceID, projectID uint, title string) *models.Task {
	t.Helper()

	task, err := f.tasks.Create(userID, workspaceID, projectID, CreateTaskInput{Title: title})
	require.NoError(t, err)

	return task
}
