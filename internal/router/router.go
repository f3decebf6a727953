package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/taskhive-dev/taskhive/internal/auth"
	"github.com/taskhive-dev/taskhive/internal/handlers"
	"github.com/taskhive-dev/taskhive/internal/middleware"
	"gorm.io/gorm"
)

type Deps struct {
	Conn       *gorm.DB
	Tokens     *auth.TokenManager
	Origins    []string
	Auth       *handlers.AuthHandler
	Workspaces *handlers.WorkspaceHandler
	Projects   *handlers.ProjectHandler
	Tasks      *handlers.TaskHandler
	Comments   *handlers.CommentHandler
}

func New(deps Deps) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     deps.Origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	authRequired := middleware.AuthMiddleware(deps.Conn, deps.Tokens)

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck)

		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", deps.Auth.Register)
			authGroup.POST("/login", deps.Auth.Login)
			authGroup.POST("/refresh", deps.Auth.Refresh)
			authGroup.POST("/password/forgot", deps.Auth.ForgotPassword)
			authGroup.POST("/password/reset", deps.Auth.ResetPassword)
			authGroup.GET("/me", authRequired, deps.Auth.Me)
			authGroup.PUT("/password", authRequired, deps.Auth.ChangePassword)
		}

		workspaces := api.Group("/workspaces", authRequired)
		{
			workspaces.POST("", deps.Workspaces.Create)
			workspaces.GET("", deps.Workspaces.List)
			workspaces.PATCH("/:workspace_id", deps.Workspaces.Update)
			workspaces.DELETE("/:workspace_id", deps.Workspaces.Delete)

			workspaces.GET("/:workspace_id/dashboard", deps.Workspaces.GetDashboard)

			workspaces.GET("/:workspace_id/members", deps.Workspaces.ListMembers)
			workspaces.POST("/:workspace_id/members", deps.Workspaces.InviteMember)
			workspaces.PUT("/:workspace_id/members/:user_id", deps.Workspaces.UpdateMemberRole)
			workspaces.DELETE("/:workspace_id/members/:user_id", deps.Workspaces.RemoveMember)

			workspaces.POST("/:workspace_id/projects", deps.Projects.Create)
			workspaces.GET("/:workspace_id/projects", deps.Projects.List)
			workspaces.PATCH("/:workspace_id/projects/:project_id", deps.Projects.Update)
			workspaces.DELETE("/:workspace_id/projects/:project_id", deps.Projects.Delete)

			tasks := workspaces.Group("/:workspace_id/projects/:project_id/tasks")
			{
				tasks.POST("", deps.Tasks.Create)
				tasks.GET("", deps.Tasks.List)
				tasks.PATCH("/:task_id", deps.Tasks.Update)
				tasks.DELETE("/:task_id", deps.Tasks.Delete)

				tasks.POST("/:task_id/comments", deps.Comments.Create)
				tasks.GET("/:task_id/comments", deps.Comments.List)
				tasks.PATCH("/:task_id/comments/:comment_id", deps.Comments.Update)
				tasks.DELETE("/:task_id/comments/:comment_id", deps.Comments.Delete)
			}
		}
	}

	return r
}
