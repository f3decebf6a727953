package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/taskhive-dev/taskhive/internal/models"
	"github.com/taskhive-dev/taskhive/internal/services"
	"github.com/taskhive-dev/taskhive/internal/types"
	"github.com/taskhive-dev/taskhive/internal/utils"
)

type CommentHandler struct {
	comments *services.CommentService
	members  *services.MembershipResolver
}

func NewCommentHandler(comments *services.CommentService, members *services.MembershipResolver) *CommentHandler {
	return &CommentHandler{comments: comments, members: members}
}

type CreateCommentRequest struct {
	Content string `json:"content" binding:"required"`
}

type UpdateCommentRequest struct {
	Content string `json:"content" binding:"required"`
}

type CommentResponse struct {
	ID        uint      `json:"id"`
	TaskID    uint      `json:"task_id"`
	Content   string    `json:"content"`
	CreatedBy uint      `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CommentWithAuthorResponse struct {
	CommentResponse
	Author types.UserResponse `json:"author"`
}

func commentResponse(comment *models.Comment) CommentResponse {
	return CommentResponse{
		ID:        comment.ID,
		TaskID:    comment.TaskID,
		Content:   comment.Content,
		CreatedBy: comment.CreatedBy,
		CreatedAt: comment.CreatedAt,
		UpdatedAt: comment.UpdatedAt,
	}
}

func (h *CommentHandler) Create(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	taskID, err := utils.ParamID(ctx, "task_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var req CreateCommentRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	comment, err := h.comments.Create(taskID, userID, req.Content)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, commentResponse(comment))
}

func (h *CommentHandler) List(ctx *gin.Context) {
	taskID, err := utils.ParamID(ctx, "task_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comments, err := h.comments.List(taskID)

	if err != nil {
		respondError(ctx, err)
		return
	}

	response := make([]CommentWithAuthorResponse, 0, len(comments))
	for i := range comments {
		response = append(response, CommentWithAuthorResponse{
			CommentResponse: commentResponse(&comments[i]),
			Author: types.UserResponse{
				ID:    comments[i].Author.ID,
				Name:  comments[i].Author.Name,
				Email: comments[i].Author.Email,
			},
		})
	}

	ctx.JSON(http.StatusOK, response)
}

func (h *CommentHandler) Update(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	commentID, err := utils.ParamID(ctx, "comment_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var req UpdateCommentRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	comment, err := h.comments.Update(commentID, userID, req.Content)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, commentResponse(comment))
}

// Delete resolves the caller's role in the workspace named by the route and
// hands it to the service. The service does not re-check the comment's own
// workspace unless strict mode is on.
func (h *CommentHandler) Delete(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	workspaceID, err := utils.ParamID(ctx, "workspace_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	commentID, err := utils.ParamID(ctx, "comment_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	member, err := h.members.Resolve(userID, workspaceID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	callerRole := ""
	if member != nil {
		callerRole = member.Role
	}

	if err := h.comments.Delete(commentID, userID, callerRole); err != nil {
		respondError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}
