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

type WorkspaceHandler struct {
	workspaces *services.WorkspaceService
}

func NewWorkspaceHandler(workspaces *services.WorkspaceService) *WorkspaceHandler {
	return &WorkspaceHandler{workspaces: workspaces}
}

type CreateWorkspaceRequest struct {
	Name string `json:"name" binding:"required"`
}

type UpdateWorkspaceRequest struct {
	Name string `json:"name" binding:"required"`
}

type InviteMemberRequest struct {
	Email string `json:"email" binding:"required"`
	Role  string `json:"role"`
}

type UpdateMemberRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

type WorkspaceResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	OwnerID   uint      `json:"owner_id"`
	Role      string    `json:"role,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type MemberResponse struct {
	ID   uint               `json:"id"`
	Role string             `json:"role"`
	User types.UserResponse `json:"user"`
}

func workspaceResponse(workspace *models.Workspace, role string) WorkspaceResponse {
	return WorkspaceResponse{
		ID:        workspace.ID,
		Name:      workspace.Name,
		OwnerID:   workspace.OwnerID,
		Role:      role,
		CreatedAt: workspace.CreatedAt,
	}
}

func memberResponse(member *models.WorkspaceMember) MemberResponse {
	return MemberResponse{
		ID:   member.ID,
		Role: member.Role,
		User: types.UserResponse{
			ID:    member.User.ID,
			Name:  member.User.Name,
			Email: member.User.Email,
		},
	}
}

func (h *WorkspaceHandler) Create(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req CreateWorkspaceRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	workspace, err := h.workspaces.Create(userID, req.Name)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, workspaceResponse(workspace, models.RoleOwner))
}

func (h *WorkspaceHandler) List(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	workspaces, err := h.workspaces.List(userID)

	if err != nil {
		respondError(ctx, err)
		return
	}

	response := make([]WorkspaceResponse, 0, len(workspaces))
	for _, entry := range workspaces {
		response = append(response, workspaceResponse(&entry.Workspace, entry.Role))
	}

	ctx.JSON(http.StatusOK, response)
}

func (h *WorkspaceHandler) Update(ctx *gin.Context) {
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

	var req UpdateWorkspaceRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	workspace, err := h.workspaces.Update(workspaceID, userID, req.Name)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, workspaceResponse(workspace, ""))
}

func (h *WorkspaceHandler) Delete(ctx *gin.Context) {
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

	if err := h.workspaces.Delete(workspaceID, userID); err != nil {
		respondError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

func (h *WorkspaceHandler) ListMembers(ctx *gin.Context) {
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

	members, err := h.workspaces.ListMembers(workspaceID, userID)

	if err != nil {
		respondError(ctx, err)
		return
	}

	response := make([]MemberResponse, 0, len(members))
	for i := range members {
		response = append(response, memberResponse(&members[i]))
	}

	ctx.JSON(http.StatusOK, response)
}

func (h *WorkspaceHandler) InviteMember(ctx *gin.Context) {
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

	var req InviteMemberRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	member, err := h.workspaces.InviteMember(workspaceID, userID, req.Email, req.Role)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, memberResponse(member))
}

func (h *WorkspaceHandler) RemoveMember(ctx *gin.Context) {
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

	memberUserID, err := utils.ParamID(ctx, "user_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.workspaces.RemoveMember(workspaceID, userID, memberUserID); err != nil {
		respondError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

func (h *WorkspaceHandler) UpdateMemberRole(ctx *gin.Context) {
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

	memberUserID, err := utils.ParamID(ctx, "user_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var req UpdateMemberRoleRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	member, err := h.workspaces.UpdateMemberRole(workspaceID, userID, memberUserID, req.Role)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"id":      member.ID,
		"user_id": member.UserID,
		"role":    member.Role,
	})
}
