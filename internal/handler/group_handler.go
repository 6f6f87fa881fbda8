package handler

import (
	"context"
	"net/http"

	"todoshare/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type GroupService interface {
	Create(ctx context.Context, ownerID uuid.UUID, name, description string) (*model.Group, error)
	Get(ctx context.Context, userID, groupID uuid.UUID) (*model.Group, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]model.Group, error)
	AddMember(ctx context.Context, groupID, actorID, userID uuid.UUID) (*model.Group, error)
}

type GroupHandler struct {
	groups GroupService
}

func NewGroupHandler(groups GroupService) *GroupHandler {
	return &GroupHandler{groups: groups}
}

type GroupRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type GroupMemberRequest struct {
	UserID string `json:"user_id" binding:"required,uuid"`
}

// Create godoc
// @Summary   Create a group owned by the current user
// @Tags      Groups
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     request body GroupRequest true "Group"
// @Success   201 {object} GroupResponse
// @Failure   400 {object} ErrorResponse
// @Router    /groups [post]
func (h *GroupHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req GroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	group, err := h.groups.Create(c.Request.Context(), userID, req.Name, req.Description)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newGroupResponse(group))
}

// GetAll godoc
// @Summary   Groups the current user belongs to
// @Tags      Groups
// @Produce   json
// @Security  BearerAuth
// @Success   200 {array} GroupResponse
// @Router    /groups [get]
func (h *GroupHandler) GetAll(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	groups, err := h.groups.ListForUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]GroupResponse, len(groups))
	for i := range groups {
		response[i] = newGroupResponse(&groups[i])
	}
	c.JSON(http.StatusOK, response)
}

// GetByID godoc
// @Summary   A group with its members and tasks
// @Tags      Groups
// @Produce   json
// @Security  BearerAuth
// @Param     id path string true "Group ID"
// @Success   200 {object} GroupResponse
// @Failure   403 {object} ErrorResponse
// @Failure   404 {object} ErrorResponse
// @Router    /groups/{id} [get]
func (h *GroupHandler) GetByID(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	groupID, ok := pathID(c, "id", "group")
	if !ok {
		return
	}

	group, err := h.groups.Get(c.Request.Context(), userID, groupID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newGroupResponse(group))
}

// AddMember godoc
// @Summary   Add a user to a group
// @Tags      Groups
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     id path string true "Group ID"
// @Param     request body GroupMemberRequest true "Member"
// @Success   200 {object} GroupResponse
// @Failure   403 {object} ErrorResponse
// @Router    /groups/{id}/members [post]
func (h *GroupHandler) AddMember(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	groupID, ok := pathID(c, "id", "group")
	if !ok {
		return
	}

	var req GroupMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	memberID, err := uuid.Parse(req.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID format"})
		return
	}

	group, err := h.groups.AddMember(c.Request.Context(), groupID, userID, memberID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newGroupResponse(group))
}
