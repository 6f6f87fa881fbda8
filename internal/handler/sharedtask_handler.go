package handler

import (
	"context"
	"net/http"

	"todoshare/internal/model"
	"todoshare/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type SharingService interface {
	ShareWithUser(ctx context.Context, taskID, ownerID, recipientID uuid.UUID) (string, error)
	ShareWithGroup(ctx context.Context, taskID, ownerID, groupID uuid.UUID) (string, error)
	FetchSharedTasks(ctx context.Context, userID uuid.UUID) ([]service.SharedTaskView, error)
	Get(ctx context.Context, userID uuid.UUID, id string) (*service.SharedTaskView, error)
	UpdateSharedTask(ctx context.Context, id string, actorID uuid.UUID, patch service.TaskPatch) (*model.SharedTask, error)
	DeleteSharedTask(ctx context.Context, id string, actorID uuid.UUID) error
}

type SharedTaskHandler struct {
	sharing SharingService
}

func NewSharedTaskHandler(sharing SharingService) *SharedTaskHandler {
	return &SharedTaskHandler{sharing: sharing}
}

type ShareWithUserRequest struct {
	UserID string `json:"user_id" binding:"required,uuid"`
}

type ShareWithGroupRequest struct {
	GroupID string `json:"group_id" binding:"required,uuid"`
}

type ShareResponse struct {
	SharedTaskID string `json:"shared_task_id"`
}

// ShareWithUser godoc
// @Summary   Share a copy of a task with one user
// @Tags      Sharing
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     id path string true "Task ID"
// @Param     request body ShareWithUserRequest true "Recipient"
// @Success   201 {object} ShareResponse
// @Failure   400 {object} ErrorResponse
// @Failure   403 {object} ErrorResponse
// @Failure   404 {object} ErrorResponse
// @Router    /tasks/{id}/share/user [post]
func (h *SharedTaskHandler) ShareWithUser(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	taskID, ok := pathID(c, "id", "task")
	if !ok {
		return
	}

	var req ShareWithUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	recipientID, err := uuid.Parse(req.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID format"})
		return
	}

	id, err := h.sharing.ShareWithUser(c.Request.Context(), taskID, userID, recipientID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ShareResponse{SharedTaskID: id})
}

// ShareWithGroup godoc
// @Summary   Share a copy of a task with a group's current members
// @Tags      Sharing
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     id path string true "Task ID"
// @Param     request body ShareWithGroupRequest true "Group"
// @Success   201 {object} ShareResponse
// @Failure   403 {object} ErrorResponse
// @Failure   404 {object} ErrorResponse
// @Router    /tasks/{id}/share/group [post]
func (h *SharedTaskHandler) ShareWithGroup(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	taskID, ok := pathID(c, "id", "task")
	if !ok {
		return
	}

	var req ShareWithGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	groupID, err := uuid.Parse(req.GroupID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid group ID format"})
		return
	}

	id, err := h.sharing.ShareWithGroup(c.Request.Context(), taskID, userID, groupID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ShareResponse{SharedTaskID: id})
}

// GetAll godoc
// @Summary   Shared tasks visible to the current user
// @Tags      Sharing
// @Produce   json
// @Security  BearerAuth
// @Success   200 {array} SharedTaskResponse
// @Router    /shared-tasks [get]
func (h *SharedTaskHandler) GetAll(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	views, err := h.sharing.FetchSharedTasks(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]SharedTaskResponse, len(views))
	for i := range views {
		response[i] = newSharedTaskViewResponse(&views[i])
	}
	c.JSON(http.StatusOK, response)
}

// GetByID godoc
// @Summary   One shared task
// @Tags      Sharing
// @Produce   json
// @Security  BearerAuth
// @Param     id path string true "Shared task ID"
// @Success   200 {object} SharedTaskResponse
// @Failure   403 {object} ErrorResponse
// @Failure   404 {object} ErrorResponse
// @Router    /shared-tasks/{id} [get]
func (h *SharedTaskHandler) GetByID(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	view, err := h.sharing.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newSharedTaskViewResponse(view))
}

// Update godoc
// @Summary   Change some fields of a shared task
// @Tags      Sharing
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     id path string true "Shared task ID"
// @Param     request body service.TaskPatch true "Fields to change"
// @Success   200 {object} SharedTaskResponse
// @Failure   400 {object} ErrorResponse
// @Failure   403 {object} ErrorResponse
// @Failure   404 {object} ErrorResponse
// @Router    /shared-tasks/{id} [put]
func (h *SharedTaskHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req service.TaskPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	shared, err := h.sharing.UpdateSharedTask(c.Request.Context(), c.Param("id"), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newSharedTaskResponse(shared))
}

// Delete godoc
// @Summary   Stop sharing a task
// @Tags      Sharing
// @Security  BearerAuth
// @Param     id path string true "Shared task ID"
// @Success   200 {object} map[string]string
// @Failure   403 {object} ErrorResponse
// @Failure   404 {object} ErrorResponse
// @Router    /shared-tasks/{id} [delete]
func (h *SharedTaskHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.sharing.DeleteSharedTask(c.Request.Context(), c.Param("id"), userID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Shared task deleted successfully"})
}
