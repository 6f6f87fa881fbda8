package handler

import (
	"context"
	"net/http"

	"todoshare/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ActivityService interface {
	List(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]model.Notification, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
	MarkRead(ctx context.Context, userID, id uuid.UUID) error
}

type NotificationHandler struct {
	activity ActivityService
}

func NewNotificationHandler(activity ActivityService) *NotificationHandler {
	return &NotificationHandler{activity: activity}
}

// GetAll godoc
// @Summary   The current user's notifications, newest first
// @Tags      Notifications
// @Produce   json
// @Security  BearerAuth
// @Param     unread query bool false "Only unread notifications"
// @Success   200 {array} NotificationResponse
// @Router    /notifications [get]
func (h *NotificationHandler) GetAll(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	events, err := h.activity.List(c.Request.Context(), userID, c.Query("unread") == "true")
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]NotificationResponse, len(events))
	for i := range events {
		response[i] = newNotificationResponse(&events[i])
	}
	c.JSON(http.StatusOK, response)
}

// UnreadCount godoc
// @Summary   Number of unread notifications
// @Tags      Notifications
// @Produce   json
// @Security  BearerAuth
// @Success   200 {object} map[string]int64
// @Router    /notifications/unread-count [get]
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	count, err := h.activity.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread": count})
}

// MarkRead godoc
// @Summary   Mark a notification as read
// @Tags      Notifications
// @Security  BearerAuth
// @Param     id path string true "Notification ID"
// @Success   200 {object} map[string]string
// @Failure   404 {object} ErrorResponse
// @Router    /notifications/{id}/read [post]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", "notification")
	if !ok {
		return
	}

	if err := h.activity.MarkRead(c.Request.Context(), userID, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}
