package handler

import (
	"context"
	"net/http"

	"todoshare/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type FriendService interface {
	SendRequest(ctx context.Context, requesterID uuid.UUID, email string) (uuid.UUID, error)
	Accept(ctx context.Context, userID, friendID uuid.UUID) error
	Remove(ctx context.Context, userID, friendID uuid.UUID) error
	Friends(ctx context.Context, userID uuid.UUID) ([]model.User, error)
	Pending(ctx context.Context, userID uuid.UUID) ([]model.User, error)
}

type FriendHandler struct {
	friends FriendService
}

func NewFriendHandler(friends FriendService) *FriendHandler {
	return &FriendHandler{friends: friends}
}

type FriendRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// List godoc
// @Summary   Accepted friends
// @Tags      Friends
// @Produce   json
// @Security  BearerAuth
// @Success   200 {array} UserResponse
// @Router    /friends [get]
func (h *FriendHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	users, err := h.friends.Friends(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newUserResponses(users))
}

// Pending godoc
// @Summary   Users waiting for the current user to accept them
// @Tags      Friends
// @Produce   json
// @Security  BearerAuth
// @Success   200 {array} UserResponse
// @Router    /friends/pending [get]
func (h *FriendHandler) Pending(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	users, err := h.friends.Pending(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newUserResponses(users))
}

// SendRequest godoc
// @Summary   Send a friend request by email
// @Tags      Friends
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     request body FriendRequest true "Friend's email"
// @Success   201 {object} map[string]string
// @Failure   404 {object} ErrorResponse
// @Router    /friends [post]
func (h *FriendHandler) SendRequest(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req FriendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	targetID, err := h.friends.SendRequest(c.Request.Context(), userID, req.Email)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Friend request sent", "user_id": targetID.String()})
}

// Accept godoc
// @Summary   Accept a pending friend request
// @Tags      Friends
// @Security  BearerAuth
// @Param     id path string true "Requesting user ID"
// @Success   200 {object} map[string]string
// @Failure   404 {object} ErrorResponse
// @Router    /friends/{id}/accept [post]
func (h *FriendHandler) Accept(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	friendID, ok := pathID(c, "id", "user")
	if !ok {
		return
	}

	if err := h.friends.Accept(c.Request.Context(), userID, friendID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Friend request accepted"})
}

// Remove godoc
// @Summary   Remove a friend or decline a request
// @Tags      Friends
// @Security  BearerAuth
// @Param     id path string true "Friend's user ID"
// @Success   200 {object} map[string]string
// @Router    /friends/{id} [delete]
func (h *FriendHandler) Remove(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	friendID, ok := pathID(c, "id", "user")
	if !ok {
		return
	}

	if err := h.friends.Remove(c.Request.Context(), userID, friendID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Friend removed"})
}
