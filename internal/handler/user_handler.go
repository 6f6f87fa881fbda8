package handler

import (
	"context"
	"net/http"

	"todoshare/internal/model"
	"todoshare/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type UserService interface {
	Register(ctx context.Context, reg service.Registration) (*model.User, error)
	Authenticate(ctx context.Context, email, password string) (*model.User, error)
	Profile(ctx context.Context, userID uuid.UUID) (*service.Profile, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, update service.ProfileUpdate) (*model.User, error)
	SetNotificationsEnabled(ctx context.Context, userID uuid.UUID, enabled bool) error
	Search(ctx context.Context, query string) ([]model.User, error)
}

type TokenIssuer interface {
	GenerateToken(userID string) (string, error)
}

type UserHandler struct {
	users  UserService
	tokens TokenIssuer
}

func NewUserHandler(users UserService, tokens TokenIssuer) *UserHandler {
	return &UserHandler{users: users, tokens: tokens}
}

type RegisterRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=6"`
	DisplayName string `json:"display_name"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Birthdate   string `json:"birthdate"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

type NotificationSettingsRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

// Register godoc
// @Summary  Create an account
// @Tags     Users
// @Accept   json
// @Produce  json
// @Param    request body RegisterRequest true "Account"
// @Success  201 {object} AuthResponse
// @Failure  400 {object} ErrorResponse
// @Failure  409 {object} ErrorResponse
// @Router   /register [post]
func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	user, err := h.users.Register(c.Request.Context(), service.Registration{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Birthdate:   req.Birthdate,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	h.respondWithToken(c, http.StatusCreated, user)
}

// Login godoc
// @Summary  Exchange credentials for a token
// @Tags     Users
// @Accept   json
// @Produce  json
// @Param    request body LoginRequest true "Credentials"
// @Success  200 {object} AuthResponse
// @Failure  401 {object} ErrorResponse
// @Router   /login [post]
func (h *UserHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	h.respondWithToken(c, http.StatusOK, user)
}

// Me godoc
// @Summary   Current user's profile
// @Tags      Users
// @Produce   json
// @Security  BearerAuth
// @Success   200 {object} ProfileResponse
// @Router    /me [get]
func (h *UserHandler) Me(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	profile, err := h.users.Profile(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, ProfileResponse{
		UserResponse:   newUserResponse(&profile.User),
		Friends:        idStrings(profile.Friends),
		PendingFriends: idStrings(profile.PendingFriends),
		SharedTasks:    nonNil(profile.SharedTasks),
	})
}

// UpdateMe godoc
// @Summary   Update the current user's profile
// @Tags      Users
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     request body service.ProfileUpdate true "Fields to change"
// @Success   200 {object} UserResponse
// @Failure   400 {object} ErrorResponse
// @Router    /me [put]
func (h *UserHandler) UpdateMe(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req service.ProfileUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	user, err := h.users.UpdateProfile(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, newUserResponse(user))
}

// SetNotifications godoc
// @Summary   Turn task reminders on or off
// @Tags      Users
// @Accept    json
// @Security  BearerAuth
// @Param     request body NotificationSettingsRequest true "Setting"
// @Success   200 {object} map[string]bool
// @Router    /me/notifications [put]
func (h *UserHandler) SetNotifications(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req NotificationSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if err := h.users.SetNotificationsEnabled(c.Request.Context(), userID, *req.Enabled); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"notifications_enabled": *req.Enabled})
}

// Search godoc
// @Summary   Find users by email or display name
// @Tags      Users
// @Produce   json
// @Security  BearerAuth
// @Param     q query string true "Search text"
// @Success   200 {array} UserResponse
// @Router    /users/search [get]
func (h *UserHandler) Search(c *gin.Context) {
	if _, ok := currentUserID(c); !ok {
		return
	}

	users, err := h.users.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, newUserResponses(users))
}

func (h *UserHandler) respondWithToken(c *gin.Context, status int, user *model.User) {
	token, err := h.tokens.GenerateToken(user.ID.String())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(status, AuthResponse{Token: token, User: newUserResponse(user)})
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
