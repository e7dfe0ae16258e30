package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mmcl/printrun/internal/apperr"
	"github.com/mmcl/printrun/internal/domain/models"
	"github.com/mmcl/printrun/internal/server/middleware"
	"github.com/mmcl/printrun/internal/service/auth"
)

// AuthService is implemented by auth.Service.
type AuthService interface {
	Login(ctx context.Context, email, password string) (*auth.LoginResult, error)
	Logout(ctx context.Context, claims *auth.Claims) error
}

// UserDirectory looks users up by id.
type UserDirectory interface {
	User(id int64) (models.User, bool)
}

// AuthHandler serves /auth routes.
type AuthHandler struct {
	svc    AuthService
	users  UserDirectory
	logger *zap.Logger
}

func NewAuthHandler(svc AuthService, users UserDirectory, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{svc: svc, users: users, logger: logger}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges credentials for a bearer token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperr.Validation("invalid request body"))
		return
	}

	res, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"token":      res.Token,
		"expires_at": res.ExpiresAt,
		"user":       res.User,
	})
}

// Logout revokes the caller's token.
func (h *AuthHandler) Logout(c *gin.Context) {
	claims, ok := middleware.Claims(c)
	if !ok {
		fail(c, apperr.Auth("authentication required"))
		return
	}
	if err := h.svc.Logout(c.Request.Context(), claims); err != nil {
		fail(c, err)
		return
	}
	respondMessage(c, "Logged out successfully")
}

// Me returns the caller's profile.
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := actor(c)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}

// User returns a profile by id. Non-admins may only look themselves up.
func (h *AuthHandler) User(c *gin.Context) {
	caller, err := actor(c)
	if err != nil {
		fail(c, err)
		return
	}
	id, err := pathID(c, "id")
	if err != nil {
		fail(c, err)
		return
	}
	if !caller.IsAdmin() && caller.ID != id {
		fail(c, apperr.Authorization("cannot view another user's profile"))
		return
	}

	user, ok := h.users.User(id)
	if !ok {
		fail(c, apperr.NotFound("user %d not found", id))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}
