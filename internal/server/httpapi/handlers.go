// Package httpapi exposes the authentication service over HTTP using gin.
package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Xcceleran-do/mindplex-api/internal/common"
	"github.com/Xcceleran-do/mindplex-api/internal/logging"
	"github.com/Xcceleran-do/mindplex-api/internal/server/models"
	"github.com/Xcceleran-do/mindplex-api/internal/server/services"
)

type Handler struct {
	users    *services.UserService
	sessions *services.SessionService
	logger   logging.Logger
}

func NewHandler(users *services.UserService, sessions *services.SessionService, logger logging.Logger) *Handler {
	return &Handler{
		users:    users,
		sessions: sessions,
		logger:   logger.With("module", "httpapi"),
	}
}

type registerRequest struct {
	Username string `json:"username" binding:"required,min=3,max=32"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

type activateRequest struct {
	Token string `json:"token" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type tokenPairResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	// Mail delivery is owned by a separate service; the activation token
	// is returned so the caller can forward it.
	token, err := h.users.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			c.JSON(http.StatusConflict, gin.H{"error": "username or email already taken"})
			return
		}
		h.internalError(c, "register", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"activation_token": token})
}

func (h *Handler) activate(c *gin.Context) {
	var req activateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	err := h.users.Activate(c.Request.Context(), req.Token)
	switch {
	case errors.Is(err, common.ErrInvalidToken):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid activation token"})
	case errors.Is(err, common.ErrTokenExpired):
		c.JSON(http.StatusBadRequest, gin.H{"error": "activation token expired"})
	case err != nil:
		h.internalError(c, "activate", err)
	default:
		c.JSON(http.StatusOK, gin.H{"message": "account activated"})
	}
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	pair, err := h.users.Login(c.Request.Context(), req.Email, req.Password, sessionMetadata(c))
	switch {
	case errors.Is(err, common.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
	case errors.Is(err, common.ErrAccountNotActivated):
		c.JSON(http.StatusForbidden, gin.H{"error": "account is not activated"})
	case err != nil:
		h.internalError(c, "login", err)
	default:
		c.JSON(http.StatusOK, tokenPairResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken})
	}
}

func (h *Handler) refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	pair, err := h.sessions.Rotate(c.Request.Context(), req.RefreshToken)
	switch {
	case errors.Is(err, common.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
	case errors.Is(err, common.ErrSessionExpired):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "session expired, please log in again"})
	case errors.Is(err, common.ErrTokenReuseDetected):
		// The client cannot distinguish being the thief from being the
		// victim; either way the session is gone.
		c.JSON(http.StatusForbidden, gin.H{"error": "session terminated, please log in again"})
	case err != nil:
		h.internalError(c, "refresh", err)
	default:
		c.JSON(http.StatusOK, tokenPairResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken})
	}
}

func (h *Handler) logout(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.sessions.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		h.internalError(c, "logout", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) me(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing access token"})
		return
	}

	userID, err := claims.UserID()
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid access token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":    userID,
		"email": claims.Email,
		"role":  claims.Role,
	})
}

func (h *Handler) internalError(c *gin.Context, op string, err error) {
	h.logger.Error(c.Request.Context(), "request failed", "op", op, "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}

func sessionMetadata(c *gin.Context) models.SessionMetadata {
	return models.SessionMetadata{
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
}
