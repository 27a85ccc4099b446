package httpapi

import (
	"github.com/gin-gonic/gin"

	"github.com/Xcceleran-do/mindplex-api/internal/server/auth"
)

// NewRouter wires the authentication endpoints onto a gin engine.
func NewRouter(h *Handler, issuer *auth.TokenIssuer) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", h.register)
		authGroup.POST("/activate", h.activate)
		authGroup.POST("/login", h.login)
		authGroup.POST("/refresh", h.refresh)
		authGroup.POST("/logout", h.logout)
		authGroup.GET("/me", BearerAuth(issuer), h.me)
	}

	return r
}
