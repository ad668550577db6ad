package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewGinEngine builds a Gin router and registers the protocol and
// management routes.
func NewGinEngine(s *Server) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.CustomRecovery(func(c *gin.Context, err interface{}) {
		s.Log.Error("panic recovered", zap.Any("panic", err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":             "server_error",
			"error_description": "The authorization server encountered an unexpected condition",
		})
	}))

	// OAuth protocol surface
	r.GET("/oauth/authorize", s.HandleAuthorizeRequest)
	r.POST("/oauth/token", s.HandleTokenRequest)
	r.POST("/oauth/revoke", s.HandleRevocationRequest)
	r.GET("/oauth/userinfo", s.HandleUserInfoRequest)
	r.POST("/oauth/userinfo", s.HandleUserInfoRequest)

	// OIDC discovery
	r.GET("/.well-known/openid-configuration", s.HandleOIDCDiscovery)
	r.GET("/.well-known/jwks.json", s.HandleOIDCJWKS)

	// App registry API: session-authenticated developer console surface
	api := r.Group("/api/v1")
	api.Use(s.RequirePrincipal())

	api.POST("/apps", s.HandleCreateApp)
	api.GET("/apps", s.HandleListApps)
	api.GET("/apps/count", s.HandleCountApps)
	api.GET("/apps/:id", s.HandleGetApp)
	api.PATCH("/apps/:id", s.HandleUpdateApp)
	api.DELETE("/apps/:id", s.HandleDeleteApp)
	api.POST("/apps/:id/secrets", s.HandleRotateSecret)
	api.GET("/apps/:id/secrets", s.HandleListSecrets)
	api.DELETE("/apps/:id/secrets/:secretId", s.HandleRevokeSecret)
	api.GET("/apps/:id/users", s.HandleListConnectedUsers)

	return r
}
